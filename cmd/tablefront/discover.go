package main

import (
	"fmt"
	"os"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/tablefront/tablefront/pkg/catalog"
	"github.com/tablefront/tablefront/pkg/config"
	"github.com/tablefront/tablefront/pkg/logging"
)

var (
	discoverConfigPath string
	discoverAsYAML     bool
)

var discoverCmd = &cobra.Command{
	Use:   "discover",
	Short: "Discover entities from the configured catalog schema",
	Long: `Lists the tables of the configured catalog schema and synthesizes an
entity config for each: the GraphQL type name from the table name and
the primary key inferred from table metadata.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runDiscover(cmd)
	},
}

func init() {
	discoverCmd.Flags().StringVarP(&discoverConfigPath, "config", "c", "config.yaml", "path to the config file")
	discoverCmd.Flags().BoolVar(&discoverAsYAML, "yaml", false, "print an entities: block ready to paste into the config")
}

func runDiscover(cmd *cobra.Command) error {
	cfg, err := config.Load(discoverConfigPath, Version)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	if !cfg.Catalog.Enabled() {
		return fmt.Errorf("discover requires catalog.host in the config or CATALOG_HOST")
	}

	logger, err := logging.New(cfg.Env)
	if err != nil {
		return err
	}
	defer func() { _ = logger.Sync() }()

	client := catalog.NewClient(cfg.Catalog.Host, cfg.Catalog.Token, logger)
	entities, err := catalog.DiscoverEntities(cmd.Context(), client, cfg.Catalog.Catalog, cfg.Catalog.Schema, logger)
	if err != nil {
		return fmt.Errorf("discover entities: %w", err)
	}

	if len(entities) == 0 {
		color.Yellow("No supported tables found in %s.%s", cfg.Catalog.Catalog, cfg.Catalog.Schema)
		return nil
	}

	if discoverAsYAML {
		out := struct {
			Entities []exampleEntity `yaml:"entities"`
		}{}
		for _, ent := range entities {
			out.Entities = append(out.Entities, exampleEntity{
				Table:       ent.Table,
				Name:        ent.Name,
				PrimaryKey:  ent.PrimaryKey,
				Description: ent.Description,
			})
		}
		data, err := yaml.Marshal(&out)
		if err != nil {
			return fmt.Errorf("render entities: %w", err)
		}
		_, err = os.Stdout.Write(data)
		return err
	}

	bold := color.New(color.Bold)
	for _, ent := range entities {
		_, _ = bold.Println(ent.Name)
		fmt.Printf("  table:       %s\n", ent.Table)
		fmt.Printf("  primary_key: %s\n", color.GreenString(ent.PrimaryKey))
		if ent.Description != "" {
			fmt.Printf("  description: %s\n", ent.Description)
		}
	}
	color.Cyan("\n%d entities discovered", len(entities))
	return nil
}
