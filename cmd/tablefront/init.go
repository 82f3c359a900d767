package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

var initForce bool

var initCmd = &cobra.Command{
	Use:   "init [path]",
	Short: "Write a starter config file",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		path := "config.yaml"
		if len(args) == 1 {
			path = args[0]
		}
		return runInit(path)
	},
}

func init() {
	initCmd.Flags().BoolVarP(&initForce, "force", "f", false, "overwrite an existing config file")
}

// exampleConfig mirrors the YAML layout of config.Config without the
// env-only secret fields.
type exampleConfig struct {
	BindAddr string `yaml:"bind_addr"`
	Port     string `yaml:"port"`
	Env      string `yaml:"env"`
	Engine   struct {
		Driver string `yaml:"driver"`
	} `yaml:"engine"`
	Catalog struct {
		Host    string `yaml:"host"`
		Catalog string `yaml:"catalog"`
		Schema  string `yaml:"schema"`
	} `yaml:"catalog"`
	Entities []exampleEntity `yaml:"entities"`
}

type exampleEntity struct {
	Table       string `yaml:"table"`
	Name        string `yaml:"name"`
	PrimaryKey  string `yaml:"primary_key"`
	Description string `yaml:"description,omitempty"`
}

func runInit(path string) error {
	if !initForce {
		if _, err := os.Stat(path); err == nil {
			return fmt.Errorf("%s already exists (use --force to overwrite)", path)
		}
	}

	var cfg exampleConfig
	cfg.BindAddr = "127.0.0.1"
	cfg.Port = "8080"
	cfg.Env = "local"
	cfg.Engine.Driver = "sqlite"
	cfg.Entities = []exampleEntity{
		{
			Table:       "data/verbs.csv",
			Name:        "Verb",
			PrimaryKey:  "verb_id",
			Description: "Irregular verbs",
		},
	}

	data, err := yaml.Marshal(&cfg)
	if err != nil {
		return fmt.Errorf("render config: %w", err)
	}

	header := []byte("# tablefront configuration.\n" +
		"# Secrets (ENGINE_DSN, CATALOG_TOKEN) come from the environment only.\n")
	if err := os.WriteFile(path, append(header, data...), 0o644); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}

	fmt.Printf("Wrote %s\n", path)
	return nil
}
