// Package config loads and validates the tablefront configuration.
// Configuration comes from a YAML file plus environment variables;
// environment variables override YAML values, and secrets (the catalog
// token) come from the environment only.
package config

import (
	"fmt"
	"os"
	"strings"
	"unicode"

	"github.com/ilyakaznacheev/cleanenv"

	"github.com/tablefront/tablefront/pkg/gql"
)

// Config holds all configuration for tablefront.
type Config struct {
	BindAddr string `yaml:"bind_addr" env:"BIND_ADDR" env-default:"127.0.0.1"`
	Port     string `yaml:"port" env:"PORT" env-default:"8080"`
	Env      string `yaml:"env" env:"ENVIRONMENT" env-default:"local"`
	Version  string `yaml:"-"` // set at load time, not from config

	Engine  EngineConfig   `yaml:"engine"`
	Catalog CatalogConfig  `yaml:"catalog"`
	Entity  []EntityConfig `yaml:"entities"`
}

// EngineConfig selects and configures the table query engine.
type EngineConfig struct {
	// Driver is one of sqlite, postgres, mssql. sqlite is the embedded
	// engine serving local CSV datasets.
	Driver string `yaml:"driver" env:"ENGINE_DRIVER" env-default:"sqlite"`
	DSN    string `yaml:"-" env:"ENGINE_DSN"` // may carry credentials
}

// CatalogConfig configures the optional remote catalog. When Host is
// empty the server runs in local mode and the engine provides table
// metadata itself.
type CatalogConfig struct {
	Host    string `yaml:"host" env:"CATALOG_HOST" env-default:""`
	Token   string `yaml:"-" env:"CATALOG_TOKEN"` // secret, env only
	Catalog string `yaml:"catalog" env:"CATALOG_NAME" env-default:""`
	Schema  string `yaml:"schema" env:"CATALOG_SCHEMA" env-default:""`
}

// Enabled reports whether a remote catalog is configured.
func (c CatalogConfig) Enabled() bool {
	return c.Host != ""
}

// EntityConfig is one table exposed as one GraphQL type.
type EntityConfig struct {
	Table       string `yaml:"table"`
	Name        string `yaml:"name"`
	PrimaryKey  string `yaml:"primary_key"`
	Description string `yaml:"description,omitempty"`
}

// Load reads the config file (if it exists), applies environment
// overrides, and validates the result.
func Load(path, version string) (*Config, error) {
	var cfg Config

	if path != "" {
		if _, err := os.Stat(path); err == nil {
			if err := cleanenv.ReadConfig(path, &cfg); err != nil {
				return nil, fmt.Errorf("read config %q: %w", path, err)
			}
		} else {
			if err := cleanenv.ReadEnv(&cfg); err != nil {
				return nil, fmt.Errorf("read environment: %w", err)
			}
		}
	} else {
		if err := cleanenv.ReadEnv(&cfg); err != nil {
			return nil, fmt.Errorf("read environment: %w", err)
		}
	}

	cfg.Version = version

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks the engine driver and every entity. The schema
// compiler trusts entity names to already be valid GraphQL type names;
// this is where that promise is kept.
func (c *Config) Validate() error {
	switch c.Engine.Driver {
	case "sqlite", "postgres", "mssql":
	default:
		return fmt.Errorf("unknown engine driver %q", c.Engine.Driver)
	}

	if c.Engine.Driver != "sqlite" && c.Engine.DSN == "" {
		return fmt.Errorf("engine driver %q requires ENGINE_DSN", c.Engine.Driver)
	}

	seen := make(map[string]struct{}, len(c.Entity))
	for i, ent := range c.Entity {
		if err := validateEntity(ent); err != nil {
			return fmt.Errorf("entities[%d]: %w", i, err)
		}
		if _, dup := seen[ent.Name]; dup {
			return fmt.Errorf("entities[%d]: duplicate entity name %q", i, ent.Name)
		}
		seen[ent.Name] = struct{}{}
	}
	return nil
}

// Entities converts the configured entities into the schema builder's
// input, preserving order.
func (c *Config) Entities() []gql.Entity {
	out := make([]gql.Entity, 0, len(c.Entity))
	for _, ent := range c.Entity {
		out = append(out, gql.Entity{
			Table:       ent.Table,
			Name:        ent.Name,
			PrimaryKey:  ent.PrimaryKey,
			Description: ent.Description,
		})
	}
	return out
}

func validateEntity(ent EntityConfig) error {
	if ent.Table == "" {
		return fmt.Errorf("table is required")
	}
	if ent.Name == "" {
		return fmt.Errorf("name is required")
	}
	if ent.PrimaryKey == "" {
		return fmt.Errorf("primary_key is required")
	}
	if !validTypeName(ent.Name) {
		return fmt.Errorf("name %q must be PascalCase alphanumeric", ent.Name)
	}
	// A table identifier is a bare name (a CSV path in local mode, a
	// table in the engine's default schema otherwise) or a dotted
	// qualified name.
	if strings.HasPrefix(ent.Table, ".") || strings.HasSuffix(ent.Table, ".") ||
		strings.Contains(ent.Table, "..") {
		return fmt.Errorf("table %q is not a valid identifier", ent.Table)
	}
	return nil
}

// validTypeName accepts PascalCase alphanumeric GraphQL type names.
func validTypeName(name string) bool {
	for i, r := range name {
		if i == 0 {
			if !unicode.IsUpper(r) {
				return false
			}
			continue
		}
		if !unicode.IsLetter(r) && !unicode.IsDigit(r) {
			return false
		}
	}
	return name != ""
}
