package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/tablefront/tablefront/pkg/catalog"
	"github.com/tablefront/tablefront/pkg/config"
	"github.com/tablefront/tablefront/pkg/engine"
	"github.com/tablefront/tablefront/pkg/engine/mssql"
	"github.com/tablefront/tablefront/pkg/engine/postgres"
	"github.com/tablefront/tablefront/pkg/engine/sqlite"
	"github.com/tablefront/tablefront/pkg/gql"
	"github.com/tablefront/tablefront/pkg/handlers"
	"github.com/tablefront/tablefront/pkg/logging"
	"github.com/tablefront/tablefront/pkg/middleware"
)

var (
	serveConfigPath string
	serveDiscover   bool
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Build the GraphQL schema and serve it over HTTP",
	RunE: func(cmd *cobra.Command, args []string) error {
		return runServe(cmd.Context())
	},
}

func init() {
	serveCmd.Flags().StringVarP(&serveConfigPath, "config", "c", "config.yaml", "path to the config file")
	serveCmd.Flags().BoolVar(&serveDiscover, "discover", false, "discover entities from the catalog instead of using the configured list")
}

func runServe(ctx context.Context) error {
	cfg, err := config.Load(serveConfigPath, Version)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	logger, err := logging.New(cfg.Env)
	if err != nil {
		return err
	}
	defer func() { _ = logger.Sync() }()

	eng, provider, err := openEngine(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer func() { _ = eng.Close() }()

	entities := cfg.Entities()
	if serveDiscover {
		if !cfg.Catalog.Enabled() {
			return fmt.Errorf("--discover requires a configured catalog host")
		}
		client := catalog.NewClient(cfg.Catalog.Host, cfg.Catalog.Token, logger)
		entities, err = catalog.DiscoverEntities(ctx, client, cfg.Catalog.Catalog, cfg.Catalog.Schema, logger)
		if err != nil {
			return fmt.Errorf("discover entities: %w", err)
		}
	}

	// Schema build is the startup barrier: no request is served until
	// every entity compiled and every relation registered.
	registry, err := gql.NewBuilder(provider, eng, logger).Build(ctx, entities)
	if err != nil {
		return fmt.Errorf("build schema: %w", err)
	}
	logger.Info("schema built",
		zap.Int("entities", len(registry.Entities)),
		zap.String("engine", cfg.Engine.Driver))

	mux := http.NewServeMux()
	handlers.NewGraphQLHandler(registry, logger).RegisterRoutes(mux)
	handlers.NewHealthHandler(cfg, logger).RegisterRoutes(mux)

	srv := &http.Server{
		Addr:    cfg.BindAddr + ":" + cfg.Port,
		Handler: middleware.RequestLogger(logger)(mux),
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("starting tablefront",
			zap.String("addr", srv.Addr),
			zap.String("version", cfg.Version))
		errCh <- srv.ListenAndServe()
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)

	select {
	case err := <-errCh:
		return fmt.Errorf("server failed: %w", err)
	case sig := <-stop:
		logger.Info("shutting down", zap.String("signal", sig.String()))
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	}
}

// openEngine constructs the configured query engine and the metadata
// provider: the remote catalog when configured, otherwise the engine's
// own introspection (schema inference for the embedded engine).
func openEngine(ctx context.Context, cfg *config.Config, logger *zap.Logger) (engine.Engine, gql.MetadataProvider, error) {
	var (
		eng      engine.Engine
		provider gql.MetadataProvider
	)
	switch cfg.Engine.Driver {
	case "sqlite":
		e, err := sqlite.New(logger)
		if err != nil {
			return nil, nil, err
		}
		eng, provider = e, e
	case "postgres":
		e, err := postgres.New(ctx, cfg.Engine.DSN, logger)
		if err != nil {
			return nil, nil, err
		}
		eng, provider = e, e
	case "mssql":
		e, err := mssql.New(cfg.Engine.DSN, logger)
		if err != nil {
			return nil, nil, err
		}
		eng, provider = e, e
	default:
		return nil, nil, fmt.Errorf("unknown engine driver %q", cfg.Engine.Driver)
	}

	if cfg.Catalog.Enabled() {
		provider = catalog.NewClient(cfg.Catalog.Host, cfg.Catalog.Token, logger)
	}
	return eng, provider, nil
}
