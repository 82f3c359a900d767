// Package logging configures the process-wide zap logger and provides
// sanitizers for values that may embed credentials (connection strings,
// catalog errors).
package logging

import (
	"fmt"

	"go.uber.org/zap"
)

// New builds a zap logger for the given environment. "local" and "dev"
// get a human-readable development logger; anything else gets the JSON
// production logger.
func New(env string) (*zap.Logger, error) {
	var logger *zap.Logger
	var err error
	switch env {
	case "local", "dev", "development":
		logger, err = zap.NewDevelopment()
	default:
		logger, err = zap.NewProduction()
	}
	if err != nil {
		return nil, fmt.Errorf("build logger: %w", err)
	}
	return logger, nil
}
