package bootstrap

import (
	"fmt"

	"github.com/jonesrussell/north-cloud/ogp-verifier/infrastructure/logger"
	"github.com/jonesrussell/north-cloud/ogp-verifier/internal/config"
)

// LoadConfig loads and validates the configuration at path.
func LoadConfig(path string) (*config.Config, error) {
	cfg, err := config.Load(path)
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	if validationErr := cfg.Validate(); validationErr != nil {
		return nil, fmt.Errorf("validate config: %w", validationErr)
	}
	return cfg, nil
}

// CreateLogger creates a logger tagged with the service name and version.
func CreateLogger(cfg *config.Config) (logger.Logger, error) {
	logCfg := cfg.Logging
	logCfg.Development = logCfg.Development || cfg.Service.Debug

	log, err := logger.New(logCfg)
	if err != nil {
		return nil, fmt.Errorf("create logger: %w", err)
	}
	return log.With(
		logger.String("service", cfg.Service.Name),
		logger.String("version", cfg.Service.Version),
	), nil
}
