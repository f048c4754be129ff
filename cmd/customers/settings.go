package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/muurk/customers/internal/api"
	"github.com/muurk/customers/internal/config"
	"github.com/muurk/customers/internal/discovery"
	"github.com/muurk/customers/internal/logging"
)

// loadConfig resolves the effective configuration: file, then .env, then
// CUSTOMERS_* variables, then flags, then --discover.
func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	path, err := resolveConfigPath()
	if err != nil {
		return nil, err
	}

	cfg, err := config.Load(path)
	if err != nil {
		return nil, err
	}
	if err := config.LoadDotEnv(); err != nil {
		return nil, err
	}
	if err := cfg.ApplyEnv(); err != nil {
		return nil, err
	}

	flags := cmd.Flags()
	if flags.Changed("api-url") {
		cfg.APIURL = apiURL
	}
	if flags.Changed("log-level") {
		cfg.LogLevel = logLevel
	}
	if flags.Changed("live") {
		cfg.Live = liveUpdates
	}

	if discoverAPI {
		svc, err := discoverOne(cmd.Context())
		if err != nil {
			return nil, err
		}
		cfg.APIURL = svc.URL()
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

func resolveConfigPath() (string, error) {
	if configPath != "" {
		return configPath, nil
	}
	path, err := config.GetConfigPath()
	if err != nil {
		return "", fmt.Errorf("failed to get config path: %w", err)
	}
	return path, nil
}

func discoverOne(ctx context.Context) (discovery.Service, error) {
	services, err := discovery.Browse(ctx, discoverTimeout)
	if err != nil {
		return discovery.Service{}, fmt.Errorf("discovery failed: %w", err)
	}
	svc, err := discovery.PickOne(services)
	if err != nil {
		return discovery.Service{}, fmt.Errorf("--discover: %w", err)
	}
	logging.Info("Discovered customers API", zap.String("name", svc.Name), zap.String("url", svc.URL()))
	return svc, nil
}

// setupLogging points the global logger at stderr, or at the log file
// when the interactive screen owns the terminal.
func setupLogging(cfg *config.Config, toFile bool) error {
	opts := logging.Options{Level: cfg.LogLevel}
	if toFile && cfg.LogLevel != "" {
		path := cfg.LogFile
		if path == "" {
			var err error
			if path, err = config.DefaultLogFile(); err != nil {
				return err
			}
		}
		if err := os.MkdirAll(filepath.Dir(path), 0700); err != nil {
			return fmt.Errorf("failed to create log directory: %w", err)
		}
		opts.OutputPath = path
	}
	return logging.Initialize(opts)
}

func newClient(cfg *config.Config) *api.Client {
	client := api.NewClient(cfg.APIURL)
	client.SetTimeout(cfg.Timeout)
	return client
}
