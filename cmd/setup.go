package main

import (
	"context"
	"fmt"
	"os"

	"github.com/desertthunder/phono/internal/shared"
	"github.com/urfave/cli/v3"
)

// Setup writes a config file when none exists, initializes the catalog database
// and makes sure the cache directory is usable.
func (r *Runner) Setup(ctx context.Context, cmd *cli.Command) error {
	configPath := cmd.String("config")

	var config *shared.Config
	if _, err := os.Stat(configPath); err == nil {
		if config, err = shared.LoadConfig(configPath); err != nil {
			return fmt.Errorf("failed to load config: %w", err)
		}
	} else {
		r.logger.Info("config file not found, creating from template", "path", configPath)
		if err := shared.CreateConfigFile(configPath); err != nil {
			r.logger.Warn("failed to create config file, using defaults", "error", err)
			config = shared.DefaultConfig()
		} else {
			r.logger.Info("config file created", "path", configPath)
			if config, err = shared.LoadConfig(configPath); err != nil {
				r.logger.Warn("failed to load created config, using defaults", "error", err)
				config = shared.DefaultConfig()
			}
		}
	}

	r.config = config
	r.configPath = configPath
	r.Close()

	r.logger.Info("initializing database", "path", config.Database.Path)
	if _, err := r.openCatalog(); err != nil {
		return err
	}

	cacheDir := config.Cache.CacheDir()
	if err := os.MkdirAll(cacheDir, 0o755); err != nil {
		return fmt.Errorf("failed to create cache directory: %w", err)
	}

	r.logger.Infof("setup complete for database: %v", config.Database.Path)
	r.writePlain("✓ Configuration: %s\n", configPath)
	r.writePlain("✓ Database: %s\n", config.Database.Path)
	r.writePlain("✓ Cache: %s\n", cacheDir)
	r.writePlainln("Next steps:")
	r.writePlain("1. Add songs with 'phono song add --name \"...\" --source <path or URL>'\n")
	r.writePlain("2. Run 'phono play --song <id>' to listen\n")
	return nil
}
