package main

import (
	"context"
	"os"

	"github.com/spf13/pflag"

	"github.com/yigit/uniportal/internal/pkg/logger"
	"github.com/yigit/uniportal/internal/server"
)

func main() {
	var opts server.Options
	pflag.StringVarP(&opts.ConfigPath, "config", "c", "configs/config.yaml", "path to the YAML config file")
	pflag.StringVar(&opts.MigrationsDir, "migrations", "migrations", "directory holding the SQL migrations")
	pflag.Parse()

	// startup logger, used until the configured one exists
	log := logger.New(logger.Config{Output: os.Stderr})

	srv, err := server.NewServer(context.Background(), opts)
	if err != nil {
		log.Error().Err(err).Msg("Failed to initialize server")
		os.Exit(1)
	}

	if err := srv.Run(); err != nil {
		log.Error().Err(err).Msg("Server execution failed or shutdown encountered errors")
		os.Exit(1)
	}

	log.Info().Msg("Application finished gracefully.")
}
