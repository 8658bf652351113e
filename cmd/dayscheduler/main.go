// Package main implements the dayscheduler command.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"gorm.io/gorm"

	"day-scheduler/internal/config"
	"day-scheduler/internal/logger"
	"day-scheduler/internal/repository"
)

var version = "dev"

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:           "dayscheduler",
	Short:         "Day scheduler API: template tasks, today's schedule and sun/prayer times",
	SilenceUsage:  true,
	SilenceErrors: false,
	RunE:          runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd, syncCmd, migrateCmd)
}

// bootstrap loads configuration, sets up logging and opens the database.
func bootstrap() (config.Config, *gorm.DB, func(), error) {
	cfg, err := config.Load()
	if err != nil {
		return cfg, nil, nil, fmt.Errorf("config: %w", err)
	}
	logger.Init(cfg.LogLevel, cfg.LogJSON)

	db, err := repository.NewDB(cfg.DatabaseURL)
	if err != nil {
		return cfg, nil, nil, fmt.Errorf("db: %w", err)
	}
	closeDB := func() {
		if sqlDB, err := db.DB(); err == nil {
			sqlDB.Close()
		}
	}
	return cfg, db, closeDB, nil
}
