package main

import (
	"fmt"
	"io"
	"time"

	"github.com/spf13/cobra"

	"day-scheduler/internal/logger"
	"day-scheduler/internal/model"
	"day-scheduler/internal/repository"
	"day-scheduler/internal/service"
)

var (
	syncTemplate int
	syncDate     string
)

var syncCmd = &cobra.Command{
	Use:   "sync",
	Short: "Replace a day's schedule with the tasks of a template",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		cfg, db, closeDB, err := bootstrap()
		if err != nil {
			return err
		}
		defer closeDB()

		day, err := resolveDay(syncDate, time.Now().In(cfg.Location))
		if err != nil {
			return err
		}

		taskRepo := repository.NewTaskRepository(db)
		schedule := service.NewScheduleService(repository.NewScheduleRepository(db), taskRepo)
		entries, err := schedule.Sync(cmd.Context(), day, syncTemplate)
		if err != nil {
			return err
		}
		logger.Info("schedule synced", "day", day, "template", syncTemplate, "entries", len(entries))
		printEntries(cmd.OutOrStdout(), day, entries)
		return nil
	},
}

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Create or upgrade the database schema",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		cfg, _, closeDB, err := bootstrap()
		if err != nil {
			return err
		}
		defer closeDB()
		logger.Info("database migrated", "dsn", cfg.DatabaseURL)
		return nil
	},
}

func init() {
	syncCmd.Flags().IntVarP(&syncTemplate, "template", "t", service.MinTemplateID, "template to load (1-8)")
	syncCmd.Flags().StringVarP(&syncDate, "date", "d", "", "day to fill, YYYY-MM-DD (default today)")
}

// resolveDay validates raw as YYYY-MM-DD, defaulting to now's day.
func resolveDay(raw string, now time.Time) (string, error) {
	if raw == "" {
		return model.DayOf(now), nil
	}
	day, err := time.Parse(model.DayLayout, raw)
	if err != nil {
		return "", fmt.Errorf("invalid --date %q: want YYYY-MM-DD", raw)
	}
	return model.DayOf(day), nil
}

func printEntries(w io.Writer, day string, entries []model.ScheduleEntry) {
	fmt.Fprintf(w, "%s: %d entries\n", day, len(entries))
	for _, entry := range entries {
		fmt.Fprintf(w, "  %s  %3d min  %s\n", entry.StartTime, entry.Duration, entry.Name)
	}
}
