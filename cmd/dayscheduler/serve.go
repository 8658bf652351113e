package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"day-scheduler/internal/bot"
	"day-scheduler/internal/config"
	httpServer "day-scheduler/internal/http"
	"day-scheduler/internal/http/handlers"
	"day-scheduler/internal/logger"
	"day-scheduler/internal/repository"
	"day-scheduler/internal/service"
	"day-scheduler/internal/suntime"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP API, scheduled jobs and the optional Telegram bot",
	Args:  cobra.NoArgs,
	RunE:  runServe,
}

func runServe(cmd *cobra.Command, _ []string) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg, db, closeDB, err := bootstrap()
	if err != nil {
		return err
	}
	defer closeDB()

	taskRepo := repository.NewTaskRepository(db)
	scheduleRepo := repository.NewScheduleRepository(db)

	taskSvc := service.NewTaskService(taskRepo)
	scheduleSvc := service.NewScheduleService(scheduleRepo, taskRepo)
	reminderSvc := service.NewReminderService(scheduleRepo)

	timesSvc, closeCache := newTimesService(ctx, cfg)
	defer closeCache()

	if os.Getenv(gin.EnvGinMode) == "" && logger.ParseLevel(cfg.LogLevel) != slog.LevelDebug {
		gin.SetMode(gin.ReleaseMode)
	}
	router := httpServer.NewRouter(
		handlers.NewHandler(taskSvc, scheduleSvc, timesSvc, cfg.Location),
		handlers.NewHealthHandler(db, version),
		httpServer.Options{
			RateLimitRPS:   cfg.RateLimitRPS,
			RateLimitBurst: cfg.RateLimitBurst,
			StaticDir:      cfg.StaticDir,
		},
	)
	srv := &http.Server{
		Addr:              cfg.Addr(),
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	var telegramBot *bot.Bot
	if cfg.TelegramToken != "" {
		telegramBot, err = bot.New(cfg.TelegramToken, taskSvc, scheduleSvc, reminderSvc, cfg)
		if err != nil {
			return err
		}
	}

	scheduler := service.NewSchedulerService(cfg.Location)
	if err := registerJobs(scheduler, cfg, scheduleSvc, telegramBot); err != nil {
		return err
	}
	scheduler.Start()
	defer scheduler.Stop()

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		logger.Info("http server listening", "addr", srv.Addr, "version", version)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		logger.Info("shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})
	if telegramBot != nil {
		g.Go(func() error {
			if err := telegramBot.Start(gctx); err != nil && !errors.Is(err, context.Canceled) {
				return err
			}
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return err
	}
	logger.Info("shutdown complete")
	return nil
}

// registerJobs wires the nightly auto-sync and the Telegram digest into the cron scheduler.
func registerJobs(scheduler *service.SchedulerService, cfg config.Config, schedule *service.ScheduleService, telegramBot *bot.Bot) error {
	if cfg.DailySyncTime != "" {
		if _, err := scheduler.ScheduleAutoSync(cfg.DailySyncTime, cfg.DailySyncTemplate, schedule); err != nil {
			return err
		}
		logger.Info("auto-sync scheduled", "at", cfg.DailySyncTime, "template", cfg.DailySyncTemplate)
	}
	if cfg.DigestTime != "" && telegramBot != nil {
		if _, err := scheduler.ScheduleDaily("digest", cfg.DigestTime, telegramBot.SendDailyDigest); err != nil {
			return err
		}
		logger.Info("digest scheduled", "at", cfg.DigestTime, "chat", cfg.TelegramChatID)
	}
	return nil
}

// newTimesService builds the aggregator. A missing or unreachable Redis only disables the cache.
func newTimesService(ctx context.Context, cfg config.Config) (*service.TimesService, func()) {
	httpClient := suntime.NewHTTPClient(cfg.UpstreamTimeout)
	solar := suntime.NewSolarClient(cfg.SolarAPIURL, httpClient)
	prayer := suntime.NewPrayerClient(cfg.PrayerAPIURL, cfg.PrayerMethod, httpClient)

	client, err := suntime.Connect(ctx, cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB)
	if err != nil {
		logger.Warn("times cache disabled", "error", err)
	}
	if client == nil {
		return service.NewTimesService(solar, prayer, nil, cfg.Location), func() {}
	}

	logger.Info("times cache enabled", "addr", cfg.RedisAddr, "ttl", cfg.TimesCacheTTL)
	cache := suntime.NewRedisCache(client, cfg.TimesCacheTTL)
	return service.NewTimesService(solar, prayer, cache, cfg.Location), func() { client.Close() }
}
