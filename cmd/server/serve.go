package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/urfave/cli/v3"
	"go.uber.org/zap"

	"github.com/Skufu/lipidcare/internal/adapters/classifier"
	"github.com/Skufu/lipidcare/internal/adapters/db/memory"
	"github.com/Skufu/lipidcare/internal/adapters/db/postgres"
	"github.com/Skufu/lipidcare/internal/adapters/httpapi"
	"github.com/Skufu/lipidcare/internal/adapters/notify"
	"github.com/Skufu/lipidcare/internal/adapters/ocr"
	"github.com/Skufu/lipidcare/internal/application"
	"github.com/Skufu/lipidcare/internal/config"
	"github.com/Skufu/lipidcare/internal/domain"
	"github.com/Skufu/lipidcare/internal/logging"
)

var cmdServe = &cli.Command{
	Name:    "serve",
	Aliases: []string{"start"},
	Usage:   "Start the HTTP API",
	Flags: []cli.Flag{
		&cli.StringFlag{
			Name:  "port",
			Usage: "listen port (overrides PORT)",
		},
		&cli.BoolFlag{
			Name:  "skip-migrations",
			Usage: "do not apply pending migrations on start",
		},
	},
	Action: serve,
}

func serve(ctx context.Context, cmd *cli.Command) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("config error: %w", err)
	}
	if port := cmd.String("port"); port != "" {
		cfg.Port = port
	}
	gin.SetMode(cfg.GinMode)

	logger, err := logging.New(cfg.LogLevel, cfg.LogFormat, "lipidcare")
	if err != nil {
		return fmt.Errorf("logger: %w", err)
	}
	defer logger.Sync() //nolint:errcheck

	var (
		store  domain.Store
		queue  domain.NotificationQueue
		checks []httpapi.Check
	)

	if cfg.EnableDB {
		if !cmd.Bool("skip-migrations") {
			if err := postgres.Migrate(ctx, cfg.DatabaseURL); err != nil {
				return err
			}
		}
		pool, err := postgres.Connect(ctx, cfg.DatabaseURL)
		if err != nil {
			return fmt.Errorf("database connection failed: %w", err)
		}
		defer pool.Close()
		pg := postgres.New(pool)
		store = pg
		checks = append(checks, httpapi.Check{Name: "db", Checker: pg})
	} else {
		logger.Warn("database disabled, assessments and activity are kept in memory")
		store = memory.New()
	}

	if cfg.EnableRedis {
		rq := notify.NewRedisQueue(notify.NewRedisClient(cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB), logger.Named("notify"))
		defer rq.Close()
		pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
		err := rq.Ping(pingCtx)
		cancel()
		if err != nil {
			return fmt.Errorf("redis connection failed: %w", err)
		}
		queue = rq
		checks = append(checks, httpapi.Check{Name: "redis", Checker: rq})
	} else {
		queue = notify.NewMemoryQueue()
	}

	deps := application.Deps{Store: store, Queue: queue, Logger: logger}
	if cfg.OCRURL != "" {
		deps.OCR = ocr.NewClient(cfg.OCRURL, cfg.ClientTimeout, logger.Named("ocr"))
	}
	if cfg.ClassifierURL != "" {
		deps.Classifier = classifier.NewClient(cfg.ClassifierURL, cfg.ClientTimeout, logger.Named("classifier"))
	}

	router := httpapi.NewRouter(httpapi.Options{
		Service:        application.New(deps),
		Checks:         checks,
		Logger:         logger.Named("http"),
		MaxUploadBytes: cfg.MaxUploadBytes,
		RateLimitRPS:   cfg.RateLimitRPS,
		RateLimitBurst: cfg.RateLimitBurst,
	})
	server := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      cfg.ClientTimeout + 15*time.Second,
		IdleTimeout:       60 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
	}()

	logger.Info("server listening",
		zap.String("port", cfg.Port),
		zap.Bool("db", cfg.EnableDB),
		zap.Bool("redis", cfg.EnableRedis),
		zap.Bool("ocr", cfg.OCRURL != ""),
		zap.Bool("classifier", cfg.ClassifierURL != ""),
	)
	return waitForShutdown(server, errCh, logger)
}

func waitForShutdown(server *http.Server, errCh <-chan error, logger *zap.Logger) error {
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(stop)

	select {
	case err := <-errCh:
		return fmt.Errorf("server error: %w", err)
	case <-stop:
	}

	logger.Info("shutting down server")
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		logger.Error("graceful shutdown failed", zap.Error(err))
		return err
	}
	return nil
}
