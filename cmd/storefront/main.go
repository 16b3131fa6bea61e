package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/halwiz/storefront/internal/config"
	"github.com/halwiz/storefront/internal/httpserver"
	"github.com/halwiz/storefront/internal/models"
	"github.com/halwiz/storefront/internal/repo"
	"github.com/halwiz/storefront/internal/service"
	"github.com/halwiz/storefront/migrations"
	"github.com/halwiz/storefront/pkg/cache"
	"github.com/halwiz/storefront/pkg/db"
	"github.com/halwiz/storefront/pkg/events"
	"github.com/halwiz/storefront/pkg/logging"
	"github.com/halwiz/storefront/pkg/otp"
	"github.com/halwiz/storefront/pkg/storage"
)

func main() {
	cfg := config.Load()
	logger := logging.New(cfg.LogLevel).With("service", cfg.ServiceName)
	slog.SetDefault(logger)

	if err := run(cfg, logger); err != nil {
		logger.Error("fatal", "error", err)
		os.Exit(1)
	}
}

func run(cfg config.StorefrontConfig, logger *slog.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	gdb, err := db.Open(ctx, cfg.DBDriver, cfg.DatabaseURL)
	if err != nil {
		return err
	}
	defer func() {
		if err := db.Close(gdb); err != nil {
			logger.Error("db_close_failed", "error", err)
		}
	}()

	if cfg.DBAutoMigrate || cfg.DBDriver != db.DriverPostgres {
		if err := gdb.WithContext(ctx).AutoMigrate(models.All()...); err != nil {
			return fmt.Errorf("auto migrate: %w", err)
		}
		logger.Info("schema_auto_migrated", "driver", cfg.DBDriver)
	} else {
		sqlDB, err := gdb.DB()
		if err != nil {
			return fmt.Errorf("get sql db: %w", err)
		}
		if err := migrations.Up(ctx, sqlDB); err != nil {
			return err
		}
		logger.Info("migrations_applied")
	}

	var publisher events.Publisher = events.Nop{}
	if len(cfg.KafkaBrokers) > 0 {
		publisher = events.NewProducer(cfg.KafkaBrokers, cfg.KafkaTopicPrefix)
		logger.Info("kafka_enabled", "brokers", cfg.KafkaBrokers)
	} else {
		logger.Warn("kafka_disabled", "reason", "KAFKA_BROKERS is empty")
	}
	defer func() {
		if err := publisher.Close(); err != nil {
			logger.Error("kafka_close_failed", "error", err)
		}
	}()

	r := repo.New(gdb)
	catalog := &service.CatalogService{Repo: r, CacheTTL: cfg.ProductCacheTTL, Events: publisher}

	if cfg.RedisAddr != "" {
		rdb, err := cache.NewRedisClient(ctx, cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB)
		if err != nil {
			return err
		}
		defer func(rdb *redis.Client) {
			if err := rdb.Close(); err != nil {
				logger.Error("redis_close_failed", "error", err)
			}
		}(rdb)
		catalog.Cache = cache.New(rdb, cfg.ServiceName+":")
	} else {
		logger.Warn("product_cache_disabled", "reason", "REDIS_ADDR is empty")
	}

	if cfg.S3.Bucket != "" {
		store, err := storage.NewS3Store(ctx, cfg.S3)
		if err != nil {
			return err
		}
		catalog.Images = store
	} else {
		logger.Warn("image_storage_disabled", "reason", "S3_BUCKET is empty")
	}

	deps := &httpserver.Deps{
		DB:        gdb,
		JWTSecret: cfg.JWTSecret,
		Auth: &httpserver.AuthHTTP{Svc: &service.AuthService{
			Repo: r, Secret: cfg.JWTSecret, SessionTTL: cfg.SessionTTL, Events: publisher,
		}},
		Profile:                &httpserver.ProfileHTTP{Svc: &service.ProfileService{Repo: r, OTP: otp.NewClient(cfg.OTP)}},
		Catalog:                &httpserver.CatalogHTTP{Svc: catalog},
		Cart:                   &httpserver.CartHTTP{Svc: &service.CartService{Repo: r}},
		Order:                  &httpserver.OrderHTTP{Svc: &service.OrderService{Repo: r, Events: publisher, Cache: catalog.Cache}},
		Rating:                 &httpserver.RatingHTTP{Svc: &service.RatingService{Repo: r, Events: publisher}},
		PromotionRequiresAdmin: cfg.AdminPromotionRequiresAdmin,
	}

	e := httpserver.NewServer(deps, httpserver.ServerOptions{
		Logger:      logger,
		CORSOrigins: cfg.CORSOrigins,
	})

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.ServerPort),
		Handler:           e,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("http_listening", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("http server: %w", err)
		}
	case <-ctx.Done():
	}

	logger.Info("shutting_down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("http_shutdown_failed", "error", err)
	}
	logger.Info("shutdown_complete")
	return nil
}
