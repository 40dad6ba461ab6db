// @title       Code Generator API
// @version     1.0
// @description Generates and persists batches of unique 7-character base-62 codes.
// @BasePath    /api
package main

import (
	"context"
	"errors"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"
	"gorm.io/gorm"

	"github.com/tbourn/go-code-generator/internal/config"
	httpapi "github.com/tbourn/go-code-generator/internal/http"
	"github.com/tbourn/go-code-generator/internal/observability"
	"github.com/tbourn/go-code-generator/internal/repo"
	"github.com/tbourn/go-code-generator/internal/services"
	"github.com/tbourn/go-code-generator/internal/sysutil"
)

// version is overridden at build time with -ldflags "-X main.version=...".
var version = "dev"

const (
	shutdownTimeout = 30 * time.Second
	purgeInterval   = time.Hour
)

func main() {
	// A missing .env is fine; the environment wins either way.
	_ = godotenv.Load()

	cfg := config.MustLoad()
	gin.SetMode(cfg.GinMode)

	service := sysutil.FirstNonEmpty(cfg.OTEL.ServiceName, "code-generator")
	logger := sysutil.SetupLogger(os.Stdout, cfg.LogLevel, cfg.LogPretty, service)
	logger.Info().Str("version", version).Str("db_driver", cfg.DB.Driver).Msg("starting code generator")

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	shutdownOTel, err := observability.SetupOTel(ctx, cfg.OTEL, version)
	if err != nil {
		logger.Fatal().Err(err).Msg("otel setup failed")
	}

	db, err := repo.Open(repo.Options{
		Driver:       cfg.DB.Driver,
		Path:         cfg.DB.Path,
		DSN:          cfg.DB.DSN,
		MaxOpenConns: cfg.DB.MaxOpenConns,
		Tracing:      cfg.OTEL.Enabled,
	})
	if err != nil {
		logger.Fatal().Err(err).Msg("open database")
	}
	if err := repo.AutoMigrate(db); err != nil {
		logger.Fatal().Err(err).Msg("migrate database")
	}

	gen, err := services.NewGenerationService(ctx, services.NewGormStore(db), services.GenerationOptions{
		ChunkSize:       cfg.Generation.ChunkSize,
		InsertChunkSize: cfg.Generation.InsertChunkSize,
		MaxWorkers:      cfg.Generation.InsertMaxWorkers,
		InsertTimeout:   cfg.Generation.InsertTimeout,
		EncodeWorkers:   cfg.Generation.EncodeWorkers,
	})
	if err != nil {
		logger.Fatal().Err(err).Msg("init generation service")
	}

	go purgeIdempotency(ctx, db, purgeInterval)

	r := gin.New()
	httpapi.RegisterRoutes(r, db, gen, cfg)

	srv := &http.Server{
		Addr:              net.JoinHostPort("", cfg.Port),
		Handler:           r,
		ReadTimeout:       cfg.ReadTimeout,
		ReadHeaderTimeout: cfg.ReadHeaderTimeout,
		WriteTimeout:      cfg.WriteTimeout,
		IdleTimeout:       cfg.IdleTimeout,
		MaxHeaderBytes:    cfg.MaxHeaderBytes,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info().Str("addr", srv.Addr).Str("base_path", cfg.APIBasePath).Msg("http server listening")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case <-ctx.Done():
		logger.Info().Msg("shutdown signal received")
	case err := <-errCh:
		if err != nil {
			logger.Error().Err(err).Msg("http server failed")
		}
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	// In-flight generate calls finish and close their requests before the
	// pool goes away.
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error().Err(err).Msg("http shutdown")
	}
	if err := shutdownOTel(shutdownCtx); err != nil {
		logger.Warn().Err(err).Msg("otel shutdown")
	}
	if sqlDB, err := db.DB(); err == nil {
		_ = sqlDB.Close()
	}
	logger.Info().Msg("code generator stopped")
}

// purgeIdempotency drops expired idempotency records every interval until
// ctx is cancelled.
func purgeIdempotency(ctx context.Context, db *gorm.DB, interval time.Duration) {
	t := time.NewTicker(interval)
	defer t.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case now := <-t.C:
			n, err := repo.PurgeIdempotency(ctx, db, now.UTC())
			if err != nil {
				log.Warn().Err(err).Msg("purge idempotency")
				continue
			}
			if n > 0 {
				log.Debug().Int64("deleted", n).Msg("purged expired idempotency keys")
			}
		}
	}
}
