// @title Stashbox API
// @version 1.0
// @description Per-user file storage with a fixed quota.
// @BasePath /
package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rohits-web03/stashbox/internal/api"
	"github.com/rohits-web03/stashbox/internal/api/handlers"
	"github.com/rohits-web03/stashbox/internal/api/middleware"
	"github.com/rohits-web03/stashbox/internal/api/services"
	"github.com/rohits-web03/stashbox/internal/config"
	"github.com/rohits-web03/stashbox/internal/logging"
	"github.com/rohits-web03/stashbox/internal/repositories"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
	"golang.org/x/sync/errgroup"
)

// Multipart framing on top of the quota itself.
const uploadOverhead = 1 << 20

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "invalid configuration: %v\n", err)
		os.Exit(1)
	}

	log, err := logging.New(cfg.Environment)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to build logger: %v\n", err)
		os.Exit(1)
	}
	defer func() { _ = log.Sync() }()

	if err := run(cfg, log); err != nil {
		log.Fatal("server stopped", zap.Error(err))
	}
}

func run(cfg config.Config, log *zap.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Connect to database
	db, err := repositories.ConnectDatabase(cfg.DBDriver, cfg.DBURL, log)
	if err != nil {
		return err
	}

	blobs, err := newBlobStore(cfg, log)
	if err != nil {
		return err
	}

	users := repositories.NewUserRepository(db)
	files := repositories.NewFileRepository(db)

	creds, err := services.NewCredentials(users, bcrypt.DefaultCost, log)
	if err != nil {
		return err
	}
	sessions := services.NewSessions(cfg.JWTSecret, cfg.SessionTTL)
	quota := services.NewQuota(files, cfg.QuotaBytes)

	var google *services.GoogleAuth
	if cfg.Google.Enabled() {
		google = services.NewGoogleAuth(cfg.Google, users, log)
	}

	h := handlers.New(handlers.Deps{
		Credentials:    creds,
		Sessions:       sessions,
		Uploads:        services.NewUploads(db, users, files, blobs, quota, services.NewUserLocks(), log),
		Files:          services.NewFiles(files, blobs, quota, log),
		Google:         google,
		SecureCookies:  cfg.IsProduction(),
		FrontendURL:    cfg.Google.FrontendURL,
		MaxUploadBytes: cfg.QuotaBytes + uploadOverhead,
		Logger:         log,
	})

	var limiter *middleware.RateLimiter
	if cfg.AuthRatePerMinute > 0 {
		limiter, err = middleware.NewRateLimiter(cfg.AuthRatePerMinute, cfg.AuthRateBurst, log)
		if err != nil {
			return err
		}
	}

	server := &http.Server{
		Addr:    fmt.Sprintf(":%s", cfg.Port),
		Handler: api.SetupRouter(h, sessions, limiter, cfg.CorsConfig, log),
		// Timeouts prevent resource exhaustion from slow clients
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       60 * time.Second,
		WriteTimeout:      60 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		log.Info("starting server",
			zap.String("port", cfg.Port),
			zap.String("db", cfg.DBDriver),
			zap.String("storage", cfg.Storage.Backend),
			zap.Int64("quotaBytes", cfg.QuotaBytes),
		)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("listen on port %s: %w", cfg.Port, err)
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		log.Info("shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
		defer cancel()
		return server.Shutdown(shutdownCtx)
	})

	if err := g.Wait(); err != nil {
		return err
	}

	if sqlDB, err := db.DB(); err == nil {
		_ = sqlDB.Close()
	}
	return nil
}

func newBlobStore(cfg config.Config, log *zap.Logger) (repositories.BlobStore, error) {
	switch cfg.Storage.Backend {
	case config.BackendR2:
		return repositories.NewR2BlobStore(cfg.R2, log), nil
	default:
		return repositories.NewLocalBlobStore(cfg.Storage.Dir)
	}
}
