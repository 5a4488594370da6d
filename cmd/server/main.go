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

	"github.com/rohits-web03/otadash/internal/api"
	"github.com/rohits-web03/otadash/internal/api/handlers"
	"github.com/rohits-web03/otadash/internal/api/middleware"
	"github.com/rohits-web03/otadash/internal/api/services"
	"github.com/rohits-web03/otadash/internal/auth"
	"github.com/rohits-web03/otadash/internal/config"
	"github.com/rohits-web03/otadash/internal/explorer"
	"github.com/rohits-web03/otadash/internal/logs"
	"github.com/rohits-web03/otadash/internal/repositories"
	"github.com/rohits-web03/otadash/internal/storage"
	"github.com/rohits-web03/otadash/internal/summary"
	"github.com/rohits-web03/otadash/internal/views"
)

const sweepInterval = time.Minute

// @title OTA Dashboard API
// @version 1.0
// @description Backend of the OTA firmware update dashboard: devices, update sessions, firmware storage and users.
// @host localhost:8080
// @BasePath /
func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	logs.Init(logs.Options{Level: cfg.Logging.Level, Format: cfg.Logging.Format, File: cfg.Logging.File})
	log := logs.WithComponent("server")

	db, err := repositories.ConnectDatabase(cfg.Database.Driver, cfg.Database.URL)
	if err != nil {
		log.WithError(err).Fatal("database unavailable")
	}
	repos := repositories.NewRepos(db)

	var blobs storage.BlobStore
	if r2, err := repositories.NewR2Store(cfg.R2); err == nil {
		blobs = r2
	} else {
		log.WithError(err).Warn("R2 not configured, firmware storage is kept in memory")
		blobs = storage.NewMemoryStore()
	}

	var cache repositories.Cache = repositories.NewMemoryCache()
	if cfg.Redis.Addr != "" {
		rc, err := repositories.NewRedisCache(cfg.Redis)
		if err != nil {
			log.WithError(err).Warn("redis unavailable, using in-memory cache")
		} else {
			defer rc.Close()
			cache = rc
		}
	}

	sessions := auth.NewManager(auth.NewTokens(cfg.JWTSecret, auth.DefaultTokenTTL), repos.Users, cache)
	boards := views.NewRegistry(explorer.BoardFactory(explorer.Sources{
		Users:    repos.Users,
		Products: repos.Products,
		Devices:  repos.Devices,
		Sessions: repos.Sessions,
	}))
	sessions.OnDispose(boards.Drop)

	h := handlers.New(handlers.Deps{
		Config:   cfg,
		Repos:    repos,
		Accounts: auth.NewAccounts(repos.Users, cfg.OwnerEmail),
		Sessions: sessions,
		Explorer: explorer.New(repos.Users, repos.Products, repos.Devices),
		Summary:  summary.New(cfg.Summary, cache),
		Storage:  storage.NewBrowser(blobs, cfg.R2.RootPrefix),
		Boards:   boards,
		Cache:    cache,
		OAuth:    services.NewGoogleOAuthConfig(cfg.Google),
	})

	server := &http.Server{
		Addr:    fmt.Sprintf(":%s", cfg.Port),
		Handler: api.NewRouter(h, middleware.NewAuthenticator(sessions), cfg.CorsConfig()),
		// Timeouts prevent resource exhaustion from slow clients
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       60 * time.Second,
		WriteTimeout:      60 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	go func() {
		ticker := time.NewTicker(sweepInterval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case now := <-ticker.C:
				if n := sessions.Sweep(now); n > 0 {
					log.WithField("sessions", n).Debug("expired sessions disposed")
				}
			}
		}
	}()

	go func() {
		log.Infof("Starting OTA dashboard server on port: %s", cfg.Port)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.WithError(err).Fatalf("Could not listen on port %s", cfg.Port)
		}
	}()

	<-ctx.Done()
	log.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		log.WithError(err).Error("graceful shutdown failed")
	}
}
