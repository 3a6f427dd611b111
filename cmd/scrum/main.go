package main

import (
	"context"
	"errors"
	"flag"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/redis/go-redis/v9"

	"scrum/internal/models"
	"scrum/internal/server"
	"scrum/internal/storage/cache"
	"scrum/internal/storage/sqlite"
	"scrum/internal/util"
)

func main() {
	addrFlag := flag.String("addr", util.EnvOrDefault("SCRUM_ADDR", ":8080"), "HTTP listen address")
	dbFlag := flag.String("db", util.EnvOrDefault("SCRUM_DB_PATH", "data/scrum.db"), "Path to sqlite database file")
	staticFlag := flag.String("static", util.EnvOrDefault("SCRUM_STATIC_DIR", "web/dist"), "Directory with built frontend")
	identityFlag := flag.String("username-field", util.EnvOrDefault("SCRUM_USERNAME_FIELD", "username"), "User field used as the public identity (username or email)")
	redisFlag := flag.String("redis", util.EnvOrDefault("SCRUM_REDIS_URL", ""), "Redis URL for the user lookup cache; empty disables caching")
	ttlFlag := flag.Duration("cache-ttl", util.EnvDurationOrDefault("SCRUM_CACHE_TTL", 5*time.Minute), "User lookup cache TTL")
	flag.Parse()

	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}))

	identity, err := models.ParseIdentityField(*identityFlag)
	if err != nil {
		logger.Error("invalid configuration", slog.String("error", err.Error()))
		os.Exit(1)
	}

	store, err := sqlite.Open(*dbFlag, logger)
	if err != nil {
		logger.Error("unable to open database", slog.String("error", err.Error()))
		os.Exit(1)
	}
	defer store.Close()

	var backend server.Store = store
	if *redisFlag != "" {
		opts, err := redis.ParseURL(*redisFlag)
		if err != nil {
			logger.Error("invalid redis url", slog.String("error", err.Error()))
			os.Exit(1)
		}
		rc := redis.NewClient(opts)
		defer rc.Close()
		backend = cache.New(store, rc, *ttlFlag)
		logger.Info("user lookup cache enabled", slog.String("redis", opts.Addr), slog.Duration("ttl", *ttlFlag))
	}

	srv, err := server.New(backend, logger, server.Config{
		StaticDir:     *staticFlag,
		IdentityField: identity,
	})
	if err != nil {
		logger.Error("unable to build server", slog.String("error", err.Error()))
		os.Exit(1)
	}

	httpServer := &http.Server{
		Addr:    *addrFlag,
		Handler: srv.Engine(),
	}

	go func() {
		logger.Info("starting server", slog.String("addr", httpServer.Addr), slog.String("identity_field", string(identity)))
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("server stopped unexpectedly", slog.String("error", err.Error()))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := httpServer.Shutdown(ctx); err != nil {
		logger.Error("failed to shutdown server", slog.String("error", err.Error()))
	}

	logger.Info("server stopped")
}
