package main

import (
	"context"
	"errors"
	"flag"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/sirupsen/logrus"

	"mathmate/internal/auth"
	"mathmate/internal/classroom"
	"mathmate/internal/config"
	"mathmate/internal/httpapi"
	"mathmate/internal/logging"
	"mathmate/internal/metrics"
	"mathmate/internal/quiz"
	"mathmate/internal/redisstore"
	"mathmate/internal/report"
	"mathmate/internal/sqlstore"
	"mathmate/internal/student"
)

const (
	tokenTTL        = time.Hour
	sweepInterval   = 15 * time.Minute
	shutdownTimeout = 10 * time.Second
	sessionPrefix   = "mathmate:session:"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		logging.New("mathmate-server", "info").WithError(err).Fatal("load config")
	}

	addr := flag.String("addr", cfg.Addr, "HTTP listen address")
	dbDriver := flag.String("db-driver", cfg.DBDriver, "database driver (sqlite3 or postgres)")
	dbPath := flag.String("db", cfg.DBPath, "sqlite database file")
	requireAuth := flag.Bool("require-auth", cfg.RequireAuth, "require a token or session on resource routes")
	flag.Parse()

	cfg.Addr = *addr
	cfg.DBDriver = *dbDriver
	cfg.DBPath = *dbPath
	cfg.RequireAuth = *requireAuth

	log := logging.New("mathmate-server", cfg.LogLevel)
	if err := cfg.Validate(); err != nil {
		log.WithError(err).Fatal("invalid config")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	store, err := sqlstore.Open(ctx, cfg.DBDriver, cfg.DSN(), cfg.QueryTimeout)
	if err != nil {
		log.WithError(err).Fatal("open store")
	}
	defer store.Close()

	var sessions auth.SessionStore = store
	if cfg.RedisAddr != "" {
		client, err := redisstore.Connect(ctx, cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB)
		if err != nil {
			log.WithError(err).Fatal("connect redis")
		}
		defer client.Close()
		sessions = redisstore.NewSessionStore(client, sessionPrefix)
		log.WithField("addr", cfg.RedisAddr).Info("using redis session store")
	}

	authService := auth.NewService(store, sessions, auth.NewTokenIssuer(cfg.JWTSecret, tokenTTL), cfg.SessionTTL)
	go authService.RunSessionSweeper(ctx, sweepInterval, log.WithField("component", "session-sweeper"))

	api := httpapi.NewAPI(httpapi.Services{
		Auth:     authService,
		Classes:  classroom.NewService(store),
		Quizzes:  quiz.NewService(store),
		Students: student.NewService(store),
		Reports:  report.NewService(store),
		Health:   store,
	}, httpapi.Options{
		Logger:       log,
		Metrics:      metrics.New("mathmate"),
		SecureCookie: cfg.Production(),
		RequireAuth:  cfg.RequireAuth,
	})

	server := &http.Server{
		Addr:              cfg.Addr,
		Handler:           httpapi.NewRouter(api),
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	serverErr := make(chan error, 1)
	go func() {
		log.WithFields(logrus.Fields{
			"addr":      cfg.Addr,
			"db_driver": cfg.DBDriver,
			"env":       cfg.Env,
		}).Info("mathmate-server listening")
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
		close(serverErr)
	}()

	select {
	case err := <-serverErr:
		if err != nil {
			log.WithError(err).Error("server failed")
			return
		}
	case <-ctx.Done():
	}

	log.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		log.WithError(err).Warn("graceful shutdown failed")
	}
}
