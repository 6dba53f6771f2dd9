package main

import (
	"context"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"basket-backend/internal/app"
	"basket-backend/internal/config"
	"basket-backend/internal/db"
	"basket-backend/internal/router"

	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

func main() {
	configPath := flag.String("config", "config.yaml", "path to the configuration file")
	flag.Parse()

	logger := logrus.New()
	logger.SetFormatter(&logrus.JSONFormatter{})

	cfg, err := config.Load(*configPath)
	if err != nil {
		logger.WithError(err).Fatal("failed to load configuration")
	}
	if level, err := logrus.ParseLevel(cfg.LogLevel); err == nil {
		logger.SetLevel(level)
	}

	var gdb *gorm.DB
	if cfg.Database.Driver == "postgres" {
		gdb, err = db.Connect(cfg.Database, logger)
		if err != nil {
			logger.WithError(err).Fatal("failed to initialize database")
		}
	} else {
		logger.Warn("running on the in-memory database driver, state will not survive restarts")
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	container, err := app.NewContainer(ctx, cfg, gdb, logger)
	if err != nil {
		logger.WithError(err).Fatal("failed to build service container")
	}
	defer container.Cleanup()

	engine := router.SetupRouter(cfg, container, logger)
	srv := &http.Server{
		Addr:    fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port),
		Handler: engine,
	}

	go func() {
		logger.WithField("addr", srv.Addr).Info("server listening")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.WithError(err).Error("server stopped")
			stop()
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.WithError(err).Error("graceful shutdown failed")
		os.Exit(1)
	}
}
