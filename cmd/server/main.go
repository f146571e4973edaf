package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"

	"github.com/dkoshelev/restobook/internal/app"
	"github.com/dkoshelev/restobook/internal/config"
	"github.com/dkoshelev/restobook/internal/notify"
	"github.com/dkoshelev/restobook/internal/repository/postgres"
	"github.com/dkoshelev/restobook/internal/service"
	"github.com/dkoshelev/restobook/internal/transport"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	logger := app.NewLogger(cfg.Environment)
	defer logger.Sync()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	pool, err := pgxpool.New(ctx, cfg.DBDSN)
	if err != nil {
		logger.Fatal("connect to database", zap.Error(err))
	}
	defer pool.Close()

	migrator, err := app.NewMigrator(pool, cfg.MigrationsPath, logger)
	if err != nil {
		logger.Fatal("create migrator", zap.Error(err))
	}
	if err := migrator.Run(ctx); err != nil {
		logger.Fatal("run migrations", zap.Error(err))
	}
	migrator.Close()

	store := postgres.NewStore(pool)

	hub := notify.NewHub(logger)
	targets := []notify.Notifier{hub}
	if cfg.TelegramToken != "" {
		telegram, err := notify.NewTelegramNotifier(cfg.TelegramToken, cfg.TelegramChatID, logger)
		if err != nil {
			logger.Fatal("create telegram notifier", zap.Error(err))
		}
		targets = append(targets, telegram)
		logger.Info("telegram staff alerts enabled")
	}
	dispatcher := notify.NewDispatcher(logger, targets...)
	defer dispatcher.Close()

	bookings := service.NewBookingService(store, dispatcher, logger)
	tables := service.NewTableService(store, logger)
	availability := service.NewAvailabilityFinder(store, logger)

	router := transport.InitRoutes(
		transport.NewTableHandler(tables, availability, cfg.DefaultDuration),
		transport.NewReservationHandler(bookings, cfg.DefaultDuration),
		hub,
		logger,
	)

	server := app.NewServer(cfg.HTTPAddr, router, logger)
	go func() {
		if err := server.Run(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("http server", zap.Error(err))
		}
	}()

	logger.Info("restobook started", zap.String("environment", cfg.Environment))

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("shutting down")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("shutdown http server", zap.Error(err))
	}
}
