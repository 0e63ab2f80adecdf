package main

import (
	"context"
	"flag"
	"log"
	"os"
	"os/signal"
	"syscall"

	"go.uber.org/zap"

	"linentrack/internal/access"
	"linentrack/internal/config"
	"linentrack/internal/infrastructure/database"
	"linentrack/internal/infrastructure/logger"
	"linentrack/internal/order"
	"linentrack/internal/server"
)

func main() {
	configPath := flag.String("config", "config.yaml", "path to the YAML config file")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("loading config: %v", err)
	}

	zapLogger, err := logger.New(cfg.Log)
	if err != nil {
		log.Fatalf("creating logger: %v", err)
	}
	defer zapLogger.Sync()

	ctx := context.Background()

	db, err := database.NewConnection(ctx, cfg.Database)
	if err != nil {
		zapLogger.Fatal("connecting to database", zap.Error(err))
	}
	defer db.Close()

	if err := database.EnsureSchema(ctx, db); err != nil {
		zapLogger.Fatal("preparing order store", zap.Error(err))
	}
	zapLogger.Info("database connected", zap.String("driver", cfg.Database.Driver))

	orders := order.NewModule(db, cfg, zapLogger)
	tokens := access.NewTokenIssuer(cfg.Access.TokenSecret, cfg.Access.TokenTTL, cfg.Access.Issuer, nil)
	gate := access.NewGate(cfg.Access.ClientCode, cfg.Access.AdminCode)

	router := server.NewRouter(server.RouterDeps{
		Orders:   orders.Controller,
		Sessions: access.NewSessionController(gate, tokens, zapLogger),
		Tokens:   tokens,
		Store:    orders.Store,
		Logger:   zapLogger,
	})

	srv := server.New(cfg.Server.Port, router, zapLogger)

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		if err := srv.Start(); err != nil {
			zapLogger.Fatal("server error", zap.Error(err))
		}
	}()

	<-quit
	zapLogger.Info("received shutdown signal")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		zapLogger.Fatal("server shutdown failed", zap.Error(err))
	}

	zapLogger.Info("server stopped gracefully")
}
