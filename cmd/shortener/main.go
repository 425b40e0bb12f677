package main

import (
	"context"
	"log"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"

	"github.com/aseptimu/bijective-shortener/internal/app/config"
	"github.com/aseptimu/bijective-shortener/internal/app/logger"
	"github.com/aseptimu/bijective-shortener/internal/app/server"
)

func main() {
	if err := run(); err != nil {
		log.Fatal(err)
	}
}

// run выполняет всю работу main; отложенные вызовы отрабатывают до выхода процесса.
func run() error {
	// .env необязателен
	_ = godotenv.Load()

	cfg, err := config.NewConfig()
	if err != nil {
		return err
	}

	sugar, err := logger.New(cfg.LogLevel)
	if err != nil {
		return err
	}
	defer sugar.Sync()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	sugar.Infow("Starting server", "addr", cfg.ServerAddress, "baseURL", cfg.BaseAddress)
	if err := server.Run(ctx, cfg, sugar); err != nil {
		sugar.Errorw("Server stopped with error", "error", err, "addr", cfg.ServerAddress)
		return err
	}
	return nil
}
