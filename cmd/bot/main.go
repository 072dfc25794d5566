package main

import (
	"context"
	"errors"
	"log"
	"os/signal"
	"syscall"

	"github.com/yourusername/telegram-shop-bot/config"
	"github.com/yourusername/telegram-shop-bot/internal/delivery/telegram"
	"github.com/yourusername/telegram-shop-bot/internal/infrastructure/parser"
	"github.com/yourusername/telegram-shop-bot/internal/infrastructure/storage"
	"github.com/yourusername/telegram-shop-bot/internal/usecase"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	productRepo, err := storage.NewSQLiteProductRepository(cfg.ProductsDBPath)
	if err != nil {
		log.Fatalf("Failed to open product storage: %v", err)
	}

	adminRepo := storage.NewMemoryAdminRepository(cfg.AdminIDs)
	importer := parser.NewExcelImporter()

	productUseCase := usecase.NewProductUseCase(productRepo)
	adminUseCase := usecase.NewAdminUseCase(adminRepo, productRepo, importer)

	handler, err := telegram.NewBotHandler(cfg.TelegramToken, productUseCase, adminUseCase)
	if err != nil {
		log.Fatalf("Failed to create bot handler: %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := handler.Start(ctx); err != nil && !errors.Is(err, context.Canceled) {
		log.Fatalf("Bot stopped: %v", err)
	}
}
