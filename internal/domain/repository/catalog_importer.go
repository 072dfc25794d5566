package repository

import (
	"context"

	"github.com/yourusername/telegram-shop-bot/internal/domain/entity"
)

// CatalogImporter parses an uploaded spreadsheet into products.
type CatalogImporter interface {
	// ParseProducts reads products from raw file bytes. Returned products
	// carry no ID; the use case assigns them before saving.
	ParseProducts(ctx context.Context, data []byte, filename string) ([]entity.Product, error)
}
