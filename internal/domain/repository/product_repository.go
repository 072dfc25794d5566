package repository

import (
	"context"
	"errors"

	"github.com/yourusername/telegram-shop-bot/internal/domain/entity"
)

// ErrProductNotFound is returned when a product lookup finds no row.
var ErrProductNotFound = errors.New("product not found")

// ProductRepository is the persistence boundary for the catalog.
type ProductRepository interface {
	// SaveProduct inserts one product.
	SaveProduct(ctx context.Context, product entity.Product) error

	// SaveMany inserts products atomically (bulk import).
	SaveMany(ctx context.Context, products []entity.Product) error

	// GetByID returns the product with the given id, or ErrProductNotFound.
	GetByID(ctx context.Context, id string) (*entity.Product, error)

	// GetAll returns every product.
	GetAll(ctx context.Context) ([]entity.Product, error)

	// Delete removes the product with the given id. A missing id is not
	// an error.
	Delete(ctx context.Context, id string) error
}
