package usecase

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/yourusername/telegram-shop-bot/internal/domain/entity"
	"github.com/yourusername/telegram-shop-bot/internal/domain/repository"
)

// CreateProductInput carries the fields collected by the add-product wizard.
type CreateProductInput struct {
	Name        string
	Description string
	Price       float64
	PhotoID     string
	Quantity    int
}

// ProductUseCase is the catalog business logic.
type ProductUseCase interface {
	// Create validates the input, assigns a fresh id and stores the product.
	Create(ctx context.Context, input CreateProductInput) (entity.Product, error)

	// GetAll returns every product.
	GetAll(ctx context.Context) ([]entity.Product, error)

	// GetByID returns one product, or repository.ErrProductNotFound.
	GetByID(ctx context.Context, id string) (*entity.Product, error)

	// Delete removes a product; a missing id is a silent no-op.
	Delete(ctx context.Context, id string) error
}

type productUseCase struct {
	productRepo repository.ProductRepository
}

// NewProductUseCase creates a new ProductUseCase.
func NewProductUseCase(productRepo repository.ProductRepository) ProductUseCase {
	return &productUseCase{
		productRepo: productRepo,
	}
}

// Create validates the input, assigns a fresh id and stores the product.
func (u *productUseCase) Create(ctx context.Context, input CreateProductInput) (entity.Product, error) {
	if strings.TrimSpace(input.Name) == "" {
		return entity.Product{}, fmt.Errorf("product name must not be empty")
	}
	if input.Price < 0 {
		return entity.Product{}, fmt.Errorf("product price must not be negative")
	}
	if input.Quantity < 0 {
		return entity.Product{}, fmt.Errorf("product quantity must not be negative")
	}

	product := entity.Product{
		ID:          uuid.New().String(),
		Name:        input.Name,
		Description: input.Description,
		Price:       input.Price,
		PhotoID:     input.PhotoID,
		Quantity:    input.Quantity,
		CreatedAt:   time.Now(),
	}

	if err := u.productRepo.SaveProduct(ctx, product); err != nil {
		return entity.Product{}, fmt.Errorf("failed to save product: %w", err)
	}
	return product, nil
}

// GetAll returns every product.
func (u *productUseCase) GetAll(ctx context.Context) ([]entity.Product, error) {
	return u.productRepo.GetAll(ctx)
}

// GetByID returns one product by its id.
func (u *productUseCase) GetByID(ctx context.Context, id string) (*entity.Product, error) {
	return u.productRepo.GetByID(ctx, id)
}

// Delete removes a product.
func (u *productUseCase) Delete(ctx context.Context, id string) error {
	return u.productRepo.Delete(ctx, id)
}
