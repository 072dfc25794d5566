package storage

import (
	"context"
	"sort"
	"sync"

	"github.com/yourusername/telegram-shop-bot/internal/domain/entity"
	"github.com/yourusername/telegram-shop-bot/internal/domain/repository"
)

type memoryProductRepository struct {
	mu       sync.RWMutex
	products map[string]entity.Product // key: product ID
}

// NewMemoryProductRepository creates an in-memory product repository. Used
// in tests and as a throwaway store when no db path is configured.
func NewMemoryProductRepository() repository.ProductRepository {
	return &memoryProductRepository{
		products: make(map[string]entity.Product),
	}
}

// SaveProduct inserts one product.
func (m *memoryProductRepository) SaveProduct(ctx context.Context, product entity.Product) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.products[product.ID] = product
	return nil
}

// SaveMany inserts several products.
func (m *memoryProductRepository) SaveMany(ctx context.Context, products []entity.Product) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	for _, product := range products {
		m.products[product.ID] = product
	}
	return nil
}

// GetByID returns one product by its id.
func (m *memoryProductRepository) GetByID(ctx context.Context, id string) (*entity.Product, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	product, exists := m.products[id]
	if !exists {
		return nil, repository.ErrProductNotFound
	}
	return &product, nil
}

// GetAll returns every product in insertion order.
func (m *memoryProductRepository) GetAll(ctx context.Context) ([]entity.Product, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	products := make([]entity.Product, 0, len(m.products))
	for _, product := range m.products {
		products = append(products, product)
	}

	sort.Slice(products, func(i, j int) bool {
		if !products[i].CreatedAt.Equal(products[j].CreatedAt) {
			return products[i].CreatedAt.Before(products[j].CreatedAt)
		}
		return products[i].ID < products[j].ID
	})

	return products, nil
}

// Delete removes a product. Deleting a missing id is a no-op.
func (m *memoryProductRepository) Delete(ctx context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	delete(m.products, id)
	return nil
}
