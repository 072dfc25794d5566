package storage

import (
	"context"
	"sync"

	"github.com/yourusername/telegram-shop-bot/internal/domain/entity"
	"github.com/yourusername/telegram-shop-bot/internal/domain/repository"
)

type memoryAdminRepository struct {
	mu      sync.RWMutex
	allowed map[int64]bool
	actions []entity.AdminAction
}

// NewMemoryAdminRepository builds an admin repository from the static
// allow-list supplied at startup.
func NewMemoryAdminRepository(adminIDs []int64) repository.AdminRepository {
	allowed := make(map[int64]bool, len(adminIDs))
	for _, id := range adminIDs {
		allowed[id] = true
	}
	return &memoryAdminRepository{
		allowed: allowed,
		actions: []entity.AdminAction{},
	}
}

// IsAdmin reports whether the user is on the allow-list.
func (m *memoryAdminRepository) IsAdmin(ctx context.Context, userID int64) (bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	return m.allowed[userID], nil
}

// LogAction records an admin action.
func (m *memoryAdminRepository) LogAction(ctx context.Context, action entity.AdminAction) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.actions = append(m.actions, action)
	return nil
}

// GetActions returns the most recent actions, newest first.
func (m *memoryAdminRepository) GetActions(ctx context.Context, limit int) ([]entity.AdminAction, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	actions := make([]entity.AdminAction, 0, len(m.actions))
	for i := len(m.actions) - 1; i >= 0; i-- {
		actions = append(actions, m.actions[i])
		if limit > 0 && len(actions) >= limit {
			break
		}
	}
	return actions, nil
}
