package repository

import (
	"context"

	"github.com/yourusername/telegram-shop-bot/internal/domain/entity"
)

// AdminRepository answers admin membership checks and keeps the audit trail.
type AdminRepository interface {
	// IsAdmin reports whether the user is on the admin allow-list.
	IsAdmin(ctx context.Context, userID int64) (bool, error)

	// LogAction records an admin action.
	LogAction(ctx context.Context, action entity.AdminAction) error

	// GetActions returns the most recent actions, newest first.
	GetActions(ctx context.Context, limit int) ([]entity.AdminAction, error)
}
