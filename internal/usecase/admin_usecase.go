package usecase

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/yourusername/telegram-shop-bot/internal/domain/entity"
	"github.com/yourusername/telegram-shop-bot/internal/domain/repository"
)

// AdminUseCase is the admin-side business logic.
type AdminUseCase interface {
	// IsAdmin reports whether the user is on the admin allow-list.
	IsAdmin(ctx context.Context, userID int64) (bool, error)

	// ImportCatalog parses an uploaded spreadsheet and bulk-inserts the
	// products. Returns the number of imported products.
	ImportCatalog(ctx context.Context, userID int64, fileData []byte, filename string) (int, error)

	// LogAction records a catalog mutation in the audit trail.
	LogAction(ctx context.Context, userID int64, action, details string) error

	// RecentActions returns the latest audit records, newest first.
	RecentActions(ctx context.Context, limit int) ([]entity.AdminAction, error)
}

type adminUseCase struct {
	adminRepo   repository.AdminRepository
	productRepo repository.ProductRepository
	importer    repository.CatalogImporter
}

// NewAdminUseCase creates a new AdminUseCase.
func NewAdminUseCase(
	adminRepo repository.AdminRepository,
	productRepo repository.ProductRepository,
	importer repository.CatalogImporter,
) AdminUseCase {
	return &adminUseCase{
		adminRepo:   adminRepo,
		productRepo: productRepo,
		importer:    importer,
	}
}

// IsAdmin reports whether the user is on the admin allow-list.
func (u *adminUseCase) IsAdmin(ctx context.Context, userID int64) (bool, error) {
	return u.adminRepo.IsAdmin(ctx, userID)
}

// ImportCatalog parses an uploaded spreadsheet and bulk-inserts the products.
func (u *adminUseCase) ImportCatalog(ctx context.Context, userID int64, fileData []byte, filename string) (int, error) {
	isAdmin, err := u.adminRepo.IsAdmin(ctx, userID)
	if err != nil {
		return 0, err
	}
	if !isAdmin {
		return 0, fmt.Errorf("user %d is not an admin", userID)
	}

	products, err := u.importer.ParseProducts(ctx, fileData, filename)
	if err != nil {
		return 0, fmt.Errorf("failed to parse catalog file: %w", err)
	}

	now := time.Now()
	for i := range products {
		products[i].ID = uuid.New().String()
		products[i].CreatedAt = now
	}

	if err := u.productRepo.SaveMany(ctx, products); err != nil {
		return 0, fmt.Errorf("failed to save imported products: %w", err)
	}

	_ = u.LogAction(ctx, userID, "import_catalog", fmt.Sprintf("%d products from %s", len(products), filename))

	return len(products), nil
}

// LogAction records a catalog mutation in the audit trail.
func (u *adminUseCase) LogAction(ctx context.Context, userID int64, action, details string) error {
	return u.adminRepo.LogAction(ctx, entity.AdminAction{
		ID:        uuid.New().String(),
		UserID:    userID,
		Action:    action,
		Details:   details,
		Timestamp: time.Now(),
	})
}

// RecentActions returns the latest audit records, newest first.
func (u *adminUseCase) RecentActions(ctx context.Context, limit int) ([]entity.AdminAction, error) {
	return u.adminRepo.GetActions(ctx, limit)
}
