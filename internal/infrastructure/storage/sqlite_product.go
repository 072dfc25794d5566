package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "github.com/mattn/go-sqlite3"
	"github.com/yourusername/telegram-shop-bot/internal/domain/entity"
	"github.com/yourusername/telegram-shop-bot/internal/domain/repository"
)

type sqliteProductRepository struct {
	db *sql.DB
}

// NewSQLiteProductRepository opens (creating if needed) the product database
// and ensures the schema exists. The handle is long-lived and shared by all
// operations.
func NewSQLiteProductRepository(dbPath string) (repository.ProductRepository, error) {
	if dbPath == "" {
		return nil, errors.New("db path must not be empty")
	}

	if err := os.MkdirAll(filepath.Dir(dbPath), 0o755); err != nil {
		return nil, fmt.Errorf("failed to create db directory: %w", err)
	}

	db, err := sql.Open("sqlite3", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open sqlite: %w", err)
	}

	if err := createProductSchema(db); err != nil {
		return nil, err
	}

	return &sqliteProductRepository{db: db}, nil
}

func createProductSchema(db *sql.DB) error {
	const schema = `
CREATE TABLE IF NOT EXISTS products (
	id TEXT PRIMARY KEY,
	name TEXT NOT NULL,
	description TEXT,
	price REAL NOT NULL,
	photo_id TEXT,
	quantity INTEGER NOT NULL,
	created_at TIMESTAMP NOT NULL
);
`
	_, err := db.Exec(schema)
	if err != nil {
		return fmt.Errorf("failed to create schema: %w", err)
	}
	return nil
}

// SaveProduct inserts one product.
func (s *sqliteProductRepository) SaveProduct(ctx context.Context, product entity.Product) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO products (id, name, description, price, photo_id, quantity, created_at) VALUES (?, ?, ?, ?, ?, ?, ?)`,
		product.ID, product.Name, product.Description, product.Price, product.PhotoID, product.Quantity, product.CreatedAt)
	return err
}

// SaveMany inserts products in a single transaction.
func (s *sqliteProductRepository) SaveMany(ctx context.Context, products []entity.Product) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}

	for _, product := range products {
		_, err = tx.ExecContext(ctx,
			`INSERT INTO products (id, name, description, price, photo_id, quantity, created_at) VALUES (?, ?, ?, ?, ?, ?, ?)`,
			product.ID, product.Name, product.Description, product.Price, product.PhotoID, product.Quantity, product.CreatedAt)
		if err != nil {
			tx.Rollback()
			return err
		}
	}

	return tx.Commit()
}

// GetByID returns one product by its id.
func (s *sqliteProductRepository) GetByID(ctx context.Context, id string) (*entity.Product, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT id, name, description, price, photo_id, quantity, created_at FROM products WHERE id = ?`, id)

	var p entity.Product
	var ts time.Time
	err := row.Scan(&p.ID, &p.Name, &p.Description, &p.Price, &p.PhotoID, &p.Quantity, &ts)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, repository.ErrProductNotFound
	}
	if err != nil {
		return nil, err
	}
	p.CreatedAt = ts
	return &p, nil
}

// GetAll returns every product in insertion order.
func (s *sqliteProductRepository) GetAll(ctx context.Context) ([]entity.Product, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, name, description, price, photo_id, quantity, created_at FROM products ORDER BY created_at, id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var products []entity.Product
	for rows.Next() {
		var p entity.Product
		var ts time.Time
		if err := rows.Scan(&p.ID, &p.Name, &p.Description, &p.Price, &p.PhotoID, &p.Quantity, &ts); err != nil {
			return nil, err
		}
		p.CreatedAt = ts
		products = append(products, p)
	}
	return products, rows.Err()
}

// Delete removes a product. Deleting a missing id is a no-op.
func (s *sqliteProductRepository) Delete(ctx context.Context, id string) error {
	_, err := s.db.ExecContext(ctx, `DELETE FROM products WHERE id = ?`, id)
	return err
}
