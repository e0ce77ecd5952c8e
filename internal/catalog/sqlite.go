package catalog

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/fjod/go_cart/storefront/internal/domain"
	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database/sqlite"
	_ "github.com/golang-migrate/migrate/v4/source/file"
	_ "modernc.org/sqlite"
)

const productColumns = `id, name, description, image_url, category, brand,
	price_cents, original_price_cents, stock, on_sale, created_at`

type Repository struct {
	db *sql.DB
}

func NewRepository(dbPath string) (*Repository, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	// every connection to ":memory:" is a separate database
	db.SetMaxOpenConns(1)

	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return &Repository{db: db}, nil
}

func (r *Repository) RunMigrations(migrationsPath string) error {
	driver, err := sqlite.WithInstance(r.db, &sqlite.Config{})
	if err != nil {
		return fmt.Errorf("could not create migration driver: %w", err)
	}

	m, err := migrate.NewWithDatabaseInstance(
		fmt.Sprintf("file://%s", migrationsPath),
		"sqlite",
		driver,
	)
	if err != nil {
		return fmt.Errorf("could not create migrate instance: %w", err)
	}

	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return fmt.Errorf("could not run migrations: %w", err)
	}

	return nil
}

// ListProducts returns the catalog ordered by id, optionally narrowed to one
// category (case-insensitive).
func (r *Repository) ListProducts(ctx context.Context, category string) ([]*domain.Product, error) {
	query := `SELECT ` + productColumns + ` FROM products
		WHERE ? = '' OR lower(category) = lower(?)
		ORDER BY id`

	rows, err := r.db.QueryContext(ctx, query, category, category)
	if err != nil {
		return nil, fmt.Errorf("failed to query products: %w", err)
	}
	defer rows.Close()

	var products []*domain.Product
	for rows.Next() {
		p, err := scanProduct(rows)
		if err != nil {
			return nil, err
		}
		products = append(products, p)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("row iteration error: %w", err)
	}

	return products, nil
}

func (r *Repository) GetProduct(ctx context.Context, id domain.ProductID) (*domain.Product, error) {
	query := `SELECT ` + productColumns + ` FROM products WHERE id = ?`

	p, err := scanProduct(r.db.QueryRowContext(ctx, query, string(id)))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%s: %w", id, ErrProductNotFound)
	}
	if err != nil {
		return nil, err
	}
	return p, nil
}

func (r *Repository) Close() error {
	return r.db.Close()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanProduct(row rowScanner) (*domain.Product, error) {
	var (
		p           domain.Product
		id          string
		price, orig int64
		onSale      int
	)
	err := row.Scan(
		&id,
		&p.Name,
		&p.Description,
		&p.ImageURL,
		&p.Category,
		&p.Brand,
		&price,
		&orig,
		&p.Stock,
		&onSale,
		&p.CreatedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, err
	}
	if err != nil {
		return nil, fmt.Errorf("failed to scan product: %w", err)
	}
	p.ID = domain.ProductID(id)
	p.Price = domain.Money(price)
	p.OriginalPrice = domain.Money(orig)
	p.OnSale = onSale != 0
	return &p, nil
}
