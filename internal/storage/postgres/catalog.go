package postgres

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/go-faster/errors"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/buanay/pos/internal/domain/catalog"
)

const (
	listProductsSQL = `SELECT id, name, description, category, sizes, toppings, allow_toppings
		FROM products ORDER BY id`

	getProductByIDSQL = `SELECT id, name, description, category, sizes, toppings, allow_toppings
		FROM products WHERE id = $1`

	listCategoriesSQL = `SELECT id, name, icon FROM categories ORDER BY position, id`

	upsertProductSQL = `INSERT INTO products (id, name, description, category, sizes, toppings, allow_toppings)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		ON CONFLICT (id) DO UPDATE SET
			name = EXCLUDED.name,
			description = EXCLUDED.description,
			category = EXCLUDED.category,
			sizes = EXCLUDED.sizes,
			toppings = EXCLUDED.toppings,
			allow_toppings = EXCLUDED.allow_toppings`

	upsertCategorySQL = `INSERT INTO categories (id, name, icon, position)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (id) DO UPDATE SET name = EXCLUDED.name, icon = EXCLUDED.icon, position = EXCLUDED.position`
)

var _ catalog.Repository = (*CatalogRepository)(nil)

// CatalogRepository implements catalog.Repository backed by PostgreSQL.
// Size and topping lists are stored as JSONB.
type CatalogRepository struct {
	pool *pgxpool.Pool
}

// NewCatalogRepository returns a CatalogRepository that uses the given pool.
func NewCatalogRepository(pool *pgxpool.Pool) *CatalogRepository {
	return &CatalogRepository{pool: pool}
}

// List returns all products ordered by ID.
func (r *CatalogRepository) List(ctx context.Context) ([]catalog.Product, error) {
	rows, err := r.pool.Query(ctx, listProductsSQL)
	if err != nil {
		return nil, fmt.Errorf("listing products: %w", err)
	}
	return pgx.CollectRows(rows, scanProduct)
}

// GetByID returns a single product by its identifier.
func (r *CatalogRepository) GetByID(ctx context.Context, id string) (*catalog.Product, error) {
	rows, err := r.pool.Query(ctx, getProductByIDSQL, id)
	if err != nil {
		return nil, fmt.Errorf("getting product %q: %w", id, err)
	}

	p, err := pgx.CollectExactlyOneRow(rows, scanProduct)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, catalog.ErrNotFound
		}
		return nil, fmt.Errorf("getting product %q: %w", id, err)
	}
	return &p, nil
}

// Categories returns all menu categories in display order.
func (r *CatalogRepository) Categories(ctx context.Context) ([]catalog.Category, error) {
	rows, err := r.pool.Query(ctx, listCategoriesSQL)
	if err != nil {
		return nil, fmt.Errorf("listing categories: %w", err)
	}
	return pgx.CollectRows(rows, func(row pgx.CollectableRow) (catalog.Category, error) {
		var c catalog.Category
		err := row.Scan(&c.ID, &c.Name, &c.Icon)
		return c, err
	})
}

// UpsertProduct inserts or replaces a catalog product. Used by seeding.
func (r *CatalogRepository) UpsertProduct(ctx context.Context, p catalog.Product) error {
	sizes, err := json.Marshal(p.Sizes)
	if err != nil {
		return fmt.Errorf("marshaling sizes: %w", err)
	}
	toppings, err := json.Marshal(p.Toppings)
	if err != nil {
		return fmt.Errorf("marshaling toppings: %w", err)
	}

	_, err = r.pool.Exec(ctx, upsertProductSQL,
		p.ID, p.Name, p.Description, p.Category, sizes, toppings, p.AllowToppings,
	)
	if err != nil {
		return fmt.Errorf("upserting product %q: %w", p.ID, err)
	}
	return nil
}

// UpsertCategory inserts or replaces a menu category. Used by seeding.
func (r *CatalogRepository) UpsertCategory(ctx context.Context, c catalog.Category, position int) error {
	_, err := r.pool.Exec(ctx, upsertCategorySQL, c.ID, c.Name, c.Icon, position)
	if err != nil {
		return fmt.Errorf("upserting category %q: %w", c.ID, err)
	}
	return nil
}

func scanProduct(row pgx.CollectableRow) (catalog.Product, error) {
	var (
		p        catalog.Product
		sizes    []byte
		toppings []byte
	)
	err := row.Scan(&p.ID, &p.Name, &p.Description, &p.Category, &sizes, &toppings, &p.AllowToppings)
	if err != nil {
		return catalog.Product{}, err
	}
	if err := json.Unmarshal(sizes, &p.Sizes); err != nil {
		return catalog.Product{}, fmt.Errorf("unmarshaling sizes for product %q: %w", p.ID, err)
	}
	if err := json.Unmarshal(toppings, &p.Toppings); err != nil {
		return catalog.Product{}, fmt.Errorf("unmarshaling toppings for product %q: %w", p.ID, err)
	}
	return p, nil
}
