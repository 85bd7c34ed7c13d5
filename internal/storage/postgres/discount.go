package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/go-faster/errors"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/buanay/pos/internal/domain/discount"
)

const (
	discountColumns = `id, code, discount_type, discount_value, min_order_amount,
		max_discount_amount, start_date, end_date, is_active, created_at`

	getDiscountByCodeSQL = `SELECT ` + discountColumns + ` FROM discounts WHERE code = $1`

	listDiscountsSQL = `SELECT ` + discountColumns + ` FROM discounts ORDER BY created_at DESC`

	createDiscountSQL = `INSERT INTO discounts (id, code, discount_type, discount_value,
		min_order_amount, max_discount_amount, start_date, end_date, is_active, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`

	setDiscountActiveSQL = `UPDATE discounts SET is_active = $2 WHERE id = $1`
)

var _ discount.AdminRepository = (*DiscountRepository)(nil)

// DiscountRepository implements discount.AdminRepository backed by PostgreSQL.
type DiscountRepository struct {
	pool *pgxpool.Pool
}

// NewDiscountRepository returns a DiscountRepository that uses the given pool.
func NewDiscountRepository(pool *pgxpool.Pool) *DiscountRepository {
	return &DiscountRepository{pool: pool}
}

// FindByCode looks up a discount by exact code match.
// Returns discount.ErrNotFound when no discount with the code exists.
func (r *DiscountRepository) FindByCode(ctx context.Context, code string) (*discount.Code, error) {
	rows, err := r.pool.Query(ctx, getDiscountByCodeSQL, code)
	if err != nil {
		return nil, fmt.Errorf("finding discount by code %q: %w", code, err)
	}

	dc, err := pgx.CollectExactlyOneRow(rows, scanDiscount)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, discount.ErrNotFound
		}
		return nil, fmt.Errorf("finding discount by code %q: %w", code, err)
	}
	return &dc, nil
}

// Create persists a new discount code.
func (r *DiscountRepository) Create(ctx context.Context, dc *discount.Code) error {
	_, err := r.pool.Exec(ctx, createDiscountSQL,
		dc.ID, dc.Code, string(dc.Type), dc.Value,
		dc.MinOrderAmount, dc.MaxDiscountAmount,
		dc.StartDate, dc.EndDate, dc.Active, dc.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("creating discount %q: %w", dc.Code, err)
	}
	return nil
}

// List returns all discounts, newest first.
func (r *DiscountRepository) List(ctx context.Context) ([]discount.Code, error) {
	rows, err := r.pool.Query(ctx, listDiscountsSQL)
	if err != nil {
		return nil, fmt.Errorf("listing discounts: %w", err)
	}
	return pgx.CollectRows(rows, scanDiscount)
}

// SetActive toggles the active flag of a discount.
func (r *DiscountRepository) SetActive(ctx context.Context, id string, active bool) error {
	_, err := r.pool.Exec(ctx, setDiscountActiveSQL, id, active)
	if err != nil {
		return fmt.Errorf("setting discount %q active=%t: %w", id, active, err)
	}
	return nil
}

func scanDiscount(row pgx.CollectableRow) (discount.Code, error) {
	var (
		dc           discount.Code
		discountType string
		startDate    *time.Time
		endDate      *time.Time
	)
	err := row.Scan(
		&dc.ID, &dc.Code, &discountType, &dc.Value,
		&dc.MinOrderAmount, &dc.MaxDiscountAmount,
		&startDate, &endDate, &dc.Active, &dc.CreatedAt,
	)
	dc.Type = discount.Type(discountType)
	dc.StartDate = startDate
	dc.EndDate = endDate
	return dc, err
}
