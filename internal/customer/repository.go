// AngelaMos | 2026
// repository.go

package customer

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/carterperez-dev/debt-manager/internal/core"
)

type Repository interface {
	Create(ctx context.Context, c *Customer) error
	Update(ctx context.Context, c *Customer) error
	Delete(ctx context.Context, businessID, id string) error
	GetByID(ctx context.Context, businessID, id string) (*Customer, error)
	GetByPhone(ctx context.Context, businessID, phone string) (*Customer, error)
	List(ctx context.Context, businessID string) ([]Customer, error)
	Summaries(ctx context.Context, businessID string) ([]Summary, error)
	CountUnpaidDebts(ctx context.Context, businessID, id string) (int, error)
}

type repository struct {
	db core.DBTX
}

func NewRepository(db core.DBTX) Repository {
	return &repository{db: db}
}

const customerColumns = `id, business_id, name, phone, email, address,
	created_by, created_at, updated_at`

func (r *repository) Create(ctx context.Context, c *Customer) error {
	err := r.db.QueryRowxContext(ctx, `
		INSERT INTO customers (id, business_id, name, phone, email, address, created_by)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING created_at, updated_at`,
		c.ID, c.BusinessID, c.Name, c.Phone, c.Email, c.Address, c.CreatedBy,
	).Scan(&c.CreatedAt, &c.UpdatedAt)
	if err != nil {
		if core.IsDuplicateKeyError(err) {
			return fmt.Errorf("create customer: %w", core.ErrDuplicateKey)
		}
		return fmt.Errorf("create customer: %w", err)
	}
	return nil
}

func (r *repository) Update(ctx context.Context, c *Customer) error {
	err := r.db.GetContext(ctx, &c.UpdatedAt, `
		UPDATE customers
		SET name = $3, phone = $4, email = $5, address = $6, updated_at = NOW()
		WHERE id = $1 AND business_id = $2
		RETURNING updated_at`,
		c.ID, c.BusinessID, c.Name, c.Phone, c.Email, c.Address,
	)
	switch {
	case errors.Is(err, sql.ErrNoRows):
		return fmt.Errorf("update customer: %w", core.ErrNotFound)
	case core.IsDuplicateKeyError(err):
		return fmt.Errorf("update customer: %w", core.ErrDuplicateKey)
	case err != nil:
		return fmt.Errorf("update customer: %w", err)
	}
	return nil
}

func (r *repository) Delete(ctx context.Context, businessID, id string) error {
	result, err := r.db.ExecContext(ctx, `
		DELETE FROM customers
		WHERE id = $1 AND business_id = $2`, id, businessID)
	if err != nil {
		return fmt.Errorf("delete customer: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete customer: %w", err)
	}
	if rows == 0 {
		return fmt.Errorf("delete customer: %w", core.ErrNotFound)
	}
	return nil
}

func (r *repository) GetByID(
	ctx context.Context,
	businessID, id string,
) (*Customer, error) {
	return r.getOne(ctx, `SELECT `+customerColumns+`
		FROM customers
		WHERE id = $1 AND business_id = $2`, id, businessID)
}

func (r *repository) GetByPhone(
	ctx context.Context,
	businessID, phone string,
) (*Customer, error) {
	return r.getOne(ctx, `SELECT `+customerColumns+`
		FROM customers
		WHERE phone = $1 AND business_id = $2`, phone, businessID)
}

func (r *repository) List(
	ctx context.Context,
	businessID string,
) ([]Customer, error) {
	var list []Customer
	err := r.db.SelectContext(ctx, &list, `SELECT `+customerColumns+`
		FROM customers
		WHERE business_id = $1
		ORDER BY name`, businessID)
	if err != nil {
		return nil, fmt.Errorf("list customers: %w", err)
	}
	return list, nil
}

func (r *repository) Summaries(
	ctx context.Context,
	businessID string,
) ([]Summary, error) {
	var list []Summary
	err := r.db.SelectContext(ctx, &list, `
		SELECT
			customer_id,
			COALESCE(SUM(total), 0)       AS total,
			COALESCE(SUM(amount_paid), 0) AS paid,
			COALESCE(SUM(balance), 0)     AS outstanding,
			COUNT(*)                      AS debt_count,
			COUNT(*) FILTER (
				WHERE balance > 0 AND due_date < CURRENT_DATE
			)                             AS overdue_count
		FROM debts
		WHERE business_id = $1 AND customer_id IS NOT NULL
		GROUP BY customer_id`, businessID)
	if err != nil {
		return nil, fmt.Errorf("customer summaries: %w", err)
	}
	return list, nil
}

func (r *repository) CountUnpaidDebts(
	ctx context.Context,
	businessID, id string,
) (int, error) {
	var n int
	err := r.db.GetContext(ctx, &n, `
		SELECT COUNT(*)
		FROM debts
		WHERE customer_id = $1 AND business_id = $2 AND balance > 0`,
		id, businessID)
	if err != nil {
		return 0, fmt.Errorf("count unpaid debts: %w", err)
	}
	return n, nil
}

func (r *repository) getOne(
	ctx context.Context,
	query string,
	args ...any,
) (*Customer, error) {
	var c Customer
	err := r.db.GetContext(ctx, &c, query, args...)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("get customer: %w", core.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("get customer: %w", err)
	}
	return &c, nil
}
