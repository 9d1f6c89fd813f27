// AngelaMos | 2026
// repository.go

package debt

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/jmoiron/sqlx"

	"github.com/carterperez-dev/debt-manager/internal/core"
)

type Repository interface {
	// Create inserts d and, when initial is non-nil, the payment made up
	// front, in one transaction.
	Create(ctx context.Context, d *Debt, initial *Payment) error
	GetByID(ctx context.Context, businessID, id string) (*Debt, error)
	List(ctx context.Context, f Filter) ([]Debt, error)
	// ApplyPayment locks the debt, lets fn mutate it and build the payment,
	// then persists both in one transaction.
	ApplyPayment(
		ctx context.Context,
		businessID, debtID string,
		fn func(d *Debt) (*Payment, error),
	) (*Debt, *Payment, error)
	ListPayments(ctx context.Context, debtID string) ([]Payment, error)
	ListPaymentsByBusiness(ctx context.Context, businessID string) ([]Payment, error)
}

type repository struct {
	db *sqlx.DB
}

func NewRepository(db *sqlx.DB) Repository {
	return &repository{db: db}
}

const debtColumns = `id, business_id, COALESCE(customer_id::text, '') AS customer_id,
	customer_name, customer_phone,
	items, total, amount_paid, balance, status, due_date, created_by,
	created_at, updated_at`

const paymentColumns = `id, debt_id, amount, method, note, recorded_by, created_at`

func (r *repository) Create(ctx context.Context, d *Debt, initial *Payment) error {
	query := `
		INSERT INTO debts (
			id, business_id, customer_id, customer_name, customer_phone,
			items, total, amount_paid, balance, status, due_date, created_by
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
		RETURNING created_at, updated_at`

	return core.InTx(ctx, r.db, func(tx *sqlx.Tx) error {
		err := tx.QueryRowxContext(ctx, query,
			d.ID,
			d.BusinessID,
			d.CustomerID,
			d.CustomerName,
			d.CustomerPhone,
			d.Items,
			d.Total,
			d.AmountPaid,
			d.Balance,
			d.Status,
			d.DueDate,
			d.CreatedBy,
		).Scan(&d.CreatedAt, &d.UpdatedAt)
		if err != nil {
			if core.IsForeignKeyError(err) {
				return fmt.Errorf("create debt: %w", core.ErrNotFound)
			}
			return fmt.Errorf("create debt: %w", err)
		}

		if initial == nil {
			return nil
		}
		return insertPayment(ctx, tx, initial)
	})
}

func insertPayment(ctx context.Context, tx *sqlx.Tx, p *Payment) error {
	err := tx.QueryRowxContext(ctx, `
		INSERT INTO payments (id, debt_id, amount, method, note, recorded_by)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING created_at`,
		p.ID, p.DebtID, p.Amount, p.Method, p.Note, p.RecordedBy,
	).Scan(&p.CreatedAt)
	if err != nil {
		return fmt.Errorf("insert payment: %w", err)
	}
	return nil
}

func (r *repository) GetByID(
	ctx context.Context,
	businessID, id string,
) (*Debt, error) {
	return getDebt(ctx, r.db, `SELECT `+debtColumns+`
		FROM debts
		WHERE id = $1 AND business_id = $2`, id, businessID)
}

func (r *repository) List(ctx context.Context, f Filter) ([]Debt, error) {
	var (
		where = []string{"business_id = $1"}
		args  = []any{f.BusinessID}
	)

	add := func(column string, value any) {
		args = append(args, value)
		where = append(where, column+" = $"+strconv.Itoa(len(args)))
	}
	if f.CreatedBy != "" {
		add("created_by", f.CreatedBy)
	}
	if f.CustomerID != "" {
		add("customer_id", f.CustomerID)
	}
	if f.Status != "" {
		add("status", f.Status)
	}

	query := `SELECT ` + debtColumns + `
		FROM debts
		WHERE ` + strings.Join(where, " AND ") + `
		ORDER BY created_at DESC`

	var list []Debt
	if err := r.db.SelectContext(ctx, &list, query, args...); err != nil {
		return nil, fmt.Errorf("list debts: %w", err)
	}
	return list, nil
}

func (r *repository) ApplyPayment(
	ctx context.Context,
	businessID, debtID string,
	fn func(d *Debt) (*Payment, error),
) (*Debt, *Payment, error) {
	var (
		debt    *Debt
		payment *Payment
	)

	err := core.InTx(ctx, r.db, func(tx *sqlx.Tx) error {
		d, err := getDebt(ctx, tx, `SELECT `+debtColumns+`
			FROM debts
			WHERE id = $1 AND business_id = $2
			FOR UPDATE`, debtID, businessID)
		if err != nil {
			return err
		}

		p, err := fn(d)
		if err != nil {
			return err
		}

		if err := insertPayment(ctx, tx, p); err != nil {
			return err
		}

		err = tx.GetContext(ctx, &d.UpdatedAt, `
			UPDATE debts
			SET amount_paid = $2, balance = $3, status = $4, updated_at = NOW()
			WHERE id = $1
			RETURNING updated_at`,
			d.ID, d.AmountPaid, d.Balance, d.Status,
		)
		if err != nil {
			return fmt.Errorf("update debt: %w", err)
		}

		debt, payment = d, p
		return nil
	})
	if err != nil {
		return nil, nil, err
	}

	return debt, payment, nil
}

func (r *repository) ListPayments(
	ctx context.Context,
	debtID string,
) ([]Payment, error) {
	var list []Payment
	err := r.db.SelectContext(ctx, &list, `SELECT `+paymentColumns+`
		FROM payments
		WHERE debt_id = $1
		ORDER BY created_at`, debtID)
	if err != nil {
		return nil, fmt.Errorf("list payments: %w", err)
	}
	return list, nil
}

func (r *repository) ListPaymentsByBusiness(
	ctx context.Context,
	businessID string,
) ([]Payment, error) {
	var list []Payment
	err := r.db.SelectContext(ctx, &list, `
		SELECT p.id, p.debt_id, p.amount, p.method, p.note, p.recorded_by,
			p.created_at
		FROM payments p
		JOIN debts d ON d.id = p.debt_id
		WHERE d.business_id = $1
		ORDER BY p.created_at`, businessID)
	if err != nil {
		return nil, fmt.Errorf("list business payments: %w", err)
	}
	return list, nil
}

func getDebt(
	ctx context.Context,
	q sqlx.QueryerContext,
	query string,
	args ...any,
) (*Debt, error) {
	var d Debt
	err := sqlx.GetContext(ctx, q, &d, query, args...)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("get debt: %w", core.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("get debt: %w", err)
	}
	return &d, nil
}
