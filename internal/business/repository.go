// AngelaMos | 2026
// repository.go

package business

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/carterperez-dev/debt-manager/internal/core"
)

type Repository interface {
	Create(ctx context.Context, b *Business) error
	Update(ctx context.Context, b *Business) error
	Delete(ctx context.Context, id string) error
	GetByID(ctx context.Context, id string) (*Business, error)
	GetByOwner(ctx context.Context, ownerID string) (*Business, error)
	ListByOwner(ctx context.Context, ownerID string) ([]Business, error)
}

type repository struct {
	db core.DBTX
}

func NewRepository(db core.DBTX) Repository {
	return &repository{db: db}
}

const businessColumns = `id, owner_id, name, email, phone, address,
	description, created_at, updated_at`

func (r *repository) Create(ctx context.Context, b *Business) error {
	query := `
		INSERT INTO businesses (id, owner_id, name, email, phone, address, description)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING created_at, updated_at`

	err := r.db.QueryRowxContext(ctx, query,
		b.ID,
		b.OwnerID,
		b.Name,
		b.Email,
		b.Phone,
		b.Address,
		b.Description,
	).Scan(&b.CreatedAt, &b.UpdatedAt)
	if err != nil {
		if core.IsDuplicateKeyError(err) {
			return fmt.Errorf("create business: %w", core.ErrDuplicateKey)
		}
		return fmt.Errorf("create business: %w", err)
	}

	return nil
}

func (r *repository) Update(ctx context.Context, b *Business) error {
	query := `
		UPDATE businesses
		SET name = $2, email = $3, phone = $4, address = $5,
			description = $6, updated_at = NOW()
		WHERE id = $1
		RETURNING updated_at`

	err := r.db.GetContext(ctx, &b.UpdatedAt, query,
		b.ID,
		b.Name,
		b.Email,
		b.Phone,
		b.Address,
		b.Description,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return fmt.Errorf("update business: %w", core.ErrNotFound)
	}
	if err != nil {
		return fmt.Errorf("update business: %w", err)
	}

	return nil
}

func (r *repository) Delete(ctx context.Context, id string) error {
	if _, err := r.db.ExecContext(ctx, `DELETE FROM businesses WHERE id = $1`, id); err != nil {
		return fmt.Errorf("delete business: %w", err)
	}
	return nil
}

func (r *repository) GetByID(ctx context.Context, id string) (*Business, error) {
	return r.getOne(ctx, "get business", `SELECT `+businessColumns+`
		FROM businesses WHERE id = $1`, id)
}

func (r *repository) GetByOwner(
	ctx context.Context,
	ownerID string,
) (*Business, error) {
	return r.getOne(ctx, "get owned business", `SELECT `+businessColumns+`
		FROM businesses WHERE owner_id = $1`, ownerID)
}

func (r *repository) ListByOwner(
	ctx context.Context,
	ownerID string,
) ([]Business, error) {
	var list []Business
	err := r.db.SelectContext(ctx, &list, `SELECT `+businessColumns+`
		FROM businesses
		WHERE owner_id = $1
		ORDER BY created_at`, ownerID)
	if err != nil {
		return nil, fmt.Errorf("list businesses: %w", err)
	}
	return list, nil
}

func (r *repository) getOne(
	ctx context.Context,
	op, query string,
	args ...any,
) (*Business, error) {
	var b Business
	err := r.db.GetContext(ctx, &b, query, args...)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%s: %w", op, core.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return &b, nil
}
