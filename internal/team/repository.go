// AngelaMos | 2026
// repository.go

package team

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/carterperez-dev/debt-manager/internal/core"
)

type Repository interface {
	Create(ctx context.Context, inv *Invitation) error
	GetByID(ctx context.Context, businessID, id string) (*Invitation, error)
	GetByTokenHash(ctx context.Context, tokenHash string) (*Invitation, error)
	GetPendingByEmail(ctx context.Context, businessID, email string) (*Invitation, error)
	// ListByBusiness returns pending invitations, newest first.
	ListByBusiness(ctx context.Context, businessID string) ([]Invitation, error)
	Reissue(ctx context.Context, id, tokenHash string, expiresAt time.Time) error
	// Transition moves an invitation from one status to another and fails
	// with core.ErrNotFound when it is no longer in the from status.
	Transition(ctx context.Context, id string, from, to InvitationStatus) error
}

type repository struct {
	db core.DBTX
}

func NewRepository(db core.DBTX) Repository {
	return &repository{db: db}
}

const invitationColumns = `id, business_id, name, email, role, token_hash,
	status, invited_by, expires_at, created_at, updated_at`

func (r *repository) Create(ctx context.Context, inv *Invitation) error {
	err := r.db.QueryRowxContext(ctx, `
		INSERT INTO invitations (
			id, business_id, name, email, role, token_hash, status,
			invited_by, expires_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		RETURNING created_at, updated_at`,
		inv.ID,
		inv.BusinessID,
		inv.Name,
		inv.Email,
		inv.Role,
		inv.TokenHash,
		inv.Status,
		inv.InvitedBy,
		inv.ExpiresAt,
	).Scan(&inv.CreatedAt, &inv.UpdatedAt)
	if err != nil {
		if core.IsDuplicateKeyError(err) {
			return fmt.Errorf("create invitation: %w", core.ErrDuplicateKey)
		}
		return fmt.Errorf("create invitation: %w", err)
	}
	return nil
}

func (r *repository) GetByID(
	ctx context.Context,
	businessID, id string,
) (*Invitation, error) {
	return r.getOne(ctx, `SELECT `+invitationColumns+`
		FROM invitations
		WHERE id = $1 AND business_id = $2`, id, businessID)
}

func (r *repository) GetByTokenHash(
	ctx context.Context,
	tokenHash string,
) (*Invitation, error) {
	return r.getOne(ctx, `SELECT `+invitationColumns+`
		FROM invitations
		WHERE token_hash = $1`, tokenHash)
}

func (r *repository) GetPendingByEmail(
	ctx context.Context,
	businessID, email string,
) (*Invitation, error) {
	return r.getOne(ctx, `SELECT `+invitationColumns+`
		FROM invitations
		WHERE business_id = $1 AND email = $2 AND status = 'pending'`,
		businessID, email)
}

func (r *repository) ListByBusiness(
	ctx context.Context,
	businessID string,
) ([]Invitation, error) {
	var list []Invitation
	err := r.db.SelectContext(ctx, &list, `SELECT `+invitationColumns+`
		FROM invitations
		WHERE business_id = $1 AND status = 'pending'
		ORDER BY created_at DESC`, businessID)
	if err != nil {
		return nil, fmt.Errorf("list invitations: %w", err)
	}
	return list, nil
}

func (r *repository) Reissue(
	ctx context.Context,
	id, tokenHash string,
	expiresAt time.Time,
) error {
	return r.execOne(ctx, "reissue invitation", `
		UPDATE invitations
		SET token_hash = $2, expires_at = $3, updated_at = NOW()
		WHERE id = $1 AND status = 'pending'`, id, tokenHash, expiresAt)
}

func (r *repository) Transition(
	ctx context.Context,
	id string,
	from, to InvitationStatus,
) error {
	return r.execOne(ctx, "update invitation status", `
		UPDATE invitations
		SET status = $3, updated_at = NOW()
		WHERE id = $1 AND status = $2`, id, from, to)
}

func (r *repository) getOne(
	ctx context.Context,
	query string,
	args ...any,
) (*Invitation, error) {
	var inv Invitation
	err := r.db.GetContext(ctx, &inv, query, args...)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("get invitation: %w", core.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("get invitation: %w", err)
	}
	return &inv, nil
}

func (r *repository) execOne(
	ctx context.Context,
	op, query string,
	args ...any,
) error {
	result, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	if rows == 0 {
		return fmt.Errorf("%s: %w", op, core.ErrNotFound)
	}
	return nil
}
