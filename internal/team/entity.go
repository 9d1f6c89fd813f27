// AngelaMos | 2026
// entity.go

package team

import (
	"time"

	"github.com/carterperez-dev/debt-manager/internal/role"
)

type InvitationStatus string

const (
	StatusPending   InvitationStatus = "pending"
	StatusAccepted  InvitationStatus = "accepted"
	StatusCancelled InvitationStatus = "cancelled"
	// StatusExpired is never stored; it is derived from ExpiresAt.
	StatusExpired InvitationStatus = "expired"
)

type Invitation struct {
	ID         string           `db:"id"`
	BusinessID string           `db:"business_id"`
	Name       string           `db:"name"`
	Email      string           `db:"email"`
	Role       role.Role        `db:"role"`
	TokenHash  string           `db:"token_hash"`
	Status     InvitationStatus `db:"status"`
	InvitedBy  string           `db:"invited_by"`
	ExpiresAt  time.Time        `db:"expires_at"`
	CreatedAt  time.Time        `db:"created_at"`
	UpdatedAt  time.Time        `db:"updated_at"`
}

func (i *Invitation) EffectiveStatus(now time.Time) InvitationStatus {
	if i.Status == StatusPending && !now.Before(i.ExpiresAt) {
		return StatusExpired
	}
	return i.Status
}
