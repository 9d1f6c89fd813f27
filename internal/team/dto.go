// AngelaMos | 2026
// dto.go

package team

import (
	"time"

	"github.com/carterperez-dev/debt-manager/internal/role"
)

type InviteRequest struct {
	Name  string    `json:"name"  validate:"required,min=1,max=100"`
	Email string    `json:"email" validate:"required,email,max=255"`
	Role  role.Role `json:"role"  validate:"required,oneof=admin manager salesperson"`
}

type ChangeRoleRequest struct {
	UserID string    `json:"user_id" validate:"required,uuid"`
	Role   role.Role `json:"role"    validate:"required,oneof=admin manager salesperson"`
}

type InvitationResponse struct {
	ID        string           `json:"id"`
	Name      string           `json:"name"`
	Email     string           `json:"email"`
	Role      role.Role        `json:"role"`
	Status    InvitationStatus `json:"status"`
	InvitedBy string           `json:"invited_by"`
	ExpiresAt time.Time        `json:"expires_at"`
	CreatedAt time.Time        `json:"created_at"`
}

func ToInvitationResponse(inv *Invitation, now time.Time) InvitationResponse {
	return InvitationResponse{
		ID:        inv.ID,
		Name:      inv.Name,
		Email:     inv.Email,
		Role:      inv.Role,
		Status:    inv.EffectiveStatus(now),
		InvitedBy: inv.InvitedBy,
		ExpiresAt: inv.ExpiresAt,
		CreatedAt: inv.CreatedAt,
	}
}

func ToInvitationResponseList(list []Invitation, now time.Time) []InvitationResponse {
	out := make([]InvitationResponse, 0, len(list))
	for i := range list {
		out = append(out, ToInvitationResponse(&list[i], now))
	}
	return out
}
