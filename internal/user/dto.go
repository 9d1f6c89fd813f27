// AngelaMos | 2026
// dto.go

package user

import (
	"time"

	"github.com/carterperez-dev/debt-manager/internal/role"
)

type UpdateUserRequest struct {
	Name *string `json:"name,omitempty" validate:"omitempty,min=1,max=100"`
}

type BusinessSummary struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

type UserResponse struct {
	ID            string           `json:"id"`
	Email         string           `json:"email"`
	Name          string           `json:"name"`
	Role          role.Role        `json:"role"`
	BusinessID    string           `json:"business_id,omitempty"`
	HasBusiness   bool             `json:"has_business"`
	EmailVerified bool             `json:"email_verified"`
	Business      *BusinessSummary `json:"business,omitempty"`
	CreatedAt     time.Time        `json:"created_at"`
	UpdatedAt     time.Time        `json:"updated_at"`
}

type MemberResponse struct {
	ID        string    `json:"id"`
	Email     string    `json:"email"`
	Name      string    `json:"name"`
	Role      role.Role `json:"role"`
	CreatedAt time.Time `json:"created_at"`
}

func ToUserResponse(u *User) UserResponse {
	return UserResponse{
		ID:            u.ID,
		Email:         u.Email,
		Name:          u.Name,
		Role:          u.Role,
		BusinessID:    u.BusinessIDOrEmpty(),
		HasBusiness:   u.HasBusiness(),
		EmailVerified: u.EmailVerified,
		CreatedAt:     u.CreatedAt,
		UpdatedAt:     u.UpdatedAt,
	}
}

func ToMemberResponseList(users []User) []MemberResponse {
	out := make([]MemberResponse, 0, len(users))
	for _, u := range users {
		out = append(out, MemberResponse{
			ID:        u.ID,
			Email:     u.Email,
			Name:      u.Name,
			Role:      u.Role,
			CreatedAt: u.CreatedAt,
		})
	}
	return out
}
