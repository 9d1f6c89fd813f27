// AngelaMos | 2026
// dto.go

package business

import (
	"strings"
	"time"

	"github.com/carterperez-dev/debt-manager/internal/user"
)

type SaveBusinessRequest struct {
	Name        string `json:"name"        validate:"required,min=1,max=200"`
	Email       string `json:"email"       validate:"omitempty,email,max=255"`
	Phone       string `json:"phone"       validate:"omitempty,max=30"`
	Address     string `json:"address"     validate:"omitempty,max=300"`
	Description string `json:"description" validate:"omitempty,max=1000"`
}

func (r SaveBusinessRequest) apply(b *Business) {
	b.Name = strings.TrimSpace(r.Name)
	b.Email = strings.ToLower(strings.TrimSpace(r.Email))
	b.Phone = strings.TrimSpace(r.Phone)
	b.Address = strings.TrimSpace(r.Address)
	b.Description = strings.TrimSpace(r.Description)
}

type BusinessResponse struct {
	ID          string    `json:"id"`
	OwnerID     string    `json:"owner_id"`
	Name        string    `json:"name"`
	Email       string    `json:"email"`
	Phone       string    `json:"phone"`
	Address     string    `json:"address"`
	Description string    `json:"description"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// SaveBusinessResponse carries the refreshed owner alongside the business
// so clients can update their session before navigating away.
type SaveBusinessResponse struct {
	Business BusinessResponse  `json:"business"`
	User     user.UserResponse `json:"user"`
	Created  bool              `json:"created"`
}

func ToBusinessResponse(b *Business) BusinessResponse {
	return BusinessResponse{
		ID:          b.ID,
		OwnerID:     b.OwnerID,
		Name:        b.Name,
		Email:       b.Email,
		Phone:       b.Phone,
		Address:     b.Address,
		Description: b.Description,
		CreatedAt:   b.CreatedAt,
		UpdatedAt:   b.UpdatedAt,
	}
}

func ToBusinessResponseList(list []Business) []BusinessResponse {
	out := make([]BusinessResponse, 0, len(list))
	for i := range list {
		out = append(out, ToBusinessResponse(&list[i]))
	}
	return out
}
