// AngelaMos | 2026
// dto.go

package customer

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

type SaveCustomerRequest struct {
	Name    string `json:"name"    validate:"required,min=1,max=200"`
	Phone   string `json:"phone"   validate:"required,min=3,max=30"`
	Email   string `json:"email"   validate:"omitempty,email,max=255"`
	Address string `json:"address" validate:"omitempty,max=300"`
}

func (r SaveCustomerRequest) apply(c *Customer) {
	c.Name = strings.TrimSpace(r.Name)
	c.Phone = NormalizePhone(r.Phone)
	c.Email = strings.ToLower(strings.TrimSpace(r.Email))
	c.Address = strings.TrimSpace(r.Address)
}

// NormalizePhone drops spaces and dashes so "0700 111-222" and "0700111222"
// identify the same customer.
func NormalizePhone(phone string) string {
	return strings.Map(func(r rune) rune {
		switch r {
		case ' ', '-', '(', ')', '.':
			return -1
		}
		return r
	}, strings.TrimSpace(phone))
}

type CustomerResponse struct {
	ID           string          `json:"id"`
	Name         string          `json:"name"`
	Phone        string          `json:"phone"`
	Email        string          `json:"email,omitempty"`
	Address      string          `json:"address,omitempty"`
	TotalDebt    decimal.Decimal `json:"total_debt"`
	TotalPaid    decimal.Decimal `json:"total_paid"`
	Outstanding  decimal.Decimal `json:"outstanding"`
	DebtCount    int             `json:"debt_count"`
	OverdueCount int             `json:"overdue_count"`
	CreditScore  int             `json:"credit_score"`
	CreatedBy    string          `json:"created_by"`
	CreatedAt    time.Time       `json:"created_at"`
	UpdatedAt    time.Time       `json:"updated_at"`
}

func ToCustomerResponse(c *Customer, s Summary) CustomerResponse {
	return CustomerResponse{
		ID:           c.ID,
		Name:         c.Name,
		Phone:        c.Phone,
		Email:        c.Email,
		Address:      c.Address,
		TotalDebt:    s.Total,
		TotalPaid:    s.Paid,
		Outstanding:  s.Outstanding,
		DebtCount:    s.DebtCount,
		OverdueCount: s.OverdueCount,
		CreditScore:  s.CreditScore(),
		CreatedBy:    c.CreatedBy,
		CreatedAt:    c.CreatedAt,
		UpdatedAt:    c.UpdatedAt,
	}
}
