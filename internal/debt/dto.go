// AngelaMos | 2026
// dto.go

package debt

import (
	"time"

	"github.com/shopspring/decimal"
)

const dateLayout = "2006-01-02"

// CreateDebtRequest may carry the client's own Total and Balance. They are
// never trusted; the server recomputes both from Items.
type CreateDebtRequest struct {
	CustomerID    string           `json:"customer_id"       validate:"omitempty,uuid"`
	CustomerName  string           `json:"customer_name"     validate:"required_without=CustomerID,max=200"`
	CustomerPhone string           `json:"customer_phone"    validate:"required_without=CustomerID,max=30"`
	Items         []Item           `json:"items"             validate:"required,min=1,max=100"`
	AmountPaid    decimal.Decimal  `json:"amount_paid"`
	DueDate       string           `json:"due_date"          validate:"omitempty,datetime=2006-01-02"`
	Total         *decimal.Decimal `json:"total,omitempty"`
	Balance       *decimal.Decimal `json:"balance,omitempty"`
}

type RecordPaymentRequest struct {
	Amount decimal.Decimal `json:"amount"`
	Method string          `json:"method" validate:"omitempty,oneof=cash bank mobile card other"`
	Note   string          `json:"note"   validate:"omitempty,max=500"`
}

type DebtResponse struct {
	ID            string          `json:"id"`
	BusinessID    string          `json:"business_id"`
	CustomerID    string          `json:"customer_id"`
	CustomerName  string          `json:"customer_name"`
	CustomerPhone string          `json:"customer_phone"`
	Items         []Item          `json:"items"`
	Total         decimal.Decimal `json:"total"`
	AmountPaid    decimal.Decimal `json:"amount_paid"`
	Balance       decimal.Decimal `json:"balance"`
	Status        Status          `json:"status"`
	DueDate       string          `json:"due_date,omitempty"`
	Overdue       bool            `json:"overdue"`
	CreatedBy     string          `json:"created_by"`
	CreatedAt     time.Time       `json:"created_at"`
	UpdatedAt     time.Time       `json:"updated_at"`
}

type PaymentResponse struct {
	ID         string          `json:"id"`
	DebtID     string          `json:"debt_id"`
	Amount     decimal.Decimal `json:"amount"`
	Method     string          `json:"method"`
	Note       string          `json:"note,omitempty"`
	RecordedBy string          `json:"recorded_by"`
	CreatedAt  time.Time       `json:"created_at"`
}

type PaymentResult struct {
	Debt    DebtResponse    `json:"debt"`
	Payment PaymentResponse `json:"payment"`
}

func ToDebtResponse(d *Debt, now time.Time) DebtResponse {
	resp := DebtResponse{
		ID:            d.ID,
		BusinessID:    d.BusinessID,
		CustomerID:    d.CustomerID,
		CustomerName:  d.CustomerName,
		CustomerPhone: d.CustomerPhone,
		Items:         d.Items,
		Total:         d.Total,
		AmountPaid:    d.AmountPaid,
		Balance:       d.Balance,
		Status:        d.Status,
		Overdue:       d.IsOverdue(now),
		CreatedBy:     d.CreatedBy,
		CreatedAt:     d.CreatedAt,
		UpdatedAt:     d.UpdatedAt,
	}
	if resp.Items == nil {
		resp.Items = []Item{}
	}
	if d.DueDate != nil {
		resp.DueDate = d.DueDate.Format(dateLayout)
	}
	return resp
}

func ToDebtResponseList(list []Debt, now time.Time) []DebtResponse {
	out := make([]DebtResponse, 0, len(list))
	for i := range list {
		out = append(out, ToDebtResponse(&list[i], now))
	}
	return out
}

func ToPaymentResponse(p *Payment) PaymentResponse {
	return PaymentResponse{
		ID:         p.ID,
		DebtID:     p.DebtID,
		Amount:     p.Amount,
		Method:     p.Method,
		Note:       p.Note,
		RecordedBy: p.RecordedBy,
		CreatedAt:  p.CreatedAt,
	}
}

func ToPaymentResponseList(list []Payment) []PaymentResponse {
	out := make([]PaymentResponse, 0, len(list))
	for i := range list {
		out = append(out, ToPaymentResponse(&list[i]))
	}
	return out
}
