// AngelaMos | 2026
// entity.go

package debt

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

// Items is stored as a JSONB column.
type Items []Item

func (it Items) Value() (driver.Value, error) {
	if it == nil {
		return "[]", nil
	}
	b, err := json.Marshal(it)
	if err != nil {
		return nil, err
	}
	return string(b), nil
}

func (it *Items) Scan(src any) error {
	var raw []byte
	switch v := src.(type) {
	case []byte:
		raw = v
	case string:
		raw = []byte(v)
	case nil:
		*it = nil
		return nil
	default:
		return fmt.Errorf("scan items: unsupported type %T", src)
	}
	return json.Unmarshal(raw, it)
}

type Debt struct {
	ID            string          `db:"id"`
	BusinessID    string          `db:"business_id"`
	CustomerID    string          `db:"customer_id"`
	CustomerName  string          `db:"customer_name"`
	CustomerPhone string          `db:"customer_phone"`
	Items         Items           `db:"items"`
	Total         decimal.Decimal `db:"total"`
	AmountPaid    decimal.Decimal `db:"amount_paid"`
	Balance       decimal.Decimal `db:"balance"`
	Status        Status          `db:"status"`
	DueDate       *time.Time      `db:"due_date"`
	CreatedBy     string          `db:"created_by"`
	CreatedAt     time.Time       `db:"created_at"`
	UpdatedAt     time.Time       `db:"updated_at"`
}

// Recompute refreshes the derived money fields from items and AmountPaid.
func (d *Debt) Recompute() {
	t := ComputeTotals(d.Items, d.AmountPaid)
	d.Total = t.Total
	d.Balance = t.Balance
	d.Status = t.Status
}

// IsOverdue reports whether money is still owed after the due date.
func (d *Debt) IsOverdue(now time.Time) bool {
	if d.DueDate == nil || !d.Balance.IsPositive() {
		return false
	}
	due := time.Date(d.DueDate.Year(), d.DueDate.Month(), d.DueDate.Day(), 0, 0, 0, 0, time.UTC)
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
	return today.After(due)
}

type Payment struct {
	ID         string          `db:"id"`
	DebtID     string          `db:"debt_id"`
	Amount     decimal.Decimal `db:"amount"`
	Method     string          `db:"method"`
	Note       string          `db:"note"`
	RecordedBy string          `db:"recorded_by"`
	CreatedAt  time.Time       `db:"created_at"`
}

type Filter struct {
	BusinessID string
	CreatedBy  string
	CustomerID string
	Status     Status
}
