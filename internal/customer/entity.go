// AngelaMos | 2026
// entity.go

package customer

import (
	"time"

	"github.com/shopspring/decimal"
)

type Customer struct {
	ID         string    `db:"id"`
	BusinessID string    `db:"business_id"`
	Name       string    `db:"name"`
	Phone      string    `db:"phone"`
	Email      string    `db:"email"`
	Address    string    `db:"address"`
	CreatedBy  string    `db:"created_by"`
	CreatedAt  time.Time `db:"created_at"`
	UpdatedAt  time.Time `db:"updated_at"`
}

// Summary aggregates a customer's debts.
type Summary struct {
	CustomerID   string          `db:"customer_id"`
	Total        decimal.Decimal `db:"total"`
	Paid         decimal.Decimal `db:"paid"`
	Outstanding  decimal.Decimal `db:"outstanding"`
	DebtCount    int             `db:"debt_count"`
	OverdueCount int             `db:"overdue_count"`
}

const overduePenalty = 15

// CreditScore rates repayment on a 0-100 scale: the share of the billed
// total already paid, minus a fixed penalty per overdue debt. Customers
// without history start at 100.
func (s Summary) CreditScore() int {
	if !s.Total.IsPositive() {
		return 100
	}

	ratio := s.Paid.Div(s.Total).Mul(decimal.NewFromInt(100)).Round(0).IntPart()
	score := int(ratio) - overduePenalty*s.OverdueCount

	switch {
	case score < 0:
		return 0
	case score > 100:
		return 100
	}
	return score
}
