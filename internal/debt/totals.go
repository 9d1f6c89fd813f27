// AngelaMos | 2026
// totals.go

package debt

import (
	"strings"

	"github.com/shopspring/decimal"

	"github.com/carterperez-dev/debt-manager/internal/core"
)

type Status string

const (
	StatusPaid    Status = "paid"
	StatusPartial Status = "partial"
	StatusUnpaid  Status = "unpaid"
)

func (s Status) Valid() bool {
	switch s {
	case StatusPaid, StatusPartial, StatusUnpaid:
		return true
	}
	return false
}

// Label is the capitalized form shown in lists.
func (s Status) Label() string {
	if s == "" {
		return ""
	}
	return strings.ToUpper(string(s[:1])) + string(s[1:])
}

type Item struct {
	Name     string          `json:"name"`
	Quantity decimal.Decimal `json:"quantity"`
	Price    decimal.Decimal `json:"price"`
	Category string          `json:"category,omitempty"`
}

func (i Item) LineTotal() decimal.Decimal {
	return i.Quantity.Mul(i.Price)
}

type Totals struct {
	Total   decimal.Decimal `json:"total"`
	Balance decimal.Decimal `json:"balance"`
	Status  Status          `json:"status"`
}

// ComputeTotals derives total, balance and status from line items and the
// amount already paid. Every debt figure in the system goes through here.
//
// A debt is paid once nothing is owed, partial when something but not
// everything has been paid, and unpaid otherwise.
func ComputeTotals(items []Item, amountPaid decimal.Decimal) Totals {
	total := decimal.Zero
	for _, it := range items {
		total = total.Add(it.LineTotal())
	}
	total = total.Round(2)
	balance := total.Sub(amountPaid).Round(2)

	status := StatusUnpaid
	switch {
	case !balance.IsPositive():
		status = StatusPaid
	case amountPaid.IsPositive():
		status = StatusPartial
	}

	return Totals{Total: total, Balance: balance, Status: status}
}

// ValidateDraft checks a debt before it is created. Totals must be positive
// and the amount paid up front cannot exceed them.
func ValidateDraft(items []Item, amountPaid decimal.Decimal) error {
	if len(items) == 0 {
		return core.NewDomainError(core.ErrInvalidInput, "at least one item is required")
	}

	for i, it := range items {
		n := i + 1
		switch {
		case strings.TrimSpace(it.Name) == "":
			return core.NewDomainError(core.ErrInvalidInput, "item %d: name is required", n)
		case len(it.Name) > 200:
			return core.NewDomainError(core.ErrInvalidInput, "item %d: name is too long", n)
		case !it.Quantity.IsPositive():
			return core.NewDomainError(core.ErrInvalidInput, "item %d: quantity must be greater than zero", n)
		case it.Price.IsNegative():
			return core.NewDomainError(core.ErrInvalidInput, "item %d: price cannot be negative", n)
		}
	}

	if amountPaid.IsNegative() {
		return core.NewDomainError(core.ErrInvalidInput, "amount paid cannot be negative")
	}

	totals := ComputeTotals(items, amountPaid)
	if !totals.Total.IsPositive() {
		return core.NewDomainError(core.ErrInvalidInput, "debt total must be greater than zero")
	}
	if amountPaid.GreaterThan(totals.Total) {
		return core.NewDomainError(
			core.ErrInvalidInput,
			"amount paid cannot exceed total of %s",
			totals.Total.StringFixed(2),
		)
	}

	return nil
}

// ValidatePayment checks amount against the outstanding balance.
func ValidatePayment(amount, balance decimal.Decimal) error {
	if !amount.IsPositive() {
		return core.NewDomainError(core.ErrInvalidInput, "payment amount must be greater than zero")
	}
	if !balance.IsPositive() {
		return core.NewDomainError(core.ErrConflict, "debt is already paid")
	}
	if amount.GreaterThan(balance) {
		return core.NewDomainError(
			core.ErrInvalidInput,
			"payment of %s exceeds balance of %s",
			amount.StringFixed(2),
			balance.StringFixed(2),
		)
	}
	return nil
}
