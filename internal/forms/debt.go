// AngelaMos | 2026
// debt.go

package forms

import (
	"context"
	"slices"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/carterperez-dev/debt-manager/internal/debt"
)

type DebtCreator interface {
	CreateDebt(ctx context.Context, req debt.CreateDebtRequest) (*debt.DebtResponse, error)
}

// AddDebt is the add-debt form. Either CustomerID or a name and phone
// identify the customer.
type AddDebt struct {
	CustomerID    string
	CustomerName  string
	CustomerPhone string
	Items         []debt.Item
	AmountPaid    decimal.Decimal
	DueDate       string
}

func (f *AddDebt) AddItem(it debt.Item) {
	f.Items = append(slices.Clip(f.Items), it)
}

func (f *AddDebt) RemoveItem(i int) {
	if i < 0 || i >= len(f.Items) {
		return
	}
	f.Items = slices.Delete(slices.Clone(f.Items), i, i+1)
}

// Totals is recomputed on every edit.
func (f *AddDebt) Totals() debt.Totals {
	return debt.ComputeTotals(f.Items, f.AmountPaid)
}

// Payload carries the form's totals alongside the inputs.
func (f *AddDebt) Payload() debt.CreateDebtRequest {
	t := f.Totals()
	return debt.CreateDebtRequest{
		CustomerID:    strings.TrimSpace(f.CustomerID),
		CustomerName:  strings.TrimSpace(f.CustomerName),
		CustomerPhone: strings.TrimSpace(f.CustomerPhone),
		Items:         f.Items,
		AmountPaid:    f.AmountPaid,
		DueDate:       strings.TrimSpace(f.DueDate),
		Total:         &t.Total,
		Balance:       &t.Balance,
	}
}

func (f *AddDebt) Validate() error {
	if err := checkStruct(f.Payload()); err != nil {
		return err
	}
	if err := debt.ValidateDraft(f.Items, f.AmountPaid); err != nil {
		return invalid(err.Error())
	}
	return nil
}

func (f *AddDebt) Submit(ctx context.Context, api DebtCreator) (*debt.DebtResponse, error) {
	if err := f.Validate(); err != nil {
		return nil, err
	}
	return api.CreateDebt(ctx, f.Payload())
}
