// AngelaMos | 2026
// finance.go

package forms

import (
	"context"
	"errors"
	"strings"

	"github.com/carterperez-dev/debt-manager/internal/finance"
)

type FinanceAPI interface {
	UpdateFinanceSettings(
		ctx context.Context,
		businessID string,
		s finance.Settings,
	) (*finance.Settings, error)
	ResetFinanceSettings(ctx context.Context, businessID string) (*finance.Settings, error)
}

// FinanceSettings edits one business's settings. Ranges are the ones the
// server enforces.
type FinanceSettings struct {
	finance.Settings
}

func NewFinanceSettings(s finance.Settings) *FinanceSettings {
	return &FinanceSettings{Settings: s}
}

// FieldError returns the message for one field after a failed Validate.
func (f *FinanceSettings) FieldError(err error, field string) string {
	var fe finance.FieldErrors
	if errors.As(err, &fe) {
		return fe.For(field)
	}
	return ""
}

func (f *FinanceSettings) Validate() error {
	f.Currency = strings.ToUpper(strings.TrimSpace(f.Currency))
	return f.Settings.Validate()
}

func (f *FinanceSettings) Submit(ctx context.Context, api FinanceAPI) error {
	if err := f.Validate(); err != nil {
		return err
	}

	saved, err := api.UpdateFinanceSettings(ctx, f.BusinessID, f.Settings)
	if err != nil {
		return err
	}
	f.Settings = *saved
	return nil
}

func (f *FinanceSettings) Reset(ctx context.Context, api FinanceAPI) error {
	saved, err := api.ResetFinanceSettings(ctx, f.BusinessID)
	if err != nil {
		return err
	}
	f.Settings = *saved
	return nil
}
