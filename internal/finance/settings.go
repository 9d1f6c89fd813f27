// AngelaMos | 2026
// settings.go

package finance

import (
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/carterperez-dev/debt-manager/internal/core"
)

type LateFeeType string

const (
	LateFeePercentage LateFeeType = "percentage"
	LateFeeFixed      LateFeeType = "fixed"
)

type Settings struct {
	BusinessID            string          `db:"business_id"             json:"business_id"`
	Currency              string          `db:"currency"                json:"currency"`
	DueDay                int             `db:"due_day"                 json:"due_day"`
	GracePeriodDays       int             `db:"grace_period_days"       json:"grace_period_days"`
	LateFeeEnabled        bool            `db:"late_fee_enabled"        json:"late_fee_enabled"`
	LateFeeType           LateFeeType     `db:"late_fee_type"           json:"late_fee_type"`
	LateFeeAmount         decimal.Decimal `db:"late_fee_amount"         json:"late_fee_amount"`
	RemindersEnabled      bool            `db:"reminders_enabled"       json:"reminders_enabled"`
	ReminderDaysBefore    int             `db:"reminder_days_before"    json:"reminder_days_before"`
	ReminderFrequencyDays int             `db:"reminder_frequency_days" json:"reminder_frequency_days"`
	CreditLimit           decimal.Decimal `db:"credit_limit"            json:"credit_limit"`
	UpdatedAt             *time.Time      `db:"updated_at"              json:"updated_at,omitempty"`
}

// Defaults are served until a business saves its own settings. A zero
// CreditLimit means no limit.
func Defaults(businessID string) Settings {
	return Settings{
		BusinessID:            businessID,
		Currency:              "USD",
		DueDay:                1,
		GracePeriodDays:       7,
		LateFeeEnabled:        false,
		LateFeeType:           LateFeePercentage,
		LateFeeAmount:         decimal.NewFromInt(5),
		RemindersEnabled:      true,
		ReminderDaysBefore:    3,
		ReminderFrequencyDays: 7,
		CreditLimit:           decimal.Zero,
	}
}

type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// FieldErrors lists every out-of-range field at once.
type FieldErrors []FieldError

func (fe FieldErrors) Error() string {
	parts := make([]string, len(fe))
	for i, e := range fe {
		parts[i] = e.Message
	}
	return strings.Join(parts, "; ")
}

func (fe FieldErrors) Unwrap() error {
	return core.ErrInvalidInput
}

// For returns the message for field, or "".
func (fe FieldErrors) For(field string) string {
	for _, e := range fe {
		if e.Field == field {
			return e.Message
		}
	}
	return ""
}

var (
	maxPercentageFee = decimal.NewFromInt(100)
	maxFixedFee      = decimal.NewFromInt(1_000_000)
	maxCreditLimit   = decimal.NewFromInt(100_000_000)
)

func intRange(errs *FieldErrors, field, label string, v, lo, hi int) {
	if v < lo || v > hi {
		*errs = append(*errs, FieldError{
			Field:   field,
			Message: fmt.Sprintf("%s must be between %d and %d", label, lo, hi),
		})
	}
}

func decimalRange(errs *FieldErrors, field, label string, v, hi decimal.Decimal) {
	if v.IsNegative() || v.GreaterThan(hi) {
		*errs = append(*errs, FieldError{
			Field:   field,
			Message: fmt.Sprintf("%s must be between 0 and %s", label, hi.String()),
		})
	}
}

// Validate checks every field against its fixed range. The same rules run
// in the API and in client forms.
func (s Settings) Validate() error {
	var errs FieldErrors

	if !IsSupportedCurrency(s.Currency) {
		errs = append(errs, FieldError{
			Field:   "currency",
			Message: fmt.Sprintf("currency %q is not supported", s.Currency),
		})
	}

	intRange(&errs, "due_day", "due day", s.DueDay, 1, 28)
	intRange(&errs, "grace_period_days", "grace period", s.GracePeriodDays, 0, 90)

	switch s.LateFeeType {
	case LateFeePercentage:
		decimalRange(&errs, "late_fee_amount", "late fee percentage", s.LateFeeAmount, maxPercentageFee)
	case LateFeeFixed:
		decimalRange(&errs, "late_fee_amount", "late fee amount", s.LateFeeAmount, maxFixedFee)
	default:
		errs = append(errs, FieldError{
			Field:   "late_fee_type",
			Message: "late fee type must be percentage or fixed",
		})
	}

	intRange(&errs, "reminder_days_before", "reminder lead time", s.ReminderDaysBefore, 0, 30)
	intRange(&errs, "reminder_frequency_days", "reminder frequency", s.ReminderFrequencyDays, 1, 30)
	decimalRange(&errs, "credit_limit", "credit limit", s.CreditLimit, maxCreditLimit)

	if len(errs) > 0 {
		return errs
	}
	return nil
}
