// AngelaMos | 2026
// repository.go

package finance

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/carterperez-dev/debt-manager/internal/core"
)

type Repository interface {
	Get(ctx context.Context, businessID string) (*Settings, error)
	Upsert(ctx context.Context, s *Settings) error
	Delete(ctx context.Context, businessID string) error
}

type repository struct {
	db core.DBTX
}

func NewRepository(db core.DBTX) Repository {
	return &repository{db: db}
}

func (r *repository) Get(ctx context.Context, businessID string) (*Settings, error) {
	var s Settings
	err := r.db.GetContext(ctx, &s, `
		SELECT business_id, currency, due_day, grace_period_days,
			late_fee_enabled, late_fee_type, late_fee_amount,
			reminders_enabled, reminder_days_before, reminder_frequency_days,
			credit_limit, updated_at
		FROM finance_settings
		WHERE business_id = $1`, businessID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("get finance settings: %w", core.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("get finance settings: %w", err)
	}
	return &s, nil
}

func (r *repository) Upsert(ctx context.Context, s *Settings) error {
	err := r.db.GetContext(ctx, &s.UpdatedAt, `
		INSERT INTO finance_settings (
			business_id, currency, due_day, grace_period_days,
			late_fee_enabled, late_fee_type, late_fee_amount,
			reminders_enabled, reminder_days_before, reminder_frequency_days,
			credit_limit
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
		ON CONFLICT (business_id) DO UPDATE SET
			currency = EXCLUDED.currency,
			due_day = EXCLUDED.due_day,
			grace_period_days = EXCLUDED.grace_period_days,
			late_fee_enabled = EXCLUDED.late_fee_enabled,
			late_fee_type = EXCLUDED.late_fee_type,
			late_fee_amount = EXCLUDED.late_fee_amount,
			reminders_enabled = EXCLUDED.reminders_enabled,
			reminder_days_before = EXCLUDED.reminder_days_before,
			reminder_frequency_days = EXCLUDED.reminder_frequency_days,
			credit_limit = EXCLUDED.credit_limit,
			updated_at = NOW()
		RETURNING updated_at`,
		s.BusinessID,
		s.Currency,
		s.DueDay,
		s.GracePeriodDays,
		s.LateFeeEnabled,
		s.LateFeeType,
		s.LateFeeAmount,
		s.RemindersEnabled,
		s.ReminderDaysBefore,
		s.ReminderFrequencyDays,
		s.CreditLimit,
	)
	if err != nil {
		return fmt.Errorf("save finance settings: %w", err)
	}
	return nil
}

func (r *repository) Delete(ctx context.Context, businessID string) error {
	_, err := r.db.ExecContext(ctx, `
		DELETE FROM finance_settings
		WHERE business_id = $1`, businessID)
	if err != nil {
		return fmt.Errorf("reset finance settings: %w", err)
	}
	return nil
}
