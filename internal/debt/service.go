// AngelaMos | 2026
// service.go

package debt

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/carterperez-dev/debt-manager/internal/core"
	"github.com/carterperez-dev/debt-manager/internal/customer"
	"github.com/carterperez-dev/debt-manager/internal/role"
)

type CustomerDirectory interface {
	Get(ctx context.Context, businessID, id string) (*customer.Customer, error)
	FindOrCreate(ctx context.Context, actor role.Actor, name, phone string) (*customer.Customer, error)
}

// ChangeNotifier is told whenever a business's debt figures move.
type ChangeNotifier interface {
	BusinessChanged(ctx context.Context, businessID string)
}

type Service struct {
	repo      Repository
	customers CustomerDirectory
	notifier  ChangeNotifier
	now       func() time.Time
}

func NewService(
	repo Repository,
	customers CustomerDirectory,
	notifier ChangeNotifier,
) *Service {
	return &Service{
		repo:      repo,
		customers: customers,
		notifier:  notifier,
		now:       time.Now,
	}
}

func (s *Service) Now() time.Time {
	return s.now()
}

// scopeFilter restricts callers without ViewAllDebts to their own debts.
func scopeFilter(actor role.Actor, f Filter) Filter {
	f.BusinessID = actor.BusinessID
	if !actor.Can(role.ViewAllDebts) {
		f.CreatedBy = actor.UserID
	}
	return f
}

func (s *Service) List(
	ctx context.Context,
	actor role.Actor,
	f Filter,
) ([]Debt, error) {
	if f.Status != "" && !f.Status.Valid() {
		return nil, core.NewDomainError(core.ErrInvalidInput, "unknown status %q", f.Status)
	}
	return s.repo.List(ctx, scopeFilter(actor, f))
}

func (s *Service) Get(
	ctx context.Context,
	actor role.Actor,
	id string,
) (*Debt, error) {
	d, err := s.repo.GetByID(ctx, actor.BusinessID, id)
	if err != nil {
		return nil, err
	}

	if !actor.Can(role.ViewAllDebts) && d.CreatedBy != actor.UserID {
		return nil, fmt.Errorf("get debt: %w", core.ErrNotFound)
	}
	return d, nil
}

const initialPaymentNote = "paid when the debt was recorded"

// Create records a debt. Totals are always recomputed here; whatever the
// caller believed the total to be is ignored.
func (s *Service) Create(
	ctx context.Context,
	actor role.Actor,
	req CreateDebtRequest,
) (*Debt, error) {
	items := make([]Item, len(req.Items))
	for i, it := range req.Items {
		items[i] = Item{
			Name:     strings.TrimSpace(it.Name),
			Quantity: it.Quantity,
			Price:    it.Price,
			Category: strings.TrimSpace(it.Category),
		}
	}

	if err := ValidateDraft(items, req.AmountPaid); err != nil {
		return nil, err
	}

	var dueDate *time.Time
	if req.DueDate != "" {
		parsed, err := time.Parse(dateLayout, req.DueDate)
		if err != nil {
			return nil, core.NewDomainError(core.ErrInvalidInput, "due date must be YYYY-MM-DD")
		}
		dueDate = &parsed
	}

	var (
		c   *customer.Customer
		err error
	)
	if req.CustomerID != "" {
		c, err = s.customers.Get(ctx, actor.BusinessID, req.CustomerID)
	} else {
		c, err = s.customers.FindOrCreate(ctx, actor, req.CustomerName, req.CustomerPhone)
	}
	if err != nil {
		return nil, err
	}

	d := &Debt{
		ID:            uuid.New().String(),
		BusinessID:    actor.BusinessID,
		CustomerID:    c.ID,
		CustomerName:  c.Name,
		CustomerPhone: c.Phone,
		Items:         items,
		AmountPaid:    req.AmountPaid.Round(2),
		DueDate:       dueDate,
		CreatedBy:     actor.UserID,
	}
	d.Recompute()

	var initial *Payment
	if d.AmountPaid.IsPositive() {
		initial = &Payment{
			ID:         uuid.New().String(),
			DebtID:     d.ID,
			Amount:     d.AmountPaid,
			Method:     "cash",
			Note:       initialPaymentNote,
			RecordedBy: actor.UserID,
		}
	}

	if err := s.repo.Create(ctx, d, initial); err != nil {
		return nil, err
	}

	slog.InfoContext(ctx, "debt created",
		"debt_id", d.ID,
		"business_id", d.BusinessID,
		"total", d.Total.StringFixed(2),
		"status", d.Status,
	)

	s.changed(ctx, actor.BusinessID)
	return d, nil
}

func (s *Service) RecordPayment(
	ctx context.Context,
	actor role.Actor,
	debtID string,
	req RecordPaymentRequest,
) (*Debt, *Payment, error) {
	method := req.Method
	if method == "" {
		method = "cash"
	}

	d, p, err := s.repo.ApplyPayment(ctx, actor.BusinessID, debtID,
		func(d *Debt) (*Payment, error) {
			if !actor.Can(role.ViewAllDebts) && d.CreatedBy != actor.UserID {
				return nil, fmt.Errorf("record payment: %w", core.ErrNotFound)
			}

			amount := req.Amount.Round(2)
			if err := ValidatePayment(amount, d.Balance); err != nil {
				return nil, err
			}

			d.AmountPaid = d.AmountPaid.Add(amount)
			d.Recompute()

			return &Payment{
				ID:         uuid.New().String(),
				DebtID:     d.ID,
				Amount:     amount,
				Method:     method,
				Note:       strings.TrimSpace(req.Note),
				RecordedBy: actor.UserID,
			}, nil
		})
	if err != nil {
		return nil, nil, err
	}

	s.changed(ctx, actor.BusinessID)
	return d, p, nil
}

func (s *Service) ListPayments(
	ctx context.Context,
	actor role.Actor,
	debtID string,
) ([]Payment, error) {
	if _, err := s.Get(ctx, actor, debtID); err != nil {
		return nil, err
	}
	return s.repo.ListPayments(ctx, debtID)
}

// BusinessPayments lists every payment recorded in the business.
func (s *Service) BusinessPayments(
	ctx context.Context,
	businessID string,
) ([]Payment, error) {
	return s.repo.ListPaymentsByBusiness(ctx, businessID)
}

func (s *Service) changed(ctx context.Context, businessID string) {
	if s.notifier != nil {
		s.notifier.BusinessChanged(ctx, businessID)
	}
}

// Sum adds up a field across debts.
func Sum(list []Debt, field func(*Debt) decimal.Decimal) decimal.Decimal {
	total := decimal.Zero
	for i := range list {
		total = total.Add(field(&list[i]))
	}
	return total
}
