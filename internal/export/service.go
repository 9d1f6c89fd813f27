// AngelaMos | 2026
// service.go

package export

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"go.opentelemetry.io/otel/attribute"

	"github.com/carterperez-dev/debt-manager/internal/core"
	"github.com/carterperez-dev/debt-manager/internal/customer"
	"github.com/carterperez-dev/debt-manager/internal/debt"
	"github.com/carterperez-dev/debt-manager/internal/role"
	"github.com/carterperez-dev/debt-manager/internal/user"
)

type DebtSource interface {
	List(ctx context.Context, actor role.Actor, f debt.Filter) ([]debt.Debt, error)
	BusinessPayments(ctx context.Context, businessID string) ([]debt.Payment, error)
	Now() time.Time
}

type CustomerSource interface {
	List(ctx context.Context, actor role.Actor) ([]customer.Listing, error)
}

type Service struct {
	debts      DebtSource
	customers  CustomerSource
	businesses user.BusinessLookup
}

func NewService(
	debts DebtSource,
	customers CustomerSource,
	businesses user.BusinessLookup,
) *Service {
	return &Service{
		debts:      debts,
		customers:  customers,
		businesses: businesses,
	}
}

// File is a finished export ready to be served as a download.
type File struct {
	Name    string
	Content []byte
}

func (s *Service) Business(ctx context.Context, actor role.Actor) (*File, error) {
	ctx, span := core.StartSpan(ctx, "export.business", actor)
	defer span.End()

	file, err := s.build(ctx, actor)
	if err != nil {
		core.SetSpanError(ctx, err)
		return nil, err
	}

	span.SetAttributes(attribute.Int("export.bytes", len(file.Content)))
	return file, nil
}

func (s *Service) build(ctx context.Context, actor role.Actor) (*File, error) {
	debts, err := s.debts.List(ctx, actor, debt.Filter{})
	if err != nil {
		return nil, fmt.Errorf("export debts: %w", err)
	}

	customers, err := s.customers.List(ctx, actor)
	if err != nil {
		return nil, fmt.Errorf("export customers: %w", err)
	}

	payments, err := s.debts.BusinessPayments(ctx, actor.BusinessID)
	if err != nil {
		return nil, fmt.Errorf("export payments: %w", err)
	}

	now := s.debts.Now()
	content, err := Build(Data{
		Debts:     debts,
		Customers: customers,
		Payments:  payments,
		Now:       now,
	})
	if err != nil {
		return nil, err
	}

	name := ""
	if biz, err := s.businesses.Summary(ctx, actor.BusinessID); err == nil {
		name = biz.Name
	} else {
		slog.Warn("export business name lookup failed",
			"business_id", actor.BusinessID,
			"error", err,
		)
	}

	return &File{Name: Filename(name, now), Content: content}, nil
}
