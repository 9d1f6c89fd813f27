// AngelaMos | 2026
// service.go

package dashboard

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/carterperez-dev/debt-manager/internal/core"
	"github.com/carterperez-dev/debt-manager/internal/debt"
	"github.com/carterperez-dev/debt-manager/internal/role"
	"github.com/carterperez-dev/debt-manager/internal/user"
)

type DebtSource interface {
	List(ctx context.Context, actor role.Actor, f debt.Filter) ([]debt.Debt, error)
	Now() time.Time
}

type TeamSource interface {
	ListMembers(ctx context.Context, businessID string) ([]user.User, error)
}

type Member struct {
	ID   string
	Name string
}

const (
	scopeOwner = "owner"
	scopeSales = "sales"
)

type Service struct {
	debts DebtSource
	team  TeamSource
	kv    core.KV
	ttl   time.Duration
}

func NewService(
	debts DebtSource,
	team TeamSource,
	kv core.KV,
	ttl time.Duration,
) *Service {
	return &Service{
		debts: debts,
		team:  team,
		kv:    kv,
		ttl:   ttl,
	}
}

// Owner returns business-wide figures including team size and per
// salesperson collection.
func (s *Service) Owner(ctx context.Context, actor role.Actor) (*Stats, error) {
	ctx, span := core.StartSpan(ctx, "dashboard.owner", actor)
	defer span.End()

	return s.cached(ctx, actor.BusinessID, scopeOwner, func() (*Stats, error) {
		debts, err := s.debts.List(ctx, actor, debt.Filter{})
		if err != nil {
			return nil, err
		}

		members, err := s.team.ListMembers(ctx, actor.BusinessID)
		if err != nil {
			return nil, fmt.Errorf("dashboard team: %w", err)
		}

		var sales []Member
		for _, m := range members {
			if m.Role == role.Salesperson {
				sales = append(sales, Member{ID: m.ID, Name: m.Name})
			}
		}

		stats := Compute(debts, s.debts.Now())
		stats.TeamSize = len(members)
		stats.BySalesman = collections(debts, sales)
		nameUnknown(stats.BySalesman, members)
		return &stats, nil
	})
}

// Sales returns the same figures restricted to debts the caller recorded.
func (s *Service) Sales(ctx context.Context, actor role.Actor) (*Stats, error) {
	ctx, span := core.StartSpan(ctx, "dashboard.sales", actor)
	defer span.End()

	return s.cached(ctx, actor.BusinessID, scopeSales+":"+actor.UserID, func() (*Stats, error) {
		debts, err := s.debts.List(ctx, actor, debt.Filter{CreatedBy: actor.UserID})
		if err != nil {
			return nil, err
		}
		stats := Compute(debts, s.debts.Now())
		return &stats, nil
	})
}

// BusinessChanged drops every cached dashboard of the business.
func (s *Service) BusinessChanged(ctx context.Context, businessID string) {
	NewInvalidator(s.kv).BusinessChanged(ctx, businessID)
}

// Invalidator moves a business's cache generation. Services that mutate
// debts hold one instead of the whole dashboard service.
type Invalidator struct {
	kv core.KV
}

func NewInvalidator(kv core.KV) *Invalidator {
	return &Invalidator{kv: kv}
}

func (i *Invalidator) BusinessChanged(ctx context.Context, businessID string) {
	if i.kv == nil {
		return
	}
	if err := i.kv.Set(ctx, generationKey(businessID), uuid.NewString(), 0); err != nil {
		slog.Warn("dashboard cache invalidation failed",
			"business_id", businessID,
			"error", err,
		)
	}
}

func (s *Service) cached(
	ctx context.Context,
	businessID, scope string,
	compute func() (*Stats, error),
) (*Stats, error) {
	if s.kv == nil || s.ttl <= 0 {
		return s.compute(ctx, compute)
	}

	key := s.cacheKey(ctx, businessID, scope)

	span := trace.SpanFromContext(ctx)

	var stats Stats
	err := core.GetJSON(ctx, s.kv, key, &stats)
	if err == nil {
		span.SetAttributes(attribute.Bool("dashboard.cache_hit", true))
		return &stats, nil
	}
	span.SetAttributes(attribute.Bool("dashboard.cache_hit", false))
	if !errors.Is(err, core.ErrCacheMiss) {
		slog.Warn("dashboard cache read failed", "key", key, "error", err)
	}

	fresh, err := s.compute(ctx, compute)
	if err != nil {
		return nil, err
	}

	if err := core.SetJSON(ctx, s.kv, key, fresh, s.ttl); err != nil {
		slog.Warn("dashboard cache write failed", "key", key, "error", err)
	}
	return fresh, nil
}

func (s *Service) compute(
	ctx context.Context,
	compute func() (*Stats, error),
) (*Stats, error) {
	stats, err := compute()
	if err != nil {
		core.SetSpanError(ctx, err)
		return nil, err
	}
	return stats, nil
}

func (s *Service) cacheKey(ctx context.Context, businessID, scope string) string {
	gen, err := s.kv.Get(ctx, generationKey(businessID))
	if err != nil {
		gen = "0"
	}
	return fmt.Sprintf("dashboard:%s:%s:%s", businessID, gen, scope)
}

func generationKey(businessID string) string {
	return "dashboard-gen:" + businessID
}

// nameUnknown fills names for non-salesperson members who recorded debts.
func nameUnknown(list []SalespersonCollection, members []user.User) {
	names := make(map[string]string, len(members))
	for _, m := range members {
		names[m.ID] = m.Name
	}
	for i := range list {
		if list[i].Name == "" {
			list[i].Name = names[list[i].UserID]
		}
	}
}
