// AngelaMos | 2026
// service.go

package finance

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/carterperez-dev/debt-manager/internal/core"
	"github.com/carterperez-dev/debt-manager/internal/role"
)

type Service struct {
	repo Repository
}

func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

// checkBusiness keeps callers inside their own tenant. Other businesses
// are reported as missing.
func checkBusiness(actor role.Actor, businessID string) error {
	if businessID != actor.BusinessID {
		return fmt.Errorf("finance settings: %w", core.ErrNotFound)
	}
	return nil
}

func (s *Service) Get(
	ctx context.Context,
	actor role.Actor,
	businessID string,
) (*Settings, error) {
	if err := checkBusiness(actor, businessID); err != nil {
		return nil, err
	}

	settings, err := s.repo.Get(ctx, businessID)
	if errors.Is(err, core.ErrNotFound) {
		d := Defaults(businessID)
		return &d, nil
	}
	return settings, err
}

func (s *Service) Update(
	ctx context.Context,
	actor role.Actor,
	businessID string,
	in Settings,
) (*Settings, error) {
	if err := checkBusiness(actor, businessID); err != nil {
		return nil, err
	}

	in.BusinessID = businessID
	in.Currency = strings.ToUpper(strings.TrimSpace(in.Currency))

	if err := in.Validate(); err != nil {
		return nil, err
	}

	if err := s.repo.Upsert(ctx, &in); err != nil {
		return nil, err
	}
	return &in, nil
}

// Reset drops saved settings so the defaults apply again.
func (s *Service) Reset(
	ctx context.Context,
	actor role.Actor,
	businessID string,
) (*Settings, error) {
	if err := checkBusiness(actor, businessID); err != nil {
		return nil, err
	}

	if err := s.repo.Delete(ctx, businessID); err != nil {
		return nil, err
	}

	d := Defaults(businessID)
	return &d, nil
}
