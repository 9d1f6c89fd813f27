// AngelaMos | 2026
// service.go

package business

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	"github.com/carterperez-dev/debt-manager/internal/core"
	"github.com/carterperez-dev/debt-manager/internal/user"
)

// Owners is the slice of the user service the business flow needs.
type Owners interface {
	GetMe(ctx context.Context, userID string) (*user.User, error)
	AttachBusiness(ctx context.Context, userID, businessID string) (*user.User, error)
}

type Service struct {
	repo   Repository
	owners Owners
}

func NewService(repo Repository, owners Owners) *Service {
	return &Service{repo: repo, owners: owners}
}

// Summary implements user.BusinessLookup.
func (s *Service) Summary(
	ctx context.Context,
	businessID string,
) (*user.BusinessSummary, error) {
	b, err := s.repo.GetByID(ctx, businessID)
	if err != nil {
		return nil, err
	}
	return &user.BusinessSummary{ID: b.ID, Name: b.Name}, nil
}

func (s *Service) ListOwned(
	ctx context.Context,
	ownerID string,
) ([]Business, error) {
	return s.repo.ListByOwner(ctx, ownerID)
}

// Mine returns the business the caller belongs to, whatever their role.
func (s *Service) Mine(ctx context.Context, userID string) (*Business, error) {
	u, err := s.owners.GetMe(ctx, userID)
	if err != nil {
		return nil, err
	}

	if !u.HasBusiness() {
		if u.IsOwner() {
			// covers an owner whose earlier attach step failed
			b, err := s.repo.GetByOwner(ctx, u.ID)
			if err == nil {
				return b, nil
			}
		}
		return nil, fmt.Errorf("my business: %w", core.ErrNotFound)
	}

	return s.repo.GetByID(ctx, *u.BusinessID)
}

// SaveMine creates the owner's business on first call and updates it
// afterwards. The returned user is read back after the business is linked,
// so HasBusiness is already true.
func (s *Service) SaveMine(
	ctx context.Context,
	ownerID string,
	req SaveBusinessRequest,
) (*Business, *user.User, bool, error) {
	owner, err := s.owners.GetMe(ctx, ownerID)
	if err != nil {
		return nil, nil, false, err
	}

	if !owner.IsOwner() {
		return nil, nil, false, fmt.Errorf("save business: %w", core.ErrForbidden)
	}

	existing, err := s.repo.GetByOwner(ctx, ownerID)
	switch {
	case err == nil:
		req.apply(existing)
		if err := s.repo.Update(ctx, existing); err != nil {
			return nil, nil, false, err
		}
		if owner.HasBusiness() {
			return existing, owner, false, nil
		}
		refreshed, err := s.owners.AttachBusiness(ctx, ownerID, existing.ID)
		if err != nil {
			return nil, nil, false, err
		}
		return existing, refreshed, false, nil

	case !errors.Is(err, core.ErrNotFound):
		return nil, nil, false, err
	}

	b := &Business{ID: uuid.New().String(), OwnerID: ownerID}
	req.apply(b)

	if err := s.repo.Create(ctx, b); err != nil {
		return nil, nil, false, err
	}

	refreshed, err := s.owners.AttachBusiness(ctx, ownerID, b.ID)
	if err != nil {
		if delErr := s.repo.Delete(ctx, b.ID); delErr != nil {
			slog.ErrorContext(ctx, "orphaned business after failed attach",
				"business_id", b.ID,
				"owner_id", ownerID,
				"error", delErr,
			)
		}
		return nil, nil, false, fmt.Errorf("attach business: %w", err)
	}

	slog.InfoContext(ctx, "business created",
		"business_id", b.ID,
		"owner_id", ownerID,
	)

	return b, refreshed, true, nil
}
