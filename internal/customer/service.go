// AngelaMos | 2026
// service.go

package customer

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/carterperez-dev/debt-manager/internal/core"
	"github.com/carterperez-dev/debt-manager/internal/role"
)

type Service struct {
	repo Repository
}

func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

// Listing pairs a customer with its debt summary.
type Listing struct {
	Customer Customer
	Summary  Summary
}

func (s *Service) List(ctx context.Context, actor role.Actor) ([]Listing, error) {
	customers, err := s.repo.List(ctx, actor.BusinessID)
	if err != nil {
		return nil, err
	}

	summaries, err := s.repo.Summaries(ctx, actor.BusinessID)
	if err != nil {
		return nil, err
	}

	byCustomer := make(map[string]Summary, len(summaries))
	for _, sum := range summaries {
		byCustomer[sum.CustomerID] = sum
	}

	out := make([]Listing, 0, len(customers))
	for _, c := range customers {
		sum, ok := byCustomer[c.ID]
		if !ok {
			sum = Summary{CustomerID: c.ID}
		}
		out = append(out, Listing{Customer: c, Summary: sum})
	}
	return out, nil
}

func (s *Service) Get(
	ctx context.Context,
	businessID, id string,
) (*Customer, error) {
	return s.repo.GetByID(ctx, businessID, id)
}

func (s *Service) GetListing(
	ctx context.Context,
	actor role.Actor,
	id string,
) (*Listing, error) {
	c, err := s.repo.GetByID(ctx, actor.BusinessID, id)
	if err != nil {
		return nil, err
	}

	summaries, err := s.repo.Summaries(ctx, actor.BusinessID)
	if err != nil {
		return nil, err
	}

	l := &Listing{Customer: *c, Summary: Summary{CustomerID: c.ID}}
	for _, sum := range summaries {
		if sum.CustomerID == c.ID {
			l.Summary = sum
			break
		}
	}
	return l, nil
}

func (s *Service) Create(
	ctx context.Context,
	actor role.Actor,
	req SaveCustomerRequest,
) (*Customer, error) {
	c := &Customer{
		ID:         uuid.New().String(),
		BusinessID: actor.BusinessID,
		CreatedBy:  actor.UserID,
	}
	req.apply(c)

	if err := s.repo.Create(ctx, c); err != nil {
		return nil, err
	}
	return c, nil
}

func (s *Service) Update(
	ctx context.Context,
	actor role.Actor,
	id string,
	req SaveCustomerRequest,
) (*Customer, error) {
	c, err := s.repo.GetByID(ctx, actor.BusinessID, id)
	if err != nil {
		return nil, err
	}

	req.apply(c)
	if err := s.repo.Update(ctx, c); err != nil {
		return nil, err
	}
	return c, nil
}

// Delete refuses while the customer still owes money. Paid debts keep
// their customer name and phone after the customer is gone.
func (s *Service) Delete(ctx context.Context, actor role.Actor, id string) error {
	if !actor.Can(role.DeleteCustomer) {
		return fmt.Errorf("delete customer: %w", core.ErrForbidden)
	}

	unpaid, err := s.repo.CountUnpaidDebts(ctx, actor.BusinessID, id)
	if err != nil {
		return err
	}
	if unpaid > 0 {
		return core.NewDomainError(
			core.ErrConflict,
			"customer still has %d unpaid debt(s)",
			unpaid,
		)
	}

	return s.repo.Delete(ctx, actor.BusinessID, id)
}

// FindOrCreate returns the customer with phone in businessID, creating it
// on first use. Debts are recorded against customers this way.
func (s *Service) FindOrCreate(
	ctx context.Context,
	actor role.Actor,
	name, phone string,
) (*Customer, error) {
	phone = NormalizePhone(phone)
	if phone == "" || strings.TrimSpace(name) == "" {
		return nil, core.NewDomainError(
			core.ErrInvalidInput,
			"customer name and phone are required",
		)
	}

	existing, err := s.repo.GetByPhone(ctx, actor.BusinessID, phone)
	if err == nil {
		return existing, nil
	}
	if !errors.Is(err, core.ErrNotFound) {
		return nil, err
	}

	c, err := s.Create(ctx, actor, SaveCustomerRequest{Name: name, Phone: phone})
	if errors.Is(err, core.ErrDuplicateKey) {
		// lost a race with a concurrent create
		return s.repo.GetByPhone(ctx, actor.BusinessID, phone)
	}
	return c, err
}
