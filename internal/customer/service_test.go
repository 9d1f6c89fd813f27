// AngelaMos | 2026
// service_test.go

package customer

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"github.com/carterperez-dev/debt-manager/internal/core"
	"github.com/carterperez-dev/debt-manager/internal/role"
)

type memRepo struct {
	mu        sync.Mutex
	customers map[string]*Customer
	summaries map[string]Summary
	unpaid    map[string]int
}

func newMemRepo() *memRepo {
	return &memRepo{
		customers: make(map[string]*Customer),
		summaries: make(map[string]Summary),
		unpaid:    make(map[string]int),
	}
}

func (m *memRepo) Create(_ context.Context, c *Customer) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, existing := range m.customers {
		if existing.BusinessID == c.BusinessID && existing.Phone == c.Phone {
			return core.ErrDuplicateKey
		}
	}
	c.CreatedAt = time.Now()
	c.UpdatedAt = c.CreatedAt
	cp := *c
	m.customers[c.ID] = &cp
	return nil
}

func (m *memRepo) Update(_ context.Context, c *Customer) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	cp := *c
	m.customers[c.ID] = &cp
	return nil
}

func (m *memRepo) Delete(_ context.Context, businessID, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	c, ok := m.customers[id]
	if !ok || c.BusinessID != businessID {
		return core.ErrNotFound
	}
	delete(m.customers, id)
	return nil
}

func (m *memRepo) GetByID(_ context.Context, businessID, id string) (*Customer, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	c, ok := m.customers[id]
	if !ok || c.BusinessID != businessID {
		return nil, core.ErrNotFound
	}
	cp := *c
	return &cp, nil
}

func (m *memRepo) GetByPhone(_ context.Context, businessID, phone string) (*Customer, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, c := range m.customers {
		if c.BusinessID == businessID && c.Phone == phone {
			cp := *c
			return &cp, nil
		}
	}
	return nil, core.ErrNotFound
}

func (m *memRepo) List(_ context.Context, businessID string) ([]Customer, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []Customer
	for _, c := range m.customers {
		if c.BusinessID == businessID {
			out = append(out, *c)
		}
	}
	return out, nil
}

func (m *memRepo) Summaries(context.Context, string) ([]Summary, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]Summary, 0, len(m.summaries))
	for _, s := range m.summaries {
		out = append(out, s)
	}
	return out, nil
}

func (m *memRepo) CountUnpaidDebts(_ context.Context, _, id string) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.unpaid[id], nil
}

func TestCreditScore(t *testing.T) {
	d := decimal.RequireFromString

	tests := []struct {
		name    string
		summary Summary
		want    int
	}{
		{"no history", Summary{}, 100},
		{"fully paid", Summary{Total: d("1000"), Paid: d("1000")}, 100},
		{"half paid", Summary{Total: d("1800"), Paid: d("900")}, 50},
		{"half paid one overdue", Summary{Total: d("1800"), Paid: d("900"), OverdueCount: 1}, 35},
		{"nothing paid many overdue", Summary{Total: d("500"), OverdueCount: 4}, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.summary.CreditScore(); got != tt.want {
				t.Errorf("CreditScore() = %d, want %d", got, tt.want)
			}
		})
	}
}

func TestFindOrCreateReusesPhone(t *testing.T) {
	ctx := context.Background()
	svc := NewService(newMemRepo())
	actor := role.Actor{UserID: "u1", BusinessID: "biz-1", Role: role.Salesperson}

	first, err := svc.FindOrCreate(ctx, actor, "Jane Doe", "0700 111 222")
	if err != nil {
		t.Fatalf("FindOrCreate: %v", err)
	}
	if first.Phone != "0700111222" {
		t.Errorf("Phone = %q, want normalized", first.Phone)
	}

	second, err := svc.FindOrCreate(ctx, actor, "Jane D.", "0700-111-222")
	if err != nil {
		t.Fatalf("FindOrCreate: %v", err)
	}
	if second.ID != first.ID {
		t.Errorf("second lookup created a new customer %s", second.ID)
	}

	other := actor
	other.BusinessID = "biz-2"
	third, err := svc.FindOrCreate(ctx, other, "Jane Doe", "0700111222")
	if err != nil {
		t.Fatalf("FindOrCreate: %v", err)
	}
	if third.ID == first.ID {
		t.Error("customer leaked across businesses")
	}

	if _, err := svc.FindOrCreate(ctx, actor, "", "123"); !errors.Is(err, core.ErrInvalidInput) {
		t.Errorf("blank name err = %v, want ErrInvalidInput", err)
	}
}

func TestDeleteRules(t *testing.T) {
	ctx := context.Background()
	repo := newMemRepo()
	svc := NewService(repo)
	owner := role.Actor{UserID: "o1", BusinessID: "biz-1", Role: role.Owner}
	manager := role.Actor{UserID: "m1", BusinessID: "biz-1", Role: role.Manager}

	c, err := svc.Create(ctx, owner, SaveCustomerRequest{Name: "Jane", Phone: "0700111222"})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}

	if err := svc.Delete(ctx, manager, c.ID); !errors.Is(err, core.ErrForbidden) {
		t.Errorf("manager delete err = %v, want ErrForbidden", err)
	}

	repo.unpaid[c.ID] = 2
	err = svc.Delete(ctx, owner, c.ID)
	if !errors.Is(err, core.ErrConflict) {
		t.Fatalf("delete with unpaid err = %v, want ErrConflict", err)
	}
	if appErr := core.ErrorFromDomain(err, "customer"); appErr.StatusCode != 409 {
		t.Errorf("status = %d, want 409", appErr.StatusCode)
	}

	repo.unpaid[c.ID] = 0
	if err := svc.Delete(ctx, owner, c.ID); err != nil {
		t.Errorf("delete settled customer: %v", err)
	}
}

func TestListAttachesSummaries(t *testing.T) {
	ctx := context.Background()
	repo := newMemRepo()
	svc := NewService(repo)
	actor := role.Actor{UserID: "o1", BusinessID: "biz-1", Role: role.Owner}

	a, _ := svc.Create(ctx, actor, SaveCustomerRequest{Name: "A", Phone: "111"})
	b, _ := svc.Create(ctx, actor, SaveCustomerRequest{Name: "B", Phone: "222"})
	repo.summaries[a.ID] = Summary{
		CustomerID:  a.ID,
		Total:       decimal.NewFromInt(1800),
		Paid:        decimal.NewFromInt(500),
		Outstanding: decimal.NewFromInt(1300),
		DebtCount:   1,
	}

	list, err := svc.List(ctx, actor)
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(list) != 2 {
		t.Fatalf("len = %d, want 2", len(list))
	}

	for _, l := range list {
		switch l.Customer.ID {
		case a.ID:
			if !l.Summary.Outstanding.Equal(decimal.NewFromInt(1300)) {
				t.Errorf("A outstanding = %s", l.Summary.Outstanding)
			}
		case b.ID:
			if l.Summary.DebtCount != 0 || l.Summary.CreditScore() != 100 {
				t.Errorf("B summary = %+v", l.Summary)
			}
		}
	}
}
