// AngelaMos | 2026
// service_test.go

package debt

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/carterperez-dev/debt-manager/internal/core"
	"github.com/carterperez-dev/debt-manager/internal/customer"
	"github.com/carterperez-dev/debt-manager/internal/middleware"
	"github.com/carterperez-dev/debt-manager/internal/role"
)

type memRepo struct {
	mu       sync.Mutex
	debts    map[string]*Debt
	payments []Payment
}

func newMemRepo() *memRepo {
	return &memRepo{debts: make(map[string]*Debt)}
}

func (m *memRepo) Create(_ context.Context, d *Debt, initial *Payment) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	d.CreatedAt = time.Now()
	d.UpdatedAt = d.CreatedAt
	cp := *d
	m.debts[d.ID] = &cp
	if initial != nil {
		initial.CreatedAt = d.CreatedAt
		m.payments = append(m.payments, *initial)
	}
	return nil
}

func (m *memRepo) GetByID(_ context.Context, businessID, id string) (*Debt, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	d, ok := m.debts[id]
	if !ok || d.BusinessID != businessID {
		return nil, core.ErrNotFound
	}
	cp := *d
	return &cp, nil
}

func (m *memRepo) List(_ context.Context, f Filter) ([]Debt, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []Debt
	for _, d := range m.debts {
		if d.BusinessID != f.BusinessID ||
			(f.CreatedBy != "" && d.CreatedBy != f.CreatedBy) ||
			(f.CustomerID != "" && d.CustomerID != f.CustomerID) ||
			(f.Status != "" && d.Status != f.Status) {
			continue
		}
		out = append(out, *d)
	}
	return out, nil
}

func (m *memRepo) ApplyPayment(
	_ context.Context,
	businessID, debtID string,
	fn func(d *Debt) (*Payment, error),
) (*Debt, *Payment, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	stored, ok := m.debts[debtID]
	if !ok || stored.BusinessID != businessID {
		return nil, nil, core.ErrNotFound
	}
	d := *stored
	p, err := fn(&d)
	if err != nil {
		return nil, nil, err
	}
	p.CreatedAt = time.Now()
	m.debts[debtID] = &d
	m.payments = append(m.payments, *p)
	return &d, p, nil
}

func (m *memRepo) ListPayments(_ context.Context, debtID string) ([]Payment, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []Payment
	for _, p := range m.payments {
		if p.DebtID == debtID {
			out = append(out, p)
		}
	}
	return out, nil
}

func (m *memRepo) ListPaymentsByBusiness(context.Context, string) ([]Payment, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]Payment(nil), m.payments...), nil
}

type memCustomers struct {
	mu      sync.Mutex
	byPhone map[string]*customer.Customer
}

func (m *memCustomers) Get(_ context.Context, businessID, id string) (*customer.Customer, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, c := range m.byPhone {
		if c.ID == id && c.BusinessID == businessID {
			return c, nil
		}
	}
	return nil, core.ErrNotFound
}

func (m *memCustomers) FindOrCreate(_ context.Context, actor role.Actor, name, phone string) (*customer.Customer, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	key := actor.BusinessID + "/" + phone
	if c, ok := m.byPhone[key]; ok {
		return c, nil
	}
	c := &customer.Customer{
		ID:         uuid.New().String(),
		BusinessID: actor.BusinessID,
		Name:       name,
		Phone:      phone,
	}
	m.byPhone[key] = c
	return c, nil
}

type countingNotifier struct {
	mu    sync.Mutex
	calls map[string]int
}

func (n *countingNotifier) BusinessChanged(_ context.Context, businessID string) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.calls[businessID]++
}

func newTestService() (*Service, *countingNotifier) {
	notifier := &countingNotifier{calls: make(map[string]int)}
	svc := NewService(
		newMemRepo(),
		&memCustomers{byPhone: make(map[string]*customer.Customer)},
		notifier,
	)
	return svc, notifier
}

var (
	owner = role.Actor{UserID: "owner-1", BusinessID: "biz-1", Role: role.Owner}
	sam   = role.Actor{UserID: "sales-1", BusinessID: "biz-1", Role: role.Salesperson}
	sue   = role.Actor{UserID: "sales-2", BusinessID: "biz-1", Role: role.Salesperson}
)

func cementRequest(paid string) CreateDebtRequest {
	return CreateDebtRequest{
		CustomerName:  "Jane Doe",
		CustomerPhone: "0700111222",
		Items: []Item{{
			Name:     "Bag of cement",
			Quantity: dec("2"),
			Price:    dec("900"),
			Category: "Construction",
		}},
		AmountPaid: dec(paid),
	}
}

func TestCreateIgnoresClientTotalsAndNotifies(t *testing.T) {
	ctx := context.Background()
	svc, notifier := newTestService()

	d, err := svc.Create(ctx, sam, cementRequest("500"))
	if err != nil {
		t.Fatalf("Create: %v", err)
	}

	if !d.Total.Equal(dec("1800")) || !d.Balance.Equal(dec("1300")) || d.Status != StatusPartial {
		t.Errorf("debt totals = %s/%s/%s", d.Total, d.Balance, d.Status)
	}
	if d.CreatedBy != sam.UserID || d.CustomerName != "Jane Doe" {
		t.Errorf("debt = %+v", d)
	}
	if notifier.calls["biz-1"] != 1 {
		t.Errorf("notifier calls = %d, want 1", notifier.calls["biz-1"])
	}

	if _, err := svc.Create(ctx, sam, cementRequest("2000")); !errors.Is(err, core.ErrInvalidInput) {
		t.Errorf("overpaid err = %v, want ErrInvalidInput", err)
	}
}

func TestCreateRecordsUpFrontPayment(t *testing.T) {
	ctx := context.Background()
	svc, _ := newTestService()

	d, err := svc.Create(ctx, sam, cementRequest("500"))
	if err != nil {
		t.Fatal(err)
	}
	unpaid, err := svc.Create(ctx, sam, cementRequest("0"))
	if err != nil {
		t.Fatal(err)
	}

	payments, err := svc.ListPayments(ctx, sam, d.ID)
	if err != nil {
		t.Fatal(err)
	}
	if len(payments) != 1 {
		t.Fatalf("payments = %+v, want one", payments)
	}
	p := payments[0]
	if !p.Amount.Equal(d.AmountPaid) || p.RecordedBy != sam.UserID || p.Note != initialPaymentNote {
		t.Errorf("payment = %+v", p)
	}

	none, err := svc.ListPayments(ctx, sam, unpaid.ID)
	if err != nil {
		t.Fatal(err)
	}
	if len(none) != 0 {
		t.Errorf("unpaid debt payments = %d, want 0", len(none))
	}
}

func TestSalespersonSeesOnlyOwnDebts(t *testing.T) {
	ctx := context.Background()
	svc, _ := newTestService()

	mine, err := svc.Create(ctx, sam, cementRequest("0"))
	if err != nil {
		t.Fatal(err)
	}
	theirs, err := svc.Create(ctx, sue, cementRequest("0"))
	if err != nil {
		t.Fatal(err)
	}

	list, err := svc.List(ctx, sam, Filter{})
	if err != nil {
		t.Fatal(err)
	}
	if len(list) != 1 || list[0].ID != mine.ID {
		t.Errorf("salesperson list = %d debts, want only own", len(list))
	}

	if _, err := svc.Get(ctx, sam, theirs.ID); !errors.Is(err, core.ErrNotFound) {
		t.Errorf("Get other's debt err = %v, want ErrNotFound", err)
	}

	all, err := svc.List(ctx, owner, Filter{})
	if err != nil {
		t.Fatal(err)
	}
	if len(all) != 2 {
		t.Errorf("owner list = %d, want 2", len(all))
	}
}

func TestRecordPayment(t *testing.T) {
	ctx := context.Background()
	svc, notifier := newTestService()

	d, err := svc.Create(ctx, sam, cementRequest("500"))
	if err != nil {
		t.Fatal(err)
	}

	tests := []struct {
		name       string
		actor      role.Actor
		amount     string
		wantErr    error
		wantStatus Status
		wantBal    string
	}{
		{"zero", sam, "0", core.ErrInvalidInput, "", ""},
		{"over balance", sam, "1300.01", core.ErrInvalidInput, "", ""},
		{"other salesperson", sue, "100", core.ErrNotFound, "", ""},
		{"part", sam, "300", nil, StatusPartial, "1000"},
		{"rest by owner", owner, "1000", nil, StatusPaid, "0"},
		{"already paid", owner, "1", core.ErrConflict, "", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, p, err := svc.RecordPayment(ctx, tt.actor, d.ID, RecordPaymentRequest{Amount: dec(tt.amount)})
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Fatalf("err = %v, want %v", err, tt.wantErr)
				}
				return
			}
			if err != nil {
				t.Fatalf("RecordPayment: %v", err)
			}
			if got.Status != tt.wantStatus || !got.Balance.Equal(dec(tt.wantBal)) {
				t.Errorf("debt = %s balance %s, want %s balance %s", got.Status, got.Balance, tt.wantStatus, tt.wantBal)
			}
			if p.Method != "cash" || p.RecordedBy != tt.actor.UserID {
				t.Errorf("payment = %+v", p)
			}
		})
	}

	payments, err := svc.ListPayments(ctx, owner, d.ID)
	if err != nil {
		t.Fatal(err)
	}
	if len(payments) != 3 {
		t.Errorf("payments = %d, want the up-front payment plus 2", len(payments))
	}
	paid := decimal.Zero
	for _, p := range payments {
		paid = paid.Add(p.Amount)
	}
	if !paid.Equal(dec("1800")) {
		t.Errorf("sum of payments = %s, want amount paid 1800", paid)
	}
	if notifier.calls["biz-1"] != 3 {
		t.Errorf("notifier calls = %d, want 3", notifier.calls["biz-1"])
	}
}

type stubVerifier map[string]role.Actor

func (s stubVerifier) VerifyAccessToken(_ context.Context, token string) (*middleware.AccessTokenClaims, error) {
	a, ok := s[token]
	if !ok {
		return nil, core.ErrTokenInvalid
	}
	return &middleware.AccessTokenClaims{UserID: a.UserID, Role: a.Role}, nil
}

type stubResolver struct{}

func (stubResolver) BusinessIDForUser(context.Context, string) (string, error) {
	return "biz-1", nil
}

func TestAddDebtEndToEnd(t *testing.T) {
	svc, _ := newTestService()
	r := chi.NewRouter()
	NewHandler(svc).RegisterRoutes(
		r,
		middleware.Authenticator(stubVerifier{"sam": sam}),
		middleware.BusinessScope(stubResolver{}),
	)

	body := `{
		"customer_name": "Jane Doe",
		"customer_phone": "0700111222",
		"items": [{"name": "Bag of cement", "quantity": 2, "price": 900, "category": "Construction"}],
		"amount_paid": 500,
		"total": 1,
		"balance": 1
	}`

	req := httptest.NewRequest(http.MethodPost, "/debts", strings.NewReader(body))
	req.Header.Set("Authorization", "Bearer sam")
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	if rec.Code != http.StatusCreated {
		t.Fatalf("create status = %d: %s", rec.Code, rec.Body.String())
	}

	var created struct {
		Data DebtResponse `json:"data"`
	}
	if err := json.NewDecoder(rec.Body).Decode(&created); err != nil {
		t.Fatal(err)
	}
	if !created.Data.Total.Equal(decimal.NewFromInt(1800)) || !created.Data.Balance.Equal(decimal.NewFromInt(1300)) {
		t.Errorf("total/balance = %s/%s, want 1800/1300", created.Data.Total, created.Data.Balance)
	}

	req = httptest.NewRequest(http.MethodGet, "/debts", nil)
	req.Header.Set("Authorization", "Bearer sam")
	rec = httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	var listed struct {
		Data []DebtResponse `json:"data"`
	}
	if err := json.NewDecoder(rec.Body).Decode(&listed); err != nil {
		t.Fatal(err)
	}
	if len(listed.Data) != 1 || listed.Data[0].Status.Label() != "Partial" {
		t.Errorf("list = %+v, want one Partial entry", listed.Data)
	}
}
