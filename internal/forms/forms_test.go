// AngelaMos | 2026
// forms_test.go

package forms

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"github.com/carterperez-dev/debt-manager/internal/auth"
	"github.com/carterperez-dev/debt-manager/internal/business"
	"github.com/carterperez-dev/debt-manager/internal/client"
	"github.com/carterperez-dev/debt-manager/internal/core"
	"github.com/carterperez-dev/debt-manager/internal/debt"
	"github.com/carterperez-dev/debt-manager/internal/dispatch"
	"github.com/carterperez-dev/debt-manager/internal/finance"
	"github.com/carterperez-dev/debt-manager/internal/listview"
	"github.com/carterperez-dev/debt-manager/internal/role"
	"github.com/carterperez-dev/debt-manager/internal/session"
	"github.com/carterperez-dev/debt-manager/internal/team"
	"github.com/carterperez-dev/debt-manager/internal/user"
)

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

// fakeAPI serves the handful of endpoints the forms talk to.
type fakeAPI struct {
	mu       sync.Mutex
	debts    []debt.DebtResponse
	lastDebt debt.CreateDebtRequest
	owner    user.UserResponse
	calls    map[string]int
}

func newFakeAPI(t *testing.T) (*fakeAPI, *httptest.Server) {
	t.Helper()

	f := &fakeAPI{
		owner: user.UserResponse{
			ID:    "owner-1",
			Email: "owner@example.com",
			Name:  "Olive",
			Role:  role.Owner,
		},
		calls: map[string]int{},
	}

	mux := http.NewServeMux()
	mux.HandleFunc("POST /auth/login", f.login)
	mux.HandleFunc("GET /me", f.me)
	mux.HandleFunc("POST /business/my", f.saveBusiness)
	mux.HandleFunc("GET /debts", f.listDebts)
	mux.HandleFunc("POST /debts", f.createDebt)

	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return f, srv
}

func (f *fakeAPI) count(r *http.Request) {
	f.mu.Lock()
	f.calls[r.Method+" "+r.URL.Path]++
	f.mu.Unlock()
}

func (f *fakeAPI) login(w http.ResponseWriter, r *http.Request) {
	f.count(r)
	f.mu.Lock()
	u := f.owner
	f.mu.Unlock()
	core.OK(w, auth.AuthResponse{
		User: auth.UserResponse{ID: u.ID, Email: u.Email, Name: u.Name, Role: u.Role},
		Tokens: auth.TokenResponse{
			AccessToken:  "access-1",
			RefreshToken: "refresh-1",
			ExpiresAt:    time.Now().Add(time.Hour),
		},
	})
}

func (f *fakeAPI) me(w http.ResponseWriter, r *http.Request) {
	f.count(r)
	f.mu.Lock()
	defer f.mu.Unlock()
	core.OK(w, f.owner)
}

func (f *fakeAPI) saveBusiness(w http.ResponseWriter, r *http.Request) {
	f.count(r)
	var req business.SaveBusinessRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		core.BadRequest(w, "invalid JSON")
		return
	}

	f.mu.Lock()
	f.owner.BusinessID = "biz-1"
	f.owner.HasBusiness = true
	f.owner.Business = &user.BusinessSummary{ID: "biz-1", Name: req.Name}
	u := f.owner
	f.mu.Unlock()

	core.Created(w, business.SaveBusinessResponse{
		Business: business.BusinessResponse{ID: "biz-1", OwnerID: u.ID, Name: req.Name},
		User:     u,
		Created:  true,
	})
}

func (f *fakeAPI) listDebts(w http.ResponseWriter, r *http.Request) {
	f.count(r)
	f.mu.Lock()
	defer f.mu.Unlock()
	core.OK(w, f.debts)
}

func (f *fakeAPI) createDebt(w http.ResponseWriter, r *http.Request) {
	f.count(r)
	var req debt.CreateDebtRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		core.BadRequest(w, "invalid JSON")
		return
	}

	totals := debt.ComputeTotals(req.Items, req.AmountPaid)

	f.mu.Lock()
	defer f.mu.Unlock()
	f.lastDebt = req
	d := debt.DebtResponse{
		ID:            fmt.Sprintf("debt-%d", len(f.debts)+1),
		CustomerName:  req.CustomerName,
		CustomerPhone: req.CustomerPhone,
		Items:         req.Items,
		Total:         totals.Total,
		AmountPaid:    req.AmountPaid,
		Balance:       totals.Balance,
		Status:        totals.Status,
		CreatedAt:     time.Now(),
	}
	f.debts = append(f.debts, d)
	core.Created(w, d)
}

func TestAddDebtSubmitsTotalsAndListShowsPartial(t *testing.T) {
	ctx := context.Background()
	fake, srv := newFakeAPI(t)
	api := client.New(srv.URL, client.WithTokenSource(client.StaticToken("tok")))

	form := &AddDebt{
		CustomerName:  "Jane Doe",
		CustomerPhone: "0700111222",
		AmountPaid:    dec("500"),
	}
	form.AddItem(debt.Item{
		Name:     "Bag of cement",
		Quantity: dec("2"),
		Price:    dec("900"),
		Category: "Construction",
	})

	totals := form.Totals()
	if !totals.Total.Equal(dec("1800")) || !totals.Balance.Equal(dec("1300")) {
		t.Fatalf("totals = %s / %s, want 1800 / 1300", totals.Total, totals.Balance)
	}

	if _, err := form.Submit(ctx, api); err != nil {
		t.Fatalf("Submit: %v", err)
	}

	sent := fake.lastDebt
	if sent.Total == nil || !sent.Total.Equal(dec("1800")) {
		t.Errorf("payload total = %v, want 1800", sent.Total)
	}
	if sent.Balance == nil || !sent.Balance.Equal(dec("1300")) {
		t.Errorf("payload balance = %v, want 1300", sent.Balance)
	}
	if sent.CustomerName != "Jane Doe" || sent.CustomerPhone != "0700111222" {
		t.Errorf("payload customer = %q %q", sent.CustomerName, sent.CustomerPhone)
	}

	view := listview.NewView(listview.Debts())
	loader := listview.Into(view, func(ctx context.Context) ([]debt.DebtResponse, error) {
		return api.Debts(ctx, client.DebtQuery{})
	})
	defer loader.Close()

	if _, err := loader.Reload(ctx); err != nil {
		t.Fatalf("Reload: %v", err)
	}

	visible := view.Visible()
	if len(visible) != 1 {
		t.Fatalf("visible = %d, want 1", len(visible))
	}
	if got := visible[0].Status.Label(); got != "Partial" {
		t.Errorf("status = %q, want Partial", got)
	}
}

func TestAddDebtTotalsFollowEdits(t *testing.T) {
	form := &AddDebt{CustomerName: "Jane", CustomerPhone: "1"}
	form.AddItem(debt.Item{Name: "a", Quantity: dec("1"), Price: dec("10")})
	form.AddItem(debt.Item{Name: "b", Quantity: dec("3"), Price: dec("5")})

	if got := form.Totals().Total; !got.Equal(dec("25")) {
		t.Fatalf("total = %s, want 25", got)
	}

	form.RemoveItem(0)
	form.RemoveItem(7)
	form.AmountPaid = dec("15")

	got := form.Totals()
	if !got.Total.Equal(dec("15")) || !got.Balance.IsZero() || got.Status != debt.StatusPaid {
		t.Errorf("totals = %+v, want 15 / 0 / paid", got)
	}
}

func TestRemoveItemLeavesSourceSlice(t *testing.T) {
	fetched := []debt.Item{
		{Name: "cement", Quantity: dec("1"), Price: dec("900")},
		{Name: "nails", Quantity: dec("2"), Price: dec("50")},
		{Name: "sand", Quantity: dec("3"), Price: dec("100")},
	}
	form := AddDebt{Items: fetched}

	form.RemoveItem(0)

	if len(form.Items) != 2 || form.Items[0].Name != "nails" {
		t.Fatalf("form items = %+v", form.Items)
	}
	for i, want := range []string{"cement", "nails", "sand"} {
		if fetched[i].Name != want {
			t.Errorf("fetched[%d] = %s, want %s", i, fetched[i].Name, want)
		}
	}
}

type countingCreator struct {
	calls int
}

func (c *countingCreator) CreateDebt(context.Context, debt.CreateDebtRequest) (*debt.DebtResponse, error) {
	c.calls++
	return &debt.DebtResponse{}, nil
}

func TestAddDebtValidationBlocksSubmit(t *testing.T) {
	item := debt.Item{Name: "x", Quantity: dec("1"), Price: dec("100")}

	tests := []struct {
		name string
		form AddDebt
	}{
		{
			name: "no items",
			form: AddDebt{CustomerName: "Jane", CustomerPhone: "1"},
		},
		{
			name: "no customer",
			form: AddDebt{Items: []debt.Item{item}},
		},
		{
			name: "overpaid",
			form: AddDebt{
				CustomerName:  "Jane",
				CustomerPhone: "1",
				Items:         []debt.Item{item},
				AmountPaid:    dec("150"),
			},
		},
		{
			name: "bad due date",
			form: AddDebt{
				CustomerName:  "Jane",
				CustomerPhone: "1",
				Items:         []debt.Item{item},
				DueDate:       "next week",
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			creator := &countingCreator{}
			_, err := tt.form.Submit(context.Background(), creator)
			if !errors.Is(err, core.ErrInvalidInput) {
				t.Fatalf("err = %v, want invalid input", err)
			}
			if creator.calls != 0 {
				t.Errorf("calls = %d, want 0", creator.calls)
			}
			if Feedback(err) == "" {
				t.Error("empty feedback")
			}
		})
	}
}

func TestBusinessProfileUpdatesSessionBeforeReturning(t *testing.T) {
	ctx := context.Background()
	fake, srv := newFakeAPI(t)

	provider := client.NewProvider(client.New(srv.URL))
	store := session.New(provider, session.NewMemoryPersister(), nil)
	if err := store.Start(ctx); err != nil {
		t.Fatalf("Start: %v", err)
	}
	defer store.Close()

	if err := store.Ready(ctx); err != nil {
		t.Fatalf("Ready: %v", err)
	}
	if err := store.Login(ctx, "owner@example.com", "pw"); err != nil {
		t.Fatalf("Login: %v", err)
	}

	before := dispatch.Dispatch(store.Snapshot(), dispatch.Desktop)
	if before.Path != dispatch.PathOnboarding {
		t.Fatalf("before = %+v, want onboarding redirect", before)
	}

	form := &BusinessProfile{Name: "  Mama's Shop ", Email: "shop@example.com"}
	resp, err := form.Submit(ctx, provider.API(), store)
	if err != nil {
		t.Fatalf("Submit: %v", err)
	}
	if resp.Business.Name != "Mama's Shop" {
		t.Errorf("name = %q, want trimmed", resp.Business.Name)
	}

	snap := store.Snapshot()
	if snap.User == nil || !snap.User.HasBusiness {
		t.Fatalf("session user = %+v, want has_business", snap.User)
	}

	after := dispatch.Dispatch(snap, dispatch.Desktop)
	if after.Kind != dispatch.KindRender || after.View != "owner-desktop" {
		t.Errorf("after = %+v, want owner-desktop", after)
	}

	if n := fake.calls["POST /business/my"]; n != 1 {
		t.Errorf("save calls = %d, want 1", n)
	}
}

func TestBusinessProfileValidation(t *testing.T) {
	form := &BusinessProfile{Name: "Shop", Email: "not-an-email"}
	if err := form.Validate(); !errors.Is(err, core.ErrInvalidInput) {
		t.Errorf("bad email err = %v", err)
	}

	form = &BusinessProfile{Name: "   "}
	if err := form.Validate(); !errors.Is(err, core.ErrInvalidInput) {
		t.Errorf("blank name err = %v", err)
	}
}

type fakeFinance struct {
	saved  *finance.Settings
	resets int
}

func (f *fakeFinance) UpdateFinanceSettings(
	_ context.Context,
	_ string,
	s finance.Settings,
) (*finance.Settings, error) {
	f.saved = &s
	return &s, nil
}

func (f *fakeFinance) ResetFinanceSettings(_ context.Context, businessID string) (*finance.Settings, error) {
	f.resets++
	d := finance.Defaults(businessID)
	return &d, nil
}

func TestFinanceSettingsForm(t *testing.T) {
	ctx := context.Background()
	api := &fakeFinance{}

	form := NewFinanceSettings(finance.Defaults("biz-1"))
	form.DueDay = 40
	form.GracePeriodDays = -1

	err := form.Submit(ctx, api)
	if !errors.Is(err, core.ErrInvalidInput) {
		t.Fatalf("err = %v, want invalid input", err)
	}
	if api.saved != nil {
		t.Fatal("invalid settings were sent")
	}
	if form.FieldError(err, "due_day") == "" || form.FieldError(err, "grace_period_days") == "" {
		t.Errorf("missing field errors in %v", err)
	}
	if form.FieldError(err, "currency") != "" {
		t.Error("currency flagged unexpectedly")
	}

	form.DueDay = 15
	form.GracePeriodDays = 3
	form.Currency = " kes "
	if err := form.Submit(ctx, api); err != nil {
		t.Fatalf("Submit: %v", err)
	}
	if api.saved == nil || api.saved.Currency != "KES" || api.saved.DueDay != 15 {
		t.Errorf("saved = %+v", api.saved)
	}

	if err := form.Reset(ctx, api); err != nil {
		t.Fatalf("Reset: %v", err)
	}
	if api.resets != 1 || form.DueDay != finance.Defaults("biz-1").DueDay {
		t.Errorf("reset form = %+v", form.Settings)
	}
}

type fakeInviter struct {
	got []team.InviteRequest
}

func (f *fakeInviter) Invite(_ context.Context, req team.InviteRequest) (*team.InvitationResponse, error) {
	f.got = append(f.got, req)
	return &team.InvitationResponse{Name: req.Name, Email: req.Email, Role: req.Role}, nil
}

func TestInviteValidation(t *testing.T) {
	tests := []struct {
		name    string
		form    Invite
		wantErr bool
	}{
		{"salesperson", Invite{Name: "Bob", Email: "Bob@X.com", Role: "salesperson"}, false},
		{"manager", Invite{Name: "Ann", Email: "ann@x.com", Role: "Manager"}, false},
		{"owner rejected", Invite{Name: "Eve", Email: "eve@x.com", Role: "owner"}, true},
		{"unknown role", Invite{Name: "Eve", Email: "eve@x.com", Role: "boss"}, true},
		{"missing role", Invite{Name: "Eve", Email: "eve@x.com"}, true},
		{"bad email", Invite{Name: "Eve", Email: "eve", Role: "admin"}, true},
		{"missing name", Invite{Email: "eve@x.com", Role: "admin"}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			api := &fakeInviter{}
			_, err := tt.form.Submit(context.Background(), api)
			if (err != nil) != tt.wantErr {
				t.Fatalf("err = %v, wantErr %v", err, tt.wantErr)
			}
			if tt.wantErr {
				if len(api.got) != 0 {
					t.Error("request sent despite validation failure")
				}
				return
			}
			if len(api.got) != 1 || api.got[0].Email != strings.ToLower(strings.TrimSpace(tt.form.Email)) {
				t.Errorf("sent = %+v", api.got)
			}
		})
	}
}

func TestFeedbackHidesProxyPages(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "text/html")
		w.WriteHeader(http.StatusRequestEntityTooLarge)
		_, _ = w.Write([]byte("<html><h1>413 Request Entity Too Large</h1></html>"))
	}))
	defer srv.Close()

	_, err := client.New(srv.URL).Me(context.Background())
	if got := Feedback(err); got != MsgRequestFail {
		t.Errorf("Feedback() = %q, want %q", got, MsgRequestFail)
	}
}

func TestFeedback(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want string
	}{
		{"nil", nil, ""},
		{"validation", invalid("name is required"), "name is required"},
		{
			"backend 4xx message",
			&client.APIError{StatusCode: 409, Code: "CONFLICT", Message: "email already invited"},
			"email already invited",
		},
		{"backend 4xx fallback", &client.APIError{StatusCode: 404}, MsgRequestFail},
		{"backend validation", &client.APIError{StatusCode: 400, Code: "VALIDATION_ERROR", Message: "due_date is invalid"}, "due_date is invalid"},
		{"forbidden", &client.APIError{StatusCode: 403, Message: "insufficient permissions"}, MsgAccessDenied},
		{"unauthorized", &client.APIError{StatusCode: 401}, MsgSignInAgain},
		{"server", &client.APIError{StatusCode: 502, Message: "bad gateway"}, MsgGeneric},
		{"network", &client.NetworkError{Err: errors.New("connection refused")}, MsgGeneric},
		{"wrapped api error", fmt.Errorf("save: %w", &client.APIError{StatusCode: 422, Message: "too long"}), "too long"},
		{"unknown", errors.New("boom"), MsgGeneric},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Feedback(tt.err); got != tt.want {
				t.Errorf("Feedback() = %q, want %q", got, tt.want)
			}
		})
	}
}
