// AngelaMos | 2026
// export_test.go

package export

import (
	"bytes"
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"
	"github.com/xuri/excelize/v2"

	"github.com/carterperez-dev/debt-manager/internal/core"
	"github.com/carterperez-dev/debt-manager/internal/customer"
	"github.com/carterperez-dev/debt-manager/internal/debt"
	"github.com/carterperez-dev/debt-manager/internal/middleware"
	"github.com/carterperez-dev/debt-manager/internal/role"
	"github.com/carterperez-dev/debt-manager/internal/user"
)

var testNow = time.Date(2026, 5, 2, 9, 0, 0, 0, time.UTC)

type fakeDebts struct{}

func (fakeDebts) List(context.Context, role.Actor, debt.Filter) ([]debt.Debt, error) {
	d := debt.Debt{
		ID:            "d-1",
		CustomerID:    "c-1",
		CustomerName:  "Alice",
		CustomerPhone: "+15550001",
		Items: debt.Items{{
			Name:     "Rice",
			Quantity: decimal.NewFromInt(2),
			Price:    decimal.RequireFromString("12.50"),
		}},
		AmountPaid: decimal.NewFromInt(5),
		CreatedBy:  "u-1",
	}
	d.Recompute()
	return []debt.Debt{d}, nil
}

func (fakeDebts) BusinessPayments(context.Context, string) ([]debt.Payment, error) {
	return []debt.Payment{{
		ID:     "p-1",
		DebtID: "d-1",
		Amount: decimal.NewFromInt(5),
		Method: "cash",
	}}, nil
}

func (fakeDebts) Now() time.Time { return testNow }

type fakeCustomers struct{}

func (fakeCustomers) List(context.Context, role.Actor) ([]customer.Listing, error) {
	return []customer.Listing{{
		Customer: customer.Customer{ID: "c-1", Name: "Alice", Phone: "+15550001"},
		Summary: customer.Summary{
			CustomerID:  "c-1",
			Total:       decimal.NewFromInt(25),
			Paid:        decimal.NewFromInt(5),
			Outstanding: decimal.NewFromInt(20),
			DebtCount:   1,
		},
	}}, nil
}

type fakeBusinesses struct{}

func (fakeBusinesses) Summary(_ context.Context, id string) (*user.BusinessSummary, error) {
	return &user.BusinessSummary{ID: id, Name: "Mama's Shop"}, nil
}

func newTestService() *Service {
	return NewService(fakeDebts{}, fakeCustomers{}, fakeBusinesses{})
}

func TestBusinessWorkbook(t *testing.T) {
	actor := role.Actor{UserID: "u-1", BusinessID: "biz-1", Role: role.Owner}

	file, err := newTestService().Business(context.Background(), actor)
	if err != nil {
		t.Fatalf("Business: %v", err)
	}
	if file.Name != "mama-s-shop-export-20260502.xlsx" {
		t.Errorf("name = %q", file.Name)
	}

	wb, err := excelize.OpenReader(bytes.NewReader(file.Content))
	if err != nil {
		t.Fatalf("open workbook: %v", err)
	}
	defer wb.Close()

	sheets := wb.GetSheetList()
	want := []string{SheetDebts, SheetCustomers, SheetPayments}
	if strings.Join(sheets, ",") != strings.Join(want, ",") {
		t.Fatalf("sheets = %v, want %v", sheets, want)
	}

	rows, err := wb.GetRows(SheetDebts)
	if err != nil {
		t.Fatal(err)
	}
	if len(rows) != 2 || rows[0][0] != "ID" {
		t.Fatalf("debt rows = %v", rows)
	}
	if rows[1][1] != "Alice" || rows[1][4] != "25" || rows[1][6] != "20" || rows[1][7] != "Partial" {
		t.Errorf("debt row = %v", rows[1])
	}

	rows, _ = wb.GetRows(SheetCustomers)
	if len(rows) != 2 || rows[1][10] != "20" {
		t.Errorf("customer rows = %v", rows)
	}

	rows, _ = wb.GetRows(SheetPayments)
	if len(rows) != 2 || rows[1][2] != "Alice" || rows[1][4] != "cash" {
		t.Errorf("payment rows = %v", rows)
	}
}

func TestFilename(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"Acme Ltd", "acme-ltd-export-20260502.xlsx"},
		{"  ", "business-export-20260502.xlsx"},
		{"", "business-export-20260502.xlsx"},
	}
	for _, tt := range tests {
		if got := Filename(tt.in, testNow); got != tt.want {
			t.Errorf("Filename(%q) = %q, want %q", tt.in, got, tt.want)
		}
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

func TestHandler(t *testing.T) {
	r := chi.NewRouter()
	NewHandler(newTestService()).RegisterRoutes(
		r,
		middleware.Authenticator(stubVerifier{
			"owner": {UserID: "u-1", Role: role.Owner},
			"sales": {UserID: "u-2", Role: role.Salesperson},
		}),
		middleware.BusinessScope(stubResolver{}),
	)

	req := httptest.NewRequest(http.MethodGet, "/export/business", nil)
	req.Header.Set("Authorization", "Bearer sales")
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	if rec.Code != http.StatusForbidden {
		t.Errorf("salesperson status = %d, want 403", rec.Code)
	}

	req = httptest.NewRequest(http.MethodGet, "/export/business", nil)
	req.Header.Set("Authorization", "Bearer owner")
	rec = httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("owner status = %d: %s", rec.Code, rec.Body)
	}
	if ct := rec.Header().Get("Content-Type"); ct != ContentType {
		t.Errorf("content type = %q", ct)
	}
	if cd := rec.Header().Get("Content-Disposition"); !strings.HasPrefix(cd, "attachment;") {
		t.Errorf("content disposition = %q", cd)
	}
	if _, err := excelize.OpenReader(rec.Body); err != nil {
		t.Errorf("body is not a workbook: %v", err)
	}
}
