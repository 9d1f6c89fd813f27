// AngelaMos | 2026
// commands_test.go

package main

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"github.com/carterperez-dev/debt-manager/internal/auth"
	"github.com/carterperez-dev/debt-manager/internal/client"
	"github.com/carterperez-dev/debt-manager/internal/core"
	"github.com/carterperez-dev/debt-manager/internal/debt"
	"github.com/carterperez-dev/debt-manager/internal/forms"
	"github.com/carterperez-dev/debt-manager/internal/role"
	"github.com/carterperez-dev/debt-manager/internal/session"
	"github.com/carterperez-dev/debt-manager/internal/user"
)

func TestParseItem(t *testing.T) {
	tests := []struct {
		in      string
		want    debt.Item
		wantErr bool
	}{
		{
			in: "Bag of cement:2:900:Construction",
			want: debt.Item{
				Name:     "Bag of cement",
				Quantity: decimal.NewFromInt(2),
				Price:    decimal.NewFromInt(900),
				Category: "Construction",
			},
		},
		{
			in:   " Nails : 1.5 : 120.50 ",
			want: debt.Item{Name: "Nails", Quantity: decimal.RequireFromString("1.5"), Price: decimal.RequireFromString("120.50")},
		},
		{in: "Nails:2", wantErr: true},
		{in: "Nails:two:10", wantErr: true},
		{in: "Nails:2:ten", wantErr: true},
		{in: "a:1:2:c:d", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := parseItem(tt.in)
			if (err != nil) != tt.wantErr {
				t.Fatalf("err = %v, wantErr %v", err, tt.wantErr)
			}
			if tt.wantErr {
				return
			}
			if got.Name != tt.want.Name || got.Category != tt.want.Category ||
				!got.Quantity.Equal(tt.want.Quantity) || !got.Price.Equal(tt.want.Price) {
				t.Errorf("item = %+v, want %+v", got, tt.want)
			}
		})
	}
}

func TestMessage(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want string
	}{
		{
			name: "forbidden",
			err:  &client.APIError{StatusCode: http.StatusForbidden, Code: "FORBIDDEN", Message: "insufficient permissions"},
			want: forms.MsgAccessDenied,
		},
		{
			name: "validation",
			err:  core.NewDomainError(core.ErrInvalidInput, "add at least one item"),
			want: "add at least one item",
		},
		{
			name: "offline",
			err:  &client.NetworkError{Err: errors.New("connection refused")},
			want: forms.MsgGeneric,
		},
		{
			name: "local",
			err:  fmt.Errorf("write export: %w", errors.New("disk full")),
			want: "write export: disk full",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := message(tt.err); got != tt.want {
				t.Errorf("message = %q, want %q", got, tt.want)
			}
		})
	}
}

func fakeServer(
	t *testing.T,
	member user.UserResponse,
	debts []debt.DebtResponse,
	routes ...func(*http.ServeMux),
) *httptest.Server {
	t.Helper()

	mux := http.NewServeMux()
	mux.HandleFunc("POST /auth/login", func(w http.ResponseWriter, _ *http.Request) {
		core.OK(w, auth.AuthResponse{
			User: auth.UserResponse{ID: member.ID, Email: member.Email, Name: member.Name, Role: member.Role},
			Tokens: auth.TokenResponse{
				AccessToken:  "access-1",
				RefreshToken: "refresh-1",
				ExpiresAt:    time.Now().Add(time.Hour),
			},
		})
	})
	mux.HandleFunc("GET /me", func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Authorization") != "Bearer access-1" {
			core.Unauthorized(w, "")
			return
		}
		core.OK(w, member)
	})
	mux.HandleFunc("GET /debts", func(w http.ResponseWriter, _ *http.Request) {
		core.OK(w, debts)
	})
	for _, route := range routes {
		route(mux)
	}

	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv
}

func TestLoginThenListDebts(t *testing.T) {
	member := user.UserResponse{
		ID:          "sp-1",
		Email:       "sam@example.com",
		Name:        "Sam",
		Role:        role.Salesperson,
		BusinessID:  "biz-1",
		HasBusiness: true,
	}
	base := time.Date(2026, 5, 1, 9, 0, 0, 0, time.UTC)
	debts := []debt.DebtResponse{
		{ID: "d-1", CustomerName: "Jane Doe", CustomerPhone: "0700111222", Total: dec("1800"), AmountPaid: dec("500"), Balance: dec("1300"), Status: debt.StatusPartial, CreatedAt: base},
		{ID: "d-2", CustomerName: "John Roe", CustomerPhone: "0700333444", Total: dec("400"), Balance: dec("400"), Status: debt.StatusUnpaid, CreatedAt: base.Add(time.Hour)},
		{ID: "d-3", CustomerName: "Jane Smith", CustomerPhone: "0700555666", Total: dec("2500"), Balance: dec("2500"), Status: debt.StatusUnpaid, CreatedAt: base.Add(2 * time.Hour)},
	}
	srv := fakeServer(t, member, debts)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	var out bytes.Buffer
	a, err := start(ctx, client.New(srv.URL), session.NewMemoryPersister(), &out)
	if err != nil {
		t.Fatalf("start: %v", err)
	}
	defer a.close()

	if err := cmdLogin(ctx, a, []string{"-email", member.Email, "-password", "pw-123456"}); err != nil {
		t.Fatalf("login: %v", err)
	}
	if !strings.Contains(out.String(), "view: render salesperson-desktop") {
		t.Errorf("login output missing landing view:\n%s", out.String())
	}

	out.Reset()
	if err := cmdWhoami(ctx, a, []string{"-width", "375"}); err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(out.String(), "view: render salesperson-mobile") {
		t.Errorf("narrow whoami:\n%s", out.String())
	}

	out.Reset()
	if err := cmdDebts(ctx, a, []string{"-search", "jane", "-sort", "balance", "-desc"}); err != nil {
		t.Fatalf("debts: %v", err)
	}

	lines := strings.Split(strings.TrimSpace(out.String()), "\n")
	if len(lines) != 3 {
		t.Fatalf("want header and two rows, got:\n%s", out.String())
	}
	if !strings.HasPrefix(lines[1], "d-3") || !strings.HasPrefix(lines[2], "d-1") {
		t.Errorf("rows not sorted by balance descending:\n%s", out.String())
	}
	if !strings.Contains(lines[2], "Partial") {
		t.Errorf("status label missing: %q", lines[2])
	}
}

func TestCommandsNeedSession(t *testing.T) {
	srv := fakeServer(t, user.UserResponse{}, nil)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	var out bytes.Buffer
	a, err := start(ctx, client.New(srv.URL), session.NewMemoryPersister(), &out)
	if err != nil {
		t.Fatalf("start: %v", err)
	}
	defer a.close()

	if err := cmdFinance(ctx, a, nil); !errors.Is(err, session.ErrNotSignedIn) {
		t.Errorf("finance err = %v, want ErrNotSignedIn", err)
	}

	out.Reset()
	if err := cmdDashboard(ctx, a, nil); err != nil {
		t.Fatal(err)
	}
	if got := strings.TrimSpace(out.String()); got != "redirect /login" {
		t.Errorf("dashboard = %q, want redirect /login", got)
	}
}

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}
