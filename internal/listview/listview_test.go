// AngelaMos | 2026
// listview_test.go

package listview

import (
	"context"
	"errors"
	"slices"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"github.com/carterperez-dev/debt-manager/internal/debt"
)

func sampleDebts() []debt.DebtResponse {
	mk := func(id, name, phone string, balance int64, status debt.Status) debt.DebtResponse {
		return debt.DebtResponse{
			ID:            id,
			CustomerName:  name,
			CustomerPhone: phone,
			Total:         decimal.NewFromInt(1000),
			Balance:       decimal.NewFromInt(balance),
			Status:        status,
		}
	}
	return []debt.DebtResponse{
		mk("d3", "Jane Doe", "0700111222", 1300, debt.StatusPartial),
		mk("d1", "john smith", "0700333444", 0, debt.StatusPaid),
		mk("d2", "Janet Mwangi", "0711000000", 1300, debt.StatusUnpaid),
		mk("d4", "Bob Otieno", "0722555666", 50, debt.StatusPartial),
	}
}

func ids(list []debt.DebtResponse) []string {
	out := make([]string, len(list))
	for i, d := range list {
		out[i] = d.ID
	}
	return out
}

func TestSearchCaseInsensitive(t *testing.T) {
	v := NewView(Debts())
	v.SetItems(sampleDebts())

	tests := []struct {
		term string
		want []string
	}{
		{"", []string{"d1", "d2", "d3", "d4"}},
		{"JAN", []string{"d2", "d3"}},
		{"0722", []string{"d4"}},
		{"partial", []string{"d3", "d4"}},
		{"nobody", []string{}},
	}

	for _, tt := range tests {
		t.Run(tt.term, func(t *testing.T) {
			v.SetSearch(tt.term)
			got := ids(v.Visible())
			slices.Sort(got)
			if !slices.Equal(got, tt.want) {
				t.Errorf("Visible() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestToggleSort(t *testing.T) {
	v := NewView(Debts())
	v.SetItems(sampleDebts())

	v.ToggleSort("balance")
	if got := ids(v.Visible()); !slices.Equal(got, []string{"d1", "d4", "d2", "d3"}) {
		t.Errorf("asc = %v", got)
	}

	v.ToggleSort("balance")
	if f, d := v.Sort(); f != "balance" || d != Desc {
		t.Fatalf("sort = %s %s", f, d)
	}
	// Equal balances keep the id tie-break in both directions.
	if got := ids(v.Visible()); !slices.Equal(got, []string{"d2", "d3", "d4", "d1"}) {
		t.Errorf("desc = %v", got)
	}

	v.ToggleSort("customer")
	if _, d := v.Sort(); d != Asc {
		t.Error("new field should start ascending")
	}
	if got := ids(v.Visible()); !slices.Equal(got, []string{"d4", "d3", "d2", "d1"}) {
		t.Errorf("by customer = %v", got)
	}

	v.ToggleSort("unknown")
	if f, _ := v.Sort(); f != "customer" {
		t.Errorf("unknown field changed sort to %s", f)
	}
}

func TestFilterCommutesWithSort(t *testing.T) {
	cfg := Debts()
	items := sampleDebts()

	for field, cmp := range cfg.SortFields {
		full := func(a, b debt.DebtResponse) int {
			if c := cmp(a, b); c != 0 {
				return c
			}
			return cfg.TieBreak(a, b)
		}
		for _, term := range []string{"", "jan", "07", "paid", "zzz"} {
			a := Sort(Filter(items, term, cfg.SearchFields), full)
			b := Filter(Sort(items, full), term, cfg.SearchFields)
			if !slices.Equal(ids(a), ids(b)) {
				t.Errorf("%s/%q: filter-sort %v != sort-filter %v", field, term, ids(a), ids(b))
			}

			again := Filter(a, term, cfg.SearchFields)
			if !slices.Equal(ids(again), ids(a)) {
				t.Errorf("%s/%q: filter not idempotent", field, term)
			}
		}
	}
}

func TestLoaderDropsStaleResults(t *testing.T) {
	v := NewView(Debts())
	release := make(chan struct{})
	var calls atomic.Int32

	l := Into(v, func(ctx context.Context) ([]debt.DebtResponse, error) {
		n := calls.Add(1)
		if n == 1 {
			select {
			case <-release:
			case <-ctx.Done():
				return nil, ctx.Err()
			}
			return sampleDebts()[:1], nil
		}
		return sampleDebts(), nil
	})

	firstDone := make(chan error, 1)
	go func() {
		_, err := l.Reload(context.Background())
		firstDone <- err
	}()

	for calls.Load() < 1 {
		time.Sleep(time.Millisecond)
	}

	if _, err := l.Reload(context.Background()); err != nil {
		t.Fatalf("second reload: %v", err)
	}
	close(release)

	if err := <-firstDone; !errors.Is(err, ErrStale) {
		t.Errorf("first reload err = %v, want ErrStale", err)
	}
	if n := len(v.Items()); n != 4 {
		t.Errorf("view has %d items, want the newer 4", n)
	}
}

func TestLoaderClose(t *testing.T) {
	l := NewLoader(func(ctx context.Context) ([]int, error) {
		return []int{1}, nil
	}, nil)
	l.Close()

	if _, err := l.Reload(context.Background()); !errors.Is(err, ErrClosed) {
		t.Errorf("err = %v, want ErrClosed", err)
	}
}

func TestMutateReloadsEvenOnFailure(t *testing.T) {
	var loads int
	l := NewLoader(func(context.Context) ([]string, error) {
		loads++
		return nil, nil
	}, nil)

	if err := l.Mutate(context.Background(), func(context.Context) error { return nil }); err != nil {
		t.Fatal(err)
	}

	boom := errors.New("boom")
	err := l.Mutate(context.Background(), func(context.Context) error { return boom })
	if !errors.Is(err, boom) {
		t.Errorf("err = %v, want op error", err)
	}
	if loads != 2 {
		t.Errorf("loads = %d, want 2", loads)
	}
}

func TestSearchFieldsAllConfigs(t *testing.T) {
	for name, n := range map[string]int{
		"customers":   len(Customers().SearchFields),
		"members":     len(Members().SearchFields),
		"invitations": len(Invitations().SearchFields),
	} {
		if n < 2 || n > 3 {
			t.Errorf("%s searches %d fields", name, n)
		}
	}
	if !strings.EqualFold(Debts().DefaultSort, "created") {
		t.Error("debts default sort")
	}
}
