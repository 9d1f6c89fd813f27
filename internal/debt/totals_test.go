// AngelaMos | 2026
// totals_test.go

package debt

import (
	"errors"
	"testing"

	"github.com/shopspring/decimal"

	"github.com/carterperez-dev/debt-manager/internal/core"
)

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func TestComputeTotals(t *testing.T) {
	cement := Item{Name: "Bag of cement", Quantity: dec("2"), Price: dec("900"), Category: "Construction"}

	tests := []struct {
		name        string
		items       []Item
		paid        string
		wantTotal   string
		wantBalance string
		wantStatus  Status
	}{
		{"cement partial", []Item{cement}, "500", "1800", "1300", StatusPartial},
		{"cement unpaid", []Item{cement}, "0", "1800", "1800", StatusUnpaid},
		{"cement paid", []Item{cement}, "1800", "1800", "0", StatusPaid},
		{
			"several items",
			[]Item{
				cement,
				{Name: "Nails", Quantity: dec("3"), Price: dec("12.50")},
				{Name: "Sand", Quantity: dec("0.5"), Price: dec("101")},
			},
			"100",
			"1888",
			"1788",
			StatusPartial,
		},
		{"sub cent rounding", []Item{{Name: "Wire", Quantity: dec("3"), Price: dec("0.333")}}, "0", "1", "1", StatusUnpaid},
		{"no items", nil, "0", "0", "0", StatusPaid},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ComputeTotals(tt.items, dec(tt.paid))

			if !got.Total.Equal(dec(tt.wantTotal)) {
				t.Errorf("Total = %s, want %s", got.Total, tt.wantTotal)
			}
			if !got.Balance.Equal(dec(tt.wantBalance)) {
				t.Errorf("Balance = %s, want %s", got.Balance, tt.wantBalance)
			}
			if got.Status != tt.wantStatus {
				t.Errorf("Status = %s, want %s", got.Status, tt.wantStatus)
			}
		})
	}
}

// Balance is always total minus paid, and the status follows from the two.
func TestComputeTotalsStatusAgreesWithBalance(t *testing.T) {
	items := []Item{{Name: "Goods", Quantity: dec("4"), Price: dec("250")}}

	for paid := int64(0); paid <= 1000; paid += 50 {
		p := decimal.NewFromInt(paid)
		got := ComputeTotals(items, p)

		if !got.Balance.Equal(got.Total.Sub(p)) {
			t.Fatalf("paid=%d: balance %s != total %s - paid", paid, got.Balance, got.Total)
		}

		var want Status
		switch {
		case got.Balance.IsZero():
			want = StatusPaid
		case paid == 0:
			want = StatusUnpaid
		default:
			want = StatusPartial
		}
		if got.Status != want {
			t.Errorf("paid=%d: status %s, want %s", paid, got.Status, want)
		}
	}
}

func TestValidateDraft(t *testing.T) {
	good := []Item{{Name: "Bag of cement", Quantity: dec("2"), Price: dec("900")}}

	tests := []struct {
		name    string
		items   []Item
		paid    string
		wantErr bool
	}{
		{"valid", good, "500", false},
		{"fully paid up front", good, "1800", false},
		{"no items", nil, "0", true},
		{"blank name", []Item{{Name: " ", Quantity: dec("1"), Price: dec("1")}}, "0", true},
		{"zero quantity", []Item{{Name: "x", Quantity: dec("0"), Price: dec("1")}}, "0", true},
		{"negative price", []Item{{Name: "x", Quantity: dec("1"), Price: dec("-1")}}, "0", true},
		{"zero total", []Item{{Name: "x", Quantity: dec("1"), Price: dec("0")}}, "0", true},
		{"negative paid", good, "-1", true},
		{"overpaid", good, "1800.01", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateDraft(tt.items, dec(tt.paid))
			if (err != nil) != tt.wantErr {
				t.Fatalf("err = %v, wantErr %v", err, tt.wantErr)
			}
			if err != nil && !errors.Is(err, core.ErrInvalidInput) {
				t.Errorf("err = %v, want ErrInvalidInput", err)
			}
		})
	}
}

func TestStatusLabel(t *testing.T) {
	if got := StatusPartial.Label(); got != "Partial" {
		t.Errorf("Label() = %q, want Partial", got)
	}
}
