// AngelaMos | 2026
// stats.go

package dashboard

import (
	"sort"
	"time"

	"github.com/shopspring/decimal"

	"github.com/carterperez-dev/debt-manager/internal/debt"
)

const topCustomerCount = 5

type StatusCounts struct {
	Unpaid  int `json:"unpaid"`
	Partial int `json:"partial"`
	Paid    int `json:"paid"`
}

type CustomerBalance struct {
	CustomerID  string          `json:"customer_id"`
	Name        string          `json:"name"`
	Phone       string          `json:"phone"`
	Outstanding decimal.Decimal `json:"outstanding"`
	DebtCount   int             `json:"debt_count"`
}

type SalespersonCollection struct {
	UserID    string          `json:"user_id"`
	Name      string          `json:"name"`
	DebtCount int             `json:"debt_count"`
	Total     decimal.Decimal `json:"total"`
	Collected decimal.Decimal `json:"collected"`
}

// Stats is the figure set shared by the owner and salesperson dashboards.
type Stats struct {
	DebtCount    int                     `json:"debt_count"`
	TotalDebt    decimal.Decimal         `json:"total_debt"`
	Outstanding  decimal.Decimal         `json:"outstanding"`
	Collected    decimal.Decimal         `json:"collected"`
	RecoveryRate decimal.Decimal         `json:"recovery_rate"`
	ByStatus     StatusCounts            `json:"by_status"`
	OverdueCount int                     `json:"overdue_count"`
	TeamSize     int                     `json:"team_size,omitempty"`
	TopCustomers []CustomerBalance       `json:"top_customers"`
	BySalesman   []SalespersonCollection `json:"by_salesperson,omitempty"`
	GeneratedAt  time.Time               `json:"generated_at"`
}

// Compute folds debts into dashboard figures. RecoveryRate is the collected
// share of the billed total as a percentage with two decimals.
func Compute(debts []debt.Debt, now time.Time) Stats {
	s := Stats{
		DebtCount:    len(debts),
		TotalDebt:    debt.Sum(debts, func(d *debt.Debt) decimal.Decimal { return d.Total }),
		Outstanding:  debt.Sum(debts, func(d *debt.Debt) decimal.Decimal { return d.Balance }),
		Collected:    debt.Sum(debts, func(d *debt.Debt) decimal.Decimal { return d.AmountPaid }),
		RecoveryRate: decimal.Zero,
		TopCustomers: []CustomerBalance{},
		GeneratedAt:  now.UTC(),
	}

	if s.TotalDebt.IsPositive() {
		s.RecoveryRate = s.Collected.
			Div(s.TotalDebt).
			Mul(decimal.NewFromInt(100)).
			Round(2)
	}

	customers := make(map[string]*CustomerBalance)
	var order []string

	for i := range debts {
		d := &debts[i]

		switch d.Status {
		case debt.StatusPaid:
			s.ByStatus.Paid++
		case debt.StatusPartial:
			s.ByStatus.Partial++
		default:
			s.ByStatus.Unpaid++
		}
		if d.IsOverdue(now) {
			s.OverdueCount++
		}

		key := customerKey(d)
		cb, ok := customers[key]
		if !ok {
			cb = &CustomerBalance{
				CustomerID:  d.CustomerID,
				Name:        d.CustomerName,
				Phone:       d.CustomerPhone,
				Outstanding: decimal.Zero,
			}
			customers[key] = cb
			order = append(order, key)
		}
		cb.Outstanding = cb.Outstanding.Add(d.Balance)
		cb.DebtCount++
	}

	for _, key := range order {
		if cb := customers[key]; cb.Outstanding.IsPositive() {
			s.TopCustomers = append(s.TopCustomers, *cb)
		}
	}
	sort.SliceStable(s.TopCustomers, func(i, j int) bool {
		return s.TopCustomers[i].Outstanding.GreaterThan(s.TopCustomers[j].Outstanding)
	})
	if len(s.TopCustomers) > topCustomerCount {
		s.TopCustomers = s.TopCustomers[:topCustomerCount]
	}

	return s
}

// customerKey groups debts whose customer was later deleted by phone.
func customerKey(d *debt.Debt) string {
	if d.CustomerID != "" {
		return d.CustomerID
	}
	return "phone:" + d.CustomerPhone
}

// collections groups debts by the member who recorded them. Members listed
// in members appear even without debts.
func collections(debts []debt.Debt, members []Member) []SalespersonCollection {
	byUser := make(map[string]*SalespersonCollection, len(members))
	var ids []string

	get := func(id, name string) *SalespersonCollection {
		if c, ok := byUser[id]; ok {
			return c
		}
		c := &SalespersonCollection{
			UserID:    id,
			Name:      name,
			Total:     decimal.Zero,
			Collected: decimal.Zero,
		}
		byUser[id] = c
		ids = append(ids, id)
		return c
	}

	for _, m := range members {
		get(m.ID, m.Name)
	}
	for i := range debts {
		c := get(debts[i].CreatedBy, "")
		c.DebtCount++
		c.Total = c.Total.Add(debts[i].Total)
		c.Collected = c.Collected.Add(debts[i].AmountPaid)
	}

	out := make([]SalespersonCollection, 0, len(ids))
	for _, id := range ids {
		out = append(out, *byUser[id])
	}

	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Collected.GreaterThan(out[j].Collected)
	})
	return out
}
