// AngelaMos | 2026
// lists.go

package listview

import (
	"strings"

	"github.com/carterperez-dev/debt-manager/internal/customer"
	"github.com/carterperez-dev/debt-manager/internal/debt"
	"github.com/carterperez-dev/debt-manager/internal/team"
	"github.com/carterperez-dev/debt-manager/internal/user"
)

func byText[T any](f func(T) string) func(a, b T) int {
	return func(a, b T) int {
		return strings.Compare(strings.ToLower(f(a)), strings.ToLower(f(b)))
	}
}

func Debts() Config[debt.DebtResponse] {
	return Config[debt.DebtResponse]{
		SearchFields: []func(debt.DebtResponse) string{
			func(d debt.DebtResponse) string { return d.CustomerName },
			func(d debt.DebtResponse) string { return d.CustomerPhone },
			func(d debt.DebtResponse) string { return string(d.Status) },
		},
		SortFields: map[string]func(a, b debt.DebtResponse) int{
			"customer": byText(func(d debt.DebtResponse) string { return d.CustomerName }),
			"total":    func(a, b debt.DebtResponse) int { return a.Total.Cmp(b.Total) },
			"balance":  func(a, b debt.DebtResponse) int { return a.Balance.Cmp(b.Balance) },
			"status":   byText(func(d debt.DebtResponse) string { return string(d.Status) }),
			"due_date": byText(func(d debt.DebtResponse) string { return d.DueDate }),
			"created":  func(a, b debt.DebtResponse) int { return a.CreatedAt.Compare(b.CreatedAt) },
		},
		DefaultSort: "created",
		TieBreak:    func(a, b debt.DebtResponse) int { return strings.Compare(a.ID, b.ID) },
	}
}

func Customers() Config[customer.CustomerResponse] {
	return Config[customer.CustomerResponse]{
		SearchFields: []func(customer.CustomerResponse) string{
			func(c customer.CustomerResponse) string { return c.Name },
			func(c customer.CustomerResponse) string { return c.Phone },
			func(c customer.CustomerResponse) string { return c.Email },
		},
		SortFields: map[string]func(a, b customer.CustomerResponse) int{
			"name":         byText(func(c customer.CustomerResponse) string { return c.Name }),
			"outstanding":  func(a, b customer.CustomerResponse) int { return a.Outstanding.Cmp(b.Outstanding) },
			"credit_score": func(a, b customer.CustomerResponse) int { return a.CreditScore - b.CreditScore },
		},
		DefaultSort: "name",
		TieBreak:    func(a, b customer.CustomerResponse) int { return strings.Compare(a.ID, b.ID) },
	}
}

func Members() Config[user.MemberResponse] {
	return Config[user.MemberResponse]{
		SearchFields: []func(user.MemberResponse) string{
			func(m user.MemberResponse) string { return m.Name },
			func(m user.MemberResponse) string { return m.Email },
			func(m user.MemberResponse) string { return string(m.Role) },
		},
		SortFields: map[string]func(a, b user.MemberResponse) int{
			"name":   byText(func(m user.MemberResponse) string { return m.Name }),
			"role":   byText(func(m user.MemberResponse) string { return string(m.Role) }),
			"joined": func(a, b user.MemberResponse) int { return a.CreatedAt.Compare(b.CreatedAt) },
		},
		DefaultSort: "name",
		TieBreak:    func(a, b user.MemberResponse) int { return strings.Compare(a.ID, b.ID) },
	}
}

func Invitations() Config[team.InvitationResponse] {
	return Config[team.InvitationResponse]{
		SearchFields: []func(team.InvitationResponse) string{
			func(i team.InvitationResponse) string { return i.Name },
			func(i team.InvitationResponse) string { return i.Email },
		},
		SortFields: map[string]func(a, b team.InvitationResponse) int{
			"name":    byText(func(i team.InvitationResponse) string { return i.Name }),
			"email":   byText(func(i team.InvitationResponse) string { return i.Email }),
			"expires": func(a, b team.InvitationResponse) int { return a.ExpiresAt.Compare(b.ExpiresAt) },
		},
		DefaultSort: "expires",
		TieBreak:    func(a, b team.InvitationResponse) int { return strings.Compare(a.ID, b.ID) },
	}
}
