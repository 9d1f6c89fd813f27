// AngelaMos | 2026
// output.go

package main

import (
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/carterperez-dev/debt-manager/internal/customer"
	"github.com/carterperez-dev/debt-manager/internal/dashboard"
	"github.com/carterperez-dev/debt-manager/internal/debt"
	"github.com/carterperez-dev/debt-manager/internal/finance"
	"github.com/carterperez-dev/debt-manager/internal/team"
	"github.com/carterperez-dev/debt-manager/internal/user"
)

// defaultWidth renders the desktop layouts unless -width says otherwise.
const defaultWidth = 1024

func table(out io.Writer) *tabwriter.Writer {
	return tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
}

var (
	debtLayouts       = printers[debt.DebtResponse]{table: printDebts, cards: printDebtCards}
	customerLayouts   = printers[customer.CustomerResponse]{table: printCustomers, cards: printCustomerCards}
	memberLayouts     = printers[user.MemberResponse]{table: printMembers, cards: printMemberCards}
	invitationLayouts = printers[team.InvitationResponse]{table: printInvitations, cards: printInvitationCards}
)

func printDebts(out io.Writer, list []debt.DebtResponse) {
	tw := table(out)
	fmt.Fprintln(tw, "ID\tCUSTOMER\tPHONE\tTOTAL\tPAID\tBALANCE\tSTATUS\tDUE")
	for _, d := range list {
		due := d.DueDate
		if d.Overdue {
			due += " (overdue)"
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\t%s\t%s\t%s\n",
			d.ID,
			d.CustomerName,
			d.CustomerPhone,
			d.Total.StringFixed(2),
			d.AmountPaid.StringFixed(2),
			d.Balance.StringFixed(2),
			d.Status.Label(),
			due,
		)
	}
	_ = tw.Flush()
}

func printDebtCards(out io.Writer, list []debt.DebtResponse) {
	for i, d := range list {
		if i > 0 {
			fmt.Fprintln(out)
		}
		fmt.Fprintf(out, "%s  %s\n", d.CustomerName, d.CustomerPhone)
		fmt.Fprintf(out, "  balance %s of %s  [%s]\n",
			d.Balance.StringFixed(2), d.Total.StringFixed(2), d.Status.Label())
		if d.DueDate != "" {
			due := d.DueDate
			if d.Overdue {
				due += " (overdue)"
			}
			fmt.Fprintf(out, "  due %s\n", due)
		}
		fmt.Fprintf(out, "  id %s\n", d.ID)
	}
}

func printCustomers(out io.Writer, list []customer.CustomerResponse) {
	tw := table(out)
	fmt.Fprintln(tw, "ID\tNAME\tPHONE\tDEBTS\tOUTSTANDING\tOVERDUE\tSCORE")
	for _, c := range list {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%d\t%s\t%d\t%d\n",
			c.ID,
			c.Name,
			c.Phone,
			c.DebtCount,
			c.Outstanding.StringFixed(2),
			c.OverdueCount,
			c.CreditScore,
		)
	}
	_ = tw.Flush()
}

func printCustomerCards(out io.Writer, list []customer.CustomerResponse) {
	for i, c := range list {
		if i > 0 {
			fmt.Fprintln(out)
		}
		fmt.Fprintf(out, "%s  %s\n", c.Name, c.Phone)
		fmt.Fprintf(out, "  owes %s over %d debts, score %d\n",
			c.Outstanding.StringFixed(2), c.DebtCount, c.CreditScore)
		if c.OverdueCount > 0 {
			fmt.Fprintf(out, "  %d overdue\n", c.OverdueCount)
		}
		fmt.Fprintf(out, "  id %s\n", c.ID)
	}
}

func printMembers(out io.Writer, list []user.MemberResponse) {
	tw := table(out)
	fmt.Fprintln(tw, "ID\tNAME\tEMAIL\tROLE\tJOINED")
	for _, m := range list {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\n",
			m.ID, m.Name, m.Email, m.Role, m.CreatedAt.Format("2006-01-02"))
	}
	_ = tw.Flush()
}

func printMemberCards(out io.Writer, list []user.MemberResponse) {
	for i, m := range list {
		if i > 0 {
			fmt.Fprintln(out)
		}
		fmt.Fprintf(out, "%s  %s\n", m.Name, m.Role)
		fmt.Fprintf(out, "  %s\n", m.Email)
		fmt.Fprintf(out, "  id %s\n", m.ID)
	}
}

func printInvitations(out io.Writer, list []team.InvitationResponse) {
	tw := table(out)
	fmt.Fprintln(tw, "ID\tNAME\tEMAIL\tROLE\tSTATUS\tEXPIRES")
	for _, i := range list {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\t%s\n",
			i.ID, i.Name, i.Email, i.Role, i.Status, i.ExpiresAt.Format("2006-01-02"))
	}
	_ = tw.Flush()
}

func printInvitationCards(out io.Writer, list []team.InvitationResponse) {
	for i, inv := range list {
		if i > 0 {
			fmt.Fprintln(out)
		}
		fmt.Fprintf(out, "%s  %s\n", inv.Name, inv.Role)
		fmt.Fprintf(out, "  %s, %s until %s\n", inv.Email, inv.Status, inv.ExpiresAt.Format("2006-01-02"))
		fmt.Fprintf(out, "  id %s\n", inv.ID)
	}
}

func printStats(out io.Writer, view string, s *dashboard.Stats) {
	fmt.Fprintf(out, "%s\n\n", view)

	tw := table(out)
	fmt.Fprintf(tw, "debts\t%d\n", s.DebtCount)
	fmt.Fprintf(tw, "total\t%s\n", s.TotalDebt.StringFixed(2))
	fmt.Fprintf(tw, "collected\t%s\n", s.Collected.StringFixed(2))
	fmt.Fprintf(tw, "outstanding\t%s\n", s.Outstanding.StringFixed(2))
	fmt.Fprintf(tw, "recovery\t%s%%\n", s.RecoveryRate.StringFixed(2))
	fmt.Fprintf(tw, "unpaid / partial / paid\t%d / %d / %d\n",
		s.ByStatus.Unpaid, s.ByStatus.Partial, s.ByStatus.Paid)
	fmt.Fprintf(tw, "overdue\t%d\n", s.OverdueCount)
	if s.TeamSize > 0 {
		fmt.Fprintf(tw, "team\t%d\n", s.TeamSize)
	}
	_ = tw.Flush()

	if len(s.TopCustomers) > 0 {
		fmt.Fprintln(out, "\ntop customers")
		tw = table(out)
		for _, c := range s.TopCustomers {
			fmt.Fprintf(tw, "  %s\t%s\t%s\n", c.Name, c.Phone, c.Outstanding.StringFixed(2))
		}
		_ = tw.Flush()
	}

	if len(s.BySalesman) > 0 {
		fmt.Fprintln(out, "\ncollections")
		tw = table(out)
		for _, c := range s.BySalesman {
			fmt.Fprintf(tw, "  %s\t%d debts\t%s of %s\n",
				c.Name, c.DebtCount, c.Collected.StringFixed(2), c.Total.StringFixed(2))
		}
		_ = tw.Flush()
	}
}

func printFinance(out io.Writer, s finance.Settings) {
	tw := table(out)
	fmt.Fprintf(tw, "currency\t%s\n", s.Currency)
	fmt.Fprintf(tw, "due day\t%d\n", s.DueDay)
	fmt.Fprintf(tw, "grace period\t%d days\n", s.GracePeriodDays)
	fmt.Fprintf(tw, "late fee\t%t (%s %s)\n", s.LateFeeEnabled, s.LateFeeAmount.String(), s.LateFeeType)
	fmt.Fprintf(tw, "reminders\t%t (%d days before, every %d days)\n",
		s.RemindersEnabled, s.ReminderDaysBefore, s.ReminderFrequencyDays)
	fmt.Fprintf(tw, "credit limit\t%s\n", s.CreditLimit.StringFixed(2))
	_ = tw.Flush()
}
