// AngelaMos | 2026
// commands.go

package main

import (
	"context"
	"flag"
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/carterperez-dev/debt-manager/internal/client"
	"github.com/carterperez-dev/debt-manager/internal/core"
	"github.com/carterperez-dev/debt-manager/internal/customer"
	"github.com/carterperez-dev/debt-manager/internal/debt"
	"github.com/carterperez-dev/debt-manager/internal/dispatch"
	"github.com/carterperez-dev/debt-manager/internal/finance"
	"github.com/carterperez-dev/debt-manager/internal/forms"
	"github.com/carterperez-dev/debt-manager/internal/listview"
	"github.com/carterperez-dev/debt-manager/internal/role"
	"github.com/carterperez-dev/debt-manager/internal/team"
)

type command struct {
	summary string
	run     func(ctx context.Context, a *app, args []string) error
}

var commands = map[string]command{
	"signup":          {"create an owner account", cmdSignup},
	"login":           {"sign in", cmdLogin},
	"logout":          {"sign out and forget the saved session", cmdLogout},
	"whoami":          {"show the signed-in user and their landing view", cmdWhoami},
	"dashboard":       {"show the dashboard for your role", cmdDashboard},
	"business":        {"create or update your business profile", cmdBusiness},
	"debts":           {"list debts", cmdDebts},
	"add-debt":        {"record a new debt", cmdAddDebt},
	"pay":             {"record a payment against a debt", cmdPay},
	"customers":       {"list customers", cmdCustomers},
	"team":            {"list team members", cmdTeam},
	"invite":          {"invite a team member", cmdInvite},
	"invitations":     {"list invitations", cmdInvitations},
	"resend":          {"resend an invitation", cmdResend},
	"cancel":          {"cancel an invitation", cmdCancel},
	"edit-customer":   {"change a customer's details", cmdEditCustomer},
	"delete-customer": {"delete a customer without open debts", cmdDeleteCustomer},
	"set-role":        {"change a team member's role", cmdSetRole},
	"remove-member":   {"remove a team member", cmdRemoveMember},
	"finance":         {"show or change finance settings", cmdFinance},
	"export":          {"download the business workbook", cmdExport},
	"changelog":       {"show release notes", cmdChangelog},
}

func commandNames() []string {
	names := make([]string, 0, len(commands))
	for name := range commands {
		names = append(names, name)
	}
	slices.Sort(names)
	return names
}

func newFlags(name string) *flag.FlagSet {
	return flag.NewFlagSet("debtctl "+name, flag.ContinueOnError)
}

func cmdSignup(ctx context.Context, a *app, args []string) error {
	fs := newFlags("signup")
	email := fs.String("email", "", "email address")
	name := fs.String("name", "", "display name")
	password := fs.String("password", os.Getenv("DEBTCTL_PASSWORD"), "password (or DEBTCTL_PASSWORD)")
	if err := fs.Parse(args); err != nil {
		return err
	}

	if err := a.store.Signup(ctx, *email, *password, *name); err != nil {
		return err
	}
	return cmdWhoami(ctx, a, nil)
}

func cmdLogin(ctx context.Context, a *app, args []string) error {
	fs := newFlags("login")
	email := fs.String("email", "", "email address")
	password := fs.String("password", os.Getenv("DEBTCTL_PASSWORD"), "password (or DEBTCTL_PASSWORD)")
	if err := fs.Parse(args); err != nil {
		return err
	}

	if err := a.store.Login(ctx, *email, *password); err != nil {
		return err
	}
	return cmdWhoami(ctx, a, nil)
}

func cmdLogout(ctx context.Context, a *app, _ []string) error {
	if err := a.store.Logout(ctx); err != nil {
		return err
	}
	a.printf("signed out\n")
	return nil
}

func cmdWhoami(ctx context.Context, a *app, args []string) error {
	fs := newFlags("whoami")
	width := fs.Int("width", defaultWidth, "viewport width in pixels")
	follow := fs.Bool("follow", false, "keep printing the landing view as the session changes")
	if err := fs.Parse(args); err != nil {
		return err
	}

	snap := a.store.Snapshot()
	if snap.User == nil && !*follow {
		a.printf("not signed in\n")
		return nil
	}
	if u := snap.User; u != nil {
		a.printf("%s <%s>\nrole: %s\n", u.Name, u.Email, u.Role)
		if u.Business != nil {
			a.printf("business: %s\n", u.Business.Name)
		}
	}

	w := dispatch.Watch(a.store, *width, func(d dispatch.Decision) {
		a.printf("view: %s\n", d)
	})
	defer w.Stop()

	if *follow {
		<-ctx.Done()
	}
	return nil
}

func cmdDashboard(ctx context.Context, a *app, args []string) error {
	fs := newFlags("dashboard")
	width := fs.Int("width", defaultWidth, "viewport width in pixels")
	if err := fs.Parse(args); err != nil {
		return err
	}

	snap := a.store.Snapshot()
	decision := dispatch.Dispatch(snap, dispatch.Classify(*width))
	if decision.Kind != dispatch.KindRender {
		a.printf("%s\n", decision)
		return nil
	}

	policy, _ := role.PolicyFor(snap.User.Role)
	if policy.Dashboard == role.DashboardSalesperson {
		stats, err := a.api().SalesDashboard(ctx)
		if err != nil {
			return err
		}
		printStats(a.out, decision.View, stats)
		return nil
	}

	stats, err := a.api().OwnerDashboard(ctx)
	if err != nil {
		return err
	}
	printStats(a.out, decision.View, stats)
	return nil
}

func cmdBusiness(ctx context.Context, a *app, args []string) error {
	if _, err := a.requireUser(); err != nil {
		return err
	}

	current, err := a.api().MyBusiness(ctx)
	if err != nil && !client.IsStatus(err, http.StatusNotFound) {
		return err
	}
	form := forms.ProfileFrom(current)

	fs := newFlags("business")
	fs.StringVar(&form.Name, "name", form.Name, "business name")
	fs.StringVar(&form.Email, "email", form.Email, "contact email")
	fs.StringVar(&form.Phone, "phone", form.Phone, "contact phone")
	fs.StringVar(&form.Address, "address", form.Address, "address")
	fs.StringVar(&form.Description, "description", form.Description, "description")
	if err := fs.Parse(args); err != nil {
		return err
	}

	resp, err := form.Submit(ctx, a.api(), a.store)
	if err != nil {
		return err
	}

	verb := "updated"
	if resp.Created {
		verb = "created"
	}
	a.printf("business %s %s\n", resp.Business.Name, verb)
	return nil
}

func cmdDebts(ctx context.Context, a *app, args []string) error {
	var lf listFlags
	fs := newFlags("debts")
	lf.register(fs)
	customerID := fs.String("customer", "", "only debts of this customer id")
	status := fs.String("status", "", "only debts with this status (paid, partial, unpaid)")
	if err := fs.Parse(args); err != nil {
		return err
	}

	if _, err := a.allow(role.ViewDebts); err != nil {
		return err
	}

	query := client.DebtQuery{CustomerID: *customerID, Status: debt.Status(*status)}
	debts := newListing(listview.Debts(), func(ctx context.Context) ([]debt.DebtResponse, error) {
		return a.api().Debts(ctx, query)
	}, debtLayouts)
	defer debts.close()

	return debts.show(ctx, a.out, lf)
}

func cmdAddDebt(ctx context.Context, a *app, args []string) error {
	var form forms.AddDebt
	var items itemList
	var paid decimalFlag

	fs := newFlags("add-debt")
	fs.StringVar(&form.CustomerID, "customer-id", "", "existing customer id")
	fs.StringVar(&form.CustomerName, "customer", "", "customer name")
	fs.StringVar(&form.CustomerPhone, "phone", "", "customer phone")
	fs.StringVar(&form.DueDate, "due", "", "due date (YYYY-MM-DD)")
	fs.Var(&items, "item", "line item name:quantity:price[:category], repeatable")
	fs.Var(&paid, "paid", "amount paid up front")
	if err := fs.Parse(args); err != nil {
		return err
	}

	for _, it := range items {
		form.AddItem(it)
	}
	form.AmountPaid = paid.Decimal

	totals := form.Totals()
	a.printf("total %s  paid %s  balance %s  (%s)\n",
		totals.Total.StringFixed(2),
		form.AmountPaid.StringFixed(2),
		totals.Balance.StringFixed(2),
		totals.Status.Label(),
	)

	created, err := form.Submit(ctx, a.api())
	if err != nil {
		return err
	}
	a.printf("debt %s recorded for %s\n", created.ID, created.CustomerName)
	return nil
}

func cmdPay(ctx context.Context, a *app, args []string) error {
	var amount decimalFlag
	fs := newFlags("pay")
	id := fs.String("debt", "", "debt id")
	fs.Var(&amount, "amount", "amount paid")
	method := fs.String("method", "cash", "cash, bank, mobile, card or other")
	note := fs.String("note", "", "optional note")
	if err := fs.Parse(args); err != nil {
		return err
	}

	res, err := a.api().RecordPayment(ctx, *id, debt.RecordPaymentRequest{
		Amount: amount.Decimal,
		Method: *method,
		Note:   *note,
	})
	if err != nil {
		return err
	}
	a.printf("payment recorded: balance %s (%s)\n",
		res.Debt.Balance.StringFixed(2),
		res.Debt.Status.Label(),
	)
	return nil
}

func cmdCustomers(ctx context.Context, a *app, args []string) error {
	var lf listFlags
	fs := newFlags("customers")
	lf.register(fs)
	if err := fs.Parse(args); err != nil {
		return err
	}

	if _, err := a.allow(role.ViewCustomers); err != nil {
		return err
	}

	customers := newListing(listview.Customers(), a.api().Customers, customerLayouts)
	defer customers.close()

	return customers.show(ctx, a.out, lf)
}

// customerFlags are the editable customer fields. Empty flags keep the
// stored value.
type customerFlags struct {
	name    string
	phone   string
	email   string
	address string
}

func (c *customerFlags) register(fs *flag.FlagSet) {
	fs.StringVar(&c.name, "name", "", "customer name")
	fs.StringVar(&c.phone, "phone", "", "customer phone")
	fs.StringVar(&c.email, "email", "", "customer email")
	fs.StringVar(&c.address, "address", "", "customer address")
}

func (c customerFlags) merge(current *customer.CustomerResponse) customer.SaveCustomerRequest {
	req := customer.SaveCustomerRequest{
		Name:    current.Name,
		Phone:   current.Phone,
		Email:   current.Email,
		Address: current.Address,
	}
	if c.name != "" {
		req.Name = c.name
	}
	if c.phone != "" {
		req.Phone = c.phone
	}
	if c.email != "" {
		req.Email = c.email
	}
	if c.address != "" {
		req.Address = c.address
	}
	return req
}

func cmdEditCustomer(ctx context.Context, a *app, args []string) error {
	var lf listFlags
	var fields customerFlags
	fs := newFlags("edit-customer")
	lf.register(fs)
	fields.register(fs)
	id := fs.String("id", "", "customer id")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if _, err := a.allow(role.EditCustomer); err != nil {
		return err
	}

	customers := newListing(listview.Customers(), a.api().Customers, customerLayouts)
	defer customers.close()

	err := customers.mutate(ctx, func(ctx context.Context) error {
		current, err := a.api().Customer(ctx, *id)
		if err != nil {
			return err
		}
		_, err = a.api().UpdateCustomer(ctx, *id, fields.merge(current))
		return err
	})
	if err != nil {
		return err
	}
	customers.apply(lf)
	customers.render(a.out, lf.width)
	return nil
}

func cmdDeleteCustomer(ctx context.Context, a *app, args []string) error {
	var lf listFlags
	fs := newFlags("delete-customer")
	lf.register(fs)
	id := fs.String("id", "", "customer id")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if _, err := a.allow(role.DeleteCustomer); err != nil {
		return err
	}

	customers := newListing(listview.Customers(), a.api().Customers, customerLayouts)
	defer customers.close()

	err := customers.mutate(ctx, func(ctx context.Context) error {
		return a.api().DeleteCustomer(ctx, *id)
	})
	if err != nil {
		return err
	}
	customers.apply(lf)
	customers.render(a.out, lf.width)
	return nil
}

func cmdTeam(ctx context.Context, a *app, args []string) error {
	var lf listFlags
	fs := newFlags("team")
	lf.register(fs)
	if err := fs.Parse(args); err != nil {
		return err
	}

	if _, err := a.allow(role.ViewTeam); err != nil {
		return err
	}

	members := newListing(listview.Members(), a.api().Team, memberLayouts)
	defer members.close()

	return members.show(ctx, a.out, lf)
}

func cmdSetRole(ctx context.Context, a *app, args []string) error {
	var lf listFlags
	fs := newFlags("set-role")
	lf.register(fs)
	userID := fs.String("user", "", "member user id")
	target := fs.String("role", "", "admin, manager or salesperson")
	if err := fs.Parse(args); err != nil {
		return err
	}

	u, err := a.allow(role.ChangeMemberRole)
	if err != nil {
		return err
	}
	next, err := role.Parse(*target)
	if err != nil {
		return core.NewDomainError(core.ErrInvalidInput, "%s", err.Error())
	}
	if !role.CanAssign(u.Role, next) {
		return errNotPermitted
	}

	members := newListing(listview.Members(), a.api().Team, memberLayouts)
	defer members.close()

	err = members.mutate(ctx, func(ctx context.Context) error {
		_, err := a.api().ChangeRole(ctx, team.ChangeRoleRequest{UserID: *userID, Role: next})
		return err
	})
	if err != nil {
		return err
	}
	members.apply(lf)
	members.render(a.out, lf.width)
	return nil
}

func cmdRemoveMember(ctx context.Context, a *app, args []string) error {
	var lf listFlags
	fs := newFlags("remove-member")
	lf.register(fs)
	userID := fs.String("user", "", "member user id")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if _, err := a.allow(role.RemoveMember); err != nil {
		return err
	}

	members := newListing(listview.Members(), a.api().Team, memberLayouts)
	defer members.close()

	err := members.mutate(ctx, func(ctx context.Context) error {
		return a.api().RemoveMember(ctx, *userID)
	})
	if err != nil {
		return err
	}
	members.apply(lf)
	members.render(a.out, lf.width)
	return nil
}

func cmdInvite(ctx context.Context, a *app, args []string) error {
	var form forms.Invite
	fs := newFlags("invite")
	fs.StringVar(&form.Name, "name", "", "invitee name")
	fs.StringVar(&form.Email, "email", "", "invitee email")
	fs.StringVar(&form.Role, "role", "salesperson", "admin, manager or salesperson")
	if err := fs.Parse(args); err != nil {
		return err
	}
	u, err := a.allow(role.ManageInvitations)
	if err != nil {
		return err
	}
	if target, err := role.Parse(form.Role); err == nil && !role.CanAssign(u.Role, target) {
		return errNotPermitted
	}

	inv, err := form.Submit(ctx, a.api())
	if err != nil {
		return err
	}
	a.printf("invited %s as %s (expires %s)\n", inv.Email, inv.Role, inv.ExpiresAt.Format("2006-01-02"))
	return nil
}

func cmdInvitations(ctx context.Context, a *app, args []string) error {
	var lf listFlags
	fs := newFlags("invitations")
	lf.register(fs)
	if err := fs.Parse(args); err != nil {
		return err
	}

	if _, err := a.allow(role.ManageInvitations); err != nil {
		return err
	}

	invitations := newListing(listview.Invitations(), a.api().Invitations, invitationLayouts)
	defer invitations.close()

	return invitations.show(ctx, a.out, lf)
}

// mutateInvitation runs op and prints the refreshed invitation list.
func mutateInvitation(
	ctx context.Context,
	a *app,
	lf listFlags,
	op func(ctx context.Context) error,
) error {
	if _, err := a.allow(role.ManageInvitations); err != nil {
		return err
	}

	invitations := newListing(listview.Invitations(), a.api().Invitations, invitationLayouts)
	defer invitations.close()

	if err := invitations.mutate(ctx, op); err != nil {
		return err
	}
	invitations.apply(lf)
	invitations.render(a.out, lf.width)
	return nil
}

func cmdResend(ctx context.Context, a *app, args []string) error {
	var lf listFlags
	fs := newFlags("resend")
	lf.register(fs)
	id := fs.String("id", "", "invitation id")
	if err := fs.Parse(args); err != nil {
		return err
	}

	return mutateInvitation(ctx, a, lf, func(ctx context.Context) error {
		_, err := a.api().ResendInvitation(ctx, *id)
		return err
	})
}

func cmdCancel(ctx context.Context, a *app, args []string) error {
	var lf listFlags
	fs := newFlags("cancel")
	lf.register(fs)
	id := fs.String("id", "", "invitation id")
	if err := fs.Parse(args); err != nil {
		return err
	}

	return mutateInvitation(ctx, a, lf, func(ctx context.Context) error {
		return a.api().CancelInvitation(ctx, *id)
	})
}

func cmdFinance(ctx context.Context, a *app, args []string) error {
	u, err := a.requireUser()
	if err != nil {
		return err
	}

	current, err := a.api().FinanceSettings(ctx, u.BusinessID)
	if err != nil {
		return err
	}
	form := forms.NewFinanceSettings(*current)

	var lateFee, creditLimit decimalFlag
	lateFee.Decimal = form.LateFeeAmount
	creditLimit.Decimal = form.CreditLimit

	fs := newFlags("finance")
	fs.StringVar(&form.Currency, "currency", form.Currency, "ISO currency code")
	fs.IntVar(&form.DueDay, "due-day", form.DueDay, "day of month payments are due (1-28)")
	fs.IntVar(&form.GracePeriodDays, "grace", form.GracePeriodDays, "grace period in days")
	fs.BoolVar(&form.LateFeeEnabled, "late-fee", form.LateFeeEnabled, "charge late fees")
	lateFeeType := fs.String("late-fee-type", string(form.LateFeeType), "percentage or fixed")
	fs.Var(&lateFee, "late-fee-amount", "late fee percentage or amount")
	fs.BoolVar(&form.RemindersEnabled, "reminders", form.RemindersEnabled, "send reminders")
	fs.IntVar(&form.ReminderDaysBefore, "remind-before", form.ReminderDaysBefore, "days before due date")
	fs.IntVar(&form.ReminderFrequencyDays, "remind-every", form.ReminderFrequencyDays, "days between reminders")
	fs.Var(&creditLimit, "credit-limit", "per-customer credit limit, 0 for none")
	reset := fs.Bool("reset", false, "restore the default settings")
	if err := fs.Parse(args); err != nil {
		return err
	}

	switch {
	case *reset:
		err = form.Reset(ctx, a.api())
	case fs.NFlag() > 0:
		form.LateFeeType = finance.LateFeeType(*lateFeeType)
		form.LateFeeAmount = lateFee.Decimal
		form.CreditLimit = creditLimit.Decimal
		err = form.Submit(ctx, a.api())
	}
	if err != nil {
		return err
	}

	printFinance(a.out, form.Settings)
	return nil
}

func cmdExport(ctx context.Context, a *app, args []string) error {
	fs := newFlags("export")
	dir := fs.String("dir", ".", "directory to write the workbook to")
	if err := fs.Parse(args); err != nil {
		return err
	}

	content, name, err := a.api().ExportBusiness(ctx)
	if err != nil {
		return err
	}
	if name == "" {
		name = "business-export.xlsx"
	}

	path := filepath.Join(*dir, filepath.Base(name))
	if err := os.WriteFile(path, content, 0o600); err != nil {
		return fmt.Errorf("write export: %w", err)
	}
	a.printf("wrote %s (%d bytes)\n", path, len(content))
	return nil
}

func cmdChangelog(ctx context.Context, a *app, args []string) error {
	fs := newFlags("changelog")
	limit := fs.Int("limit", 5, "number of entries")
	if err := fs.Parse(args); err != nil {
		return err
	}

	entries, err := a.api().Changelogs(ctx, *limit)
	if err != nil {
		return err
	}
	for _, e := range entries {
		a.printf("%s  %s  %s\n", e.Version, e.PublishedAt.Format("2006-01-02"), e.Title)
		if body := strings.TrimSpace(e.Body); body != "" {
			a.printf("    %s\n", body)
		}
	}
	return nil
}

// itemList collects repeated -item flags.
type itemList []debt.Item

func (l *itemList) String() string {
	parts := make([]string, len(*l))
	for i, it := range *l {
		parts[i] = fmt.Sprintf("%s:%s:%s", it.Name, it.Quantity, it.Price)
	}
	return strings.Join(parts, ",")
}

func (l *itemList) Set(v string) error {
	it, err := parseItem(v)
	if err != nil {
		return err
	}
	*l = append(*l, it)
	return nil
}

// parseItem reads name:quantity:price[:category].
func parseItem(v string) (debt.Item, error) {
	parts := strings.Split(v, ":")
	if len(parts) < 3 || len(parts) > 4 {
		return debt.Item{}, fmt.Errorf("item %q: want name:quantity:price[:category]", v)
	}

	qty, err := decimal.NewFromString(strings.TrimSpace(parts[1]))
	if err != nil {
		return debt.Item{}, fmt.Errorf("item %q: quantity: %w", v, err)
	}
	price, err := decimal.NewFromString(strings.TrimSpace(parts[2]))
	if err != nil {
		return debt.Item{}, fmt.Errorf("item %q: price: %w", v, err)
	}

	it := debt.Item{
		Name:     strings.TrimSpace(parts[0]),
		Quantity: qty,
		Price:    price,
	}
	if len(parts) == 4 {
		it.Category = strings.TrimSpace(parts[3])
	}
	return it, nil
}

type decimalFlag struct {
	decimal.Decimal
}

func (d *decimalFlag) Set(v string) error {
	parsed, err := decimal.NewFromString(strings.TrimSpace(v))
	if err != nil {
		return err
	}
	d.Decimal = parsed
	return nil
}
