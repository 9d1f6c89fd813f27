// AngelaMos | 2026
// role.go

// Package role defines the closed set of team roles and the single table that
// maps each role to the dashboard it lands on and the actions it may take.
package role

import (
	"fmt"
	"strings"
)

type Role string

const (
	Owner       Role = "owner"
	Admin       Role = "admin"
	Manager     Role = "manager"
	Salesperson Role = "salesperson"
)

// All lists every role in display order.
var All = []Role{Owner, Admin, Manager, Salesperson}

// Invitable lists the roles an invitation may grant.
var Invitable = []Role{Admin, Manager, Salesperson}

func Parse(s string) (Role, error) {
	r := Role(strings.ToLower(strings.TrimSpace(s)))
	if _, ok := table[r]; !ok {
		return "", fmt.Errorf("unknown role %q", s)
	}
	return r, nil
}

func (r Role) Valid() bool {
	_, ok := table[r]
	return ok
}

func (r Role) String() string {
	return string(r)
}

func (r Role) Invitable() bool {
	return r.Valid() && r != Owner
}

// Dashboard identifies a dashboard family; the form factor picks the variant.
type Dashboard string

const (
	DashboardOwner       Dashboard = "owner"
	DashboardManager     Dashboard = "manager"
	DashboardSalesperson Dashboard = "salesperson"
)

type Action string

const (
	ViewDebts          Action = "debts:view"
	ViewAllDebts       Action = "debts:view_all"
	CreateDebt         Action = "debts:create"
	RecordPayment      Action = "debts:record_payment"
	ViewCustomers      Action = "customers:view"
	CreateCustomer     Action = "customers:create"
	EditCustomer       Action = "customers:edit"
	DeleteCustomer     Action = "customers:delete"
	ViewTeam           Action = "team:view"
	ChangeMemberRole   Action = "team:change_role"
	RemoveMember       Action = "team:remove"
	ManageInvitations  Action = "invitations:manage"
	EditBusiness       Action = "business:edit"
	ViewFinance        Action = "finance:view"
	EditFinance        Action = "finance:edit"
	ExportBusiness     Action = "export:business"
	ViewOwnerDashboard Action = "dashboard:owner"
	ViewSalesDashboard Action = "dashboard:sales"
)

type Policy struct {
	Dashboard Dashboard
	Actions   map[Action]struct{}
}

func actions(list ...Action) map[Action]struct{} {
	m := make(map[Action]struct{}, len(list))
	for _, a := range list {
		m[a] = struct{}{}
	}
	return m
}

var table = map[Role]Policy{
	Owner: {
		Dashboard: DashboardOwner,
		Actions: actions(
			ViewDebts, ViewAllDebts, CreateDebt, RecordPayment,
			ViewCustomers, CreateCustomer, EditCustomer, DeleteCustomer,
			ViewTeam, ChangeMemberRole, RemoveMember, ManageInvitations,
			EditBusiness, ViewFinance, EditFinance, ExportBusiness,
			ViewOwnerDashboard,
		),
	},
	Admin: {
		Dashboard: DashboardManager,
		Actions: actions(
			ViewDebts, ViewAllDebts, CreateDebt, RecordPayment,
			ViewCustomers, CreateCustomer, EditCustomer, DeleteCustomer,
			ViewTeam, ChangeMemberRole, RemoveMember, ManageInvitations,
			ViewFinance, ExportBusiness, ViewOwnerDashboard,
		),
	},
	Manager: {
		Dashboard: DashboardManager,
		Actions: actions(
			ViewDebts, ViewAllDebts, CreateDebt, RecordPayment,
			ViewCustomers, CreateCustomer, EditCustomer,
			ViewTeam, ManageInvitations, ViewFinance, ViewOwnerDashboard,
		),
	},
	Salesperson: {
		Dashboard: DashboardSalesperson,
		Actions: actions(
			ViewDebts, CreateDebt, RecordPayment,
			ViewCustomers, CreateCustomer, ViewSalesDashboard,
		),
	},
}

// PolicyFor returns the policy of r; ok is false for unknown roles.
func PolicyFor(r Role) (Policy, bool) {
	p, ok := table[r]
	return p, ok
}

// Can reports whether r may perform a. Unknown roles may do nothing.
func Can(r Role, a Action) bool {
	p, ok := table[r]
	if !ok {
		return false
	}
	_, allowed := p.Actions[a]
	return allowed
}

// CanAssign reports whether actor may grant target to another member.
// Only owners may create admins; nobody grants owner.
func CanAssign(actor, target Role) bool {
	if !target.Invitable() {
		return false
	}
	switch actor {
	case Owner:
		return true
	case Admin:
		return target != Admin
	case Manager:
		return target == Salesperson
	}
	return false
}

// Actor is an authenticated member acting inside a business.
type Actor struct {
	UserID     string
	BusinessID string
	Role       Role
}

func (a Actor) Can(action Action) bool {
	return Can(a.Role, action)
}
