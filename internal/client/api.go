// AngelaMos | 2026
// api.go

package client

import (
	"context"
	"net/url"
	"strconv"

	"github.com/carterperez-dev/debt-manager/internal/auth"
	"github.com/carterperez-dev/debt-manager/internal/business"
	"github.com/carterperez-dev/debt-manager/internal/changelog"
	"github.com/carterperez-dev/debt-manager/internal/customer"
	"github.com/carterperez-dev/debt-manager/internal/dashboard"
	"github.com/carterperez-dev/debt-manager/internal/debt"
	"github.com/carterperez-dev/debt-manager/internal/finance"
	"github.com/carterperez-dev/debt-manager/internal/team"
	"github.com/carterperez-dev/debt-manager/internal/user"
)

func (c *Client) Register(ctx context.Context, req auth.RegisterRequest) (*auth.AuthResponse, error) {
	var out auth.AuthResponse
	if err := c.post(ctx, "/register", req, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) Login(ctx context.Context, email, password string) (*auth.AuthResponse, error) {
	var out auth.AuthResponse
	err := c.post(ctx, "/auth/login", auth.LoginRequest{Email: email, Password: password}, &out)
	if err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) Refresh(ctx context.Context, refreshToken string) (*auth.AuthResponse, error) {
	var out auth.AuthResponse
	err := c.post(ctx, "/auth/refresh", auth.RefreshRequest{RefreshToken: refreshToken}, &out)
	if err != nil {
		return nil, err
	}
	return &out, nil
}

// Logout revokes the access token and, when given, the refresh token.
func (c *Client) Logout(ctx context.Context, refreshToken string) error {
	return c.post(ctx, "/auth/logout", auth.RefreshRequest{RefreshToken: refreshToken}, nil)
}

func (c *Client) VerifyEmail(ctx context.Context, token string) error {
	return c.post(ctx, "/verify-email", auth.VerifyEmailRequest{Token: token}, nil)
}

func (c *Client) ResendVerification(ctx context.Context, email string) error {
	return c.post(ctx, "/resend-verification", auth.ResendVerificationRequest{Email: email}, nil)
}

func (c *Client) AcceptInvite(ctx context.Context, req auth.AcceptInviteRequest) (*auth.AuthResponse, error) {
	var out auth.AuthResponse
	if err := c.post(ctx, "/accept-invite", req, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) Me(ctx context.Context) (*user.UserResponse, error) {
	var out user.UserResponse
	if err := c.get(ctx, "/me", &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) UpdateMe(ctx context.Context, req user.UpdateUserRequest) (*user.UserResponse, error) {
	var out user.UserResponse
	if err := c.put(ctx, "/me", req, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) Businesses(ctx context.Context) ([]business.BusinessResponse, error) {
	var out []business.BusinessResponse
	if err := c.get(ctx, "/businesses", &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Client) MyBusiness(ctx context.Context) (*business.BusinessResponse, error) {
	var out business.BusinessResponse
	if err := c.get(ctx, "/business/my", &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// SaveMyBusiness creates or updates the caller's business. The response
// carries the refreshed user record.
func (c *Client) SaveMyBusiness(
	ctx context.Context,
	req business.SaveBusinessRequest,
) (*business.SaveBusinessResponse, error) {
	var out business.SaveBusinessResponse
	if err := c.post(ctx, "/business/my", req, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) Customers(ctx context.Context) ([]customer.CustomerResponse, error) {
	var out []customer.CustomerResponse
	if err := c.get(ctx, "/customers", &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Client) Customer(ctx context.Context, id string) (*customer.CustomerResponse, error) {
	var out customer.CustomerResponse
	if err := c.get(ctx, "/customers/"+escape(id), &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) CreateCustomer(
	ctx context.Context,
	req customer.SaveCustomerRequest,
) (*customer.CustomerResponse, error) {
	var out customer.CustomerResponse
	if err := c.post(ctx, "/customers", req, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) UpdateCustomer(
	ctx context.Context,
	id string,
	req customer.SaveCustomerRequest,
) (*customer.CustomerResponse, error) {
	var out customer.CustomerResponse
	if err := c.put(ctx, "/customers/"+escape(id), req, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) DeleteCustomer(ctx context.Context, id string) error {
	return c.delete(ctx, "/customers/"+escape(id))
}

type DebtQuery struct {
	CustomerID string
	Status     debt.Status
}

func (c *Client) Debts(ctx context.Context, q DebtQuery) ([]debt.DebtResponse, error) {
	params := url.Values{}
	if q.CustomerID != "" {
		params.Set("customer_id", q.CustomerID)
	}
	if q.Status != "" {
		params.Set("status", string(q.Status))
	}
	path := "/debts"
	if len(params) > 0 {
		path += "?" + params.Encode()
	}

	var out []debt.DebtResponse
	if err := c.get(ctx, path, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Client) Debt(ctx context.Context, id string) (*debt.DebtResponse, error) {
	var out debt.DebtResponse
	if err := c.get(ctx, "/debts/"+escape(id), &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) CreateDebt(ctx context.Context, req debt.CreateDebtRequest) (*debt.DebtResponse, error) {
	var out debt.DebtResponse
	if err := c.post(ctx, "/debts", req, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) RecordPayment(
	ctx context.Context,
	debtID string,
	req debt.RecordPaymentRequest,
) (*debt.PaymentResult, error) {
	var out debt.PaymentResult
	if err := c.post(ctx, "/debts/"+escape(debtID)+"/payments", req, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) Payments(ctx context.Context, debtID string) ([]debt.PaymentResponse, error) {
	var out []debt.PaymentResponse
	if err := c.get(ctx, "/debts/"+escape(debtID)+"/payments", &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Client) Team(ctx context.Context) ([]user.MemberResponse, error) {
	var out []user.MemberResponse
	if err := c.get(ctx, "/owner/team", &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Client) ChangeRole(ctx context.Context, req team.ChangeRoleRequest) (*user.MemberResponse, error) {
	var out user.MemberResponse
	if err := c.post(ctx, "/owner/team", req, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) RemoveMember(ctx context.Context, userID string) error {
	return c.delete(ctx, "/owner/team/"+escape(userID))
}

func (c *Client) Invitations(ctx context.Context) ([]team.InvitationResponse, error) {
	var out []team.InvitationResponse
	if err := c.get(ctx, "/owner/invitations", &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Client) Invite(ctx context.Context, req team.InviteRequest) (*team.InvitationResponse, error) {
	var out team.InvitationResponse
	if err := c.post(ctx, "/owner/invitations", req, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) ResendInvitation(ctx context.Context, id string) (*team.InvitationResponse, error) {
	var out team.InvitationResponse
	if err := c.post(ctx, "/owner/invitations/"+escape(id)+"/resend", nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) CancelInvitation(ctx context.Context, id string) error {
	return c.delete(ctx, "/owner/invitations/"+escape(id))
}

func (c *Client) FinanceSettings(ctx context.Context, businessID string) (*finance.Settings, error) {
	var out finance.Settings
	if err := c.get(ctx, "/finance/settings/"+escape(businessID), &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) UpdateFinanceSettings(
	ctx context.Context,
	businessID string,
	s finance.Settings,
) (*finance.Settings, error) {
	var out finance.Settings
	if err := c.put(ctx, "/finance/settings/"+escape(businessID), s, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) ResetFinanceSettings(ctx context.Context, businessID string) (*finance.Settings, error) {
	var out finance.Settings
	if err := c.post(ctx, "/finance/settings/"+escape(businessID)+"/reset", nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) Currencies(ctx context.Context) ([]finance.Currency, error) {
	var out []finance.Currency
	if err := c.get(ctx, "/finance/currencies", &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Client) OwnerDashboard(ctx context.Context) (*dashboard.Stats, error) {
	var out dashboard.Stats
	if err := c.get(ctx, "/dashboard-owner", &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) SalesDashboard(ctx context.Context) (*dashboard.Stats, error) {
	var out dashboard.Stats
	if err := c.get(ctx, "/dashboard-salesman", &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// ExportBusiness downloads the XLSX workbook and its suggested filename.
func (c *Client) ExportBusiness(ctx context.Context) ([]byte, string, error) {
	return c.download(ctx, "/export/business")
}

func (c *Client) Changelogs(ctx context.Context, limit int) ([]changelog.Entry, error) {
	path := "/changelogs"
	if limit > 0 {
		path += "?limit=" + strconv.Itoa(limit)
	}

	var out []changelog.Entry
	if err := c.get(ctx, path, &out); err != nil {
		return nil, err
	}
	return out, nil
}
