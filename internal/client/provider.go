// AngelaMos | 2026
// provider.go

package client

import (
	"context"
	"log/slog"
	"net/http"
	"sync"

	"github.com/carterperez-dev/debt-manager/internal/auth"
	"github.com/carterperez-dev/debt-manager/internal/session"
)

// Provider signs users in against the API and reports every identity
// change on a channel. It also serves as the TokenSource of the client
// it wraps.
type Provider struct {
	api     *Client
	changes chan session.Change

	mu    sync.Mutex
	creds session.Credentials
}

func NewProvider(c *Client) *Provider {
	p := &Provider{changes: make(chan session.Change, 16)}
	p.api = c.WithToken(p)
	return p
}

// API returns the client authenticated as the current identity.
func (p *Provider) API() *Client {
	return p.api
}

func (p *Provider) Token() string {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.creds.AccessToken
}

func (p *Provider) Changes() <-chan session.Change {
	return p.changes
}

func (p *Provider) SignUp(ctx context.Context, email, password, name string) error {
	resp, err := p.api.Register(ctx, auth.RegisterRequest{
		Email:    email,
		Password: password,
		Name:     name,
	})
	if err != nil {
		return err
	}
	return p.signedIn(ctx, resp)
}

func (p *Provider) SignIn(ctx context.Context, email, password string) error {
	resp, err := p.api.Login(ctx, email, password)
	if err != nil {
		return err
	}
	return p.signedIn(ctx, resp)
}

// SignOut always clears the local identity. Server-side revocation is
// best effort.
func (p *Provider) SignOut(ctx context.Context) error {
	p.mu.Lock()
	refresh := p.creds.RefreshToken
	p.mu.Unlock()

	if err := p.api.Logout(ctx, refresh); err != nil && KindOf(err) != KindUnauthorized {
		slog.Warn("server logout failed", "error", err)
	}

	p.setCreds(session.Credentials{})
	return p.emit(ctx, session.Change{})
}

// Resume validates saved credentials, refreshing them once if the access
// token was rejected.
func (p *Provider) Resume(ctx context.Context, creds session.Credentials) error {
	if creds.AccessToken == "" {
		return p.emit(ctx, session.Change{})
	}

	p.setCreds(creds)

	me, err := p.api.Me(ctx)
	if err == nil {
		return p.emit(ctx, session.Change{User: me, Credentials: creds})
	}
	if !IsStatus(err, http.StatusUnauthorized) {
		p.setCreds(session.Credentials{})
		return err
	}

	if creds.RefreshToken != "" {
		resp, rerr := p.api.Refresh(ctx, creds.RefreshToken)
		if rerr == nil {
			return p.signedIn(ctx, resp)
		}
		if KindOf(rerr) == KindNetwork {
			p.setCreds(session.Credentials{})
			return rerr
		}
	}

	p.setCreds(session.Credentials{})
	return p.emit(ctx, session.Change{})
}

func (p *Provider) signedIn(ctx context.Context, resp *auth.AuthResponse) error {
	creds := session.Credentials{
		AccessToken:  resp.Tokens.AccessToken,
		RefreshToken: resp.Tokens.RefreshToken,
		ExpiresAt:    resp.Tokens.ExpiresAt,
	}
	p.setCreds(creds)

	u := session.User{
		ID:            resp.User.ID,
		Email:         resp.User.Email,
		Name:          resp.User.Name,
		Role:          resp.User.Role,
		BusinessID:    resp.User.BusinessID,
		HasBusiness:   resp.User.HasBusiness,
		EmailVerified: resp.User.EmailVerified,
	}

	if me, err := p.api.Me(ctx); err == nil {
		u = *me
	}

	return p.emit(ctx, session.Change{User: &u, Credentials: creds})
}

func (p *Provider) setCreds(c session.Credentials) {
	p.mu.Lock()
	p.creds = c
	p.mu.Unlock()
}

func (p *Provider) emit(ctx context.Context, c session.Change) error {
	select {
	case p.changes <- c:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

var (
	_ session.Provider = (*Provider)(nil)
	_ TokenSource      = (*Provider)(nil)
)
