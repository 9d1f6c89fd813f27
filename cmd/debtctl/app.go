// AngelaMos | 2026
// app.go

package main

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/carterperez-dev/debt-manager/internal/client"
	"github.com/carterperez-dev/debt-manager/internal/forms"
	"github.com/carterperez-dev/debt-manager/internal/role"
	"github.com/carterperez-dev/debt-manager/internal/session"
)

var errNotPermitted = errors.New(forms.MsgAccessDenied)

// app owns the session for the lifetime of one command.
type app struct {
	provider *client.Provider
	store    *session.Store
	out      io.Writer
}

func start(
	ctx context.Context,
	c *client.Client,
	persister session.Persister,
	out io.Writer,
) (*app, error) {
	provider := client.NewProvider(c)
	store := session.New(provider, persister, nil)

	if err := store.Start(ctx); err != nil {
		return nil, err
	}
	if err := store.Ready(ctx); err != nil {
		store.Close()
		return nil, err
	}

	return &app{provider: provider, store: store, out: out}, nil
}

func (a *app) api() *client.Client {
	return a.provider.API()
}

func (a *app) close() {
	a.store.Close()
}

// requireUser fails commands that need a signed-in identity.
func (a *app) requireUser() (*session.User, error) {
	snap := a.store.Snapshot()
	if !snap.IsAuthenticated() || snap.User == nil {
		return nil, fmt.Errorf("not signed in: run debtctl login: %w", session.ErrNotSignedIn)
	}
	return snap.User, nil
}

// allow checks the signed-in role before any request is made. The server
// enforces the same table.
func (a *app) allow(action role.Action) (*session.User, error) {
	u, err := a.requireUser()
	if err != nil {
		return nil, err
	}
	if !role.Can(u.Role, action) {
		return nil, errNotPermitted
	}
	return u, nil
}

func (a *app) printf(format string, args ...any) {
	fmt.Fprintf(a.out, format, args...)
}
