// AngelaMos | 2026
// service_test.go

package team

import (
	"context"
	"errors"
	"net/url"
	"sync"
	"testing"
	"time"

	"github.com/carterperez-dev/debt-manager/internal/config"
	"github.com/carterperez-dev/debt-manager/internal/core"
	"github.com/carterperez-dev/debt-manager/internal/role"
	"github.com/carterperez-dev/debt-manager/internal/user"
)

type memRepo struct {
	mu   sync.Mutex
	byID map[string]*Invitation
}

func newMemRepo() *memRepo {
	return &memRepo{byID: make(map[string]*Invitation)}
}

func (m *memRepo) Create(_ context.Context, inv *Invitation) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, existing := range m.byID {
		if existing.BusinessID == inv.BusinessID && existing.Email == inv.Email &&
			existing.Status == StatusPending {
			return core.ErrDuplicateKey
		}
	}
	inv.CreatedAt = time.Now()
	inv.UpdatedAt = inv.CreatedAt
	cp := *inv
	m.byID[inv.ID] = &cp
	return nil
}

func (m *memRepo) find(match func(*Invitation) bool) (*Invitation, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, inv := range m.byID {
		if match(inv) {
			cp := *inv
			return &cp, nil
		}
	}
	return nil, core.ErrNotFound
}

func (m *memRepo) GetByID(_ context.Context, businessID, id string) (*Invitation, error) {
	return m.find(func(i *Invitation) bool { return i.ID == id && i.BusinessID == businessID })
}

func (m *memRepo) GetByTokenHash(_ context.Context, hash string) (*Invitation, error) {
	return m.find(func(i *Invitation) bool { return i.TokenHash == hash })
}

func (m *memRepo) GetPendingByEmail(_ context.Context, businessID, email string) (*Invitation, error) {
	return m.find(func(i *Invitation) bool {
		return i.BusinessID == businessID && i.Email == email && i.Status == StatusPending
	})
}

func (m *memRepo) ListByBusiness(_ context.Context, businessID string) ([]Invitation, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []Invitation
	for _, inv := range m.byID {
		if inv.BusinessID == businessID && inv.Status == StatusPending {
			out = append(out, *inv)
		}
	}
	return out, nil
}

func (m *memRepo) Reissue(_ context.Context, id, hash string, expiresAt time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	inv, ok := m.byID[id]
	if !ok || inv.Status != StatusPending {
		return core.ErrNotFound
	}
	inv.TokenHash = hash
	inv.ExpiresAt = expiresAt
	return nil
}

func (m *memRepo) Transition(_ context.Context, id string, from, to InvitationStatus) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	inv, ok := m.byID[id]
	if !ok || inv.Status != from {
		return core.ErrNotFound
	}
	inv.Status = to
	return nil
}

type stubMembers struct {
	emails map[string]bool
}

func (s stubMembers) ListMembers(context.Context, string) ([]user.User, error) {
	return nil, nil
}

func (s stubMembers) ChangeRole(_ context.Context, _, targetID, _ string, r role.Role) (*user.User, error) {
	return &user.User{ID: targetID, Role: r}, nil
}

func (s stubMembers) RemoveMember(context.Context, string, string, string) error {
	return nil
}

func (s stubMembers) EmailExists(_ context.Context, email string) (bool, error) {
	return s.emails[email], nil
}

type changeLog []string

func (c *changeLog) BusinessChanged(_ context.Context, businessID string) {
	*c = append(*c, businessID)
}

type fixture struct {
	svc     *Service
	repo    *memRepo
	mailer  *core.RecordingMailer
	changes *changeLog
	clock   time.Time
}

func newFixture() *fixture {
	f := &fixture{
		repo:    newMemRepo(),
		mailer:  &core.RecordingMailer{},
		changes: &changeLog{},
		clock:   time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC),
	}
	f.svc = NewService(
		f.repo,
		stubMembers{emails: map[string]bool{"taken@x.com": true}},
		f.mailer,
		f.changes,
		config.InvitationConfig{TTL: 72 * time.Hour, AcceptURL: "http://app.test/accept-invite"},
	)
	f.svc.now = func() time.Time { return f.clock }
	return f
}

func tokenFrom(t *testing.T, msg core.Message) string {
	t.Helper()
	u, err := url.Parse(msg.Link)
	if err != nil {
		t.Fatalf("parse link: %v", err)
	}
	return u.Query().Get("token")
}

var owner = role.Actor{UserID: "owner-1", BusinessID: "biz-1", Role: role.Owner}

func TestInviteResendCancel(t *testing.T) {
	ctx := context.Background()
	f := newFixture()

	inv, err := f.svc.Invite(ctx, owner, InviteRequest{Name: "Bob", Email: "Bob@X.com", Role: role.Salesperson})
	if err != nil {
		t.Fatalf("Invite: %v", err)
	}
	if inv.Email != "bob@x.com" || inv.Status != StatusPending {
		t.Errorf("invitation = %+v", inv)
	}

	list, _ := f.svc.Invitations(ctx, owner)
	if len(list) != 1 || list[0].Email != "bob@x.com" {
		t.Fatalf("list = %+v, want one pending bob@x.com", list)
	}

	firstToken := tokenFrom(t, f.mailer.Sent()[0])
	f.clock = f.clock.Add(time.Hour)

	resent, err := f.svc.Resend(ctx, owner, inv.ID)
	if err != nil {
		t.Fatalf("Resend: %v", err)
	}
	if !resent.ExpiresAt.After(inv.ExpiresAt) {
		t.Error("resend did not extend expiry")
	}
	if len(f.mailer.Sent()) != 2 {
		t.Fatalf("mails = %d, want 2", len(f.mailer.Sent()))
	}
	if _, err := f.svc.Redeemable(ctx, firstToken); !errors.Is(err, core.ErrNotFound) {
		t.Errorf("old token err = %v, want ErrNotFound", err)
	}
	if _, err := f.svc.Redeemable(ctx, tokenFrom(t, f.mailer.Sent()[1])); err != nil {
		t.Errorf("new token rejected: %v", err)
	}

	if err := f.svc.Cancel(ctx, owner, inv.ID); err != nil {
		t.Fatalf("Cancel: %v", err)
	}
	list, _ = f.svc.Invitations(ctx, owner)
	if len(list) != 0 {
		t.Errorf("list after cancel = %d, want 0", len(list))
	}
	if err := f.svc.Cancel(ctx, owner, inv.ID); !errors.Is(err, core.ErrConflict) {
		t.Errorf("second cancel err = %v, want ErrConflict", err)
	}
}

func TestInviteRules(t *testing.T) {
	ctx := context.Background()
	manager := role.Actor{UserID: "m1", BusinessID: "biz-1", Role: role.Manager}

	tests := []struct {
		name    string
		actor   role.Actor
		req     InviteRequest
		wantErr error
	}{
		{"manager invites salesperson", manager, InviteRequest{Name: "S", Email: "s@x.com", Role: role.Salesperson}, nil},
		{"manager invites admin", manager, InviteRequest{Name: "A", Email: "a@x.com", Role: role.Admin}, core.ErrForbidden},
		{"owner role", owner, InviteRequest{Name: "O", Email: "o@x.com", Role: role.Owner}, core.ErrForbidden},
		{"existing account", owner, InviteRequest{Name: "T", Email: "taken@x.com", Role: role.Manager}, core.ErrConflict},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := newFixture().svc.Invite(ctx, tt.actor, tt.req)
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("err = %v, want %v", err, tt.wantErr)
			}
		})
	}
}

func TestInviteDuplicatePendingAndExpiredReplacement(t *testing.T) {
	ctx := context.Background()
	f := newFixture()
	req := InviteRequest{Name: "Bob", Email: "bob@x.com", Role: role.Salesperson}

	first, err := f.svc.Invite(ctx, owner, req)
	if err != nil {
		t.Fatal(err)
	}
	if _, err := f.svc.Invite(ctx, owner, req); !errors.Is(err, core.ErrConflict) {
		t.Fatalf("duplicate err = %v, want ErrConflict", err)
	}

	f.clock = f.clock.Add(73 * time.Hour)
	second, err := f.svc.Invite(ctx, owner, req)
	if err != nil {
		t.Fatalf("re-invite after expiry: %v", err)
	}
	if second.ID == first.ID {
		t.Error("expected a new invitation")
	}
	old, _ := f.repo.GetByID(ctx, "biz-1", first.ID)
	if old.Status != StatusCancelled {
		t.Errorf("expired invitation status = %s, want cancelled", old.Status)
	}
}

func TestRedeemableStates(t *testing.T) {
	ctx := context.Background()
	f := newFixture()

	if _, err := f.svc.Invite(ctx, owner, InviteRequest{Name: "Bob", Email: "bob@x.com", Role: role.Manager}); err != nil {
		t.Fatal(err)
	}
	token := tokenFrom(t, f.mailer.Sent()[0])

	got, err := f.svc.Redeemable(ctx, token)
	if err != nil {
		t.Fatalf("Redeemable: %v", err)
	}
	if got.Role != role.Manager || got.BusinessID != "biz-1" || got.Email != "bob@x.com" {
		t.Errorf("redeemable = %+v", got)
	}

	f.clock = f.clock.Add(80 * time.Hour)
	if _, err := f.svc.Redeemable(ctx, token); !errors.Is(err, core.ErrGone) {
		t.Errorf("expired err = %v, want ErrGone", err)
	}

	f.clock = f.clock.Add(-80 * time.Hour)
	if err := f.svc.MarkAccepted(ctx, got); err != nil {
		t.Fatal(err)
	}
	if n := len(*f.changes); n == 0 || (*f.changes)[n-1] != "biz-1" {
		t.Errorf("changes = %v, want biz-1 notified on accept", *f.changes)
	}
	if _, err := f.svc.Redeemable(ctx, token); !errors.Is(err, core.ErrGone) {
		t.Errorf("used err = %v, want ErrGone", err)
	}
}
