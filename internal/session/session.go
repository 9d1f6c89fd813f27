// AngelaMos | 2026
// session.go

package session

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/carterperez-dev/debt-manager/internal/user"
)

type State int

const (
	Loading State = iota
	Authenticated
	Unauthenticated
)

func (s State) String() string {
	switch s {
	case Authenticated:
		return "authenticated"
	case Unauthenticated:
		return "unauthenticated"
	default:
		return "loading"
	}
}

type User = user.UserResponse

type Credentials struct {
	AccessToken  string    `json:"access_token"`
	RefreshToken string    `json:"refresh_token"`
	ExpiresAt    time.Time `json:"expires_at"`
}

// Change is one auth-state notification from the provider. A nil User
// means signed out.
type Change struct {
	User        *User
	Credentials Credentials
}

// Provider is the identity service the store follows. Each successful
// SignUp, SignIn, SignOut and Resume delivers a Change on Changes before
// returning.
type Provider interface {
	SignUp(ctx context.Context, email, password, name string) error
	SignIn(ctx context.Context, email, password string) error
	SignOut(ctx context.Context) error
	Resume(ctx context.Context, creds Credentials) error
	Changes() <-chan Change
}

type Snapshot struct {
	State State
	User  *User
	Token string
}

func (s Snapshot) IsAuthenticated() bool {
	return s.State == Authenticated
}

// Patch holds the fields UpdateUser may touch. Nil fields are left alone.
type Patch struct {
	Name          *string
	Email         *string
	BusinessID    *string
	HasBusiness   *bool
	EmailVerified *bool
	Business      *user.BusinessSummary
}

var (
	ErrClosed         = errors.New("session closed")
	ErrNotSignedIn    = errors.New("not signed in")
	ErrAlreadyStarted = errors.New("session already started")
)

type subscriber struct {
	id int
	fn func(Snapshot)
}

// Store owns the signed-in identity for one client process.
type Store struct {
	provider  Provider
	persister Persister
	logger    *slog.Logger

	mu      sync.Mutex
	state   State
	user    *User
	creds   Credentials
	gen     uint64
	changed chan struct{}
	subs    []subscriber
	nextSub int
	started bool

	notifyMu sync.Mutex
	cancel   context.CancelFunc
	done     chan struct{}
	closed   chan struct{}
	once     sync.Once
}

func New(provider Provider, persister Persister, logger *slog.Logger) *Store {
	if logger == nil {
		logger = slog.Default()
	}
	if persister == nil {
		persister = NewMemoryPersister()
	}
	return &Store{
		provider:  provider,
		persister: persister,
		logger:    logger,
		state:     Loading,
		changed:   make(chan struct{}),
		done:      make(chan struct{}),
		closed:    make(chan struct{}),
	}
}

// Start restores the persisted session and follows the provider until
// Close is called or ctx ends.
func (s *Store) Start(ctx context.Context) error {
	s.mu.Lock()
	if s.started {
		s.mu.Unlock()
		return ErrAlreadyStarted
	}
	ctx, cancel := context.WithCancel(ctx)
	s.started = true
	s.cancel = cancel
	s.mu.Unlock()

	go s.run(ctx)

	var creds Credentials
	blob, err := s.persister.Load(ctx)
	if err != nil {
		s.logger.Warn("restore session failed", "error", err)
	} else if blob != nil {
		creds = blob.Credentials
	}

	if err := s.provider.Resume(ctx, creds); err != nil {
		s.logger.Warn("resume session failed", "error", err)
		s.signedOutOffline()
	}
	return nil
}

// signedOutOffline leaves the saved blob in place so a later start can
// resume it.
func (s *Store) signedOutOffline() {
	s.mu.Lock()
	s.user = nil
	s.creds = Credentials{}
	s.state = Unauthenticated
	s.mu.Unlock()

	s.publish()
}

func (s *Store) run(ctx context.Context) {
	defer close(s.done)

	changes := s.provider.Changes()
	for {
		select {
		case <-ctx.Done():
			return
		case c, ok := <-changes:
			if !ok {
				return
			}
			s.apply(ctx, c)
		}
	}
}

func (s *Store) apply(ctx context.Context, c Change) {
	s.mu.Lock()
	if c.User != nil {
		u := *c.User
		s.user = &u
		s.creds = c.Credentials
		s.state = Authenticated
	} else {
		s.user = nil
		s.creds = Credentials{}
		s.state = Unauthenticated
	}
	s.mu.Unlock()

	if c.User != nil {
		s.persist(ctx)
	} else if err := s.persister.Clear(ctx); err != nil {
		s.logger.Warn("clear session failed", "error", err)
	}

	s.publish()
}

func (s *Store) persist(ctx context.Context) {
	s.mu.Lock()
	if s.user == nil {
		s.mu.Unlock()
		return
	}
	blob := Blob{User: *s.user, Credentials: s.creds}
	s.mu.Unlock()

	if err := s.persister.Save(ctx, blob); err != nil {
		s.logger.Warn("persist session failed", "error", err)
	}
}

// publish bumps the generation and calls subscribers in registration order.
// Subscribers run on the publishing goroutine and must not mutate the store.
func (s *Store) publish() {
	s.notifyMu.Lock()
	defer s.notifyMu.Unlock()

	s.mu.Lock()
	s.gen++
	close(s.changed)
	s.changed = make(chan struct{})
	snap := s.snapshotLocked()
	subs := make([]subscriber, len(s.subs))
	copy(subs, s.subs)
	s.mu.Unlock()

	for _, sub := range subs {
		sub.fn(snap)
	}
}

// Ready blocks until the first auth state has been applied.
func (s *Store) Ready(ctx context.Context) error {
	return s.waitPast(ctx, 0)
}

func (s *Store) waitPast(ctx context.Context, gen uint64) error {
	for {
		s.mu.Lock()
		if s.gen > gen {
			s.mu.Unlock()
			return nil
		}
		ch := s.changed
		s.mu.Unlock()

		select {
		case <-ch:
		case <-ctx.Done():
			return ctx.Err()
		case <-s.closed:
			return ErrClosed
		}
	}
}

func (s *Store) generation() uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.gen
}

// Signup registers through the provider and returns once the new identity
// is in the store. Provider errors are returned as is.
func (s *Store) Signup(ctx context.Context, email, password, name string) error {
	gen := s.generation()
	if err := s.provider.SignUp(ctx, email, password, name); err != nil {
		return err
	}
	return s.waitPast(ctx, gen)
}

func (s *Store) Login(ctx context.Context, email, password string) error {
	gen := s.generation()
	if err := s.provider.SignIn(ctx, email, password); err != nil {
		return err
	}
	return s.waitPast(ctx, gen)
}

func (s *Store) Logout(ctx context.Context) error {
	gen := s.generation()
	if err := s.provider.SignOut(ctx); err != nil {
		return err
	}
	return s.waitPast(ctx, gen)
}

// UpdateUser shallow-merges p into the current user and persists it.
func (s *Store) UpdateUser(ctx context.Context, p Patch) error {
	s.mu.Lock()
	if s.user == nil {
		s.mu.Unlock()
		return ErrNotSignedIn
	}
	u := *s.user
	if p.Name != nil {
		u.Name = *p.Name
	}
	if p.Email != nil {
		u.Email = *p.Email
	}
	if p.BusinessID != nil {
		u.BusinessID = *p.BusinessID
	}
	if p.HasBusiness != nil {
		u.HasBusiness = *p.HasBusiness
	}
	if p.EmailVerified != nil {
		u.EmailVerified = *p.EmailVerified
	}
	if p.Business != nil {
		b := *p.Business
		u.Business = &b
	}
	s.user = &u
	s.mu.Unlock()

	s.persist(ctx)
	s.publish()
	return nil
}

// SetUser replaces the current user with a server-confirmed record.
func (s *Store) SetUser(ctx context.Context, u User) error {
	s.mu.Lock()
	if s.state != Authenticated {
		s.mu.Unlock()
		return ErrNotSignedIn
	}
	s.user = &u
	s.mu.Unlock()

	s.persist(ctx)
	s.publish()
	return nil
}

func (s *Store) Snapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.snapshotLocked()
}

func (s *Store) snapshotLocked() Snapshot {
	snap := Snapshot{State: s.state, Token: s.creds.AccessToken}
	if s.user != nil {
		u := *s.user
		snap.User = &u
	}
	return snap
}

// Token returns the current access token, or "" when signed out.
func (s *Store) Token() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.creds.AccessToken
}

// Subscribe registers fn for every snapshot published after a change.
func (s *Store) Subscribe(fn func(Snapshot)) (unsubscribe func()) {
	s.mu.Lock()
	s.nextSub++
	id := s.nextSub
	s.subs = append(s.subs, subscriber{id: id, fn: fn})
	s.mu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			s.mu.Lock()
			defer s.mu.Unlock()
			for i, sub := range s.subs {
				if sub.id == id {
					s.subs = append(s.subs[:i:i], s.subs[i+1:]...)
					return
				}
			}
		})
	}
}

// Close stops following the provider and wakes any waiters.
func (s *Store) Close() {
	s.once.Do(func() {
		close(s.closed)

		s.mu.Lock()
		cancel := s.cancel
		s.mu.Unlock()

		if cancel != nil {
			cancel()
			<-s.done
		}
	})
}
