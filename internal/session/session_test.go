// AngelaMos | 2026
// session_test.go

package session

import (
	"context"
	"errors"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/carterperez-dev/debt-manager/internal/role"
)

var errBadPassword = errors.New("invalid email or password")

type fakeProvider struct {
	ch chan Change

	mu      sync.Mutex
	resumed []Credentials
}

func newFakeProvider() *fakeProvider {
	return &fakeProvider{ch: make(chan Change, 8)}
}

func (f *fakeProvider) SignUp(_ context.Context, email, _, name string) error {
	f.ch <- Change{
		User:        &User{ID: "u-new", Email: email, Name: name, Role: role.Owner},
		Credentials: Credentials{AccessToken: "tok-new"},
	}
	return nil
}

func (f *fakeProvider) SignIn(_ context.Context, email, password string) error {
	if password != "correct-horse" {
		return errBadPassword
	}
	f.ch <- Change{
		User:        &User{ID: "u-1", Email: email, Name: "Olivia", Role: role.Owner},
		Credentials: Credentials{AccessToken: "tok-1", RefreshToken: "ref-1"},
	}
	return nil
}

func (f *fakeProvider) SignOut(context.Context) error {
	f.ch <- Change{}
	return nil
}

func (f *fakeProvider) Resume(_ context.Context, creds Credentials) error {
	f.mu.Lock()
	f.resumed = append(f.resumed, creds)
	f.mu.Unlock()

	if creds.AccessToken == "" {
		f.ch <- Change{}
		return nil
	}
	f.ch <- Change{
		User:        &User{ID: "u-1", Email: "olivia@x.com", Name: "Olivia", Role: role.Owner},
		Credentials: creds,
	}
	return nil
}

func (f *fakeProvider) Changes() <-chan Change {
	return f.ch
}

func startStore(t *testing.T, p Provider, persister Persister) *Store {
	t.Helper()
	s := New(p, persister, nil)
	t.Cleanup(s.Close)

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	if err := s.Start(context.Background()); err != nil {
		t.Fatalf("Start: %v", err)
	}
	if err := s.Ready(ctx); err != nil {
		t.Fatalf("Ready: %v", err)
	}
	return s
}

func testCtx(t *testing.T) context.Context {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	t.Cleanup(cancel)
	return ctx
}

func TestStartsLoading(t *testing.T) {
	s := New(newFakeProvider(), nil, nil)
	defer s.Close()

	if got := s.Snapshot().State; got != Loading {
		t.Errorf("state before start = %v, want loading", got)
	}
}

func TestLoginLogout(t *testing.T) {
	persister := NewMemoryPersister()
	s := startStore(t, newFakeProvider(), persister)
	ctx := testCtx(t)

	if got := s.Snapshot().State; got != Unauthenticated {
		t.Fatalf("state = %v, want unauthenticated", got)
	}

	if err := s.Login(ctx, "olivia@x.com", "wrong"); !errors.Is(err, errBadPassword) {
		t.Fatalf("err = %v, want provider error untouched", err)
	}
	if s.Snapshot().State != Unauthenticated {
		t.Fatal("failed login changed state")
	}

	if err := s.Login(ctx, "olivia@x.com", "correct-horse"); err != nil {
		t.Fatalf("Login: %v", err)
	}
	snap := s.Snapshot()
	if !snap.IsAuthenticated() || snap.User.Email != "olivia@x.com" || snap.Token != "tok-1" {
		t.Fatalf("snapshot = %+v", snap)
	}
	if blob, _ := persister.Load(ctx); blob == nil || blob.Credentials.RefreshToken != "ref-1" {
		t.Errorf("persisted blob = %+v", blob)
	}

	if err := s.Logout(ctx); err != nil {
		t.Fatalf("Logout: %v", err)
	}
	if snap := s.Snapshot(); snap.State != Unauthenticated || snap.User != nil || snap.Token != "" {
		t.Errorf("after logout = %+v", snap)
	}
	if blob, _ := persister.Load(ctx); blob != nil {
		t.Errorf("blob not cleared: %+v", blob)
	}
}

func TestRestoresPersistedCredentials(t *testing.T) {
	persister := NewMemoryPersister()
	_ = persister.Save(context.Background(), Blob{
		User:        User{ID: "u-1"},
		Credentials: Credentials{AccessToken: "saved"},
	})
	p := newFakeProvider()

	s := startStore(t, p, persister)

	if !s.Snapshot().IsAuthenticated() {
		t.Fatal("persisted session not restored")
	}
	if len(p.resumed) != 1 || p.resumed[0].AccessToken != "saved" {
		t.Errorf("resumed with %+v", p.resumed)
	}
}

func TestSignup(t *testing.T) {
	s := startStore(t, newFakeProvider(), nil)

	if err := s.Signup(testCtx(t), "new@x.com", "pw", "Nia"); err != nil {
		t.Fatalf("Signup: %v", err)
	}
	if u := s.Snapshot().User; u == nil || u.Name != "Nia" || u.HasBusiness {
		t.Errorf("user = %+v", u)
	}
}

func TestUpdateUserMerges(t *testing.T) {
	persister := NewMemoryPersister()
	s := startStore(t, newFakeProvider(), persister)
	ctx := testCtx(t)

	if err := s.UpdateUser(ctx, Patch{}); !errors.Is(err, ErrNotSignedIn) {
		t.Fatalf("err = %v, want not signed in", err)
	}

	_ = s.Login(ctx, "olivia@x.com", "correct-horse")

	name := "Olivia B"
	has := true
	if err := s.UpdateUser(ctx, Patch{Name: &name, HasBusiness: &has}); err != nil {
		t.Fatalf("UpdateUser: %v", err)
	}

	u := s.Snapshot().User
	if u.Name != "Olivia B" || !u.HasBusiness || u.Email != "olivia@x.com" {
		t.Errorf("merged user = %+v", u)
	}
	blob, _ := persister.Load(ctx)
	if blob == nil || blob.User.Name != "Olivia B" {
		t.Errorf("persisted = %+v", blob)
	}
}

func TestSetUserReplaces(t *testing.T) {
	s := startStore(t, newFakeProvider(), nil)
	ctx := testCtx(t)
	_ = s.Login(ctx, "olivia@x.com", "correct-horse")

	if err := s.SetUser(ctx, User{ID: "u-1", Email: "olivia@x.com", HasBusiness: true, BusinessID: "biz-1"}); err != nil {
		t.Fatal(err)
	}
	if u := s.Snapshot().User; !u.HasBusiness || u.BusinessID != "biz-1" || u.Name != "" {
		t.Errorf("user = %+v", u)
	}
}

func TestSubscribersInOrder(t *testing.T) {
	s := startStore(t, newFakeProvider(), nil)
	ctx := testCtx(t)

	var mu sync.Mutex
	var calls []string
	record := func(name string) func(Snapshot) {
		return func(Snapshot) {
			mu.Lock()
			calls = append(calls, name)
			mu.Unlock()
		}
	}

	s.Subscribe(record("first"))
	unsub := s.Subscribe(record("second"))
	s.Subscribe(record("third"))

	_ = s.Login(ctx, "olivia@x.com", "correct-horse")

	mu.Lock()
	got := append([]string(nil), calls...)
	mu.Unlock()
	if len(got) != 3 || got[0] != "first" || got[1] != "second" || got[2] != "third" {
		t.Fatalf("calls = %v", got)
	}

	unsub()
	unsub()
	_ = s.Logout(ctx)

	mu.Lock()
	defer mu.Unlock()
	if len(calls) != 5 || calls[3] != "first" || calls[4] != "third" {
		t.Errorf("after unsubscribe calls = %v", calls)
	}
}

func TestReadyAfterClose(t *testing.T) {
	s := New(newFakeProvider(), nil, nil)
	s.Close()

	if err := s.Ready(testCtx(t)); !errors.Is(err, ErrClosed) {
		t.Errorf("err = %v, want ErrClosed", err)
	}
}

func TestSQLitePersister(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "state.db")
	p, err := OpenSQLite(path)
	if err != nil {
		t.Fatalf("OpenSQLite: %v", err)
	}
	defer p.Close()
	ctx := context.Background()

	blob, err := p.Load(ctx)
	if err != nil || blob != nil {
		t.Fatalf("empty load = %+v, %v", blob, err)
	}

	want := Blob{
		User:        User{ID: "u-1", Email: "olivia@x.com", Role: role.Owner, HasBusiness: true},
		Credentials: Credentials{AccessToken: "a", RefreshToken: "r"},
	}
	if err := p.Save(ctx, want); err != nil {
		t.Fatal(err)
	}
	want.Credentials.AccessToken = "a2"
	if err := p.Save(ctx, want); err != nil {
		t.Fatal(err)
	}

	got, err := p.Load(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if got.User.Email != want.User.Email || got.Credentials.AccessToken != "a2" || !got.User.HasBusiness {
		t.Errorf("loaded %+v", got)
	}

	if err := p.Clear(ctx); err != nil {
		t.Fatal(err)
	}
	if got, _ := p.Load(ctx); got != nil {
		t.Errorf("after clear = %+v", got)
	}
}

type offlineProvider struct {
	*fakeProvider
}

func (offlineProvider) Resume(context.Context, Credentials) error {
	return errors.New("dial tcp: connection refused")
}

func TestResumeFailureKeepsSavedBlob(t *testing.T) {
	persister := NewMemoryPersister()
	_ = persister.Save(context.Background(), Blob{Credentials: Credentials{AccessToken: "saved"}})

	s := startStore(t, offlineProvider{newFakeProvider()}, persister)

	if s.Snapshot().State != Unauthenticated {
		t.Errorf("state = %v, want unauthenticated", s.Snapshot().State)
	}
	if blob, _ := persister.Load(context.Background()); blob == nil {
		t.Error("saved session was discarded")
	}
}
