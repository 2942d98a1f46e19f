package accounts

import (
	"context"
	"errors"
	"sort"
	"sync"
	"testing"
	"time"

	"veterinaria-ica/internal/domain/users"
	"veterinaria-ica/internal/ports/auth"
)

type fakeUsersRepo struct {
	mu     sync.Mutex
	nextID int64
	byID   map[int64]users.User
	roles  map[int64]map[string]bool
}

func newFakeUsersRepo() *fakeUsersRepo {
	return &fakeUsersRepo{
		byID:  make(map[int64]users.User),
		roles: make(map[int64]map[string]bool),
	}
}

func (f *fakeUsersRepo) findByEmail(email string) (users.User, bool) {
	for _, u := range f.byID {
		if u.Email == email {
			return u, true
		}
	}
	return users.User{}, false
}

func (f *fakeUsersRepo) insert(u users.User, role string) users.User {
	f.nextID++
	u.ID = f.nextID
	f.byID[u.ID] = u
	f.roles[u.ID] = map[string]bool{role: true}
	return u
}

func (f *fakeUsersRepo) CreateLocal(_ context.Context, u users.User, role string) (users.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.findByEmail(u.Email); ok {
		return users.User{}, users.ErrEmailTaken
	}
	return f.insert(u, role), nil
}

func (f *fakeUsersRepo) FindOrCreateFederated(_ context.Context, u users.User, role string) (users.User, bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if existing, ok := f.findByEmail(u.Email); ok {
		return existing, false, nil
	}
	return f.insert(u, role), true, nil
}

func (f *fakeUsersRepo) GetByID(_ context.Context, id int64) (users.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	u, ok := f.byID[id]
	if !ok {
		return users.User{}, users.ErrNotFound
	}
	return u, nil
}

func (f *fakeUsersRepo) GetByEmail(_ context.Context, email string) (users.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	u, ok := f.findByEmail(email)
	if !ok {
		return users.User{}, users.ErrNotFound
	}
	return u, nil
}

func (f *fakeUsersRepo) List(context.Context) ([]users.User, error) { return nil, nil }

func (f *fakeUsersRepo) RolesOf(_ context.Context, id int64) ([]string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]string, 0)
	for r := range f.roles[id] {
		out = append(out, r)
	}
	sort.Strings(out)
	return out, nil
}

func (f *fakeUsersRepo) AssignRole(_ context.Context, id int64, role string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.byID[id]; !ok {
		return users.ErrNotFound
	}
	f.roles[id][role] = true
	return nil
}

// plainHasher evita el costo de bcrypt en tests de servicio.
type plainHasher struct{ calls int }

func (h *plainHasher) Hash(p string) (string, error) { return "h:" + p, nil }
func (h *plainHasher) Verify(p, d string) bool {
	h.calls++
	return d != "" && d == "h:"+p
}

type fakeTokens struct{}

func (fakeTokens) Issue(id int64, email string) (string, time.Time, error) {
	return "tok-" + email, time.Unix(0, 0), nil
}

type fakeFederated struct {
	id  auth.FederatedIdentity
	err error
}

func (f fakeFederated) Verify(context.Context, string) (auth.FederatedIdentity, error) {
	return f.id, f.err
}

func newTestService(fed auth.FederatedVerifier) (*Service, *fakeUsersRepo, *plainHasher) {
	repo := newFakeUsersRepo()
	h := &plainHasher{}
	return NewService(repo, h, fakeTokens{}, fed), repo, h
}

func TestRegister_ValidatesAndNormalizes(t *testing.T) {
	svc, repo, _ := newTestService(nil)
	ctx := context.Background()

	for _, in := range []RegisterInput{
		{Name: "", Email: "a@x.com", Password: "p"},
		{Name: "Ana", Email: "  ", Password: "p"},
		{Name: "Ana", Email: "a@x.com", Password: ""},
	} {
		if _, err := svc.Register(ctx, in); !errors.Is(err, ErrMissingFields) {
			t.Fatalf("expected ErrMissingFields for %+v, got %v", in, err)
		}
	}

	u, err := svc.Register(ctx, RegisterInput{Name: " Ana ", Email: "A@X.com", Password: "p1"})
	if err != nil {
		t.Fatalf("Register: %v", err)
	}
	if u.Email != "a@x.com" || u.Name != "Ana" || u.Provider != users.ProviderLocal {
		t.Fatalf("unexpected user %+v", u)
	}
	if u.PasswordHash == "p1" {
		t.Fatalf("password stored in plain text")
	}
	roles, _ := repo.RolesOf(ctx, u.ID)
	if len(roles) != 1 || roles[0] != users.RoleClient {
		t.Fatalf("expected [CLIENTE], got %v", roles)
	}

	if _, err := svc.Register(ctx, RegisterInput{Name: "Otra", Email: "a@x.com", Password: "p2"}); !errors.Is(err, users.ErrEmailTaken) {
		t.Fatalf("expected ErrEmailTaken, got %v", err)
	}
}

func TestLogin_UnifiedInvalidCredentials(t *testing.T) {
	svc, repo, h := newTestService(nil)
	ctx := context.Background()

	if _, err := svc.Register(ctx, RegisterInput{Name: "Ana", Email: "a@x.com", Password: "p1"}); err != nil {
		t.Fatalf("Register: %v", err)
	}
	_, _, _ = repo.FindOrCreateFederated(ctx, users.User{Name: "G", Email: "g@x.com", Provider: users.ProviderGoogle}, users.RoleClient)

	cases := []struct{ email, pass string }{
		{"a@x.com", "wrong"},
		{"nobody@x.com", "p1"},
		{"g@x.com", ""},
		{"g@x.com", "anything"},
	}
	for _, c := range cases {
		h.calls = 0
		_, err := svc.Login(ctx, c.email, c.pass)
		if c.pass == "" {
			if !errors.Is(err, ErrMissingFields) {
				t.Fatalf("expected ErrMissingFields, got %v", err)
			}
			continue
		}
		if !errors.Is(err, ErrInvalidCredentials) {
			t.Fatalf("login(%s): expected ErrInvalidCredentials, got %v", c.email, err)
		}
		if h.calls != 1 {
			t.Fatalf("login(%s): expected exactly one password compare, got %d", c.email, h.calls)
		}
	}
}

func TestLogin_SuccessResolvesRoles(t *testing.T) {
	svc, repo, _ := newTestService(nil)
	ctx := context.Background()

	u, _ := svc.Register(ctx, RegisterInput{Name: "Ana", Email: "a@x.com", Password: "p1"})

	sess, err := svc.Login(ctx, "A@x.com", "p1")
	if err != nil {
		t.Fatalf("Login: %v", err)
	}
	if sess.Role != users.RoleClient || sess.Token != "tok-a@x.com" || sess.User.ID != u.ID {
		t.Fatalf("unexpected session %+v", sess)
	}
	if sess.User.PasswordHash != "" {
		t.Fatalf("session must not carry password hash")
	}

	_ = repo.AssignRole(ctx, u.ID, users.RoleAdmin)
	sess, _ = svc.Login(ctx, "a@x.com", "p1")
	if sess.Role != users.RoleAdmin {
		t.Fatalf("expected ADMIN after role assignment, got %s", sess.Role)
	}
}

func TestLoginFederated(t *testing.T) {
	fed := fakeFederated{id: auth.FederatedIdentity{Email: "Luis@Gmail.com", DisplayName: "Luis", PictureURL: "http://pic"}}
	svc, repo, _ := newTestService(fed)
	ctx := context.Background()

	first, err := svc.LoginFederated(ctx, "raw")
	if err != nil {
		t.Fatalf("LoginFederated: %v", err)
	}
	second, err := svc.LoginFederated(ctx, "raw")
	if err != nil {
		t.Fatalf("LoginFederated (2nd): %v", err)
	}
	if first.User.ID != second.User.ID {
		t.Fatalf("expected same user, got %d and %d", first.User.ID, second.User.ID)
	}
	if len(repo.byID) != 1 {
		t.Fatalf("expected 1 user, got %d", len(repo.byID))
	}
	if first.User.Provider != users.ProviderGoogle || first.User.Email != "luis@gmail.com" {
		t.Fatalf("unexpected user %+v", first.User)
	}
	roles, _ := repo.RolesOf(ctx, first.User.ID)
	if len(roles) != 1 || roles[0] != users.RoleClient {
		t.Fatalf("expected single CLIENTE role, got %v", roles)
	}
}

func TestLoginFederated_Errors(t *testing.T) {
	ctx := context.Background()

	svc, _, _ := newTestService(fakeFederated{err: auth.ErrInvalidFederatedToken})
	if _, err := svc.LoginFederated(ctx, "raw"); !errors.Is(err, auth.ErrInvalidFederatedToken) {
		t.Fatalf("expected ErrInvalidFederatedToken, got %v", err)
	}
	if _, err := svc.LoginFederated(ctx, " "); !errors.Is(err, ErrMissingFields) {
		t.Fatalf("expected ErrMissingFields, got %v", err)
	}

	svc, _, _ = newTestService(nil)
	if _, err := svc.LoginFederated(ctx, "raw"); !errors.Is(err, auth.ErrVerifierUnavailable) {
		t.Fatalf("expected ErrVerifierUnavailable, got %v", err)
	}
}

func TestEnsureAdmin(t *testing.T) {
	svc, repo, _ := newTestService(nil)
	ctx := context.Background()

	u, created, err := svc.EnsureAdmin(ctx, RegisterInput{Email: "root@x.com", Password: "secret"})
	if err != nil || !created {
		t.Fatalf("expected admin created, got created=%v err=%v", created, err)
	}
	if u.Name != "Administrador" {
		t.Fatalf("expected default name, got %q", u.Name)
	}

	_, created, err = svc.EnsureAdmin(ctx, RegisterInput{Email: "root@x.com", Password: "other"})
	if err != nil || created {
		t.Fatalf("expected idempotent ensure, got created=%v err=%v", created, err)
	}

	sess, err := svc.Login(ctx, "root@x.com", "secret")
	if err != nil {
		t.Fatalf("admin login: %v", err)
	}
	if sess.Role != users.RoleAdmin {
		t.Fatalf("expected ADMIN, got %s", sess.Role)
	}

	// promueve un cliente existente
	cli, _ := svc.Register(ctx, RegisterInput{Name: "Ana", Email: "a@x.com", Password: "p1"})
	if _, _, err := svc.EnsureAdmin(ctx, RegisterInput{Email: "a@x.com", Password: "x"}); err != nil {
		t.Fatalf("EnsureAdmin existing: %v", err)
	}
	roles, _ := repo.RolesOf(ctx, cli.ID)
	if len(roles) != 2 {
		t.Fatalf("expected ADMIN+CLIENTE, got %v", roles)
	}
}
