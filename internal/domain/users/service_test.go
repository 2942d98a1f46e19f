package users

import (
	"context"
	"errors"
	"testing"
)

type fakeRepo struct {
	Repository
	roles map[int64][]string
	err   error
}

func (f *fakeRepo) RolesOf(_ context.Context, id int64) ([]string, error) {
	return f.roles[id], f.err
}

func (f *fakeRepo) AssignRole(_ context.Context, id int64, role string) error {
	f.roles[id] = append(f.roles[id], role)
	return nil
}

func TestPrimaryRole(t *testing.T) {
	cases := []struct {
		roles []string
		want  string
	}{
		{nil, RoleClient},
		{[]string{RoleClient}, RoleClient},
		{[]string{RoleClient, RoleAdmin}, RoleAdmin},
		{[]string{"VET", "AUDITOR"}, "AUDITOR"},
		{[]string{"VET", RoleClient}, RoleClient},
	}
	for _, c := range cases {
		if got := PrimaryRole(c.roles); got != c.want {
			t.Fatalf("PrimaryRole(%v) = %s, want %s", c.roles, got, c.want)
		}
	}
}

func TestHasRole_ReflectsAssignmentImmediately(t *testing.T) {
	repo := &fakeRepo{roles: map[int64][]string{1: {RoleClient}}}
	svc := NewService(repo)
	ctx := context.Background()

	ok, err := svc.HasRole(ctx, 1, RoleAdmin)
	if err != nil || ok {
		t.Fatalf("expected no ADMIN yet, got ok=%v err=%v", ok, err)
	}
	if err := svc.AssignRole(ctx, 1, "admin"); err != nil {
		t.Fatalf("AssignRole: %v", err)
	}
	ok, err = svc.HasRole(ctx, 1, RoleAdmin)
	if err != nil || !ok {
		t.Fatalf("expected ADMIN after assignment, got ok=%v err=%v", ok, err)
	}
}

func TestAssignRole_Unknown(t *testing.T) {
	svc := NewService(&fakeRepo{roles: map[int64][]string{}})
	if err := svc.AssignRole(context.Background(), 1, "ROOT"); !errors.Is(err, ErrUnknownRole) {
		t.Fatalf("expected ErrUnknownRole, got %v", err)
	}
}

func TestHasRole_PropagatesStoreError(t *testing.T) {
	boom := errors.New("db down")
	svc := NewService(&fakeRepo{err: boom})
	if _, err := svc.HasRole(context.Background(), 1, RoleAdmin); !errors.Is(err, boom) {
		t.Fatalf("expected store error, got %v", err)
	}
}

func TestNormalizeEmail(t *testing.T) {
	if got := NormalizeEmail("  Ana@Example.COM "); got != "ana@example.com" {
		t.Fatalf("unexpected %q", got)
	}
}
