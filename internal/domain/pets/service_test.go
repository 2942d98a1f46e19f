package pets

import (
	"context"
	"errors"
	"testing"
	"time"
)

type fakeRepo struct {
	nextID int64
	items  []Pet
}

func (f *fakeRepo) Create(_ context.Context, p Pet) (int64, error) {
	f.nextID++
	p.ID = f.nextID
	f.items = append(f.items, p)
	return p.ID, nil
}

func (f *fakeRepo) GetByID(_ context.Context, id int64) (Pet, error) {
	for _, p := range f.items {
		if p.ID == id {
			return p, nil
		}
	}
	return Pet{}, ErrNotFound
}

func (f *fakeRepo) List(context.Context) ([]Pet, error) { return f.items, nil }

func (f *fakeRepo) ListByOwner(_ context.Context, owner int64) ([]Pet, error) {
	out := make([]Pet, 0)
	for _, p := range f.items {
		if p.OwnerID == owner {
			out = append(out, p)
		}
	}
	return out, nil
}

type fakeOwners map[int64]bool

func (f fakeOwners) Exists(_ context.Context, id int64) (bool, error) { return f[id], nil }

func TestCreate(t *testing.T) {
	repo := &fakeRepo{}
	svc := NewService(repo, fakeOwners{1: true})
	fixed := time.Date(2025, 3, 1, 10, 0, 0, 0, time.UTC)
	svc.now = func() time.Time { return fixed }
	ctx := context.Background()

	p, err := svc.Create(ctx, CreateInput{OwnerID: 1, Name: " Firulais ", Species: "perro", Age: 3, Weight: 12.5})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if p.ID != 1 || p.Name != "Firulais" || !p.CreatedAt.Equal(fixed) {
		t.Fatalf("unexpected pet %+v", p)
	}

	owner, err := svc.OwnerOf(ctx, p.ID)
	if err != nil || owner != 1 {
		t.Fatalf("OwnerOf = %d, %v", owner, err)
	}
}

func TestCreate_Validation(t *testing.T) {
	svc := NewService(&fakeRepo{}, fakeOwners{1: true})
	ctx := context.Background()

	cases := []struct {
		in   CreateInput
		want error
	}{
		{CreateInput{OwnerID: 0, Name: "x"}, ErrInvalidInput},
		{CreateInput{OwnerID: 1, Name: "  "}, ErrInvalidInput},
		{CreateInput{OwnerID: 1, Name: "x", Age: -1}, ErrInvalidInput},
		{CreateInput{OwnerID: 99, Name: "x"}, ErrOwnerNotFound},
	}
	for _, c := range cases {
		if _, err := svc.Create(ctx, c.in); !errors.Is(err, c.want) {
			t.Fatalf("Create(%+v): expected %v, got %v", c.in, c.want, err)
		}
	}
}

func TestOwnerOf_NotFound(t *testing.T) {
	svc := NewService(&fakeRepo{}, nil)
	if _, err := svc.OwnerOf(context.Background(), 5); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}
