package memory

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"veterinaria-ica/internal/domain/appointments"
	"veterinaria-ica/internal/domain/pets"
	"veterinaria-ica/internal/domain/users"
	"veterinaria-ica/internal/domain/veterinarians"
)

func TestCreateLocal_ConcurrentSameEmail(t *testing.T) {
	repo := NewStore().Users()
	ctx := context.Background()

	const n = 32
	var (
		wg      sync.WaitGroup
		mu      sync.Mutex
		okCount int
		taken   int
	)
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := repo.CreateLocal(ctx, users.User{Name: "Ana", Email: "a@x.com", PasswordHash: "h"}, users.RoleClient)
			mu.Lock()
			defer mu.Unlock()
			switch {
			case err == nil:
				okCount++
			case errors.Is(err, users.ErrEmailTaken):
				taken++
			default:
				t.Errorf("unexpected error: %v", err)
			}
		}()
	}
	wg.Wait()

	if okCount != 1 || taken != n-1 {
		t.Fatalf("expected 1 success and %d EmailTaken, got %d/%d", n-1, okCount, taken)
	}
	all, _ := repo.List(ctx)
	if len(all) != 1 {
		t.Fatalf("expected exactly one stored user, got %d", len(all))
	}
	roles, _ := repo.RolesOf(ctx, all[0].ID)
	if len(roles) != 1 || roles[0] != users.RoleClient {
		t.Fatalf("expected [CLIENTE], got %v", roles)
	}
}

func TestFindOrCreateFederated_Idempotent(t *testing.T) {
	repo := NewStore().Users()
	ctx := context.Background()
	in := users.User{Name: "Luis", Email: "luis@gmail.com", Provider: users.ProviderGoogle}

	first, created, err := repo.FindOrCreateFederated(ctx, in, users.RoleClient)
	if err != nil || !created {
		t.Fatalf("expected creation, got created=%v err=%v", created, err)
	}
	second, created, err := repo.FindOrCreateFederated(ctx, in, users.RoleClient)
	if err != nil || created {
		t.Fatalf("expected reuse, got created=%v err=%v", created, err)
	}
	if first.ID != second.ID {
		t.Fatalf("expected same id, got %d and %d", first.ID, second.ID)
	}
	if first.PasswordHash != "" || first.Provider != users.ProviderGoogle {
		t.Fatalf("unexpected federated user %+v", first)
	}
	roles, _ := repo.RolesOf(ctx, first.ID)
	if len(roles) != 1 {
		t.Fatalf("expected a single role row, got %v", roles)
	}
}

func TestAssignRole(t *testing.T) {
	repo := NewStore().Users()
	ctx := context.Background()
	u, _ := repo.CreateLocal(ctx, users.User{Name: "Ana", Email: "a@x.com"}, users.RoleClient)

	if err := repo.AssignRole(ctx, u.ID, users.RoleAdmin); err != nil {
		t.Fatalf("AssignRole: %v", err)
	}
	if err := repo.AssignRole(ctx, u.ID, users.RoleAdmin); err != nil {
		t.Fatalf("AssignRole should be idempotent: %v", err)
	}
	roles, _ := repo.RolesOf(ctx, u.ID)
	if len(roles) != 2 || roles[0] != users.RoleAdmin || roles[1] != users.RoleClient {
		t.Fatalf("expected [ADMIN CLIENTE], got %v", roles)
	}

	if err := repo.AssignRole(ctx, u.ID, "ROOT"); !errors.Is(err, users.ErrUnknownRole) {
		t.Fatalf("expected ErrUnknownRole, got %v", err)
	}
	if err := repo.AssignRole(ctx, 999, users.RoleAdmin); !errors.Is(err, users.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestListingsJoinAndOrder(t *testing.T) {
	s := NewStore()
	base := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	tick := 0
	s.now = func() time.Time {
		tick++
		return base.Add(time.Duration(tick) * time.Minute)
	}
	ctx := context.Background()

	owner, _ := s.Users().CreateLocal(ctx, users.User{Name: "Ana", Email: "a@x.com"}, users.RoleClient)
	other, _ := s.Users().CreateLocal(ctx, users.User{Name: "Beto", Email: "b@x.com"}, users.RoleClient)
	vetUser, _ := s.Users().CreateLocal(ctx, users.User{Name: "Dra. Rosa", Email: "r@x.com"}, users.RoleClient)

	vetID, err := s.Veterinarians().Create(ctx, veterinarians.Veterinarian{UserID: vetUser.ID, Name: vetUser.Name})
	if err != nil {
		t.Fatalf("create vet: %v", err)
	}

	p1, _ := s.Pets().Create(ctx, pets.Pet{OwnerID: owner.ID, Name: "Firulais"})
	p2, _ := s.Pets().Create(ctx, pets.Pet{OwnerID: owner.ID, Name: "Michi"})
	p3, _ := s.Pets().Create(ctx, pets.Pet{OwnerID: other.ID, Name: "Rex"})

	if _, err := s.Pets().Create(ctx, pets.Pet{OwnerID: 999, Name: "Nadie"}); !errors.Is(err, pets.ErrOwnerNotFound) {
		t.Fatalf("expected owner FK error, got %v", err)
	}

	all, _ := s.Pets().List(ctx)
	if len(all) != 3 || all[0].ID != p3 || all[0].OwnerName != "Beto" {
		t.Fatalf("unexpected admin pet listing %+v", all)
	}
	mine, _ := s.Pets().ListByOwner(ctx, owner.ID)
	if len(mine) != 2 || mine[0].ID != p2 || mine[1].ID != p1 {
		t.Fatalf("expected newest first, got %+v", mine)
	}

	early := time.Date(2025, 5, 1, 9, 0, 0, 0, time.UTC)
	late := early.Add(48 * time.Hour)
	a1, _ := s.Appointments().Create(ctx, appointments.Appointment{PetID: p1, VetID: vetID, Date: late, Reason: "control"})
	a2, _ := s.Appointments().Create(ctx, appointments.Appointment{PetID: p2, VetID: vetID, Date: early, Reason: "vacuna"})
	_, _ = s.Appointments().Create(ctx, appointments.Appointment{PetID: p3, VetID: vetID, Date: early, Reason: "baño"})

	citas, _ := s.Appointments().ListByOwner(ctx, owner.ID)
	if len(citas) != 2 || citas[0].ID != a1 || citas[1].ID != a2 {
		t.Fatalf("expected owner's appointments by fecha desc, got %+v", citas)
	}
	if citas[0].PetName != "Firulais" || citas[0].VetName != "Dra. Rosa" || citas[0].Status != appointments.StatusPending {
		t.Fatalf("expected joined names and PENDIENTE, got %+v", citas[0])
	}

	n, _ := s.Appointments().CountByVeterinarian(ctx, vetID)
	if n != 3 {
		t.Fatalf("expected 3 appointments, got %d", n)
	}

	if err := s.Appointments().Delete(ctx, a2); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if err := s.Appointments().Delete(ctx, a2); !errors.Is(err, appointments.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}
