package memory

import (
	"context"
	"sort"

	"veterinaria-ica/internal/domain/pets"
)

type petsRepo struct {
	s *Store
}

func (r *petsRepo) Create(_ context.Context, p pets.Pet) (int64, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	// FK usuario_id
	if _, ok := r.s.users[p.OwnerID]; !ok {
		return 0, pets.ErrOwnerNotFound
	}
	p.ID = r.s.nextID("mascotas")
	if p.CreatedAt.IsZero() {
		p.CreatedAt = r.s.now()
	}
	p.OwnerName = ""
	r.s.pets[p.ID] = p
	return p.ID, nil
}

func (r *petsRepo) GetByID(_ context.Context, id int64) (pets.Pet, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	p, ok := r.s.pets[id]
	if !ok {
		return pets.Pet{}, pets.ErrNotFound
	}
	return p, nil
}

func (r *petsRepo) List(_ context.Context) ([]pets.Pet, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	out := make([]pets.Pet, 0, len(r.s.pets))
	for _, p := range r.s.pets {
		owner, ok := r.s.users[p.OwnerID]
		if !ok {
			continue // JOIN
		}
		p.OwnerName = owner.Name
		out = append(out, p)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID > out[j].ID })
	return out, nil
}

func (r *petsRepo) ListByOwner(_ context.Context, ownerID int64) ([]pets.Pet, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	out := make([]pets.Pet, 0)
	for _, p := range r.s.pets {
		if p.OwnerID == ownerID {
			out = append(out, p)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].CreatedAt.After(out[j].CreatedAt)
		}
		return out[i].ID > out[j].ID
	})
	return out, nil
}
