package memory

import (
	"context"
	"sort"

	"veterinaria-ica/internal/domain/users"
	"veterinaria-ica/internal/domain/veterinarians"
)

type vetsRepo struct {
	s *Store
}

func (r *vetsRepo) Create(_ context.Context, v veterinarians.Veterinarian) (int64, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if _, ok := r.s.users[v.UserID]; !ok {
		return 0, users.ErrNotFound
	}
	v.ID = r.s.nextID("veterinarios")
	r.s.vets[v.ID] = v
	return v.ID, nil
}

func (r *vetsRepo) GetByID(_ context.Context, id int64) (veterinarians.Veterinarian, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	v, ok := r.s.vets[id]
	if !ok {
		return veterinarians.Veterinarian{}, veterinarians.ErrNotFound
	}
	return v, nil
}

func (r *vetsRepo) List(_ context.Context) ([]veterinarians.Veterinarian, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	out := make([]veterinarians.Veterinarian, 0, len(r.s.vets))
	for _, v := range r.s.vets {
		out = append(out, v)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}
