package memory

import (
	"context"
	"sort"

	"veterinaria-ica/internal/domain/users"
)

type usersRepo struct {
	s *Store
}

// insertLocked crea usuario + rol. Requiere s.mu tomado en escritura.
func (r *usersRepo) insertLocked(u users.User, role string) (users.User, error) {
	s := r.s
	roleID, ok := s.roles[role]
	if !ok {
		return users.User{}, users.ErrUnknownRole
	}
	if _, taken := s.byEmail[u.Email]; taken {
		return users.User{}, users.ErrEmailTaken
	}

	u.ID = s.nextID("usuarios")
	u.CreatedAt = s.now()
	s.users[u.ID] = u
	s.byEmail[u.Email] = u.ID
	s.userRoles[u.ID] = map[int64]struct{}{roleID: {}}
	return u, nil
}

func (r *usersRepo) CreateLocal(_ context.Context, u users.User, role string) (users.User, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	u.Provider = users.ProviderLocal
	return r.insertLocked(u, role)
}

func (r *usersRepo) FindOrCreateFederated(_ context.Context, u users.User, role string) (users.User, bool, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if id, ok := r.s.byEmail[u.Email]; ok {
		return r.s.users[id], false, nil
	}
	u.PasswordHash = ""
	created, err := r.insertLocked(u, role)
	if err != nil {
		return users.User{}, false, err
	}
	return created, true, nil
}

func (r *usersRepo) GetByID(_ context.Context, id int64) (users.User, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	u, ok := r.s.users[id]
	if !ok {
		return users.User{}, users.ErrNotFound
	}
	return u, nil
}

func (r *usersRepo) GetByEmail(_ context.Context, email string) (users.User, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	id, ok := r.s.byEmail[email]
	if !ok {
		return users.User{}, users.ErrNotFound
	}
	return r.s.users[id], nil
}

func (r *usersRepo) List(_ context.Context) ([]users.User, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	out := make([]users.User, 0, len(r.s.users))
	for _, u := range r.s.users {
		out = append(out, u)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID > out[j].ID })
	return out, nil
}

func (r *usersRepo) RolesOf(_ context.Context, userID int64) ([]string, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	out := make([]string, 0)
	for name, id := range r.s.roles {
		if _, ok := r.s.userRoles[userID][id]; ok {
			out = append(out, name)
		}
	}
	sort.Strings(out)
	return out, nil
}

func (r *usersRepo) AssignRole(_ context.Context, userID int64, role string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	roleID, ok := r.s.roles[role]
	if !ok {
		return users.ErrUnknownRole
	}
	if _, ok := r.s.users[userID]; !ok {
		return users.ErrNotFound
	}
	if r.s.userRoles[userID] == nil {
		r.s.userRoles[userID] = make(map[int64]struct{})
	}
	r.s.userRoles[userID][roleID] = struct{}{}
	return nil
}
