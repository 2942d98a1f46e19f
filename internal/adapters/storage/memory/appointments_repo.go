package memory

import (
	"context"
	"sort"

	"veterinaria-ica/internal/domain/appointments"
)

type appointmentsRepo struct {
	s *Store
}

func (r *appointmentsRepo) Create(_ context.Context, a appointments.Appointment) (int64, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if _, ok := r.s.pets[a.PetID]; !ok {
		return 0, appointments.ErrPetNotFound
	}
	if _, ok := r.s.vets[a.VetID]; !ok {
		return 0, appointments.ErrVetNotFound
	}
	if a.Status == "" {
		a.Status = appointments.StatusPending
	}
	a.ID = r.s.nextID("citas")
	a.PetName, a.VetName = "", ""
	r.s.appts[a.ID] = a
	return a.ID, nil
}

// joinedLocked replica el JOIN mascotas/veterinarios. Requiere s.mu tomado.
func (r *appointmentsRepo) joinedLocked(keep func(appointments.Appointment, int64) bool) []appointments.Appointment {
	out := make([]appointments.Appointment, 0)
	for _, a := range r.s.appts {
		p, okPet := r.s.pets[a.PetID]
		v, okVet := r.s.vets[a.VetID]
		if !okPet || !okVet {
			continue
		}
		if !keep(a, p.OwnerID) {
			continue
		}
		a.PetName = p.Name
		a.VetName = v.Name
		out = append(out, a)
	}
	return out
}

func (r *appointmentsRepo) List(_ context.Context) ([]appointments.Appointment, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	out := r.joinedLocked(func(appointments.Appointment, int64) bool { return true })
	sort.Slice(out, func(i, j int) bool { return out[i].ID > out[j].ID })
	return out, nil
}

func (r *appointmentsRepo) ListByOwner(_ context.Context, ownerID int64) ([]appointments.Appointment, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	out := r.joinedLocked(func(_ appointments.Appointment, owner int64) bool { return owner == ownerID })
	sort.Slice(out, func(i, j int) bool {
		if !out[i].Date.Equal(out[j].Date) {
			return out[i].Date.After(out[j].Date)
		}
		return out[i].ID > out[j].ID
	})
	return out, nil
}

func (r *appointmentsRepo) Delete(_ context.Context, id int64) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if _, ok := r.s.appts[id]; !ok {
		return appointments.ErrNotFound
	}
	delete(r.s.appts, id)
	return nil
}

func (r *appointmentsRepo) CountByVeterinarian(_ context.Context, vetID int64) (int, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	n := 0
	for _, a := range r.s.appts {
		if a.VetID == vetID {
			n++
		}
	}
	return n, nil
}
