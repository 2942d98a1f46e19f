package memory

import (
	"sync"
	"time"

	"veterinaria-ica/internal/domain/appointments"
	"veterinaria-ica/internal/domain/pets"
	"veterinaria-ica/internal/domain/users"
	"veterinaria-ica/internal/domain/veterinarians"
)

// Store es el almacenamiento in-memory (dev/tests). Todas las tablas
// comparten un único lock: los joins y el alta usuario+rol son atómicos.
type Store struct {
	mu  sync.RWMutex
	now func() time.Time

	lastID map[string]int64

	users     map[int64]users.User
	byEmail   map[string]int64
	roles     map[string]int64 // nombre -> id
	userRoles map[int64]map[int64]struct{}

	vets  map[int64]veterinarians.Veterinarian
	pets  map[int64]pets.Pet
	appts map[int64]appointments.Appointment
}

func NewStore() *Store {
	s := &Store{
		now:       time.Now,
		lastID:    make(map[string]int64),
		users:     make(map[int64]users.User),
		byEmail:   make(map[string]int64),
		roles:     make(map[string]int64),
		userRoles: make(map[int64]map[int64]struct{}),
		vets:      make(map[int64]veterinarians.Veterinarian),
		pets:      make(map[int64]pets.Pet),
		appts:     make(map[int64]appointments.Appointment),
	}
	// mismos roles que siembra la migración de postgres
	for _, name := range []string{users.RoleAdmin, users.RoleClient} {
		s.roles[name] = s.nextID("roles")
	}
	return s
}

// nextID simula BIGSERIAL. Requiere s.mu tomado.
func (s *Store) nextID(table string) int64 {
	s.lastID[table]++
	return s.lastID[table]
}

func (s *Store) Users() users.Repository                 { return &usersRepo{s: s} }
func (s *Store) Pets() pets.Repository                   { return &petsRepo{s: s} }
func (s *Store) Veterinarians() veterinarians.Repository { return &vetsRepo{s: s} }
func (s *Store) Appointments() appointments.Repository   { return &appointmentsRepo{s: s} }
