package router

import (
	"context"
	"database/sql"
	"fmt"
	"net/http"
	"time"

	_ "veterinaria-ica/docs"
	mem "veterinaria-ica/internal/adapters/storage/memory"
	pg "veterinaria-ica/internal/adapters/storage/postgres"
	"veterinaria-ica/internal/domain/accounts"
	"veterinaria-ica/internal/domain/appointments"
	"veterinaria-ica/internal/domain/pets"
	"veterinaria-ica/internal/domain/users"
	"veterinaria-ica/internal/domain/veterinarians"
	"veterinaria-ica/internal/middleware"
	"veterinaria-ica/internal/platform/logger"
	"veterinaria-ica/internal/platform/metrics"
	"veterinaria-ica/internal/ports/auth"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	httpSwagger "github.com/swaggo/http-swagger"
)

// TokenService emite y verifica tokens de sesión (security.Tokens).
type TokenService interface {
	auth.TokenVerifier
	accounts.TokenIssuer
}

type Options struct {
	Logger  logger.Logger
	Metrics *metrics.Metrics

	Tokens    TokenService
	Hasher    accounts.PasswordHasher
	Federated auth.FederatedVerifier // nil => /api/auth/google responde 500

	// Opcional: si viene, usa Postgres. Si no, in-memory.
	DB *sql.DB

	RequestTimeout time.Duration

	// Admin inicial; se asegura al construir el router.
	Admin *accounts.RegisterInput
}

type repos struct {
	users         users.Repository
	pets          pets.Repository
	veterinarians veterinarians.Repository
	appointments  appointments.Repository
}

func newRepos(db *sql.DB) repos {
	if db != nil {
		return repos{
			users:         pg.NewUsersRepo(db),
			pets:          pg.NewPetsRepo(db),
			veterinarians: pg.NewVeterinariansRepo(db),
			appointments:  pg.NewAppointmentsRepo(db),
		}
	}
	store := mem.NewStore()
	return repos{
		users:         store.Users(),
		pets:          store.Pets(),
		veterinarians: store.Veterinarians(),
		appointments:  store.Appointments(),
	}
}

func NewRouter(ctx context.Context, opts Options) (http.Handler, error) {
	log := opts.Logger
	if log == nil {
		log = logger.NewNop()
	}
	m := opts.Metrics
	if m == nil {
		m = metrics.New()
	}

	rp := newRepos(opts.DB)

	// Services por módulo
	usersSvc := users.NewService(rp.users)
	accountsSvc := accounts.NewService(rp.users, opts.Hasher, opts.Tokens, opts.Federated)
	petsSvc := pets.NewService(rp.pets, usersSvc)
	vetsSvc := veterinarians.NewService(rp.veterinarians, usersSvc)
	apptSvc := appointments.NewService(rp.appointments, petsSvc, vetsSvc)

	if opts.Admin != nil {
		u, created, err := accountsSvc.EnsureAdmin(ctx, *opts.Admin)
		if err != nil {
			return nil, fmt.Errorf("ensure admin: %w", err)
		}
		log.Info("admin ensured", map[string]any{"user_id": u.ID, "created": created})
	}

	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(chimw.RealIP)
	r.Use(middleware.RequestLogger(log))
	r.Use(middleware.Recover(log))
	r.Use(m.Middleware)
	r.Use(middleware.Deadline(opts.RequestTimeout))

	r.Get("/health", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})
	r.Method(http.MethodGet, "/metrics", m.Handler())
	r.Get("/swagger/*", httpSwagger.Handler(httpSwagger.URL("/swagger/doc.json")))

	// usersSvc resuelve roles contra almacenamiento en cada request
	gate := middleware.NewGate(opts.Tokens, usersSvc, log)

	// Rutas por módulo
	accounts.RegisterRoutes(r, accountsSvc, m, log)
	users.RegisterRoutes(r, usersSvc, gate)
	veterinarians.RegisterRoutes(r, vetsSvc, apptSvc, gate)
	pets.RegisterRoutes(r, petsSvc, gate)
	appointments.RegisterRoutes(r, apptSvc, gate)

	return r, nil
}
