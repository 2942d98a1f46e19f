package main

import (
	"context"
	"database/sql"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"veterinaria-ica/internal/adapters/auth/google"
	pg "veterinaria-ica/internal/adapters/storage/postgres"
	"veterinaria-ica/internal/config"
	"veterinaria-ica/internal/domain/accounts"
	"veterinaria-ica/internal/platform/httpclient"
	"veterinaria-ica/internal/platform/logger"
	"veterinaria-ica/internal/platform/metrics"
	"veterinaria-ica/internal/platform/telemetry"
	"veterinaria-ica/internal/ports/auth"
	"veterinaria-ica/internal/router"
	"veterinaria-ica/internal/security"

	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
)

// @title           Veterinaria Ica API
// @version         1.0
// @description     Usuarios, roles, mascotas, veterinarios y citas de la clínica.
// @BasePath        /
// @securityDefinitions.apikey BearerAuth
// @in              header
// @name            Authorization
func main() {
	log := logger.NewFromEnv()
	defer logger.Sync(log)

	if err := run(log); err != nil {
		log.Error("fatal", map[string]any{"error": err})
		logger.Sync(log)
		os.Exit(1)
	}
}

func run(log logger.Logger) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	shutdownTracing := telemetry.Setup(ctx, cfg.ServiceName, log)
	defer func() {
		sctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = shutdownTracing(sctx)
	}()

	var db *sql.DB
	if cfg.DatabaseDSN != "" {
		db, err = pg.Open(ctx, cfg.DatabaseDSN)
		if err != nil {
			return err
		}
		defer db.Close()
		if err := pg.Migrate(ctx, db); err != nil {
			return err
		}
		log.Info("storage: postgres", nil)
	} else {
		log.Warn("storage: in-memory (DB_DSN vacío), los datos no persisten", nil)
	}

	tokens, err := security.NewTokens(cfg.JWTSecret, cfg.TokenTTL)
	if err != nil {
		return err
	}

	var federated auth.FederatedVerifier
	if cfg.GoogleClientID != "" {
		keys := google.NewKeySet(cfg.GoogleJWKSURL, httpclient.New(httpclient.DefaultTimeout))
		federated = google.NewVerifier(cfg.GoogleClientID, keys)
	} else {
		log.Warn("GOOGLE_CLIENT_ID vacío: login con Google deshabilitado", nil)
	}

	var admin *accounts.RegisterInput
	if cfg.AdminEmail != "" && cfg.AdminPassword != "" {
		admin = &accounts.RegisterInput{
			Name:     cfg.AdminName,
			Email:    cfg.AdminEmail,
			Password: cfg.AdminPassword,
		}
	}

	h, err := router.NewRouter(ctx, router.Options{
		Logger:         log,
		Metrics:        metrics.New(),
		Tokens:         tokens,
		Hasher:         security.NewPasswordHasher(cfg.BcryptCost),
		Federated:      federated,
		DB:             db,
		RequestTimeout: cfg.RequestTimeout,
		Admin:          admin,
	})
	if err != nil {
		return err
	}

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           otelhttp.NewHandler(h, cfg.ServiceName),
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       10 * time.Second,
		WriteTimeout:      cfg.RequestTimeout + 5*time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info("starting server", map[string]any{"addr": srv.Addr})
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	log.Info("shutting down", nil)
	sctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return srv.Shutdown(sctx)
}
