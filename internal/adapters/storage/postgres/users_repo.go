package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"veterinaria-ica/internal/domain/users"
)

type UsersRepo struct {
	db *sql.DB
}

func NewUsersRepo(db *sql.DB) *UsersRepo {
	return &UsersRepo{db: db}
}

const userColumns = `id, nombre, email, COALESCE(password, ''), COALESCE(foto_perfil, ''), proveedor, creado_en`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanUser(row rowScanner) (users.User, error) {
	var u users.User
	var provider string
	if err := row.Scan(&u.ID, &u.Name, &u.Email, &u.PasswordHash, &u.PictureURL, &provider, &u.CreatedAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return users.User{}, users.ErrNotFound
		}
		return users.User{}, err
	}
	u.Provider = users.Provider(provider)
	return u, nil
}

func nullIfEmpty(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}

// insertRole asocia role dentro de tx. ErrUnknownRole si no está sembrado.
func insertRole(ctx context.Context, tx *sql.Tx, userID int64, role string) error {
	res, err := tx.ExecContext(ctx, `
		INSERT INTO usuarios_roles (usuario_id, rol_id)
		SELECT $1, id FROM roles WHERE nombre = $2
		ON CONFLICT DO NOTHING
	`, userID, role)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		var exists bool
		if err := tx.QueryRowContext(ctx, `SELECT EXISTS (SELECT 1 FROM roles WHERE nombre = $1)`, role).Scan(&exists); err != nil {
			return err
		}
		if !exists {
			return users.ErrUnknownRole
		}
	}
	return nil
}

// CreateLocal: usuario + rol en una transacción. La unicidad la garantiza
// usuarios_email_key; dos registros concurrentes => uno recibe 23505.
func (r *UsersRepo) CreateLocal(ctx context.Context, u users.User, role string) (users.User, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return users.User{}, err
	}
	defer rollback(tx)

	u.Provider = users.ProviderLocal
	err = tx.QueryRowContext(ctx, `
		INSERT INTO usuarios (nombre, email, password, proveedor)
		VALUES ($1, $2, $3, $4)
		RETURNING id, creado_en
	`, u.Name, u.Email, nullIfEmpty(u.PasswordHash), string(u.Provider)).Scan(&u.ID, &u.CreatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return users.User{}, users.ErrEmailTaken
		}
		return users.User{}, fmt.Errorf("insert usuario: %w", err)
	}

	if err := insertRole(ctx, tx, u.ID, role); err != nil {
		return users.User{}, err
	}
	if err := tx.Commit(); err != nil {
		return users.User{}, err
	}
	return u, nil
}

func (r *UsersRepo) FindOrCreateFederated(ctx context.Context, u users.User, role string) (users.User, bool, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return users.User{}, false, err
	}
	defer rollback(tx)

	err = tx.QueryRowContext(ctx, `
		INSERT INTO usuarios (nombre, email, foto_perfil, proveedor)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (email) DO NOTHING
		RETURNING id, creado_en
	`, u.Name, u.Email, nullIfEmpty(u.PictureURL), string(u.Provider)).Scan(&u.ID, &u.CreatedAt)

	switch {
	case errors.Is(err, sql.ErrNoRows):
		// Ya existía (o lo creó otra transacción concurrente).
		existing, err := scanUser(tx.QueryRowContext(ctx,
			`SELECT `+userColumns+` FROM usuarios WHERE email = $1`, u.Email))
		if err != nil {
			return users.User{}, false, err
		}
		if err := tx.Commit(); err != nil {
			return users.User{}, false, err
		}
		return existing, false, nil
	case err != nil:
		return users.User{}, false, fmt.Errorf("insert usuario federado: %w", err)
	}

	if err := insertRole(ctx, tx, u.ID, role); err != nil {
		return users.User{}, false, err
	}
	if err := tx.Commit(); err != nil {
		return users.User{}, false, err
	}
	u.PasswordHash = ""
	return u, true, nil
}

func (r *UsersRepo) GetByID(ctx context.Context, id int64) (users.User, error) {
	return scanUser(r.db.QueryRowContext(ctx, `SELECT `+userColumns+` FROM usuarios WHERE id = $1`, id))
}

func (r *UsersRepo) GetByEmail(ctx context.Context, email string) (users.User, error) {
	return scanUser(r.db.QueryRowContext(ctx, `SELECT `+userColumns+` FROM usuarios WHERE email = $1`, email))
}

func (r *UsersRepo) List(ctx context.Context) ([]users.User, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT `+userColumns+` FROM usuarios ORDER BY id DESC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]users.User, 0)
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, u)
	}
	return out, rows.Err()
}

func (r *UsersRepo) RolesOf(ctx context.Context, userID int64) ([]string, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT r.nombre
		FROM usuarios_roles ur
		JOIN roles r ON r.id = ur.rol_id
		WHERE ur.usuario_id = $1
		ORDER BY r.nombre
	`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]string, 0, 2)
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, err
		}
		out = append(out, name)
	}
	return out, rows.Err()
}

func (r *UsersRepo) AssignRole(ctx context.Context, userID int64, role string) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer rollback(tx)

	if err := insertRole(ctx, tx, userID, role); err != nil {
		if isForeignKeyViolation(err) {
			return users.ErrNotFound
		}
		return err
	}
	return tx.Commit()
}
