package postgres

import (
	"context"
	"database/sql"
	"errors"

	"veterinaria-ica/internal/domain/users"
	"veterinaria-ica/internal/domain/veterinarians"
)

type VeterinariansRepo struct {
	db *sql.DB
}

func NewVeterinariansRepo(db *sql.DB) *VeterinariansRepo {
	return &VeterinariansRepo{db: db}
}

func (r *VeterinariansRepo) Create(ctx context.Context, v veterinarians.Veterinarian) (int64, error) {
	var id int64
	err := r.db.QueryRowContext(ctx, `
		INSERT INTO veterinarios (usuario_id, nombre, email, especialidad, telefono)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id
	`, v.UserID, v.Name, v.Email, v.Specialty, v.Phone).Scan(&id)
	if err != nil {
		if isForeignKeyViolation(err) {
			return 0, users.ErrNotFound
		}
		return 0, err
	}
	return id, nil
}

const vetColumns = `id, usuario_id, nombre, email, especialidad, telefono`

func scanVet(row rowScanner) (veterinarians.Veterinarian, error) {
	var v veterinarians.Veterinarian
	if err := row.Scan(&v.ID, &v.UserID, &v.Name, &v.Email, &v.Specialty, &v.Phone); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return veterinarians.Veterinarian{}, veterinarians.ErrNotFound
		}
		return veterinarians.Veterinarian{}, err
	}
	return v, nil
}

func (r *VeterinariansRepo) GetByID(ctx context.Context, id int64) (veterinarians.Veterinarian, error) {
	return scanVet(r.db.QueryRowContext(ctx, `SELECT `+vetColumns+` FROM veterinarios WHERE id = $1`, id))
}

func (r *VeterinariansRepo) List(ctx context.Context) ([]veterinarians.Veterinarian, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT `+vetColumns+` FROM veterinarios ORDER BY id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]veterinarians.Veterinarian, 0)
	for rows.Next() {
		v, err := scanVet(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, v)
	}
	return out, rows.Err()
}
