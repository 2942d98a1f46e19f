package postgres

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"veterinaria-ica/internal/domain/pets"
)

type PetsRepo struct {
	db *sql.DB
}

func NewPetsRepo(db *sql.DB) *PetsRepo {
	return &PetsRepo{db: db}
}

func (r *PetsRepo) Create(ctx context.Context, p pets.Pet) (int64, error) {
	createdAt := p.CreatedAt
	if createdAt.IsZero() {
		createdAt = time.Now()
	}

	var id int64
	err := r.db.QueryRowContext(ctx, `
		INSERT INTO mascotas (usuario_id, nombre, especie, raza, edad, peso, creado_en)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id
	`,
		p.OwnerID,
		p.Name,
		p.Species,
		p.Breed,
		p.Age,
		p.Weight,
		createdAt,
	).Scan(&id)
	if err != nil {
		if isForeignKeyViolation(err) {
			return 0, pets.ErrOwnerNotFound
		}
		return 0, err
	}
	return id, nil
}

const petColumns = `m.id, m.usuario_id, m.nombre, m.especie, m.raza, m.edad, m.peso, m.creado_en`

func scanPet(row rowScanner, extra ...any) (pets.Pet, error) {
	var p pets.Pet
	dest := append([]any{
		&p.ID,
		&p.OwnerID,
		&p.Name,
		&p.Species,
		&p.Breed,
		&p.Age,
		&p.Weight,
		&p.CreatedAt,
	}, extra...)
	if err := row.Scan(dest...); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return pets.Pet{}, pets.ErrNotFound
		}
		return pets.Pet{}, err
	}
	return p, nil
}

func (r *PetsRepo) GetByID(ctx context.Context, id int64) (pets.Pet, error) {
	return scanPet(r.db.QueryRowContext(ctx, `SELECT `+petColumns+` FROM mascotas m WHERE m.id = $1`, id))
}

func (r *PetsRepo) List(ctx context.Context) ([]pets.Pet, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT `+petColumns+`, u.nombre
		FROM mascotas m
		JOIN usuarios u ON u.id = m.usuario_id
		ORDER BY m.id DESC
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]pets.Pet, 0)
	for rows.Next() {
		var owner string
		p, err := scanPet(rows, &owner)
		if err != nil {
			return nil, err
		}
		p.OwnerName = owner
		out = append(out, p)
	}
	return out, rows.Err()
}

func (r *PetsRepo) ListByOwner(ctx context.Context, ownerID int64) ([]pets.Pet, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT `+petColumns+`
		FROM mascotas m
		WHERE m.usuario_id = $1
		ORDER BY m.creado_en DESC, m.id DESC
	`, ownerID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]pets.Pet, 0)
	for rows.Next() {
		p, err := scanPet(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, rows.Err()
}
