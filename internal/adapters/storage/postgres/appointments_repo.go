package postgres

import (
	"context"
	"database/sql"
	"strings"

	"veterinaria-ica/internal/domain/appointments"
)

type AppointmentsRepo struct {
	db *sql.DB
}

func NewAppointmentsRepo(db *sql.DB) *AppointmentsRepo {
	return &AppointmentsRepo{db: db}
}

func (r *AppointmentsRepo) Create(ctx context.Context, a appointments.Appointment) (int64, error) {
	if a.Status == "" {
		a.Status = appointments.StatusPending
	}

	var id int64
	err := r.db.QueryRowContext(ctx, `
		INSERT INTO citas (mascota_id, veterinario_id, fecha, motivo, estado)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id
	`, a.PetID, a.VetID, a.Date, a.Reason, string(a.Status)).Scan(&id)
	if err != nil {
		if isForeignKeyViolation(err) {
			return 0, fkTarget(err)
		}
		return 0, err
	}
	return id, nil
}

// fkTarget distingue qué referencia falló por el nombre de la constraint
// (citas_mascota_id_fkey / citas_veterinario_id_fkey).
func fkTarget(err error) error {
	if strings.Contains(pgConstraint(err), "veterinario") {
		return appointments.ErrVetNotFound
	}
	return appointments.ErrPetNotFound
}

const joinedAppointments = `
	SELECT c.id, c.mascota_id, c.veterinario_id, c.fecha, c.motivo, c.estado,
	       m.nombre AS mascota, v.nombre AS veterinario
	FROM citas c
	JOIN mascotas m ON m.id = c.mascota_id
	JOIN veterinarios v ON v.id = c.veterinario_id
`

func (r *AppointmentsRepo) query(ctx context.Context, q string, args ...any) ([]appointments.Appointment, error) {
	rows, err := r.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]appointments.Appointment, 0)
	for rows.Next() {
		var a appointments.Appointment
		var status string
		if err := rows.Scan(&a.ID, &a.PetID, &a.VetID, &a.Date, &a.Reason, &status, &a.PetName, &a.VetName); err != nil {
			return nil, err
		}
		a.Status = appointments.Status(status)
		out = append(out, a)
	}
	return out, rows.Err()
}

func (r *AppointmentsRepo) List(ctx context.Context) ([]appointments.Appointment, error) {
	return r.query(ctx, joinedAppointments+` ORDER BY c.id DESC`)
}

func (r *AppointmentsRepo) ListByOwner(ctx context.Context, ownerID int64) ([]appointments.Appointment, error) {
	return r.query(ctx, joinedAppointments+` WHERE m.usuario_id = $1 ORDER BY c.fecha DESC, c.id DESC`, ownerID)
}

func (r *AppointmentsRepo) Delete(ctx context.Context, id int64) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM citas WHERE id = $1`, id)
	if err != nil {
		return err
	}
	n, _ := res.RowsAffected()
	if n == 0 {
		return appointments.ErrNotFound
	}
	return nil
}

func (r *AppointmentsRepo) CountByVeterinarian(ctx context.Context, vetID int64) (int, error) {
	var total int
	err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM citas WHERE veterinario_id = $1`, vetID).Scan(&total)
	return total, err
}
