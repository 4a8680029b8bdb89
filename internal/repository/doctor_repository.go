package repository

import (
	"context"
	"database/sql"

	"github.com/ArmaniKE/clinic-back/internal/model"
)

// DoctorRepo provides access to the doctors table. Every read joins
// through users for display data, and the delete is a three-step cascade
// that removes the doctor's appointments, the profile row and finally the
// user row, in that order.
type DoctorRepo struct{ DB *sql.DB }

func NewDoctorRepo(db *sql.DB) *DoctorRepo { return &DoctorRepo{DB: db} }

// DoctorDetail is the directory view of a doctor: profile columns plus the
// owning user's display data. It is returned by List and GetByID and
// serialized directly by handlers.
type DoctorDetail struct {
	ID             uint64  `json:"id"`
	UserID         uint64  `json:"user_id"`
	FullName       string  `json:"full_name"`
	Email          string  `json:"email"`
	Phone          *string `json:"phone"`
	Specialization *string `json:"specialization"`
	Room           *string `json:"room"`
	Notes          *string `json:"notes,omitempty"`
}

// List returns all doctors joined with their user rows, ordered by display
// name. Notes are omitted from the public listing.
func (r *DoctorRepo) List(ctx context.Context) ([]DoctorDetail, error) {
	const q = `SELECT d.id, d.user_id, u.full_name, u.email, u.phone, d.specialization, d.room
	FROM doctors d
	LEFT JOIN users u ON d.user_id = u.id
	ORDER BY u.full_name`
	rows, err := r.DB.QueryContext(ctx, q)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []DoctorDetail
	for rows.Next() {
		var d DoctorDetail
		if err := rows.Scan(&d.ID, &d.UserID, &d.FullName, &d.Email, &d.Phone, &d.Specialization, &d.Room); err != nil {
			return nil, err
		}
		out = append(out, d)
	}
	return out, rows.Err()
}

// GetByID fetches one doctor by the profile's own id, including notes.
func (r *DoctorRepo) GetByID(ctx context.Context, id uint64) (DoctorDetail, error) {
	const q = `SELECT d.id, d.user_id, u.full_name, u.email, u.phone, d.specialization, d.room, d.notes
	FROM doctors d
	JOIN users u ON d.user_id = u.id
	WHERE d.id = ?`
	var d DoctorDetail
	err := r.DB.QueryRowContext(ctx, q, id).Scan(
		&d.ID, &d.UserID, &d.FullName, &d.Email, &d.Phone, &d.Specialization, &d.Room, &d.Notes)
	return d, err
}

// Create inserts a doctor profile for an existing user.
func (r *DoctorRepo) Create(ctx context.Context, userID uint64, specialization, room, notes *string) (model.Doctor, error) {
	res, err := r.DB.ExecContext(ctx,
		"INSERT INTO doctors (user_id, specialization, room, notes) VALUES (?,?,?,?)",
		userID, specialization, room, notes)
	if err != nil {
		return model.Doctor{}, err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return model.Doctor{}, err
	}
	return model.Doctor{ID: uint64(id), UserID: userID, Specialization: specialization, Room: room, Notes: notes}, nil
}

// UpdateByUserID overwrites the profile columns for the doctor owned by
// the given user id. The admin UI addresses doctors by user id, so the
// update resolves through doctors.user_id rather than doctors.id.
// sql.ErrNoRows is returned when no profile exists for that user.
func (r *DoctorRepo) UpdateByUserID(ctx context.Context, userID uint64, specialization, room *string) (model.Doctor, error) {
	var d model.Doctor
	err := r.DB.QueryRowContext(ctx,
		"SELECT id, user_id, notes FROM doctors WHERE user_id=? LIMIT 1", userID).
		Scan(&d.ID, &d.UserID, &d.Notes)
	if err != nil {
		return model.Doctor{}, err
	}
	if _, err := r.DB.ExecContext(ctx,
		"UPDATE doctors SET specialization=?, room=? WHERE user_id=?",
		specialization, room, userID); err != nil {
		return model.Doctor{}, err
	}
	d.Specialization = specialization
	d.Room = room
	return d, nil
}

// DeleteCascadeByUserID removes a doctor and everything that depends on
// them: appointments first, then the profile row, then the user row. The
// whole cascade runs in one transaction. If the profile row is missing the
// delete fails with sql.ErrNoRows before the user row is touched, so a
// repeated delete is not idempotent.
func (r *DoctorRepo) DeleteCascadeByUserID(ctx context.Context, userID uint64) error {
	tx, err := r.DB.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	committed := false
	defer func() {
		if !committed {
			_ = tx.Rollback()
		}
	}()

	if _, err := tx.ExecContext(ctx, "DELETE FROM appointments WHERE doctor_id=?", userID); err != nil {
		return err
	}
	res, err := tx.ExecContext(ctx, "DELETE FROM doctors WHERE user_id=?", userID)
	if err != nil {
		return err
	}
	if n, err := res.RowsAffected(); err != nil {
		return err
	} else if n == 0 {
		return sql.ErrNoRows
	}
	if _, err := tx.ExecContext(ctx, "DELETE FROM users WHERE id=?", userID); err != nil {
		return err
	}
	if err := tx.Commit(); err != nil {
		return err
	}
	committed = true
	return nil
}
