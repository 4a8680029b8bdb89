package repository

import (
	"context"
	"database/sql"
	"time"

	"github.com/ArmaniKE/clinic-back/internal/model"
)

// PatientRepo provides access to the patients table. The listing filters
// to users with role=patient to exclude stray profile rows, and the
// self-service path upserts the profile so a patient user always ends up
// with one.
type PatientRepo struct{ DB *sql.DB }

func NewPatientRepo(db *sql.DB) *PatientRepo { return &PatientRepo{DB: db} }

// PatientDetail is the directory view of a patient: profile columns plus
// the owning user's display data.
type PatientDetail struct {
	ID        uint64     `json:"id"`
	UserID    uint64     `json:"user_id"`
	FullName  string     `json:"full_name"`
	Email     string     `json:"email"`
	Phone     *string    `json:"phone"`
	BirthDate *time.Time `json:"birth_date"`
	Address   *string    `json:"address"`
}

// List returns all patients joined with their user rows, ordered by
// display name. Only rows whose user still carries role=patient are
// included.
func (r *PatientRepo) List(ctx context.Context) ([]PatientDetail, error) {
	const q = `SELECT p.id, p.user_id, u.full_name, u.email, u.phone, p.birth_date, p.address
	FROM patients p
	LEFT JOIN users u ON p.user_id = u.id
	WHERE u.role = 'patient'
	ORDER BY u.full_name`
	rows, err := r.DB.QueryContext(ctx, q)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []PatientDetail
	for rows.Next() {
		var p PatientDetail
		if err := rows.Scan(&p.ID, &p.UserID, &p.FullName, &p.Email, &p.Phone, &p.BirthDate, &p.Address); err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

// GetByUserID fetches the profile joined with user data for one patient.
func (r *PatientRepo) GetByUserID(ctx context.Context, userID uint64) (PatientDetail, error) {
	const q = `SELECT p.id, p.user_id, u.full_name, u.email, u.phone, p.birth_date, p.address
	FROM patients p
	JOIN users u ON p.user_id = u.id
	WHERE p.user_id = ?`
	var p PatientDetail
	err := r.DB.QueryRowContext(ctx, q, userID).Scan(
		&p.ID, &p.UserID, &p.FullName, &p.Email, &p.Phone, &p.BirthDate, &p.Address)
	return p, err
}

// Create inserts a patient profile for an existing user.
func (r *PatientRepo) Create(ctx context.Context, userID uint64, birthDate *time.Time, address *string) (model.Patient, error) {
	res, err := r.DB.ExecContext(ctx,
		"INSERT INTO patients (user_id, birth_date, address) VALUES (?,?,?)",
		userID, birthDate, address)
	if err != nil {
		return model.Patient{}, err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return model.Patient{}, err
	}
	return model.Patient{ID: uint64(id), UserID: userID, BirthDate: birthDate, Address: address}, nil
}

// UpdateByUserID overwrites the profile columns for the patient owned by
// the given user id. sql.ErrNoRows is returned when no profile exists.
func (r *PatientRepo) UpdateByUserID(ctx context.Context, userID uint64, birthDate *time.Time, address *string) (model.Patient, error) {
	var p model.Patient
	err := r.DB.QueryRowContext(ctx,
		"SELECT id, user_id FROM patients WHERE user_id=? LIMIT 1", userID).
		Scan(&p.ID, &p.UserID)
	if err != nil {
		return model.Patient{}, err
	}
	if _, err := r.DB.ExecContext(ctx,
		"UPDATE patients SET birth_date=?, address=? WHERE user_id=?",
		birthDate, address, userID); err != nil {
		return model.Patient{}, err
	}
	p.BirthDate = birthDate
	p.Address = address
	return p, nil
}

// Upsert inserts the profile row for a user or merges the supplied fields
// into the existing one, keeping current values for nil fields. It backs
// the self-service profile update and must never leave a patient user
// without a profile. patients.user_id carries a unique index.
func (r *PatientRepo) Upsert(ctx context.Context, userID uint64, birthDate *time.Time, address *string) error {
	const q = `INSERT INTO patients (user_id, birth_date, address) VALUES (?,?,?)
	ON DUPLICATE KEY UPDATE
		birth_date = COALESCE(VALUES(birth_date), birth_date),
		address    = COALESCE(VALUES(address), address)`
	_, err := r.DB.ExecContext(ctx, q, userID, birthDate, address)
	return err
}

// DeleteCascadeByUserID removes a patient and everything that depends on
// them: appointments, the profile row, then the user row, in one
// transaction. Missing profile -> sql.ErrNoRows before the user row is
// touched.
func (r *PatientRepo) DeleteCascadeByUserID(ctx context.Context, userID uint64) error {
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

	if _, err := tx.ExecContext(ctx, "DELETE FROM appointments WHERE patient_id=?", userID); err != nil {
		return err
	}
	res, err := tx.ExecContext(ctx, "DELETE FROM patients WHERE user_id=?", userID)
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
