package repository

import (
	"context"
	"database/sql"
	"errors"
	"strings"
	"time"

	"github.com/ArmaniKE/clinic-back/internal/model"
)

// AppointmentRepo provides the booking workflow over the appointments
// table. The core invariant is that at most one non-cancelled appointment
// exists per (doctor_id, date, time) slot. Writes enforce it twice: a
// pre-check inside the transaction is the fast path, and a unique index
// over (doctor_id, date, time, active), where active is a generated
// column that is NULL for cancelled rows, is the required fallback, so
// two concurrent bookings for the same slot can never both commit.
type AppointmentRepo struct{ DB *sql.DB }

func NewAppointmentRepo(db *sql.DB) *AppointmentRepo { return &AppointmentRepo{DB: db} }

// ErrSlotTaken is returned when a create or reschedule would claim a slot
// that already has a non-cancelled appointment.
var ErrSlotTaken = errors.New("slot already taken")

// ErrAlreadyCancelled is returned by SoftCancel when the appointment was
// cancelled before this call, so the caller can skip re-notifying.
var ErrAlreadyCancelled = errors.New("appointment already cancelled")

// ErrNoFields is returned by UpdatePartial when the update carries no
// recognized field.
var ErrNoFields = errors.New("no fields to update")

// AppointmentUpdate carries the optional fields of a partial update. Nil
// means "leave unchanged".
type AppointmentUpdate struct {
	Date   *string
	Time   *string
	Reason *string
	Status *string
}

// AppointmentDetail is an appointment joined with the display names the
// clients render: patient, doctor and service. Fields that a particular
// listing does not select stay at their zero value.
type AppointmentDetail struct {
	ID           uint64   `json:"id"`
	PatientID    uint64   `json:"patient_id"`
	DoctorID     uint64   `json:"doctor_id"`
	ServiceID    uint64   `json:"service_id"`
	Date         string   `json:"date"`
	Time         string   `json:"time"`
	Reason       string   `json:"reason"`
	Status       string   `json:"status"`
	PatientName  *string  `json:"patient_name,omitempty"`
	DoctorName   *string  `json:"doctor_name,omitempty"`
	ServiceName  *string  `json:"service_name,omitempty"`
	ServicePrice *float64 `json:"service_price,omitempty"`
}

const apptColumns = "id, patient_id, doctor_id, service_id, date, time, reason, status, created_at, updated_at"

// scanAppointment reads one appointment row. The date column arrives as a
// time.Time because the pool sets parseTime=true; it is normalized back to
// the YYYY-MM-DD wire format here. TIME columns scan as plain strings.
func scanAppointment(row interface{ Scan(...any) error }) (model.Appointment, error) {
	var a model.Appointment
	var d time.Time
	err := row.Scan(&a.ID, &a.PatientID, &a.DoctorID, &a.ServiceID, &d, &a.Time, &a.Reason, &a.Status, &a.CreatedAt, &a.UpdatedAt)
	if err != nil {
		return model.Appointment{}, err
	}
	a.Date = d.Format("2006-01-02")
	return a, nil
}

// Create books a slot for a patient. The conflict pre-check and the insert
// run in one transaction; a duplicate-key error from the unique slot index
// is translated to ErrSlotTaken so a race between two concurrent bookings
// resolves to exactly one success.
func (r *AppointmentRepo) Create(ctx context.Context, patientID, doctorID, serviceID uint64, date, timeOfDay, reason string) (model.Appointment, error) {
	tx, err := r.DB.BeginTx(ctx, nil)
	if err != nil {
		return model.Appointment{}, err
	}
	committed := false
	defer func() {
		if !committed {
			_ = tx.Rollback()
		}
	}()

	var clashes int
	err = tx.QueryRowContext(ctx,
		"SELECT COUNT(*) FROM appointments WHERE doctor_id=? AND date=? AND time=? AND status <> 'cancelled'",
		doctorID, date, timeOfDay).Scan(&clashes)
	if err != nil {
		return model.Appointment{}, err
	}
	if clashes > 0 {
		return model.Appointment{}, ErrSlotTaken
	}

	res, err := tx.ExecContext(ctx,
		"INSERT INTO appointments (patient_id, doctor_id, service_id, date, time, reason, status) VALUES (?,?,?,?,?,?, 'pending')",
		patientID, doctorID, serviceID, date, timeOfDay, reason)
	if err != nil {
		if strings.Contains(strings.ToLower(err.Error()), "1062") {
			return model.Appointment{}, ErrSlotTaken
		}
		return model.Appointment{}, err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return model.Appointment{}, err
	}

	a, err := scanAppointment(tx.QueryRowContext(ctx,
		"SELECT "+apptColumns+" FROM appointments WHERE id=?", id))
	if err != nil {
		return model.Appointment{}, err
	}
	if err := tx.Commit(); err != nil {
		return model.Appointment{}, err
	}
	committed = true
	return a, nil
}

// GetByID fetches one appointment.
func (r *AppointmentRepo) GetByID(ctx context.Context, id uint64) (model.Appointment, error) {
	return scanAppointment(r.DB.QueryRowContext(ctx,
		"SELECT "+apptColumns+" FROM appointments WHERE id=?", id))
}

// UpdatePartial applies the supplied fields to an appointment. Moving the
// appointment to another slot re-validates the conflict invariant against
// every other non-cancelled appointment of the doctor, inside the same
// transaction as the write. ErrNoFields is returned when nothing
// recognized was supplied.
func (r *AppointmentRepo) UpdatePartial(ctx context.Context, id uint64, upd AppointmentUpdate) (model.Appointment, error) {
	if upd.Date == nil && upd.Time == nil && upd.Reason == nil && upd.Status == nil {
		return model.Appointment{}, ErrNoFields
	}

	tx, err := r.DB.BeginTx(ctx, nil)
	if err != nil {
		return model.Appointment{}, err
	}
	committed := false
	defer func() {
		if !committed {
			_ = tx.Rollback()
		}
	}()

	cur, err := scanAppointment(tx.QueryRowContext(ctx,
		"SELECT "+apptColumns+" FROM appointments WHERE id=?", id))
	if err != nil {
		return model.Appointment{}, err
	}

	if upd.Date != nil || upd.Time != nil {
		newDate, newTime := cur.Date, cur.Time
		if upd.Date != nil {
			newDate = *upd.Date
		}
		if upd.Time != nil {
			newTime = *upd.Time
		}
		var clashes int
		err = tx.QueryRowContext(ctx,
			"SELECT COUNT(*) FROM appointments WHERE doctor_id=? AND date=? AND time=? AND status <> 'cancelled' AND id <> ?",
			cur.DoctorID, newDate, newTime, id).Scan(&clashes)
		if err != nil {
			return model.Appointment{}, err
		}
		if clashes > 0 {
			return model.Appointment{}, ErrSlotTaken
		}
	}

	set := make([]string, 0, 4)
	args := make([]any, 0, 5)
	if upd.Date != nil {
		set = append(set, "date=?")
		args = append(args, *upd.Date)
	}
	if upd.Time != nil {
		set = append(set, "time=?")
		args = append(args, *upd.Time)
	}
	if upd.Reason != nil {
		set = append(set, "reason=?")
		args = append(args, *upd.Reason)
	}
	if upd.Status != nil {
		set = append(set, "status=?")
		args = append(args, *upd.Status)
	}
	args = append(args, id)

	if _, err := tx.ExecContext(ctx,
		"UPDATE appointments SET "+strings.Join(set, ", ")+" WHERE id=?", args...); err != nil {
		if strings.Contains(strings.ToLower(err.Error()), "1062") {
			return model.Appointment{}, ErrSlotTaken
		}
		return model.Appointment{}, err
	}

	a, err := scanAppointment(tx.QueryRowContext(ctx,
		"SELECT "+apptColumns+" FROM appointments WHERE id=?", id))
	if err != nil {
		return model.Appointment{}, err
	}
	if err := tx.Commit(); err != nil {
		return model.Appointment{}, err
	}
	committed = true
	return a, nil
}

// SoftCancel flips an appointment to cancelled, keeping the row for
// history. Cancelling an already-cancelled appointment returns
// ErrAlreadyCancelled so the caller does not notify twice; an unknown id
// returns sql.ErrNoRows.
func (r *AppointmentRepo) SoftCancel(ctx context.Context, id uint64) (model.Appointment, error) {
	res, err := r.DB.ExecContext(ctx,
		"UPDATE appointments SET status='cancelled' WHERE id=? AND status <> 'cancelled'", id)
	if err != nil {
		return model.Appointment{}, err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return model.Appointment{}, err
	}
	if n == 0 {
		// Either the row does not exist or it was cancelled already.
		if _, err := r.GetByID(ctx, id); err != nil {
			return model.Appointment{}, err
		}
		return model.Appointment{}, ErrAlreadyCancelled
	}
	return r.GetByID(ctx, id)
}

// ListByPatient returns a patient's own appointments with the doctor and
// service names resolved, ordered chronologically.
func (r *AppointmentRepo) ListByPatient(ctx context.Context, patientID uint64) ([]AppointmentDetail, error) {
	const q = `SELECT a.id, a.patient_id, a.doctor_id, a.service_id, a.date, a.time, a.reason, a.status,
		u.full_name AS doctor_name, s.name AS service_name
	FROM appointments a
	LEFT JOIN doctors d ON a.doctor_id = d.user_id
	LEFT JOIN users u ON d.user_id = u.id
	LEFT JOIN services s ON a.service_id = s.id
	WHERE a.patient_id = ?
	ORDER BY a.date, a.time`
	rows, err := r.DB.QueryContext(ctx, q, patientID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectDetails(rows, func(rs *sql.Rows, a *AppointmentDetail, d *time.Time) error {
		return rs.Scan(&a.ID, &a.PatientID, &a.DoctorID, &a.ServiceID, d, &a.Time, &a.Reason, &a.Status,
			&a.DoctorName, &a.ServiceName)
	})
}

// ListByDoctor returns a doctor's calendar with patient names resolved,
// ordered chronologically. doctorID is the doctor's user id.
func (r *AppointmentRepo) ListByDoctor(ctx context.Context, doctorID uint64) ([]AppointmentDetail, error) {
	const q = `SELECT a.id, a.patient_id, a.doctor_id, a.service_id, a.date, a.time, a.reason, a.status,
		u.full_name AS doctor_name, s.name AS service_name, uu.full_name AS patient_name
	FROM appointments a
	LEFT JOIN doctors d ON a.doctor_id = d.user_id
	LEFT JOIN users u ON d.user_id = u.id
	LEFT JOIN services s ON a.service_id = s.id
	LEFT JOIN users uu ON a.patient_id = uu.id
	WHERE a.doctor_id = ?
	ORDER BY a.date, a.time`
	rows, err := r.DB.QueryContext(ctx, q, doctorID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectDetails(rows, func(rs *sql.Rows, a *AppointmentDetail, d *time.Time) error {
		return rs.Scan(&a.ID, &a.PatientID, &a.DoctorID, &a.ServiceID, d, &a.Time, &a.Reason, &a.Status,
			&a.DoctorName, &a.ServiceName, &a.PatientName)
	})
}

// List returns the full listing with names and service price, newest
// first, optionally filtered by patient.
func (r *AppointmentRepo) List(ctx context.Context, patientID *uint64) ([]AppointmentDetail, error) {
	q := `SELECT a.id, a.patient_id, a.doctor_id, a.service_id, a.date, a.time, a.reason, a.status,
		u.full_name AS patient_name, du.full_name AS doctor_name, s.name AS service_name, s.price AS service_price
	FROM appointments a
	LEFT JOIN users u ON a.patient_id = u.id
	LEFT JOIN doctors doc ON a.doctor_id = doc.user_id
	LEFT JOIN users du ON doc.user_id = du.id
	LEFT JOIN services s ON a.service_id = s.id`
	args := []any{}
	if patientID != nil {
		q += " WHERE a.patient_id = ?"
		args = append(args, *patientID)
	}
	q += " ORDER BY a.date DESC, a.time DESC"
	rows, err := r.DB.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectDetails(rows, func(rs *sql.Rows, a *AppointmentDetail, d *time.Time) error {
		return rs.Scan(&a.ID, &a.PatientID, &a.DoctorID, &a.ServiceID, d, &a.Time, &a.Reason, &a.Status,
			&a.PatientName, &a.DoctorName, &a.ServiceName, &a.ServicePrice)
	})
}

// ListAll returns every appointment for the admin view, newest first.
func (r *AppointmentRepo) ListAll(ctx context.Context) ([]AppointmentDetail, error) {
	const q = `SELECT a.id, a.patient_id, a.doctor_id, a.service_id, a.date, a.time, a.reason, a.status,
		u.full_name AS doctor_name, s.name AS service_name, uu.full_name AS patient_name
	FROM appointments a
	LEFT JOIN doctors d ON a.doctor_id = d.user_id
	LEFT JOIN users u ON d.user_id = u.id
	LEFT JOIN services s ON a.service_id = s.id
	LEFT JOIN users uu ON a.patient_id = uu.id
	ORDER BY a.date DESC, a.time DESC`
	rows, err := r.DB.QueryContext(ctx, q)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectDetails(rows, func(rs *sql.Rows, a *AppointmentDetail, d *time.Time) error {
		return rs.Scan(&a.ID, &a.PatientID, &a.DoctorID, &a.ServiceID, d, &a.Time, &a.Reason, &a.Status,
			&a.DoctorName, &a.ServiceName, &a.PatientName)
	})
}

// collectDetails drains rows into AppointmentDetail values, formatting the
// parsed DATE column back to YYYY-MM-DD.
func collectDetails(rows *sql.Rows, scan func(*sql.Rows, *AppointmentDetail, *time.Time) error) ([]AppointmentDetail, error) {
	var out []AppointmentDetail
	for rows.Next() {
		var a AppointmentDetail
		var d time.Time
		if err := scan(rows, &a, &d); err != nil {
			return nil, err
		}
		a.Date = d.Format("2006-01-02")
		out = append(out, a)
	}
	return out, rows.Err()
}
