package repository

import (
	"context"
	"database/sql"
	"time"

	"github.com/ArmaniKE/clinic-back/internal/model"
)

// PaymentRepo provides CRUD over payment records. The paid_at column is
// derived state: it is set to the write time exactly when a payment is
// created as or moved to completed, and cleared on any other status, so
// callers never supply it.
type PaymentRepo struct{ DB *sql.DB }

func NewPaymentRepo(db *sql.DB) *PaymentRepo { return &PaymentRepo{DB: db} }

// PaymentDetail is a payment joined with the patient's name and, when the
// payment is linked to an appointment, the service name and appointment
// date.
type PaymentDetail struct {
	ID              uint64     `json:"id"`
	PatientID       uint64     `json:"patient_id"`
	AppointmentID   *uint64    `json:"appointment_id"`
	Amount          float64    `json:"amount"`
	Method          string     `json:"method"`
	Status          string     `json:"status"`
	PaidAt          *time.Time `json:"paid_at"`
	CreatedAt       time.Time  `json:"created_at"`
	PatientName     *string    `json:"patient_name,omitempty"`
	ServiceName     string     `json:"service_name"`
	AppointmentDate *string    `json:"appointment_date"`
}

// paidAtFor computes the derived paid_at value for a status.
func paidAtFor(status string) *time.Time {
	if status == model.PaymentCompleted {
		now := time.Now().UTC()
		return &now
	}
	return nil
}

// List returns all payments newest-paid first with NULL paid_at sorted
// last, optionally filtered by patient.
func (r *PaymentRepo) List(ctx context.Context, patientID *uint64) ([]PaymentDetail, error) {
	q := `SELECT p.id, p.patient_id, p.appointment_id, p.amount, p.method, p.status, p.paid_at, p.created_at,
		u.full_name AS patient_name,
		COALESCE(s.name, '—') AS service_name,
		a.date AS appointment_date
	FROM payments p
	LEFT JOIN users u ON p.patient_id = u.id
	LEFT JOIN appointments a ON p.appointment_id = a.id
	LEFT JOIN services s ON a.service_id = s.id`
	args := []any{}
	if patientID != nil {
		q += " WHERE p.patient_id = ?"
		args = append(args, *patientID)
	}
	q += " ORDER BY p.paid_at IS NULL, p.paid_at DESC, p.id DESC"
	rows, err := r.DB.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return r.collect(rows)
}

// ListByPatient returns one patient's payments, newest first.
func (r *PaymentRepo) ListByPatient(ctx context.Context, patientID uint64) ([]PaymentDetail, error) {
	const q = `SELECT p.id, p.patient_id, p.appointment_id, p.amount, p.method, p.status, p.paid_at, p.created_at,
		u.full_name AS patient_name,
		COALESCE(s.name, '—') AS service_name,
		a.date AS appointment_date
	FROM payments p
	LEFT JOIN users u ON p.patient_id = u.id
	LEFT JOIN appointments a ON p.appointment_id = a.id
	LEFT JOIN services s ON a.service_id = s.id
	WHERE p.patient_id = ?
	ORDER BY p.created_at DESC`
	rows, err := r.DB.QueryContext(ctx, q, patientID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return r.collect(rows)
}

func (r *PaymentRepo) collect(rows *sql.Rows) ([]PaymentDetail, error) {
	var out []PaymentDetail
	for rows.Next() {
		var p PaymentDetail
		var apptDate *time.Time
		if err := rows.Scan(&p.ID, &p.PatientID, &p.AppointmentID, &p.Amount, &p.Method, &p.Status,
			&p.PaidAt, &p.CreatedAt, &p.PatientName, &p.ServiceName, &apptDate); err != nil {
			return nil, err
		}
		if apptDate != nil {
			d := apptDate.Format("2006-01-02")
			p.AppointmentDate = &d
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

// GetByID fetches one payment row.
func (r *PaymentRepo) GetByID(ctx context.Context, id uint64) (model.Payment, error) {
	var p model.Payment
	err := r.DB.QueryRowContext(ctx,
		"SELECT id, patient_id, appointment_id, amount, method, status, paid_at, created_at FROM payments WHERE id=? LIMIT 1",
		id).Scan(&p.ID, &p.PatientID, &p.AppointmentID, &p.Amount, &p.Method, &p.Status, &p.PaidAt, &p.CreatedAt)
	return p, err
}

// Create inserts a payment, computing paid_at from the status.
func (r *PaymentRepo) Create(ctx context.Context, patientID uint64, appointmentID *uint64, amount float64, method, status string) (model.Payment, error) {
	paidAt := paidAtFor(status)
	res, err := r.DB.ExecContext(ctx,
		"INSERT INTO payments (patient_id, appointment_id, amount, method, status, paid_at) VALUES (?,?,?,?,?,?)",
		patientID, appointmentID, amount, method, status, paidAt)
	if err != nil {
		return model.Payment{}, err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return model.Payment{}, err
	}
	return r.GetByID(ctx, uint64(id))
}

// Update overwrites amount, method and status, recomputing paid_at from
// the new status on every write. sql.ErrNoRows when the id is unknown.
func (r *PaymentRepo) Update(ctx context.Context, id uint64, amount float64, method, status string) (model.Payment, error) {
	if _, err := r.GetByID(ctx, id); err != nil {
		return model.Payment{}, err
	}
	paidAt := paidAtFor(status)
	if _, err := r.DB.ExecContext(ctx,
		"UPDATE payments SET amount=?, method=?, status=?, paid_at=? WHERE id=?",
		amount, method, status, paidAt, id); err != nil {
		return model.Payment{}, err
	}
	return r.GetByID(ctx, id)
}

// Delete removes a payment. Removing an unknown id is a no-op, matching
// the admin UI's fire-and-forget delete.
func (r *PaymentRepo) Delete(ctx context.Context, id uint64) error {
	_, err := r.DB.ExecContext(ctx, "DELETE FROM payments WHERE id=?", id)
	return err
}
