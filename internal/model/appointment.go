package model

import "time"

// Appointment status values. The lifecycle is small:
//
//	pending -> completed
//	pending -> cancelled (terminal)
//
// Cancellation is always a soft status flip so history survives for the
// dashboard aggregates; there is no transition out of cancelled.
const (
	StatusPending   = "pending"
	StatusCancelled = "cancelled"
	StatusCompleted = "completed"
)

// ValidStatus reports whether s is a known appointment status.
func ValidStatus(s string) bool {
	return s == StatusPending || s == StatusCancelled || s == StatusCompleted
}

// Appointment is the central booking record from the `appointments` table.
// The (DoctorID, Date, Time) triple is unique among non-cancelled rows,
// enforced by a unique index over a generated column that is NULL for
// cancelled rows.
//
// Fields:
//
//	ID        – primary key identifier.
//	PatientID – booking user (users.id).
//	DoctorID  – assigned doctor's user id (doctors.user_id).
//	ServiceID – booked service.
//	Date      – appointment date (YYYY-MM-DD).
//	Time      – appointment time slot (HH:MM).
//	Reason    – free-text reason supplied by the patient.
//	Status    – pending, cancelled or completed.
//	CreatedAt – creation timestamp.
//	UpdatedAt – last update timestamp.
type Appointment struct {
	ID        uint64    // appointments.id
	PatientID uint64    // appointments.patient_id
	DoctorID  uint64    // appointments.doctor_id
	ServiceID uint64    // appointments.service_id
	Date      string    // appointments.date
	Time      string    // appointments.time
	Reason    string    // appointments.reason
	Status    string    // appointments.status
	CreatedAt time.Time // appointments.created_at
	UpdatedAt time.Time // appointments.updated_at
}
