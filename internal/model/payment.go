package model

import "time"

// Payment status values. PaidAt is non-NULL exactly when Status is
// completed; the repository recomputes it on every write instead of
// trusting caller-supplied timestamps.
const (
	PaymentPending   = "pending"
	PaymentCompleted = "completed"
)

// Payment is a billing record from the `payments` table, created and
// managed by admins only. AppointmentID is optional so ad hoc charges can
// be recorded without a booking.
type Payment struct {
	ID            uint64     // payments.id
	PatientID     uint64     // payments.patient_id
	AppointmentID *uint64    // payments.appointment_id (nullable)
	Amount        float64    // payments.amount
	Method        string     // payments.method
	Status        string     // payments.status
	PaidAt        *time.Time // payments.paid_at (nullable)
	CreatedAt     time.Time  // payments.created_at
}
