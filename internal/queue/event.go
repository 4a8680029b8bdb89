// Package queue defines message payloads exchanged over the message broker
// and the background consumer that delivers them.
package queue

// Email job event names. Each maps to one template in the mailer package.
const (
	EventAppointmentCreated   = "appointment.created"
	EventAppointmentCancelled = "appointment.cancelled"
)

// emailQueueName is the durable queue carrying EmailJob messages.
const emailQueueName = "notify.email"

// EmailJob is published when a booking state change requires an outbound
// email. It carries the pre-resolved display data so the consumer can
// render and send without querying the primary database.
type EmailJob struct {
	Event       string `json:"event"`
	To          string `json:"to"`
	Name        string `json:"name"`
	Date        string `json:"date"`
	Time        string `json:"time"`
	DoctorName  string `json:"doctor_name,omitempty"`
	PatientName string `json:"patient_name,omitempty"`
	ServiceName string `json:"service_name,omitempty"`
}
