// Package notify is the fan-out point for booking state changes. Each
// change triggers two independent, best-effort side effects: an email job
// published to the broker and a broadcast over the websocket hub. Both
// live in their own failure domain: an unreachable broker or an empty hub
// never changes the outcome of the request that triggered the event.
package notify

import (
	"context"
	"log"
	"time"

	"github.com/ArmaniKE/clinic-back/internal/queue"
	"github.com/ArmaniKE/clinic-back/internal/ws"
)

// Broadcast event names carried over the push channel.
const (
	EventCreated   = "appointment:created"
	EventUpdated   = "appointment:updated"
	EventCancelled = "appointment:cancelled"
)

// publishTimeout bounds a single broker publish so a slow broker can at
// worst delay one background goroutine, never a response.
const publishTimeout = 5 * time.Second

// Notifier owns the two notification sinks. The publish function is a
// field so tests can intercept jobs without a broker.
type Notifier struct {
	hub     *ws.Hub
	publish func(context.Context, queue.EmailJob) error
}

// New wires the notifier to the hub and the AMQP publisher.
func New(hub *ws.Hub) *Notifier {
	return &Notifier{hub: hub, publish: queue.PublishEmailJob}
}

// AppointmentCreated emails the patient and broadcasts the new row.
// payload must already be JSON-serializable in the API's wire shape.
func (n *Notifier) AppointmentCreated(payload any, job queue.EmailJob) {
	job.Event = queue.EventAppointmentCreated
	n.enqueue(job)
	n.hub.Broadcast(EventCreated, payload)
}

// AppointmentUpdated broadcasts the updated row. No email is sent for
// plain updates.
func (n *Notifier) AppointmentUpdated(payload any) {
	n.hub.Broadcast(EventUpdated, payload)
}

// AppointmentCancelled emails the doctor and broadcasts the cancelled row.
func (n *Notifier) AppointmentCancelled(payload any, job queue.EmailJob) {
	job.Event = queue.EventAppointmentCancelled
	n.enqueue(job)
	n.hub.Broadcast(EventCancelled, payload)
}

// enqueue publishes the email job off the request path. Errors are already
// logged by the publisher and swallowed here; delivery is best-effort.
func (n *Notifier) enqueue(job queue.EmailJob) {
	if job.To == "" {
		log.Printf("notify: no recipient for %s job, skipping email", job.Event)
		return
	}
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), publishTimeout)
		defer cancel()
		_ = n.publish(ctx, job)
	}()
}
