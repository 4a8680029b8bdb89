package notify

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/ArmaniKE/clinic-back/internal/queue"
	"github.com/ArmaniKE/clinic-back/internal/ws"
)

func newTestNotifier(jobs chan queue.EmailJob) *Notifier {
	n := New(ws.NewHub())
	n.publish = func(ctx context.Context, job queue.EmailJob) error {
		jobs <- job
		return nil
	}
	return n
}

func TestCreatedTagsJobAndPublishes(t *testing.T) {
	jobs := make(chan queue.EmailJob, 1)
	n := newTestNotifier(jobs)

	n.AppointmentCreated(map[string]any{"id": 1}, queue.EmailJob{
		To:   "jane@clinic.test",
		Name: "Jane Doe",
		Date: "2026-09-01",
		Time: "10:00",
	})

	select {
	case job := <-jobs:
		assert.Equal(t, queue.EventAppointmentCreated, job.Event)
		assert.Equal(t, "jane@clinic.test", job.To)
	case <-time.After(2 * time.Second):
		t.Fatal("no job published")
	}
}

func TestCancelledTagsJob(t *testing.T) {
	jobs := make(chan queue.EmailJob, 1)
	n := newTestNotifier(jobs)

	n.AppointmentCancelled(map[string]any{"id": 1}, queue.EmailJob{To: "doc@clinic.test"})

	select {
	case job := <-jobs:
		assert.Equal(t, queue.EventAppointmentCancelled, job.Event)
	case <-time.After(2 * time.Second):
		t.Fatal("no job published")
	}
}

// A job with no recipient is dropped instead of hitting the broker: the
// contact lookup can fail without breaking the booking flow.
func TestEmptyRecipientSkipsPublish(t *testing.T) {
	jobs := make(chan queue.EmailJob, 1)
	n := newTestNotifier(jobs)

	n.AppointmentCreated(map[string]any{"id": 1}, queue.EmailJob{})

	select {
	case job := <-jobs:
		t.Fatalf("unexpected publish: %+v", job)
	case <-time.After(100 * time.Millisecond):
	}
}

func TestUpdatedPublishesNothing(t *testing.T) {
	jobs := make(chan queue.EmailJob, 1)
	n := newTestNotifier(jobs)

	n.AppointmentUpdated(map[string]any{"id": 1})

	select {
	case job := <-jobs:
		t.Fatalf("unexpected publish: %+v", job)
	case <-time.After(100 * time.Millisecond):
	}
}
