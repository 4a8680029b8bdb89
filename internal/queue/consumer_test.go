package queue

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordingSender struct {
	to, subject, body string
	calls             int
}

func (r *recordingSender) Send(to, subject, htmlBody string) error {
	r.to, r.subject, r.body = to, subject, htmlBody
	r.calls++
	return nil
}

func marshalJob(t *testing.T, job EmailJob) []byte {
	t.Helper()
	b, err := json.Marshal(job)
	require.NoError(t, err)
	return b
}

func TestHandleJobCreated(t *testing.T) {
	s := &recordingSender{}
	body := marshalJob(t, EmailJob{
		Event:       EventAppointmentCreated,
		To:          "jane@clinic.test",
		Name:        "Jane Doe",
		Date:        "2026-09-01",
		Time:        "10:00",
		DoctorName:  "Dr. Adams",
		ServiceName: "Consultation",
	})

	require.NoError(t, handleJob(body, s))
	assert.Equal(t, 1, s.calls)
	assert.Equal(t, "jane@clinic.test", s.to)
	assert.Equal(t, "Appointment confirmation", s.subject)
	assert.Contains(t, s.body, "Dr. Adams")
	assert.Contains(t, s.body, "Consultation")
}

func TestHandleJobCancelled(t *testing.T) {
	s := &recordingSender{}
	body := marshalJob(t, EmailJob{
		Event:       EventAppointmentCancelled,
		To:          "doc@clinic.test",
		Name:        "Dr. Adams",
		Date:        "2026-09-01",
		Time:        "10:00",
		PatientName: "Jane Doe",
	})

	require.NoError(t, handleJob(body, s))
	assert.Equal(t, "Appointment cancelled", s.subject)
	assert.Contains(t, s.body, "Jane Doe")
}

func TestHandleJobUnknownEvent(t *testing.T) {
	s := &recordingSender{}
	body := marshalJob(t, EmailJob{Event: "appointment.rescheduled", To: "x@y.test"})

	assert.Error(t, handleJob(body, s))
	assert.Zero(t, s.calls)
}

func TestHandleJobBadPayload(t *testing.T) {
	assert.Error(t, handleJob([]byte("{not json"), &recordingSender{}))
}

// With no SMTP configured the job is consumed without an error, so the
// queue drains instead of filling with rejects.
func TestHandleJobNilSender(t *testing.T) {
	body := marshalJob(t, EmailJob{Event: EventAppointmentCreated, To: "jane@clinic.test"})
	assert.NoError(t, handleJob(body, nil))
}
