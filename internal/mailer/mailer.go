// Package mailer sends the booking notification emails. Delivery is a
// best-effort side effect: the booking request has already returned by the
// time a message reaches this package (jobs arrive via the notify.email
// queue), so a failing SMTP server can never fail or delay a booking.
package mailer

import (
	"fmt"
	"html"

	"gopkg.in/gomail.v2"
)

// Sender delivers one rendered email. The queue consumer depends on this
// interface so tests can swap in a recording stub.
type Sender interface {
	Send(to, subject, htmlBody string) error
}

// SMTP is the gomail-backed Sender used in production.
type SMTP struct {
	dialer *gomail.Dialer
	from   string
}

// NewSMTP builds a Sender for the given SMTP endpoint. Returns nil when no
// host is configured, which disables mail delivery entirely.
func NewSMTP(host string, port int, user, pass, from string) *SMTP {
	if host == "" {
		return nil
	}
	return &SMTP{dialer: gomail.NewDialer(host, port, user, pass), from: from}
}

// Send dials, delivers one message and closes the connection. Volume is a
// handful of mails per booking event, so a persistent SMTP connection is
// not worth its keepalive handling.
func (s *SMTP) Send(to, subject, htmlBody string) error {
	m := gomail.NewMessage()
	m.SetHeader("From", s.from)
	m.SetHeader("To", to)
	m.SetHeader("Subject", subject)
	m.SetBody("text/html", htmlBody)
	return s.dialer.DialAndSend(m)
}

// CreatedEmail renders the booking confirmation sent to the patient.
// Names and the free-form fields come from user input, so everything is
// escaped before it lands in the HTML body.
func CreatedEmail(name, date, timeOfDay, doctorName, serviceName string) (subject, body string) {
	subject = "Appointment confirmation"
	body = fmt.Sprintf(`<h2>Hello, %s!</h2>
<p>Your appointment has been booked.</p>
<p><strong>Date:</strong> %s</p>
<p><strong>Time:</strong> %s</p>
<p><strong>Doctor:</strong> %s</p>
<p><strong>Service:</strong> %s</p>
<p>Thank you for booking with us!</p>`,
		html.EscapeString(name), html.EscapeString(date), html.EscapeString(timeOfDay),
		html.EscapeString(doctorName), html.EscapeString(serviceName))
	return subject, body
}

// CancelledEmail renders the cancellation notice sent to the doctor.
func CancelledEmail(name, date, timeOfDay, patientName string) (subject, body string) {
	subject = "Appointment cancelled"
	body = fmt.Sprintf(`<h2>Hello, %s!</h2>
<p>An appointment was cancelled by the patient.</p>
<p><strong>Date:</strong> %s</p>
<p><strong>Time:</strong> %s</p>
<p><strong>Patient:</strong> %s</p>
<p>Thank you.</p>`,
		html.EscapeString(name), html.EscapeString(date), html.EscapeString(timeOfDay),
		html.EscapeString(patientName))
	return subject, body
}
