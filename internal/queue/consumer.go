package queue

import (
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"

	"github.com/ArmaniKE/clinic-back/internal/mailer"
)

// StartEmailConsumer connects to RabbitMQ, declares the notify.email queue
// (durable), and starts consuming jobs. Each job is rendered with the
// template matching its event and handed to the Sender. The function runs
// a reconnect loop with exponential backoff and keeps running across
// broker outages; processing errors are logged and the offending message
// is rejected without requeue so a poison job cannot loop forever. A nil
// sender means no SMTP server is configured: jobs are then logged and
// acknowledged, which keeps the queue drained in development.
func StartEmailConsumer(m mailer.Sender) error {
	backoff := time.Second
	for {
		conn, err := amqp.Dial(brokerURL())
		if err != nil {
			log.Printf("email-consumer: failed to dial broker: %v; retrying in %s", err, backoff)
			time.Sleep(backoff)
			if backoff < 30*time.Second {
				backoff *= 2
			}
			continue
		}
		backoff = time.Second // reset after successful connect

		if err := consumeLoop(conn, m); err != nil {
			log.Printf("email-consumer: consume loop ended: %v; reconnecting", err)
			time.Sleep(2 * time.Second)
			continue
		}
	}
}

func consumeLoop(conn *amqp.Connection, m mailer.Sender) error {
	ch, err := conn.Channel()
	if err != nil {
		return fmt.Errorf("channel open: %w", err)
	}
	defer func() { _ = ch.Close() }()

	if err := ch.Qos(50, 0, false); err != nil {
		log.Printf("email-consumer: set QoS failed: %v", err)
	}

	_, err = ch.QueueDeclare(emailQueueName, true, false, false, false, nil)
	if err != nil {
		return fmt.Errorf("queue declare: %w", err)
	}

	msgs, err := ch.Consume(emailQueueName, "", false, false, false, false, nil)
	if err != nil {
		return fmt.Errorf("queue consume: %w", err)
	}

	for d := range msgs {
		if err := handleJob(d.Body, m); err != nil {
			log.Printf("email-consumer: handle job failed: %v", err)
			_ = d.Nack(false, false) // reject, do not requeue to avoid tight loops
			continue
		}
		_ = d.Ack(false)
	}
	return errors.New("deliveries channel closed")
}

// handleJob decodes one EmailJob and sends the matching email.
func handleJob(body []byte, m mailer.Sender) error {
	var job EmailJob
	if err := json.Unmarshal(body, &job); err != nil {
		return fmt.Errorf("unmarshal: %w", err)
	}

	var subject, html string
	switch job.Event {
	case EventAppointmentCreated:
		subject, html = mailer.CreatedEmail(job.Name, job.Date, job.Time, job.DoctorName, job.ServiceName)
	case EventAppointmentCancelled:
		subject, html = mailer.CancelledEmail(job.Name, job.Date, job.Time, job.PatientName)
	default:
		return fmt.Errorf("unknown event %q", job.Event)
	}

	if m == nil {
		log.Printf("email-consumer: mail disabled, skipping %s to %s", job.Event, job.To)
		return nil
	}
	if err := m.Send(job.To, subject, html); err != nil {
		return fmt.Errorf("send to %s: %w", job.To, err)
	}
	log.Printf("email-consumer: sent %s to %s", job.Event, job.To)
	return nil
}
