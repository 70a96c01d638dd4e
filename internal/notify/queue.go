package notify

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"wedding-invitation/internal/models"
)

// Job is the queued form of one confirmation message.
type Job struct {
	RSVPID     string    `json:"rsvp_id"`
	Phone      string    `json:"phone"`
	Name       string    `json:"name"`
	Attendance string    `json:"attendance"`
	Guests     int       `json:"guests"`
	Text       string    `json:"text"`
	QueuedAt   time.Time `json:"queued_at"`
}

// Publisher is satisfied by rabbit.Client.
type Publisher interface {
	Publish(ctx context.Context, message []byte) error
}

// Queue hands confirmations to a broker; a Worker delivers them later.
type Queue struct {
	pub      Publisher
	template Template
}

func NewQueue(pub Publisher, tmpl Template) *Queue {
	return &Queue{pub: pub, template: tmpl}
}

func (q *Queue) NotifyRSVP(ctx context.Context, rsvp models.RSVP) error {
	payload, err := json.Marshal(Job{
		RSVPID:     rsvp.ID,
		Phone:      rsvp.Phone,
		Name:       rsvp.Name,
		Attendance: string(rsvp.Attendance),
		Guests:     rsvp.Guests,
		Text:       q.template.RSVPConfirmation(rsvp),
		QueuedAt:   time.Now().UTC(),
	})
	if err != nil {
		return fmt.Errorf("marshal notification job: %w", err)
	}
	if err := q.pub.Publish(ctx, payload); err != nil {
		return fmt.Errorf("queue notification for %s: %w", rsvp.Phone, err)
	}
	return nil
}

func (q *Queue) Name() string { return "amqp" }

// Worker turns queued jobs into WhatsApp messages.
type Worker struct {
	sender  TextSender
	log     zerolog.Logger
	timeout time.Duration
}

func NewWorker(sender TextSender, timeout time.Duration, log zerolog.Logger) *Worker {
	return &Worker{sender: sender, log: log, timeout: timeout}
}

// Handle processes one delivery body. Malformed jobs are logged and dropped;
// send failures are returned so the broker redelivers.
func (w *Worker) Handle(ctx context.Context, body []byte) error {
	var job Job
	if err := json.Unmarshal(body, &job); err != nil {
		w.log.Error().Err(err).Str("body", string(body)).Msg("dropping malformed notification job")
		return nil
	}
	if job.Phone == "" || job.Text == "" {
		w.log.Error().Str("rsvp_id", job.RSVPID).Msg("dropping incomplete notification job")
		return nil
	}

	if w.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, w.timeout)
		defer cancel()
	}

	if err := w.sender.SendText(ctx, job.Phone, job.Text); err != nil {
		return fmt.Errorf("deliver notification for rsvp %s: %w", job.RSVPID, err)
	}

	w.log.Info().
		Str("rsvp_id", job.RSVPID).
		Str("phone", job.Phone).
		Msg("notification delivered")
	return nil
}
