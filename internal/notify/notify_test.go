package notify

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"wedding-invitation/internal/models"
)

type sentText struct {
	phone, text string
}

type fakeSender struct {
	mu   sync.Mutex
	sent []sentText
	err  error
}

func (f *fakeSender) SendText(_ context.Context, phone, text string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return f.err
	}
	f.sent = append(f.sent, sentText{phone: phone, text: text})
	return nil
}

type fakePublisher struct {
	messages [][]byte
	err      error
}

func (f *fakePublisher) Publish(_ context.Context, message []byte) error {
	if f.err != nil {
		return f.err
	}
	f.messages = append(f.messages, message)
	return nil
}

var sari = models.RSVP{
	ID:         "abc123",
	Name:       "Sari",
	Phone:      "6281234567890",
	Attendance: models.AttendanceAttending,
	Guests:     2,
}

func TestTemplateRSVPConfirmation(t *testing.T) {
	text := Template{}.RSVPConfirmation(sari)
	assert.Contains(t, text, "Terima kasih Sari!")
	assert.Contains(t, text, "Status: Hadir")
	assert.Contains(t, text, "Jumlah Tamu: 2")
	assert.NotContains(t, text, "&")

	signed := Template{BrideName: "Anisa", GroomName: "Rizky"}.RSVPConfirmation(sari)
	assert.Contains(t, signed, "Anisa & Rizky")
	assert.NotContains(t, signed, "📅")
}

func TestTemplateEventDetails(t *testing.T) {
	tmpl := Template{Date: "Sabtu, 12 September 2026", Location: "Gedung Sate, Bandung"}

	text := tmpl.RSVPConfirmation(sari)
	assert.Contains(t, text, "📅 Sabtu, 12 September 2026\n📍 Gedung Sate, Bandung")

	maybe := sari
	maybe.Attendance = models.AttendanceMaybe
	assert.Contains(t, tmpl.RSVPConfirmation(maybe), "📍 Gedung Sate, Bandung")

	onlyDate := Template{Date: "Sabtu, 12 September 2026"}.RSVPConfirmation(sari)
	assert.Contains(t, onlyDate, "📅 Sabtu, 12 September 2026")
	assert.NotContains(t, onlyDate, "📍")

	declined := sari
	declined.Attendance = models.AttendanceNotAttending
	assert.NotContains(t, tmpl.RSVPConfirmation(declined), "Gedung Sate")
}

func TestWhatsAppNotifier(t *testing.T) {
	sender := &fakeSender{}
	n := NewWhatsApp(sender, Template{})

	require.NoError(t, n.NotifyRSVP(context.Background(), sari))
	require.Len(t, sender.sent, 1)
	assert.Equal(t, "6281234567890", sender.sent[0].phone)
	assert.Equal(t, "whatsapp", n.Name())

	sender.err = errors.New("not on whatsapp")
	require.Error(t, n.NotifyRSVP(context.Background(), sari))
}

func TestQueueNotifierPublishesJob(t *testing.T) {
	pub := &fakePublisher{}
	n := NewQueue(pub, Template{GroomName: "Rizky"})

	require.NoError(t, n.NotifyRSVP(context.Background(), sari))
	require.Len(t, pub.messages, 1)

	var job Job
	require.NoError(t, json.Unmarshal(pub.messages[0], &job))
	assert.Equal(t, "abc123", job.RSVPID)
	assert.Equal(t, "6281234567890", job.Phone)
	assert.Equal(t, "Hadir", job.Attendance)
	assert.Contains(t, job.Text, "Rizky")

	pub.err = errors.New("channel closed")
	require.Error(t, n.NotifyRSVP(context.Background(), sari))
}

func TestWorkerHandle(t *testing.T) {
	sender := &fakeSender{}
	w := NewWorker(sender, time.Second, zerolog.Nop())
	ctx := context.Background()

	body, err := json.Marshal(Job{RSVPID: "abc123", Phone: "6281234567890", Text: "halo"})
	require.NoError(t, err)
	require.NoError(t, w.Handle(ctx, body))
	require.Len(t, sender.sent, 1)
	assert.Equal(t, "halo", sender.sent[0].text)

	// malformed and incomplete jobs are acknowledged, not retried
	require.NoError(t, w.Handle(ctx, []byte("{oops")))
	require.NoError(t, w.Handle(ctx, []byte(`{"phone":""}`)))
	assert.Len(t, sender.sent, 1)

	sender.err = errors.New("disconnected")
	require.Error(t, w.Handle(ctx, body))
}

func TestNoop(t *testing.T) {
	var n Notifier = Noop{}
	require.NoError(t, n.NotifyRSVP(context.Background(), sari))
	assert.Equal(t, "none", n.Name())
}
