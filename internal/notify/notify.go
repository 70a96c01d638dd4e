package notify

import (
	"context"
	"fmt"
	"strings"

	"wedding-invitation/internal/models"
)

// Notifier tells a guest that their RSVP arrived. Implementations are picked
// once at startup; callers treat every error as non-fatal.
type Notifier interface {
	NotifyRSVP(ctx context.Context, rsvp models.RSVP) error
	// Name identifies the driver in logs and metrics.
	Name() string
}

// TextSender delivers a plain text message to a phone number.
type TextSender interface {
	SendText(ctx context.Context, phone, text string) error
}

// Noop is used when no messaging provider is configured.
type Noop struct{}

func (Noop) NotifyRSVP(context.Context, models.RSVP) error { return nil }

func (Noop) Name() string { return "none" }

// Template renders the confirmation text sent after an RSVP.
type Template struct {
	BrideName string
	GroomName string
	// Date and Location describe the event; either may be empty.
	Date     string
	Location string
}

func (t Template) RSVPConfirmation(r models.RSVP) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Terima kasih %s! 💕\n\n", r.Name)
	b.WriteString("Kami sudah menerima konfirmasi kehadiran Anda:\n")
	fmt.Fprintf(&b, "Status: %s\n", r.Attendance)
	fmt.Fprintf(&b, "Jumlah Tamu: %d\n\n", r.Guests)
	if r.Attendance != models.AttendanceNotAttending {
		if event := t.event(); event != "" {
			b.WriteString(event)
			b.WriteString("\n\n")
		}
	}
	b.WriteString("Tunggu informasi lebih lanjut di chat ini.")

	if sig := t.signature(); sig != "" {
		b.WriteString("\n\n")
		b.WriteString(sig)
	}
	return b.String()
}

func (t Template) event() string {
	switch {
	case t.Date != "" && t.Location != "":
		return fmt.Sprintf("📅 %s\n📍 %s", t.Date, t.Location)
	case t.Date != "":
		return "📅 " + t.Date
	case t.Location != "":
		return "📍 " + t.Location
	}
	return ""
}

func (t Template) signature() string {
	switch {
	case t.BrideName != "" && t.GroomName != "":
		return t.BrideName + " & " + t.GroomName
	case t.BrideName != "":
		return t.BrideName
	default:
		return t.GroomName
	}
}

// WhatsApp sends the confirmation directly through a linked WhatsApp device.
type WhatsApp struct {
	sender   TextSender
	template Template
}

func NewWhatsApp(sender TextSender, tmpl Template) *WhatsApp {
	return &WhatsApp{sender: sender, template: tmpl}
}

func (w *WhatsApp) NotifyRSVP(ctx context.Context, rsvp models.RSVP) error {
	if err := w.sender.SendText(ctx, rsvp.Phone, w.template.RSVPConfirmation(rsvp)); err != nil {
		return fmt.Errorf("whatsapp notification to %s: %w", rsvp.Phone, err)
	}
	return nil
}

func (w *WhatsApp) Name() string { return "whatsapp" }
