package whatsapp

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"unicode"

	_ "github.com/mattn/go-sqlite3"
	"github.com/rs/zerolog"
	"github.com/skip2/go-qrcode"
	"go.mau.fi/whatsmeow"
	"go.mau.fi/whatsmeow/proto/waE2E"
	"go.mau.fi/whatsmeow/store/sqlstore"
	"go.mau.fi/whatsmeow/types"
	"go.mau.fi/whatsmeow/types/events"
)

type Config struct {
	// DataDir holds whatsmeow.db with the linked device keys.
	DataDir string
	// CountryCode replaces the trunk prefix of local numbers, e.g. "62".
	CountryCode string
	// QROut receives the pairing QR code; defaults to stdout.
	QROut io.Writer
}

// Service is a WhatsApp client linked to the couple's phone as a companion
// device. Messages are sent from that account.
type Service struct {
	client *whatsmeow.Client
	cfg    Config
	log    zerolog.Logger
}

// NewService opens the device store and prepares a client. Call Connect
// before sending.
func NewService(ctx context.Context, cfg Config, log zerolog.Logger) (*Service, error) {
	if cfg.QROut == nil {
		cfg.QROut = os.Stdout
	}
	if err := os.MkdirAll(cfg.DataDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create data directory: %w", err)
	}

	dsn := fmt.Sprintf("file:%s?_foreign_keys=on", filepath.Join(cfg.DataDir, "whatsmeow.db"))
	container, err := sqlstore.New(ctx, "sqlite3", dsn, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create database: %w", err)
	}

	deviceStore, err := container.GetFirstDevice(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to get device: %w", err)
	}

	s := &Service{
		client: whatsmeow.NewClient(deviceStore, nil),
		cfg:    cfg,
		log:    log,
	}
	s.client.AddEventHandler(s.eventHandler)

	return s, nil
}

// NormalizePhoneNumber strips formatting and converts a local number with a
// trunk zero to international form: 0812-3456-7890 -> 6281234567890.
func NormalizePhoneNumber(phoneNumber, countryCode string) string {
	phoneNumber = strings.Map(func(r rune) rune {
		if unicode.IsDigit(r) {
			return r
		}
		return -1
	}, phoneNumber)

	if countryCode == "" {
		return phoneNumber
	}

	// 0812... -> 62812...
	if strings.HasPrefix(phoneNumber, "0") {
		return countryCode + strings.TrimLeft(phoneNumber, "0")
	}

	// 620812... -> 62812...
	if strings.HasPrefix(phoneNumber, countryCode+"0") {
		return countryCode + phoneNumber[len(countryCode)+1:]
	}

	return phoneNumber
}

// Connect connects to WhatsApp, printing a pairing QR code when no device is
// linked yet. It returns once pairing finished or the stored session resumed.
func (s *Service) Connect(ctx context.Context) error {
	if s.client.Store.ID != nil {
		if err := s.client.Connect(); err != nil {
			return fmt.Errorf("failed to connect: %w", err)
		}
		return nil
	}

	qrChan, err := s.client.GetQRChannel(ctx)
	if err != nil {
		return fmt.Errorf("failed to get QR channel: %w", err)
	}
	if err := s.client.Connect(); err != nil {
		return fmt.Errorf("failed to connect: %w", err)
	}

	for evt := range qrChan {
		switch evt.Event {
		case "code":
			s.printQR(evt.Code)
		case "success":
			s.log.Info().Msg("device linked")
		default:
			s.log.Warn().Str("event", evt.Event).Msg("pairing event")
		}
	}

	if s.client.Store.ID == nil {
		return fmt.Errorf("pairing did not complete")
	}
	return nil
}

func (s *Service) printQR(code string) {
	q, err := qrcode.New(code, qrcode.Medium)
	if err != nil {
		s.log.Warn().Err(err).Msg("failed to render QR code")
		fmt.Fprintf(s.cfg.QROut, "QR Code: %s\n", code)
		return
	}
	fmt.Fprintln(s.cfg.QROut, "\n"+q.ToSmallString(false))
	fmt.Fprintln(s.cfg.QROut, "Scan with WhatsApp: Settings > Linked Devices > Link a Device")
}

// Disconnect disconnects from WhatsApp
func (s *Service) Disconnect() {
	s.client.Disconnect()
}

// SendText sends a plain text message to phoneNumber after checking that the
// number is registered on WhatsApp.
func (s *Service) SendText(ctx context.Context, phoneNumber, message string) error {
	if !s.client.IsConnected() {
		return fmt.Errorf("whatsapp client is not connected")
	}

	phoneNumber = NormalizePhoneNumber(phoneNumber, s.cfg.CountryCode)

	resp, err := s.client.IsOnWhatsApp(ctx, []string{"+" + phoneNumber})
	if err != nil {
		return fmt.Errorf("failed to verify number on WhatsApp: %w", err)
	}
	if len(resp) == 0 || !resp[0].IsIn {
		return fmt.Errorf("number %s is not registered on WhatsApp", phoneNumber)
	}

	// Use the verified JID from WhatsApp
	jid := resp[0].JID
	if jid.IsEmpty() {
		jid = types.NewJID(phoneNumber, types.DefaultUserServer)
	}

	sent, err := s.client.SendMessage(ctx, jid, &waE2E.Message{
		Conversation: &message,
	})
	if err != nil {
		return fmt.Errorf("failed to send message to %s: %w", jid.String(), err)
	}

	s.log.Info().
		Str("jid", jid.String()).
		Str("message_id", sent.ID).
		Msg("message sent")
	return nil
}

func (s *Service) eventHandler(evt interface{}) {
	switch evt := evt.(type) {
	case *events.Connected:
		s.log.Info().Msg("Connected to WhatsApp")
	case *events.Disconnected:
		s.log.Warn().Msg("Disconnected from WhatsApp")
	case *events.LoggedOut:
		s.log.Error().Str("reason", evt.Reason.String()).Msg("Logged out from WhatsApp")
	}
}
