package service

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"wedding-invitation/internal/apperr"
	"wedding-invitation/internal/metrics"
	"wedding-invitation/internal/models"
	"wedding-invitation/internal/notify"
	"wedding-invitation/internal/storage"
)

const (
	MsgRSVPCreated = "Terima kasih telah mengkonfirmasi kehadiran!"
	MsgRSVPUpdated = "Data RSVP berhasil diperbarui!"
	MsgRSVPDeleted = "RSVP berhasil dihapus!"
	MsgWishCreated = "Ucapan berhasil ditambahkan!"

	defaultNotifyTimeout = 20 * time.Second
)

type Params struct {
	Store         storage.Store
	Notifier      notify.Notifier
	Metrics       *metrics.Metrics
	Logger        zerolog.Logger
	NotifyTimeout time.Duration
	// Now defaults to time.Now.
	Now func() time.Time
}

// Service implements RSVP and wish operations on top of a Store.
type Service struct {
	store         storage.Store
	notifier      notify.Notifier
	metrics       *metrics.Metrics
	log           zerolog.Logger
	notifyTimeout time.Duration
	now           func() time.Time

	inflight sync.WaitGroup
}

func NewService(p Params) (*Service, error) {
	if p.Store == nil {
		return nil, errors.New("store is required")
	}
	if p.Notifier == nil {
		p.Notifier = notify.Noop{}
	}
	if p.NotifyTimeout <= 0 {
		p.NotifyTimeout = defaultNotifyTimeout
	}
	if p.Now == nil {
		p.Now = time.Now
	}
	return &Service{
		store:         p.Store,
		notifier:      p.Notifier,
		metrics:       p.Metrics,
		log:           p.Logger,
		notifyTimeout: p.NotifyTimeout,
		now:           p.Now,
	}, nil
}

// CreateRSVP validates and stores a new RSVP, then sends the confirmation in
// the background. It returns the stored record and the confirmation text.
func (s *Service) CreateRSVP(ctx context.Context, in RSVPInput) (*models.RSVP, string, error) {
	in.normalize()
	if err := validateRSVP(ctx, in); err != nil {
		return nil, "", err
	}

	rsvp := rsvpFromInput(in)
	// millisecond precision matches what the document store keeps
	rsvp.CreatedAt = s.now().UTC().Truncate(time.Millisecond)

	if err := s.store.InsertRSVP(ctx, &rsvp); err != nil {
		return nil, "", s.storeError(err, "insert rsvp")
	}

	s.log.Info().
		Str("rsvp_id", rsvp.ID).
		Str("attendance", string(rsvp.Attendance)).
		Int("guests", rsvp.Guests).
		Msg("rsvp created")

	s.dispatchNotification(ctx, rsvp)
	return &rsvp, MsgRSVPCreated, nil
}

// ListRSVPs returns RSVPs newest first, optionally only one attendance value.
func (s *Service) ListRSVPs(ctx context.Context, attendance string) ([]models.RSVP, error) {
	var filter models.Attendance
	if attendance != "" {
		a, err := models.ParseAttendance(attendance)
		if err != nil {
			return nil, apperr.Validation(MsgInvalidAttend).WithDetail("%v", err)
		}
		filter = a
	}

	rsvps, err := s.store.ListRSVPs(ctx, filter)
	if err != nil {
		return nil, s.storeError(err, "list rsvps")
	}
	return rsvps, nil
}

func (s *Service) GetRSVP(ctx context.Context, id string) (*models.RSVP, error) {
	rsvp, err := s.store.GetRSVP(ctx, id)
	if err != nil {
		return nil, s.storeError(err, "get rsvp")
	}
	return rsvp, nil
}

// UpdateRSVP replaces every mutable field of an existing RSVP.
func (s *Service) UpdateRSVP(ctx context.Context, id string, in RSVPInput) (*models.RSVP, error) {
	in.normalize()
	if err := validateRSVP(ctx, in); err != nil {
		return nil, err
	}

	rsvp := rsvpFromInput(in)
	rsvp.ID = id
	updated, err := s.store.ReplaceRSVP(ctx, &rsvp)
	if err != nil {
		return nil, s.storeError(err, "update rsvp")
	}

	s.log.Info().Str("rsvp_id", id).Msg("rsvp updated")
	return updated, nil
}

func (s *Service) DeleteRSVP(ctx context.Context, id string) (*models.RSVP, error) {
	deleted, err := s.store.DeleteRSVP(ctx, id)
	if err != nil {
		return nil, s.storeError(err, "delete rsvp")
	}

	s.log.Info().Str("rsvp_id", id).Msg("rsvp deleted")
	return deleted, nil
}

func (s *Service) Stats(ctx context.Context) (models.Stats, error) {
	stats, err := s.store.RSVPStats(ctx)
	if err != nil {
		return models.Stats{}, s.storeError(err, "rsvp stats")
	}
	return stats, nil
}

func (s *Service) CreateWish(ctx context.Context, in WishInput) (*models.Wish, error) {
	in.normalize()
	if err := validateWish(ctx, in); err != nil {
		return nil, err
	}

	wish := models.Wish{
		Name:      in.Name,
		Message:   in.Message,
		CreatedAt: s.now().UTC().Truncate(time.Millisecond),
	}
	if err := s.store.InsertWish(ctx, &wish); err != nil {
		return nil, s.storeError(err, "insert wish")
	}

	s.log.Info().Str("wish_id", wish.ID).Msg("wish created")
	return &wish, nil
}

func (s *Service) ListWishes(ctx context.Context) ([]models.Wish, error) {
	wishes, err := s.store.ListWishes(ctx)
	if err != nil {
		return nil, s.storeError(err, "list wishes")
	}
	return wishes, nil
}

// Ping checks that the store is reachable.
func (s *Service) Ping(ctx context.Context) error {
	return s.store.Ping(ctx)
}

// Close waits for background notifications to finish or ctx to expire.
func (s *Service) Close(ctx context.Context) error {
	done := make(chan struct{})
	go func() {
		s.inflight.Wait()
		close(done)
	}()

	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return fmt.Errorf("waiting for notifications: %w", ctx.Err())
	}
}

// dispatchNotification sends the confirmation without holding up the
// response. Failures are logged and counted only.
func (s *Service) dispatchNotification(ctx context.Context, rsvp models.RSVP) {
	if _, ok := s.notifier.(notify.Noop); ok {
		return
	}

	s.inflight.Add(1)
	go func() {
		defer s.inflight.Done()

		nctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), s.notifyTimeout)
		defer cancel()

		err := s.notifier.NotifyRSVP(nctx, rsvp)
		s.metrics.ObserveNotification(s.notifier.Name(), err)
		if err != nil {
			s.log.Warn().
				Err(err).
				Str("rsvp_id", rsvp.ID).
				Str("driver", s.notifier.Name()).
				Msg("rsvp notification failed")
			return
		}
		s.log.Info().
			Str("rsvp_id", rsvp.ID).
			Str("driver", s.notifier.Name()).
			Msg("rsvp notification sent")
	}()
}

func (s *Service) storeError(err error, op string) error {
	switch {
	case errors.Is(err, storage.ErrNotFound):
		return apperr.NotFound(MsgRSVPNotFound)
	case errors.Is(err, storage.ErrDuplicatePhone):
		return apperr.Conflict(MsgDuplicatePhone)
	}
	return apperr.Internal(err, op)
}

func rsvpFromInput(in RSVPInput) models.RSVP {
	return models.RSVP{
		Name:       in.Name,
		Phone:      in.Phone,
		Email:      in.Email,
		Attendance: in.Attendance,
		Guests:     int(in.Guests),
		Allergies:  in.Allergies,
		Message:    in.Message,
	}
}
