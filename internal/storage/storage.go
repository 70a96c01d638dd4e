package storage

import (
	"context"
	"errors"

	"wedding-invitation/internal/models"
)

var (
	ErrNotFound       = errors.New("record not found")
	ErrDuplicatePhone = errors.New("phone already registered")
)

// RSVPStore persists RSVP records. Implementations must enforce phone
// uniqueness atomically on insert and replace, reporting ErrDuplicatePhone.
type RSVPStore interface {
	// InsertRSVP assigns rsvp.ID and stores the record.
	InsertRSVP(ctx context.Context, rsvp *models.RSVP) error
	// ListRSVPs returns records newest first. An empty attendance lists all.
	ListRSVPs(ctx context.Context, attendance models.Attendance) ([]models.RSVP, error)
	GetRSVP(ctx context.Context, id string) (*models.RSVP, error)
	// ReplaceRSVP overwrites the mutable fields of the record with rsvp.ID,
	// keeping its CreatedAt, and returns the stored result.
	ReplaceRSVP(ctx context.Context, rsvp *models.RSVP) (*models.RSVP, error)
	DeleteRSVP(ctx context.Context, id string) (*models.RSVP, error)
	RSVPStats(ctx context.Context) (models.Stats, error)
}

// WishStore persists guest wishes.
type WishStore interface {
	InsertWish(ctx context.Context, wish *models.Wish) error
	ListWishes(ctx context.Context) ([]models.Wish, error)
}

type Store interface {
	RSVPStore
	WishStore
	Ping(ctx context.Context) error
	Close(ctx context.Context) error
}
