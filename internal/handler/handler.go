package handler

import (
	"context"

	"github.com/gin-gonic/gin"

	"wedding-invitation/internal/apperr"
	"wedding-invitation/internal/models"
	"wedding-invitation/internal/service"
)

// Service is what the HTTP layer needs from the business layer.
type Service interface {
	CreateRSVP(ctx context.Context, in service.RSVPInput) (*models.RSVP, string, error)
	ListRSVPs(ctx context.Context, attendance string) ([]models.RSVP, error)
	GetRSVP(ctx context.Context, id string) (*models.RSVP, error)
	UpdateRSVP(ctx context.Context, id string, in service.RSVPInput) (*models.RSVP, error)
	DeleteRSVP(ctx context.Context, id string) (*models.RSVP, error)
	Stats(ctx context.Context) (models.Stats, error)
	CreateWish(ctx context.Context, in service.WishInput) (*models.Wish, error)
	ListWishes(ctx context.Context) ([]models.Wish, error)
	Ping(ctx context.Context) error
}

var _ Service = (*service.Service)(nil)

type Handler struct {
	svc    Service
	isProd bool
}

func NewHandler(svc Service, isProd bool) *Handler {
	return &Handler{svc: svc, isProd: isProd}
}

// bindJSON decodes the request body into dst, reporting malformed input as a
// validation error.
func (h *Handler) bindJSON(c *gin.Context, dst any) bool {
	if err := c.ShouldBindJSON(dst); err != nil {
		writeError(c, h.isProd, apperr.Validation(service.MsgInvalidJSON).WithDetail("%v", err))
		return false
	}
	return true
}
