package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"wedding-invitation/internal/service"
)

func (h *Handler) Stats(c *gin.Context) {
	stats, err := h.svc.Stats(c.Request.Context())
	if err != nil {
		writeError(c, h.isProd, err)
		return
	}
	c.JSON(http.StatusOK, stats)
}

// ListRSVPs returns every RSVP, newest first. ?attendance= narrows the list.
func (h *Handler) ListRSVPs(c *gin.Context) {
	rsvps, err := h.svc.ListRSVPs(c.Request.Context(), c.Query("attendance"))
	if err != nil {
		writeError(c, h.isProd, err)
		return
	}
	c.JSON(http.StatusOK, rsvps)
}

func (h *Handler) GetRSVP(c *gin.Context) {
	rsvp, err := h.svc.GetRSVP(c.Request.Context(), c.Param("id"))
	if err != nil {
		writeError(c, h.isProd, err)
		return
	}
	c.JSON(http.StatusOK, rsvp)
}

func (h *Handler) CreateRSVP(c *gin.Context) {
	var in service.RSVPInput
	if !h.bindJSON(c, &in) {
		return
	}

	rsvp, msg, err := h.svc.CreateRSVP(c.Request.Context(), in)
	if err != nil {
		writeError(c, h.isProd, err)
		return
	}
	writeMutation(c, http.StatusCreated, msg, rsvp)
}

func (h *Handler) UpdateRSVP(c *gin.Context) {
	var in service.RSVPInput
	if !h.bindJSON(c, &in) {
		return
	}

	rsvp, err := h.svc.UpdateRSVP(c.Request.Context(), c.Param("id"), in)
	if err != nil {
		writeError(c, h.isProd, err)
		return
	}
	writeMutation(c, http.StatusOK, service.MsgRSVPUpdated, rsvp)
}

func (h *Handler) DeleteRSVP(c *gin.Context) {
	rsvp, err := h.svc.DeleteRSVP(c.Request.Context(), c.Param("id"))
	if err != nil {
		writeError(c, h.isProd, err)
		return
	}
	writeMutation(c, http.StatusOK, service.MsgRSVPDeleted, rsvp)
}
