package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"wedding-invitation/internal/service"
)

func (h *Handler) ListWishes(c *gin.Context) {
	wishes, err := h.svc.ListWishes(c.Request.Context())
	if err != nil {
		writeError(c, h.isProd, err)
		return
	}
	c.JSON(http.StatusOK, wishes)
}

func (h *Handler) CreateWish(c *gin.Context) {
	var in service.WishInput
	if !h.bindJSON(c, &in) {
		return
	}

	wish, err := h.svc.CreateWish(c.Request.Context(), in)
	if err != nil {
		writeError(c, h.isProd, err)
		return
	}
	writeMutation(c, http.StatusCreated, service.MsgWishCreated, wish)
}
