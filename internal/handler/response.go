package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"wedding-invitation/internal/apperr"
)

// mutationResponse wraps the result of create, update and delete calls.
type mutationResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
	Data    any    `json:"data"`
}

type errorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message,omitempty"`
}

func writeMutation(c *gin.Context, status int, message string, data any) {
	c.JSON(status, mutationResponse{
		Success: true,
		Message: message,
		Data:    data,
	})
}

// writeError renders err with the status of its code. Untyped errors become
// internal errors. The developer detail is only sent outside production.
func writeError(c *gin.Context, isProd bool, err error) {
	if err == nil {
		err = errors.New("unknown error")
	}

	typed := apperr.As(err)
	if typed == nil {
		typed = apperr.Internal(err, "unexpected error")
	}
	meta := apperr.MetadataFor(typed.Code())

	body := errorResponse{Error: meta.PublicMessage}
	if meta.ShowMessage && typed.Message() != "" {
		body.Error = typed.Message()
	}
	if !isProd {
		body.Message = typed.Detail()
	}

	log := zerolog.Ctx(c.Request.Context())
	event := log.Warn()
	if meta.HTTPStatus >= http.StatusInternalServerError {
		event = log.Error()
	}
	event.Err(err).
		Str("error_code", string(typed.Code())).
		Int("status", meta.HTTPStatus).
		Msg("request error")

	c.AbortWithStatusJSON(meta.HTTPStatus, body)
}
