// Package httpx is the response boundary: the success envelope plus the
// mapping from the domain failure taxonomy to HTTP statuses. Internal
// error details stop here and never reach the client.
package httpx

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/streamgrid/streamgrid/internal/domain"
)

type Envelope struct {
	Success bool   `json:"success"`
	Data    any    `json:"data,omitempty"`
	Message string `json:"message,omitempty"`
}

func OK(c *gin.Context, status int, data any, message string) {
	c.JSON(status, Envelope{Success: true, Data: data, Message: message})
}

func Fail(c *gin.Context, err error) {
	status, msg := Status(err)
	c.AbortWithStatusJSON(status, Envelope{Success: false, Message: msg})
}

// Status translates a usecase error into a transport status and a safe
// message. Unknown errors collapse to 500 with a generic message.
func Status(err error) (int, string) {
	switch {
	case errors.Is(err, domain.ErrValidation):
		return http.StatusBadRequest, err.Error()
	case errors.Is(err, domain.ErrNotFound):
		return http.StatusNotFound, domain.ErrNotFound.Error()
	case errors.Is(err, domain.ErrUnauthorized):
		return http.StatusUnauthorized, domain.ErrUnauthorized.Error()
	case errors.Is(err, domain.ErrUnauthenticated):
		return http.StatusUnauthorized, domain.ErrUnauthenticated.Error()
	case errors.Is(err, domain.ErrConflict):
		return http.StatusConflict, domain.ErrConflict.Error()
	default:
		return http.StatusInternalServerError, "internal error"
	}
}
