package handlers

import (
	"errors"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"

	"smartrfq/desk/internal/backend"
	"smartrfq/desk/internal/models"
	"smartrfq/desk/internal/notify"
	"smartrfq/desk/internal/services"
)

// notices returns the notices raised while serving c.
func notices(c *gin.Context) []models.Notice {
	return notify.CollectorFrom(c.Request.Context()).Notices()
}

// respond writes data with the request's notices.
func respond(c *gin.Context, status int, data interface{}) {
	c.JSON(status, gin.H{"data": data, "notices": notices(c)})
}

// respondError maps err to a status code and writes the error with the
// request's notices. data, when not nil, is the state left after the failure.
func respondError(c *gin.Context, err error, fallback string, data interface{}) {
	status := statusFor(err)
	msg := fallback
	if status < http.StatusInternalServerError || status == http.StatusBadGateway {
		msg = backend.Detail(err, err.Error())
	}
	if status >= http.StatusInternalServerError {
		_ = c.Error(err)
		log.Printf("Handler %s %s failed: %v", c.Request.Method, c.FullPath(), err)
	}
	body := gin.H{"error": msg, "notices": notices(c)}
	if data != nil {
		body["data"] = data
	}
	c.JSON(status, body)
}

// statusFor maps service and backend errors to HTTP status codes.
func statusFor(err error) int {
	var verr *services.ValidationError
	var apiErr *backend.APIError
	switch {
	case errors.As(err, &verr):
		return http.StatusBadRequest
	case errors.Is(err, services.ErrNoToken):
		return http.StatusUnauthorized
	case errors.Is(err, services.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, services.ErrProjectLocked):
		return http.StatusLocked
	case errors.Is(err, services.ErrProjectArchived),
		errors.Is(err, services.ErrNoProjectSelected),
		errors.Is(err, services.ErrNoSuppliers),
		errors.Is(err, services.ErrStaleResponse):
		return http.StatusConflict
	case errors.Is(err, services.ErrDeleteNotConfirmed),
		errors.Is(err, services.ErrNoItemsSelected),
		errors.Is(err, services.ErrNoPendingParse),
		errors.Is(err, services.ErrInvalidTab):
		return http.StatusBadRequest
	case errors.Is(err, services.ErrArchiveDisabled):
		return http.StatusNotImplemented
	case errors.As(err, &apiErr):
		if apiErr.Status >= 400 && apiErr.Status < 500 {
			return apiErr.Status
		}
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}
