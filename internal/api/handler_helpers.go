package api

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"execedge/internal/engine"
	"execedge/internal/response"
	"execedge/internal/storage"
)

// statusFor maps domain errors onto HTTP status codes.
func statusFor(err error) int {
	var (
		ve engine.ValidationError
		nf engine.NotFoundError
		se engine.StoreError
	)
	switch {
	case errors.As(err, &ve):
		return http.StatusBadRequest
	case errors.Is(err, engine.ErrUnauthenticated):
		return http.StatusUnauthorized
	case errors.As(err, &nf):
		return http.StatusNotFound
	case errors.Is(err, storage.ErrConflict):
		return http.StatusConflict
	case errors.As(err, &se):
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

func HandleError(c *gin.Context, log *zap.Logger, err error, msg string) {
	status := statusFor(err)
	fields := []zap.Field{
		zap.String("request_id", c.GetString("request_id")),
		zap.Int("status", status),
		zap.Error(err),
	}
	if status >= 500 {
		log.Error(msg, fields...)
	} else {
		log.Debug(msg, fields...)
	}

	text := err.Error()
	if status == http.StatusInternalServerError {
		text = "internal error"
	}
	c.JSON(status, response.Fail(status, msg+": "+text))
}

func HandleSuccess(c *gin.Context, data any, meta map[string]any) {
	c.JSON(http.StatusOK, response.Success(data, meta))
}
