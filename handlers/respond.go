package handlers

import (
	"errors"
	"net/http"

	"github.com/SaranyaKannan28/summer-internship/services"
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
)

var statusByKind = map[error]int{
	services.ErrValidation:     http.StatusBadRequest,
	services.ErrAuthentication: http.StatusUnauthorized,
	services.ErrAuthorization:  http.StatusUnauthorized,
	services.ErrConflict:       http.StatusConflict,
	services.ErrNotFound:       http.StatusNotFound,
	services.ErrInternal:       http.StatusInternalServerError,
}

// respondError writes err as {"error": message} with the status of its kind.
// Internal failures are logged with their cause and answered generically.
func respondError(c *gin.Context, log zerolog.Logger, err error) {
	kind := services.KindOf(err)
	status := statusByKind[kind]

	if errors.Is(kind, services.ErrInternal) {
		log.Error().Err(err).Str("path", c.Request.URL.Path).Msg("request failed")
	}
	c.AbortWithStatusJSON(status, gin.H{"error": services.Message(err)})
}
