// README: Shared handler helpers (JSON responses, error mapping).
package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/SabaShahdin/ms/internal/modules/ride"
	"github.com/SabaShahdin/ms/internal/modules/route"
	"github.com/SabaShahdin/ms/internal/modules/support"
	"github.com/SabaShahdin/ms/internal/modules/vehicle"
)

type errorResponse struct {
	Error string `json:"error"`
}

func writeJSON(c *gin.Context, status int, v any) {
	c.JSON(status, v)
}

func writeError(c *gin.Context, status int, msg string) {
	writeJSON(c, status, errorResponse{Error: msg})
}

// writeServiceError maps module sentinels onto HTTP statuses. Every module
// shares the same four-way taxonomy so one mapper covers them all.
func writeServiceError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, vehicle.ErrBadRequest),
		errors.Is(err, ride.ErrBadRequest),
		errors.Is(err, route.ErrBadRequest),
		errors.Is(err, support.ErrBadRequest):
		writeError(c, http.StatusBadRequest, err.Error())
	case errors.Is(err, vehicle.ErrNotFound),
		errors.Is(err, ride.ErrNotFound),
		errors.Is(err, route.ErrNotFound),
		errors.Is(err, support.ErrNotFound):
		writeError(c, http.StatusNotFound, err.Error())
	case errors.Is(err, ride.ErrConflict),
		errors.Is(err, vehicle.ErrConflict),
		errors.Is(err, support.ErrConflict):
		writeError(c, http.StatusConflict, err.Error())
	case errors.Is(err, vehicle.ErrUnavailable),
		errors.Is(err, ride.ErrUnavailable),
		errors.Is(err, route.ErrUnavailable),
		errors.Is(err, support.ErrUnavailable):
		writeError(c, http.StatusBadGateway, err.Error())
	case errors.Is(err, support.ErrBadToken):
		writeError(c, http.StatusForbidden, err.Error())
	case errors.Is(err, support.ErrPaymentFailed):
		writeError(c, http.StatusBadGateway, err.Error())
	default:
		writeError(c, http.StatusInternalServerError, "internal error")
	}
}
