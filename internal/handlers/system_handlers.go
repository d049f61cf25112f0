package handlers

import (
	"net/http"

	"github.com/rs/zerolog/log"

	"github.com/yasinhessnawi1/Forum_Backend/internal/constants"
	"github.com/yasinhessnawi1/Forum_Backend/internal/utils"
)

// SystemHandler serves the health and version endpoints
type SystemHandler struct {
	db          HealthChecker
	version     string
	environment string
}

// NewSystemHandler creates a new SystemHandler
func NewSystemHandler(db HealthChecker, version, environment string) *SystemHandler {
	return &SystemHandler{
		db:          db,
		version:     version,
		environment: environment,
	}
}

// Health reports whether the service and its database are up
func (h *SystemHandler) Health(w http.ResponseWriter, r *http.Request) {
	if err := h.db.HealthCheck(r.Context()); err != nil {
		log.Error().Err(err).Msg("Health check failed")
		utils.Error(w, http.StatusServiceUnavailable, constants.CodeServiceUnavailable, "Service is not healthy", nil)
		return
	}

	utils.JSON(w, constants.StatusOK, map[string]string{
		"status":  "healthy",
		"version": h.version,
	})
}

// Version reports the running version and environment
func (h *SystemHandler) Version(w http.ResponseWriter, r *http.Request) {
	utils.JSON(w, constants.StatusOK, map[string]string{
		"version":     h.version,
		"environment": h.environment,
	})
}
