package handlers

import (
	"net/http"

	"github.com/yasinhessnawi1/Forum_Backend/internal/constants"
	"github.com/yasinhessnawi1/Forum_Backend/internal/utils"
)

// MaintenanceHandler exposes the retention jobs to staff
type MaintenanceHandler struct {
	retentionService RetentionServiceInterface
	banService       BanServiceInterface
}

// NewMaintenanceHandler creates a new MaintenanceHandler
func NewMaintenanceHandler(retentionService RetentionServiceInterface, banService BanServiceInterface) *MaintenanceHandler {
	return &MaintenanceHandler{
		retentionService: retentionService,
		banService:       banService,
	}
}

// RemoveOldIPs runs the IP retention sweep now
func (h *MaintenanceHandler) RemoveOldIPs(w http.ResponseWriter, r *http.Request) {
	if err := h.retentionService.RemoveOldIPs(r.Context()); err != nil {
		utils.ErrorFromAppError(w, utils.ParseError(err))
		return
	}

	utils.JSON(w, constants.StatusOK, map[string]string{
		"message": constants.MsgOldIPsRemoved,
	})
}

// DeleteExpiredBans removes bans past their expiration date
func (h *MaintenanceHandler) DeleteExpiredBans(w http.ResponseWriter, r *http.Request) {
	deleted, err := h.banService.DeleteExpiredBans(r.Context())
	if err != nil {
		utils.ErrorFromAppError(w, utils.ParseError(err))
		return
	}

	utils.JSON(w, constants.StatusOK, map[string]int64{
		"deleted": deleted,
	})
}
