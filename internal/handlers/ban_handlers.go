package handlers

import (
	"errors"
	"net/http"

	"github.com/yasinhessnawi1/Forum_Backend/internal/constants"
	"github.com/yasinhessnawi1/Forum_Backend/internal/models"
	"github.com/yasinhessnawi1/Forum_Backend/internal/utils"
)

// BanHandler handles ban management routes. All routes are staff only.
type BanHandler struct {
	banService BanServiceInterface
}

// NewBanHandler creates a new BanHandler
func NewBanHandler(banService BanServiceInterface) *BanHandler {
	return &BanHandler{
		banService: banService,
	}
}

// ListBans returns a page of bans, newest first
func (h *BanHandler) ListBans(w http.ResponseWriter, r *http.Request) {
	params := utils.GetPaginationParams(r)

	bans, total, err := h.banService.ListBans(r.Context(), params)
	if err != nil {
		utils.ErrorFromAppError(w, utils.ParseError(err))
		return
	}

	utils.Paginated(w, constants.StatusOK, bans, params.Page, params.PageSize, total)
}

// CreateBan adds a ban
func (h *BanHandler) CreateBan(w http.ResponseWriter, r *http.Request) {
	var req models.BanCreate
	if err := utils.DecodeAndValidate(r, &req); err != nil {
		utils.ErrorFromAppError(w, utils.ParseError(err))
		return
	}

	ban, err := h.banService.CreateBan(r.Context(), &req)
	if err != nil {
		utils.ErrorFromAppError(w, utils.ParseError(err))
		return
	}

	utils.JSON(w, constants.StatusCreated, ban)
}

// GetBan returns a single ban
func (h *BanHandler) GetBan(w http.ResponseWriter, r *http.Request) {
	id, err := parseIDParam(r, constants.ParamBanID)
	if err != nil {
		utils.ErrorFromAppError(w, utils.ParseError(err))
		return
	}

	ban, err := h.banService.GetBan(r.Context(), id)
	if err != nil {
		utils.ErrorFromAppError(w, utils.ParseError(err))
		return
	}

	utils.JSON(w, constants.StatusOK, ban)
}

// DeleteBan removes a ban
func (h *BanHandler) DeleteBan(w http.ResponseWriter, r *http.Request) {
	id, err := parseIDParam(r, constants.ParamBanID)
	if err != nil {
		utils.ErrorFromAppError(w, utils.ParseError(err))
		return
	}

	if err := h.banService.DeleteBan(r.Context(), id); err != nil {
		utils.ErrorFromAppError(w, utils.ParseError(err))
		return
	}

	utils.JSON(w, constants.StatusOK, map[string]string{
		"message": constants.MsgBanDeleted,
	})
}

// CheckBan returns the ban that the given username, email or IP would hit
func (h *BanHandler) CheckBan(w http.ResponseWriter, r *http.Request) {
	var query models.BanQuery
	if err := utils.DecodeAndValidate(r, &query); err != nil {
		utils.ErrorFromAppError(w, utils.ParseError(err))
		return
	}

	ban, err := h.banService.FindBan(r.Context(), query)
	if errors.Is(err, models.ErrBanNotFound) {
		utils.NotFound(w, constants.MsgNotBanned)
		return
	}
	if err != nil {
		utils.ErrorFromAppError(w, utils.ParseError(err))
		return
	}

	utils.JSON(w, constants.StatusOK, ban)
}
