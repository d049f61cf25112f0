package handlers

import (
	"net/http"

	"github.com/rs/zerolog/log"

	"github.com/yasinhessnawi1/Forum_Backend/internal/auth"
	"github.com/yasinhessnawi1/Forum_Backend/internal/constants"
	"github.com/yasinhessnawi1/Forum_Backend/internal/models"
	"github.com/yasinhessnawi1/Forum_Backend/internal/utils"
)

// UserHandler handles user-related routes
type UserHandler struct {
	userService    UserServiceInterface
	archiveService ArchiveServiceInterface
}

// NewUserHandler creates a new UserHandler
func NewUserHandler(userService UserServiceInterface, archiveService ArchiveServiceInterface) *UserHandler {
	return &UserHandler{
		userService:    userService,
		archiveService: archiveService,
	}
}

// GetCurrentUser returns the current user's profile
func (h *UserHandler) GetCurrentUser(w http.ResponseWriter, r *http.Request) {
	userID, ok := auth.GetUserID(r)
	if !ok {
		utils.Unauthorized(w, constants.MsgAuthRequired)
		return
	}

	user, err := h.userService.GetUserByID(r.Context(), userID)
	if err != nil {
		utils.ErrorFromAppError(w, utils.ParseError(err))
		return
	}

	utils.JSON(w, constants.StatusOK, user.Profile())
}

// ChangeOwnUsername renames the current user
func (h *UserHandler) ChangeOwnUsername(w http.ResponseWriter, r *http.Request) {
	userID, ok := auth.GetUserID(r)
	if !ok {
		utils.Unauthorized(w, constants.MsgAuthRequired)
		return
	}
	h.changeUsername(w, r, userID)
}

// ChangeUsername renames the user given in the URL. Staff only.
func (h *UserHandler) ChangeUsername(w http.ResponseWriter, r *http.Request) {
	userID, err := parseIDParam(r, constants.ParamUserID)
	if err != nil {
		utils.ErrorFromAppError(w, utils.ParseError(err))
		return
	}
	h.changeUsername(w, r, userID)
}

func (h *UserHandler) changeUsername(w http.ResponseWriter, r *http.Request, userID int64) {
	actorID, ok := auth.GetUserID(r)
	if !ok {
		utils.Unauthorized(w, constants.MsgAuthRequired)
		return
	}

	var req models.UsernameChange
	if err := utils.DecodeAndValidate(r, &req); err != nil {
		utils.ErrorFromAppError(w, utils.ParseError(err))
		return
	}

	// the token may carry a stale username, so the actor is reloaded
	actor, err := h.userService.GetUserByID(r.Context(), actorID)
	if err != nil {
		utils.ErrorFromAppError(w, utils.ParseError(err))
		return
	}

	user, err := h.userService.ChangeUsername(r.Context(), userID, req.Username, actor)
	if err != nil {
		utils.ErrorFromAppError(w, utils.ParseError(err))
		return
	}

	utils.JSON(w, constants.StatusOK, user.Profile())
}

// GetNameHistory returns the current user's past usernames
func (h *UserHandler) GetNameHistory(w http.ResponseWriter, r *http.Request) {
	userID, ok := auth.GetUserID(r)
	if !ok {
		utils.Unauthorized(w, constants.MsgAuthRequired)
		return
	}

	history, err := h.userService.GetNameHistory(r.Context(), userID)
	if err != nil {
		utils.ErrorFromAppError(w, utils.ParseError(err))
		return
	}

	utils.JSON(w, constants.StatusOK, history)
}

// DownloadOwnDataArchive builds and downloads the current user's data archive
func (h *UserHandler) DownloadOwnDataArchive(w http.ResponseWriter, r *http.Request) {
	userID, ok := auth.GetUserID(r)
	if !ok {
		utils.Unauthorized(w, constants.MsgAuthRequired)
		return
	}
	h.downloadDataArchive(w, r, userID)
}

// DownloadDataArchive builds and downloads the data archive of the user
// given in the URL. Staff only.
func (h *UserHandler) DownloadDataArchive(w http.ResponseWriter, r *http.Request) {
	userID, err := parseIDParam(r, constants.ParamUserID)
	if err != nil {
		utils.ErrorFromAppError(w, utils.ParseError(err))
		return
	}
	h.downloadDataArchive(w, r, userID)
}

func (h *UserHandler) downloadDataArchive(w http.ResponseWriter, r *http.Request, userID int64) {
	path, err := h.archiveService.ArchiveUser(r.Context(), userID)
	if err != nil {
		utils.ErrorFromAppError(w, utils.ParseError(err))
		return
	}

	requestedBy, _ := auth.GetUserID(r)
	log.Info().
		Int64("user_id", userID).
		Int64("requested_by", requestedBy).
		Msg("Data archive downloaded")

	utils.File(w, path, constants.ContentTypeZip)

	if err := h.archiveService.RemoveArchive(path); err != nil {
		log.Warn().Err(err).Int64("user_id", userID).Msg("Failed to remove delivered data archive")
	}
}
