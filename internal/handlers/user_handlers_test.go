package handlers

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/yasinhessnawi1/Forum_Backend/internal/constants"
	"github.com/yasinhessnawi1/Forum_Backend/internal/models"
	"github.com/yasinhessnawi1/Forum_Backend/internal/utils"
)

func setupUserTest() (*UserHandler, *MockUserService, *MockArchiveService) {
	users := new(MockUserService)
	archives := new(MockArchiveService)
	return NewUserHandler(users, archives), users, archives
}

func testTime() time.Time {
	return time.Date(2023, 1, 1, 12, 0, 0, 0, time.UTC)
}

func TestGetCurrentUser(t *testing.T) {
	t.Run("Success", func(t *testing.T) {
		handler, users, _ := setupUserTest()
		users.On("GetUserByID", mock.Anything, int64(1001)).Return(&models.User{
			ID:       1001,
			Username: "testuser",
			Email:    "test@example.com",
			JoinedOn: testTime(),
		}, nil).Once()

		req := withIdentity(httptest.NewRequest(http.MethodGet, "/api/users/me", nil), 1001, "testuser", false)
		rr := httptest.NewRecorder()
		handler.GetCurrentUser(rr, req)

		assert.Equal(t, http.StatusOK, rr.Code)
		var profile models.UserProfile
		decodeData(t, decodeResponse(t, rr), &profile)
		assert.Equal(t, "testuser", profile.Username)
		assert.Equal(t, testTime(), profile.JoinedOn)
	})

	t.Run("Unauthenticated", func(t *testing.T) {
		handler, users, _ := setupUserTest()

		rr := httptest.NewRecorder()
		handler.GetCurrentUser(rr, httptest.NewRequest(http.MethodGet, "/api/users/me", nil))

		assert.Equal(t, http.StatusUnauthorized, rr.Code)
		users.AssertNotCalled(t, "GetUserByID", mock.Anything, mock.Anything)
	})
}

func TestChangeOwnUsername(t *testing.T) {
	bob := &models.User{ID: 7, Username: "bob"}

	t.Run("Success", func(t *testing.T) {
		handler, users, _ := setupUserTest()
		users.On("GetUserByID", mock.Anything, int64(7)).Return(bob, nil).Once()
		users.On("ChangeUsername", mock.Anything, int64(7), "robert", bob).
			Return(&models.User{ID: 7, Username: "robert"}, nil).Once()

		req := withIdentity(newJSONRequest(t, http.MethodPut, "/api/users/me/username", map[string]string{"username": "robert"}), 7, "bob", false)
		rr := httptest.NewRecorder()
		handler.ChangeOwnUsername(rr, req)

		assert.Equal(t, http.StatusOK, rr.Code)
		var profile models.UserProfile
		decodeData(t, decodeResponse(t, rr), &profile)
		assert.Equal(t, "robert", profile.Username)
		users.AssertExpectations(t)
	})

	t.Run("Banned username", func(t *testing.T) {
		handler, users, _ := setupUserTest()
		users.On("GetUserByID", mock.Anything, int64(7)).Return(bob, nil).Once()
		users.On("ChangeUsername", mock.Anything, int64(7), "admin", bob).
			Return(nil, utils.NewBannedError("Reserved name", nil)).Once()

		req := withIdentity(newJSONRequest(t, http.MethodPut, "/api/users/me/username", map[string]string{"username": "admin"}), 7, "bob", false)
		rr := httptest.NewRecorder()
		handler.ChangeOwnUsername(rr, req)

		assert.Equal(t, http.StatusForbidden, rr.Code)
		assert.Equal(t, "Reserved name", decodeResponse(t, rr).Error.Message)
	})

	t.Run("Invalid username", func(t *testing.T) {
		handler, users, _ := setupUserTest()

		req := withIdentity(newJSONRequest(t, http.MethodPut, "/api/users/me/username", map[string]string{"username": "no spaces allowed"}), 7, "bob", false)
		rr := httptest.NewRecorder()
		handler.ChangeOwnUsername(rr, req)

		assert.Equal(t, http.StatusBadRequest, rr.Code)
		users.AssertNotCalled(t, "ChangeUsername", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	})
}

func TestChangeUsername_ByStaff(t *testing.T) {
	handler, users, _ := setupUserTest()
	admin := &models.User{ID: 1, Username: "admin", IsStaff: true}
	users.On("GetUserByID", mock.Anything, int64(1)).Return(admin, nil).Once()
	users.On("ChangeUsername", mock.Anything, int64(7), "robert", admin).
		Return(&models.User{ID: 7, Username: "robert"}, nil).Once()

	req := withIdentity(newJSONRequest(t, http.MethodPut, "/api/users/7/username", map[string]string{"username": "robert"}), 1, "admin", true)
	req = withURLParam(req, constants.ParamUserID, "7")
	rr := httptest.NewRecorder()
	handler.ChangeUsername(rr, req)

	assert.Equal(t, http.StatusOK, rr.Code)
	users.AssertExpectations(t)
}

func TestChangeUsername_InvalidID(t *testing.T) {
	handler, _, _ := setupUserTest()

	req := withIdentity(newJSONRequest(t, http.MethodPut, "/api/users/abc/username", map[string]string{"username": "robert"}), 1, "admin", true)
	req = withURLParam(req, constants.ParamUserID, "abc")
	rr := httptest.NewRecorder()
	handler.ChangeUsername(rr, req)

	assert.Equal(t, http.StatusBadRequest, rr.Code)
}

func TestGetNameHistory(t *testing.T) {
	handler, users, _ := setupUserTest()
	actorID := int64(7)
	users.On("GetNameHistory", mock.Anything, int64(7)).Return([]*models.NameChange{
		{ID: 1, UserID: 7, ChangedByID: &actorID, ChangedByUsername: "robert", NewUsername: "bobby", OldUsername: "bob"},
		{ID: 2, UserID: 7, ChangedByID: &actorID, ChangedByUsername: "robert", NewUsername: "robert", OldUsername: "bobby"},
	}, nil).Once()

	req := withIdentity(httptest.NewRequest(http.MethodGet, "/api/users/me/name-history", nil), 7, "robert", false)
	rr := httptest.NewRecorder()
	handler.GetNameHistory(rr, req)

	assert.Equal(t, http.StatusOK, rr.Code)
	var history []models.NameChange
	decodeData(t, decodeResponse(t, rr), &history)
	require.Len(t, history, 2)
	assert.Equal(t, "bob", history[0].OldUsername)
	assert.Equal(t, "robert", history[1].NewUsername)
}

func TestDownloadOwnDataArchive(t *testing.T) {
	t.Run("Success", func(t *testing.T) {
		handler, _, archives := setupUserTest()
		path := filepath.Join(t.TempDir(), "bob-2024-06-01-120000.zip")
		require.NoError(t, os.WriteFile(path, []byte("PK\x03\x04zip"), 0o600))
		archives.On("ArchiveUser", mock.Anything, int64(7)).Return(path, nil).Once()
		archives.On("RemoveArchive", path).Return(nil).Once()

		req := withIdentity(httptest.NewRequest(http.MethodPost, "/api/users/me/data-archive", nil), 7, "bob", false)
		rr := httptest.NewRecorder()
		handler.DownloadOwnDataArchive(rr, req)

		assert.Equal(t, http.StatusOK, rr.Code)
		assert.Equal(t, constants.ContentTypeZip, rr.Header().Get("Content-Type"))
		assert.Contains(t, rr.Header().Get("Content-Disposition"), "bob-2024-06-01-120000.zip")
		assert.Equal(t, "PK\x03\x04zip", rr.Body.String())
		archives.AssertExpectations(t)
	})

	t.Run("Remove failure still delivers", func(t *testing.T) {
		handler, _, archives := setupUserTest()
		path := filepath.Join(t.TempDir(), "bob.zip")
		require.NoError(t, os.WriteFile(path, []byte("zip"), 0o600))
		archives.On("ArchiveUser", mock.Anything, int64(7)).Return(path, nil).Once()
		archives.On("RemoveArchive", path).Return(errors.New("permission denied")).Once()

		req := withIdentity(httptest.NewRequest(http.MethodPost, "/api/users/me/data-archive", nil), 7, "bob", false)
		rr := httptest.NewRecorder()
		handler.DownloadOwnDataArchive(rr, req)

		assert.Equal(t, http.StatusOK, rr.Code)
		assert.Equal(t, "zip", rr.Body.String())
		archives.AssertExpectations(t)
	})

	t.Run("Archive failure", func(t *testing.T) {
		handler, _, archives := setupUserTest()
		archives.On("ArchiveUser", mock.Anything, int64(7)).Return("", errors.New("disk full")).Once()

		req := withIdentity(httptest.NewRequest(http.MethodPost, "/api/users/me/data-archive", nil), 7, "bob", false)
		rr := httptest.NewRecorder()
		handler.DownloadOwnDataArchive(rr, req)

		assert.Equal(t, http.StatusInternalServerError, rr.Code)
	})
}

func TestDownloadDataArchive_ByStaff(t *testing.T) {
	handler, _, archives := setupUserTest()
	archives.On("ArchiveUser", mock.Anything, int64(42)).Return("", utils.NewNotFoundError("User", int64(42))).Once()

	req := withIdentity(httptest.NewRequest(http.MethodPost, "/api/users/42/data-archive", nil), 1, "admin", true)
	req = withURLParam(req, constants.ParamUserID, "42")
	rr := httptest.NewRecorder()
	handler.DownloadDataArchive(rr, req)

	assert.Equal(t, http.StatusNotFound, rr.Code)
	archives.AssertExpectations(t)
}
