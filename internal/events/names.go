package events

import (
	"time"

	"github.com/yasinhessnawi1/Forum_Backend/internal/archive"
	"github.com/yasinhessnawi1/Forum_Backend/internal/models"
)

// Event names.
const (
	// ArchiveUserData asks every data provider to write a user's data into an archive.
	ArchiveUserData = "archive_user_data"

	// UsernameChanged is published after a user row was renamed.
	UsernameChanged = "username_changed"

	// RemoveOldIPs asks retention handlers to purge IP data older than the retention window.
	RemoveOldIPs = "remove_old_ips"
)

// ArchiveUserDataPayload is the payload of ArchiveUserData.
type ArchiveUserDataPayload struct {
	User     *models.User
	Archiver archive.Archiver
}

// UsernameChangedPayload is the payload of UsernameChanged. User already
// carries the new username.
type UsernameChangedPayload struct {
	User        *models.User
	OldUsername string
}

// RemoveOldIPsPayload is the payload of RemoveOldIPs.
type RemoveOldIPsPayload struct {
	// Now is the instant the retention cutoff is computed from.
	Now time.Time
}
