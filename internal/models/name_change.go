package models

import "time"

// NameChange is one entry of a user's username history.
type NameChange struct {
	ID     int64 `json:"id" db:"name_change_id"`
	UserID int64 `json:"user_id" db:"user_id"`
	// ChangedByID is nil when the account performing the change was deleted.
	ChangedByID *int64 `json:"changed_by_id,omitempty" db:"changed_by_id"`
	// ChangedByUsername is kept in sync when the acting user renames themselves.
	ChangedByUsername string    `json:"changed_by_username" db:"changed_by_username"`
	ChangedOn         time.Time `json:"changed_on" db:"changed_on"`
	NewUsername       string    `json:"new_username" db:"new_username"`
	OldUsername       string    `json:"old_username" db:"old_username"`
}

// NewNameChange records user's rename from oldName to newName performed by actor.
func NewNameChange(userID int64, oldName, newName string, actor *User) *NameChange {
	nc := &NameChange{
		UserID:      userID,
		ChangedOn:   time.Now(),
		NewUsername: newName,
		OldUsername: oldName,
	}
	if actor != nil {
		actorID := actor.ID
		nc.ChangedByID = &actorID
		nc.ChangedByUsername = actor.Username
	}
	return nc
}

// TableName returns the database table name for the NameChange model.
func (n *NameChange) TableName() string {
	return "name_changes"
}
