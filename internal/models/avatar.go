package models

// Avatar is one generated size of a user's avatar image.
type Avatar struct {
	ID     int64  `json:"id" db:"avatar_id"`
	UserID int64  `json:"user_id" db:"user_id"`
	Size   int    `json:"size" db:"size"`
	Image  string `json:"image" db:"image"`
}

// TableName returns the database table name for the Avatar model.
func (a *Avatar) TableName() string {
	return "avatars"
}
