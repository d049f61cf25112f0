package models

import "time"

// AuditTrail records the IP address a user acted from.
// Rows older than the IP retention window are deleted.
type AuditTrail struct {
	ID        int64     `json:"id" db:"audit_trail_id"`
	UserID    int64     `json:"user_id" db:"user_id"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
	IPAddress string    `json:"ip_address" db:"ip_address"`
}

// NewAuditTrail creates an audit trail entry stamped with the current time.
func NewAuditTrail(userID int64, ipAddress string) *AuditTrail {
	return &AuditTrail{
		UserID:    userID,
		CreatedAt: time.Now(),
		IPAddress: ipAddress,
	}
}

// TableName returns the database table name for the AuditTrail model.
func (a *AuditTrail) TableName() string {
	return "audit_trails"
}
