// Package models provides data structures representing entities in the application.
package models

import (
	"errors"
	"fmt"
	"net"
	"strings"
	"time"
)

// ErrBanNotFound is returned by ban lookups when no ban matches.
// Callers treat it as "not banned".
var ErrBanNotFound = errors.New("no matching ban")

// BanCheckType selects which user attribute a ban is tested against.
type BanCheckType int

// Ban check types, stored as integers in the bans table.
const (
	BanUsername BanCheckType = 0
	BanEmail    BanCheckType = 1
	BanIP       BanCheckType = 2
)

// String returns the lowercase name of the check type.
func (t BanCheckType) String() string {
	switch t {
	case BanUsername:
		return "username"
	case BanEmail:
		return "email"
	case BanIP:
		return "ip"
	default:
		return fmt.Sprintf("unknown(%d)", int(t))
	}
}

// Valid reports whether t is a known check type.
func (t BanCheckType) Valid() bool {
	return t == BanUsername || t == BanEmail || t == BanIP
}

// Ban represents a stored pattern that blocks a username, email or IP address.
type Ban struct {
	// ID is the unique identifier for the ban record
	ID int64 `json:"id" db:"ban_id"`

	// CheckType is the attribute the ban applies to
	CheckType BanCheckType `json:"check_type" db:"check_type"`

	// BannedValue is the pattern, stored lowercase. "*" matches any run of characters.
	// IP bans may also hold a CIDR range.
	BannedValue string `json:"banned_value" db:"banned_value"`

	// UserMessage is shown to the banned user
	UserMessage string `json:"user_message,omitempty" db:"user_message"`

	// StaffMessage is only visible to staff
	StaffMessage string `json:"staff_message,omitempty" db:"staff_message"`

	// ExpiresOn defines when the ban expires (nil for permanent bans)
	ExpiresOn *time.Time `json:"expires_on,omitempty" db:"expires_on"`

	// IsChecked is false for bans that are kept for history only
	IsChecked bool `json:"is_checked" db:"is_checked"`

	CreatedAt time.Time `json:"created_at" db:"created_at"`
}

// NewBan creates a new checked ban. The pattern is lowercased.
func NewBan(checkType BanCheckType, bannedValue, userMessage, staffMessage string, expiresOn *time.Time) *Ban {
	return &Ban{
		CheckType:    checkType,
		BannedValue:  strings.ToLower(strings.TrimSpace(bannedValue)),
		UserMessage:  userMessage,
		StaffMessage: staffMessage,
		ExpiresOn:    expiresOn,
		IsChecked:    true,
		CreatedAt:    time.Now(),
	}
}

// TableName returns the database table name for the Ban model.
func (b *Ban) TableName() string {
	return "bans"
}

// IsExpired reports whether the ban expired at or before now.
func (b *Ban) IsExpired(now time.Time) bool {
	return b.ExpiresOn != nil && !now.Before(*b.ExpiresOn)
}

// TestValue reports whether value is matched by this ban.
// IP bans additionally match addresses inside a CIDR range.
func (b *Ban) TestValue(value string) bool {
	if MatchBanPattern(b.BannedValue, value) {
		return true
	}
	if b.CheckType == BanIP && strings.Contains(b.BannedValue, "/") {
		return cidrContains(b.BannedValue, value)
	}
	return false
}

// MatchBanPattern matches value against a ban pattern, ignoring case.
//
// A pattern without "*" matches only the equal string. Each "*" matches any
// run of characters, including an empty one, so "x*" is a prefix match, "*x"
// a suffix match and "a*b" requires both ends without letting them overlap:
// "bob" matches "b*b" but "b" does not.
func MatchBanPattern(pattern, value string) bool {
	pattern = strings.ToLower(pattern)
	value = strings.ToLower(value)

	parts := strings.Split(pattern, "*")
	if len(parts) == 1 {
		return pattern == value
	}

	head, tail := parts[0], parts[len(parts)-1]
	if !strings.HasPrefix(value, head) {
		return false
	}
	rest := value[len(head):]

	for _, middle := range parts[1 : len(parts)-1] {
		idx := strings.Index(rest, middle)
		if idx < 0 {
			return false
		}
		rest = rest[idx+len(middle):]
	}

	return strings.HasSuffix(rest, tail)
}

func cidrContains(cidr, ip string) bool {
	_, ipNet, err := net.ParseCIDR(cidr)
	if err != nil {
		return false
	}

	parsedIP := net.ParseIP(ip)
	if parsedIP == nil {
		return false
	}

	return ipNet.Contains(parsedIP)
}

// BanQuery holds the values a ban lookup tests. Empty fields are skipped.
type BanQuery struct {
	Username string `json:"username,omitempty"`
	Email    string `json:"email,omitempty"`
	IP       string `json:"ip,omitempty" validate:"omitempty,ip"`
}

// CheckTypes returns the check types with a non-empty value, in lookup order.
func (q BanQuery) CheckTypes() []BanCheckType {
	var types []BanCheckType
	if q.Username != "" {
		types = append(types, BanUsername)
	}
	if q.Email != "" {
		types = append(types, BanEmail)
	}
	if q.IP != "" {
		types = append(types, BanIP)
	}
	return types
}

// Value returns the query value tested against bans of the given type.
func (q BanQuery) Value(t BanCheckType) string {
	switch t {
	case BanUsername:
		return q.Username
	case BanEmail:
		return q.Email
	case BanIP:
		return q.IP
	default:
		return ""
	}
}

// BanCreate is the request body for creating a ban.
type BanCreate struct {
	CheckType    BanCheckType `json:"check_type" validate:"oneof=0 1 2"`
	BannedValue  string       `json:"banned_value" validate:"required,max=255,ban_value"`
	UserMessage  string       `json:"user_message" validate:"max=1000"`
	StaffMessage string       `json:"staff_message" validate:"max=1000"`
	ExpiresOn    *time.Time   `json:"expires_on,omitempty"`
}
