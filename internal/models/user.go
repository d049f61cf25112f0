package models

import (
	"encoding/json"
	"time"
)

// User represents a registered forum member.
type User struct {
	ID           int64     `json:"id" db:"user_id"`
	Username     string    `json:"username" db:"username"`
	Email        string    `json:"email" db:"email"`
	PasswordHash string    `json:"-" db:"password_hash"`
	Salt         string    `json:"-" db:"salt"`
	IsStaff      bool      `json:"is_staff" db:"is_staff"`
	JoinedOn     time.Time `json:"joined_on" db:"joined_on"`
	// JoinedFromIP is cleared once it is older than the IP retention window.
	JoinedFromIP *string `json:"-" db:"joined_from_ip"`
	// ProfileFields maps profile field names to the values the user entered.
	ProfileFields ProfileFields `json:"profile_fields,omitempty" db:"profile_fields"`
	// AvatarTmp and AvatarSrc are media-relative paths of the uploaded avatar source images.
	AvatarTmp string    `json:"-" db:"avatar_tmp"`
	AvatarSrc string    `json:"-" db:"avatar_src"`
	UpdatedAt time.Time `json:"updated_at" db:"updated_at"`
}

// NewUser creates a new User joined now from the given IP.
func NewUser(username, email, joinedFromIP string) *User {
	now := time.Now()
	u := &User{
		Username:  username,
		Email:     email,
		JoinedOn:  now,
		UpdatedAt: now,
	}
	if joinedFromIP != "" {
		u.JoinedFromIP = &joinedFromIP
	}
	return u
}

// TableName returns the database table name for the User model.
func (u *User) TableName() string {
	return "users"
}

// Sanitize removes sensitive information from the User object when sending to clients.
func (u *User) Sanitize() *User {
	sanitized := *u
	sanitized.PasswordHash = ""
	sanitized.Salt = ""
	sanitized.JoinedFromIP = nil
	return &sanitized
}

// ProfileFields is the key/value map of a user's profile, stored as JSON text.
type ProfileFields map[string]string

// MarshalText encodes the map for storage. A nil map is stored as "{}".
func (p ProfileFields) MarshalText() ([]byte, error) {
	if p == nil {
		return []byte("{}"), nil
	}
	return json.Marshal(map[string]string(p))
}

// UnmarshalText decodes stored JSON text; an empty column yields an empty map.
func (p *ProfileFields) UnmarshalText(data []byte) error {
	m := map[string]string{}
	if len(data) > 0 {
		if err := json.Unmarshal(data, &m); err != nil {
			return err
		}
	}
	*p = m
	return nil
}

// UserCredentials represents the login credentials provided by a user.
type UserCredentials struct {
	Username string `json:"username" validate:"required_without=Email,omitempty"`
	Email    string `json:"email" validate:"required_without=Username,omitempty,email"`
	Password string `json:"password" validate:"required"`
}

// UserRegistration represents the data required for user registration.
type UserRegistration struct {
	Username        string `json:"username" validate:"required,username"`
	Email           string `json:"email" validate:"required,email,max=255"`
	Password        string `json:"password" validate:"required,min=8"`
	ConfirmPassword string `json:"confirm_password" validate:"required,eqfield=Password"`
}

// UsernameChange is the request body for renaming a user.
type UsernameChange struct {
	Username string `json:"username" validate:"required,username"`
}

// UserProfile is the public view of a user returned by the API.
type UserProfile struct {
	ID            int64             `json:"id"`
	Username      string            `json:"username"`
	Email         string            `json:"email"`
	IsStaff       bool              `json:"is_staff"`
	JoinedOn      time.Time         `json:"joined_on"`
	ProfileFields map[string]string `json:"profile_fields,omitempty"`
}

// Profile builds the API view of the user.
func (u *User) Profile() *UserProfile {
	return &UserProfile{
		ID:            u.ID,
		Username:      u.Username,
		Email:         u.Email,
		IsStaff:       u.IsStaff,
		JoinedOn:      u.JoinedOn,
		ProfileFields: u.ProfileFields,
	}
}

// LoginResponse is returned after a successful login.
type LoginResponse struct {
	AccessToken string       `json:"access_token"`
	TokenType   string       `json:"token_type"`
	ExpiresIn   int64        `json:"expires_in"`
	User        *UserProfile `json:"user"`
}
