package models

import (
	"time"

	"github.com/google/uuid"
)

// Connect global roles. ADMIN users sign up as Feastly admins.
const (
	ConnectUserRoleUser  = "USER"
	ConnectUserRoleAdmin = "ADMIN"
)

// ConnectUser is the profile returned by Connect for an access token.
type ConnectUser struct {
	ID              uuid.UUID  `json:"id,omitempty"`
	Email           string     `json:"email,omitempty"`
	Username        string     `json:"username,omitempty"`
	FullName        string     `json:"full_name,omitempty"`
	AvatarURL       string     `json:"avatar_url,omitempty"`
	GlobalRole      string     `json:"global_role,omitempty"`
	IsEmailVerified bool       `json:"is_email_verified,omitempty"`
	CreatedAt       *time.Time `json:"created_at,omitempty"`
}
