package models

import (
	"time"
)

type UserRole string

const (
	RoleUser      UserRole = "USER"
	RoleModerator UserRole = "MODERATOR"
	RoleAdmin     UserRole = "ADMIN"
)

type User struct {
	ID           uint      `gorm:"primaryKey;autoIncrement" json:"id"`
	Username     string    `gorm:"unique;not null"          json:"username"`
	Email        string    `gorm:"unique;not null"          json:"email"`
	HashPassword string    `gorm:"not null"                 json:"-"`
	Role         UserRole  `gorm:"not null;default:USER"    json:"role"`
	Avatar       string    `gorm:"size:255"                 json:"avatar"`
	Confirmed    bool      `gorm:"default:false"            json:"confirmed"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

type Contact struct {
	ID        uint      `gorm:"primaryKey;autoIncrement" json:"id"`
	FirstName string    `gorm:"size:100;not null"        json:"first_name"`
	LastName  string    `gorm:"size:100;not null"        json:"last_name"`
	Email     string    `gorm:"size:100;not null"        json:"email"`
	Phone     string    `gorm:"size:30;not null"         json:"phone"`
	Birthday  time.Time `gorm:"not null"                 json:"birthday"`
	ExtraInfo string    `gorm:"size:255"                 json:"extra_info"`
	UserID    uint      `gorm:"index;not null"           json:"user_id"`
}

// RefreshToken keeps only the sha256 hash of the opaque value; the raw
// token is handed to the client once and cannot be recovered from storage.
type RefreshToken struct {
	ID        uint       `gorm:"primaryKey"           json:"id"`
	UserID    uint       `gorm:"index;not null"       json:"user_id"`
	TokenHash string     `gorm:"uniqueIndex;not null" json:"-"`
	CreatedAt time.Time  `json:"created_at"`
	ExpiredAt time.Time  `gorm:"not null"             json:"expired_at"`
	RevokedAt *time.Time `json:"revoked_at,omitempty"`
	IPAddress string     `gorm:"size:50"              json:"ip_address"`
	UserAgent string     `gorm:"type:text"            json:"user_agent"`
}

// Active reports whether the token may still be exchanged for a new pair.
func (t *RefreshToken) Active(now time.Time) bool {
	return t.RevokedAt == nil && now.Before(t.ExpiredAt)
}

type PasswordResetToken struct {
	ID        uint      `gorm:"primaryKey"           json:"id"`
	UserID    uint      `gorm:"index;not null"       json:"user_id"`
	Token     string    `gorm:"uniqueIndex;not null" json:"-"`
	ExpiresAt time.Time `gorm:"not null"             json:"expires_at"`
	Used      bool      `gorm:"default:false"        json:"used"`
	CreatedAt time.Time `json:"created_at"`
}

func (t *PasswordResetToken) Usable(now time.Time) bool {
	return !t.Used && now.Before(t.ExpiresAt)
}
