package models

import (
	"time"
)

// Roles a User may hold
const (
	RoleUser  = "user"
	RoleAdmin = "admin"
)

// User is the identity record for an authenticated caller, keyed by the external identity token
type User struct {
	ID           int64     `gorm:"primaryKey;autoIncrement" json:"id"`
	OpenID       string    `gorm:"column:open_id;size:64;not null;uniqueIndex" json:"openId"`
	Name         *string   `gorm:"type:text" json:"name"`
	Email        *string   `gorm:"size:320" json:"email"`
	LoginMethod  *string   `gorm:"size:64" json:"loginMethod"`
	Role         string    `gorm:"size:16;not null;default:user" json:"role"`
	CreatedAt    time.Time `json:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt"`
	LastSignedIn time.Time `gorm:"not null" json:"lastSignedIn"`
}

// TableName overrides the table name for User
func (User) TableName() string {
	return "users"
}

// IsAdmin reports whether the user holds the admin role
func (u *User) IsAdmin() bool {
	return u != nil && u.Role == RoleAdmin
}

// AdminCredential is a username/password pair allowed to sign in to the back office.
// Password holds a bcrypt hash, or a legacy plain value when plaintext comparison is enabled.
type AdminCredential struct {
	ID        int64     `gorm:"primaryKey;autoIncrement" json:"id"`
	Username  string    `gorm:"size:100;not null;uniqueIndex" json:"username"`
	Password  string    `gorm:"size:255;not null" json:"-"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// TableName overrides the table name for AdminCredential
func (AdminCredential) TableName() string {
	return "admin_credentials"
}

// All lists every model in migration order
func All() []interface{} {
	return []interface{}{
		&User{},
		&CatalogEntry{},
		&AdminCredential{},
		&AdminLogEntry{},
	}
}
