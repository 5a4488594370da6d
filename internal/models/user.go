package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Role is the closed set of dashboard roles.
type Role string

const (
	RoleUnauthorized Role = "unauthorized"
	RoleManager      Role = "manager"
	RoleAdmin        Role = "admin"
)

func (r Role) Valid() bool {
	switch r {
	case RoleUnauthorized, RoleManager, RoleAdmin:
		return true
	}
	return false
}

type User struct {
	UID          string     `json:"uid" gorm:"primaryKey;size:64"`
	Name         string     `json:"name" gorm:"not null"`
	Email        string     `json:"email" gorm:"uniqueIndex;size:255;not null"`
	Avatar       string     `json:"avatar"`
	Organization string     `json:"organization,omitempty"`
	Role         Role       `json:"role" gorm:"size:32;not null;default:unauthorized"`
	PasswordHash string     `json:"-"`
	LastLogin    *time.Time `json:"lastLogin"`
	CreatedAt    time.Time  `json:"createdAt" gorm:"autoCreateTime"`
	UpdatedAt    time.Time  `json:"updatedAt" gorm:"autoUpdateTime"`
}

func (u *User) BeforeCreate(tx *gorm.DB) error {
	if u.UID == "" {
		u.UID = uuid.NewString()
	}
	if u.Role == "" {
		u.Role = RoleUnauthorized
	}
	return nil
}

// UserPatch lists the user fields that may change after creation. nil fields are left untouched.
type UserPatch struct {
	Name         *string
	Organization *string
	Avatar       *string
	Role         *Role
	LastLogin    *time.Time
}

func (p UserPatch) Empty() bool {
	return p.Name == nil && p.Organization == nil && p.Avatar == nil && p.Role == nil && p.LastLogin == nil
}
