// Package models contains domain entities and business models for the ordering system
package models

import (
	"time"

	"github.com/google/uuid"
)

type User struct {
	ID           uint      `gorm:"primaryKey" json:"id"`
	UUID         uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:uk_users_uuid" json:"uuid"`
	Name         string    `gorm:"size:100;not null" json:"name"`
	Email        string    `gorm:"size:255;not null;uniqueIndex:uk_users_email" json:"email"`
	Mobile       *string   `gorm:"size:15" json:"mobile,omitempty"`
	PasswordHash string    `gorm:"size:255;not null" json:"-"` // Never serialize password hash
	Role         string    `gorm:"size:10;not null;default:USER;index:idx_users_role" json:"role"`

	IsActive    *bool      `gorm:"default:true;index:idx_users_is_active" json:"is_active"`
	LastLoginAt *time.Time `json:"last_login_at,omitempty"`

	CreatedAt time.Time `gorm:"default:(CURRENT_TIMESTAMP AT TIME ZONE 'UTC');index:idx_users_created_at" json:"created_at"`
	UpdatedAt time.Time `gorm:"default:(CURRENT_TIMESTAMP AT TIME ZONE 'UTC')" json:"updated_at"`

	// Relations
	Sessions []UserSession `gorm:"foreignKey:UserID" json:"-"`
	Orders   []Order       `gorm:"foreignKey:UserID" json:"-"`
	Ratings  []Rating      `gorm:"foreignKey:UserID" json:"-"`
}

func (User) TableName() string {
	return "users"
}

// User role constants
const (
	RoleUser  = "USER"
	RoleOwner = "OWNER"
)

// UserFilter represents filter criteria for user queries
type UserFilter struct {
	ID            *uint
	UUID          *uuid.UUID
	Email         *string
	Mobile        *string
	Role          *string
	IsActive      *bool
	CreatedAfter  *time.Time
	CreatedBefore *time.Time
}

func (u *User) IsOwner() bool {
	return u.Role == RoleOwner
}
