// Package models contains domain entities and business models for the ordering system
package models

import (
	"encoding/json"
	"time"
)

type AuditLog struct {
	ID           uint            `gorm:"primaryKey" json:"id"`
	UserID       *uint           `gorm:"index:idx_audit_user_id" json:"user_id,omitempty"`
	User         *User           `gorm:"foreignKey:UserID;references:ID" json:"user,omitempty"`
	Action       string          `gorm:"size:40;not null;index:idx_audit_action" json:"action"`
	Description  *string         `gorm:"type:text" json:"description,omitempty"`
	IPAddress    *string         `gorm:"type:inet" json:"ip_address,omitempty"`
	UserAgent    *string         `gorm:"type:text" json:"user_agent,omitempty"`
	RequestID    *string         `gorm:"size:255;index:idx_audit_request_id" json:"request_id,omitempty"`
	Metadata     json.RawMessage `gorm:"type:jsonb" json:"metadata,omitempty"`
	Success      *bool           `gorm:"default:true;index:idx_audit_success" json:"success"`
	ErrorMessage *string         `gorm:"type:text" json:"error_message,omitempty"`
	CreatedAt    time.Time       `gorm:"default:CURRENT_TIMESTAMP;index:idx_audit_created_at" json:"created_at"`
}

func (AuditLog) TableName() string {
	return "audit_log"
}

// Audit action constants
const (
	AuditActionOTPRequested       = "otp_requested"
	AuditActionOTPVerified        = "otp_verified"
	AuditActionOTPFailed          = "otp_failed"
	AuditActionOTPLockedOut       = "otp_locked_out"
	AuditActionRegisterCompleted  = "register_completed"
	AuditActionLoginSuccess       = "login_success"
	AuditActionLoginFailed        = "login_failed"
	AuditActionLogout             = "logout"
	AuditActionOrderPlaced        = "order_placed"
	AuditActionOrderCancelled     = "order_cancelled"
	AuditActionOrderStatusUpdated = "order_status_updated"
	AuditActionRatingSubmitted    = "rating_submitted"
	AuditActionMenuItemCreated    = "menu_item_created"
	AuditActionMenuItemUpdated    = "menu_item_updated"
	AuditActionMenuItemDeleted    = "menu_item_deleted"
)

// AuditLogFilter represents filter criteria for audit log queries
type AuditLogFilter struct {
	ID            *uint
	UserID        *uint
	Action        *string
	Success       *bool
	IPAddress     *string
	RequestID     *string
	CreatedAfter  *time.Time
	CreatedBefore *time.Time
}

func (a *AuditLog) IsFailed() bool {
	return a.Success != nil && !*a.Success
}

func (a *AuditLog) IsSecurityEvent() bool {
	securityActions := map[string]bool{
		AuditActionLoginSuccess: true,
		AuditActionLoginFailed:  true,
		AuditActionOTPFailed:    true,
		AuditActionOTPLockedOut: true,
	}
	return securityActions[a.Action]
}
