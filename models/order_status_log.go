package models

import "time"

// OrderStatusLog is an append-only trail of status transitions, including
// the initial NEW entry written at order creation.
type OrderStatusLog struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	OrderID   uint      `gorm:"not null;index:idx_order_status_logs_order_id" json:"order_id"`
	Order     Order     `gorm:"foreignKey:OrderID;references:ID" json:"order,omitempty"`
	Status    string    `gorm:"size:12;not null" json:"status"`
	ChangedBy string    `gorm:"size:10;not null" json:"changed_by"`
	CreatedAt time.Time `gorm:"default:CURRENT_TIMESTAMP;index:idx_order_status_logs_created_at" json:"created_at"`
}

func (OrderStatusLog) TableName() string {
	return "order_status_logs"
}

// Status change actor constants
const (
	StatusChangedByOwner  = "OWNER"
	StatusChangedByUser   = "USER"
	StatusChangedBySystem = "SYSTEM"
)

// OrderStatusLogFilter represents filter criteria for status log queries
type OrderStatusLogFilter struct {
	ID            *uint
	OrderID       *uint
	Status        *string
	ChangedBy     *string
	CreatedAfter  *time.Time
	CreatedBefore *time.Time
}
