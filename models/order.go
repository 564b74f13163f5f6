// Package models contains domain entities and business models for the ordering system
package models

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

type Order struct {
	ID          uint      `gorm:"primaryKey" json:"id"`
	UUID        uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:uk_orders_uuid" json:"uuid"`
	OrderNumber string    `gorm:"size:12;not null;uniqueIndex:uk_orders_order_number" json:"order_number"`
	UserID      uint      `gorm:"not null;index:idx_orders_user_id" json:"user_id"`
	User        User      `gorm:"foreignKey:UserID;references:ID" json:"user,omitempty"`

	OrderType      string     `gorm:"size:10;not null" json:"order_type"`
	NumberOfPeople *int       `json:"number_of_people,omitempty"`
	ScheduledTime  *time.Time `json:"scheduled_time,omitempty"`

	Items       []OrderItem `gorm:"foreignKey:OrderID" json:"items"`
	TotalAmount float64     `gorm:"not null" json:"total_amount"`

	PaymentMethod string  `gorm:"size:10;not null" json:"payment_method"`
	TransactionID *string `gorm:"size:128" json:"transaction_id,omitempty"`
	PaymentStatus string  `gorm:"size:20;not null;default:PENDING;index:idx_orders_payment_status" json:"payment_status"`
	OrderStatus   string  `gorm:"size:12;not null;default:NEW;index:idx_orders_order_status" json:"order_status"`

	CreatedAt time.Time `gorm:"default:(CURRENT_TIMESTAMP AT TIME ZONE 'UTC');index:idx_orders_created_at" json:"created_at"`
	UpdatedAt time.Time `gorm:"default:(CURRENT_TIMESTAMP AT TIME ZONE 'UTC')" json:"updated_at"`
}

func (Order) TableName() string {
	return "orders"
}

// OrderItem is a line captured at order time. Name and unit price are
// snapshots; later catalog edits never change a placed order.
type OrderItem struct {
	ID         uint    `gorm:"primaryKey" json:"id"`
	OrderID    uint    `gorm:"not null;index:idx_order_items_order_id" json:"order_id"`
	MenuItemID uint    `gorm:"not null;index:idx_order_items_menu_item_id" json:"menu_item_id"`
	Name       string  `gorm:"size:100;not null" json:"name"`
	Quantity   int     `gorm:"not null" json:"quantity"`
	UnitPrice  float64 `gorm:"not null" json:"unit_price"`
	Variant    string  `gorm:"size:10;not null;default:SINGLE" json:"variant"`
}

func (OrderItem) TableName() string {
	return "order_items"
}

// Order type constants
const (
	OrderTypeDineIn   = "DINE_IN"
	OrderTypeTakeaway = "TAKEAWAY"
)

// Order item variant constants
const (
	OrderItemVariantSingle = "SINGLE"
	OrderItemVariantHalf   = "HALF"
	OrderItemVariantFull   = "FULL"
)

// Payment method constants
const (
	PaymentMethodCash   = "CASH"
	PaymentMethodOnline = "ONLINE"
)

// Payment status constants
const (
	PaymentStatusPending         = "PENDING"
	PaymentStatusPaid            = "PAID"
	PaymentStatusFailed          = "FAILED"
	PaymentStatusRefundInitiated = "REFUND_INITIATED"
	PaymentStatusRefunded        = "REFUNDED"
)

// Order status constants
const (
	OrderStatusNew       = "NEW"
	OrderStatusPreparing = "PREPARING"
	OrderStatusReady     = "READY"
	OrderStatusCompleted = "COMPLETED"
	OrderStatusCancelled = "CANCELLED"
)

// OrderFilter represents filter criteria for order queries
type OrderFilter struct {
	ID            *uint
	UUID          *uuid.UUID
	OrderNumber   *string
	UserID        *uint
	OrderType     *string
	PaymentStatus *string
	OrderStatus   *string
	CreatedAfter  *time.Time
	CreatedBefore *time.Time
}

// FormatOrderNumber renders a sequence value as the customer-facing order
// number: zero padded to six digits, widening naturally past 999999.
func FormatOrderNumber(seq int64) string {
	return fmt.Sprintf("%06d", seq)
}

func ValidOrderStatus(status string) bool {
	switch status {
	case OrderStatusNew, OrderStatusPreparing, OrderStatusReady, OrderStatusCompleted, OrderStatusCancelled:
		return true
	}
	return false
}

func ValidPaymentStatus(status string) bool {
	switch status {
	case PaymentStatusPending, PaymentStatusPaid, PaymentStatusFailed, PaymentStatusRefundInitiated, PaymentStatusRefunded:
		return true
	}
	return false
}

func (o *Order) CanBeCancelled() bool {
	return o.OrderStatus == OrderStatusNew
}
