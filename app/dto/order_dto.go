// Package dto contains Data Transfer Objects for API request and response structures
package dto

import "time"

// OrderItemRequest represents a single line of an order being placed
type OrderItemRequest struct {
	MenuItemID uint   `json:"menu_item_id" validate:"required" example:"42"`
	Quantity   int    `json:"quantity" validate:"required,min=1" example:"2"`
	Variant    string `json:"variant" validate:"omitempty,oneof=SINGLE HALF FULL" example:"FULL"`
}

// CreateOrderRequest represents the payload for placing an order
type CreateOrderRequest struct {
	OrderType      string             `json:"order_type" validate:"required,oneof=DINE_IN TAKEAWAY" example:"DINE_IN"`
	NumberOfPeople *int               `json:"number_of_people" validate:"omitempty,min=1" example:"4"`
	ScheduledTime  *time.Time         `json:"scheduled_time"`
	Items          []OrderItemRequest `json:"items" validate:"required,min=1,dive"`
	PaymentMethod  string             `json:"payment_method" validate:"required,oneof=CASH ONLINE" example:"CASH"`
	TransactionID  string             `json:"transaction_id" validate:"omitempty,max=128"`
	PaymentStatus  string             `json:"payment_status" validate:"omitempty,oneof=PENDING PAID FAILED REFUND_INITIATED REFUNDED"`
}

// UpdateOrderStatusRequest is the owner-side status correction payload.
// Any status may be set, payment status optionally alongside.
type UpdateOrderStatusRequest struct {
	OrderStatus   string `json:"order_status" validate:"required,oneof=NEW PREPARING READY COMPLETED CANCELLED" example:"PREPARING"`
	PaymentStatus string `json:"payment_status" validate:"omitempty,oneof=PENDING PAID FAILED REFUND_INITIATED REFUNDED"`
}

// OrderItemDTO represents an order line in responses
type OrderItemDTO struct {
	MenuItemID uint    `json:"menu_item_id" example:"42"`
	Name       string  `json:"name" example:"Paneer Tikka"`
	Quantity   int     `json:"quantity" example:"2"`
	UnitPrice  float64 `json:"unit_price" example:"280"`
	Variant    string  `json:"variant" example:"FULL"`
}

// OrderDTO represents an order in responses
type OrderDTO struct {
	ID             uint           `json:"id" example:"17"`
	UUID           string         `json:"uuid" example:"550e8400-e29b-41d4-a716-446655440000"`
	OrderNumber    string         `json:"order_number" example:"000123"`
	OrderType      string         `json:"order_type" example:"DINE_IN"`
	NumberOfPeople *int           `json:"number_of_people,omitempty" example:"4"`
	ScheduledTime  *time.Time     `json:"scheduled_time,omitempty"`
	Items          []OrderItemDTO `json:"items"`
	TotalAmount    float64        `json:"total_amount" example:"560"`
	PaymentMethod  string         `json:"payment_method" example:"CASH"`
	TransactionID  *string        `json:"transaction_id,omitempty"`
	PaymentStatus  string         `json:"payment_status" example:"PENDING"`
	OrderStatus    string         `json:"order_status" example:"NEW"`
	User           *AuthUserDTO   `json:"user,omitempty"`
	CreatedAt      string         `json:"created_at" example:"2024-01-15T10:30:00Z"`
	UpdatedAt      string         `json:"updated_at" example:"2024-01-15T10:30:00Z"`
}

// OrderListResponse is the paginated order listing payload
type OrderListResponse struct {
	Orders []OrderDTO `json:"orders"`
	Total  int        `json:"total" example:"37"`
}

// Common error codes for order operations
const (
	ErrorOrderNotFound       = "ORDER_NOT_FOUND"
	ErrorOrderAccessDenied   = "ORDER_ACCESS_DENIED"
	ErrorOrderNotCancellable = "ORDER_NOT_CANCELLABLE"
	ErrorEmptyOrder          = "EMPTY_ORDER"
	ErrorPeopleRequired      = "NUMBER_OF_PEOPLE_REQUIRED"
	ErrorItemUnavailable     = "MENU_ITEM_UNAVAILABLE"
	ErrorInvalidVariant      = "INVALID_VARIANT"
	ErrorInvalidStatus       = "INVALID_STATUS"
)
