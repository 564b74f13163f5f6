// Package businessflow contains the business logic for the application.
package businessflow

import (
	"time"

	"github.com/killaresto/killa-backend/app/dto"
	"github.com/killaresto/killa-backend/models"
)

const RequestIDKey = "X-Request-ID"

// ClientMetadata holds all client-related information for audit logging and session tracking
type ClientMetadata struct {
	IPAddress string `json:"ip_address"`
	UserAgent string `json:"user_agent"`
	RequestID string `json:"request_id,omitempty"`
	SessionID string `json:"session_id,omitempty"`
}

// NewClientMetadata creates a new ClientMetadata instance with basic information
func NewClientMetadata(ipAddress, userAgent string) *ClientMetadata {
	return &ClientMetadata{
		IPAddress: ipAddress,
		UserAgent: userAgent,
	}
}

// SetRequestID sets the request ID
func (cm *ClientMetadata) SetRequestID(requestID string) {
	cm.RequestID = requestID
}

// SetSessionID sets the session ID
func (cm *ClientMetadata) SetSessionID(sessionID string) {
	cm.SessionID = sessionID
}

// ToAuthUserDTO converts a user model to AuthUserDTO for authentication responses
func ToAuthUserDTO(user models.User) dto.AuthUserDTO {
	return dto.AuthUserDTO{
		ID:          user.ID,
		UUID:        user.UUID.String(),
		Name:        user.Name,
		Email:       user.Email,
		Mobile:      user.Mobile,
		Role:        user.Role,
		IsActive:    user.IsActive,
		CreatedAt:   user.CreatedAt.Format(time.RFC3339),
		LastLoginAt: dto.FormatTimePtr(user.LastLoginAt),
	}
}

func ToSessionDTO(session models.UserSession) dto.SessionDTO {
	return dto.SessionDTO{
		AccessToken:  session.SessionToken,
		RefreshToken: session.RefreshToken,
		TokenType:    "Bearer",
		ExpiresIn:    int(time.Until(session.ExpiresAt).Seconds()),
		CreatedAt:    session.CreatedAt.Format(time.RFC3339),
	}
}

func ToMenuItemDTO(item models.MenuItem) dto.MenuItemDTO {
	return dto.MenuItemDTO{
		ID:          item.ID,
		Name:        item.Name,
		Description: item.Description,
		Category:    item.Category,
		SubCategory: item.SubCategory,
		PricingType: item.PricingType,
		Price:       item.Price,
		PriceHalf:   item.PriceHalf,
		PriceFull:   item.PriceFull,
		ImageURL:    item.ImageURL,
		IsAvailable: item.IsAvailable,
		CreatedAt:   item.CreatedAt.Format(time.RFC3339),
	}
}

// ToOrderDTO converts an order model to its response shape. The user is
// attached only when preloaded (owner listings).
func ToOrderDTO(order models.Order, withUser bool) dto.OrderDTO {
	items := make([]dto.OrderItemDTO, 0, len(order.Items))
	for _, item := range order.Items {
		items = append(items, dto.OrderItemDTO{
			MenuItemID: item.MenuItemID,
			Name:       item.Name,
			Quantity:   item.Quantity,
			UnitPrice:  item.UnitPrice,
			Variant:    item.Variant,
		})
	}

	out := dto.OrderDTO{
		ID:             order.ID,
		UUID:           order.UUID.String(),
		OrderNumber:    order.OrderNumber,
		OrderType:      order.OrderType,
		NumberOfPeople: order.NumberOfPeople,
		ScheduledTime:  order.ScheduledTime,
		Items:          items,
		TotalAmount:    order.TotalAmount,
		PaymentMethod:  order.PaymentMethod,
		TransactionID:  order.TransactionID,
		PaymentStatus:  order.PaymentStatus,
		OrderStatus:    order.OrderStatus,
		CreatedAt:      order.CreatedAt.Format(time.RFC3339),
		UpdatedAt:      order.UpdatedAt.Format(time.RFC3339),
	}

	if withUser && order.User.ID != 0 {
		user := ToAuthUserDTO(order.User)
		out.User = &user
	}

	return out
}

func ToRatingDTO(rating models.Rating) dto.RatingDTO {
	return dto.RatingDTO{
		ID:        rating.ID,
		OrderID:   rating.OrderID,
		Score:     rating.Score,
		Comment:   rating.Comment,
		CreatedAt: rating.CreatedAt.Format(time.RFC3339),
	}
}
