// Package dto contains Data Transfer Objects for API request and response structures
package dto

// CreateMenuItemRequest represents the payload for adding a catalog item
type CreateMenuItemRequest struct {
	Name        string   `json:"name" validate:"required,min=2,max=100" example:"Paneer Tikka"`
	Description string   `json:"description" validate:"omitempty,max=1000"`
	Category    string   `json:"category" validate:"required,oneof=veg non-veg drinks" example:"veg"`
	SubCategory string   `json:"sub_category" validate:"required,oneof=INDIAN CHINESE STARTERS SIDES DRINKS" example:"STARTERS"`
	PricingType string   `json:"pricing_type" validate:"required,oneof=SINGLE HALF_FULL" example:"HALF_FULL"`
	Price       *float64 `json:"price" validate:"omitempty,gt=0" example:"250"`
	PriceHalf   *float64 `json:"price_half" validate:"omitempty,gt=0" example:"150"`
	PriceFull   *float64 `json:"price_full" validate:"omitempty,gt=0" example:"280"`
	ImageURL    string   `json:"image_url" validate:"omitempty,url,max=512"`
	IsAvailable *bool    `json:"is_available"`
}

// UpdateMenuItemRequest represents the payload for editing a catalog item.
// Nil fields are left unchanged.
type UpdateMenuItemRequest struct {
	Name        *string  `json:"name" validate:"omitempty,min=2,max=100"`
	Description *string  `json:"description" validate:"omitempty,max=1000"`
	Category    *string  `json:"category" validate:"omitempty,oneof=veg non-veg drinks"`
	SubCategory *string  `json:"sub_category" validate:"omitempty,oneof=INDIAN CHINESE STARTERS SIDES DRINKS"`
	PricingType *string  `json:"pricing_type" validate:"omitempty,oneof=SINGLE HALF_FULL"`
	Price       *float64 `json:"price" validate:"omitempty,gt=0"`
	PriceHalf   *float64 `json:"price_half" validate:"omitempty,gt=0"`
	PriceFull   *float64 `json:"price_full" validate:"omitempty,gt=0"`
	ImageURL    *string  `json:"image_url" validate:"omitempty,url,max=512"`
	IsAvailable *bool    `json:"is_available"`
}

// MenuItemDTO represents a catalog item in responses
type MenuItemDTO struct {
	ID          uint     `json:"id" example:"42"`
	Name        string   `json:"name" example:"Paneer Tikka"`
	Description *string  `json:"description,omitempty"`
	Category    string   `json:"category" example:"veg"`
	SubCategory string   `json:"sub_category" example:"STARTERS"`
	PricingType string   `json:"pricing_type" example:"HALF_FULL"`
	Price       *float64 `json:"price,omitempty"`
	PriceHalf   *float64 `json:"price_half,omitempty"`
	PriceFull   *float64 `json:"price_full,omitempty"`
	ImageURL    *string  `json:"image_url,omitempty"`
	IsAvailable *bool    `json:"is_available"`
	CreatedAt   string   `json:"created_at" example:"2024-01-15T10:30:00Z"`
}

// MenuResponse is the catalog listing payload
type MenuResponse struct {
	Items []MenuItemDTO `json:"items"`
	Total int           `json:"total" example:"18"`
}

// RecommendationsResponse carries recommended catalog items in served order
type RecommendationsResponse struct {
	Items  []MenuItemDTO `json:"items"`
	Source string        `json:"source" example:"MODEL"`
}

// Common error codes for menu operations
const (
	ErrorMenuItemNotFound = "MENU_ITEM_NOT_FOUND"
	ErrorInvalidPricing   = "INVALID_PRICING"
)
