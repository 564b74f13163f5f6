// Package models contains domain entities and business models for the ordering system
package models

import "time"

type MenuItem struct {
	ID          uint    `gorm:"primaryKey" json:"id"`
	Name        string  `gorm:"size:100;not null;index:idx_menu_items_name" json:"name"`
	Description *string `gorm:"type:text" json:"description,omitempty"`
	Category    string  `gorm:"size:20;not null;index:idx_menu_items_category" json:"category"`
	SubCategory string  `gorm:"size:20;not null;index:idx_menu_items_sub_category" json:"sub_category"`

	// Pricing: SINGLE items carry Price, HALF_FULL items carry PriceHalf/PriceFull
	PricingType string   `gorm:"size:10;not null;default:SINGLE" json:"pricing_type"`
	Price       *float64 `json:"price,omitempty"`
	PriceHalf   *float64 `json:"price_half,omitempty"`
	PriceFull   *float64 `json:"price_full,omitempty"`

	ImageURL    *string `gorm:"size:512" json:"image_url,omitempty"`
	IsAvailable *bool   `gorm:"default:true;index:idx_menu_items_is_available" json:"is_available"`

	CreatedAt time.Time `gorm:"default:(CURRENT_TIMESTAMP AT TIME ZONE 'UTC')" json:"created_at"`
	UpdatedAt time.Time `gorm:"default:(CURRENT_TIMESTAMP AT TIME ZONE 'UTC')" json:"updated_at"`
}

func (MenuItem) TableName() string {
	return "menu_items"
}

// Menu category constants
const (
	MenuCategoryVeg    = "veg"
	MenuCategoryNonVeg = "non-veg"
	MenuCategoryDrinks = "drinks"
)

// Menu sub-category constants
const (
	MenuSubCategoryIndian   = "INDIAN"
	MenuSubCategoryChinese  = "CHINESE"
	MenuSubCategoryStarters = "STARTERS"
	MenuSubCategorySides    = "SIDES"
	MenuSubCategoryDrinks   = "DRINKS"
)

// Pricing type constants
const (
	PricingTypeSingle   = "SINGLE"
	PricingTypeHalfFull = "HALF_FULL"
)

// MenuItemFilter represents filter criteria for menu item queries
type MenuItemFilter struct {
	ID          *uint
	IDs         []uint
	Name        *string
	Category    *string
	SubCategory *string
	PricingType *string
	IsAvailable *bool
}

// PriceForVariant resolves the unit price for an ordered variant from the
// item's pricing mode. Returns false when the variant does not apply.
func (m *MenuItem) PriceForVariant(variant string) (float64, bool) {
	switch m.PricingType {
	case PricingTypeSingle:
		if variant != OrderItemVariantSingle || m.Price == nil {
			return 0, false
		}
		return *m.Price, true
	case PricingTypeHalfFull:
		switch variant {
		case OrderItemVariantHalf:
			if m.PriceHalf == nil {
				return 0, false
			}
			return *m.PriceHalf, true
		case OrderItemVariantFull:
			if m.PriceFull == nil {
				return 0, false
			}
			return *m.PriceFull, true
		}
	}
	return 0, false
}
