package models

import "time"

// RecommendationLog records what was served to a user and where it came from.
type RecommendationLog struct {
	ID          uint      `gorm:"primaryKey" json:"id"`
	UserID      uint      `gorm:"not null;index:idx_recommendation_logs_user_id" json:"user_id"`
	User        User      `gorm:"foreignKey:UserID;references:ID" json:"user,omitempty"`
	MenuItemIDs string    `gorm:"type:text;not null" json:"menu_item_ids"` // comma-joined, in served order
	Source      string    `gorm:"size:10;not null" json:"source"`
	CreatedAt   time.Time `gorm:"default:CURRENT_TIMESTAMP;index:idx_recommendation_logs_created_at" json:"created_at"`
}

func (RecommendationLog) TableName() string {
	return "recommendation_logs"
}

// Recommendation source constants
const (
	RecommendationSourceModel    = "MODEL"
	RecommendationSourceFallback = "FALLBACK"
)

// RecommendationLogFilter represents filter criteria for recommendation log queries
type RecommendationLogFilter struct {
	ID            *uint
	UserID        *uint
	Source        *string
	CreatedAfter  *time.Time
	CreatedBefore *time.Time
}
