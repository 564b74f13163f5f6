// Package models contains domain entities and business models for the ordering system
package models

import "time"

// Rating holds one rating per order. The unique index on order_id is the
// backstop for concurrent double submissions.
type Rating struct {
	ID      uint    `gorm:"primaryKey" json:"id"`
	OrderID uint    `gorm:"not null;uniqueIndex:uk_ratings_order_id" json:"order_id"`
	Order   Order   `gorm:"foreignKey:OrderID;references:ID" json:"order,omitempty"`
	UserID  uint    `gorm:"not null;index:idx_ratings_user_id" json:"user_id"`
	User    User    `gorm:"foreignKey:UserID;references:ID" json:"user,omitempty"`
	Score   int     `gorm:"not null" json:"score"` // 0 means the user declined to rate
	Comment *string `gorm:"type:text" json:"comment,omitempty"`

	CreatedAt time.Time `gorm:"default:(CURRENT_TIMESTAMP AT TIME ZONE 'UTC')" json:"created_at"`
}

func (Rating) TableName() string {
	return "ratings"
}

// Rating score bounds
const (
	RatingScoreMin = 0
	RatingScoreMax = 5
)

// RatingFilter represents filter criteria for rating queries
type RatingFilter struct {
	ID            *uint
	OrderID       *uint
	UserID        *uint
	Score         *int
	CreatedAfter  *time.Time
	CreatedBefore *time.Time
}

func ValidRatingScore(score int) bool {
	return score >= RatingScoreMin && score <= RatingScoreMax
}
