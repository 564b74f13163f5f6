// Package dto contains Data Transfer Objects for API request and response structures
package dto

// SubmitRatingRequest represents the payload for rating a completed order.
// Score 0 records that the user declined to rate.
type SubmitRatingRequest struct {
	OrderID uint   `json:"order_id" validate:"required" example:"17"`
	Score   int    `json:"score" validate:"min=0,max=5" example:"4"`
	Comment string `json:"comment" validate:"omitempty,max=1000"`
}

// RatingDTO represents a rating in responses
type RatingDTO struct {
	ID        uint    `json:"id" example:"9"`
	OrderID   uint    `json:"order_id" example:"17"`
	Score     int     `json:"score" example:"4"`
	Comment   *string `json:"comment,omitempty"`
	CreatedAt string  `json:"created_at" example:"2024-01-15T10:30:00Z"`
}

// Common error codes for rating operations
const (
	ErrorAlreadyRated = "ORDER_ALREADY_RATED"
	ErrorInvalidScore = "INVALID_SCORE"
)
