// Package repository provides data access layer implementations and interfaces for database operations
package repository

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"

	"github.com/killaresto/killa-backend/models"
)

// RatingRepositoryImpl implements RatingRepository interface
type RatingRepositoryImpl struct {
	*BaseRepository[models.Rating, models.RatingFilter]
}

// NewRatingRepository creates a new rating repository
func NewRatingRepository(db *gorm.DB) RatingRepository {
	return &RatingRepositoryImpl{
		BaseRepository: NewBaseRepository[models.Rating, models.RatingFilter](db),
	}
}

// ByOrderID retrieves the rating for an order, nil when unrated
func (r *RatingRepositoryImpl) ByOrderID(ctx context.Context, orderID uint) (*models.Rating, error) {
	db := r.getDB(ctx)

	var rating models.Rating
	err := db.Where("order_id = ?", orderID).First(&rating).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to find rating by order: %w", err)
	}

	return &rating, nil
}

// applyFilter applies filter criteria to a GORM query
func (r *RatingRepositoryImpl) applyFilter(query *gorm.DB, filter models.RatingFilter) *gorm.DB {
	if filter.ID != nil {
		query = query.Where("id = ?", *filter.ID)
	}

	if filter.OrderID != nil {
		query = query.Where("order_id = ?", *filter.OrderID)
	}

	if filter.UserID != nil {
		query = query.Where("user_id = ?", *filter.UserID)
	}

	if filter.Score != nil {
		query = query.Where("score = ?", *filter.Score)
	}

	if filter.CreatedAfter != nil {
		query = query.Where("created_at > ?", *filter.CreatedAfter)
	}

	if filter.CreatedBefore != nil {
		query = query.Where("created_at < ?", *filter.CreatedBefore)
	}

	return query
}

// ByFilter retrieves ratings based on filter criteria
func (r *RatingRepositoryImpl) ByFilter(ctx context.Context, filter models.RatingFilter, orderBy string, limit, offset int) ([]*models.Rating, error) {
	db := r.getDB(ctx)
	query := r.applyFilter(db.Model(&models.Rating{}), filter)

	if orderBy == "" {
		orderBy = "id DESC"
	}
	query = query.Order(orderBy)

	if limit > 0 {
		query = query.Limit(limit)
	}
	if offset > 0 {
		query = query.Offset(offset)
	}

	var ratings []*models.Rating
	err := query.Find(&ratings).Error
	if err != nil {
		return nil, err
	}

	return ratings, nil
}

// Count returns the number of ratings matching the filter
func (r *RatingRepositoryImpl) Count(ctx context.Context, filter models.RatingFilter) (int64, error) {
	db := r.getDB(ctx)
	query := r.applyFilter(db.Model(&models.Rating{}), filter)

	var count int64
	err := query.Count(&count).Error
	if err != nil {
		return 0, err
	}

	return count, nil
}

// Exists checks if any rating matching the filter exists
func (r *RatingRepositoryImpl) Exists(ctx context.Context, filter models.RatingFilter) (bool, error) {
	count, err := r.Count(ctx, filter)
	if err != nil {
		return false, err
	}

	return count > 0, nil
}
