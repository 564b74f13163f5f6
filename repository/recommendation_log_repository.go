// Package repository provides data access layer implementations and interfaces for database operations
package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/killaresto/killa-backend/models"
)

// RecommendationLogRepositoryImpl implements RecommendationLogRepository interface
type RecommendationLogRepositoryImpl struct {
	*BaseRepository[models.RecommendationLog, models.RecommendationLogFilter]
}

// NewRecommendationLogRepository creates a new recommendation log repository
func NewRecommendationLogRepository(db *gorm.DB) RecommendationLogRepository {
	return &RecommendationLogRepositoryImpl{
		BaseRepository: NewBaseRepository[models.RecommendationLog, models.RecommendationLogFilter](db),
	}
}

// applyFilter applies filter criteria to a GORM query
func (r *RecommendationLogRepositoryImpl) applyFilter(query *gorm.DB, filter models.RecommendationLogFilter) *gorm.DB {
	if filter.ID != nil {
		query = query.Where("id = ?", *filter.ID)
	}

	if filter.UserID != nil {
		query = query.Where("user_id = ?", *filter.UserID)
	}

	if filter.Source != nil {
		query = query.Where("source = ?", *filter.Source)
	}

	if filter.CreatedAfter != nil {
		query = query.Where("created_at > ?", *filter.CreatedAfter)
	}

	if filter.CreatedBefore != nil {
		query = query.Where("created_at < ?", *filter.CreatedBefore)
	}

	return query
}

// ByFilter retrieves recommendation logs based on filter criteria
func (r *RecommendationLogRepositoryImpl) ByFilter(ctx context.Context, filter models.RecommendationLogFilter, orderBy string, limit, offset int) ([]*models.RecommendationLog, error) {
	db := r.getDB(ctx)
	query := r.applyFilter(db.Model(&models.RecommendationLog{}), filter)

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

	var logs []*models.RecommendationLog
	err := query.Find(&logs).Error
	if err != nil {
		return nil, err
	}

	return logs, nil
}

// Count returns the number of recommendation logs matching the filter
func (r *RecommendationLogRepositoryImpl) Count(ctx context.Context, filter models.RecommendationLogFilter) (int64, error) {
	db := r.getDB(ctx)
	query := r.applyFilter(db.Model(&models.RecommendationLog{}), filter)

	var count int64
	err := query.Count(&count).Error
	if err != nil {
		return 0, err
	}

	return count, nil
}

// Exists checks if any recommendation log matching the filter exists
func (r *RecommendationLogRepositoryImpl) Exists(ctx context.Context, filter models.RecommendationLogFilter) (bool, error) {
	count, err := r.Count(ctx, filter)
	if err != nil {
		return false, err
	}

	return count > 0, nil
}
