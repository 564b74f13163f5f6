// Package repository provides data access layer implementations and interfaces for database operations
package repository

import (
	"context"
	"fmt"

	"gorm.io/gorm"

	"github.com/killaresto/killa-backend/models"
)

// OrderStatusLogRepositoryImpl implements OrderStatusLogRepository interface
type OrderStatusLogRepositoryImpl struct {
	*BaseRepository[models.OrderStatusLog, models.OrderStatusLogFilter]
}

// NewOrderStatusLogRepository creates a new order status log repository
func NewOrderStatusLogRepository(db *gorm.DB) OrderStatusLogRepository {
	return &OrderStatusLogRepositoryImpl{
		BaseRepository: NewBaseRepository[models.OrderStatusLog, models.OrderStatusLogFilter](db),
	}
}

// ListByOrder retrieves the status trail for an order, oldest first
func (r *OrderStatusLogRepositoryImpl) ListByOrder(ctx context.Context, orderID uint) ([]*models.OrderStatusLog, error) {
	filter := models.OrderStatusLogFilter{OrderID: &orderID}
	logs, err := r.ByFilter(ctx, filter, "id ASC", 0, 0)
	if err != nil {
		return nil, fmt.Errorf("failed to list status logs by order: %w", err)
	}

	return logs, nil
}

// applyFilter applies filter criteria to a GORM query
func (r *OrderStatusLogRepositoryImpl) applyFilter(query *gorm.DB, filter models.OrderStatusLogFilter) *gorm.DB {
	if filter.ID != nil {
		query = query.Where("id = ?", *filter.ID)
	}

	if filter.OrderID != nil {
		query = query.Where("order_id = ?", *filter.OrderID)
	}

	if filter.Status != nil {
		query = query.Where("status = ?", *filter.Status)
	}

	if filter.ChangedBy != nil {
		query = query.Where("changed_by = ?", *filter.ChangedBy)
	}

	if filter.CreatedAfter != nil {
		query = query.Where("created_at > ?", *filter.CreatedAfter)
	}

	if filter.CreatedBefore != nil {
		query = query.Where("created_at < ?", *filter.CreatedBefore)
	}

	return query
}

// ByFilter retrieves status logs based on filter criteria
func (r *OrderStatusLogRepositoryImpl) ByFilter(ctx context.Context, filter models.OrderStatusLogFilter, orderBy string, limit, offset int) ([]*models.OrderStatusLog, error) {
	db := r.getDB(ctx)
	query := r.applyFilter(db.Model(&models.OrderStatusLog{}), filter)

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

	var logs []*models.OrderStatusLog
	err := query.Find(&logs).Error
	if err != nil {
		return nil, err
	}

	return logs, nil
}

// Count returns the number of status logs matching the filter
func (r *OrderStatusLogRepositoryImpl) Count(ctx context.Context, filter models.OrderStatusLogFilter) (int64, error) {
	db := r.getDB(ctx)
	query := r.applyFilter(db.Model(&models.OrderStatusLog{}), filter)

	var count int64
	err := query.Count(&count).Error
	if err != nil {
		return 0, err
	}

	return count, nil
}

// Exists checks if any status log matching the filter exists
func (r *OrderStatusLogRepositoryImpl) Exists(ctx context.Context, filter models.OrderStatusLogFilter) (bool, error) {
	count, err := r.Count(ctx, filter)
	if err != nil {
		return false, err
	}

	return count > 0, nil
}
