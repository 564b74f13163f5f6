// Package repository provides data access layer implementations and interfaces for database operations
package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/killaresto/killa-backend/models"
)

// OrderRepositoryImpl implements OrderRepository interface
type OrderRepositoryImpl struct {
	*BaseRepository[models.Order, models.OrderFilter]
}

// NewOrderRepository creates a new order repository
func NewOrderRepository(db *gorm.DB) OrderRepository {
	return &OrderRepositoryImpl{
		BaseRepository: NewBaseRepository[models.Order, models.OrderFilter](db),
	}
}

// ByID retrieves an order with its line items
func (r *OrderRepositoryImpl) ByID(ctx context.Context, id uint) (*models.Order, error) {
	db := r.getDB(ctx)

	var order models.Order
	err := db.Preload("Items").Last(&order, id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to find order by ID %d: %w", id, err)
	}

	return &order, nil
}

// ByUUID retrieves an order by public UUID with its line items
func (r *OrderRepositoryImpl) ByUUID(ctx context.Context, id uuid.UUID) (*models.Order, error) {
	db := r.getDB(ctx)

	var order models.Order
	err := db.Preload("Items").Where("uuid = ?", id).First(&order).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to find order by uuid: %w", err)
	}

	return &order, nil
}

// ListByUser retrieves a user's orders, newest first
func (r *OrderRepositoryImpl) ListByUser(ctx context.Context, userID uint, limit, offset int) ([]*models.Order, error) {
	db := r.getDB(ctx)

	query := db.Where("user_id = ?", userID).
		Order("created_at DESC").
		Preload("Items")
	if limit > 0 {
		query = query.Limit(limit)
	}
	if offset > 0 {
		query = query.Offset(offset)
	}

	var orders []*models.Order
	err := query.Find(&orders).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list orders by user: %w", err)
	}

	return orders, nil
}

// ListAll retrieves orders across all users, newest first, with the placing
// user preloaded for the owner dashboard
func (r *OrderRepositoryImpl) ListAll(ctx context.Context, filter models.OrderFilter, limit, offset int) ([]*models.Order, error) {
	db := r.getDB(ctx)

	query := r.applyFilter(db.Model(&models.Order{}), filter).
		Order("created_at DESC").
		Preload("Items").
		Preload("User")
	if limit > 0 {
		query = query.Limit(limit)
	}
	if offset > 0 {
		query = query.Offset(offset)
	}

	var orders []*models.Order
	err := query.Find(&orders).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list orders: %w", err)
	}

	return orders, nil
}

// Update persists mutable order fields. Line items are snapshots and are
// never rewritten here.
func (r *OrderRepositoryImpl) Update(ctx context.Context, order *models.Order) error {
	db := r.getDB(ctx)

	err := db.Omit("Items", "User").Save(order).Error
	if err != nil {
		return fmt.Errorf("failed to update order: %w", err)
	}

	return nil
}

// PopularMenuItemIDs ranks menu items by how many times they were ordered
func (r *OrderRepositoryImpl) PopularMenuItemIDs(ctx context.Context, limit int) ([]uint, error) {
	db := r.getDB(ctx)

	var ids []uint
	err := db.Model(&models.OrderItem{}).
		Select("menu_item_id").
		Group("menu_item_id").
		Order("SUM(quantity) DESC").
		Limit(limit).
		Pluck("menu_item_id", &ids).Error
	if err != nil {
		return nil, fmt.Errorf("failed to rank popular menu items: %w", err)
	}

	return ids, nil
}

// applyFilter applies filter criteria to a GORM query
func (r *OrderRepositoryImpl) applyFilter(query *gorm.DB, filter models.OrderFilter) *gorm.DB {
	if filter.ID != nil {
		query = query.Where("id = ?", *filter.ID)
	}

	if filter.UUID != nil {
		query = query.Where("uuid = ?", *filter.UUID)
	}

	if filter.OrderNumber != nil {
		query = query.Where("order_number = ?", *filter.OrderNumber)
	}

	if filter.UserID != nil {
		query = query.Where("user_id = ?", *filter.UserID)
	}

	if filter.OrderType != nil {
		query = query.Where("order_type = ?", *filter.OrderType)
	}

	if filter.PaymentStatus != nil {
		query = query.Where("payment_status = ?", *filter.PaymentStatus)
	}

	if filter.OrderStatus != nil {
		query = query.Where("order_status = ?", *filter.OrderStatus)
	}

	if filter.CreatedAfter != nil {
		query = query.Where("created_at > ?", *filter.CreatedAfter)
	}

	if filter.CreatedBefore != nil {
		query = query.Where("created_at < ?", *filter.CreatedBefore)
	}

	return query
}

// ByFilter retrieves orders based on filter criteria
func (r *OrderRepositoryImpl) ByFilter(ctx context.Context, filter models.OrderFilter, orderBy string, limit, offset int) ([]*models.Order, error) {
	db := r.getDB(ctx)
	query := r.applyFilter(db.Model(&models.Order{}), filter)

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

	var orders []*models.Order
	err := query.Preload("Items").Find(&orders).Error
	if err != nil {
		return nil, err
	}

	return orders, nil
}

// Count returns the number of orders matching the filter
func (r *OrderRepositoryImpl) Count(ctx context.Context, filter models.OrderFilter) (int64, error) {
	db := r.getDB(ctx)
	query := r.applyFilter(db.Model(&models.Order{}), filter)

	var count int64
	err := query.Count(&count).Error
	if err != nil {
		return 0, err
	}

	return count, nil
}

// Exists checks if any order matching the filter exists
func (r *OrderRepositoryImpl) Exists(ctx context.Context, filter models.OrderFilter) (bool, error) {
	count, err := r.Count(ctx, filter)
	if err != nil {
		return false, err
	}

	return count > 0, nil
}
