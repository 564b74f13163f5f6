// Package repository provides data access layer implementations and interfaces for database operations
package repository

import (
	"context"
	"fmt"

	"gorm.io/gorm"

	"github.com/killaresto/killa-backend/models"
)

// MenuItemRepositoryImpl implements MenuItemRepository interface
type MenuItemRepositoryImpl struct {
	*BaseRepository[models.MenuItem, models.MenuItemFilter]
}

// NewMenuItemRepository creates a new menu item repository
func NewMenuItemRepository(db *gorm.DB) MenuItemRepository {
	return &MenuItemRepositoryImpl{
		BaseRepository: NewBaseRepository[models.MenuItem, models.MenuItemFilter](db),
	}
}

// ByIDs retrieves items for a set of IDs, missing IDs simply absent
func (r *MenuItemRepositoryImpl) ByIDs(ctx context.Context, ids []uint) ([]*models.MenuItem, error) {
	if len(ids) == 0 {
		return nil, nil
	}

	db := r.getDB(ctx)

	var items []*models.MenuItem
	err := db.Where("id IN ?", ids).Find(&items).Error
	if err != nil {
		return nil, fmt.Errorf("failed to find menu items by ids: %w", err)
	}

	return items, nil
}

// ListForMenu retrieves the customer-facing menu, category then name order
func (r *MenuItemRepositoryImpl) ListForMenu(ctx context.Context, includeUnavailable bool) ([]*models.MenuItem, error) {
	db := r.getDB(ctx)

	query := db.Model(&models.MenuItem{})
	if !includeUnavailable {
		query = query.Where("is_available = ?", true)
	}

	var items []*models.MenuItem
	err := query.Order("category ASC, name ASC").Find(&items).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list menu items: %w", err)
	}

	return items, nil
}

// Update persists all mutable fields of the item
func (r *MenuItemRepositoryImpl) Update(ctx context.Context, item *models.MenuItem) error {
	db := r.getDB(ctx)

	err := db.Save(item).Error
	if err != nil {
		return fmt.Errorf("failed to update menu item: %w", err)
	}

	return nil
}

// Delete removes the item from the catalog. Placed orders keep their
// snapshots, so nothing else is touched.
func (r *MenuItemRepositoryImpl) Delete(ctx context.Context, id uint) error {
	db := r.getDB(ctx)

	err := db.Delete(&models.MenuItem{}, id).Error
	if err != nil {
		return fmt.Errorf("failed to delete menu item: %w", err)
	}

	return nil
}

// applyFilter applies filter criteria to a GORM query
func (r *MenuItemRepositoryImpl) applyFilter(query *gorm.DB, filter models.MenuItemFilter) *gorm.DB {
	if filter.ID != nil {
		query = query.Where("id = ?", *filter.ID)
	}

	if len(filter.IDs) > 0 {
		query = query.Where("id IN ?", filter.IDs)
	}

	if filter.Name != nil {
		query = query.Where("name = ?", *filter.Name)
	}

	if filter.Category != nil {
		query = query.Where("category = ?", *filter.Category)
	}

	if filter.SubCategory != nil {
		query = query.Where("sub_category = ?", *filter.SubCategory)
	}

	if filter.PricingType != nil {
		query = query.Where("pricing_type = ?", *filter.PricingType)
	}

	if filter.IsAvailable != nil {
		query = query.Where("is_available = ?", *filter.IsAvailable)
	}

	return query
}

// ByFilter retrieves menu items based on filter criteria
func (r *MenuItemRepositoryImpl) ByFilter(ctx context.Context, filter models.MenuItemFilter, orderBy string, limit, offset int) ([]*models.MenuItem, error) {
	db := r.getDB(ctx)
	query := r.applyFilter(db.Model(&models.MenuItem{}), filter)

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

	var items []*models.MenuItem
	err := query.Find(&items).Error
	if err != nil {
		return nil, err
	}

	return items, nil
}

// Count returns the number of menu items matching the filter
func (r *MenuItemRepositoryImpl) Count(ctx context.Context, filter models.MenuItemFilter) (int64, error) {
	db := r.getDB(ctx)
	query := r.applyFilter(db.Model(&models.MenuItem{}), filter)

	var count int64
	err := query.Count(&count).Error
	if err != nil {
		return 0, err
	}

	return count, nil
}

// Exists checks if any menu item matching the filter exists
func (r *MenuItemRepositoryImpl) Exists(ctx context.Context, filter models.MenuItemFilter) (bool, error) {
	count, err := r.Count(ctx, filter)
	if err != nil {
		return false, err
	}

	return count > 0, nil
}
