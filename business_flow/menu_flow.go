// Package businessflow contains the core business logic and use cases for catalog and recommendation workflows
package businessflow

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"strconv"
	"strings"

	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"

	"github.com/killaresto/killa-backend/app/dto"
	"github.com/killaresto/killa-backend/app/services"
	"github.com/killaresto/killa-backend/models"
	"github.com/killaresto/killa-backend/repository"
	"github.com/killaresto/killa-backend/utils"
)

const fallbackCacheKey = "recommendations:fallback"

// MenuFlow handles the catalog and recommendation use cases
type MenuFlow interface {
	ListMenu(ctx context.Context, includeUnavailable bool) (*dto.MenuResponse, error)
	CreateMenuItem(ctx context.Context, req *dto.CreateMenuItemRequest, metadata *ClientMetadata) (*dto.MenuItemDTO, error)
	UpdateMenuItem(ctx context.Context, id uint, req *dto.UpdateMenuItemRequest, metadata *ClientMetadata) (*dto.MenuItemDTO, error)
	DeleteMenuItem(ctx context.Context, id uint, metadata *ClientMetadata) error
	GetRecommendations(ctx context.Context, userID uint) (*dto.RecommendationsResponse, error)
}

// MenuFlowImpl implements the menu business flow
type MenuFlowImpl struct {
	menuItemRepo repository.MenuItemRepository
	orderRepo    repository.OrderRepository
	recLogRepo   repository.RecommendationLogRepository
	auditRepo    repository.AuditLogRepository
	recClient    services.RecommendationClient
	redisClient  *redis.Client
	db           *gorm.DB
}

// NewMenuFlow creates a new menu flow instance. redisClient may be nil, the
// fallback then skips caching.
func NewMenuFlow(
	menuItemRepo repository.MenuItemRepository,
	orderRepo repository.OrderRepository,
	recLogRepo repository.RecommendationLogRepository,
	auditRepo repository.AuditLogRepository,
	recClient services.RecommendationClient,
	redisClient *redis.Client,
	db *gorm.DB,
) MenuFlow {
	return &MenuFlowImpl{
		menuItemRepo: menuItemRepo,
		orderRepo:    orderRepo,
		recLogRepo:   recLogRepo,
		auditRepo:    auditRepo,
		recClient:    recClient,
		redisClient:  redisClient,
		db:           db,
	}
}

// ListMenu returns the catalog, available items only unless asked otherwise
func (s *MenuFlowImpl) ListMenu(ctx context.Context, includeUnavailable bool) (*dto.MenuResponse, error) {
	items, err := s.menuItemRepo.ListForMenu(ctx, includeUnavailable)
	if err != nil {
		return nil, NewBusinessError("MENU_LIST_FAILED", "Could not list menu", err)
	}

	out := make([]dto.MenuItemDTO, 0, len(items))
	for _, item := range items {
		out = append(out, ToMenuItemDTO(*item))
	}

	return &dto.MenuResponse{Items: out, Total: len(out)}, nil
}

// CreateMenuItem adds a catalog item after checking the prices match the
// pricing type
func (s *MenuFlowImpl) CreateMenuItem(ctx context.Context, req *dto.CreateMenuItemRequest, metadata *ClientMetadata) (*dto.MenuItemDTO, error) {
	if err := validatePricing(req.PricingType, req.Price, req.PriceHalf, req.PriceFull); err != nil {
		return nil, NewBusinessError("INVALID_PRICING", "Pricing does not match pricing type", err)
	}

	item := &models.MenuItem{
		Name:        req.Name,
		Category:    req.Category,
		SubCategory: req.SubCategory,
		PricingType: req.PricingType,
		Price:       req.Price,
		PriceHalf:   req.PriceHalf,
		PriceFull:   req.PriceFull,
		IsAvailable: req.IsAvailable,
	}
	if req.Description != "" {
		item.Description = &req.Description
	}
	if req.ImageURL != "" {
		item.ImageURL = &req.ImageURL
	}
	if item.IsAvailable == nil {
		item.IsAvailable = utils.ToPtr(true)
	}

	if err := s.menuItemRepo.Save(ctx, item); err != nil {
		return nil, NewBusinessError("MENU_ITEM_CREATE_FAILED", "Could not create menu item", err)
	}

	_ = s.createAuditLog(ctx, models.AuditActionMenuItemCreated, fmt.Sprintf("menu item %d created", item.ID), metadata)

	out := ToMenuItemDTO(*item)
	return &out, nil
}

// UpdateMenuItem edits a catalog item, nil request fields stay untouched
func (s *MenuFlowImpl) UpdateMenuItem(ctx context.Context, id uint, req *dto.UpdateMenuItemRequest, metadata *ClientMetadata) (*dto.MenuItemDTO, error) {
	item, err := s.menuItemRepo.ByID(ctx, id)
	if err != nil {
		return nil, NewBusinessError("MENU_ITEM_UPDATE_FAILED", "Could not update menu item", err)
	}
	if item == nil {
		return nil, NewBusinessError("MENU_ITEM_NOT_FOUND", "Menu item not found", ErrMenuItemNotFound)
	}

	if req.Name != nil {
		item.Name = *req.Name
	}
	if req.Description != nil {
		item.Description = req.Description
	}
	if req.Category != nil {
		item.Category = *req.Category
	}
	if req.SubCategory != nil {
		item.SubCategory = *req.SubCategory
	}
	if req.PricingType != nil {
		item.PricingType = *req.PricingType
	}
	if req.Price != nil {
		item.Price = req.Price
	}
	if req.PriceHalf != nil {
		item.PriceHalf = req.PriceHalf
	}
	if req.PriceFull != nil {
		item.PriceFull = req.PriceFull
	}
	if req.ImageURL != nil {
		item.ImageURL = req.ImageURL
	}
	if req.IsAvailable != nil {
		item.IsAvailable = req.IsAvailable
	}

	if err := validatePricing(item.PricingType, item.Price, item.PriceHalf, item.PriceFull); err != nil {
		return nil, NewBusinessError("INVALID_PRICING", "Pricing does not match pricing type", err)
	}

	if err := s.menuItemRepo.Update(ctx, item); err != nil {
		return nil, NewBusinessError("MENU_ITEM_UPDATE_FAILED", "Could not update menu item", err)
	}

	_ = s.createAuditLog(ctx, models.AuditActionMenuItemUpdated, fmt.Sprintf("menu item %d updated", item.ID), metadata)

	out := ToMenuItemDTO(*item)
	return &out, nil
}

// DeleteMenuItem removes a catalog item. Placed orders keep their snapshots.
func (s *MenuFlowImpl) DeleteMenuItem(ctx context.Context, id uint, metadata *ClientMetadata) error {
	item, err := s.menuItemRepo.ByID(ctx, id)
	if err != nil {
		return NewBusinessError("MENU_ITEM_DELETE_FAILED", "Could not delete menu item", err)
	}
	if item == nil {
		return NewBusinessError("MENU_ITEM_NOT_FOUND", "Menu item not found", ErrMenuItemNotFound)
	}

	if err := s.menuItemRepo.Delete(ctx, id); err != nil {
		return NewBusinessError("MENU_ITEM_DELETE_FAILED", "Could not delete menu item", err)
	}

	_ = s.createAuditLog(ctx, models.AuditActionMenuItemDeleted, fmt.Sprintf("menu item %d deleted", id), metadata)
	return nil
}

// GetRecommendations asks the model service for ranked items and falls back
// to popularity when it cannot answer in time. This path never errors out to
// the client as long as the catalog itself is readable.
func (s *MenuFlowImpl) GetRecommendations(ctx context.Context, userID uint) (*dto.RecommendationsResponse, error) {
	source := models.RecommendationSourceModel

	ids, err := s.recommendFromModel(ctx, userID)
	if err != nil {
		log.Printf("recommendation service unavailable, serving fallback: %v", err)
		source = models.RecommendationSourceFallback
		ids, err = s.fallbackRecommendations(ctx)
		if err != nil {
			return nil, NewBusinessError("RECOMMENDATIONS_FAILED", "Could not build recommendations", err)
		}
	}

	items, err := s.resolveRecommendedItems(ctx, ids)
	if err != nil {
		return nil, NewBusinessError("RECOMMENDATIONS_FAILED", "Could not build recommendations", err)
	}

	s.logRecommendation(ctx, userID, items, source)

	out := make([]dto.MenuItemDTO, 0, len(items))
	for _, item := range items {
		out = append(out, ToMenuItemDTO(*item))
	}

	return &dto.RecommendationsResponse{Items: out, Source: source}, nil
}

// Private helper methods

func (s *MenuFlowImpl) recommendFromModel(ctx context.Context, userID uint) ([]uint, error) {
	callCtx, cancel := context.WithTimeout(ctx, utils.RecommendationTimeout)
	defer cancel()

	ids, err := s.recClient.Recommend(callCtx, userID)
	if err != nil {
		return nil, err
	}
	if len(ids) == 0 {
		return nil, ErrRecommenderUnavailable
	}

	return ids, nil
}

// fallbackRecommendations ranks available non-drinks items by how often they
// have been ordered. The ranking is cached since it is the same for everyone.
func (s *MenuFlowImpl) fallbackRecommendations(ctx context.Context) ([]uint, error) {
	if ids, ok := s.cachedFallback(ctx); ok {
		return ids, nil
	}

	popular, err := s.orderRepo.PopularMenuItemIDs(ctx, utils.RecommendationCount*4)
	if err != nil {
		return nil, err
	}

	available, err := s.availableNonDrinks(ctx)
	if err != nil {
		return nil, err
	}

	ids := make([]uint, 0, utils.RecommendationCount)
	for _, id := range popular {
		if _, ok := available[id]; ok {
			ids = append(ids, id)
			if len(ids) == utils.RecommendationCount {
				break
			}
		}
	}

	// No order history yet: serve any available non-drinks items
	if len(ids) < utils.RecommendationCount {
		seen := make(map[uint]bool, len(ids))
		for _, id := range ids {
			seen[id] = true
		}
		for id := range available {
			if !seen[id] {
				ids = append(ids, id)
				if len(ids) == utils.RecommendationCount {
					break
				}
			}
		}
	}

	s.cacheFallback(ctx, ids)
	return ids, nil
}

func (s *MenuFlowImpl) availableNonDrinks(ctx context.Context) (map[uint]struct{}, error) {
	items, err := s.menuItemRepo.ListForMenu(ctx, false)
	if err != nil {
		return nil, err
	}

	available := make(map[uint]struct{}, len(items))
	for _, item := range items {
		if item.Category != models.MenuCategoryDrinks {
			available[item.ID] = struct{}{}
		}
	}

	return available, nil
}

// resolveRecommendedItems loads the recommended items, preserving the served
// order and dropping anything unknown or unavailable
func (s *MenuFlowImpl) resolveRecommendedItems(ctx context.Context, ids []uint) ([]*models.MenuItem, error) {
	items, err := s.menuItemRepo.ByIDs(ctx, ids)
	if err != nil {
		return nil, err
	}

	byID := make(map[uint]*models.MenuItem, len(items))
	for _, item := range items {
		byID[item.ID] = item
	}

	out := make([]*models.MenuItem, 0, len(ids))
	for _, id := range ids {
		item, ok := byID[id]
		if !ok || item.IsAvailable == nil || !*item.IsAvailable {
			continue
		}
		out = append(out, item)
	}

	return out, nil
}

func (s *MenuFlowImpl) cachedFallback(ctx context.Context) ([]uint, bool) {
	if s.redisClient == nil {
		return nil, false
	}

	payload, err := s.redisClient.Get(ctx, fallbackCacheKey).Result()
	if err != nil {
		return nil, false
	}

	var ids []uint
	if err := json.Unmarshal([]byte(payload), &ids); err != nil {
		return nil, false
	}

	return ids, len(ids) > 0
}

func (s *MenuFlowImpl) cacheFallback(ctx context.Context, ids []uint) {
	if s.redisClient == nil || len(ids) == 0 {
		return
	}

	payload, err := json.Marshal(ids)
	if err != nil {
		return
	}

	if err := s.redisClient.Set(ctx, fallbackCacheKey, payload, utils.RecommendationCacheTTL).Err(); err != nil {
		log.Printf("failed to cache fallback recommendations: %v", err)
	}
}

// logRecommendation is best-effort bookkeeping, never fails the request
func (s *MenuFlowImpl) logRecommendation(ctx context.Context, userID uint, items []*models.MenuItem, source string) {
	if len(items) == 0 {
		return
	}

	parts := make([]string, 0, len(items))
	for _, item := range items {
		parts = append(parts, strconv.FormatUint(uint64(item.ID), 10))
	}

	err := s.recLogRepo.Save(ctx, &models.RecommendationLog{
		UserID:      userID,
		MenuItemIDs: strings.Join(parts, ","),
		Source:      source,
	})
	if err != nil {
		log.Printf("failed to record recommendation: %v", err)
	}
}

func (s *MenuFlowImpl) createAuditLog(ctx context.Context, action, description string, metadata *ClientMetadata) error {
	ipAddress := "127.0.0.1"
	userAgent := ""
	if metadata != nil {
		ipAddress = metadata.IPAddress
		userAgent = metadata.UserAgent
	}

	return s.auditRepo.Save(ctx, &models.AuditLog{
		Action:      action,
		Description: &description,
		Success:     utils.ToPtr(true),
		IPAddress:   &ipAddress,
		UserAgent:   &userAgent,
	})
}

// validatePricing checks that the supplied prices match the pricing mode
func validatePricing(pricingType string, price, priceHalf, priceFull *float64) error {
	switch pricingType {
	case models.PricingTypeSingle:
		if price == nil {
			return fmt.Errorf("%w: SINGLE requires price", ErrInvalidPricing)
		}
	case models.PricingTypeHalfFull:
		if priceHalf == nil || priceFull == nil {
			return fmt.Errorf("%w: HALF_FULL requires price_half and price_full", ErrInvalidPricing)
		}
	default:
		return fmt.Errorf("%w: unknown pricing type %s", ErrInvalidPricing, pricingType)
	}
	return nil
}
