// Package businessflow contains the core business logic and use cases for order workflows
package businessflow

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/killaresto/killa-backend/app/dto"
	"github.com/killaresto/killa-backend/models"
	"github.com/killaresto/killa-backend/repository"
	"github.com/killaresto/killa-backend/utils"
)

// OrderFlow handles order placement and lifecycle transitions
type OrderFlow interface {
	CreateOrder(ctx context.Context, userID uint, req *dto.CreateOrderRequest, metadata *ClientMetadata) (*dto.OrderDTO, error)
	CancelOrder(ctx context.Context, userID uint, orderID uint, metadata *ClientMetadata) (*dto.OrderDTO, error)
	UpdateOrderStatus(ctx context.Context, orderID uint, req *dto.UpdateOrderStatusRequest, metadata *ClientMetadata) (*dto.OrderDTO, error)
	ListMyOrders(ctx context.Context, userID uint, limit, offset int) (*dto.OrderListResponse, error)
	ListAllOrders(ctx context.Context, filter models.OrderFilter, limit, offset int) (*dto.OrderListResponse, error)
}

// OrderFlowImpl implements the order business flow
type OrderFlowImpl struct {
	orderRepo     repository.OrderRepository
	menuItemRepo  repository.MenuItemRepository
	sequenceRepo  repository.SequenceCounterRepository
	statusLogRepo repository.OrderStatusLogRepository
	auditRepo     repository.AuditLogRepository
	db            *gorm.DB
}

// NewOrderFlow creates a new order flow instance
func NewOrderFlow(
	orderRepo repository.OrderRepository,
	menuItemRepo repository.MenuItemRepository,
	sequenceRepo repository.SequenceCounterRepository,
	statusLogRepo repository.OrderStatusLogRepository,
	auditRepo repository.AuditLogRepository,
	db *gorm.DB,
) OrderFlow {
	return &OrderFlowImpl{
		orderRepo:     orderRepo,
		menuItemRepo:  menuItemRepo,
		sequenceRepo:  sequenceRepo,
		statusLogRepo: statusLogRepo,
		auditRepo:     auditRepo,
		db:            db,
	}
}

// CreateOrder validates the lines against the catalog, reserves the next
// order number and persists everything in one transaction
func (s *OrderFlowImpl) CreateOrder(ctx context.Context, userID uint, req *dto.CreateOrderRequest, metadata *ClientMetadata) (*dto.OrderDTO, error) {
	if len(req.Items) == 0 {
		return nil, NewBusinessError("EMPTY_ORDER", "Order has no items", ErrEmptyOrder)
	}
	if req.OrderType == models.OrderTypeDineIn && (req.NumberOfPeople == nil || *req.NumberOfPeople <= 0) {
		return nil, NewBusinessError("NUMBER_OF_PEOPLE_REQUIRED", "Number of people is required for dine-in orders", ErrNumberOfPeopleRequired)
	}

	var order *models.Order
	err := repository.WithTransaction(ctx, s.db, func(txCtx context.Context) error {
		items, total, err := s.buildOrderItems(txCtx, req.Items)
		if err != nil {
			return err
		}

		seq, err := s.sequenceRepo.Next(txCtx, models.SequenceOrderNumber)
		if err != nil {
			return fmt.Errorf("failed to reserve order number: %w", err)
		}

		paymentStatus := models.PaymentStatusPending
		if req.PaymentStatus != "" {
			paymentStatus = req.PaymentStatus
		}

		var transactionID *string
		if req.TransactionID != "" {
			transactionID = &req.TransactionID
		}

		order = &models.Order{
			UUID:           uuid.New(),
			OrderNumber:    models.FormatOrderNumber(seq),
			UserID:         userID,
			OrderType:      req.OrderType,
			NumberOfPeople: req.NumberOfPeople,
			ScheduledTime:  req.ScheduledTime,
			Items:          items,
			TotalAmount:    total,
			PaymentMethod:  req.PaymentMethod,
			TransactionID:  transactionID,
			PaymentStatus:  paymentStatus,
			OrderStatus:    models.OrderStatusNew,
		}

		if err := s.orderRepo.Save(txCtx, order); err != nil {
			return err
		}

		return s.appendStatusLog(txCtx, order.ID, order.OrderStatus, models.StatusChangedBySystem)
	})

	if err != nil {
		errMsg := fmt.Sprintf("order placement failed: %s", err.Error())
		_ = s.createAuditLog(ctx, userID, models.AuditActionOrderPlaced, errMsg, false, &errMsg, metadata)
		return nil, wrapOrderError("ORDER_CREATE_FAILED", "Order placement failed", err)
	}

	_ = s.createAuditLog(ctx, userID, models.AuditActionOrderPlaced, fmt.Sprintf("order %s placed", order.OrderNumber), true, nil, metadata)

	out := ToOrderDTO(*order, false)
	return &out, nil
}

// CancelOrder lets a user withdraw their own order while it is still NEW
func (s *OrderFlowImpl) CancelOrder(ctx context.Context, userID uint, orderID uint, metadata *ClientMetadata) (*dto.OrderDTO, error) {
	var order *models.Order
	err := repository.WithTransaction(ctx, s.db, func(txCtx context.Context) error {
		var err error
		order, err = s.orderRepo.ByID(txCtx, orderID)
		if err != nil {
			return err
		}
		if order == nil {
			return ErrOrderNotFound
		}
		if order.UserID != userID {
			return ErrOrderAccessDenied
		}
		if !order.CanBeCancelled() {
			return ErrOrderNotCancellable
		}

		order.OrderStatus = models.OrderStatusCancelled
		if err := s.orderRepo.Update(txCtx, order); err != nil {
			return err
		}

		return s.appendStatusLog(txCtx, order.ID, models.OrderStatusCancelled, models.StatusChangedByUser)
	})

	if err != nil {
		errMsg := fmt.Sprintf("order cancellation failed: %s", err.Error())
		_ = s.createAuditLog(ctx, userID, models.AuditActionOrderCancelled, errMsg, false, &errMsg, metadata)
		return nil, wrapOrderError("ORDER_CANCEL_FAILED", "Order cancellation failed", err)
	}

	_ = s.createAuditLog(ctx, userID, models.AuditActionOrderCancelled, fmt.Sprintf("order %s cancelled", order.OrderNumber), true, nil, metadata)

	out := ToOrderDTO(*order, false)
	return &out, nil
}

// UpdateOrderStatus is the owner-side correction path. Any status may be
// set regardless of the current one, so staff can undo mistakes.
func (s *OrderFlowImpl) UpdateOrderStatus(ctx context.Context, orderID uint, req *dto.UpdateOrderStatusRequest, metadata *ClientMetadata) (*dto.OrderDTO, error) {
	if !models.ValidOrderStatus(req.OrderStatus) {
		return nil, NewBusinessError("INVALID_STATUS", "Invalid order status", ErrInvalidOrderStatus)
	}
	if req.PaymentStatus != "" && !models.ValidPaymentStatus(req.PaymentStatus) {
		return nil, NewBusinessError("INVALID_STATUS", "Invalid payment status", ErrInvalidPaymentStatus)
	}

	var order *models.Order
	err := repository.WithTransaction(ctx, s.db, func(txCtx context.Context) error {
		var err error
		order, err = s.orderRepo.ByID(txCtx, orderID)
		if err != nil {
			return err
		}
		if order == nil {
			return ErrOrderNotFound
		}

		order.OrderStatus = req.OrderStatus
		if req.PaymentStatus != "" {
			order.PaymentStatus = req.PaymentStatus
		}

		if err := s.orderRepo.Update(txCtx, order); err != nil {
			return err
		}

		return s.appendStatusLog(txCtx, order.ID, order.OrderStatus, models.StatusChangedByOwner)
	})

	if err != nil {
		errMsg := fmt.Sprintf("status update failed: %s", err.Error())
		_ = s.createAuditLog(ctx, 0, models.AuditActionOrderStatusUpdated, errMsg, false, &errMsg, metadata)
		return nil, wrapOrderError("ORDER_STATUS_UPDATE_FAILED", "Status update failed", err)
	}

	_ = s.createAuditLog(ctx, 0, models.AuditActionOrderStatusUpdated, fmt.Sprintf("order %s -> %s", order.OrderNumber, order.OrderStatus), true, nil, metadata)

	out := ToOrderDTO(*order, false)
	return &out, nil
}

// ListMyOrders returns the caller's orders, newest first
func (s *OrderFlowImpl) ListMyOrders(ctx context.Context, userID uint, limit, offset int) (*dto.OrderListResponse, error) {
	orders, err := s.orderRepo.ListByUser(ctx, userID, limit, offset)
	if err != nil {
		return nil, NewBusinessError("ORDER_LIST_FAILED", "Could not list orders", err)
	}

	total, err := s.orderRepo.Count(ctx, models.OrderFilter{UserID: &userID})
	if err != nil {
		return nil, NewBusinessError("ORDER_LIST_FAILED", "Could not list orders", err)
	}

	return buildOrderListResponse(orders, int(total), false), nil
}

// ListAllOrders returns every order for the owner dashboard, newest first,
// with the placing user attached
func (s *OrderFlowImpl) ListAllOrders(ctx context.Context, filter models.OrderFilter, limit, offset int) (*dto.OrderListResponse, error) {
	orders, err := s.orderRepo.ListAll(ctx, filter, limit, offset)
	if err != nil {
		return nil, NewBusinessError("ORDER_LIST_FAILED", "Could not list orders", err)
	}

	total, err := s.orderRepo.Count(ctx, filter)
	if err != nil {
		return nil, NewBusinessError("ORDER_LIST_FAILED", "Could not list orders", err)
	}

	return buildOrderListResponse(orders, int(total), true), nil
}

// Private helper methods

// buildOrderItems resolves every requested line against the catalog and
// snapshots name and unit price. Unknown, unavailable or mispriced items
// fail the whole order.
func (s *OrderFlowImpl) buildOrderItems(ctx context.Context, reqItems []dto.OrderItemRequest) ([]models.OrderItem, float64, error) {
	ids := make([]uint, 0, len(reqItems))
	for _, line := range reqItems {
		ids = append(ids, line.MenuItemID)
	}

	menuItems, err := s.menuItemRepo.ByIDs(ctx, ids)
	if err != nil {
		return nil, 0, err
	}

	byID := make(map[uint]*models.MenuItem, len(menuItems))
	for _, item := range menuItems {
		byID[item.ID] = item
	}

	items := make([]models.OrderItem, 0, len(reqItems))
	var total float64

	for _, line := range reqItems {
		menuItem, ok := byID[line.MenuItemID]
		if !ok {
			return nil, 0, fmt.Errorf("%w: item %d", ErrMenuItemNotFound, line.MenuItemID)
		}
		if menuItem.IsAvailable == nil || !*menuItem.IsAvailable {
			return nil, 0, fmt.Errorf("%w: %s", ErrMenuItemUnavailable, menuItem.Name)
		}

		variant := line.Variant
		if variant == "" {
			variant = models.OrderItemVariantSingle
		}

		unitPrice, ok := menuItem.PriceForVariant(variant)
		if !ok {
			return nil, 0, fmt.Errorf("%w: %s does not offer %s", ErrInvalidVariant, menuItem.Name, variant)
		}

		items = append(items, models.OrderItem{
			MenuItemID: menuItem.ID,
			Name:       menuItem.Name,
			Quantity:   line.Quantity,
			UnitPrice:  unitPrice,
			Variant:    variant,
		})
		total += unitPrice * float64(line.Quantity)
	}

	return items, total, nil
}

func (s *OrderFlowImpl) appendStatusLog(ctx context.Context, orderID uint, status, changedBy string) error {
	return s.statusLogRepo.Save(ctx, &models.OrderStatusLog{
		OrderID:   orderID,
		Status:    status,
		ChangedBy: changedBy,
	})
}

func (s *OrderFlowImpl) createAuditLog(ctx context.Context, userID uint, action, description string, success bool, errorMsg *string, metadata *ClientMetadata) error {
	var userIDPtr *uint
	if userID != 0 {
		userIDPtr = &userID
	}

	ipAddress := "127.0.0.1"
	userAgent := ""
	if metadata != nil {
		ipAddress = metadata.IPAddress
		userAgent = metadata.UserAgent
	}

	audit := &models.AuditLog{
		UserID:       userIDPtr,
		Action:       action,
		Description:  &description,
		Success:      utils.ToPtr(success),
		IPAddress:    &ipAddress,
		UserAgent:    &userAgent,
		ErrorMessage: errorMsg,
	}

	return s.auditRepo.Save(ctx, audit)
}

func buildOrderListResponse(orders []*models.Order, total int, withUser bool) *dto.OrderListResponse {
	out := make([]dto.OrderDTO, 0, len(orders))
	for _, order := range orders {
		out = append(out, ToOrderDTO(*order, withUser))
	}
	return &dto.OrderListResponse{Orders: out, Total: total}
}

// wrapOrderError preserves the sentinel through the business error so
// handlers can pick the right HTTP status
func wrapOrderError(code, message string, err error) *BusinessError {
	switch {
	case IsOrderNotFound(err):
		return NewBusinessError("ORDER_NOT_FOUND", "Order not found", err)
	case IsOrderAccessDenied(err):
		return NewBusinessError("ORDER_ACCESS_DENIED", "Order access denied", err)
	case IsOrderNotCancellable(err):
		return NewBusinessError("ORDER_NOT_CANCELLABLE", "Order can no longer be cancelled", err)
	case IsMenuItemNotFound(err):
		return NewBusinessError("MENU_ITEM_NOT_FOUND", "Menu item not found", err)
	case IsMenuItemUnavailable(err):
		return NewBusinessError("MENU_ITEM_UNAVAILABLE", "Menu item is unavailable", err)
	case IsInvalidVariant(err):
		return NewBusinessError("INVALID_VARIANT", "Variant does not match item pricing", err)
	default:
		return NewBusinessError(code, message, err)
	}
}
