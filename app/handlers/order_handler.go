// Package handlers contains HTTP request handlers and presentation layer logic for the API endpoints
package handlers

import (
	"log"
	"strconv"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v3"

	"github.com/killaresto/killa-backend/app/dto"
	"github.com/killaresto/killa-backend/app/middleware"
	businessflow "github.com/killaresto/killa-backend/business_flow"
	"github.com/killaresto/killa-backend/models"
)

// OrderHandlerInterface defines the contract for order handlers
type OrderHandlerInterface interface {
	CreateOrder(c fiber.Ctx) error
	ListMyOrders(c fiber.Ctx) error
	CancelOrder(c fiber.Ctx) error
	ListAllOrders(c fiber.Ctx) error
	UpdateOrderStatus(c fiber.Ctx) error
}

// OrderHandler handles order-related HTTP requests
type OrderHandler struct {
	orderFlow businessflow.OrderFlow
	validator *validator.Validate
}

// NewOrderHandler creates a new order handler
func NewOrderHandler(orderFlow businessflow.OrderFlow) *OrderHandler {
	return &OrderHandler{
		orderFlow: orderFlow,
		validator: newValidator(),
	}
}

func (h *OrderHandler) ErrorResponse(c fiber.Ctx, statusCode int, message, errorCode string, details any) error {
	return c.Status(statusCode).JSON(dto.APIResponse{
		Success: false,
		Message: message,
		Error: dto.ErrorDetail{
			Code:    errorCode,
			Details: details,
		},
	})
}

func (h *OrderHandler) SuccessResponse(c fiber.Ctx, statusCode int, message string, data any) error {
	return c.Status(statusCode).JSON(dto.APIResponse{
		Success: true,
		Message: message,
		Data:    data,
	})
}

// CreateOrder places a new order for the authenticated user
func (h *OrderHandler) CreateOrder(c fiber.Ctx) error {
	userID, ok := middleware.GetUserIDFromContext(c)
	if !ok {
		return h.ErrorResponse(c, fiber.StatusUnauthorized, "Authentication required", "AUTHENTICATION_REQUIRED", nil)
	}

	var req dto.CreateOrderRequest
	if err := c.Bind().JSON(&req); err != nil {
		return h.ErrorResponse(c, fiber.StatusBadRequest, "Invalid request body", "INVALID_REQUEST", err.Error())
	}

	if err := h.validator.Struct(&req); err != nil {
		return h.ErrorResponse(c, fiber.StatusBadRequest, "Validation failed", "VALIDATION_ERROR", validationErrorList(err))
	}

	result, err := h.orderFlow.CreateOrder(createRequestContext(c, "/api/v1/orders"), userID, &req, clientMetadata(c))
	if err != nil {
		if businessflow.IsEmptyOrder(err) {
			return h.ErrorResponse(c, fiber.StatusBadRequest, "Order has no items", dto.ErrorEmptyOrder, nil)
		}
		if businessflow.IsNumberOfPeopleRequired(err) {
			return h.ErrorResponse(c, fiber.StatusBadRequest, "Number of people is required for dine-in orders", dto.ErrorPeopleRequired, nil)
		}
		if businessflow.IsMenuItemNotFound(err) {
			return h.ErrorResponse(c, fiber.StatusBadRequest, "Menu item not found", dto.ErrorMenuItemNotFound, nil)
		}
		if businessflow.IsMenuItemUnavailable(err) {
			return h.ErrorResponse(c, fiber.StatusBadRequest, "Menu item is unavailable", dto.ErrorItemUnavailable, nil)
		}
		if businessflow.IsInvalidVariant(err) {
			return h.ErrorResponse(c, fiber.StatusBadRequest, "Variant does not match item pricing", dto.ErrorInvalidVariant, nil)
		}

		log.Println("Order placement failed", err)
		return h.ErrorResponse(c, fiber.StatusInternalServerError, "Order placement failed", "ORDER_CREATE_FAILED", nil)
	}

	middleware.RecordOrderPlaced(req.OrderType)

	return h.SuccessResponse(c, fiber.StatusCreated, "Order placed", result)
}

// ListMyOrders returns the caller's orders, newest first
func (h *OrderHandler) ListMyOrders(c fiber.Ctx) error {
	userID, ok := middleware.GetUserIDFromContext(c)
	if !ok {
		return h.ErrorResponse(c, fiber.StatusUnauthorized, "Authentication required", "AUTHENTICATION_REQUIRED", nil)
	}

	limit, offset := parsePagination(c)

	result, err := h.orderFlow.ListMyOrders(createRequestContext(c, "/api/v1/orders/my-orders"), userID, limit, offset)
	if err != nil {
		log.Println("Order listing failed", err)
		return h.ErrorResponse(c, fiber.StatusInternalServerError, "Could not list orders", "ORDER_LIST_FAILED", nil)
	}

	return h.SuccessResponse(c, fiber.StatusOK, "Orders", result)
}

// CancelOrder withdraws one of the caller's orders while it is still NEW
func (h *OrderHandler) CancelOrder(c fiber.Ctx) error {
	userID, ok := middleware.GetUserIDFromContext(c)
	if !ok {
		return h.ErrorResponse(c, fiber.StatusUnauthorized, "Authentication required", "AUTHENTICATION_REQUIRED", nil)
	}

	orderID, err := parseIDParam(c)
	if err != nil {
		return h.ErrorResponse(c, fiber.StatusBadRequest, "Invalid order ID", "INVALID_REQUEST", nil)
	}

	result, err := h.orderFlow.CancelOrder(createRequestContext(c, "/api/v1/orders/:id/cancel"), userID, orderID, clientMetadata(c))
	if err != nil {
		if businessflow.IsOrderNotFound(err) {
			return h.ErrorResponse(c, fiber.StatusNotFound, "Order not found", dto.ErrorOrderNotFound, nil)
		}
		if businessflow.IsOrderAccessDenied(err) {
			return h.ErrorResponse(c, fiber.StatusForbidden, "Order access denied", dto.ErrorOrderAccessDenied, nil)
		}
		if businessflow.IsOrderNotCancellable(err) {
			return h.ErrorResponse(c, fiber.StatusConflict, "Order can no longer be cancelled", dto.ErrorOrderNotCancellable, nil)
		}

		log.Println("Order cancellation failed", err)
		return h.ErrorResponse(c, fiber.StatusInternalServerError, "Order cancellation failed", "ORDER_CANCEL_FAILED", nil)
	}

	return h.SuccessResponse(c, fiber.StatusOK, "Order cancelled", result)
}

// ListAllOrders returns every order for the owner dashboard
func (h *OrderHandler) ListAllOrders(c fiber.Ctx) error {
	limit, offset := parsePagination(c)

	filter := models.OrderFilter{}
	if status := c.Query("status"); status != "" {
		filter.OrderStatus = &status
	}
	if paymentStatus := c.Query("payment_status"); paymentStatus != "" {
		filter.PaymentStatus = &paymentStatus
	}

	result, err := h.orderFlow.ListAllOrders(createRequestContext(c, "/api/v1/orders/owner/all"), filter, limit, offset)
	if err != nil {
		log.Println("Order listing failed", err)
		return h.ErrorResponse(c, fiber.StatusInternalServerError, "Could not list orders", "ORDER_LIST_FAILED", nil)
	}

	return h.SuccessResponse(c, fiber.StatusOK, "Orders", result)
}

// UpdateOrderStatus is the owner-side status correction endpoint
func (h *OrderHandler) UpdateOrderStatus(c fiber.Ctx) error {
	orderID, err := parseIDParam(c)
	if err != nil {
		return h.ErrorResponse(c, fiber.StatusBadRequest, "Invalid order ID", "INVALID_REQUEST", nil)
	}

	var req dto.UpdateOrderStatusRequest
	if err := c.Bind().JSON(&req); err != nil {
		return h.ErrorResponse(c, fiber.StatusBadRequest, "Invalid request body", "INVALID_REQUEST", err.Error())
	}

	if err := h.validator.Struct(&req); err != nil {
		return h.ErrorResponse(c, fiber.StatusBadRequest, "Validation failed", "VALIDATION_ERROR", validationErrorList(err))
	}

	result, err := h.orderFlow.UpdateOrderStatus(createRequestContext(c, "/api/v1/orders/owner/:id/status"), orderID, &req, clientMetadata(c))
	if err != nil {
		if businessflow.IsOrderNotFound(err) {
			return h.ErrorResponse(c, fiber.StatusNotFound, "Order not found", dto.ErrorOrderNotFound, nil)
		}
		if businessflow.IsInvalidOrderStatus(err) || businessflow.IsInvalidPaymentStatus(err) {
			return h.ErrorResponse(c, fiber.StatusBadRequest, "Invalid status", dto.ErrorInvalidStatus, nil)
		}

		log.Println("Status update failed", err)
		return h.ErrorResponse(c, fiber.StatusInternalServerError, "Status update failed", "ORDER_STATUS_UPDATE_FAILED", nil)
	}

	return h.SuccessResponse(c, fiber.StatusOK, "Status updated", result)
}

// parsePagination reads limit/offset query parameters with sane bounds
func parsePagination(c fiber.Ctx) (limit, offset int) {
	limit = 50
	offset = 0

	if v, err := strconv.Atoi(c.Query("limit")); err == nil && v > 0 && v <= 100 {
		limit = v
	}
	if v, err := strconv.Atoi(c.Query("offset")); err == nil && v >= 0 {
		offset = v
	}

	return limit, offset
}
