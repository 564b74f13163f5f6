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
)

// MenuHandlerInterface defines the contract for catalog handlers
type MenuHandlerInterface interface {
	ListMenu(c fiber.Ctx) error
	CreateMenuItem(c fiber.Ctx) error
	UpdateMenuItem(c fiber.Ctx) error
	DeleteMenuItem(c fiber.Ctx) error
	GetRecommendations(c fiber.Ctx) error
}

// MenuHandler handles catalog and recommendation HTTP requests
type MenuHandler struct {
	menuFlow  businessflow.MenuFlow
	validator *validator.Validate
}

// NewMenuHandler creates a new menu handler
func NewMenuHandler(menuFlow businessflow.MenuFlow) *MenuHandler {
	return &MenuHandler{
		menuFlow:  menuFlow,
		validator: newValidator(),
	}
}

func (h *MenuHandler) ErrorResponse(c fiber.Ctx, statusCode int, message, errorCode string, details any) error {
	return c.Status(statusCode).JSON(dto.APIResponse{
		Success: false,
		Message: message,
		Error: dto.ErrorDetail{
			Code:    errorCode,
			Details: details,
		},
	})
}

func (h *MenuHandler) SuccessResponse(c fiber.Ctx, statusCode int, message string, data any) error {
	return c.Status(statusCode).JSON(dto.APIResponse{
		Success: true,
		Message: message,
		Data:    data,
	})
}

// ListMenu returns the catalog. Unavailable items are included only for
// ?all=true.
func (h *MenuHandler) ListMenu(c fiber.Ctx) error {
	includeUnavailable := c.Query("all") == "true"

	result, err := h.menuFlow.ListMenu(createRequestContext(c, "/api/v1/menu"), includeUnavailable)
	if err != nil {
		log.Println("Menu listing failed", err)
		return h.ErrorResponse(c, fiber.StatusInternalServerError, "Could not list menu", "MENU_LIST_FAILED", nil)
	}

	return h.SuccessResponse(c, fiber.StatusOK, "Menu", result)
}

// CreateMenuItem adds a catalog item
func (h *MenuHandler) CreateMenuItem(c fiber.Ctx) error {
	var req dto.CreateMenuItemRequest
	if err := c.Bind().JSON(&req); err != nil {
		return h.ErrorResponse(c, fiber.StatusBadRequest, "Invalid request body", "INVALID_REQUEST", err.Error())
	}

	if err := h.validator.Struct(&req); err != nil {
		return h.ErrorResponse(c, fiber.StatusBadRequest, "Validation failed", "VALIDATION_ERROR", validationErrorList(err))
	}

	result, err := h.menuFlow.CreateMenuItem(createRequestContext(c, "/api/v1/menu"), &req, clientMetadata(c))
	if err != nil {
		if businessflow.IsInvalidPricing(err) {
			return h.ErrorResponse(c, fiber.StatusBadRequest, "Pricing does not match pricing type", dto.ErrorInvalidPricing, nil)
		}

		log.Println("Menu item creation failed", err)
		return h.ErrorResponse(c, fiber.StatusInternalServerError, "Could not create menu item", "MENU_ITEM_CREATE_FAILED", nil)
	}

	return h.SuccessResponse(c, fiber.StatusCreated, "Menu item created", result)
}

// UpdateMenuItem edits a catalog item
func (h *MenuHandler) UpdateMenuItem(c fiber.Ctx) error {
	id, err := parseIDParam(c)
	if err != nil {
		return h.ErrorResponse(c, fiber.StatusBadRequest, "Invalid menu item ID", "INVALID_REQUEST", nil)
	}

	var req dto.UpdateMenuItemRequest
	if err := c.Bind().JSON(&req); err != nil {
		return h.ErrorResponse(c, fiber.StatusBadRequest, "Invalid request body", "INVALID_REQUEST", err.Error())
	}

	if err := h.validator.Struct(&req); err != nil {
		return h.ErrorResponse(c, fiber.StatusBadRequest, "Validation failed", "VALIDATION_ERROR", validationErrorList(err))
	}

	result, err := h.menuFlow.UpdateMenuItem(createRequestContext(c, "/api/v1/menu/:id"), id, &req, clientMetadata(c))
	if err != nil {
		if businessflow.IsMenuItemNotFound(err) {
			return h.ErrorResponse(c, fiber.StatusNotFound, "Menu item not found", dto.ErrorMenuItemNotFound, nil)
		}
		if businessflow.IsInvalidPricing(err) {
			return h.ErrorResponse(c, fiber.StatusBadRequest, "Pricing does not match pricing type", dto.ErrorInvalidPricing, nil)
		}

		log.Println("Menu item update failed", err)
		return h.ErrorResponse(c, fiber.StatusInternalServerError, "Could not update menu item", "MENU_ITEM_UPDATE_FAILED", nil)
	}

	return h.SuccessResponse(c, fiber.StatusOK, "Menu item updated", result)
}

// DeleteMenuItem removes a catalog item
func (h *MenuHandler) DeleteMenuItem(c fiber.Ctx) error {
	id, err := parseIDParam(c)
	if err != nil {
		return h.ErrorResponse(c, fiber.StatusBadRequest, "Invalid menu item ID", "INVALID_REQUEST", nil)
	}

	err = h.menuFlow.DeleteMenuItem(createRequestContext(c, "/api/v1/menu/:id"), id, clientMetadata(c))
	if err != nil {
		if businessflow.IsMenuItemNotFound(err) {
			return h.ErrorResponse(c, fiber.StatusNotFound, "Menu item not found", dto.ErrorMenuItemNotFound, nil)
		}

		log.Println("Menu item deletion failed", err)
		return h.ErrorResponse(c, fiber.StatusInternalServerError, "Could not delete menu item", "MENU_ITEM_DELETE_FAILED", nil)
	}

	return h.SuccessResponse(c, fiber.StatusOK, "Menu item deleted", nil)
}

// GetRecommendations serves personalized picks, falling back to popular
// items when the model service cannot answer
func (h *MenuHandler) GetRecommendations(c fiber.Ctx) error {
	userID, ok := middleware.GetUserIDFromContext(c)
	if !ok {
		return h.ErrorResponse(c, fiber.StatusUnauthorized, "Authentication required", "AUTHENTICATION_REQUIRED", nil)
	}

	result, err := h.menuFlow.GetRecommendations(createRequestContext(c, "/api/v1/menu/recommendations"), userID)
	if err != nil {
		log.Println("Recommendations failed", err)
		return h.ErrorResponse(c, fiber.StatusInternalServerError, "Could not build recommendations", "RECOMMENDATIONS_FAILED", nil)
	}

	return h.SuccessResponse(c, fiber.StatusOK, "Recommendations", result)
}

// parseIDParam reads the :id route parameter
func parseIDParam(c fiber.Ctx) (uint, error) {
	id, err := strconv.ParseUint(c.Params("id"), 10, 32)
	if err != nil || id == 0 {
		return 0, fiber.ErrBadRequest
	}
	return uint(id), nil
}
