// Package handlers contains HTTP request handlers and presentation layer logic for the API endpoints
package handlers

import (
	"log"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v3"

	"github.com/killaresto/killa-backend/app/dto"
	"github.com/killaresto/killa-backend/app/middleware"
	businessflow "github.com/killaresto/killa-backend/business_flow"
)

// RatingHandlerInterface defines the contract for rating handlers
type RatingHandlerInterface interface {
	SubmitRating(c fiber.Ctx) error
	GetOrderRating(c fiber.Ctx) error
}

// RatingHandler handles rating-related HTTP requests
type RatingHandler struct {
	ratingFlow businessflow.RatingFlow
	validator  *validator.Validate
}

// NewRatingHandler creates a new rating handler
func NewRatingHandler(ratingFlow businessflow.RatingFlow) *RatingHandler {
	return &RatingHandler{
		ratingFlow: ratingFlow,
		validator:  newValidator(),
	}
}

func (h *RatingHandler) ErrorResponse(c fiber.Ctx, statusCode int, message, errorCode string, details any) error {
	return c.Status(statusCode).JSON(dto.APIResponse{
		Success: false,
		Message: message,
		Error: dto.ErrorDetail{
			Code:    errorCode,
			Details: details,
		},
	})
}

func (h *RatingHandler) SuccessResponse(c fiber.Ctx, statusCode int, message string, data any) error {
	return c.Status(statusCode).JSON(dto.APIResponse{
		Success: true,
		Message: message,
		Data:    data,
	})
}

// SubmitRating records the rating for one of the caller's orders
func (h *RatingHandler) SubmitRating(c fiber.Ctx) error {
	userID, ok := middleware.GetUserIDFromContext(c)
	if !ok {
		return h.ErrorResponse(c, fiber.StatusUnauthorized, "Authentication required", "AUTHENTICATION_REQUIRED", nil)
	}

	var req dto.SubmitRatingRequest
	if err := c.Bind().JSON(&req); err != nil {
		return h.ErrorResponse(c, fiber.StatusBadRequest, "Invalid request body", "INVALID_REQUEST", err.Error())
	}

	if err := h.validator.Struct(&req); err != nil {
		return h.ErrorResponse(c, fiber.StatusBadRequest, "Validation failed", "VALIDATION_ERROR", validationErrorList(err))
	}

	result, err := h.ratingFlow.SubmitRating(createRequestContext(c, "/api/v1/ratings"), userID, &req, clientMetadata(c))
	if err != nil {
		if businessflow.IsInvalidScore(err) {
			return h.ErrorResponse(c, fiber.StatusBadRequest, "Score out of range", dto.ErrorInvalidScore, nil)
		}
		if businessflow.IsOrderNotFound(err) {
			return h.ErrorResponse(c, fiber.StatusNotFound, "Order not found", dto.ErrorOrderNotFound, nil)
		}
		if businessflow.IsOrderAccessDenied(err) {
			return h.ErrorResponse(c, fiber.StatusForbidden, "Order access denied", dto.ErrorOrderAccessDenied, nil)
		}
		if businessflow.IsOrderAlreadyRated(err) {
			return h.ErrorResponse(c, fiber.StatusConflict, "Order already rated", dto.ErrorAlreadyRated, nil)
		}

		log.Println("Rating submission failed", err)
		return h.ErrorResponse(c, fiber.StatusInternalServerError, "Rating submission failed", "RATING_FAILED", nil)
	}

	return h.SuccessResponse(c, fiber.StatusCreated, "Rating recorded", result)
}

// GetOrderRating returns the rating for one of the caller's orders
func (h *RatingHandler) GetOrderRating(c fiber.Ctx) error {
	userID, ok := middleware.GetUserIDFromContext(c)
	if !ok {
		return h.ErrorResponse(c, fiber.StatusUnauthorized, "Authentication required", "AUTHENTICATION_REQUIRED", nil)
	}

	orderID, err := parseIDParam(c)
	if err != nil {
		return h.ErrorResponse(c, fiber.StatusBadRequest, "Invalid order ID", "INVALID_REQUEST", nil)
	}

	result, err := h.ratingFlow.GetOrderRating(createRequestContext(c, "/api/v1/ratings/order/:id"), userID, orderID)
	if err != nil {
		if businessflow.IsOrderNotFound(err) {
			return h.ErrorResponse(c, fiber.StatusNotFound, "Order not found", dto.ErrorOrderNotFound, nil)
		}
		if businessflow.IsOrderAccessDenied(err) {
			return h.ErrorResponse(c, fiber.StatusForbidden, "Order access denied", dto.ErrorOrderAccessDenied, nil)
		}

		// No rating row yet also lands here as a not-found
		return h.ErrorResponse(c, fiber.StatusNotFound, "Rating not found", "RATING_NOT_FOUND", nil)
	}

	return h.SuccessResponse(c, fiber.StatusOK, "Rating", result)
}
