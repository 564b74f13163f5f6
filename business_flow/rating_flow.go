// Package businessflow contains the core business logic and use cases for rating workflows
package businessflow

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"

	"github.com/killaresto/killa-backend/app/dto"
	"github.com/killaresto/killa-backend/models"
	"github.com/killaresto/killa-backend/repository"
)

// RatingFlow handles one-rating-per-order submission and lookup
type RatingFlow interface {
	SubmitRating(ctx context.Context, userID uint, req *dto.SubmitRatingRequest, metadata *ClientMetadata) (*dto.RatingDTO, error)
	GetOrderRating(ctx context.Context, userID uint, orderID uint) (*dto.RatingDTO, error)
}

// RatingFlowImpl implements the rating business flow
type RatingFlowImpl struct {
	ratingRepo repository.RatingRepository
	orderRepo  repository.OrderRepository
	auditRepo  repository.AuditLogRepository
	db         *gorm.DB
}

// NewRatingFlow creates a new rating flow instance
func NewRatingFlow(
	ratingRepo repository.RatingRepository,
	orderRepo repository.OrderRepository,
	auditRepo repository.AuditLogRepository,
	db *gorm.DB,
) RatingFlow {
	return &RatingFlowImpl{
		ratingRepo: ratingRepo,
		orderRepo:  orderRepo,
		auditRepo:  auditRepo,
		db:         db,
	}
}

// SubmitRating records the rating for an order the caller placed. A score of
// zero means the user declined to rate. The unique constraint on order_id
// backstops the exists check, so the loser of a concurrent double submit
// gets a conflict instead of a second row.
func (s *RatingFlowImpl) SubmitRating(ctx context.Context, userID uint, req *dto.SubmitRatingRequest, metadata *ClientMetadata) (*dto.RatingDTO, error) {
	if !models.ValidRatingScore(req.Score) {
		return nil, NewBusinessError("INVALID_SCORE", "Score out of range", ErrInvalidScore)
	}

	var rating *models.Rating
	err := repository.WithTransaction(ctx, s.db, func(txCtx context.Context) error {
		order, err := s.orderRepo.ByID(txCtx, req.OrderID)
		if err != nil {
			return err
		}
		if order == nil {
			return ErrOrderNotFound
		}
		if order.UserID != userID {
			return ErrOrderAccessDenied
		}

		existing, err := s.ratingRepo.ByOrderID(txCtx, req.OrderID)
		if err != nil {
			return err
		}
		if existing != nil {
			return ErrOrderAlreadyRated
		}

		var comment *string
		if req.Comment != "" {
			comment = &req.Comment
		}

		rating = &models.Rating{
			OrderID: req.OrderID,
			UserID:  userID,
			Score:   req.Score,
			Comment: comment,
		}

		if err := s.ratingRepo.Save(txCtx, rating); err != nil {
			if errors.Is(err, gorm.ErrDuplicatedKey) {
				return ErrOrderAlreadyRated
			}
			return err
		}

		return nil
	})

	if err != nil {
		errMsg := fmt.Sprintf("rating submission failed: %s", err.Error())
		_ = s.createAuditLog(ctx, userID, errMsg, false, &errMsg, metadata)
		return nil, wrapRatingError(err)
	}

	_ = s.createAuditLog(ctx, userID, fmt.Sprintf("order %d rated %d", req.OrderID, req.Score), true, nil, metadata)

	out := ToRatingDTO(*rating)
	return &out, nil
}

// GetOrderRating returns the rating for one of the caller's orders
func (s *RatingFlowImpl) GetOrderRating(ctx context.Context, userID uint, orderID uint) (*dto.RatingDTO, error) {
	order, err := s.orderRepo.ByID(ctx, orderID)
	if err != nil {
		return nil, NewBusinessError("RATING_LOOKUP_FAILED", "Could not load rating", err)
	}
	if order == nil {
		return nil, NewBusinessError("ORDER_NOT_FOUND", "Order not found", ErrOrderNotFound)
	}
	if order.UserID != userID {
		return nil, NewBusinessError("ORDER_ACCESS_DENIED", "Order access denied", ErrOrderAccessDenied)
	}

	rating, err := s.ratingRepo.ByOrderID(ctx, orderID)
	if err != nil {
		return nil, NewBusinessError("RATING_LOOKUP_FAILED", "Could not load rating", err)
	}
	if rating == nil {
		return nil, NewBusinessError("RATING_NOT_FOUND", "Order has not been rated", gorm.ErrRecordNotFound)
	}

	out := ToRatingDTO(*rating)
	return &out, nil
}

func (s *RatingFlowImpl) createAuditLog(ctx context.Context, userID uint, description string, success bool, errorMsg *string, metadata *ClientMetadata) error {
	ipAddress := "127.0.0.1"
	userAgent := ""
	if metadata != nil {
		ipAddress = metadata.IPAddress
		userAgent = metadata.UserAgent
	}

	return s.auditRepo.Save(ctx, &models.AuditLog{
		UserID:       &userID,
		Action:       models.AuditActionRatingSubmitted,
		Description:  &description,
		Success:      &success,
		IPAddress:    &ipAddress,
		UserAgent:    &userAgent,
		ErrorMessage: errorMsg,
	})
}

func wrapRatingError(err error) *BusinessError {
	switch {
	case IsOrderNotFound(err):
		return NewBusinessError("ORDER_NOT_FOUND", "Order not found", err)
	case IsOrderAccessDenied(err):
		return NewBusinessError("ORDER_ACCESS_DENIED", "Order access denied", err)
	case IsOrderAlreadyRated(err):
		return NewBusinessError("ALREADY_RATED", "Order already rated", err)
	default:
		return NewBusinessError("RATING_FAILED", "Rating submission failed", err)
	}
}
