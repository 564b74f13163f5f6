// Package repository provides data access layer implementations and interfaces for database operations
package repository

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/killaresto/killa-backend/models"
)

// RepositoryContext key for transaction in context
type contextKey string

const TxContextKey contextKey = "tx"

type Repository[T any, F any] interface {
	ByID(ctx context.Context, id uint) (*T, error)
	ByFilter(ctx context.Context, filter F, orderBy string, limit, offset int) ([]*T, error)
	Save(ctx context.Context, entity *T) error
	SaveBatch(ctx context.Context, entities []*T) error
	Count(ctx context.Context, filter F) (int64, error)
	Exists(ctx context.Context, filter F) (bool, error)
}

// UserRepository defines operations for users
type UserRepository interface {
	Repository[models.User, models.UserFilter]
	ByEmail(ctx context.Context, email string) (*models.User, error)
	ByUUID(ctx context.Context, uuid uuid.UUID) (*models.User, error)
	UpdateLastLogin(ctx context.Context, userID uint, at time.Time) error
}

// UserSessionRepository defines operations for user sessions
type UserSessionRepository interface {
	Repository[models.UserSession, models.UserSessionFilter]
	BySessionToken(ctx context.Context, token string) (*models.UserSession, error)
	ByRefreshToken(ctx context.Context, token string) (*models.UserSession, error)
	DeactivateSession(ctx context.Context, sessionID uint) error
	DeactivateAllUserSessions(ctx context.Context, userID uint) error
	CleanupExpiredSessions(ctx context.Context) error
}

// OTPChallengeRepository defines operations for the single live OTP per email
type OTPChallengeRepository interface {
	Repository[models.OTPChallenge, models.OTPChallengeFilter]
	ByEmail(ctx context.Context, email string) (*models.OTPChallenge, error)
	Upsert(ctx context.Context, challenge *models.OTPChallenge) error
	IncrementAttempts(ctx context.Context, id uint) error
	DeleteByEmail(ctx context.Context, email string) error
}

// SequenceCounterRepository hands out monotonically increasing values for
// named counters. Next is atomic across concurrent callers and instances.
type SequenceCounterRepository interface {
	Next(ctx context.Context, name string) (int64, error)
	Current(ctx context.Context, name string) (int64, error)
}

// MenuItemRepository defines operations for catalog items
type MenuItemRepository interface {
	Repository[models.MenuItem, models.MenuItemFilter]
	ByIDs(ctx context.Context, ids []uint) ([]*models.MenuItem, error)
	ListForMenu(ctx context.Context, includeUnavailable bool) ([]*models.MenuItem, error)
	Update(ctx context.Context, item *models.MenuItem) error
	Delete(ctx context.Context, id uint) error
}

// OrderRepository defines operations for orders and their line items
type OrderRepository interface {
	Repository[models.Order, models.OrderFilter]
	ByUUID(ctx context.Context, uuid uuid.UUID) (*models.Order, error)
	ListByUser(ctx context.Context, userID uint, limit, offset int) ([]*models.Order, error)
	ListAll(ctx context.Context, filter models.OrderFilter, limit, offset int) ([]*models.Order, error)
	Update(ctx context.Context, order *models.Order) error
	PopularMenuItemIDs(ctx context.Context, limit int) ([]uint, error)
}

// OrderStatusLogRepository defines operations for the status trail
type OrderStatusLogRepository interface {
	Repository[models.OrderStatusLog, models.OrderStatusLogFilter]
	ListByOrder(ctx context.Context, orderID uint) ([]*models.OrderStatusLog, error)
}

// RatingRepository defines operations for order ratings
type RatingRepository interface {
	Repository[models.Rating, models.RatingFilter]
	ByOrderID(ctx context.Context, orderID uint) (*models.Rating, error)
}

// RecommendationLogRepository defines operations for recommendation logs
type RecommendationLogRepository interface {
	Repository[models.RecommendationLog, models.RecommendationLogFilter]
}

// AuditLogRepository defines operations for audit logs
type AuditLogRepository interface {
	Repository[models.AuditLog, models.AuditLogFilter]
	ListByUser(ctx context.Context, userID uint, limit, offset int) ([]*models.AuditLog, error)
	ListByAction(ctx context.Context, action string, limit, offset int) ([]*models.AuditLog, error)
}
