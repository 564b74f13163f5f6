// Package repository provides data access layer implementations and interfaces for database operations
package repository

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/killaresto/killa-backend/models"
	"github.com/killaresto/killa-backend/utils"
)

// OTPChallengeRepositoryImpl implements OTPChallengeRepository interface
type OTPChallengeRepositoryImpl struct {
	*BaseRepository[models.OTPChallenge, models.OTPChallengeFilter]
}

// NewOTPChallengeRepository creates a new OTP challenge repository
func NewOTPChallengeRepository(db *gorm.DB) OTPChallengeRepository {
	return &OTPChallengeRepositoryImpl{
		BaseRepository: NewBaseRepository[models.OTPChallenge, models.OTPChallengeFilter](db),
	}
}

// ByEmail retrieves the live challenge for an email address
func (r *OTPChallengeRepositoryImpl) ByEmail(ctx context.Context, email string) (*models.OTPChallenge, error) {
	db := r.getDB(ctx)

	var challenge models.OTPChallenge
	err := db.Where("email = ?", email).First(&challenge).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to find challenge by email: %w", err)
	}

	return &challenge, nil
}

// Upsert inserts or replaces the challenge for the email. Last write wins:
// code, attempts and timestamps are all reset so two overlapping requests
// leave exactly one live code.
func (r *OTPChallengeRepositoryImpl) Upsert(ctx context.Context, challenge *models.OTPChallenge) error {
	db, shouldCommit, err := r.getDBForWrite(ctx)
	if err != nil {
		return err
	}

	if shouldCommit {
		defer func() {
			if err != nil {
				db.Rollback()
			} else {
				db.Commit()
			}
		}()
	}

	err = db.Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "email"}},
		DoUpdates: clause.Assignments(map[string]any{
			"code":           clause.Expr{SQL: "EXCLUDED.code"},
			"attempts_count": 0,
			"max_attempts":   clause.Expr{SQL: "EXCLUDED.max_attempts"},
			"created_at":     clause.Expr{SQL: "EXCLUDED.created_at"},
			"expires_at":     clause.Expr{SQL: "EXCLUDED.expires_at"},
		}),
	}).Create(challenge).Error
	if err != nil {
		return fmt.Errorf("failed to upsert challenge: %w", err)
	}

	return nil
}

// IncrementAttempts persists one more failed attempt for the challenge
func (r *OTPChallengeRepositoryImpl) IncrementAttempts(ctx context.Context, id uint) error {
	db := r.getDB(ctx)

	err := db.Model(&models.OTPChallenge{}).
		Where("id = ?", id).
		UpdateColumn("attempts_count", gorm.Expr("attempts_count + 1")).Error
	if err != nil {
		return fmt.Errorf("failed to increment challenge attempts: %w", err)
	}

	return nil
}

// DeleteByEmail removes the live challenge for the email, if any
func (r *OTPChallengeRepositoryImpl) DeleteByEmail(ctx context.Context, email string) error {
	db := r.getDB(ctx)

	err := db.Where("email = ?", email).Delete(&models.OTPChallenge{}).Error
	if err != nil {
		return fmt.Errorf("failed to delete challenge: %w", err)
	}

	return nil
}

// applyFilter applies filter criteria to a GORM query
func (r *OTPChallengeRepositoryImpl) applyFilter(query *gorm.DB, filter models.OTPChallengeFilter) *gorm.DB {
	if filter.ID != nil {
		query = query.Where("id = ?", *filter.ID)
	}

	if filter.Email != nil {
		query = query.Where("email = ?", *filter.Email)
	}

	if filter.CreatedAfter != nil {
		query = query.Where("created_at > ?", *filter.CreatedAfter)
	}

	if filter.CreatedBefore != nil {
		query = query.Where("created_at < ?", *filter.CreatedBefore)
	}

	if filter.ExpiresAfter != nil {
		query = query.Where("expires_at > ?", *filter.ExpiresAfter)
	}

	if filter.ExpiresBefore != nil {
		query = query.Where("expires_at < ?", *filter.ExpiresBefore)
	}

	// Special handling for IsActive - filter non-expired challenges
	if filter.IsActive != nil && *filter.IsActive {
		query = query.Where("expires_at > ?", utils.UTCNow())
	}

	return query
}

// ByFilter retrieves challenges based on filter criteria
func (r *OTPChallengeRepositoryImpl) ByFilter(ctx context.Context, filter models.OTPChallengeFilter, orderBy string, limit, offset int) ([]*models.OTPChallenge, error) {
	db := r.getDB(ctx)
	query := r.applyFilter(db.Model(&models.OTPChallenge{}), filter)

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

	var challenges []*models.OTPChallenge
	err := query.Find(&challenges).Error
	if err != nil {
		return nil, err
	}

	return challenges, nil
}

// Count returns the number of challenges matching the filter
func (r *OTPChallengeRepositoryImpl) Count(ctx context.Context, filter models.OTPChallengeFilter) (int64, error) {
	db := r.getDB(ctx)
	query := r.applyFilter(db.Model(&models.OTPChallenge{}), filter)

	var count int64
	err := query.Count(&count).Error
	if err != nil {
		return 0, err
	}

	return count, nil
}

// Exists checks if any challenge matching the filter exists
func (r *OTPChallengeRepositoryImpl) Exists(ctx context.Context, filter models.OTPChallengeFilter) (bool, error) {
	count, err := r.Count(ctx, filter)
	if err != nil {
		return false, err
	}

	return count > 0, nil
}
