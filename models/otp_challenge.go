// Package models contains domain entities and business models for the ordering system
package models

import "time"

// OTPChallenge is the single live verification code for an email address.
// Issuing a new code replaces the previous one (last write wins).
type OTPChallenge struct {
	ID            uint      `gorm:"primaryKey" json:"id"`
	Email         string    `gorm:"size:255;not null;uniqueIndex:uk_otp_challenges_email" json:"email"`
	Code          string    `gorm:"size:6;not null" json:"-"` // Never serialize OTP code
	AttemptsCount int       `gorm:"default:0" json:"attempts_count"`
	MaxAttempts   int       `gorm:"default:3" json:"max_attempts"`
	CreatedAt     time.Time `gorm:"default:CURRENT_TIMESTAMP" json:"created_at"`
	ExpiresAt     time.Time `gorm:"not null;index:idx_otp_challenges_expires_at" json:"expires_at"`
}

func (OTPChallenge) TableName() string {
	return "otp_challenges"
}

// OTPChallengeFilter represents filter criteria for OTP challenge queries
type OTPChallengeFilter struct {
	ID            *uint
	Email         *string
	CreatedAfter  *time.Time
	CreatedBefore *time.Time
	ExpiresAfter  *time.Time
	ExpiresBefore *time.Time
	IsActive      *bool // Helper to filter non-expired challenges
}

func (o *OTPChallenge) IsExpired() bool {
	return time.Now().After(o.ExpiresAt)
}

func (o *OTPChallenge) CanAttempt() bool {
	return o.AttemptsCount < o.MaxAttempts && !o.IsExpired()
}

func (o *OTPChallenge) RemainingAttempts() int {
	remaining := o.MaxAttempts - o.AttemptsCount
	if remaining < 0 {
		return 0
	}
	return remaining
}
