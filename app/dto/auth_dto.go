// Package dto contains Data Transfer Objects for API request and response structures
package dto

import (
	"time"
)

// RequestOTPRequest represents the request to issue a verification code
type RequestOTPRequest struct {
	Email string `json:"email" validate:"required,email,max=255" example:"user@example.com"`
}

// RequestOTPResponse represents the response after a code was issued
type RequestOTPResponse struct {
	Email     string `json:"email" example:"user@example.com"`
	ExpiresIn int    `json:"expires_in" example:"300"`
}

// RegisterRequest represents the request payload for user registration
type RegisterRequest struct {
	Name     string `json:"name" validate:"required,min=2,max=100" example:"John Doe"`
	Email    string `json:"email" validate:"required,email,max=255" example:"user@example.com"`
	Mobile   string `json:"mobile" validate:"omitempty,min=7,max=15" example:"+919123456789"`
	Password string `json:"password" validate:"required,min=6,max=100,password_strength" example:"Secure@123"`
	OTPCode  string `json:"otp" validate:"required,len=6,numeric" example:"123456"`
}

// LoginRequest represents the request payload for user login. The OTP code
// is only consulted for owner accounts.
type LoginRequest struct {
	Email    string `json:"email" validate:"required,email,max=255" example:"user@example.com"`
	Password string `json:"password" validate:"required,min=6,max=100" example:"Secure@123"`
	OTPCode  string `json:"otp" validate:"omitempty,len=6,numeric" example:"123456"`
}

// AuthUserDTO represents user information returned in auth responses
type AuthUserDTO struct {
	ID          uint    `json:"id" example:"123"`
	UUID        string  `json:"uuid" example:"550e8400-e29b-41d4-a716-446655440000"`
	Name        string  `json:"name" example:"John Doe"`
	Email       string  `json:"email" example:"user@example.com"`
	Mobile      *string `json:"mobile,omitempty" example:"+919123456789"`
	Role        string  `json:"role" example:"USER"`
	IsActive    *bool   `json:"is_active" example:"true"`
	CreatedAt   string  `json:"created_at" example:"2024-01-15T10:30:00Z"`
	LastLoginAt *string `json:"last_login_at,omitempty" example:"2024-01-15T16:30:00Z"`
}

// SessionDTO represents issued tokens in auth responses
type SessionDTO struct {
	AccessToken  string  `json:"access_token"`
	RefreshToken *string `json:"refresh_token,omitempty"`
	TokenType    string  `json:"token_type" example:"Bearer"`
	ExpiresIn    int     `json:"expires_in" example:"3600"`
	CreatedAt    string  `json:"created_at" example:"2024-01-15T10:30:00Z"`
}

// AuthResponse is the common payload for register and login
type AuthResponse struct {
	User    AuthUserDTO `json:"user"`
	Session SessionDTO  `json:"session"`
}

// OTPChallengeResponse signals that the owner login needs a second phase
type OTPChallengeResponse struct {
	RequiresOTP bool   `json:"requires_otp" example:"true"`
	Email       string `json:"email" example:"owner@example.com"`
	ExpiresIn   int    `json:"expires_in" example:"300"`
}

// Common error codes for auth operations
const (
	ErrorUserNotFound      = "USER_NOT_FOUND"
	ErrorIncorrectPassword = "INCORRECT_PASSWORD"
	ErrorAccountInactive   = "ACCOUNT_INACTIVE"
	ErrorEmailExists       = "EMAIL_EXISTS"
	ErrorWeakPassword      = "WEAK_PASSWORD"
	ErrorInvalidOTP        = "INVALID_OTP"
	ErrorOTPExpired        = "OTP_EXPIRED"
	ErrorOTPNotFound       = "OTP_NOT_FOUND"
	ErrorTooManyAttempts   = "TOO_MANY_ATTEMPTS"
	ErrorOTPRequired       = "OTP_REQUIRED"
)

// FormatTimePtr renders an optional time for responses
func FormatTimePtr(t *time.Time) *string {
	if t == nil {
		return nil
	}
	s := t.Format(time.RFC3339)
	return &s
}
