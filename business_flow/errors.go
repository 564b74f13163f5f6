// Package businessflow contains the core business logic and use cases for the ordering system
package businessflow

import (
	"errors"
	"fmt"
)

// Business flow error constants
var (
	// User-related errors
	ErrUserNotFound       = errors.New("user not found")
	ErrAccountInactive    = errors.New("account is inactive")
	ErrIncorrectPassword  = errors.New("incorrect password")
	ErrEmailAlreadyExists = errors.New("email already exists")
	ErrWeakPassword       = errors.New("password does not meet policy")
	ErrSessionNotFound    = errors.New("session not found")

	// OTP-related errors
	ErrNoValidOTPFound = errors.New("no valid OTP found")
	ErrInvalidOTPCode  = errors.New("invalid OTP code")
	ErrOTPExpired      = errors.New("OTP has expired")
	ErrOTPLockedOut    = errors.New("too many failed attempts")

	// Menu-related errors
	ErrMenuItemNotFound    = errors.New("menu item not found")
	ErrMenuItemUnavailable = errors.New("menu item is unavailable")
	ErrInvalidPricing      = errors.New("pricing does not match pricing type")
	ErrInvalidVariant      = errors.New("variant does not match item pricing")

	// Order-related errors
	ErrOrderNotFound          = errors.New("order not found")
	ErrOrderAccessDenied      = errors.New("order access denied")
	ErrOrderNotCancellable    = errors.New("order can no longer be cancelled")
	ErrInvalidOrderStatus     = errors.New("invalid order status")
	ErrInvalidPaymentStatus   = errors.New("invalid payment status")
	ErrEmptyOrder             = errors.New("order has no items")
	ErrNumberOfPeopleRequired = errors.New("number of people is required for dine-in orders")

	// Rating-related errors
	ErrOrderAlreadyRated = errors.New("order already rated")
	ErrInvalidScore      = errors.New("score out of range")

	// Recommendation errors
	ErrRecommenderUnavailable = errors.New("recommendation service unavailable")
)

type BusinessError struct {
	Code    string
	Message string
	Err     error
}

func (e *BusinessError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *BusinessError) Unwrap() error {
	return e.Err
}

func NewBusinessError(code, message string, err error) *BusinessError {
	return &BusinessError{
		Code:    code,
		Message: message,
		Err:     err,
	}
}

func NewBusinessErrorf(code, message string, err error, args ...any) *BusinessError {
	return &BusinessError{
		Code:    code,
		Message: fmt.Sprintf(message, args...),
		Err:     err,
	}
}

func IsUserNotFound(err error) bool {
	return errors.Is(err, ErrUserNotFound)
}

func IsAccountInactive(err error) bool {
	return errors.Is(err, ErrAccountInactive)
}

func IsIncorrectPassword(err error) bool {
	return errors.Is(err, ErrIncorrectPassword)
}

func IsEmailAlreadyExists(err error) bool {
	return errors.Is(err, ErrEmailAlreadyExists)
}

func IsWeakPassword(err error) bool {
	return errors.Is(err, ErrWeakPassword)
}

func IsSessionNotFound(err error) bool {
	return errors.Is(err, ErrSessionNotFound)
}

func IsNoValidOTPFound(err error) bool {
	return errors.Is(err, ErrNoValidOTPFound)
}

func IsInvalidOTPCode(err error) bool {
	return errors.Is(err, ErrInvalidOTPCode)
}

func IsOTPExpired(err error) bool {
	return errors.Is(err, ErrOTPExpired)
}

func IsOTPLockedOut(err error) bool {
	return errors.Is(err, ErrOTPLockedOut)
}

func IsMenuItemNotFound(err error) bool {
	return errors.Is(err, ErrMenuItemNotFound)
}

func IsMenuItemUnavailable(err error) bool {
	return errors.Is(err, ErrMenuItemUnavailable)
}

func IsInvalidPricing(err error) bool {
	return errors.Is(err, ErrInvalidPricing)
}

func IsInvalidVariant(err error) bool {
	return errors.Is(err, ErrInvalidVariant)
}

func IsOrderNotFound(err error) bool {
	return errors.Is(err, ErrOrderNotFound)
}

func IsOrderAccessDenied(err error) bool {
	return errors.Is(err, ErrOrderAccessDenied)
}

func IsOrderNotCancellable(err error) bool {
	return errors.Is(err, ErrOrderNotCancellable)
}

func IsInvalidOrderStatus(err error) bool {
	return errors.Is(err, ErrInvalidOrderStatus)
}

func IsInvalidPaymentStatus(err error) bool {
	return errors.Is(err, ErrInvalidPaymentStatus)
}

func IsEmptyOrder(err error) bool {
	return errors.Is(err, ErrEmptyOrder)
}

func IsNumberOfPeopleRequired(err error) bool {
	return errors.Is(err, ErrNumberOfPeopleRequired)
}

func IsOrderAlreadyRated(err error) bool {
	return errors.Is(err, ErrOrderAlreadyRated)
}

func IsInvalidScore(err error) bool {
	return errors.Is(err, ErrInvalidScore)
}

func IsRecommenderUnavailable(err error) bool {
	return errors.Is(err, ErrRecommenderUnavailable)
}
