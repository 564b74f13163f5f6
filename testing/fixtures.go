// Package testing provides test utilities and database setup for integration tests
package testing

import (
	"encoding/base64"
	"fmt"
	"math/rand"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/killaresto/killa-backend/models"
	"github.com/killaresto/killa-backend/utils"
)

// TestFixtures provides helper methods for creating test data
type TestFixtures struct {
	DB *TestDB
}

// NewTestFixtures creates a new test fixtures instance
func NewTestFixtures(db *TestDB) *TestFixtures {
	return &TestFixtures{DB: db}
}

// CreateTestUser creates a user with the given role and a known password ("TestPass1!")
func (tf *TestFixtures) CreateTestUser(role string) (*models.User, error) {
	hashedPassword, err := bcrypt.GenerateFromPassword([]byte("TestPass1!"), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	randomDigits := fmt.Sprintf("%06d", rand.Intn(1000000))

	user := &models.User{
		UUID:         uuid.New(),
		Name:         "Test User",
		Email:        fmt.Sprintf("user.%s.%d@example.com", randomDigits, time.Now().UnixNano()),
		PasswordHash: string(hashedPassword),
		Role:         role,
		IsActive:     utils.ToPtr(true),
	}

	if err := tf.DB.DB.Create(user).Error; err != nil {
		return nil, fmt.Errorf("failed to create test user: %w", err)
	}

	return user, nil
}

// CreateTestOTP creates a live verification code for an email address
func (tf *TestFixtures) CreateTestOTP(email, code string) (*models.OTPChallenge, error) {
	otp := &models.OTPChallenge{
		Email:         email,
		Code:          code,
		AttemptsCount: 0,
		MaxAttempts:   utils.OTPMaxAttempts,
		ExpiresAt:     time.Now().Add(utils.OTPExpiry),
	}

	if err := tf.DB.DB.Create(otp).Error; err != nil {
		return nil, fmt.Errorf("failed to create test OTP: %w", err)
	}

	return otp, nil
}

// CreateExpiredOTP creates a verification code that expired an hour ago
func (tf *TestFixtures) CreateExpiredOTP(email, code string) (*models.OTPChallenge, error) {
	otp := &models.OTPChallenge{
		Email:         email,
		Code:          code,
		AttemptsCount: 0,
		MaxAttempts:   utils.OTPMaxAttempts,
		ExpiresAt:     time.Now().Add(-1 * time.Hour),
	}

	if err := tf.DB.DB.Create(otp).Error; err != nil {
		return nil, fmt.Errorf("failed to create expired OTP: %w", err)
	}

	return otp, nil
}

func GenerateSecureToken(length int) (string, error) {
	b := make([]byte, length)
	_, err := rand.Read(b)
	if err != nil {
		return "", err
	}
	return base64.URLEncoding.EncodeToString(b), nil
}

// CreateTestSession creates an active session for a user
func (tf *TestFixtures) CreateTestSession(userID uint) (*models.UserSession, error) {
	sessionToken, err := GenerateSecureToken(32)
	if err != nil {
		return nil, fmt.Errorf("failed to generate secure session token: %w", err)
	}

	refreshToken, err := GenerateSecureToken(32)
	if err != nil {
		return nil, fmt.Errorf("failed to generate secure refresh token: %w", err)
	}

	ipAddress := "127.0.0.1"
	userAgent := "Test User Agent"

	session := &models.UserSession{
		CorrelationID: uuid.New(),
		UserID:        userID,
		SessionToken:  sessionToken,
		RefreshToken:  &refreshToken,
		ExpiresAt:     time.Now().Add(24 * time.Hour),
		IsActive:      utils.ToPtr(true),
		IPAddress:     &ipAddress,
		UserAgent:     &userAgent,
	}

	if err := tf.DB.DB.Create(session).Error; err != nil {
		return nil, fmt.Errorf("failed to create test session: %w", err)
	}

	return session, nil
}

// CreateTestMenuItem creates an available single-priced menu item
func (tf *TestFixtures) CreateTestMenuItem(name, category string, price float64) (*models.MenuItem, error) {
	item := &models.MenuItem{
		Name:        name,
		Category:    category,
		SubCategory: models.MenuSubCategoryIndian,
		PricingType: models.PricingTypeSingle,
		Price:       &price,
		IsAvailable: utils.ToPtr(true),
	}

	if err := tf.DB.DB.Create(item).Error; err != nil {
		return nil, fmt.Errorf("failed to create test menu item: %w", err)
	}

	return item, nil
}

// CreateTestHalfFullMenuItem creates an available half/full-priced menu item
func (tf *TestFixtures) CreateTestHalfFullMenuItem(name, category string, priceHalf, priceFull float64) (*models.MenuItem, error) {
	item := &models.MenuItem{
		Name:        name,
		Category:    category,
		SubCategory: models.MenuSubCategoryIndian,
		PricingType: models.PricingTypeHalfFull,
		PriceHalf:   &priceHalf,
		PriceFull:   &priceFull,
		IsAvailable: utils.ToPtr(true),
	}

	if err := tf.DB.DB.Create(item).Error; err != nil {
		return nil, fmt.Errorf("failed to create test menu item: %w", err)
	}

	return item, nil
}

// CreateTestOrder creates an order with a single line for the given item
func (tf *TestFixtures) CreateTestOrder(userID uint, item *models.MenuItem, status string) (*models.Order, error) {
	price := 0.0
	if item.Price != nil {
		price = *item.Price
	}

	order := &models.Order{
		UUID:          uuid.New(),
		OrderNumber:   models.FormatOrderNumber(int64(rand.Intn(900000) + 100000)),
		UserID:        userID,
		OrderType:     models.OrderTypeTakeaway,
		TotalAmount:   price,
		PaymentMethod: models.PaymentMethodCash,
		PaymentStatus: models.PaymentStatusPending,
		OrderStatus:   status,
		Items: []models.OrderItem{
			{
				MenuItemID: item.ID,
				Name:       item.Name,
				Quantity:   1,
				UnitPrice:  price,
				Variant:    models.OrderItemVariantSingle,
			},
		},
	}

	if err := tf.DB.DB.Create(order).Error; err != nil {
		return nil, fmt.Errorf("failed to create test order: %w", err)
	}

	return order, nil
}

// CreateTestRating records a rating for an order
func (tf *TestFixtures) CreateTestRating(orderID, userID uint, score int) (*models.Rating, error) {
	rating := &models.Rating{
		OrderID: orderID,
		UserID:  userID,
		Score:   score,
	}

	if err := tf.DB.DB.Create(rating).Error; err != nil {
		return nil, fmt.Errorf("failed to create test rating: %w", err)
	}

	return rating, nil
}

// CreateTestAuditLog creates a test audit log entry
func (tf *TestFixtures) CreateTestAuditLog(userID *uint, action string, success bool) (*models.AuditLog, error) {
	description := fmt.Sprintf("Test %s action", action)
	ipAddress := "127.0.0.1"
	userAgent := "Test User Agent"

	audit := &models.AuditLog{
		UserID:      userID,
		Action:      action,
		Description: &description,
		Success:     &success,
		IPAddress:   &ipAddress,
		UserAgent:   &userAgent,
	}

	if !success {
		errorMessage := "Test failed action"
		audit.ErrorMessage = &errorMessage
	}

	if err := tf.DB.DB.Create(audit).Error; err != nil {
		return nil, fmt.Errorf("failed to create test audit log: %w", err)
	}

	return audit, nil
}
