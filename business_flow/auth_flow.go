// Package businessflow contains the core business logic and use cases for authentication workflows
package businessflow

import (
	"context"
	"crypto/rand"
	"fmt"
	"log"
	"math/big"
	"strings"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"github.com/killaresto/killa-backend/app/dto"
	"github.com/killaresto/killa-backend/app/services"
	"github.com/killaresto/killa-backend/models"
	"github.com/killaresto/killa-backend/repository"
	"github.com/killaresto/killa-backend/utils"
)

// PasswordPolicy is the registration password rule set, built from config
type PasswordPolicy struct {
	MinLength     int
	RequireUpper  bool
	RequireNumber bool
	RequireSymbol bool
	SymbolSet     string
	BcryptCost    int
}

// DefaultPasswordPolicy mirrors the published signup requirements
func DefaultPasswordPolicy() PasswordPolicy {
	return PasswordPolicy{
		MinLength:     6,
		RequireUpper:  true,
		RequireNumber: false,
		RequireSymbol: true,
		SymbolSet:     "!@#$%^&*",
		BcryptCost:    bcrypt.DefaultCost,
	}
}

// Validate reports whether the candidate password satisfies the policy
func (p PasswordPolicy) Validate(password string) bool {
	if len(password) < p.MinLength {
		return false
	}
	if p.RequireUpper && !strings.ContainsFunc(password, func(r rune) bool { return r >= 'A' && r <= 'Z' }) {
		return false
	}
	if p.RequireNumber && !strings.ContainsFunc(password, func(r rune) bool { return r >= '0' && r <= '9' }) {
		return false
	}
	if p.RequireSymbol && !strings.ContainsAny(password, p.SymbolSet) {
		return false
	}
	return true
}

// AuthFlow handles registration, login and session management
type AuthFlow interface {
	RequestOTP(ctx context.Context, req *dto.RequestOTPRequest, metadata *ClientMetadata) (*dto.RequestOTPResponse, error)
	Register(ctx context.Context, req *dto.RegisterRequest, metadata *ClientMetadata) (*dto.AuthResponse, error)
	Login(ctx context.Context, req *dto.LoginRequest, metadata *ClientMetadata) (*dto.AuthResponse, *dto.OTPChallengeResponse, error)
	Logout(ctx context.Context, sessionToken string, metadata *ClientMetadata) error
	Me(ctx context.Context, userID uint) (*dto.AuthUserDTO, error)
}

// AuthFlowImpl implements the auth business flow
type AuthFlowImpl struct {
	userRepo        repository.UserRepository
	otpRepo         repository.OTPChallengeRepository
	sessionRepo     repository.UserSessionRepository
	auditRepo       repository.AuditLogRepository
	tokenService    services.TokenService
	notificationSvc services.NotificationService
	passwordPolicy  PasswordPolicy
	db              *gorm.DB
}

// NewAuthFlow creates a new auth flow instance
func NewAuthFlow(
	userRepo repository.UserRepository,
	otpRepo repository.OTPChallengeRepository,
	sessionRepo repository.UserSessionRepository,
	auditRepo repository.AuditLogRepository,
	tokenService services.TokenService,
	notificationSvc services.NotificationService,
	passwordPolicy PasswordPolicy,
	db *gorm.DB,
) AuthFlow {
	return &AuthFlowImpl{
		userRepo:        userRepo,
		otpRepo:         otpRepo,
		sessionRepo:     sessionRepo,
		auditRepo:       auditRepo,
		tokenService:    tokenService,
		notificationSvc: notificationSvc,
		passwordPolicy:  passwordPolicy,
		db:              db,
	}
}

// RequestOTP issues a fresh verification code for the email. A second
// request before the first expires replaces it, last write wins.
func (s *AuthFlowImpl) RequestOTP(ctx context.Context, req *dto.RequestOTPRequest, metadata *ClientMetadata) (*dto.RequestOTPResponse, error) {
	email := utils.NormalizeEmail(req.Email)

	code, err := s.issueChallenge(ctx, email)
	if err != nil {
		return nil, NewBusinessError("OTP_REQUEST_FAILED", "Could not issue verification code", err)
	}

	_ = s.createAuditLog(ctx, nil, models.AuditActionOTPRequested, fmt.Sprintf("OTP issued for %s", email), true, nil, metadata)

	// Delivery happens outside any transaction. A provider outage must not
	// fail issuance, so the code is logged as a fallback channel.
	go s.deliverCode(email, code, metadata)

	return &dto.RequestOTPResponse{
		Email:     email,
		ExpiresIn: int(utils.OTPExpiry.Seconds()),
	}, nil
}

// Register creates a user account once the emailed code checks out
func (s *AuthFlowImpl) Register(ctx context.Context, req *dto.RegisterRequest, metadata *ClientMetadata) (*dto.AuthResponse, error) {
	email := utils.NormalizeEmail(req.Email)

	if !s.passwordPolicy.Validate(req.Password) {
		return nil, NewBusinessError("WEAK_PASSWORD", "Password does not meet policy", ErrWeakPassword)
	}

	var user *models.User
	var session *models.UserSession

	err := repository.WithTransaction(ctx, s.db, func(txCtx context.Context) error {
		existing, err := s.userRepo.ByEmail(txCtx, email)
		if err != nil {
			return err
		}
		if existing != nil {
			return ErrEmailAlreadyExists
		}

		if err := s.verifyChallenge(txCtx, email, req.OTPCode); err != nil {
			return err
		}

		user, err = s.createUser(txCtx, req, email)
		if err != nil {
			return err
		}

		session, err = s.createSession(txCtx, user, metadata)
		return err
	})

	if err != nil {
		errMsg := fmt.Sprintf("Registration failed: %s", err.Error())
		_ = s.createAuditLog(ctx, user, models.AuditActionLoginFailed, errMsg, false, &errMsg, metadata)

		return nil, wrapAuthError("REGISTRATION_FAILED", "Registration failed", err)
	}

	msg := fmt.Sprintf("User registered: %d", user.ID)
	_ = s.createAuditLog(ctx, user, models.AuditActionRegisterCompleted, msg, true, nil, metadata)

	return &dto.AuthResponse{
		User:    ToAuthUserDTO(*user),
		Session: ToSessionDTO(*session),
	}, nil
}

// Login authenticates by password; owner accounts additionally need a
// verification code. Phase one (no code supplied) issues the code and
// returns a challenge instead of tokens.
func (s *AuthFlowImpl) Login(ctx context.Context, req *dto.LoginRequest, metadata *ClientMetadata) (*dto.AuthResponse, *dto.OTPChallengeResponse, error) {
	email := utils.NormalizeEmail(req.Email)

	user, err := s.userRepo.ByEmail(ctx, email)
	if err != nil {
		return nil, nil, NewBusinessError("LOGIN_FAILED", "Login failed", err)
	}
	if user == nil {
		return nil, nil, NewBusinessError("USER_NOT_FOUND", "User not found", ErrUserNotFound)
	}
	if !utils.IsTrue(user.IsActive) {
		return nil, nil, NewBusinessError("ACCOUNT_INACTIVE", "Account is inactive", ErrAccountInactive)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.Password)); err != nil {
		errMsg := "incorrect password"
		_ = s.createAuditLog(ctx, user, models.AuditActionLoginFailed, errMsg, false, &errMsg, metadata)
		return nil, nil, NewBusinessError("INCORRECT_PASSWORD", "Incorrect password", ErrIncorrectPassword)
	}

	if user.IsOwner() {
		if req.OTPCode == "" {
			code, err := s.issueChallenge(ctx, email)
			if err != nil {
				return nil, nil, NewBusinessError("OTP_REQUEST_FAILED", "Could not issue verification code", err)
			}

			_ = s.createAuditLog(ctx, user, models.AuditActionOTPRequested, "owner login challenge issued", true, nil, metadata)
			go s.deliverCode(email, code, metadata)

			return nil, &dto.OTPChallengeResponse{
				RequiresOTP: true,
				Email:       email,
				ExpiresIn:   int(utils.OTPExpiry.Seconds()),
			}, nil
		}

		if err := s.verifyChallenge(ctx, email, req.OTPCode); err != nil {
			errMsg := fmt.Sprintf("owner OTP verification failed: %s", err.Error())
			_ = s.createAuditLog(ctx, user, models.AuditActionOTPFailed, errMsg, false, &errMsg, metadata)
			return nil, nil, wrapAuthError("LOGIN_FAILED", "Login failed", err)
		}
	}

	var session *models.UserSession
	err = repository.WithTransaction(ctx, s.db, func(txCtx context.Context) error {
		var err error
		session, err = s.createSession(txCtx, user, metadata)
		if err != nil {
			return err
		}

		return s.userRepo.UpdateLastLogin(txCtx, user.ID, utils.UTCNow())
	})
	if err != nil {
		return nil, nil, NewBusinessError("LOGIN_FAILED", "Login failed", err)
	}

	_ = s.createAuditLog(ctx, user, models.AuditActionLoginSuccess, fmt.Sprintf("login: %d", user.ID), true, nil, metadata)

	user.LastLoginAt = utils.UTCNowPtr()
	return &dto.AuthResponse{
		User:    ToAuthUserDTO(*user),
		Session: ToSessionDTO(*session),
	}, nil, nil
}

// Logout deactivates the session behind the presented token
func (s *AuthFlowImpl) Logout(ctx context.Context, sessionToken string, metadata *ClientMetadata) error {
	session, err := s.sessionRepo.BySessionToken(ctx, sessionToken)
	if err != nil {
		return NewBusinessError("LOGOUT_FAILED", "Logout failed", err)
	}
	if session == nil {
		return NewBusinessError("SESSION_NOT_FOUND", "Session not found", ErrSessionNotFound)
	}

	if err := s.sessionRepo.DeactivateSession(ctx, session.ID); err != nil {
		return NewBusinessError("LOGOUT_FAILED", "Logout failed", err)
	}

	_ = s.createAuditLog(ctx, &session.User, models.AuditActionLogout, fmt.Sprintf("logout: %d", session.UserID), true, nil, metadata)
	return nil
}

// Me returns the authenticated user's profile
func (s *AuthFlowImpl) Me(ctx context.Context, userID uint) (*dto.AuthUserDTO, error) {
	user, err := s.userRepo.ByID(ctx, userID)
	if err != nil {
		return nil, NewBusinessError("PROFILE_FAILED", "Could not load profile", err)
	}
	if user == nil {
		return nil, NewBusinessError("USER_NOT_FOUND", "User not found", ErrUserNotFound)
	}

	out := ToAuthUserDTO(*user)
	return &out, nil
}

// Private helper methods

// issueChallenge writes a fresh challenge row for the email and returns the code
func (s *AuthFlowImpl) issueChallenge(ctx context.Context, email string) (string, error) {
	code, err := GenerateOTP()
	if err != nil {
		return "", err
	}

	now := utils.UTCNow()
	challenge := &models.OTPChallenge{
		Email:         email,
		Code:          code,
		AttemptsCount: 0,
		MaxAttempts:   utils.OTPMaxAttempts,
		CreatedAt:     now,
		ExpiresAt:     now.Add(utils.OTPExpiry),
	}

	if err := s.otpRepo.Upsert(ctx, challenge); err != nil {
		return "", err
	}

	return code, nil
}

// verifyChallenge checks the supplied code against the live challenge.
// Wrong codes burn an attempt; the third wrong code deletes the challenge
// and locks the flow out. Success and lockout both consume the challenge.
// Failure bookkeeping writes through the base connection: the caller's
// transaction rolls back on the very errors returned here, and a rollback
// must not refund a burned attempt or undo a lockout.
func (s *AuthFlowImpl) verifyChallenge(ctx context.Context, email, code string) error {
	challenge, err := s.otpRepo.ByEmail(ctx, email)
	if err != nil {
		return err
	}
	if challenge == nil {
		return ErrNoValidOTPFound
	}

	baseCtx := repository.WithoutTransaction(ctx)

	if challenge.IsExpired() {
		_ = s.otpRepo.DeleteByEmail(baseCtx, email)
		return ErrOTPExpired
	}

	if challenge.Code != code {
		if err := s.otpRepo.IncrementAttempts(baseCtx, challenge.ID); err != nil {
			return err
		}
		challenge.AttemptsCount++

		if challenge.AttemptsCount >= challenge.MaxAttempts {
			_ = s.otpRepo.DeleteByEmail(baseCtx, email)
			return ErrOTPLockedOut
		}

		return fmt.Errorf("%w: %d attempts remaining", ErrInvalidOTPCode, challenge.RemainingAttempts())
	}

	return s.otpRepo.DeleteByEmail(ctx, email)
}

func (s *AuthFlowImpl) createUser(ctx context.Context, req *dto.RegisterRequest, email string) (*models.User, error) {
	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(req.Password), s.passwordPolicy.BcryptCost)
	if err != nil {
		return nil, err
	}

	var mobile *string
	if req.Mobile != "" {
		mobile = &req.Mobile
	}

	user := &models.User{
		UUID:         uuid.New(),
		Name:         req.Name,
		Email:        email,
		Mobile:       mobile,
		PasswordHash: string(hashedPassword),
		Role:         models.RoleUser,
		IsActive:     utils.ToPtr(true),
	}

	if err := s.userRepo.Save(ctx, user); err != nil {
		return nil, err
	}

	return user, nil
}

func (s *AuthFlowImpl) createSession(ctx context.Context, user *models.User, metadata *ClientMetadata) (*models.UserSession, error) {
	accessToken, refreshToken, err := s.tokenService.GenerateTokens(user.ID, user.Role)
	if err != nil {
		return nil, err
	}

	ipAddress := "127.0.0.1"
	userAgent := ""
	if metadata != nil {
		ipAddress = metadata.IPAddress
		userAgent = metadata.UserAgent
	}

	now := utils.UTCNow()
	session := &models.UserSession{
		CorrelationID: uuid.New(),
		UserID:        user.ID,
		SessionToken:  accessToken,
		RefreshToken:  &refreshToken,
		IPAddress:     &ipAddress,
		UserAgent:     &userAgent,
		IsActive:      utils.ToPtr(true),
		CreatedAt:     now,
		ExpiresAt:     now.Add(utils.AccessTokenTTL),
	}

	if err := s.sessionRepo.Save(ctx, session); err != nil {
		return nil, err
	}

	return session, nil
}

// deliverCode sends the OTP email, falling back to the log on failure
func (s *AuthFlowImpl) deliverCode(email, code string, metadata *ClientMetadata) {
	subject := "Your verification code"
	message := fmt.Sprintf("Your verification code is: %s. Valid for 5 minutes.", code)

	if err := s.notificationSvc.SendEmail(email, subject, message); err != nil {
		log.Printf("[FALLBACK OTP] Code for %s: %s", email, code)

		errMsg := fmt.Sprintf("failed to deliver OTP email: %v", err)
		_ = s.createAuditLog(context.Background(), nil, models.AuditActionOTPRequested, errMsg, false, &errMsg, metadata)
	}
}

func (s *AuthFlowImpl) createAuditLog(ctx context.Context, user *models.User, action, description string, success bool, errorMsg *string, metadata *ClientMetadata) error {
	var userID *uint
	if user != nil && user.ID != 0 {
		userID = &user.ID
	}

	ipAddress := "127.0.0.1"
	userAgent := ""
	if metadata != nil {
		ipAddress = metadata.IPAddress
		userAgent = metadata.UserAgent
	}

	audit := &models.AuditLog{
		UserID:       userID,
		Action:       action,
		Description:  &description,
		Success:      utils.ToPtr(success),
		IPAddress:    &ipAddress,
		UserAgent:    &userAgent,
		ErrorMessage: errorMsg,
	}

	requestID := ctx.Value(RequestIDKey)
	if requestID != nil {
		if requestIDStr, ok := requestID.(string); ok {
			audit.RequestID = &requestIDStr
		}
	}

	return s.auditRepo.Save(ctx, audit)
}

// wrapAuthError keeps the sentinel visible through the business error so
// handlers map lockout, expiry and mismatch to distinct responses
func wrapAuthError(code, message string, err error) *BusinessError {
	switch {
	case IsOTPLockedOut(err):
		return NewBusinessError("TOO_MANY_ATTEMPTS", "Too many failed attempts", err)
	case IsOTPExpired(err):
		return NewBusinessError("OTP_EXPIRED", "OTP has expired", err)
	case IsNoValidOTPFound(err):
		return NewBusinessError("OTP_NOT_FOUND", "No valid OTP found", err)
	case IsInvalidOTPCode(err):
		return NewBusinessError("INVALID_OTP", "Invalid OTP code", err)
	case IsEmailAlreadyExists(err):
		return NewBusinessError("EMAIL_EXISTS", "Email already exists", err)
	default:
		return NewBusinessError(code, message, err)
	}
}

// GenerateOTP returns a uniform 6-digit code from crypto/rand
func GenerateOTP() (string, error) {
	n, err := rand.Int(rand.Reader, big.NewInt(1000000))
	if err != nil {
		return "", err
	}

	return fmt.Sprintf("%06d", n.Int64()), nil
}
