package businessflow_test

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/killaresto/killa-backend/app/dto"
	"github.com/killaresto/killa-backend/app/services"
	businessflow "github.com/killaresto/killa-backend/business_flow"
	"github.com/killaresto/killa-backend/models"
	"github.com/killaresto/killa-backend/repository"
	testingutil "github.com/killaresto/killa-backend/testing"
	"github.com/killaresto/killa-backend/utils"
)

// requireTestDB skips database-backed tests unless a test server is configured
func requireTestDB(t *testing.T) {
	t.Helper()
	if os.Getenv("TEST_DB_HOST") == "" {
		t.Skip("TEST_DB_HOST not set, skipping database integration test")
	}
}

func testMetadata() *businessflow.ClientMetadata {
	return &businessflow.ClientMetadata{
		IPAddress: "127.0.0.1",
		UserAgent: "Test User Agent",
		RequestID: "test-request-id",
	}
}

func newTestTokenService(t *testing.T) services.TokenService {
	t.Helper()
	tokenService, err := services.NewTokenService(
		1*time.Hour, 24*time.Hour,
		"test-issuer", "test-audience",
		false, "", "", "test-secret-key-0123456789abcdef",
	)
	require.NoError(t, err)
	return tokenService
}

func newAuthFlow(t *testing.T, testDB *testingutil.TestDB) businessflow.AuthFlow {
	t.Helper()

	userRepo := repository.NewUserRepository(testDB.DB)
	otpRepo := repository.NewOTPChallengeRepository(testDB.DB)
	sessionRepo := repository.NewUserSessionRepository(testDB.DB)
	auditRepo := repository.NewAuditLogRepository(testDB.DB)

	notificationService := services.NewNotificationService(services.NewDevEmailProvider())

	return businessflow.NewAuthFlow(
		userRepo,
		otpRepo,
		sessionRepo,
		auditRepo,
		newTestTokenService(t),
		notificationService,
		businessflow.DefaultPasswordPolicy(),
		testDB.DB,
	)
}

func TestPasswordPolicy(t *testing.T) {
	policy := businessflow.DefaultPasswordPolicy()

	cases := []struct {
		name     string
		password string
		valid    bool
	}{
		{"MeetsPolicy", "Secure@1", true},
		{"NoDigitStillValid", "Secure@pass", true},
		{"TooShort", "Ab@1", false},
		{"NoUppercase", "secure@123", false},
		{"NoSymbol", "Secure123", false},
		{"SymbolOutsideSet", "Secure.123", false},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.valid, policy.Validate(tc.password))
		})
	}
}

func TestGenerateOTP(t *testing.T) {
	for i := 0; i < 20; i++ {
		code, err := businessflow.GenerateOTP()
		require.NoError(t, err)
		assert.Len(t, code, 6)
		for _, r := range code {
			assert.True(t, r >= '0' && r <= '9')
		}
	}
}

func TestRegister(t *testing.T) {
	requireTestDB(t)

	err := testingutil.TestWithDB(func(testDB *testingutil.TestDB) error {
		fixtures := testingutil.NewTestFixtures(testDB)
		authFlow := newAuthFlow(t, testDB)
		userRepo := repository.NewUserRepository(testDB.DB)
		otpRepo := repository.NewOTPChallengeRepository(testDB.DB)
		ctx := context.Background()

		t.Run("SuccessfulRegistration", func(t *testing.T) {
			email := "new.user@example.com"
			_, err := fixtures.CreateTestOTP(email, "123456")
			require.NoError(t, err)

			result, err := authFlow.Register(ctx, &dto.RegisterRequest{
				Name:     "New User",
				Email:    email,
				Password: "Secure@1",
				OTPCode:  "123456",
			}, testMetadata())
			require.NoError(t, err)
			require.NotNil(t, result)

			assert.Equal(t, email, result.User.Email)
			assert.Equal(t, models.RoleUser, result.User.Role)
			assert.NotEmpty(t, result.Session.AccessToken)
			assert.NotNil(t, result.Session.RefreshToken)

			user, err := userRepo.ByEmail(ctx, email)
			require.NoError(t, err)
			require.NotNil(t, user)
			assert.True(t, utils.IsTrue(user.IsActive))

			// Challenge is consumed on success
			challenge, err := otpRepo.ByEmail(ctx, email)
			require.NoError(t, err)
			assert.Nil(t, challenge)
		})

		t.Run("DuplicateEmail", func(t *testing.T) {
			existing, err := fixtures.CreateTestUser(models.RoleUser)
			require.NoError(t, err)

			_, err = fixtures.CreateTestOTP(existing.Email, "123456")
			require.NoError(t, err)

			_, err = authFlow.Register(ctx, &dto.RegisterRequest{
				Name:     "Someone Else",
				Email:    existing.Email,
				Password: "Secure@1",
				OTPCode:  "123456",
			}, testMetadata())
			require.Error(t, err)
			assert.True(t, businessflow.IsEmailAlreadyExists(err))
		})

		t.Run("WeakPassword", func(t *testing.T) {
			_, err := authFlow.Register(ctx, &dto.RegisterRequest{
				Name:     "Weak",
				Email:    "weak@example.com",
				Password: "nopolicy",
				OTPCode:  "123456",
			}, testMetadata())
			require.Error(t, err)
			assert.True(t, businessflow.IsWeakPassword(err))
		})

		t.Run("NoChallengeIssued", func(t *testing.T) {
			_, err := authFlow.Register(ctx, &dto.RegisterRequest{
				Name:     "No Code",
				Email:    "nocode@example.com",
				Password: "Secure@1",
				OTPCode:  "123456",
			}, testMetadata())
			require.Error(t, err)
			assert.True(t, businessflow.IsNoValidOTPFound(err))
		})

		t.Run("ExpiredChallenge", func(t *testing.T) {
			email := "expired@example.com"
			_, err := fixtures.CreateExpiredOTP(email, "123456")
			require.NoError(t, err)

			_, err = authFlow.Register(ctx, &dto.RegisterRequest{
				Name:     "Expired",
				Email:    email,
				Password: "Secure@1",
				OTPCode:  "123456",
			}, testMetadata())
			require.Error(t, err)
			assert.True(t, businessflow.IsOTPExpired(err))

			// Expired challenge is deleted on read
			challenge, err := otpRepo.ByEmail(ctx, email)
			require.NoError(t, err)
			assert.Nil(t, challenge)
		})

		t.Run("LockoutAfterThreeWrongCodes", func(t *testing.T) {
			email := "lockout@example.com"
			_, err := fixtures.CreateTestOTP(email, "123456")
			require.NoError(t, err)

			req := &dto.RegisterRequest{
				Name:     "Lockout",
				Email:    email,
				Password: "Secure@1",
				OTPCode:  "000000",
			}

			_, err = authFlow.Register(ctx, req, testMetadata())
			require.Error(t, err)
			assert.True(t, businessflow.IsInvalidOTPCode(err))

			// The burned attempt survives the failed registration's rollback
			stored, err := otpRepo.ByEmail(ctx, email)
			require.NoError(t, err)
			require.NotNil(t, stored)
			assert.Equal(t, 1, stored.AttemptsCount)

			_, err = authFlow.Register(ctx, req, testMetadata())
			require.Error(t, err)
			assert.True(t, businessflow.IsInvalidOTPCode(err))

			stored, err = otpRepo.ByEmail(ctx, email)
			require.NoError(t, err)
			require.NotNil(t, stored)
			assert.Equal(t, 2, stored.AttemptsCount)

			_, err = authFlow.Register(ctx, req, testMetadata())
			require.Error(t, err)
			assert.True(t, businessflow.IsOTPLockedOut(err))

			// Lockout consumes the challenge; even the right code fails now
			stored, err = otpRepo.ByEmail(ctx, email)
			require.NoError(t, err)
			assert.Nil(t, stored)

			req.OTPCode = "123456"
			_, err = authFlow.Register(ctx, req, testMetadata())
			require.Error(t, err)
			assert.True(t, businessflow.IsNoValidOTPFound(err))
		})

		return nil
	})
	require.NoError(t, err)
}

func TestLogin(t *testing.T) {
	requireTestDB(t)

	err := testingutil.TestWithDB(func(testDB *testingutil.TestDB) error {
		fixtures := testingutil.NewTestFixtures(testDB)
		authFlow := newAuthFlow(t, testDB)
		otpRepo := repository.NewOTPChallengeRepository(testDB.DB)
		ctx := context.Background()

		t.Run("SuccessfulUserLogin", func(t *testing.T) {
			user, err := fixtures.CreateTestUser(models.RoleUser)
			require.NoError(t, err)

			auth, challenge, err := authFlow.Login(ctx, &dto.LoginRequest{
				Email:    user.Email,
				Password: "TestPass1!",
			}, testMetadata())
			require.NoError(t, err)
			require.Nil(t, challenge)
			require.NotNil(t, auth)
			assert.Equal(t, user.ID, auth.User.ID)
			assert.NotEmpty(t, auth.Session.AccessToken)
		})

		t.Run("IncorrectPassword", func(t *testing.T) {
			user, err := fixtures.CreateTestUser(models.RoleUser)
			require.NoError(t, err)

			_, _, err = authFlow.Login(ctx, &dto.LoginRequest{
				Email:    user.Email,
				Password: "WrongPass1!",
			}, testMetadata())
			require.Error(t, err)
			assert.True(t, businessflow.IsIncorrectPassword(err))
		})

		t.Run("UnknownUser", func(t *testing.T) {
			_, _, err := authFlow.Login(ctx, &dto.LoginRequest{
				Email:    "nobody@example.com",
				Password: "TestPass1!",
			}, testMetadata())
			require.Error(t, err)
			assert.True(t, businessflow.IsUserNotFound(err))
		})

		t.Run("OwnerLoginTwoPhases", func(t *testing.T) {
			owner, err := fixtures.CreateTestUser(models.RoleOwner)
			require.NoError(t, err)

			// Phase one: correct password, no code, issues a challenge
			auth, challenge, err := authFlow.Login(ctx, &dto.LoginRequest{
				Email:    owner.Email,
				Password: "TestPass1!",
			}, testMetadata())
			require.NoError(t, err)
			require.Nil(t, auth)
			require.NotNil(t, challenge)
			assert.True(t, challenge.RequiresOTP)

			stored, err := otpRepo.ByEmail(ctx, owner.Email)
			require.NoError(t, err)
			require.NotNil(t, stored)

			// Phase two: password plus the emailed code
			auth, challenge, err = authFlow.Login(ctx, &dto.LoginRequest{
				Email:    owner.Email,
				Password: "TestPass1!",
				OTPCode:  stored.Code,
			}, testMetadata())
			require.NoError(t, err)
			require.Nil(t, challenge)
			require.NotNil(t, auth)
			assert.Equal(t, models.RoleOwner, auth.User.Role)
		})

		t.Run("OwnerWrongCodeBurnsAttempt", func(t *testing.T) {
			owner, err := fixtures.CreateTestUser(models.RoleOwner)
			require.NoError(t, err)

			_, _, err = authFlow.Login(ctx, &dto.LoginRequest{
				Email:    owner.Email,
				Password: "TestPass1!",
			}, testMetadata())
			require.NoError(t, err)

			_, _, err = authFlow.Login(ctx, &dto.LoginRequest{
				Email:    owner.Email,
				Password: "TestPass1!",
				OTPCode:  "000000",
			}, testMetadata())
			require.Error(t, err)
			assert.True(t, businessflow.IsInvalidOTPCode(err))

			// Attempt bookkeeping persists across login calls
			stored, err := otpRepo.ByEmail(ctx, owner.Email)
			require.NoError(t, err)
			require.NotNil(t, stored)
			assert.Equal(t, 1, stored.AttemptsCount)
		})

		return nil
	})
	require.NoError(t, err)
}

func TestLogoutAndMe(t *testing.T) {
	requireTestDB(t)

	err := testingutil.TestWithDB(func(testDB *testingutil.TestDB) error {
		fixtures := testingutil.NewTestFixtures(testDB)
		authFlow := newAuthFlow(t, testDB)
		sessionRepo := repository.NewUserSessionRepository(testDB.DB)
		ctx := context.Background()

		user, err := fixtures.CreateTestUser(models.RoleUser)
		require.NoError(t, err)

		auth, _, err := authFlow.Login(ctx, &dto.LoginRequest{
			Email:    user.Email,
			Password: "TestPass1!",
		}, testMetadata())
		require.NoError(t, err)

		t.Run("Me", func(t *testing.T) {
			profile, err := authFlow.Me(ctx, user.ID)
			require.NoError(t, err)
			assert.Equal(t, user.Email, profile.Email)
		})

		t.Run("Logout", func(t *testing.T) {
			err := authFlow.Logout(ctx, auth.Session.AccessToken, testMetadata())
			require.NoError(t, err)

			session, err := sessionRepo.BySessionToken(ctx, auth.Session.AccessToken)
			require.NoError(t, err)
			assert.Nil(t, session)
		})

		t.Run("LogoutUnknownToken", func(t *testing.T) {
			err := authFlow.Logout(ctx, "not-a-session-token", testMetadata())
			require.Error(t, err)
		})

		return nil
	})
	require.NoError(t, err)
}
