package businessflow_test

import (
	"context"
	"testing"
	"time"

	"github.com/smart-stationery/backend/app/dto"
	"github.com/smart-stationery/backend/app/services"
	businessflow "github.com/smart-stationery/backend/business_flow"
	"github.com/smart-stationery/backend/models"
	"github.com/smart-stationery/backend/repository"
	testingutil "github.com/smart-stationery/backend/testing"
	"github.com/smart-stationery/backend/utils"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func newSignupFlow(t *testing.T, db *gorm.DB) businessflow.SignupFlow {
	t.Helper()

	tokenService, err := services.NewTokenService(
		15*time.Minute, 7*24*time.Hour,
		"smart-stationery", "smart-stationery-api",
		"test-secret-key-with-enough-entropy-for-hmac")
	require.NoError(t, err)

	return businessflow.NewSignupFlow(
		repository.NewUserRepository(db),
		repository.NewAccountTypeRepository(db),
		repository.NewSequenceRepository(db),
		repository.NewOTPVerificationRepository(db),
		repository.NewUserSessionRepository(db),
		repository.NewAuditLogRepository(db),
		tokenService,
		services.NewNotificationService(services.NewMockEmailProvider()),
		db,
	)
}

func testMetadata() *businessflow.ClientMetadata {
	return &businessflow.ClientMetadata{IPAddress: "127.0.0.1", UserAgent: "test-agent"}
}

func personalSignupRequest(email string) *dto.SignupRequest {
	return &dto.SignupRequest{
		AccountType:     models.AccountTypePersonal,
		FirstName:       "Sara",
		LastName:        "Mohammadi",
		Mobile:          "+989121112233",
		Email:           email,
		Password:        "StrongPass123!",
		ConfirmPassword: "StrongPass123!",
	}
}

// latestPendingOTP reads the code the flow generated so the test can play the
// role of the email recipient.
func latestPendingOTP(t *testing.T, db *gorm.DB, email string) string {
	t.Helper()
	var otp models.OTPVerification
	err := db.Where("target_value = ? AND status = ?", email, models.OTPStatusPending).
		Order("created_at DESC").First(&otp).Error
	require.NoError(t, err)
	return otp.OTPCode
}

func TestSignup(t *testing.T) {
	err := testingutil.TestWithDB(func(testDB *testingutil.TestDB) error {
		flow := newSignupFlow(t, testDB.DB)
		ctx := context.Background()

		t.Run("PersonalAccount", func(t *testing.T) {
			resp, err := flow.Signup(ctx, personalSignupRequest("sara@example.com"), testMetadata())
			require.NoError(t, err)

			assert.Equal(t, int64(1), resp.UserID)
			assert.True(t, resp.OTPSent)
			assert.Equal(t, "s****a@example.com", resp.OTPTarget)

			// The email stays unverified until the OTP round-trip completes.
			user, err := repository.NewUserRepository(testDB.DB).BySequentialID(ctx, resp.UserID)
			require.NoError(t, err)
			require.NotNil(t, user)
			assert.False(t, utils.IsTrue(user.IsEmailVerified))
		})

		t.Run("DuplicateEmail", func(t *testing.T) {
			_, err := flow.Signup(ctx, personalSignupRequest("sara@example.com"), testMetadata())
			require.Error(t, err)
			assert.True(t, businessflow.IsEmailAlreadyExists(err))
		})

		t.Run("InstituteMissingFields", func(t *testing.T) {
			req := personalSignupRequest("school@example.com")
			req.AccountType = models.AccountTypeInstitute
			_, err := flow.Signup(ctx, req, testMetadata())
			require.Error(t, err)
			assert.True(t, businessflow.IsInstituteFieldsRequired(err))
		})

		t.Run("InstituteAccount", func(t *testing.T) {
			req := personalSignupRequest("institute@example.com")
			req.AccountType = models.AccountTypeInstitute
			req.Mobile = "+989124445566"
			req.InstituteName = utils.ToPtr("Danesh Institute")
			req.RegistrationNumber = utils.ToPtr("12345678")
			req.ContactPhone = utils.ToPtr("02112345678")

			resp, err := flow.Signup(ctx, req, testMetadata())
			require.NoError(t, err)
			assert.Equal(t, int64(2), resp.UserID)

			user, err := repository.NewUserRepository(testDB.DB).BySequentialID(ctx, resp.UserID)
			require.NoError(t, err)
			require.NotNil(t, user)
			assert.False(t, utils.IsTrue(user.IsInstituteVerified))
		})

		return nil
	})
	require.NoError(t, err)
}

func TestSignupAccountTypeMissing(t *testing.T) {
	err := testingutil.TestWithDB(func(testDB *testingutil.TestDB) error {
		flow := newSignupFlow(t, testDB.DB)
		ctx := context.Background()

		// No users exist yet, so the seeded account types can be removed to
		// simulate an unprovisioned database.
		require.NoError(t, testDB.DB.Where("1 = 1").Delete(&models.AccountType{}).Error)

		_, err := flow.Signup(ctx, personalSignupRequest("nobody@example.com"), testMetadata())
		require.Error(t, err)
		assert.True(t, businessflow.IsAccountTypeNotFound(err))

		return nil
	})
	require.NoError(t, err)
}

func TestVerifyOTP(t *testing.T) {
	err := testingutil.TestWithDB(func(testDB *testingutil.TestDB) error {
		flow := newSignupFlow(t, testDB.DB)
		ctx := context.Background()

		resp, err := flow.Signup(ctx, personalSignupRequest("verify@example.com"), testMetadata())
		require.NoError(t, err)

		t.Run("WrongCode", func(t *testing.T) {
			_, err := flow.VerifyOTP(ctx, &dto.OTPVerificationRequest{
				User:    "1",
				OTPCode: "000000",
				OTPType: models.OTPTypeEmail,
			}, testMetadata())
			require.Error(t, err)
			assert.True(t, businessflow.IsInvalidOTPCode(err))
		})

		t.Run("CorrectCode", func(t *testing.T) {
			code := latestPendingOTP(t, testDB.DB, "verify@example.com")

			verified, err := flow.VerifyOTP(ctx, &dto.OTPVerificationRequest{
				User:    "1",
				OTPCode: code,
				OTPType: models.OTPTypeEmail,
			}, testMetadata())
			require.NoError(t, err)

			assert.NotEmpty(t, verified.Token)
			assert.NotEmpty(t, verified.RefreshToken)
			assert.Equal(t, resp.UserID, verified.User.ID)
			assert.True(t, utils.IsTrue(verified.User.IsEmailVerified))
		})

		t.Run("SecondVerificationRejected", func(t *testing.T) {
			_, err := flow.VerifyOTP(ctx, &dto.OTPVerificationRequest{
				User:    "1",
				OTPCode: "123456",
				OTPType: models.OTPTypeEmail,
			}, testMetadata())
			require.Error(t, err)
			assert.True(t, businessflow.IsAlreadyVerified(err))
		})

		t.Run("UnknownUser", func(t *testing.T) {
			_, err := flow.VerifyOTP(ctx, &dto.OTPVerificationRequest{
				User:    "999",
				OTPCode: "123456",
				OTPType: models.OTPTypeEmail,
			}, testMetadata())
			require.Error(t, err)
			assert.True(t, businessflow.IsUserNotFound(err))
		})

		return nil
	})
	require.NoError(t, err)
}

func TestResendOTPCooldown(t *testing.T) {
	err := testingutil.TestWithDB(func(testDB *testingutil.TestDB) error {
		flow := newSignupFlow(t, testDB.DB)
		ctx := context.Background()

		_, err := flow.Signup(ctx, personalSignupRequest("resend@example.com"), testMetadata())
		require.NoError(t, err)

		// A resend right after signup lands inside the cooldown window.
		_, err = flow.ResendOTP(ctx, &dto.OTPResendRequest{
			User:    "1",
			OTPType: models.OTPTypeEmail,
		}, testMetadata())
		require.Error(t, err)
		assert.True(t, businessflow.IsOTPResendCooldown(err))

		return nil
	})
	require.NoError(t, err)
}
