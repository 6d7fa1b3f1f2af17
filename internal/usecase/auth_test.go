package usecase

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nandanfoods/grocer-api/internal/config"
	"github.com/nandanfoods/grocer-api/internal/otp"
	"github.com/nandanfoods/grocer-api/shared/auth"
)

func testTokenConfig() config.TokenConfig {
	return config.TokenConfig{
		Secret:          "test-secret",
		Issuer:          "grocer-api",
		SessionTTL:      time.Hour,
		ResetTokenTTL:   5 * time.Minute,
		OTPChallengeTTL: 10 * time.Minute,
	}
}

type authFixture struct {
	usecase AuthUsecase
	users   *fakeUserRepo
	mailer  *capturingMailer
	issuer  auth.TokenIssuer
}

func newAuthFixture(t *testing.T) *authFixture {
	t.Helper()

	cfg := testTokenConfig()
	users := newFakeUserRepo()
	mailer := &capturingMailer{}
	issuer := auth.NewTokenIssuer(cfg.Secret, cfg.Issuer)
	engine := otp.NewEngine(users, cfg.OTPChallengeTTL)
	verifier := &fakeFederatedVerifier{token: "good-id-token", email: "fed@example.com"}

	return &authFixture{
		usecase: NewAuthUsecase(users, engine, mailer, verifier, issuer, cfg),
		users:   users,
		mailer:  mailer,
		issuer:  issuer,
	}
}

func TestRegisterVerifyLoginRoundTrip(t *testing.T) {
	fx := newAuthFixture(t)
	ctx := context.Background()

	err := fx.usecase.Register(ctx, RegisterParams{
		Email:    "amit@example.com",
		Password: "longpass1",
		Name:     "Amit",
		Phone:    "9999999999",
	})
	require.NoError(t, err)
	require.Equal(t, "amit@example.com", fx.mailer.verificationTo)
	require.Len(t, fx.mailer.verificationCode, 6)

	stored := fx.users.byEmail("amit@example.com")
	require.NotNil(t, stored)
	assert.False(t, stored.Verified)
	assert.NotEqual(t, "longpass1", stored.PasswordHash)
	require.NotNil(t, stored.OTPChallenge)
	assert.NotContains(t, stored.OTPChallenge.Hash, fx.mailer.verificationCode)

	// Login is refused until the mailed code comes back.
	_, _, err = fx.usecase.Login(ctx, "amit@example.com", "longpass1")
	assert.ErrorIs(t, err, ErrNotVerified)

	require.NoError(t, fx.usecase.VerifyEmail(ctx, "amit@example.com", fx.mailer.verificationCode))
	assert.True(t, stored.Verified)
	assert.Nil(t, stored.OTPChallenge)

	user, token, err := fx.usecase.Login(ctx, "amit@example.com", "longpass1")
	require.NoError(t, err)
	assert.Equal(t, "amit@example.com", user.Email)

	subject, err := fx.issuer.VerifySession(token)
	require.NoError(t, err)
	assert.Equal(t, stored.ID.Hex(), subject)
}

func TestRegisterRejectsShortPassword(t *testing.T) {
	fx := newAuthFixture(t)

	err := fx.usecase.Register(context.Background(), RegisterParams{
		Email:    "amit@example.com",
		Password: "short",
	})
	assert.ErrorIs(t, err, ErrPasswordTooShort)
	assert.Zero(t, fx.mailer.sends)
}

func TestRegisterOverVerifiedAccountFails(t *testing.T) {
	fx := newAuthFixture(t)
	ctx := context.Background()

	require.NoError(t, fx.usecase.Register(ctx, RegisterParams{
		Email:    "amit@example.com",
		Password: "longpass1",
	}))
	require.NoError(t, fx.usecase.VerifyEmail(ctx, "amit@example.com", fx.mailer.verificationCode))

	err := fx.usecase.Register(ctx, RegisterParams{
		Email:    "amit@example.com",
		Password: "otherpass9",
	})
	assert.ErrorIs(t, err, ErrUserAlreadyExists)
}

func TestRegisterOverwritesUnfinishedSignup(t *testing.T) {
	fx := newAuthFixture(t)
	ctx := context.Background()

	require.NoError(t, fx.usecase.Register(ctx, RegisterParams{
		Email:    "amit@example.com",
		Password: "longpass1",
		Name:     "First Try",
	}))
	firstCode := fx.mailer.verificationCode

	require.NoError(t, fx.usecase.Register(ctx, RegisterParams{
		Email:    "amit@example.com",
		Password: "otherpass9",
		Name:     "Second Try",
	}))

	stored := fx.users.byEmail("amit@example.com")
	require.NotNil(t, stored)
	assert.Equal(t, "Second Try", stored.Name)

	// The first code died with the overwritten challenge.
	if firstCode != fx.mailer.verificationCode {
		assert.ErrorIs(t, fx.usecase.VerifyEmail(ctx, "amit@example.com", firstCode), otp.ErrMismatch)
	}
	require.NoError(t, fx.usecase.VerifyEmail(ctx, "amit@example.com", fx.mailer.verificationCode))

	_, _, err := fx.usecase.Login(ctx, "amit@example.com", "otherpass9")
	assert.NoError(t, err)
	_, _, err = fx.usecase.Login(ctx, "amit@example.com", "longpass1")
	assert.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestVerifyEmailWrongCodeCountsAttempt(t *testing.T) {
	fx := newAuthFixture(t)
	ctx := context.Background()

	require.NoError(t, fx.usecase.Register(ctx, RegisterParams{
		Email:    "amit@example.com",
		Password: "longpass1",
	}))

	wrong := "000000"
	if wrong == fx.mailer.verificationCode {
		wrong = "000001"
	}

	err := fx.usecase.VerifyEmail(ctx, "amit@example.com", wrong)
	assert.ErrorIs(t, err, otp.ErrMismatch)

	stored := fx.users.byEmail("amit@example.com")
	require.NotNil(t, stored.OTPChallenge)
	assert.Equal(t, 1, stored.OTPChallenge.Attempts)
	assert.False(t, stored.Verified)

	// The right code still works afterwards.
	require.NoError(t, fx.usecase.VerifyEmail(ctx, "amit@example.com", fx.mailer.verificationCode))
}

func TestVerifyEmailExpiredCode(t *testing.T) {
	fx := newAuthFixture(t)
	ctx := context.Background()

	require.NoError(t, fx.usecase.Register(ctx, RegisterParams{
		Email:    "amit@example.com",
		Password: "longpass1",
	}))

	stored := fx.users.byEmail("amit@example.com")
	stored.OTPChallenge.ExpiresAt = time.Now().Add(-time.Second)

	err := fx.usecase.VerifyEmail(ctx, "amit@example.com", fx.mailer.verificationCode)
	assert.ErrorIs(t, err, otp.ErrExpired)
	assert.False(t, stored.Verified)
}

func TestVerifyEmailAlreadyVerified(t *testing.T) {
	fx := newAuthFixture(t)
	ctx := context.Background()

	require.NoError(t, fx.usecase.Register(ctx, RegisterParams{
		Email:    "amit@example.com",
		Password: "longpass1",
	}))
	require.NoError(t, fx.usecase.VerifyEmail(ctx, "amit@example.com", fx.mailer.verificationCode))

	err := fx.usecase.VerifyEmail(ctx, "amit@example.com", fx.mailer.verificationCode)
	assert.ErrorIs(t, err, ErrAlreadyVerified)
}

func TestLoginErrorBranches(t *testing.T) {
	fx := newAuthFixture(t)
	ctx := context.Background()

	_, _, err := fx.usecase.Login(ctx, "nobody@example.com", "longpass1")
	assert.ErrorIs(t, err, ErrInvalidCredentials)

	require.NoError(t, fx.usecase.Register(ctx, RegisterParams{
		Email:    "amit@example.com",
		Password: "longpass1",
	}))
	require.NoError(t, fx.usecase.VerifyEmail(ctx, "amit@example.com", fx.mailer.verificationCode))

	_, _, err = fx.usecase.Login(ctx, "amit@example.com", "wrongpass9")
	assert.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestLoginFederatedOnlyAccountHasNoPassword(t *testing.T) {
	fx := newAuthFixture(t)
	ctx := context.Background()

	_, _, err := fx.usecase.FederatedLogin(ctx, "good-id-token")
	require.NoError(t, err)

	_, _, err = fx.usecase.Login(ctx, "fed@example.com", "whatever12")
	assert.ErrorIs(t, err, ErrNoPassword)
}

func TestFederatedLoginCreatesVerifiedAccount(t *testing.T) {
	fx := newAuthFixture(t)
	ctx := context.Background()

	user, token, err := fx.usecase.FederatedLogin(ctx, "good-id-token")
	require.NoError(t, err)
	assert.Equal(t, "fed@example.com", user.Email)
	assert.True(t, user.Verified)

	subject, err := fx.issuer.VerifySession(token)
	require.NoError(t, err)
	assert.Equal(t, user.ID.Hex(), subject)

	// Second login reuses the account instead of creating another.
	again, _, err := fx.usecase.FederatedLogin(ctx, "good-id-token")
	require.NoError(t, err)
	assert.Equal(t, user.ID, again.ID)
	assert.Len(t, fx.users.users, 1)
}

func TestFederatedLoginRejectsBadToken(t *testing.T) {
	fx := newAuthFixture(t)

	_, _, err := fx.usecase.FederatedLogin(context.Background(), "forged")
	assert.ErrorIs(t, err, ErrInvalidIDToken)
}

func TestFederatedLoginUpgradesUnverifiedAccount(t *testing.T) {
	fx := newAuthFixture(t)
	ctx := context.Background()

	require.NoError(t, fx.usecase.Register(ctx, RegisterParams{
		Email:    "fed@example.com",
		Password: "longpass1",
	}))

	user, _, err := fx.usecase.FederatedLogin(ctx, "good-id-token")
	require.NoError(t, err)
	assert.True(t, user.Verified)
}

func TestCurrentUser(t *testing.T) {
	fx := newAuthFixture(t)
	ctx := context.Background()

	require.NoError(t, fx.usecase.Register(ctx, RegisterParams{
		Email:    "amit@example.com",
		Password: "longpass1",
	}))
	stored := fx.users.byEmail("amit@example.com")

	user, err := fx.usecase.CurrentUser(ctx, stored.ID.Hex())
	require.NoError(t, err)
	assert.Equal(t, "amit@example.com", user.Email)

	_, err = fx.usecase.CurrentUser(ctx, "ffffffffffffffffffffffff")
	assert.ErrorIs(t, err, ErrUserNotFound)
}
