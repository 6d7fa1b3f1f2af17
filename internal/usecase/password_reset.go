package usecase

import (
	"context"
	"errors"
	"time"

	"github.com/rs/zerolog"
	"go.mongodb.org/mongo-driver/v2/mongo"

	"github.com/nandanfoods/grocer-api/internal/config"
	"github.com/nandanfoods/grocer-api/internal/model"
	"github.com/nandanfoods/grocer-api/internal/otp"
	"github.com/nandanfoods/grocer-api/internal/repository"
	"github.com/nandanfoods/grocer-api/shared/auth"
	"github.com/nandanfoods/grocer-api/shared/security"
)

// PasswordResetUsecase defines the three-step account recovery flow:
// request a code, exchange the code for a short-lived reset credential,
// then set the new password with that credential.
type PasswordResetUsecase interface {
	// RequestReset issues and mails a reset code if the account exists.
	// It returns nil either way; callers must not be able to tell whether
	// the address is registered.
	RequestReset(ctx context.Context, email string) error

	// VerifyResetOTP checks the reset code and, on success, clears the
	// challenge and returns a reset credential valid for a few minutes.
	VerifyResetOTP(ctx context.Context, email, code string) (string, error)

	// ResetPassword sets a new password for the account named by a valid
	// reset credential. No session is issued.
	ResetPassword(ctx context.Context, email, newPassword, resetToken string) error
}

var (
	// ErrInvalidResetToken covers every reset credential failure: bad
	// signature, expiry, wrong purpose, or an email that does not match
	// the credential's subject.
	ErrInvalidResetToken = errors.New("invalid or expired reset token")
)

type passwordResetUsecase struct {
	userRepo    repository.UserRepository
	tokenRepo   repository.ResetTokenRepository
	otpEngine   *otp.Engine
	mailer      OTPMailer
	tokenIssuer auth.TokenIssuer
	tokenCfg    config.TokenConfig
	logger      *zerolog.Logger
}

// NewPasswordResetUsecase creates a new instance of PasswordResetUsecase.
func NewPasswordResetUsecase(
	userRepo repository.UserRepository,
	tokenRepo repository.ResetTokenRepository,
	otpEngine *otp.Engine,
	mailer OTPMailer,
	tokenIssuer auth.TokenIssuer,
	tokenCfg config.TokenConfig,
	logger *zerolog.Logger,
) PasswordResetUsecase {
	return &passwordResetUsecase{
		userRepo:    userRepo,
		tokenRepo:   tokenRepo,
		otpEngine:   otpEngine,
		mailer:      mailer,
		tokenIssuer: tokenIssuer,
		tokenCfg:    tokenCfg,
		logger:      logger,
	}
}

func (u *passwordResetUsecase) RequestReset(ctx context.Context, email string) error {
	user, err := u.userRepo.FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			// Unknown address: same outcome as success so responses do
			// not reveal which emails are registered.
			return nil
		}
		return err
	}

	code, err := u.otpEngine.Issue(ctx, user.ID.Hex())
	if err != nil {
		return err
	}

	// Mail delivery is best effort here; the challenge stands and the user
	// can retry the request if nothing arrives.
	if err := u.mailer.SendResetOTP(user.Email, code, u.tokenCfg.OTPChallengeTTL); err != nil {
		u.logger.Error().Err(err).Msg("failed to send password reset email")
	}

	return nil
}

func (u *passwordResetUsecase) VerifyResetOTP(ctx context.Context, email, code string) (string, error) {
	user, err := u.userRepo.FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return "", ErrUserNotFound
		}
		return "", err
	}

	if err := u.otpEngine.Verify(ctx, user, code, false); err != nil {
		return "", err
	}

	// The challenge is consumed; the reset credential alone bridges to the
	// password change within its own short window. Any credential issued
	// earlier for the same account is retired first.
	if err := u.tokenRepo.InvalidateForUser(ctx, user.ID.Hex()); err != nil {
		return "", err
	}

	token, jti, err := u.tokenIssuer.IssueResetToken(user.ID.Hex(), u.tokenCfg.ResetTokenTTL)
	if err != nil {
		return "", err
	}

	if _, err := u.tokenRepo.Create(ctx, &model.ResetToken{
		UserID:    user.ID,
		JTI:       jti,
		ExpiresAt: time.Now().Add(u.tokenCfg.ResetTokenTTL),
	}); err != nil {
		return "", err
	}

	return token, nil
}

func (u *passwordResetUsecase) ResetPassword(ctx context.Context, email, newPassword, resetToken string) error {
	userID, jti, err := u.tokenIssuer.VerifyResetToken(resetToken)
	if err != nil {
		return ErrInvalidResetToken
	}

	record, err := u.tokenRepo.FindByJTI(ctx, jti)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return ErrInvalidResetToken
		}
		return err
	}

	if record.Used || time.Now().After(record.ExpiresAt) {
		return ErrInvalidResetToken
	}

	if len(newPassword) < minPasswordLength {
		return ErrPasswordTooShort
	}

	user, err := u.userRepo.FindByID(ctx, userID)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return ErrUserNotFound
		}
		return err
	}

	if user.Email != email {
		return ErrInvalidResetToken
	}

	passwordHash, err := security.HashPassword(newPassword)
	if err != nil {
		return err
	}

	// Spend the credential before touching the password so two racing
	// requests cannot both succeed; at most one conditional flip wins.
	spent, err := u.tokenRepo.MarkUsed(ctx, jti)
	if err != nil {
		return err
	}
	if !spent {
		return ErrInvalidResetToken
	}

	if _, err := u.userRepo.Update(ctx, user.ID.Hex(), repository.UpdateUserParams{
		PasswordHash: &passwordHash,
	}); err != nil {
		return err
	}

	return nil
}
