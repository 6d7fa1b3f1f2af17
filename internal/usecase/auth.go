package usecase

import (
	"context"
	"errors"
	"time"

	"go.mongodb.org/mongo-driver/v2/mongo"

	"github.com/nandanfoods/grocer-api/internal/config"
	"github.com/nandanfoods/grocer-api/internal/model"
	"github.com/nandanfoods/grocer-api/internal/otp"
	"github.com/nandanfoods/grocer-api/internal/repository"
	"github.com/nandanfoods/grocer-api/shared/auth"
	"github.com/nandanfoods/grocer-api/shared/security"
)

// AuthUsecase defines the account registration, verification and login
// transitions.
type AuthUsecase interface {
	// Register creates an unverified account and mails a verification code.
	// Registering over an existing unverified account overwrites it so an
	// abandoned signup can be retried; a verified account is never touched.
	Register(ctx context.Context, params RegisterParams) error

	// VerifyEmail checks the signup code and marks the account verified.
	VerifyEmail(ctx context.Context, email, code string) error

	// Login checks the password and returns the user with a session token.
	Login(ctx context.Context, email, password string) (*model.User, string, error)

	// FederatedLogin validates an external ID token and signs the account
	// in, creating a pre-verified record on first use.
	FederatedLogin(ctx context.Context, idToken string) (*model.User, string, error)

	// CurrentUser loads the account behind a validated session.
	CurrentUser(ctx context.Context, userID string) (*model.User, error)
}

// RegisterParams defines the parameters for user registration.
type RegisterParams struct {
	Email    string
	Password string
	Name     string
	Phone    string
}

// OTPMailer delivers one-time passcodes out of band.
type OTPMailer interface {
	SendVerificationOTP(to, code string, validFor time.Duration) error
	SendResetOTP(to, code string, validFor time.Duration) error
}

// FederatedVerifier validates an external identity provider's ID token and
// returns the verified email address it asserts.
type FederatedVerifier interface {
	VerifyEmailAddress(ctx context.Context, idToken string) (string, error)
}

var (
	ErrUserAlreadyExists  = errors.New("user already exists")
	ErrUserNotFound       = errors.New("user not found")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrNotVerified        = errors.New("email not verified")
	ErrAlreadyVerified    = errors.New("email already verified")
	ErrNoPassword         = errors.New("account has no password")
	ErrPasswordTooShort   = errors.New("password too short")
	ErrInvalidIDToken     = errors.New("invalid identity token")
)

const minPasswordLength = 8

type authUsecase struct {
	userRepo    repository.UserRepository
	otpEngine   *otp.Engine
	mailer      OTPMailer
	federated   FederatedVerifier
	tokenIssuer auth.TokenIssuer
	tokenCfg    config.TokenConfig
}

// NewAuthUsecase creates a new instance of AuthUsecase.
func NewAuthUsecase(
	userRepo repository.UserRepository,
	otpEngine *otp.Engine,
	mailer OTPMailer,
	federated FederatedVerifier,
	tokenIssuer auth.TokenIssuer,
	tokenCfg config.TokenConfig,
) AuthUsecase {
	return &authUsecase{
		userRepo:    userRepo,
		otpEngine:   otpEngine,
		mailer:      mailer,
		federated:   federated,
		tokenIssuer: tokenIssuer,
		tokenCfg:    tokenCfg,
	}
}

func (u *authUsecase) Register(ctx context.Context, params RegisterParams) error {
	if len(params.Password) < minPasswordLength {
		return ErrPasswordTooShort
	}

	passwordHash, err := security.HashPassword(params.Password)
	if err != nil {
		return err
	}

	code, err := otp.Generate()
	if err != nil {
		return err
	}
	challenge := u.otpEngine.NewChallenge(code)

	existing, err := u.userRepo.FindByEmail(ctx, params.Email)
	switch {
	case err == nil && existing.Verified:
		return ErrUserAlreadyExists

	case err == nil:
		// Unfinished signup: overwrite the record and restart verification.
		verified := false
		if _, err := u.userRepo.Update(ctx, existing.ID.Hex(), repository.UpdateUserParams{
			Name:         &params.Name,
			Phone:        &params.Phone,
			PasswordHash: &passwordHash,
			Verified:     &verified,
			OTPChallenge: &challenge,
		}); err != nil {
			return err
		}

	case errors.Is(err, mongo.ErrNoDocuments):
		if _, err := u.userRepo.Create(ctx, &model.User{
			Email:        params.Email,
			Name:         params.Name,
			Phone:        params.Phone,
			PasswordHash: passwordHash,
			Verified:     false,
			OTPChallenge: &challenge,
		}); err != nil {
			if mongo.IsDuplicateKeyError(err) {
				return ErrUserAlreadyExists
			}
			return err
		}

	default:
		return err
	}

	return u.mailer.SendVerificationOTP(params.Email, code, u.tokenCfg.OTPChallengeTTL)
}

func (u *authUsecase) VerifyEmail(ctx context.Context, email, code string) error {
	user, err := u.userRepo.FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return ErrUserNotFound
		}
		return err
	}

	if user.Verified {
		return ErrAlreadyVerified
	}

	return u.otpEngine.Verify(ctx, user, code, true)
}

func (u *authUsecase) Login(ctx context.Context, email, password string) (*model.User, string, error) {
	user, err := u.userRepo.FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, "", ErrInvalidCredentials
		}
		return nil, "", err
	}

	if !user.Verified {
		return nil, "", ErrNotVerified
	}

	if user.PasswordHash == "" {
		// Federated-only accounts have no password to check.
		return nil, "", ErrNoPassword
	}

	if ok, err := security.VerifyPassword(password, user.PasswordHash); err != nil {
		return nil, "", err
	} else if !ok {
		return nil, "", ErrInvalidCredentials
	}

	token, err := u.tokenIssuer.IssueSession(user.ID.Hex(), u.tokenCfg.SessionTTL)
	if err != nil {
		return nil, "", err
	}

	return user, token, nil
}

func (u *authUsecase) FederatedLogin(ctx context.Context, idToken string) (*model.User, string, error) {
	email, err := u.federated.VerifyEmailAddress(ctx, idToken)
	if err != nil {
		return nil, "", ErrInvalidIDToken
	}

	user, err := u.userRepo.FindByEmail(ctx, email)
	switch {
	case errors.Is(err, mongo.ErrNoDocuments):
		user, err = u.userRepo.Create(ctx, &model.User{
			Email:    email,
			Verified: true,
		})
		if err != nil {
			return nil, "", err
		}

	case err != nil:
		return nil, "", err

	case !user.Verified:
		// The provider vouched for the address.
		verified := true
		user, err = u.userRepo.Update(ctx, user.ID.Hex(), repository.UpdateUserParams{
			Verified: &verified,
		})
		if err != nil {
			return nil, "", err
		}
	}

	token, err := u.tokenIssuer.IssueSession(user.ID.Hex(), u.tokenCfg.SessionTTL)
	if err != nil {
		return nil, "", err
	}

	return user, token, nil
}

func (u *authUsecase) CurrentUser(ctx context.Context, userID string) (*model.User, error) {
	user, err := u.userRepo.FindByID(ctx, userID)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}

	return user, nil
}
