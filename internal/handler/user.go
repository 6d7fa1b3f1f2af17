package handler

import (
	"errors"
	"net/http"

	"github.com/rs/zerolog"

	"github.com/nandanfoods/grocer-api/internal/config"
	"github.com/nandanfoods/grocer-api/internal/otp"
	"github.com/nandanfoods/grocer-api/internal/usecase"
	"github.com/nandanfoods/grocer-api/shared/auth"
	"github.com/nandanfoods/grocer-api/shared/validation"
)

// msgForgotPassword is sent whether or not the account exists. Byte-for-byte
// identical responses keep the endpoint from confirming registered emails.
const msgForgotPassword = "If the email exists, an OTP has been sent."

// UserHandler serves the customer auth and account endpoints.
type UserHandler struct {
	authUsecase  usecase.AuthUsecase
	resetUsecase usecase.PasswordResetUsecase
	cookies      auth.CookieBaker
	validator    *validation.Validator
	tokenCfg     config.TokenConfig
	logger       *zerolog.Logger
}

// NewUserHandler creates the user handler.
func NewUserHandler(
	authUsecase usecase.AuthUsecase,
	resetUsecase usecase.PasswordResetUsecase,
	cookies auth.CookieBaker,
	validator *validation.Validator,
	tokenCfg config.TokenConfig,
	logger *zerolog.Logger,
) *UserHandler {
	return &UserHandler{
		authUsecase:  authUsecase,
		resetUsecase: resetUsecase,
		cookies:      cookies,
		validator:    validator,
		tokenCfg:     tokenCfg,
		logger:       logger,
	}
}

func (h *UserHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req registerRequest
	if err := decodeJSON(r, &req); err != nil {
		fail(w, "Invalid request body")
		return
	}
	if msg, valid := h.validator.Struct(req); !valid {
		fail(w, msg)
		return
	}

	err := h.authUsecase.Register(r.Context(), usecase.RegisterParams{
		Email:    req.Email,
		Password: req.Password,
		Name:     req.Name,
		Phone:    req.Phone,
	})
	if err != nil {
		switch {
		case errors.Is(err, usecase.ErrUserAlreadyExists):
			fail(w, "User already exists. Please login.")
		case errors.Is(err, usecase.ErrPasswordTooShort):
			fail(w, "Password must be at least 8 chars")
		default:
			h.logger.Error().Err(err).Msg("failed to register user")
			fail(w, msgSomethingWentWrong)
		}
		return
	}

	ok(w, "OTP sent to your email. Please verify to continue.")
}

func (h *UserHandler) VerifyEmail(w http.ResponseWriter, r *http.Request) {
	var req verifyEmailRequest
	if err := decodeJSON(r, &req); err != nil {
		fail(w, "Invalid request body")
		return
	}
	if msg, valid := h.validator.Struct(req); !valid {
		fail(w, msg)
		return
	}

	if err := h.authUsecase.VerifyEmail(r.Context(), req.Email, req.OTP); err != nil {
		switch {
		case errors.Is(err, usecase.ErrUserNotFound):
			fail(w, "User not found")
		case errors.Is(err, usecase.ErrAlreadyVerified):
			fail(w, "Email already verified. Please login.")
		case errors.Is(err, otp.ErrNoChallenge), errors.Is(err, otp.ErrExpired):
			fail(w, "Invalid or expired OTP")
		case errors.Is(err, otp.ErrMismatch):
			fail(w, "Invalid OTP")
		default:
			h.logger.Error().Err(err).Msg("failed to verify email")
			fail(w, msgSomethingWentWrong)
		}
		return
	}

	ok(w, "Email verified successfully. Please login.")
}

func (h *UserHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := decodeJSON(r, &req); err != nil {
		fail(w, "Invalid request body")
		return
	}
	if msg, valid := h.validator.Struct(req); !valid {
		fail(w, msg)
		return
	}

	user, token, err := h.authUsecase.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		switch {
		case errors.Is(err, usecase.ErrInvalidCredentials):
			fail(w, "Invalid credentials")
		case errors.Is(err, usecase.ErrNotVerified):
			fail(w, "Please verify your email before logging in.")
		case errors.Is(err, usecase.ErrNoPassword):
			fail(w, "Please try alternative login method")
		default:
			h.logger.Error().Err(err).Msg("failed to login user")
			fail(w, msgSomethingWentWrong)
		}
		return
	}

	h.cookies.Set(w, auth.SessionCookieName, token, h.tokenCfg.SessionTTL)
	okWith(w, map[string]any{
		"user":    toUserResponse(user),
		"message": "Login Successful",
	})
}

func (h *UserHandler) ForgotPassword(w http.ResponseWriter, r *http.Request) {
	var req forgotPasswordRequest
	if err := decodeJSON(r, &req); err != nil {
		fail(w, "Invalid request body")
		return
	}
	if msg, valid := h.validator.Struct(req); !valid {
		fail(w, msg)
		return
	}

	if err := h.resetUsecase.RequestReset(r.Context(), req.Email); err != nil {
		h.logger.Error().Err(err).Msg("failed to request password reset")
		fail(w, msgSomethingWentWrong)
		return
	}

	ok(w, msgForgotPassword)
}

func (h *UserHandler) VerifyResetOTP(w http.ResponseWriter, r *http.Request) {
	var req verifyResetOTPRequest
	if err := decodeJSON(r, &req); err != nil {
		fail(w, "Invalid request body")
		return
	}
	if msg, valid := h.validator.Struct(req); !valid {
		fail(w, msg)
		return
	}

	resetToken, err := h.resetUsecase.VerifyResetOTP(r.Context(), req.Email, req.OTP)
	if err != nil {
		switch {
		case errors.Is(err, usecase.ErrUserNotFound),
			errors.Is(err, otp.ErrNoChallenge),
			errors.Is(err, otp.ErrExpired):
			fail(w, "Invalid or expired OTP")
		case errors.Is(err, otp.ErrMismatch):
			fail(w, "Invalid OTP")
		default:
			h.logger.Error().Err(err).Msg("failed to verify reset OTP")
			fail(w, msgSomethingWentWrong)
		}
		return
	}

	okWith(w, map[string]any{
		"message":    "OTP Verified. Please set your new password.",
		"resetToken": resetToken,
	})
}

func (h *UserHandler) ResetPassword(w http.ResponseWriter, r *http.Request) {
	var req resetPasswordRequest
	if err := decodeJSON(r, &req); err != nil {
		fail(w, "Invalid request body")
		return
	}
	if msg, valid := h.validator.Struct(req); !valid {
		fail(w, msg)
		return
	}

	err := h.resetUsecase.ResetPassword(r.Context(), req.Email, req.NewPassword, req.ResetToken)
	if err != nil {
		switch {
		case errors.Is(err, usecase.ErrInvalidResetToken):
			fail(w, "Expired or invalid session. Start over.")
		case errors.Is(err, usecase.ErrPasswordTooShort):
			fail(w, "Password too short")
		case errors.Is(err, usecase.ErrUserNotFound):
			fail(w, "User not found")
		default:
			h.logger.Error().Err(err).Msg("failed to reset password")
			fail(w, msgSomethingWentWrong)
		}
		return
	}

	ok(w, "Password reset successful. Please login.")
}

func (h *UserHandler) GoogleLogin(w http.ResponseWriter, r *http.Request) {
	var req googleLoginRequest
	if err := decodeJSON(r, &req); err != nil {
		fail(w, "Invalid request body")
		return
	}
	if msg, valid := h.validator.Struct(req); !valid {
		fail(w, msg)
		return
	}

	user, token, err := h.authUsecase.FederatedLogin(r.Context(), req.IDToken)
	if err != nil {
		switch {
		case errors.Is(err, usecase.ErrInvalidIDToken):
			fail(w, "Invalid ID token")
		default:
			h.logger.Error().Err(err).Msg("failed to login with google")
			fail(w, msgSomethingWentWrong)
		}
		return
	}

	h.cookies.Set(w, auth.SessionCookieName, token, h.tokenCfg.SessionTTL)
	okWith(w, map[string]any{
		"user":    toUserResponse(user),
		"message": "Login Successful",
	})
}

func (h *UserHandler) IsAuth(w http.ResponseWriter, r *http.Request) {
	user, err := h.authUsecase.CurrentUser(r.Context(), userIDFromContext(r.Context()))
	if err != nil {
		if errors.Is(err, usecase.ErrUserNotFound) {
			fail(w, "User not found")
			return
		}
		h.logger.Error().Err(err).Msg("failed to load current user")
		fail(w, msgSomethingWentWrong)
		return
	}

	okWith(w, map[string]any{"user": toUserResponse(user)})
}

func (h *UserHandler) Logout(w http.ResponseWriter, _ *http.Request) {
	h.cookies.Clear(w, auth.SessionCookieName)
	ok(w, "Logged out successfully")
}
