package handler

import (
	"errors"
	"net/http"

	"github.com/rs/zerolog"

	"github.com/nandanfoods/grocer-api/internal/config"
	"github.com/nandanfoods/grocer-api/internal/usecase"
	"github.com/nandanfoods/grocer-api/shared/auth"
	"github.com/nandanfoods/grocer-api/shared/validation"
)

// SellerHandler serves the seller-panel session endpoints.
type SellerHandler struct {
	sellerUsecase usecase.SellerUsecase
	cookies       auth.CookieBaker
	validator     *validation.Validator
	tokenCfg      config.TokenConfig
	logger        *zerolog.Logger
}

// NewSellerHandler creates the seller handler.
func NewSellerHandler(
	sellerUsecase usecase.SellerUsecase,
	cookies auth.CookieBaker,
	validator *validation.Validator,
	tokenCfg config.TokenConfig,
	logger *zerolog.Logger,
) *SellerHandler {
	return &SellerHandler{
		sellerUsecase: sellerUsecase,
		cookies:       cookies,
		validator:     validator,
		tokenCfg:      tokenCfg,
		logger:        logger,
	}
}

func (h *SellerHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req sellerLoginRequest
	if err := decodeJSON(r, &req); err != nil {
		fail(w, "Invalid request body")
		return
	}
	if msg, valid := h.validator.Struct(req); !valid {
		fail(w, msg)
		return
	}

	token, err := h.sellerUsecase.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		if errors.Is(err, usecase.ErrInvalidCredentials) {
			fail(w, "Invalid credentials")
			return
		}
		h.logger.Error().Err(err).Msg("failed to login seller")
		fail(w, msgSomethingWentWrong)
		return
	}

	h.cookies.Set(w, auth.SellerCookieName, token, h.tokenCfg.SessionTTL)
	ok(w, "Logged In")
}

func (h *SellerHandler) IsAuth(w http.ResponseWriter, _ *http.Request) {
	// RequireSeller already validated the cookie.
	ok(w, "Authorized")
}

func (h *SellerHandler) Logout(w http.ResponseWriter, _ *http.Request) {
	h.cookies.Clear(w, auth.SellerCookieName)
	ok(w, "Logged out successfully")
}
