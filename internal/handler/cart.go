package handler

import (
	"net/http"

	"github.com/rs/zerolog"

	"github.com/nandanfoods/grocer-api/internal/usecase"
	"github.com/nandanfoods/grocer-api/shared/validation"
)

// CartHandler serves the cart endpoint.
type CartHandler struct {
	cartUsecase usecase.CartUsecase
	validator   *validation.Validator
	logger      *zerolog.Logger
}

// NewCartHandler creates the cart handler.
func NewCartHandler(cartUsecase usecase.CartUsecase, validator *validation.Validator, logger *zerolog.Logger) *CartHandler {
	return &CartHandler{
		cartUsecase: cartUsecase,
		validator:   validator,
		logger:      logger,
	}
}

func (h *CartHandler) Update(w http.ResponseWriter, r *http.Request) {
	var req updateCartRequest
	if err := decodeJSON(r, &req); err != nil {
		fail(w, "Invalid request body")
		return
	}
	if msg, valid := h.validator.Struct(req); !valid {
		fail(w, msg)
		return
	}

	if err := h.cartUsecase.UpdateCart(r.Context(), userIDFromContext(r.Context()), req.CartItems); err != nil {
		h.logger.Error().Err(err).Msg("failed to update cart")
		fail(w, msgSomethingWentWrong)
		return
	}

	ok(w, "Cart Updated")
}
