package handler

import (
	"errors"
	"net/http"

	"github.com/rs/zerolog"

	"github.com/nandanfoods/grocer-api/internal/usecase"
	"github.com/nandanfoods/grocer-api/shared/validation"
)

// OrderHandler serves checkout and order history endpoints.
type OrderHandler struct {
	orderUsecase usecase.OrderUsecase
	validator    *validation.Validator
	logger       *zerolog.Logger
}

// NewOrderHandler creates the order handler.
func NewOrderHandler(orderUsecase usecase.OrderUsecase, validator *validation.Validator, logger *zerolog.Logger) *OrderHandler {
	return &OrderHandler{
		orderUsecase: orderUsecase,
		validator:    validator,
		logger:       logger,
	}
}

func (h *OrderHandler) PlaceCOD(w http.ResponseWriter, r *http.Request) {
	var req placeOrderRequest
	if err := decodeJSON(r, &req); err != nil {
		fail(w, "Invalid request body")
		return
	}
	if msg, valid := h.validator.Struct(req); !valid {
		fail(w, msg)
		return
	}

	items := make([]usecase.OrderItemParams, 0, len(req.Items))
	for _, item := range req.Items {
		items = append(items, usecase.OrderItemParams{
			ProductID: item.Product,
			Quantity:  item.Quantity,
			Weight:    item.Weight,
		})
	}

	_, err := h.orderUsecase.PlaceCOD(r.Context(), userIDFromContext(r.Context()), req.Address, items)
	if err != nil {
		switch {
		case errors.Is(err, usecase.ErrInvalidOrder):
			fail(w, "Invalid data")
		case errors.Is(err, usecase.ErrProductNotFound):
			fail(w, "Product not found")
		default:
			h.logger.Error().Err(err).Msg("failed to place order")
			fail(w, msgSomethingWentWrong)
		}
		return
	}

	ok(w, "Order placed successfully")
}

func (h *OrderHandler) ListUser(w http.ResponseWriter, r *http.Request) {
	orders, err := h.orderUsecase.ListByUser(r.Context(), userIDFromContext(r.Context()))
	if err != nil {
		h.logger.Error().Err(err).Msg("failed to list user orders")
		fail(w, msgSomethingWentWrong)
		return
	}

	okWith(w, map[string]any{"orders": toOrderResponses(orders)})
}

func (h *OrderHandler) ListSeller(w http.ResponseWriter, r *http.Request) {
	orders, err := h.orderUsecase.ListForSeller(r.Context())
	if err != nil {
		h.logger.Error().Err(err).Msg("failed to list seller orders")
		fail(w, msgSomethingWentWrong)
		return
	}

	okWith(w, map[string]any{"orders": toOrderResponses(orders)})
}
