package handler

import (
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"

	"github.com/nandanfoods/grocer-api/internal/model"
	"github.com/nandanfoods/grocer-api/internal/usecase"
	"github.com/nandanfoods/grocer-api/shared/validation"
)

// AddressHandler serves the delivery address endpoints.
type AddressHandler struct {
	addressUsecase usecase.AddressUsecase
	validator      *validation.Validator
	logger         *zerolog.Logger
}

// NewAddressHandler creates the address handler.
func NewAddressHandler(addressUsecase usecase.AddressUsecase, validator *validation.Validator, logger *zerolog.Logger) *AddressHandler {
	return &AddressHandler{
		addressUsecase: addressUsecase,
		validator:      validator,
		logger:         logger,
	}
}

func (h *AddressHandler) Add(w http.ResponseWriter, r *http.Request) {
	var req addAddressRequest
	if err := decodeJSON(r, &req); err != nil {
		fail(w, "Invalid request body")
		return
	}
	if msg, valid := h.validator.Struct(req); !valid {
		fail(w, msg)
		return
	}

	err := h.addressUsecase.Add(r.Context(), userIDFromContext(r.Context()), addressFromPayload(req.Address))
	if err != nil {
		h.logger.Error().Err(err).Msg("failed to add address")
		fail(w, msgSomethingWentWrong)
		return
	}

	ok(w, "Address added successfully")
}

func (h *AddressHandler) List(w http.ResponseWriter, r *http.Request) {
	addresses, err := h.addressUsecase.List(r.Context(), userIDFromContext(r.Context()))
	if err != nil {
		h.logger.Error().Err(err).Msg("failed to list addresses")
		fail(w, msgSomethingWentWrong)
		return
	}

	out := make([]addressResponse, 0, len(addresses))
	for _, a := range addresses {
		out = append(out, toAddressResponse(a))
	}

	okWith(w, map[string]any{"addresses": out})
}

func (h *AddressHandler) Update(w http.ResponseWriter, r *http.Request) {
	var req addAddressRequest
	if err := decodeJSON(r, &req); err != nil {
		fail(w, "Invalid request body")
		return
	}
	if msg, valid := h.validator.Struct(req); !valid {
		fail(w, msg)
		return
	}

	err := h.addressUsecase.Update(
		r.Context(),
		userIDFromContext(r.Context()),
		chi.URLParam(r, "id"),
		addressFromPayload(req.Address),
	)
	if err != nil {
		if errors.Is(err, usecase.ErrAddressNotFound) {
			fail(w, "Address not found")
			return
		}
		h.logger.Error().Err(err).Msg("failed to update address")
		fail(w, msgSomethingWentWrong)
		return
	}

	ok(w, "Address updated successfully")
}

func (h *AddressHandler) Delete(w http.ResponseWriter, r *http.Request) {
	err := h.addressUsecase.Delete(r.Context(), userIDFromContext(r.Context()), chi.URLParam(r, "id"))
	if err != nil {
		if errors.Is(err, usecase.ErrAddressNotFound) {
			fail(w, "Address not found")
			return
		}
		h.logger.Error().Err(err).Msg("failed to delete address")
		fail(w, msgSomethingWentWrong)
		return
	}

	ok(w, "Address deleted successfully")
}

func addressFromPayload(p addressPayload) *model.Address {
	return &model.Address{
		FirstName: p.FirstName,
		LastName:  p.LastName,
		Email:     p.Email,
		Street:    p.Street,
		City:      p.City,
		State:     p.State,
		Zipcode:   p.Zipcode,
		Country:   p.Country,
		Phone:     p.Phone,
	}
}
