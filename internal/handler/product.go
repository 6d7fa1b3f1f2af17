package handler

import (
	"encoding/json"
	"errors"
	"mime/multipart"
	"net/http"

	"github.com/rs/zerolog"

	"github.com/nandanfoods/grocer-api/internal/model"
	"github.com/nandanfoods/grocer-api/internal/repository"
	"github.com/nandanfoods/grocer-api/internal/usecase"
	"github.com/nandanfoods/grocer-api/shared/validation"
)

const maxProductUploadBytes = 32 << 20

// ProductHandler serves the catalog endpoints. List and Get are public;
// the mutating endpoints sit behind the seller middleware.
type ProductHandler struct {
	productUsecase usecase.ProductUsecase
	validator      *validation.Validator
	logger         *zerolog.Logger
}

// NewProductHandler creates the product handler.
func NewProductHandler(productUsecase usecase.ProductUsecase, validator *validation.Validator, logger *zerolog.Logger) *ProductHandler {
	return &ProductHandler{
		productUsecase: productUsecase,
		validator:      validator,
		logger:         logger,
	}
}

func (h *ProductHandler) Add(w http.ResponseWriter, r *http.Request) {
	payload, images, msg := h.parseProductForm(r)
	if msg != "" {
		fail(w, msg)
		return
	}
	if len(images) == 0 {
		fail(w, "At least one product image is required")
		return
	}

	uploads, closeUploads := uploadsFromFiles(images)
	defer closeUploads()

	product := &model.Product{
		Name:           payload.Name,
		Description:    payload.Description,
		Category:       payload.Category,
		Price:          payload.Price,
		OfferPrice:     payload.OfferPrice,
		WeightVariants: variantsFromPayload(payload.WeightVariants),
	}

	if _, err := h.productUsecase.Add(r.Context(), product, uploads); err != nil {
		h.logger.Error().Err(err).Msg("failed to add product")
		fail(w, msgSomethingWentWrong)
		return
	}

	ok(w, "Product Added")
}

func (h *ProductHandler) Update(w http.ResponseWriter, r *http.Request) {
	payload, images, msg := h.parseProductForm(r)
	if msg != "" {
		fail(w, msg)
		return
	}

	uploads, closeUploads := uploadsFromFiles(images)
	defer closeUploads()

	id := r.FormValue("id")
	if id == "" {
		fail(w, "Product id is required")
		return
	}

	variants := variantsFromPayload(payload.WeightVariants)
	params := repository.UpdateProductParams{
		Name:           &payload.Name,
		Description:    &payload.Description,
		Category:       &payload.Category,
		Price:          &payload.Price,
		OfferPrice:     &payload.OfferPrice,
		WeightVariants: &variants,
	}

	if err := h.productUsecase.Update(r.Context(), id, params, uploads); err != nil {
		if errors.Is(err, usecase.ErrProductNotFound) {
			fail(w, "Product not found")
			return
		}
		h.logger.Error().Err(err).Msg("failed to update product")
		fail(w, msgSomethingWentWrong)
		return
	}

	ok(w, "Product Updated")
}

func (h *ProductHandler) List(w http.ResponseWriter, r *http.Request) {
	products, err := h.productUsecase.List(r.Context())
	if err != nil {
		h.logger.Error().Err(err).Msg("failed to list products")
		fail(w, msgSomethingWentWrong)
		return
	}

	okWith(w, map[string]any{"products": toProductResponses(products)})
}

func (h *ProductHandler) Get(w http.ResponseWriter, r *http.Request) {
	id := r.URL.Query().Get("id")
	if id == "" {
		fail(w, "Product id is required")
		return
	}

	product, err := h.productUsecase.Get(r.Context(), id)
	if err != nil {
		if errors.Is(err, usecase.ErrProductNotFound) {
			fail(w, "Product not found")
			return
		}
		h.logger.Error().Err(err).Msg("failed to get product")
		fail(w, msgSomethingWentWrong)
		return
	}

	okWith(w, map[string]any{"product": toProductResponse(product)})
}

func (h *ProductHandler) ChangeStock(w http.ResponseWriter, r *http.Request) {
	var req changeStockRequest
	if err := decodeJSON(r, &req); err != nil {
		fail(w, "Invalid request body")
		return
	}
	if msg, valid := h.validator.Struct(req); !valid {
		fail(w, msg)
		return
	}

	if err := h.productUsecase.SetStock(r.Context(), req.ID, req.InStock); err != nil {
		h.logger.Error().Err(err).Msg("failed to change stock")
		fail(w, msgSomethingWentWrong)
		return
	}

	ok(w, "Stock Updated")
}

func (h *ProductHandler) Delete(w http.ResponseWriter, r *http.Request) {
	var req productIDRequest
	if err := decodeJSON(r, &req); err != nil {
		fail(w, "Invalid request body")
		return
	}
	if msg, valid := h.validator.Struct(req); !valid {
		fail(w, msg)
		return
	}

	if err := h.productUsecase.Delete(r.Context(), req.ID); err != nil {
		if errors.Is(err, usecase.ErrProductNotFound) {
			fail(w, "Product not found")
			return
		}
		h.logger.Error().Err(err).Msg("failed to delete product")
		fail(w, msgSomethingWentWrong)
		return
	}

	ok(w, "Product Deleted")
}

func (h *ProductHandler) parseProductForm(r *http.Request) (productDataPayload, []*multipart.FileHeader, string) {
	var payload productDataPayload

	if err := r.ParseMultipartForm(maxProductUploadBytes); err != nil {
		return payload, nil, "Invalid multipart form"
	}

	if err := json.Unmarshal([]byte(r.FormValue("productData")), &payload); err != nil {
		return payload, nil, "Invalid product data"
	}
	if msg, valid := h.validator.Struct(payload); !valid {
		return payload, nil, msg
	}

	return payload, r.MultipartForm.File["images"], ""
}

func variantsFromPayload(payload []weightVariantPayload) []model.WeightVariant {
	variants := make([]model.WeightVariant, 0, len(payload))
	for _, v := range payload {
		variants = append(variants, model.WeightVariant{
			Weight:     v.Weight,
			Price:      v.Price,
			OfferPrice: v.OfferPrice,
		})
	}
	return variants
}

func uploadsFromFiles(files []*multipart.FileHeader) ([]usecase.ImageUpload, func()) {
	uploads := make([]usecase.ImageUpload, 0, len(files))
	opened := make([]multipart.File, 0, len(files))

	for _, fh := range files {
		f, err := fh.Open()
		if err != nil {
			continue
		}
		opened = append(opened, f)
		uploads = append(uploads, usecase.ImageUpload{
			Filename:    fh.Filename,
			ContentType: fh.Header.Get("Content-Type"),
			Body:        f,
		})
	}

	return uploads, func() {
		for _, f := range opened {
			f.Close()
		}
	}
}
