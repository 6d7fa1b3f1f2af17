package handler

import (
	"time"

	"github.com/nandanfoods/grocer-api/internal/model"
)

// Request payloads. Validation tags are enforced before any usecase runs.

type registerRequest struct {
	Email    string `json:"email"    validate:"required,email"`
	Password string `json:"password" validate:"required,min=8"`
	Name     string `json:"name"     validate:"required"`
	Phone    string `json:"phone"`
}

type verifyEmailRequest struct {
	Email string `json:"email" validate:"required,email"`
	OTP   string `json:"otp"   validate:"required,len=6,numeric"`
}

type loginRequest struct {
	Email    string `json:"email"    validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

type forgotPasswordRequest struct {
	Email string `json:"email" validate:"required,email"`
}

type verifyResetOTPRequest struct {
	Email string `json:"email" validate:"required,email"`
	OTP   string `json:"otp"   validate:"required,len=6,numeric"`
}

type resetPasswordRequest struct {
	Email       string `json:"email"       validate:"required,email"`
	NewPassword string `json:"newPassword" validate:"required,min=8"`
	ResetToken  string `json:"resetToken"  validate:"required"`
}

type googleLoginRequest struct {
	IDToken string `json:"idToken" validate:"required"`
}

type sellerLoginRequest struct {
	Email    string `json:"email"    validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

type updateCartRequest struct {
	CartItems map[string]int `json:"cartItems" validate:"required"`
}

type addressPayload struct {
	FirstName string `json:"firstName" validate:"required"`
	LastName  string `json:"lastName"  validate:"required"`
	Email     string `json:"email"     validate:"required,email"`
	Street    string `json:"street"    validate:"required"`
	City      string `json:"city"      validate:"required"`
	State     string `json:"state"     validate:"required"`
	Zipcode   string `json:"zipcode"   validate:"required"`
	Country   string `json:"country"   validate:"required"`
	Phone     string `json:"phone"     validate:"required"`
}

type addAddressRequest struct {
	Address addressPayload `json:"address" validate:"required"`
}

type orderItemPayload struct {
	Product  string `json:"product"  validate:"required"`
	Quantity int    `json:"quantity" validate:"required,min=1"`
	Weight   string `json:"weight"`
}

type placeOrderRequest struct {
	Items   []orderItemPayload `json:"items"   validate:"required,min=1,dive"`
	Address string             `json:"address" validate:"required"`
}

type weightVariantPayload struct {
	Weight     string  `json:"weight"     validate:"required"`
	Price      float64 `json:"price"      validate:"required,gt=0"`
	OfferPrice float64 `json:"offerPrice" validate:"required,gt=0"`
}

// productDataPayload arrives as a JSON form field alongside the image files.
type productDataPayload struct {
	Name           string                 `json:"name"        validate:"required"`
	Description    []string               `json:"description" validate:"required,min=1"`
	Category       string                 `json:"category"    validate:"required"`
	Price          float64                `json:"price"       validate:"required,gt=0"`
	OfferPrice     float64                `json:"offerPrice"  validate:"required,gt=0"`
	WeightVariants []weightVariantPayload `json:"weightVariants" validate:"omitempty,dive"`
}

type changeStockRequest struct {
	ID      string `json:"id" validate:"required"`
	InStock bool   `json:"inStock"`
}

type productIDRequest struct {
	ID string `json:"id" validate:"required"`
}

// Response payloads.

type userResponse struct {
	Name      string         `json:"name"`
	Email     string         `json:"email"`
	Phone     string         `json:"phone,omitempty"`
	CartItems map[string]int `json:"cartItems"`
}

func toUserResponse(user *model.User) userResponse {
	items := user.CartItems
	if items == nil {
		items = map[string]int{}
	}
	return userResponse{
		Name:      user.Name,
		Email:     user.Email,
		Phone:     user.Phone,
		CartItems: items,
	}
}

type weightVariantResponse struct {
	Weight     string  `json:"weight"`
	Price      float64 `json:"price"`
	OfferPrice float64 `json:"offerPrice"`
}

type productResponse struct {
	ID             string                  `json:"_id"`
	Name           string                  `json:"name"`
	Description    []string                `json:"description"`
	Category       string                  `json:"category"`
	Price          float64                 `json:"price"`
	OfferPrice     float64                 `json:"offerPrice"`
	WeightVariants []weightVariantResponse `json:"weightVariants,omitempty"`
	Images         []string                `json:"image"`
	InStock        bool                    `json:"inStock"`
	CreatedAt      time.Time               `json:"createdAt"`
}

func toProductResponse(product *model.Product) productResponse {
	variants := make([]weightVariantResponse, 0, len(product.WeightVariants))
	for _, v := range product.WeightVariants {
		variants = append(variants, weightVariantResponse{
			Weight:     v.Weight,
			Price:      v.Price,
			OfferPrice: v.OfferPrice,
		})
	}

	return productResponse{
		ID:             product.ID.Hex(),
		Name:           product.Name,
		Description:    product.Description,
		Category:       product.Category,
		Price:          product.Price,
		OfferPrice:     product.OfferPrice,
		WeightVariants: variants,
		Images:         product.Images,
		InStock:        product.InStock,
		CreatedAt:      product.CreatedAt,
	}
}

func toProductResponses(products []*model.Product) []productResponse {
	out := make([]productResponse, 0, len(products))
	for _, p := range products {
		out = append(out, toProductResponse(p))
	}
	return out
}

type addressResponse struct {
	ID        string `json:"_id"`
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
	Email     string `json:"email"`
	Street    string `json:"street"`
	City      string `json:"city"`
	State     string `json:"state"`
	Zipcode   string `json:"zipcode"`
	Country   string `json:"country"`
	Phone     string `json:"phone"`
}

func toAddressResponse(address *model.Address) addressResponse {
	return addressResponse{
		ID:        address.ID.Hex(),
		FirstName: address.FirstName,
		LastName:  address.LastName,
		Email:     address.Email,
		Street:    address.Street,
		City:      address.City,
		State:     address.State,
		Zipcode:   address.Zipcode,
		Country:   address.Country,
		Phone:     address.Phone,
	}
}

type orderItemResponse struct {
	Product  string `json:"product"`
	Quantity int    `json:"quantity"`
	Weight   string `json:"weight,omitempty"`
}

type orderResponse struct {
	ID          string              `json:"_id"`
	Items       []orderItemResponse `json:"items"`
	Amount      float64             `json:"amount"`
	Address     string              `json:"address"`
	Status      string              `json:"status"`
	PaymentType string              `json:"paymentType"`
	IsPaid      bool                `json:"isPaid"`
	CreatedAt   time.Time           `json:"createdAt"`
}

func toOrderResponse(order *model.Order) orderResponse {
	items := make([]orderItemResponse, 0, len(order.Items))
	for _, item := range order.Items {
		items = append(items, orderItemResponse{
			Product:  item.ProductID.Hex(),
			Quantity: item.Quantity,
			Weight:   item.Weight,
		})
	}

	return orderResponse{
		ID:          order.ID.Hex(),
		Items:       items,
		Amount:      order.Amount,
		Address:     order.AddressID.Hex(),
		Status:      order.Status,
		PaymentType: order.PaymentType,
		IsPaid:      order.IsPaid,
		CreatedAt:   order.CreatedAt,
	}
}

func toOrderResponses(orders []*model.Order) []orderResponse {
	out := make([]orderResponse, 0, len(orders))
	for _, o := range orders {
		out = append(out, toOrderResponse(o))
	}
	return out
}
