package usecase

import (
	"context"
	"errors"
	"math"

	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"

	"github.com/nandanfoods/grocer-api/internal/model"
	"github.com/nandanfoods/grocer-api/internal/repository"
)

// OrderUsecase handles checkout and order history.
type OrderUsecase interface {
	// PlaceCOD prices the items server-side and creates a cash-on-delivery
	// order. Client-supplied prices are never trusted.
	PlaceCOD(ctx context.Context, userID, addressID string, items []OrderItemParams) (*model.Order, error)

	ListByUser(ctx context.Context, userID string) ([]*model.Order, error)
	ListForSeller(ctx context.Context) ([]*model.Order, error)
}

// OrderItemParams is one checkout line.
type OrderItemParams struct {
	ProductID string
	Quantity  int
	Weight    string
}

// ErrInvalidOrder means the checkout request had no items or no address.
var ErrInvalidOrder = errors.New("invalid order")

const serviceFeeRate = 0.02

type orderUsecase struct {
	orderRepo   repository.OrderRepository
	productRepo repository.ProductRepository
}

// NewOrderUsecase creates a new instance of OrderUsecase.
func NewOrderUsecase(orderRepo repository.OrderRepository, productRepo repository.ProductRepository) OrderUsecase {
	return &orderUsecase{
		orderRepo:   orderRepo,
		productRepo: productRepo,
	}
}

func (u *orderUsecase) PlaceCOD(
	ctx context.Context,
	userID, addressID string,
	items []OrderItemParams,
) (*model.Order, error) {
	if len(items) == 0 || addressID == "" {
		return nil, ErrInvalidOrder
	}

	userObjectID, err := bson.ObjectIDFromHex(userID)
	if err != nil {
		return nil, err
	}
	addressObjectID, err := bson.ObjectIDFromHex(addressID)
	if err != nil {
		return nil, ErrInvalidOrder
	}

	var amount float64
	orderItems := make([]model.OrderItem, 0, len(items))

	for _, item := range items {
		if item.Quantity <= 0 {
			return nil, ErrInvalidOrder
		}

		product, err := u.productRepo.FindByID(ctx, item.ProductID)
		if err != nil {
			if errors.Is(err, mongo.ErrNoDocuments) {
				return nil, ErrProductNotFound
			}
			return nil, err
		}

		price := product.OfferPrice
		if item.Weight != "" {
			for _, variant := range product.WeightVariants {
				if variant.Weight == item.Weight {
					price = variant.OfferPrice
					break
				}
			}
		}

		amount += price * float64(item.Quantity)
		orderItems = append(orderItems, model.OrderItem{
			ProductID: product.ID,
			Quantity:  item.Quantity,
			Weight:    item.Weight,
		})
	}

	amount += math.Floor(amount * serviceFeeRate)

	return u.orderRepo.Create(ctx, &model.Order{
		UserID:      userObjectID,
		Items:       orderItems,
		Amount:      amount,
		AddressID:   addressObjectID,
		PaymentType: model.PaymentTypeCOD,
	})
}

func (u *orderUsecase) ListByUser(ctx context.Context, userID string) ([]*model.Order, error) {
	return u.orderRepo.ListByUser(ctx, userID)
}

func (u *orderUsecase) ListForSeller(ctx context.Context) ([]*model.Order, error) {
	return u.orderRepo.ListForSeller(ctx)
}
