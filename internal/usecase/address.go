package usecase

import (
	"context"
	"errors"

	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"

	"github.com/nandanfoods/grocer-api/internal/model"
	"github.com/nandanfoods/grocer-api/internal/repository"
)

// AddressUsecase manages a user's delivery addresses.
type AddressUsecase interface {
	Add(ctx context.Context, userID string, address *model.Address) error
	List(ctx context.Context, userID string) ([]*model.Address, error)
	Update(ctx context.Context, userID, addressID string, address *model.Address) error
	Delete(ctx context.Context, userID, addressID string) error
}

// ErrAddressNotFound means the address does not exist or belongs to a
// different user. The two cases are indistinguishable on purpose.
var ErrAddressNotFound = errors.New("address not found")

type addressUsecase struct {
	addressRepo repository.AddressRepository
}

// NewAddressUsecase creates a new instance of AddressUsecase.
func NewAddressUsecase(addressRepo repository.AddressRepository) AddressUsecase {
	return &addressUsecase{addressRepo: addressRepo}
}

func (u *addressUsecase) Add(ctx context.Context, userID string, address *model.Address) error {
	objectID, err := bson.ObjectIDFromHex(userID)
	if err != nil {
		return err
	}

	address.UserID = objectID
	_, err = u.addressRepo.Create(ctx, address)
	return err
}

func (u *addressUsecase) List(ctx context.Context, userID string) ([]*model.Address, error) {
	return u.addressRepo.ListByUser(ctx, userID)
}

func (u *addressUsecase) Update(ctx context.Context, userID, addressID string, address *model.Address) error {
	if _, err := u.addressRepo.UpdateOwned(ctx, addressID, userID, address); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return ErrAddressNotFound
		}
		return err
	}
	return nil
}

func (u *addressUsecase) Delete(ctx context.Context, userID, addressID string) error {
	if err := u.addressRepo.DeleteOwned(ctx, addressID, userID); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return ErrAddressNotFound
		}
		return err
	}
	return nil
}
