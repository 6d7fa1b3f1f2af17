package repository

import (
	"context"
	"errors"
	"time"

	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"

	"github.com/nandanfoods/grocer-api/internal/model"
)

// AddressRepository defines the persistence contract for delivery addresses.
// Mutating operations are always scoped to the owning user.
type AddressRepository interface {
	Create(ctx context.Context, address *model.Address) (*model.Address, error)
	ListByUser(ctx context.Context, userID string) ([]*model.Address, error)
	UpdateOwned(ctx context.Context, id, userID string, address *model.Address) (*model.Address, error)
	DeleteOwned(ctx context.Context, id, userID string) error
}

const addressCollection = "addresses"

type addressMongoRepository struct {
	db *mongo.Database
}

// NewAddressMongoRepository creates the addresses repository.
func NewAddressMongoRepository(db *mongo.Database) AddressRepository {
	return &addressMongoRepository{db: db}
}

func (r *addressMongoRepository) Create(ctx context.Context, address *model.Address) (*model.Address, error) {
	now := time.Now()
	address.CreatedAt = now
	address.UpdatedAt = now

	result, err := r.db.Collection(addressCollection).InsertOne(ctx, address)
	if err != nil {
		return nil, err
	}

	if objectID, ok := result.InsertedID.(bson.ObjectID); ok {
		address.ID = objectID
	} else {
		return nil, errors.New("failed to convert inserted ID to ObjectID")
	}

	return address, nil
}

func (r *addressMongoRepository) ListByUser(ctx context.Context, userID string) ([]*model.Address, error) {
	objectID, err := bson.ObjectIDFromHex(userID)
	if err != nil {
		return nil, err
	}

	cursor, err := r.db.Collection(addressCollection).Find(ctx, bson.M{"user_id": objectID})
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var addresses []*model.Address
	for cursor.Next(ctx) {
		var address model.Address
		if err := cursor.Decode(&address); err != nil {
			return nil, err
		}
		addresses = append(addresses, &address)
	}

	if err := cursor.Err(); err != nil {
		return nil, err
	}

	return addresses, nil
}

func (r *addressMongoRepository) UpdateOwned(
	ctx context.Context,
	id, userID string,
	address *model.Address,
) (*model.Address, error) {
	objectID, err := bson.ObjectIDFromHex(id)
	if err != nil {
		return nil, err
	}

	userObjectID, err := bson.ObjectIDFromHex(userID)
	if err != nil {
		return nil, err
	}

	updateMap := bson.M{
		"first_name": address.FirstName,
		"last_name":  address.LastName,
		"email":      address.Email,
		"street":     address.Street,
		"city":       address.City,
		"state":      address.State,
		"zipcode":    address.Zipcode,
		"country":    address.Country,
		"phone":      address.Phone,
		"updated_at": time.Now(),
	}

	result := r.db.Collection(addressCollection).FindOneAndUpdate(
		ctx,
		bson.M{"_id": objectID, "user_id": userObjectID},
		bson.M{"$set": updateMap},
		options.FindOneAndUpdate().SetReturnDocument(options.After),
	)
	if result.Err() != nil {
		return nil, result.Err()
	}

	var updated model.Address
	if err := result.Decode(&updated); err != nil {
		return nil, err
	}

	return &updated, nil
}

func (r *addressMongoRepository) DeleteOwned(ctx context.Context, id, userID string) error {
	objectID, err := bson.ObjectIDFromHex(id)
	if err != nil {
		return err
	}

	userObjectID, err := bson.ObjectIDFromHex(userID)
	if err != nil {
		return err
	}

	result := r.db.Collection(addressCollection).FindOneAndDelete(
		ctx,
		bson.M{"_id": objectID, "user_id": userObjectID},
	)
	return result.Err()
}
