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

// OrderRepository defines the persistence contract for orders.
type OrderRepository interface {
	Create(ctx context.Context, order *model.Order) (*model.Order, error)
	ListByUser(ctx context.Context, userID string) ([]*model.Order, error)

	// ListForSeller returns every COD or already-paid order, newest first.
	ListForSeller(ctx context.Context) ([]*model.Order, error)
}

const orderCollection = "orders"

type orderMongoRepository struct {
	db *mongo.Database
}

// NewOrderMongoRepository creates the orders repository.
func NewOrderMongoRepository(db *mongo.Database) OrderRepository {
	return &orderMongoRepository{db: db}
}

func (r *orderMongoRepository) Create(ctx context.Context, order *model.Order) (*model.Order, error) {
	now := time.Now()
	order.CreatedAt = now
	order.UpdatedAt = now
	if order.Status == "" {
		order.Status = model.OrderStatusPlaced
	}

	result, err := r.db.Collection(orderCollection).InsertOne(ctx, order)
	if err != nil {
		return nil, err
	}

	if objectID, ok := result.InsertedID.(bson.ObjectID); ok {
		order.ID = objectID
	} else {
		return nil, errors.New("failed to convert inserted ID to ObjectID")
	}

	return order, nil
}

func (r *orderMongoRepository) ListByUser(ctx context.Context, userID string) ([]*model.Order, error) {
	objectID, err := bson.ObjectIDFromHex(userID)
	if err != nil {
		return nil, err
	}

	filter := bson.M{
		"user_id": objectID,
		"$or": []bson.M{
			{"payment_type": model.PaymentTypeCOD},
			{"is_paid": true},
		},
	}

	return r.find(ctx, filter)
}

func (r *orderMongoRepository) ListForSeller(ctx context.Context) ([]*model.Order, error) {
	filter := bson.M{
		"$or": []bson.M{
			{"payment_type": model.PaymentTypeCOD},
			{"is_paid": true},
		},
	}

	return r.find(ctx, filter)
}

func (r *orderMongoRepository) find(ctx context.Context, filter bson.M) ([]*model.Order, error) {
	findOptions := options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}})

	cursor, err := r.db.Collection(orderCollection).Find(ctx, filter, findOptions)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var orders []*model.Order
	for cursor.Next(ctx) {
		var order model.Order
		if err := cursor.Decode(&order); err != nil {
			return nil, err
		}
		orders = append(orders, &order)
	}

	if err := cursor.Err(); err != nil {
		return nil, err
	}

	return orders, nil
}
