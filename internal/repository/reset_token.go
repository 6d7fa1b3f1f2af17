package repository

import (
	"context"
	"time"

	"github.com/rs/zerolog"
	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"

	"github.com/nandanfoods/grocer-api/internal/model"
)

// ResetTokenRepository tracks issued password-reset credentials so each can
// be spent at most once.
type ResetTokenRepository interface {
	Create(ctx context.Context, token *model.ResetToken) (*model.ResetToken, error)
	FindByJTI(ctx context.Context, jti string) (*model.ResetToken, error)

	// MarkUsed spends the credential. It reports whether this call was the
	// one that spent it, so racing resets cannot both proceed.
	MarkUsed(ctx context.Context, jti string) (bool, error)

	// InvalidateForUser spends every live credential of the user. Called
	// when a fresh reset credential is issued.
	InvalidateForUser(ctx context.Context, userID string) error
}

const resetTokenCollection = "reset_tokens"

type resetTokenMongoRepository struct {
	db *mongo.Database
}

// NewResetTokenMongoRepository creates the reset token repository. A TTL
// index reaps expired entries; the jti index is unique.
func NewResetTokenMongoRepository(
	ctx context.Context,
	logger *zerolog.Logger,
	db *mongo.Database,
) ResetTokenRepository {
	collection := db.Collection(resetTokenCollection)

	indexes := []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "jti", Value: 1}},
			Options: options.Index().SetUnique(true),
		},
		{
			Keys: bson.D{{Key: "user_id", Value: 1}},
		},
		{
			Keys:    bson.D{{Key: "expires_at", Value: 1}},
			Options: options.Index().SetExpireAfterSeconds(0),
		},
	}

	_, err := collection.Indexes().CreateMany(ctx, indexes)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to create reset token indexes")
	}

	return &resetTokenMongoRepository{db: db}
}

func (r *resetTokenMongoRepository) Create(ctx context.Context, token *model.ResetToken) (*model.ResetToken, error) {
	now := time.Now()
	token.CreatedAt = now
	token.UpdatedAt = now
	token.Used = false

	result, err := r.db.Collection(resetTokenCollection).InsertOne(ctx, token)
	if err != nil {
		return nil, err
	}

	if objectID, ok := result.InsertedID.(bson.ObjectID); ok {
		token.ID = objectID
	}

	return token, nil
}

func (r *resetTokenMongoRepository) FindByJTI(ctx context.Context, jti string) (*model.ResetToken, error) {
	var token model.ResetToken
	err := r.db.Collection(resetTokenCollection).FindOne(ctx, bson.M{"jti": jti}).Decode(&token)
	if err != nil {
		return nil, err
	}

	return &token, nil
}

func (r *resetTokenMongoRepository) MarkUsed(ctx context.Context, jti string) (bool, error) {
	result, err := r.db.Collection(resetTokenCollection).UpdateOne(
		ctx,
		bson.M{"jti": jti, "used": false},
		bson.M{"$set": bson.M{"used": true, "updated_at": time.Now()}},
	)
	if err != nil {
		return false, err
	}

	return result.ModifiedCount == 1, nil
}

func (r *resetTokenMongoRepository) InvalidateForUser(ctx context.Context, userID string) error {
	objectID, err := bson.ObjectIDFromHex(userID)
	if err != nil {
		return err
	}

	_, err = r.db.Collection(resetTokenCollection).UpdateMany(
		ctx,
		bson.M{"user_id": objectID, "used": false},
		bson.M{"$set": bson.M{"used": true, "updated_at": time.Now()}},
	)
	return err
}
