package model

import (
	"time"

	"go.mongodb.org/mongo-driver/v2/bson"
)

// ResetToken is the server-side ledger entry for an issued password-reset
// credential, keyed by the credential's jti. It makes reset credentials
// single-use: the signed token alone only proves possession, this record
// proves it has not been spent.
type ResetToken struct {
	ID        bson.ObjectID `bson:"_id,omitempty"`
	UserID    bson.ObjectID `bson:"user_id"`
	JTI       string        `bson:"jti"`
	Used      bool          `bson:"used"`
	ExpiresAt time.Time     `bson:"expires_at"`
	CreatedAt time.Time     `bson:"created_at"`
	UpdatedAt time.Time     `bson:"updated_at"`
}
