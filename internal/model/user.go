package model

import (
	"time"

	"go.mongodb.org/mongo-driver/v2/bson"
)

// OTPChallenge is the outstanding one-time passcode state on a user record.
// Only the SHA-256 hash of the code is stored; at most one challenge exists
// per user and issuing a new one discards the previous.
type OTPChallenge struct {
	Hash      string    `bson:"hash"`
	ExpiresAt time.Time `bson:"expires_at"`
	Attempts  int       `bson:"attempts"`
}

// User represents a customer account. Email is the unique natural key.
// PasswordHash is empty for accounts created only through federated login.
type User struct {
	ID           bson.ObjectID  `bson:"_id,omitempty"`
	Email        string         `bson:"email"`
	Phone        string         `bson:"phone,omitempty"`
	Name         string         `bson:"name"`
	PasswordHash string         `bson:"password_hash,omitempty"`
	Verified     bool           `bson:"verified"`
	OTPChallenge *OTPChallenge  `bson:"otp_challenge,omitempty"`
	CartItems    map[string]int `bson:"cart_items"`
	CreatedAt    time.Time      `bson:"created_at"`
	UpdatedAt    time.Time      `bson:"updated_at"`
}
