package model

import (
	"time"

	"go.mongodb.org/mongo-driver/v2/bson"
)

// Address is a delivery address owned by a single user.
type Address struct {
	ID        bson.ObjectID `bson:"_id,omitempty"`
	UserID    bson.ObjectID `bson:"user_id"`
	FirstName string        `bson:"first_name"`
	LastName  string        `bson:"last_name"`
	Email     string        `bson:"email"`
	Street    string        `bson:"street"`
	City      string        `bson:"city"`
	State     string        `bson:"state"`
	Zipcode   string        `bson:"zipcode"`
	Country   string        `bson:"country"`
	Phone     string        `bson:"phone"`
	CreatedAt time.Time     `bson:"created_at"`
	UpdatedAt time.Time     `bson:"updated_at"`
}
