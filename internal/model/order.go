package model

import (
	"time"

	"go.mongodb.org/mongo-driver/v2/bson"
)

// Payment types accepted at checkout.
const (
	PaymentTypeCOD    = "COD"
	PaymentTypeOnline = "Online"
)

// OrderStatusPlaced is the initial status of every order.
const OrderStatusPlaced = "Order Placed"

// OrderItem references a product with the ordered quantity and the chosen
// weight variant, if any.
type OrderItem struct {
	ProductID bson.ObjectID `bson:"product_id"`
	Quantity  int           `bson:"quantity"`
	Weight    string        `bson:"weight,omitempty"`
}

// Order is a placed order. Amount includes the 2% service fee.
type Order struct {
	ID          bson.ObjectID `bson:"_id,omitempty"`
	UserID      bson.ObjectID `bson:"user_id"`
	Items       []OrderItem   `bson:"items"`
	Amount      float64       `bson:"amount"`
	AddressID   bson.ObjectID `bson:"address_id"`
	Status      string        `bson:"status"`
	PaymentType string        `bson:"payment_type"`
	IsPaid      bool          `bson:"is_paid"`
	CreatedAt   time.Time     `bson:"created_at"`
	UpdatedAt   time.Time     `bson:"updated_at"`
}
