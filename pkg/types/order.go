package types

import "time"

// Order represents a single purchase order bound for the orders table.
type Order struct {
	// OrderID is the globally unique, strictly increasing order identifier
	OrderID uint64 `json:"order_id"`

	// UserID references a row in the users dimension
	UserID uint64 `json:"user_id"`

	// ProductID references a row in the products dimension
	ProductID uint64 `json:"product_id"`

	// Quantity is the number of units ordered, skewed heavily toward 1
	Quantity uint8 `json:"quantity"`

	// OrderDate is the calendar date of OrderTimestamp
	OrderDate time.Time `json:"order_date"`

	// OrderTimestamp is when the order was placed, UTC, jittered into the
	// last second before generation
	OrderTimestamp time.Time `json:"order_timestamp"`

	// TotalAmount is the order value; 90% fall in [50,200), 10% in [200,1000)
	TotalAmount float64 `json:"total_amount"`

	// Status is the fulfillment state (completed, pending, cancelled, refunded)
	Status string `json:"status"`

	// PaymentMethod is the payment instrument used
	PaymentMethod string `json:"payment_method"`
}
