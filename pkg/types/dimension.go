package types

import "time"

// User is a row of the users dimension. The pipeline itself only reads the
// population size; full rows are written by the seeding tool.
type User struct {
	UserID     uint64    `json:"user_id"`
	Name       string    `json:"name"`
	Email      string    `json:"email"`
	Country    string    `json:"country"`
	SignupDate time.Time `json:"signup_date"`
}

// Product is a row of the products dimension, written by the seeding tool.
type Product struct {
	ProductID uint64  `json:"product_id"`
	Name      string  `json:"name"`
	Category  string  `json:"category"`
	Price     float64 `json:"price"`
}
