package sink

import (
	"time"

	"github.com/streamforge/streamforge/pkg/types"
)

// Fixtures shared by the driver tests.

func sampleEvent(id uint64) types.Event {
	return types.Event{
		EventID:         id,
		UserID:          7,
		EventType:       "purchase",
		EventTimestamp:  time.Date(2025, 3, 14, 9, 26, 53, 0, time.UTC),
		PageURL:         "/action/purchase",
		SessionID:       "sess-7-5806622",
		DeviceType:      "mobile",
		Browser:         "Firefox",
		Country:         "DE",
		DurationSeconds: 42,
		Revenue:         129.99,
	}
}

func sampleOrder(id uint64) types.Order {
	ts := time.Date(2025, 3, 14, 9, 26, 53, 0, time.UTC)
	return types.Order{
		OrderID:        id,
		UserID:         7,
		ProductID:      31,
		Quantity:       2,
		OrderDate:      time.Date(2025, 3, 14, 0, 0, 0, 0, time.UTC),
		OrderTimestamp: ts,
		TotalAmount:    88.5,
		Status:         "completed",
		PaymentMethod:  "paypal",
	}
}

func sampleUser(id uint64) types.User {
	return types.User{
		UserID:     id,
		Name:       "Ada Lovelace",
		Email:      "ada@example.com",
		Country:    "UK",
		SignupDate: time.Date(2024, 11, 2, 0, 0, 0, 0, time.UTC),
	}
}

func sampleProduct(id uint64) types.Product {
	return types.Product{
		ProductID: id,
		Name:      "Mechanical Keyboard",
		Category:  "Electronics",
		Price:     149.0,
	}
}
