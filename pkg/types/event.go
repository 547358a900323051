// Package types provides the record shapes produced by the Streamforge pipeline.
package types

import "time"

// Event represents a single behavioral event bound for the events table.
type Event struct {
	// EventID is the globally unique, strictly increasing event identifier
	EventID uint64 `json:"event_id"`

	// UserID references a row in the users dimension
	UserID uint64 `json:"user_id"`

	// EventType categorizes the event (e.g., "page_view", "purchase")
	EventType string `json:"event_type"`

	// EventTimestamp is when the event occurred, UTC, jittered into the
	// last second before generation
	EventTimestamp time.Time `json:"event_timestamp"`

	// PageURL is the page the event was recorded on, derived from EventType
	PageURL string `json:"page_url"`

	// SessionID groups events of one user within a five-minute bucket
	SessionID string `json:"session_id"`

	// DeviceType is the client device class (desktop, mobile, tablet)
	DeviceType string `json:"device_type"`

	// Browser is the client browser family
	Browser string `json:"browser"`

	// Country is the two-letter-ish country label of the client
	Country string `json:"country"`

	// DurationSeconds is how long the user stayed on the page
	DurationSeconds uint32 `json:"duration_seconds"`

	// Revenue is the monetary value attached to the event; zero except for
	// purchases (always) and roughly half of add_to_cart events
	Revenue float64 `json:"revenue"`
}
