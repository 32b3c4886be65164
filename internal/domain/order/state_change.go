package order

import (
	"crypto/rand"
	"time"

	"github.com/oklog/ulid/v2"
)

// Dimension names which state a StateChange refers to.
type Dimension string

const (
	DimensionOrder    Dimension = "order"
	DimensionShipment Dimension = "shipment"
	DimensionPayment  Dimension = "payment"
)

// StateChange is an immutable audit entry. IDs sort by creation time.
type StateChange struct {
	ID            string    `json:"id"`
	Name          Dimension `json:"name"`
	PreviousState string    `json:"previous_state"`
	NextState     string    `json:"next_state"`
	UserID        string    `json:"user_id,omitempty"`
	CreatedAt     time.Time `json:"created_at"`
}

func NewStateChange(name Dimension, previous, next, userID string, at time.Time) StateChange {
	return StateChange{
		ID:            ulid.MustNew(ulid.Timestamp(at), rand.Reader).String(),
		Name:          name,
		PreviousState: previous,
		NextState:     next,
		UserID:        userID,
		CreatedAt:     at,
	}
}
