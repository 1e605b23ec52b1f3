// Package service defines interfaces for core, stateless domain logic.
package service

import (
	"context"

	"github.com/google/uuid"
)

// Event types pushed to connected clients.
const (
	EventMessage      = "message"
	EventNotification = "notification"
	EventError        = "error"
)

// Event is a single server-to-client realtime payload.
type Event struct {
	Type    string `json:"type"`
	Payload any    `json:"payload"`
}

// RealtimeGateway delivers events to a user's live connections.
// Delivery is best-effort: users without open connections simply miss the
// event, and failures never propagate to the caller's business flow.
type RealtimeGateway interface {
	// Publish sends the event to every open connection of the user.
	Publish(ctx context.Context, userID uuid.UUID, event Event)
}
