// Package entity contains the core business objects of the project.
package entity

import (
	"time"

	"github.com/google/uuid"
)

// Conversation is a two-party chat thread, optionally anchored to a product.
// The (initiator, recipient) pair is unique regardless of direction: asking to
// start B->A returns the existing A->B thread.
type Conversation struct {
	ID          uuid.UUID  // The unique ID of the conversation.
	InitiatorID uuid.UUID  // The user who opened the thread.
	RecipientID uuid.UUID  // The other party.
	ProductID   *uuid.UUID // Optional product the thread is about.
	Title       string     // Generated display title.
	IsActive    bool       // Inactive threads are hidden from listings until reactivated.
	CreatedAt   time.Time
	UpdatedAt   time.Time // Bumped on every new message; listings order by this.
}

// HasParty reports whether the given user participates in the conversation.
func (c *Conversation) HasParty(userID uuid.UUID) bool {
	return c.InitiatorID == userID || c.RecipientID == userID
}

// OtherParty returns the participant that is not the given user.
func (c *Conversation) OtherParty(userID uuid.UUID) uuid.UUID {
	if c.InitiatorID == userID {
		return c.RecipientID
	}

	return c.InitiatorID
}

// Message is a single chat message within a conversation.
type Message struct {
	ID                   uuid.UUID  // The unique ID of the message.
	ConversationID       uuid.UUID  // The conversation this message belongs to.
	SenderID             uuid.UUID  // The user who sent the message.
	Content              string     // Message body.
	IsRead               bool       // Whether the recipient has read the message.
	LastNotificationSent *time.Time // When an unread reminder was last dispatched for this message. Nil if never.
	CreatedAt            time.Time
}

const messagePreviewLimit = 100

// Preview returns the message content truncated for notification bodies.
// Truncation counts runes, never splitting a multi-byte character.
func (m *Message) Preview() string {
	runes := []rune(m.Content)
	if len(runes) <= messagePreviewLimit {
		return m.Content
	}

	return string(runes[:messagePreviewLimit-3]) + "..."
}
