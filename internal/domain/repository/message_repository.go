// Package repository defines the interfaces for the persistence layer.
package repository

import (
	"context"
	"time"

	"farmlink/internal/domain/entity"

	"github.com/google/uuid"
	"github.com/pkg/errors"
)

// ErrMessageNotFound is returned when a message is not found.
var ErrMessageNotFound = errors.New("message not found")

// MessageRepository defines the interface for chat message persistence.
type MessageRepository interface {
	// Create persists a new message.
	Create(ctx context.Context, message *entity.Message) error

	// FindByConversationID retrieves all messages of a conversation, oldest first.
	FindByConversationID(ctx context.Context, conversationID uuid.UUID) ([]*entity.Message, error)

	// MarkConversationRead flags as read every message in the conversation
	// that was NOT sent by the given user. The sender's own messages keep
	// their read state.
	MarkConversationRead(ctx context.Context, conversationID, readerID uuid.UUID) error

	// FindUnreadForReminder retrieves messages that are still unread, were
	// created before the cutoff, and have not had a reminder dispatched since
	// the cutoff. Used by the periodic reminder sweep.
	FindUnreadForReminder(ctx context.Context, cutoff time.Time) ([]*entity.Message, error)

	// StampNotificationSent records when an unread reminder was dispatched
	// for the message so the next sweep skips it until the window elapses.
	StampNotificationSent(ctx context.Context, messageID uuid.UUID, sentAt time.Time) error
}
