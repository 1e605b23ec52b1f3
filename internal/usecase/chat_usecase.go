// Package usecase contains the application-specific business rules.
package usecase

import (
	"context"

	"farmlink/internal/domain/entity"

	"github.com/google/uuid"
)

// --- Input DTOs ---

// StartConversationInput defines the data required to open a chat thread.
type StartConversationInput struct {
	InitiatorID    uuid.UUID
	RecipientID    uuid.UUID
	ProductID      *uuid.UUID
	InitialMessage string
}

// --- Output DTOs ---

// ConversationDetail is a conversation together with its full message history.
type ConversationDetail struct {
	Conversation *entity.Conversation
	Messages     []*entity.Message
}

// ChatUsecase defines the interface for chat business operations.
type ChatUsecase interface {
	// StartConversation opens a thread between two users. If a thread between
	// the pair already exists, in either direction, it is returned instead of
	// creating a duplicate, reactivating it when necessary.
	StartConversation(ctx context.Context, input *StartConversationInput) (*entity.Conversation, error)

	// SendMessage appends a message to a conversation the sender takes part in
	// and delivers it to the other party over the realtime channel.
	SendMessage(ctx context.Context, senderID, conversationID uuid.UUID, content string) (*entity.Message, error)

	// MarkConversationAsRead flags the other party's messages in the
	// conversation as read. The reader's own messages are untouched.
	MarkConversationAsRead(ctx context.Context, readerID, conversationID uuid.UUID) error

	// GetUserConversations lists the user's active threads, most recently updated first.
	GetUserConversations(ctx context.Context, userID uuid.UUID) ([]*entity.Conversation, error)

	// GetConversation retrieves a thread with its full message history.
	// Only a participant may view it.
	GetConversation(ctx context.Context, userID, conversationID uuid.UUID) (*ConversationDetail, error)
}
