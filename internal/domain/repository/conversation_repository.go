// Package repository defines the interfaces for the persistence layer.
package repository

import (
	"context"

	"farmlink/internal/domain/entity"

	"github.com/google/uuid"
	"github.com/pkg/errors"
)

// ErrConversationNotFound is returned when a conversation is not found.
var ErrConversationNotFound = errors.New("conversation not found")

// ConversationRepository defines the interface for conversation persistence.
type ConversationRepository interface {
	// Create persists a new conversation.
	Create(ctx context.Context, conversation *entity.Conversation) error

	// FindByID retrieves a conversation by its unique ID.
	FindByID(ctx context.Context, id uuid.UUID) (*entity.Conversation, error)

	// FindByParticipants retrieves the conversation between the two users,
	// matching the pair in either direction, regardless of active state.
	FindByParticipants(ctx context.Context, userA, userB uuid.UUID) (*entity.Conversation, error)

	// FindActiveByUserID retrieves all active conversations the user takes
	// part in, most recently updated first.
	FindActiveByUserID(ctx context.Context, userID uuid.UUID) ([]*entity.Conversation, error)

	// Update modifies an existing conversation (active flag, updated timestamp).
	Update(ctx context.Context, conversation *entity.Conversation) error
}
