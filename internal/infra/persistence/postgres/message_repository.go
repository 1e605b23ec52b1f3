// Package postgres contains the concrete implementation of the persistence layer using GORM and PostgreSQL.
package postgres

import (
	"context"
	"time"

	"farmlink/internal/domain/entity"
	domainerrors "farmlink/internal/domain/errors"
	"farmlink/internal/domain/repository"
	"farmlink/internal/infra/persistence/model"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"gorm.io/gorm"
)

// messageRepository implements the domain.MessageRepository interface.
type messageRepository struct {
	db *gorm.DB
}

// NewMessageRepository is the constructor for messageRepository.
func NewMessageRepository(db *gorm.DB) repository.MessageRepository {
	return &messageRepository{db: db}
}

// Create persists a new chat message.
func (repo *messageRepository) Create(ctx context.Context, message *entity.Message) error {
	messageM := fromMessageDomain(message)

	if err := repo.db.WithContext(ctx).Create(messageM).Error; err != nil {
		if isForeignKeyConstraintViolation(err) {
			return domainerrors.ErrEntityNotFound.WrapMessage("invalid conversation or sender reference")
		}

		return domainerrors.NewDatabaseExecuteError(err, "failed to create message")
	}

	// Update the entity with generated values
	message.ID = messageM.ID
	message.CreatedAt = messageM.CreatedAt

	return nil
}

// FindByConversationID retrieves all messages of a conversation, oldest first.
func (repo *messageRepository) FindByConversationID(ctx context.Context, conversationID uuid.UUID) ([]*entity.Message, error) {
	var messageModels []model.MessageModel

	err := repo.db.WithContext(ctx).
		Where("conversation_id = ?", conversationID).
		Order("created_at ASC").
		Find(&messageModels).Error
	if err != nil {
		return nil, errors.WithStack(err)
	}

	messages := make([]*entity.Message, 0, len(messageModels))
	for i := range messageModels {
		messages = append(messages, toMessageDomain(&messageModels[i]))
	}

	return messages, nil
}

// MarkConversationRead flags as read every message in the conversation that
// was sent by the other party. The reader's own messages keep their state.
func (repo *messageRepository) MarkConversationRead(ctx context.Context, conversationID, readerID uuid.UUID) error {
	err := repo.db.WithContext(ctx).
		Model(&model.MessageModel{}).
		Where("conversation_id = ? AND sender_id <> ? AND is_read = false", conversationID, readerID).
		Update("is_read", true).Error
	if err != nil {
		return errors.WithStack(err)
	}

	return nil
}

// FindUnreadForReminder retrieves messages that are still unread, were created
// before the cutoff, and have not had a reminder dispatched within the window.
func (repo *messageRepository) FindUnreadForReminder(ctx context.Context, cutoff time.Time) ([]*entity.Message, error) {
	var messageModels []model.MessageModel

	err := repo.db.WithContext(ctx).
		Where("is_read = false AND created_at < ? AND (last_notification_sent IS NULL OR last_notification_sent < ?)",
			cutoff, cutoff).
		Order("created_at ASC").
		Find(&messageModels).Error
	if err != nil {
		return nil, errors.WithStack(err)
	}

	messages := make([]*entity.Message, 0, len(messageModels))
	for i := range messageModels {
		messages = append(messages, toMessageDomain(&messageModels[i]))
	}

	return messages, nil
}

// StampNotificationSent records when an unread reminder was dispatched for the message.
func (repo *messageRepository) StampNotificationSent(ctx context.Context, messageID uuid.UUID, sentAt time.Time) error {
	result := repo.db.WithContext(ctx).
		Model(&model.MessageModel{}).
		Where("id = ?", messageID).
		Update("last_notification_sent", sentAt)
	if result.Error != nil {
		return errors.WithStack(result.Error)
	}

	// If no rows were affected, it means the message was not found.
	if result.RowsAffected == 0 {
		return repository.ErrMessageNotFound
	}

	return nil
}

// --- Mapper Functions ---

// toMessageDomain converts a GORM MessageModel to a domain Message entity.
func toMessageDomain(data *model.MessageModel) *entity.Message {
	if data == nil {
		return nil
	}

	return &entity.Message{
		ID:                   data.ID,
		ConversationID:       data.ConversationID,
		SenderID:             data.SenderID,
		Content:              data.Content,
		IsRead:               data.IsRead,
		LastNotificationSent: data.LastNotificationSent,
		CreatedAt:            data.CreatedAt,
	}
}

// fromMessageDomain converts a domain Message entity to a GORM MessageModel.
func fromMessageDomain(data *entity.Message) *model.MessageModel {
	if data == nil {
		return nil
	}

	return &model.MessageModel{
		ID:                   data.ID,
		ConversationID:       data.ConversationID,
		SenderID:             data.SenderID,
		Content:              data.Content,
		IsRead:               data.IsRead,
		LastNotificationSent: data.LastNotificationSent,
		CreatedAt:            data.CreatedAt,
	}
}
