// Package postgres contains the concrete implementation of the persistence layer using GORM and PostgreSQL.
package postgres

import (
	"context"

	"farmlink/internal/domain/entity"
	domainerrors "farmlink/internal/domain/errors"
	"farmlink/internal/domain/repository"
	"farmlink/internal/infra/persistence/model"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"gorm.io/gorm"
)

// conversationRepository implements the domain.ConversationRepository interface.
type conversationRepository struct {
	db *gorm.DB
}

// NewConversationRepository is the constructor for conversationRepository.
func NewConversationRepository(db *gorm.DB) repository.ConversationRepository {
	return &conversationRepository{db: db}
}

// Create persists a new conversation.
func (repo *conversationRepository) Create(ctx context.Context, conversation *entity.Conversation) error {
	conversationM := fromConversationDomain(conversation)

	if err := repo.db.WithContext(ctx).Create(conversationM).Error; err != nil {
		if isForeignKeyConstraintViolation(err) {
			return domainerrors.ErrEntityNotFound.WrapMessage("invalid participant reference")
		}

		return domainerrors.NewDatabaseExecuteError(err, "failed to create conversation")
	}

	// Update the entity with generated values
	conversation.ID = conversationM.ID
	conversation.CreatedAt = conversationM.CreatedAt
	conversation.UpdatedAt = conversationM.UpdatedAt

	return nil
}

// FindByID retrieves a conversation by its unique ID.
func (repo *conversationRepository) FindByID(ctx context.Context, id uuid.UUID) (*entity.Conversation, error) {
	var conversationM model.ConversationModel

	err := repo.db.WithContext(ctx).
		First(&conversationM, "id = ?", id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, repository.ErrConversationNotFound
		}

		return nil, errors.WithStack(err)
	}

	return toConversationDomain(&conversationM), nil
}

// FindByParticipants retrieves the conversation between the two users,
// matching the pair in either direction, regardless of active state.
func (repo *conversationRepository) FindByParticipants(ctx context.Context, userA, userB uuid.UUID) (*entity.Conversation, error) {
	var conversationM model.ConversationModel

	err := repo.db.WithContext(ctx).
		Where("(initiator_id = ? AND recipient_id = ?) OR (initiator_id = ? AND recipient_id = ?)",
			userA, userB, userB, userA).
		First(&conversationM).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, repository.ErrConversationNotFound
		}

		return nil, errors.WithStack(err)
	}

	return toConversationDomain(&conversationM), nil
}

// FindActiveByUserID retrieves all active conversations the user takes part
// in, most recently updated first.
func (repo *conversationRepository) FindActiveByUserID(ctx context.Context, userID uuid.UUID) ([]*entity.Conversation, error) {
	var conversationModels []model.ConversationModel

	err := repo.db.WithContext(ctx).
		Where("is_active = true AND (initiator_id = ? OR recipient_id = ?)", userID, userID).
		Order("updated_at DESC").
		Find(&conversationModels).Error
	if err != nil {
		return nil, errors.WithStack(err)
	}

	conversations := make([]*entity.Conversation, 0, len(conversationModels))
	for i := range conversationModels {
		conversations = append(conversations, toConversationDomain(&conversationModels[i]))
	}

	return conversations, nil
}

// Update modifies an existing conversation.
func (repo *conversationRepository) Update(ctx context.Context, conversation *entity.Conversation) error {
	conversationM := fromConversationDomain(conversation)

	if err := repo.db.WithContext(ctx).Save(conversationM).Error; err != nil {
		return domainerrors.NewDatabaseExecuteError(err, "failed to update conversation")
	}

	return nil
}

// --- Mapper Functions ---

// toConversationDomain converts a GORM ConversationModel to a domain Conversation entity.
func toConversationDomain(data *model.ConversationModel) *entity.Conversation {
	if data == nil {
		return nil
	}

	return &entity.Conversation{
		ID:          data.ID,
		InitiatorID: data.InitiatorID,
		RecipientID: data.RecipientID,
		ProductID:   data.ProductID,
		Title:       data.Title,
		IsActive:    data.IsActive,
		CreatedAt:   data.CreatedAt,
		UpdatedAt:   data.UpdatedAt,
	}
}

// fromConversationDomain converts a domain Conversation entity to a GORM ConversationModel.
func fromConversationDomain(data *entity.Conversation) *model.ConversationModel {
	if data == nil {
		return nil
	}

	return &model.ConversationModel{
		ID:          data.ID,
		InitiatorID: data.InitiatorID,
		RecipientID: data.RecipientID,
		ProductID:   data.ProductID,
		Title:       data.Title,
		IsActive:    data.IsActive,
		CreatedAt:   data.CreatedAt,
		UpdatedAt:   data.UpdatedAt,
	}
}
