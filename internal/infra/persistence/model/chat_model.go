package model

import (
	"time"

	"github.com/google/uuid"
)

// ConversationModel mirrors the 'conversations' table. The participant pair is
// unique; direction-insensitive lookups are done in the repository query.
type ConversationModel struct {
	ID          uuid.UUID  `gorm:"type:uuid;primary_key;default:uuid_generate_v4()"`
	InitiatorID uuid.UUID  `gorm:"type:uuid;not null;uniqueIndex:idx_conversation_pair"`
	RecipientID uuid.UUID  `gorm:"type:uuid;not null;uniqueIndex:idx_conversation_pair"`
	ProductID   *uuid.UUID `gorm:"type:uuid"`
	Title       string     `gorm:"type:varchar(255)"`
	IsActive    bool       `gorm:"not null;default:true"`
	CreatedAt   time.Time
	UpdatedAt   time.Time

	Messages []MessageModel `gorm:"foreignKey:ConversationID"`
}

// TableName explicitly sets the table name for GORM.
func (ConversationModel) TableName() string {
	return "conversations"
}

// MessageModel mirrors the 'messages' table.
type MessageModel struct {
	ID                   uuid.UUID `gorm:"type:uuid;primary_key;default:uuid_generate_v4()"`
	ConversationID       uuid.UUID `gorm:"type:uuid;not null;index"`
	SenderID             uuid.UUID `gorm:"type:uuid;not null"`
	Content              string    `gorm:"type:text;not null"`
	IsRead               bool      `gorm:"not null;default:false;index"`
	LastNotificationSent *time.Time
	CreatedAt            time.Time
}

// TableName explicitly sets the table name for GORM.
func (MessageModel) TableName() string {
	return "messages"
}
