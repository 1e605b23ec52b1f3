// Package impl contains the implementation of the application's business logic.
package impl

import (
	"context"
	"log/slog"
	"time"

	deliverycontext "farmlink/internal/delivery/context"
	"farmlink/internal/domain/entity"
	domainerrors "farmlink/internal/domain/errors"
	"farmlink/internal/domain/repository"
	"farmlink/internal/domain/service"
	"farmlink/internal/usecase"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"go.uber.org/fx"
)

// chatService implements the ChatUsecase interface.
type chatService struct {
	txManager           repository.TransactionManager
	conversationRepo    repository.ConversationRepository
	messageRepo         repository.MessageRepository
	userRepo            repository.UserRepository
	deviceRepo          repository.DeviceRepository
	notificationService service.NotificationService
	realtime            service.RealtimeGateway
	logger              *slog.Logger
}

// ChatServiceParams holds dependencies for ChatService, injected by Fx.
type ChatServiceParams struct {
	fx.In

	TxManager           repository.TransactionManager
	ConversationRepo    repository.ConversationRepository
	MessageRepo         repository.MessageRepository
	UserRepo            repository.UserRepository
	DeviceRepo          repository.DeviceRepository
	NotificationService service.NotificationService `optional:"true"`
	Realtime            service.RealtimeGateway
	Logger              *slog.Logger
}

// NewChatService is the constructor for chatService. It receives all dependencies as interfaces.
func NewChatService(params ChatServiceParams) usecase.ChatUsecase {
	return &chatService{
		txManager:           params.TxManager,
		conversationRepo:    params.ConversationRepo,
		messageRepo:         params.MessageRepo,
		userRepo:            params.UserRepo,
		deviceRepo:          params.DeviceRepo,
		notificationService: params.NotificationService,
		realtime:            params.Realtime,
		logger:              params.Logger,
	}
}

// log returns a request-scoped logger if available, otherwise falls back to the service's logger.
func (srv *chatService) log(ctx context.Context) *slog.Logger {
	return deliverycontext.GetLoggerOrDefault(ctx, srv.logger)
}

// StartConversation opens a thread between two users, returning the existing
// one when the pair already has a thread in either direction.
func (srv *chatService) StartConversation(ctx context.Context, input *usecase.StartConversationInput) (*entity.Conversation, error) {
	srv.log(ctx).Info("Starting conversation", slog.Any("initiatorID", input.InitiatorID), slog.Any("recipientID", input.RecipientID))

	if input.InitiatorID == input.RecipientID {
		return nil, errors.Wrap(domainerrors.ErrInvalidArgument.WrapMessage("cannot start a conversation with yourself"), "conversation rejected")
	}

	var conversation *entity.Conversation
	var initialMessage *entity.Message

	err := srv.txManager.Execute(ctx, func(repoFactory repository.RepositoryFactory) error {
		userRepo := repoFactory.UserRepo()
		conversationRepo := repoFactory.ConversationRepo()
		messageRepo := repoFactory.MessageRepo()

		// 1. Verify the recipient exists.
		recipient, err := userRepo.FindByID(ctx, input.RecipientID)
		if err != nil {
			if errors.Is(err, repository.ErrUserNotFound) {
				return errors.Wrap(domainerrors.ErrEntityNotFound.WrapMessage("recipient not found"), "conversation rejected")
			}

			return errors.Wrap(err, "failed to find recipient")
		}

		// 2. Reuse the existing thread for the pair, in either direction.
		existing, err := conversationRepo.FindByParticipants(ctx, input.InitiatorID, input.RecipientID)
		if err != nil && !errors.Is(err, repository.ErrConversationNotFound) {
			return errors.Wrap(err, "failed to find existing conversation")
		}

		if existing != nil {
			if !existing.IsActive {
				existing.IsActive = true
				if err := conversationRepo.Update(ctx, existing); err != nil {
					return errors.Wrap(err, "failed to reactivate conversation")
				}
			}
			conversation = existing
		} else {
			initiator, err := userRepo.FindByID(ctx, input.InitiatorID)
			if err != nil {
				return errors.Wrap(err, "failed to find initiator")
			}

			conversation = &entity.Conversation{
				InitiatorID: input.InitiatorID,
				RecipientID: input.RecipientID,
				ProductID:   input.ProductID,
				Title:       srv.buildConversationTitle(ctx, repoFactory, input.ProductID, initiator, recipient),
				IsActive:    true,
			}

			if err := conversationRepo.Create(ctx, conversation); err != nil {
				return errors.Wrap(err, "failed to create conversation")
			}
		}

		// 3. Append the opening message when one was provided.
		if input.InitialMessage != "" {
			initialMessage = &entity.Message{
				ConversationID: conversation.ID,
				SenderID:       input.InitiatorID,
				Content:        input.InitialMessage,
			}
			if err := messageRepo.Create(ctx, initialMessage); err != nil {
				return errors.Wrap(err, "failed to create initial message")
			}

			conversation.UpdatedAt = time.Now()
			if err := conversationRepo.Update(ctx, conversation); err != nil {
				return errors.Wrap(err, "failed to bump conversation activity")
			}
		}

		return nil
	})

	if err != nil {
		srv.log(ctx).Warn("Failed to execute start conversation transaction", slog.Any("initiatorID", input.InitiatorID), slog.Any("error", err))

		return nil, errors.Wrap(err, "failed to execute start conversation transaction")
	}

	if initialMessage != nil {
		srv.deliverMessageAsync(ctx, conversation, initialMessage)
	}

	return conversation, nil
}

// buildConversationTitle derives the thread's display title from the product
// it is about, falling back to the participants' names.
func (srv *chatService) buildConversationTitle(ctx context.Context, repoFactory repository.RepositoryFactory, productID *uuid.UUID, initiator, recipient *entity.User) string {
	if productID != nil {
		product, err := repoFactory.ProductRepo().FindByID(ctx, *productID)
		if err == nil {
			return "Conversation about " + product.Name
		}
		srv.log(ctx).Warn("Failed to resolve product for conversation title", slog.Any("productID", *productID), slog.Any("error", err))
	}

	return "Conversation between " + initiator.FullName() + " and " + recipient.FullName()
}

// SendMessage appends a message to a conversation the sender takes part in.
func (srv *chatService) SendMessage(ctx context.Context, senderID, conversationID uuid.UUID, content string) (*entity.Message, error) {
	if content == "" {
		return nil, errors.Wrap(domainerrors.ErrInvalidArgument.WrapMessage("message content cannot be empty"), "message rejected")
	}

	var conversation *entity.Conversation
	var message *entity.Message

	err := srv.txManager.Execute(ctx, func(repoFactory repository.RepositoryFactory) error {
		conversationRepo := repoFactory.ConversationRepo()
		messageRepo := repoFactory.MessageRepo()

		// 1. Verify the conversation exists and the sender takes part in it.
		var err error
		conversation, err = conversationRepo.FindByID(ctx, conversationID)
		if err != nil {
			if errors.Is(err, repository.ErrConversationNotFound) {
				return errors.Wrap(domainerrors.ErrEntityNotFound.WrapMessage("conversation not found"), "message rejected")
			}

			return errors.Wrap(err, "failed to find conversation")
		}

		if !conversation.HasParty(senderID) {
			srv.log(ctx).Warn("Message rejected", slog.Any("conversationID", conversationID), slog.Any("senderID", senderID))

			return errors.Wrap(domainerrors.ErrAccessDenied, "sender is not part of this conversation")
		}

		// 2. Store the message and bump the thread's activity. Messaging into
		// an inactive thread reactivates it.
		message = &entity.Message{
			ConversationID: conversationID,
			SenderID:       senderID,
			Content:        content,
		}
		if err := messageRepo.Create(ctx, message); err != nil {
			return errors.Wrap(err, "failed to create message")
		}

		conversation.IsActive = true
		conversation.UpdatedAt = time.Now()
		if err := conversationRepo.Update(ctx, conversation); err != nil {
			return errors.Wrap(err, "failed to bump conversation activity")
		}

		return nil
	})

	if err != nil {
		srv.log(ctx).Warn("Failed to execute send message transaction", slog.Any("conversationID", conversationID), slog.Any("error", err))

		return nil, errors.Wrap(err, "failed to execute send message transaction")
	}

	srv.deliverMessageAsync(ctx, conversation, message)

	return message, nil
}

// MarkConversationAsRead flags the other party's messages as read.
func (srv *chatService) MarkConversationAsRead(ctx context.Context, readerID, conversationID uuid.UUID) error {
	conversation, err := srv.conversationRepo.FindByID(ctx, conversationID)
	if err != nil {
		if errors.Is(err, repository.ErrConversationNotFound) {
			return errors.Wrap(domainerrors.ErrEntityNotFound.WrapMessage("conversation not found"), "mark read rejected")
		}

		return errors.Wrap(err, "failed to find conversation")
	}

	if !conversation.HasParty(readerID) {
		return errors.Wrap(domainerrors.ErrAccessDenied, "reader is not part of this conversation")
	}

	if err := srv.messageRepo.MarkConversationRead(ctx, conversationID, readerID); err != nil {
		srv.log(ctx).Error("Failed to mark conversation read", slog.Any("conversationID", conversationID), slog.Any("error", err))

		return errors.Wrap(err, "failed to mark conversation read")
	}

	return nil
}

// GetUserConversations lists the user's active threads, most recently updated first.
func (srv *chatService) GetUserConversations(ctx context.Context, userID uuid.UUID) ([]*entity.Conversation, error) {
	conversations, err := srv.conversationRepo.FindActiveByUserID(ctx, userID)
	if err != nil {
		srv.log(ctx).Error("Failed to list conversations", slog.Any("userID", userID), slog.Any("error", err))

		return nil, errors.Wrap(err, "failed to list conversations")
	}

	return conversations, nil
}

// GetConversation retrieves a thread with its full message history.
func (srv *chatService) GetConversation(ctx context.Context, userID, conversationID uuid.UUID) (*usecase.ConversationDetail, error) {
	conversation, err := srv.conversationRepo.FindByID(ctx, conversationID)
	if err != nil {
		if errors.Is(err, repository.ErrConversationNotFound) {
			return nil, errors.Wrap(domainerrors.ErrEntityNotFound.WrapMessage("conversation not found"), "conversation lookup failed")
		}

		return nil, errors.Wrap(err, "failed to find conversation")
	}

	if !conversation.HasParty(userID) {
		return nil, errors.Wrap(domainerrors.ErrAccessDenied, "user is not part of this conversation")
	}

	messages, err := srv.messageRepo.FindByConversationID(ctx, conversationID)
	if err != nil {
		return nil, errors.Wrap(err, "failed to load conversation messages")
	}

	return &usecase.ConversationDetail{
		Conversation: conversation,
		Messages:     messages,
	}, nil
}

// deliverMessageAsync pushes the message to the other party's live connections
// and, when they have registered devices, as a mobile push. Best-effort.
func (srv *chatService) deliverMessageAsync(ctx context.Context, conversation *entity.Conversation, message *entity.Message) {
	logger := srv.log(ctx)
	recipientID := conversation.OtherParty(message.SenderID)

	go func() {
		deliverCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), notifyTimeout)
		defer cancel()

		srv.realtime.Publish(deliverCtx, recipientID, service.Event{
			Type:    service.EventMessage,
			Payload: message,
		})

		if srv.notificationService == nil {
			return
		}

		sender, err := srv.userRepo.FindByID(deliverCtx, message.SenderID)
		if err != nil {
			logger.Warn("Failed to resolve sender for message push", slog.Any("senderID", message.SenderID), slog.Any("error", err))

			return
		}

		devices, err := srv.deviceRepo.FindActiveDevicesByUser(deliverCtx, recipientID)
		if err != nil {
			logger.Warn("Failed to load devices for message push", slog.Any("recipientID", recipientID), slog.Any("error", err))

			return
		}
		if len(devices) == 0 {
			return
		}

		tokens := make([]string, 0, len(devices))
		for _, device := range devices {
			tokens = append(tokens, device.FCMToken)
		}

		data := map[string]string{
			"conversation_id": conversation.ID.String(),
			"message_id":      message.ID.String(),
		}

		_, _, invalidTokens, err := srv.notificationService.SendBatchNotification(deliverCtx, tokens, sender.FullName(), message.Preview(), data)
		if err != nil {
			logger.Warn("Failed to send message push notification", slog.Any("recipientID", recipientID), slog.Any("error", err))

			return
		}

		if len(invalidTokens) > 0 {
			if err := srv.deviceRepo.DeactivateByTokens(deliverCtx, invalidTokens); err != nil {
				logger.Warn("Failed to deactivate invalid device tokens", slog.Any("error", err))
			}
		}
	}()
}
