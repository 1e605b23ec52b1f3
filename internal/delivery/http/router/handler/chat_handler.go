package handler

import (
	"log/slog"
	"net/http"

	deliverycontext "farmlink/internal/delivery/context"
	"farmlink/internal/delivery/http/response"
	domainerrors "farmlink/internal/domain/errors"
	"farmlink/internal/usecase"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"
)

// ChatHandler holds dependencies for chat handlers.
type ChatHandler struct {
	uc     usecase.ChatUsecase
	logger *slog.Logger
}

// NewChatHandler is the constructor for ChatHandler, injected by Fx.
func NewChatHandler(uc usecase.ChatUsecase, logger *slog.Logger) *ChatHandler {
	return &ChatHandler{
		uc:     uc,
		logger: logger,
	}
}

type startConversationRequest struct {
	RecipientID    uuid.UUID  `json:"recipientId" validate:"required"`
	ProductID      *uuid.UUID `json:"productId"`
	InitialMessage string     `json:"initialMessage"`
}

// StartConversation opens a chat thread with another user, or returns the
// existing thread between the pair.
func (h *ChatHandler) StartConversation(c echo.Context) error {
	identity := deliverycontext.GetIdentity(c)
	if identity == nil {
		return domainerrors.ErrTokenInvalid
	}

	var req startConversationRequest
	if err := c.Bind(&req); err != nil {
		return response.BindingError(c, "Invalid conversation payload")
	}
	if err := c.Validate(&req); err != nil {
		return errors.WithStack(err)
	}

	conversation, err := h.uc.StartConversation(c.Request().Context(), &usecase.StartConversationInput{
		InitiatorID:    identity.UserID,
		RecipientID:    req.RecipientID,
		ProductID:      req.ProductID,
		InitialMessage: req.InitialMessage,
	})
	if err != nil {
		return errors.WithStack(err)
	}

	return response.JSON(c, http.StatusCreated, newConversationResponse(conversation))
}

// ListConversations returns the caller's active threads, most recent first.
func (h *ChatHandler) ListConversations(c echo.Context) error {
	identity := deliverycontext.GetIdentity(c)
	if identity == nil {
		return domainerrors.ErrTokenInvalid
	}

	conversations, err := h.uc.GetUserConversations(c.Request().Context(), identity.UserID)
	if err != nil {
		return errors.WithStack(err)
	}

	resp := make([]*conversationResponse, 0, len(conversations))
	for _, conversation := range conversations {
		resp = append(resp, newConversationResponse(conversation))
	}

	return response.JSON(c, http.StatusOK, resp)
}

// GetConversation returns one thread with its full message history.
func (h *ChatHandler) GetConversation(c echo.Context) error {
	identity := deliverycontext.GetIdentity(c)
	if identity == nil {
		return domainerrors.ErrTokenInvalid
	}

	conversationID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return domainerrors.ErrInvalidArgument.WrapMessage("invalid conversation id")
	}

	detail, err := h.uc.GetConversation(c.Request().Context(), identity.UserID, conversationID)
	if err != nil {
		return errors.WithStack(err)
	}

	messages := make([]*messageResponse, 0, len(detail.Messages))
	for _, message := range detail.Messages {
		messages = append(messages, newMessageResponse(message))
	}

	return response.JSON(c, http.StatusOK, map[string]any{
		"conversation": newConversationResponse(detail.Conversation),
		"messages":     messages,
	})
}

// MarkAsRead flags the other party's messages in the thread as read.
func (h *ChatHandler) MarkAsRead(c echo.Context) error {
	identity := deliverycontext.GetIdentity(c)
	if identity == nil {
		return domainerrors.ErrTokenInvalid
	}

	conversationID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return domainerrors.ErrInvalidArgument.WrapMessage("invalid conversation id")
	}

	if err := h.uc.MarkConversationAsRead(c.Request().Context(), identity.UserID, conversationID); err != nil {
		return errors.WithStack(err)
	}

	return c.NoContent(http.StatusNoContent)
}
