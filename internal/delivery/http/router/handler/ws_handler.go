package handler

import (
	"context"
	"log/slog"

	domainerrors "farmlink/internal/domain/errors"
	"farmlink/internal/domain/service"
	"farmlink/internal/infra/ws"
	"farmlink/internal/usecase"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"
	"nhooyr.io/websocket"
	"nhooyr.io/websocket/wsjson"
)

// WSHandler upgrades requests to websocket connections and runs their read loop.
type WSHandler struct {
	hub      *ws.Hub
	tokenSvc service.TokenService
	chatUC   usecase.ChatUsecase
	logger   *slog.Logger
}

// NewWSHandler is the constructor for WSHandler, injected by Fx.
func NewWSHandler(hub *ws.Hub, tokenSvc service.TokenService, chatUC usecase.ChatUsecase, logger *slog.Logger) *WSHandler {
	return &WSHandler{
		hub:      hub,
		tokenSvc: tokenSvc,
		chatUC:   chatUC,
		logger:   logger,
	}
}

// clientEvent is a single client-to-server websocket payload.
type clientEvent struct {
	Type           string    `json:"type"`
	ConversationID uuid.UUID `json:"conversationId"`
	Content        string    `json:"content"`
}

// Client event types.
const (
	clientEventSendMessage = "send_message"
	clientEventMarkRead    = "mark_read"
)

// Handle upgrades the request. The token travels in the token query
// parameter because browsers cannot set headers on websocket dials. A bad or
// missing token never fails the handshake; the connection learns about the
// problem on its first interaction and is closed.
func (h *WSHandler) Handle(c echo.Context) error {
	conn, err := websocket.Accept(c.Response(), c.Request(), nil)
	if err != nil {
		// Accept already wrote the handshake failure to the wire.
		return nil
	}

	ctx := c.Request().Context()

	claims, err := h.tokenSvc.ValidateAccessToken(c.QueryParam("token"))
	if err != nil {
		h.rejectUnauthenticated(ctx, conn)

		return nil
	}

	client := h.hub.AddClient(claims.UserID, conn)
	defer h.hub.RemoveClient(client)

	h.logger.Debug("Websocket connected", slog.String("userID", claims.UserID.String()))
	h.readLoop(ctx, client)

	return nil
}

// rejectUnauthenticated waits for the connection's first frame, answers with
// an error event and closes it.
func (h *WSHandler) rejectUnauthenticated(ctx context.Context, conn *websocket.Conn) {
	var discard clientEvent
	_ = wsjson.Read(ctx, conn, &discard)

	_ = wsjson.Write(ctx, conn, service.Event{
		Type:    service.EventError,
		Payload: map[string]string{"message": "authentication required"},
	})
	_ = conn.Close(websocket.StatusPolicyViolation, "authentication required")
}

func (h *WSHandler) readLoop(ctx context.Context, client *ws.Client) {
	for {
		var event clientEvent
		if err := wsjson.Read(ctx, client.Conn, &event); err != nil {
			return
		}

		switch event.Type {
		case clientEventSendMessage:
			if _, err := h.chatUC.SendMessage(ctx, client.UserID, event.ConversationID, event.Content); err != nil {
				h.sendError(client, err)
			}
		case clientEventMarkRead:
			if err := h.chatUC.MarkConversationAsRead(ctx, client.UserID, event.ConversationID); err != nil {
				h.sendError(client, err)
			}
		default:
			h.sendError(client, domainerrors.ErrInvalidArgument.WrapMessage("unknown event type "+event.Type))
		}
	}
}

// sendError reports a failed client action back on the same connection.
// Business failures stay on this socket; they never tear the connection down.
func (h *WSHandler) sendError(client *ws.Client, err error) {
	message := "request failed"
	var appErr domainerrors.AppError
	if errors.As(err, &appErr) {
		message = appErr.Message()
	}

	select {
	case client.Send <- service.Event{
		Type:    service.EventError,
		Payload: map[string]string{"message": message},
	}:
	default:
	}
}
