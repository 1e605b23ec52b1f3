package handler

import (
	"time"

	"farmlink/internal/domain/entity"
	"farmlink/internal/usecase"

	"github.com/google/uuid"
)

// userResponse is the public projection of an account. Credentials never leave the server.
type userResponse struct {
	ID          uuid.UUID       `json:"id"`
	Email       string          `json:"email"`
	Role        string          `json:"role"`
	FirstName   string          `json:"firstName,omitempty"`
	LastName    string          `json:"lastName,omitempty"`
	PhoneNumber string          `json:"phoneNumber,omitempty"`
	Farmer      *farmerResponse `json:"farmer,omitempty"`
	CreatedAt   time.Time       `json:"createdAt"`
}

type farmerResponse struct {
	FarmName     string `json:"farmName"`
	FarmLocation string `json:"farmLocation,omitempty"`
	Bio          string `json:"bio,omitempty"`
	IsVerified   bool   `json:"isVerified"`
}

func newUserResponse(user *entity.User) *userResponse {
	resp := &userResponse{
		ID:        user.ID,
		Email:     user.Email,
		Role:      user.Role.String(),
		CreatedAt: user.CreatedAt,
	}

	if user.Info != nil {
		resp.FirstName = user.Info.FirstName
		resp.LastName = user.Info.LastName
		resp.PhoneNumber = user.Info.PhoneNumber
	}

	if user.Farmer != nil {
		resp.Farmer = &farmerResponse{
			FarmName:     user.Farmer.FarmName,
			FarmLocation: user.Farmer.FarmLocation,
			Bio:          user.Farmer.Bio,
			IsVerified:   user.Farmer.IsVerified,
		}
	}

	return resp
}

// tokenPairResponse is returned by login, registration and refresh.
type tokenPairResponse struct {
	AccessToken  string        `json:"accessToken"`
	RefreshToken string        `json:"refreshToken"`
	User         *userResponse `json:"user"`
}

func newTokenPairResponse(output *usecase.TokenPairOutput) *tokenPairResponse {
	return &tokenPairResponse{
		AccessToken:  output.AccessToken,
		RefreshToken: output.RefreshToken,
		User:         newUserResponse(output.User),
	}
}

// sessionResponse describes one active refresh-token session.
type sessionResponse struct {
	ID        uuid.UUID `json:"id"`
	CreatedAt time.Time `json:"createdAt"`
	ExpiresAt time.Time `json:"expiresAt"`
}

func newSessionResponses(sessions []*entity.RefreshToken) []*sessionResponse {
	resp := make([]*sessionResponse, 0, len(sessions))
	for _, session := range sessions {
		resp = append(resp, &sessionResponse{
			ID:        session.ID,
			CreatedAt: session.CreatedAt,
			ExpiresAt: session.ExpiresAt,
		})
	}

	return resp
}

type orderItemResponse struct {
	ID          uuid.UUID `json:"id"`
	ProductID   uuid.UUID `json:"productId"`
	ProductName string    `json:"productName"`
	UnitPrice   float64   `json:"unitPrice"`
	Quantity    int       `json:"quantity"`
	LineTotal   float64   `json:"lineTotal"`
}

type orderResponse struct {
	ID         uuid.UUID           `json:"id"`
	CustomerID uuid.UUID           `json:"customerId"`
	Status     string              `json:"status"`
	TotalPrice float64             `json:"totalPrice"`
	Notes      string              `json:"notes,omitempty"`
	Items      []orderItemResponse `json:"items"`
	CreatedAt  time.Time           `json:"createdAt"`
	UpdatedAt  time.Time           `json:"updatedAt"`
}

func newOrderResponse(order *entity.Order) *orderResponse {
	items := make([]orderItemResponse, 0, len(order.Items))
	for _, item := range order.Items {
		items = append(items, orderItemResponse{
			ID:          item.ID,
			ProductID:   item.ProductID,
			ProductName: item.ProductName,
			UnitPrice:   item.UnitPrice,
			Quantity:    item.Quantity,
			LineTotal:   item.LineTotal,
		})
	}

	return &orderResponse{
		ID:         order.ID,
		CustomerID: order.CustomerID,
		Status:     order.Status.String(),
		TotalPrice: order.TotalPrice,
		Notes:      order.Notes,
		Items:      items,
		CreatedAt:  order.CreatedAt,
		UpdatedAt:  order.UpdatedAt,
	}
}

// orderPageResponse is one page of an order listing.
type orderPageResponse struct {
	Orders     []*orderResponse `json:"orders"`
	Page       int              `json:"page"`
	Size       int              `json:"size"`
	TotalItems int64            `json:"totalItems"`
	TotalPages int              `json:"totalPages"`
}

func newOrderPageResponse(page *usecase.OrderPage) *orderPageResponse {
	orders := make([]*orderResponse, 0, len(page.Orders))
	for _, order := range page.Orders {
		orders = append(orders, newOrderResponse(order))
	}

	return &orderPageResponse{
		Orders:     orders,
		Page:       page.Page,
		Size:       page.Size,
		TotalItems: page.TotalItems,
		TotalPages: page.TotalPages,
	}
}

type conversationResponse struct {
	ID          uuid.UUID  `json:"id"`
	InitiatorID uuid.UUID  `json:"initiatorId"`
	RecipientID uuid.UUID  `json:"recipientId"`
	ProductID   *uuid.UUID `json:"productId,omitempty"`
	Title       string     `json:"title"`
	CreatedAt   time.Time  `json:"createdAt"`
	UpdatedAt   time.Time  `json:"updatedAt"`
}

func newConversationResponse(conversation *entity.Conversation) *conversationResponse {
	return &conversationResponse{
		ID:          conversation.ID,
		InitiatorID: conversation.InitiatorID,
		RecipientID: conversation.RecipientID,
		ProductID:   conversation.ProductID,
		Title:       conversation.Title,
		CreatedAt:   conversation.CreatedAt,
		UpdatedAt:   conversation.UpdatedAt,
	}
}

type messageResponse struct {
	ID             uuid.UUID `json:"id"`
	ConversationID uuid.UUID `json:"conversationId"`
	SenderID       uuid.UUID `json:"senderId"`
	Content        string    `json:"content"`
	IsRead         bool      `json:"isRead"`
	CreatedAt      time.Time `json:"createdAt"`
}

func newMessageResponse(message *entity.Message) *messageResponse {
	return &messageResponse{
		ID:             message.ID,
		ConversationID: message.ConversationID,
		SenderID:       message.SenderID,
		Content:        message.Content,
		IsRead:         message.IsRead,
		CreatedAt:      message.CreatedAt,
	}
}

type deviceResponse struct {
	ID        uuid.UUID `json:"id"`
	Platform  string    `json:"platform"`
	IsActive  bool      `json:"isActive"`
	CreatedAt time.Time `json:"createdAt"`
}

func newDeviceResponse(device *entity.UserDevice) *deviceResponse {
	return &deviceResponse{
		ID:        device.ID,
		Platform:  device.Platform,
		IsActive:  device.IsActive,
		CreatedAt: device.CreatedAt,
	}
}
