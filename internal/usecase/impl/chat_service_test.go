package impl

import (
	"context"
	"testing"
	"time"

	"farmlink/internal/domain/entity"
	domainerrors "farmlink/internal/domain/errors"
	"farmlink/internal/domain/service"
	"farmlink/internal/usecase"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newChatFixture() (*fakeStore, *recordingRealtime, usecase.ChatUsecase) {
	store := newFakeStore()
	realtime := newRecordingRealtime()
	srv := &chatService{
		txManager:        &fakeTxManager{store: store},
		conversationRepo: &fakeConversationRepo{store: store},
		messageRepo:      &fakeMessageRepo{store: store},
		userRepo:         &fakeUserRepo{store: store},
		deviceRepo:       &fakeDeviceRepo{store: store},
		realtime:         realtime,
		logger:           testLogger(),
	}

	return store, realtime, srv
}

func seedUser(store *fakeStore, firstName, lastName string) *entity.User {
	user := &entity.User{
		ID:    uuid.New(),
		Email: firstName + "@example.com",
		Role:  entity.RoleCustomer,
		Info:  &entity.UserInfo{FirstName: firstName, LastName: lastName},
	}
	store.users[user.ID] = user

	return user
}

func TestChatService_StartConversation_TitleFromParticipants(t *testing.T) {
	store, _, srv := newChatFixture()
	alice := seedUser(store, "Alice", "Smith")
	bob := seedUser(store, "Bob", "Jones")

	conversation, err := srv.StartConversation(context.Background(), &usecase.StartConversationInput{
		InitiatorID: alice.ID,
		RecipientID: bob.ID,
	})

	require.NoError(t, err)
	assert.Equal(t, "Conversation between Alice Smith and Bob Jones", conversation.Title)
	assert.True(t, conversation.IsActive)
}

func TestChatService_StartConversation_TitleFromProduct(t *testing.T) {
	store, _, srv := newChatFixture()
	alice := seedUser(store, "Alice", "Smith")
	bob := seedUser(store, "Bob", "Jones")
	product := seedProduct(store, bob.ID, "Raw Honey", 8.0, 1, nil, true)

	conversation, err := srv.StartConversation(context.Background(), &usecase.StartConversationInput{
		InitiatorID: alice.ID,
		RecipientID: bob.ID,
		ProductID:   &product.ID,
	})

	require.NoError(t, err)
	assert.Equal(t, "Conversation about Raw Honey", conversation.Title)
}

func TestChatService_StartConversation_PairIsSymmetric(t *testing.T) {
	store, _, srv := newChatFixture()
	ctx := context.Background()
	alice := seedUser(store, "Alice", "Smith")
	bob := seedUser(store, "Bob", "Jones")

	first, err := srv.StartConversation(ctx, &usecase.StartConversationInput{
		InitiatorID: alice.ID,
		RecipientID: bob.ID,
	})
	require.NoError(t, err)

	// Starting from the other side returns the same thread.
	second, err := srv.StartConversation(ctx, &usecase.StartConversationInput{
		InitiatorID: bob.ID,
		RecipientID: alice.ID,
	})
	require.NoError(t, err)

	assert.Equal(t, first.ID, second.ID)
	assert.Len(t, store.conversations, 1)
}

func TestChatService_StartConversation_ReactivatesInactiveThread(t *testing.T) {
	store, _, srv := newChatFixture()
	ctx := context.Background()
	alice := seedUser(store, "Alice", "Smith")
	bob := seedUser(store, "Bob", "Jones")

	conversation, err := srv.StartConversation(ctx, &usecase.StartConversationInput{
		InitiatorID: alice.ID,
		RecipientID: bob.ID,
	})
	require.NoError(t, err)

	store.conversations[conversation.ID].IsActive = false

	revived, err := srv.StartConversation(ctx, &usecase.StartConversationInput{
		InitiatorID: bob.ID,
		RecipientID: alice.ID,
	})

	require.NoError(t, err)
	assert.Equal(t, conversation.ID, revived.ID)
	assert.True(t, revived.IsActive)
}

func TestChatService_StartConversation_WithSelf(t *testing.T) {
	store, _, srv := newChatFixture()
	alice := seedUser(store, "Alice", "Smith")

	_, err := srv.StartConversation(context.Background(), &usecase.StartConversationInput{
		InitiatorID: alice.ID,
		RecipientID: alice.ID,
	})

	require.Error(t, err)
	assert.True(t, errors.Is(err, domainerrors.ErrInvalidArgument))
}

func TestChatService_StartConversation_UnknownRecipient(t *testing.T) {
	store, _, srv := newChatFixture()
	alice := seedUser(store, "Alice", "Smith")

	_, err := srv.StartConversation(context.Background(), &usecase.StartConversationInput{
		InitiatorID: alice.ID,
		RecipientID: uuid.New(),
	})

	require.Error(t, err)
	assert.True(t, errors.Is(err, domainerrors.ErrEntityNotFound))
}

func TestChatService_StartConversation_InitialMessage(t *testing.T) {
	store, realtime, srv := newChatFixture()
	alice := seedUser(store, "Alice", "Smith")
	bob := seedUser(store, "Bob", "Jones")

	conversation, err := srv.StartConversation(context.Background(), &usecase.StartConversationInput{
		InitiatorID:    alice.ID,
		RecipientID:    bob.ID,
		InitialMessage: "Hi, is the honey still available?",
	})
	require.NoError(t, err)

	store.mu.Lock()
	require.Len(t, store.messages, 1)
	for _, message := range store.messages {
		assert.Equal(t, conversation.ID, message.ConversationID)
		assert.Equal(t, alice.ID, message.SenderID)
		assert.False(t, message.IsRead)
	}
	store.mu.Unlock()

	// The opening message reaches the recipient's live connections.
	assert.Eventually(t, func() bool {
		realtime.mu.Lock()
		defer realtime.mu.Unlock()

		return len(realtime.events[bob.ID]) == 1
	}, time.Second, 10*time.Millisecond)
}

func startThread(t *testing.T, srv usecase.ChatUsecase, initiatorID, recipientID uuid.UUID) *entity.Conversation {
	t.Helper()

	conversation, err := srv.StartConversation(context.Background(), &usecase.StartConversationInput{
		InitiatorID: initiatorID,
		RecipientID: recipientID,
	})
	require.NoError(t, err)

	return conversation
}

func TestChatService_SendMessage_DeliversToOtherParty(t *testing.T) {
	store, realtime, srv := newChatFixture()
	ctx := context.Background()
	alice := seedUser(store, "Alice", "Smith")
	bob := seedUser(store, "Bob", "Jones")
	conversation := startThread(t, srv, alice.ID, bob.ID)

	message, err := srv.SendMessage(ctx, bob.ID, conversation.ID, "Yes, plenty left.")

	require.NoError(t, err)
	assert.Equal(t, bob.ID, message.SenderID)

	assert.Eventually(t, func() bool {
		realtime.mu.Lock()
		defer realtime.mu.Unlock()

		events := realtime.events[alice.ID]

		return len(events) == 1 && events[0].Type == service.EventMessage
	}, time.Second, 10*time.Millisecond)
}

func TestChatService_SendMessage_StrangerRejected(t *testing.T) {
	store, _, srv := newChatFixture()
	alice := seedUser(store, "Alice", "Smith")
	bob := seedUser(store, "Bob", "Jones")
	conversation := startThread(t, srv, alice.ID, bob.ID)

	_, err := srv.SendMessage(context.Background(), uuid.New(), conversation.ID, "let me in")

	require.Error(t, err)
	assert.True(t, errors.Is(err, domainerrors.ErrAccessDenied))
}

func TestChatService_SendMessage_UnknownConversation(t *testing.T) {
	store, _, srv := newChatFixture()
	alice := seedUser(store, "Alice", "Smith")

	_, err := srv.SendMessage(context.Background(), alice.ID, uuid.New(), "hello?")

	require.Error(t, err)
	assert.True(t, errors.Is(err, domainerrors.ErrEntityNotFound))
}

func TestChatService_SendMessage_EmptyContent(t *testing.T) {
	store, _, srv := newChatFixture()
	alice := seedUser(store, "Alice", "Smith")
	bob := seedUser(store, "Bob", "Jones")
	conversation := startThread(t, srv, alice.ID, bob.ID)

	_, err := srv.SendMessage(context.Background(), alice.ID, conversation.ID, "")

	require.Error(t, err)
	assert.True(t, errors.Is(err, domainerrors.ErrInvalidArgument))
}

func TestChatService_MarkConversationAsRead_OnlyOtherPartysMessages(t *testing.T) {
	store, _, srv := newChatFixture()
	ctx := context.Background()
	alice := seedUser(store, "Alice", "Smith")
	bob := seedUser(store, "Bob", "Jones")
	conversation := startThread(t, srv, alice.ID, bob.ID)

	fromAlice, err := srv.SendMessage(ctx, alice.ID, conversation.ID, "ping")
	require.NoError(t, err)
	fromBob, err := srv.SendMessage(ctx, bob.ID, conversation.ID, "pong")
	require.NoError(t, err)

	require.NoError(t, srv.MarkConversationAsRead(ctx, alice.ID, conversation.ID))

	store.mu.Lock()
	defer store.mu.Unlock()
	assert.True(t, store.messages[fromBob.ID].IsRead)
	assert.False(t, store.messages[fromAlice.ID].IsRead)
}

func TestChatService_GetConversation_ParticipantsOnly(t *testing.T) {
	store, _, srv := newChatFixture()
	ctx := context.Background()
	alice := seedUser(store, "Alice", "Smith")
	bob := seedUser(store, "Bob", "Jones")
	conversation := startThread(t, srv, alice.ID, bob.ID)

	_, err := srv.SendMessage(ctx, alice.ID, conversation.ID, "hello")
	require.NoError(t, err)

	detail, err := srv.GetConversation(ctx, bob.ID, conversation.ID)
	require.NoError(t, err)
	assert.Equal(t, conversation.ID, detail.Conversation.ID)
	assert.Len(t, detail.Messages, 1)

	_, err = srv.GetConversation(ctx, uuid.New(), conversation.ID)
	require.Error(t, err)
	assert.True(t, errors.Is(err, domainerrors.ErrAccessDenied))
}

func TestChatService_GetUserConversations_ActiveOnly(t *testing.T) {
	store, _, srv := newChatFixture()
	ctx := context.Background()
	alice := seedUser(store, "Alice", "Smith")
	bob := seedUser(store, "Bob", "Jones")
	carol := seedUser(store, "Carol", "White")

	active := startThread(t, srv, alice.ID, bob.ID)
	hidden := startThread(t, srv, alice.ID, carol.ID)
	store.conversations[hidden.ID].IsActive = false

	conversations, err := srv.GetUserConversations(ctx, alice.ID)

	require.NoError(t, err)
	require.Len(t, conversations, 1)
	assert.Equal(t, active.ID, conversations[0].ID)
}
