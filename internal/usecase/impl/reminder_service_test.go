package impl

import (
	"context"
	"testing"
	"time"

	"farmlink/internal/domain/entity"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newReminderFixture() (*fakeStore, *recordingMailer, *reminderService) {
	store := newFakeStore()
	mailer := &recordingMailer{}
	srv := &reminderService{
		messageRepo:      &fakeMessageRepo{store: store},
		conversationRepo: &fakeConversationRepo{store: store},
		userRepo:         &fakeUserRepo{store: store},
		deviceRepo:       &fakeDeviceRepo{store: store},
		refreshTokenRepo: &fakeRefreshTokenRepo{store: store},
		mailer:           mailer,
		unreadThreshold:  6 * time.Hour,
		logger:           testLogger(),
	}

	return store, mailer, srv
}

func seedThreadWithMessage(store *fakeStore, sender, recipient *entity.User, age time.Duration) *entity.Message {
	conversation := &entity.Conversation{
		ID:          uuid.New(),
		InitiatorID: sender.ID,
		RecipientID: recipient.ID,
		IsActive:    true,
	}
	store.conversations[conversation.ID] = conversation

	message := &entity.Message{
		ID:             uuid.New(),
		ConversationID: conversation.ID,
		SenderID:       sender.ID,
		Content:        "Are the eggs still available?",
		CreatedAt:      time.Now().Add(-age),
	}
	store.messages[message.ID] = message

	return message
}

func TestReminderService_RunSweep_SendsEmailAndStamps(t *testing.T) {
	store, mailer, srv := newReminderFixture()
	alice := seedUser(store, "Alice", "Smith")
	bob := seedUser(store, "Bob", "Jones")
	message := seedThreadWithMessage(store, alice, bob, 7*time.Hour)

	result, err := srv.RunSweep(context.Background())

	require.NoError(t, err)
	assert.Equal(t, 1, result.Examined)
	assert.Equal(t, 1, result.Dispatched)
	assert.Equal(t, 0, result.Failed)

	require.Len(t, mailer.sent, 1)
	assert.Equal(t, bob.Email, mailer.sent[0].To)
	assert.Equal(t, "Unread message from Alice Smith", mailer.sent[0].Subject)
	assert.Contains(t, mailer.sent[0].Body, "Are the eggs still available?")

	require.NotNil(t, store.messages[message.ID].LastNotificationSent)
}

func TestReminderService_RunSweep_SkipsFreshAndReadMessages(t *testing.T) {
	store, mailer, srv := newReminderFixture()
	alice := seedUser(store, "Alice", "Smith")
	bob := seedUser(store, "Bob", "Jones")

	seedThreadWithMessage(store, alice, bob, time.Hour) // too fresh
	read := seedThreadWithMessage(store, alice, bob, 8*time.Hour)
	read.IsRead = true

	result, err := srv.RunSweep(context.Background())

	require.NoError(t, err)
	assert.Equal(t, 0, result.Examined)
	assert.Empty(t, mailer.sent)
}

func TestReminderService_RunSweep_OncePerWindow(t *testing.T) {
	store, mailer, srv := newReminderFixture()
	alice := seedUser(store, "Alice", "Smith")
	bob := seedUser(store, "Bob", "Jones")
	message := seedThreadWithMessage(store, alice, bob, 7*time.Hour)

	ctx := context.Background()

	_, err := srv.RunSweep(ctx)
	require.NoError(t, err)
	require.Len(t, mailer.sent, 1)

	// A second sweep inside the same window leaves the message alone.
	result, err := srv.RunSweep(ctx)
	require.NoError(t, err)
	assert.Equal(t, 0, result.Examined)
	assert.Len(t, mailer.sent, 1)

	// Once the stamp falls outside the window, the reminder repeats.
	staleStamp := time.Now().Add(-7 * time.Hour)
	store.messages[message.ID].LastNotificationSent = &staleStamp

	result, err = srv.RunSweep(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, result.Dispatched)
	assert.Len(t, mailer.sent, 2)
}

func TestReminderService_RunSweep_MailFailureRetriesNextPass(t *testing.T) {
	store, mailer, srv := newReminderFixture()
	alice := seedUser(store, "Alice", "Smith")
	bob := seedUser(store, "Bob", "Jones")
	message := seedThreadWithMessage(store, alice, bob, 7*time.Hour)

	ctx := context.Background()

	mailer.err = errors.New("smtp connect refused")
	result, err := srv.RunSweep(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, result.Failed)
	assert.Equal(t, 0, result.Dispatched)

	// The stamp was not written, so the next pass retries.
	assert.Nil(t, store.messages[message.ID].LastNotificationSent)

	mailer.err = nil
	result, err = srv.RunSweep(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, result.Dispatched)
	require.Len(t, mailer.sent, 1)
}

func TestReminderService_RunSweep_PrunesExpiredSessions(t *testing.T) {
	store, _, srv := newReminderFixture()

	expired := &entity.RefreshToken{ID: uuid.New(), UserID: uuid.New(), ExpiresAt: time.Now().Add(-time.Hour)}
	live := &entity.RefreshToken{ID: uuid.New(), UserID: uuid.New(), ExpiresAt: time.Now().Add(time.Hour)}
	store.refreshTokens[expired.ID] = expired
	store.refreshTokens[live.ID] = live

	_, err := srv.RunSweep(context.Background())

	require.NoError(t, err)
	assert.NotContains(t, store.refreshTokens, expired.ID)
	assert.Contains(t, store.refreshTokens, live.ID)
}
