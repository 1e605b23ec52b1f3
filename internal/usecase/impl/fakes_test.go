package impl

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io"
	"log/slog"
	"sync"
	"time"

	"farmlink/internal/domain/entity"
	"farmlink/internal/domain/repository"
	"farmlink/internal/domain/service"

	"github.com/google/uuid"
)

// In-memory fakes backing the service tests. They implement the repository
// interfaces over plain maps, guarded by a shared mutex so the asynchronous
// notification goroutines can touch them safely.

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

type fakeStore struct {
	mu            sync.Mutex
	users         map[uuid.UUID]*entity.User
	refreshTokens map[uuid.UUID]*entity.RefreshToken
	products      map[uuid.UUID]*entity.Product
	orders        map[uuid.UUID]*entity.Order
	conversations map[uuid.UUID]*entity.Conversation
	messages      map[uuid.UUID]*entity.Message
	devices       map[uuid.UUID]*entity.UserDevice
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		users:         make(map[uuid.UUID]*entity.User),
		refreshTokens: make(map[uuid.UUID]*entity.RefreshToken),
		products:      make(map[uuid.UUID]*entity.Product),
		orders:        make(map[uuid.UUID]*entity.Order),
		conversations: make(map[uuid.UUID]*entity.Conversation),
		messages:      make(map[uuid.UUID]*entity.Message),
		devices:       make(map[uuid.UUID]*entity.UserDevice),
	}
}

// fakeTxManager runs the function directly against the store-backed factory.
type fakeTxManager struct {
	store *fakeStore
}

func (m *fakeTxManager) Execute(_ context.Context, fn func(repository.RepositoryFactory) error) error {
	return fn(&fakeFactory{store: m.store})
}

type fakeFactory struct {
	store *fakeStore
}

func (f *fakeFactory) UserRepo() repository.UserRepository { return &fakeUserRepo{store: f.store} }
func (f *fakeFactory) RefreshTokenRepo() repository.RefreshTokenRepository {
	return &fakeRefreshTokenRepo{store: f.store}
}
func (f *fakeFactory) ProductRepo() repository.ProductRepository {
	return &fakeProductRepo{store: f.store}
}
func (f *fakeFactory) OrderRepo() repository.OrderRepository { return &fakeOrderRepo{store: f.store} }
func (f *fakeFactory) ConversationRepo() repository.ConversationRepository {
	return &fakeConversationRepo{store: f.store}
}
func (f *fakeFactory) MessageRepo() repository.MessageRepository {
	return &fakeMessageRepo{store: f.store}
}

// --- User repository fake ---

type fakeUserRepo struct {
	store *fakeStore
}

func (r *fakeUserRepo) FindByID(_ context.Context, id uuid.UUID) (*entity.User, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	user, ok := r.store.users[id]
	if !ok {
		return nil, repository.ErrUserNotFound
	}

	return user, nil
}

func (r *fakeUserRepo) FindByEmail(_ context.Context, email string) (*entity.User, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	for _, user := range r.store.users {
		if user.Email == email {
			return user, nil
		}
	}

	return nil, repository.ErrUserNotFound
}

func (r *fakeUserRepo) ExistsByEmail(_ context.Context, email string) (bool, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	for _, user := range r.store.users {
		if user.Email == email {
			return true, nil
		}
	}

	return false, nil
}

func (r *fakeUserRepo) ExistsByPhoneNumber(_ context.Context, phoneNumber string) (bool, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	for _, user := range r.store.users {
		if user.Info != nil && user.Info.PhoneNumber == phoneNumber {
			return true, nil
		}
	}

	return false, nil
}

func (r *fakeUserRepo) Create(_ context.Context, user *entity.User) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	if user.ID == uuid.Nil {
		user.ID = uuid.New()
	}
	user.CreatedAt = time.Now()
	r.store.users[user.ID] = user

	return nil
}

func (r *fakeUserRepo) Update(_ context.Context, user *entity.User) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	r.store.users[user.ID] = user

	return nil
}

// --- Refresh token repository fake ---

type fakeRefreshTokenRepo struct {
	store *fakeStore
}

func (r *fakeRefreshTokenRepo) CreateRefreshToken(_ context.Context, token *entity.RefreshToken) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	if token.ID == uuid.Nil {
		token.ID = uuid.New()
	}
	token.CreatedAt = time.Now()
	r.store.refreshTokens[token.ID] = token

	return nil
}

func (r *fakeRefreshTokenRepo) FindRefreshTokenByHash(_ context.Context, tokenHash string) (*entity.RefreshToken, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	for _, token := range r.store.refreshTokens {
		if token.TokenHash == tokenHash {
			return token, nil
		}
	}

	return nil, repository.ErrRefreshTokenNotFound
}

func (r *fakeRefreshTokenRepo) FindRefreshTokenByID(_ context.Context, id uuid.UUID) (*entity.RefreshToken, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	token, ok := r.store.refreshTokens[id]
	if !ok {
		return nil, repository.ErrRefreshTokenNotFound
	}

	return token, nil
}

func (r *fakeRefreshTokenRepo) FindActiveTokensByUserID(_ context.Context, userID uuid.UUID) ([]*entity.RefreshToken, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	var tokens []*entity.RefreshToken
	now := time.Now()
	for _, token := range r.store.refreshTokens {
		if token.UserID == userID && token.IsUsable(now) {
			tokens = append(tokens, token)
		}
	}

	return tokens, nil
}

func (r *fakeRefreshTokenRepo) Revoke(_ context.Context, id uuid.UUID) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	token, ok := r.store.refreshTokens[id]
	if !ok {
		return repository.ErrRefreshTokenNotFound
	}
	token.Revoked = true

	return nil
}

func (r *fakeRefreshTokenRepo) RevokeByHash(_ context.Context, tokenHash string) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	for _, token := range r.store.refreshTokens {
		if token.TokenHash == tokenHash {
			token.Revoked = true
		}
	}

	return nil
}

func (r *fakeRefreshTokenRepo) RevokeAllByUserID(_ context.Context, userID uuid.UUID) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	for _, token := range r.store.refreshTokens {
		if token.UserID == userID {
			token.Revoked = true
		}
	}

	return nil
}

func (r *fakeRefreshTokenRepo) DeleteExpiredRefreshTokens(_ context.Context) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	now := time.Now()
	for id, token := range r.store.refreshTokens {
		if token.ExpiresAt.Before(now) {
			delete(r.store.refreshTokens, id)
		}
	}

	return nil
}

// --- Product repository fake ---

type fakeProductRepo struct {
	store *fakeStore
}

func (r *fakeProductRepo) FindByID(_ context.Context, id uuid.UUID) (*entity.Product, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	product, ok := r.store.products[id]
	if !ok {
		return nil, repository.ErrProductNotFound
	}

	return product, nil
}

func (r *fakeProductRepo) FindByIDs(_ context.Context, ids []uuid.UUID) (map[uuid.UUID]*entity.Product, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	products := make(map[uuid.UUID]*entity.Product)
	for _, id := range ids {
		if product, ok := r.store.products[id]; ok {
			products[id] = product
		}
	}

	return products, nil
}

// --- Order repository fake ---

type fakeOrderRepo struct {
	store *fakeStore
}

func (r *fakeOrderRepo) Create(_ context.Context, order *entity.Order) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	if order.ID == uuid.Nil {
		order.ID = uuid.New()
	}
	order.CreatedAt = time.Now()
	for i := range order.Items {
		order.Items[i].ID = uuid.New()
		order.Items[i].OrderID = order.ID
	}
	r.store.orders[order.ID] = order

	return nil
}

func (r *fakeOrderRepo) FindByID(_ context.Context, id uuid.UUID) (*entity.Order, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	order, ok := r.store.orders[id]
	if !ok {
		return nil, repository.ErrOrderNotFound
	}

	return order, nil
}

func (r *fakeOrderRepo) FindByCustomerID(_ context.Context, customerID uuid.UUID, _, limit int) ([]*entity.Order, int64, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	var orders []*entity.Order
	for _, order := range r.store.orders {
		if order.CustomerID == customerID {
			orders = append(orders, order)
		}
	}
	total := int64(len(orders))
	if len(orders) > limit {
		orders = orders[:limit]
	}

	return orders, total, nil
}

func (r *fakeOrderRepo) FindByFarmerUserID(_ context.Context, farmerUserID uuid.UUID, _, limit int) ([]*entity.Order, int64, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	var orders []*entity.Order
	for _, order := range r.store.orders {
		if order.ContainsProductOfFarmer(farmerUserID) {
			orders = append(orders, order)
		}
	}
	total := int64(len(orders))
	if len(orders) > limit {
		orders = orders[:limit]
	}

	return orders, total, nil
}

func (r *fakeOrderRepo) UpdateStatusIfProcessing(_ context.Context, id uuid.UUID, status entity.OrderStatus) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	order, ok := r.store.orders[id]
	if !ok {
		return repository.ErrOrderNotFound
	}
	if order.Status != entity.OrderStatusProcessing {
		return repository.ErrOrderAlreadyDecided
	}
	order.Status = status

	return nil
}

// --- Conversation repository fake ---

type fakeConversationRepo struct {
	store *fakeStore
}

func (r *fakeConversationRepo) Create(_ context.Context, conversation *entity.Conversation) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	if conversation.ID == uuid.Nil {
		conversation.ID = uuid.New()
	}
	conversation.CreatedAt = time.Now()
	conversation.UpdatedAt = conversation.CreatedAt
	r.store.conversations[conversation.ID] = conversation

	return nil
}

func (r *fakeConversationRepo) FindByID(_ context.Context, id uuid.UUID) (*entity.Conversation, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	conversation, ok := r.store.conversations[id]
	if !ok {
		return nil, repository.ErrConversationNotFound
	}

	return conversation, nil
}

func (r *fakeConversationRepo) FindByParticipants(_ context.Context, userA, userB uuid.UUID) (*entity.Conversation, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	for _, conversation := range r.store.conversations {
		if (conversation.InitiatorID == userA && conversation.RecipientID == userB) ||
			(conversation.InitiatorID == userB && conversation.RecipientID == userA) {
			return conversation, nil
		}
	}

	return nil, repository.ErrConversationNotFound
}

func (r *fakeConversationRepo) FindActiveByUserID(_ context.Context, userID uuid.UUID) ([]*entity.Conversation, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	var conversations []*entity.Conversation
	for _, conversation := range r.store.conversations {
		if conversation.IsActive && conversation.HasParty(userID) {
			conversations = append(conversations, conversation)
		}
	}

	return conversations, nil
}

func (r *fakeConversationRepo) Update(_ context.Context, conversation *entity.Conversation) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	r.store.conversations[conversation.ID] = conversation

	return nil
}

// --- Message repository fake ---

type fakeMessageRepo struct {
	store *fakeStore
}

func (r *fakeMessageRepo) Create(_ context.Context, message *entity.Message) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	if message.ID == uuid.Nil {
		message.ID = uuid.New()
	}
	message.CreatedAt = time.Now()
	r.store.messages[message.ID] = message

	return nil
}

func (r *fakeMessageRepo) FindByConversationID(_ context.Context, conversationID uuid.UUID) ([]*entity.Message, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	var messages []*entity.Message
	for _, message := range r.store.messages {
		if message.ConversationID == conversationID {
			messages = append(messages, message)
		}
	}

	return messages, nil
}

func (r *fakeMessageRepo) MarkConversationRead(_ context.Context, conversationID, readerID uuid.UUID) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	for _, message := range r.store.messages {
		if message.ConversationID == conversationID && message.SenderID != readerID {
			message.IsRead = true
		}
	}

	return nil
}

func (r *fakeMessageRepo) FindUnreadForReminder(_ context.Context, cutoff time.Time) ([]*entity.Message, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	var messages []*entity.Message
	for _, message := range r.store.messages {
		if message.IsRead || !message.CreatedAt.Before(cutoff) {
			continue
		}
		if message.LastNotificationSent != nil && !message.LastNotificationSent.Before(cutoff) {
			continue
		}
		messages = append(messages, message)
	}

	return messages, nil
}

func (r *fakeMessageRepo) StampNotificationSent(_ context.Context, messageID uuid.UUID, sentAt time.Time) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	message, ok := r.store.messages[messageID]
	if !ok {
		return repository.ErrMessageNotFound
	}
	message.LastNotificationSent = &sentAt

	return nil
}

// --- Device repository fake ---

type fakeDeviceRepo struct {
	store *fakeStore
}

func (r *fakeDeviceRepo) UpsertDevice(_ context.Context, device *entity.UserDevice) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	for _, existing := range r.store.devices {
		if existing.UserID == device.UserID && existing.FCMToken == device.FCMToken {
			existing.Platform = device.Platform
			existing.IsActive = true
			*device = *existing

			return nil
		}
	}

	if device.ID == uuid.Nil {
		device.ID = uuid.New()
	}
	device.CreatedAt = time.Now()
	r.store.devices[device.ID] = device

	return nil
}

func (r *fakeDeviceRepo) FindDeviceByID(_ context.Context, id uuid.UUID) (*entity.UserDevice, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	device, ok := r.store.devices[id]
	if !ok {
		return nil, repository.ErrDeviceNotFound
	}

	return device, nil
}

func (r *fakeDeviceRepo) FindActiveDevicesByUser(_ context.Context, userID uuid.UUID) ([]*entity.UserDevice, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	var devices []*entity.UserDevice
	for _, device := range r.store.devices {
		if device.UserID == userID && device.IsActive {
			devices = append(devices, device)
		}
	}

	return devices, nil
}

func (r *fakeDeviceRepo) DeactivateByTokens(_ context.Context, tokens []string) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	for _, device := range r.store.devices {
		for _, token := range tokens {
			if device.FCMToken == token {
				device.IsActive = false
			}
		}
	}

	return nil
}

func (r *fakeDeviceRepo) DeleteDevice(_ context.Context, id uuid.UUID) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	if _, ok := r.store.devices[id]; !ok {
		return repository.ErrDeviceNotFound
	}
	delete(r.store.devices, id)

	return nil
}

// --- Service fakes ---

// stubHasher avoids bcrypt cost in tests.
type stubHasher struct{}

func (stubHasher) Hash(password string) (string, error) { return "hashed:" + password, nil }
func (stubHasher) Check(password, hash string) bool     { return "hashed:"+password == hash }

// stubTokenService issues deterministic tokens.
type stubTokenService struct {
	counter int
}

func (s *stubTokenService) GenerateAccessToken(user *entity.User) (string, error) {
	return "access-" + user.ID.String(), nil
}

func (s *stubTokenService) ValidateAccessToken(string) (*service.Claims, error) {
	return nil, service.ErrTokenInvalid
}

func (s *stubTokenService) GenerateRefreshToken() (string, string, error) {
	s.counter++
	raw := fmt.Sprintf("refresh-%d", s.counter)

	return raw, s.HashToken(raw), nil
}

func (s *stubTokenService) HashToken(raw string) string {
	sum := sha256.Sum256([]byte(raw))

	return hex.EncodeToString(sum[:])
}

func (s *stubTokenService) GetRefreshTokenDuration() time.Duration { return time.Hour }

// recordingRealtime captures published events per user.
type recordingRealtime struct {
	mu     sync.Mutex
	events map[uuid.UUID][]service.Event
}

func newRecordingRealtime() *recordingRealtime {
	return &recordingRealtime{events: make(map[uuid.UUID][]service.Event)}
}

func (r *recordingRealtime) Publish(_ context.Context, userID uuid.UUID, event service.Event) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.events[userID] = append(r.events[userID], event)
}

// recordingMailer captures sent mail.
type sentMail struct {
	To      string
	Subject string
	Body    string
}

type recordingMailer struct {
	mu   sync.Mutex
	sent []sentMail
	err  error
}

func (m *recordingMailer) SendHTML(_ context.Context, to, subject, htmlBody string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.err != nil {
		return m.err
	}
	m.sent = append(m.sent, sentMail{To: to, Subject: subject, Body: htmlBody})

	return nil
}
