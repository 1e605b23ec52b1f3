// Package impl contains the implementation of the application's business logic.
package impl

import (
	"context"
	"fmt"
	"html"
	"log/slog"
	"time"

	"farmlink/config"
	deliverycontext "farmlink/internal/delivery/context"
	"farmlink/internal/domain/entity"
	"farmlink/internal/domain/repository"
	"farmlink/internal/domain/service"
	"farmlink/internal/usecase"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"go.uber.org/fx"
)

// reminderService implements the ReminderUsecase interface. It runs the
// periodic sweep that nudges users about messages left unread past the
// configured threshold.
type reminderService struct {
	messageRepo         repository.MessageRepository
	conversationRepo    repository.ConversationRepository
	userRepo            repository.UserRepository
	deviceRepo          repository.DeviceRepository
	refreshTokenRepo    repository.RefreshTokenRepository
	mailer              service.Mailer
	notificationService service.NotificationService
	unreadThreshold     time.Duration
	logger              *slog.Logger
}

// ReminderServiceParams holds dependencies for ReminderService, injected by Fx.
type ReminderServiceParams struct {
	fx.In

	MessageRepo         repository.MessageRepository
	ConversationRepo    repository.ConversationRepository
	UserRepo            repository.UserRepository
	DeviceRepo          repository.DeviceRepository
	RefreshTokenRepo    repository.RefreshTokenRepository
	Mailer              service.Mailer
	NotificationService service.NotificationService `optional:"true"`
	Config              *config.Config
	Logger              *slog.Logger
}

// NewReminderService is the constructor for reminderService.
func NewReminderService(params ReminderServiceParams) usecase.ReminderUsecase {
	unreadThreshold := 6 * time.Hour
	if params.Config != nil && params.Config.Chat != nil && params.Config.Chat.UnreadThreshold > 0 {
		unreadThreshold = params.Config.Chat.UnreadThreshold
	}

	return &reminderService{
		messageRepo:         params.MessageRepo,
		conversationRepo:    params.ConversationRepo,
		userRepo:            params.UserRepo,
		deviceRepo:          params.DeviceRepo,
		refreshTokenRepo:    params.RefreshTokenRepo,
		mailer:              params.Mailer,
		notificationService: params.NotificationService,
		unreadThreshold:     unreadThreshold,
		logger:              params.Logger,
	}
}

// log returns a request-scoped logger if available, otherwise falls back to the service's logger.
func (srv *reminderService) log(ctx context.Context) *slog.Logger {
	return deliverycontext.GetLoggerOrDefault(ctx, srv.logger)
}

// RunSweep finds messages that stayed unread past the threshold and notifies
// their recipients. Each message is reminded at most once per threshold
// window; the stamp is only written after a successful dispatch so failed
// reminders are retried on the next pass.
func (srv *reminderService) RunSweep(ctx context.Context) (*usecase.SweepResult, error) {
	cutoff := time.Now().Add(-srv.unreadThreshold)
	srv.log(ctx).Info("Starting unread reminder sweep", slog.Time("cutoff", cutoff))

	messages, err := srv.messageRepo.FindUnreadForReminder(ctx, cutoff)
	if err != nil {
		srv.log(ctx).Error("Failed to query unread messages", slog.Any("error", err))

		return nil, errors.Wrap(err, "failed to query unread messages for reminder")
	}

	result := &usecase.SweepResult{Examined: len(messages)}

	// Per-sweep caches. Sweeps routinely hit several messages of the same thread.
	conversations := make(map[uuid.UUID]*entity.Conversation)
	users := make(map[uuid.UUID]*entity.User)

	for _, message := range messages {
		if err := srv.remindMessage(ctx, message, conversations, users); err != nil {
			// Log and continue so one broken message never stalls the sweep.
			srv.log(ctx).Warn("Failed to send unread reminder",
				slog.Any("messageID", message.ID),
				slog.Any("conversationID", message.ConversationID),
				slog.Any("error", err))
			result.Failed++

			continue
		}
		result.Dispatched++
	}

	// Piggyback session table hygiene on the sweep schedule.
	if err := srv.refreshTokenRepo.DeleteExpiredRefreshTokens(ctx); err != nil {
		srv.log(ctx).Warn("Failed to prune expired refresh tokens", slog.Any("error", err))
	}

	srv.log(ctx).Info("Unread reminder sweep finished",
		slog.Int("examined", result.Examined),
		slog.Int("dispatched", result.Dispatched),
		slog.Int("failed", result.Failed))

	return result, nil
}

// remindMessage dispatches the email reminder for one unread message and
// stamps it on success. Push delivery is best-effort on top of the email.
func (srv *reminderService) remindMessage(
	ctx context.Context,
	message *entity.Message,
	conversations map[uuid.UUID]*entity.Conversation,
	users map[uuid.UUID]*entity.User,
) error {
	conversation, err := srv.loadConversation(ctx, message.ConversationID, conversations)
	if err != nil {
		return errors.Wrap(err, "failed to load conversation")
	}

	recipientID := conversation.OtherParty(message.SenderID)

	sender, err := srv.loadUser(ctx, message.SenderID, users)
	if err != nil {
		return errors.Wrap(err, "failed to load sender")
	}

	recipient, err := srv.loadUser(ctx, recipientID, users)
	if err != nil {
		return errors.Wrap(err, "failed to load recipient")
	}

	subject := "Unread message from " + sender.FullName()
	body := buildReminderBody(recipient, sender, message)

	if err := srv.mailer.SendHTML(ctx, recipient.Email, subject, body); err != nil {
		return errors.Wrap(err, "failed to send reminder email")
	}

	srv.pushReminder(ctx, recipientID, sender, message)

	if err := srv.messageRepo.StampNotificationSent(ctx, message.ID, time.Now()); err != nil {
		return errors.Wrap(err, "failed to stamp reminder dispatch")
	}

	return nil
}

func (srv *reminderService) loadConversation(ctx context.Context, id uuid.UUID, cache map[uuid.UUID]*entity.Conversation) (*entity.Conversation, error) {
	if conversation, ok := cache[id]; ok {
		return conversation, nil
	}

	conversation, err := srv.conversationRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	cache[id] = conversation

	return conversation, nil
}

func (srv *reminderService) loadUser(ctx context.Context, id uuid.UUID, cache map[uuid.UUID]*entity.User) (*entity.User, error) {
	if user, ok := cache[id]; ok {
		return user, nil
	}

	user, err := srv.userRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	cache[id] = user

	return user, nil
}

// pushReminder sends the reminder as a mobile push too. Failures are logged
// only; the email is the delivery that counts for stamping.
func (srv *reminderService) pushReminder(ctx context.Context, recipientID uuid.UUID, sender *entity.User, message *entity.Message) {
	if srv.notificationService == nil {
		return
	}

	devices, err := srv.deviceRepo.FindActiveDevicesByUser(ctx, recipientID)
	if err != nil {
		srv.log(ctx).Warn("Failed to load devices for reminder push", slog.Any("recipientID", recipientID), slog.Any("error", err))

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
		"conversation_id": message.ConversationID.String(),
		"message_id":      message.ID.String(),
	}

	_, _, invalidTokens, err := srv.notificationService.SendBatchNotification(ctx, tokens, "Unread message from "+sender.FullName(), message.Preview(), data)
	if err != nil {
		srv.log(ctx).Warn("Failed to send reminder push", slog.Any("recipientID", recipientID), slog.Any("error", err))

		return
	}

	if len(invalidTokens) > 0 {
		if err := srv.deviceRepo.DeactivateByTokens(ctx, invalidTokens); err != nil {
			srv.log(ctx).Warn("Failed to deactivate invalid device tokens", slog.Any("error", err))
		}
	}
}

// buildReminderBody renders the HTML reminder email.
func buildReminderBody(recipient, sender *entity.User, message *entity.Message) string {
	return fmt.Sprintf(`<html>
<body>
	<p>Hi %s,</p>
	<p>You have an unread message from <strong>%s</strong>:</p>
	<blockquote>%s</blockquote>
	<p>Log in to reply.</p>
</body>
</html>`,
		html.EscapeString(recipient.FullName()),
		html.EscapeString(sender.FullName()),
		html.EscapeString(message.Preview()))
}
