// Package service defines interfaces for core, stateless domain logic.
package service

import "context"

// NotificationService defines the interface for mobile push notifications.
type NotificationService interface {
	// SendSingleNotification sends a push notification to a single device token.
	SendSingleNotification(ctx context.Context, token, title, body string, data map[string]string) error

	// SendBatchNotification sends push notifications to multiple device tokens (max 500 tokens).
	// Returns counts plus the tokens the provider reported as invalid so callers can prune them.
	SendBatchNotification(ctx context.Context, tokens []string, title, body string, data map[string]string) (successCount, failureCount int, invalidTokens []string, err error)
}
