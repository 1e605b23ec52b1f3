// Package service defines interfaces for core, stateless domain logic.
package service

import "context"

// Mailer defines the interface for outbound email, used by the unread-message
// reminder sweep.
type Mailer interface {
	// SendHTML sends a single HTML email to the recipient address.
	SendHTML(ctx context.Context, to, subject, htmlBody string) error
}
