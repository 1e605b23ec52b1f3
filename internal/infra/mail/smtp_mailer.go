// Package mail implements the outbound email service over SMTP.
package mail

import (
	"context"
	"fmt"
	"net"
	"net/smtp"
	"strconv"

	"farmlink/config"
	"farmlink/internal/domain/service"

	"github.com/pkg/errors"
)

// smtpMailer is a concrete implementation of the Mailer interface using net/smtp.
type smtpMailer struct {
	addr string
	auth smtp.Auth
	from string
}

// NewSMTPMailer is the constructor for smtpMailer.
func NewSMTPMailer(cfg *config.Config) (service.Mailer, error) {
	if cfg.Mail == nil || cfg.Mail.Host == "" {
		return nil, errors.New("mail configuration must be provided")
	}

	var auth smtp.Auth
	if cfg.Mail.Username != "" {
		auth = smtp.PlainAuth("", cfg.Mail.Username, cfg.Mail.Password, cfg.Mail.Host)
	}

	return &smtpMailer{
		addr: net.JoinHostPort(cfg.Mail.Host, strconv.Itoa(cfg.Mail.Port)),
		auth: auth,
		from: cfg.Mail.From,
	}, nil
}

// SendHTML sends a single HTML email to the recipient address.
func (m *smtpMailer) SendHTML(ctx context.Context, to, subject, htmlBody string) error {
	if err := ctx.Err(); err != nil {
		return errors.WithStack(err)
	}

	message := fmt.Sprintf(
		"From: %s\r\nTo: %s\r\nSubject: %s\r\nMIME-version: 1.0;\r\nContent-Type: text/html; charset=\"UTF-8\";\r\n\r\n%s",
		m.from,
		to,
		subject,
		htmlBody,
	)

	if err := smtp.SendMail(m.addr, m.auth, m.from, []string{to}, []byte(message)); err != nil {
		return errors.Wrap(err, "failed to send email")
	}

	return nil
}
