// Package email delivers transactional mail through SMTP, SendGrid or, in
// development, the application log.
package email

import (
	"context"
	"fmt"
	"html"
	"time"

	"github.com/rs/zerolog"
	"github.com/yigit/uniportal/internal/config"
)

// Message is one outgoing email
type Message struct {
	To       string
	ToName   string
	Subject  string
	HTMLBody string
	TextBody string
}

// Sender delivers a single message
type Sender interface {
	Send(ctx context.Context, msg Message) error
}

// NewSender builds the sender selected by config.Email.Provider
func NewSender(cfg *config.Config, log zerolog.Logger) Sender {
	from := Address{Name: cfg.Email.FromName, Email: cfg.Email.FromEmail}
	switch cfg.Email.Provider {
	case config.EmailProviderSMTP:
		return NewSMTPSender(SMTPConfig{
			Host:     cfg.Email.SMTPHost,
			Port:     cfg.Email.SMTPPort,
			Username: cfg.Email.SMTPUsername,
			Password: cfg.Email.SMTPPassword,
			UseTLS:   cfg.Email.SMTPUseTLS,
			From:     from,
		}, log)
	case config.EmailProviderSendGrid:
		return NewSendGridSender(cfg.Email.SendGridAPIKey, from, log)
	default:
		return NewLogSender(log)
	}
}

// Address is a display name plus mailbox
type Address struct {
	Name  string
	Email string
}

func (a Address) String() string {
	if a.Name == "" {
		return a.Email
	}
	return fmt.Sprintf("%s <%s>", a.Name, a.Email)
}

// Mailer renders the portal's account emails and hands them to a Sender
type Mailer struct {
	sender  Sender
	baseURL string
	appName string
}

// NewMailer creates a Mailer
func NewMailer(sender Sender, appName, baseURL string) *Mailer {
	return &Mailer{sender: sender, appName: appName, baseURL: baseURL}
}

func (m *Mailer) wrap(toName, inner string) string {
	return fmt.Sprintf(`<html>
<body>
	<div style="font-family: Arial, sans-serif; max-width: 600px; margin: 0 auto;">
		<p>Hello %s,</p>
		%s
		<p>If you did not request this, you can ignore this email.</p>
		<p>Regards,<br>%s</p>
	</div>
</body>
</html>`, html.EscapeString(toName), inner, html.EscapeString(m.appName))
}

// SendPasswordResetCode emails a one-time code
func (m *Mailer) SendPasswordResetCode(ctx context.Context, to, toName, code string, ttl time.Duration) error {
	minutes := int(ttl.Minutes())
	return m.sender.Send(ctx, Message{
		To:      to,
		ToName:  toName,
		Subject: "Your password reset code",
		HTMLBody: m.wrap(toName, fmt.Sprintf(
			`<p>Your password reset code is</p><p style="font-size: 28px; letter-spacing: 6px;"><strong>%s</strong></p><p>It expires in %d minutes and can be used once.</p>`,
			html.EscapeString(code), minutes)),
		TextBody: fmt.Sprintf("Your password reset code is %s. It expires in %d minutes.", code, minutes),
	})
}

// SendPasswordResetLink emails a single-use reset link
func (m *Mailer) SendPasswordResetLink(ctx context.Context, to, toName, token string, ttl time.Duration) error {
	link := fmt.Sprintf("%s/reset-password?token=%s", m.baseURL, token)
	minutes := int(ttl.Minutes())
	return m.sender.Send(ctx, Message{
		To:      to,
		ToName:  toName,
		Subject: "Reset your password",
		HTMLBody: m.wrap(toName, fmt.Sprintf(
			`<p>Use the button below to choose a new password. The link expires in %d minutes.</p><p style="text-align: center; margin: 30px 0;"><a href="%s" style="background-color: #1f6f43; color: white; padding: 12px 24px; text-decoration: none; border-radius: 4px;">Reset password</a></p>`,
			minutes, html.EscapeString(link))),
		TextBody: fmt.Sprintf("Reset your password within %d minutes: %s", minutes, link),
	})
}

// SendPasswordChanged confirms a completed reset
func (m *Mailer) SendPasswordChanged(ctx context.Context, to, toName string) error {
	return m.sender.Send(ctx, Message{
		To:       to,
		ToName:   toName,
		Subject:  "Your password was changed",
		HTMLBody: m.wrap(toName, `<p>Your password was just changed and all other sessions were signed out.</p>`),
		TextBody: "Your password was just changed and all other sessions were signed out.",
	})
}
