package email

import (
	"context"
	"fmt"
	"net/http"

	"github.com/rs/zerolog"
	"github.com/sendgrid/sendgrid-go"
	sgmail "github.com/sendgrid/sendgrid-go/helpers/mail"
)

const (
	sendGridHost     = "https://api.sendgrid.com"
	sendGridEndpoint = "/v3/mail/send"
)

// SendGridSender sends mail through the SendGrid v3 API
type SendGridSender struct {
	key    string
	from   *sgmail.Email
	logger zerolog.Logger
}

// NewSendGridSender creates a SendGridSender
func NewSendGridSender(key string, from Address, log zerolog.Logger) *SendGridSender {
	return &SendGridSender{
		key:    key,
		from:   sgmail.NewEmail(from.Name, from.Email),
		logger: log.With().Str("component", "sendgrid").Logger(),
	}
}

func (s *SendGridSender) prepare(msg Message) *sgmail.SGMailV3 {
	p := sgmail.NewPersonalization()
	p.Subject = msg.Subject
	p.AddTos(sgmail.NewEmail(msg.ToName, msg.To))

	m := sgmail.NewV3Mail()
	m.SetFrom(s.from)
	m.AddPersonalizations(p)
	m.AddContent(
		sgmail.NewContent("text/plain", msg.TextBody),
		sgmail.NewContent("text/html", msg.HTMLBody),
	)
	return m
}

// Send posts msg to SendGrid. Any 4xx/5xx response is returned as an error.
func (s *SendGridSender) Send(ctx context.Context, msg Message) error {
	req := sendgrid.GetRequest(s.key, sendGridEndpoint, sendGridHost)
	req.Method = http.MethodPost
	req.Body = sgmail.GetRequestBody(s.prepare(msg))

	if err := ctx.Err(); err != nil {
		return err
	}

	res, err := sendgrid.API(req)
	if err != nil {
		s.logger.Error().Err(err).Msg("SendGrid request failed")
		return fmt.Errorf("sendgrid request failed: %w", err)
	}
	if res.StatusCode >= http.StatusBadRequest {
		s.logger.Error().Int("status", res.StatusCode).Str("body", res.Body).Msg("SendGrid rejected message")
		return fmt.Errorf("sendgrid rejected message: status %d", res.StatusCode)
	}
	return nil
}
