package email

import (
	"context"

	"github.com/rs/zerolog"
)

// LogSender writes messages to the log instead of delivering them. It is meant
// for development, where the logged body is the only way to read a reset code.
type LogSender struct {
	logger zerolog.Logger
}

// NewLogSender creates a LogSender
func NewLogSender(log zerolog.Logger) *LogSender {
	return &LogSender{logger: log.With().Str("component", "mail-log").Logger()}
}

// Send logs msg at warn level and always succeeds
func (s *LogSender) Send(_ context.Context, msg Message) error {
	s.logger.Warn().
		Str("to", msg.To).
		Str("subject", msg.Subject).
		Str("body", msg.TextBody).
		Msg("Email provider is 'log'; message not delivered")
	return nil
}
