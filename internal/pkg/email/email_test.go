package email

import (
	"bytes"
	"context"
	"strings"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/yigit/uniportal/internal/config"
)

type captureSender struct {
	sent []Message
}

func (c *captureSender) Send(_ context.Context, msg Message) error {
	c.sent = append(c.sent, msg)
	return nil
}

func TestMailer_ResetCode(t *testing.T) {
	capture := &captureSender{}
	m := NewMailer(capture, "University Portal", "https://portal.example")

	require.NoError(t, m.SendPasswordResetCode(context.Background(), "jane@uni.ac.ke", "Jane <script>", "042917", 10*time.Minute))
	require.Len(t, capture.sent, 1)

	msg := capture.sent[0]
	assert.Equal(t, "jane@uni.ac.ke", msg.To)
	assert.Contains(t, msg.TextBody, "042917")
	assert.Contains(t, msg.TextBody, "10 minutes")
	assert.Contains(t, msg.HTMLBody, "Jane &lt;script&gt;")
	assert.NotContains(t, msg.HTMLBody, "<script>")
}

func TestMailer_ResetLink(t *testing.T) {
	capture := &captureSender{}
	m := NewMailer(capture, "University Portal", "https://portal.example")

	require.NoError(t, m.SendPasswordResetLink(context.Background(), "a@uni.ac.ke", "A", "tok123", time.Hour))
	assert.Contains(t, capture.sent[0].TextBody, "https://portal.example/reset-password?token=tok123")
	assert.Contains(t, capture.sent[0].TextBody, "60 minutes")
}

func TestBuildMIME(t *testing.T) {
	raw := string(buildMIME(Address{Name: "Portal", Email: "no-reply@uni.ac.ke"}, Message{
		To: "b@uni.ac.ke", ToName: "B", Subject: "Hi", TextBody: "plain", HTMLBody: "<p>html</p>",
	}))

	assert.True(t, strings.HasPrefix(raw, "From: Portal <no-reply@uni.ac.ke>\r\n"))
	assert.Contains(t, raw, "To: B <b@uni.ac.ke>\r\n")
	assert.Contains(t, raw, "text/plain; charset=UTF-8\r\n\r\nplain")
	assert.Contains(t, raw, "<p>html</p>")
}

func TestNewSender_SelectsProvider(t *testing.T) {
	cfg := &config.Config{}
	log := zerolog.Nop()

	cfg.Email.Provider = config.EmailProviderSMTP
	assert.IsType(t, &SMTPSender{}, NewSender(cfg, log))

	cfg.Email.Provider = config.EmailProviderSendGrid
	assert.IsType(t, &SendGridSender{}, NewSender(cfg, log))

	cfg.Email.Provider = config.EmailProviderLog
	assert.IsType(t, &LogSender{}, NewSender(cfg, log))
}

func TestLogSender(t *testing.T) {
	var buf bytes.Buffer
	s := NewLogSender(zerolog.New(&buf))

	require.NoError(t, s.Send(context.Background(), Message{To: "c@uni.ac.ke", Subject: "S", TextBody: "code 1"}))
	assert.Contains(t, buf.String(), "c@uni.ac.ke")
	assert.Contains(t, buf.String(), "code 1")
}

func TestSendGridSender_Prepare(t *testing.T) {
	s := NewSendGridSender("key", Address{Name: "Portal", Email: "no-reply@uni.ac.ke"}, zerolog.Nop())
	m := s.prepare(Message{To: "d@uni.ac.ke", ToName: "D", Subject: "Subj", TextBody: "t", HTMLBody: "h"})

	require.Len(t, m.Personalizations, 1)
	assert.Equal(t, "Subj", m.Personalizations[0].Subject)
	assert.Equal(t, "d@uni.ac.ke", m.Personalizations[0].To[0].Address)
	assert.Equal(t, "no-reply@uni.ac.ke", m.From.Address)
	assert.Len(t, m.Content, 2)
}
