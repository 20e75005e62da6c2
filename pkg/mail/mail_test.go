package mail

import (
	"bytes"
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shashiranjanraj/krishi/pkg/logger"
)

func TestRawMessage(t *testing.T) {
	s := &SMTP{From: "noreply@krishi.test", FromName: "Krishi"}
	raw := string(s.raw(Message{
		To:      []string{"a@krishi.test", "b@krishi.test"},
		Subject: "New order\r\nBcc: evil@example.com",
		Body:    "line one\nline two",
	}))

	assert.Contains(t, raw, "From: Krishi <noreply@krishi.test>\r\n")
	assert.Contains(t, raw, "To: a@krishi.test, b@krishi.test\r\n")
	assert.Contains(t, raw, "Subject: New order  Bcc: evil@example.com\r\n")
	assert.NotContains(t, raw, "\r\nBcc:")
	assert.Contains(t, raw, "\r\n\r\nline one\r\nline two")
}

func TestLogMailer(t *testing.T) {
	var buf bytes.Buffer
	ctx := logger.InjectLogger(context.Background(), logger.New(&buf, "production"))

	require.NoError(t, Log{}.Send(ctx, Message{To: []string{"a@krishi.test"}, Subject: "Hello"}))
	assert.Contains(t, buf.String(), `"subject":"Hello"`)

	assert.ErrorIs(t, Log{}.Send(ctx, Message{}), ErrNoRecipients)
	assert.ErrorIs(t, (&SMTP{Host: "127.0.0.1", Port: "1"}).Send(ctx, Message{}), ErrNoRecipients)
}

func TestSMTPDialFailure(t *testing.T) {
	err := (&SMTP{Host: "127.0.0.1", Port: "1"}).Send(context.Background(), Message{To: []string{"a@krishi.test"}})
	assert.ErrorContains(t, err, "mail: dial")
}
