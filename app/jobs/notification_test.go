package jobs

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shashiranjanraj/krishi/pkg/logger"
	"github.com/shashiranjanraj/krishi/pkg/mail"
)

type addressBook map[uint]string

func (b addressBook) Emails(_ context.Context, ids []uint) (map[uint]string, error) {
	out := map[uint]string{}
	for _, id := range ids {
		if e, ok := b[id]; ok {
			out[id] = e
		}
	}
	return out, nil
}

type outbox struct {
	mu   sync.Mutex
	sent []mail.Message
	fail string
}

func (o *outbox) Send(_ context.Context, m mail.Message) error {
	o.mu.Lock()
	defer o.mu.Unlock()
	if m.To[0] == o.fail {
		return errors.New("mailbox full")
	}
	o.sent = append(o.sent, m)
	return nil
}

func TestNotificationLogsEachRecipient(t *testing.T) {
	var buf bytes.Buffer
	ctx := logger.InjectLogger(context.Background(), logger.New(&buf, "production"))

	n := &Notification{Topic: "order.placed", Recipients: []uint{4, 9}, Subject: "New order"}
	require.NoError(t, n.Handle(ctx))
	assert.Equal(t, 2, bytes.Count(buf.Bytes(), []byte(`"msg":"notify"`)))
	assert.Contains(t, buf.String(), `"user_id":9`)

	assert.Error(t, (&Notification{}).Handle(ctx))
}

func TestNotificationMailsExistingRecipients(t *testing.T) {
	box := &outbox{}
	book := addressBook{4: "farmer@krishi.test", 9: "admin@krishi.test"}

	job := NotificationFactory(book, box)().(*Notification)
	payload, err := json.Marshal(Notification{Topic: "order.placed", Recipients: []uint{4, 7, 9}, Subject: "New order", Body: "Order n-1"})
	require.NoError(t, err)
	require.NoError(t, json.Unmarshal(payload, job))

	require.NoError(t, job.Handle(context.Background()))
	require.Len(t, box.sent, 2, "user 7 no longer exists")
	assert.Equal(t, []string{"farmer@krishi.test"}, box.sent[0].To)
	assert.Equal(t, "Order n-1", box.sent[1].Body)

	box.fail = "admin@krishi.test"
	box.sent = nil
	err = job.Handle(context.Background())
	assert.ErrorContains(t, err, "user 9: mailbox full")
	assert.Len(t, box.sent, 1, "one failure does not stop the others")
}
