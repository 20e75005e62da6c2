// Package jobs holds the background jobs run by the queue workers.
package jobs

import (
	"context"
	"errors"
	"fmt"

	"github.com/shashiranjanraj/krishi/pkg/logger"
	"github.com/shashiranjanraj/krishi/pkg/mail"
	"github.com/shashiranjanraj/krishi/pkg/queue"
)

// NotificationName is the queue name of Notification.
const NotificationName = "notification"

// AddressBook resolves user ids to email addresses.
type AddressBook interface {
	Emails(ctx context.Context, ids []uint) (map[uint]string, error)
}

// Notification tells users about something that happened to their account,
// listings or orders. Every recipient gets a log line; recipients that still
// exist also get an email of their own.
type Notification struct {
	Topic      string `json:"topic"`
	Recipients []uint `json:"recipients"`
	Subject    string `json:"subject"`
	Body       string `json:"body"`

	book   AddressBook
	mailer mail.Sender
}

// NotificationFactory is what the queue registers: it decodes payloads into
// Notifications that deliver through book and mailer.
func NotificationFactory(book AddressBook, mailer mail.Sender) func() queue.Job {
	return func() queue.Job { return &Notification{book: book, mailer: mailer} }
}

func (n *Notification) Name() string { return NotificationName }

func (n *Notification) Handle(ctx context.Context) error {
	if len(n.Recipients) == 0 {
		return errors.New("jobs: notification without recipients")
	}
	log := logger.WithCtx(ctx)
	for _, id := range n.Recipients {
		log.Info("notify", "topic", n.Topic, "user_id", id, "subject", n.Subject, "body", n.Body)
	}
	if n.book == nil || n.mailer == nil {
		return nil
	}

	emails, err := n.book.Emails(ctx, n.Recipients)
	if err != nil {
		return fmt.Errorf("jobs: notification: %w", err)
	}
	var errs []error
	for _, id := range n.Recipients {
		addr, ok := emails[id]
		if !ok {
			continue
		}
		if err := n.mailer.Send(ctx, mail.Message{To: []string{addr}, Subject: n.Subject, Body: n.Body}); err != nil {
			errs = append(errs, fmt.Errorf("user %d: %w", id, err))
		}
	}
	return errors.Join(errs...)
}
