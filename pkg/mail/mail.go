// Package mail delivers plain-text notification email.
//
//	m := mail.FromConfig()
//	err := m.Send(ctx, mail.Message{
//	    To:      []string{"farmer@krishi.test"},
//	    Subject: "New order",
//	    Body:    "You have a new order.",
//	})
//
// With MAIL_HOST unset the Log mailer is used and messages only reach the
// application log.
package mail

import (
	"context"
	"crypto/tls"
	"errors"
	"fmt"
	"net"
	"net/smtp"
	"strings"

	"github.com/shashiranjanraj/krishi/config"
	"github.com/shashiranjanraj/krishi/pkg/logger"
)

// Message is one email.
type Message struct {
	To      []string
	Subject string
	Body    string
}

// Sender delivers messages.
type Sender interface {
	Send(ctx context.Context, m Message) error
}

// ErrNoRecipients is returned for a message without addresses.
var ErrNoRecipients = errors.New("mail: no recipients")

// FromConfig returns the SMTP mailer when MAIL_HOST is set, else Log.
func FromConfig() Sender {
	host := config.Get("MAIL_HOST", "")
	if host == "" {
		return Log{}
	}
	return &SMTP{
		Host:     host,
		Port:     config.Get("MAIL_PORT", "587"),
		Username: config.Get("MAIL_USERNAME", ""),
		Password: config.Get("MAIL_PASSWORD", ""),
		From:     config.Get("MAIL_FROM", "noreply@krishi.test"),
		FromName: config.Get("MAIL_FROM_NAME", "Krishi"),
	}
}

// ─── Log ──────────────────────────────────────────────────────────────────────

// Log writes each message to the application log instead of sending it.
type Log struct{}

func (Log) Send(ctx context.Context, m Message) error {
	if len(m.To) == 0 {
		return ErrNoRecipients
	}
	logger.WithCtx(ctx).Info("mail: logged", "to", strings.Join(m.To, ","), "subject", m.Subject)
	return nil
}

// ─── SMTP ─────────────────────────────────────────────────────────────────────

// SMTP sends over SMTP: implicit TLS on port 465, STARTTLS when offered
// elsewhere. Auth is skipped when Username is empty.
type SMTP struct {
	Host     string
	Port     string
	Username string
	Password string
	From     string
	FromName string
}

func (s *SMTP) Send(ctx context.Context, m Message) error {
	if len(m.To) == 0 {
		return ErrNoRecipients
	}
	addr := net.JoinHostPort(s.Host, s.Port)

	var d net.Dialer
	conn, err := d.DialContext(ctx, "tcp", addr)
	if err != nil {
		return fmt.Errorf("mail: dial %s: %w", addr, err)
	}
	if s.Port == "465" {
		conn = tls.Client(conn, &tls.Config{ServerName: s.Host})
	}
	if deadline, ok := ctx.Deadline(); ok {
		_ = conn.SetDeadline(deadline)
	}

	c, err := smtp.NewClient(conn, s.Host)
	if err != nil {
		conn.Close()
		return fmt.Errorf("mail: handshake: %w", err)
	}
	defer c.Close()

	if ok, _ := c.Extension("STARTTLS"); ok && s.Port != "465" {
		if err := c.StartTLS(&tls.Config{ServerName: s.Host}); err != nil {
			return fmt.Errorf("mail: starttls: %w", err)
		}
	}
	if s.Username != "" {
		if err := c.Auth(smtp.PlainAuth("", s.Username, s.Password, s.Host)); err != nil {
			return fmt.Errorf("mail: auth: %w", err)
		}
	}
	if err := c.Mail(s.From); err != nil {
		return fmt.Errorf("mail: from: %w", err)
	}
	for _, to := range m.To {
		if err := c.Rcpt(to); err != nil {
			return fmt.Errorf("mail: rcpt %s: %w", to, err)
		}
	}
	w, err := c.Data()
	if err != nil {
		return fmt.Errorf("mail: data: %w", err)
	}
	if _, err := w.Write(s.raw(m)); err != nil {
		w.Close()
		return fmt.Errorf("mail: write: %w", err)
	}
	if err := w.Close(); err != nil {
		return fmt.Errorf("mail: data: %w", err)
	}
	return c.Quit()
}

func (s *SMTP) raw(m Message) []byte {
	var b strings.Builder
	fmt.Fprintf(&b, "From: %s <%s>\r\n", s.FromName, s.From)
	b.WriteString("To: " + strings.Join(m.To, ", ") + "\r\n")
	b.WriteString("Subject: " + headerSafe(m.Subject) + "\r\n")
	b.WriteString("MIME-Version: 1.0\r\n")
	b.WriteString("Content-Type: text/plain; charset=\"UTF-8\"\r\n")
	b.WriteString("\r\n")
	b.WriteString(strings.ReplaceAll(m.Body, "\n", "\r\n"))
	return []byte(b.String())
}

// headerSafe drops line breaks so a subject cannot inject headers.
func headerSafe(s string) string {
	return strings.NewReplacer("\r", " ", "\n", " ").Replace(s)
}
