// Package mailer delivers outgoing email over SMTP.
package mailer

import (
	"context"
	"crypto/tls"
	"errors"
	"fmt"
	"io"

	"gopkg.in/gomail.v2"

	"crm-backend/internal/config"
)

var ErrMailerNotConfigured = errors.New("email service not configured")

type Attachment struct {
	Name string
	Data []byte
}

type Message struct {
	To          string
	Subject     string
	HTML        string
	Attachments []Attachment
}

type Mailer struct {
	from     string
	fromName string
	send     func(...*gomail.Message) error
}

// New builds the SMTP mailer. When SMTP is not configured the mailer exists but refuses to send.
func New(cfg *config.Config) *Mailer {
	if !cfg.MailerEnabled() {
		return &Mailer{}
	}

	dialer := gomail.NewDialer(cfg.SMTP.Host, cfg.SMTP.Port, cfg.SMTP.Username, cfg.SMTP.Password)
	dialer.TLSConfig = &tls.Config{
		ServerName: cfg.SMTP.Host,
		MinVersion: tls.VersionTLS12,
	}

	return &Mailer{
		from:     cfg.SMTP.From,
		fromName: cfg.SMTP.FromName,
		send:     dialer.DialAndSend,
	}
}

func (m *Mailer) Enabled() bool {
	return m != nil && m.send != nil
}

func (m *Mailer) Send(ctx context.Context, message Message) error {
	if !m.Enabled() {
		return ErrMailerNotConfigured
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	if err := m.send(m.build(message)); err != nil {
		return fmt.Errorf("failed to send email: %w", err)
	}
	return nil
}

func (m *Mailer) build(message Message) *gomail.Message {
	msg := gomail.NewMessage(
		gomail.SetCharset("UTF-8"),
		gomail.SetEncoding(gomail.Base64),
	)

	msg.SetAddressHeader("From", m.from, m.fromName)
	msg.SetHeader("To", message.To)
	msg.SetHeader("Subject", message.Subject)
	msg.SetBody("text/html", message.HTML)

	for _, a := range message.Attachments {
		data := a.Data
		msg.Attach(a.Name, gomail.SetCopyFunc(func(w io.Writer) error {
			_, err := w.Write(data)
			return err
		}))
	}

	return msg
}
