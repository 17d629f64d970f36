package mailer

import (
	"bytes"
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/require"
	"gopkg.in/gomail.v2"

	"crm-backend/internal/config"
)

func TestNew_Unconfigured(t *testing.T) {
	t.Parallel()

	m := New(&config.Config{})
	require.False(t, m.Enabled())
	require.ErrorIs(t, m.Send(context.Background(), Message{To: "a@example.com"}), ErrMailerNotConfigured)

	var nilMailer *Mailer
	require.ErrorIs(t, nilMailer.Send(context.Background(), Message{}), ErrMailerNotConfigured)
}

func TestSend_BuildsMessage(t *testing.T) {
	t.Parallel()

	var sent []*gomail.Message
	m := &Mailer{
		from:     "billing@example.com",
		fromName: "Freelance CRM",
		send: func(msgs ...*gomail.Message) error {
			sent = append(sent, msgs...)
			return nil
		},
	}

	err := m.Send(context.Background(), Message{
		To:          "client@example.com",
		Subject:     "Invoice #3F2A9C1D",
		HTML:        "<p>hello</p>",
		Attachments: []Attachment{{Name: "invoice-3f2a9c1d.pdf", Data: []byte("%PDF-1.3")}},
	})
	require.NoError(t, err)
	require.Len(t, sent, 1)

	require.Equal(t, []string{"client@example.com"}, sent[0].GetHeader("To"))
	require.Equal(t, []string{"Invoice #3F2A9C1D"}, sent[0].GetHeader("Subject"))

	var buf bytes.Buffer
	_, err = sent[0].WriteTo(&buf)
	require.NoError(t, err)
	require.Contains(t, buf.String(), `filename="invoice-3f2a9c1d.pdf"`)
}

func TestSend_WrapsTransportError(t *testing.T) {
	t.Parallel()

	boom := errors.New("connection refused")
	m := &Mailer{send: func(...*gomail.Message) error { return boom }}

	require.ErrorIs(t, m.Send(context.Background(), Message{To: "x@example.com"}), boom)
}

func TestSend_CanceledContext(t *testing.T) {
	t.Parallel()

	m := &Mailer{send: func(...*gomail.Message) error { return nil }}
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	require.ErrorIs(t, m.Send(ctx, Message{}), context.Canceled)
}
