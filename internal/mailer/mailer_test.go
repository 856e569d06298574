package mailer

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"travel-review-service/internal/apperror"
	"travel-review-service/internal/logging"
)

type fakeSender struct {
	sent []Email
	err  error
}

func (f *fakeSender) Send(_ context.Context, e Email) error {
	if f.err != nil {
		return f.err
	}
	f.sent = append(f.sent, e)
	return nil
}

func TestContactService_Send(t *testing.T) {
	sender := &fakeSender{}
	svc := NewContactService(sender, "from@x.io", "inbox@x.io", logging.Discard(), nil)

	err := svc.Send(context.Background(), ContactMessage{Name: "Ana", Email: "ana@x.io", Message: "Hello there"})
	require.NoError(t, err)
	require.Len(t, sender.sent, 1)

	e := sender.sent[0]
	assert.Equal(t, "from@x.io", e.From)
	assert.Equal(t, "inbox@x.io", e.To)
	assert.Equal(t, "New Contact Message", e.Subject)
	assert.Contains(t, e.Body, "Name: Ana")
	assert.Contains(t, e.Body, "Email: ana@x.io")
	assert.Contains(t, e.Body, "Hello there")
}

func TestContactService_RequiresFields(t *testing.T) {
	sender := &fakeSender{}
	svc := NewContactService(sender, "f", "t", logging.Discard(), nil)

	err := svc.Send(context.Background(), ContactMessage{Name: "Ana", Email: "ana@x.io"})
	assert.True(t, errors.Is(err, apperror.ErrInvalidInput))
	assert.Empty(t, sender.sent)
}

func TestContactService_DeliveryFailure(t *testing.T) {
	sender := &fakeSender{err: errors.New("535 auth failed")}
	svc := NewContactService(sender, "f", "t", logging.Discard(), nil)

	err := svc.Send(context.Background(), ContactMessage{Name: "Ana", Email: "ana@x.io", Message: "hi"})
	require.Error(t, err)
	assert.Equal(t, 500, apperror.HTTPStatus(err))
	assert.Equal(t, "Internal server error: 535 auth failed", apperror.PublicMessage(err))
}

func TestSMTPSender_HonoursCancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := NewSMTPSender("127.0.0.1", 1, "", "").Send(ctx, Email{})
	assert.ErrorIs(t, err, context.Canceled)
}
