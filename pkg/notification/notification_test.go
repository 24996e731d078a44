package notification_test

import (
	"bytes"
	"context"
	"errors"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/shashiranjanraj/marmita/pkg/logger"
	"github.com/shashiranjanraj/marmita/pkg/mail"
	"github.com/shashiranjanraj/marmita/pkg/notification"
)

type mockSender struct{ mock.Mock }

func (m *mockSender) Send(ctx context.Context, msg mail.Message) error {
	return m.Called(ctx, msg).Error(0)
}

type notice struct{}

func (notice) Via() []string { return []string{notification.ChannelMail} }
func (notice) ToMail() notification.MailData {
	return notification.MailData{Subject: "Pedido #1", Text: "Entregue"}
}
func (notice) ToLog() (string, []any) { return "notice logged", []any{"order_id", 1} }

type bare struct{}

func (bare) Via() []string { return []string{notification.ChannelMail} }

func captureLog(t *testing.T) *bytes.Buffer {
	t.Helper()
	var buf bytes.Buffer
	logger.SetOutput(&buf)
	t.Cleanup(func() { logger.SetOutput(os.Stdout) })
	return &buf
}

func TestMailChannelSends(t *testing.T) {
	sender := &mockSender{}
	sender.On("Send", mock.Anything, mail.Message{
		To: []string{"cliente@example.com"}, Subject: "Pedido #1", Body: "Entregue",
	}).Return(nil).Once()

	err := notification.New(sender).Send(context.Background(), "cliente@example.com", notice{})
	require.NoError(t, err)
	sender.AssertExpectations(t)
}

func TestMailErrorIsReturned(t *testing.T) {
	sender := &mockSender{}
	sender.On("Send", mock.Anything, mock.Anything).Return(errors.New("smtp down"))

	err := notification.New(sender).Send(context.Background(), "cliente@example.com", notice{})
	assert.ErrorContains(t, err, "notification: mail: smtp down")
}

func TestMailFallsBackToLog(t *testing.T) {
	buf := captureLog(t)

	require.NoError(t, notification.New(nil).Send(context.Background(), "cliente@example.com", notice{}))
	assert.Contains(t, buf.String(), "notice logged")

	sender := &mockSender{}
	require.NoError(t, notification.New(sender).Send(context.Background(), "", notice{}))
	sender.AssertNotCalled(t, "Send", mock.Anything, mock.Anything)
}

func TestMissingChannelMethod(t *testing.T) {
	err := notification.New(nil).Send(context.Background(), "x@y.z", bare{})
	assert.ErrorContains(t, err, "does not implement Mailable")
}
