// Package notification delivers user-facing notices over channels. A
// notice names its channels with Via and implements one To* method per
// channel.
//
//	n := notification.New(mail.Default())
//	err := n.Send(ctx, user.Email, OrderStatusChanged{...})
package notification

import (
	"context"
	"errors"
	"fmt"

	"github.com/shashiranjanraj/marmita/pkg/logger"
	"github.com/shashiranjanraj/marmita/pkg/mail"
)

const (
	ChannelMail = "mail"
	ChannelLog  = "log"
)

// Notification lists the channels it goes out on.
type Notification interface {
	Via() []string
}

// MailData is the content of the mail channel.
type MailData struct {
	Subject string
	Text    string
}

type Mailable interface {
	ToMail() MailData
}

// Loggable notices can be written to the application log instead of being
// delivered, e.g. when no mail server is configured.
type Loggable interface {
	ToLog() (msg string, attrs []any)
}

// Notifier routes notices to their channels.
type Notifier struct {
	mailer mail.Sender
}

// New builds a Notifier. With a nil mailer the mail channel degrades to
// the log channel.
func New(mailer mail.Sender) *Notifier {
	return &Notifier{mailer: mailer}
}

// Send delivers n on every channel it asks for. address is the recipient
// of the mail channel; an empty address also degrades to the log.
func (s *Notifier) Send(ctx context.Context, address string, n Notification) error {
	var errs []error
	for _, channel := range n.Via() {
		if err := s.dispatch(ctx, channel, address, n); err != nil {
			errs = append(errs, fmt.Errorf("notification: %s: %w", channel, err))
		}
	}
	return errors.Join(errs...)
}

func (s *Notifier) dispatch(ctx context.Context, channel, address string, n Notification) error {
	switch channel {
	case ChannelMail:
		m, ok := n.(Mailable)
		if !ok {
			return fmt.Errorf("%T does not implement Mailable", n)
		}
		if s.mailer == nil || address == "" {
			return s.dispatch(ctx, ChannelLog, address, n)
		}
		d := m.ToMail()
		return s.mailer.Send(ctx, mail.Message{To: []string{address}, Subject: d.Subject, Body: d.Text})

	case ChannelLog:
		l, ok := n.(Loggable)
		if !ok {
			return fmt.Errorf("%T does not implement Loggable", n)
		}
		msg, attrs := l.ToLog()
		logger.WithCtx(ctx).Info(msg, attrs...)
		return nil
	}
	return fmt.Errorf("unknown channel %q", channel)
}
