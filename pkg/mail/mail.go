// Package mail sends email over SMTP.
//
//	sender := mail.Default() // nil when MAIL_HOST is empty
//	err := sender.Send(ctx, mail.Message{
//	    To:      []string{"cliente@example.com"},
//	    Subject: "Pedido #42: A caminho",
//	    Body:    "Seu pedido saiu para entrega.",
//	})
package mail

import (
	"context"
	"crypto/tls"
	"errors"
	"fmt"
	"mime"
	"net"
	"net/smtp"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/shashiranjanraj/marmita/config"
)

// SMTP holds the connection settings.
type SMTP struct {
	Host     string
	Port     string
	Username string
	Password string
	From     string
	FromName string
}

// FromConfig reads the MAIL_* keys.
func FromConfig() SMTP {
	return SMTP{
		Host:     config.Get("MAIL_HOST", ""),
		Port:     config.Get("MAIL_PORT", "587"),
		Username: config.Get("MAIL_USERNAME", ""),
		Password: config.Get("MAIL_PASSWORD", ""),
		From:     config.Get("MAIL_FROM", "pedidos@marmita.local"),
		FromName: config.Get("MAIL_FROM_NAME", "Marmita"),
	}
}

func (s SMTP) Enabled() bool { return s.Host != "" }

// Message is one email. Body is plain text unless HTML is set.
type Message struct {
	To      []string
	Subject string
	Body    string
	HTML    bool
}

// Sender delivers messages.
type Sender interface {
	Send(ctx context.Context, m Message) error
}

// Default returns an SMTP sender for the configured server, or nil when
// mail is not configured.
func Default() Sender {
	cfg := FromConfig()
	if !cfg.Enabled() {
		return nil
	}
	return NewSMTPSender(cfg)
}

// SMTPSender talks to one SMTP server. Port 465 uses implicit TLS; other
// ports upgrade with STARTTLS when the server offers it.
type SMTPSender struct {
	cfg     SMTP
	timeout time.Duration
}

func NewSMTPSender(cfg SMTP) *SMTPSender {
	return &SMTPSender{cfg: cfg, timeout: 15 * time.Second}
}

var ErrNoRecipients = errors.New("mail: no recipients")

func (s *SMTPSender) Send(ctx context.Context, m Message) error {
	if len(m.To) == 0 {
		return ErrNoRecipients
	}
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	addr := net.JoinHostPort(s.cfg.Host, s.cfg.Port)
	conn, err := s.dial(ctx, addr)
	if err != nil {
		return fmt.Errorf("mail: dial %s: %w", addr, err)
	}
	if deadline, ok := ctx.Deadline(); ok {
		_ = conn.SetDeadline(deadline)
	}

	client, err := smtp.NewClient(conn, s.cfg.Host)
	if err != nil {
		conn.Close()
		return fmt.Errorf("mail: handshake: %w", err)
	}
	defer client.Close()

	if s.cfg.Port != "465" {
		if ok, _ := client.Extension("STARTTLS"); ok {
			if err := client.StartTLS(&tls.Config{ServerName: s.cfg.Host}); err != nil {
				return fmt.Errorf("mail: starttls: %w", err)
			}
		}
	}
	if s.cfg.Username != "" {
		auth := smtp.PlainAuth("", s.cfg.Username, s.cfg.Password, s.cfg.Host)
		if err := client.Auth(auth); err != nil {
			return fmt.Errorf("mail: auth: %w", err)
		}
	}

	if err := client.Mail(s.cfg.From); err != nil {
		return fmt.Errorf("mail: from: %w", err)
	}
	for _, rcpt := range m.To {
		if err := client.Rcpt(rcpt); err != nil {
			return fmt.Errorf("mail: rcpt %s: %w", rcpt, err)
		}
	}
	w, err := client.Data()
	if err != nil {
		return fmt.Errorf("mail: data: %w", err)
	}
	if _, err := w.Write(m.Build(s.cfg)); err != nil {
		return fmt.Errorf("mail: write: %w", err)
	}
	if err := w.Close(); err != nil {
		return fmt.Errorf("mail: send: %w", err)
	}
	return client.Quit()
}

func (s *SMTPSender) dial(ctx context.Context, addr string) (net.Conn, error) {
	if s.cfg.Port == "465" {
		d := &tls.Dialer{Config: &tls.Config{ServerName: s.cfg.Host}}
		return d.DialContext(ctx, "tcp", addr)
	}
	var d net.Dialer
	return d.DialContext(ctx, "tcp", addr)
}

// Build renders the message with its headers. Non-ASCII subjects and
// sender names are Q-encoded.
func (m Message) Build(cfg SMTP) []byte {
	contentType := "text/plain"
	if m.HTML {
		contentType = "text/html"
	}
	from := cfg.From
	if cfg.FromName != "" {
		from = fmt.Sprintf("%s <%s>", mime.QEncoding.Encode("utf-8", cfg.FromName), cfg.From)
	}

	var b strings.Builder
	b.WriteString("From: " + from + "\r\n")
	b.WriteString("To: " + strings.Join(m.To, ", ") + "\r\n")
	b.WriteString("Subject: " + mime.QEncoding.Encode("utf-8", m.Subject) + "\r\n")
	b.WriteString("Date: " + time.Now().Format(time.RFC1123Z) + "\r\n")
	b.WriteString("Message-ID: <" + uuid.NewString() + "@" + domainOf(cfg.From) + ">\r\n")
	b.WriteString("MIME-Version: 1.0\r\n")
	b.WriteString("Content-Type: " + contentType + "; charset=\"UTF-8\"\r\n")
	b.WriteString("\r\n")
	b.WriteString(strings.ReplaceAll(m.Body, "\n", "\r\n"))
	return []byte(b.String())
}

func domainOf(addr string) string {
	if _, domain, ok := strings.Cut(addr, "@"); ok && domain != "" {
		return domain
	}
	return "localhost"
}
