package notify

import (
	"context"
	"fmt"
	"net"
	"net/smtp"
	"strings"
	"time"
)

const (
	DefaultMailFrom = "no-reply@cassandre.tech"
	DefaultMailTo   = "contact@cassandre.tech"
)

type MailConfig struct {
	Host     string
	Port     int
	Username string
	Password string
	From     string
	To       []string
}

// Mail sends plain text email through an SMTP relay.
type Mail struct {
	cfg  MailConfig
	send func(addr string, a smtp.Auth, from string, to []string, msg []byte) error
	now  func() time.Time
}

func NewMail(cfg MailConfig) *Mail {
	if cfg.From == "" {
		cfg.From = DefaultMailFrom
	}
	if len(cfg.To) == 0 {
		cfg.To = []string{DefaultMailTo}
	}
	if cfg.Port == 0 {
		cfg.Port = 587
	}
	return &Mail{cfg: cfg, send: smtp.SendMail, now: time.Now}
}

func (m *Mail) Send(ctx context.Context, msg Message) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if m.cfg.Host == "" {
		return fmt.Errorf("mail: no smtp host configured")
	}

	var auth smtp.Auth
	if m.cfg.Username != "" {
		auth = smtp.PlainAuth("", m.cfg.Username, m.cfg.Password, m.cfg.Host)
	}
	addr := net.JoinHostPort(m.cfg.Host, fmt.Sprint(m.cfg.Port))
	if err := m.send(addr, auth, m.cfg.From, m.cfg.To, m.render(msg)); err != nil {
		return fmt.Errorf("mail %q to %s: %w", msg.Subject, strings.Join(m.cfg.To, ","), err)
	}
	return nil
}

func (m *Mail) render(msg Message) []byte {
	var b strings.Builder
	fmt.Fprintf(&b, "From: %s\r\n", m.cfg.From)
	fmt.Fprintf(&b, "To: %s\r\n", strings.Join(m.cfg.To, ", "))
	fmt.Fprintf(&b, "Subject: %s\r\n", msg.Subject)
	fmt.Fprintf(&b, "Date: %s\r\n", m.now().Format(time.RFC1123Z))
	b.WriteString("MIME-Version: 1.0\r\n")
	b.WriteString("Content-Type: text/plain; charset=UTF-8\r\n")
	b.WriteString("\r\n")
	b.WriteString(strings.ReplaceAll(msg.Body, "\n", "\r\n"))
	return []byte(b.String())
}
