package notify

import (
	"context"
	"errors"
	"net/smtp"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMailDefaults(t *testing.T) {
	m := NewMail(MailConfig{Host: "smtp.example.com"})
	assert.Equal(t, DefaultMailFrom, m.cfg.From)
	assert.Equal(t, []string{DefaultMailTo}, m.cfg.To)
	assert.Equal(t, 587, m.cfg.Port)
}

func TestMailSend(t *testing.T) {
	m := NewMail(MailConfig{Host: "smtp.example.com", Port: 2525, Username: "bot", Password: "pw"})
	m.now = func() time.Time { return time.Date(2024, 1, 2, 7, 0, 0, 0, time.UTC) }

	var gotAddr, gotFrom string
	var gotTo []string
	var gotMsg []byte
	var gotAuth smtp.Auth
	m.send = func(addr string, a smtp.Auth, from string, to []string, msg []byte) error {
		gotAddr, gotAuth, gotFrom, gotTo, gotMsg = addr, a, from, to, msg
		return nil
	}

	err := m.Send(context.Background(), Message{Subject: "Your daily report", Body: "Global gains:\nUSDT : 1 % / 1.00 USDT / 0.00 USDT\n"})
	require.NoError(t, err)

	assert.Equal(t, "smtp.example.com:2525", gotAddr)
	assert.NotNil(t, gotAuth)
	assert.Equal(t, DefaultMailFrom, gotFrom)
	assert.Equal(t, []string{DefaultMailTo}, gotTo)
	body := string(gotMsg)
	assert.Contains(t, body, "Subject: Your daily report\r\n")
	assert.Contains(t, body, "To: contact@cassandre.tech\r\n")
	assert.Contains(t, body, "\r\n\r\nGlobal gains:\r\nUSDT : 1 % / 1.00 USDT / 0.00 USDT\r\n")
}

func TestMailErrors(t *testing.T) {
	err := NewMail(MailConfig{}).Send(context.Background(), Message{})
	assert.Error(t, err)

	m := NewMail(MailConfig{Host: "smtp.example.com"})
	m.send = func(string, smtp.Auth, string, []string, []byte) error { return errors.New("refused") }
	assert.ErrorContains(t, m.Send(context.Background(), Message{Subject: "s"}), "refused")

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	assert.ErrorIs(t, m.Send(ctx, Message{}), context.Canceled)
}
