// Package notify delivers reports. Every transport implements Sender.
package notify

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"go.uber.org/zap"
)

// ProfileTest is the profile under which reports are logged, not sent.
const ProfileTest = "test"

type Message struct {
	Subject string
	Body    string
}

type Sender interface {
	Send(ctx context.Context, m Message) error
}

type SenderFunc func(ctx context.Context, m Message) error

func (f SenderFunc) Send(ctx context.Context, m Message) error { return f(ctx, m) }

// Multi sends to every sender and joins their errors. A failing sender does
// not keep the others from running.
type Multi []Sender

func (ms Multi) Send(ctx context.Context, m Message) error {
	var errs []error
	for i, s := range ms {
		if err := s.Send(ctx, m); err != nil {
			errs = append(errs, fmt.Errorf("sender %d: %w", i, err))
		}
	}
	return errors.Join(errs...)
}

// Log writes the message to a zap logger.
type Log struct {
	L *zap.Logger
}

func (l Log) Send(_ context.Context, m Message) error {
	log := l.L
	if log == nil {
		log = zap.NewNop()
	}
	log.Info("report", zap.String("subject", m.Subject), zap.String("body", m.Body))
	return nil
}

// Suppressed returns next unchanged unless profile is "test" (any case), in
// which case messages are logged and dropped.
func Suppressed(profile string, next Sender, log *zap.Logger) Sender {
	if !strings.EqualFold(strings.TrimSpace(profile), ProfileTest) {
		return next
	}
	if log == nil {
		log = zap.NewNop()
	}
	return SenderFunc(func(_ context.Context, m Message) error {
		log.Debug("report not sent in test profile", zap.String("subject", m.Subject))
		return nil
	})
}
