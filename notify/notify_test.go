package notify

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

type recorder struct {
	msgs []Message
	err  error
}

func (r *recorder) Send(_ context.Context, m Message) error {
	r.msgs = append(r.msgs, m)
	return r.err
}

func TestMultiSendsToAll(t *testing.T) {
	a := &recorder{err: errors.New("smtp down")}
	b := &recorder{}
	err := Multi{a, b}.Send(context.Background(), Message{Subject: "s", Body: "b"})

	assert.ErrorContains(t, err, "smtp down")
	assert.Len(t, a.msgs, 1)
	assert.Len(t, b.msgs, 1)
}

func TestSuppressed(t *testing.T) {
	tests := []struct {
		profile string
		sent    bool
	}{
		{"prod", true},
		{"", true},
		{"testing", true},
		{ProfileTest, false},
		{"TEST", false},
		{"Test", false},
	}
	for _, tt := range tests {
		t.Run(tt.profile, func(t *testing.T) {
			r := &recorder{}
			s := Suppressed(tt.profile, r, nil)
			assert.NoError(t, s.Send(context.Background(), Message{Subject: "x"}))
			if tt.sent {
				assert.Len(t, r.msgs, 1)
			} else {
				assert.Empty(t, r.msgs)
			}
		})
	}
}

func TestLogSender(t *testing.T) {
	core, logs := observer.New(zap.InfoLevel)
	err := Log{L: zap.New(core)}.Send(context.Background(), Message{Subject: "Your daily report", Body: "Global gains:\n"})
	assert.NoError(t, err)

	entries := logs.FilterMessage("report").All()
	if assert.Len(t, entries, 1) {
		assert.Equal(t, "Your daily report", entries[0].ContextMap()["subject"])
	}
}
