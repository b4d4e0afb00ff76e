package notify

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

// blocking holds every Send until release is closed or ctx ends.
type blocking struct {
	started chan Message
	release chan struct{}
	sent    []Message
}

func newBlocking() *blocking {
	return &blocking{started: make(chan Message, 8), release: make(chan struct{})}
}

func (b *blocking) Send(ctx context.Context, m Message) error {
	b.started <- m
	select {
	case <-b.release:
		b.sent = append(b.sent, m)
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func TestAsyncDeliversInOrder(t *testing.T) {
	r := &recorder{}
	a := NewAsync(r, 4, nil)

	for _, s := range []string{"a", "b", "c"} {
		require.NoError(t, a.Send(context.Background(), Message{Subject: s}))
	}
	require.NoError(t, a.Close(context.Background()))

	require.Len(t, r.msgs, 3)
	assert.Equal(t, "a", r.msgs[0].Subject)
	assert.Equal(t, "c", r.msgs[2].Subject)
}

func TestAsyncSendDoesNotWait(t *testing.T) {
	b := newBlocking()
	a := NewAsync(b, 1, nil)

	require.NoError(t, a.Send(context.Background(), Message{Subject: "first"}))
	<-b.started // the worker holds "first"

	require.NoError(t, a.Send(context.Background(), Message{Subject: "second"}))
	err := a.Send(context.Background(), Message{Subject: "third"})
	assert.ErrorIs(t, err, ErrQueueFull)
	assert.Equal(t, 1, a.Pending())

	close(b.release)
	require.NoError(t, a.Close(context.Background()))
	require.Len(t, b.sent, 2)
	assert.Equal(t, "second", b.sent[1].Subject)
}

func TestAsyncSendAfterClose(t *testing.T) {
	a := NewAsync(&recorder{}, 1, nil)
	require.NoError(t, a.Close(context.Background()))
	require.NoError(t, a.Close(context.Background()))

	err := a.Send(context.Background(), Message{Subject: "late"})
	assert.ErrorIs(t, err, ErrClosed)
}

func TestAsyncCloseTimeoutCancelsDelivery(t *testing.T) {
	b := newBlocking()
	a := NewAsync(b, 1, nil)
	require.NoError(t, a.Send(context.Background(), Message{Subject: "stuck"}))
	<-b.started

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	err := a.Close(ctx)
	assert.True(t, errors.Is(err, context.DeadlineExceeded))

	// The worker sees the cancellation and exits.
	select {
	case <-a.done:
	case <-time.After(time.Second):
		t.Fatal("worker did not stop")
	}
	assert.Empty(t, b.sent)
}

func TestAsyncLogsDeliveryFailure(t *testing.T) {
	core, logs := observer.New(zap.DebugLevel)
	a := NewAsync(&recorder{err: errors.New("smtp down")}, 1, zap.New(core))

	require.NoError(t, a.Send(context.Background(), Message{Subject: "Your daily report"}))
	require.NoError(t, a.Close(context.Background()))

	entries := logs.FilterMessage("report not delivered").All()
	require.Len(t, entries, 1)
	assert.Equal(t, "Your daily report", entries[0].ContextMap()["subject"])
}
