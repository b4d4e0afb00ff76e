package notify

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestThrottledBurstPassesThrough(t *testing.T) {
	r := &recorder{}
	th := NewThrottled(r, time.Hour, 2)

	assert.NoError(t, th.Send(context.Background(), Message{Subject: "1"}))
	assert.NoError(t, th.Send(context.Background(), Message{Subject: "2"}))
	assert.Len(t, r.msgs, 2)
}

func TestThrottledWaitHonoursContext(t *testing.T) {
	r := &recorder{}
	th := NewThrottled(r, time.Hour, 1)
	assert.NoError(t, th.Send(context.Background(), Message{Subject: "1"}))

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	assert.Error(t, th.Send(ctx, Message{Subject: "2"}))
	assert.Len(t, r.msgs, 1)
}

func TestThrottledUnlimited(t *testing.T) {
	r := &recorder{}
	th := NewThrottled(r, 0, 0)
	for i := 0; i < 10; i++ {
		assert.NoError(t, th.Send(context.Background(), Message{}))
	}
	assert.Len(t, r.msgs, 10)
}
