package ws

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type stubConn struct {
	frames [][]byte
	fail   bool
	closed bool
}

func (c *stubConn) WriteMessage(_ int, data []byte) error {
	if c.fail {
		return errors.New("write failed")
	}
	c.frames = append(c.frames, data)
	return nil
}

func (c *stubConn) Close() error {
	c.closed = true
	return nil
}

func TestBroadcastDropsFailingSubscriber(t *testing.T) {
	h := NewHub(zap.NewNop().Sugar())
	good := &stubConn{}
	bad := &stubConn{fail: true}
	h.Subscribe("c1", good)
	h.Subscribe("c1", bad)

	h.Broadcast("c1", map[string]string{"event": "message.created"})
	require.Len(t, good.frames, 1)
	require.True(t, bad.closed)

	// the failed connection is gone; the survivor keeps receiving
	h.Broadcast("c1", map[string]string{"event": "message.edited"})
	require.Len(t, good.frames, 2)
	require.Empty(t, bad.frames)
}

func TestUnsubscribeStopsDelivery(t *testing.T) {
	h := NewHub(zap.NewNop().Sugar())
	c := &stubConn{}
	h.Subscribe("c1", c)
	h.Unsubscribe("c1", c)

	h.Broadcast("c1", map[string]string{"event": "message.created"})
	require.Empty(t, c.frames)

	// the empty subscriber set is reaped
	h.mu.RLock()
	_, ok := h.subs["c1"]
	h.mu.RUnlock()
	require.False(t, ok)
}

func TestHandleEventIgnoresMalformedPayload(t *testing.T) {
	h := NewHub(zap.NewNop().Sugar())
	c := &stubConn{}
	h.Subscribe("c1", c)

	h.HandleEvent("c1", []byte("{not json"))
	require.Empty(t, c.frames)

	h.HandleEvent("c1", []byte(`{"event":"message.created","message_id":"m1"}`))
	require.Len(t, c.frames, 1)
	require.Contains(t, string(c.frames[0]), "m1")
}
