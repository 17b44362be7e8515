package realtime

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func startHub(t *testing.T) (*Hub, context.CancelFunc) {
	t.Helper()
	hub := NewHub(nil)
	ctx, cancel := context.WithCancel(context.Background())
	go hub.Run(ctx)
	t.Cleanup(cancel)
	return hub, cancel
}

func TestHubBroadcastToRoom(t *testing.T) {
	hub, _ := startHub(t)
	room := SessionRoom(3)
	assert.Equal(t, "session_3", room)

	a := NewClient(hub, nil, room)
	b := NewClient(hub, nil, room)
	other := NewClient(hub, nil, SessionRoom(4))
	hub.Register <- a
	hub.Register <- b
	hub.Register <- other

	require.Eventually(t, func() bool { return hub.RoomSize(room) == 2 }, time.Second, 5*time.Millisecond)

	n := hub.BroadcastToRoom(room, Message{Type: EventBracketAdvanced, Payload: map[string]int{"decided": 1}, RoomID: room})
	assert.Equal(t, 2, n)

	var got Message
	require.NoError(t, json.Unmarshal(<-a.Send, &got))
	assert.Equal(t, EventBracketAdvanced, got.Type)
	assert.Equal(t, room, got.RoomID)
	assert.Len(t, b.Send, 1)
	assert.Len(t, other.Send, 0)

	assert.Equal(t, 0, hub.BroadcastToRoom("session_99", Message{Type: EventBracketReset}))
}

func TestHubUnregisterClosesClient(t *testing.T) {
	hub, _ := startHub(t)
	room := SessionRoom(1)
	c := NewClient(hub, nil, room)
	hub.Register <- c
	require.Eventually(t, func() bool { return hub.RoomSize(room) == 1 }, time.Second, 5*time.Millisecond)

	hub.Unregister <- c
	require.Eventually(t, func() bool { return hub.RoomSize(room) == 0 }, time.Second, 5*time.Millisecond)

	_, ok := <-c.Send
	assert.False(t, ok)
	assert.False(t, c.offer([]byte("late")))
}

func TestHubFullBufferIsSkipped(t *testing.T) {
	hub, _ := startHub(t)
	room := SessionRoom(2)
	c := NewClient(hub, nil, room)
	hub.Register <- c
	require.Eventually(t, func() bool { return hub.RoomSize(room) == 1 }, time.Second, 5*time.Millisecond)

	for i := 0; i < sendBuffer; i++ {
		require.Equal(t, 1, hub.BroadcastToRoom(room, Message{Type: EventBracketAdvanced}))
	}
	assert.Equal(t, 0, hub.BroadcastToRoom(room, Message{Type: EventBracketAdvanced}))
}

func TestHubShutdownClosesRooms(t *testing.T) {
	hub, cancel := startHub(t)
	c := NewClient(hub, nil, SessionRoom(5))
	hub.Register <- c
	require.Eventually(t, func() bool { return hub.RoomSize(c.Room) == 1 }, time.Second, 5*time.Millisecond)

	cancel()
	select {
	case <-hub.done:
	case <-time.After(time.Second):
		t.Fatal("hub did not stop")
	}
	assert.Equal(t, 0, hub.RoomSize(c.Room))
	_, ok := <-c.Send
	assert.False(t, ok)
}

func TestJoinAfterShutdown(t *testing.T) {
	hub, cancel := startHub(t)
	c := NewClient(hub, nil, SessionRoom(6))
	assert.True(t, hub.Join(c))

	cancel()
	<-hub.done
	assert.False(t, hub.Join(NewClient(hub, nil, SessionRoom(6))))
}
