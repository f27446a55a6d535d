package live

import (
	"context"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/aanand-mishra/student-records/internal/records"
	"github.com/aanand-mishra/student-records/internal/storage/memory"
	"github.com/aanand-mishra/student-records/internal/types"
)

var jane = types.Student{Name: "Jane Doe", ID: "101", Email: "jane@example.com", Contact: "5551234567"}

func newHubServer(t *testing.T, seed ...types.Student) (*records.Store, *Hub, *websocket.Conn) {
	t.Helper()

	store := records.New(memory.New())
	ctx := context.Background()
	_, err := store.Load(ctx)
	require.NoError(t, err)
	for _, s := range seed {
		_, err = store.Add(ctx, s)
		require.NoError(t, err)
	}

	hub := NewHub(store, zap.NewNop())
	srv := httptest.NewServer(hub)
	t.Cleanup(srv.Close)
	t.Cleanup(hub.Close)

	url := "ws" + strings.TrimPrefix(srv.URL, "http")
	conn, resp, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	if resp != nil && resp.Body != nil {
		_ = resp.Body.Close()
	}
	t.Cleanup(func() { _ = conn.Close() })

	return store, hub, conn
}

func readMessage(t *testing.T, conn *websocket.Conn) Message {
	t.Helper()

	require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
	var msg Message
	require.NoError(t, conn.ReadJSON(&msg))
	return msg
}

func TestHub_SnapshotOnConnect(t *testing.T) {
	_, _, conn := newHubServer(t, jane)

	msg := readMessage(t, conn)

	assert.Equal(t, MessageTypeSnapshot, msg.Type)
	assert.Equal(t, []types.Student{jane}, msg.Students)
	assert.False(t, msg.Timestamp.IsZero())
}

func TestHub_EmptySnapshotIsNotNull(t *testing.T) {
	_, _, conn := newHubServer(t)

	require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
	_, raw, err := conn.ReadMessage()
	require.NoError(t, err)

	assert.Contains(t, string(raw), `"students":[]`)
}

func TestHub_SnapshotAfterMutation(t *testing.T) {
	store, _, conn := newHubServer(t)
	readMessage(t, conn)

	_, err := store.Add(context.Background(), jane)
	require.NoError(t, err)
	msg := readMessage(t, conn)
	assert.Equal(t, []types.Student{jane}, msg.Students)

	require.NoError(t, store.Delete(context.Background(), 0))
	msg = readMessage(t, conn)
	assert.Empty(t, msg.Students)
}

func TestHub_Close(t *testing.T) {
	_, hub, conn := newHubServer(t)
	readMessage(t, conn)

	require.Eventually(t, func() bool { return hub.Clients() == 1 }, time.Second, 10*time.Millisecond)

	hub.Close()

	assert.Equal(t, 0, hub.Clients())
	require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
	_, _, err := conn.ReadMessage()
	assert.True(t, websocket.IsCloseError(err, websocket.CloseNormalClosure), "got %v", err)
}

func TestPublish_WithoutClients(t *testing.T) {
	store := records.New(memory.New())
	hub := NewHub(store, zap.NewNop())

	hub.Publish([]types.Student{jane})

	assert.Equal(t, 0, hub.Clients())
}
