package realtime

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/collabrixo/core/internal/infrastructure/logger"
	"github.com/collabrixo/core/internal/ports"
)

// Helper function to read an event from a WebSocket connection with a timeout.
func readEvent(t *testing.T, conn *websocket.Conn) ports.ChangeEvent {
	var event ports.ChangeEvent
	// Set a deadline to avoid tests hanging forever.
	conn.SetReadDeadline(time.Now().Add(1 * time.Second))
	_, p, err := conn.ReadMessage()
	require.NoError(t, err, "Failed to read message from WebSocket")
	err = json.Unmarshal(p, &event)
	require.NoError(t, err, "Failed to unmarshal ChangeEvent JSON")
	return event
}

func newTestServer(t *testing.T) (*Hub, string) {
	hub := NewHub(logger.NewNop())
	go hub.Run()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ServeWs(hub, w, r, logger.NewNop())
	}))
	t.Cleanup(server.Close)

	return hub, "ws" + strings.TrimPrefix(server.URL, "http")
}

func TestHubBroadcastsToSubscribedChannel(t *testing.T) {
	hub, wsURL := newTestServer(t)

	channel := ports.ChannelFor("work_items")
	conn, _, err := websocket.DefaultDialer.Dial(wsURL+"?channels="+channel, nil)
	require.NoError(t, err, "Client failed to connect")
	defer conn.Close()

	// Give the register message time to land before publishing.
	time.Sleep(50 * time.Millisecond)

	hub.Publish(ports.ChangeEvent{
		Event:      ports.EventCreate,
		Channel:    channel,
		DocumentID: "doc-1",
	})

	event := readEvent(t, conn)
	assert.Equal(t, ports.EventCreate, event.Event)
	assert.Equal(t, channel, event.Channel)
	assert.Equal(t, "doc-1", event.DocumentID)
	assert.False(t, event.Timestamp.IsZero(), "Publish should stamp the event")
}

func TestHubDoesNotCrossChannels(t *testing.T) {
	hub, wsURL := newTestServer(t)

	meetingsConn, _, err := websocket.DefaultDialer.Dial(
		wsURL+"?channels="+ports.ChannelFor("meetings"), nil)
	require.NoError(t, err)
	defer meetingsConn.Close()

	workItemsConn, _, err := websocket.DefaultDialer.Dial(
		wsURL+"?channels="+ports.ChannelFor("work_items"), nil)
	require.NoError(t, err)
	defer workItemsConn.Close()

	time.Sleep(50 * time.Millisecond)

	hub.Publish(ports.ChangeEvent{
		Event:      ports.EventUpdate,
		Channel:    ports.ChannelFor("work_items"),
		DocumentID: "doc-2",
	})

	event := readEvent(t, workItemsConn)
	assert.Equal(t, "doc-2", event.DocumentID)

	// The meetings subscriber must see nothing.
	meetingsConn.SetReadDeadline(time.Now().Add(200 * time.Millisecond))
	_, _, err = meetingsConn.ReadMessage()
	assert.Error(t, err, "subscriber on another channel should time out")
}

func TestHubMultiChannelSubscription(t *testing.T) {
	hub, wsURL := newTestServer(t)

	channels := ports.ChannelFor("work_items") + "," + ports.ChannelFor("timers")
	conn, _, err := websocket.DefaultDialer.Dial(wsURL+"?channels="+channels, nil)
	require.NoError(t, err)
	defer conn.Close()

	time.Sleep(50 * time.Millisecond)

	hub.Publish(ports.ChangeEvent{Event: ports.EventUpdate, Channel: ports.ChannelFor("timers"), DocumentID: "t-1"})
	hub.Publish(ports.ChangeEvent{Event: ports.EventDelete, Channel: ports.ChannelFor("work_items"), DocumentID: "w-1"})

	first := readEvent(t, conn)
	second := readEvent(t, conn)
	ids := []string{first.DocumentID, second.DocumentID}
	assert.Contains(t, ids, "t-1")
	assert.Contains(t, ids, "w-1")
}

func TestHubRejectsMissingChannels(t *testing.T) {
	_, wsURL := newTestServer(t)

	_, resp, err := websocket.DefaultDialer.Dial(wsURL, nil)
	require.Error(t, err)
	require.NotNil(t, resp)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestChannelFor(t *testing.T) {
	assert.Equal(t, "collections.meetings.documents", ports.ChannelFor("meetings"))
}
