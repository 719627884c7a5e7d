package realtime

import (
	"net/http"
	"strings"
	"time"

	"github.com/gorilla/websocket"

	"github.com/collabrixo/core/internal/infrastructure/logger"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	// Browser clients connect cross-origin during development.
	CheckOrigin: func(r *http.Request) bool { return true },
}

// Client is one websocket subscriber and the channels it watches.
type Client struct {
	Hub      *Hub
	Conn     *websocket.Conn
	Channels []string
	Send     chan []byte
}

// ServeWs upgrades the request and registers the subscriber. Channels come
// from the comma-separated "channels" query parameter.
func ServeWs(hub *Hub, w http.ResponseWriter, r *http.Request, appLogger *logger.Logger) {
	channels := parseChannels(r.URL.Query().Get("channels"))
	if len(channels) == 0 {
		http.Error(w, "missing channels parameter", http.StatusBadRequest)
		return
	}

	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		appLogger.Errorw("Websocket upgrade failed", "error", err)
		return
	}

	client := &Client{
		Hub:      hub,
		Conn:     conn,
		Channels: channels,
		Send:     make(chan []byte, 256),
	}

	client.Hub.Register <- client

	go client.writePump()
	go client.readPump(appLogger)
}

func parseChannels(raw string) []string {
	parts := strings.Split(raw, ",")
	channels := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p != "" {
			channels = append(channels, p)
		}
	}
	return channels
}

// readPump drains the connection so close frames are noticed. Subscribers
// only listen; anything they send is discarded.
func (c *Client) readPump(appLogger *logger.Logger) {
	defer func() {
		c.Hub.Unregister <- c
		c.Conn.Close()
	}()

	for {
		if _, _, err := c.Conn.ReadMessage(); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				appLogger.Errorw("Websocket read error", "error", err)
			}
			break
		}
	}
}

func (c *Client) writePump() {
	ticker := time.NewTicker(30 * time.Second) // Send ping every 30s
	defer ticker.Stop()

	for {
		select {
		case message, ok := <-c.Send:
			if !ok {
				c.Conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			c.Conn.WriteMessage(websocket.TextMessage, message)
		case <-ticker.C:
			if err := c.Conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return // Connection is dead
			}
		}
	}
}
