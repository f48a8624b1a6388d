package livescore

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
)

const (
	writeWait  = 10 * time.Second
	pongWait   = 60 * time.Second
	pingPeriod = (pongWait * 9) / 10
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	// kiosks connect from the local display network; origin is not a trust
	// boundary here, the token check upstream is
	CheckOrigin: func(r *http.Request) bool { return true },
}

// Handler upgrades a kiosk connection and pumps hub messages to it until
// either side goes away. A failing kiosk only unsubscribes itself.
func Handler(hub *Hub) gin.HandlerFunc {
	return func(c *gin.Context) {
		conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
		if err != nil {
			// Upgrade already wrote the HTTP error
			slog.Warn("websocket upgrade failed", "remote", c.ClientIP(), "err", err)
			return
		}
		sub := hub.Subscribe()
		go writePump(conn, hub, sub)
		readPump(conn, hub, sub)
	}
}

// readPump feeds inbound frames to the hub; the game runtime pushes state
// updates over the same socket the kiosks listen on. It also runs the
// close/pong machinery and notices disconnects.
func readPump(conn *websocket.Conn, hub *Hub, sub *Subscriber) {
	defer func() {
		hub.Unsubscribe(sub)
		conn.Close()
	}()
	conn.SetReadLimit(4096)
	_ = conn.SetReadDeadline(time.Now().Add(pongWait))
	conn.SetPongHandler(func(string) error {
		return conn.SetReadDeadline(time.Now().Add(pongWait))
	})
	for {
		kind, raw, err := conn.ReadMessage()
		if err != nil {
			return
		}
		if kind == websocket.TextMessage && len(raw) > 0 {
			hub.Publish(raw)
		}
	}
}

func writePump(conn *websocket.Conn, hub *Hub, sub *Subscriber) {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		hub.Unsubscribe(sub)
		conn.Close()
	}()
	for {
		select {
		case msg, ok := <-sub.C():
			_ = conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				_ = conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := conn.WriteMessage(websocket.TextMessage, msg); err != nil {
				return
			}
		case <-ticker.C:
			_ = conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
