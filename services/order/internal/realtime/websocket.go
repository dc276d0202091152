package realtime

import (
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
)

const (
	writeWait  = 10 * time.Second
	pongWait   = 60 * time.Second
	pingPeriod = (pongWait * 9) / 10
	sendBuffer = 16
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
}

// originAllowed accepts requests without an Origin header (non-browser
// clients), same-host origins, and the configured ones. "*" allows any.
func originAllowed(allowed []string) func(r *http.Request) bool {
	return func(r *http.Request) bool {
		origin := r.Header.Get("Origin")
		if origin == "" {
			return true
		}
		u, err := url.Parse(origin)
		if err != nil || u.Host == "" {
			return false
		}
		if strings.EqualFold(u.Host, r.Host) {
			return true
		}
		for _, a := range allowed {
			if a == "*" || strings.EqualFold(strings.TrimSuffix(a, "/"), u.Scheme+"://"+u.Host) {
				return true
			}
		}
		return false
	}
}

// Client is a websocket connection registered in the hub.
type Client struct {
	conn *websocket.Conn
	send chan Message
	done chan struct{}
	once sync.Once
}

func (c *Client) Send(m Message) bool {
	select {
	case <-c.done:
		return false
	default:
	}
	select {
	case c.send <- m:
		return true
	default:
		return false
	}
}

func (c *Client) close() {
	c.once.Do(func() {
		close(c.done)
		c.conn.Close()
	})
}

// Serve upgrades the request and keeps the connection registered under
// userID until the peer goes away. It blocks for the life of the connection.
// Cross-origin upgrades are refused unless the origin is in allowedOrigins.
func Serve(hub *Hub, userID uuid.UUID, allowedOrigins []string, w http.ResponseWriter, r *http.Request) error {
	up := upgrader
	up.CheckOrigin = originAllowed(allowedOrigins)
	conn, err := up.Upgrade(w, r, nil)
	if err != nil {
		return err
	}

	c := &Client{
		conn: conn,
		send: make(chan Message, sendBuffer),
		done: make(chan struct{}),
	}
	unregister := hub.Register(userID, c)
	defer unregister()
	defer c.close()

	go c.writePump()
	c.readPump()
	return nil
}

// readPump only exists to process control frames and notice disconnects.
// Clients have nothing to say on this channel.
func (c *Client) readPump() {
	c.conn.SetReadLimit(512)
	_ = c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(pongWait))
	})
	for {
		if _, _, err := c.conn.ReadMessage(); err != nil {
			return
		}
	}
}

func (c *Client) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer ticker.Stop()
	defer c.close()

	for {
		select {
		case <-c.done:
			return
		case m := <-c.send:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteJSON(m); err != nil {
				return
			}
		case <-ticker.C:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
