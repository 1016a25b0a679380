package realtime

import (
	"encoding/json"
	"sync"
	"time"

	"github.com/gofiber/contrib/websocket"
	"github.com/gofiber/fiber/v2"
	"github.com/localnerve/sportfed/internal/auth"
	log "github.com/sirupsen/logrus"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10
	maxMessageSize = 512 * 1024
	sendBuffer     = 16
)

// Client is one connection. Its two states are connected and disconnected.
type Client struct {
	hub        *Hub
	dispatcher *Dispatcher
	conn       *websocket.Conn
	session    *auth.Session
	now        func() time.Time

	send      chan []byte
	done      chan struct{}
	closeOnce sync.Once
}

// Handler returns the fiber handler serving upgraded connections.
// It expects the session to be resolved into the locals before the upgrade.
func Handler(hub *Hub, dispatcher *Dispatcher) fiber.Handler {
	return websocket.New(func(conn *websocket.Conn) {
		sess, _ := conn.Locals(auth.LocalsKey).(*auth.Session)
		if sess == nil {
			_ = conn.WriteMessage(websocket.CloseMessage,
				websocket.FormatCloseMessage(websocket.ClosePolicyViolation, "no session"))
			return
		}

		client := &Client{
			hub:        hub,
			dispatcher: dispatcher,
			conn:       conn,
			session:    sess,
			now:        time.Now,
			send:       make(chan []byte, sendBuffer),
			done:       make(chan struct{}),
		}
		client.serve()
	})
}

func (c *Client) serve() {
	if !c.hub.add(c) {
		return
	}

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		c.writePump()
	}()

	c.readPump()
	c.hub.remove(c)
	wg.Wait()
}

func (c *Client) close() {
	c.closeOnce.Do(func() {
		close(c.done)
	})
}

// abort drops a connection that can no longer be written to.
// Closing the conn ends the blocked read so the client leaves the hub at once.
func (c *Client) abort() {
	c.close()
	_ = c.conn.Close()
}

// emit queues a frame for the connection. Frames for a closed connection are dropped.
func (c *Client) emit(f Frame) {
	raw, err := json.Marshal(f)
	if err != nil {
		log.WithError(err).WithField("event", f.Event).Error("realtime: encoding frame failed")
		return
	}

	select {
	case <-c.done:
		log.WithField("event", f.Event).Debug("realtime: response dropped after disconnect")
	case c.send <- raw:
	}
}

func (c *Client) readPump() {
	c.conn.SetReadLimit(maxMessageSize)
	_ = c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		_, raw, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure, websocket.CloseAbnormalClosure) {
				log.WithError(err).Warn("realtime: unexpected close")
			}
			return
		}

		var in Frame
		if err := json.Unmarshal(raw, &in); err != nil {
			c.emit(errorFrame("error", "", "malformed frame: "+err.Error()))
			continue
		}

		if c.session.Expired(c.now()) {
			c.hub.observe(outcomeEvent(c.dispatcher, in.Event), "expired")
			c.emit(Frame{Event: EventSessionExpired, Ref: in.Ref})
			c.close()
			return
		}

		// Each event runs on its own; a slow operation does not hold up the next frame
		go c.handle(in)
	}
}

func (c *Client) handle(in Frame) {
	out, outcome := c.dispatcher.Dispatch(c.hub.ctx, c.session, in)
	c.hub.observe(outcomeEvent(c.dispatcher, in.Event), outcome)
	c.emit(out)
}

func (c *Client) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer ticker.Stop()

	for {
		select {
		case msg := <-c.send:
			if err := c.write(websocket.TextMessage, msg); err != nil {
				log.WithError(err).Debug("realtime: write failed")
				c.abort()
				return
			}

		case <-ticker.C:
			if err := c.write(websocket.PingMessage, nil); err != nil {
				c.abort()
				return
			}

		case <-c.done:
			c.flush()
			_ = c.write(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
			_ = c.conn.Close()
			return
		}
	}
}

// flush writes the frames queued before the connection closed
func (c *Client) flush() {
	for {
		select {
		case msg := <-c.send:
			if err := c.write(websocket.TextMessage, msg); err != nil {
				return
			}
		default:
			return
		}
	}
}

func (c *Client) write(messageType int, data []byte) error {
	_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
	return c.conn.WriteMessage(messageType, data)
}
