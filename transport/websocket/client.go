package websocket

import (
	"encoding/json"
	"log/slog"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/nkapoor/dots-and-boxes/protocol"
)

const (
	// Time allowed to write a message to the peer.
	writeWait = 10 * time.Second

	// Time allowed to read the next pong message from the peer.
	pongWait = 60 * time.Second

	// Send pings to peer with this period. Must be less than pongWait.
	pingPeriod = (pongWait * 9) / 10

	// Maximum message size allowed from peer.
	maxMessageSize = 4096

	// Outbound messages buffered per client before the peer is
	// considered stalled.
	sendBuffer = 256
)

// Client is one upgraded WebSocket connection. It implements
// protocol.Conn: Send enqueues without blocking and drops the
// connection when the peer cannot keep up.
type Client struct {
	conn       *websocket.Conn
	dispatcher Dispatcher
	log        *slog.Logger

	send      chan []byte
	done      chan struct{}
	closeOnce sync.Once
}

func newClient(conn *websocket.Conn, dispatcher Dispatcher, logger *slog.Logger) *Client {
	return &Client{
		conn:       conn,
		dispatcher: dispatcher,
		log:        logger,
		send:       make(chan []byte, sendBuffer),
		done:       make(chan struct{}),
	}
}

// Send queues an outbound message for the write pump. It never blocks:
// a full buffer means the peer is stalled, and the connection is shut
// down instead of backing up the caller.
func (c *Client) Send(msg protocol.Outbound) {
	data, err := json.Marshal(msg)
	if err != nil {
		c.log.Error("marshal outbound message", "err", err)
		return
	}

	select {
	case <-c.done:
	case c.send <- data:
	default:
		c.log.Warn("send buffer full, dropping connection", "remote", c.conn.RemoteAddr())
		c.close()
	}
}

// close signals both pumps to stop. Safe to call more than once.
func (c *Client) close() {
	c.closeOnce.Do(func() { close(c.done) })
}

// readPump decodes frames off the connection and hands them to the
// dispatcher. It owns connection teardown: when it returns, the
// dispatcher is told the connection is gone and the socket is closed.
func (c *Client) readPump() {
	defer func() {
		c.dispatcher.Disconnect(c)
		c.close()
		c.conn.Close()
	}()

	c.conn.SetReadLimit(maxMessageSize)
	c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		c.conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		select {
		case <-c.done:
			return
		default:
		}

		_, data, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				c.log.Info("connection read failed", "remote", c.conn.RemoteAddr(), "err", err)
			}
			return
		}

		msg, err := protocol.Decode(data)
		if err != nil {
			// A peer speaking the wrong protocol gets cut off. Its
			// session survives and is adoptable from a new connection.
			c.log.Info("dropping connection on malformed frame", "remote", c.conn.RemoteAddr(), "err", err)
			return
		}
		c.dispatcher.Dispatch(c, msg)
	}
}

// writePump drains the send buffer onto the connection and keeps the
// peer alive with periodic pings.
func (c *Client) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	for {
		select {
		case <-c.done:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			c.conn.WriteMessage(websocket.CloseMessage, nil)
			return

		case data := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			w, err := c.conn.NextWriter(websocket.TextMessage)
			if err != nil {
				c.close()
				return
			}
			w.Write(data)

			// Fold queued messages into the current WebSocket frame.
			n := len(c.send)
			for i := 0; i < n; i++ {
				w.Write([]byte{'\n'})
				w.Write(<-c.send)
			}

			if err := w.Close(); err != nil {
				c.close()
				return
			}

		case <-ticker.C:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				c.close()
				return
			}
		}
	}
}
