package websocket

import (
	"log/slog"
	"net/http"

	"github.com/gorilla/websocket"

	"github.com/nkapoor/dots-and-boxes/protocol"
)

// Dispatcher consumes decoded inbound messages and connection-lifecycle
// events. It is implemented by the game service.
type Dispatcher interface {
	Dispatch(conn protocol.Conn, msg protocol.Inbound)
	Disconnect(conn protocol.Conn)
}

// Server upgrades HTTP requests to WebSocket connections and runs a
// Client for each.
type Server struct {
	dispatcher Dispatcher
	log        *slog.Logger
	upgrader   websocket.Upgrader
}

// NewServer creates a WebSocket endpoint feeding the dispatcher.
func NewServer(dispatcher Dispatcher, logger *slog.Logger) *Server {
	return &Server{
		dispatcher: dispatcher,
		log:        logger,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin: func(r *http.Request) bool {
				// Clients are native apps and local pages, not browsers
				// sharing an origin with this server.
				return true
			},
		},
	}
}

// ServeHTTP upgrades the request and starts the client's pumps. The
// read pump runs on this goroutine until the connection drops.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.log.Info("websocket upgrade failed", "remote", r.RemoteAddr, "err", err)
		return
	}

	s.log.Info("connection opened", "remote", conn.RemoteAddr())
	client := newClient(conn, s.dispatcher, s.log)
	go client.writePump()
	client.readPump()
	s.log.Info("connection closed", "remote", conn.RemoteAddr())
}
