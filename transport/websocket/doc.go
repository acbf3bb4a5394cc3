// Package websocket carries the game's wire protocol over WebSocket
// connections.
//
// The package implements:
//   - Connection upgrade and lifecycle management
//   - JSON frame decoding into typed protocol messages
//   - Best-effort outbound delivery with per-client send buffers
//   - Keepalive via ping/pong deadlines
//
// Architecture:
//
// Each connection gets a Client with a dedicated write goroutine. The
// read loop decodes frames and hands them to the Dispatcher; outbound
// messages are enqueued on a buffered channel and written by the write
// pump. A client that cannot keep up with its buffer is closed rather
// than allowed to stall the sender.
//
// Message Protocol:
//
// Frames are JSON objects tagged by a "type" field on both directions,
// for example:
//   - Incoming: {"type": "LOGIN", "username": "alice", "password": "..."}
//   - Outgoing: {"type": "AUTHENTICATED", "session_id": "...", "user_id": "..."}
//
// A frame that fails to decode terminates the connection: the session
// it was bound to stays alive and can be picked up again on a fresh
// connection.
//
// Usage:
//
//	srv := websocket.NewServer(svc, logger)
//	mux.Handle("/ws", srv)
//
// Concurrency:
//
// Send is safe from any goroutine and never blocks. The read loop is
// the only reader and the write pump the only writer of the underlying
// connection.
package websocket
