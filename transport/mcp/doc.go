// Package mcp provides a Model Context Protocol server over the game
// service.
//
// The mcp package implements:
//   - MCP server for AI agent integration
//   - Read-only tools over live sessions and games
//   - ASCII board rendering for state inspection
//   - Stdio and HTTP transport modes
//
// MCP Tools:
//
// The package exposes the following tools:
//   - list_sessions: List all live player sessions
//   - list_games: List all live games
//   - get_game: Full board state of one game with a rendered board
//
// Gameplay itself stays on the WebSocket protocol; the MCP surface is
// for observing a running server, not for playing over it.
//
// Transport Modes:
//
// The server supports two transport modes:
//   - Stdio: Direct stdio communication for local MCP clients
//   - HTTP: Streamable HTTP handler mounted next to the REST API
//
// Usage:
//
//	// Stdio mode
//	srv := mcp.NewServer(svc)
//	srv.ServeStdio()
//
//	// HTTP mode
//	router.Handle("/mcp", srv.HTTPHandler())
package mcp
