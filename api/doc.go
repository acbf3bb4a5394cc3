// Package api is the HTTP surface of the game server.
//
// The api package implements:
//   - Read-only inspection endpoints for sessions and games
//   - The WebSocket endpoint clients play over
//   - Optional mounting of the MCP endpoint
//   - Health checking
//
// Endpoints:
//
// Inspection:
//   - GET /api/sessions - List live sessions, newest first
//   - GET /api/games - List live games, newest first
//   - GET /api/games/{id} - One game's snapshot with full board state
//   - GET /api/stats - Aggregate counts
//
// Gameplay:
//   - GET /ws - WebSocket upgrade; all game traffic flows here
//
// Operations:
//   - GET /healthz - Health check
//   - /mcp - MCP endpoint, when enabled
//
// All gameplay is driven over the WebSocket protocol. The REST
// endpoints never mutate: there is no way to create a session or play
// a move over plain HTTP.
//
// Request/Response Format:
//
// Endpoints return JSON. List endpoints accept an optional limit query
// parameter. Errors come back as JSON with an appropriate status code:
//
//	{
//	  "error": "match not found"
//	}
package api
