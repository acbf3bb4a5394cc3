package mcp

import (
	"context"
	"fmt"
	"net/http"
	"sort"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/nkapoor/dots-and-boxes/game/engine"
	"github.com/nkapoor/dots-and-boxes/game/match"
	"github.com/nkapoor/dots-and-boxes/game/session"
)

// GameView is the read-only slice of the game service the MCP tools
// expose.
type GameView interface {
	Sessions() []session.Info
	Games() []match.Info
	GameInfo(id string) (match.Info, *engine.State, error)
}

// Server exposes the running game server to MCP clients.
type Server struct {
	view      GameView
	mcpServer *server.MCPServer
}

// NewServer creates the MCP server with all tools registered.
func NewServer(view GameView) *Server {
	s := &Server{view: view}
	s.initMCPServer()
	return s
}

func (s *Server) initMCPServer() {
	s.mcpServer = server.NewMCPServer(
		"Dots and Boxes Server",
		"1.0.0",
		server.WithToolCapabilities(true),
		server.WithInstructions(`Dots and Boxes Game Server - MCP Interface

Read-only inspection of a running server. Gameplay happens over the
WebSocket protocol; these tools let you observe it.

AVAILABLE TOOLS:
- list_sessions: List live player sessions
- list_games: List live games
- get_game: Full board state of one game, rendered as ASCII

BOARD LEGEND:
- + are dots, --- and | are claimed edges
- A digit inside a box is the index of the player who completed it`),
	)
	s.registerTools()
}

func (s *Server) registerTools() {
	s.mcpServer.AddTool(mcp.Tool{
		Name:        "list_sessions",
		Description: "List all live player sessions",
		InputSchema: mcp.ToolInputSchema{
			Type:       "object",
			Properties: map[string]interface{}{},
		},
	}, s.handleListSessions)

	s.mcpServer.AddTool(mcp.Tool{
		Name:        "list_games",
		Description: "List all live games",
		InputSchema: mcp.ToolInputSchema{
			Type:       "object",
			Properties: map[string]interface{}{},
		},
	}, s.handleListGames)

	s.mcpServer.AddTool(mcp.Tool{
		Name:        "get_game",
		Description: "Get full state of a game, including an ASCII rendering of the board",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"game_id": map[string]interface{}{
					"type":        "string",
					"description": "Game ID to retrieve",
				},
			},
			Required: []string{"game_id"},
		},
	}, s.handleGetGame)
}

// MCPServer returns the underlying MCP server for serving.
func (s *Server) MCPServer() *server.MCPServer {
	return s.mcpServer
}

// ServeStdio runs the server over stdin/stdout until the client hangs
// up.
func (s *Server) ServeStdio() error {
	return server.ServeStdio(s.mcpServer)
}

// HTTPHandler returns an http.Handler speaking streamable HTTP, for
// mounting next to the REST API.
func (s *Server) HTTPHandler() http.Handler {
	return server.NewStreamableHTTPServer(s.mcpServer)
}

// Tool handlers

func (s *Server) handleListSessions(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	sessions := s.view.Sessions()
	sort.Slice(sessions, func(i, j int) bool {
		return sessions[i].CreatedAt.Before(sessions[j].CreatedAt)
	})

	var b strings.Builder
	fmt.Fprintf(&b, "Live Sessions (%d):\n\n", len(sessions))
	for _, info := range sessions {
		state := "disconnected"
		if info.Connected {
			state = "connected"
		}
		fmt.Fprintf(&b, "- %s user=%s %s (created %s)\n",
			info.ID, info.Username, state, info.CreatedAt.Format("15:04:05"))
	}
	return mcp.NewToolResultText(b.String()), nil
}

func (s *Server) handleListGames(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	games := s.view.Games()
	sort.Slice(games, func(i, j int) bool {
		return games[i].CreatedAt.Before(games[j].CreatedAt)
	})

	var b strings.Builder
	fmt.Fprintf(&b, "Live Games (%d):\n\n", len(games))
	for _, info := range games {
		names := make([]string, len(info.Players))
		for i, p := range info.Players {
			names[i] = p.Username
		}
		phase := "in progress"
		if info.GameOver {
			phase = "finished"
		}
		fmt.Fprintf(&b, "- %s players=%s %s (created %s)\n",
			info.ID, strings.Join(names, ","), phase, info.CreatedAt.Format("15:04:05"))
	}
	return mcp.NewToolResultText(b.String()), nil
}

func (s *Server) handleGetGame(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args, _ := request.Params.Arguments.(map[string]interface{})
	gameID, _ := args["game_id"].(string)
	if gameID == "" {
		return mcp.NewToolResultError("game_id is required"), nil
	}

	info, state, err := s.view.GameInfo(gameID)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return mcp.NewToolResultText(formatGame(info, state)), nil
}

// Formatting helpers

func formatGame(info match.Info, state *engine.State) string {
	var b strings.Builder

	fmt.Fprintf(&b, "Game: %s\n", info.ID)
	for i, p := range state.Players {
		marker := " "
		if !state.GameOver && i == state.Turn {
			marker = "*"
		}
		fmt.Fprintf(&b, "%s [%d] %s score=%d status=%s\n",
			marker, i, p.Username, state.Scores[i], info.PlayerStatus[i])
	}

	b.WriteString("\n")
	b.WriteString(renderBoard(state))

	if state.GameOver {
		names := make([]string, len(state.Winners))
		for i, w := range state.Winners {
			names[i] = w.Username
		}
		fmt.Fprintf(&b, "\nGame over. Winners: %s\n", strings.Join(names, ", "))
	} else {
		fmt.Fprintf(&b, "\nTurn: %s\n", state.Players[state.Turn].Username)
	}
	return b.String()
}

// renderBoard draws the board as ASCII: dots are +, claimed edges are
// --- and |, and completed boxes carry the owning player's index.
func renderBoard(state *engine.State) string {
	chosen := make(map[engine.Edge]bool, len(state.ChosenEdges))
	for _, ce := range state.ChosenEdges {
		chosen[ce.Edge] = true
	}
	owners := make(map[engine.Box]int, len(state.WonBoxes))
	for _, wb := range state.WonBoxes {
		owners[wb.Box] = wb.Player
	}

	var b strings.Builder
	g := state.Grid
	for i := 0; i <= g.Rows; i++ {
		// Row of dots with the horizontal edges between them.
		b.WriteString("+")
		for j := 0; j < g.Columns; j++ {
			if chosen[engine.NewHorizontalEdge(engine.Dot{X: i, Y: j})] {
				b.WriteString("---+")
			} else {
				b.WriteString("   +")
			}
		}
		b.WriteString("\n")

		if i == g.Rows {
			break
		}

		// Vertical edges with box owners between them.
		for j := 0; j <= g.Columns; j++ {
			if chosen[engine.NewVerticalEdge(engine.Dot{X: i, Y: j})] {
				b.WriteString("|")
			} else {
				b.WriteString(" ")
			}
			if j == g.Columns {
				break
			}
			if owner, ok := owners[engine.Box{Start: engine.Dot{X: i, Y: j}}]; ok {
				fmt.Fprintf(&b, " %d ", owner)
			} else {
				b.WriteString("   ")
			}
		}
		b.WriteString("\n")
	}
	return b.String()
}
