package api

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"sort"
	"strconv"

	"github.com/gorilla/mux"

	"github.com/nkapoor/dots-and-boxes/game/engine"
	"github.com/nkapoor/dots-and-boxes/game/match"
	"github.com/nkapoor/dots-and-boxes/game/session"
)

// Inspector is the read-only view of the running game server exposed
// over HTTP. It is implemented by the game service.
type Inspector interface {
	Sessions() []session.Info
	Games() []match.Info
	GameInfo(id string) (match.Info, *engine.State, error)
	UserCount() int
}

// Server is the HTTP surface: inspection endpoints under /api, the
// WebSocket endpoint at /ws, and optionally the MCP endpoint at /mcp.
type Server struct {
	inspector Inspector
	router    *mux.Router
	log       *slog.Logger
}

// NewServer creates the API server. ws handles WebSocket upgrades; mcp
// may be nil when the MCP endpoint is not exposed.
func NewServer(inspector Inspector, ws http.Handler, mcp http.Handler, logger *slog.Logger) *Server {
	s := &Server{
		inspector: inspector,
		router:    mux.NewRouter(),
		log:       logger,
	}
	s.setupRoutes(ws, mcp)
	return s
}

func (s *Server) setupRoutes(ws http.Handler, mcp http.Handler) {
	api := s.router.PathPrefix("/api").Subrouter()
	api.HandleFunc("/sessions", s.handleListSessions).Methods("GET")
	api.HandleFunc("/games", s.handleListGames).Methods("GET")
	api.HandleFunc("/games/{id}", s.handleGetGame).Methods("GET")
	api.HandleFunc("/stats", s.handleStats).Methods("GET")

	s.router.HandleFunc("/healthz", s.handleHealth).Methods("GET")
	s.router.Handle("/ws", ws)
	if mcp != nil {
		s.router.PathPrefix("/mcp").Handler(mcp)
	}
}

// ServeHTTP implements http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

// Response helpers

func respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func respondError(w http.ResponseWriter, status int, message string) {
	respondJSON(w, status, map[string]string{"error": message})
}

// limitParam parses the limit query parameter, returning fallback when
// absent or unusable.
func limitParam(r *http.Request, fallback int) int {
	limitStr := r.URL.Query().Get("limit")
	if limitStr == "" {
		return fallback
	}
	if l, err := strconv.Atoi(limitStr); err == nil && l > 0 {
		return l
	}
	return fallback
}

func (s *Server) handleListSessions(w http.ResponseWriter, r *http.Request) {
	sessions := s.inspector.Sessions()

	sort.Slice(sessions, func(i, j int) bool {
		return sessions[i].CreatedAt.After(sessions[j].CreatedAt)
	})
	if limit := limitParam(r, len(sessions)); limit < len(sessions) {
		sessions = sessions[:limit]
	}

	respondJSON(w, http.StatusOK, map[string]interface{}{
		"count":    len(sessions),
		"sessions": sessions,
	})
}

func (s *Server) handleListGames(w http.ResponseWriter, r *http.Request) {
	games := s.inspector.Games()

	sort.Slice(games, func(i, j int) bool {
		return games[i].CreatedAt.After(games[j].CreatedAt)
	})
	if limit := limitParam(r, len(games)); limit < len(games) {
		games = games[:limit]
	}

	respondJSON(w, http.StatusOK, map[string]interface{}{
		"count": len(games),
		"games": games,
	})
}

func (s *Server) handleGetGame(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]

	info, state, err := s.inspector.GameInfo(id)
	if err != nil {
		respondError(w, http.StatusNotFound, err.Error())
		return
	}

	respondJSON(w, http.StatusOK, map[string]interface{}{
		"game":  info,
		"state": state,
	})
}

func (s *Server) handleStats(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, map[string]interface{}{
		"users":    s.inspector.UserCount(),
		"sessions": len(s.inspector.Sessions()),
		"games":    len(s.inspector.Games()),
	})
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, map[string]string{"status": "healthy"})
}
