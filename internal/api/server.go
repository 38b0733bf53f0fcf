// Package api serves the world over HTTP and WebSocket. The adapter is a
// thin translator: it converts requests into commands, submits them
// through the engine's single synchronized entry point, and reads back
// snapshots. It never mutates world state directly.
package api

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"sync"

	"github.com/gorilla/websocket"

	"github.com/talgya/hamlet/internal/engine"
	"github.com/talgya/hamlet/internal/planner"
	"github.com/talgya/hamlet/internal/simerr"
)

// Server exposes the engine over HTTP. The mutex is the synchronized
// entry point required by the engine's single-threaded model.
type Server struct {
	Eng *engine.Engine
	// EditorKey guards the editor endpoints; empty disables them.
	EditorKey string

	mu       sync.Mutex
	upgrader websocket.Upgrader

	wsMu      sync.Mutex
	wsClients map[*websocket.Conn]bool
}

// Handler builds the route table.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/api/v1/snapshot", s.handleSnapshot)
	mux.HandleFunc("/api/v1/events", s.handleEvents)
	mux.HandleFunc("/api/v1/command", s.handleCommand)
	mux.HandleFunc("/api/v1/step", s.handleStep)
	mux.HandleFunc("/api/v1/ws", s.handleWS)

	mux.HandleFunc("/api/v1/editor/location", s.editorOnly(s.handleEditorLocation))
	mux.HandleFunc("/api/v1/editor/edge", s.editorOnly(s.handleEditorEdge))
	mux.HandleFunc("/api/v1/editor/agent", s.editorOnly(s.handleEditorAgent))
	mux.HandleFunc("/api/v1/editor/item", s.editorOnly(s.handleEditorItem))
	mux.HandleFunc("/api/v1/editor/memory", s.editorOnly(s.handleEditorMemory))
	mux.HandleFunc("/api/v1/editor/goal", s.editorOnly(s.handleEditorGoal))
	mux.HandleFunc("/api/v1/editor/move", s.editorOnly(s.handleEditorMove))
	return mux
}

// Start begins serving in a goroutine, the way the simulation binary
// wires it.
func (s *Server) Start(port int) {
	addr := fmt.Sprintf(":%d", port)
	slog.Info("HTTP API starting", "addr", addr, "editor_auth", s.EditorKey != "")
	go func() {
		if err := http.ListenAndServe(addr, s.Handler()); err != nil {
			slog.Error("HTTP server error", "error", err)
		}
	}()
}

func (s *Server) editorOnly(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if s.EditorKey == "" {
			http.Error(w, "editor endpoints disabled", http.StatusForbidden)
			return
		}
		if r.Header.Get("Authorization") != "Bearer "+s.EditorKey {
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}
		next(w, r)
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Debug("response encode failed", "error", err)
	}
}

// errorStatus maps the error taxonomy onto HTTP statuses.
func errorStatus(err error) int {
	switch simerr.KindOf(err) {
	case simerr.LookupKind:
		return http.StatusNotFound
	case simerr.BusyKind:
		return http.StatusConflict
	case simerr.InvalidIntentKind, simerr.UnknownToolKind:
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

func writeError(w http.ResponseWriter, err error) {
	kind := simerr.KindOf(err)
	writeJSON(w, errorStatus(err), map[string]any{
		"error": err.Error(),
		"kind":  string(kind),
	})
}

// handleSnapshot returns the read-only world projection.
func (s *Server) handleSnapshot(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	s.mu.Lock()
	snap := s.Eng.Snapshot()
	s.mu.Unlock()
	writeJSON(w, http.StatusOK, snap)
}

// handleEvents returns recently narrated events, newest last.
func (s *Server) handleEvents(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	limit := 50
	if raw := r.URL.Query().Get("limit"); raw != "" {
		if n, err := strconv.Atoi(raw); err == nil && n > 0 {
			limit = n
		}
	}
	s.mu.Lock()
	events := s.Eng.RecentEvents(limit)
	s.mu.Unlock()
	writeJSON(w, http.StatusOK, map[string]any{"events": events})
}

type commandRequest struct {
	ActorID string         `json:"actor_id"`
	Tool    string         `json:"tool"`
	Params  map[string]any `json:"params"`
}

// handleCommand is the submit_command surface: the command is validated
// and enqueued for the actor, then time advances by one tick so the
// events drain.
func (s *Server) handleCommand(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	var req commandRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "bad request body", http.StatusBadRequest)
		return
	}
	if req.Params == nil {
		req.Params = map[string]any{}
	}
	cmd := planner.Command{Tool: req.Tool, Params: req.Params}

	s.mu.Lock()
	err := s.Eng.ProcessCommand(req.ActorID, cmd)
	if err == nil {
		s.Eng.AdvanceTick()
	}
	var snap engine.Snapshot
	if err == nil {
		snap = s.Eng.Snapshot()
	}
	s.mu.Unlock()

	if err != nil {
		writeError(w, err)
		return
	}
	s.broadcastSnapshot(snap)
	writeJSON(w, http.StatusOK, map[string]any{"ok": true, "tick": snap.Tick})
}

// handleStep runs one full NPC round (every eligible NPC acts once, then
// one tick).
func (s *Server) handleStep(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	s.mu.Lock()
	s.Eng.NPCRound()
	snap := s.Eng.Snapshot()
	s.mu.Unlock()
	s.broadcastSnapshot(snap)
	writeJSON(w, http.StatusOK, map[string]any{"ok": true, "tick": snap.Tick})
}

// StepRound runs one NPC round from outside an HTTP request (the
// autoplay pump) and pushes the result to socket clients.
func (s *Server) StepRound() {
	s.mu.Lock()
	s.Eng.NPCRound()
	snap := s.Eng.Snapshot()
	s.mu.Unlock()
	s.broadcastSnapshot(snap)
}

// wsFrame is the envelope pushed to socket clients.
type wsFrame struct {
	Type     string           `json:"type"`
	Snapshot *engine.Snapshot `json:"snapshot,omitempty"`
	Error    string           `json:"error,omitempty"`
}

// handleWS upgrades to a WebSocket that receives a snapshot after every
// tick and accepts command frames shaped like the POST body.
func (s *Server) handleWS(w http.ResponseWriter, r *http.Request) {
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		slog.Debug("ws upgrade failed", "error", err)
		return
	}
	s.wsMu.Lock()
	if s.wsClients == nil {
		s.wsClients = make(map[*websocket.Conn]bool)
	}
	s.wsClients[conn] = true
	s.wsMu.Unlock()

	s.mu.Lock()
	snap := s.Eng.Snapshot()
	s.mu.Unlock()
	conn.WriteJSON(wsFrame{Type: "snapshot", Snapshot: &snap})

	go s.readLoop(conn)
}

func (s *Server) readLoop(conn *websocket.Conn) {
	defer func() {
		s.wsMu.Lock()
		delete(s.wsClients, conn)
		s.wsMu.Unlock()
		conn.Close()
	}()
	for {
		var req commandRequest
		if err := conn.ReadJSON(&req); err != nil {
			return
		}
		if req.Params == nil {
			req.Params = map[string]any{}
		}
		s.mu.Lock()
		err := s.Eng.ProcessCommand(req.ActorID, planner.Command{Tool: req.Tool, Params: req.Params})
		if err == nil {
			s.Eng.AdvanceTick()
		}
		snap := s.Eng.Snapshot()
		s.mu.Unlock()
		if err != nil {
			conn.WriteJSON(wsFrame{Type: "error", Error: err.Error()})
			continue
		}
		s.broadcastSnapshot(snap)
	}
}

// broadcastSnapshot pushes the projection to every connected socket,
// dropping slow clients rather than blocking the engine.
func (s *Server) broadcastSnapshot(snap engine.Snapshot) {
	s.wsMu.Lock()
	defer s.wsMu.Unlock()
	for conn := range s.wsClients {
		if err := conn.WriteJSON(wsFrame{Type: "snapshot", Snapshot: &snap}); err != nil {
			conn.Close()
			delete(s.wsClients, conn)
		}
	}
}
