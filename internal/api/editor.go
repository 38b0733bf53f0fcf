package api

import (
	"encoding/json"
	"net/http"

	"github.com/talgya/hamlet/internal/world"
)

// Editor endpoints: POST bodies carry an "op" plus operation fields. All
// operations delegate to the engine's typed editor methods.

type editorRequest struct {
	Op          string `json:"op"`
	ID          string `json:"id,omitempty"`
	Description string `json:"description,omitempty"`
	A           string `json:"a,omitempty"`
	B           string `json:"b,omitempty"`
	Status      string `json:"status,omitempty"`
	Direction   string `json:"direction,omitempty"`
	LocationID  string `json:"location_id,omitempty"`
	Name        string `json:"name,omitempty"`
	BlueprintID string `json:"blueprint_id,omitempty"`
	AgentID     string `json:"agent_id,omitempty"`
	Text        string `json:"text,omitempty"`
	To          string `json:"to,omitempty"`
}

func (s *Server) decodeEditor(w http.ResponseWriter, r *http.Request) (editorRequest, bool) {
	var req editorRequest
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return req, false
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "bad request body", http.StatusBadRequest)
		return req, false
	}
	return req, true
}

func (s *Server) editorResult(w http.ResponseWriter, id string, err error) {
	if err != nil {
		writeError(w, err)
		return
	}
	resp := map[string]any{"ok": true}
	if id != "" {
		resp["id"] = id
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleEditorLocation(w http.ResponseWriter, r *http.Request) {
	req, ok := s.decodeEditor(w, r)
	if !ok {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	switch req.Op {
	case "create":
		s.editorResult(w, req.ID, s.Eng.CreateLocation(req.ID, req.Description))
	case "delete":
		s.editorResult(w, "", s.Eng.DeleteLocation(req.ID))
	default:
		http.Error(w, "unknown op", http.StatusBadRequest)
	}
}

func (s *Server) handleEditorEdge(w http.ResponseWriter, r *http.Request) {
	req, ok := s.decodeEditor(w, r)
	if !ok {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	switch req.Op {
	case "connect":
		dir, _ := world.CanonicalDirection(req.Direction)
		s.editorResult(w, "", s.Eng.ConnectLocations(req.A, req.B, req.Status, dir))
	case "disconnect":
		s.editorResult(w, "", s.Eng.DisconnectLocations(req.A, req.B))
	case "status":
		s.editorResult(w, "", s.Eng.SetEdgeStatus(req.A, req.B, req.Status))
	case "direction":
		s.editorResult(w, "", s.Eng.SetEdgeDirection(req.A, req.B, world.Direction(req.Direction)))
	default:
		http.Error(w, "unknown op", http.StatusBadRequest)
	}
}

func (s *Server) handleEditorAgent(w http.ResponseWriter, r *http.Request) {
	req, ok := s.decodeEditor(w, r)
	if !ok {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	switch req.Op {
	case "spawn":
		id, err := s.Eng.SpawnAgent(req.LocationID, req.Name)
		s.editorResult(w, id, err)
	case "delete":
		s.editorResult(w, "", s.Eng.DeleteAgent(req.ID))
	default:
		http.Error(w, "unknown op", http.StatusBadRequest)
	}
}

func (s *Server) handleEditorItem(w http.ResponseWriter, r *http.Request) {
	req, ok := s.decodeEditor(w, r)
	if !ok {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	switch req.Op {
	case "spawn":
		id, err := s.Eng.SpawnItem(req.LocationID, req.BlueprintID)
		s.editorResult(w, id, err)
	case "delete":
		s.editorResult(w, "", s.Eng.DeleteItem(req.ID))
	default:
		http.Error(w, "unknown op", http.StatusBadRequest)
	}
}

func (s *Server) handleEditorMemory(w http.ResponseWriter, r *http.Request) {
	req, ok := s.decodeEditor(w, r)
	if !ok {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	switch req.Op {
	case "add":
		s.editorResult(w, "", s.Eng.AddAgentMemory(req.AgentID, req.Text))
	case "remove":
		s.editorResult(w, "", s.Eng.RemoveAgentMemory(req.AgentID))
	default:
		http.Error(w, "unknown op", http.StatusBadRequest)
	}
}

func (s *Server) handleEditorGoal(w http.ResponseWriter, r *http.Request) {
	req, ok := s.decodeEditor(w, r)
	if !ok {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	switch req.Op {
	case "add":
		s.editorResult(w, "", s.Eng.AddAgentGoal(req.AgentID, req.Text))
	case "remove":
		s.editorResult(w, "", s.Eng.RemoveAgentGoal(req.AgentID))
	default:
		http.Error(w, "unknown op", http.StatusBadRequest)
	}
}

func (s *Server) handleEditorMove(w http.ResponseWriter, r *http.Request) {
	req, ok := s.decodeEditor(w, r)
	if !ok {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.editorResult(w, "", s.Eng.MoveActor(req.AgentID, req.To))
}
