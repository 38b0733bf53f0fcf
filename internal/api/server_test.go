package api

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/talgya/hamlet/internal/engine"
	"github.com/talgya/hamlet/internal/world"
)

func apiWorld() *world.World {
	w := world.New()
	w.Agents["npc_bard"] = &world.Agent{
		ID: "npc_bard", Name: "Wren", HP: 20,
		Attributes:  map[string]int{"strength": 10, "dexterity": 10, "constitution": 10},
		Slots:       map[string]string{"main_hand": ""},
		HungerStage: world.HungerSated,
	}
	w.LocationsStatic["town_square"] = &world.LocationStatic{
		ID: "town_square", Description: "The square.",
		HexConnections: map[string]string{"E": "market_square"},
	}
	w.LocationsStatic["market_square"] = &world.LocationStatic{
		ID: "market_square", Description: "The market.",
		HexConnections: map[string]string{"W": "town_square"},
	}
	w.LocationsState["town_square"] = &world.LocationState{
		ID: "town_square", Occupants: []string{"npc_bard"},
		Connections: map[string]*world.Connection{
			"market_square": {Status: world.EdgeOpen, Direction: world.DirE},
		},
	}
	w.LocationsState["market_square"] = &world.LocationState{
		ID: "market_square",
		Connections: map[string]*world.Connection{
			"town_square": {Status: world.EdgeOpen, Direction: world.DirW},
		},
	}
	return w
}

func testServer(editorKey string) (*Server, *httptest.Server) {
	eng := engine.New(apiWorld(), engine.Options{Seed: 1})
	s := &Server{Eng: eng, EditorKey: editorKey}
	return s, httptest.NewServer(s.Handler())
}

func postJSON(t *testing.T, url string, body any, headers map[string]string) *http.Response {
	t.Helper()
	raw, err := json.Marshal(body)
	require.NoError(t, err)
	req, err := http.NewRequest(http.MethodPost, url, bytes.NewReader(raw))
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	return resp
}

func TestSnapshotEndpoint(t *testing.T) {
	_, srv := testServer("")
	defer srv.Close()

	resp, err := http.Get(srv.URL + "/api/v1/snapshot")
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var snap engine.Snapshot
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&snap))
	assert.Equal(t, 0, snap.Tick)
	require.Len(t, snap.Agents, 1)
	assert.Equal(t, "Wren", snap.Agents[0].Name)
	require.Len(t, snap.Locations, 2)
}

func TestCommandEndpointSuccess(t *testing.T) {
	s, srv := testServer("")
	defer srv.Close()

	resp := postJSON(t, srv.URL+"/api/v1/command", map[string]any{
		"actor_id": "npc_bard",
		"tool":     "move",
		"params":   map[string]any{"target_location": "market_square"},
	}, nil)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	assert.Contains(t, s.Eng.World.LocationsState["market_square"].Occupants, "npc_bard")
	assert.Equal(t, 1, s.Eng.Tick())
}

func TestCommandEndpointErrorKinds(t *testing.T) {
	_, srv := testServer("")
	defer srv.Close()

	cases := []struct {
		name   string
		body   map[string]any
		status int
		kind   string
	}{
		{
			name:   "unknown tool",
			body:   map[string]any{"actor_id": "npc_bard", "tool": "teleport"},
			status: http.StatusBadRequest,
			kind:   "unknown_tool",
		},
		{
			name:   "unknown actor",
			body:   map[string]any{"actor_id": "npc_ghost", "tool": "wait"},
			status: http.StatusNotFound,
			kind:   "lookup",
		},
		{
			name: "invalid intent",
			body: map[string]any{
				"actor_id": "npc_bard", "tool": "move",
				"params": map[string]any{"target_location": "nowhere"},
			},
			status: http.StatusBadRequest,
			kind:   "invalid_intent",
		},
	}
	for _, tc := range cases {
		resp := postJSON(t, srv.URL+"/api/v1/command", tc.body, nil)
		var payload map[string]any
		require.NoError(t, json.NewDecoder(resp.Body).Decode(&payload))
		resp.Body.Close()
		assert.Equal(t, tc.status, resp.StatusCode, tc.name)
		assert.Equal(t, tc.kind, payload["kind"], tc.name)
	}
}

func TestBusySurfacesConflict(t *testing.T) {
	_, srv := testServer("")
	defer srv.Close()

	resp := postJSON(t, srv.URL+"/api/v1/command", map[string]any{
		"actor_id": "npc_bard", "tool": "wait", "params": map[string]any{"ticks": 5},
	}, nil)
	resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	resp = postJSON(t, srv.URL+"/api/v1/command", map[string]any{
		"actor_id": "npc_bard", "tool": "wait", "params": map[string]any{"ticks": 1},
	}, nil)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusConflict, resp.StatusCode)
}

func TestEditorEndpointsRequireAuth(t *testing.T) {
	_, srv := testServer("secret")
	defer srv.Close()

	body := map[string]any{"op": "spawn", "location_id": "town_square", "name": "Tam"}

	resp := postJSON(t, srv.URL+"/api/v1/editor/agent", body, nil)
	resp.Body.Close()
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)

	resp = postJSON(t, srv.URL+"/api/v1/editor/agent", body, map[string]string{
		"Authorization": "Bearer secret",
	})
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var payload map[string]any
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&payload))
	assert.Equal(t, true, payload["ok"])
	assert.NotEmpty(t, payload["id"])
}

func TestEditorDisabledWithoutKey(t *testing.T) {
	_, srv := testServer("")
	defer srv.Close()

	resp := postJSON(t, srv.URL+"/api/v1/editor/agent", map[string]any{"op": "spawn"}, nil)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)
}

func TestEventsEndpoint(t *testing.T) {
	_, srv := testServer("")
	defer srv.Close()

	resp := postJSON(t, srv.URL+"/api/v1/command", map[string]any{
		"actor_id": "npc_bard", "tool": "stats",
	}, nil)
	resp.Body.Close()

	res, err := http.Get(srv.URL + "/api/v1/events?limit=10")
	require.NoError(t, err)
	defer res.Body.Close()
	var payload struct {
		Events []engine.NarratedEvent `json:"events"`
	}
	require.NoError(t, json.NewDecoder(res.Body).Decode(&payload))
	require.NotEmpty(t, payload.Events)
	assert.Equal(t, world.EventStats, payload.Events[len(payload.Events)-1].Event.Kind)
}
