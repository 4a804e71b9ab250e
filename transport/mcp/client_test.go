package mcp

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/wricardo/hospital-run/api"
	"github.com/wricardo/hospital-run/game/config"
	"github.com/wricardo/hospital-run/game/engine"
	"github.com/wricardo/hospital-run/game/results"
	"github.com/wricardo/hospital-run/game/service"
	"github.com/wricardo/hospital-run/game/session"
)

func toolRequest(name string, args map[string]interface{}) mcp.CallToolRequest {
	return mcp.CallToolRequest{
		Params: mcp.CallToolParams{
			Name:      name,
			Arguments: args,
		},
	}
}

func resultText(t *testing.T, result *mcp.CallToolResult) string {
	t.Helper()
	if result == nil || len(result.Content) == 0 {
		t.Fatal("Expected result content")
	}
	text, ok := result.Content[0].(mcp.TextContent)
	if !ok {
		t.Fatal("Expected text content in result")
	}
	return text.Text
}

func TestNewClient(t *testing.T) {
	baseURL := "http://localhost:8080"
	client := NewClient(baseURL + "/")

	if client == nil {
		t.Fatal("Expected client to be created")
	}
	if client.baseURL != baseURL {
		t.Errorf("Expected baseURL %s, got %s", baseURL, client.baseURL)
	}
	if client.httpClient == nil {
		t.Error("Expected HTTP client to be initialized")
	}
	if client.GetMCPServer() == nil {
		t.Error("Expected MCP server to be initialized")
	}
}

func TestClient_apiCall(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Content-Type") != "application/json" {
			t.Errorf("Expected JSON content type, got %q", r.Header.Get("Content-Type"))
		}
		var body map[string]interface{}
		json.NewDecoder(r.Body).Decode(&body)
		json.NewEncoder(w).Encode(map[string]interface{}{"echo": body["action"]})
	}))
	defer server.Close()

	client := NewClient(server.URL)

	var response map[string]interface{}
	err := client.apiCall(context.Background(), "POST", "/api/x", map[string]string{"action": "W"}, &response)
	if err != nil {
		t.Fatalf("apiCall failed: %v", err)
	}
	if response["echo"] != "W" {
		t.Errorf("Expected echo W, got %v", response["echo"])
	}
}

func TestClient_apiCall_Error(t *testing.T) {
	client := NewClient("http://invalid-url-that-does-not-exist:9999")

	if err := client.apiCall(context.Background(), "GET", "/api", nil, nil); err == nil {
		t.Error("Expected error for invalid URL")
	}
}

func TestClient_apiCall_HTTPError(t *testing.T) {
	t.Run("plain body", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusInternalServerError)
			w.Write([]byte("Internal Server Error"))
		}))
		defer server.Close()

		err := NewClient(server.URL).apiCall(context.Background(), "GET", "/api", nil, nil)
		if err == nil || !strings.Contains(err.Error(), "API error: 500") {
			t.Errorf("Expected 'API error: 500', got: %v", err)
		}
	})

	t.Run("json error", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusNotFound)
			json.NewEncoder(w).Encode(map[string]interface{}{"error": "session not found: ab12", "code": 404})
		}))
		defer server.Close()

		err := NewClient(server.URL).apiCall(context.Background(), "GET", "/api", nil, nil)
		if err == nil || err.Error() != "session not found: ab12" {
			t.Errorf("Expected the server's message, got: %v", err)
		}
	})
}

func TestClient_createSession(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != "POST" || r.URL.Path != "/api/sessions" {
			t.Errorf("Expected POST /api/sessions, got %s %s", r.Method, r.URL.Path)
		}

		var body map[string]interface{}
		json.NewDecoder(r.Body).Decode(&body)
		if body["config_id"] != "classic" || body["seed"] != float64(9) {
			t.Errorf("Unexpected request body: %v", body)
		}

		resp := service.SessionInfo{
			ID:       "ab12",
			ConfigID: "classic",
			Seed:     9,
			GameState: &engine.GameState{
				Level:  engine.LevelAdvanced,
				Rows:   []string{"P.", ".H"},
				Status: engine.Playing,
			},
		}
		json.NewEncoder(w).Encode(resp)
	}))
	defer server.Close()

	client := NewClient(server.URL)
	result, err := client.handleCreateSession(context.Background(), toolRequest("create_session", map[string]interface{}{
		"config_id": "classic",
		"seed":      float64(9),
	}))
	if err != nil {
		t.Fatalf("createSession failed: %v", err)
	}

	text := resultText(t, result)
	for _, want := range []string{"Session: ab12", "Map: classic", "Seed: 9", "P.\n.H"} {
		if !strings.Contains(text, want) {
			t.Errorf("Expected %q in result, got: %s", want, text)
		}
	}
}

func TestFormatGameState(t *testing.T) {
	state := &engine.GameState{
		Level:     engine.LevelAdvanced,
		PlayerPos: &engine.Position{X: 1, Y: 0},
		Rows:      []string{".P.", "Z..", "..H"},
		Steps:     3,
		Zombies:   1,
		Status:    engine.Playing,
		Threat:    "CAUTION",
		Inventory: []engine.ItemView{{Token: "G", Name: "Garlic", Lifetime: 7}},
	}

	result := formatGameState(state)

	expected := []string{
		"Level: advanced",
		"Position: (1,0)",
		"Turn: 3",
		"Zombies: 1",
		"Threat: CAUTION",
		"Garlic (7 turns)",
		".P.\nZ..\n..H",
	}
	for _, field := range expected {
		if !strings.Contains(result, field) {
			t.Errorf("Expected '%s' in formatted output, got: %s", field, result)
		}
	}

	if formatGameState(nil) != "No game state available" {
		t.Error("Expected placeholder for nil state")
	}
}

func TestFormatGameState_Terminal(t *testing.T) {
	won := formatGameState(&engine.GameState{Status: engine.Won})
	if !strings.Contains(won, "VICTORY") {
		t.Errorf("Expected victory message, got: %s", won)
	}

	lost := formatGameState(&engine.GameState{Status: engine.Lost})
	if !strings.Contains(lost, "GAME OVER") {
		t.Errorf("Expected game over message, got: %s", lost)
	}
}

func TestFormatActResult(t *testing.T) {
	from := &engine.Position{X: 0, Y: 0}
	to := &engine.Position{X: 1, Y: 0}
	result := formatActResult(&service.ActResult{
		Success: true,
		Turn: &engine.TurnResult{
			Action: "D",
			From:   from,
			To:     to,
			Moved:  true,
			Picked: engine.CrossbowToken,
		},
		Message: "Picked up a crossbow",
		Events: []service.GameEvent{
			{Type: service.EventPickup, Message: "Picked up a crossbow"},
		},
		GameState: &engine.GameState{Rows: []string{".P", ".H"}},
	})

	for _, want := range []string{"Moved (0, 0) → (1, 0)", "Picked up: C", "- pickup: Picked up a crossbow"} {
		if !strings.Contains(result, want) {
			t.Errorf("Expected %q in output, got: %s", want, result)
		}
	}

	fired := formatActResult(&service.ActResult{
		Turn:      &engine.TurnResult{Action: "F", Fire: engine.FireNoWeapon},
		GameState: &engine.GameState{},
	})
	if !strings.Contains(fired, engine.FireNoWeapon.Message()) {
		t.Errorf("Expected fire message, got: %s", fired)
	}
}

func TestFormatHistory(t *testing.T) {
	result := formatHistory(&service.HistoryResponse{
		Actions: []service.ActionEntry{
			{Turn: 2, Action: "F", FireDirection: "S", Fire: engine.FireHit, Status: engine.Playing},
			{Turn: 1, Action: "D", From: &engine.Position{}, To: &engine.Position{X: 1}, Status: engine.Playing},
		},
		TotalActions: 2,
		Page:         1,
		TotalPages:   1,
	})

	for _, want := range []string{"Page 1/1, Total: 2", "Turn 2: F S fire=hit", "Turn 1: D (0, 0)→(1, 0)"} {
		if !strings.Contains(result, want) {
			t.Errorf("Expected %q in output, got: %s", want, result)
		}
	}
}

func TestDescribeToken(t *testing.T) {
	tests := map[string]string{
		"P": "Player",
		"H": "Hospital",
		"Z": "Zombie",
		"T": "Tracking zombie",
		"G": "Garlic",
		"C": "Crossbow",
		".": "Empty",
		"?": "Unknown",
	}
	for token, want := range tests {
		if name, _ := describeToken(token); name != want {
			t.Errorf("describeToken(%q) = %q, want %q", token, name, want)
		}
	}
}

func TestClient_handleGameInstructions(t *testing.T) {
	client := NewClient("http://localhost:8080")

	result, err := client.handleGameInstructions(context.Background(), toolRequest("game_instructions", nil))
	if err != nil {
		t.Fatalf("handleGameInstructions failed: %v", err)
	}

	text := resultText(t, result)
	for _, content := range []string{"GAME OBJECTIVE", "GRID LEGEND", "Tracking zombie", "Crossbow"} {
		if !strings.Contains(text, content) {
			t.Errorf("Expected '%s' in instructions", content)
		}
	}
}

// newBackend starts the real REST API over an in-memory service
func newBackend(t *testing.T) *httptest.Server {
	t.Helper()

	configs, err := config.NewManager(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	walk := &engine.MapConfig{
		Name:     "Walk",
		Level:    engine.LevelBasic,
		GridSize: 3,
		Layout:   []string{"P..", "...", "..H"},
	}
	if err := configs.SaveConfig("walk", walk); err != nil {
		t.Fatal(err)
	}

	svc := service.NewGameService(session.NewManager(), configs, results.NewMemoryStore())
	server := httptest.NewServer(api.NewServer(svc, nil))
	t.Cleanup(server.Close)
	return server
}

func TestClient_EndToEnd(t *testing.T) {
	backend := newBackend(t)
	client := NewClient(backend.URL)
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	var info service.SessionInfo
	if err := client.apiCall(ctx, "POST", "/api/sessions", map[string]interface{}{"config_id": "walk"}, &info); err != nil {
		t.Fatalf("create session: %v", err)
	}

	result, err := client.handleAct(ctx, toolRequest("act", map[string]interface{}{
		"session_id": info.ID,
		"action":     "D",
		"intent":     "head for the hospital",
	}))
	if err != nil {
		t.Fatal(err)
	}
	if text := resultText(t, result); !strings.Contains(text, ".P.") {
		t.Errorf("Expected the player to have moved, got: %s", text)
	}

	result, err = client.handleBulkAct(ctx, toolRequest("bulk_act", map[string]interface{}{
		"session_id": info.ID,
		"actions":    []interface{}{"D", "S", "S", "A"},
	}))
	if err != nil {
		t.Fatal(err)
	}
	text := resultText(t, result)
	for _, want := range []string{"Executed 3/4 actions", "victory", "VICTORY"} {
		if !strings.Contains(text, want) {
			t.Errorf("Expected %q in bulk result, got: %s", want, text)
		}
	}

	result, err = client.handleDescribeCell(ctx, toolRequest("describe_cell", map[string]interface{}{
		"session_id": info.ID,
		"x":          float64(2),
		"y":          float64(2),
	}))
	if err != nil {
		t.Fatal(err)
	}
	if text := resultText(t, result); !strings.Contains(text, "Type: Player") {
		t.Errorf("Expected the player on the hospital cell, got: %s", text)
	}

	result, err = client.handleDescribeCell(ctx, toolRequest("describe_cell", map[string]interface{}{
		"session_id": info.ID,
		"x":          float64(9),
		"y":          float64(0),
	}))
	if err != nil {
		t.Fatal(err)
	}
	if !result.IsError {
		t.Error("Expected out of bounds error")
	}

	result, err = client.handleGameStats(ctx, toolRequest("game_stats", map[string]interface{}{}))
	if err != nil {
		t.Fatal(err)
	}
	if text := resultText(t, result); !strings.Contains(text, "Wins: 1") {
		t.Errorf("Expected one win in stats, got: %s", text)
	}

	result, err = client.handleActionHistory(ctx, toolRequest("action_history", map[string]interface{}{
		"session_id": info.ID,
		"order":      "asc",
	}))
	if err != nil {
		t.Fatal(err)
	}
	if text := resultText(t, result); !strings.Contains(text, "Total: 4") {
		t.Errorf("Expected four turns in history, got: %s", text)
	}

	result, err = client.handleGameState(ctx, toolRequest("game_state", map[string]interface{}{"session_id": "nope"}))
	if err != nil {
		t.Fatal(err)
	}
	if !result.IsError {
		t.Error("Expected an error result for an unknown session")
	}
}
