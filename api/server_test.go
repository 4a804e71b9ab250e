package api

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	gorillaws "github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/wricardo/hospital-run/game/config"
	"github.com/wricardo/hospital-run/game/engine"
	"github.com/wricardo/hospital-run/game/results"
	"github.com/wricardo/hospital-run/game/service"
	"github.com/wricardo/hospital-run/game/session"
	"github.com/wricardo/hospital-run/transport/websocket"
)

var testMaps = map[string]*engine.MapConfig{
	"walk": {
		Name:     "Walk",
		Level:    engine.LevelBasic,
		GridSize: 3,
		Layout:   []string{"P..", "...", "..H"},
	},
	"trap": {
		Name:     "Trap",
		Level:    engine.LevelIntermediate,
		GridSize: 2,
		Layout:   []string{"PZ", "ZH"},
	},
	"armory": {
		Name:     "Armory",
		Level:    engine.LevelAdvanced,
		GridSize: 4,
		Layout:   []string{"PC..", "....", "G...", "ZG.H"},
	},
}

type testEnv struct {
	server  *Server
	service service.GameService
	hub     *websocket.Hub
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	dir := t.TempDir()
	configs, err := config.NewManager(dir)
	require.NoError(t, err)
	for id, m := range testMaps {
		require.NoError(t, configs.SaveConfig(id, m))
	}
	require.NoError(t, configs.SetDefault("walk"))

	svc := service.NewGameService(session.NewManager(), configs, results.NewMemoryStore())

	hub := websocket.NewHub()
	go hub.Run()
	t.Cleanup(hub.Stop)

	return &testEnv{server: NewServer(svc, hub), service: svc, hub: hub}
}

func (e *testEnv) do(t *testing.T, method, path string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()

	var reader *bytes.Reader
	if body != nil {
		data, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(data)
	} else {
		reader = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	rr := httptest.NewRecorder()
	e.server.ServeHTTP(rr, req)
	return rr
}

func (e *testEnv) createSession(t *testing.T, configID string) string {
	t.Helper()
	rr := e.do(t, "POST", "/api/sessions", map[string]interface{}{"config_id": configID, "seed": 7})
	require.Equal(t, http.StatusCreated, rr.Code, rr.Body.String())

	var info service.SessionInfo
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &info))
	return info.ID
}

func decode[T any](t *testing.T, rr *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &v), rr.Body.String())
	return v
}

func TestCreateSession(t *testing.T) {
	env := newTestEnv(t)

	tests := []struct {
		name         string
		body         interface{}
		expectedCode int
		wantConfig   string
	}{
		{"default map", nil, http.StatusCreated, "walk"},
		{"specific map", map[string]interface{}{"config_id": "armory"}, http.StatusCreated, "armory"},
		{"with json suffix", map[string]interface{}{"config_id": "trap.json"}, http.StatusCreated, "trap"},
		{"unknown map", map[string]interface{}{"config_id": "nowhere"}, http.StatusNotFound, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rr := env.do(t, "POST", "/api/sessions", tt.body)
			require.Equal(t, tt.expectedCode, rr.Code, rr.Body.String())
			if tt.wantConfig == "" {
				return
			}
			info := decode[service.SessionInfo](t, rr)
			assert.Equal(t, tt.wantConfig, info.ConfigID)
			assert.Len(t, info.ID, 4)
			assert.Equal(t, engine.Playing, info.GameState.Status)
		})
	}

	t.Run("malformed body", func(t *testing.T) {
		req := httptest.NewRequest("POST", "/api/sessions", strings.NewReader("{nope"))
		rr := httptest.NewRecorder()
		env.server.ServeHTTP(rr, req)
		assert.Equal(t, http.StatusBadRequest, rr.Code)
	})
}

func TestListSessions(t *testing.T) {
	env := newTestEnv(t)
	first := env.createSession(t, "walk")
	time.Sleep(2 * time.Millisecond)
	second := env.createSession(t, "trap")

	t.Run("created ascending", func(t *testing.T) {
		rr := env.do(t, "GET", "/api/sessions?sort=created&order=asc", nil)
		require.Equal(t, http.StatusOK, rr.Code)

		var resp struct {
			Count    int                    `json:"count"`
			Total    int                    `json:"total"`
			Sessions []*service.SessionInfo `json:"sessions"`
		}
		require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
		require.Len(t, resp.Sessions, 2)
		assert.Equal(t, first, resp.Sessions[0].ID)
		assert.Equal(t, second, resp.Sessions[1].ID)
	})

	t.Run("limit", func(t *testing.T) {
		rr := env.do(t, "GET", "/api/sessions?sort=created&limit=1", nil)
		require.Equal(t, http.StatusOK, rr.Code)

		resp := decode[map[string]interface{}](t, rr)
		assert.EqualValues(t, 1, resp["count"])
		assert.EqualValues(t, 2, resp["total"])
		assert.Equal(t, "desc", resp["order"])
	})
}

func TestGetAndDeleteSession(t *testing.T) {
	env := newTestEnv(t)
	id := env.createSession(t, "walk")

	rr := env.do(t, "GET", "/api/sessions/"+id, nil)
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, id, decode[service.SessionInfo](t, rr).ID)

	rr = env.do(t, "GET", "/api/sessions/zzzz", nil)
	assert.Equal(t, http.StatusNotFound, rr.Code)
	assert.Contains(t, decode[map[string]interface{}](t, rr)["error"], "session not found")

	rr = env.do(t, "DELETE", "/api/sessions/"+id, nil)
	require.Equal(t, http.StatusOK, rr.Code)

	rr = env.do(t, "DELETE", "/api/sessions/"+id, nil)
	assert.Equal(t, http.StatusNotFound, rr.Code)
}

func TestAct(t *testing.T) {
	env := newTestEnv(t)
	id := env.createSession(t, "armory")

	t.Run("move onto crossbow", func(t *testing.T) {
		rr := env.do(t, "POST", "/api/sessions/"+id+"/act", map[string]string{"action": "D"})
		require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())

		result := decode[service.ActResult](t, rr)
		assert.True(t, result.Success)
		assert.Equal(t, engine.CrossbowToken, result.Turn.Picked)
		assert.Equal(t, &engine.Position{X: 1, Y: 0}, result.GameState.PlayerPos)
	})

	t.Run("fire down the first column", func(t *testing.T) {
		rr := env.do(t, "POST", "/api/sessions/"+id+"/act", map[string]string{"action": "left"})
		require.Equal(t, http.StatusOK, rr.Code)

		rr = env.do(t, "POST", "/api/sessions/"+id+"/act", map[string]string{"action": "F", "fire_direction": "S"})
		require.Equal(t, http.StatusOK, rr.Code)

		result := decode[service.ActResult](t, rr)
		assert.Equal(t, engine.FireHit, result.Turn.Fire)
		assert.Equal(t, 0, result.GameState.Zombies)
	})

	t.Run("missing action", func(t *testing.T) {
		rr := env.do(t, "POST", "/api/sessions/"+id+"/act", map[string]string{})
		assert.Equal(t, http.StatusBadRequest, rr.Code)
	})

	t.Run("unknown session", func(t *testing.T) {
		rr := env.do(t, "POST", "/api/sessions/nope/act", map[string]string{"action": "W"})
		assert.Equal(t, http.StatusNotFound, rr.Code)
	})

	t.Run("finished game", func(t *testing.T) {
		lost := env.createSession(t, "trap")
		rr := env.do(t, "POST", "/api/sessions/"+lost+"/act", map[string]string{"action": "wait"})
		require.Equal(t, http.StatusOK, rr.Code)
		assert.Equal(t, engine.Lost, decode[service.ActResult](t, rr).GameState.Status)

		rr = env.do(t, "POST", "/api/sessions/"+lost+"/act", map[string]string{"action": "W"})
		assert.Equal(t, http.StatusConflict, rr.Code)
	})
}

func TestBulkAct(t *testing.T) {
	env := newTestEnv(t)
	id := env.createSession(t, "walk")

	rr := env.do(t, "POST", "/api/sessions/"+id+"/bulk-act", map[string][]string{
		"actions": {"D", "D", "S", "S", "A"},
	})
	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())

	result := decode[service.BulkActResult](t, rr)
	assert.Equal(t, 5, result.RequestedActions)
	assert.Equal(t, 4, result.ActionsExecuted)
	assert.Equal(t, "victory", result.StopReasonCode)
	assert.True(t, result.GameOver)

	t.Run("empty list", func(t *testing.T) {
		rr := env.do(t, "POST", "/api/sessions/"+id+"/bulk-act", map[string][]string{"actions": {}})
		assert.Equal(t, http.StatusBadRequest, rr.Code)
	})

	t.Run("result recorded", func(t *testing.T) {
		rr := env.do(t, "GET", "/api/results?limit=5", nil)
		require.Equal(t, http.StatusOK, rr.Code)

		var resp struct {
			Count   int              `json:"count"`
			Results []results.Result `json:"results"`
		}
		require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
		require.Equal(t, 1, resp.Count)
		assert.Equal(t, id, resp.Results[0].SessionID)
		assert.Equal(t, engine.Won, resp.Results[0].Outcome)

		rr = env.do(t, "GET", "/api/stats", nil)
		require.Equal(t, http.StatusOK, rr.Code)
		stats := decode[results.Summary](t, rr)
		assert.Equal(t, 1, stats.Wins)
		assert.Equal(t, 1.0, stats.WinRate)
	})
}

func TestResetAndHistory(t *testing.T) {
	env := newTestEnv(t)
	id := env.createSession(t, "walk")

	for _, action := range []string{"D", "S", "wait"} {
		rr := env.do(t, "POST", "/api/sessions/"+id+"/act", map[string]string{"action": action})
		require.Equal(t, http.StatusOK, rr.Code)
	}

	rr := env.do(t, "GET", "/api/sessions/"+id+"/history?limit=2&order=asc", nil)
	require.Equal(t, http.StatusOK, rr.Code)
	history := decode[service.HistoryResponse](t, rr)
	assert.Equal(t, 3, history.TotalActions)
	require.Len(t, history.Actions, 2)
	assert.Equal(t, "D", history.Actions[0].Action)
	assert.True(t, history.HasNext)

	rr = env.do(t, "POST", "/api/sessions/"+id+"/reset", nil)
	require.Equal(t, http.StatusOK, rr.Code)

	resetResp := decode[service.ResetResult](t, rr)
	assert.Equal(t, 0, resetResp.GameState.Steps)
	assert.Equal(t, &engine.Position{X: 0, Y: 0}, resetResp.GameState.PlayerPos)
	require.Len(t, resetResp.Events, 1)
	assert.Equal(t, service.EventReset, resetResp.Events[0].Type)

	rr = env.do(t, "GET", "/api/sessions/"+id+"/state", nil)
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, []string{"P..", "...", "..H"}, decode[engine.GameState](t, rr).Rows)

	rr = env.do(t, "GET", "/api/sessions/"+id+"/history", nil)
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, 0, decode[service.HistoryResponse](t, rr).TotalActions)

	rr = env.do(t, "POST", "/api/sessions/nope/reset", nil)
	assert.Equal(t, http.StatusNotFound, rr.Code)
}

func TestConfigs(t *testing.T) {
	env := newTestEnv(t)

	t.Run("list", func(t *testing.T) {
		rr := env.do(t, "GET", "/api/configs", nil)
		require.Equal(t, http.StatusOK, rr.Code)
		configs := decode[[]*service.ConfigInfo](t, rr)
		assert.Len(t, configs, len(testMaps))
	})

	t.Run("get", func(t *testing.T) {
		rr := env.do(t, "GET", "/api/configs/armory.json", nil)
		require.Equal(t, http.StatusOK, rr.Code)
		assert.Equal(t, testMaps["armory"].Layout, decode[engine.MapConfig](t, rr).Layout)

		rr = env.do(t, "GET", "/api/configs/missing", nil)
		assert.Equal(t, http.StatusNotFound, rr.Code)
	})

	t.Run("create", func(t *testing.T) {
		rr := env.do(t, "POST", "/api/configs", map[string]interface{}{
			"name":      "Tiny Run",
			"grid_size": 2,
			"layout":    []string{"PH", "Z."},
		})
		require.Equal(t, http.StatusCreated, rr.Code, rr.Body.String())
		assert.Equal(t, "tiny_run", decode[map[string]interface{}](t, rr)["config_id"])

		rr = env.do(t, "GET", "/api/configs/tiny_run", nil)
		require.Equal(t, http.StatusOK, rr.Code)
		assert.Equal(t, engine.LevelAdvanced, decode[engine.MapConfig](t, rr).Level)
	})

	t.Run("create invalid", func(t *testing.T) {
		rr := env.do(t, "POST", "/api/configs", map[string]interface{}{
			"name":      "No Hospital",
			"level":     "basic",
			"grid_size": 2,
			"layout":    []string{"P.", ".."},
		})
		assert.Equal(t, http.StatusBadRequest, rr.Code)

		rr = env.do(t, "POST", "/api/configs", map[string]interface{}{"grid_size": 2})
		assert.Equal(t, http.StatusBadRequest, rr.Code)
	})
}

func TestUnifiedSessions(t *testing.T) {
	env := newTestEnv(t)
	walk := env.createSession(t, "walk")
	trap := env.createSession(t, "trap")

	rr := env.do(t, "POST", "/api/sessions/"+trap+"/act", map[string]string{"action": "wait"})
	require.Equal(t, http.StatusOK, rr.Code)

	t.Run("by config", func(t *testing.T) {
		rr := env.do(t, "GET", "/api/sessions/unified?configId=trap", nil)
		require.Equal(t, http.StatusOK, rr.Code)

		var resp struct {
			ConfigID string                   `json:"config_id"`
			Status   map[string]int           `json:"status"`
			Sessions []map[string]interface{} `json:"sessions"`
		}
		require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
		assert.Equal(t, "trap", resp.ConfigID)
		require.Len(t, resp.Sessions, 1)
		assert.Equal(t, 1, resp.Status["lost"])
	})

	t.Run("by ids", func(t *testing.T) {
		rr := env.do(t, "GET", "/api/sessions/unified?sessionIds="+walk+",,missing", nil)
		require.Equal(t, http.StatusOK, rr.Code)

		var resp struct {
			Sessions []map[string]interface{} `json:"sessions"`
		}
		require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
		require.Len(t, resp.Sessions, 1)
		assert.Equal(t, walk, resp.Sessions[0]["session_id"])
	})
}

func TestHealth(t *testing.T) {
	env := newTestEnv(t)
	rr := env.do(t, "GET", "/health", nil)
	assert.Equal(t, http.StatusOK, rr.Code)
}

func TestWebSocket(t *testing.T) {
	env := newTestEnv(t)
	id := env.createSession(t, "walk")

	server := httptest.NewServer(env.server)
	defer server.Close()
	wsBase := "ws" + strings.TrimPrefix(server.URL, "http") + "/ws"

	t.Run("missing session parameter", func(t *testing.T) {
		resp, err := http.Get(server.URL + "/ws")
		require.NoError(t, err)
		resp.Body.Close()
		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	})

	t.Run("unknown session", func(t *testing.T) {
		_, resp, err := gorillaws.DefaultDialer.Dial(wsBase+"?session=nope", nil)
		require.Error(t, err)
		require.NotNil(t, resp)
		assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	})

	t.Run("state pushed after act", func(t *testing.T) {
		conn, _, err := gorillaws.DefaultDialer.Dial(wsBase+"?session="+id, nil)
		require.NoError(t, err)
		defer conn.Close()

		require.Eventually(t, func() bool { return env.hub.ClientCount(id) == 1 }, time.Second, 5*time.Millisecond)

		rr := env.do(t, "POST", "/api/sessions/"+id+"/act", map[string]string{"action": "D"})
		require.Equal(t, http.StatusOK, rr.Code)

		conn.SetReadDeadline(time.Now().Add(time.Second))
		_, data, err := conn.ReadMessage()
		require.NoError(t, err)

		// queued messages may share a frame
		first := strings.SplitN(string(data), "\n", 2)[0]
		var msg websocket.Message
		require.NoError(t, json.Unmarshal([]byte(first), &msg))
		assert.Equal(t, websocket.EventStateUpdate, msg.Event)
		assert.Equal(t, &engine.Position{X: 1, Y: 0}, msg.GameState.PlayerPos)
	})

	t.Run("reset event pushed", func(t *testing.T) {
		resetID := env.createSession(t, "walk")
		rr := env.do(t, "POST", "/api/sessions/"+resetID+"/act", map[string]string{"action": "D"})
		require.Equal(t, http.StatusOK, rr.Code)

		conn, _, err := gorillaws.DefaultDialer.Dial(wsBase+"?session="+resetID, nil)
		require.NoError(t, err)
		defer conn.Close()

		require.Eventually(t, func() bool { return env.hub.ClientCount(resetID) == 1 }, time.Second, 5*time.Millisecond)

		rr = env.do(t, "POST", "/api/sessions/"+resetID+"/reset", nil)
		require.Equal(t, http.StatusOK, rr.Code)

		msgs := readMessages(t, conn, 2)
		assert.Equal(t, websocket.EventStateUpdate, msgs[0].Event)
		assert.Equal(t, 0, msgs[0].GameState.Steps)

		assert.Equal(t, websocket.EventGameEvents, msgs[1].Event)
		data, err := json.Marshal(msgs[1].Data)
		require.NoError(t, err)
		var events []service.GameEvent
		require.NoError(t, json.Unmarshal(data, &events))
		require.Len(t, events, 1)
		assert.Equal(t, service.EventReset, events[0].Type)
	})
}

// readMessages reads frames until n messages arrived; queued messages may
// share a frame.
func readMessages(t *testing.T, conn *gorillaws.Conn, n int) []websocket.Message {
	t.Helper()

	var msgs []websocket.Message
	conn.SetReadDeadline(time.Now().Add(time.Second))
	for len(msgs) < n {
		_, data, err := conn.ReadMessage()
		require.NoError(t, err)
		for _, line := range strings.Split(strings.TrimSpace(string(data)), "\n") {
			if line == "" {
				continue
			}
			var msg websocket.Message
			require.NoError(t, json.Unmarshal([]byte(line), &msg))
			msgs = append(msgs, msg)
		}
	}
	return msgs
}
