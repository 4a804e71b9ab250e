package mcp

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
	"github.com/wricardo/hospital-run/game/engine"
	"github.com/wricardo/hospital-run/game/results"
	"github.com/wricardo/hospital-run/game/service"
)

// Client is a thin MCP client that proxies to the REST API
type Client struct {
	baseURL    string
	httpClient *http.Client
	mcpServer  *server.MCPServer
}

// NewClient creates a new MCP client that calls the REST API
func NewClient(baseURL string) *Client {
	c := &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{
			Timeout: 10 * time.Second,
		},
	}

	c.initMCPServer()
	return c
}

// initMCPServer initializes the MCP server with all tools
func (c *Client) initMCPServer() {
	c.mcpServer = server.NewMCPServer(
		"Hospital Run",
		"1.0.0",
		server.WithToolCapabilities(true),
		server.WithInstructions(`Hospital Run - MCP Interface

This is a thin client that proxies all requests to the REST API server.

GAME OBJECTIVE:
Walk the player (P) onto the hospital (H) before a zombie (Z, T) infects you.

AVAILABLE TOOLS:
- create_session: Create a new game session on a map
- get_session: Get session details
- list_sessions: List all active sessions
- game_state: Get current game state
- act: Play one turn (W/A/S/D to move, F to fire) - requires intent explanation
- bulk_act: Play several turns at once - requires intent explanation
- reset_game: Replay the map from the start
- action_history: View past turns
- list_configs: List available maps
- describe_cell: Get detailed info about one grid cell
- game_stats: Win/loss statistics of finished games
- game_instructions: Get the full rules

NOTE: The 'intent' parameter on act/bulk_act serves as rubber duck debugging - explain your reasoning!`),
	)

	c.registerTools()
}

func sessionIDProperty() map[string]interface{} {
	return map[string]interface{}{
		"type":        "string",
		"description": "Session ID",
	}
}

// registerTools registers all MCP tools
func (c *Client) registerTools() {
	// Session management
	c.mcpServer.AddTool(mcp.Tool{
		Name:        "create_session",
		Description: "Create a new game session with optional map selection",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"config_id": map[string]interface{}{
					"type":        "string",
					"description": "ID of the map to play (optional, see list_configs)",
				},
				"seed": map[string]interface{}{
					"type":        "integer",
					"description": "Seed for zombie movement (optional, same seed replays the same game)",
				},
			},
		},
	}, c.handleCreateSession)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "list_sessions",
		Description: "List all active game sessions",
		InputSchema: mcp.ToolInputSchema{
			Type:       "object",
			Properties: map[string]interface{}{},
		},
	}, c.handleListSessions)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "get_session",
		Description: "Get details of a specific session",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"session_id": sessionIDProperty(),
			},
			Required: []string{"session_id"},
		},
	}, c.handleGetSession)

	// Game operations
	c.mcpServer.AddTool(mcp.Tool{
		Name:        "game_state",
		Description: "Get the current game state",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"session_id": sessionIDProperty(),
			},
			Required: []string{"session_id"},
		},
	}, c.handleGameState)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "act",
		Description: "Play one turn: move the player or fire the crossbow, then every zombie moves",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"session_id": sessionIDProperty(),
				"action": map[string]interface{}{
					"type":        "string",
					"description": "W (up), A (left), S (down), D (right) or F (fire). Anything else passes the turn",
				},
				"fire_direction": map[string]interface{}{
					"type":        "string",
					"enum":        []string{"W", "A", "S", "D"},
					"description": "Direction to fire when action is F",
				},
				"intent": map[string]interface{}{
					"type":        "string",
					"description": "Brief explanation of the intent behind this turn (serves as a rubber duck to help explain your reasoning)",
				},
			},
			Required: []string{"session_id", "action"},
		},
	}, c.handleAct)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "bulk_act",
		Description: fmt.Sprintf("Play up to %d turns in sequence, stopping when the game ends", engine.MaxBulkActions),
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"session_id": sessionIDProperty(),
				"actions": map[string]interface{}{
					"type": "array",
					"items": map[string]interface{}{
						"type": "string",
					},
					"description": `Actions in order, e.g. ["D", "D", "F:S", "S"]. Fire carries its direction after a colon`,
				},
				"intent": map[string]interface{}{
					"type":        "string",
					"description": "Brief explanation of the intent behind this sequence (serves as a rubber duck to help explain your reasoning)",
				},
			},
			Required: []string{"session_id", "actions"},
		},
	}, c.handleBulkAct)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "reset_game",
		Description: "Reset the game to its initial state; the zombies replay the same moves",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"session_id": sessionIDProperty(),
			},
			Required: []string{"session_id"},
		},
	}, c.handleReset)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "action_history",
		Description: "Get the turn history for a session",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"session_id": sessionIDProperty(),
				"page": map[string]interface{}{
					"type":        "integer",
					"description": "Page number",
				},
				"limit": map[string]interface{}{
					"type":        "integer",
					"description": "Items per page",
				},
				"order": map[string]interface{}{
					"type":        "string",
					"enum":        []string{"asc", "desc"},
					"description": "Oldest or newest first (default desc)",
				},
			},
			Required: []string{"session_id"},
		},
	}, c.handleActionHistory)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "list_configs",
		Description: "List available maps",
		InputSchema: mcp.ToolInputSchema{
			Type:       "object",
			Properties: map[string]interface{}{},
		},
	}, c.handleListConfigs)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "describe_cell",
		Description: "Get detailed information about a specific cell in the grid",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"session_id": sessionIDProperty(),
				"x": map[string]interface{}{
					"type":        "integer",
					"description": "X coordinate (column) of the cell to describe (0-based)",
				},
				"y": map[string]interface{}{
					"type":        "integer",
					"description": "Y coordinate (row) of the cell to describe (0-based)",
				},
			},
			Required: []string{"session_id", "x", "y"},
		},
	}, c.handleDescribeCell)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "game_stats",
		Description: "Win/loss statistics and the most recent finished games",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"limit": map[string]interface{}{
					"type":        "integer",
					"description": "How many recent games to list",
				},
			},
		},
	}, c.handleGameStats)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "game_instructions",
		Description: "Get comprehensive game instructions and rules",
		InputSchema: mcp.ToolInputSchema{
			Type:       "object",
			Properties: map[string]interface{}{},
		},
	}, c.handleGameInstructions)
}

// GetMCPServer returns the underlying MCP server for serving
func (c *Client) GetMCPServer() *server.MCPServer {
	return c.mcpServer
}

// apiCall performs a REST request and decodes the JSON response into result
func (c *Client) apiCall(ctx context.Context, method, path string, body interface{}, result interface{}) error {
	var reqBody io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return err
		}
		reqBody = bytes.NewBuffer(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reqBody)
	if err != nil {
		return err
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		var errResp struct {
			Error string `json:"error"`
		}
		if json.NewDecoder(resp.Body).Decode(&errResp) == nil && errResp.Error != "" {
			return fmt.Errorf("%s", errResp.Error)
		}
		return fmt.Errorf("API error: %d", resp.StatusCode)
	}

	if result != nil {
		return json.NewDecoder(resp.Body).Decode(result)
	}
	return nil
}

func sessionPath(sessionID, suffix string) string {
	return "/api/sessions/" + url.PathEscape(sessionID) + suffix
}

// intArg reads a JSON number argument
func intArg(args map[string]interface{}, key string) (int, bool) {
	switch v := args[key].(type) {
	case float64:
		return int(v), true
	case int:
		return v, true
	case int64:
		return int(v), true
	}
	return 0, false
}

// Tool handlers

func (c *Client) handleCreateSession(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := request.GetArguments()

	body := map[string]interface{}{}
	if configID, _ := args["config_id"].(string); configID != "" {
		body["config_id"] = configID
	}
	if seed, ok := intArg(args, "seed"); ok {
		body["seed"] = seed
	}

	var session service.SessionInfo
	if err := c.apiCall(ctx, "POST", "/api/sessions", body, &session); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	return mcp.NewToolResultText(formatSessionInfo(&session)), nil
}

func (c *Client) handleListSessions(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	var response struct {
		Count    int                   `json:"count"`
		Sessions []service.SessionInfo `json:"sessions"`
	}

	if err := c.apiCall(ctx, "GET", "/api/sessions", nil, &response); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Active Sessions (%d):\n\n", response.Count)
	for _, s := range response.Sessions {
		status := engine.Playing
		if s.GameState != nil {
			status = s.GameState.Status
		}
		fmt.Fprintf(&b, "- %s (Map: %s, Status: %s, Created: %s)\n",
			s.ID, s.ConfigID, status, s.CreatedAt.Format("15:04:05"))
	}

	return mcp.NewToolResultText(b.String()), nil
}

func (c *Client) handleGetSession(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	sessionID, _ := request.GetArguments()["session_id"].(string)

	var session service.SessionInfo
	if err := c.apiCall(ctx, "GET", sessionPath(sessionID, ""), nil, &session); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	return mcp.NewToolResultText(formatSessionInfo(&session)), nil
}

func (c *Client) handleGameState(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	sessionID, _ := request.GetArguments()["session_id"].(string)

	var state engine.GameState
	if err := c.apiCall(ctx, "GET", sessionPath(sessionID, "/state"), nil, &state); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	return mcp.NewToolResultText(formatGameState(&state)), nil
}

func (c *Client) handleAct(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := request.GetArguments()
	sessionID, _ := args["session_id"].(string)
	action, _ := args["action"].(string)
	fireDirection, _ := args["fire_direction"].(string)
	// intent is only for the caller's own reasoning

	body := map[string]interface{}{
		"action":         action,
		"fire_direction": fireDirection,
	}

	var result service.ActResult
	if err := c.apiCall(ctx, "POST", sessionPath(sessionID, "/act"), body, &result); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	return mcp.NewToolResultText(formatActResult(&result)), nil
}

func (c *Client) handleBulkAct(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := request.GetArguments()
	sessionID, _ := args["session_id"].(string)
	actionsRaw, _ := args["actions"].([]interface{})

	actions := make([]string, 0, len(actionsRaw))
	for _, a := range actionsRaw {
		if action, ok := a.(string); ok {
			actions = append(actions, action)
		}
	}

	var result service.BulkActResult
	if err := c.apiCall(ctx, "POST", sessionPath(sessionID, "/bulk-act"), map[string]interface{}{"actions": actions}, &result); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	return mcp.NewToolResultText(formatBulkActResult(sessionID, &result)), nil
}

func (c *Client) handleReset(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	sessionID, _ := request.GetArguments()["session_id"].(string)

	var response struct {
		Message string            `json:"message"`
		State   *engine.GameState `json:"state"`
	}
	if err := c.apiCall(ctx, "POST", sessionPath(sessionID, "/reset"), nil, &response); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	return mcp.NewToolResultText(fmt.Sprintf("%s\n\n%s", response.Message, formatGameState(response.State))), nil
}

func (c *Client) handleActionHistory(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := request.GetArguments()
	sessionID, _ := args["session_id"].(string)

	params := url.Values{}
	if page, ok := intArg(args, "page"); ok {
		params.Set("page", fmt.Sprint(page))
	}
	if limit, ok := intArg(args, "limit"); ok {
		params.Set("limit", fmt.Sprint(limit))
	}
	if order, _ := args["order"].(string); order != "" {
		params.Set("order", order)
	}

	path := sessionPath(sessionID, "/history")
	if len(params) > 0 {
		path += "?" + params.Encode()
	}

	var history service.HistoryResponse
	if err := c.apiCall(ctx, "GET", path, nil, &history); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	return mcp.NewToolResultText(formatHistory(&history)), nil
}

func (c *Client) handleListConfigs(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	var configs []service.ConfigInfo
	if err := c.apiCall(ctx, "GET", "/api/configs", nil, &configs); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	var b strings.Builder
	b.WriteString("Available Maps:\n\n")
	for _, cfg := range configs {
		fmt.Fprintf(&b, "• %s (config_id: %s)\n", cfg.Name, cfg.ConfigID)
		if cfg.Description != "" {
			fmt.Fprintf(&b, "  %s\n", cfg.Description)
		}
		fmt.Fprintf(&b, "  Level: %s, Grid: %dx%d, Zombies: %d\n\n", cfg.Level, cfg.GridSize, cfg.GridSize, cfg.Zombies)
	}

	return mcp.NewToolResultText(b.String()), nil
}

func (c *Client) handleDescribeCell(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := request.GetArguments()
	sessionID, _ := args["session_id"].(string)
	x, okX := intArg(args, "x")
	y, okY := intArg(args, "y")
	if !okX || !okY {
		return mcp.NewToolResultError("x and y are required integers"), nil
	}

	var state engine.GameState
	if err := c.apiCall(ctx, "GET", sessionPath(sessionID, "/state"), nil, &state); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	size := state.GridSize
	if x < 0 || x >= size || y < 0 || y >= size {
		return mcp.NewToolResultError(fmt.Sprintf("Coordinates (%d, %d) are out of bounds. Grid size is %dx%d (0-%d for both x and y)",
			x, y, size, size, size-1)), nil
	}

	token := string([]rune(state.Rows[y])[x])
	name, description := describeToken(token)

	result := fmt.Sprintf(`Cell at position (%d, %d):
━━━━━━━━━━━━━━━━━━━━━━━━
Character: %s
Type: %s
Description: %s`, x, y, token, name, description)

	if state.PlayerPos != nil {
		result += fmt.Sprintf("\nDistance from player: %d", engine.ManhattanDistance(*state.PlayerPos, engine.Position{X: x, Y: y}))
	}

	return mcp.NewToolResultText(result), nil
}

// describeToken names a grid token and says what it means for the player
func describeToken(token string) (name, description string) {
	switch token {
	case engine.PlayerToken:
		return "Player", "Your current position"
	case engine.HospitalToken:
		return "Hospital", "Step onto it to win"
	case engine.ZombieToken:
		return "Zombie", "Moves to a random neighbouring cell each turn and infects you if it reaches you"
	case engine.TrackingZombieToken:
		return "Tracking zombie", "Moves toward you each turn and infects you if it reaches you"
	case engine.GarlicToken:
		return "Garlic", fmt.Sprintf("Pick it up to keep zombies off you for %d turns", engine.GarlicDurability)
	case engine.CrossbowToken:
		return "Crossbow", fmt.Sprintf("Pick it up to fire at zombies for %d turns", engine.CrossbowDurability)
	case string(engine.EmptyCell):
		return "Empty", "Free cell"
	}
	return "Unknown", "Unknown token"
}

func (c *Client) handleGameStats(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	limit := 5
	if l, ok := intArg(request.GetArguments(), "limit"); ok && l > 0 {
		limit = l
	}

	var summary results.Summary
	if err := c.apiCall(ctx, "GET", "/api/stats", nil, &summary); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	var recent struct {
		Results []results.Result `json:"results"`
	}
	if err := c.apiCall(ctx, "GET", fmt.Sprintf("/api/results?limit=%d", limit), nil, &recent); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	return mcp.NewToolResultText(formatStats(&summary, recent.Results)), nil
}

func (c *Client) handleGameInstructions(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return mcp.NewToolResultText(instructions), nil
}

const instructions = `Hospital Run - Complete Instructions

GAME OBJECTIVE:
Reach the hospital (H) with the player (P). On intermediate and advanced
maps a zombie that reaches you infects you and the game is lost.

TURNS:
Every action is one turn. First your action is applied, then every entity
on the board acts once, row by row from the top left.

ACTIONS:
• W - move up        • S - move down
• A - move left      • D - move right
• F - fire the crossbow in fire_direction (W/A/S/D)
• anything else passes the turn
Moving off the board does nothing. Moving onto a cell replaces whatever was
there, so walking onto a zombie removes it.

GRID LEGEND:
• P - Player
• H - Hospital
• Z - Zombie: tries its neighbours in random order, steps into the first free one
• T - Tracking zombie: tries the neighbour closest to you first
• G - Garlic (advanced): while held, zombies cannot infect you
• C - Crossbow (advanced): while held, F removes the nearest zombie in a line
• . - Empty

LEVELS:
• basic: no zombies, you cannot lose
• intermediate: zombies infect, no pickups
• advanced: tracking zombies, garlic and crossbows

PICKUPS:
Walking onto a pickup puts it in your inventory. Garlic lasts 10 turns and
a crossbow 5. Items wear out one turn at a time and disappear at zero.

STRATEGY:
• Read the threat grade in game_state: SAFE, PROTECTED, CAUTION or DANGER
• Do not end a turn next to a zombie without garlic
• A crossbow shot passes over pickups and the hospital
• Use bulk_act for safe stretches and act near zombies
• reset_game replays the same zombie moves, so a plan can be refined

SESSIONS:
Each session has a 4-character ID and its own board. Pass a seed to
create_session to get the same game again later.`

// Formatting helpers

func formatSessionInfo(session *service.SessionInfo) string {
	return fmt.Sprintf("Session: %s\nMap: %s\nSeed: %d\nCreated: %s\n\n%s",
		session.ID, session.ConfigID, session.Seed,
		session.CreatedAt.Format("2006-01-02 15:04:05"),
		formatGameState(session.GameState))
}

func formatGameState(state *engine.GameState) string {
	if state == nil {
		return "No game state available"
	}

	var b strings.Builder

	pos := "none"
	if state.PlayerPos != nil {
		pos = fmt.Sprintf("(%d,%d)", state.PlayerPos.X, state.PlayerPos.Y)
	}
	fmt.Fprintf(&b, "Level: %s | Position: %s | Turn: %d | Zombies: %d\n",
		state.Level, pos, state.Steps, state.Zombies)
	if state.Threat != "" {
		fmt.Fprintf(&b, "Threat: %s\n", state.Threat)
	}

	if len(state.Inventory) > 0 {
		items := make([]string, 0, len(state.Inventory))
		for _, item := range state.Inventory {
			items = append(items, fmt.Sprintf("%s (%d turns)", item.Name, item.Lifetime))
		}
		fmt.Fprintf(&b, "Inventory: %s\n", strings.Join(items, ", "))
	}
	b.WriteString("\n")

	for _, row := range state.Rows {
		b.WriteString(row)
		b.WriteString("\n")
	}

	switch state.Status {
	case engine.Won:
		b.WriteString("\n🏥 VICTORY! You reached the hospital.")
	case engine.Lost:
		b.WriteString("\n🧟 GAME OVER - you were infected.")
	}

	return b.String()
}

func formatActResult(result *service.ActResult) string {
	var b strings.Builder

	if result.Turn != nil {
		t := result.Turn
		switch {
		case t.Fire != "":
			fmt.Fprintf(&b, "Fire: %s\n", t.Fire.Message())
		case t.Moved:
			fmt.Fprintf(&b, "Moved %s → %s\n", t.From, t.To)
		default:
			b.WriteString("Did not move\n")
		}
		if t.Picked != "" {
			fmt.Fprintf(&b, "Picked up: %s\n", t.Picked)
		}
	}
	if result.Message != "" {
		fmt.Fprintf(&b, "Message: %s\n", result.Message)
	}

	writeEvents(&b, result.Events)

	b.WriteString("\n")
	b.WriteString(formatGameState(result.GameState))
	return b.String()
}

func formatBulkActResult(sessionID string, result *service.BulkActResult) string {
	var b strings.Builder

	fmt.Fprintf(&b, "Session: %s\n", sessionID)
	fmt.Fprintf(&b, "Executed %d/%d actions\n", result.ActionsExecuted, result.RequestedActions)
	if result.Truncated {
		fmt.Fprintf(&b, "Truncated to the first %d actions\n", result.Limit)
	}
	if result.StopReasonCode != "" {
		fmt.Fprintf(&b, "Stopped on turn %d: %s\n", result.StoppedOnTurn, result.StopReasonCode)
	}

	if len(result.Turns) > 0 {
		b.WriteString("\nTurns (this call):\n")
		for _, t := range result.Turns {
			b.WriteString(formatTurnLine(t))
		}
	}

	writeEvents(&b, result.Events)

	b.WriteString("\n")
	b.WriteString(formatGameState(result.GameState))
	return b.String()
}

func formatTurnLine(t service.TurnInfo) string {
	line := fmt.Sprintf("%2d. %s", t.Idx, t.Action)
	if t.From != nil && t.To != nil && *t.From != *t.To {
		line += fmt.Sprintf(" %s→%s", t.From, t.To)
	}
	if t.Picked != "" {
		line += " picked=" + t.Picked
	}
	if t.Fire != "" {
		line += " fire=" + string(t.Fire)
	}
	if t.Status.Terminal() {
		line += " [" + string(t.Status) + "]"
	}
	return line + "\n"
}

func writeEvents(b *strings.Builder, events []service.GameEvent) {
	if len(events) == 0 {
		return
	}
	b.WriteString("\nEvents:\n")
	for _, event := range events {
		fmt.Fprintf(b, "- %s: %s\n", event.Type, event.Message)
	}
}

func formatHistory(history *service.HistoryResponse) string {
	var b strings.Builder

	fmt.Fprintf(&b, "Action History (Page %d/%d, Total: %d)\n\n",
		history.Page, history.TotalPages, history.TotalActions)

	for _, entry := range history.Actions {
		line := fmt.Sprintf("Turn %d: %s", entry.Turn, entry.Action)
		if entry.FireDirection != "" {
			line += " " + entry.FireDirection
		}
		if entry.From != nil && entry.To != nil {
			line += fmt.Sprintf(" %s→%s", entry.From, entry.To)
		}
		if entry.Picked != "" {
			line += " picked=" + entry.Picked
		}
		if entry.Fire != "" {
			line += " fire=" + string(entry.Fire)
		}
		if entry.Status.Terminal() {
			line += " [" + string(entry.Status) + "]"
		}
		b.WriteString(line + "\n")
	}

	if history.HasPrevious || history.HasNext {
		b.WriteString("\n")
		if history.HasPrevious {
			b.WriteString("← previous page available ")
		}
		if history.HasNext {
			b.WriteString("next page available →")
		}
		b.WriteString("\n")
	}

	return b.String()
}

func formatStats(summary *results.Summary, recent []results.Result) string {
	var b strings.Builder

	fmt.Fprintf(&b, "Finished games: %d | Wins: %d | Losses: %d | Win rate: %.0f%%\n",
		summary.Games, summary.Wins, summary.Losses, summary.WinRate*100)

	if len(summary.ByConfig) > 0 {
		b.WriteString("\nBy map:\n")
		for id, cs := range summary.ByConfig {
			fmt.Fprintf(&b, "- %s: %d games, %d wins, %d losses\n", id, cs.Games, cs.Wins, cs.Losses)
		}
	}

	if len(recent) > 0 {
		b.WriteString("\nRecent games:\n")
		for _, r := range recent {
			fmt.Fprintf(&b, "- %s on %s: %s in %d turns (%s)\n",
				r.SessionID, r.ConfigID, r.Outcome, r.Steps, r.FinishedAt.Format("15:04:05"))
		}
	}

	return b.String()
}
