package service

import (
	"time"

	"github.com/wricardo/hospital-run/game/engine"
)

// Event types emitted by Act and BulkAct
const (
	EventMove     = "move"
	EventPickup   = "pickup"
	EventInfected = "infected"
	EventFireHit  = "fire_hit"
	EventFireMiss = "fire_miss"
	EventVictory  = "victory"
	EventDefeat   = "defeat"
	EventReset    = "reset"
)

// SessionInfo provides information about a game session
type SessionInfo struct {
	ID             string            `json:"id"`
	ConfigID       string            `json:"config_id"`
	Seed           int64             `json:"seed"`
	CreatedAt      time.Time         `json:"created_at"`
	LastAccessedAt time.Time         `json:"last_accessed_at"`
	GameState      *engine.GameState `json:"game_state"`
	MapConfig      *engine.MapConfig `json:"map_config"`
}

// ActResult contains the result of a single action
type ActResult struct {
	// Success is false when the action was neither a direction nor a fire.
	// The turn still advanced.
	Success   bool               `json:"success"`
	GameState *engine.GameState  `json:"game_state"`
	Turn      *engine.TurnResult `json:"turn"`
	Message   string             `json:"message"`
	Events    []GameEvent        `json:"events,omitempty"`
}

// ResetResult is a session replayed from its first turn
type ResetResult struct {
	Message   string            `json:"message"`
	GameState *engine.GameState `json:"state"`
	Events    []GameEvent       `json:"events"`
}

// BulkActResult contains the result of several actions played in order
type BulkActResult struct {
	ActionsExecuted  int               `json:"actions_executed"`
	RequestedActions int               `json:"requested_actions"`
	GameState        *engine.GameState `json:"game_state"`
	Events           []GameEvent       `json:"events"`
	Turns            []TurnInfo        `json:"turns,omitempty"`
	// StopReasonCode is victory or defeat when the game ended mid-batch.
	StopReasonCode string `json:"stop_reason_code,omitempty"`
	StoppedOnTurn  int    `json:"stopped_on_turn,omitempty"`
	Truncated      bool   `json:"truncated,omitempty"`
	Limit          int    `json:"limit,omitempty"`

	StartPos *engine.Position `json:"start_pos,omitempty"`
	EndPos   *engine.Position `json:"end_pos,omitempty"`
	GameOver bool             `json:"game_over"`
	Message  string           `json:"message,omitempty"`
}

// TurnInfo is a compact record of one turn played by BulkAct
type TurnInfo struct {
	Idx    int               `json:"idx"`
	Action string            `json:"action"`
	From   *engine.Position  `json:"from,omitempty"`
	To     *engine.Position  `json:"to,omitempty"`
	Picked string            `json:"picked,omitempty"`
	Fire   engine.FireResult `json:"fire,omitempty"`
	Status engine.Status     `json:"status"`
}

// GameEvent represents an event that occurred during gameplay
type GameEvent struct {
	Type      string           `json:"type"`
	Message   string           `json:"message"`
	Timestamp time.Time        `json:"timestamp"`
	Position  *engine.Position `json:"position,omitempty"`
}

// ActionEntry is one turn in a session's history
type ActionEntry struct {
	Turn          int               `json:"turn"`
	Action        string            `json:"action"`
	FireDirection string            `json:"fire_direction,omitempty"`
	From          *engine.Position  `json:"from,omitempty"`
	To            *engine.Position  `json:"to,omitempty"`
	Picked        string            `json:"picked,omitempty"`
	Fire          engine.FireResult `json:"fire,omitempty"`
	Status        engine.Status     `json:"status"`
	Timestamp     time.Time         `json:"timestamp"`
}

// HistoryOptions configures action history retrieval
type HistoryOptions struct {
	Page  int    `json:"page"`
	Limit int    `json:"limit"`
	Order string `json:"order"` // "asc" or "desc"
}

// HistoryResponse contains paginated action history
type HistoryResponse struct {
	Actions      []ActionEntry `json:"actions"`
	TotalActions int           `json:"total_actions"`
	Page         int           `json:"page"`
	PageSize     int           `json:"page_size"`
	TotalPages   int           `json:"total_pages"`
	HasNext      bool          `json:"has_next"`
	HasPrevious  bool          `json:"has_previous"`
}

// ConfigInfo provides information about a map configuration
type ConfigInfo struct {
	Filename    string       `json:"filename"`
	ConfigID    string       `json:"config_id"` // The identifier to use for session creation
	Name        string       `json:"name"`      // Display name
	Description string       `json:"description"`
	Level       engine.Level `json:"level"`
	GridSize    int          `json:"grid_size"`
	Zombies     int          `json:"zombies"`
}
