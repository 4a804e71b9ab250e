package service

import (
	"context"
	"time"

	"github.com/wricardo/hospital-run/game/engine"
	"github.com/wricardo/hospital-run/game/results"
)

// GameService defines all game-related operations
type GameService interface {
	// Session Management
	CreateSession(ctx context.Context, configID string, seed int64) (*SessionInfo, error)
	GetSession(ctx context.Context, sessionID string) (*SessionInfo, error)
	ListSessions(ctx context.Context) ([]*SessionInfo, error)
	DeleteSession(ctx context.Context, sessionID string) error

	// Game Operations
	Act(ctx context.Context, sessionID, action, fireDirection string) (*ActResult, error)
	BulkAct(ctx context.Context, sessionID string, actions []string) (*BulkActResult, error)
	Reset(ctx context.Context, sessionID string) (*ResetResult, error)

	// Game State
	GetGameState(ctx context.Context, sessionID string) (*engine.GameState, error)
	GetHistory(ctx context.Context, sessionID string, opts HistoryOptions) (*HistoryResponse, error)

	// Configuration
	ListConfigs(ctx context.Context) ([]*ConfigInfo, error)
	LoadConfig(ctx context.Context, configID string) (*engine.MapConfig, error)
	SaveConfig(ctx context.Context, configID string, config *engine.MapConfig) error

	// Results
	ListResults(ctx context.Context, limit int) ([]results.Result, error)
	Stats(ctx context.Context) (*results.Summary, error)
}

// SessionManager defines session storage operations
type SessionManager interface {
	Create(id string, config *engine.MapConfig, seed int64) (*Session, error)
	Get(id string) (*Session, error)
	GetOrCreate(id string, config *engine.MapConfig, seed int64) (*Session, error)
	List() []*Session
	Delete(id string) error
	UpdateLastAccessed(id string) error
	Reset(id string) (*Session, error)
}

// ConfigManager handles map loading
type ConfigManager interface {
	LoadConfig(name string) (*engine.MapConfig, error)
	ListConfigs() ([]*ConfigInfo, error)
	GetDefault() *engine.MapConfig
	SaveConfig(name string, config *engine.MapConfig) error
}

// Session represents an active game session
type Session struct {
	ID       string
	ConfigID string
	Game     *engine.Game
	Config   *engine.MapConfig
	// Seed drives zombie movement; Reset replays the same sequence.
	Seed    int64
	History []ActionEntry
	// Recorded is set once the finished run has been written to the
	// results store.
	Recorded       bool
	CreatedAt      time.Time
	LastAccessedAt time.Time
}
