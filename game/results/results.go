// Package results keeps the ledger of finished games: who played which map
// and how it ended. It stores outcomes only, never game state.
package results

import (
	"context"
	"errors"
	"sort"
	"sync"
	"time"

	"github.com/wricardo/hospital-run/game/engine"
)

// DefaultListLimit is used when List is called with a non-positive limit
const DefaultListLimit = 20

// ErrNotFinished is returned when recording a game that is still playing
var ErrNotFinished = errors.New("game is not finished")

// Result is the outcome of one finished game
type Result struct {
	SessionID  string        `json:"session_id"`
	ConfigID   string        `json:"config_id"`
	Level      engine.Level  `json:"level"`
	Outcome    engine.Status `json:"outcome"`
	Steps      int           `json:"steps"`
	Seed       int64         `json:"seed"`
	FinishedAt time.Time     `json:"finished_at"`
}

// ConfigSummary aggregates the results of one map
type ConfigSummary struct {
	Games  int `json:"games"`
	Wins   int `json:"wins"`
	Losses int `json:"losses"`
}

// Summary aggregates every recorded result
type Summary struct {
	Games    int                      `json:"games"`
	Wins     int                      `json:"wins"`
	Losses   int                      `json:"losses"`
	WinRate  float64                  `json:"win_rate"`
	ByConfig map[string]ConfigSummary `json:"by_config"`
}

// Store records and reports game outcomes
type Store interface {
	Record(ctx context.Context, r Result) error
	// List returns the most recent results first
	List(ctx context.Context, limit int) ([]Result, error)
	Summary(ctx context.Context) (*Summary, error)
}

func validate(r Result) error {
	if !r.Outcome.Terminal() {
		return ErrNotFinished
	}
	return nil
}

func (s *Summary) add(configID string, outcome engine.Status, n int) {
	if s.ByConfig == nil {
		s.ByConfig = make(map[string]ConfigSummary)
	}
	cs := s.ByConfig[configID]
	cs.Games += n
	s.Games += n
	if outcome == engine.Won {
		cs.Wins += n
		s.Wins += n
	} else {
		cs.Losses += n
		s.Losses += n
	}
	s.ByConfig[configID] = cs
}

func (s *Summary) finish() {
	if s.ByConfig == nil {
		s.ByConfig = make(map[string]ConfigSummary)
	}
	if s.Games > 0 {
		s.WinRate = float64(s.Wins) / float64(s.Games)
	}
}

// MemoryStore keeps results in process memory
type MemoryStore struct {
	mu      sync.RWMutex
	results []Result
}

// NewMemoryStore creates an empty in-memory store
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{}
}

var _ Store = (*MemoryStore)(nil)

// Record appends a finished game
func (m *MemoryStore) Record(ctx context.Context, r Result) error {
	if err := validate(r); err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.results = append(m.results, r)
	return nil
}

// List returns up to limit results, newest first
func (m *MemoryStore) List(ctx context.Context, limit int) ([]Result, error) {
	if limit <= 0 {
		limit = DefaultListLimit
	}

	// reversed so equal timestamps keep the latest recorded first
	m.mu.RLock()
	out := make([]Result, 0, len(m.results))
	for i := len(m.results) - 1; i >= 0; i-- {
		out = append(out, m.results[i])
	}
	m.mu.RUnlock()

	sort.SliceStable(out, func(i, j int) bool {
		return out[i].FinishedAt.After(out[j].FinishedAt)
	})
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

// Summary aggregates all recorded results
func (m *MemoryStore) Summary(ctx context.Context) (*Summary, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	summary := &Summary{}
	for _, r := range m.results {
		summary.add(r.ConfigID, r.Outcome, 1)
	}
	summary.finish()
	return summary, nil
}
