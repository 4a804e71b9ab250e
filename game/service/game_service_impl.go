package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/wricardo/hospital-run/game/engine"
	"github.com/wricardo/hospital-run/game/results"
	"github.com/wricardo/hospital-run/logger"
)

// ErrSessionNotFound wraps every lookup failure for an unknown session ID
var ErrSessionNotFound = errors.New("session not found")

// gameServiceImpl implements the GameService interface
type gameServiceImpl struct {
	sessions SessionManager
	configs  ConfigManager
	results  results.Store
	log      *logrus.Entry
	mu       sync.RWMutex
}

// NewGameService creates a new game service instance. A nil store keeps
// results in memory.
func NewGameService(sessions SessionManager, configs ConfigManager, store results.Store) GameService {
	if store == nil {
		store = results.NewMemoryStore()
	}
	return &gameServiceImpl{
		sessions: sessions,
		configs:  configs,
		results:  store,
		log:      logger.WithComponent("service"),
	}
}

// getConfigID returns the config_id for a given map name, used for consistent API responses
func (s *gameServiceImpl) getConfigID(configName string) string {
	availableConfigs, err := s.configs.ListConfigs()
	if err == nil {
		for _, cfg := range availableConfigs {
			if cfg.Name == configName {
				return cfg.ConfigID
			}
		}
	}
	if configName == "" {
		return "default"
	}
	return configName
}

func (s *gameServiceImpl) getSession(sessionID string) (*Session, error) {
	sess, err := s.sessions.Get(sessionID)
	if err != nil {
		return nil, fmt.Errorf("%w: %s", ErrSessionNotFound, sessionID)
	}
	s.sessions.UpdateLastAccessed(sessionID)
	return sess, nil
}

func sessionInfo(sess *Session) *SessionInfo {
	return &SessionInfo{
		ID:             sess.ID,
		ConfigID:       sess.ConfigID,
		Seed:           sess.Seed,
		CreatedAt:      sess.CreatedAt,
		LastAccessedAt: sess.LastAccessedAt,
		GameState:      snapshot(sess.Game),
		MapConfig:      sess.Config,
	}
}

// snapshot is the game state enriched with the threat grade
func snapshot(game *engine.Game) *engine.GameState {
	state := game.Snapshot()
	state.Threat = engine.AnalyzeThreat(game)
	return state
}

// CreateSession creates a new game session. A zero seed picks one from the clock.
func (s *gameServiceImpl) CreateSession(ctx context.Context, configID string, seed int64) (*SessionInfo, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var config *engine.MapConfig
	var err error
	if configID != "" {
		config, err = s.configs.LoadConfig(configID)
		if err != nil {
			availableConfigs, listErr := s.configs.ListConfigs()
			if listErr == nil && len(availableConfigs) > 0 {
				var configIDs []string
				for _, cfg := range availableConfigs {
					configIDs = append(configIDs, cfg.ConfigID)
				}
				return nil, fmt.Errorf("failed to load map '%s' (available: %s): %w",
					configID, strings.Join(configIDs, ", "), err)
			}
			return nil, fmt.Errorf("failed to load map '%s': %w", configID, err)
		}
		configID = strings.TrimSuffix(configID, ".json")
	} else {
		config = s.configs.GetDefault()
		configID = s.getConfigID(config.Name)
	}

	if seed == 0 {
		seed = time.Now().UnixNano()
	}

	sess, err := s.sessions.Create("", config, seed)
	if err != nil {
		return nil, fmt.Errorf("failed to create session: %w", err)
	}
	sess.ConfigID = configID

	s.log.WithFields(logrus.Fields{
		"session": sess.ID,
		"config":  configID,
		"seed":    seed,
	}).Info("Session created")

	return sessionInfo(sess), nil
}

// GetSession retrieves session information
func (s *gameServiceImpl) GetSession(ctx context.Context, sessionID string) (*SessionInfo, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess, err := s.getSession(sessionID)
	if err != nil {
		return nil, err
	}
	return sessionInfo(sess), nil
}

// ListSessions returns all active sessions
func (s *gameServiceImpl) ListSessions(ctx context.Context) ([]*SessionInfo, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	sessions := s.sessions.List()
	result := make([]*SessionInfo, 0, len(sessions))
	for _, sess := range sessions {
		result = append(result, sessionInfo(sess))
	}
	return result, nil
}

// DeleteSession removes a session
func (s *gameServiceImpl) DeleteSession(ctx context.Context, sessionID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.sessions.Delete(sessionID); err != nil {
		return fmt.Errorf("%w: %s", ErrSessionNotFound, sessionID)
	}
	s.log.WithField("session", sessionID).Info("Session deleted")
	return nil
}

// Act plays one turn for a session
func (s *gameServiceImpl) Act(ctx context.Context, sessionID, action, fireDirection string) (*ActResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess, err := s.getSession(sessionID)
	if err != nil {
		return nil, err
	}

	turn, events, err := s.playTurn(ctx, sess, action, fireDirection)
	if err != nil {
		return nil, err
	}

	_, isMove := engine.ParseDirection(action)
	return &ActResult{
		Success:   isMove || engine.IsFire(action),
		GameState: snapshot(sess.Game),
		Turn:      turn,
		Message:   turnMessage(turn),
		Events:    events,
	}, nil
}

// BulkAct plays several turns in order and stops early once the game ends
func (s *gameServiceImpl) BulkAct(ctx context.Context, sessionID string, actions []string) (*BulkActResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess, err := s.getSession(sessionID)
	if err != nil {
		return nil, err
	}

	result := &BulkActResult{
		RequestedActions: len(actions),
		Events:           make([]GameEvent, 0),
		Turns:            make([]TurnInfo, 0),
	}
	if pos, ok := sess.Game.Grid().FindPlayer(); ok {
		result.StartPos = &pos
	}

	// Limit actions to prevent abuse
	if len(actions) > engine.MaxBulkActions {
		result.Truncated = true
		result.Limit = engine.MaxBulkActions
		actions = actions[:engine.MaxBulkActions]
	}

	for i, raw := range actions {
		if sess.Game.Status().Terminal() {
			break
		}

		action, fireDirection := SplitAction(raw)
		turn, events, err := s.playTurn(ctx, sess, action, fireDirection)
		if err != nil {
			return nil, err
		}

		result.ActionsExecuted++
		result.Events = append(result.Events, events...)
		result.Turns = append(result.Turns, TurnInfo{
			Idx:    i + 1,
			Action: action,
			From:   turn.From,
			To:     turn.To,
			Picked: turn.Picked,
			Fire:   turn.Fire,
			Status: turn.Status,
		})

		if turn.Status.Terminal() {
			result.StoppedOnTurn = i + 1
			if turn.Status == engine.Won {
				result.StopReasonCode = "victory"
			} else {
				result.StopReasonCode = "defeat"
			}
			result.Message = turnMessage(turn)
		}
	}

	result.GameState = snapshot(sess.Game)
	result.GameOver = result.GameState.Status.Terminal()
	result.EndPos = result.GameState.PlayerPos

	s.log.WithFields(logrus.Fields{
		"session":  sess.ID,
		"executed": result.ActionsExecuted,
		"status":   result.GameState.Status,
	}).Debug("Bulk act")

	return result, nil
}

// SplitAction separates a bulk action into the action and its fire
// direction. "F:D", "F D" and "fire right" all fire right.
func SplitAction(raw string) (action, fireDirection string) {
	raw = strings.TrimSpace(raw)
	if i := strings.IndexAny(raw, ": "); i >= 0 {
		return strings.TrimSpace(raw[:i]), strings.TrimSpace(raw[i+1:])
	}
	return raw, ""
}

// playTurn runs one Game.Act and does the bookkeeping around it: events,
// history and result recording. Callers hold s.mu.
func (s *gameServiceImpl) playTurn(ctx context.Context, sess *Session, action, fireDirection string) (*engine.TurnResult, []GameEvent, error) {
	game := sess.Game
	wasInfected := false
	if player := game.Player(); player != nil {
		wasInfected = player.IsInfected()
	}

	turn, err := game.Act(action, fireDirection)
	if err != nil {
		return nil, nil, fmt.Errorf("session %s: %w", sess.ID, err)
	}

	events := s.extractEvents(game, turn, wasInfected)

	sess.History = append(sess.History, ActionEntry{
		Turn:          turn.Steps,
		Action:        action,
		FireDirection: fireDirection,
		From:          turn.From,
		To:            turn.To,
		Picked:        turn.Picked,
		Fire:          turn.Fire,
		Status:        turn.Status,
		Timestamp:     time.Now(),
	})

	s.log.WithFields(logrus.Fields{
		"session": sess.ID,
		"action":  action,
		"turn":    turn.Steps,
		"status":  turn.Status,
	}).Debug("Turn played")

	if turn.Status.Terminal() {
		s.recordResult(ctx, sess, turn)
	}

	return turn, events, nil
}

// recordResult writes a finished run to the results store once
func (s *gameServiceImpl) recordResult(ctx context.Context, sess *Session, turn *engine.TurnResult) {
	if sess.Recorded {
		return
	}

	err := s.results.Record(ctx, results.Result{
		SessionID:  sess.ID,
		ConfigID:   sess.ConfigID,
		Level:      sess.Game.Level(),
		Outcome:    turn.Status,
		Steps:      turn.Steps,
		Seed:       sess.Seed,
		FinishedAt: time.Now(),
	})
	if err != nil {
		s.log.WithError(err).WithField("session", sess.ID).Warn("Failed to record result")
		return
	}
	sess.Recorded = true

	s.log.WithFields(logrus.Fields{
		"session": sess.ID,
		"outcome": turn.Status,
		"steps":   turn.Steps,
	}).Info("Game finished")
}

// extractEvents generates events from a played turn
func (s *gameServiceImpl) extractEvents(game *engine.Game, turn *engine.TurnResult, wasInfected bool) []GameEvent {
	events := []GameEvent{}
	now := time.Now()

	if turn.Moved {
		events = append(events, GameEvent{
			Type:      EventMove,
			Message:   fmt.Sprintf("Moved %s to %s", turn.Action, turn.To),
			Timestamp: now,
			Position:  turn.To,
		})
	}

	if turn.Picked != "" {
		events = append(events, GameEvent{
			Type:      EventPickup,
			Message:   fmt.Sprintf("Picked up %s", pickupName(turn.Picked)),
			Timestamp: now,
			Position:  turn.To,
		})
	}

	switch turn.Fire {
	case engine.FireHit:
		events = append(events, GameEvent{Type: EventFireHit, Message: turn.Fire.Message(), Timestamp: now})
	case engine.FireMissed, engine.FireNoWeapon, engine.FireInvalidDirection, engine.FireNotAllowed:
		events = append(events, GameEvent{Type: EventFireMiss, Message: turn.Fire.Message(), Timestamp: now})
	}

	if player := game.Player(); player != nil && !wasInfected && player.IsInfected() {
		events = append(events, GameEvent{
			Type:      EventInfected,
			Message:   "A zombie infected you",
			Timestamp: now,
			Position:  turn.To,
		})
	}

	switch turn.Status {
	case engine.Won:
		events = append(events, GameEvent{Type: EventVictory, Message: turnMessage(turn), Timestamp: now})
	case engine.Lost:
		events = append(events, GameEvent{Type: EventDefeat, Message: turnMessage(turn), Timestamp: now})
	}

	return events
}

func pickupName(token string) string {
	switch token {
	case engine.GarlicToken:
		return "garlic"
	case engine.CrossbowToken:
		return "a crossbow"
	}
	return token
}

// turnMessage is the human readable outcome of a turn
func turnMessage(turn *engine.TurnResult) string {
	switch turn.Status {
	case engine.Won:
		return "You made it to the hospital. You win!"
	case engine.Lost:
		return "You have been infected. Game over."
	}
	if turn.Fire != "" {
		return turn.Fire.Message()
	}
	if turn.Picked != "" {
		return fmt.Sprintf("Picked up %s", pickupName(turn.Picked))
	}
	if turn.Moved {
		return fmt.Sprintf("Moved to %s", turn.To)
	}
	return "Turn passed"
}

// Reset restarts a session from its map with the original seed
func (s *gameServiceImpl) Reset(ctx context.Context, sessionID string) (*ResetResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, err := s.getSession(sessionID); err != nil {
		return nil, err
	}

	sess, err := s.sessions.Reset(sessionID)
	if err != nil {
		return nil, fmt.Errorf("failed to reset session %s: %w", sessionID, err)
	}

	state := snapshot(sess.Game)
	s.log.WithField("session", sess.ID).Info("Session reset")
	return &ResetResult{
		Message:   "Game reset successfully",
		GameState: state,
		Events: []GameEvent{{
			Type:      EventReset,
			Message:   "Game reset to turn 0",
			Timestamp: time.Now(),
			Position:  state.PlayerPos,
		}},
	}, nil
}

// GetGameState retrieves the current game state
func (s *gameServiceImpl) GetGameState(ctx context.Context, sessionID string) (*engine.GameState, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess, err := s.getSession(sessionID)
	if err != nil {
		return nil, err
	}
	return snapshot(sess.Game), nil
}

// GetHistory returns paginated action history
func (s *gameServiceImpl) GetHistory(ctx context.Context, sessionID string, opts HistoryOptions) (*HistoryResponse, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess, err := s.getSession(sessionID)
	if err != nil {
		return nil, err
	}

	history := sess.History
	total := len(history)

	// Apply defaults
	if opts.Page < 1 {
		opts.Page = 1
	}
	if opts.Limit <= 0 {
		opts.Limit = 20
	}
	if opts.Limit > 100 {
		opts.Limit = 100
	}
	if opts.Order == "" {
		opts.Order = "desc"
	}

	totalPages := (total + opts.Limit - 1) / opts.Limit
	if totalPages == 0 {
		totalPages = 1
	}

	start := (opts.Page - 1) * opts.Limit
	end := start + opts.Limit
	if end > total {
		end = total
	}

	actions := []ActionEntry{}
	if start < total {
		if opts.Order == "desc" {
			// most recent first
			for i := total - 1 - start; i >= total-end; i-- {
				actions = append(actions, history[i])
			}
		} else {
			actions = append(actions, history[start:end]...)
		}
	}

	return &HistoryResponse{
		Actions:      actions,
		TotalActions: total,
		Page:         opts.Page,
		PageSize:     opts.Limit,
		TotalPages:   totalPages,
		HasNext:      opts.Page < totalPages,
		HasPrevious:  opts.Page > 1,
	}, nil
}

// ListConfigs returns available maps
func (s *gameServiceImpl) ListConfigs(ctx context.Context) ([]*ConfigInfo, error) {
	return s.configs.ListConfigs()
}

// LoadConfig loads a specific map
func (s *gameServiceImpl) LoadConfig(ctx context.Context, configID string) (*engine.MapConfig, error) {
	return s.configs.LoadConfig(configID)
}

// SaveConfig saves a map to disk
func (s *gameServiceImpl) SaveConfig(ctx context.Context, configID string, config *engine.MapConfig) error {
	if err := s.configs.SaveConfig(configID, config); err != nil {
		return err
	}
	s.log.WithField("config", configID).Info("Map saved")
	return nil
}

// ListResults returns the most recent finished games
func (s *gameServiceImpl) ListResults(ctx context.Context, limit int) ([]results.Result, error) {
	return s.results.List(ctx, limit)
}

// Stats aggregates all finished games
func (s *gameServiceImpl) Stats(ctx context.Context) (*results.Summary, error) {
	return s.results.Summary(ctx)
}
