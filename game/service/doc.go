// Package service provides the business logic layer for Hospital Run.
//
// The service package implements:
//   - Multi-session game management
//   - Turn processing, single and bulk
//   - Action history with pagination
//   - Recording finished games in a results.Store
//
// Core Interfaces:
//
// GameService is the main service interface providing high-level game operations.
// SessionManager handles session creation, retrieval, reset and lifecycle.
// ConfigManager loads, lists and saves maps.
//
// Architecture:
//
// The service layer sits between the transports (HTTP, WebSocket, MCP) and
// the engine. Each session owns its own engine.Game, seeded so that a reset
// replays the same zombie moves. Every turn goes through engine.Game.Act;
// the service turns the resulting TurnResult into events and history
// entries, and writes a results.Result the first time a game ends.
//
// Usage:
//
//	sessionMgr := session.NewManager()
//	configMgr := config.NewManager("configs")
//	gameService := service.NewGameService(sessionMgr, configMgr, results.NewMemoryStore())
//
//	// Create a new session on the classic map with a fixed seed
//	info, err := gameService.CreateSession(ctx, "classic", 42)
//	if err != nil {
//		log.Fatal(err)
//	}
//
//	// Move right, then fire down
//	result, err := gameService.Act(ctx, info.ID, "D", "")
//	result, err = gameService.Act(ctx, info.ID, "F", "S")
//
// Errors:
//
// Unknown session IDs yield errors wrapping ErrSessionNotFound. Acting on a
// finished game yields an error wrapping engine.ErrGameOver.
package service
