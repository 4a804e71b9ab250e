// Package session provides session management for Hospital Run.
//
// The session package implements:
//   - Thread-safe session storage and retrieval
//   - Unique session ID generation
//   - Session reset with a replayable seed
//   - Session cleanup and expiration
//
// Core Types:
//
// Manager is the main session manager that handles all session operations.
// Each service.Session owns its own engine.Game, the map it was built from,
// the seed for zombie movement and the action history.
//
// Session Identifiers:
//
// Sessions use 4-character hex IDs for easy reference, generated from
// cryptographic randomness. Lookups are case-insensitive.
//
// Sessions are kept in memory only. They do not survive a restart; the
// outcome of finished games is kept by the results package instead.
//
// Usage:
//
//	manager := session.NewManager()
//
//	// Create a new session with a generated ID
//	sess, err := manager.Create("", mapConfig, seed)
//	if err != nil {
//		log.Fatal(err)
//	}
//
//	// Replay the same game from the start
//	sess, err = manager.Reset(sess.ID)
package session
