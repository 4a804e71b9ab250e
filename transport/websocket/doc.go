// Package websocket pushes live game state to browser clients.
//
// The package uses a hub-and-spoke model: a central Hub owns every
// connection and a Run goroutine serialises registration, removal and
// broadcasts. Each client gets a read pump, which only keeps the connection
// alive, and a write pump, which drains its send buffer and sends pings.
//
// Message Protocol:
//
// Outgoing messages are JSON objects:
//
//	{"session_id": "ab12", "event": "state_update", "game_state": {...}}
//	{"session_id": "ab12", "event": "game_events", "data": [...]}
//
// Clients choose a session with the ?session= query parameter. Updates are
// only sent to clients of the same session. A client that cannot keep up is
// disconnected.
//
// Usage:
//
//	hub := websocket.NewHub()
//	go hub.Run()
//	defer hub.Stop()
//
//	hub.BroadcastToSession(sessionID, state)
package websocket
