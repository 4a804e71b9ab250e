// Package mcp exposes Hospital Run to AI agents over the Model Context Protocol.
//
// The Client is a thin proxy: every tool call becomes a request to the REST
// API and the JSON answer is rendered as plain text for the agent.
//
// MCP Tools:
//   - create_session: Create a session, optionally on a given map and seed
//   - get_session, list_sessions: Inspect sessions
//   - game_state: Current board, inventory and threat grade
//   - act: Play one turn (W/A/S/D or F with a fire direction)
//   - bulk_act: Play several turns, stopping when the game ends
//   - reset_game: Replay the map from the start
//   - action_history: Paginated turn history
//   - list_configs: Available maps
//   - describe_cell: What one grid cell holds
//   - game_stats: Win/loss statistics and recent finished games
//   - game_instructions: The full rules
//
// Transport Modes:
//
// The same MCP server can be served over stdio for local clients, or its
// HandleMessage can answer single JSON-RPC requests posted to /mcp on the
// HTTP server.
//
// Usage:
//
//	client := mcp.NewClient("http://localhost:8080")
//	server.ServeStdio(client.GetMCPServer())
package mcp
