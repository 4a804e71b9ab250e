// Package api provides the HTTP REST API for Hospital Run.
//
// Endpoints:
//
// Session Management:
//   - POST   /api/sessions                 - Create a session {config_id?, seed?}
//   - GET    /api/sessions                 - List sessions (?sort=created|accessed&order=asc|desc&limit=N)
//   - GET    /api/sessions/unified         - Sessions grouped for a multi-board view (?configId= or ?sessionIds=a,b)
//   - GET    /api/sessions/{id}            - Get one session
//   - DELETE /api/sessions/{id}            - Delete a session
//
// Game Operations:
//   - GET  /api/sessions/{id}/state        - Current game state
//   - POST /api/sessions/{id}/act          - Play one turn {action, fire_direction?}
//   - POST /api/sessions/{id}/bulk-act     - Play several turns {actions: ["D", "F:S", ...]}
//   - POST /api/sessions/{id}/reset        - Replay the map from the start with the same seed
//   - GET  /api/sessions/{id}/history      - Action history (?page=&limit=&order=)
//
// Maps:
//   - GET  /api/configs                    - List available maps
//   - POST /api/configs                    - Save a map {config_id?, name, level, grid_size, layout}
//   - GET  /api/configs/{name}             - Get one map
//
// Finished Games:
//   - GET /api/results                     - Most recent finished games (?limit=N)
//   - GET /api/stats                       - Win/loss totals, overall and per map
//
// Live updates are served on /ws?session={id}. After every act, bulk-act
// and reset the new state is pushed to the session's watchers.
//
// Actions:
//
// W, A, S and D (or up, left, down, right) move the player. F (or fire)
// shoots in fire_direction on advanced maps when a crossbow is held. Any
// other action passes the turn. Bulk actions carry the fire direction
// inline, as "F:S" or "fire down".
//
// Error Handling:
//
// Errors are returned as JSON with the HTTP status code repeated in the body:
//
//	{
//	  "error": "session not found: ab12",
//	  "code": 404
//	}
//
// Unknown sessions and maps are 404, acting on a finished game is 409, and
// malformed requests or invalid maps are 400.
package api
