// Package api exposes the game service over HTTP.
//
// Endpoints:
//
// Session Management:
//   - POST /api/sessions - Create a session (config_id, character_id, players, autonomous_only, seed)
//   - GET /api/sessions - List sessions (sort=created|accessed, order=asc|desc, limit)
//   - GET /api/sessions/{id} - Get a session
//   - DELETE /api/sessions/{id} - Delete a session
//
// Game Operations:
//   - GET /api/sessions/{id}/state - Current snapshot
//   - POST /api/sessions/{id}/roll - Roll for the external player
//   - POST /api/sessions/{id}/branch - Pick a successor at a fork ({"space_id": 4})
//   - POST /api/sessions/{id}/decide - Answer a purchase or upgrade offer ({"accept": true})
//   - POST /api/sessions/{id}/acknowledge - Dismiss an event card
//   - POST /api/sessions/{id}/autoplay - Drive autonomous players ({"max_actions": 50})
//   - GET /api/sessions/{id}/logs - Paginated game log (page, limit, order, category)
//
// Configuration:
//   - GET /api/configs - List configurations
//   - POST /api/configs - Save a configuration
//   - GET /api/configs/{name} - Get a configuration
//   - GET /api/configs/{name}/characters - Character pool of a configuration
//   - GET /api/characters - Character pool of the default configuration
//
// Other:
//   - GET /ws?session={id} - Live updates
//   - GET /health - Health check
//
// Seat tokens:
//
// When the server is built WithSeatIssuer, creating a session that has an
// external player returns a "seat_token". Roll, branch, decide and
// acknowledge then require "Authorization: Bearer <token>" and the token's
// player must hold the turn.
//
// Errors:
//
// Errors are returned as {"error": "message"}. Unknown sessions and configs
// map to 404, actions that do not fit the current state to 409, bad input to
// 400 and engine invariant violations to 500.
package api
