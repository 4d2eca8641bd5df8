// Package mcp exposes the game to MCP clients such as LLM agents.
//
// The Client is a thin proxy: every tool call becomes a request to the REST
// API, so the MCP process holds no game state of its own. It runs over stdio.
//
// Tools:
//
// Sessions:
//   - create_session: Start a game, optionally choosing config, character and player count
//   - list_sessions, get_session: Inspect running games
//
// Playing:
//   - game_state: Players, active turn and pending decision
//   - roll_dice: Roll and move
//   - choose_branch: Pick a path at a fork
//   - decide: Buy or upgrade, or pass
//   - acknowledge: Dismiss an event card
//   - autoplay: Let computer players act
//   - game_log: Paginated log with a category filter
//
// Reference:
//   - list_configs, list_characters, game_rules
//
// Seat tokens returned by create_session are kept per session and sent with
// turn actions. A tool may also pass seat_token explicitly.
//
// Usage:
//
//	client := mcp.NewClient("http://localhost:8080")
//	server.ServeStdio(client.GetMCPServer())
package mcp
