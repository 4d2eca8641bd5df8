// Package websocket pushes live game updates to spectators and players.
//
// The package uses a hub-and-spoke model where a central Hub owns every
// connection. Each client gets a read goroutine that keeps the socket alive
// and a write goroutine that drains its send queue.
//
// Message Protocol:
//
// Clients only listen. Every message is a JSON object:
//
//	{
//	  "session_id": "ab12",
//	  "event": "state_update",
//	  "game_state": { ...snapshot... },
//	  "events": [ ...log entries produced by the last action... ]
//	}
//
// Other events are "game_log" and "session_deleted", which carry a "data"
// field instead of a snapshot.
//
// Session Integration:
//
// Clients pick a session with the query parameter (?session=ab12) when
// connecting. Updates go only to clients of the same session.
//
// Usage:
//
//	hub := websocket.NewHub(logger)
//	go hub.Run(ctx)
//	hub.BroadcastToSession(id, result.GameState, result.Events)
//
// Concurrency:
//
// Only the Run loop reads or writes the client registry. Broadcasts are
// queued without blocking the caller; when the queue is full the update is
// dropped, and a client whose own queue is full is disconnected.
package websocket
