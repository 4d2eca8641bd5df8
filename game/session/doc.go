// Package session provides session management for Shanghai Tycoon.
//
// The session package implements:
//   - Thread-safe session storage and retrieval
//   - Unique session ID generation
//   - Engine construction for a seated roster
//   - File (JSON) and SQLite persistence
//   - Session cleanup and expiration
//
// Core Types:
//
// Manager is the main session manager that handles all session operations.
// Each service.Session owns its own engine, and therefore its own copy of the
// board, so sessions never share ownership state.
//
// Session Identifiers:
//
// Sessions use 4-character hex IDs for easy reference. When the short ID
// space is crowded the manager falls back to a UUID.
//
// Persistence:
//
// SessionPersistence stores the full game snapshot together with the config
// ID. A restored session resumes exactly where it stopped, including a
// movement suspended at a fork.
//
//	configs, _ := config.NewManager("configs")
//	store, err := session.NewSQLitePersistence("sessions.db", configs)
//	if err != nil {
//		log.Fatal(err)
//	}
//	manager := session.NewManagerWithPersistence(store,
//		session.WithEngineOptions(engine.WithLogger(logger)))
//	if err := manager.LoadPersistedSessions(); err != nil {
//		log.Fatal(err)
//	}
package session
