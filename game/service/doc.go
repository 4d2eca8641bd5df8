// Package service provides the business logic layer for Shanghai Tycoon.
//
// The service package implements:
//   - Multi-session game management
//   - Roster building from a configuration's character pool
//   - Action orchestration (roll, branch choice, offers, events)
//   - AutoPlay for autonomous players
//   - Paginated game log retrieval
//
// Core Interfaces:
//
// GameService is the main service interface providing high-level game operations.
// SessionManager handles session creation, retrieval, and lifecycle.
// ConfigManager manages game configuration loading and validation.
//
// Architecture:
//
// The service layer sits between the transport layer (HTTP/WebSocket/MCP) and
// the game engine. Engines are not safe for concurrent use, so every engine
// call happens under the service mutex. Each session owns its own engine and
// board copy.
//
// Usage:
//
//	sessionMgr := session.NewManager()
//	configMgr, _ := config.NewManager("configs")
//	gameService := service.NewGameService(sessionMgr, configMgr, slog.Default())
//
//	info, err := gameService.CreateSession(ctx, service.CreateSessionRequest{
//		ConfigID:    "shanghai",
//		CharacterID: "crooner",
//	})
//	if err != nil {
//		log.Fatal(err)
//	}
//
//	result, err := gameService.Roll(ctx, info.ID)
//	if result.Pending != nil {
//		// answer with ChooseBranch, Decide or Acknowledge
//	}
//	auto, err := gameService.AutoPlay(ctx, info.ID, 0)
//
// Errors from the engine are wrapped with the operation name, so callers use
// errors.Is against the engine sentinels (ErrActionNotAllowed,
// ErrInvalidChoice, ErrUnaffordable, ErrNoPendingDecision,
// ErrInvariantViolation) and ErrSessionNotFound.
package service
