// Package service provides the business logic layer for the word search game.
//
// The service package implements:
//   - Multi-session puzzle management
//   - Puzzle definition loading, saving and generation
//   - Routing of pointer input (engage, enter, commit, leave) to sessions
//   - Session lifecycle management
//   - Event history with pagination
//
// Core Interfaces:
//
// GameService is the main service interface providing high-level game operations.
// SessionManager handles session creation, retrieval, and lifecycle.
// ConfigManager loads and stores puzzle definitions.
// WordListGenerator turns a theme into a new definition.
//
// Architecture:
//
// The service layer sits between the transport layer (HTTP/WebSocket/MCP) and
// the game engine, providing session isolation and serializing every input
// for a session. Each session owns its own engine instance.
//
// Usage:
//
//	sessionMgr := session.NewManager()
//	configMgr, _ := config.NewManager("configs")
//	gameService := service.NewGameService(sessionMgr, configMgr)
//
//	info, err := gameService.CreateSession(ctx, service.CreateOptions{ConfigID: "virtues"})
//	result, err := gameService.SelectPath(ctx, info.ID, cells)
package service
