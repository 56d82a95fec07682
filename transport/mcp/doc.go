// Package mcp exposes the word search game as Model Context Protocol tools.
//
// The Client is a thin proxy: every tool call is translated into a request
// against the REST API, and the JSON answer is rendered as plain text with
// the render package so agents can read the grid.
//
// Tools:
//   - create_session, list_sessions, get_session
//   - game_state, describe_cell
//   - select_word (start and end cell, expanded to the straight line between them)
//   - reset_game, event_history
//   - list_configs, generate_config
//   - game_instructions
//
// Usage:
//
//	client := mcp.NewClient("http://localhost:8080")
//	server.ServeStdio(client.GetMCPServer())
package mcp
