// Package api provides the HTTP REST API for the word search game.
//
// Endpoints:
//
// Sessions:
//   - POST /api/sessions - Create a session from a definition or an ad-hoc word list
//   - GET /api/sessions - List sessions (?sort=created|accessed&order=asc|desc&limit=N)
//   - GET /api/sessions/unified - Several sessions side by side (?sessionIds=a,b or ?configName=x)
//   - GET /api/sessions/{id} - Get a session
//   - DELETE /api/sessions/{id} - Delete a session
//
// Selection:
//   - GET /api/sessions/{id}/state - Current game state
//   - POST /api/sessions/{id}/engage - {"row":r,"col":c} start a selection
//   - POST /api/sessions/{id}/enter - {"row":r,"col":c} extend the selection
//   - POST /api/sessions/{id}/commit - Release and evaluate the selection
//   - POST /api/sessions/{id}/leave - Discard the selection
//   - POST /api/sessions/{id}/select - A whole drag, {"cells":[...]} or {"start":{...},"end":{...}}
//   - POST /api/sessions/{id}/reset - New puzzle for the session
//   - GET /api/sessions/{id}/history - Event history (?page=&limit=&order=)
//
// Definitions:
//   - GET /api/configs - List puzzle definitions
//   - POST /api/configs - Save a definition
//   - POST /api/configs/generate - Generate a definition from a theme
//   - GET /api/configs/{name} - Get a definition
//
// Other:
//   - GET /api/health
//   - GET /ws?session={id} - WebSocket state push and pointer input
//
// Errors are returned as JSON with a matching status code:
//
//	{"error": "session not found: ab12"}
//
// Unknown sessions and definitions are 404, malformed input is 400 and
// generation without a configured generator is 503.
package api
