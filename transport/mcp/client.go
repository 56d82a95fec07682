package mcp

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/wricardo/word-search-game/game/engine"
	"github.com/wricardo/word-search-game/game/render"
	"github.com/wricardo/word-search-game/game/service"
)

// Client is a thin MCP client that proxies to the REST API
type Client struct {
	baseURL    string
	httpClient *http.Client
	mcpServer  *server.MCPServer
	renderer   *render.Renderer
}

// NewClient creates a new MCP client that calls the REST API
func NewClient(baseURL string) *Client {
	c := &Client{
		baseURL: strings.TrimSuffix(baseURL, "/"),
		httpClient: &http.Client{
			// generation calls an LLM and can take a while
			Timeout: 60 * time.Second,
		},
		renderer: render.New(false),
	}

	c.initMCPServer()
	return c
}

// initMCPServer initializes the MCP server with all tools
func (c *Client) initMCPServer() {
	c.mcpServer = server.NewMCPServer(
		"Word Search Game",
		"1.0.0",
		server.WithToolCapabilities(true),
		server.WithInstructions(`Word Search Game - MCP Interface

This is a thin client that proxies all requests to the REST API server.

GAME OBJECTIVE:
Find every hidden word in the letter grid. Words run in a straight line
(horizontal, vertical or diagonal) and may be read forwards or backwards.

AVAILABLE TOOLS:
- create_session: Create a new puzzle from a definition or your own word list
- list_sessions / get_session: Inspect sessions
- game_state: Show the grid, the word list and progress
- select_word: Select a straight line from a start cell to an end cell
- describe_cell: Show the letter at a cell and its neighbours
- reset_game: New grid for the same words
- event_history: Words found so far
- list_configs: Available puzzle definitions
- generate_config: Create a definition from a theme (needs a configured generator)
- game_instructions: Full rules

Coordinates are 0-based (row, col) with (0,0) at the top-left.`),
	)

	c.registerTools()
}

func sessionIDProperty() map[string]interface{} {
	return map[string]interface{}{
		"type":        "string",
		"description": "Session ID",
	}
}

func intProperty(description string) map[string]interface{} {
	return map[string]interface{}{
		"type":        "integer",
		"description": description,
	}
}

// registerTools registers all MCP tools
func (c *Client) registerTools() {
	// Session management
	c.mcpServer.AddTool(mcp.Tool{
		Name:        "create_session",
		Description: "Create a new word search session from a saved definition or an ad-hoc word list",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"config_id": map[string]interface{}{
					"type":        "string",
					"description": "Definition to use (optional, see list_configs)",
				},
				"words": map[string]interface{}{
					"type":        "array",
					"items":       map[string]interface{}{"type": "string"},
					"description": "Custom word list, letters only (optional, overrides config_id)",
				},
				"grid_size": intProperty("Grid size N for an N x N grid (optional)"),
				"locale": map[string]interface{}{
					"type":        "string",
					"enum":        []string{"en", "es", "pt"},
					"description": "Message language (optional)",
				},
				"seed": intProperty("Random seed to reproduce a grid (optional)"),
			},
		},
	}, c.handleCreateSession)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "list_sessions",
		Description: "List all active game sessions",
		InputSchema: mcp.ToolInputSchema{
			Type:       "object",
			Properties: map[string]interface{}{},
		},
	}, c.handleListSessions)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "get_session",
		Description: "Get details of a specific session",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"session_id": sessionIDProperty(),
			},
			Required: []string{"session_id"},
		},
	}, c.handleGetSession)

	// Game operations
	c.mcpServer.AddTool(mcp.Tool{
		Name:        "game_state",
		Description: "Get the current grid, word list and progress",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"session_id": sessionIDProperty(),
			},
			Required: []string{"session_id"},
		},
	}, c.handleGameState)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "select_word",
		Description: "Select the straight line of cells from (start_row, start_col) to (end_row, end_col) and check it against the hidden words",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"session_id": sessionIDProperty(),
				"start_row":  intProperty("Row of the first letter (0-based)"),
				"start_col":  intProperty("Column of the first letter (0-based)"),
				"end_row":    intProperty("Row of the last letter (0-based)"),
				"end_col":    intProperty("Column of the last letter (0-based)"),
				"intent": map[string]interface{}{
					"type":        "string",
					"description": "Which word you expect to find and why (serves as a rubber duck to help explain your reasoning)",
				},
			},
			Required: []string{"session_id", "start_row", "start_col", "end_row", "end_col"},
		},
	}, c.handleSelectWord)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "reset_game",
		Description: "Generate a new grid for the session's words and clear progress",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"session_id": sessionIDProperty(),
			},
			Required: []string{"session_id"},
		},
	}, c.handleReset)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "event_history",
		Description: "Get the words found and completions for a session",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"session_id": sessionIDProperty(),
				"page":       intProperty("Page number"),
				"limit":      intProperty("Items per page"),
			},
			Required: []string{"session_id"},
		},
	}, c.handleEventHistory)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "list_configs",
		Description: "List available puzzle definitions",
		InputSchema: mcp.ToolInputSchema{
			Type:       "object",
			Properties: map[string]interface{}{},
		},
	}, c.handleListConfigs)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "generate_config",
		Description: "Generate a puzzle definition (words and hints) around a theme",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"theme": map[string]interface{}{
					"type":        "string",
					"description": "Theme of the word list, e.g. \"Noah's ark\"",
				},
				"count":     intProperty("Number of words (optional)"),
				"grid_size": intProperty("Grid size (optional)"),
				"locale": map[string]interface{}{
					"type":        "string",
					"enum":        []string{"en", "es", "pt"},
					"description": "Language of words and hints (optional)",
				},
				"save_as": map[string]interface{}{
					"type":        "string",
					"description": "Save the definition under this ID (optional)",
				},
			},
			Required: []string{"theme"},
		},
	}, c.handleGenerateConfig)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "game_instructions",
		Description: "Get comprehensive game instructions and rules",
		InputSchema: mcp.ToolInputSchema{
			Type:       "object",
			Properties: map[string]interface{}{},
		},
	}, c.handleGameInstructions)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "describe_cell",
		Description: "Get the letter at a cell, its neighbours and whether it belongs to a found word. Useful to double-check coordinates before select_word.",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"session_id": sessionIDProperty(),
				"row":        intProperty("Row of the cell (0-based)"),
				"col":        intProperty("Column of the cell (0-based)"),
			},
			Required: []string{"session_id", "row", "col"},
		},
	}, c.handleDescribeCell)
}

// GetMCPServer returns the underlying MCP server for serving
func (c *Client) GetMCPServer() *server.MCPServer {
	return c.mcpServer
}

// Helper methods for API calls

func (c *Client) apiCall(ctx context.Context, method, path string, body interface{}, result interface{}) error {
	var reqBody io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return err
		}
		reqBody = bytes.NewBuffer(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reqBody)
	if err != nil {
		return err
	}

	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		var errResp map[string]string
		json.NewDecoder(resp.Body).Decode(&errResp)
		if msg, ok := errResp["error"]; ok {
			return fmt.Errorf("%s", msg)
		}
		return fmt.Errorf("API error: %d", resp.StatusCode)
	}

	if result != nil {
		return json.NewDecoder(resp.Body).Decode(result)
	}

	return nil
}

func arguments(request mcp.CallToolRequest) map[string]interface{} {
	args, _ := request.Params.Arguments.(map[string]interface{})
	if args == nil {
		return map[string]interface{}{}
	}
	return args
}

// intArg reads an integer argument; JSON numbers arrive as float64
func intArg(args map[string]interface{}, key string) (int, bool) {
	switch v := args[key].(type) {
	case float64:
		return int(v), true
	case int:
		return v, true
	}
	return 0, false
}

func requiredInts(args map[string]interface{}, keys ...string) ([]int, error) {
	values := make([]int, len(keys))
	for i, key := range keys {
		v, ok := intArg(args, key)
		if !ok {
			return nil, fmt.Errorf("%s is required and must be an integer", key)
		}
		values[i] = v
	}
	return values, nil
}

func sessionPath(sessionID, suffix string) string {
	return "/api/sessions/" + url.PathEscape(sessionID) + suffix
}

// Tool handlers

func (c *Client) handleCreateSession(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := arguments(request)

	body := map[string]interface{}{}
	if configID, _ := args["config_id"].(string); configID != "" {
		body["config_id"] = configID
	}
	if raw, ok := args["words"].([]interface{}); ok {
		words := make([]string, 0, len(raw))
		for _, w := range raw {
			if s, ok := w.(string); ok {
				words = append(words, s)
			}
		}
		body["words"] = words
	}
	if size, ok := intArg(args, "grid_size"); ok {
		body["grid_size"] = size
	}
	if locale, _ := args["locale"].(string); locale != "" {
		body["locale"] = locale
	}
	if seed, ok := intArg(args, "seed"); ok {
		body["seed"] = seed
	}

	var session service.SessionInfo
	if err := c.apiCall(ctx, "POST", "/api/sessions", body, &session); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	return mcp.NewToolResultText(formatSessionInfo(c.renderer, &session)), nil
}

func (c *Client) handleListSessions(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	var response struct {
		Count    int                   `json:"count"`
		Sessions []service.SessionInfo `json:"sessions"`
	}

	if err := c.apiCall(ctx, "GET", "/api/sessions", nil, &response); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Active Sessions (%d):\n\n", response.Count)
	for _, s := range response.Sessions {
		progress := ""
		if s.GameState != nil {
			progress = fmt.Sprintf(", Found: %d/%d", s.GameState.WordsFound, s.GameState.WordsTotal)
		}
		fmt.Fprintf(&b, "- %s (Config: %s%s, Created: %s)\n",
			s.ID, s.ConfigName, progress, s.CreatedAt.Format("15:04:05"))
	}

	return mcp.NewToolResultText(b.String()), nil
}

func (c *Client) handleGetSession(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	sessionID, _ := arguments(request)["session_id"].(string)

	var session service.SessionInfo
	if err := c.apiCall(ctx, "GET", sessionPath(sessionID, ""), nil, &session); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	return mcp.NewToolResultText(formatSessionInfo(c.renderer, &session)), nil
}

func (c *Client) handleGameState(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	sessionID, _ := arguments(request)["session_id"].(string)

	var state engine.GameState
	if err := c.apiCall(ctx, "GET", sessionPath(sessionID, "/state"), nil, &state); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	return mcp.NewToolResultText(c.renderer.State(&state)), nil
}

func (c *Client) handleSelectWord(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := arguments(request)
	sessionID, _ := args["session_id"].(string)

	// Intent parameter serves as rubber duck debugging - we don't need to process it further
	intent, _ := args["intent"].(string)
	_ = intent

	v, err := requiredInts(args, "start_row", "start_col", "end_row", "end_col")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	start := engine.Position{Row: v[0], Col: v[1]}
	end := engine.Position{Row: v[2], Col: v[3]}

	cells := engine.LineCells(start, end)
	if cells == nil {
		return mcp.NewToolResultError(fmt.Sprintf(
			"%v and %v are not on a straight line; words run horizontally, vertically or diagonally", start, end)), nil
	}

	var result service.SelectionResult
	body := map[string]interface{}{"cells": cells}
	if err := c.apiCall(ctx, "POST", sessionPath(sessionID, "/select"), body, &result); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	return mcp.NewToolResultText(formatSelectionResult(c.renderer, &result)), nil
}

func (c *Client) handleReset(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	sessionID, _ := arguments(request)["session_id"].(string)

	var response struct {
		Message string            `json:"message"`
		State   *engine.GameState `json:"state"`
	}

	if err := c.apiCall(ctx, "POST", sessionPath(sessionID, "/reset"), nil, &response); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	if response.State == nil {
		return mcp.NewToolResultText(response.Message), nil
	}
	return mcp.NewToolResultText(fmt.Sprintf("%s\n\n%s", response.Message, c.renderer.State(response.State))), nil
}

func (c *Client) handleEventHistory(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := arguments(request)
	sessionID, _ := args["session_id"].(string)

	params := url.Values{}
	params.Set("order", "asc")
	if page, ok := intArg(args, "page"); ok {
		params.Set("page", fmt.Sprint(page))
	}
	if limit, ok := intArg(args, "limit"); ok {
		params.Set("limit", fmt.Sprint(limit))
	}

	var history service.HistoryResponse
	if err := c.apiCall(ctx, "GET", sessionPath(sessionID, "/history?"+params.Encode()), nil, &history); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	return mcp.NewToolResultText(formatHistory(&history)), nil
}

func (c *Client) handleListConfigs(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	var configs []service.ConfigInfo
	if err := c.apiCall(ctx, "GET", "/api/configs", nil, &configs); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	var b strings.Builder
	b.WriteString("Available Configurations:\n\n")
	for _, cfg := range configs {
		fmt.Fprintf(&b, "• %s (config_id: %s)\n  %s\n  Grid: %dx%d, Words: %d",
			cfg.Name, cfg.ConfigID, cfg.Description, cfg.GridSize, cfg.GridSize, cfg.WordCount)
		if cfg.Locale != "" {
			fmt.Fprintf(&b, ", Locale: %s", cfg.Locale)
		}
		b.WriteString("\n\n")
	}

	return mcp.NewToolResultText(b.String()), nil
}

func (c *Client) handleGenerateConfig(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := arguments(request)

	req := service.GenerateRequest{}
	req.Theme, _ = args["theme"].(string)
	req.Locale, _ = args["locale"].(string)
	req.SaveAs, _ = args["save_as"].(string)
	req.Count, _ = intArg(args, "count")
	req.GridSize, _ = intArg(args, "grid_size")

	var result service.GenerateResult
	if err := c.apiCall(ctx, "POST", "/api/configs/generate", req, &result); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	return mcp.NewToolResultText(formatGenerateResult(&result)), nil
}

func (c *Client) handleGameInstructions(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return mcp.NewToolResultText(gameInstructions), nil
}

func (c *Client) handleDescribeCell(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := arguments(request)
	sessionID, _ := args["session_id"].(string)

	v, err := requiredInts(args, "row", "col")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	row, col := v[0], v[1]

	var state engine.GameState
	if err := c.apiCall(ctx, "GET", sessionPath(sessionID, "/state"), nil, &state); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	description, err := describeCell(&state, engine.Position{Row: row, Col: col})
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return mcp.NewToolResultText(description), nil
}
