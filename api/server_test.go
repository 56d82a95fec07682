package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	gorillaws "github.com/gorilla/websocket"

	"github.com/wricardo/word-search-game/game/config"
	"github.com/wricardo/word-search-game/game/engine"
	"github.com/wricardo/word-search-game/game/service"
	"github.com/wricardo/word-search-game/transport/websocket"
)

// MockGameService implements service.GameService for testing
type MockGameService struct {
	// Session Management
	CreateSessionFunc func(ctx context.Context, opts service.CreateOptions) (*service.SessionInfo, error)
	GetSessionFunc    func(ctx context.Context, sessionID string) (*service.SessionInfo, error)
	ListSessionsFunc  func(ctx context.Context) ([]*service.SessionInfo, error)
	DeleteSessionFunc func(ctx context.Context, sessionID string) error

	// Selection
	EngageFunc     func(ctx context.Context, sessionID string, cell engine.Position) (*service.SelectionResult, error)
	EnterFunc      func(ctx context.Context, sessionID string, cell engine.Position) (*service.SelectionResult, error)
	CommitFunc     func(ctx context.Context, sessionID string) (*service.SelectionResult, error)
	LeaveFunc      func(ctx context.Context, sessionID string) (*service.SelectionResult, error)
	SelectPathFunc func(ctx context.Context, sessionID string, cells []engine.Position) (*service.SelectionResult, error)
	ResetFunc      func(ctx context.Context, sessionID string) (*engine.GameState, error)

	// Game State
	GetGameStateFunc    func(ctx context.Context, sessionID string) (*engine.GameState, error)
	GetEventHistoryFunc func(ctx context.Context, sessionID string, opts service.HistoryOptions) (*service.HistoryResponse, error)

	// Configuration
	ListConfigsFunc    func(ctx context.Context) ([]*service.ConfigInfo, error)
	LoadConfigFunc     func(ctx context.Context, configName string) (*engine.PuzzleConfig, error)
	SaveConfigFunc     func(ctx context.Context, configName string, config *engine.PuzzleConfig) error
	GenerateConfigFunc func(ctx context.Context, req service.GenerateRequest) (*service.GenerateResult, error)
}

var _ service.GameService = (*MockGameService)(nil)

func defaultSelectionResult(action string) *service.SelectionResult {
	return &service.SelectionResult{
		Action:    action,
		Accepted:  true,
		GameState: &engine.GameState{},
	}
}

// Session Management
func (m *MockGameService) CreateSession(ctx context.Context, opts service.CreateOptions) (*service.SessionInfo, error) {
	if m.CreateSessionFunc != nil {
		return m.CreateSessionFunc(ctx, opts)
	}
	return &service.SessionInfo{
		ID:         "test-session",
		ConfigName: opts.ConfigID,
		CreatedAt:  time.Now(),
	}, nil
}

func (m *MockGameService) GetSession(ctx context.Context, sessionID string) (*service.SessionInfo, error) {
	if m.GetSessionFunc != nil {
		return m.GetSessionFunc(ctx, sessionID)
	}
	return &service.SessionInfo{
		ID:         sessionID,
		ConfigName: "test-config",
		CreatedAt:  time.Now(),
	}, nil
}

func (m *MockGameService) ListSessions(ctx context.Context) ([]*service.SessionInfo, error) {
	if m.ListSessionsFunc != nil {
		return m.ListSessionsFunc(ctx)
	}
	return []*service.SessionInfo{}, nil
}

func (m *MockGameService) DeleteSession(ctx context.Context, sessionID string) error {
	if m.DeleteSessionFunc != nil {
		return m.DeleteSessionFunc(ctx, sessionID)
	}
	return nil
}

// Selection
func (m *MockGameService) Engage(ctx context.Context, sessionID string, cell engine.Position) (*service.SelectionResult, error) {
	if m.EngageFunc != nil {
		return m.EngageFunc(ctx, sessionID, cell)
	}
	return defaultSelectionResult(service.ActionEngage), nil
}

func (m *MockGameService) Enter(ctx context.Context, sessionID string, cell engine.Position) (*service.SelectionResult, error) {
	if m.EnterFunc != nil {
		return m.EnterFunc(ctx, sessionID, cell)
	}
	return defaultSelectionResult(service.ActionEnter), nil
}

func (m *MockGameService) Commit(ctx context.Context, sessionID string) (*service.SelectionResult, error) {
	if m.CommitFunc != nil {
		return m.CommitFunc(ctx, sessionID)
	}
	return defaultSelectionResult(service.ActionCommit), nil
}

func (m *MockGameService) Leave(ctx context.Context, sessionID string) (*service.SelectionResult, error) {
	if m.LeaveFunc != nil {
		return m.LeaveFunc(ctx, sessionID)
	}
	return defaultSelectionResult(service.ActionLeave), nil
}

func (m *MockGameService) SelectPath(ctx context.Context, sessionID string, cells []engine.Position) (*service.SelectionResult, error) {
	if m.SelectPathFunc != nil {
		return m.SelectPathFunc(ctx, sessionID, cells)
	}
	return defaultSelectionResult(service.ActionSelect), nil
}

func (m *MockGameService) Reset(ctx context.Context, sessionID string) (*engine.GameState, error) {
	if m.ResetFunc != nil {
		return m.ResetFunc(ctx, sessionID)
	}
	return &engine.GameState{}, nil
}

// Game State
func (m *MockGameService) GetGameState(ctx context.Context, sessionID string) (*engine.GameState, error) {
	if m.GetGameStateFunc != nil {
		return m.GetGameStateFunc(ctx, sessionID)
	}
	return &engine.GameState{}, nil
}

func (m *MockGameService) GetEventHistory(ctx context.Context, sessionID string, opts service.HistoryOptions) (*service.HistoryResponse, error) {
	if m.GetEventHistoryFunc != nil {
		return m.GetEventHistoryFunc(ctx, sessionID, opts)
	}
	return &service.HistoryResponse{
		Events:     []engine.Event{},
		Page:       opts.Page,
		PageSize:   opts.Limit,
		TotalPages: 1,
	}, nil
}

// Configuration
func (m *MockGameService) ListConfigs(ctx context.Context) ([]*service.ConfigInfo, error) {
	if m.ListConfigsFunc != nil {
		return m.ListConfigsFunc(ctx)
	}
	return []*service.ConfigInfo{}, nil
}

func (m *MockGameService) LoadConfig(ctx context.Context, configName string) (*engine.PuzzleConfig, error) {
	if m.LoadConfigFunc != nil {
		return m.LoadConfigFunc(ctx, configName)
	}
	return &engine.PuzzleConfig{
		Name:        configName,
		Description: "Test config",
		GridSize:    8,
	}, nil
}

func (m *MockGameService) SaveConfig(ctx context.Context, configName string, config *engine.PuzzleConfig) error {
	if m.SaveConfigFunc != nil {
		return m.SaveConfigFunc(ctx, configName, config)
	}
	return nil
}

func (m *MockGameService) GenerateConfig(ctx context.Context, req service.GenerateRequest) (*service.GenerateResult, error) {
	if m.GenerateConfigFunc != nil {
		return m.GenerateConfigFunc(ctx, req)
	}
	return nil, service.ErrGeneratorUnavailable
}

// Test helpers
func setupTestServer(mockService *MockGameService) *Server {
	hub := websocket.NewHub()
	go hub.Run()
	return NewServer(mockService, hub)
}

func makeRequest(method, path string, body interface{}) *http.Request {
	var bodyBytes []byte
	if body != nil {
		bodyBytes, _ = json.Marshal(body)
	}
	req := httptest.NewRequest(method, path, bytes.NewBuffer(bodyBytes))
	req.Header.Set("Content-Type", "application/json")
	return req
}

func parseResponse(t *testing.T, w *httptest.ResponseRecorder, target interface{}) {
	t.Helper()
	if err := json.Unmarshal(w.Body.Bytes(), target); err != nil {
		t.Fatalf("Failed to parse response: %v", err)
	}
}

func serve(server *Server, req *http.Request) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	server.ServeHTTP(w, req)
	return w
}

// Session Management Tests

func TestCreateSession(t *testing.T) {
	tests := []struct {
		name           string
		requestBody    interface{}
		setupMock      func(*MockGameService)
		expectedStatus int
		validateResp   func(*testing.T, *httptest.ResponseRecorder)
	}{
		{
			name:        "Create session with default config",
			requestBody: nil,
			setupMock: func(m *MockGameService) {
				m.CreateSessionFunc = func(ctx context.Context, opts service.CreateOptions) (*service.SessionInfo, error) {
					if diff := cmp.Diff(service.CreateOptions{}, opts); diff != "" {
						t.Errorf("Expected empty options (-want +got):\n%s", diff)
					}
					return &service.SessionInfo{ID: "sess-123", ConfigName: "virtues", CreatedAt: time.Now()}, nil
				}
			},
			expectedStatus: http.StatusCreated,
			validateResp: func(t *testing.T, w *httptest.ResponseRecorder) {
				var resp service.SessionInfo
				parseResponse(t, w, &resp)
				if resp.ID != "sess-123" {
					t.Errorf("Expected session ID sess-123, got %s", resp.ID)
				}
			},
		},
		{
			name:        "Deprecated config_name",
			requestBody: map[string]string{"config_name": "easy"},
			setupMock: func(m *MockGameService) {
				m.CreateSessionFunc = func(ctx context.Context, opts service.CreateOptions) (*service.SessionInfo, error) {
					if opts.ConfigID != "easy" {
						t.Errorf("Expected config id 'easy', got %s", opts.ConfigID)
					}
					return &service.SessionInfo{ID: "sess-456", ConfigName: opts.ConfigID}, nil
				}
			},
			expectedStatus: http.StatusCreated,
		},
		{
			name: "Custom words and seed",
			requestBody: map[string]interface{}{
				"words":     []string{"AMOR", "FE"},
				"hints":     map[string]string{"AMOR": "Love"},
				"grid_size": 6,
				"locale":    "es",
				"seed":      99,
			},
			setupMock: func(m *MockGameService) {
				m.CreateSessionFunc = func(ctx context.Context, opts service.CreateOptions) (*service.SessionInfo, error) {
					want := service.CreateOptions{
						Words:    []string{"AMOR", "FE"},
						Hints:    map[string]string{"AMOR": "Love"},
						GridSize: 6,
						Locale:   "es",
						Seed:     99,
					}
					if diff := cmp.Diff(want, opts); diff != "" {
						t.Errorf("Options mismatch (-want +got):\n%s", diff)
					}
					return &service.SessionInfo{ID: "custom1", ConfigName: "custom"}, nil
				}
			},
			expectedStatus: http.StatusCreated,
		},
		{
			name:        "Invalid request maps to 400",
			requestBody: map[string]string{"config_id": "missing"},
			setupMock: func(m *MockGameService) {
				m.CreateSessionFunc = func(ctx context.Context, opts service.CreateOptions) (*service.SessionInfo, error) {
					return nil, fmt.Errorf("%w: config 'missing' not found", service.ErrInvalidRequest)
				}
			},
			expectedStatus: http.StatusBadRequest,
		},
		{
			name:        "Handle service error",
			requestBody: nil,
			setupMock: func(m *MockGameService) {
				m.CreateSessionFunc = func(ctx context.Context, opts service.CreateOptions) (*service.SessionInfo, error) {
					return nil, fmt.Errorf("service error")
				}
			},
			expectedStatus: http.StatusInternalServerError,
			validateResp: func(t *testing.T, w *httptest.ResponseRecorder) {
				var resp map[string]string
				parseResponse(t, w, &resp)
				if resp["error"] != "service error" {
					t.Errorf("Expected error message 'service error', got %s", resp["error"])
				}
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mockService := &MockGameService{}
			if tt.setupMock != nil {
				tt.setupMock(mockService)
			}

			w := serve(setupTestServer(mockService), makeRequest("POST", "/api/sessions", tt.requestBody))

			if w.Code != tt.expectedStatus {
				t.Errorf("Expected status %d, got %d: %s", tt.expectedStatus, w.Code, w.Body.String())
			}
			if tt.validateResp != nil {
				tt.validateResp(t, w)
			}
		})
	}
}

func TestCreateSession_InvalidBody(t *testing.T) {
	server := setupTestServer(&MockGameService{})
	req := httptest.NewRequest("POST", "/api/sessions", strings.NewReader("{bad"))
	if w := serve(server, req); w.Code != http.StatusBadRequest {
		t.Errorf("Expected status 400, got %d", w.Code)
	}
}

func TestListSessions(t *testing.T) {
	now := time.Now()
	mockService := &MockGameService{
		ListSessionsFunc: func(ctx context.Context) ([]*service.SessionInfo, error) {
			return []*service.SessionInfo{
				{ID: "old", CreatedAt: now.Add(-3 * time.Hour), LastAccessedAt: now.Add(-1 * time.Minute)},
				{ID: "mid", CreatedAt: now.Add(-2 * time.Hour), LastAccessedAt: now.Add(-2 * time.Hour)},
				{ID: "new", CreatedAt: now.Add(-1 * time.Hour), LastAccessedAt: now.Add(-3 * time.Hour)},
			}, nil
		},
	}
	server := setupTestServer(mockService)

	tests := []struct {
		name      string
		query     string
		wantIDs   []string
		wantTotal int
	}{
		{"default sorts by access desc", "", []string{"old", "mid", "new"}, 3},
		{"created asc", "?sort=created&order=asc", []string{"old", "mid", "new"}, 3},
		{"created desc with limit", "?sort=created&limit=2", []string{"new", "mid"}, 3},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := serve(server, makeRequest("GET", "/api/sessions"+tt.query, nil))
			if w.Code != http.StatusOK {
				t.Fatalf("Expected status 200, got %d", w.Code)
			}

			var resp struct {
				Count    int                    `json:"count"`
				Total    int                    `json:"total"`
				Sessions []*service.SessionInfo `json:"sessions"`
			}
			parseResponse(t, w, &resp)

			var ids []string
			for _, s := range resp.Sessions {
				ids = append(ids, s.ID)
			}
			if diff := cmp.Diff(tt.wantIDs, ids); diff != "" {
				t.Errorf("Session order mismatch (-want +got):\n%s", diff)
			}
			if resp.Total != tt.wantTotal || resp.Count != len(tt.wantIDs) {
				t.Errorf("Expected count %d total %d, got %d/%d", len(tt.wantIDs), tt.wantTotal, resp.Count, resp.Total)
			}
		})
	}
}

func TestGetAndDeleteSession(t *testing.T) {
	mockService := &MockGameService{
		GetSessionFunc: func(ctx context.Context, sessionID string) (*service.SessionInfo, error) {
			if sessionID == "missing" {
				return nil, fmt.Errorf("%w: %s", service.ErrSessionNotFound, sessionID)
			}
			return &service.SessionInfo{ID: sessionID}, nil
		},
		DeleteSessionFunc: func(ctx context.Context, sessionID string) error {
			if sessionID == "missing" {
				return service.ErrSessionNotFound
			}
			return nil
		},
	}
	server := setupTestServer(mockService)

	tests := []struct {
		method, path string
		want         int
	}{
		{"GET", "/api/sessions/ab12", http.StatusOK},
		{"GET", "/api/sessions/missing", http.StatusNotFound},
		{"DELETE", "/api/sessions/ab12", http.StatusOK},
		{"DELETE", "/api/sessions/missing", http.StatusNotFound},
	}
	for _, tt := range tests {
		t.Run(tt.method+" "+tt.path, func(t *testing.T) {
			if w := serve(server, makeRequest(tt.method, tt.path, nil)); w.Code != tt.want {
				t.Errorf("Expected status %d, got %d", tt.want, w.Code)
			}
		})
	}
}

// Selection Tests

func TestEngageAndEnter(t *testing.T) {
	var got []string
	mockService := &MockGameService{
		EngageFunc: func(ctx context.Context, sessionID string, cell engine.Position) (*service.SelectionResult, error) {
			got = append(got, fmt.Sprintf("engage %s %v", sessionID, cell))
			res := defaultSelectionResult(service.ActionEngage)
			res.Selection = []engine.Position{cell}
			return res, nil
		},
		EnterFunc: func(ctx context.Context, sessionID string, cell engine.Position) (*service.SelectionResult, error) {
			got = append(got, fmt.Sprintf("enter %s %v", sessionID, cell))
			return defaultSelectionResult(service.ActionEnter), nil
		},
	}
	server := setupTestServer(mockService)

	w := serve(server, makeRequest("POST", "/api/sessions/ab12/engage", map[string]int{"row": 1, "col": 2}))
	if w.Code != http.StatusOK {
		t.Fatalf("Expected status 200, got %d", w.Code)
	}
	var resp service.SelectionResult
	parseResponse(t, w, &resp)
	if len(resp.Selection) != 1 || resp.Selection[0] != (engine.Position{Row: 1, Col: 2}) {
		t.Errorf("Unexpected selection: %v", resp.Selection)
	}

	serve(server, makeRequest("POST", "/api/sessions/ab12/enter", map[string]int{"row": 1, "col": 3}))

	want := []string{"engage ab12 (1,2)", "enter ab12 (1,3)"}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("Calls mismatch (-want +got):\n%s", diff)
	}

	t.Run("invalid body", func(t *testing.T) {
		req := httptest.NewRequest("POST", "/api/sessions/ab12/engage", strings.NewReader("[]"))
		if w := serve(server, req); w.Code != http.StatusBadRequest {
			t.Errorf("Expected status 400, got %d", w.Code)
		}
	})
}

func TestCommit(t *testing.T) {
	mockService := &MockGameService{
		CommitFunc: func(ctx context.Context, sessionID string) (*service.SelectionResult, error) {
			if sessionID == "missing" {
				return nil, fmt.Errorf("%w: missing", service.ErrSessionNotFound)
			}
			return &service.SelectionResult{
				Action:    service.ActionCommit,
				Accepted:  true,
				Candidate: "AMOR",
				WordFound: "AMOR",
				Events:    []service.GameEvent{{Type: "word_found", Word: "AMOR"}},
				GameState: &engine.GameState{WordsFound: 1, WordsTotal: 2},
			}, nil
		},
	}
	server := setupTestServer(mockService)

	w := serve(server, makeRequest("POST", "/api/sessions/ab12/commit", nil))
	if w.Code != http.StatusOK {
		t.Fatalf("Expected status 200, got %d", w.Code)
	}
	var resp service.SelectionResult
	parseResponse(t, w, &resp)
	if resp.WordFound != "AMOR" || len(resp.Events) != 1 {
		t.Errorf("Unexpected commit result: %+v", resp)
	}

	if w := serve(server, makeRequest("POST", "/api/sessions/missing/commit", nil)); w.Code != http.StatusNotFound {
		t.Errorf("Expected status 404, got %d", w.Code)
	}
}

func TestLeave(t *testing.T) {
	called := false
	server := setupTestServer(&MockGameService{
		LeaveFunc: func(ctx context.Context, sessionID string) (*service.SelectionResult, error) {
			called = true
			return defaultSelectionResult(service.ActionLeave), nil
		},
	})

	if w := serve(server, makeRequest("POST", "/api/sessions/ab12/leave", nil)); w.Code != http.StatusOK {
		t.Errorf("Expected status 200, got %d", w.Code)
	}
	if !called {
		t.Error("Expected Leave to be called")
	}
}

func TestSelect(t *testing.T) {
	var gotCells []engine.Position
	mockService := &MockGameService{
		SelectPathFunc: func(ctx context.Context, sessionID string, cells []engine.Position) (*service.SelectionResult, error) {
			gotCells = cells
			if len(cells) == 0 {
				return nil, fmt.Errorf("%w: at least one cell is required", service.ErrInvalidRequest)
			}
			return defaultSelectionResult(service.ActionSelect), nil
		},
	}
	server := setupTestServer(mockService)

	tests := []struct {
		name      string
		body      interface{}
		want      int
		wantCells []engine.Position
	}{
		{
			name:      "explicit cells",
			body:      map[string]interface{}{"cells": []map[string]int{{"row": 0, "col": 0}, {"row": 0, "col": 1}}},
			want:      http.StatusOK,
			wantCells: []engine.Position{{Row: 0, Col: 0}, {Row: 0, Col: 1}},
		},
		{
			name:      "start and end",
			body:      map[string]interface{}{"start": map[string]int{"row": 3, "col": 0}, "end": map[string]int{"row": 0, "col": 3}},
			want:      http.StatusOK,
			wantCells: []engine.Position{{Row: 3, Col: 0}, {Row: 2, Col: 1}, {Row: 1, Col: 2}, {Row: 0, Col: 3}},
		},
		{
			name: "start and end not in line",
			body: map[string]interface{}{"start": map[string]int{"row": 0, "col": 0}, "end": map[string]int{"row": 1, "col": 2}},
			want: http.StatusBadRequest,
		},
		{
			name: "empty",
			body: map[string]interface{}{},
			want: http.StatusBadRequest,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			gotCells = nil
			w := serve(server, makeRequest("POST", "/api/sessions/ab12/select", tt.body))
			if w.Code != tt.want {
				t.Fatalf("Expected status %d, got %d: %s", tt.want, w.Code, w.Body.String())
			}
			if tt.wantCells != nil {
				if diff := cmp.Diff(tt.wantCells, gotCells); diff != "" {
					t.Errorf("Cells mismatch (-want +got):\n%s", diff)
				}
			}
		})
	}
}

func TestReset(t *testing.T) {
	server := setupTestServer(&MockGameService{
		ResetFunc: func(ctx context.Context, sessionID string) (*engine.GameState, error) {
			if sessionID == "missing" {
				return nil, service.ErrSessionNotFound
			}
			return &engine.GameState{Round: 2}, nil
		},
	})

	w := serve(server, makeRequest("POST", "/api/sessions/ab12/reset", nil))
	if w.Code != http.StatusOK {
		t.Fatalf("Expected status 200, got %d", w.Code)
	}
	var resp struct {
		Message string            `json:"message"`
		State   *engine.GameState `json:"state"`
	}
	parseResponse(t, w, &resp)
	if resp.State == nil || resp.State.Round != 2 {
		t.Errorf("Unexpected reset response: %+v", resp)
	}

	if w := serve(server, makeRequest("POST", "/api/sessions/missing/reset", nil)); w.Code != http.StatusNotFound {
		t.Errorf("Expected status 404, got %d", w.Code)
	}
}

func TestGetHistory(t *testing.T) {
	tests := []struct {
		name  string
		query string
		want  service.HistoryOptions
	}{
		{"defaults", "", service.HistoryOptions{Page: 1, Limit: 20, Order: "desc"}},
		{"explicit", "?page=2&limit=5&order=asc", service.HistoryOptions{Page: 2, Limit: 5, Order: "asc"}},
		{"invalid values ignored", "?page=-1&limit=abc&order=sideways", service.HistoryOptions{Page: 1, Limit: 20, Order: "desc"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var got service.HistoryOptions
			server := setupTestServer(&MockGameService{
				GetEventHistoryFunc: func(ctx context.Context, sessionID string, opts service.HistoryOptions) (*service.HistoryResponse, error) {
					got = opts
					return &service.HistoryResponse{Events: []engine.Event{{Type: engine.EventWordFound, Word: "FE"}}, TotalEvents: 1}, nil
				},
			})

			w := serve(server, makeRequest("GET", "/api/sessions/ab12/history"+tt.query, nil))
			if w.Code != http.StatusOK {
				t.Fatalf("Expected status 200, got %d", w.Code)
			}
			if diff := cmp.Diff(tt.want, got); diff != "" {
				t.Errorf("Options mismatch (-want +got):\n%s", diff)
			}
			var resp service.HistoryResponse
			parseResponse(t, w, &resp)
			if resp.TotalEvents != 1 || resp.Events[0].Word != "FE" {
				t.Errorf("Unexpected history: %+v", resp)
			}
		})
	}
}

func TestGetGameState(t *testing.T) {
	server := setupTestServer(&MockGameService{
		GetGameStateFunc: func(ctx context.Context, sessionID string) (*engine.GameState, error) {
			if sessionID == "missing" {
				return nil, service.ErrSessionNotFound
			}
			return &engine.GameState{Grid: []string{"AMOR", "XFEX", "XXXX", "XXXX"}, GridSize: 4}, nil
		},
	})

	w := serve(server, makeRequest("GET", "/api/sessions/ab12/state", nil))
	var state engine.GameState
	parseResponse(t, w, &state)
	if state.GridSize != 4 || state.Grid[0] != "AMOR" {
		t.Errorf("Unexpected state: %+v", state)
	}

	if w := serve(server, makeRequest("GET", "/api/sessions/missing/state", nil)); w.Code != http.StatusNotFound {
		t.Errorf("Expected status 404, got %d", w.Code)
	}
}

// Configuration Tests

func TestListConfigs(t *testing.T) {
	server := setupTestServer(&MockGameService{
		ListConfigsFunc: func(ctx context.Context) ([]*service.ConfigInfo, error) {
			return []*service.ConfigInfo{{ConfigID: "virtues", Name: "virtues", WordCount: 7}}, nil
		},
	})

	w := serve(server, makeRequest("GET", "/api/configs", nil))
	var configs []*service.ConfigInfo
	parseResponse(t, w, &configs)
	if len(configs) != 1 || configs[0].ConfigID != "virtues" {
		t.Errorf("Unexpected configs: %+v", configs)
	}
}

func TestGetConfig(t *testing.T) {
	server := setupTestServer(&MockGameService{
		LoadConfigFunc: func(ctx context.Context, configName string) (*engine.PuzzleConfig, error) {
			if configName != "virtues" {
				return nil, fmt.Errorf("%w: %s", config.ErrConfigNotFound, configName)
			}
			return engine.DefaultConfig(), nil
		},
	})

	for _, path := range []string{"/api/configs/virtues", "/api/configs/virtues.json"} {
		if w := serve(server, makeRequest("GET", path, nil)); w.Code != http.StatusOK {
			t.Errorf("GET %s: expected status 200, got %d", path, w.Code)
		}
	}
	if w := serve(server, makeRequest("GET", "/api/configs/nope", nil)); w.Code != http.StatusNotFound {
		t.Errorf("Expected status 404, got %d", w.Code)
	}
}

func TestCreateConfig(t *testing.T) {
	var savedAs string
	server := setupTestServer(&MockGameService{
		SaveConfigFunc: func(ctx context.Context, configName string, cfg *engine.PuzzleConfig) error {
			savedAs = configName
			return nil
		},
	})

	tests := []struct {
		name   string
		body   interface{}
		want   int
		wantID string
	}{
		{
			name:   "id from name",
			body:   map[string]interface{}{"name": "Noah's Ark", "grid_size": 8, "words": []string{"ARCA", "LLUVIA"}},
			want:   http.StatusCreated,
			wantID: "noah-s-ark",
		},
		{
			name:   "explicit id",
			body:   map[string]interface{}{"config_id": "ark", "name": "Noah's Ark", "grid_size": 8, "words": []string{"ARCA"}},
			want:   http.StatusCreated,
			wantID: "ark",
		},
		{
			name: "invalid puzzle",
			body: map[string]interface{}{"name": "Bad", "grid_size": 2},
			want: http.StatusBadRequest,
		},
		{
			name: "invalid id",
			body: map[string]interface{}{"config_id": "../etc", "name": "Bad", "grid_size": 8},
			want: http.StatusBadRequest,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			savedAs = ""
			w := serve(server, makeRequest("POST", "/api/configs", tt.body))
			if w.Code != tt.want {
				t.Fatalf("Expected status %d, got %d: %s", tt.want, w.Code, w.Body.String())
			}
			if savedAs != tt.wantID {
				t.Errorf("Expected config saved as %q, got %q", tt.wantID, savedAs)
			}
		})
	}
}

func TestGenerateConfig(t *testing.T) {
	t.Run("generator unavailable", func(t *testing.T) {
		server := setupTestServer(&MockGameService{})
		w := serve(server, makeRequest("POST", "/api/configs/generate", map[string]string{"theme": "animals"}))
		if w.Code != http.StatusServiceUnavailable {
			t.Errorf("Expected status 503, got %d", w.Code)
		}
	})

	server := setupTestServer(&MockGameService{
		GenerateConfigFunc: func(ctx context.Context, req service.GenerateRequest) (*service.GenerateResult, error) {
			result := &service.GenerateResult{Config: &engine.PuzzleConfig{Name: req.Theme, GridSize: 10, Words: []string{"LION"}}}
			if req.SaveAs != "" {
				result.ConfigID = req.SaveAs
				result.Saved = true
			}
			return result, nil
		},
	})

	t.Run("preview", func(t *testing.T) {
		w := serve(server, makeRequest("POST", "/api/configs/generate", map[string]string{"theme": "animals"}))
		if w.Code != http.StatusOK {
			t.Errorf("Expected status 200, got %d", w.Code)
		}
	})

	t.Run("saved", func(t *testing.T) {
		w := serve(server, makeRequest("POST", "/api/configs/generate", map[string]string{"theme": "animals", "save_as": "animals"}))
		if w.Code != http.StatusCreated {
			t.Errorf("Expected status 201, got %d", w.Code)
		}
		var resp service.GenerateResult
		parseResponse(t, w, &resp)
		if !resp.Saved || resp.Config.Words[0] != "LION" {
			t.Errorf("Unexpected result: %+v", resp)
		}
	})

	t.Run("bad save name", func(t *testing.T) {
		w := serve(server, makeRequest("POST", "/api/configs/generate", map[string]string{"theme": "animals", "save_as": "a/b"}))
		if w.Code != http.StatusBadRequest {
			t.Errorf("Expected status 400, got %d", w.Code)
		}
	})
}

func TestUnifiedSessions(t *testing.T) {
	server := setupTestServer(&MockGameService{
		ListSessionsFunc: func(ctx context.Context) ([]*service.SessionInfo, error) {
			return []*service.SessionInfo{
				{ID: "a1", ConfigName: "virtues", GameState: &engine.GameState{WordsTotal: 7}},
				{ID: "b2", ConfigName: "animals", GameState: &engine.GameState{WordsTotal: 5}},
			}, nil
		},
	})

	w := serve(server, makeRequest("GET", "/api/sessions/unified?configName=animals", nil))
	var resp struct {
		ConfigName string                   `json:"config_name"`
		TotalWords int                      `json:"total_words"`
		Sessions   []map[string]interface{} `json:"sessions"`
	}
	parseResponse(t, w, &resp)
	if resp.ConfigName != "animals" || resp.TotalWords != 5 || len(resp.Sessions) != 1 {
		t.Errorf("Unexpected unified response: %+v", resp)
	}

	w = serve(server, makeRequest("GET", "/api/sessions/unified?sessionIds=x1,,y2", nil))
	parseResponse(t, w, &resp)
	if len(resp.Sessions) != 2 {
		t.Errorf("Expected 2 sessions by ID, got %d", len(resp.Sessions))
	}
}

func TestHealth(t *testing.T) {
	w := serve(setupTestServer(&MockGameService{}), makeRequest("GET", "/api/health", nil))
	if w.Code != http.StatusOK || !strings.Contains(w.Body.String(), "healthy") {
		t.Errorf("Unexpected health response: %d %s", w.Code, w.Body.String())
	}
}

func TestStatusFor(t *testing.T) {
	tests := []struct {
		err  error
		want int
	}{
		{fmt.Errorf("wrap: %w", service.ErrSessionNotFound), http.StatusNotFound},
		{config.ErrConfigNotFound, http.StatusNotFound},
		{fmt.Errorf("%w: bad", service.ErrInvalidRequest), http.StatusBadRequest},
		{config.ErrInvalidConfig, http.StatusBadRequest},
		{service.ErrGeneratorUnavailable, http.StatusServiceUnavailable},
		{fmt.Errorf("boom"), http.StatusInternalServerError},
	}
	for _, tt := range tests {
		if got := statusFor(tt.err); got != tt.want {
			t.Errorf("statusFor(%v) = %d, want %d", tt.err, got, tt.want)
		}
	}
}

func TestHandleInput(t *testing.T) {
	var calls []string
	record := func(name string) func() (*service.SelectionResult, error) {
		return func() (*service.SelectionResult, error) {
			calls = append(calls, name)
			return defaultSelectionResult(name), nil
		}
	}
	engage, enter, commit, leave := record("engage"), record("enter"), record("commit"), record("leave")

	server := setupTestServer(&MockGameService{
		EngageFunc: func(ctx context.Context, id string, c engine.Position) (*service.SelectionResult, error) { return engage() },
		EnterFunc:  func(ctx context.Context, id string, c engine.Position) (*service.SelectionResult, error) { return enter() },
		CommitFunc: func(ctx context.Context, id string) (*service.SelectionResult, error) { return commit() },
		LeaveFunc:  func(ctx context.Context, id string) (*service.SelectionResult, error) { return leave() },
	})

	ctx := context.Background()
	for _, action := range []string{"engage", "enter", "commit", "leave"} {
		if err := server.handleInput(ctx, "ab12", websocket.InputMessage{Action: action}); err != nil {
			t.Errorf("handleInput(%s) failed: %v", action, err)
		}
	}
	if diff := cmp.Diff([]string{"engage", "enter", "commit", "leave"}, calls); diff != "" {
		t.Errorf("Calls mismatch (-want +got):\n%s", diff)
	}
	if err := server.handleInput(ctx, "ab12", websocket.InputMessage{Action: "fly"}); err == nil {
		t.Error("Expected error for unknown action")
	}
}

func TestWebSocket(t *testing.T) {
	tests := []struct {
		name           string
		queryParams    string
		setupMock      func(*MockGameService)
		expectedStatus int
	}{
		{
			name:           "Missing session parameter",
			queryParams:    "",
			expectedStatus: http.StatusBadRequest,
		},
		{
			name:        "Invalid session",
			queryParams: "?session=invalid",
			setupMock: func(m *MockGameService) {
				m.GetSessionFunc = func(ctx context.Context, sessionID string) (*service.SessionInfo, error) {
					return nil, service.ErrSessionNotFound
				}
			},
			expectedStatus: http.StatusNotFound,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mockService := &MockGameService{}
			if tt.setupMock != nil {
				tt.setupMock(mockService)
			}

			w := serve(setupTestServer(mockService), httptest.NewRequest("GET", "/ws"+tt.queryParams, nil))
			if w.Code != tt.expectedStatus {
				t.Errorf("Expected status %d, got %d", tt.expectedStatus, w.Code)
			}
		})
	}
}

func TestCommitBroadcastsEventsBeforeState(t *testing.T) {
	mockService := &MockGameService{
		GetSessionFunc: func(ctx context.Context, sessionID string) (*service.SessionInfo, error) {
			return &service.SessionInfo{ID: sessionID}, nil
		},
		CommitFunc: func(ctx context.Context, sessionID string) (*service.SelectionResult, error) {
			state := &engine.GameState{Completed: true, WordsFound: 2, WordsTotal: 2}
			return &service.SelectionResult{
				Action:    service.ActionCommit,
				Accepted:  true,
				WordFound: "FE",
				Completed: true,
				GameState: state,
				Events: []engine.Event{
					{Type: engine.EventWordFound, Word: "FE"},
					{Type: engine.EventPuzzleCompleted},
				},
			}, nil
		},
	}
	server := setupTestServer(mockService)
	ts := httptest.NewServer(server)
	defer ts.Close()

	conn, _, err := gorillaws.DefaultDialer.Dial("ws"+strings.TrimPrefix(ts.URL, "http")+"/ws?session=order", nil)
	if err != nil {
		t.Fatalf("Dial failed: %v", err)
	}
	defer conn.Close()

	deadline := time.Now().Add(time.Second)
	for server.hub.ClientCount("order") == 0 {
		if time.Now().After(deadline) {
			t.Fatal("Client never registered")
		}
		time.Sleep(5 * time.Millisecond)
	}

	resp, err := http.Post(ts.URL+"/api/sessions/order/commit", "application/json", nil)
	if err != nil {
		t.Fatalf("Commit failed: %v", err)
	}
	resp.Body.Close()

	var got []string
	conn.SetReadDeadline(time.Now().Add(time.Second))
	for i := 0; i < 3; i++ {
		var message websocket.Message
		if err := conn.ReadJSON(&message); err != nil {
			t.Fatalf("Read %d failed: %v", i, err)
		}
		got = append(got, message.Event)
	}
	if diff := cmp.Diff([]string{"word_found", "puzzle_completed", "state_update"}, got); diff != "" {
		t.Errorf("Broadcast order mismatch (-want +got):\n%s", diff)
	}
}
