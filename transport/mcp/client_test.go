package mcp

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/wricardo/shanghai-tycoon/game/engine"
	"github.com/wricardo/shanghai-tycoon/game/service"
)

func callRequest(name string, args map[string]any) mcp.CallToolRequest {
	var request mcp.CallToolRequest
	request.Params.Name = name
	request.Params.Arguments = args
	return request
}

func resultText(t *testing.T, result *mcp.CallToolResult) string {
	t.Helper()
	if result == nil || len(result.Content) == 0 {
		t.Fatal("Expected tool result content")
	}
	text, ok := result.Content[0].(mcp.TextContent)
	if !ok {
		t.Fatalf("Expected text content, got %T", result.Content[0])
	}
	return text.Text
}

func sampleState() *engine.GameState {
	owner := 0
	return &engine.GameState{
		Board: &engine.Board{
			StartID: 0,
			Spaces: []*engine.Space{
				{ID: 0, Name: "Start", Kind: engine.KindStart, Successors: []int{1}},
				{ID: 1, Name: "The Bund", Kind: engine.KindOwnable, Successors: []int{2}, BasePrice: 10_000_000, OwnerID: &owner, UpgradeLevel: 1},
				{ID: 2, Name: "Fork", Kind: engine.KindRestArea, Successors: []int{3, 4}},
				{ID: 3, Name: "Rest", Kind: engine.KindRestArea, Successors: []int{0}},
				{ID: 4, Name: "Chance", Kind: engine.KindRandomEvent, Successors: []int{0}},
			},
		},
		Players: []*engine.Player{
			{ID: 0, Profile: engine.Profile{Name: "Ann"}, Cash: 90_000_000, NetWorth: 100_000_000, Position: 1, Owned: []int{1}},
			{ID: 1, Profile: engine.Profile{Name: "Bo"}, Cash: 100_000_000, NetWorth: 100_000_000, Autonomous: true, IncarceratedTurns: 2},
		},
		Round:    2,
		Status:   engine.StatusInProgress,
		Blocking: engine.BlockNone,
	}
}

// recorder is a fake REST API that remembers what it was asked
type recorder struct {
	mu       sync.Mutex
	requests []*http.Request
	bodies   []map[string]any
	respond  func(w http.ResponseWriter, r *http.Request)
}

func (rec *recorder) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	var body map[string]any
	json.NewDecoder(r.Body).Decode(&body)
	rec.mu.Lock()
	rec.requests = append(rec.requests, r)
	rec.bodies = append(rec.bodies, body)
	rec.mu.Unlock()
	w.Header().Set("Content-Type", "application/json")
	rec.respond(w, r)
}

func (rec *recorder) last() (*http.Request, map[string]any) {
	rec.mu.Lock()
	defer rec.mu.Unlock()
	n := len(rec.requests)
	return rec.requests[n-1], rec.bodies[n-1]
}

func TestNewClient(t *testing.T) {
	baseURL := "http://localhost:8080"
	client := NewClient(baseURL + "/")

	if client == nil {
		t.Fatal("Expected client to be created")
	}
	if client.baseURL != baseURL {
		t.Errorf("Expected baseURL %s, got %s", baseURL, client.baseURL)
	}
	if client.httpClient == nil {
		t.Error("Expected HTTP client to be initialized")
	}
	if client.GetMCPServer() == nil {
		t.Error("Expected MCP server to be initialized")
	}
}

func TestClient_apiCall(t *testing.T) {
	rec := &recorder{respond: func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]any{"id": "test-session"})
	}}
	server := httptest.NewServer(rec)
	defer server.Close()

	client := NewClient(server.URL)

	var response map[string]any
	err := client.apiCall(context.Background(), "POST", "/api/sessions/x/roll", "tok", map[string]int{"a": 1}, &response)
	if err != nil {
		t.Fatalf("apiCall failed: %v", err)
	}
	if response["id"] != "test-session" {
		t.Errorf("Expected id test-session, got %v", response["id"])
	}

	req, body := rec.last()
	if got := req.Header.Get("Authorization"); got != "Bearer tok" {
		t.Errorf("Expected bearer header, got %q", got)
	}
	if body["a"] != float64(1) {
		t.Errorf("Expected body to be forwarded, got %v", body)
	}
}

func TestClient_apiCall_Error(t *testing.T) {
	client := NewClient("http://invalid-url-that-does-not-exist:9999")

	if err := client.apiCall(context.Background(), "GET", "/api", "", nil, nil); err == nil {
		t.Error("Expected error for invalid URL")
	}
}

func TestClient_apiCall_HTTPError(t *testing.T) {
	tests := []struct {
		name     string
		status   int
		body     string
		expected string
	}{
		{name: "JSON error message", status: http.StatusConflict, body: `{"error":"action not allowed in current state"}`, expected: "action not allowed in current state"},
		{name: "Plain error", status: http.StatusInternalServerError, body: "Internal Server Error", expected: "API error: 500"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				w.Write([]byte(tt.body))
			}))
			defer server.Close()

			err := NewClient(server.URL).apiCall(context.Background(), "GET", "/api", "", nil, nil)
			if err == nil || err.Error() != tt.expected {
				t.Errorf("Expected error %q, got %v", tt.expected, err)
			}
		})
	}
}

func TestClient_createSessionStoresSeat(t *testing.T) {
	human := 0
	rec := &recorder{respond: func(w http.ResponseWriter, r *http.Request) {
		switch {
		case r.URL.Path == "/api/sessions":
			w.WriteHeader(http.StatusCreated)
			json.NewEncoder(w).Encode(map[string]any{
				"id":              "ab12",
				"config_name":     "shanghai",
				"human_player_id": human,
				"game_state":      sampleState(),
				"seat_token":      "seat-abc",
			})
		default:
			res := service.ActionResult{GameState: sampleState()}
			json.NewEncoder(w).Encode(res)
		}
	}}
	server := httptest.NewServer(rec)
	defer server.Close()

	client := NewClient(server.URL)
	ctx := context.Background()

	result, err := client.handleCreateSession(ctx, callRequest("create_session", map[string]any{
		"config_id": "shanghai", "character_id": "li", "players": float64(3), "seed": float64(42),
	}))
	if err != nil {
		t.Fatalf("handleCreateSession failed: %v", err)
	}
	text := resultText(t, result)
	if !strings.Contains(text, "Created session: ab12") || !strings.Contains(text, "You are player 0") {
		t.Errorf("Unexpected result text:\n%s", text)
	}

	_, body := rec.last()
	if body["config_id"] != "shanghai" || body["character_id"] != "li" || body["players"] != float64(3) || body["seed"] != float64(42) {
		t.Errorf("Unexpected create body: %v", body)
	}

	// Turn actions reuse the stored token
	if _, err := client.handleRoll(ctx, callRequest("roll_dice", map[string]any{"session_id": "ab12"})); err != nil {
		t.Fatalf("handleRoll failed: %v", err)
	}
	req, _ := rec.last()
	if req.URL.Path != "/api/sessions/ab12/roll" {
		t.Errorf("Unexpected path %s", req.URL.Path)
	}
	if got := req.Header.Get("Authorization"); got != "Bearer seat-abc" {
		t.Errorf("Expected stored seat token, got %q", got)
	}

	// An explicit token wins
	client.handleAcknowledge(ctx, callRequest("acknowledge", map[string]any{"session_id": "ab12", "seat_token": "other"}))
	req, _ = rec.last()
	if got := req.Header.Get("Authorization"); got != "Bearer other" {
		t.Errorf("Expected explicit seat token, got %q", got)
	}
}

func TestClient_actionArguments(t *testing.T) {
	rec := &recorder{respond: func(w http.ResponseWriter, r *http.Request) {
		if strings.HasSuffix(r.URL.Path, "/autoplay") {
			json.NewEncoder(w).Encode(service.AutoPlayResult{
				ActionResult:  service.ActionResult{GameState: sampleState()},
				Actions:       4,
				StoppedReason: service.StopHumanTurn,
			})
			return
		}
		json.NewEncoder(w).Encode(service.ActionResult{GameState: sampleState()})
	}}
	server := httptest.NewServer(rec)
	defer server.Close()

	client := NewClient(server.URL)
	ctx := context.Background()

	result, _ := client.handleChooseBranch(ctx, callRequest("choose_branch", map[string]any{"session_id": "s"}))
	if !result.IsError {
		t.Error("Expected an error result without space_id")
	}

	client.handleChooseBranch(ctx, callRequest("choose_branch", map[string]any{"session_id": "s", "space_id": float64(4)}))
	req, body := rec.last()
	if req.URL.Path != "/api/sessions/s/branch" || body["space_id"] != float64(4) {
		t.Errorf("Unexpected branch call %s %v", req.URL.Path, body)
	}

	result, _ = client.handleDecide(ctx, callRequest("decide", map[string]any{"session_id": "s"}))
	if !result.IsError {
		t.Error("Expected an error result without accept")
	}

	client.handleDecide(ctx, callRequest("decide", map[string]any{"session_id": "s", "accept": false}))
	req, body = rec.last()
	if req.URL.Path != "/api/sessions/s/decide" || body["accept"] != false {
		t.Errorf("Unexpected decide call %s %v", req.URL.Path, body)
	}

	result, _ = client.handleAutoPlay(ctx, callRequest("autoplay", map[string]any{"session_id": "s", "max_actions": float64(10)}))
	_, body = rec.last()
	if body["max_actions"] != float64(10) {
		t.Errorf("Expected max_actions 10, got %v", body)
	}
	if text := resultText(t, result); !strings.Contains(text, "ran 4 actions, stopped: human_turn") {
		t.Errorf("Unexpected autoplay text:\n%s", text)
	}
}

func TestClient_gameLogQuery(t *testing.T) {
	rec := &recorder{respond: func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(service.LogResponse{
			Entries:    []engine.LogEntry{{Sequence: 12, Round: 3, Category: engine.LogCatastrophe, Message: "Typhoon"}},
			Total:      1500,
			Page:       2,
			TotalPages: 3,
			HasNext:    true,
		})
	}}
	server := httptest.NewServer(rec)
	defer server.Close()

	result, _ := NewClient(server.URL).handleGameLog(context.Background(), callRequest("game_log", map[string]any{
		"session_id": "s", "page": float64(2), "limit": float64(5), "category": "catastrophe",
	}))

	req, _ := rec.last()
	q := req.URL.Query()
	if q.Get("page") != "2" || q.Get("limit") != "5" || q.Get("category") != "catastrophe" {
		t.Errorf("Unexpected query %s", req.URL.RawQuery)
	}
	text := resultText(t, result)
	for _, want := range []string{"page 2/3", "1,500 entries", "#12 R3 [catastrophe] Typhoon", "page 3"} {
		if !strings.Contains(text, want) {
			t.Errorf("Expected %q in:\n%s", want, text)
		}
	}
}

func TestClient_errorResult(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
		json.NewEncoder(w).Encode(map[string]string{"error": "session not found"})
	}))
	defer server.Close()

	result, err := NewClient(server.URL).handleGameState(context.Background(), callRequest("game_state", map[string]any{"session_id": "zz"}))
	if err != nil {
		t.Fatalf("Tool errors should be results, got %v", err)
	}
	if !result.IsError || !strings.Contains(resultText(t, result), "session not found") {
		t.Errorf("Expected an error result, got %+v", result)
	}
}

func TestFormatGameState(t *testing.T) {
	you := 0
	text := formatGameState(sampleState(), &you)

	for _, want := range []string{
		"Round 2",
		"▶ [0] Ann: cash 90,000,000, net worth 100,000,000, at The Bund (#1), 1 lots (you)",
		"[1] Bo:",
		"jailed 2",
		"(computer)",
	} {
		if !strings.Contains(text, want) {
			t.Errorf("Expected %q in:\n%s", want, text)
		}
	}

	if got := formatGameState(nil, nil); got != "No game state available" {
		t.Errorf("Unexpected nil state text %q", got)
	}
}

func TestFormatGameState_Concluded(t *testing.T) {
	state := sampleState()
	winner := 1
	state.Status = engine.StatusConcluded
	state.WinnerID = &winner
	state.Players[0].Eliminated = true

	text := formatGameState(state, nil)
	if !strings.Contains(text, "ELIMINATED") {
		t.Error("Expected eliminated marker")
	}
	if !strings.Contains(text, "Bo wins!") {
		t.Errorf("Expected winner line in:\n%s", text)
	}
}

func TestFormatPending(t *testing.T) {
	state := sampleState()
	tests := []struct {
		name    string
		pending *engine.PendingDecision
		want    string
	}{
		{
			name:    "Fork",
			pending: &engine.PendingDecision{Kind: engine.DecisionBranch, Options: []int{3, 4}},
			want:    "one of Rest (#3), Chance (#4)",
		},
		{
			name:    "Purchase",
			pending: &engine.PendingDecision{Kind: engine.DecisionPurchase, SpaceID: 1, Cost: 10_000_000, Affordable: true},
			want:    "Buy The Bund (#1) for 10,000,000 (affordable)",
		},
		{
			name:    "Upgrade",
			pending: &engine.PendingDecision{Kind: engine.DecisionUpgrade, SpaceID: 1, Cost: 5_000_000, Level: 1},
			want:    "Upgrade to level 2 The Bund (#1) for 5,000,000 (NOT affordable)",
		},
		{
			name:    "Event",
			pending: &engine.PendingDecision{Kind: engine.DecisionEvent, Event: &engine.EventDescriptor{Title: "Lucky Find", Description: "A wallet"}},
			want:    "Event: Lucky Find - A wallet",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := formatPending(state, tt.pending); !strings.Contains(got, tt.want) {
				t.Errorf("Expected %q in %q", tt.want, got)
			}
		})
	}
}

func TestFormatActionResult(t *testing.T) {
	state := sampleState()
	result := &service.ActionResult{
		GameState: state,
		Roll:      &engine.RollResult{PlayerID: 0, Value: 3},
		Move:      &engine.MoveTrace{PlayerID: 0, From: 0, Steps: 3, Path: []int{1, 2, 4}},
		Events:    []engine.LogEntry{{Category: engine.LogEvent, Message: "Lucky Find"}},
		CanRoll:   true,
		Active:    state.Players[1],
	}

	text := formatActionResult(result)
	for _, want := range []string{
		"Player 0 rolled a 3",
		"Path: The Bund (#1) → Fork (#2) → Chance (#4)",
		"[event] Lucky Find",
		"Next: Bo can roll",
	} {
		if !strings.Contains(text, want) {
			t.Errorf("Expected %q in:\n%s", want, text)
		}
	}

	skipped := formatActionResult(&service.ActionResult{GameState: state, Roll: &engine.RollResult{PlayerID: 1, Skipped: true}})
	if !strings.Contains(skipped, "Player 1 skipped the turn") {
		t.Errorf("Expected skipped turn line in:\n%s", skipped)
	}
}

func TestClient_handleGameRules(t *testing.T) {
	client := NewClient("http://localhost:8080")

	result, err := client.handleGameRules(context.Background(), callRequest("game_rules", nil))
	if err != nil {
		t.Fatalf("handleGameRules failed: %v", err)
	}
	text := resultText(t, result)
	for _, want := range []string{
		"YOUR TURN", "choose_branch", "autoplay", "net worth",
		"6-sided die", "Every 20 rounds", "5% chance of a catastrophe",
		"reset to 100,000", "level 1", "shuffled", "halved",
		"you keep your turns", "no round limit",
	} {
		if !strings.Contains(text, want) {
			t.Errorf("Rules should mention %q", want)
		}
	}
	for _, stale := range []string{"round limit is reached", "Turn order is shuffled", "Once per round"} {
		if strings.Contains(text, stale) {
			t.Errorf("Rules should not claim %q", stale)
		}
	}
}

func TestRulesText_FollowsRules(t *testing.T) {
	rules := engine.DefaultRules()
	rules.IncarcerationTurns = 2
	rules.GlobalEventPeriod = 8
	rules.CashFloor = 50_000

	text := rulesText(rules)
	for _, want := range []string{"sit out your next 2 turns", "Every 8 rounds", "reset to 50,000"} {
		if !strings.Contains(text, want) {
			t.Errorf("Rules should mention %q:\n%s", want, text)
		}
	}
	for _, action := range engine.CatastropheActions {
		if catastropheText[action] == "" {
			t.Errorf("No description for catastrophe %s", action)
		}
	}
}

func TestClient_listSessionsAndCharacters(t *testing.T) {
	rec := &recorder{respond: func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/api/sessions":
			json.NewEncoder(w).Encode(map[string]any{
				"count": 1,
				"sessions": []service.SessionInfo{
					{ID: "ab12", ConfigName: "shanghai", CreatedAt: time.Now().Add(-time.Hour), GameState: sampleState()},
				},
			})
		default:
			json.NewEncoder(w).Encode([]engine.Profile{{CharacterID: "li", Name: "Li", Luck: 80, Catchphrase: "Fortune favours"}})
		}
	}}
	server := httptest.NewServer(rec)
	defer server.Close()
	client := NewClient(server.URL)
	ctx := context.Background()

	result, _ := client.handleListSessions(ctx, callRequest("list_sessions", nil))
	if text := resultText(t, result); !strings.Contains(text, "ab12") || !strings.Contains(text, "1 hour ago") {
		t.Errorf("Unexpected sessions text:\n%s", text)
	}

	result, _ = client.handleListCharacters(ctx, callRequest("list_characters", map[string]any{"config_id": "shanghai"}))
	req, _ := rec.last()
	if req.URL.Path != "/api/configs/shanghai/characters" {
		t.Errorf("Unexpected path %s", req.URL.Path)
	}
	if text := resultText(t, result); !strings.Contains(text, "Li (li)") || !strings.Contains(text, "LUK 80") {
		t.Errorf("Unexpected characters text:\n%s", text)
	}

	client.handleListCharacters(ctx, callRequest("list_characters", nil))
	req, _ = rec.last()
	if req.URL.Path != "/api/characters" {
		t.Errorf("Expected default characters path, got %s", req.URL.Path)
	}
}
