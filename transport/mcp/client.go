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
	"sync"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
	"github.com/wricardo/shanghai-tycoon/game/engine"
	"github.com/wricardo/shanghai-tycoon/game/service"
)

// Client is a thin MCP client that proxies to the REST API
type Client struct {
	baseURL    string
	httpClient *http.Client
	mcpServer  *server.MCPServer

	mu    sync.Mutex
	seats map[string]string // session ID -> seat token
}

// NewClient creates a new MCP client that calls the REST API
func NewClient(baseURL string) *Client {
	c := &Client{
		baseURL: strings.TrimSuffix(baseURL, "/"),
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
		seats: make(map[string]string),
	}

	c.initMCPServer()
	return c
}

// initMCPServer initializes the MCP server with all tools
func (c *Client) initMCPServer() {
	c.mcpServer = server.NewMCPServer(
		"Shanghai Tycoon",
		"1.0.0",
		server.WithToolCapabilities(true),
		server.WithInstructions(`Shanghai Tycoon - MCP Interface

This is a thin client that proxies all requests to the REST API server.

GAME OBJECTIVE:
Be the last tycoon standing, or hold the highest net worth when the game ends.

TURN FLOW:
1. roll_dice on your turn
2. If the move stops at a fork, choose_branch with one of the offered spaces
3. If you land on an unowned or own lot, decide to buy or upgrade
4. If an event card is shown, acknowledge it
5. autoplay to let the computer players take their turns

Call game_rules for the full rules.`),
	)

	c.registerTools()
}

func sessionProp() map[string]any {
	return map[string]any{
		"type":        "string",
		"description": "Session ID",
	}
}

func seatProp() map[string]any {
	return map[string]any{
		"type":        "string",
		"description": "Seat token (optional, defaults to the one returned by create_session)",
	}
}

// registerTools registers all MCP tools
func (c *Client) registerTools() {
	// Session management
	c.mcpServer.AddTool(mcp.Tool{
		Name:        "create_session",
		Description: "Create a new game session. By default you take one seat and the rest are computer players.",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]any{
				"config_id": map[string]any{
					"type":        "string",
					"description": "Configuration to use (optional)",
				},
				"character_id": map[string]any{
					"type":        "string",
					"description": "Character to play as (optional, see list_characters)",
				},
				"players": map[string]any{
					"type":        "integer",
					"minimum":     2,
					"maximum":     6,
					"description": "Total number of players including you (optional)",
				},
				"autonomous_only": map[string]any{
					"type":        "boolean",
					"description": "Seat computer players only and watch",
				},
				"seed": map[string]any{
					"type":        "integer",
					"description": "Random seed for a reproducible game (optional)",
				},
			},
		},
	}, c.handleCreateSession)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "list_sessions",
		Description: "List all active game sessions",
		InputSchema: mcp.ToolInputSchema{
			Type:       "object",
			Properties: map[string]any{},
		},
	}, c.handleListSessions)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "get_session",
		Description: "Get details of a specific session",
		InputSchema: mcp.ToolInputSchema{
			Type:       "object",
			Properties: map[string]any{"session_id": sessionProp()},
			Required:   []string{"session_id"},
		},
	}, c.handleGetSession)

	// Game operations
	c.mcpServer.AddTool(mcp.Tool{
		Name:        "game_state",
		Description: "Get the current game state: players, whose turn it is and any pending decision",
		InputSchema: mcp.ToolInputSchema{
			Type:       "object",
			Properties: map[string]any{"session_id": sessionProp()},
			Required:   []string{"session_id"},
		},
	}, c.handleGameState)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "roll_dice",
		Description: "Roll the die for your turn and move",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]any{
				"session_id": sessionProp(),
				"seat_token": seatProp(),
			},
			Required: []string{"session_id"},
		},
	}, c.handleRoll)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "choose_branch",
		Description: "Choose which way to go at a fork",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]any{
				"session_id": sessionProp(),
				"space_id": map[string]any{
					"type":        "integer",
					"description": "One of the offered successor space IDs",
				},
				"seat_token": seatProp(),
			},
			Required: []string{"session_id", "space_id"},
		},
	}, c.handleChooseBranch)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "decide",
		Description: "Accept or decline a pending purchase or upgrade offer",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]any{
				"session_id": sessionProp(),
				"accept": map[string]any{
					"type":        "boolean",
					"description": "true to buy or upgrade, false to pass",
				},
				"seat_token": seatProp(),
			},
			Required: []string{"session_id", "accept"},
		},
	}, c.handleDecide)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "acknowledge",
		Description: "Dismiss the event card that is blocking the game",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]any{
				"session_id": sessionProp(),
				"seat_token": seatProp(),
			},
			Required: []string{"session_id"},
		},
	}, c.handleAcknowledge)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "autoplay",
		Description: "Let computer players act until it is your turn, the game ends or the action limit is hit",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]any{
				"session_id": sessionProp(),
				"max_actions": map[string]any{
					"type":        "integer",
					"description": "Maximum number of actions (default 50)",
				},
			},
			Required: []string{"session_id"},
		},
	}, c.handleAutoPlay)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "game_log",
		Description: "Read the game log, newest first",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]any{
				"session_id": sessionProp(),
				"page": map[string]any{
					"type":        "integer",
					"description": "Page number (default 1)",
				},
				"limit": map[string]any{
					"type":        "integer",
					"description": "Entries per page (default 20, max 100)",
				},
				"category": map[string]any{
					"type":        "string",
					"enum":        []string{"info", "success", "danger", "event", "catastrophe", "banter"},
					"description": "Only entries of this category",
				},
			},
			Required: []string{"session_id"},
		},
	}, c.handleGameLog)

	// Configuration
	c.mcpServer.AddTool(mcp.Tool{
		Name:        "list_configs",
		Description: "List available board configurations",
		InputSchema: mcp.ToolInputSchema{
			Type:       "object",
			Properties: map[string]any{},
		},
	}, c.handleListConfigs)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "list_characters",
		Description: "List the characters you can play as",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]any{
				"config_id": map[string]any{
					"type":        "string",
					"description": "Configuration (optional, defaults to the server default)",
				},
			},
		},
	}, c.handleListCharacters)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "game_rules",
		Description: "Get the complete game rules",
		InputSchema: mcp.ToolInputSchema{
			Type:       "object",
			Properties: map[string]any{},
		},
	}, c.handleGameRules)
}

// GetMCPServer returns the underlying MCP server
func (c *Client) GetMCPServer() *server.MCPServer {
	return c.mcpServer
}

// Helper methods for API calls

func (c *Client) apiCall(ctx context.Context, method, path, token string, body any, result any) error {
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
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
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

func (c *Client) rememberSeat(sessionID, token string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.seats[sessionID] = token
}

// seatFor returns the explicit token or the one stored for the session
func (c *Client) seatFor(sessionID string, args map[string]any) string {
	if token, _ := args["seat_token"].(string); token != "" {
		return token
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.seats[sessionID]
}

func arguments(request mcp.CallToolRequest) map[string]any {
	args, _ := request.Params.Arguments.(map[string]any)
	if args == nil {
		return map[string]any{}
	}
	return args
}

func intArg(args map[string]any, key string) (int, bool) {
	v, ok := args[key].(float64)
	return int(v), ok
}

func sessionPath(sessionID, suffix string) string {
	return "/api/sessions/" + url.PathEscape(sessionID) + suffix
}

// Tool handlers

func (c *Client) handleCreateSession(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := arguments(request)

	body := service.CreateSessionRequest{}
	body.ConfigID, _ = args["config_id"].(string)
	body.CharacterID, _ = args["character_id"].(string)
	body.AutonomousOnly, _ = args["autonomous_only"].(bool)
	if n, ok := intArg(args, "players"); ok {
		body.Players = n
	}
	if seed, ok := args["seed"].(float64); ok {
		body.Seed = int64(seed)
	}

	var created struct {
		service.SessionInfo
		SeatToken string `json:"seat_token"`
	}
	if err := c.apiCall(ctx, "POST", "/api/sessions", "", body, &created); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	if created.SeatToken != "" {
		c.rememberSeat(created.ID, created.SeatToken)
	}

	var result strings.Builder
	result.WriteString(fmt.Sprintf("Created session: %s\nConfig: %s\n", created.ID, created.ConfigName))
	if created.HumanPlayerID != nil {
		result.WriteString(fmt.Sprintf("You are player %d\n", *created.HumanPlayerID))
	}
	result.WriteString("\n" + formatGameState(created.GameState, created.HumanPlayerID))
	return mcp.NewToolResultText(result.String()), nil
}

func (c *Client) handleListSessions(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	var response struct {
		Count    int                   `json:"count"`
		Sessions []service.SessionInfo `json:"sessions"`
	}

	if err := c.apiCall(ctx, "GET", "/api/sessions", "", nil, &response); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	result := fmt.Sprintf("Active Sessions (%d):\n\n", response.Count)
	for _, s := range response.Sessions {
		line := fmt.Sprintf("- %s (Config: %s, Created: %s", s.ID, s.ConfigName, humanize.Time(s.CreatedAt))
		if s.GameState != nil {
			line += fmt.Sprintf(", Round %d, %s", s.GameState.Round, s.GameState.Status)
		}
		result += line + ")\n"
	}

	return mcp.NewToolResultText(result), nil
}

func (c *Client) handleGetSession(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	sessionID, _ := arguments(request)["session_id"].(string)

	var session service.SessionInfo
	if err := c.apiCall(ctx, "GET", sessionPath(sessionID, ""), "", nil, &session); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	return mcp.NewToolResultText(formatSessionInfo(&session)), nil
}

func (c *Client) handleGameState(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	sessionID, _ := arguments(request)["session_id"].(string)

	var state engine.GameState
	if err := c.apiCall(ctx, "GET", sessionPath(sessionID, "/state"), "", nil, &state); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	return mcp.NewToolResultText(formatGameState(&state, nil)), nil
}

// act posts a turn action with the caller's seat token
func (c *Client) act(ctx context.Context, request mcp.CallToolRequest, suffix string, body any) (*mcp.CallToolResult, error) {
	args := arguments(request)
	sessionID, _ := args["session_id"].(string)

	var result service.ActionResult
	if err := c.apiCall(ctx, "POST", sessionPath(sessionID, suffix), c.seatFor(sessionID, args), body, &result); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return mcp.NewToolResultText(formatActionResult(&result)), nil
}

func (c *Client) handleRoll(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return c.act(ctx, request, "/roll", nil)
}

func (c *Client) handleChooseBranch(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	spaceID, ok := intArg(arguments(request), "space_id")
	if !ok {
		return mcp.NewToolResultError("space_id is required"), nil
	}
	return c.act(ctx, request, "/branch", map[string]int{"space_id": spaceID})
}

func (c *Client) handleDecide(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	accept, ok := arguments(request)["accept"].(bool)
	if !ok {
		return mcp.NewToolResultError("accept is required"), nil
	}
	return c.act(ctx, request, "/decide", map[string]bool{"accept": accept})
}

func (c *Client) handleAcknowledge(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return c.act(ctx, request, "/acknowledge", nil)
}

func (c *Client) handleAutoPlay(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := arguments(request)
	sessionID, _ := args["session_id"].(string)

	body := map[string]int{}
	if n, ok := intArg(args, "max_actions"); ok {
		body["max_actions"] = n
	}

	var result service.AutoPlayResult
	if err := c.apiCall(ctx, "POST", sessionPath(sessionID, "/autoplay"), "", body, &result); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	text := fmt.Sprintf("Autoplay ran %d actions, stopped: %s\n\n", result.Actions, result.StoppedReason)
	return mcp.NewToolResultText(text + formatActionResult(&result.ActionResult)), nil
}

func (c *Client) handleGameLog(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := arguments(request)
	sessionID, _ := args["session_id"].(string)

	params := url.Values{}
	if page, ok := intArg(args, "page"); ok {
		params.Set("page", fmt.Sprint(page))
	}
	if limit, ok := intArg(args, "limit"); ok {
		params.Set("limit", fmt.Sprint(limit))
	}
	if category, _ := args["category"].(string); category != "" {
		params.Set("category", category)
	}
	path := sessionPath(sessionID, "/logs")
	if len(params) > 0 {
		path += "?" + params.Encode()
	}

	var logs service.LogResponse
	if err := c.apiCall(ctx, "GET", path, "", nil, &logs); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	return mcp.NewToolResultText(formatLogs(&logs)), nil
}

func (c *Client) handleListConfigs(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	var configs []service.ConfigInfo
	if err := c.apiCall(ctx, "GET", "/api/configs", "", nil, &configs); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	result := "Available Configurations:\n\n"
	for _, config := range configs {
		result += fmt.Sprintf("• %s (%s)\n  %s\n  Spaces: %d, Forks: %d, Characters: %d\n\n",
			config.Name, config.ConfigID, config.Description, config.Spaces, config.Branches, config.Characters)
	}

	return mcp.NewToolResultText(result), nil
}

func (c *Client) handleListCharacters(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	configID, _ := arguments(request)["config_id"].(string)
	path := "/api/characters"
	if configID != "" {
		path = "/api/configs/" + url.PathEscape(configID) + "/characters"
	}

	var characters []engine.Profile
	if err := c.apiCall(ctx, "GET", path, "", nil, &characters); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	var result strings.Builder
	result.WriteString("Characters:\n\n")
	for _, p := range characters {
		result.WriteString(fmt.Sprintf("• %s (%s) INT %d / CHA %d / LUK %d\n", p.Name, p.CharacterID, p.Intelligence, p.Charisma, p.Luck))
		if p.Description != "" {
			result.WriteString("  " + p.Description + "\n")
		}
		if p.Catchphrase != "" {
			result.WriteString(fmt.Sprintf("  %q\n", p.Catchphrase))
		}
	}
	return mcp.NewToolResultText(result.String()), nil
}

func (c *Client) handleGameRules(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return mcp.NewToolResultText(rulesText(engine.DefaultRules())), nil
}

var catastropheText = map[engine.CatastropheAction]string{
	engine.ResetCashToFloor:   "everyone's cash is reset to %s",
	engine.ZeroPropertyLevels: "every owned lot drops back to level 1",
	engine.ShuffleCash:        "cash is shuffled at random between the players still in",
	engine.HalveCash:          "everyone's cash is halved",
}

// rulesText describes the game for the given rule set
func rulesText(r engine.Rules) string {
	var b strings.Builder
	line := func(format string, args ...any) {
		b.WriteString(fmt.Sprintf(format, args...))
		b.WriteString("\n")
	}

	line("Shanghai Tycoon - Rules")
	line("")
	line("SETUP:")
	line("• %d to %d players start on the Start space with %s each.", engine.MinPlayers, engine.MaxPlayers, engine.Money(r.StartingCash))
	line("• The human seat always takes the first turn; computer opponents follow.")
	line("")
	line("YOUR TURN:")
	line("• Roll a %d-sided die and move that many spaces along the board.", r.DiceSides)
	line("• Entering Start, passing or landing, pays %s.", engine.Money(r.PassStartBonus))
	line("• At a fork the move pauses: choose_branch picks one of the offered spaces and the rest of the roll continues from there.")
	line("")
	line("LANDING:")
	line("• Unowned lot: you may buy it at its price.")
	line("• Your own lot: you may upgrade it up to level %d for %.0f%% of the price; rent grows %.1fx per level.",
		r.MaxUpgradeLevel, r.UpgradeCostRatio*100, r.RentGrowthFactor)
	line("• Someone else's lot: pay rent to the owner (%.0f%% of the price at level 1). No rent is due while the owner is in jail.", r.RentRatio*100)
	line("• Charisma above %d gives a %.0f%% chance to halve the rent.", r.CharismaThreshold, r.CharismaHalvingChance*100)
	line("• Chance: an event card changes your cash. Acknowledge it to continue.")
	if r.IncarcerationTurns > 0 {
		line("• Jail: you sit out your next %d turns.", r.IncarcerationTurns)
	} else {
		line("• Jail: a short visit; you keep your turns.")
	}
	line("• Bank: collect %s. Tax office: pay %s.", engine.Money(r.BankBonus), engine.Money(r.TaxAmount))
	line("• Shop and rest areas do nothing.")
	line("")
	line("MARKET EVENTS:")
	line("• Every %d rounds a market boom or bust moves cash by up to %d%% for all players or one group (below or above median cash, landlords with more than %d lots, odd seats), at least %s either way.",
		r.GlobalEventPeriod, r.MaxGlobalPercentage, r.LandlordThreshold, engine.Money(r.GlobalMinChange))
	line("• In any other round there is a %.0f%% chance of a catastrophe:", r.CatastropheChance*100)
	for _, action := range engine.CatastropheActions {
		text := catastropheText[action]
		if action == engine.ResetCashToFloor {
			text = fmt.Sprintf(text, engine.Money(r.CashFloor))
		}
		line("  - %s", text)
	}
	line("• The player holding the first turn of the round acknowledges the event.")
	line("")
	line("ELIMINATION AND WINNING:")
	line("• A player whose cash drops below zero is eliminated and their lots return to the bank.")
	line("• The last player standing wins. There is no round limit.")
	line("• Net worth (cash plus property value) is shown for every player.")
	line("")
	line("COMPUTER PLAYERS:")
	b.WriteString(fmt.Sprintf("• Use autoplay to let them act. They buy when cash exceeds %.0f%% of the price and upgrade above %.0f%%.",
		r.PurchaseMargin*100, r.UpgradeMargin*100))
	return b.String()
}

// Formatting helpers

func formatSessionInfo(session *service.SessionInfo) string {
	return fmt.Sprintf("Session: %s\nConfig: %s\nCreated: %s (%s)\n\n%s",
		session.ID, session.ConfigName,
		session.CreatedAt.Format("2006-01-02 15:04:05"), humanize.Time(session.CreatedAt),
		formatGameState(session.GameState, session.HumanPlayerID))
}

func spaceName(state *engine.GameState, id int) string {
	if state.Board != nil {
		if sp, ok := state.Board.Space(id); ok {
			return fmt.Sprintf("%s (#%d)", sp.Name, id)
		}
	}
	return fmt.Sprintf("#%d", id)
}

func formatGameState(state *engine.GameState, you *int) string {
	if state == nil {
		return "No game state available"
	}

	var result strings.Builder
	result.WriteString(fmt.Sprintf("Round %d | Turns: %d | Status: %s | Blocking: %s\n\n",
		state.Round, state.TurnsPlayed, state.Status, state.Blocking))

	active := state.ActivePlayer()
	for _, p := range state.Players {
		marker := "  "
		if active != nil && p.ID == active.ID {
			marker = "▶ "
		}
		line := fmt.Sprintf("%s[%d] %s: cash %s, net worth %s, at %s, %d lots",
			marker, p.ID, p.Profile.Name, engine.Money(p.Cash), engine.Money(p.NetWorth),
			spaceName(state, p.Position), len(p.Owned))
		if p.IncarceratedTurns > 0 {
			line += fmt.Sprintf(", jailed %d", p.IncarceratedTurns)
		}
		if p.Eliminated {
			line += ", ELIMINATED"
		}
		if you != nil && p.ID == *you {
			line += " (you)"
		} else if p.Autonomous {
			line += " (computer)"
		}
		result.WriteString(line + "\n")
	}

	if state.Pending != nil {
		result.WriteString("\n" + formatPending(state, state.Pending))
	}

	if state.Status == engine.StatusConcluded {
		if state.WinnerID != nil {
			if w := state.Player(*state.WinnerID); w != nil {
				result.WriteString(fmt.Sprintf("\n🏆 %s wins!", w.Profile.Name))
			}
		} else {
			result.WriteString("\nGame over")
		}
	}

	return result.String()
}

func formatPending(state *engine.GameState, p *engine.PendingDecision) string {
	switch p.Kind {
	case engine.DecisionBranch:
		options := make([]string, len(p.Options))
		for i, id := range p.Options {
			options[i] = spaceName(state, id)
		}
		return fmt.Sprintf("Fork: choose_branch with one of %s\n", strings.Join(options, ", "))
	case engine.DecisionPurchase, engine.DecisionUpgrade:
		verb := "Buy"
		if p.Kind == engine.DecisionUpgrade {
			verb = fmt.Sprintf("Upgrade to level %d", p.Level+1)
		}
		affordable := "affordable"
		if !p.Affordable {
			affordable = "NOT affordable"
		}
		return fmt.Sprintf("Offer: %s %s for %s (%s). Use decide.\n", verb, spaceName(state, p.SpaceID), engine.Money(p.Cost), affordable)
	default:
		if p.Event != nil {
			return fmt.Sprintf("Event: %s - %s. Use acknowledge.\n", p.Event.Title, p.Event.Description)
		}
		return "Event pending. Use acknowledge.\n"
	}
}

func formatActionResult(result *service.ActionResult) string {
	var out strings.Builder

	if result.Roll != nil {
		if result.Roll.Skipped {
			out.WriteString(fmt.Sprintf("Player %d skipped the turn (jail)\n", result.Roll.PlayerID))
		} else {
			out.WriteString(fmt.Sprintf("Player %d rolled a %d\n", result.Roll.PlayerID, result.Roll.Value))
		}
	}
	if result.Move != nil && result.GameState != nil && len(result.Move.Path) > 0 {
		hops := make([]string, len(result.Move.Path))
		for i, id := range result.Move.Path {
			hops[i] = spaceName(result.GameState, id)
		}
		out.WriteString("Path: " + strings.Join(hops, " → ") + "\n")
	}

	if len(result.Events) > 0 {
		out.WriteString("\nEvents:\n")
		for _, e := range result.Events {
			out.WriteString(fmt.Sprintf("  [%s] %s\n", e.Category, e.Message))
		}
	}

	out.WriteString("\n" + formatGameState(result.GameState, nil))
	if result.CanRoll && result.Active != nil {
		out.WriteString(fmt.Sprintf("\n\nNext: %s can roll", result.Active.Profile.Name))
	}
	return out.String()
}

func formatLogs(logs *service.LogResponse) string {
	var result strings.Builder
	result.WriteString(fmt.Sprintf("Game log (page %d/%d, %s entries):\n\n",
		logs.Page, logs.TotalPages, humanize.Comma(int64(logs.Total))))

	for _, e := range logs.Entries {
		result.WriteString(fmt.Sprintf("#%d R%d [%s] %s\n", e.Sequence, e.Round, e.Category, e.Message))
	}

	if logs.HasNext {
		result.WriteString(fmt.Sprintf("\nMore entries on page %d", logs.Page+1))
	}
	return result.String()
}
