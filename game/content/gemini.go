package content

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/wricardo/shanghai-tycoon/game/engine"
)

const (
	DefaultModel   = "gemini-2.5-flash"
	DefaultBaseURL = "https://generativelanguage.googleapis.com/v1beta"
	DefaultTimeout = 10 * time.Second

	maxBanterRunes = 80
)

var (
	ErrNoAPIKey      = errors.New("gemini api key is required")
	ErrEmptyResponse = errors.New("empty response from content provider")
)

// GeminiConfig configures the Gemini REST client
type GeminiConfig struct {
	APIKey     string
	Model      string
	BaseURL    string
	Timeout    time.Duration
	HTTPClient *http.Client
}

// GeminiProvider asks the Gemini generateContent endpoint for event flavor
// and character banter. Every numeric effect it returns is clamped by the
// engine afterwards.
type GeminiProvider struct {
	apiKey     string
	model      string
	baseURL    string
	httpClient *http.Client
}

var _ engine.ContentProvider = (*GeminiProvider)(nil)

// NewGeminiProvider creates a provider for the given key and model
func NewGeminiProvider(cfg GeminiConfig) (*GeminiProvider, error) {
	if strings.TrimSpace(cfg.APIKey) == "" {
		return nil, ErrNoAPIKey
	}
	if cfg.Model == "" {
		cfg.Model = DefaultModel
	}
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultBaseURL
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = DefaultTimeout
	}
	client := cfg.HTTPClient
	if client == nil {
		client = &http.Client{Timeout: cfg.Timeout}
	}
	return &GeminiProvider{
		apiKey:     cfg.APIKey,
		model:      cfg.Model,
		baseURL:    strings.TrimRight(cfg.BaseURL, "/"),
		httpClient: client,
	}, nil
}

type generateRequest struct {
	Contents         []contentBlock    `json:"contents"`
	GenerationConfig *generationConfig `json:"generationConfig,omitempty"`
}

type contentBlock struct {
	Role  string `json:"role,omitempty"`
	Parts []part `json:"parts"`
}

type part struct {
	Text string `json:"text"`
}

type generationConfig struct {
	ResponseMimeType string  `json:"responseMimeType,omitempty"`
	Temperature      float64 `json:"temperature,omitempty"`
}

type generateResponse struct {
	Candidates []struct {
		Content contentBlock `json:"content"`
	} `json:"candidates"`
}

type apiError struct {
	Error struct {
		Code    int    `json:"code"`
		Message string `json:"message"`
		Status  string `json:"status"`
	} `json:"error"`
}

// generate sends one prompt and returns the concatenated text of the first
// candidate. With jsonMode the model is asked for an application/json reply.
func (g *GeminiProvider) generate(ctx context.Context, prompt string, jsonMode bool) (string, error) {
	body := generateRequest{
		Contents: []contentBlock{{Role: "user", Parts: []part{{Text: prompt}}}},
	}
	if jsonMode {
		body.GenerationConfig = &generationConfig{ResponseMimeType: "application/json"}
	}
	data, err := json.Marshal(body)
	if err != nil {
		return "", err
	}

	url := fmt.Sprintf("%s/models/%s:generateContent", g.baseURL, g.model)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(data))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("x-goog-api-key", g.apiKey)

	resp, err := g.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("gemini request: %w", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return "", fmt.Errorf("gemini response: %w", err)
	}
	if resp.StatusCode >= 400 {
		var apiErr apiError
		if json.Unmarshal(raw, &apiErr) == nil && apiErr.Error.Message != "" {
			return "", fmt.Errorf("gemini error %d: %s", resp.StatusCode, apiErr.Error.Message)
		}
		return "", fmt.Errorf("gemini error: %d", resp.StatusCode)
	}

	var out generateResponse
	if err := json.Unmarshal(raw, &out); err != nil {
		return "", fmt.Errorf("gemini response: %w", err)
	}
	if len(out.Candidates) == 0 {
		return "", ErrEmptyResponse
	}
	var sb strings.Builder
	for _, p := range out.Candidates[0].Content.Parts {
		sb.WriteString(p.Text)
	}
	text := strings.TrimSpace(sb.String())
	if text == "" {
		return "", ErrEmptyResponse
	}
	return text, nil
}

func (g *GeminiProvider) generateJSON(ctx context.Context, prompt string, v any) error {
	text, err := g.generate(ctx, prompt, true)
	if err != nil {
		return err
	}
	if err := json.Unmarshal([]byte(stripFence(text)), v); err != nil {
		return fmt.Errorf("gemini reply is not valid json: %w", err)
	}
	return nil
}

// stripFence removes a markdown code fence some models wrap JSON in
func stripFence(s string) string {
	s = strings.TrimSpace(s)
	if !strings.HasPrefix(s, "```") {
		return s
	}
	s = strings.TrimPrefix(s, "```json")
	s = strings.TrimPrefix(s, "```")
	s = strings.TrimSuffix(s, "```")
	return strings.TrimSpace(s)
}

type eventReply struct {
	Title       string  `json:"title"`
	Description string  `json:"description"`
	CashDelta   float64 `json:"cash_delta"`
	Target      string  `json:"target"`
	Percentage  float64 `json:"percentage"`
}

// PersonalEvent asks for a fate event inside the requested band
func (g *GeminiProvider) PersonalEvent(ctx context.Context, req engine.PersonalEventRequest) (engine.EventDescriptor, error) {
	var reply eventReply
	if err := g.generateJSON(ctx, personalPrompt(req), &reply); err != nil {
		return engine.EventDescriptor{}, err
	}
	return engine.EventDescriptor{
		Category:    engine.CategoryPersonal,
		Title:       strings.TrimSpace(reply.Title),
		Description: strings.TrimSpace(reply.Description),
		Band:        req.Band,
		CashDelta:   int64(reply.CashDelta),
	}, nil
}

// GlobalEvent asks for a city-wide economic event
func (g *GeminiProvider) GlobalEvent(ctx context.Context, req engine.GlobalEventRequest) (engine.EventDescriptor, error) {
	var reply eventReply
	if err := g.generateJSON(ctx, globalPrompt(req), &reply); err != nil {
		return engine.EventDescriptor{}, err
	}
	return engine.EventDescriptor{
		Category:    engine.CategoryGlobal,
		Title:       strings.TrimSpace(reply.Title),
		Description: strings.TrimSpace(reply.Description),
		Target:      ParseTarget(reply.Target),
		Percentage:  int(reply.Percentage),
	}, nil
}

// Catastrophe asks for the headline of an already chosen catastrophe
func (g *GeminiProvider) Catastrophe(ctx context.Context, req engine.CatastropheRequest) (engine.EventDescriptor, error) {
	var reply eventReply
	if err := g.generateJSON(ctx, catastrophePrompt(req), &reply); err != nil {
		return engine.EventDescriptor{}, err
	}
	if strings.TrimSpace(reply.Title) == "" {
		return engine.EventDescriptor{}, ErrEmptyResponse
	}
	return engine.EventDescriptor{
		Category:    engine.CategoryCatastrophe,
		Title:       strings.TrimSpace(reply.Title),
		Description: strings.TrimSpace(reply.Description),
		Action:      req.Action,
	}, nil
}

// Banter asks for a one-line in-character remark
func (g *GeminiProvider) Banter(ctx context.Context, req engine.BanterRequest) (string, error) {
	text, err := g.generate(ctx, banterPrompt(req), false)
	if err != nil {
		return "", err
	}
	line := strings.Trim(strings.SplitN(text, "\n", 2)[0], " \"'“”「」")
	if line == "" {
		return "", ErrEmptyResponse
	}
	if r := []rune(line); len(r) > maxBanterRunes {
		line = string(r[:maxBanterRunes])
	}
	return line, nil
}

// ParseTarget maps a provider's cohort name onto a known target. The
// short names POOR, RICH, LANDLORDS and ODD_ID are accepted; anything
// unrecognized is returned as-is so the engine can fall back to all.
func ParseTarget(s string) engine.GlobalTarget {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case "", "ALL":
		return engine.TargetAll
	case "POOR", "BELOW_MEDIAN_CASH":
		return engine.TargetBelowMedian
	case "RICH", "ABOVE_MEDIAN_CASH":
		return engine.TargetAboveMedian
	case "LANDLORDS":
		return engine.TargetLandlords
	case "ODD_ID":
		return engine.TargetOddID
	}
	return engine.GlobalTarget(strings.ToLower(strings.TrimSpace(s)))
}
