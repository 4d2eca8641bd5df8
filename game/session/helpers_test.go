package session

import (
	"io"
	"log/slog"
	"testing"

	"github.com/wricardo/shanghai-tycoon/game/engine"
	"github.com/wricardo/shanghai-tycoon/game/service"
)

// stubConfigs serves configs from memory
type stubConfigs struct {
	configs map[string]*engine.GameConfig
}

func newStubConfigs() *stubConfigs {
	return &stubConfigs{configs: map[string]*engine.GameConfig{
		"fork":     forkConfig(),
		"shanghai": engine.DefaultGameConfig(),
	}}
}

func (s *stubConfigs) LoadConfig(name string) (*engine.GameConfig, error) {
	if c, ok := s.configs[name]; ok {
		return c, nil
	}
	return nil, service.ErrConfigNotFound
}

func (s *stubConfigs) ListConfigs() ([]*service.ConfigInfo, error) {
	var out []*service.ConfigInfo
	for id, c := range s.configs {
		out = append(out, &service.ConfigInfo{ConfigID: id, Name: c.Name})
	}
	return out, nil
}

func (s *stubConfigs) GetDefault() *engine.GameConfig { return s.configs["shanghai"] }

func (s *stubConfigs) SaveConfig(name string, config *engine.GameConfig) error {
	s.configs[name] = config
	return nil
}

// forkConfig: start -> 1 -> 2 (fork to 3 or 4) -> start
func forkConfig() *engine.GameConfig {
	return &engine.GameConfig{
		Name:        "fork",
		Description: "small fork",
		Rules:       engine.DefaultRules(),
		StartSpace:  0,
		Board: []engine.SpaceConfig{
			{ID: 0, Name: "Start", Kind: engine.KindStart, Successors: []int{1}},
			{ID: 1, Name: "Lane", Kind: engine.KindRestArea, Successors: []int{2}},
			{ID: 2, Name: "Fork", Kind: engine.KindRestArea, Successors: []int{3, 4}},
			{ID: 3, Name: "Left", Kind: engine.KindShop, Successors: []int{0}},
			{ID: 4, Name: "Right", Kind: engine.KindShop, Successors: []int{0}},
		},
	}
}

func testSpec(configID string, config *engine.GameConfig) service.SessionSpec {
	human := 0
	return service.SessionSpec{
		ConfigID: configID,
		Config:   config,
		Seats: []engine.Seat{
			{Profile: engine.Profile{CharacterID: "ann", Name: "Ann"}},
			{Profile: engine.Profile{CharacterID: "bot", Name: "Bot"}, Autonomous: true},
		},
		HumanPlayerID: &human,
	}
}

func quietOptions() ManagerOption {
	return WithLogger(slog.New(slog.NewTextHandler(io.Discard, nil)))
}

// scripted returns engine options that make every roll a 3
func scripted() []engine.Option {
	return []engine.Option{
		engine.WithRandomSource(&engine.ScriptedSource{Ints: []int{2, 2, 2, 2, 2, 2}}),
		engine.WithLogger(slog.New(slog.NewTextHandler(io.Discard, nil))),
	}
}

func mustCreate(t *testing.T, m *Manager, id string, spec service.SessionSpec) *service.Session {
	t.Helper()
	sess, err := m.Create(id, spec)
	if err != nil {
		t.Fatalf("Failed to create session: %v", err)
	}
	return sess
}
