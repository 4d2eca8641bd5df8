package engine

import (
	"context"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// ringConfig builds start -> spaces[0] -> ... -> spaces[n-1] -> start.
// Space ids are assigned 1..n in order.
func ringConfig(spaces ...SpaceConfig) *GameConfig {
	layout := []SpaceConfig{{ID: 0, Name: "Start", Kind: KindStart}}
	for i, sc := range spaces {
		sc.ID = i + 1
		if sc.Name == "" {
			sc.Name = string(sc.Kind)
		}
		sc.Successors = []int{i + 2}
		layout = append(layout, sc)
	}
	layout[len(layout)-1].Successors = []int{0}
	layout[0].Successors = []int{1}
	return &GameConfig{
		Name:        "ring",
		Description: "test ring",
		Rules:       DefaultRules(),
		StartSpace:  0,
		Board:       layout,
	}
}

// forkConfig is start -> 1 -> 2(fork) -> {3 -> 4 -> start, 5 -> 6 -> 7 -> start}.
// Every space besides start is a rest area.
func forkConfig() *GameConfig {
	rest := func(id int, name string, next ...int) SpaceConfig {
		return SpaceConfig{ID: id, Name: name, Kind: KindRestArea, Successors: next}
	}
	return &GameConfig{
		Name:        "fork",
		Description: "test fork",
		Rules:       DefaultRules(),
		StartSpace:  0,
		Board: []SpaceConfig{
			{ID: 0, Name: "Start", Kind: KindStart, Successors: []int{1}},
			rest(1, "Lane", 2),
			rest(2, "Fork", 3, 5),
			rest(3, "North 1", 4),
			rest(4, "North 2", 0),
			rest(5, "South 1", 6),
			rest(6, "South 2", 7),
			rest(7, "South 3", 0),
		},
	}
}

func human(name string) Seat {
	return Seat{Profile: Profile{CharacterID: name, Name: name, Catchphrase: name + " says hi", Charisma: 50}}
}

func bot(name string) Seat {
	s := human(name)
	s.Autonomous = true
	return s
}

func newTestEngine(t *testing.T, cfg *GameConfig, src RandomSource, seats []Seat, opts ...Option) *GameEngine {
	t.Helper()
	if src == nil {
		src = &ScriptedSource{}
	}
	opts = append([]Option{
		WithRandomSource(src),
		WithLogger(quietLogger()),
		WithClock(func() time.Time { return time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC) }),
	}, opts...)
	e, err := NewEngine(cfg, seats, opts...)
	require.NoError(t, err)
	require.NoError(t, e.Start())
	return e
}

// own hands a space to a player at the given level and refreshes net worth
func own(t *testing.T, e *GameEngine, spaceID, playerID, level int) {
	t.Helper()
	sp, ok := e.state.Board.Space(spaceID)
	require.True(t, ok)
	id := playerID
	sp.OwnerID = &id
	sp.UpgradeLevel = level
	refreshWorth(e.state.Player(playerID), e.state.Board, e.rules)
}

func lastLog(e *GameEngine, cat LogCategory) *LogEntry {
	for i := len(e.state.Logs) - 1; i >= 0; i-- {
		if e.state.Logs[i].Category == cat {
			return &e.state.Logs[i]
		}
	}
	return nil
}

// mockContent lets a test override single provider calls
type mockContent struct {
	PersonalEventFunc func(ctx context.Context, req PersonalEventRequest) (EventDescriptor, error)
	GlobalEventFunc   func(ctx context.Context, req GlobalEventRequest) (EventDescriptor, error)
	CatastropheFunc   func(ctx context.Context, req CatastropheRequest) (EventDescriptor, error)
	BanterFunc        func(ctx context.Context, req BanterRequest) (string, error)
}

func (m *mockContent) PersonalEvent(ctx context.Context, req PersonalEventRequest) (EventDescriptor, error) {
	if m.PersonalEventFunc != nil {
		return m.PersonalEventFunc(ctx, req)
	}
	return FallbackContent{}.PersonalEvent(ctx, req)
}

func (m *mockContent) GlobalEvent(ctx context.Context, req GlobalEventRequest) (EventDescriptor, error) {
	if m.GlobalEventFunc != nil {
		return m.GlobalEventFunc(ctx, req)
	}
	return FallbackContent{}.GlobalEvent(ctx, req)
}

func (m *mockContent) Catastrophe(ctx context.Context, req CatastropheRequest) (EventDescriptor, error) {
	if m.CatastropheFunc != nil {
		return m.CatastropheFunc(ctx, req)
	}
	return FallbackContent{}.Catastrophe(ctx, req)
}

func (m *mockContent) Banter(ctx context.Context, req BanterRequest) (string, error) {
	if m.BanterFunc != nil {
		return m.BanterFunc(ctx, req)
	}
	return FallbackContent{}.Banter(ctx, req)
}
