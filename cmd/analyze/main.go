// Command analyze plays seeded games between computer players and prints
// balance statistics for a board configuration: how long games last, who
// wins, how often markets swing and how much property changes hands.
package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"sort"
	"strings"

	"github.com/dustin/go-humanize"
	"github.com/urfave/cli/v3"
	"github.com/wricardo/shanghai-tycoon/game/config"
	"github.com/wricardo/shanghai-tycoon/game/engine"
)

var errStalled = errors.New("game stalled")

// GameResult summarizes one simulated game
type GameResult struct {
	Seed           int64
	Rounds         int
	Turns          int
	Concluded      bool
	WinnerID       int
	Winner         string
	WinnerNetWorth int64
	Eliminated     int
	GlobalEvents   int
	Catastrophes   int
	OwnedSpaces    int
}

// Report aggregates many games on one configuration
type Report struct {
	Config  string
	Players int
	Results []GameResult
}

// Options controls a simulation run
type Options struct {
	Games     int
	Players   int
	Seed      int64
	MaxRounds int
}

// simulate plays one all-autonomous game until it ends or hits maxRounds
func simulate(ctx context.Context, cfg *engine.GameConfig, players int, seed int64, maxRounds int) (GameResult, error) {
	pool := cfg.CharacterPool()
	if players > len(pool) {
		return GameResult{}, fmt.Errorf("%w: %d players but only %d characters", engine.ErrInvalidRoster, players, len(pool))
	}
	seats := make([]engine.Seat, players)
	for i := range seats {
		seats[i] = engine.Seat{Profile: pool[i], Autonomous: true}
	}

	quiet := slog.New(slog.NewTextHandler(io.Discard, nil))
	eng, err := engine.NewEngine(cfg, seats,
		engine.WithRandomSource(engine.NewRandomSource(seed)),
		engine.WithLogger(quiet),
	)
	if err != nil {
		return GameResult{}, err
	}
	if err := eng.Start(); err != nil {
		return GameResult{}, err
	}

	res := GameResult{Seed: seed}
	lastSeq := 0
	for !eng.IsConcluded() && eng.GetState().Round <= maxRounds {
		if err := ctx.Err(); err != nil {
			return res, err
		}
		acted, err := eng.StepAutonomous(ctx)
		if err != nil {
			return res, fmt.Errorf("seed %d: %w", seed, err)
		}
		if !acted {
			return res, fmt.Errorf("%w: seed %d round %d", errStalled, seed, eng.GetState().Round)
		}
		for _, entry := range eng.GetState().Logs {
			if entry.Sequence <= lastSeq {
				continue
			}
			lastSeq = entry.Sequence
			switch {
			case entry.Category == engine.LogCatastrophe:
				res.Catastrophes++
			case entry.Category == engine.LogEvent && strings.HasPrefix(entry.Message, "Global event"):
				res.GlobalEvents++
			}
		}
	}

	state := eng.GetState()
	res.Rounds = state.Round
	res.Turns = state.TurnsPlayed
	res.Concluded = eng.IsConcluded()

	leader := state.Players[0]
	for _, p := range state.Players {
		if p.Eliminated {
			res.Eliminated++
			continue
		}
		res.OwnedSpaces += len(p.Owned)
		if leader.Eliminated || p.NetWorth > leader.NetWorth {
			leader = p
		}
	}
	if state.WinnerID != nil {
		leader = state.Player(*state.WinnerID)
	}
	res.WinnerID = leader.ID
	res.Winner = leader.Profile.CharacterID
	res.WinnerNetWorth = leader.NetWorth
	return res, nil
}

// analyze runs opts.Games games with consecutive seeds
func analyze(ctx context.Context, name string, cfg *engine.GameConfig, opts Options) (*Report, error) {
	if opts.Games <= 0 {
		return nil, fmt.Errorf("games must be positive, got %d", opts.Games)
	}
	report := &Report{Config: name, Players: opts.Players}
	for i := 0; i < opts.Games; i++ {
		res, err := simulate(ctx, cfg, opts.Players, opts.Seed+int64(i), opts.MaxRounds)
		if err != nil {
			return nil, err
		}
		report.Results = append(report.Results, res)
	}
	return report, nil
}

// Wins counts wins (or round-limit leads) per character
func (r *Report) Wins() map[string]int {
	wins := make(map[string]int)
	for _, res := range r.Results {
		wins[res.Winner]++
	}
	return wins
}

// Concluded counts games that ended with a single survivor
func (r *Report) Concluded() int {
	n := 0
	for _, res := range r.Results {
		if res.Concluded {
			n++
		}
	}
	return n
}

func mean(results []GameResult, f func(GameResult) float64) float64 {
	if len(results) == 0 {
		return 0
	}
	total := 0.0
	for _, res := range results {
		total += f(res)
	}
	return total / float64(len(results))
}

// Write prints the report
func (r *Report) Write(w io.Writer) {
	games := len(r.Results)
	fmt.Fprintf(w, "=== %s: %d games, %d players ===\n", r.Config, games, r.Players)
	fmt.Fprintf(w, "Finished: %d, hit round limit: %d\n", r.Concluded(), games-r.Concluded())
	fmt.Fprintf(w, "Rounds:        avg %.1f\n", mean(r.Results, func(g GameResult) float64 { return float64(g.Rounds) }))
	fmt.Fprintf(w, "Turns:         avg %.1f\n", mean(r.Results, func(g GameResult) float64 { return float64(g.Turns) }))
	fmt.Fprintf(w, "Eliminations:  avg %.2f\n", mean(r.Results, func(g GameResult) float64 { return float64(g.Eliminated) }))
	fmt.Fprintf(w, "Market events: avg %.2f\n", mean(r.Results, func(g GameResult) float64 { return float64(g.GlobalEvents) }))
	fmt.Fprintf(w, "Catastrophes:  avg %.2f\n", mean(r.Results, func(g GameResult) float64 { return float64(g.Catastrophes) }))
	fmt.Fprintf(w, "Owned at end:  avg %.1f spaces\n", mean(r.Results, func(g GameResult) float64 { return float64(g.OwnedSpaces) }))
	worth := mean(r.Results, func(g GameResult) float64 { return float64(g.WinnerNetWorth) })
	fmt.Fprintf(w, "Winner worth:  avg %s\n", humanize.Comma(int64(worth)))

	wins := r.Wins()
	names := make([]string, 0, len(wins))
	for name := range wins {
		names = append(names, name)
	}
	sort.Slice(names, func(i, j int) bool {
		if wins[names[i]] != wins[names[j]] {
			return wins[names[i]] > wins[names[j]]
		}
		return names[i] < names[j]
	})
	fmt.Fprintln(w, "Wins:")
	for _, name := range names {
		fmt.Fprintf(w, "  %-12s %3d (%.0f%%)\n", name, wins[name], 100*float64(wins[name])/float64(games))
	}
}

func newCommand(out io.Writer) *cli.Command {
	return &cli.Command{
		Name:  "analyze",
		Usage: "Simulate computer-only games and print balance statistics",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "config-dir", Value: "configs", Usage: "Directory containing game configurations", Sources: cli.EnvVars("CONFIG_DIR")},
			&cli.StringSliceFlag{Name: "config", Value: []string{config.BuiltinConfigID}, Usage: "Configurations to analyze"},
			&cli.IntFlag{Name: "games", Value: 100, Usage: "Games per configuration"},
			&cli.IntFlag{Name: "players", Value: 4, Usage: "Players per game"},
			&cli.IntFlag{Name: "seed", Value: 1, Usage: "First seed"},
			&cli.IntFlag{Name: "max-rounds", Value: 200, Usage: "Stop a game after this many rounds"},
		},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			configs, err := config.NewManager(cmd.String("config-dir"))
			if err != nil {
				return err
			}
			opts := Options{
				Games:     int(cmd.Int("games")),
				Players:   int(cmd.Int("players")),
				Seed:      int64(cmd.Int("seed")),
				MaxRounds: int(cmd.Int("max-rounds")),
			}
			for _, name := range cmd.StringSlice("config") {
				cfg, err := configs.LoadConfig(name)
				if err != nil {
					return err
				}
				report, err := analyze(ctx, name, cfg, opts)
				if err != nil {
					return err
				}
				report.Write(out)
				fmt.Fprintln(out)
			}
			return nil
		},
	}
}

func main() {
	if err := newCommand(os.Stdout).Run(context.Background(), os.Args); err != nil {
		fmt.Fprintf(os.Stderr, "analyze: %v\n", err)
		os.Exit(1)
	}
}
