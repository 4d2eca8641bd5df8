// Command bot plays the human seat of a game over the REST API using a
// simple strategy, letting the computer players act between its turns.
package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"time"

	"github.com/urfave/cli/v3"
	"github.com/wricardo/shanghai-tycoon/game/engine"
	"github.com/wricardo/shanghai-tycoon/game/service"
)

var errStalled = errors.New("computer players made no progress")

// Outcome is where a bot run ended
type Outcome struct {
	SessionID string
	Actions   int
	Concluded bool
	Won       bool
	Me        *engine.Player
	Round     int
}

type playOptions struct {
	MaxActions int
	Delay      time.Duration
}

// play runs the bot's seat until the game concludes or MaxActions requests
// have been made.
func play(ctx context.Context, c *Client, strat Strategy, opts playOptions, logger *slog.Logger) (*Outcome, error) {
	state, err := c.State(ctx)
	if err != nil {
		return nil, err
	}

	actions := 0
	for actions < opts.MaxActions && state.Status != engine.StatusConcluded {
		active := state.ActivePlayer()
		if active == nil {
			return nil, fmt.Errorf("session %s has no active player", c.sessionID)
		}

		if active.ID != c.playerID {
			res, err := c.AutoPlay(ctx, 100)
			if err != nil {
				return nil, err
			}
			if res.Actions == 0 && res.StoppedReason != service.StopConcluded {
				return nil, fmt.Errorf("%w: stopped with %s", errStalled, res.StoppedReason)
			}
			state = res.GameState
			actions++
			continue
		}

		var res *service.ActionResult
		switch p := state.Pending; {
		case p != nil && p.Kind == engine.DecisionBranch:
			choice := strat.Branch(state, active, p.Options)
			logger.Debug("choosing branch", "at", p.SpaceID, "options", p.Options, "choice", choice)
			res, err = c.ChooseBranch(ctx, choice)
		case p != nil && (p.Kind == engine.DecisionPurchase || p.Kind == engine.DecisionUpgrade):
			accept := strat.Decide(state, active, p)
			logger.Debug("deciding", "kind", p.Kind, "space", p.SpaceID, "cost", p.Cost, "accept", accept)
			res, err = c.Decide(ctx, accept)
		case state.Blocking == engine.BlockEventResolution:
			res, err = c.Acknowledge(ctx)
		default:
			res, err = c.Roll(ctx)
			if err == nil && res.Roll != nil {
				logger.Info("rolled", "value", res.Roll.Value, "skipped", res.Roll.Skipped, "round", res.GameState.Round)
			}
		}
		if err != nil {
			return nil, err
		}
		for _, ev := range res.Events {
			if ev.PlayerID != nil && *ev.PlayerID == c.playerID {
				logger.Debug(ev.Message, "category", ev.Category)
			}
		}
		state = res.GameState
		actions++

		if opts.Delay > 0 {
			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			case <-time.After(opts.Delay):
			}
		}
	}

	out := &Outcome{
		SessionID: c.sessionID,
		Actions:   actions,
		Concluded: state.Status == engine.StatusConcluded,
		Me:        state.Player(c.playerID),
		Round:     state.Round,
	}
	out.Won = state.WinnerID != nil && *state.WinnerID == c.playerID
	return out, nil
}

func newCommand() *cli.Command {
	return &cli.Command{
		Name:  "bot",
		Usage: "Play a human seat with a scripted strategy",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "url", Value: "http://localhost:8080", Usage: "Game server URL", Sources: cli.EnvVars("GAME_SERVER_URL")},
			&cli.StringFlag{Name: "config", Usage: "Game configuration to play"},
			&cli.StringFlag{Name: "character", Usage: "Character for the bot's seat"},
			&cli.IntFlag{Name: "players", Value: 4, Usage: "Players at the table"},
			&cli.IntFlag{Name: "seed", Usage: "Seed for a reproducible game (0 = random)"},
			&cli.StringFlag{Name: "continue", Usage: "Resume playing an existing session by ID"},
			&cli.StringFlag{Name: "seat-token", Usage: "Seat token for a resumed session", Sources: cli.EnvVars("SEAT_TOKEN")},
			&cli.StringFlag{Name: "strategy", Value: "landlord", Usage: "landlord or saver"},
			&cli.IntFlag{Name: "reserve", Value: 20_000_000, Usage: "Cash the saver strategy keeps in hand"},
			&cli.IntFlag{Name: "max-actions", Value: 3000, Usage: "Maximum requests before giving up"},
			&cli.DurationFlag{Name: "delay", Usage: "Pause between the bot's own actions"},
			&cli.BoolFlag{Name: "v", Usage: "Verbose output"},
		},
		Action: run,
	}
}

func run(ctx context.Context, cmd *cli.Command) error {
	level := slog.LevelInfo
	if cmd.Bool("v") {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))

	strat, err := strategyByName(cmd.String("strategy"), int64(cmd.Int("reserve")))
	if err != nil {
		return err
	}

	client := NewClient(cmd.String("url"))
	logger.Info("connecting to game server", "url", cmd.String("url"), "strategy", strat.Name())

	if id := cmd.String("continue"); id != "" {
		if _, err := client.Resume(ctx, id, cmd.String("seat-token")); err != nil {
			return err
		}
		logger.Info("resumed session", "session", client.sessionID, "player", client.playerID)
	} else {
		info, err := client.CreateSession(ctx, service.CreateSessionRequest{
			ConfigID:    cmd.String("config"),
			CharacterID: cmd.String("character"),
			Players:     int(cmd.Int("players")),
			Seed:        int64(cmd.Int("seed")),
		})
		if err != nil {
			return err
		}
		me := info.GameState.Player(client.playerID)
		logger.Info("session created", "session", info.ID, "config", info.ConfigName,
			"character", me.Profile.Name, "players", len(info.GameState.Players))
	}

	out, err := play(ctx, client, strat, playOptions{
		MaxActions: int(cmd.Int("max-actions")),
		Delay:      cmd.Duration("delay"),
	}, logger)
	if err != nil {
		return err
	}

	switch {
	case out.Won:
		logger.Info("victory", "session", out.SessionID, "round", out.Round, "net_worth", engine.Money(out.Me.NetWorth))
	case out.Concluded:
		logger.Info("game over", "session", out.SessionID, "round", out.Round, "eliminated", out.Me.Eliminated)
	default:
		logger.Info("stopped before the game ended", "session", out.SessionID, "actions", out.Actions,
			"round", out.Round, "net_worth", engine.Money(out.Me.NetWorth))
	}
	return nil
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if err := newCommand().Run(ctx, os.Args); err != nil {
		fmt.Fprintf(os.Stderr, "bot: %v\n", err)
		os.Exit(1)
	}
}
