// Command validate checks every game configuration JSON file in a directory.
// It checks:
//   - JSON structure, rules and board graph (the same checks the server applies)
//   - Lap lengths: the shortest and longest walk from start back to start
//   - Forks, districts and ownable lots
//   - Character pool size against the maximum table size
package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/dustin/go-humanize"
	"github.com/urfave/cli/v3"
	"github.com/wricardo/shanghai-tycoon/game/engine"
)

var errInvalid = errors.New("some configurations have errors")

// ValidationResult captures the outcome of validating a single file.
// Errors make the file invalid; Warnings and Info are reported either way.
type ValidationResult struct {
	File     string
	Valid    bool
	Errors   []string
	Warnings []string
	Info     []string
}

// validateConfig loads one file and, if it parses, analyzes the board.
func validateConfig(filePath string) ValidationResult {
	result := ValidationResult{File: filepath.Base(filePath), Valid: true}

	data, err := os.ReadFile(filePath)
	if err != nil {
		result.Valid = false
		result.Errors = append(result.Errors, fmt.Sprintf("Failed to read file: %v", err))
		return result
	}

	config, err := engine.ParseGameConfig(data)
	if err != nil {
		result.Valid = false
		result.Errors = append(result.Errors, err.Error())
		return result
	}

	analyzeBoard(config, &result)
	return result
}

// analyzeBoard adds playability notes for a structurally valid config
func analyzeBoard(config *engine.GameConfig, result *ValidationResult) {
	byID := make(map[int]engine.SpaceConfig, len(config.Board))
	kinds := make(map[engine.SpaceKind]int)
	districts := make(map[string]int)
	forks := 0
	var totalPrice int64
	for _, sc := range config.Board {
		byID[sc.ID] = sc
		kinds[sc.Kind]++
		if len(sc.Successors) > 1 {
			forks++
		}
		if sc.Kind == engine.KindOwnable {
			totalPrice += sc.Price
			if sc.District != "" {
				districts[sc.District]++
			}
		}
	}

	shortest, longest := lapLengths(byID, config.StartSpace)
	rules := config.Rules

	if kinds[engine.KindOwnable] == 0 {
		result.Warnings = append(result.Warnings, "Board has no ownable spaces; nobody can ever collect rent")
	}
	if shortest <= rules.DiceSides {
		result.Warnings = append(result.Warnings, fmt.Sprintf("Shortest lap (%d) is within one roll of a %d-sided die", shortest, rules.DiceSides))
	}
	if pool := len(config.CharacterPool()); pool < engine.MaxPlayers {
		result.Warnings = append(result.Warnings, fmt.Sprintf("Only %d characters; tables are limited to %d players", pool, pool))
	}
	if kinds[engine.KindOwnable] > 0 && totalPrice/int64(kinds[engine.KindOwnable]) > rules.StartingCash {
		result.Warnings = append(result.Warnings, "Average lot price exceeds starting cash")
	}

	names := make([]string, 0, len(districts))
	for d, n := range districts {
		names = append(names, fmt.Sprintf("%s (%d)", d, n))
	}
	sort.Strings(names)

	result.Info = append(result.Info,
		fmt.Sprintf("✓ Name: %s", config.Name),
		fmt.Sprintf("✓ Spaces: %d, forks: %d", len(config.Board), forks),
		fmt.Sprintf("✓ Lap: %d to %d spaces", shortest, longest),
		fmt.Sprintf("✓ Ownable: %d worth %s", kinds[engine.KindOwnable], humanize.Comma(totalPrice)),
		fmt.Sprintf("✓ Events: %d, tax: %d, bank: %d, jail: %d",
			kinds[engine.KindRandomEvent], kinds[engine.KindTaxLevy], kinds[engine.KindBankBonus], kinds[engine.KindIncarceration]),
		fmt.Sprintf("✓ Starting cash: %s, pass bonus: %s", humanize.Comma(rules.StartingCash), humanize.Comma(rules.PassStartBonus)),
		fmt.Sprintf("✓ Characters: %d", len(config.CharacterPool())),
	)
	if len(names) > 0 {
		result.Info = append(result.Info, "✓ Districts: "+strings.Join(names, ", "))
	}
}

// lapLengths returns the fewest and most hops from start back to start.
// The board is already validated, so every walk returns to start.
func lapLengths(byID map[int]engine.SpaceConfig, startID int) (int, int) {
	type span struct{ min, max int }
	memo := make(map[int]span, len(byID))

	var toStart func(id int) span
	toStart = func(id int) span {
		if s, ok := memo[id]; ok {
			return s
		}
		s := span{min: -1}
		for _, next := range byID[id].Successors {
			d := span{min: 1, max: 1}
			if next != startID {
				rest := toStart(next)
				d = span{min: rest.min + 1, max: rest.max + 1}
			}
			if s.min < 0 || d.min < s.min {
				s.min = d.min
			}
			if d.max > s.max {
				s.max = d.max
			}
		}
		memo[id] = s
		return s
	}

	lap := toStart(startID)
	return lap.min, lap.max
}

// validateDir validates every *.json file in dir and prints a report. It
// returns false if any file is invalid.
func validateDir(dir string, out io.Writer) (bool, error) {
	files, err := filepath.Glob(filepath.Join(dir, "*.json"))
	if err != nil {
		return false, fmt.Errorf("finding config files: %w", err)
	}
	if len(files) == 0 {
		return false, fmt.Errorf("no config files in %s", dir)
	}

	allValid := true
	for _, file := range files {
		result := validateConfig(file)

		fmt.Fprintf(out, "\n%s %s\n", strings.Repeat("=", 20), result.File)

		if result.Valid {
			fmt.Fprintln(out, "✅ VALID")
			for _, info := range result.Info {
				fmt.Fprintln(out, "  "+info)
			}
		} else {
			fmt.Fprintln(out, "❌ INVALID")
			allValid = false
			for _, e := range result.Errors {
				fmt.Fprintln(out, "  ❌ "+e)
			}
		}
		for _, w := range result.Warnings {
			fmt.Fprintln(out, "  ⚠️  "+w)
		}
	}

	fmt.Fprintf(out, "\n%s\n", strings.Repeat("=", 40))
	if allValid {
		fmt.Fprintln(out, "✅ All configurations are valid!")
	} else {
		fmt.Fprintln(out, "❌ Some configurations have errors")
	}
	return allValid, nil
}

func newCommand(out io.Writer) *cli.Command {
	return &cli.Command{
		Name:      "validate",
		Usage:     "Validate game configuration files",
		ArgsUsage: "[config-dir]",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "config-dir", Value: "configs", Usage: "Directory containing game configurations", Sources: cli.EnvVars("CONFIG_DIR")},
		},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			dir := cmd.String("config-dir")
			if cmd.Args().Present() {
				dir = cmd.Args().First()
			}
			ok, err := validateDir(dir, out)
			if err != nil {
				return err
			}
			if !ok {
				return errInvalid
			}
			return nil
		},
	}
}

func main() {
	if err := newCommand(os.Stdout).Run(context.Background(), os.Args); err != nil {
		fmt.Fprintf(os.Stderr, "validate: %v\n", err)
		os.Exit(1)
	}
}
