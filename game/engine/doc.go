// Package engine provides the core rules of the Shanghai Tycoon board game.
//
// The engine package implements the game mechanics including:
//   - A directed board graph with branching spaces that reconverge on start
//   - Movement with pass-start bonuses and resumable branch suspension
//   - Landing effects: purchase, upgrade, rent, tax, bonus, events, incarceration
//   - Turn rotation that skips eliminated players and detects the winner
//   - Round-start macro events: periodic global shocks and rare catastrophes
//
// Core Types:
//
// The Engine interface defines the main contract for game operations,
// implemented by GameEngine. GameState is the serializable session snapshot,
// including any suspended movement, while GameConfig holds the rules and board
// layout loaded from JSON files.
//
// Usage:
//
//	config := engine.DefaultGameConfig()
//	seats := []engine.Seat{
//		{Profile: engine.DefaultCharacters()[0]},
//		{Profile: engine.DefaultCharacters()[5], Autonomous: true},
//	}
//
//	gameEngine, err := engine.NewEngine(config, seats, engine.WithRandomSource(engine.NewRandomSource(42)))
//	if err != nil {
//		log.Fatal(err)
//	}
//	_ = gameEngine.Start()
//
//	// Roll for the first player, then answer whatever is pending
//	if _, err := gameEngine.Roll(ctx); err != nil {
//		log.Fatal(err)
//	}
//	if pd := gameEngine.PendingDecision(); pd != nil && pd.Kind == engine.DecisionPurchase {
//		_ = gameEngine.Decide(ctx, pd.Affordable)
//	}
//
// Randomness:
//
// Every random draw goes through a RandomSource. Dice use Intn(DiceSides)+1,
// event bands, charisma halving, catastrophe and partial-target checks use
// Float64, and cash shuffles use Perm. ScriptedSource replays fixed sequences
// for tests.
//
// Accounting:
//
// Net worth is cash plus the invested value of owned spaces (purchase price
// plus every upgrade paid). Purchases and upgrades leave net worth unchanged;
// every other cash movement changes it by the same amount.
package engine
