// Package engine provides the core simulation for Hospital Run.
//
// The engine package implements the game mechanics including:
//   - A bounds-checked square grid with one entity per cell
//   - Entity behaviour: wandering and tracking zombies, infection, pickups
//   - Inventory ageing of held garlic and crossbows
//   - The turn protocol and the win/loss state machine
//   - Map loading and validation
//
// Core Types:
//
// Grid maps a Position to the Entity standing there. Entity is a closed set
// of variants selected by Kind; its Step method is the per-turn behaviour.
// Game owns the grid and the turn counter, and its Rules (chosen from the
// map's Level) decide how the player loses, whether pickups are collected and
// whether the crossbow can be fired.
//
// Usage:
//
//	config, err := engine.LoadMapFile("configs/classic.json")
//	if err != nil {
//		log.Fatal(err)
//	}
//
//	game, err := engine.NewGameFromConfig(config, engine.WithSeed(42))
//	if err != nil {
//		log.Fatal(err)
//	}
//
//	// Move right, then let every entity act
//	result, err := game.Act(engine.RightAction, "")
//
// Game Rules:
//
// The player must walk onto the hospital. Zombies move one cell per turn and
// infect the player on contact; an infected player loses. Garlic held in the
// inventory prevents infection, and a held crossbow can shoot the nearest
// zombie along a row or column. Held items wear out after a fixed number of
// turns.
//
// Moving onto an occupied cell overwrites its occupant. This is how the
// player reaches the hospital and picks up items, so the grid primitive never
// refuses a move; any collision rule is layered on top by the caller.
package engine
