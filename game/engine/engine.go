package engine

import (
	"fmt"
	"math/rand"
	"strings"
	"time"
)

// Level selects which entity variants a map may contain and which rules
// the game plays by. Later levels only add capabilities.
type Level string

const (
	LevelBasic        Level = "basic"
	LevelIntermediate Level = "intermediate"
	LevelAdvanced     Level = "advanced"
)

// ParseLevel converts a config string into a Level. An empty string means
// advanced, which is what the full game plays.
func ParseLevel(s string) (Level, error) {
	switch Level(strings.ToLower(strings.TrimSpace(s))) {
	case "", LevelAdvanced:
		return LevelAdvanced, nil
	case LevelIntermediate:
		return LevelIntermediate, nil
	case LevelBasic:
		return LevelBasic, nil
	}
	return "", fmt.Errorf("unknown level %q", s)
}

func (l Level) String() string {
	return string(l)
}

// LossPolicy decides whether the game is lost
type LossPolicy func(g *Game) bool

// NeverLose is the basic-level policy: the only way out is the hospital.
func NeverLose(*Game) bool {
	return false
}

// LoseOnInfection ends the game once the player is infected
func LoseOnInfection(g *Game) bool {
	player := g.Player()
	return player != nil && player.IsInfected()
}

// Rules bundles the per-level behaviour of a game
type Rules struct {
	Loss LossPolicy
	// CollectPickups makes walking onto a pickup put it in the inventory.
	CollectPickups bool
	// Ranged allows the fire action.
	Ranged bool
}

// RulesFor returns the rule set for a level
func RulesFor(level Level) Rules {
	switch level {
	case LevelBasic:
		return Rules{Loss: NeverLose}
	case LevelIntermediate:
		return Rules{Loss: LoseOnInfection}
	default:
		return Rules{Loss: LoseOnInfection, CollectPickups: true, Ranged: true}
	}
}

// Shuffler is the source of randomness for zombie movement. *rand.Rand
// satisfies it.
type Shuffler interface {
	Shuffle(n int, swap func(i, j int))
}

// Option configures a Game
type Option func(*Game)

// WithRandom injects the random source used by zombies
func WithRandom(r Shuffler) Option {
	return func(g *Game) {
		g.random = r
	}
}

// WithSeed seeds a fresh math/rand source
func WithSeed(seed int64) Option {
	return func(g *Game) {
		g.random = rand.New(rand.NewSource(seed))
	}
}

// WithRules overrides the rules derived from the level
func WithRules(rules Rules) Option {
	return func(g *Game) {
		g.rules = rules
	}
}

// Game owns the grid and the turn counter and runs one turn at a time.
// A Game is not safe for concurrent use.
type Game struct {
	grid   *Grid
	level  Level
	rules  Rules
	random Shuffler
	steps  int
}

// NewGame creates a game over an already populated grid
func NewGame(grid *Grid, level Level, opts ...Option) *Game {
	g := &Game{
		grid:  grid,
		level: level,
		rules: RulesFor(level),
	}
	for _, opt := range opts {
		opt(g)
	}
	if g.random == nil {
		g.random = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	if g.rules.Loss == nil {
		g.rules.Loss = NeverLose
	}
	return g
}

// Grid returns the game grid
func (g *Game) Grid() *Grid {
	return g.grid
}

// Level returns the level the game was created with
func (g *Game) Level() Level {
	return g.level
}

// Rules returns the active rule set
func (g *Game) Rules() Rules {
	return g.rules
}

// Steps returns the number of completed turns
func (g *Game) Steps() int {
	return g.steps
}

// Player returns the player entity, or nil if none is on the grid
func (g *Game) Player() *Entity {
	pos, ok := g.grid.FindPlayer()
	if !ok {
		return nil
	}
	return g.grid.GetEntity(pos)
}

// randomOffsets returns the four neighbour offsets in a fresh random order
func (g *Game) randomOffsets() []Position {
	offsets := make([]Position, len(neighbourOffsets))
	copy(offsets, neighbourOffsets)
	g.random.Shuffle(len(offsets), func(i, j int) {
		offsets[i], offsets[j] = offsets[j], offsets[i]
	})
	return offsets
}

// MovePlayer moves the player by offset. The destination occupant is
// overwritten; when the rules collect pickups, a pickup there goes into the
// player's inventory first.
func (g *Game) MovePlayer(offset Position) {
	g.movePlayer(offset)
}

func (g *Game) movePlayer(offset Position) (picked *Entity) {
	from, ok := g.grid.FindPlayer()
	if !ok {
		return nil
	}
	to := from.Add(offset)

	if g.rules.CollectPickups && g.grid.InBounds(to) {
		target := g.grid.GetEntity(to)
		player := g.grid.GetEntity(from)
		if target != nil && target.IsPickup() && player.Inventory() != nil {
			player.Inventory().AddItem(target)
			picked = target
		}
	}

	g.grid.MoveEntity(from, to)
	return picked
}

// Step runs one turn: every entity present at the start of the turn acts
// once, from the position it held at that moment, in row-major order.
func (g *Game) Step() {
	snapshot := g.grid.Mapping()
	positions := make([]Position, 0, len(snapshot))
	for pos := range snapshot {
		positions = append(positions, pos)
	}
	sortRowMajor(positions)

	for _, pos := range positions {
		snapshot[pos].Step(pos, g)
	}
	g.steps++
}

// HasWon reports whether the hospital has been reached, i.e. no hospital
// is left on the grid.
func (g *Game) HasWon() bool {
	return g.grid.Count(func(e *Entity) bool {
		return e.Display() == HospitalToken
	}) == 0
}

// HasLost applies the loss policy
func (g *Game) HasLost() bool {
	return g.rules.Loss(g)
}

// Status returns the current state. Loss is checked before victory.
func (g *Game) Status() Status {
	if g.HasLost() {
		return Lost
	}
	if g.HasWon() {
		return Won
	}
	return Playing
}

// Snapshot returns a JSON-friendly view of the game
func (g *Game) Snapshot() *GameState {
	state := &GameState{
		Level:     g.level,
		GridSize:  g.grid.Size(),
		Rows:      g.grid.Rows(),
		Cells:     []CellView{},
		Steps:     g.steps,
		Status:    g.Status(),
		Inventory: []ItemView{},
		Zombies:   g.grid.Count((*Entity).IsZombie),
	}

	for _, pos := range g.grid.positions() {
		state.Cells = append(state.Cells, CellView{X: pos.X, Y: pos.Y, Token: g.grid.mapping[pos].Display()})
	}

	if pos, ok := g.grid.FindPlayer(); ok {
		p := pos
		state.PlayerPos = &p
		player := g.grid.GetEntity(pos)
		state.Infected = player.IsInfected()
		if inv := player.Inventory(); inv != nil {
			for _, item := range inv.Items() {
				state.Inventory = append(state.Inventory, ItemView{
					Token:    item.Display(),
					Name:     item.Name(),
					Lifetime: item.Lifetime(),
				})
			}
		}
	}

	return state
}
