package engine

import (
	"errors"
	"fmt"
	"sort"
)

// ErrUnknownToken is returned when a map references a token that has no
// entity variant at the requested level.
var ErrUnknownToken = errors.New("unknown entity token")

// Kind discriminates the closed set of entity variants
type Kind int

const (
	KindPlayer Kind = iota
	KindHospital
	KindZombie
	KindTrackingZombie
	KindGarlic
	KindCrossbow
)

var kindTokens = map[Kind]string{
	KindPlayer:         PlayerToken,
	KindHospital:       HospitalToken,
	KindZombie:         ZombieToken,
	KindTrackingZombie: TrackingZombieToken,
	KindGarlic:         GarlicToken,
	KindCrossbow:       CrossbowToken,
}

var kindNames = map[Kind]string{
	KindPlayer:         "Player",
	KindHospital:       "Hospital",
	KindZombie:         "Zombie",
	KindTrackingZombie: "TrackingZombie",
	KindGarlic:         "Garlic",
	KindCrossbow:       "Crossbow",
}

// neighbourOffsets are the 4-connected moves a zombie considers
var neighbourOffsets = []Position{
	{X: 0, Y: -1},
	{X: 0, Y: 1},
	{X: -1, Y: 0},
	{X: 1, Y: 0},
}

// Entity is anything that occupies a grid cell. Behaviour is selected by
// Kind; the optional fields below only apply to some kinds.
type Entity struct {
	kind Kind

	// players
	vulnerable bool
	infected   bool
	inventory  *Inventory

	// pickups
	lifetime int
}

// NewPlayer creates a player that cannot be infected
func NewPlayer() *Entity {
	return &Entity{kind: KindPlayer}
}

// NewVulnerablePlayer creates a player that tracks infection
func NewVulnerablePlayer() *Entity {
	return &Entity{kind: KindPlayer, vulnerable: true}
}

// NewHoldingPlayer creates a vulnerable player with an inventory
func NewHoldingPlayer() *Entity {
	return &Entity{kind: KindPlayer, vulnerable: true, inventory: NewInventory()}
}

func NewHospital() *Entity {
	return &Entity{kind: KindHospital}
}

func NewZombie() *Entity {
	return &Entity{kind: KindZombie}
}

func NewTrackingZombie() *Entity {
	return &Entity{kind: KindTrackingZombie}
}

func NewGarlic() *Entity {
	return &Entity{kind: KindGarlic, lifetime: GarlicDurability}
}

func NewCrossbow() *Entity {
	return &Entity{kind: KindCrossbow, lifetime: CrossbowDurability}
}

// NewEntity builds the entity variant a token stands for at the given level.
// Basic maps know only the player and the hospital, intermediate maps add
// zombies and infection, advanced maps add tracking zombies and pickups.
func NewEntity(token string, level Level) (*Entity, error) {
	switch token {
	case PlayerToken:
		switch level {
		case LevelBasic:
			return NewPlayer(), nil
		case LevelIntermediate:
			return NewVulnerablePlayer(), nil
		default:
			return NewHoldingPlayer(), nil
		}
	case HospitalToken:
		return NewHospital(), nil
	case ZombieToken:
		if level != LevelBasic {
			return NewZombie(), nil
		}
	case TrackingZombieToken:
		if level == LevelAdvanced {
			return NewTrackingZombie(), nil
		}
	case GarlicToken:
		if level == LevelAdvanced {
			return NewGarlic(), nil
		}
	case CrossbowToken:
		if level == LevelAdvanced {
			return NewCrossbow(), nil
		}
	}
	return nil, fmt.Errorf("%w %q for level %s", ErrUnknownToken, token, level)
}

// Kind returns the variant discriminant
func (e *Entity) Kind() Kind {
	return e.kind
}

// Display returns the entity's token
func (e *Entity) Display() string {
	return kindTokens[e.kind]
}

// Name returns the variant name, e.g. "HoldingPlayer" or "Garlic"
func (e *Entity) Name() string {
	if e.kind == KindPlayer {
		switch {
		case e.inventory != nil:
			return "HoldingPlayer"
		case e.vulnerable:
			return "VulnerablePlayer"
		}
	}
	return kindNames[e.kind]
}

// String renders the entity as Name() for plain entities and
// Name(lifetime) for pickups.
func (e *Entity) String() string {
	if e.IsPickup() {
		return fmt.Sprintf("%s(%d)", e.Name(), e.lifetime)
	}
	return e.Name() + "()"
}

func (e *Entity) IsPlayer() bool {
	return e.kind == KindPlayer
}

func (e *Entity) IsZombie() bool {
	return e.kind == KindZombie || e.kind == KindTrackingZombie
}

func (e *Entity) IsPickup() bool {
	return e.kind == KindGarlic || e.kind == KindCrossbow
}

// Vulnerable reports whether the entity can be infected
func (e *Entity) Vulnerable() bool {
	return e.vulnerable
}

// Infect marks a vulnerable player as infected. Holding garlic prevents it.
// Infection is permanent.
func (e *Entity) Infect() {
	if !e.vulnerable {
		return
	}
	if e.inventory != nil && e.inventory.Contains(GarlicToken) {
		return
	}
	e.infected = true
}

func (e *Entity) IsInfected() bool {
	return e.infected
}

// Inventory returns the held items of a holding player, nil otherwise
func (e *Entity) Inventory() *Inventory {
	return e.inventory
}

// Durability returns the starting lifetime of a pickup, 0 for other kinds
func (e *Entity) Durability() int {
	switch e.kind {
	case KindGarlic:
		return GarlicDurability
	case KindCrossbow:
		return CrossbowDurability
	}
	return 0
}

// Lifetime returns the turns a pickup has left
func (e *Entity) Lifetime() int {
	return e.lifetime
}

// Hold ages a pickup by one turn
func (e *Entity) Hold() {
	if e.lifetime > 0 {
		e.lifetime--
	}
}

// Step runs the entity's behaviour for one turn. pos is where the entity
// stood when the turn started.
func (e *Entity) Step(pos Position, game *Game) {
	switch e.kind {
	case KindPlayer:
		if e.inventory != nil {
			e.inventory.Step()
		}
	case KindZombie:
		wander(pos, game, game.randomOffsets())
	case KindTrackingZombie:
		offsets := game.randomOffsets()
		if target, ok := game.grid.FindPlayer(); ok {
			rankByDistance(pos, target, offsets)
		}
		wander(pos, game, offsets)
	case KindHospital, KindGarlic, KindCrossbow:
	}
}

// wander tries each offset in order. The first in-bounds neighbour decides:
// the player gets infected, an empty cell is moved into, anything else is
// skipped.
func wander(pos Position, game *Game, offsets []Position) {
	grid := game.grid
	for _, offset := range offsets {
		next := pos.Add(offset)
		if !grid.InBounds(next) {
			continue
		}
		occupant := grid.GetEntity(next)
		if occupant == nil {
			grid.MoveEntity(pos, next)
			return
		}
		if occupant.Display() == PlayerToken {
			occupant.Infect()
			return
		}
	}
}

// rankByDistance orders offsets so the neighbour closest to target comes
// first. Ties keep their existing (random) order.
func rankByDistance(pos, target Position, offsets []Position) {
	sort.SliceStable(offsets, func(i, j int) bool {
		return pos.Add(offsets[i]).Distance(target) < pos.Add(offsets[j]).Distance(target)
	})
}
