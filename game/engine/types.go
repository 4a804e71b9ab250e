package engine

import (
	"fmt"
	"math"
)

// Entity tokens. Each token selects an entity variant at load time and is
// also what renderers draw for it.
const (
	PlayerToken         = "P"
	HospitalToken       = "H"
	ZombieToken         = "Z"
	TrackingZombieToken = "T"
	GarlicToken         = "G"
	CrossbowToken       = "C"
)

// Action tokens accepted by Game.Act.
const (
	UpAction    = "W"
	DownAction  = "S"
	LeftAction  = "A"
	RightAction = "D"
	FireAction  = "F"
)

const (
	// Pickup durabilities, in turns held
	GarlicDurability   = 10
	CrossbowDurability = 5

	// Validation constants
	MinGridSize    = 2
	MaxGridSize    = 50
	MaxBulkActions = 50

	// EmptyCell is how Grid.Rows renders an unoccupied cell.
	EmptyCell = '.'
)

// Position represents x,y coordinates
type Position struct {
	X int `json:"x"`
	Y int `json:"y"`
}

// Add returns the position offset by the given vector.
func (p Position) Add(offset Position) Position {
	return Position{X: p.X + offset.X, Y: p.Y + offset.Y}
}

// Distance returns the Euclidean distance between two positions.
func (p Position) Distance(other Position) float64 {
	dx := float64(p.X - other.X)
	dy := float64(p.Y - other.Y)
	return math.Sqrt(dx*dx + dy*dy)
}

func (p Position) String() string {
	return fmt.Sprintf("(%d, %d)", p.X, p.Y)
}

// Status is the win/loss state of a game.
type Status string

const (
	Playing Status = "playing"
	Won     Status = "won"
	Lost    Status = "lost"
)

// Terminal reports whether no further turns can be played.
func (s Status) Terminal() bool {
	return s == Won || s == Lost
}

// MapConfig represents a map description loaded from JSON
type MapConfig struct {
	Name        string   `json:"name"`
	Description string   `json:"description"`
	Level       Level    `json:"level"`
	GridSize    int      `json:"grid_size"`
	Layout      []string `json:"layout"`
}

// CellView is a single occupied cell in a GameState
type CellView struct {
	X     int    `json:"x"`
	Y     int    `json:"y"`
	Token string `json:"token"`
}

// ItemView describes a held pickup and its remaining lifetime
type ItemView struct {
	Token    string `json:"token"`
	Name     string `json:"name"`
	Lifetime int    `json:"lifetime"`
}

// GameState is a read-only snapshot of a game, shaped for renderers and
// JSON transports.
type GameState struct {
	Level     Level      `json:"level"`
	GridSize  int        `json:"grid_size"`
	Rows      []string   `json:"rows"`
	Cells     []CellView `json:"cells"`
	Steps     int        `json:"steps"`
	Status    Status     `json:"status"`
	PlayerPos *Position  `json:"player_pos,omitempty"`
	Infected  bool       `json:"infected"`
	Inventory []ItemView `json:"inventory"`
	Zombies   int        `json:"zombies"`

	// Threat is a computed helper, not used by the engine itself.
	Threat string `json:"threat,omitempty"`
}

// TurnResult describes the outcome of a single Game.Act call.
type TurnResult struct {
	Action string     `json:"action"`
	From   *Position  `json:"from,omitempty"`
	To     *Position  `json:"to,omitempty"`
	Moved  bool       `json:"moved"`
	Picked string     `json:"picked,omitempty"`
	Fire   FireResult `json:"fire,omitempty"`
	Steps  int        `json:"steps"`
	Status Status     `json:"status"`
}
