package engine

import (
	"errors"
	"strings"
)

// ErrGameOver is returned by Act once the game has been won or lost.
var ErrGameOver = errors.New("game is over")

// FireResult is the outcome of a fire action
type FireResult string

const (
	FireHit              FireResult = "hit"
	FireMissed           FireResult = "missed"
	FireNoWeapon         FireResult = "no_weapon"
	FireInvalidDirection FireResult = "invalid_direction"
	FireNotAllowed       FireResult = "not_allowed"
)

// Message returns the text shown to the player for a fire result
func (r FireResult) Message() string {
	switch r {
	case FireHit:
		return "You shot a zombie!"
	case FireMissed:
		return "No zombie in that direction."
	case FireNoWeapon:
		return "You are not holding anything to fire with."
	case FireInvalidDirection:
		return "Invalid firing direction entered."
	case FireNotAllowed:
		return "Firing is not available on this map."
	}
	return ""
}

// DirectionToOffset maps an exact direction token to its offset
func DirectionToOffset(token string) (Position, bool) {
	switch token {
	case UpAction:
		return Position{X: 0, Y: -1}, true
	case DownAction:
		return Position{X: 0, Y: 1}, true
	case LeftAction:
		return Position{X: -1, Y: 0}, true
	case RightAction:
		return Position{X: 1, Y: 0}, true
	}
	return Position{}, false
}

// ParseDirection is the lenient form of DirectionToOffset used by the
// transports. It accepts the tokens in either case as well as up, down,
// left and right.
func ParseDirection(s string) (Position, bool) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "w", "up":
		return DirectionToOffset(UpAction)
	case "s", "down":
		return DirectionToOffset(DownAction)
	case "a", "left":
		return DirectionToOffset(LeftAction)
	case "d", "right":
		return DirectionToOffset(RightAction)
	}
	return Position{}, false
}

// IsFire reports whether action is the fire action
func IsFire(action string) bool {
	a := strings.ToLower(strings.TrimSpace(action))
	return a == "f" || a == "fire"
}

// Fire shoots along the ray from the player in direction and removes the
// nearest zombie on it. Other entities do not block the shot.
func (g *Game) Fire(direction string) FireResult {
	if !g.rules.Ranged {
		return FireNotAllowed
	}
	from, ok := g.grid.FindPlayer()
	if !ok {
		return FireNoWeapon
	}
	inv := g.grid.GetEntity(from).Inventory()
	if inv == nil || !inv.Contains(CrossbowToken) {
		return FireNoWeapon
	}
	offset, ok := ParseDirection(direction)
	if !ok {
		return FireInvalidDirection
	}

	for pos := from.Add(offset); g.grid.InBounds(pos); pos = pos.Add(offset) {
		if target := g.grid.GetEntity(pos); target != nil && target.IsZombie() {
			g.grid.RemoveEntity(pos)
			return FireHit
		}
	}
	return FireMissed
}

// Act plays one tick: resolve the action, then step the world. Directions
// move the player, the fire action shoots in fireDirection, and anything
// else is ignored. The turn advances either way.
func (g *Game) Act(action, fireDirection string) (*TurnResult, error) {
	if g.Status().Terminal() {
		return nil, ErrGameOver
	}

	result := &TurnResult{Action: action}
	if from, ok := g.grid.FindPlayer(); ok {
		f := from
		result.From = &f
	}

	switch offset, isMove := ParseDirection(action); {
	case isMove:
		if picked := g.movePlayer(offset); picked != nil {
			result.Picked = picked.Display()
		}
	case IsFire(action):
		result.Fire = g.Fire(fireDirection)
	}

	if to, ok := g.grid.FindPlayer(); ok {
		t := to
		result.To = &t
		result.Moved = result.From != nil && *result.From != to
	}

	g.Step()

	result.Steps = g.steps
	result.Status = g.Status()
	return result, nil
}
