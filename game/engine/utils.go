package engine

// CountKind counts the entities of a kind on the grid
func CountKind(grid *Grid, kind Kind) int {
	return grid.Count(func(e *Entity) bool {
		return e.Kind() == kind
	})
}

// ManhattanDistance calculates the Manhattan distance between two positions
func ManhattanDistance(from, to Position) int {
	dx := from.X - to.X
	if dx < 0 {
		dx = -dx
	}
	dy := from.Y - to.Y
	if dy < 0 {
		dy = -dy
	}
	return dx + dy
}

// FindNearestZombie finds the zombie closest to the player and returns its
// position and Manhattan distance
func FindNearestZombie(grid *Grid) (Position, int, bool) {
	player, ok := grid.FindPlayer()
	if !ok {
		return Position{}, 0, false
	}

	minDistance := -1
	var nearest Position
	for _, pos := range grid.positions() {
		if !grid.mapping[pos].IsZombie() {
			continue
		}
		distance := ManhattanDistance(player, pos)
		if minDistance == -1 || distance < minDistance {
			minDistance = distance
			nearest = pos
		}
	}
	return nearest, minDistance, minDistance != -1
}

// FindHospital returns the hospital position, if it is still on the grid
func FindHospital(grid *Grid) (Position, bool) {
	for _, pos := range grid.positions() {
		if grid.mapping[pos].Display() == HospitalToken {
			return pos, true
		}
	}
	return Position{}, false
}

// AnalyzeThreat grades how exposed the player is to zombies
func AnalyzeThreat(game *Game) string {
	switch game.Status() {
	case Lost:
		return "INFECTED"
	case Won:
		return "SAFE"
	}

	player := game.Player()
	_, distance, found := FindNearestZombie(game.Grid())
	switch {
	case !found:
		return "SAFE"
	case player != nil && player.Inventory() != nil && player.Inventory().Contains(GarlicToken):
		return "PROTECTED"
	case distance <= 1:
		return "DANGER"
	case distance <= 3:
		return "CAUTION"
	}
	return "SAFE"
}
