package engine

import (
	"sort"
	"strings"
)

// Grid maps positions to the entity occupying them. A cell holds at most
// one entity. Out-of-bounds and empty-cell operations are silent no-ops.
type Grid struct {
	size    int
	mapping map[Position]*Entity
}

// NewGrid creates an empty size x size grid
func NewGrid(size int) *Grid {
	return &Grid{
		size:    size,
		mapping: make(map[Position]*Entity),
	}
}

// Size returns the side length of the grid
func (g *Grid) Size() int {
	return g.size
}

// InBounds reports whether pos lies inside the grid
func (g *Grid) InBounds(pos Position) bool {
	return pos.X >= 0 && pos.X < g.size && pos.Y >= 0 && pos.Y < g.size
}

// AddEntity places entity at pos, replacing any current occupant.
func (g *Grid) AddEntity(pos Position, entity *Entity) {
	if !g.InBounds(pos) || entity == nil {
		return
	}
	g.mapping[pos] = entity
}

// RemoveEntity clears pos
func (g *Grid) RemoveEntity(pos Position) {
	delete(g.mapping, pos)
}

// GetEntity returns the occupant of pos, or nil when pos is empty or out of bounds
func (g *Grid) GetEntity(pos Position) *Entity {
	if !g.InBounds(pos) {
		return nil
	}
	return g.mapping[pos]
}

// MoveEntity relocates the entity at start to end. Whatever was at end is
// overwritten; collision rules belong to the callers.
func (g *Grid) MoveEntity(start, end Position) {
	entity := g.GetEntity(start)
	if entity == nil {
		return
	}
	if !g.InBounds(start) || !g.InBounds(end) {
		return
	}
	delete(g.mapping, start)
	g.mapping[end] = entity
}

// Entities returns the occupants in row-major order
func (g *Grid) Entities() []*Entity {
	positions := g.positions()
	entities := make([]*Entity, 0, len(positions))
	for _, pos := range positions {
		entities = append(entities, g.mapping[pos])
	}
	return entities
}

// Mapping returns a copy of the position to entity mapping
func (g *Grid) Mapping() map[Position]*Entity {
	mapping := make(map[Position]*Entity, len(g.mapping))
	for pos, entity := range g.mapping {
		mapping[pos] = entity
	}
	return mapping
}

// FindPlayer returns the position of the player. If more than one entity
// carries the player token the last one in row-major order wins.
func (g *Grid) FindPlayer() (Position, bool) {
	var found Position
	ok := false
	for _, pos := range g.positions() {
		if g.mapping[pos].Display() == PlayerToken {
			found = pos
			ok = true
		}
	}
	return found, ok
}

// Serialize returns the token of every occupied cell
func (g *Grid) Serialize() map[Position]string {
	serialized := make(map[Position]string, len(g.mapping))
	for pos, entity := range g.mapping {
		serialized[pos] = entity.Display()
	}
	return serialized
}

// Rows renders the grid one string per row, EmptyCell for unoccupied cells
func (g *Grid) Rows() []string {
	rows := make([]string, g.size)
	for y := 0; y < g.size; y++ {
		var row strings.Builder
		for x := 0; x < g.size; x++ {
			if entity := g.mapping[Position{X: x, Y: y}]; entity != nil {
				row.WriteString(entity.Display())
			} else {
				row.WriteByte(EmptyCell)
			}
		}
		rows[y] = row.String()
	}
	return rows
}

// Count returns how many entities on the grid satisfy match
func (g *Grid) Count(match func(*Entity) bool) int {
	count := 0
	for _, entity := range g.mapping {
		if match(entity) {
			count++
		}
	}
	return count
}

// positions returns occupied positions sorted row-major
func (g *Grid) positions() []Position {
	positions := make([]Position, 0, len(g.mapping))
	for pos := range g.mapping {
		positions = append(positions, pos)
	}
	sortRowMajor(positions)
	return positions
}

func sortRowMajor(positions []Position) {
	sort.Slice(positions, func(i, j int) bool {
		if positions[i].Y != positions[j].Y {
			return positions[i].Y < positions[j].Y
		}
		return positions[i].X < positions[j].X
	})
}
