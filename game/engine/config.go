package engine

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// ErrInvalidMap is wrapped by every map validation failure
var ErrInvalidMap = errors.New("invalid map")

// isEmptyCell reports whether a layout character denotes an unoccupied cell
func isEmptyCell(r rune) bool {
	return r == EmptyCell || r == ' '
}

// ParseLayout turns layout rows into the grid size and a token per
// occupied position. The grid is square with side len(rows).
func ParseLayout(rows []string) (int, map[Position]string) {
	tokens := make(map[Position]string)
	for y, row := range rows {
		for x, r := range []rune(row) {
			if isEmptyCell(r) {
				continue
			}
			tokens[Position{X: x, Y: y}] = string(r)
		}
	}
	return len(rows), tokens
}

// ValidateMapConfig checks a map for correctness and playability
func ValidateMapConfig(config *MapConfig) error {
	if config == nil {
		return fmt.Errorf("%w: config is nil", ErrInvalidMap)
	}
	if config.Name == "" {
		return fmt.Errorf("%w: name is required", ErrInvalidMap)
	}

	level, err := ParseLevel(string(config.Level))
	if err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidMap, err)
	}

	if config.GridSize < MinGridSize || config.GridSize > MaxGridSize {
		return fmt.Errorf("%w: grid_size must be between %d and %d, got %d",
			ErrInvalidMap, MinGridSize, MaxGridSize, config.GridSize)
	}
	if len(config.Layout) != config.GridSize {
		return fmt.Errorf("%w: layout must have %d rows to match grid_size, got %d",
			ErrInvalidMap, config.GridSize, len(config.Layout))
	}

	players, hospitals := 0, 0
	for i, row := range config.Layout {
		cells := []rune(row)
		if len(cells) != config.GridSize {
			return fmt.Errorf("%w: row %d must have %d cells to match grid_size, got %d",
				ErrInvalidMap, i+1, config.GridSize, len(cells))
		}
		for j, r := range cells {
			if isEmptyCell(r) {
				continue
			}
			if _, err := NewEntity(string(r), level); err != nil {
				return fmt.Errorf("%w at row %d, col %d", err, i+1, j+1)
			}
			switch string(r) {
			case PlayerToken:
				players++
			case HospitalToken:
				hospitals++
			}
		}
	}

	if players != 1 {
		return fmt.Errorf("%w: layout must contain exactly one player (%s), got %d", ErrInvalidMap, PlayerToken, players)
	}
	if hospitals != 1 {
		return fmt.Errorf("%w: layout must contain exactly one hospital (%s), got %d", ErrInvalidMap, HospitalToken, hospitals)
	}

	return nil
}

// Load builds the initial grid for a map. Every token is instantiated as
// the variant its level calls for; an unknown token aborts the load.
func Load(config *MapConfig) (*Grid, error) {
	if err := ValidateMapConfig(config); err != nil {
		return nil, err
	}
	level, _ := ParseLevel(string(config.Level))

	size, tokens := ParseLayout(config.Layout)
	grid := NewGrid(size)
	for pos, token := range tokens {
		entity, err := NewEntity(token, level)
		if err != nil {
			return nil, err
		}
		grid.AddEntity(pos, entity)
	}
	return grid, nil
}

// NewGameFromConfig loads a map and wraps it in a game at the map's level
func NewGameFromConfig(config *MapConfig, opts ...Option) (*Game, error) {
	grid, err := Load(config)
	if err != nil {
		return nil, err
	}
	level, _ := ParseLevel(string(config.Level))
	return NewGame(grid, level, opts...), nil
}

// LoadMapFile reads a map from disk. JSON files hold a MapConfig; any other
// file is a plain layout, one row per line, played at the advanced level.
func LoadMapFile(filename string) (*MapConfig, error) {
	// Support CONFIG_DIR environment variable for alternative config directory
	path := filename
	if configDir := os.Getenv("CONFIG_DIR"); configDir != "" && strings.HasPrefix(filename, "configs/") {
		path = filepath.Join(configDir, strings.TrimPrefix(filename, "configs/"))
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var config MapConfig
	if strings.EqualFold(filepath.Ext(path), ".json") {
		if err := json.Unmarshal(data, &config); err != nil {
			return nil, fmt.Errorf("failed to parse map file '%s': %w", filename, err)
		}
	} else {
		config = MapConfig{
			Name:  strings.TrimSuffix(filepath.Base(path), filepath.Ext(path)),
			Level: LevelAdvanced,
		}
		for _, line := range strings.Split(strings.ReplaceAll(string(data), "\r\n", "\n"), "\n") {
			if line == "" {
				continue
			}
			config.Layout = append(config.Layout, line)
		}
		config.GridSize = len(config.Layout)
	}

	if config.Level == "" {
		config.Level = LevelAdvanced
	}
	if err := ValidateMapConfig(&config); err != nil {
		return nil, fmt.Errorf("invalid map '%s': %w", filename, err)
	}
	return &config, nil
}

// DefaultMapConfig returns the built-in map used when no map files exist
func DefaultMapConfig() *MapConfig {
	return &MapConfig{
		Name:        "default",
		Description: "Built-in map: reach the hospital past two zombies",
		Level:       LevelAdvanced,
		GridSize:    6,
		Layout: []string{
			"P.....",
			"..G...",
			"....Z.",
			".Z....",
			"...C..",
			".....H",
		},
	}
}
