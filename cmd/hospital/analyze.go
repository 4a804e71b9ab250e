package main

import (
	"context"
	"fmt"
	"io"

	"github.com/urfave/cli/v3"
	"github.com/wricardo/hospital-run/game/engine"
)

// MapAnalysis holds starting-position statistics for a map
type MapAnalysis struct {
	Name     string
	Level    engine.Level
	GridSize int

	Zombies         int
	TrackingZombies int
	Garlic          int
	Crossbows       int

	// HospitalDistance is the Manhattan distance from the player to the hospital.
	HospitalDistance int
	// NearestZombie is -1 when the map has no zombies.
	NearestZombie int
	Threat        string
	Warnings      []string
}

func analyzeCommand(out io.Writer) *cli.Command {
	return &cli.Command{
		Name:      "analyze",
		Usage:     "Print starting statistics and warnings for map files",
		ArgsUsage: "[files or directories...]",
		Action: func(ctx context.Context, cmd *cli.Command) error {
			files, err := mapFiles(cmd.Args().Slice())
			if err != nil {
				return err
			}
			for _, file := range files {
				fmt.Fprintf(out, "\n=== Analyzing %s ===\n", file)
				config, err := engine.LoadMapFile(file)
				if err != nil {
					fmt.Fprintf(out, "Error: %v\n", err)
					continue
				}
				analysis, err := analyzeMap(config)
				if err != nil {
					fmt.Fprintf(out, "Error: %v\n", err)
					continue
				}
				printAnalysis(out, analysis)
			}
			return nil
		},
	}
}

// analyzeMap loads config into a fresh game and inspects the start
func analyzeMap(config *engine.MapConfig) (*MapAnalysis, error) {
	game, err := engine.NewGameFromConfig(config, engine.WithSeed(1))
	if err != nil {
		return nil, err
	}
	grid := game.Grid()

	a := &MapAnalysis{
		Name:            config.Name,
		Level:           game.Level(),
		GridSize:        grid.Size(),
		Zombies:         engine.CountKind(grid, engine.KindZombie),
		TrackingZombies: engine.CountKind(grid, engine.KindTrackingZombie),
		Garlic:          engine.CountKind(grid, engine.KindGarlic),
		Crossbows:       engine.CountKind(grid, engine.KindCrossbow),
		NearestZombie:   -1,
		Threat:          engine.AnalyzeThreat(game),
	}

	player, _ := grid.FindPlayer()
	hospital, _ := engine.FindHospital(grid)
	a.HospitalDistance = engine.ManhattanDistance(player, hospital)
	if _, distance, ok := engine.FindNearestZombie(grid); ok {
		a.NearestZombie = distance
	}

	if a.NearestZombie == 1 {
		a.Warnings = append(a.Warnings, "a zombie starts next to the player")
	}
	if a.Level == engine.LevelAdvanced && a.Zombies+a.TrackingZombies > 0 && a.Garlic+a.Crossbows == 0 {
		a.Warnings = append(a.Warnings, "zombies but no garlic or crossbow to defend with")
	}
	if a.Crossbows > 0 && a.Zombies+a.TrackingZombies == 0 {
		a.Warnings = append(a.Warnings, "crossbow on a map without zombies")
	}
	return a, nil
}

func printAnalysis(out io.Writer, a *MapAnalysis) {
	fmt.Fprintf(out, "Name: %s\n", a.Name)
	fmt.Fprintf(out, "Level: %s\n", a.Level)
	fmt.Fprintf(out, "Grid Size: %d x %d\n", a.GridSize, a.GridSize)
	fmt.Fprintf(out, "Zombies: %d (tracking: %d)\n", a.Zombies, a.TrackingZombies)
	fmt.Fprintf(out, "Pickups: %d garlic, %d crossbow\n", a.Garlic, a.Crossbows)
	fmt.Fprintf(out, "Distance to hospital: %d\n", a.HospitalDistance)
	if a.NearestZombie >= 0 {
		fmt.Fprintf(out, "Nearest zombie: %d\n", a.NearestZombie)
	}
	fmt.Fprintf(out, "Starting threat: %s\n", a.Threat)

	if len(a.Warnings) == 0 {
		fmt.Fprintln(out, "✅ No issues found")
		return
	}
	for _, w := range a.Warnings {
		fmt.Fprintf(out, "⚠️  WARNING: %s\n", w)
	}
}
