package main

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/urfave/cli/v3"
	"github.com/wricardo/hospital-run/game/engine"
)

const (
	border         = "#"
	actionPrompt   = "Enter your next action (W/A/S/D, F to fire, Q to quit): "
	firePrompt     = "Enter a direction to fire (W/A/S/D): "
	holdingMessage = "You are holding:"
	winMessage     = "You made it to the hospital. You win!"
	loseMessage    = "You have been infected. Game over."
	quitMessage    = "Run abandoned."
)

func playCommand(in io.Reader, out io.Writer) *cli.Command {
	return &cli.Command{
		Name:      "play",
		Usage:     "Play a map in the terminal",
		ArgsUsage: "[map file]",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "map",
				Aliases: []string{"m"},
				Usage:   "map file (JSON or plain layout); defaults to configs/classic.json or the built-in map",
			},
			&cli.Int64Flag{
				Name:  "seed",
				Usage: "seed for zombie movement (0 picks one from the clock)",
			},
		},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			path := cmd.String("map")
			if path == "" {
				path = cmd.Args().First()
			}
			config, err := loadPlayMap(path)
			if err != nil {
				return err
			}

			seed := cmd.Int64("seed")
			if seed == 0 {
				seed = time.Now().UnixNano()
			}
			game, err := engine.NewGameFromConfig(config, engine.WithSeed(seed))
			if err != nil {
				return err
			}

			fmt.Fprintf(out, "%s (%s, seed %d)\n", config.Name, config.Level, seed)
			play(in, out, game)
			return nil
		},
	}
}

// loadPlayMap resolves the map to play. An empty path falls back to the
// classic map on disk, then to the built-in map.
func loadPlayMap(path string) (*engine.MapConfig, error) {
	if path != "" {
		return engine.LoadMapFile(path)
	}
	classic := defaultMapDir + "/classic.json"
	if _, err := os.Stat(classic); err == nil {
		return engine.LoadMapFile(classic)
	}
	return engine.DefaultMapConfig(), nil
}

// play runs the turn loop until the game ends, the player quits or input
// runs out, and returns the final status.
func play(in io.Reader, out io.Writer, game *engine.Game) engine.Status {
	scanner := bufio.NewScanner(in)
	for {
		switch game.Status() {
		case engine.Won:
			fmt.Fprintln(out, winMessage)
			return engine.Won
		case engine.Lost:
			fmt.Fprintln(out, loseMessage)
			return engine.Lost
		}

		draw(out, game)
		fmt.Fprint(out, actionPrompt)
		if !scanner.Scan() {
			fmt.Fprintln(out)
			return game.Status()
		}
		action := strings.TrimSpace(scanner.Text())
		if strings.EqualFold(action, "q") {
			fmt.Fprintln(out, quitMessage)
			return game.Status()
		}

		var direction string
		if engine.IsFire(action) && game.Rules().Ranged && holdsCrossbow(game) {
			fmt.Fprint(out, firePrompt)
			if scanner.Scan() {
				direction = strings.TrimSpace(scanner.Text())
			}
		}

		result, err := game.Act(action, direction)
		if err != nil {
			fmt.Fprintln(out, err)
			return game.Status()
		}
		if result.Fire != "" && result.Fire != engine.FireNotAllowed {
			fmt.Fprintln(out, result.Fire.Message())
		}
	}
}

func holdsCrossbow(game *engine.Game) bool {
	player := game.Player()
	return player != nil && player.Inventory() != nil && player.Inventory().Contains(engine.CrossbowToken)
}

// draw prints the board inside a border, followed by the held items
func draw(out io.Writer, game *engine.Game) {
	size := game.Grid().Size()
	edge := strings.Repeat(border, size+2)

	fmt.Fprintln(out, edge)
	for _, row := range game.Grid().Rows() {
		fmt.Fprintln(out, border+strings.ReplaceAll(row, string(engine.EmptyCell), " ")+border)
	}
	fmt.Fprintln(out, edge)

	player := game.Player()
	if player == nil || player.Inventory() == nil || player.Inventory().Len() == 0 {
		return
	}
	fmt.Fprintln(out, holdingMessage)
	for _, item := range player.Inventory().Items() {
		fmt.Fprintln(out, item.String())
	}
}
