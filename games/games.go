package games

import (
	"fmt"
	"slices"

	"ggp/game"
	"ggp/game/tictactoe"
)

// Game bundles a state machine with its initial state and an optional evaluation function
type Game struct {
	Name     string
	Machine  game.Machine
	Initial  game.State
	Evaluate game.Evaluate
}

type factory func(seed uint64) Game

var registry = map[string]factory{
	"tictactoe": func(seed uint64) Game {
		m := tictactoe.New(seed)
		return Game{
			Name:     "tictactoe",
			Machine:  m,
			Initial:  m.Initial(),
			Evaluate: tictactoe.EvaluateOpenLines,
		}
	},
}

// Lookup builds a fresh instance of the named game
func Lookup(name string, seed uint64) (Game, error) {
	f, ok := registry[name]
	if !ok {
		return Game{}, fmt.Errorf("unknown game %q, available: %v", name, Names())
	}
	return f(seed), nil
}

func Names() []string {
	names := make([]string, 0, len(registry))
	for name := range registry {
		names = append(names, name)
	}
	slices.Sort(names)
	return names
}
