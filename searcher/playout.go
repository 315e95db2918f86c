package searcher

import (
	"errors"
	"fmt"
	"math"

	"ggp/game"
)

var (
	ErrCutoff       = errors.New("playout cut off before a terminal state")
	ErrUtilityRange = errors.New("utility out of range")
)

// Outcome of a single depth charge
type Outcome struct {
	Utility []float64 // Ordered like Machine.Roles()
	Depth   int
	Cutoff  bool // Utility comes from an evaluation function rather than a terminal state
}

// Playout plays uniformly random joint moves from state until the game is over or cutoff
// moves have been played. At the cutoff the evaluation function, if any, scores the state.
func Playout(m game.Machine, state game.State, cutoff int, evaluate game.Evaluate) (Outcome, error) {
	depth := 0
	for !m.IsTerminal(state) {
		if depth >= cutoff {
			if evaluate == nil {
				return Outcome{Depth: depth, Cutoff: true}, ErrCutoff
			}
			utility := evaluate(m, state)
			return Outcome{Utility: utility, Depth: depth, Cutoff: true}, checkUtility(utility, len(m.Roles()))
		}

		move, err := m.RandomJointMove(state)
		if err != nil {
			return Outcome{Depth: depth}, err
		}
		state, err = m.NextState(state, move)
		if err != nil {
			return Outcome{Depth: depth}, err
		}
		depth++
	}

	utility, err := game.Utilities(m, state)
	if err != nil {
		return Outcome{Depth: depth}, err
	}
	return Outcome{Utility: utility, Depth: depth}, checkUtility(utility, len(m.Roles()))
}

func checkUtility(utility []float64, roles int) error {
	if len(utility) != roles {
		return fmt.Errorf("%w: %d values for %d roles", ErrUtilityRange, len(utility), roles)
	}
	for _, u := range utility {
		if math.IsNaN(u) || u < game.MinUtility || u > game.MaxUtility {
			return fmt.Errorf("%w: %v", ErrUtilityRange, u)
		}
	}
	return nil
}
