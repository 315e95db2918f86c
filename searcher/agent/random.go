package agent

import (
	"fmt"
	"time"

	"ggp/experiments/metrics"
	"ggp/game"

	"golang.org/x/exp/rand"
)

type randomAgent struct {
	role    game.Role
	machine game.Machine
	rng     *rand.Rand
}

// NewRandomAgent returns a baseline agent playing uniformly random legal moves
func NewRandomAgent(role game.Role, machine game.Machine, seed uint64) Agent {
	return &randomAgent{
		role:    role,
		machine: machine,
		rng:     rand.New(rand.NewSource(seed)),
	}
}

func (a *randomAgent) Role() game.Role {
	return a.role
}

func (a *randomAgent) FindMove(state game.State, deadline time.Time) (game.Move, metrics.SearchMetric, error) {
	moves, err := a.machine.LegalMoves(state, a.role)
	if err != nil {
		return "", metrics.SearchMetric{}, fmt.Errorf("failed to get legal moves: %w", err)
	}
	if len(moves) == 0 {
		return "", metrics.SearchMetric{}, game.Violation("legal moves", a.role, game.ErrNoLegalMoves)
	}
	return moves[a.rng.Intn(len(moves))], metrics.SearchMetric{Strategy: "random"}, nil
}
