package agent

import (
	"math"
	"slices"
	"time"

	"ggp/experiments/metrics"
	"ggp/game"
	"ggp/searcher"

	"golang.org/x/exp/rand"
)

type samplingAgent struct {
	role        game.Role
	mcts        *searcher.MCTS
	temperature float64
	rng         *rand.Rand
}

// NewSamplingAgent returns an agent that samples its move from the root visit counts.
// Lower temperatures play closer to the most visited move. Used to vary games in experiments.
func NewSamplingAgent(role game.Role, mcts *searcher.MCTS, temperature float64, seed uint64) Agent {
	if temperature <= 0 {
		temperature = 1.0
	}
	return &samplingAgent{
		role:        role,
		mcts:        mcts,
		temperature: temperature,
		rng:         rand.New(rand.NewSource(seed)),
	}
}

func (a *samplingAgent) Role() game.Role {
	return a.role
}

func (a *samplingAgent) FindMove(state game.State, deadline time.Time) (game.Move, metrics.SearchMetric, error) {
	best, metric, err := a.mcts.Search(state, a.role, deadline)
	if err != nil {
		return "", metric, err
	}
	policy := adjustTemperature(a.mcts.Policy(a.role), a.temperature)
	if len(policy) == 0 {
		return best, metric, nil
	}
	return sample(policy, a.rng.Float64()), metric, nil
}

func adjustTemperature(visits map[game.Move]float64, temperature float64) map[game.Move]float64 {
	// Compute temperature-adjusted move probabilities
	exponent := 1.0 / temperature
	sum := 0.0
	policy := make(map[game.Move]float64, len(visits))
	for move, visit := range visits {
		prob := math.Pow(visit, exponent)
		sum += prob
		policy[move] = prob
	}
	if sum == 0 {
		return nil
	}
	// Normalize
	for move := range policy {
		policy[move] /= sum
	}
	return policy
}

// sample walks the cumulative distribution in move order
func sample(policy map[game.Move]float64, sampled float64) game.Move {
	moves := make([]game.Move, 0, len(policy))
	for move := range policy {
		moves = append(moves, move)
	}
	slices.Sort(moves)

	cumulative := 0.0
	for _, move := range moves {
		cumulative += policy[move]
		if sampled < cumulative {
			return move
		}
	}
	return moves[len(moves)-1] // Fallback in case of rounding errors
}
