package searcher

import (
	"fmt"
	"sync"
	"time"

	"ggp/event"
	"ggp/experiments/metrics"
	"ggp/game"

	"golang.org/x/exp/rand"
)

// MonteCarlo evaluates each of the role's moves with depth charges in round-robin order and
// picks the move with the best average utility. Opponents are assumed to play randomly.
type MonteCarlo struct {
	settings
	mu      sync.Mutex
	machine game.Machine
	rng     *rand.Rand
}

func NewMonteCarlo(machine game.Machine, options ...Option) *MonteCarlo {
	s := newSettings(options)
	return &MonteCarlo{
		settings: s,
		machine:  machine,
		rng:      s.newRand(),
	}
}

func (mc *MonteCarlo) SelectMove(state game.State, role game.Role, deadline time.Time) (game.Move, error) {
	move, _, err := mc.Search(state, role, deadline)
	return move, err
}

func (mc *MonteCarlo) Search(state game.State, role game.Role, deadline time.Time) (game.Move, metrics.SearchMetric, error) {
	mc.mu.Lock()
	defer mc.mu.Unlock()

	start := mc.clock.Now()
	collector := mc.newCollector()
	collector.Start(FlatStrategy, 1, mc.cutoff)

	moves, err := rootMoves(mc.machine, state, role)
	if err != nil {
		return "", collector.Complete(), err
	}

	selection := moves[0]
	finishBy := mc.effectiveDeadline(deadline)
	// Only simulate when there is a choice to make and time to make it
	if len(moves) > 1 && mc.clock.Now().Before(finishBy) {
		selection = mc.evaluateMoves(state, role, moves, finishBy, collector)
	}

	metric := collector.Complete()
	event.Notify(mc.observers, event.SelectedMove{
		Role:       role,
		Candidates: moves,
		Selected:   selection,
		Elapsed:    mc.clock.Since(start),
	})
	return selection, metric, nil
}

func (mc *MonteCarlo) evaluateMoves(state game.State, role game.Role, moves []game.Move, finishBy time.Time, collector metrics.Collector) game.Move {
	roleIndex := game.RoleIndex(mc.machine.Roles(), role)
	totals := make([]float64, len(moves))
	visits := make([]int, len(moves))

	for i := 0; mc.clock.Now().Before(finishBy); i = (i + 1) % len(moves) {
		totals[i] += mc.depthCharge(state, role, roleIndex, moves[i], collector)
		visits[i]++
		collector.AddEpisode()
	}

	return bestAverage(moves, totals, visits)
}

// depthCharge returns the role's utility after one random continuation of move
func (mc *MonteCarlo) depthCharge(state game.State, role game.Role, roleIndex int, move game.Move, collector metrics.Collector) float64 {
	utility, err := sample(func() ([]float64, error) {
		joint, err := game.RandomJointMoveWith(mc.machine, state, role, move, mc.rng)
		if err != nil {
			return nil, err
		}
		next, err := mc.machine.NextState(state, joint)
		if err != nil {
			return nil, err
		}
		outcome, err := Playout(mc.machine, next, mc.cutoff, mc.evaluate)
		if err == nil && !outcome.Cutoff {
			collector.AddFullPlayout()
		}
		return outcome.Utility, err
	})
	if err != nil {
		utility = discard(err, len(mc.machine.Roles()), collector)
	}
	return utility[roleIndex]
}

// bestAverage picks the move with the highest average, preferring earlier moves on ties.
// Moves never sampled are skipped; if none was sampled the first move is returned.
func bestAverage(moves []game.Move, totals []float64, visits []int) game.Move {
	best := -1
	bestScore := 0.0
	for i := range moves {
		if visits[i] == 0 {
			continue
		}
		score := totals[i] / float64(visits[i])
		if best < 0 || score > bestScore {
			best = i
			bestScore = score
		}
	}
	if best < 0 {
		return moves[0]
	}
	return moves[best]
}

// rootMoves fetches the role's legal moves at the state a decision is made for.
// Without a legal move there is nothing safe to return, so this is fatal to the call.
func rootMoves(machine game.Machine, state game.State, role game.Role) ([]game.Move, error) {
	if game.RoleIndex(machine.Roles(), role) < 0 {
		return nil, game.Violation("legal moves", role, game.ErrUnknownRole)
	}
	moves, err := machine.LegalMoves(state, role)
	if err != nil {
		return nil, fmt.Errorf("failed to get legal moves: %w", err)
	}
	if len(moves) == 0 {
		return nil, game.Violation("legal moves", role, game.ErrNoLegalMoves)
	}
	return moves, nil
}
