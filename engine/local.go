package engine

import (
	"context"
	"fmt"
	"time"

	"ggp/experiments/metrics"
	"ggp/game"
	"ggp/searcher/agent"

	"github.com/coder/quartz"
	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"
)

// Local hosts a match in process. Every turn all agents are asked for a move concurrently with
// the same deadline and the resulting joint move is applied.
type Local struct {
	machine   game.Machine
	agents    []agent.Agent // Ordered like machine.Roles()
	clock     quartz.Clock
	playClock time.Duration
	maxTurns  int
}

// NewLocal pairs every role of the machine with exactly one agent
func NewLocal(machine game.Machine, agents []agent.Agent, clock quartz.Clock, playClock time.Duration, maxTurns int) (*Local, error) {
	roles := machine.Roles()
	if len(roles) != len(agents) {
		return nil, fmt.Errorf("number of agents %d does not match number of roles %d", len(agents), len(roles))
	}
	ordered := make([]agent.Agent, len(roles))
	for _, a := range agents {
		i := game.RoleIndex(roles, a.Role())
		if i < 0 {
			return nil, game.Violation("new engine", a.Role(), game.ErrUnknownRole)
		}
		if ordered[i] != nil {
			return nil, fmt.Errorf("role %s has more than one agent", a.Role())
		}
		ordered[i] = a
	}
	if playClock <= 0 {
		return nil, fmt.Errorf("play clock must be positive, got %s", playClock)
	}
	if maxTurns <= 0 {
		maxTurns = DefaultMaxTurns
	}
	if clock == nil {
		clock = quartz.NewReal()
	}

	return &Local{
		machine:   machine,
		agents:    ordered,
		clock:     clock,
		playClock: playClock,
		maxTurns:  maxTurns,
	}, nil
}

// Run executes the entire game loop until the game is over or the turn limit is reached
func (e *Local) Run(ctx context.Context, initial game.State) (metrics.GameMetric, []metrics.MoveMetric, error) {
	roles := e.machine.Roles()
	gameMetric := metrics.GameMetric{
		Roles:     roles,
		StartTime: e.clock.Now(),
	}
	var moveMetrics []metrics.MoveMetric

	state := initial
	turn := 1
	for ; !e.machine.IsTerminal(state) && turn <= e.maxTurns; turn++ {
		if err := ctx.Err(); err != nil {
			return e.complete(gameMetric, turn-1), moveMetrics, err
		}

		joint, turnMetrics, err := e.collectMoves(ctx, state, turn)
		moveMetrics = append(moveMetrics, turnMetrics...)
		if err != nil {
			return e.complete(gameMetric, turn-1), moveMetrics, err
		}
		log.Debug().Int("turn", turn).Str("move", joint.String()).Msg("playing joint move")

		state, err = e.machine.NextState(state, joint)
		if err != nil {
			return e.complete(gameMetric, turn-1), moveMetrics, fmt.Errorf("failed to apply %s at turn %d: %w", joint, turn, err)
		}
	}
	gameMetric = e.complete(gameMetric, turn-1)

	if !e.machine.IsTerminal(state) {
		log.Info().Msgf("stopped after %d turns without reaching a terminal state", gameMetric.Turns)
		return gameMetric, moveMetrics, nil
	}

	goals := make([]int, len(roles))
	for i, role := range roles {
		goal, err := e.machine.Utility(state, role)
		if err != nil {
			return gameMetric, moveMetrics, fmt.Errorf("failed to get goal of %s: %w", role, err)
		}
		goals[i] = goal
	}
	gameMetric.Goals = goals
	gameMetric.Finished = true
	log.Info().Ints("goals", goals).Int("turns", gameMetric.Turns).Msg("game over")
	return gameMetric, moveMetrics, nil
}

// collectMoves asks every agent for its move with a shared deadline. A move that is not legal
// is replaced by the role's first legal move.
func (e *Local) collectMoves(ctx context.Context, state game.State, turn int) (game.JointMove, []metrics.MoveMetric, error) {
	roles := e.machine.Roles()
	deadline := e.clock.Now().Add(e.playClock)
	joint := make(game.JointMove, len(roles))
	turnMetrics := make([]metrics.MoveMetric, len(roles))

	g, _ := errgroup.WithContext(ctx)
	for i, a := range e.agents {
		g.Go(func() error {
			move, searchMetric, err := a.FindMove(state, deadline)
			if err != nil {
				return fmt.Errorf("agent for %s failed at turn %d: %w", a.Role(), turn, err)
			}
			joint[i] = move
			turnMetrics[i] = metrics.MoveMetric{
				Step:         turn,
				Role:         a.Role(),
				Move:         move,
				SearchMetric: searchMetric,
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, nil, err
	}

	for i, role := range roles {
		legal, err := e.machine.LegalMoves(state, role)
		if err != nil {
			return nil, turnMetrics, fmt.Errorf("failed to get legal moves of %s: %w", role, err)
		}
		if len(legal) == 0 {
			return nil, turnMetrics, game.Violation("legal moves", role, game.ErrNoLegalMoves)
		}
		if !game.Contains(legal, joint[i]) {
			log.Warn().Str("role", string(role)).Msgf("agent returned illegal move %s, playing %s instead", joint[i], legal[0])
			joint[i] = legal[0]
			turnMetrics[i].Move = legal[0]
		}
	}
	return joint, turnMetrics, nil
}

func (e *Local) complete(gameMetric metrics.GameMetric, turns int) metrics.GameMetric {
	gameMetric.EndTime = e.clock.Now()
	gameMetric.Duration = gameMetric.EndTime.Sub(gameMetric.StartTime)
	gameMetric.Turns = turns
	return gameMetric
}
