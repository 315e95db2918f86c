package agent

import (
	"fmt"

	"ggp/config"
	"ggp/game"
	"ggp/searcher"
)

// Build creates the agent configured for a role. Options shared by every searcher, such as
// the clock or the safety margin, are passed through.
func Build(machine game.Machine, gamer config.Gamer, options ...searcher.Option) (Agent, error) {
	role := game.Role(gamer.Role)
	if game.RoleIndex(machine.Roles(), role) < 0 {
		return nil, game.Violation("build agent", role, game.ErrUnknownRole)
	}

	if gamer.Exploration > 0 {
		options = append(options, searcher.WithExploration(gamer.Exploration))
	}
	options = append(options,
		searcher.WithGoroutines(gamer.Goroutines),
		searcher.WithCutoff(gamer.Cutoff),
		searcher.WithReuseDepth(gamer.ReuseDepth),
		searcher.WithMetrics(),
	)
	if gamer.Seed != 0 {
		options = append(options, searcher.WithSeed(uint64(gamer.Seed)))
	}

	switch gamer.Strategy {
	case config.StrategyUCT:
		return NewEvaluationAgent(role, searcher.NewMCTS(machine, options...)), nil
	case config.StrategyFlat:
		return NewEvaluationAgent(role, searcher.NewMonteCarlo(machine, options...)), nil
	case config.StrategySampling:
		return NewSamplingAgent(role, searcher.NewMCTS(machine, options...), gamer.Temperature, uint64(gamer.Seed)), nil
	case config.StrategyRandom:
		return NewRandomAgent(role, machine, uint64(gamer.Seed)), nil
	default:
		return nil, fmt.Errorf("unknown strategy %q for role %s", gamer.Strategy, role)
	}
}
