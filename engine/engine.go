package engine

import (
	"context"

	"ggp/experiments/metrics"
	"ggp/game"
)

const DefaultMaxTurns = 500

type Engine interface {
	// Run plays a game from initial until it is over or the turn limit is reached
	Run(ctx context.Context, initial game.State) (metrics.GameMetric, []metrics.MoveMetric, error)
}
