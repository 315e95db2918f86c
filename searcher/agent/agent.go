package agent

import (
	"time"

	"ggp/experiments/metrics"
	"ggp/game"
)

type Agent interface {
	Role() game.Role
	// FindMove returns the move to play before deadline and performance metrics (if collected) from the search
	FindMove(state game.State, deadline time.Time) (game.Move, metrics.SearchMetric, error)
}
