package searcher

import (
	"time"

	"ggp/experiments/metrics"
	"ggp/game"
)

// Searcher picks a move for role before deadline. Both searchers are anytime: the
// estimate improves the longer they run and a legal move is returned even when the
// deadline has already passed.
type Searcher interface {
	SelectMove(state game.State, role game.Role, deadline time.Time) (game.Move, error)
	// Search is SelectMove that also reports how the search went
	Search(state game.State, role game.Role, deadline time.Time) (game.Move, metrics.SearchMetric, error)
}

const (
	FlatStrategy = "flat"
	UCTStrategy  = "uct"
)
