package agent

import (
	"time"

	"ggp/experiments/metrics"
	"ggp/game"
	"ggp/searcher"
)

type evaluationAgent struct {
	role     game.Role
	searcher searcher.Searcher
}

// NewEvaluationAgent returns an agent that always plays the searcher's best move
func NewEvaluationAgent(role game.Role, s searcher.Searcher) Agent {
	return evaluationAgent{role: role, searcher: s}
}

func (a evaluationAgent) Role() game.Role {
	return a.role
}

func (a evaluationAgent) FindMove(state game.State, deadline time.Time) (game.Move, metrics.SearchMetric, error) {
	return a.searcher.Search(state, a.role, deadline)
}
