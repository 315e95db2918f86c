package engine

import (
	"context"
	"errors"
	"testing"
	"time"

	"ggp/experiments/metrics"
	"ggp/game"
	"ggp/game/tictactoe"
	"ggp/searcher"
	"ggp/searcher/agent"

	"github.com/coder/quartz"
	"github.com/stretchr/testify/require"
)

// scriptedAgent plays a fixed move, or fails
type scriptedAgent struct {
	role game.Role
	move game.Move
	err  error
}

func (a scriptedAgent) Role() game.Role {
	return a.role
}

func (a scriptedAgent) FindMove(game.State, time.Time) (game.Move, metrics.SearchMetric, error) {
	return a.move, metrics.SearchMetric{Strategy: "scripted"}, a.err
}

func TestNewLocal(t *testing.T) {
	m := tictactoe.New(1)
	clock := quartz.NewMock(t)

	t.Run("one agent per role", func(t *testing.T) {
		_, err := NewLocal(m, []agent.Agent{agent.NewRandomAgent(tictactoe.X, m, 1)}, clock, time.Second, 0)
		require.ErrorContains(t, err, "does not match")

		_, err = NewLocal(m, []agent.Agent{
			agent.NewRandomAgent(tictactoe.X, m, 1),
			agent.NewRandomAgent(tictactoe.X, m, 2),
		}, clock, time.Second, 0)
		require.ErrorContains(t, err, "more than one agent")
	})

	t.Run("unknown role", func(t *testing.T) {
		_, err := NewLocal(m, []agent.Agent{
			agent.NewRandomAgent(tictactoe.X, m, 1),
			scriptedAgent{role: "nobody"},
		}, clock, time.Second, 0)
		require.ErrorIs(t, err, game.ErrUnknownRole)
	})

	t.Run("play clock must be positive", func(t *testing.T) {
		_, err := NewLocal(m, []agent.Agent{
			agent.NewRandomAgent(tictactoe.X, m, 1),
			agent.NewRandomAgent(tictactoe.O, m, 2),
		}, clock, 0, 0)
		require.Error(t, err)
	})
}

func TestLocalRun(t *testing.T) {
	t.Run("plays a game to the end", func(t *testing.T) {
		m := tictactoe.New(1)
		// Agents may be given in any order
		e, err := NewLocal(m, []agent.Agent{
			agent.NewRandomAgent(tictactoe.O, m, 2),
			agent.NewRandomAgent(tictactoe.X, m, 1),
		}, quartz.NewMock(t), time.Second, 0)
		require.NoError(t, err)

		gameMetric, moveMetrics, err := e.Run(context.Background(), m.Initial())
		require.NoError(t, err)
		require.True(t, gameMetric.Finished)
		require.Equal(t, []game.Role{tictactoe.X, tictactoe.O}, gameMetric.Roles)
		require.Len(t, gameMetric.Goals, 2)
		require.Equal(t, game.MaxUtility, gameMetric.Goals[0]+gameMetric.Goals[1])
		require.GreaterOrEqual(t, gameMetric.Turns, 5)
		require.LessOrEqual(t, gameMetric.Turns, 9)
		require.Len(t, moveMetrics, 2*gameMetric.Turns)
		require.NotEmpty(t, gameMetric.Winners())

		// Moves are recorded in role order and the first mover marks the board
		require.Equal(t, 1, moveMetrics[0].Step)
		require.Equal(t, tictactoe.X, moveMetrics[0].Role)
		require.NotEqual(t, game.NoOp, moveMetrics[0].Move)
		require.Equal(t, game.NoOp, moveMetrics[1].Move)
	})

	t.Run("searchers play a full match", func(t *testing.T) {
		m := tictactoe.New(3)
		e, err := NewLocal(m, []agent.Agent{
			agent.NewEvaluationAgent(tictactoe.X, searcher.NewMCTS(m, searcher.WithSeed(1), searcher.WithMetrics())),
			agent.NewEvaluationAgent(tictactoe.O, searcher.NewMonteCarlo(m, searcher.WithSeed(2), searcher.WithMetrics())),
		}, quartz.NewReal(), 10*time.Millisecond, 0)
		require.NoError(t, err)

		gameMetric, moveMetrics, err := e.Run(context.Background(), m.Initial())
		require.NoError(t, err)
		require.True(t, gameMetric.Finished)
		for _, mm := range moveMetrics {
			require.NotEmpty(t, mm.Strategy)
		}
	})

	t.Run("illegal moves fall back to the first legal move", func(t *testing.T) {
		m := tictactoe.New(1)
		e, err := NewLocal(m, []agent.Agent{
			scriptedAgent{role: tictactoe.X, move: "(resign)"},
			agent.NewRandomAgent(tictactoe.O, m, 2),
		}, quartz.NewMock(t), time.Second, 1)
		require.NoError(t, err)

		gameMetric, moveMetrics, err := e.Run(context.Background(), m.Initial())
		require.NoError(t, err)
		require.False(t, gameMetric.Finished, "stopped by the turn limit")
		require.Equal(t, 1, gameMetric.Turns)
		require.Nil(t, gameMetric.Goals)
		require.Equal(t, tictactoe.Mark(1, 1), moveMetrics[0].Move)
	})

	t.Run("agent failures stop the match", func(t *testing.T) {
		m := tictactoe.New(1)
		failure := errors.New("lost connection")
		e, err := NewLocal(m, []agent.Agent{
			scriptedAgent{role: tictactoe.X, err: failure},
			agent.NewRandomAgent(tictactoe.O, m, 2),
		}, quartz.NewMock(t), time.Second, 0)
		require.NoError(t, err)

		_, _, err = e.Run(context.Background(), m.Initial())
		require.ErrorIs(t, err, failure)
	})

	t.Run("cancelled context", func(t *testing.T) {
		m := tictactoe.New(1)
		e, err := NewLocal(m, []agent.Agent{
			agent.NewRandomAgent(tictactoe.X, m, 1),
			agent.NewRandomAgent(tictactoe.O, m, 2),
		}, quartz.NewMock(t), time.Second, 0)
		require.NoError(t, err)

		ctx, cancel := context.WithCancel(context.Background())
		cancel()
		gameMetric, _, err := e.Run(ctx, m.Initial())
		require.ErrorIs(t, err, context.Canceled)
		require.Zero(t, gameMetric.Turns)
	})
}
