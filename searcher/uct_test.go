package searcher

import (
	"math"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestNewUCT(t *testing.T) {
	t.Run("panics with zero parent visits", func(t *testing.T) {
		require.Panics(t, func() {
			newUCT(DefaultExploration, 0)
		}, "Should panic when N is 0")
	})
}

func TestUCTEvaluate(t *testing.T) {
	t.Run("computing UCT value", func(t *testing.T) {
		policy := newUCT(2.0, 100)
		got := policy.evaluate(0.5, 10)

		expected := 0.5 + 2.0*math.Sqrt(2*math.Log(100)/10.0)
		require.InDelta(t, expected, got, 0.0001,
			"Should compute q + c*sqrt(2*ln(N)/n)")
	})

	t.Run("panics with zero child visits", func(t *testing.T) {
		policy := newUCT(2.0, 100)

		require.Panics(t, func() {
			policy.evaluate(0.5, 0)
		}, "Should panic when n is 0")
	})

	t.Run("no exploration without an exploration constant", func(t *testing.T) {
		policy := newUCT(0, 100)
		require.Equal(t, 0.75, policy.evaluate(0.75, 3))
	})

	t.Run("exploration term increases with parent visits", func(t *testing.T) {
		// More parent visits -> higher exploration
		policy1 := newUCT(DefaultExploration, 100)
		policy2 := newUCT(DefaultExploration, 1000)

		score1 := policy1.evaluate(0.5, 10)
		score2 := policy2.evaluate(0.5, 10)

		require.Greater(t, score2, score1,
			"More parent visits should increase exploration term")
	})

	t.Run("exploration term decreases with child visits", func(t *testing.T) {
		// More child visits -> lower exploration
		policy := newUCT(DefaultExploration, 100)

		score1 := policy.evaluate(0.5, 10)
		score2 := policy.evaluate(0.5, 20)

		require.Greater(t, score1, score2,
			"More child visits should decrease exploration term")
	})

	t.Run("exploitation term increases with average utility", func(t *testing.T) {
		policy := newUCT(DefaultExploration, 100)

		score1 := policy.evaluate(0.25, 10)
		score2 := policy.evaluate(0.5, 10)

		require.Greater(t, score2, score1,
			"A better average should increase exploitation term")
	})
}
