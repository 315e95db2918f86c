package searcher

import (
	"math"
	"testing"

	"ggp/game"

	"github.com/stretchr/testify/require"
)

// chain is a single role game of n forced moves ending with goal
func chain(n int, goal int) *mockMachine {
	legal := map[string][][]game.Move{}
	path := ""
	for i := 0; i < n; i++ {
		legal[path] = [][]game.Move{{"step"}}
		path += "/step"
	}
	return newMockMachine([]game.Role{"robot"}, legal, map[string][]int{path: {goal}})
}

func TestPlayout(t *testing.T) {
	t.Run("plays until the game is over", func(t *testing.T) {
		m := chain(5, 70)

		outcome, err := Playout(m, mockState{}, MaxCutoff, nil)
		require.NoError(t, err)
		require.Equal(t, []float64{70}, outcome.Utility)
		require.Equal(t, 5, outcome.Depth)
		require.False(t, outcome.Cutoff)
	})

	t.Run("terminal state needs no moves", func(t *testing.T) {
		m := chain(0, 30)

		outcome, err := Playout(m, mockState{}, MaxCutoff, nil)
		require.NoError(t, err)
		require.Equal(t, []float64{30}, outcome.Utility)
		require.Zero(t, outcome.Depth)
	})

	t.Run("cutoff without an evaluation function fails", func(t *testing.T) {
		m := chain(5, 70)

		outcome, err := Playout(m, mockState{}, 2, nil)
		require.ErrorIs(t, err, ErrCutoff)
		require.True(t, outcome.Cutoff)
		require.Equal(t, 2, outcome.Depth)
	})

	t.Run("cutoff scores the state with the evaluation function", func(t *testing.T) {
		m := chain(5, 70)
		evaluate := func(game.Machine, game.State) []float64 { return []float64{40} }

		outcome, err := Playout(m, mockState{}, 3, evaluate)
		require.NoError(t, err)
		require.True(t, outcome.Cutoff)
		require.Equal(t, []float64{40}, outcome.Utility)
		require.Equal(t, 3, outcome.Depth)
	})

	t.Run("evaluation out of range is rejected", func(t *testing.T) {
		m := chain(5, 70)
		evaluate := func(game.Machine, game.State) []float64 { return []float64{math.NaN()} }

		_, err := Playout(m, mockState{}, 1, evaluate)
		require.ErrorIs(t, err, ErrUtilityRange)
	})

	t.Run("goal out of range is rejected", func(t *testing.T) {
		m := chain(1, 101)

		_, err := Playout(m, mockState{}, MaxCutoff, nil)
		require.ErrorIs(t, err, ErrUtilityRange)
	})

	t.Run("machine errors are returned", func(t *testing.T) {
		m := chain(3, 70)
		m.failOn = "step"

		_, err := Playout(m, mockState{}, MaxCutoff, nil)
		require.ErrorIs(t, err, errMockFailure)
	})
}

func TestSample(t *testing.T) {
	t.Run("recovers panics", func(t *testing.T) {
		utility, err := sample(func() ([]float64, error) {
			panic("boom")
		})
		require.ErrorIs(t, err, ErrSamplePanic)
		require.Nil(t, utility)
	})

	t.Run("discarded samples count as zero for every role", func(t *testing.T) {
		s := newSettings([]Option{WithMetrics()})
		collector := s.newCollector()

		utility := discard(errMockFailure, 3, collector)
		require.Equal(t, []float64{0, 0, 0}, utility)
		require.Equal(t, 1, collector.Complete().FailedSamples)
	})
}
