package games

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestLookup(t *testing.T) {
	g, err := Lookup("tictactoe", 1)
	require.NoError(t, err)
	require.Equal(t, "tictactoe", g.Name)
	require.NotNil(t, g.Evaluate)
	require.False(t, g.Machine.IsTerminal(g.Initial))
	require.Len(t, g.Machine.Roles(), 2)

	_, err = Lookup("go", 1)
	require.ErrorContains(t, err, "unknown game")
	require.Equal(t, []string{"tictactoe"}, Names())
}
