package event

import (
	"bytes"
	"encoding/json"
	"testing"
	"time"

	"ggp/game"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"
)

func TestNotify(t *testing.T) {
	e := SelectedMove{Role: "xplayer", Candidates: []game.Move{"a", "b"}, Selected: "b"}

	t.Run("delivers to every observer in order", func(t *testing.T) {
		var got []string
		Notify([]Observer{
			ObserverFunc(func(e SelectedMove) { got = append(got, "first:"+string(e.Selected)) }),
			ObserverFunc(func(e SelectedMove) { got = append(got, "second:"+string(e.Selected)) }),
		}, e)
		require.Equal(t, []string{"first:b", "second:b"}, got)
	})

	t.Run("a panicking observer does not stop the others", func(t *testing.T) {
		delivered := false
		require.NotPanics(t, func() {
			Notify([]Observer{
				ObserverFunc(func(SelectedMove) { panic("boom") }),
				ObserverFunc(func(SelectedMove) { delivered = true }),
			}, e)
		})
		require.True(t, delivered)
	})

	t.Run("no observers", func(t *testing.T) {
		require.NotPanics(t, func() { Notify(nil, e) })
	})
}

func TestLogObserver(t *testing.T) {
	var buf bytes.Buffer
	observer := LogObserver(zerolog.New(&buf))

	observer.Observe(SelectedMove{
		Role:       "oplayer",
		Candidates: []game.Move{"a", "b", "c"},
		Selected:   "c",
		Elapsed:    250 * time.Millisecond,
	})

	var entry map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	require.Equal(t, "oplayer", entry["role"])
	require.Equal(t, "c", entry["move"])
	require.EqualValues(t, 3, entry["candidates"])
	require.Equal(t, "selected move", entry["message"])
}
