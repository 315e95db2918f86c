// Package event carries the notification a searcher emits after every move selection.
package event

import (
	"time"

	"ggp/game"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// SelectedMove is emitted once per decision, after the move is chosen
type SelectedMove struct {
	Role       game.Role
	Candidates []game.Move
	Selected   game.Move
	Elapsed    time.Duration
}

type Observer interface {
	Observe(SelectedMove)
}

type ObserverFunc func(SelectedMove)

func (f ObserverFunc) Observe(e SelectedMove) {
	f(e)
}

// Notify delivers e to every observer. A panicking observer is logged and skipped.
func Notify(observers []Observer, e SelectedMove) {
	for _, observer := range observers {
		notify(observer, e)
	}
}

func notify(observer Observer, e SelectedMove) {
	defer func() {
		if r := recover(); r != nil {
			log.Warn().Msgf("observer panicked on selected move %s: %v", e.Selected, r)
		}
	}()
	observer.Observe(e)
}

// LogObserver logs every decision at info level
func LogObserver(logger zerolog.Logger) Observer {
	return ObserverFunc(func(e SelectedMove) {
		logger.Info().
			Str("role", string(e.Role)).
			Str("move", string(e.Selected)).
			Int("candidates", len(e.Candidates)).
			Dur("elapsed", e.Elapsed).
			Msg("selected move")
	})
}
