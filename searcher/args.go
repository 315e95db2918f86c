package searcher

import (
	"math"
	"time"

	"ggp/event"
	"ggp/experiments/metrics"
	"ggp/game"

	"github.com/coder/quartz"
	"golang.org/x/exp/rand"
)

// Hyperparameters for MCTS

// Exploration constant C in Q + C*sqrt(2*ln(N)/n)
const DefaultExploration = math.Sqrt2

// Playouts run to the end of the game unless a cutoff is set
const MaxCutoff = math.MaxInt

// Plies below the previous root searched for the actual state when re-anchoring the tree
const DefaultReuseDepth = 2

type Option func(s *settings)

type settings struct {
	clock       quartz.Clock
	margin      time.Duration
	cutoff      int
	evaluate    game.Evaluate
	exploration float64
	goroutines  int
	reuseDepth  int
	seed        uint64
	collect     bool
	observers   []event.Observer
}

func defaultSettings() settings {
	return settings{
		clock:       quartz.NewReal(),
		cutoff:      MaxCutoff,
		exploration: DefaultExploration,
		goroutines:  1,
		reuseDepth:  DefaultReuseDepth,
		seed:        uint64(time.Now().UnixNano()),
	}
}

func newSettings(options []Option) settings {
	s := defaultSettings()
	for _, option := range options {
		option(&s)
	}
	return s
}

func WithClock(clock quartz.Clock) Option {
	return func(s *settings) {
		if clock != nil {
			s.clock = clock
		}
	}
}

// WithSafetyMargin stops searching margin before the deadline handed to SelectMove
func WithSafetyMargin(margin time.Duration) Option {
	return func(s *settings) {
		if margin > 0 {
			s.margin = margin
		}
	}
}

func WithCutoff(depth int) Option {
	return func(s *settings) {
		if depth > 0 {
			s.cutoff = depth
		}
	}
}

// WithEvaluationFn scores playouts stopped by the cutoff. Without it they count as failed samples.
func WithEvaluationFn(evaluate game.Evaluate) Option {
	return func(s *settings) {
		if evaluate != nil {
			s.evaluate = evaluate
		}
	}
}

func WithExploration(c float64) Option {
	return func(s *settings) {
		if c >= 0 {
			s.exploration = c
		}
	}
}

// WithGoroutines sets the number of workers building the tree in parallel
func WithGoroutines(goroutines int) Option {
	return func(s *settings) {
		if goroutines > 0 {
			s.goroutines = goroutines
		}
	}
}

func WithReuseDepth(depth int) Option {
	return func(s *settings) {
		if depth >= 0 {
			s.reuseDepth = depth
		}
	}
}

func WithSeed(seed uint64) Option {
	return func(s *settings) {
		s.seed = seed
	}
}

func WithMetrics() Option {
	return func(s *settings) {
		s.collect = true
	}
}

func WithObserver(observer event.Observer) Option {
	return func(s *settings) {
		if observer != nil {
			s.observers = append(s.observers, observer)
		}
	}
}

func (s *settings) newCollector() metrics.Collector {
	if s.collect {
		return metrics.NewCollector()
	}
	return metrics.NewDummyCollector()
}

func (s *settings) newRand() *rand.Rand {
	src := &rand.LockedSource{}
	src.Seed(s.seed)
	return rand.New(src)
}

// effectiveDeadline is the point at which no new iteration is started
func (s *settings) effectiveDeadline(deadline time.Time) time.Time {
	return deadline.Add(-s.margin)
}
