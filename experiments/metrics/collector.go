package metrics

import (
	"sync/atomic"
	"time"

	"ggp/game"
)

type SearchMetric struct {
	Strategy      string
	Goroutines    int
	Cutoff        int
	Duration      time.Duration
	Episodes      int
	FullPlayouts  int
	FailedSamples int
	IsTreeReset   bool
}

type MoveMetric struct {
	Step int
	Role game.Role
	Move game.Move
	SearchMetric
}

type GameMetric struct {
	Roles     []game.Role
	Goals     []int // Ordered like Roles, empty when the match stopped before a terminal state
	Finished  bool
	StartTime time.Time
	EndTime   time.Time
	Duration  time.Duration
	Turns     int
}

// Winners returns the roles sharing the highest goal
func (g GameMetric) Winners() []game.Role {
	if len(g.Goals) == 0 {
		return nil
	}
	best := g.Goals[0]
	for _, goal := range g.Goals[1:] {
		best = max(best, goal)
	}
	var winners []game.Role
	for i, goal := range g.Goals {
		if goal == best {
			winners = append(winners, g.Roles[i])
		}
	}
	return winners
}

type Collector interface {
	Start(strategy string, goroutines, cutoff int)
	SetTreeReset(value bool)
	AddEpisode()
	AddFullPlayout()
	AddFailedSample()
	Complete() SearchMetric
}

type collector struct {
	strategy      string
	goroutines    int
	cutoff        int
	startTime     time.Time
	episodes      atomic.Int32
	fullPlayouts  atomic.Int32
	failedSamples atomic.Int32
	isTreeReset   atomic.Bool
}

// NewCollector returns a collector for a single search
func NewCollector() Collector {
	return &collector{}
}

func (m *collector) Start(strategy string, goroutines, cutoff int) {
	m.startTime = time.Now()
	m.strategy = strategy
	m.goroutines = goroutines
	m.cutoff = cutoff
}

func (m *collector) SetTreeReset(value bool) {
	m.isTreeReset.Store(value)
}

func (m *collector) AddEpisode() {
	m.episodes.Add(1)
}

func (m *collector) AddFullPlayout() {
	m.fullPlayouts.Add(1)
}

func (m *collector) AddFailedSample() {
	m.failedSamples.Add(1)
}

func (m *collector) Complete() SearchMetric {
	return SearchMetric{
		Strategy:      m.strategy,
		Goroutines:    m.goroutines,
		Cutoff:        m.cutoff,
		Duration:      time.Since(m.startTime),
		Episodes:      int(m.episodes.Load()),
		FullPlayouts:  int(m.fullPlayouts.Load()),
		FailedSamples: int(m.failedSamples.Load()),
		IsTreeReset:   m.isTreeReset.Load(),
	}
}

type dummyCollector struct{}

func NewDummyCollector() Collector {
	return &dummyCollector{}
}

func (m *dummyCollector) Start(strategy string, goroutines, cutoff int) {}
func (m *dummyCollector) SetTreeReset(value bool)                       {}
func (m *dummyCollector) AddEpisode()                                   {}
func (m *dummyCollector) AddFullPlayout()                               {}
func (m *dummyCollector) AddFailedSample()                              {}
func (m *dummyCollector) Complete() SearchMetric                        { return SearchMetric{} }
