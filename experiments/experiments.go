package experiments

import (
	"context"
	"fmt"
	"sync"
	"time"

	"ggp/config"
	"ggp/engine"
	"ggp/experiments/metrics"
	"ggp/game"
	"ggp/games"
	"ggp/searcher"
	"ggp/searcher/agent"

	"github.com/coder/quartz"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"
)

// Experiment plays a number of games for each match up. A match up assigns one gamer per role.
type Experiment struct {
	Name      string
	Game      string
	MatchUps  [][]config.Gamer
	Games     int // Per match up
	Parallel  int
	PlayClock time.Duration
	Margin    time.Duration
	MaxTurns  int
	Seed      int64
	Clock     quartz.Clock
}

type Result struct {
	Configs []metrics.AgentConfig
	Games   []metrics.GameRecord
	Moves   []metrics.MoveRecord
}

// FromConfig pits the configured gamers against each other
func FromConfig(name string, cfg *config.Config) (*Experiment, error) {
	playClock, err := cfg.PlayClock()
	if err != nil {
		return nil, err
	}
	margin, err := cfg.Margin()
	if err != nil {
		return nil, err
	}
	return &Experiment{
		Name:      name,
		Game:      cfg.Match.Game,
		MatchUps:  [][]config.Gamer{cfg.Gamers},
		Games:     cfg.Match.Games,
		Parallel:  cfg.Match.Parallel,
		PlayClock: playClock,
		Margin:    margin,
		MaxTurns:  cfg.Match.MaxTurns,
		Seed:      cfg.Match.Seed,
	}, nil
}

// Parallelization pairs the baseline gamers against copies whose last gamer runs more goroutines
func (e *Experiment) Parallelization(goroutines []int) {
	e.vary(func(g *config.Gamer, i int) { g.Goroutines = goroutines[i] }, len(goroutines))
}

// Cutoff pairs the baseline gamers against copies whose last gamer stops playouts early
func (e *Experiment) Cutoff(depths []int) {
	e.vary(func(g *config.Gamer, i int) { g.Cutoff = depths[i] }, len(depths))
}

func (e *Experiment) vary(change func(g *config.Gamer, i int), n int) {
	if len(e.MatchUps) == 0 {
		return
	}
	baseline := e.MatchUps[0]
	matchUps := make([][]config.Gamer, 0, n)
	for i := 0; i < n; i++ {
		gamers := append([]config.Gamer(nil), baseline...)
		change(&gamers[len(gamers)-1], i)
		matchUps = append(matchUps, gamers)
	}
	e.MatchUps = matchUps
}

// Run plays every game, at most Parallel at a time
func (e *Experiment) Run(ctx context.Context) (*Result, error) {
	if e.Clock == nil {
		e.Clock = quartz.NewReal()
	}
	result := &Result{}
	agentIDs := make([][]int, len(e.MatchUps))
	for mi, gamers := range e.MatchUps {
		for _, g := range gamers {
			id := len(result.Configs) + 1
			agentIDs[mi] = append(agentIDs[mi], id)
			result.Configs = append(result.Configs, metrics.AgentConfig{
				ID:          id,
				Role:        g.Role,
				Strategy:    g.Strategy,
				Goroutines:  g.Goroutines,
				Cutoff:      g.Cutoff,
				Exploration: g.Exploration,
				ReuseDepth:  g.ReuseDepth,
				PlayClock:   e.PlayClock,
			})
		}
	}

	log.Info().Msgf("starting %s experiment...", e.Name)

	var mu sync.Mutex
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(max(e.Parallel, 1))
	for mi, gamers := range e.MatchUps {
		for i := 0; i < e.Games; i++ {
			g.Go(func() error {
				id := uuid.NewString()
				log.Info().Msgf("starting matchup %d of %d game %d of %d...", mi+1, len(e.MatchUps), i+1, e.Games)

				seed := e.Seed + int64(mi*e.Games+i)
				gameMetric, moveMetrics, err := e.runGame(ctx, gamers, seed)
				if err != nil {
					return fmt.Errorf("matchup %d game %d: %w", mi+1, i+1, err)
				}

				mu.Lock()
				defer mu.Unlock()
				agents := make([]int, len(gameMetric.Roles))
				for ri, role := range gameMetric.Roles {
					agents[ri] = agentFor(gamers, agentIDs[mi], role)
				}
				result.Games = append(result.Games, metrics.GameRecord{
					ID:         id,
					MatchUp:    mi + 1,
					Agents:     agents,
					GameMetric: gameMetric,
				})
				for _, mm := range moveMetrics {
					result.Moves = append(result.Moves, metrics.MoveRecord{
						Game:       id,
						Agent:      agentFor(gamers, agentIDs[mi], mm.Role),
						MoveMetric: mm,
					})
				}
				log.Info().Msgf("completed matchup %d of %d game %d with winners: %v", mi+1, len(e.MatchUps), i+1, gameMetric.Winners())
				return nil
			})
		}
	}
	if err := g.Wait(); err != nil {
		return result, err
	}

	log.Info().Msgf("completed %s experiment", e.Name)
	return result, nil
}

func agentFor(gamers []config.Gamer, ids []int, role game.Role) int {
	for i, g := range gamers {
		if game.Role(g.Role) == role {
			return ids[i]
		}
	}
	return 0
}

// runGame executes a single game between the gamers of a match up
func (e *Experiment) runGame(ctx context.Context, gamers []config.Gamer, seed int64) (metrics.GameMetric, []metrics.MoveMetric, error) {
	instance, err := games.Lookup(e.Game, uint64(seed))
	if err != nil {
		return metrics.GameMetric{}, nil, err
	}

	agents := make([]agent.Agent, 0, len(gamers))
	for ri, gamer := range gamers {
		// Give every game its own random stream unless the gamer pins one
		if gamer.Seed == 0 {
			gamer.Seed = seed*int64(len(gamers)) + int64(ri) + 1
		}
		a, err := agent.Build(instance.Machine, gamer,
			searcher.WithClock(e.Clock),
			searcher.WithSafetyMargin(e.Margin),
			searcher.WithEvaluationFn(instance.Evaluate),
		)
		if err != nil {
			return metrics.GameMetric{}, nil, err
		}
		agents = append(agents, a)
	}

	local, err := engine.NewLocal(instance.Machine, agents, e.Clock, e.PlayClock, e.MaxTurns)
	if err != nil {
		return metrics.GameMetric{}, nil, err
	}
	return local.Run(ctx, instance.Initial)
}

// Write stores the experiment metadata and results under dir
func Write(dir, name string, result *Result) (string, error) {
	writer, err := metrics.NewWriter(dir, name)
	if err != nil {
		return "", fmt.Errorf("failed to create experiment writer: %w", err)
	}

	if err := writer.WriteAgentConfigs(result.Configs); err != nil {
		return "", fmt.Errorf("failed to store agent configs: %w", err)
	}
	log.Info().Msg("stored agent configs")

	if err := writer.WriteGameRecords(result.Games); err != nil {
		return "", fmt.Errorf("failed to write game records: %w", err)
	}
	log.Info().Msg("stored game records")

	if err := writer.WriteMoveRecords(result.Moves); err != nil {
		return "", fmt.Errorf("failed to write move records: %w", err)
	}
	log.Info().Msg("stored move records")
	return writer.Dir(), nil
}
