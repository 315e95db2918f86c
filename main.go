package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"ggp/config"
	"ggp/engine"
	"ggp/event"
	"ggp/experiments"
	"ggp/game"
	"ggp/games"
	"ggp/searcher"
	"ggp/searcher/agent"

	"github.com/alecthomas/kong"
	"github.com/coder/quartz"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// version is set by ldflags during build
var version = "dev"

type Globals struct {
	Config string `short:"c" default:"ggp.hcl" help:"Path to HCL match file"`
	Debug  bool   `help:"Enable debug logging (overrides config)"`
	JSON   bool   `name:"json" help:"Log JSON instead of console output (overrides config)"`
}

type CLI struct {
	Globals
	Version    kong.VersionFlag `short:"v" help:"Show version"`
	Play       PlayCmd          `cmd:"" help:"Play one match between the configured gamers"`
	Experiment ExperimentCmd    `cmd:"" help:"Play many matches and write CSV records"`
}

type PlayCmd struct {
	Game      string `help:"Game to play (overrides config)"`
	PlayClock string `help:"Time per move, e.g. 500ms (overrides config)"`
}

type ExperimentCmd struct {
	Name       string `default:"matchup" help:"Experiment name, used for the output folder"`
	Out        string `default:"results" type:"path" help:"Directory receiving the CSV records"`
	Kind       string `default:"config" enum:"config,parallelization,cutoff" help:"Vary the last gamer: config (as configured), parallelization (goroutines) or cutoff (playout depth)"`
	Goroutines []int  `default:"1,2,4,8" help:"Goroutine counts for the parallelization experiment"`
	Cutoffs    []int  `default:"2,4,6" help:"Playout depths for the cutoff experiment"`
	Games      int    `help:"Games per matchup (overrides config)"`
	Parallel   int    `help:"Games played at once (overrides config)"`
}

func main() {
	var cli CLI
	ctx := kong.Parse(&cli,
		kong.Name("ggp"),
		kong.Description("Monte Carlo and UCT players for general games"),
		kong.UsageOnError(),
		kong.ConfigureHelp(kong.HelpOptions{
			Compact: true,
		}),
		kong.Vars{
			"version": version,
		},
	)
	err := ctx.Run(&cli.Globals)
	ctx.FatalIfErrorf(err)
}

// load reads the match file and configures the global logger from it
func (g *Globals) load() (*config.Config, error) {
	cfg, err := config.Load(g.Config)
	if err != nil {
		return nil, err
	}
	if g.Debug {
		cfg.Log.Level = "debug"
	}
	if g.JSON {
		cfg.Log.Format = "json"
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	level, err := zerolog.ParseLevel(cfg.Log.Level)
	if err != nil {
		return nil, err
	}
	if cfg.Log.Format == "json" {
		log.Logger = SetupStructuredLogger(level)
	} else {
		log.Logger = SetupLogger(level)
	}
	return cfg, nil
}

func signalContext() (context.Context, context.CancelFunc) {
	return signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
}

func (c *PlayCmd) Run(globals *Globals) error {
	cfg, err := globals.load()
	if err != nil {
		return err
	}
	if c.Game != "" {
		cfg.Match.Game = c.Game
	}
	if c.PlayClock != "" {
		cfg.Match.PlayClock = c.PlayClock
	}
	playClock, err := cfg.PlayClock()
	if err != nil {
		return err
	}
	margin, err := cfg.Margin()
	if err != nil {
		return err
	}

	instance, err := games.Lookup(cfg.Match.Game, uint64(cfg.Match.Seed))
	if err != nil {
		return err
	}
	clock := quartz.NewReal()
	agents := make([]agent.Agent, 0, len(cfg.Gamers))
	for _, gamer := range cfg.Gamers {
		a, err := agent.Build(instance.Machine, gamer,
			searcher.WithClock(clock),
			searcher.WithSafetyMargin(margin),
			searcher.WithEvaluationFn(instance.Evaluate),
			searcher.WithObserver(event.LogObserver(log.Logger)),
		)
		if err != nil {
			return err
		}
		agents = append(agents, a)
	}

	local, err := engine.NewLocal(instance.Machine, agents, clock, playClock, cfg.Match.MaxTurns)
	if err != nil {
		return err
	}

	ctx, cancel := signalContext()
	defer cancel()

	log.Info().Str("game", instance.Name).Dur("play_clock", playClock).Msg("starting match")
	gameMetric, moveMetrics, err := local.Run(ctx, instance.Initial)
	if err != nil {
		return err
	}

	for _, mm := range moveMetrics {
		fmt.Printf("%3d %-10s %-14s episodes=%d\n", mm.Step, mm.Role, mm.Move, mm.Episodes)
	}
	if !gameMetric.Finished {
		fmt.Printf("no result after %d turns\n", gameMetric.Turns)
		return nil
	}
	results := make([]string, len(gameMetric.Roles))
	for i, role := range gameMetric.Roles {
		results[i] = fmt.Sprintf("%s=%d", role, gameMetric.Goals[i])
	}
	fmt.Printf("game over after %d turns: %s, winners %v\n", gameMetric.Turns, strings.Join(results, " "), roleNames(gameMetric.Winners()))
	return nil
}

func (c *ExperimentCmd) Run(globals *Globals) error {
	cfg, err := globals.load()
	if err != nil {
		return err
	}
	if c.Games > 0 {
		cfg.Match.Games = c.Games
	}
	if c.Parallel > 0 {
		cfg.Match.Parallel = c.Parallel
	}

	exp, err := experiments.FromConfig(c.Name, cfg)
	if err != nil {
		return err
	}
	switch c.Kind {
	case "parallelization":
		exp.Parallelization(c.Goroutines)
	case "cutoff":
		exp.Cutoff(c.Cutoffs)
	}

	ctx, cancel := signalContext()
	defer cancel()

	result, err := exp.Run(ctx)
	if err != nil {
		return err
	}
	dir, err := experiments.Write(c.Out, c.Name, result)
	if err != nil {
		return err
	}
	log.Info().Str("dir", dir).Int("games", len(result.Games)).Msg("experiment written")
	return nil
}

func roleNames(roles []game.Role) []string {
	names := make([]string, len(roles))
	for i, role := range roles {
		names[i] = string(role)
	}
	return names
}
