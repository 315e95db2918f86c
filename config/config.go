package config

import (
	"fmt"
	"os"
	"time"

	"github.com/hashicorp/hcl/v2/gohcl"
	"github.com/hashicorp/hcl/v2/hclparse"
)

const (
	StrategyUCT      = "uct"
	StrategyFlat     = "flat"
	StrategyRandom   = "random"
	StrategySampling = "sampling"
)

// Config represents a match file
type Config struct {
	Log    *LogSettings   `hcl:"log,block"`
	Match  *MatchSettings `hcl:"match,block"`
	Gamers []Gamer        `hcl:"gamer,block"`
}

type LogSettings struct {
	Level  string `hcl:"level,optional"`
	Format string `hcl:"format,optional"` // console or json
}

// MatchSettings controls how the host runs games
type MatchSettings struct {
	Game      string `hcl:"game,optional"`
	PlayClock string `hcl:"play_clock,optional"`
	Margin    string `hcl:"margin,optional"`
	MaxTurns  int    `hcl:"max_turns,optional"`
	Games     int    `hcl:"games,optional"`
	Parallel  int    `hcl:"parallel,optional"`
	Seed      int64  `hcl:"seed,optional"`
}

// Gamer configures the agent playing one role
type Gamer struct {
	Role        string  `hcl:"role,label"`
	Strategy    string  `hcl:"strategy,optional"`
	Exploration float64 `hcl:"exploration,optional"`
	Goroutines  int     `hcl:"goroutines,optional"`
	Cutoff      int     `hcl:"cutoff,optional"`
	ReuseDepth  int     `hcl:"reuse_depth,optional"`
	Temperature float64 `hcl:"temperature,optional"`
	Seed        int64   `hcl:"seed,optional"`
}

// Default returns a tic-tac-toe match between a UCT and a flat Monte Carlo gamer
func Default() *Config {
	c := &Config{
		Log: &LogSettings{Level: "info", Format: "console"},
		Gamers: []Gamer{
			{Role: "xplayer", Strategy: StrategyUCT},
			{Role: "oplayer", Strategy: StrategyFlat},
		},
	}
	c.applyDefaults()
	return c
}

// Load reads a match file. A missing file yields the default configuration.
func Load(filename string) (*Config, error) {
	if _, err := os.Stat(filename); os.IsNotExist(err) {
		return Default(), nil
	}
	src, err := os.ReadFile(filename)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}
	return Parse(src, filename)
}

// Parse decodes HCL source and fills in defaults for missing values
func Parse(src []byte, filename string) (*Config, error) {
	parser := hclparse.NewParser()
	file, diags := parser.ParseHCL(src, filename)
	if diags.HasErrors() {
		return nil, fmt.Errorf("failed to parse HCL file: %s", diags.Error())
	}

	var config Config
	diags = gohcl.DecodeBody(file.Body, nil, &config)
	if diags.HasErrors() {
		return nil, fmt.Errorf("failed to decode HCL: %s", diags.Error())
	}

	config.applyDefaults()
	return &config, nil
}

func (c *Config) applyDefaults() {
	if c.Log == nil {
		c.Log = &LogSettings{}
	}
	if c.Log.Level == "" {
		c.Log.Level = "info"
	}
	if c.Log.Format == "" {
		c.Log.Format = "console"
	}

	if c.Match == nil {
		c.Match = &MatchSettings{}
	}
	if c.Match.Game == "" {
		c.Match.Game = "tictactoe"
	}
	if c.Match.PlayClock == "" {
		c.Match.PlayClock = "1s"
	}
	if c.Match.Margin == "" {
		c.Match.Margin = "50ms"
	}
	if c.Match.MaxTurns == 0 {
		c.Match.MaxTurns = 500
	}
	if c.Match.Games == 0 {
		c.Match.Games = 1
	}
	if c.Match.Parallel == 0 {
		c.Match.Parallel = 1
	}

	for i := range c.Gamers {
		g := &c.Gamers[i]
		if g.Strategy == "" {
			g.Strategy = StrategyUCT
		}
		if g.Goroutines == 0 {
			g.Goroutines = 1
		}
		if g.ReuseDepth == 0 {
			g.ReuseDepth = 2
		}
		if g.Temperature == 0 {
			g.Temperature = 1
		}
	}
}

// Validate validates the configuration
func (c *Config) Validate() error {
	switch c.Log.Format {
	case "console", "json":
	default:
		return fmt.Errorf("invalid log format: %s", c.Log.Format)
	}
	switch c.Log.Level {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("invalid log level: %s", c.Log.Level)
	}

	playClock, err := c.PlayClock()
	if err != nil {
		return err
	}
	if playClock <= 0 {
		return fmt.Errorf("play clock must be positive")
	}
	margin, err := c.Margin()
	if err != nil {
		return err
	}
	if margin < 0 || margin >= playClock {
		return fmt.Errorf("margin %s must be non-negative and shorter than the play clock %s", margin, playClock)
	}
	if c.Match.MaxTurns < 1 {
		return fmt.Errorf("max turns must be positive")
	}
	if c.Match.Games < 1 {
		return fmt.Errorf("games must be positive")
	}
	if c.Match.Parallel < 1 {
		return fmt.Errorf("parallel must be positive")
	}

	if len(c.Gamers) == 0 {
		return fmt.Errorf("at least one gamer must be configured")
	}
	seen := make(map[string]bool, len(c.Gamers))
	for _, g := range c.Gamers {
		if seen[g.Role] {
			return fmt.Errorf("gamer %s: configured twice", g.Role)
		}
		seen[g.Role] = true

		switch g.Strategy {
		case StrategyUCT, StrategyFlat, StrategyRandom, StrategySampling:
		default:
			return fmt.Errorf("gamer %s: invalid strategy %s", g.Role, g.Strategy)
		}
		if g.Exploration < 0 {
			return fmt.Errorf("gamer %s: exploration must not be negative", g.Role)
		}
		if g.Goroutines < 1 {
			return fmt.Errorf("gamer %s: goroutines must be positive", g.Role)
		}
		if g.Cutoff < 0 {
			return fmt.Errorf("gamer %s: cutoff must not be negative", g.Role)
		}
		if g.ReuseDepth < 0 {
			return fmt.Errorf("gamer %s: reuse depth must not be negative", g.Role)
		}
		if g.Temperature <= 0 {
			return fmt.Errorf("gamer %s: temperature must be positive", g.Role)
		}
	}
	return nil
}

func (c *Config) PlayClock() (time.Duration, error) {
	d, err := time.ParseDuration(c.Match.PlayClock)
	if err != nil {
		return 0, fmt.Errorf("invalid play clock %q: %w", c.Match.PlayClock, err)
	}
	return d, nil
}

func (c *Config) Margin() (time.Duration, error) {
	d, err := time.ParseDuration(c.Match.Margin)
	if err != nil {
		return 0, fmt.Errorf("invalid margin %q: %w", c.Match.Margin, err)
	}
	return d, nil
}

// GamerFor returns the gamer configured for role, or nil
func (c *Config) GamerFor(role string) *Gamer {
	for i := range c.Gamers {
		if c.Gamers[i].Role == role {
			return &c.Gamers[i]
		}
	}
	return nil
}
