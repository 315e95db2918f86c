package metrics

import (
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"
)

// AgentConfig describes one agent taking part in an experiment
type AgentConfig struct {
	ID          int
	Role        string
	Strategy    string
	Goroutines  int
	Cutoff      int
	Exploration float64
	ReuseDepth  int
	PlayClock   time.Duration
}

type GameRecord struct {
	ID      string
	MatchUp int
	Agents  []int // AgentConfig.ID per role
	GameMetric
}

type MoveRecord struct {
	Game  string // GameRecord.ID
	Agent int    // AgentConfig.ID
	MoveMetric
}

type Writer struct {
	baseDir string
}

// NewWriter creates a subfolder of dir named by experiment and current timestamp
func NewWriter(dir, name string) (*Writer, error) {
	timestamp := time.Now().UTC().Format("20060102T150405Z")
	baseDir := filepath.Join(dir, name, timestamp)
	err := os.MkdirAll(baseDir, 0755)
	if err != nil {
		return nil, fmt.Errorf("failed to create directory: %w", err)
	}

	return &Writer{
		baseDir: baseDir,
	}, nil
}

func (w *Writer) Dir() string {
	return w.baseDir
}

func (w *Writer) WriteAgentConfigs(configs []AgentConfig) error {
	header := []string{"id", "role", "strategy", "goroutines", "cutoff", "exploration", "reuse_depth", "play_clock"}
	rows := make([][]string, 0, len(configs))
	for _, config := range configs {
		rows = append(rows, []string{
			strconv.Itoa(config.ID),
			config.Role,
			config.Strategy,
			strconv.Itoa(config.Goroutines),
			strconv.Itoa(config.Cutoff),
			strconv.FormatFloat(config.Exploration, 'f', -1, 64),
			strconv.Itoa(config.ReuseDepth),
			config.PlayClock.String(),
		})
	}
	return w.write("agent_configs.csv", header, rows)
}

func (w *Writer) WriteGameRecords(records []GameRecord) error {
	header := []string{"id", "matchup", "agents", "roles", "goals", "winners", "finished", "turns", "start_time", "end_time", "duration"}
	rows := make([][]string, 0, len(records))
	for _, record := range records {
		roles := make([]string, len(record.Roles))
		for i, role := range record.Roles {
			roles[i] = string(role)
		}
		winners := make([]string, 0, len(roles))
		for _, role := range record.Winners() {
			winners = append(winners, string(role))
		}
		rows = append(rows, []string{
			record.ID,
			strconv.Itoa(record.MatchUp),
			joinInts(record.Agents),
			strings.Join(roles, ";"),
			joinInts(record.Goals),
			strings.Join(winners, ";"),
			strconv.FormatBool(record.Finished),
			strconv.Itoa(record.Turns),
			record.StartTime.Format(time.RFC3339),
			record.EndTime.Format(time.RFC3339),
			record.Duration.String(),
		})
	}
	return w.write("game_records.csv", header, rows)
}

func (w *Writer) WriteMoveRecords(records []MoveRecord) error {
	header := []string{"game", "agent", "step", "role", "move", "strategy", "goroutines", "duration", "episodes", "full_playouts", "failed_samples", "is_tree_reset"}
	rows := make([][]string, 0, len(records))
	for _, record := range records {
		rows = append(rows, []string{
			record.Game,
			strconv.Itoa(record.Agent),
			strconv.Itoa(record.Step),
			string(record.Role),
			string(record.Move),
			record.Strategy,
			strconv.Itoa(record.Goroutines),
			record.Duration.String(),
			strconv.Itoa(record.Episodes),
			strconv.Itoa(record.FullPlayouts),
			strconv.Itoa(record.FailedSamples),
			strconv.FormatBool(record.IsTreeReset),
		})
	}
	return w.write("move_records.csv", header, rows)
}

func (w *Writer) write(name string, header []string, rows [][]string) error {
	path := filepath.Join(w.baseDir, name)
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", name, err)
	}
	defer f.Close()

	writer := csv.NewWriter(f)
	if err := writer.Write(header); err != nil {
		return fmt.Errorf("failed to write %s header: %w", name, err)
	}
	if err := writer.WriteAll(rows); err != nil {
		return fmt.Errorf("failed to write %s rows: %w", name, err)
	}
	return nil
}

func joinInts(values []int) string {
	parts := make([]string, len(values))
	for i, v := range values {
		parts[i] = strconv.Itoa(v)
	}
	return strings.Join(parts, ";")
}
