package searcher

import (
	"sync"
	"time"

	"ggp/event"
	"ggp/experiments/metrics"
	"ggp/game"

	"github.com/rs/zerolog/log"
)

// MCTS searches a tree of joint moves with UCT. Every role picks its own component of the
// joint move, so opponents are modelled as maximising their own utility rather than playing
// randomly. The tree is kept between calls and re-anchored at the actual state.
type MCTS struct {
	settings
	mu      sync.Mutex
	machine game.Machine
	roles   []game.Role
	root    *node
}

// step is one (node, entry) pair on the path of a simulation
type step struct {
	node  *node
	entry *entry
}

func NewMCTS(machine game.Machine, options ...Option) *MCTS {
	return &MCTS{
		settings: newSettings(options),
		machine:  machine,
		roles:    machine.Roles(),
	}
}

func (m *MCTS) SelectMove(state game.State, role game.Role, deadline time.Time) (game.Move, error) {
	move, _, err := m.Search(state, role, deadline)
	return move, err
}

func (m *MCTS) Search(state game.State, role game.Role, deadline time.Time) (game.Move, metrics.SearchMetric, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	start := m.clock.Now()
	collector := m.newCollector()
	collector.Start(UCTStrategy, m.goroutines, m.cutoff)

	moves, err := rootMoves(m.machine, state, role)
	if err != nil {
		return "", collector.Complete(), err
	}

	m.findRoot(state, collector)
	selection := moves[0]
	finishBy := m.effectiveDeadline(deadline)
	// Only search when there is a choice to make and time to make it
	if len(moves) > 1 && m.clock.Now().Before(finishBy) {
		m.buildTree(finishBy, collector)
		selection = decide(m.root.policy(game.RoleIndex(m.roles, role)), moves)
	}

	metric := collector.Complete()
	log.Debug().
		Str("role", string(role)).
		Str("move", string(selection)).
		Int("episodes", metric.Episodes).
		Int("failed", metric.FailedSamples).
		Msg("uct search complete")
	event.Notify(m.observers, event.SelectedMove{
		Role:       role,
		Candidates: moves,
		Selected:   selection,
		Elapsed:    m.clock.Since(start),
	})
	return selection, metric, nil
}

// Policy returns the visit count of each of the role's moves at the current root
func (m *MCTS) Policy(role game.Role) map[game.Move]float64 {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.root == nil {
		return nil
	}
	stats := m.root.policy(game.RoleIndex(m.roles, role))
	policy := make(map[game.Move]float64, len(stats))
	for _, s := range stats {
		policy[s.move] = float64(s.visits)
	}
	return policy
}

// findRoot re-anchors the tree at state, keeping the statistics gathered under it
func (m *MCTS) findRoot(state game.State, collector metrics.Collector) {
	root := traverse(m.root, state.Hash(), m.reuseDepth)
	if root == nil {
		if m.root != nil {
			log.Debug().Msgf("state %d not found in previous tree, starting a new one", state.Hash())
		}
		m.root = newNode(state)
		collector.SetTreeReset(true)
		return
	}
	m.root = root
	collector.SetTreeReset(false)
}

// traverse searches breadth first, at most depth plies below root, for the node holding hash
func traverse(root *node, hash game.StateHash, depth int) *node {
	if root == nil {
		return nil
	}
	level := []*node{root}
	for d := 0; d <= depth && len(level) > 0; d++ {
		var next []*node
		for _, n := range level {
			if n.hash == hash {
				return n
			}
			next = append(next, n.children()...)
		}
		level = next
	}
	return nil
}

func (m *MCTS) buildTree(finishBy time.Time, collector metrics.Collector) {
	if m.goroutines <= 1 {
		m.countdown(finishBy, collector)
		return
	}

	var wg sync.WaitGroup
	for i := 0; i < m.goroutines; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			m.countdown(finishBy, collector)
		}()
	}
	wg.Wait()
}

// countdown runs whole simulations until the deadline; a started simulation always completes
func (m *MCTS) countdown(finishBy time.Time, collector metrics.Collector) {
	for m.clock.Now().Before(finishBy) {
		m.simulate(collector)
		collector.AddEpisode()
	}
}

func (m *MCTS) simulate(collector metrics.Collector) {
	var path []step
	utility, err := sample(func() ([]float64, error) {
		leaf, err := m.selectThenExpand(&path)
		if err != nil {
			return nil, err
		}
		return m.rollout(leaf, collector)
	})
	if err != nil {
		utility = discard(err, len(m.roles), collector)
	}
	backup(path, utility)
}

// selectThenExpand walks down from the root, expanding the nodes it reaches, until it steps
// into an unvisited child or a terminal node. Every step taken is appended to path.
func (m *MCTS) selectThenExpand(path *[]step) (*node, error) {
	parent := m.root
	for {
		if err := parent.expand(m.machine); err != nil {
			return nil, err
		}
		if _, terminal, _ := parent.outcome(m.machine); terminal {
			return parent, nil
		}

		e, fresh := parent.selectEntry(m.exploration)
		*path = append(*path, step{node: parent, entry: e})
		if fresh {
			return e.child, nil
		}
		parent = e.child
	}
}

func (m *MCTS) rollout(leaf *node, collector metrics.Collector) ([]float64, error) {
	utility, terminal, err := leaf.outcome(m.machine)
	if err != nil {
		return nil, err
	}
	if terminal {
		return utility, nil
	}

	outcome, err := Playout(m.machine, leaf.state, m.cutoff, m.evaluate)
	if err != nil {
		return nil, err
	}
	if !outcome.Cutoff {
		collector.AddFullPlayout()
	}
	return outcome.Utility, nil
}

func backup(path []step, utility []float64) {
	for i := len(path) - 1; i >= 0; i-- {
		path[i].node.update(path[i].entry, utility)
	}
}

// decide picks the move with the best average utility, then the most visits, then the
// earliest legal move. Unvisited moves only win when nothing was visited.
func decide(stats []moveStat, moves []game.Move) game.Move {
	byMove := make(map[game.Move]moveStat, len(stats))
	for _, s := range stats {
		byMove[s.move] = s
	}

	best := moves[0]
	var bestStat moveStat
	for _, move := range moves {
		s, ok := byMove[move]
		if !ok || s.visits == 0 {
			continue
		}
		if bestStat.visits == 0 ||
			s.average() > bestStat.average() ||
			(s.average() == bestStat.average() && s.visits > bestStat.visits) {
			best = move
			bestStat = s
		}
	}
	return best
}
