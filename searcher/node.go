package searcher

import (
	"fmt"
	"sync"

	"ggp/game"
)

// entry is the edge from a node to the child reached by one joint move
type entry struct {
	move     game.JointMove
	slot     []int // slot[r] is the index of move[r] in the parent's moves[r]
	child    *node
	visits   int
	inflight int       // Simulations currently running through this entry
	rewards  []float64 // Sum of utilities per role
}

func (e *entry) average(role int) float64 {
	if e.visits == 0 {
		return 0
	}
	return e.rewards[role] / float64(e.visits)
}

// node is a game state in the search tree. It exclusively owns its children.
// Once expanded, visits equals the sum of its entries' visits.
type node struct {
	sync.Mutex
	state    game.State
	hash     game.StateHash
	visits   int
	entries  []*entry // Ordered like Machine.LegalJointMoves
	index    map[string]*entry
	moves    [][]game.Move // Distinct legal moves per role, in enumeration order
	expanded bool
	terminal bool
	utility  []float64 // Cached when terminal
}

// moveStat aggregates every entry sharing one role's move
type moveStat struct {
	move    game.Move
	visits  int
	rewards float64
}

func (s moveStat) average() float64 {
	if s.visits == 0 {
		return 0
	}
	return s.rewards / float64(s.visits)
}

func newNode(state game.State) *node {
	return &node{
		state: state,
		hash:  state.Hash(),
	}
}

// expand materializes one child per legal joint move. A terminal state is marked as such and
// never expanded. Expanding an expanded node is a no-op.
func (n *node) expand(m game.Machine) error {
	n.Lock()
	defer n.Unlock()

	if n.expanded || n.terminal {
		return nil
	}
	if terminal, err := n.settle(m); terminal || err != nil {
		return err
	}

	joints, err := m.LegalJointMoves(n.state)
	if err != nil {
		return err
	}
	if len(joints) == 0 {
		return game.Violation("legal joint moves", "", game.ErrNoLegalMoves)
	}

	roles := len(m.Roles())
	entries := make([]*entry, 0, len(joints))
	index := make(map[string]*entry, len(joints))
	moves := make([][]game.Move, roles)
	for _, joint := range joints {
		if len(joint) != roles {
			return game.Violation("legal joint moves", "", fmt.Errorf("%w: %v", game.ErrIllegalMove, joint))
		}
		key := joint.Key()
		if _, ok := index[key]; ok {
			continue
		}
		next, err := m.NextState(n.state, joint)
		if err != nil {
			return err
		}

		slot := make([]int, roles)
		for r, move := range joint {
			k := indexOf(moves[r], move)
			if k < 0 {
				moves[r] = append(moves[r], move)
				k = len(moves[r]) - 1
			}
			slot[r] = k
		}

		e := &entry{
			move:    joint,
			slot:    slot,
			child:   newNode(next),
			rewards: make([]float64, roles),
		}
		entries = append(entries, e)
		index[key] = e
	}

	n.entries = entries
	n.index = index
	n.moves = moves
	n.expanded = true
	return nil
}

// outcome returns the cached utility of a terminal node, checking the state on first use
func (n *node) outcome(m game.Machine) ([]float64, bool, error) {
	n.Lock()
	defer n.Unlock()

	if n.terminal {
		return n.utility, true, nil
	}
	if n.expanded {
		return nil, false, nil
	}
	terminal, err := n.settle(m)
	return n.utility, terminal, err
}

// settle marks the node terminal when the game is over at its state. Callers hold the lock.
func (n *node) settle(m game.Machine) (bool, error) {
	if !m.IsTerminal(n.state) {
		return false, nil
	}
	utility, err := game.Utilities(m, n.state)
	if err != nil {
		return false, err
	}
	if err := checkUtility(utility, len(m.Roles())); err != nil {
		return false, err
	}
	n.terminal = true
	n.utility = utility
	return true, nil
}

// selectEntry picks the entry to descend through and reserves it until update.
// An unvisited entry always wins, in enumeration order (fresh is then true). Otherwise every
// role picks its own move by UCT over its per-move statistics, and the joint entry is the
// tuple of those choices.
func (n *node) selectEntry(c float64) (e *entry, fresh bool) {
	n.Lock()
	defer n.Unlock()

	if e := n.unvisited(); e != nil {
		e.inflight++
		return e, true
	}
	e = n.decoupled(c)
	e.inflight++
	return e, false
}

// unvisited prefers entries no other worker is simulating
func (n *node) unvisited() *entry {
	var pending *entry
	for _, e := range n.entries {
		if e.visits > 0 {
			continue
		}
		if e.inflight == 0 {
			return e
		}
		if pending == nil {
			pending = e
		}
	}
	return pending
}

func (n *node) decoupled(c float64) *entry {
	policy := newUCT(c, float64(n.visits))
	stats := n.roleStats()

	scores := make([][]float64, len(stats))
	choice := make(game.JointMove, len(stats))
	for r, moves := range stats {
		scores[r] = make([]float64, len(moves))
		best := 0
		for k, s := range moves {
			scores[r][k] = policy.evaluate(s.average()/game.MaxUtility, float64(s.visits))
			if scores[r][k] > scores[r][best] {
				best = k
			}
		}
		choice[r] = moves[best].move
	}
	if e, ok := n.index[choice.Key()]; ok {
		return e
	}

	// Joint moves are not a full cross product: take the entry whose moves score best overall
	var best *entry
	bestScore := 0.0
	for _, e := range n.entries {
		score := 0.0
		for r, k := range e.slot {
			score += scores[r][k]
		}
		if best == nil || score > bestScore {
			best = e
			bestScore = score
		}
	}
	return best
}

// roleStats aggregates the entries per role and move. Callers hold the lock.
func (n *node) roleStats() [][]moveStat {
	stats := make([][]moveStat, len(n.moves))
	for r, moves := range n.moves {
		stats[r] = make([]moveStat, len(moves))
		for k, move := range moves {
			stats[r][k].move = move
		}
	}
	for _, e := range n.entries {
		for r, k := range e.slot {
			stats[r][k].visits += e.visits
			stats[r][k].rewards += e.rewards[r]
		}
	}
	return stats
}

// update records one finished simulation through e and releases its reservation
func (n *node) update(e *entry, utility []float64) {
	n.Lock()
	defer n.Unlock()

	e.inflight--
	e.visits++
	for r, u := range utility {
		e.rewards[r] += u
	}
	n.visits++
}

// policy returns the role's per-move statistics, nil before expansion
func (n *node) policy(role int) []moveStat {
	n.Lock()
	defer n.Unlock()

	if !n.expanded || role < 0 || role >= len(n.moves) {
		return nil
	}
	return n.roleStats()[role]
}

func (n *node) children() []*node {
	n.Lock()
	defer n.Unlock()

	children := make([]*node, len(n.entries))
	for i, e := range n.entries {
		children[i] = e.child
	}
	return children
}

func (n *node) child(move game.JointMove) *node {
	n.Lock()
	defer n.Unlock()

	if e, ok := n.index[move.Key()]; ok {
		return e.child
	}
	return nil
}

func (n *node) Visits() int {
	n.Lock()
	defer n.Unlock()

	return n.visits
}

func indexOf(moves []game.Move, move game.Move) int {
	for i, m := range moves {
		if m == move {
			return i
		}
	}
	return -1
}
