package searcher

import (
	"errors"
	"hash/fnv"
	"sync/atomic"
	"testing"
	"time"

	"ggp/game"

	"github.com/coder/quartz"
	"golang.org/x/exp/rand"
)

var errMockFailure = errors.New("mock failure")

type mockState struct {
	path string
}

func (s mockState) Hash() game.StateHash {
	hasher := fnv.New64a()
	hasher.Write([]byte(s.path))
	return game.StateHash(hasher.Sum64())
}

func (s mockState) then(joint game.JointMove) mockState {
	return mockState{path: s.path + "/" + joint.Key()}
}

// mockMachine is a game tree spelled out by path. A path without legal moves is terminal.
type mockMachine struct {
	roles    []game.Role
	legal    map[string][][]game.Move // Per role
	goals    map[string][]int         // Missing terminal paths score 0 for everyone
	panicOn  game.Move
	failOn   game.Move
	rng      *rand.Rand
	advances atomic.Int32
	queries  atomic.Int32
}

func newMockMachine(roles []game.Role, legal map[string][][]game.Move, goals map[string][]int) *mockMachine {
	src := &rand.LockedSource{}
	src.Seed(1)
	return &mockMachine{
		roles: roles,
		legal: legal,
		goals: goals,
		rng:   rand.New(src),
	}
}

// onePly is a single role game ending after the first move
func onePly(goals map[game.Move]int, moves ...game.Move) *mockMachine {
	byPath := make(map[string][]int, len(goals))
	for move, goal := range goals {
		byPath["/"+string(move)] = []int{goal}
	}
	return newMockMachine(
		[]game.Role{"robot"},
		map[string][][]game.Move{"": {moves}},
		byPath,
	)
}

func (m *mockMachine) Roles() []game.Role {
	return m.roles
}

func (m *mockMachine) LegalMoves(state game.State, role game.Role) ([]game.Move, error) {
	m.queries.Add(1)
	i := game.RoleIndex(m.roles, role)
	if i < 0 {
		return nil, game.Violation("legal moves", role, game.ErrUnknownRole)
	}
	legal, ok := m.legal[state.(mockState).path]
	if !ok {
		return nil, game.Violation("legal moves", role, game.ErrTerminalTransition)
	}
	return legal[i], nil
}

func (m *mockMachine) LegalJointMoves(state game.State) ([]game.JointMove, error) {
	return game.LegalJointMoves(m, state)
}

func (m *mockMachine) NextState(state game.State, move game.JointMove) (game.State, error) {
	m.advances.Add(1)
	for _, part := range move {
		if m.panicOn != "" && part == m.panicOn {
			panic("corrupted state")
		}
		if m.failOn != "" && part == m.failOn {
			return nil, errMockFailure
		}
	}
	if m.IsTerminal(state) {
		return nil, game.Violation("next state", "", game.ErrTerminalTransition)
	}
	return state.(mockState).then(move), nil
}

func (m *mockMachine) IsTerminal(state game.State) bool {
	_, ok := m.legal[state.(mockState).path]
	return !ok
}

func (m *mockMachine) Utility(state game.State, role game.Role) (int, error) {
	if !m.IsTerminal(state) {
		return 0, game.Violation("goal", role, game.ErrNonTerminalGoal)
	}
	goals, ok := m.goals[state.(mockState).path]
	if !ok {
		return 0, nil
	}
	return goals[game.RoleIndex(m.roles, role)], nil
}

func (m *mockMachine) RandomJointMove(state game.State) (game.JointMove, error) {
	return game.RandomJointMove(m, state, m.rng)
}

// tickingClock moves a mock clock forward every time it is read, so a search loop polling
// the clock reaches its deadline after a fixed number of iterations.
type tickingClock struct {
	*quartz.Mock
	tick time.Duration
}

func newTickingClock(t *testing.T, tick time.Duration) *tickingClock {
	return &tickingClock{Mock: quartz.NewMock(t), tick: tick}
}

func (c *tickingClock) Now(tags ...string) time.Time {
	c.Mock.Advance(c.tick)
	return c.Mock.Now(tags...)
}

func (c *tickingClock) Since(t time.Time, tags ...string) time.Duration {
	return c.Mock.Now(tags...).Sub(t)
}

// deadline is d after the current mock time, without ticking
func (c *tickingClock) deadline(d time.Duration) time.Time {
	return c.Mock.Now().Add(d)
}
