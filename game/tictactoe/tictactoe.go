// Package tictactoe is a game.Machine for tic-tac-toe written the way general game playing
// describes alternating games: both roles move every turn and the role off turn plays noop.
package tictactoe

import (
	"encoding/binary"
	"fmt"
	"hash/fnv"
	"strings"

	"ggp/game"

	"golang.org/x/exp/rand"
)

const (
	X game.Role = "xplayer"
	O game.Role = "oplayer"
)

const (
	empty byte = '.'
	xMark byte = 'x'
	oMark byte = 'o'
)

var lines = [8][3]int{
	{0, 1, 2}, {3, 4, 5}, {6, 7, 8}, // rows
	{0, 3, 6}, {1, 4, 7}, {2, 5, 8}, // columns
	{0, 4, 8}, {2, 4, 6}, // diagonals
}

// State is an immutable tic-tac-toe position
type State struct {
	board   [9]byte
	control game.Role
}

func (s State) Hash() game.StateHash {
	hasher := fnv.New64a()
	hasher.Write(s.board[:])
	binary.Write(hasher, binary.LittleEndian, s.control == X)
	return game.StateHash(hasher.Sum64())
}

func (s State) Control() game.Role {
	return s.control
}

func (s State) String() string {
	var b strings.Builder
	for row := 0; row < 3; row++ {
		b.Write(s.board[row*3 : row*3+3])
		if row < 2 {
			b.WriteByte('\n')
		}
	}
	return b.String()
}

// Mark returns the move marking the given 1-based cell
func Mark(row, col int) game.Move {
	return game.Move(fmt.Sprintf("(mark %d %d)", row, col))
}

func parseMark(move game.Move) (int, bool) {
	var row, col int
	if _, err := fmt.Sscanf(string(move), "(mark %d %d)", &row, &col); err != nil {
		return 0, false
	}
	if row < 1 || row > 3 || col < 1 || col > 3 {
		return 0, false
	}
	return (row-1)*3 + (col - 1), true
}

type Machine struct {
	rng *rand.Rand
}

func New(seed uint64) *Machine {
	src := &rand.LockedSource{}
	src.Seed(seed)
	return &Machine{rng: rand.New(src)}
}

// Initial returns the empty board with xplayer on turn
func (m *Machine) Initial() State {
	s := State{control: X}
	for i := range s.board {
		s.board[i] = empty
	}
	return s
}

// Parse reads a board of nine cells (x, o or .) row by row, with the given role on turn
func Parse(board string, control game.Role) (State, error) {
	board = strings.Join(strings.Fields(board), "")
	if len(board) != 9 {
		return State{}, fmt.Errorf("board must have 9 cells, got %d", len(board))
	}
	if control != X && control != O {
		return State{}, fmt.Errorf("%w: %s", game.ErrUnknownRole, control)
	}
	s := State{control: control}
	for i := 0; i < 9; i++ {
		switch c := board[i]; c {
		case empty, xMark, oMark:
			s.board[i] = c
		default:
			return State{}, fmt.Errorf("invalid cell %q", c)
		}
	}
	return s, nil
}

func (m *Machine) Roles() []game.Role {
	return []game.Role{X, O}
}

func (m *Machine) LegalMoves(state game.State, role game.Role) ([]game.Move, error) {
	s, err := cast(state)
	if err != nil {
		return nil, game.Violation("legal moves", role, err)
	}
	if role != X && role != O {
		return nil, game.Violation("legal moves", role, game.ErrUnknownRole)
	}
	if s.terminal() {
		return nil, game.Violation("legal moves", role, game.ErrTerminalTransition)
	}
	if role != s.control {
		return []game.Move{game.NoOp}, nil
	}
	moves := make([]game.Move, 0, 9)
	for i, c := range s.board {
		if c == empty {
			moves = append(moves, Mark(i/3+1, i%3+1))
		}
	}
	return moves, nil
}

func (m *Machine) LegalJointMoves(state game.State) ([]game.JointMove, error) {
	return game.LegalJointMoves(m, state)
}

func (m *Machine) NextState(state game.State, move game.JointMove) (game.State, error) {
	s, err := cast(state)
	if err != nil {
		return nil, game.Violation("next state", "", err)
	}
	if s.terminal() {
		return nil, game.Violation("next state", "", game.ErrTerminalTransition)
	}
	if len(move) != 2 {
		return nil, game.Violation("next state", "", fmt.Errorf("%w: %v", game.ErrIllegalMove, move))
	}

	mover, waiter := 0, 1
	if s.control == O {
		mover, waiter = 1, 0
	}
	if move[waiter] != game.NoOp {
		return nil, game.Violation("next state", m.Roles()[waiter], fmt.Errorf("%w: %s", game.ErrIllegalMove, move[waiter]))
	}
	cell, ok := parseMark(move[mover])
	if !ok || s.board[cell] != empty {
		return nil, game.Violation("next state", s.control, fmt.Errorf("%w: %s", game.ErrIllegalMove, move[mover]))
	}

	next := s
	if s.control == X {
		next.board[cell] = xMark
		next.control = O
	} else {
		next.board[cell] = oMark
		next.control = X
	}
	return next, nil
}

func (m *Machine) IsTerminal(state game.State) bool {
	s, err := cast(state)
	if err != nil {
		panic(err)
	}
	return s.terminal()
}

func (m *Machine) Utility(state game.State, role game.Role) (int, error) {
	s, err := cast(state)
	if err != nil {
		return 0, game.Violation("utility", role, err)
	}
	if !s.terminal() {
		return 0, game.Violation("utility", role, game.ErrNonTerminalGoal)
	}
	var mark byte
	switch role {
	case X:
		mark = xMark
	case O:
		mark = oMark
	default:
		return 0, game.Violation("utility", role, game.ErrUnknownRole)
	}
	switch s.winner() {
	case mark:
		return game.MaxUtility, nil
	case empty:
		return game.MaxUtility / 2, nil
	default:
		return game.MinUtility, nil
	}
}

func (m *Machine) RandomJointMove(state game.State) (game.JointMove, error) {
	return game.RandomJointMove(m, state, m.rng)
}

func cast(state game.State) (State, error) {
	s, ok := state.(State)
	if !ok {
		return State{}, fmt.Errorf("unexpected state type %T", state)
	}
	return s, nil
}

// winner returns the mark owning a full line, or empty
func (s State) winner() byte {
	for _, line := range lines {
		c := s.board[line[0]]
		if c != empty && c == s.board[line[1]] && c == s.board[line[2]] {
			return c
		}
	}
	return empty
}

func (s State) terminal() bool {
	if s.winner() != empty {
		return true
	}
	for _, c := range s.board {
		if c == empty {
			return false
		}
	}
	return true
}
