package game

import "strings"

// Utilities reported by a Machine range over [MinUtility, MaxUtility]
const (
	MinUtility = 0
	MaxUtility = 100
)

// Role identifies a player of a match. The set of roles is fixed per match.
type Role string

// Move is one role's action in a state. Moves are compared by value.
type Move string

// NoOp is the move a role makes while another role is on turn in an alternating game
const NoOp Move = "noop"

// JointMove holds one move per role, ordered like Machine.Roles()
type JointMove []Move

// Key returns a comparable representation of the joint move
func (jm JointMove) Key() string {
	return strings.Join(jm.parts(), "|")
}

func (jm JointMove) String() string {
	return "(" + strings.Join(jm.parts(), " ") + ")"
}

func (jm JointMove) parts() []string {
	parts := make([]string, len(jm))
	for i, move := range jm {
		parts[i] = string(move)
	}
	return parts
}

type StateHash uint64

// State should be immutable - a Machine always returns a new State on transition.
// Two states with the same hash are treated as the same game position.
type State interface {
	Hash() StateHash
}

// Machine is the game-state transition model the searchers are written against.
// Querying an unreachable or otherwise invalid state is a programming error; a Machine
// reports contract violations as a *ContractError.
type Machine interface {
	Roles() []Role
	// LegalMoves is non-empty for any non-terminal state and any role
	LegalMoves(state State, role Role) ([]Move, error)
	// LegalJointMoves is the cross product of every role's legal moves
	LegalJointMoves(state State) ([]JointMove, error)
	NextState(state State, move JointMove) (State, error)
	IsTerminal(state State) bool
	// Utility is only defined for terminal states
	Utility(state State, role Role) (int, error)
	RandomJointMove(state State) (JointMove, error)
}

// Evaluate scores a non-terminal state for every role (ordered like Machine.Roles()),
// in the same range as Machine.Utility. Used when a playout is cut off.
type Evaluate func(Machine, State) []float64

// RoleIndex returns the position of role in roles, or -1
func RoleIndex(roles []Role, role Role) int {
	for i, r := range roles {
		if r == role {
			return i
		}
	}
	return -1
}

// Utilities queries the utility of a terminal state for every role
func Utilities(m Machine, state State) ([]float64, error) {
	roles := m.Roles()
	utility := make([]float64, len(roles))
	for i, role := range roles {
		u, err := m.Utility(state, role)
		if err != nil {
			return nil, err
		}
		utility[i] = float64(u)
	}
	return utility, nil
}
