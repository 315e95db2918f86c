package game

import "golang.org/x/exp/rand"

// CrossProduct enumerates every joint move from per-role legal moves. The first role varies slowest.
func CrossProduct(legal [][]Move) []JointMove {
	if len(legal) == 0 {
		return nil
	}
	total := 1
	for _, moves := range legal {
		total *= len(moves)
	}
	joints := make([]JointMove, 0, total)
	current := make(JointMove, len(legal))

	var build func(i int)
	build = func(i int) {
		if i == len(legal) {
			joint := make(JointMove, len(current))
			copy(joint, current)
			joints = append(joints, joint)
			return
		}
		for _, move := range legal[i] {
			current[i] = move
			build(i + 1)
		}
	}
	build(0)
	return joints
}

// LegalJointMoves builds the cross product from the machine's per-role legal moves
func LegalJointMoves(m Machine, state State) ([]JointMove, error) {
	roles := m.Roles()
	legal := make([][]Move, len(roles))
	for i, role := range roles {
		moves, err := m.LegalMoves(state, role)
		if err != nil {
			return nil, err
		}
		if len(moves) == 0 {
			return nil, Violation("legal moves", role, ErrNoLegalMoves)
		}
		legal[i] = moves
	}
	return CrossProduct(legal), nil
}

// RandomJointMove samples every role's move uniformly
func RandomJointMove(m Machine, state State, rng *rand.Rand) (JointMove, error) {
	return RandomJointMoveWith(m, state, "", "", rng)
}

// RandomJointMoveWith samples every role's move uniformly except for role, which plays move.
// An empty role samples all roles.
func RandomJointMoveWith(m Machine, state State, role Role, move Move, rng *rand.Rand) (JointMove, error) {
	roles := m.Roles()
	if role != "" && RoleIndex(roles, role) < 0 {
		return nil, Violation("random joint move", role, ErrUnknownRole)
	}
	joint := make(JointMove, len(roles))
	for i, r := range roles {
		if role != "" && r == role {
			joint[i] = move
			continue
		}
		moves, err := m.LegalMoves(state, r)
		if err != nil {
			return nil, err
		}
		if len(moves) == 0 {
			return nil, Violation("legal moves", r, ErrNoLegalMoves)
		}
		joint[i] = moves[rng.Intn(len(moves))]
	}
	return joint, nil
}

// Contains reports whether move is one of moves
func Contains(moves []Move, move Move) bool {
	for _, m := range moves {
		if m == move {
			return true
		}
	}
	return false
}
