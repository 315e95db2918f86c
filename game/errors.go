package game

import (
	"errors"
	"fmt"
)

var (
	ErrIllegalMove        = errors.New("illegal move")
	ErrTerminalTransition = errors.New("transition from terminal state")
	ErrNonTerminalGoal    = errors.New("goal query on non-terminal state")
	ErrNoLegalMoves       = errors.New("no legal moves")
	ErrUnknownRole        = errors.New("unknown role")
)

// ContractError reports a query a Machine could not answer for the given state
type ContractError struct {
	Op   string
	Role Role
	Err  error
}

func (e *ContractError) Error() string {
	if e.Role != "" {
		return fmt.Sprintf("%s for role %s: %v", e.Op, e.Role, e.Err)
	}
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *ContractError) Unwrap() error {
	return e.Err
}

func Violation(op string, role Role, err error) error {
	return &ContractError{Op: op, Role: role, Err: err}
}
