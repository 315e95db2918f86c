package tictactoe

import "ggp/game"

// EvaluateOpenLines scores a non-terminal position by the lines each mark can still complete,
// weighting lines that already hold two of its marks. The result is a utility per role between
// MinUtility and MaxUtility that sums to MaxUtility, like a goal.
func EvaluateOpenLines(m game.Machine, state game.State) []float64 {
	s, ok := state.(State)
	if !ok {
		panic("unexpected state type")
	}
	if w := s.winner(); w != empty {
		if w == xMark {
			return []float64{game.MaxUtility, game.MinUtility}
		}
		return []float64{game.MinUtility, game.MaxUtility}
	}

	xScore, oScore := s.lineScores()
	total := xScore + oScore
	if total == 0 {
		return []float64{game.MaxUtility / 2, game.MaxUtility / 2}
	}
	x := game.MaxUtility * xScore / total
	return []float64{x, game.MaxUtility - x}
}

func (s State) lineScores() (xScore, oScore float64) {
	for _, line := range lines {
		var xs, os int
		for _, i := range line {
			switch s.board[i] {
			case xMark:
				xs++
			case oMark:
				os++
			}
		}
		// A line holding both marks is dead
		switch {
		case xs == 0 && os == 0:
			xScore++
			oScore++
		case os == 0:
			xScore += float64(1 + xs*xs)
		case xs == 0:
			oScore += float64(1 + os*os)
		}
	}
	return xScore, oScore
}
