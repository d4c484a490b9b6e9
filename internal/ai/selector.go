package ai

import (
    "errors"

    "github.com/sirupsen/logrus"

    "github.com/jaminalder/tictactoe-fancy/internal/domain"
)

// NormalBestProbability is the chance the Normal policy commits to the best
// move before falling back to a coin flip between best and runner-up.
const NormalBestProbability = 0.65

// ErrInvalidConfiguration is returned when the marks or difficulty passed to
// SelectMove cannot describe a game.
var ErrInvalidConfiguration = errors.New("invalid configuration")

// Selector picks moves for the automated player. It holds no game state and
// is safe for concurrent use as long as its Source is.
type Selector struct {
    src Source
}

// NewSelector returns a Selector drawing randomness from src, or from the
// process-wide source when src is nil.
func NewSelector(src Source) *Selector {
    if src == nil {
        src = DefaultSource()
    }
    return &Selector{src: src}
}

// SelectMove returns the cell the AI should play. ok is false when the board
// has no empty cell.
func (s *Selector) SelectMove(b domain.Board, aiMark, oppMark domain.Cell, d Difficulty) (int, bool, error) {
    move, ok, _, err := s.SelectScored(b, aiMark, oppMark, d)
    return move, ok, err
}

// SelectScored is SelectMove that also returns the root scores the choice
// was made from. Easy does not search, so its scores are nil.
func (s *Selector) SelectScored(b domain.Board, aiMark, oppMark domain.Cell, d Difficulty) (int, bool, []ScoredMove, error) {
    if aiMark == oppMark || aiMark == domain.Empty || oppMark == domain.Empty || !d.Valid() {
        return -1, false, nil, ErrInvalidConfiguration
    }
    empty := domain.EmptyCells(b)
    if len(empty) == 0 {
        return -1, false, nil, nil
    }

    if d == Easy {
        move := empty[s.src.Intn(len(empty))]
        logrus.WithFields(logrus.Fields{"difficulty": d, "move": move}).Trace("random move")
        return move, true, nil, nil
    }

    scores := ScoreMoves(b, aiMark, oppMark)
    best, second := rankMoves(scores)
    move := best.Index
    if d == Normal && s.src.Float64() >= NormalBestProbability && second.Index >= 0 {
        if s.src.Intn(2) == 1 {
            move = second.Index
        }
    }
    logrus.WithFields(logrus.Fields{
        "difficulty": d,
        "best":       best.Index,
        "score":      best.Score,
        "move":       move,
    }).Trace("searched move")
    return move, true, scores, nil
}

// rankMoves returns the first-encountered best move and the first-encountered
// move scoring strictly below it. second.Index is -1 when every move ties.
func rankMoves(moves []ScoredMove) (best, second ScoredMove) {
    best = ScoredMove{Index: -1}
    second = ScoredMove{Index: -1}
    for _, m := range moves {
        switch {
        case best.Index < 0 || m.Score > best.Score:
            if best.Index >= 0 {
                second = best
            }
            best = m
        case m.Score < best.Score && (second.Index < 0 || m.Score > second.Score):
            second = m
        }
    }
    return best, second
}
