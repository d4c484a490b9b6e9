package ai

import (
    "fmt"

    "github.com/jaminalder/tictactoe-fancy/internal/domain"
)

// PlayOut plays b to completion with both sides driven by the selector.
// toMove is the mark to play first; dx and do are the difficulties for X and
// O respectively.
func PlayOut(s *Selector, b domain.Board, toMove domain.Cell, dx, do Difficulty) (domain.Board, domain.Outcome, error) {
    if toMove != domain.X && toMove != domain.O {
        return b, domain.Outcome{}, ErrInvalidConfiguration
    }
    for {
        out := domain.Classify(b)
        if out.Terminal() {
            return b, out, nil
        }
        d := dx
        if toMove == domain.O {
            d = do
        }
        move, ok, err := s.SelectMove(b, toMove, toMove.Opponent(), d)
        if err != nil {
            return b, out, err
        }
        if !ok {
            return b, out, fmt.Errorf("no move on unfinished board %s", b)
        }
        b[move] = toMove
        toMove = toMove.Opponent()
    }
}
