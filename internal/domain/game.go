package domain

import "errors"

// Cell represents a board cell state.
type Cell uint8

const (
    Empty Cell = iota
    X
    O
)

func (c Cell) String() string {
    switch c {
    case X:
        return "X"
    case O:
        return "O"
    default:
        return ""
    }
}

// Opponent returns the other mark; Empty stays Empty.
func (c Cell) Opponent() Cell {
    switch c {
    case X:
        return O
    case O:
        return X
    default:
        return Empty
    }
}

// Board is a fixed 3x3 board stored row-major.
type Board [9]Cell

// Game holds the current state of a Tic-Tac-Toe match.
type Game struct {
    Board  Board
    Turn   Cell
    Winner Cell
    Line   Line
    Over   bool
    Moves  int
}

// Errors returned by domain operations.
var (
    ErrOutOfBounds = errors.New("out of bounds")
    ErrOccupied    = errors.New("cell occupied")
    ErrGameOver    = errors.New("game over")
)

// New returns a new game with X to move.
func New() Game {
    return Game{Turn: X}
}

// Play attempts to play the current turn at row r, column c (0..2).
func (g *Game) Play(r, c int) error {
    if g.Over {
        return ErrGameOver
    }
    if r < 0 || r > 2 || c < 0 || c > 2 {
        return ErrOutOfBounds
    }
    return g.PlayIndex(r*3 + c)
}

// PlayIndex plays the current turn at a row-major index (0..8).
func (g *Game) PlayIndex(idx int) error {
    if g.Over {
        return ErrGameOver
    }
    if idx < 0 || idx >= len(g.Board) {
        return ErrOutOfBounds
    }
    if g.Board[idx] != Empty {
        return ErrOccupied
    }

    g.Board[idx] = g.Turn
    g.Moves++

    switch out := Classify(g.Board); out.Kind {
    case Win:
        g.Winner = out.Mark
        g.Line = out.Line
        g.Over = true
        return nil
    case Draw:
        g.Winner = Empty
        g.Over = true
        return nil
    }

    g.Turn = g.Turn.Opponent()
    return nil
}

// Outcome classifies the current board.
func (g *Game) Outcome() Outcome {
    return Classify(g.Board)
}
