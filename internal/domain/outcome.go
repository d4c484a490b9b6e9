package domain

import (
    "errors"
    "fmt"
    "strings"
)

// Line is a winning triple of board indices.
type Line [3]int

// Lines enumerates every winning triple: rows, then columns, then diagonals.
var Lines = [8]Line{
    // rows
    {0, 1, 2}, {3, 4, 5}, {6, 7, 8},
    // cols
    {0, 3, 6}, {1, 4, 7}, {2, 5, 8},
    // diags
    {0, 4, 8}, {2, 4, 6},
}

// OutcomeKind classifies a board.
type OutcomeKind uint8

const (
    InProgress OutcomeKind = iota
    Win
    Draw
)

func (k OutcomeKind) String() string {
    switch k {
    case Win:
        return "win"
    case Draw:
        return "draw"
    default:
        return "in progress"
    }
}

// Outcome is the terminal classification of a board. Mark and Line are only
// set for a Win.
type Outcome struct {
    Kind OutcomeKind
    Mark Cell
    Line Line
}

// Terminal reports whether the game is finished.
func (o Outcome) Terminal() bool { return o.Kind != InProgress }

// Parse errors.
var (
    ErrInvalidBoard = errors.New("invalid board")
    ErrInvalidMark  = errors.New("invalid mark")
)

// FindWinningLine returns the first complete line in enumeration order.
func FindWinningLine(b Board) (Line, bool) {
    for _, ln := range Lines {
        c := b[ln[0]]
        if c != Empty && b[ln[1]] == c && b[ln[2]] == c {
            return ln, true
        }
    }
    return Line{}, false
}

// HasWinner reports whether side occupies any complete line.
func HasWinner(b Board, side Cell) bool {
    for _, ln := range Lines {
        if b[ln[0]] == side && b[ln[1]] == side && b[ln[2]] == side {
            return true
        }
    }
    return false
}

// IsFull reports whether no cell is empty.
func IsFull(b Board) bool {
    for _, c := range b {
        if c == Empty {
            return false
        }
    }
    return true
}

// EmptyCells returns the empty indices in ascending order.
func EmptyCells(b Board) []int {
    out := make([]int, 0, len(b))
    for i, c := range b {
        if c == Empty {
            out = append(out, i)
        }
    }
    return out
}

// Classify reports a win (with its line), a draw, or an unfinished game.
func Classify(b Board) Outcome {
    if ln, ok := FindWinningLine(b); ok {
        return Outcome{Kind: Win, Mark: b[ln[0]], Line: ln}
    }
    if IsFull(b) {
        return Outcome{Kind: Draw}
    }
    return Outcome{Kind: InProgress}
}

// ParseCell parses "X", "O" or an empty marker ("", "_", ".", "-").
func ParseCell(s string) (Cell, error) {
    switch strings.ToUpper(strings.TrimSpace(s)) {
    case "X":
        return X, nil
    case "O":
        return O, nil
    case "", "_", ".", "-":
        return Empty, nil
    }
    return Empty, fmt.Errorf("%w: %q", ErrInvalidMark, s)
}

// ParseBoard parses 9 row-major characters, e.g. "X_O_X____".
func ParseBoard(s string) (Board, error) {
    var b Board
    if len(s) != len(b) {
        return b, ErrInvalidBoard
    }
    for i := 0; i < len(s); i++ {
        switch s[i] {
        case 'X', 'x':
            b[i] = X
        case 'O', 'o':
            b[i] = O
        case '_', '.', '-', ' ':
            b[i] = Empty
        default:
            return Board{}, ErrInvalidBoard
        }
    }
    return b, nil
}

// String renders the board in the form accepted by ParseBoard.
func (b Board) String() string {
    var sb strings.Builder
    for _, c := range b {
        if c == Empty {
            sb.WriteByte('_')
            continue
        }
        sb.WriteString(c.String())
    }
    return sb.String()
}
