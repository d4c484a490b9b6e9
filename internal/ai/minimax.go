package ai

import (
    "github.com/jaminalder/tictactoe-fancy/internal/domain"
)

// Score bounds. A win for the AI at depth d scores WinScore-d, a loss
// scores d-WinScore and a draw scores 0.
const (
    WinScore  = 10
    DrawScore = 0
)

// ScoredMove is a candidate placement with its minimax value for the AI.
type ScoredMove struct {
    Index int `json:"index"`
    Score int `json:"score"`
}

// Minimax returns the full-depth value of b for the AI mark. The board is
// mutated during the search and restored before returning.
func Minimax(b *domain.Board, maximizing bool, depth int, aiMark, oppMark domain.Cell) int {
    if domain.HasWinner(*b, aiMark) {
        return WinScore - depth
    }
    if domain.HasWinner(*b, oppMark) {
        return depth - WinScore
    }
    if domain.IsFull(*b) {
        return DrawScore
    }

    if maximizing {
        best := -WinScore - 1
        for i := range b {
            if b[i] != domain.Empty {
                continue
            }
            b[i] = aiMark
            score := Minimax(b, false, depth+1, aiMark, oppMark)
            b[i] = domain.Empty
            if score > best {
                best = score
            }
        }
        return best
    }

    best := WinScore + 1
    for i := range b {
        if b[i] != domain.Empty {
            continue
        }
        b[i] = oppMark
        score := Minimax(b, true, depth+1, aiMark, oppMark)
        b[i] = domain.Empty
        if score < best {
            best = score
        }
    }
    return best
}

// ScoreMoves evaluates every empty cell in ascending order from the AI's
// point of view. b is a copy, so the caller's board is untouched.
func ScoreMoves(b domain.Board, aiMark, oppMark domain.Cell) []ScoredMove {
    out := make([]ScoredMove, 0, len(b))
    for i := range b {
        if b[i] != domain.Empty {
            continue
        }
        b[i] = aiMark
        score := Minimax(&b, false, 0, aiMark, oppMark)
        b[i] = domain.Empty
        out = append(out, ScoredMove{Index: i, Score: score})
    }
    return out
}
