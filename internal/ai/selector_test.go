package ai

import (
    "errors"
    "testing"

    "github.com/jaminalder/tictactoe-fancy/internal/domain"
)

// fixedSource replays scripted values.
type fixedSource struct {
    ints   []int
    floats []float64
}

func (f *fixedSource) Intn(n int) int {
    if len(f.ints) == 0 {
        return 0
    }
    v := f.ints[0]
    f.ints = f.ints[1:]
    return v % n
}

func (f *fixedSource) Float64() float64 {
    if len(f.floats) == 0 {
        return 0
    }
    v := f.floats[0]
    f.floats = f.floats[1:]
    return v
}

func board(t *testing.T, s string) domain.Board {
    t.Helper()
    b, err := domain.ParseBoard(s)
    if err != nil {
        t.Fatalf("ParseBoard(%q): %v", s, err)
    }
    return b
}

func TestSelectMoveInvalidConfiguration(t *testing.T) {
    s := NewSelector(NewSource(1))
    cases := []struct {
        ai, opp domain.Cell
        d       Difficulty
    }{
        {domain.O, domain.O, Hard},
        {domain.Empty, domain.X, Hard},
        {domain.O, domain.Empty, Easy},
        {domain.O, domain.X, Difficulty(7)},
        {domain.O, domain.X, Difficulty(0)},
    }
    for _, c := range cases {
        if _, _, err := s.SelectMove(domain.Board{}, c.ai, c.opp, c.d); !errors.Is(err, ErrInvalidConfiguration) {
            t.Fatalf("expected ErrInvalidConfiguration for %+v, got %v", c, err)
        }
    }
}

func TestSelectMoveFullBoardAllDifficulties(t *testing.T) {
    s := NewSelector(NewSource(1))
    full := board(t, "XOXXOOOXX")
    for _, d := range []Difficulty{Easy, Normal, Hard} {
        move, ok, err := s.SelectMove(full, domain.O, domain.X, d)
        if err != nil || ok || move != -1 {
            t.Fatalf("%v: expected no move, got move=%d ok=%v err=%v", d, move, ok, err)
        }
    }
}

func TestEasyPicksAmongEmptyCells(t *testing.T) {
    b := board(t, "X_O_X__O_")
    empty := domain.EmptyCells(b)
    for k := range empty {
        s := NewSelector(&fixedSource{ints: []int{k}})
        move, ok, err := s.SelectMove(b, domain.O, domain.X, Easy)
        if err != nil || !ok {
            t.Fatalf("unexpected result ok=%v err=%v", ok, err)
        }
        if move != empty[k] {
            t.Fatalf("expected empty[%d]=%d, got %d", k, empty[k], move)
        }
    }
}

func TestEasyIsUniformish(t *testing.T) {
    s := NewSelector(NewSource(42))
    counts := make(map[int]int)
    const trials = 9000
    for i := 0; i < trials; i++ {
        move, _, _ := s.SelectMove(domain.Board{}, domain.O, domain.X, Easy)
        counts[move]++
    }
    for i := 0; i < 9; i++ {
        if counts[i] < 800 || counts[i] > 1200 {
            t.Fatalf("cell %d picked %d times out of %d", i, counts[i], trials)
        }
    }
}

func TestHardEmptyBoardOpening(t *testing.T) {
    s := NewSelector(nil)
    move, ok, err := s.SelectMove(domain.Board{}, domain.O, domain.X, Hard)
    if err != nil || !ok {
        t.Fatalf("unexpected result ok=%v err=%v", ok, err)
    }
    if move < 0 || move > 8 {
        t.Fatalf("move out of range: %d", move)
    }
    // every opening is a draw under perfect play, so the first index wins the tie
    if move != 0 {
        t.Fatalf("expected lowest tied index 0, got %d", move)
    }
}

func TestHardIsDeterministic(t *testing.T) {
    s := NewSelector(NewSource(7))
    for _, bs := range []string{"_________", "X________", "X___O___X", "XO__X____"} {
        b := board(t, bs)
        first, _, _ := s.SelectMove(b, domain.O, domain.X, Hard)
        for i := 0; i < 20; i++ {
            got, _, _ := s.SelectMove(b, domain.O, domain.X, Hard)
            if got != first {
                t.Fatalf("board %s: hard move changed from %d to %d", bs, first, got)
            }
        }
    }
}

func TestHardBlocksDiagonal(t *testing.T) {
    s := NewSelector(nil)
    b := board(t, "X___X____")
    move, ok, err := s.SelectMove(b, domain.O, domain.X, Hard)
    if err != nil || !ok {
        t.Fatalf("unexpected result ok=%v err=%v", ok, err)
    }
    if move != 8 {
        t.Fatalf("expected block at 8, got %d", move)
    }
    // O loses everywhere; blocking at 8 delays the loss until X forks
    scores := ScoreMoves(b, domain.O, domain.X)
    var block int
    for _, m := range scores {
        if m.Index == 8 {
            block = m.Score
        }
    }
    if block != 3-WinScore {
        t.Fatalf("expected block to lose at depth 3, got %d", block)
    }
    for _, m := range scores {
        if m.Index == 8 {
            continue
        }
        if m.Score != 1-WinScore {
            t.Fatalf("expected move %d to lose at depth 1, got %d", m.Index, m.Score)
        }
        if m.Score >= block {
            t.Fatalf("expected move %d to score below the block, got %d", m.Index, m.Score)
        }
    }
}

func TestHardDoubleThreatAllMovesLose(t *testing.T) {
    s := NewSelector(nil)
    b := board(t, "XOXOXO___")
    move, ok, err := s.SelectMove(b, domain.O, domain.X, Hard)
    if err != nil || !ok {
        t.Fatalf("unexpected result ok=%v err=%v", ok, err)
    }
    if move < 6 || move > 8 {
        t.Fatalf("expected one of 6,7,8, got %d", move)
    }
    for _, m := range ScoreMoves(b, domain.O, domain.X) {
        if m.Score != 1-WinScore {
            t.Fatalf("move %d: expected loss at depth 1, got %d", m.Index, m.Score)
        }
    }
    if move != 6 {
        t.Fatalf("expected lowest tied index 6, got %d", move)
    }
}

func TestHardTakesImmediateWin(t *testing.T) {
    s := NewSelector(nil)
    // O can win on 5 or block X on 8; winning now scores highest.
    b := board(t, "XX_OO_X__")
    move, _, _ := s.SelectMove(b, domain.O, domain.X, Hard)
    if move != 5 {
        t.Fatalf("expected winning move 5, got %d", move)
    }
}

func TestSelectMoveLeavesCallerBoard(t *testing.T) {
    s := NewSelector(NewSource(3))
    b := board(t, "X___O____")
    snapshot := b
    for _, d := range []Difficulty{Easy, Normal, Hard} {
        if _, _, err := s.SelectMove(b, domain.O, domain.X, d); err != nil {
            t.Fatalf("unexpected error: %v", err)
        }
        if b != snapshot {
            t.Fatalf("%v: caller board mutated to %s", d, b)
        }
    }
}

func TestAlreadyWonBoardIsTerminal(t *testing.T) {
    b := board(t, "XXX_OO___")
    for _, m := range ScoreMoves(b, domain.O, domain.X) {
        if m.Index == 3 {
            // O completes 3,4,5 on a board X already won; AI mark is checked first
            if m.Score != WinScore {
                t.Fatalf("expected immediate AI win score, got %d", m.Score)
            }
            continue
        }
        if m.Score != -WinScore {
            t.Fatalf("move %d: expected immediate loss score, got %d", m.Index, m.Score)
        }
    }
}

func TestRankMoves(t *testing.T) {
    tests := []struct {
        name         string
        moves        []ScoredMove
        best, second int
    }{
        {name: "empty", moves: nil, best: -1, second: -1},
        {name: "single", moves: []ScoredMove{{4, 0}}, best: 4, second: -1},
        {name: "all tied", moves: []ScoredMove{{1, 0}, {2, 0}, {3, 0}}, best: 1, second: -1},
        {name: "best displaces", moves: []ScoredMove{{1, -9}, {2, -9}, {8, 0}}, best: 8, second: 1},
        {name: "between", moves: []ScoredMove{{0, 9}, {1, -9}, {2, 0}, {3, 0}}, best: 0, second: 2},
        {name: "tie on best keeps first", moves: []ScoredMove{{0, 5}, {1, 5}, {2, 3}}, best: 0, second: 2},
    }
    for _, tt := range tests {
        t.Run(tt.name, func(t *testing.T) {
            best, second := rankMoves(tt.moves)
            if best.Index != tt.best || second.Index != tt.second {
                t.Fatalf("expected best=%d second=%d, got %d %d", tt.best, tt.second, best.Index, second.Index)
            }
        })
    }
}

func TestNormalScriptedBranches(t *testing.T) {
    b := board(t, "X___X____") // best 8, runner-up 1
    tests := []struct {
        name string
        src  *fixedSource
        want int
    }{
        {name: "commit to best", src: &fixedSource{floats: []float64{0.1}}, want: 8},
        {name: "coin flip best", src: &fixedSource{floats: []float64{0.9}, ints: []int{0}}, want: 8},
        {name: "coin flip runner-up", src: &fixedSource{floats: []float64{0.9}, ints: []int{1}}, want: 1},
    }
    for _, tt := range tests {
        t.Run(tt.name, func(t *testing.T) {
            move, _, err := NewSelector(tt.src).SelectMove(b, domain.O, domain.X, Normal)
            if err != nil || move != tt.want {
                t.Fatalf("expected %d, got %d (err=%v)", tt.want, move, err)
            }
        })
    }
}

func TestNormalSingleMoveAlwaysBest(t *testing.T) {
    b := board(t, "XOXXOOOX_")
    s := NewSelector(&fixedSource{floats: []float64{0.99}, ints: []int{1}})
    move, ok, _ := s.SelectMove(b, domain.O, domain.X, Normal)
    if !ok || move != 8 {
        t.Fatalf("expected only move 8, got %d ok=%v", move, ok)
    }
}

func TestNormalDistribution(t *testing.T) {
    b := board(t, "X___X____")
    s := NewSelector(NewSource(2024))
    const trials = 4000
    counts := make(map[int]int)
    for i := 0; i < trials; i++ {
        move, _, _ := s.SelectMove(b, domain.O, domain.X, Normal)
        counts[move]++
    }
    if len(counts) != 2 {
        t.Fatalf("expected only best and runner-up, got %v", counts)
    }
    bestFreq := float64(counts[8]) / trials
    secondFreq := float64(counts[1]) / trials
    if bestFreq < 0.795 || bestFreq > 0.855 {
        t.Fatalf("best frequency %.3f not near 0.825", bestFreq)
    }
    if secondFreq < 0.145 || secondFreq > 0.205 {
        t.Fatalf("runner-up frequency %.3f not near 0.175", secondFreq)
    }
}

func TestParseDifficulty(t *testing.T) {
    for in, want := range map[string]Difficulty{"easy": Easy, "Normal": Normal, "HARD": Hard} {
        got, err := ParseDifficulty(in)
        if err != nil || got != want {
            t.Fatalf("ParseDifficulty(%q) = %v, %v", in, got, err)
        }
        if got.String() != want.String() {
            t.Fatalf("String mismatch for %v", got)
        }
    }
    if _, err := ParseDifficulty("impossible"); !errors.Is(err, ErrUnknownDifficulty) {
        t.Fatalf("expected ErrUnknownDifficulty, got %v", err)
    }
    var d Difficulty
    if err := d.UnmarshalText([]byte("hard")); err != nil || d != Hard {
        t.Fatalf("UnmarshalText: %v %v", d, err)
    }
}
