package cli

import (
    "bytes"
    "context"
    "path/filepath"
    "strings"
    "testing"

    "github.com/jaminalder/tictactoe-fancy/internal/ai"
    "github.com/jaminalder/tictactoe-fancy/internal/stats"
)

func execute(t *testing.T, args ...string) (string, error) {
    t.Helper()
    root := Root()
    var out bytes.Buffer
    root.SetOut(&out)
    root.SetErr(&out)
    cfg := filepath.Join(t.TempDir(), "missing.yaml")
    root.SetArgs(append([]string{"--config", cfg}, args...))
    err := root.ExecuteContext(context.Background())
    return out.String(), err
}

func TestMovePrintsBestCell(t *testing.T) {
    out, err := execute(t, "move", "X___X____", "--difficulty", "hard")
    if err != nil {
        t.Fatalf("move: %v", err)
    }
    if strings.TrimSpace(out) != "8" {
        t.Fatalf("expected 8, got %q", out)
    }
}

func TestMoveWithScores(t *testing.T) {
    out, err := execute(t, "move", "XX_OO_X__", "-d", "hard", "--scores")
    if err != nil {
        t.Fatalf("move: %v", err)
    }
    lines := strings.Split(strings.TrimSpace(out), "\n")
    if lines[0] != "5" {
        t.Fatalf("expected immediate win at 5, got %q", lines[0])
    }
    if !strings.Contains(out, "cell") || !strings.Contains(out, "score") {
        t.Fatalf("missing score table: %q", out)
    }
    // header plus one row per empty cell
    if len(lines) != 1+1+4 {
        t.Fatalf("unexpected output lines: %q", lines)
    }
}

func TestMoveFullBoard(t *testing.T) {
    out, err := execute(t, "move", "XOXXOOOXX")
    if err != nil {
        t.Fatalf("move: %v", err)
    }
    if strings.TrimSpace(out) != "no move" {
        t.Fatalf("expected no move, got %q", out)
    }
}

func TestMoveRejectsBadInput(t *testing.T) {
    cases := [][]string{
        {"move", "XO"},
        {"move", "X________", "--ai", "Q"},
        {"move", "X________", "--difficulty", "brutal"},
        {"move", "X_______Z"},
    }
    for _, args := range cases {
        if _, err := execute(t, args...); err == nil {
            t.Errorf("expected error for %v", args)
        }
    }
}

func TestRunSelfPlayHardDrawsEveryOpening(t *testing.T) {
    tally, err := RunSelfPlay(ai.NewSelector(ai.NewSource(1)), SelfPlayOptions{
        Games: 1, X: ai.Hard, O: ai.Hard, EachOpening: true,
    })
    if err != nil {
        t.Fatalf("RunSelfPlay: %v", err)
    }
    if tally != (Tally{Draws: 9}) {
        t.Fatalf("expected nine draws, got %+v", tally)
    }
}

func TestSelfPlayCommand(t *testing.T) {
    out, err := execute(t, "selfplay", "--x", "hard", "--o", "easy", "-n", "20")
    if err != nil {
        t.Fatalf("selfplay: %v", err)
    }
    if !strings.Contains(out, "O (easy) wins: 0") {
        t.Fatalf("easy O should never beat hard X: %q", out)
    }
    if !strings.Contains(out, "games: 20") {
        t.Fatalf("unexpected tally: %q", out)
    }

    if _, err := execute(t, "selfplay", "-n", "0"); err == nil {
        t.Fatalf("expected error for zero games")
    }
}

func TestLeaderboardCommand(t *testing.T) {
    db := filepath.Join(t.TempDir(), "game_stats.db")
    store, err := stats.Open(db)
    if err != nil {
        t.Fatalf("Open: %v", err)
    }
    ctx := context.Background()
    for _, r := range []stats.Result{stats.Win, stats.Win, stats.Loss} {
        if err := store.Record(ctx, "alice", r); err != nil {
            t.Fatalf("Record: %v", err)
        }
    }
    if err := store.Record(ctx, "bob", stats.Draw); err != nil {
        t.Fatalf("Record: %v", err)
    }
    _ = store.Close()

    out, err := execute(t, "leaderboard", "--db", db)
    if err != nil {
        t.Fatalf("leaderboard: %v", err)
    }
    lines := strings.Split(strings.TrimSpace(out), "\n")
    if len(lines) != 3 {
        t.Fatalf("unexpected output: %q", out)
    }
    if !strings.Contains(lines[1], "alice") || !strings.Contains(lines[2], "bob") {
        t.Fatalf("unexpected ordering: %q", out)
    }
    if f := strings.Fields(lines[1]); strings.Join(f, " ") != "1 alice 2 1 0" {
        t.Fatalf("unexpected alice row: %q", lines[1])
    }
}

func TestBadLogLevelIsRejected(t *testing.T) {
    if _, err := execute(t, "--log-level", "loud", "move", "X________"); err == nil {
        t.Fatalf("expected error for unknown log level")
    }
}
