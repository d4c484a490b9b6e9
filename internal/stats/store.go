package stats

import (
    "context"
    "database/sql"
    "errors"
    "fmt"
    "os"
    "path/filepath"
    "time"

    "github.com/sirupsen/logrus"
    _ "modernc.org/sqlite"

    "github.com/jaminalder/tictactoe-fancy/internal/domain"
)

// Result is a per-player game result.
type Result string

const (
    Win  Result = "WIN"
    Loss Result = "LOSS"
    Draw Result = "DRAW"
)

// ErrInvalidResult is returned by Record for an unknown Result.
var ErrInvalidResult = errors.New("invalid result")

// PlayerStat is one leaderboard row.
type PlayerStat struct {
    Name       string
    Wins       int
    Losses     int
    Draws      int
    LastPlayed time.Time
}

// ResultFor maps a finished game to the result of the player holding mark.
// ok is false while the game is still in progress.
func ResultFor(out domain.Outcome, mark domain.Cell) (Result, bool) {
    switch out.Kind {
    case domain.Draw:
        return Draw, true
    case domain.Win:
        if out.Mark == mark {
            return Win, true
        }
        return Loss, true
    }
    return "", false
}

// Store keeps win/loss/draw counts per player in SQLite.
type Store struct {
    db *sql.DB
}

const schema = `
CREATE TABLE IF NOT EXISTS Leaderboard (
    Name TEXT PRIMARY KEY,
    Wins INTEGER DEFAULT 0,
    Losses INTEGER DEFAULT 0,
    Draws INTEGER DEFAULT 0,
    LastPlayed TEXT
);
`

// Open opens (and creates if needed) the database at path.
func Open(path string) (*Store, error) {
    if dir := filepath.Dir(path); dir != "" {
        if err := os.MkdirAll(dir, 0o755); err != nil {
            return nil, fmt.Errorf("create database directory: %w", err)
        }
    }
    db, err := sql.Open("sqlite", path)
    if err != nil {
        return nil, fmt.Errorf("open database: %w", err)
    }
    // sqlite allows a single writer; serialise through one connection
    db.SetMaxOpenConns(1)
    if _, err := db.Exec(schema); err != nil {
        _ = db.Close()
        return nil, fmt.Errorf("create leaderboard table: %w", err)
    }
    logrus.WithField("path", path).Debug("stats database ready")
    return &Store{db: db}, nil
}

// Close closes the underlying database.
func (s *Store) Close() error { return s.db.Close() }

// Record adds one result for name.
func (s *Store) Record(ctx context.Context, name string, r Result) error {
    var column string
    switch r {
    case Win:
        column = "Wins"
    case Loss:
        column = "Losses"
    case Draw:
        column = "Draws"
    default:
        return fmt.Errorf("%w: %q", ErrInvalidResult, r)
    }
    now := time.Now().UTC().Format(time.RFC3339Nano)

    tx, err := s.db.BeginTx(ctx, nil)
    if err != nil {
        return err
    }
    defer func() { _ = tx.Rollback() }()

    if _, err := tx.ExecContext(ctx,
        `INSERT INTO Leaderboard (Name, Wins, Losses, Draws, LastPlayed)
         VALUES (?, 0, 0, 0, ?)
         ON CONFLICT(Name) DO NOTHING`, name, now); err != nil {
        return fmt.Errorf("insert player %q: %w", name, err)
    }
    // column comes from the switch above, never from input
    if _, err := tx.ExecContext(ctx,
        "UPDATE Leaderboard SET "+column+" = "+column+" + 1, LastPlayed = ? WHERE Name = ?",
        now, name); err != nil {
        return fmt.Errorf("update player %q: %w", name, err)
    }
    return tx.Commit()
}

// Leaderboard returns every player ordered by wins, then fewest losses.
func (s *Store) Leaderboard(ctx context.Context) ([]PlayerStat, error) {
    rows, err := s.db.QueryContext(ctx,
        `SELECT Name, Wins, Losses, Draws, LastPlayed FROM Leaderboard
         ORDER BY Wins DESC, Losses ASC, Name ASC`)
    if err != nil {
        return nil, fmt.Errorf("query leaderboard: %w", err)
    }
    defer rows.Close()

    var out []PlayerStat
    for rows.Next() {
        var ps PlayerStat
        var last sql.NullString
        if err := rows.Scan(&ps.Name, &ps.Wins, &ps.Losses, &ps.Draws, &last); err != nil {
            return nil, err
        }
        if last.Valid {
            if t, err := time.Parse(time.RFC3339Nano, last.String); err == nil {
                ps.LastPlayed = t
            }
        }
        out = append(out, ps)
    }
    return out, rows.Err()
}
