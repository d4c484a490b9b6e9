package ai

import (
    "errors"
    "strings"
)

// Difficulty selects the move policy applied on top of the search. The zero
// value is unset and not a valid difficulty.
type Difficulty uint8

const (
    Easy Difficulty = iota + 1
    Normal
    Hard
)

// ErrUnknownDifficulty is returned by ParseDifficulty.
var ErrUnknownDifficulty = errors.New("unknown difficulty")

func (d Difficulty) String() string {
    switch d {
    case Easy:
        return "easy"
    case Normal:
        return "normal"
    case Hard:
        return "hard"
    default:
        return "unknown"
    }
}

// Valid reports whether d is one of the known difficulties.
func (d Difficulty) Valid() bool { return d >= Easy && d <= Hard }

// ParseDifficulty accepts "easy", "normal" or "hard" in any case.
func ParseDifficulty(s string) (Difficulty, error) {
    switch strings.ToLower(strings.TrimSpace(s)) {
    case "easy":
        return Easy, nil
    case "normal", "":
        return Normal, nil
    case "hard":
        return Hard, nil
    }
    return Normal, ErrUnknownDifficulty
}

// MarshalText lets Difficulty round-trip through YAML and JSON as a name.
func (d Difficulty) MarshalText() ([]byte, error) {
    if !d.Valid() {
        return nil, ErrUnknownDifficulty
    }
    return []byte(d.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (d *Difficulty) UnmarshalText(b []byte) error {
    v, err := ParseDifficulty(string(b))
    if err != nil {
        return err
    }
    *d = v
    return nil
}
