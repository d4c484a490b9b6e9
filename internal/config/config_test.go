package config

import (
    "os"
    "path/filepath"
    "strings"
    "testing"

    "github.com/jaminalder/tictactoe-fancy/internal/ai"
)

func TestLoadMissingFileUsesDefaults(t *testing.T) {
    cfg, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
    if err != nil {
        t.Fatalf("Load: %v", err)
    }
    if cfg.Addr != ":8080" || cfg.Difficulty != ai.Normal || cfg.PlayerName != "Player 1" {
        t.Fatalf("unexpected defaults: %+v", cfg)
    }
    if !strings.HasSuffix(cfg.DBPath, filepath.Join(AppName, "game_stats.db")) {
        t.Fatalf("unexpected db path %q", cfg.DBPath)
    }
}

func TestLoadFileThenEnv(t *testing.T) {
    path := filepath.Join(t.TempDir(), "config.yaml")
    data := "addr: \":9090\"\ndifficulty: hard\nplayer: alice\nseed: 5\n"
    if err := os.WriteFile(path, []byte(data), 0o644); err != nil {
        t.Fatalf("write config: %v", err)
    }
    t.Setenv("TTT_PLAYER", "bob")
    t.Setenv("TTT_DB", "/tmp/ttt.db")

    cfg, err := Load(path)
    if err != nil {
        t.Fatalf("Load: %v", err)
    }
    if cfg.Addr != ":9090" || cfg.Difficulty != ai.Hard || cfg.Seed != 5 {
        t.Fatalf("file values not applied: %+v", cfg)
    }
    if cfg.PlayerName != "bob" || cfg.DBPath != "/tmp/ttt.db" {
        t.Fatalf("env overrides not applied: %+v", cfg)
    }
}

func TestLoadRejectsBadValues(t *testing.T) {
    path := filepath.Join(t.TempDir(), "config.yaml")
    if err := os.WriteFile(path, []byte("difficulty: impossible\n"), 0o644); err != nil {
        t.Fatalf("write config: %v", err)
    }
    if _, err := Load(path); err == nil {
        t.Fatalf("expected error for unknown difficulty in file")
    }

    t.Setenv("TTT_SEED", "abc")
    if _, err := Load(filepath.Join(t.TempDir(), "none.yaml")); err == nil {
        t.Fatalf("expected error for bad TTT_SEED")
    }
}

func TestSeededSourceIsRepeatable(t *testing.T) {
    cfg := Default()
    cfg.Seed = 11
    a, b := cfg.Source(), cfg.Source()
    for i := 0; i < 10; i++ {
        if a.Intn(100) != b.Intn(100) {
            t.Fatalf("seeded sources diverged")
        }
    }
}
