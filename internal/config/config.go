package config

import (
    "errors"
    "fmt"
    "os"
    "path/filepath"
    "strconv"

    "github.com/adrg/xdg"
    "gopkg.in/yaml.v3"

    "github.com/jaminalder/tictactoe-fancy/internal/ai"
)

// AppName names the data directory under the XDG data home.
const AppName = "tictactoe-fancy"

// Config holds runtime settings for the server and CLI.
type Config struct {
    Addr       string        `yaml:"addr"`
    DBPath     string        `yaml:"db"`
    Difficulty ai.Difficulty `yaml:"difficulty"`
    PlayerName string        `yaml:"player"`
    // Seed fixes the AI's random source when non-zero.
    Seed     int64  `yaml:"seed"`
    LogLevel string `yaml:"log_level"`
}

// Default returns the built-in configuration.
func Default() Config {
    return Config{
        Addr:       ":8080",
        DBPath:     filepath.Join(xdg.DataHome, AppName, "game_stats.db"),
        Difficulty: ai.Normal,
        PlayerName: "Player 1",
        LogLevel:   "info",
    }
}

// DefaultFile is where Load looks when no path is given.
func DefaultFile() string {
    return filepath.Join(xdg.ConfigHome, AppName, "config.yaml")
}

// Load reads path (or DefaultFile when empty) over the defaults and then
// applies environment overrides. A missing file is not an error.
func Load(path string) (Config, error) {
    cfg := Default()
    if path == "" {
        path = DefaultFile()
    }
    file, err := os.ReadFile(path)
    switch {
    case err == nil:
        if err := yaml.Unmarshal(file, &cfg); err != nil {
            return cfg, fmt.Errorf("parse %s: %w", path, err)
        }
    case errors.Is(err, os.ErrNotExist):
    default:
        return cfg, err
    }
    return cfg, cfg.applyEnv()
}

func (c *Config) applyEnv() error {
    c.Addr = getEnv("TTT_ADDR", c.Addr)
    c.DBPath = getEnv("TTT_DB", c.DBPath)
    c.PlayerName = getEnv("TTT_PLAYER", c.PlayerName)
    c.LogLevel = getEnv("TTT_LOG_LEVEL", c.LogLevel)
    if v := os.Getenv("TTT_DIFFICULTY"); v != "" {
        d, err := ai.ParseDifficulty(v)
        if err != nil {
            return fmt.Errorf("TTT_DIFFICULTY: %w", err)
        }
        c.Difficulty = d
    }
    if v := os.Getenv("TTT_SEED"); v != "" {
        seed, err := strconv.ParseInt(v, 10, 64)
        if err != nil {
            return fmt.Errorf("TTT_SEED: %w", err)
        }
        c.Seed = seed
    }
    return nil
}

// Source returns the AI random source implied by Seed.
func (c Config) Source() ai.Source {
    if c.Seed != 0 {
        return ai.NewSource(c.Seed)
    }
    return ai.DefaultSource()
}

func getEnv(key, defaultValue string) string {
    if value := os.Getenv(key); value != "" {
        return value
    }
    return defaultValue
}
