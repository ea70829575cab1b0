// Package config loads gomoku3d settings from defaults, a JSON file and the
// environment, in that order.
package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/adrg/xdg"

	"github.com/yourusername/gomoku3d/pkg/engine"
)

var (
	cfgFile = "gomoku3d/config.json"
)

// Environment variables that override file settings.
const (
	EnvHost         = "GOMOKU_HOST"
	EnvPort         = "GOMOKU_PORT"
	EnvBoardSize    = "GOMOKU_BOARD_SIZE"
	EnvWinLength    = "GOMOKU_WIN_LENGTH"
	EnvProtocolPort = "GOMOKU_PROTOCOL_PORT"
)

type InvalidConfig struct {
	err string
}

func (e *InvalidConfig) Error() string {
	return fmt.Sprintf("Config error: %s", e.err)
}

// ServerConfig configures the HTTP API.
type ServerConfig struct {
	Host           string `json:"host"`
	Port           int    `json:"port"`
	MaxFastWorkers int    `json:"max_fast_workers"`
	MaxSlowWorkers int    `json:"max_slow_workers"`
	MaxSessions    int    `json:"max_sessions"` // 0 = unlimited
}

// ProtocolConfig configures the line protocol listener.
type ProtocolConfig struct {
	Enabled bool `json:"enabled"`
	Port    int  `json:"port"`
	Prompt  bool `json:"prompt"`
}

// GameConfig holds the rules for new games.
type GameConfig struct {
	BoardSize     int `json:"board_size"` // N; the board has N+1 intersections per side
	WinLength     int `json:"win_length"`
	ReplayDelayMS int `json:"replay_delay_ms"`
}

// ReplayDelay returns the replay step delay.
func (g GameConfig) ReplayDelay() time.Duration {
	return time.Duration(g.ReplayDelayMS) * time.Millisecond
}

type ConfigColors struct {
	BoardColor        int `json:"board"`
	BlackColor        int `json:"black"`
	WhiteColor        int `json:"white"`
	LineColor         int `json:"line"`
	CursorColorBG     int `json:"cursor_bg"`
	LastPlayedColorBG int `json:"last_played_bg"`
	WinLineColorBG    int `json:"win_line_bg"`
}

type ConfigSymbols struct {
	BlackStone   rune `json:"black"`
	WhiteStone   rune `json:"white"`
	Intersection rune `json:"intersection"`
}

// Theme styles the terminal board.
type Theme struct {
	Colors  ConfigColors  `json:"colors"`
	Symbols ConfigSymbols `json:"symbols"`
}

type Config struct {
	Server   ServerConfig   `json:"server"`
	Protocol ProtocolConfig `json:"protocol"`
	Game     GameConfig     `json:"game"`
	Theme    Theme          `json:"theme"`
}

// InitConfig loads the config file found in the XDG config directories,
// applies environment overrides and validates the result.
func InitConfig() (*Config, error) {
	return Load("")
}

// Load is InitConfig with an explicit config file. An empty path searches
// the XDG config directories; a missing file there is not an error.
func Load(path string) (*Config, error) {
	config := Default()

	if path == "" {
		absPath, err := xdg.SearchConfigFile(cfgFile)
		if err == nil {
			path = absPath
		}
	}
	if path != "" {
		if err := readCfgFile(path, &config); err != nil {
			return nil, err
		}
	}

	if err := config.ApplyEnv(os.LookupEnv); err != nil {
		return nil, err
	}
	if err := config.Validate(); err != nil {
		return nil, err
	}
	return &config, nil
}

// ApplyEnv overrides settings from environment variables read through lookup.
func (c *Config) ApplyEnv(lookup func(string) (string, bool)) error {
	for _, v := range []struct {
		name   string
		target *int
	}{
		{EnvPort, &c.Server.Port},
		{EnvBoardSize, &c.Game.BoardSize},
		{EnvWinLength, &c.Game.WinLength},
		{EnvProtocolPort, &c.Protocol.Port},
	} {
		s, ok := lookup(v.name)
		if !ok || s == "" {
			continue
		}
		n, err := strconv.Atoi(s)
		if err != nil {
			return &InvalidConfig{fmt.Sprintf("%s must be a number, got %q", v.name, s)}
		}
		*v.target = n
	}

	if host, ok := lookup(EnvHost); ok && host != "" {
		c.Server.Host = host
	}
	if s, ok := lookup(EnvProtocolPort); ok && s != "" {
		c.Protocol.Enabled = true
	}
	return nil
}

func (c *Config) Validate() error {
	if c.Game.BoardSize < 1 || c.Game.BoardSize > engine.MaxBoardSize {
		return &InvalidConfig{fmt.Sprintf("board size must be between 1 and %d", engine.MaxBoardSize)}
	}
	if c.Game.WinLength < 2 || c.Game.WinLength > c.Game.BoardSize+1 {
		return &InvalidConfig{fmt.Sprintf("win length must be between 2 and %d", c.Game.BoardSize+1)}
	}
	if c.Game.ReplayDelayMS < 0 {
		return &InvalidConfig{"replay delay cannot be negative"}
	}
	for _, p := range []int{c.Server.Port, c.Protocol.Port} {
		if p < 0 || p > 65535 {
			return &InvalidConfig{fmt.Sprintf("port %d out of range", p)}
		}
	}
	if c.Server.MaxSessions < 0 {
		return &InvalidConfig{"max sessions cannot be negative"}
	}
	for _, r := range []rune{c.Theme.Symbols.BlackStone, c.Theme.Symbols.WhiteStone, c.Theme.Symbols.Intersection} {
		if r < 32 || (r >= 127 && r <= 159) {
			return &InvalidConfig{"Unicode characters 1-31 and 127-159 are not allowed"}
		}
	}
	return nil
}

// EngineOptions returns the engine options for new games.
func (c *Config) EngineOptions() engine.Options {
	return engine.Options{
		BoardSize: c.Game.BoardSize,
		WinLength: c.Game.WinLength,
	}
}

// Save writes the config to the user's XDG config directory.
func (c *Config) Save() error {
	absPath, err := xdg.ConfigFile(cfgFile)
	if err != nil {
		return err
	}
	return saveCfgFile(absPath, c, 0664)
}

func saveCfgFile(filePath string, a interface{}, perm fs.FileMode) error {
	jsonData, err := json.MarshalIndent(a, "", "  ")
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(filePath), 0755); err != nil {
		return err
	}
	return os.WriteFile(filePath, jsonData, perm)
}

func readCfgFile(filePath string, a interface{}) error {
	data, err := os.ReadFile(filePath)
	if errors.Is(err, fs.ErrNotExist) {
		return &InvalidConfig{fmt.Sprintf("config file %s not found", filePath)}
	}
	if err != nil {
		return err
	}
	if err := json.Unmarshal(data, a); err != nil {
		return &InvalidConfig{fmt.Sprintf("%s: %v", filePath, err)}
	}
	return nil
}
