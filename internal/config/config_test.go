package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/adrg/xdg"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// isolate points the XDG config home at a temp dir and clears overrides.
func isolate(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	t.Cleanup(xdg.Reload)
	t.Setenv("XDG_CONFIG_HOME", dir)
	t.Setenv("XDG_CONFIG_DIRS", filepath.Join(dir, "none"))
	for _, name := range []string{EnvHost, EnvPort, EnvBoardSize, EnvWinLength, EnvProtocolPort} {
		t.Setenv(name, "")
	}
	xdg.Reload()
	return dir
}

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
}

func TestDefaultIsValid(t *testing.T) {
	cfg := Default()
	require.NoError(t, cfg.Validate())
	assert.Equal(t, 14, cfg.Game.BoardSize)
	assert.Equal(t, 5, cfg.Game.WinLength)
	assert.Equal(t, 500, cfg.Game.ReplayDelayMS)
	assert.False(t, cfg.Protocol.Enabled)

	opts := cfg.EngineOptions()
	assert.Equal(t, 14, opts.BoardSize)
	assert.Equal(t, 5, opts.WinLength)
}

func TestInitConfigWithoutFile(t *testing.T) {
	isolate(t)

	cfg, err := InitConfig()
	require.NoError(t, err)
	assert.Equal(t, Default(), *cfg)
}

func TestInitConfigFindsXDGFile(t *testing.T) {
	dir := isolate(t)
	writeFile(t, filepath.Join(dir, cfgFile), `{"game": {"board_size": 18, "win_length": 6}, "server": {"port": 9000}}`)

	cfg, err := InitConfig()
	require.NoError(t, err)
	assert.Equal(t, 18, cfg.Game.BoardSize)
	assert.Equal(t, 6, cfg.Game.WinLength)
	assert.Equal(t, 9000, cfg.Server.Port)
	// Unset fields keep their defaults.
	assert.Equal(t, "localhost", cfg.Server.Host)
	assert.Equal(t, DefaultTheme, cfg.Theme)
}

func TestLoadExplicitFile(t *testing.T) {
	isolate(t)
	path := filepath.Join(t.TempDir(), "custom.json")
	writeFile(t, path, `{"game": {"replay_delay_ms": 50}}`)

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, 50, cfg.Game.ReplayDelayMS)
	assert.Equal(t, int64(50), cfg.Game.ReplayDelay().Milliseconds())

	_, err = Load(filepath.Join(t.TempDir(), "missing.json"))
	var invalid *InvalidConfig
	assert.ErrorAs(t, err, &invalid)
}

func TestLoadRejectsBadFile(t *testing.T) {
	isolate(t)
	dir := t.TempDir()

	tests := map[string]string{
		"syntax":     `{"game": `,
		"win length": `{"game": {"board_size": 4, "win_length": 6}}`,
		"board size": `{"game": {"board_size": 40}}`,
		"port":       `{"server": {"port": 70000}}`,
		"delay":      `{"game": {"replay_delay_ms": -1}}`,
		"symbol":     `{"theme": {"symbols": {"black": 7}}}`,
	}
	for name, content := range tests {
		t.Run(name, func(t *testing.T) {
			path := filepath.Join(dir, name+".json")
			writeFile(t, path, content)
			_, err := Load(path)
			var invalid *InvalidConfig
			assert.ErrorAs(t, err, &invalid)
		})
	}
}

func TestEnvOverrides(t *testing.T) {
	dir := isolate(t)
	writeFile(t, filepath.Join(dir, cfgFile), `{"server": {"port": 9000}}`)
	t.Setenv(EnvHost, "0.0.0.0")
	t.Setenv(EnvPort, "8181")
	t.Setenv(EnvBoardSize, "10")
	t.Setenv(EnvWinLength, "4")
	t.Setenv(EnvProtocolPort, "4321")

	cfg, err := InitConfig()
	require.NoError(t, err)
	assert.Equal(t, "0.0.0.0", cfg.Server.Host)
	assert.Equal(t, 8181, cfg.Server.Port)
	assert.Equal(t, 10, cfg.Game.BoardSize)
	assert.Equal(t, 4, cfg.Game.WinLength)
	assert.Equal(t, 4321, cfg.Protocol.Port)
	assert.True(t, cfg.Protocol.Enabled)
}

func TestEnvRejectsNonNumbers(t *testing.T) {
	cfg := Default()
	env := map[string]string{EnvPort: "eighty"}
	err := cfg.ApplyEnv(func(k string) (string, bool) {
		v, ok := env[k]
		return v, ok
	})
	var invalid *InvalidConfig
	require.ErrorAs(t, err, &invalid)
	assert.Contains(t, err.Error(), EnvPort)
}

func TestSaveRoundTrip(t *testing.T) {
	isolate(t)

	cfg := Default()
	cfg.Game.BoardSize = 12
	cfg.Theme.Symbols.BlackStone = 'X'
	require.NoError(t, cfg.Save())

	loaded, err := InitConfig()
	require.NoError(t, err)
	assert.Equal(t, cfg, *loaded)
}
