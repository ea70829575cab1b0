package config

import "github.com/yourusername/gomoku3d/pkg/engine"

var DefaultTheme = Theme{
	Colors: ConfigColors{
		BoardColor:        180,
		BlackColor:        232,
		WhiteColor:        255,
		LineColor:         94,
		CursorColorBG:     4,
		LastPlayedColorBG: 2,
		WinLineColorBG:    1,
	},
	Symbols: ConfigSymbols{
		BlackStone:   '●',
		WhiteStone:   '●',
		Intersection: '┼',
	},
}

// Default returns the built-in settings.
func Default() Config {
	return Config{
		Server: ServerConfig{
			Host:           "localhost",
			Port:           8080,
			MaxFastWorkers: 100,
			MaxSlowWorkers: 4,
			MaxSessions:    1000,
		},
		Protocol: ProtocolConfig{
			Enabled: false,
			Port:    1234,
			Prompt:  true,
		},
		Game: GameConfig{
			BoardSize:     engine.DefaultBoardSize,
			WinLength:     engine.DefaultWinLength,
			ReplayDelayMS: int(engine.DefaultReplayDelay.Milliseconds()),
		},
		Theme: DefaultTheme,
	}
}
