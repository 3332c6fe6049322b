package config

const (
	defaultDataDir       = "~/.local/share/hush"
	defaultLogDir        = "~/.local/share/hush/logs"
	defaultBitRate       = 192000
	defaultChannels      = 2
	defaultSuppressionDB = -10
	defaultLogFormat     = "console"
	defaultLogLevel      = "info"
	defaultHistoryKeep   = 200
)

// Default returns a Config populated with repository defaults.
func Default() Config {
	return Config{
		Paths: Paths{
			DataDir: defaultDataDir,
			LogDir:  defaultLogDir,
		},
		Output: Output{
			BitRate:  defaultBitRate,
			Channels: defaultChannels,
		},
		Denoise: Denoise{
			Enabled:       true,
			SuppressionDB: defaultSuppressionDB,
		},
		Logging: Logging{
			Format: defaultLogFormat,
			Level:  defaultLogLevel,
		},
		History: History{
			Enabled: true,
			Keep:    defaultHistoryKeep,
		},
	}
}
