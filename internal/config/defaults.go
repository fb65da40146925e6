package config

import "runtime"

const (
	defaultVideoWidth  = 1920
	defaultVideoHeight = 1080
	defaultOffset      = "0,0"
	defaultColorModel  = "full"
	defaultLogFormat   = "console"
	defaultLogLevel    = "info"
	defaultConfigPath  = "~/.config/pgssup/config.toml"
	projectConfigFile  = "pgssup.toml"
	maxWorkers         = 256
	maxFrameDimension  = 0xFFFF
)

// Default returns a Config populated with repository defaults.
func Default() Config {
	return Config{
		Video: Video{
			Width:  defaultVideoWidth,
			Height: defaultVideoHeight,
		},
		Encoding: Encoding{
			DefaultOffset: defaultOffset,
			Workers:       min(runtime.NumCPU(), maxWorkers),
		},
		Extract: Extract{
			ColorModel: defaultColorModel,
		},
		Logging: Logging{
			Format: defaultLogFormat,
			Level:  defaultLogLevel,
		},
	}
}
