package config

import (
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/cockroachdb/errors"
	"github.com/pelletier/go-toml/v2"
	"github.com/ristryder/pgssup/common"
)

// Video describes the frame the subtitles are composed on.
type Video struct {
	Width  int `toml:"width"`
	Height int `toml:"height"`
}

// Encoding contains settings for building .sup streams.
type Encoding struct {
	// DefaultOffset is used for cues whose manifest entry has no offset and
	// the manifest root has no defaultoffset either.
	DefaultOffset string `toml:"default_offset"`
	// Workers bounds concurrent cue encoding. 1 encodes sequentially.
	Workers int `toml:"workers"`
}

// Extract contains settings for decoding existing .sup streams.
type Extract struct {
	ColorModel string `toml:"color_model"`
}

// Logging contains configuration for log output.
type Logging struct {
	Format string `toml:"format"`
	Level  string `toml:"level"`
}

// Config encapsulates all configuration values for pgssup.
type Config struct {
	Video    Video    `toml:"video"`
	Encoding Encoding `toml:"encoding"`
	Extract  Extract  `toml:"extract"`
	Logging  Logging  `toml:"logging"`
}

// DefaultConfigPath returns the absolute path of the per-user configuration file.
func DefaultConfigPath() (string, error) {
	return expandPath(defaultConfigPath)
}

// Load reads the configuration at path, or the first of the per-user file and
// ./pgssup.toml when path is empty. A missing file yields defaults. The
// resolved path and whether it existed are returned alongside the config.
func Load(path string) (*Config, string, bool, error) {
	cfg := Default()

	resolvedPath, exists, err := resolveConfigPath(path)
	if err != nil {
		return nil, "", false, err
	}

	if exists {
		file, err := os.Open(resolvedPath)
		if err != nil {
			return nil, "", false, errors.Wrap(err, "open config")
		}
		defer file.Close()

		decoder := toml.NewDecoder(file)
		decoder.DisallowUnknownFields()
		if err := decoder.Decode(&cfg); err != nil {
			return nil, "", false, errors.Wrapf(err, "parse config %s", resolvedPath)
		}
	}

	cfg.normalize()

	if err := cfg.Validate(); err != nil {
		return nil, "", false, err
	}

	return &cfg, resolvedPath, exists, nil
}

// VideoSize returns the configured frame size.
func (c *Config) VideoSize() common.Size {
	return common.Size{Height: c.Video.Height, Width: c.Video.Width}
}

// DefaultPosition parses Encoding.DefaultOffset.
func (c *Config) DefaultPosition() (common.Position, error) {
	return common.ParsePosition(c.Encoding.DefaultOffset)
}

func (c *Config) normalize() {
	c.Encoding.DefaultOffset = strings.TrimSpace(c.Encoding.DefaultOffset)
	if c.Encoding.DefaultOffset == "" {
		c.Encoding.DefaultOffset = defaultOffset
	}
	if c.Encoding.Workers <= 0 {
		c.Encoding.Workers = Default().Encoding.Workers
	}

	c.Extract.ColorModel = strings.ToLower(strings.TrimSpace(c.Extract.ColorModel))
	if c.Extract.ColorModel == "" {
		c.Extract.ColorModel = defaultColorModel
	}

	c.Logging.Format = strings.ToLower(strings.TrimSpace(c.Logging.Format))
	if c.Logging.Format == "" {
		c.Logging.Format = defaultLogFormat
	}
	c.Logging.Level = strings.ToLower(strings.TrimSpace(c.Logging.Level))
	if c.Logging.Level == "" {
		c.Logging.Level = defaultLogLevel
	}
}

func resolveConfigPath(path string) (string, bool, error) {
	if path != "" {
		expanded, err := expandPath(path)
		if err != nil {
			return "", false, err
		}
		if _, err := os.Stat(expanded); err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				return expanded, false, nil
			}
			return "", false, errors.Wrap(err, "stat config")
		}
		return expanded, true, nil
	}

	defaultPath, err := DefaultConfigPath()
	if err != nil {
		return "", false, err
	}

	projectPath, err := filepath.Abs(projectConfigFile)
	if err != nil {
		return "", false, errors.Wrap(err, "resolve project config")
	}

	if info, err := os.Stat(defaultPath); err == nil && !info.IsDir() {
		return defaultPath, true, nil
	}
	if info, err := os.Stat(projectPath); err == nil && !info.IsDir() {
		return projectPath, true, nil
	}

	return defaultPath, false, nil
}

func expandPath(pathValue string) (string, error) {
	if strings.HasPrefix(pathValue, "~") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", errors.Wrap(err, "resolve home directory")
		}
		if pathValue == "~" {
			pathValue = home
		} else if len(pathValue) > 1 && (pathValue[1] == '/' || pathValue[1] == '\\') {
			pathValue = filepath.Join(home, pathValue[2:])
		}
	}

	absolute, err := filepath.Abs(filepath.Clean(pathValue))
	if err != nil {
		return "", errors.Wrapf(err, "resolve absolute path for %q", pathValue)
	}

	return absolute, nil
}
