package config

import (
	"github.com/cockroachdb/errors"
	"github.com/ristryder/pgssup/bluraysup"
)

// Validate ensures the configuration is usable.
func (c *Config) Validate() error {
	if err := c.validateVideo(); err != nil {
		return err
	}
	if err := c.validateEncoding(); err != nil {
		return err
	}
	if _, err := bluraysup.ParseColorModel(c.Extract.ColorModel); err != nil {
		return errors.Wrap(err, "extract.color_model")
	}
	return c.validateLogging()
}

func (c *Config) validateVideo() error {
	if c.Video.Width <= 0 || c.Video.Width > maxFrameDimension {
		return errors.Newf("video.width must be between 1 and %d", maxFrameDimension)
	}
	if c.Video.Height <= 0 || c.Video.Height > maxFrameDimension {
		return errors.Newf("video.height must be between 1 and %d", maxFrameDimension)
	}
	return nil
}

func (c *Config) validateEncoding() error {
	if _, err := c.DefaultPosition(); err != nil {
		return errors.Wrap(err, "encoding.default_offset")
	}
	if c.Encoding.Workers < 1 || c.Encoding.Workers > maxWorkers {
		return errors.Newf("encoding.workers must be between 1 and %d", maxWorkers)
	}
	return nil
}

func (c *Config) validateLogging() error {
	switch c.Logging.Format {
	case "console", "json":
	default:
		return errors.Newf("logging.format must be console or json, got %q", c.Logging.Format)
	}
	switch c.Logging.Level {
	case "debug", "info", "warn", "error":
	default:
		return errors.Newf("logging.level must be debug, info, warn or error, got %q", c.Logging.Level)
	}
	return nil
}
