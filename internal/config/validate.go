package config

import (
	"errors"
	"fmt"
)

// Validate ensures the configuration is usable.
func (c *Config) Validate() error {
	if err := c.validateOutput(); err != nil {
		return err
	}
	if err := c.validateDenoise(); err != nil {
		return err
	}
	if err := c.validateLogging(); err != nil {
		return err
	}
	return nil
}

func (c *Config) validateOutput() error {
	if c.Output.BitRate < 8000 || c.Output.BitRate > 320000 {
		return fmt.Errorf("output.bit_rate must be between 8000 and 320000, got %d", c.Output.BitRate)
	}
	if c.Output.Channels != 1 && c.Output.Channels != 2 {
		return fmt.Errorf("output.channels must be 1 or 2, got %d", c.Output.Channels)
	}
	return nil
}

func (c *Config) validateDenoise() error {
	if c.Denoise.SuppressionDB >= 0 {
		return fmt.Errorf("denoise.suppression_db must be negative (attenuation in dB), got %d", c.Denoise.SuppressionDB)
	}
	if c.Denoise.SuppressionDB < -90 {
		return fmt.Errorf("denoise.suppression_db must be at least -90, got %d", c.Denoise.SuppressionDB)
	}
	return nil
}

func (c *Config) validateLogging() error {
	switch c.Logging.Format {
	case "console", "json":
	default:
		return fmt.Errorf("logging.format must be console or json, got %q", c.Logging.Format)
	}
	switch c.Logging.Level {
	case "debug", "info", "warn", "error":
	default:
		return errors.New("logging.level must be one of debug, info, warn, error")
	}
	return nil
}
