package config

import (
	"errors"
	"fmt"
	"regexp"
)

var assColorRE = regexp.MustCompile(`^&H[0-9A-Fa-f]{8}$`)

// Validate ensures the configuration is usable.
func (c *Config) Validate() error {
	if err := c.validateSegment(); err != nil {
		return err
	}
	if err := c.validateMerge(); err != nil {
		return err
	}
	if err := c.validatePosition(); err != nil {
		return err
	}
	if err := c.validateStyle(); err != nil {
		return err
	}
	if err := c.validateOutput(); err != nil {
		return err
	}
	if err := c.validateServer(); err != nil {
		return err
	}
	if err := c.validateLogging(); err != nil {
		return err
	}
	return nil
}

func (c *Config) validateSegment() error {
	if c.Segment.PauseThreshold <= 0 {
		return errors.New("segment.pause_threshold must be positive")
	}
	if c.Segment.MaxWords <= 0 {
		return errors.New("segment.max_words must be positive")
	}
	if c.Segment.MaxDuration <= 0 {
		return errors.New("segment.max_duration must be positive")
	}
	return nil
}

func (c *Config) validateMerge() error {
	if c.Merge.MaxGap < 0 {
		return errors.New("merge.max_gap must not be negative")
	}
	if c.Merge.MaxWords <= 0 {
		return errors.New("merge.max_words must be positive")
	}
	if c.Merge.MinDuration <= 0 {
		return errors.New("merge.min_duration must be positive")
	}
	return nil
}

func (c *Config) validatePosition() error {
	if c.Position.MinConfidence > 100 {
		return errors.New("position.min_confidence must be at most 100")
	}
	if c.Position.SamplesPerCue < 1 {
		return errors.New("position.samples_per_cue must be at least 1")
	}
	if c.Position.Tolerance < 0 {
		return errors.New("position.tolerance must not be negative")
	}
	return nil
}

func (c *Config) validateStyle() error {
	colors := map[string]string{
		"style.primary_color":   c.Style.PrimaryColor,
		"style.secondary_color": c.Style.SecondaryColor,
		"style.outline_color":   c.Style.OutlineColor,
		"style.back_color":      c.Style.BackColor,
	}
	for key, value := range colors {
		if value == "" {
			continue
		}
		if !assColorRE.MatchString(value) {
			return fmt.Errorf("%s must look like &HAABBGGRR, got %q", key, value)
		}
	}
	if c.Style.FontSize < 0 {
		return errors.New("style.font_size must not be negative")
	}
	if c.Style.OutlineWidth < 0 || c.Style.ShadowDepth < 0 {
		return errors.New("style.outline_width and style.shadow_depth must not be negative")
	}
	if c.Style.PlayResX < 0 || c.Style.PlayResY < 0 {
		return errors.New("style.play_res_x and style.play_res_y must not be negative")
	}
	return nil
}

func (c *Config) validateOutput() error {
	formats, err := c.OutputFormats()
	if err != nil {
		return fmt.Errorf("output.formats: %w", err)
	}
	if len(formats) == 0 {
		return errors.New("output.formats must list at least one format")
	}
	return nil
}

func (c *Config) validateServer() error {
	if c.Server.MaxBodyBytes <= 0 {
		return errors.New("server.max_body_bytes must be positive")
	}
	return nil
}

func (c *Config) validateLogging() error {
	switch c.Logging.Format {
	case "console", "json":
	default:
		return fmt.Errorf("logging.format: unsupported value %q", c.Logging.Format)
	}
	switch c.Logging.Level {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("logging.level: unsupported value %q", c.Logging.Level)
	}
	if c.Logging.MaxSizeMB < 0 || c.Logging.MaxBackups < 0 || c.Logging.MaxAgeDays < 0 {
		return errors.New("logging rotation limits must not be negative")
	}
	return nil
}
