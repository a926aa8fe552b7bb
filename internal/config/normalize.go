package config

import (
	"fmt"
	"os"
	"strings"
)

func (c *Config) normalize() error {
	if err := c.normalizePaths(); err != nil {
		return err
	}
	c.normalizeTranslation()
	c.normalizeLogging()
	return nil
}

func (c *Config) normalizePaths() error {
	var err error
	if c.Output.Dir, err = expandPath(c.Output.Dir); err != nil {
		return fmt.Errorf("output.dir: %w", err)
	}
	if c.Position.RegionsFile, err = expandPath(c.Position.RegionsFile); err != nil {
		return fmt.Errorf("position.regions_file: %w", err)
	}
	if c.Whisper.Model, err = expandPath(c.Whisper.Model); err != nil {
		return fmt.Errorf("whisper.model: %w", err)
	}
	if strings.TrimSpace(c.Whisper.CacheDir) == "" {
		c.Whisper.CacheDir = defaultWhisperCacheDir
	}
	if c.Whisper.CacheDir, err = expandPath(c.Whisper.CacheDir); err != nil {
		return fmt.Errorf("whisper.cache_dir: %w", err)
	}
	if strings.TrimSpace(c.Tasks.DBPath) == "" {
		c.Tasks.DBPath = defaultTasksDBPath
	}
	if c.Tasks.DBPath, err = expandPath(c.Tasks.DBPath); err != nil {
		return fmt.Errorf("tasks.db_path: %w", err)
	}
	if c.Logging.File, err = expandPath(c.Logging.File); err != nil {
		return fmt.Errorf("logging.file: %w", err)
	}
	c.Server.Listen = strings.TrimSpace(c.Server.Listen)
	if c.Server.Listen == "" {
		c.Server.Listen = defaultServerListen
	}
	return nil
}

func (c *Config) normalizeTranslation() {
	if c.Translation.APIKey == "" {
		if value, ok := os.LookupEnv("OPENROUTER_API_KEY"); ok {
			c.Translation.APIKey = strings.TrimSpace(value)
		}
	}
	if value := strings.TrimSpace(os.Getenv("OPENROUTER_MODEL")); value != "" {
		c.Translation.Model = value
	}
	if value := strings.TrimSpace(os.Getenv("OPENROUTER_BASE_URL")); value != "" {
		c.Translation.BaseURL = value
	}
	if value := strings.TrimSpace(os.Getenv("OPENROUTER_ALLOWED_HOSTS")); value != "" {
		c.Translation.AllowedHosts = nil
		for _, host := range strings.Split(value, ",") {
			if host = strings.TrimSpace(host); host != "" {
				c.Translation.AllowedHosts = append(c.Translation.AllowedHosts, host)
			}
		}
	}
	c.Translation.TargetLanguage = strings.TrimSpace(c.Translation.TargetLanguage)
	c.Translation.BaseURL = strings.TrimSpace(c.Translation.BaseURL)
	if c.Translation.BaseURL == "" {
		c.Translation.BaseURL = defaultTranslateURL
	}
	if strings.TrimSpace(c.Translation.Model) == "" {
		c.Translation.Model = defaultTranslateModel
	}
}

func (c *Config) normalizeLogging() {
	c.Logging.Format = strings.ToLower(strings.TrimSpace(c.Logging.Format))
	if c.Logging.Format == "" {
		c.Logging.Format = defaultLogFormat
	}
	c.Logging.Level = strings.ToLower(strings.TrimSpace(c.Logging.Level))
	if c.Logging.Level == "" {
		c.Logging.Level = defaultLogLevel
	}
}
