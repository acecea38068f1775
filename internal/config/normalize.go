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
	c.normalizeTMDB()
	c.normalizeEndpoints()
	c.normalizeWorkflow()
	c.Notifications.NtfyTopic = strings.TrimSpace(c.Notifications.NtfyTopic)
	c.normalizeLogging()
	return nil
}

func (c *Config) normalizePaths() error {
	if strings.TrimSpace(c.Paths.InputFile) == "" {
		c.Paths.InputFile = defaultInputFile
	}
	if strings.TrimSpace(c.Paths.OutputFile) == "" {
		c.Paths.OutputFile = defaultOutputFile
	}
	var err error
	if c.Paths.InputFile, err = expandPath(strings.TrimSpace(c.Paths.InputFile)); err != nil {
		return fmt.Errorf("paths.input_file: %w", err)
	}
	if c.Paths.OutputFile, err = expandPath(strings.TrimSpace(c.Paths.OutputFile)); err != nil {
		return fmt.Errorf("paths.output_file: %w", err)
	}
	if c.Paths.LogDir, err = expandPath(strings.TrimSpace(c.Paths.LogDir)); err != nil {
		return fmt.Errorf("paths.log_dir: %w", err)
	}
	return nil
}

func (c *Config) normalizeTMDB() {
	c.TMDB.APIKey = strings.TrimSpace(c.TMDB.APIKey)
	if c.TMDB.APIKey == "" {
		if value, ok := os.LookupEnv("TMDB_API_KEY"); ok {
			c.TMDB.APIKey = strings.TrimSpace(value)
		}
	}
	c.TMDB.BaseURL = strings.TrimRight(strings.TrimSpace(c.TMDB.BaseURL), "/")
	if c.TMDB.BaseURL == "" {
		c.TMDB.BaseURL = defaultTMDBBaseURL
	}
}

func (c *Config) normalizeEndpoints() {
	c.AniList.URL = strings.TrimSpace(c.AniList.URL)
	if c.AniList.URL == "" {
		c.AniList.URL = defaultAniListURL
	}
	c.Mapping.URL = strings.TrimSpace(c.Mapping.URL)
	if c.Mapping.URL == "" {
		c.Mapping.URL = defaultMappingURL
	}
}

func (c *Config) normalizeWorkflow() {
	if c.Workflow.ItemDelayMS == 0 {
		c.Workflow.ItemDelayMS = defaultItemDelayMS
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
	if c.Logging.FileMaxSizeMB == 0 {
		c.Logging.FileMaxSizeMB = defaultLogFileMaxSizeMB
	}
	if c.Logging.FileMaxBackups == 0 {
		c.Logging.FileMaxBackups = defaultLogFileMaxBackups
	}
	if c.Logging.FileMaxAgeDays == 0 {
		c.Logging.FileMaxAgeDays = defaultLogFileMaxAgeDays
	}
}
