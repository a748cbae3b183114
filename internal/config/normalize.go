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
	if err := c.normalizeSource(); err != nil {
		return err
	}
	c.normalizeReconcile()
	c.normalizeAPI()
	c.normalizeLogging()
	c.Notifications.NtfyTopic = strings.TrimSpace(c.Notifications.NtfyTopic)
	if c.Notifications.RequestTimeout == 0 {
		c.Notifications.RequestTimeout = defaultNtfyTimeout
	}
	return nil
}

func (c *Config) normalizePaths() error {
	var err error
	if strings.TrimSpace(c.Paths.DataDir) == "" {
		c.Paths.DataDir = defaultDataDir
	}
	if c.Paths.DataDir, err = expandPath(c.Paths.DataDir); err != nil {
		return fmt.Errorf("paths.data_dir: %w", err)
	}
	if strings.TrimSpace(c.Paths.LogDir) == "" {
		c.Paths.LogDir = defaultLogDir
	}
	if c.Paths.LogDir, err = expandPath(c.Paths.LogDir); err != nil {
		return fmt.Errorf("paths.log_dir: %w", err)
	}
	return nil
}

func (c *Config) normalizeSource() error {
	c.Source.Driver = strings.ToLower(strings.TrimSpace(c.Source.Driver))
	switch c.Source.Driver {
	case "":
		c.Source.Driver = defaultSourceDriver
	case "postgresql", "pg":
		c.Source.Driver = DriverPostgres
	case "sqlite3":
		c.Source.Driver = DriverSQLite
	}
	c.Source.DSN = strings.TrimSpace(c.Source.DSN)
	if c.Source.DSN == "" {
		if value, ok := os.LookupEnv("STAGEFLOW_DSN"); ok {
			c.Source.DSN = strings.TrimSpace(value)
		}
	}
	c.Source.Workspace = strings.TrimSpace(c.Source.Workspace)
	if path := strings.TrimSpace(c.Source.DatasetPath); path != "" {
		expanded, err := expandPath(path)
		if err != nil {
			return fmt.Errorf("source.dataset_path: %w", err)
		}
		c.Source.DatasetPath = expanded
	}
	return nil
}

func (c *Config) normalizeReconcile() {
	if c.Reconcile.FetchConcurrency == 0 {
		c.Reconcile.FetchConcurrency = defaultFetchConcurrency
	}
}

func (c *Config) normalizeAPI() {
	c.API.Bind = strings.TrimSpace(c.API.Bind)
	if c.API.Bind == "" {
		c.API.Bind = defaultAPIBind
	}
	c.API.Token = strings.TrimSpace(c.API.Token)
	if c.API.Token == "" {
		if value, ok := os.LookupEnv("STAGEFLOW_API_TOKEN"); ok {
			c.API.Token = strings.TrimSpace(value)
		}
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
