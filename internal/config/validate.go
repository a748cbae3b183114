package config

import (
	"errors"
	"fmt"
)

// Validate ensures the configuration is usable.
func (c *Config) Validate() error {
	if err := c.validateSource(); err != nil {
		return err
	}
	if err := c.validateReconcile(); err != nil {
		return err
	}
	if err := c.validateLogging(); err != nil {
		return err
	}
	if c.Notifications.RequestTimeout < 0 {
		return errors.New("notifications.request_timeout must be >= 0")
	}
	return nil
}

func (c *Config) validateSource() error {
	switch c.Source.Driver {
	case DriverSQLite:
		return nil
	case DriverPostgres:
		if c.Source.DSN == "" {
			return errors.New("source.dsn is required when source.driver is postgres (or set STAGEFLOW_DSN)")
		}
		return nil
	case DriverDataset:
		if c.Source.DatasetPath == "" {
			return errors.New("source.dataset_path is required when source.driver is dataset")
		}
		return nil
	default:
		return fmt.Errorf("source.driver: unsupported value %q (expected sqlite, postgres, or dataset)", c.Source.Driver)
	}
}

func (c *Config) validateReconcile() error {
	if c.Reconcile.LowerTolerance < 0 {
		return errors.New("reconcile.lower_tolerance must be >= 0")
	}
	if c.Reconcile.UpperTolerance < 0 {
		return errors.New("reconcile.upper_tolerance must be >= 0")
	}
	if c.Reconcile.FetchConcurrency < 1 {
		return errors.New("reconcile.fetch_concurrency must be >= 1")
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
	case "debug", "info", "warn", "warning", "error":
	default:
		return fmt.Errorf("logging.level: unsupported value %q", c.Logging.Level)
	}
	return nil
}
