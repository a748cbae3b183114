package main

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"sync"

	"github.com/spf13/cobra"

	"stageflow/internal/api"
	"stageflow/internal/config"
	"stageflow/internal/dataset"
	"stageflow/internal/logging"
	"stageflow/internal/pgstore"
	"stageflow/internal/reconcile"
	"stageflow/internal/snapshot"
	"stageflow/internal/store"
)

type commandContext struct {
	configFlag   *string
	logLevelFlag *string

	configOnce   sync.Once
	config       *config.Config
	configPath   string
	configFound  bool
	configErr    error

	loggerOnce sync.Once
	logger     *slog.Logger
	loggerErr  error
}

func newCommandContext(configFlag, logLevelFlag *string) *commandContext {
	return &commandContext{
		configFlag:   configFlag,
		logLevelFlag: logLevelFlag,
	}
}

func (c *commandContext) ensureConfig() (*config.Config, error) {
	c.configOnce.Do(func() {
		var path string
		if c.configFlag != nil {
			path = strings.TrimSpace(*c.configFlag)
		}
		cfg, resolved, exists, err := config.Load(path)
		if err != nil {
			c.configErr = err
			return
		}
		if c.logLevelFlag != nil && strings.TrimSpace(*c.logLevelFlag) != "" {
			cfg.Logging.Level = strings.ToLower(strings.TrimSpace(*c.logLevelFlag))
			if err := cfg.Validate(); err != nil {
				c.configErr = err
				return
			}
		}
		if err := cfg.EnsureDirectories(); err != nil {
			c.configErr = err
			return
		}
		c.config = cfg
		c.configPath = resolved
		c.configFound = exists
	})
	return c.config, c.configErr
}

func (c *commandContext) ensureLogger() (*slog.Logger, error) {
	c.loggerOnce.Do(func() {
		cfg, err := c.ensureConfig()
		if err != nil {
			c.loggerErr = err
			return
		}
		logger, err := logging.NewFromConfig(cfg)
		if err != nil {
			c.loggerErr = fmt.Errorf("init logger: %w", err)
			return
		}
		c.logger = logger
	})
	return c.logger, c.loggerErr
}

// openSource opens the configured production data source. The returned
// release func is never nil.
func (c *commandContext) openSource(ctx context.Context) (snapshot.Source, func(), error) {
	cfg, err := c.ensureConfig()
	if err != nil {
		return nil, func() {}, err
	}
	switch cfg.Source.Driver {
	case config.DriverSQLite:
		st, err := store.Open(cfg)
		if err != nil {
			return nil, func() {}, fmt.Errorf("open store: %w", err)
		}
		return st, func() { _ = st.Close() }, nil
	case config.DriverPostgres:
		pg, err := pgstore.Open(ctx, cfg.Source.DSN, cfg.Reconcile.FetchConcurrency)
		if err != nil {
			return nil, func() {}, err
		}
		return pg, func() { _ = pg.Close() }, nil
	case config.DriverDataset:
		ds, err := dataset.Load(cfg.Source.DatasetPath)
		if err != nil {
			return nil, func() {}, err
		}
		return ds, func() {}, nil
	default:
		return nil, func() {}, fmt.Errorf("source.driver: unsupported value %q", cfg.Source.Driver)
	}
}

func (c *commandContext) engine(logger *slog.Logger) (*reconcile.Engine, error) {
	cfg, err := c.ensureConfig()
	if err != nil {
		return nil, err
	}
	band := reconcile.Band{Lower: cfg.Reconcile.LowerTolerance, Upper: cfg.Reconcile.UpperTolerance}
	return reconcile.New(reconcile.Options{Band: &band, Logger: logger}), nil
}

// withReports opens the source for the duration of fn.
func (c *commandContext) withReports(ctx context.Context, fn func(*api.ReportService) error) error {
	cfg, err := c.ensureConfig()
	if err != nil {
		return err
	}
	logger, err := c.ensureLogger()
	if err != nil {
		return err
	}
	source, release, err := c.openSource(ctx)
	if err != nil {
		return err
	}
	defer release()

	engine, err := c.engine(logger)
	if err != nil {
		return err
	}
	loader := snapshot.NewLoader(source, snapshot.Options{
		Concurrency: cfg.Reconcile.FetchConcurrency,
		Logger:      logger,
	})
	return fn(api.NewReportService(loader, engine, cfg.Source.Workspace))
}

func shouldSkipConfig(cmd *cobra.Command) bool {
	for c := cmd; c != nil; c = c.Parent() {
		if c.Annotations != nil && c.Annotations["skipConfigLoad"] == "true" {
			return true
		}
	}
	return false
}

func yesNo(value bool) string {
	if value {
		return "yes"
	}
	return "no"
}
