package daemon

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync/atomic"

	"github.com/gofrs/flock"

	"stageflow/internal/api"
	"stageflow/internal/config"
	"stageflow/internal/logging"
)

// LockName is the lock file stem guarding the report server.
const LockName = "stageflow-serve"

// Daemon owns the report server lifecycle and enforces single-instance execution.
type Daemon struct {
	cfg     *config.Config
	logger  *slog.Logger
	reports *api.ReportService
	server  *apiServer

	lockPath string
	lock     *flock.Flock

	running atomic.Bool
	ctx     context.Context
	cancel  context.CancelFunc
}

// Status represents daemon runtime information.
type Status struct {
	Running      bool   `json:"running"`
	Address      string `json:"address,omitempty"`
	Source       string `json:"source"`
	Workspace    string `json:"workspace,omitempty"`
	LockFilePath string `json:"lockFilePath"`
}

// New constructs a daemon with initialized dependencies.
func New(cfg *config.Config, reports *api.ReportService, logger *slog.Logger) (*Daemon, error) {
	if cfg == nil || reports == nil {
		return nil, errors.New("daemon requires config and report service")
	}
	if err := cfg.EnsureDirectories(); err != nil {
		return nil, fmt.Errorf("ensure directories: %w", err)
	}

	lockPath := cfg.LockPath(LockName)
	d := &Daemon{
		cfg:      cfg,
		logger:   logging.NewComponentLogger(logger, "daemon"),
		reports:  reports,
		lockPath: lockPath,
		lock:     flock.New(lockPath),
	}
	d.server = newAPIServer(cfg, d, logger)
	return d, nil
}

// Start acquires the daemon lock and begins serving the HTTP API.
func (d *Daemon) Start(ctx context.Context) error {
	if d.running.Load() {
		return errors.New("daemon already running")
	}

	ok, err := d.lock.TryLock()
	if err != nil {
		return fmt.Errorf("acquire lock: %w", err)
	}
	if !ok {
		return errors.New("another stageflow server is already running")
	}

	d.ctx, d.cancel = context.WithCancel(ctx)
	if err := d.server.start(d.ctx); err != nil {
		_ = d.lock.Unlock()
		d.cancel()
		d.ctx = nil
		d.cancel = nil
		return err
	}

	d.running.Store(true)
	d.logger.Info("stageflow server started",
		logging.String("lock", d.lockPath),
		logging.String("address", d.server.address()),
		logging.String("source", d.cfg.Source.Driver),
	)
	return nil
}

// Stop stops serving and releases the daemon lock.
func (d *Daemon) Stop() {
	if !d.running.Load() {
		return
	}

	if d.cancel != nil {
		d.cancel()
		d.cancel = nil
	}
	d.server.stop()
	if err := d.lock.Unlock(); err != nil {
		logging.WarnWithContext(d.logger, "failed to release daemon lock", "lock_release_failed",
			logging.Error(err),
			logging.String(logging.FieldErrorHint, "remove the lock file if no server is running"),
			logging.String(logging.FieldImpact, "next server start may report a running instance"),
		)
	}
	d.ctx = nil
	d.running.Store(false)
	d.logger.Info("stageflow server stopped")
}

// Close releases resources held by the daemon.
func (d *Daemon) Close() error {
	d.Stop()
	return nil
}

// Status reports runtime information.
func (d *Daemon) Status() Status {
	status := Status{
		Running:      d.running.Load(),
		Source:       d.cfg.Source.Driver,
		Workspace:    d.cfg.Source.Workspace,
		LockFilePath: d.lockPath,
	}
	if status.Running {
		status.Address = d.server.address()
	}
	return status
}

// Address returns the listening address once started.
func (d *Daemon) Address() string {
	return d.server.address()
}
