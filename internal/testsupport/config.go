package testsupport

import (
	"path/filepath"
	"testing"

	"stageflow/internal/config"
)

// ConfigOption allows callers to customize the generated test configuration.
type ConfigOption func(*configBuilder)

type configBuilder struct {
	t       testing.TB
	baseDir string
	cfg     *config.Config
}

// NewConfig produces a config seeded with unique temp directories per test.
// It defaults common fields and applies any provided options.
func NewConfig(t testing.TB, opts ...ConfigOption) *config.Config {
	t.Helper()

	base := t.TempDir()
	cfgVal := config.Default()
	cfgVal.Paths.DataDir = filepath.Join(base, "data")
	cfgVal.Paths.LogDir = filepath.Join(base, "logs")
	cfgVal.API.Bind = "127.0.0.1:0"
	cfgVal.Logging.Level = "error"

	builder := &configBuilder{
		t:       t,
		baseDir: base,
		cfg:     &cfgVal,
	}

	for _, opt := range opts {
		opt(builder)
	}

	if err := builder.cfg.Validate(); err != nil {
		t.Fatalf("test config invalid: %v", err)
	}
	return builder.cfg
}

// WithAPIToken sets the bearer token on the test config.
func WithAPIToken(token string) ConfigOption {
	return func(b *configBuilder) {
		b.cfg.API.Token = token
	}
}

// WithWorkspace sets the default workspace.
func WithWorkspace(workspaceID string) ConfigOption {
	return func(b *configBuilder) {
		b.cfg.Source.Workspace = workspaceID
	}
}

// WithDatasetFile writes the sample dataset into the temp directory and
// points the dataset driver at it.
func WithDatasetFile() ConfigOption {
	return func(b *configBuilder) {
		path := filepath.Join(b.baseDir, "workspace.json")
		WriteJSON(b.t, path, SampleDocument())
		b.cfg.Source.Driver = config.DriverDataset
		b.cfg.Source.DatasetPath = path
	}
}

// WithBand overrides the completion band tolerances.
func WithBand(lower, upper float64) ConfigOption {
	return func(b *configBuilder) {
		b.cfg.Reconcile.LowerTolerance = lower
		b.cfg.Reconcile.UpperTolerance = upper
	}
}

// BaseDir returns the root temp directory backing the generated config.
func BaseDir(cfg *config.Config) string {
	return filepath.Dir(cfg.Paths.DataDir)
}

// WithNtfyTopic points notifications at topic, typically an httptest server URL.
func WithNtfyTopic(topic string) ConfigOption {
	return func(b *configBuilder) {
		b.cfg.Notifications.NtfyTopic = topic
	}
}
