package config

const (
	defaultConfigPath       = "~/.config/stageflow/config.toml"
	defaultDataDir          = "~/.local/share/stageflow"
	defaultLogDir           = "~/.local/share/stageflow/logs"
	defaultSourceDriver     = DriverSQLite
	defaultLowerTolerance   = 400
	defaultUpperTolerance   = 500
	defaultFetchConcurrency = 8
	defaultAPIBind          = "127.0.0.1:7580"
	defaultLogFormat        = "console"
	defaultLogLevel         = "info"
	defaultNtfyTimeout      = 10
)

// Source drivers.
const (
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"
	DriverDataset  = "dataset"
)

// Default returns a Config populated with repository defaults.
func Default() Config {
	return Config{
		Paths: Paths{
			DataDir: defaultDataDir,
			LogDir:  defaultLogDir,
		},
		Source: Source{
			Driver: defaultSourceDriver,
		},
		Reconcile: Reconcile{
			LowerTolerance:   defaultLowerTolerance,
			UpperTolerance:   defaultUpperTolerance,
			FetchConcurrency: defaultFetchConcurrency,
		},
		API: API{
			Bind: defaultAPIBind,
		},
		Logging: Logging{
			Format: defaultLogFormat,
			Level:  defaultLogLevel,
		},
		Notifications: Notifications{
			RequestTimeout: defaultNtfyTimeout,
		},
	}
}
