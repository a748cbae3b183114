package preflight

import (
	"context"
	"fmt"
	"net"
	"strings"

	"stageflow/internal/config"
)

// CheckSourceFromConfig dispatches to the check for the configured driver.
func CheckSourceFromConfig(ctx context.Context, cfg *config.Config) Result {
	if cfg == nil {
		return Result{Name: "Source", Detail: "Unknown"}
	}
	switch cfg.Source.Driver {
	case config.DriverSQLite:
		return CheckSQLite(ctx, cfg.DatabasePath())
	case config.DriverPostgres:
		return CheckPostgres(ctx, cfg.Source.DSN)
	case config.DriverDataset:
		return CheckDataset(cfg.Source.DatasetPath)
	default:
		return Result{Name: "Source", Detail: fmt.Sprintf("unsupported driver %q", cfg.Source.Driver)}
	}
}

// CheckAPIExposure flags a report server that would listen beyond loopback
// without a bearer token.
func CheckAPIExposure(cfg *config.Config) Result {
	const name = "API bind"

	if cfg == nil {
		return Result{Name: name, Detail: "Unknown"}
	}
	bind := strings.TrimSpace(cfg.API.Bind)
	host, _, err := net.SplitHostPort(bind)
	if err != nil {
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: %v)", bind, err)}
	}
	if isLoopback(host) {
		return Result{Name: name, Passed: true, Detail: fmt.Sprintf("%s (loopback)", bind)}
	}
	if strings.TrimSpace(cfg.API.Token) == "" {
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: non-loopback bind requires api.token)", bind)}
	}
	return Result{Name: name, Passed: true, Detail: fmt.Sprintf("%s (token required)", bind)}
}

func isLoopback(host string) bool {
	if strings.EqualFold(host, "localhost") {
		return true
	}
	ip := net.ParseIP(host)
	return ip != nil && ip.IsLoopback()
}
