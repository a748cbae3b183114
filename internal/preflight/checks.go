package preflight

import (
	"context"
	"errors"
	"fmt"
	"net"
	"os"
	"strings"
	"time"

	"golang.org/x/sys/unix"

	"stageflow/internal/dataset"
	"stageflow/internal/pgstore"
	"stageflow/internal/store"
)

const sourceTimeout = 5 * time.Second

// CheckDirectoryAccess verifies that the directory exists and is readable/writable.
func CheckDirectoryAccess(name, path string) Result {
	info, err := os.Stat(path)
	if err != nil {
		if os.IsNotExist(err) {
			return Result{Name: name, Detail: fmt.Sprintf("%s (error: does not exist)", path)}
		}
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: stat: %v)", path, err)}
	}
	if !info.IsDir() {
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: is not a directory)", path)}
	}
	if err := unix.Access(path, unix.R_OK|unix.W_OK|unix.X_OK); err != nil {
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: insufficient permissions: %v)", path, err)}
	}
	return Result{Name: name, Passed: true, Detail: fmt.Sprintf("%s (read/write ok)", path)}
}

// CheckSQLite opens the local store read path and reports its schema and
// record totals. A missing database file fails without being created.
func CheckSQLite(ctx context.Context, path string) Result {
	const name = "SQLite store"

	if _, err := os.Stat(path); err != nil {
		if os.IsNotExist(err) {
			return Result{Name: name, Detail: fmt.Sprintf("%s (no database yet, run stageflow import)", path)}
		}
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: stat: %v)", path, err)}
	}

	checkCtx, cancel := context.WithTimeout(ctx, sourceTimeout)
	defer cancel()

	st, err := store.OpenPath(path)
	if err != nil {
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: %v)", path, err)}
	}
	defer st.Close()

	version, err := st.SchemaVersion(checkCtx)
	if err != nil {
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: %v)", path, err)}
	}
	counts, err := st.Counts(checkCtx)
	if err != nil {
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: %v)", path, err)}
	}
	return Result{
		Name:   name,
		Passed: true,
		Detail: fmt.Sprintf("schema %s, %d jobs, %d runs", version, counts.Jobs, counts.Runs),
	}
}

// CheckPostgres connects with a single-connection pool and pings.
func CheckPostgres(ctx context.Context, dsn string) Result {
	const name = "PostgreSQL"

	if strings.TrimSpace(dsn) == "" {
		return Result{Name: name, Detail: "missing dsn"}
	}

	checkCtx, cancel := context.WithTimeout(ctx, sourceTimeout)
	defer cancel()

	pg, err := pgstore.Open(checkCtx, dsn, 1)
	if err != nil {
		return Result{Name: name, Detail: summarizeSourceError(err)}
	}
	defer pg.Close()
	return Result{Name: name, Passed: true, Detail: "Reachable"}
}

// CheckDataset decodes the dataset document and reports its size.
func CheckDataset(path string) Result {
	const name = "Dataset file"

	if strings.TrimSpace(path) == "" {
		return Result{Name: name, Detail: "missing dataset_path"}
	}
	ds, err := dataset.Load(path)
	if err != nil {
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: %v)", path, err)}
	}
	return Result{
		Name:   name,
		Passed: true,
		Detail: fmt.Sprintf("%s (%d jobs, %d runs)", path, len(ds.Jobs), len(ds.Runs)),
	}
}

// summarizeSourceError produces a human-readable summary for connection failures.
func summarizeSourceError(err error) string {
	if errors.Is(err, context.DeadlineExceeded) {
		return "connection timed out (database unresponsive)"
	}
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return "connection timed out (database unreachable)"
	}
	return err.Error()
}
