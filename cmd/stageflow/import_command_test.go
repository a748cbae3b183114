package main

import (
	"encoding/json"
	"path/filepath"
	"strings"
	"testing"

	"github.com/gofrs/flock"

	"stageflow/internal/api"
	"stageflow/internal/store"
	"stageflow/internal/testsupport"
)

func writeSampleExport(t *testing.T, env *cliTestEnv) string {
	t.Helper()
	path := filepath.Join(env.baseDir, "export.json")
	testsupport.WriteJSON(t, path, testsupport.SampleDocument())
	return path
}

func TestImportThenReportFromStore(t *testing.T) {
	env := setupCLITestEnv(t)
	export := writeSampleExport(t, env)

	out, _, err := runCLI(t, []string{"import", export}, env.configPath)
	if err != nil {
		t.Fatalf("import: %v", err)
	}
	requireContains(t, out, "Batch: ")
	requireContains(t, out, "Runs")

	out, _, err = runCLI(t, []string{"stuck", "--json"}, env.configPath)
	if err != nil {
		t.Fatalf("stuck: %v", err)
	}
	var resp api.ReportResponse
	if err := json.Unmarshal([]byte(out), &resp); err != nil {
		t.Fatalf("decode stuck output: %v", err)
	}
	if resp.Count != 3 {
		t.Fatalf("expected 3 stuck jobs from the store, got %d", resp.Count)
	}
}

func TestImportJSONOutput(t *testing.T) {
	env := setupCLITestEnv(t)
	export := writeSampleExport(t, env)

	out, _, err := runCLI(t, []string{"import", export, "--json"}, env.configPath)
	if err != nil {
		t.Fatalf("import: %v", err)
	}
	var result store.ImportResult
	if err := json.Unmarshal([]byte(out), &result); err != nil {
		t.Fatalf("decode import output: %v", err)
	}
	if result.Jobs != 6 || result.Runs != 7 || result.BatchID == "" {
		t.Fatalf("unexpected import result %+v", result)
	}
}

func TestImportRejectsConcurrentImport(t *testing.T) {
	env := setupCLITestEnv(t)
	export := writeSampleExport(t, env)
	if err := env.cfg.EnsureDirectories(); err != nil {
		t.Fatalf("ensure directories: %v", err)
	}

	held := flock.New(env.cfg.LockPath(importLockName))
	locked, err := held.TryLock()
	if err != nil || !locked {
		t.Fatalf("pre-acquire lock: locked=%v err=%v", locked, err)
	}
	defer held.Unlock()

	_, _, err = runCLI(t, []string{"import", export}, env.configPath)
	if err == nil || !strings.Contains(err.Error(), "already running") {
		t.Fatalf("expected lock contention error, got %v", err)
	}
}

func TestImportMissingFile(t *testing.T) {
	env := setupCLITestEnv(t)
	_, _, err := runCLI(t, []string{"import", filepath.Join(env.baseDir, "nope.json")}, env.configPath)
	if err == nil {
		t.Fatal("expected error for missing export")
	}
}
