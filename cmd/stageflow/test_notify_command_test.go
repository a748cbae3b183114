package main

import (
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"stageflow/internal/testsupport"
)

func newNtfyRecorder(t *testing.T) (*httptest.Server, func() []string) {
	t.Helper()
	var (
		mu     sync.Mutex
		bodies []string
	)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		mu.Lock()
		bodies = append(bodies, string(body))
		mu.Unlock()
	}))
	t.Cleanup(srv.Close)
	return srv, func() []string {
		mu.Lock()
		defer mu.Unlock()
		return append([]string(nil), bodies...)
	}
}

func TestStuckNotify(t *testing.T) {
	srv, bodies := newNtfyRecorder(t)
	env := setupCLITestEnv(t, testsupport.WithDatasetFile(), testsupport.WithNtfyTopic(srv.URL))

	if _, _, err := runCLI(t, []string{"stuck", "--notify"}, env.configPath); err != nil {
		t.Fatalf("stuck --notify: %v", err)
	}
	got := bodies()
	if len(got) != 1 || !strings.HasPrefix(got[0], "3 stuck jobs in ws-demo") {
		t.Fatalf("unexpected notifications %q", got)
	}
}

func TestNotifyRequiresTopic(t *testing.T) {
	env := setupCLITestEnv(t, testsupport.WithDatasetFile())

	if _, _, err := runCLI(t, []string{"bottlenecks", "--notify"}, env.configPath); err == nil {
		t.Fatal("expected --notify without a topic to fail")
	}
	if _, _, err := runCLI(t, []string{"test-notify"}, env.configPath); err == nil {
		t.Fatal("expected test-notify without a topic to fail")
	}
	if _, _, err := runCLI(t, []string{"wip", "--notify"}, env.configPath); err == nil {
		t.Fatal("wip has no --notify flag")
	}
}

func TestTestNotifyCommand(t *testing.T) {
	srv, bodies := newNtfyRecorder(t)
	env := setupCLITestEnv(t, testsupport.WithNtfyTopic(srv.URL))

	out, _, err := runCLI(t, []string{"test-notify"}, env.configPath)
	if err != nil {
		t.Fatalf("test-notify: %v", err)
	}
	requireContains(t, out, "Test notification sent")
	if got := bodies(); len(got) != 1 || got[0] != "Notification system test" {
		t.Fatalf("unexpected notifications %q", got)
	}
}
