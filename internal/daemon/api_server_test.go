package daemon

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"stageflow/internal/api"
	"stageflow/internal/reconcile"
	"stageflow/internal/snapshot"
	"stageflow/internal/testsupport"
)

type failingLoader struct {
	err error
}

func (l failingLoader) Load(context.Context, string) (*reconcile.Snapshot, error) {
	return nil, l.err
}

func newTestServer(t *testing.T, loader api.SnapshotLoader, opts ...testsupport.ConfigOption) *apiServer {
	t.Helper()
	cfg := testsupport.NewConfig(t, opts...)
	if loader == nil {
		loader = snapshot.NewLoader(testsupport.SampleDataset(), snapshot.Options{
			Clock: func() time.Time { return testsupport.FixtureNow },
		})
	}
	reports := api.NewReportService(loader, reconcile.New(reconcile.Options{}), testsupport.FixtureWorkspace)
	d, err := New(cfg, reports, nil)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	return d.server
}

func serve(srv *apiServer, req *http.Request) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	srv.handler.ServeHTTP(w, req)
	return w
}

func TestAPIServerReports(t *testing.T) {
	srv := newTestServer(t, nil)

	tests := []struct {
		path      string
		kind      string
		wantCount int
	}{
		{"/api/reports/stuck", "stuck", 3},
		{"/api/reports/wip", "wip", 1},
		{"/api/reports/transitions", "wip", 1},
		{"/api/reports/bottlenecks", "bottlenecks", 1},
	}
	for _, tc := range tests {
		t.Run(tc.path, func(t *testing.T) {
			w := serve(srv, httptest.NewRequest(http.MethodGet, tc.path, nil))
			if w.Code != http.StatusOK {
				t.Fatalf("expected 200 OK, got %d: %s", w.Code, w.Body.String())
			}
			var resp api.ReportResponse
			if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
				t.Fatalf("failed to decode response: %v", err)
			}
			if resp.Kind != tc.kind || resp.Count != tc.wantCount {
				t.Fatalf("unexpected report kind=%q count=%d", resp.Kind, resp.Count)
			}
			if resp.WorkspaceID != testsupport.FixtureWorkspace {
				t.Fatalf("unexpected workspace %q", resp.WorkspaceID)
			}
		})
	}
}

func TestAPIServerWIPConservesTransfers(t *testing.T) {
	srv := newTestServer(t, nil)
	w := serve(srv, httptest.NewRequest(http.MethodGet, "/api/reports/wip", nil))
	var resp api.ReportResponse
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	tr := resp.Transitions[0]
	if tr.FromStageID != "print" || tr.ToStageID != "cut" {
		t.Fatalf("unexpected transition %+v", tr)
	}
	if tr.Quantity != 2100 || tr.JobCount != 3 {
		t.Fatalf("expected 2100 sheets over 3 jobs, got %v over %d", tr.Quantity, tr.JobCount)
	}
}

func TestAPIServerUnknownReport(t *testing.T) {
	srv := newTestServer(t, nil)
	w := serve(srv, httptest.NewRequest(http.MethodGet, "/api/reports/velocity", nil))
	if w.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", w.Code)
	}
	var resp api.ErrorResponse
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("failed to decode error: %v", err)
	}
	if resp.Error == "" || resp.RequestID == "" {
		t.Fatalf("error body should carry message and request id: %+v", resp)
	}
}

func TestAPIServerRequestID(t *testing.T) {
	srv := newTestServer(t, nil)

	req := httptest.NewRequest(http.MethodGet, "/api/health", nil)
	req.Header.Set(requestIDHeader, "trace-123")
	w := serve(srv, req)
	if got := w.Header().Get(requestIDHeader); got != "trace-123" {
		t.Fatalf("expected echoed request id, got %q", got)
	}

	w = serve(srv, httptest.NewRequest(http.MethodGet, "/api/health", nil))
	if got := w.Header().Get(requestIDHeader); len(got) != 36 {
		t.Fatalf("expected generated uuid request id, got %q", got)
	}
}

func TestAPIServerAuth(t *testing.T) {
	srv := newTestServer(t, nil, testsupport.WithAPIToken("s3cret"))

	tests := []struct {
		name   string
		path   string
		header string
		want   int
	}{
		{"health is open", "/api/health", "", http.StatusOK},
		{"missing token", "/api/reports/stuck", "", http.StatusUnauthorized},
		{"wrong token", "/api/reports/stuck", "Bearer nope", http.StatusUnauthorized},
		{"wrong scheme", "/api/reports/stuck", "Basic s3cret", http.StatusUnauthorized},
		{"valid token", "/api/reports/stuck", "Bearer s3cret", http.StatusOK},
		{"status needs token", "/api/status", "", http.StatusUnauthorized},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, tc.path, nil)
			if tc.header != "" {
				req.Header.Set("Authorization", tc.header)
			}
			w := serve(srv, req)
			if w.Code != tc.want {
				t.Fatalf("expected %d, got %d", tc.want, w.Code)
			}
		})
	}
}

func TestAPIServerJobPlan(t *testing.T) {
	srv := newTestServer(t, nil)

	w := serve(srv, httptest.NewRequest(http.MethodGet, "/api/jobs/job-transfer/plan", nil))
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200 OK, got %d: %s", w.Code, w.Body.String())
	}
	var plan api.JobPlanResponse
	if err := json.Unmarshal(w.Body.Bytes(), &plan); err != nil {
		t.Fatalf("failed to decode plan: %v", err)
	}
	if len(plan.Stages) != 3 || plan.Stages[1].TransferQuantity != 500 || plan.Stages[1].AuthenticOutput != 0 {
		t.Fatalf("unexpected plan %+v", plan.Stages)
	}
	if len(plan.TransferIssues) != 0 {
		t.Fatalf("valid transfer should not be flagged: %+v", plan.TransferIssues)
	}

	w = serve(srv, httptest.NewRequest(http.MethodGet, "/api/jobs/job-done/plan", nil))
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200 OK for a finished job, got %d: %s", w.Code, w.Body.String())
	}
	var done api.JobPlanResponse
	if err := json.Unmarshal(w.Body.Bytes(), &done); err != nil {
		t.Fatalf("failed to decode plan: %v", err)
	}
	if done.Status != "done" || done.Stages[0].AuthenticOutput != 800 {
		t.Fatalf("finished job should show its recorded print output, got %+v", done.Stages)
	}

	w = serve(srv, httptest.NewRequest(http.MethodGet, "/api/jobs/nope/plan", nil))
	if w.Code != http.StatusNotFound {
		t.Fatalf("expected 404 for unknown job, got %d", w.Code)
	}
}

func TestAPIServerLoaderFailure(t *testing.T) {
	srv := newTestServer(t, failingLoader{err: errors.New("connection refused")})
	w := serve(srv, httptest.NewRequest(http.MethodGet, "/api/reports/occupancy", nil))
	if w.Code != http.StatusBadGateway {
		t.Fatalf("expected 502, got %d", w.Code)
	}

	srv = newTestServer(t, failingLoader{err: context.DeadlineExceeded})
	w = serve(srv, httptest.NewRequest(http.MethodGet, "/api/reports/occupancy", nil))
	if w.Code != http.StatusGatewayTimeout {
		t.Fatalf("expected 504, got %d", w.Code)
	}
}

func TestAPIServerRejectsOtherMethods(t *testing.T) {
	srv := newTestServer(t, nil)
	w := serve(srv, httptest.NewRequest(http.MethodPost, "/api/reports/stuck", nil))
	if w.Code != http.StatusMethodNotAllowed {
		t.Fatalf("expected 405, got %d", w.Code)
	}
}
