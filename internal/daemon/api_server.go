package daemon

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"stageflow/internal/api"
	"stageflow/internal/config"
	"stageflow/internal/logging"
	"stageflow/internal/reconcile"
)

const (
	requestIDHeader   = "X-Request-ID"
	maxRequestIDBytes = 128
)

type apiServer struct {
	bind    string
	logger  *slog.Logger
	daemon  *Daemon
	reports *api.ReportService
	handler http.Handler

	mu       sync.Mutex
	listener net.Listener
	server   *http.Server
}

func newAPIServer(cfg *config.Config, d *Daemon, logger *slog.Logger) *apiServer {
	srv := &apiServer{
		bind:    strings.TrimSpace(cfg.API.Bind),
		logger:  logging.NewComponentLogger(logger, "api-server"),
		daemon:  d,
		reports: d.reports,
	}

	token := cfg.API.Token
	mux := http.NewServeMux()
	mux.HandleFunc("GET /api/health", srv.handleHealth)
	mux.HandleFunc("GET /api/status", authMiddleware(token, srv.handleStatus))
	mux.HandleFunc("GET /api/reports/{kind}", authMiddleware(token, srv.handleReport))
	mux.HandleFunc("GET /api/jobs/{id}/plan", authMiddleware(token, srv.handleJobPlan))
	srv.handler = srv.withRequestID(mux)

	srv.server = &http.Server{
		Handler:           srv.handler,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      60 * time.Second,
		IdleTimeout:       60 * time.Second,
	}
	return srv
}

func (s *apiServer) start(ctx context.Context) error {
	listener, err := net.Listen("tcp", s.bind)
	if err != nil {
		return fmt.Errorf("api listen: %w", err)
	}
	s.mu.Lock()
	s.listener = listener
	s.mu.Unlock()

	go func() {
		if err := s.server.Serve(listener); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logging.ErrorWithContext(s.logger, "api server error", "api_serve_failed", logging.Error(err))
		}
	}()

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = s.server.Shutdown(shutdownCtx)
	}()

	s.logger.Info("api server listening", logging.String("address", listener.Addr().String()))
	return nil
}

func (s *apiServer) stop() {
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	_ = s.server.Shutdown(shutdownCtx)

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.listener != nil {
		_ = s.listener.Close()
		s.listener = nil
	}
}

func (s *apiServer) address() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.listener == nil {
		return ""
	}
	return s.listener.Addr().String()
}

// withRequestID echoes a caller-supplied X-Request-ID or assigns a new one,
// and logs each request once it completes.
func (s *apiServer) withRequestID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := strings.TrimSpace(r.Header.Get(requestIDHeader))
		if id == "" || len(id) > maxRequestIDBytes {
			id = uuid.NewString()
		}
		w.Header().Set(requestIDHeader, id)
		r = r.WithContext(logging.WithRequestID(r.Context(), id))

		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		started := time.Now()
		next.ServeHTTP(rec, r)
		logging.WithContext(r.Context(), s.logger).Debug("api request",
			logging.String("method", r.Method),
			logging.String("path", r.URL.Path),
			logging.Int("status", rec.status),
			logging.Duration("elapsed", time.Since(started)),
		)
	})
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(status int) {
	r.status = status
	r.ResponseWriter.WriteHeader(status)
}

func (s *apiServer) handleHealth(w http.ResponseWriter, r *http.Request) {
	status := s.daemon.Status()
	s.writeJSON(w, http.StatusOK, api.HealthResponse{
		Status:    "ok",
		Source:    status.Source,
		Workspace: status.Workspace,
		Time:      time.Now().UTC().Format(time.RFC3339),
	})
}

func (s *apiServer) handleStatus(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, s.daemon.Status())
}

func (s *apiServer) handleReport(w http.ResponseWriter, r *http.Request) {
	kind, err := reconcile.ParseReportKind(r.PathValue("kind"))
	if err != nil {
		s.writeError(w, r, http.StatusNotFound, err.Error())
		return
	}
	resp, err := s.reports.Report(r.Context(), kind, r.URL.Query().Get("workspace"))
	if err != nil {
		s.writeLoadError(w, r, err)
		return
	}
	s.writeJSON(w, http.StatusOK, resp)
}

func (s *apiServer) handleJobPlan(w http.ResponseWriter, r *http.Request) {
	jobID := strings.TrimSpace(r.PathValue("id"))
	if jobID == "" {
		s.writeError(w, r, http.StatusBadRequest, "job id required")
		return
	}
	resp, err := s.reports.JobPlan(r.Context(), r.URL.Query().Get("workspace"), jobID)
	switch {
	case errors.Is(err, api.ErrJobNotFound):
		s.writeError(w, r, http.StatusNotFound, err.Error())
		return
	case errors.Is(err, api.ErrJobOffChain):
		s.writeError(w, r, http.StatusUnprocessableEntity, err.Error())
		return
	case err != nil:
		s.writeLoadError(w, r, err)
		return
	}
	s.writeJSON(w, http.StatusOK, resp)
}

func (s *apiServer) writeLoadError(w http.ResponseWriter, r *http.Request, err error) {
	if errors.Is(err, context.Canceled) {
		return
	}
	logging.ErrorWithContext(logging.WithContext(r.Context(), s.logger), "report failed", "report_failed",
		logging.String("path", r.URL.Path),
		logging.Error(err),
		logging.String(logging.FieldErrorHint, "run stageflow check to verify the configured source"),
	)
	status := http.StatusBadGateway
	if errors.Is(err, context.DeadlineExceeded) {
		status = http.StatusGatewayTimeout
	}
	s.writeError(w, r, status, err.Error())
}

func (s *apiServer) writeJSON(w http.ResponseWriter, status int, payload any) {
	if err := writeJSONResponse(w, status, payload); err != nil {
		logging.ErrorWithContext(s.logger, "failed to encode response", "api_encode_failed", logging.Error(err))
	}
}

func (s *apiServer) writeError(w http.ResponseWriter, r *http.Request, status int, message string) {
	s.writeJSON(w, status, errorBody(r, message))
}

func writeJSONResponse(w http.ResponseWriter, status int, payload any) error {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if payload == nil {
		return nil
	}
	return json.NewEncoder(w).Encode(payload)
}

func errorBody(r *http.Request, message string) api.ErrorResponse {
	id, _ := logging.RequestIDFromContext(r.Context())
	return api.ErrorResponse{Error: message, RequestID: id}
}
