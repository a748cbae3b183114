package notifications

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"stageflow/internal/config"
	"stageflow/internal/reconcile"
)

const userAgent = "stageflow/0.1.0"

// maxListed caps the jobs or stages named in one message body.
const maxListed = 5

// Service defines the notification surface exposed to report commands.
type Service interface {
	NotifyStuckJobs(ctx context.Context, workspaceID string, jobs []reconcile.StuckJob) error
	NotifyBottlenecks(ctx context.Context, workspaceID string, stages []reconcile.StageBottleneck) error
	NotifyError(ctx context.Context, err error, context string) error
	TestNotification(ctx context.Context) error
}

// NewService builds a notification service backed by ntfy when configured.
// When no ntfy topic is configured, a noop implementation is returned.
func NewService(cfg *config.Config) Service {
	if cfg == nil {
		return noopService{}
	}
	topic := strings.TrimSpace(cfg.Notifications.NtfyTopic)
	if topic == "" {
		return noopService{}
	}

	timeout := time.Duration(cfg.Notifications.RequestTimeout) * time.Second
	if timeout <= 0 {
		timeout = 10 * time.Second
	}

	return &ntfyService{
		endpoint: topic,
		client:   &http.Client{Timeout: timeout},
	}
}

// Enabled reports whether svc actually delivers messages.
func Enabled(svc Service) bool {
	_, noop := svc.(noopService)
	return svc != nil && !noop
}

type payload struct {
	title    string
	message  string
	tags     []string
	priority string
}

type ntfyService struct {
	endpoint string
	client   *http.Client
}

func (n *ntfyService) NotifyStuckJobs(ctx context.Context, workspaceID string, jobs []reconcile.StuckJob) error {
	if len(jobs) == 0 {
		return nil
	}
	var b strings.Builder
	fmt.Fprintf(&b, "%d stuck %s%s", len(jobs), plural(len(jobs), "job", "jobs"), workspaceSuffix(workspaceID))
	for i, job := range jobs {
		if i == maxListed {
			fmt.Fprintf(&b, "\n... and %d more", len(jobs)-maxListed)
			break
		}
		label := job.JobCode
		if label == "" {
			label = job.JobID
		}
		fmt.Fprintf(&b, "\n%s: %s -> %s, %.0f %s waiting %.1f days",
			label, job.FromStageName, job.ToStageName, job.Quantity, job.UOM, job.DaysStuck)
	}

	priority := "default"
	for _, job := range jobs {
		if job.DaysStuck >= 3 {
			priority = "high"
			break
		}
	}
	return n.send(ctx, payload{
		title:    "stageflow - Stuck Jobs",
		message:  b.String(),
		tags:     []string{"stageflow", "stuck"},
		priority: priority,
	})
}

func (n *ntfyService) NotifyBottlenecks(ctx context.Context, workspaceID string, stages []reconcile.StageBottleneck) error {
	if len(stages) == 0 {
		return nil
	}
	var b strings.Builder
	fmt.Fprintf(&b, "Top bottleneck: %s%s", stages[0].StageName, workspaceSuffix(workspaceID))
	for i, stage := range stages {
		if i == maxListed {
			break
		}
		fmt.Fprintf(&b, "\n%d. %s: %d stuck, %.0f waiting, avg %.1f days",
			i+1, stage.StageName, stage.StuckJobCount, stage.TotalWIPQuantity, stage.AvgDaysStuck)
	}
	return n.send(ctx, payload{
		title:   "stageflow - Bottlenecks",
		message: b.String(),
		tags:    []string{"stageflow", "bottleneck"},
	})
}

func (n *ntfyService) NotifyError(ctx context.Context, err error, contextLabel string) error {
	var builder strings.Builder
	builder.WriteString("Error")
	if contextLabel = strings.TrimSpace(contextLabel); contextLabel != "" {
		builder.WriteString(" with ")
		builder.WriteString(contextLabel)
	}
	builder.WriteString(": ")
	if err != nil {
		builder.WriteString(strings.TrimSpace(err.Error()))
	} else {
		builder.WriteString("unknown")
	}

	return n.send(ctx, payload{
		title:    "stageflow - Error",
		message:  builder.String(),
		tags:     []string{"stageflow", "error", "alert"},
		priority: "high",
	})
}

func (n *ntfyService) TestNotification(ctx context.Context) error {
	return n.send(ctx, payload{
		title:    "stageflow - Test",
		message:  "Notification system test",
		tags:     []string{"stageflow", "test"},
		priority: "low",
	})
}

func (n *ntfyService) send(ctx context.Context, data payload) error {
	if n == nil || n.client == nil {
		return nil
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, n.endpoint, strings.NewReader(data.message))
	if err != nil {
		return fmt.Errorf("build ntfy request: %w", err)
	}
	req.Header.Set("User-Agent", userAgent)
	req.Header.Set("Content-Type", "text/plain; charset=utf-8")
	if data.title != "" {
		req.Header.Set("Title", data.title)
	}
	if len(data.tags) > 0 {
		req.Header.Set("Tags", strings.Join(data.tags, ","))
	}
	if data.priority != "" && data.priority != "default" {
		req.Header.Set("Priority", data.priority)
	}

	resp, err := n.client.Do(req)
	if err != nil {
		return fmt.Errorf("send ntfy notification: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 2048))
		return fmt.Errorf("ntfy returned %d: %s", resp.StatusCode, strings.TrimSpace(string(body)))
	}
	_, _ = io.Copy(io.Discard, resp.Body)
	return nil
}

func workspaceSuffix(workspaceID string) string {
	if workspaceID == "" {
		return ""
	}
	return " in " + workspaceID
}

func plural(n int, one, many string) string {
	if n == 1 {
		return one
	}
	return many
}

type noopService struct{}

func (noopService) NotifyStuckJobs(context.Context, string, []reconcile.StuckJob) error { return nil }
func (noopService) NotifyBottlenecks(context.Context, string, []reconcile.StageBottleneck) error {
	return nil
}
func (noopService) NotifyError(context.Context, error, string) error { return nil }
func (noopService) TestNotification(context.Context) error           { return nil }
