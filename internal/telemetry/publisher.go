// Package telemetry forwards evaluation reports to an external dashboard.
package telemetry

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/evalgate/evalgate/internal/config"
	"github.com/evalgate/evalgate/internal/eval"
)

const defaultUploadTimeout = 15 * time.Second

// Publisher uploads reports to a dashboard endpoint. A zero-configured
// publisher is disabled and every Publish is a no-op, so the evaluation
// path never depends on the sink being reachable.
type Publisher struct {
	url      string
	apiKey   string
	required bool
	client   *http.Client
}

// NewPublisher creates a Publisher from dashboard configuration. The
// required-but-unconfigured case is rejected by config.Load before this
// point; it is re-checked here for callers constructing Dashboard directly.
func NewPublisher(cfg config.Dashboard) (*Publisher, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &Publisher{
		url:      cfg.URL,
		apiKey:   cfg.APIKey,
		required: cfg.Required,
		client:   &http.Client{Timeout: defaultUploadTimeout},
	}, nil
}

// Enabled reports whether uploads will be attempted.
func (p *Publisher) Enabled() bool {
	return p != nil && p.url != "" && p.apiKey != ""
}

// Required reports whether upload failures should fail the run.
func (p *Publisher) Required() bool {
	return p != nil && p.required
}

// Publish uploads the report. Disabled publishers return nil immediately.
// For best-effort deployments the caller logs the error and moves on; for
// required deployments the caller propagates it.
func (p *Publisher) Publish(ctx context.Context, report *eval.Report) error {
	if !p.Enabled() {
		return nil
	}

	body, err := json.Marshal(report)
	if err != nil {
		return fmt.Errorf("failed to marshal report for upload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, p.url, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("failed to build upload request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+p.apiKey)

	resp, err := p.client.Do(req)
	if err != nil {
		return fmt.Errorf("report upload failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return fmt.Errorf("dashboard rejected report: status %d: %s", resp.StatusCode, snippet)
	}

	slog.Info("report uploaded", "report_id", report.ID, "status", resp.StatusCode)
	return nil
}
