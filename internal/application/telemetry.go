package application

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/oetdev/toolforge/internal/domain/model"
)

// Telemetry emits best-effort batch events to an external collector. Every
// emission runs in its own goroutine with its own timeout and is allowed to
// fail silently; it must never block or fail the caller's response.
type Telemetry struct {
	url    string
	client *http.Client
}

// NewTelemetry creates a Telemetry emitter. An empty URL disables emission
// entirely; the returned value is still safe to use.
func NewTelemetry(url string) *Telemetry {
	return &Telemetry{
		url:    url,
		client: &http.Client{Timeout: 5 * time.Second},
	}
}

// repairBatchEvent is the wire shape of a repair batch telemetry event.
type repairBatchEvent struct {
	Event     string            `json:"event"`
	Status    model.BatchStatus `json:"status"`
	Files     int               `json:"files"`
	Fixed     int               `json:"fixed"`
	Unchanged int               `json:"unchanged"`
	Failed    int               `json:"failed"`
	Timestamp string            `json:"timestamp"`
}

// RecordRepairBatch fires a repair-batch event and returns immediately.
func (t *Telemetry) RecordRepairBatch(status model.BatchStatus, outcomes map[string]model.FileFixOutcome) {
	if t == nil || t.url == "" {
		return
	}

	event := repairBatchEvent{
		Event:     "lint_repair_batch",
		Status:    status,
		Files:     len(outcomes),
		Timestamp: time.Now().UTC().Format(time.RFC3339),
	}
	for _, o := range outcomes {
		switch o.State {
		case model.FixStateFixed:
			event.Fixed++
		case model.FixStateUnchanged:
			event.Unchanged++
		case model.FixStateFailed:
			event.Failed++
		}
	}

	go t.post(event)
}

func (t *Telemetry) post(event repairBatchEvent) {
	body, err := json.Marshal(event)
	if err != nil {
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), t.client.Timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, t.url, bytes.NewReader(body))
	if err != nil {
		return
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := t.client.Do(req)
	if err != nil {
		slog.Debug("telemetry emission failed", "error", err)
		return
	}
	_ = resp.Body.Close()
}
