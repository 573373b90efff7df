package ticket

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"github.com/nochlab/nochgpt/internal/config"
	"github.com/nochlab/nochgpt/internal/metrics"
	"github.com/nochlab/nochgpt/internal/store"
)

// SheetSink POSTs tickets to the external spreadsheet webhook.
type SheetSink struct {
	url        string
	httpClient *http.Client
	metrics    *metrics.Metrics
}

// NewSheetSink creates a sink, or nil when url is empty (disabled).
func NewSheetSink(url string, m *metrics.Metrics) *SheetSink {
	if url == "" {
		return nil
	}
	return &SheetSink{
		url:        url,
		httpClient: &http.Client{},
		metrics:    m,
	}
}

// Post mirrors one ticket. The payload matches what the Apps Script
// endpoint appends as a sheet row.
func (s *SheetSink) Post(ctx context.Context, t *store.Ticket) error {
	ctx, cancel := context.WithTimeout(ctx, config.SheetPost)
	defer cancel()

	body, err := json.Marshal(t)
	if err != nil {
		return fmt.Errorf("failed to marshal ticket: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.url, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("failed to build sheet request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.httpClient.Do(req)
	if err != nil {
		s.record("error")
		return fmt.Errorf("sheet post failed: %w", err)
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 1024))

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		s.record("error")
		return fmt.Errorf("sheet post returned status %d", resp.StatusCode)
	}
	s.record("success")
	return nil
}

func (s *SheetSink) record(status string) {
	if s.metrics != nil {
		s.metrics.RecordSheetMirror(status)
	}
}
