package metrics

import (
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestNew_RegistersAndRecords(t *testing.T) {
	registry := prometheus.NewRegistry()
	m := New(registry)

	m.RecordWebhookEvent("text", "success", 0.2)
	m.RecordSend("text", "success")
	m.RecordLLMRequest("chat", "success", 1.5)
	m.RecordCacheHit()
	m.RecordCacheMiss()
	m.SetCacheSize(3)
	m.RecordMediaBytes("audio", 1024)
	m.RecordMediaFailure("image", "too_large")
	m.RecordTicketCreated()
	m.RecordSheetMirror("success")
	m.RecordRateLimiterDrop("sender")
	m.RecordDuplicateMessage()
	m.RecordArchiveUpload("success")

	if got := testutil.ToFloat64(m.WebhookEventsTotal.WithLabelValues("text", "success")); got != 1 {
		t.Errorf("webhook events = %v, want 1", got)
	}
	if got := testutil.ToFloat64(m.CacheHitsTotal); got != 1 {
		t.Errorf("cache hits = %v, want 1", got)
	}
	if got := testutil.ToFloat64(m.CacheSize); got != 3 {
		t.Errorf("cache size = %v, want 3", got)
	}
	if got := testutil.ToFloat64(m.MediaBytesTotal.WithLabelValues("audio")); got != 1024 {
		t.Errorf("media bytes = %v, want 1024", got)
	}
	if got := testutil.ToFloat64(m.TicketsCreatedTotal); got != 1 {
		t.Errorf("tickets created = %v, want 1", got)
	}

	// All metric families should be gatherable under the expected prefix.
	families, err := registry.Gather()
	if err != nil {
		t.Fatalf("Gather() failed: %v", err)
	}
	for _, mf := range families {
		if !strings.HasPrefix(mf.GetName(), "nochgpt_") {
			t.Errorf("metric %q missing nochgpt_ prefix", mf.GetName())
		}
	}
}

func TestNew_DuplicateRegistrationPanics(t *testing.T) {
	registry := prometheus.NewRegistry()
	_ = New(registry)

	defer func() {
		if r := recover(); r == nil {
			t.Error("expected panic on duplicate registration")
		}
	}()
	_ = New(registry)
}
