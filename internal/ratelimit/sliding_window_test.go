package ratelimit

import (
	"testing"
	"time"
)

func TestSlidingWindowCounter_Allow(t *testing.T) {
	t.Parallel()

	swc := NewSlidingWindowCounter(3, time.Hour)
	for i := range 3 {
		if !swc.Allow() {
			t.Fatalf("message %d should be allowed", i)
		}
	}
	if swc.Allow() {
		t.Error("message past window limit should be denied")
	}
}

func TestSlidingWindowCounter_NilDisabled(t *testing.T) {
	t.Parallel()

	swc := NewSlidingWindowCounter(0, time.Hour)
	if swc != nil {
		t.Fatal("zero limit should return nil (disabled)")
	}
	if !swc.Allow() {
		t.Error("nil counter should allow everything")
	}
	if swc.Remaining() != -1 {
		t.Error("nil counter should report unlimited quota")
	}
}

func TestSlidingWindowCounter_Remaining(t *testing.T) {
	t.Parallel()

	swc := NewSlidingWindowCounter(10, time.Hour)
	swc.Allow()
	swc.Allow()

	if got := swc.Remaining(); got < 7 || got > 8 {
		t.Errorf("Remaining() = %d, want ~8", got)
	}
}

func TestSlidingWindowCounter_WindowRotation(t *testing.T) {
	t.Parallel()

	swc := NewSlidingWindowCounter(2, 50*time.Millisecond)
	swc.Allow()
	swc.Allow()
	if swc.Allow() {
		t.Fatal("window should be full")
	}

	// After two full windows the previous count no longer weighs in.
	time.Sleep(120 * time.Millisecond)
	if !swc.Allow() {
		t.Error("counter should allow again after the window passes")
	}
}

func TestPerSenderLimiter(t *testing.T) {
	t.Parallel()

	psl := NewPerSenderLimiter(PerSenderConfig{
		MaxMessages:   2,
		Window:        time.Hour,
		CleanupPeriod: time.Hour,
	})
	defer psl.Stop()

	var dropped string
	psl.OnDrop(func(sender string) { dropped = sender })

	if !psl.Allow("+15551234") || !psl.Allow("+15551234") {
		t.Fatal("first two messages should pass")
	}
	if psl.Allow("+15551234") {
		t.Error("third message should be dropped")
	}
	if dropped != "+15551234" {
		t.Errorf("OnDrop got %q", dropped)
	}

	// Separate senders get separate windows.
	if !psl.Allow("+15559999") {
		t.Error("other sender should not be affected")
	}
	if psl.ActiveSenders() != 2 {
		t.Errorf("ActiveSenders() = %d, want 2", psl.ActiveSenders())
	}
}

func TestPerSenderLimiter_EmptySender(t *testing.T) {
	t.Parallel()

	psl := NewPerSenderLimiter(PerSenderConfig{MaxMessages: 1, Window: time.Hour})
	defer psl.Stop()

	for range 5 {
		if !psl.Allow("") {
			t.Fatal("empty sender must always be allowed")
		}
	}
}

func TestPerSenderLimiter_StopIdempotent(t *testing.T) {
	t.Parallel()

	psl := NewPerSenderLimiter(PerSenderConfig{MaxMessages: 1, Window: time.Hour})
	psl.Stop()
	psl.Stop()
}
