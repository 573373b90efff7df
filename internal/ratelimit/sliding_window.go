package ratelimit

import (
	"sync"
	"time"
)

// SlidingWindowCounter rate-limits with the sliding window counter
// algorithm: counts for the current and previous fixed windows combine into
// a weighted effective count, which smooths bursts across window boundaries
// in O(1) space.
//
//	effectiveCount = currCount + prevCount × (remaining overlap / window)
type SlidingWindowCounter struct {
	mu              sync.Mutex
	currCount       int
	prevCount       int
	currWindowStart time.Time
	windowDuration  time.Duration
	maxRequests     int
}

// NewSlidingWindowCounter creates a counter allowing maxRequests per
// windowDuration. Returns nil if maxRequests <= 0 (disabled); a nil counter
// allows everything.
func NewSlidingWindowCounter(maxRequests int, windowDuration time.Duration) *SlidingWindowCounter {
	if maxRequests <= 0 {
		return nil
	}
	return &SlidingWindowCounter{
		currWindowStart: time.Now(),
		windowDuration:  windowDuration,
		maxRequests:     maxRequests,
	}
}

// Allow reports whether a request fits in the window, counting it if so.
func (swc *SlidingWindowCounter) Allow() bool {
	if swc == nil {
		return true
	}

	swc.mu.Lock()
	defer swc.mu.Unlock()

	swc.maybeRotateWindow()
	if swc.weightedCount() >= float64(swc.maxRequests) {
		return false
	}
	swc.currCount++
	return true
}

// maybeRotateWindow rotates to a new window when the current one has
// expired. Must be called with mu held.
func (swc *SlidingWindowCounter) maybeRotateWindow() {
	elapsed := time.Since(swc.currWindowStart)
	if elapsed < swc.windowDuration {
		return
	}

	windowsPassed := int(elapsed / swc.windowDuration)
	if windowsPassed == 1 {
		swc.prevCount = swc.currCount
	} else {
		// Gap longer than a full window: nothing carries over.
		swc.prevCount = 0
	}
	swc.currCount = 0
	swc.currWindowStart = swc.currWindowStart.Add(time.Duration(windowsPassed) * swc.windowDuration)
}

// weightedCount must be called with mu held.
func (swc *SlidingWindowCounter) weightedCount() float64 {
	elapsed := time.Since(swc.currWindowStart)
	overlap := float64(swc.windowDuration-elapsed) / float64(swc.windowDuration)
	if overlap < 0 {
		overlap = 0
	}
	if overlap > 1 {
		overlap = 1
	}
	return float64(swc.currCount) + float64(swc.prevCount)*overlap
}

// Remaining returns the approximate remaining quota, or -1 when disabled.
func (swc *SlidingWindowCounter) Remaining() int {
	if swc == nil {
		return -1
	}

	swc.mu.Lock()
	defer swc.mu.Unlock()

	swc.maybeRotateWindow()
	remaining := float64(swc.maxRequests) - swc.weightedCount()
	if remaining < 0 {
		return 0
	}
	return int(remaining)
}

// idle reports whether the counter holds no recent activity, so the
// per-sender limiter can discard it.
func (swc *SlidingWindowCounter) idle() bool {
	if swc == nil {
		return true
	}

	swc.mu.Lock()
	defer swc.mu.Unlock()

	swc.maybeRotateWindow()
	return swc.weightedCount() == 0
}
