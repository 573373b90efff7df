package ratelimit

import (
	"sync"
	"time"
)

// PerSenderConfig configures a PerSenderLimiter.
type PerSenderConfig struct {
	MaxMessages   int           // Messages allowed per window, per sender
	Window        time.Duration // Sliding window size
	CleanupPeriod time.Duration // How often idle counters are discarded
}

// PerSenderLimiter keeps a sliding window counter per sender phone number.
// Counters for idle senders are discarded periodically.
type PerSenderLimiter struct {
	mu       sync.RWMutex
	counters map[string]*SlidingWindowCounter
	config   PerSenderConfig
	onDrop   func(sender string)
	stopCh   chan struct{}
	stopOnce sync.Once
}

// NewPerSenderLimiter creates a per-sender limiter and starts its cleanup
// loop. Call Stop on shutdown.
func NewPerSenderLimiter(cfg PerSenderConfig) *PerSenderLimiter {
	if cfg.CleanupPeriod <= 0 {
		cfg.CleanupPeriod = 5 * time.Minute
	}
	psl := &PerSenderLimiter{
		counters: make(map[string]*SlidingWindowCounter),
		config:   cfg,
		stopCh:   make(chan struct{}),
	}

	go psl.cleanupLoop()

	return psl
}

// OnDrop registers a callback invoked when a sender's message is dropped.
func (psl *PerSenderLimiter) OnDrop(fn func(sender string)) {
	psl.onDrop = fn
}

// Allow reports whether a message from sender fits in its window.
// An empty sender is always allowed.
func (psl *PerSenderLimiter) Allow(sender string) bool {
	if sender == "" || psl.config.MaxMessages <= 0 {
		return true
	}

	psl.mu.RLock()
	counter, exists := psl.counters[sender]
	psl.mu.RUnlock()

	if !exists {
		psl.mu.Lock()
		counter, exists = psl.counters[sender]
		if !exists {
			counter = NewSlidingWindowCounter(psl.config.MaxMessages, psl.config.Window)
			psl.counters[sender] = counter
		}
		psl.mu.Unlock()
	}

	allowed := counter.Allow()
	if !allowed && psl.onDrop != nil {
		psl.onDrop(sender)
	}
	return allowed
}

// ActiveSenders returns the number of tracked senders.
func (psl *PerSenderLimiter) ActiveSenders() int {
	psl.mu.RLock()
	defer psl.mu.RUnlock()
	return len(psl.counters)
}

func (psl *PerSenderLimiter) cleanupLoop() {
	ticker := time.NewTicker(psl.config.CleanupPeriod)
	defer ticker.Stop()

	for {
		select {
		case <-psl.stopCh:
			return
		case <-ticker.C:
			psl.mu.Lock()
			for sender, counter := range psl.counters {
				if counter.idle() {
					delete(psl.counters, sender)
				}
			}
			psl.mu.Unlock()
		}
	}
}

// Stop terminates the cleanup goroutine. Safe to call multiple times.
func (psl *PerSenderLimiter) Stop() {
	psl.stopOnce.Do(func() {
		close(psl.stopCh)
	})
}
