// Timeout constants for outbound calls and the HTTP server.
//
// Meta's webhook delivery expects a fast 200 acknowledgment; everything
// slow (LLM calls, media downloads) happens after the response on a
// background goroutine, bounded by MessageProcessing.
package config

import "time"

// HTTP server timeouts.
const (
	// WebhookHTTPRead is the HTTP server read timeout. Webhook payloads
	// are small JSON bodies, so this stays short.
	WebhookHTTPRead = 10 * time.Second

	// WebhookHTTPWrite is the HTTP server write timeout. The synchronous
	// /chat endpoint can wait on a completion call, so this must cover
	// LLMRequest plus serialization.
	WebhookHTTPWrite = 65 * time.Second

	// WebhookHTTPIdle is the keep-alive idle timeout.
	WebhookHTTPIdle = 120 * time.Second
)

// Outbound call timeouts.
const (
	// MessageProcessing bounds the full handling of one inbound message:
	// media fetch, model calls, and the outbound send.
	MessageProcessing = 60 * time.Second

	// GraphRequest is the timeout for Graph API sends and media URL
	// resolution. Sends are small JSON payloads.
	GraphRequest = 20 * time.Second

	// MediaDownload is the timeout for fetching attachment bytes from the
	// signed CDN URL. Audio files can take a while on slow uplinks.
	MediaDownload = 60 * time.Second

	// LLMRequest is the timeout for a single chat/vision completion call.
	LLMRequest = 60 * time.Second

	// TranscribeRequest is the timeout for one speech-to-text call.
	TranscribeRequest = 60 * time.Second

	// SheetPost is the timeout for the best-effort ticket mirror POST.
	// Kept short; the mirror must never hold up a confirmation reply.
	SheetPost = 15 * time.Second
)
