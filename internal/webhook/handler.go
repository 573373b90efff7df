// Package webhook receives WhatsApp Cloud API callbacks: the subscription
// handshake, signature verification, payload parsing, and asynchronous
// dispatch of inbound messages to the bot processor.
package webhook

import (
	"context"
	"io"
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/nochlab/nochgpt/internal/bot"
	"github.com/nochlab/nochgpt/internal/ctxutil"
	"github.com/nochlab/nochgpt/internal/logger"
	"github.com/nochlab/nochgpt/internal/metrics"
	"github.com/nochlab/nochgpt/internal/sentry"
	"github.com/nochlab/nochgpt/internal/store"
	"github.com/nochlab/nochgpt/internal/wa"
)

// maxBodyBytes caps the webhook request body. Cloud API notifications are
// small JSON envelopes; anything larger is not a legitimate callback.
const maxBodyBytes = 1 << 20

// Handler processes webhook callbacks from Meta.
type Handler struct {
	processor   *bot.Processor
	db          *store.DB
	appSecret   string
	verifyToken string
	timeout     time.Duration
	metrics     *metrics.Metrics
	log         *logger.Logger

	wg sync.WaitGroup
}

// Config configures a webhook Handler.
type Config struct {
	Processor *bot.Processor
	DB        *store.DB
	// AppSecret enables X-Hub-Signature-256 verification when non-empty.
	AppSecret   string
	VerifyToken string
	// Timeout bounds the processing of a single message.
	Timeout time.Duration
	Metrics *metrics.Metrics
	Logger  *logger.Logger
}

// New creates a webhook handler.
func New(cfg Config) *Handler {
	log := cfg.Logger
	if log == nil {
		log = logger.NewWithWriter("error", io.Discard)
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 60 * time.Second
	}
	return &Handler{
		processor:   cfg.Processor,
		db:          cfg.DB,
		appSecret:   cfg.AppSecret,
		verifyToken: cfg.VerifyToken,
		timeout:     timeout,
		metrics:     cfg.Metrics,
		log:         log.WithModule("webhook"),
	}
}

// Verify handles the Meta subscription handshake (GET). Meta sends
// hub.mode, hub.verify_token, and hub.challenge; a matching token is
// answered by echoing the challenge back.
func (h *Handler) Verify(c *gin.Context) {
	mode := c.Query("hub.mode")
	token := c.Query("hub.verify_token")
	challenge := c.Query("hub.challenge")

	if mode == "subscribe" && token == h.verifyToken && challenge != "" {
		c.String(http.StatusOK, challenge)
		return
	}

	h.log.WithField("mode", mode).Warn("webhook verification rejected")
	c.String(http.StatusForbidden, "verification failed")
}

// Receive handles webhook notifications (POST). The request is acknowledged
// as soon as the payload parses; message processing continues in the
// background so the Cloud API never sees a slow response and re-delivers.
func (h *Handler) Receive(c *gin.Context) {
	body, err := io.ReadAll(io.LimitReader(c.Request.Body, maxBodyBytes))
	if err != nil {
		h.log.WithError(err).Error("failed to read webhook body")
		c.Status(http.StatusBadRequest)
		return
	}

	if h.appSecret != "" {
		signature := c.GetHeader("X-Hub-Signature-256")
		if !wa.VerifySignature(h.appSecret, body, signature) {
			h.log.Warn("webhook signature mismatch")
			c.Status(http.StatusUnauthorized)
			return
		}
	}

	messages, err := wa.ParsePayload(body)
	if err != nil {
		// Answer 200 anyway: an error status would make the provider
		// retry the same unparseable payload.
		h.log.WithError(err).Warn("invalid webhook payload")
		c.JSON(http.StatusOK, gin.H{"received": false})
		return
	}

	c.JSON(http.StatusOK, gin.H{"received": true})

	if len(messages) == 0 {
		// Status updates and read receipts carry no messages.
		return
	}

	h.wg.Add(1)
	go func() {
		defer h.wg.Done()
		defer func() {
			if r := recover(); r != nil {
				h.log.WithField("panic", r).Error("panic while processing webhook batch")
				sentry.CaptureMessage("webhook processing panic")
			}
		}()
		h.processBatch(messages)
	}()
}

// processBatch handles each message of one notification in order, skipping
// redelivered ids. Ordering within a batch preserves the handoff flow when
// a sender's menu press and follow-up text arrive together.
func (h *Handler) processBatch(messages []wa.Message) {
	for i := range messages {
		msg := messages[i]

		ctx, cancel := context.WithTimeout(context.Background(), h.timeout)
		ctx = ctxutil.WithSender(ctx, msg.From)
		ctx = ctxutil.WithMessageID(ctx, msg.ID)

		isNew, err := h.db.MarkProcessed(ctx, msg.ID)
		if err != nil {
			h.log.WithError(err).WithSender(msg.From).Error("dedup check failed")
			cancel()
			continue
		}
		if !isNew {
			h.log.WithSender(msg.From).WithField("message_id", msg.ID).Debug("duplicate message skipped")
			if h.metrics != nil {
				h.metrics.RecordDuplicateMessage()
			}
			cancel()
			continue
		}

		h.processor.HandleMessage(ctx, msg)
		cancel()
	}
}

// Shutdown waits for in-flight message processing to finish or the context
// to expire.
func (h *Handler) Shutdown(ctx context.Context) error {
	done := make(chan struct{})
	go func() {
		h.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		h.log.Info("webhook processing drained")
		return nil
	case <-ctx.Done():
		h.log.Warn("webhook shutdown timed out with messages in flight")
		return ctx.Err()
	}
}
