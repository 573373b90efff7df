// Package bot implements the conversational logic: language handling, the
// greeting menu, the human-handoff flow, and dispatch of text and media
// messages to the right pipeline.
package bot

import (
	"context"
	"regexp"
	"time"

	"github.com/nochlab/nochgpt/internal/cache"
	"github.com/nochlab/nochgpt/internal/i18n"
	"github.com/nochlab/nochgpt/internal/llm"
	"github.com/nochlab/nochgpt/internal/logger"
	"github.com/nochlab/nochgpt/internal/media"
	"github.com/nochlab/nochgpt/internal/metrics"
	"github.com/nochlab/nochgpt/internal/ratelimit"
	"github.com/nochlab/nochgpt/internal/store"
	"github.com/nochlab/nochgpt/internal/ticket"
	"github.com/nochlab/nochgpt/internal/wa"
)

// Menu button ids. The webhook echoes these back in interactive replies.
const (
	actionPlans = "plans"
	actionTimes = "times"
	actionHuman = "human"
)

var (
	// \b is ASCII-only in Go regexps, so the word edges are spelled out
	// with \p{L} to keep olá and नमस्ते matching.
	greetingRe = regexp.MustCompile(`(?i)(?:\A|[^\p{L}])(hola|buenas|hi|hello|hey|oi|olá|bonjour|salut|नमस्ते)(?:[^\p{L}]|\z)`)
	handoffRe  = regexp.MustCompile(`(?i)\b(humano|human|asesor|agente|agent)\b`)
)

// Processor handles one inbound message end to end.
type Processor struct {
	db      *store.DB
	graph   *wa.Client
	llm     *llm.Client
	media   *media.Pipeline
	cache   *cache.Cache
	tickets *ticket.Service
	limiter *ratelimit.PerSenderLimiter
	metrics *metrics.Metrics
	log     *logger.Logger
}

// Config configures a Processor.
type Config struct {
	DB      *store.DB
	Graph   *wa.Client
	LLM     *llm.Client
	Media   *media.Pipeline
	Cache   *cache.Cache
	Tickets *ticket.Service
	Limiter *ratelimit.PerSenderLimiter
	Metrics *metrics.Metrics
	Logger  *logger.Logger
}

// New creates a message processor.
func New(cfg Config) *Processor {
	return &Processor{
		db:      cfg.DB,
		graph:   cfg.Graph,
		llm:     cfg.LLM,
		media:   cfg.Media,
		cache:   cfg.Cache,
		tickets: cfg.Tickets,
		limiter: cfg.Limiter,
		metrics: cfg.Metrics,
		log:     cfg.Logger,
	}
}

// HandleMessage processes one deduplicated inbound message. Failures never
// propagate: the sender gets a localized apology and the error is logged.
func (p *Processor) HandleMessage(ctx context.Context, msg wa.Message) {
	start := time.Now()
	log := p.log.WithSender(msg.From).WithField("message_type", msg.Type)

	if p.limiter != nil && !p.limiter.Allow(msg.From) {
		// Advisory drop: no reply, or a chatty sender would get one
		// apology per dropped message.
		log.Warn("message dropped by per-sender rate limit")
		p.record(msg.Type, "dropped", start)
		return
	}

	lang, err := p.resolveLang(ctx, &msg)
	if err != nil {
		log.WithError(err).Error("failed to resolve language")
		lang = i18n.Default
	}

	if err := p.dispatch(ctx, &msg, lang); err != nil {
		log.WithError(err).Error("message handling failed")
		if sendErr := p.graph.SendText(ctx, msg.From, i18n.UserFacing(err, lang)); sendErr != nil {
			log.WithError(sendErr).Error("failed to send apology")
		}
		p.record(msg.Type, "error", start)
		return
	}
	p.record(msg.Type, "success", start)
}

// resolveLang returns the sticky language for the sender, detecting and
// persisting it on first contact.
func (p *Processor) resolveLang(ctx context.Context, msg *wa.Message) (i18n.Lang, error) {
	_, stored, err := p.db.GetState(ctx, msg.From)
	if err != nil {
		return i18n.Default, err
	}
	if stored != "" {
		return i18n.Lang(stored), nil
	}

	lang := i18n.Detect(msg.GuessText())
	if err := p.db.SetLang(ctx, msg.From, string(lang)); err != nil {
		return lang, err
	}
	return lang, nil
}

func (p *Processor) dispatch(ctx context.Context, msg *wa.Message, lang i18n.Lang) error {
	switch msg.Type {
	case "text":
		return p.handleText(ctx, msg.From, msg.Text.Body, lang)
	case "button", "interactive":
		return p.handleInteractive(ctx, msg, lang)
	case "audio":
		return p.handleAudio(ctx, msg, lang)
	case "image":
		return p.handleImage(ctx, msg, lang)
	case "document":
		return p.handleDocument(ctx, msg, lang)
	default:
		return p.graph.SendText(ctx, msg.From, i18n.Tr(i18n.KeyFallback, lang))
	}
}

// Answer resolves a question through the cache and the reply generator.
// Shared by the text handler and the direct /chat endpoint.
func (p *Processor) Answer(ctx context.Context, question string, lang i18n.Lang) (string, error) {
	if answer, ok := p.cache.Get(question, string(lang)); ok {
		if p.metrics != nil {
			p.metrics.RecordCacheHit()
		}
		return answer, nil
	}
	if p.metrics != nil {
		p.metrics.RecordCacheMiss()
	}

	answer, err := p.llm.GenerateReply(ctx, question, lang)
	if err != nil {
		return "", err
	}
	p.cache.Put(question, string(lang), answer)
	if p.metrics != nil {
		p.metrics.SetCacheSize(p.cache.Len())
	}
	return answer, nil
}

func (p *Processor) record(messageType, status string, start time.Time) {
	if p.metrics != nil {
		p.metrics.RecordWebhookEvent(messageType, status, time.Since(start).Seconds())
	}
}
