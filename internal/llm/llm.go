// Package llm wraps the completion provider: reply generation, speech
// transcription, image description, and document summarization.
package llm

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/openai/openai-go/v3"
	"github.com/openai/openai-go/v3/option"
	"golang.org/x/sync/singleflight"

	"github.com/nochlab/nochgpt/internal/cache"
	"github.com/nochlab/nochgpt/internal/config"
	apperrors "github.com/nochlab/nochgpt/internal/errors"
	"github.com/nochlab/nochgpt/internal/i18n"
	"github.com/nochlab/nochgpt/internal/logger"
	"github.com/nochlab/nochgpt/internal/metrics"
)

// systemPrompt scopes every reply to the dental laboratory domain.
const systemPrompt = "You are NochGPT, a helpful dental laboratory assistant. " +
	"Be concise and practical. Always respond in the user's language."

// Client calls the completion provider. Concurrent identical questions
// collapse into one upstream call via singleflight.
type Client struct {
	api             openai.Client
	model           string
	transcribeModel string
	transcribeRetry string
	temperature     float64
	verifyLanguage  bool
	metrics         *metrics.Metrics
	log             *logger.Logger
	group           singleflight.Group
}

// Config configures a Client.
type Config struct {
	APIKey          string
	BaseURL         string // Optional override for tests / gateways
	Model           string
	TranscribeModel string
	TranscribeRetry string
	Temperature     float64
	VerifyLanguage  bool
	Metrics         *metrics.Metrics
	Logger          *logger.Logger
}

// NewClient creates a completion client.
func NewClient(cfg Config) *Client {
	// Retries stay with the caller: transcription has its own secondary
	// model fallback and chat failures degrade to a localized apology.
	opts := []option.RequestOption{
		option.WithAPIKey(cfg.APIKey),
		option.WithMaxRetries(0),
	}
	if cfg.BaseURL != "" {
		opts = append(opts, option.WithBaseURL(cfg.BaseURL))
	}
	return &Client{
		api:             openai.NewClient(opts...),
		model:           cfg.Model,
		transcribeModel: cfg.TranscribeModel,
		transcribeRetry: cfg.TranscribeRetry,
		temperature:     cfg.Temperature,
		verifyLanguage:  cfg.VerifyLanguage,
		metrics:         cfg.Metrics,
		log:             cfg.Logger,
	}
}

// GenerateReply answers a user question in the requested language.
//
// When the model answers in the wrong language (it does not reliably honor
// the instruction), a second call translates the answer into the target.
func (c *Client) GenerateReply(ctx context.Context, userText string, lang i18n.Lang) (string, error) {
	key := cache.Key(userText, string(lang))
	answer, err, _ := c.group.Do(key, func() (any, error) {
		return c.generateReply(ctx, userText, lang)
	})
	if err != nil {
		return "", err
	}
	return answer.(string), nil
}

func (c *Client) generateReply(ctx context.Context, userText string, lang i18n.Lang) (string, error) {
	system := systemPrompt
	if i18n.Supported(lang) {
		system += fmt.Sprintf(" Always reply in %s.", i18n.DisplayName(lang))
	}

	answer, err := c.complete(ctx, "chat", []openai.ChatCompletionMessageParamUnion{
		openai.SystemMessage(system),
		openai.UserMessage(fmt.Sprintf("[lang=%s] %s", lang, userText)),
	})
	if err != nil {
		return "", err
	}

	if c.verifyLanguage && lang != i18n.English && i18n.Supported(lang) && i18n.Detect(answer) != lang {
		translated, terr := c.translate(ctx, answer, lang)
		if terr == nil {
			return translated, nil
		}
		if c.log != nil {
			c.log.WithError(terr).Warn("translation fallback failed, keeping original answer")
		}
	}
	return answer, nil
}

// translate asks the model to rewrite an answer in the target language.
func (c *Client) translate(ctx context.Context, text string, lang i18n.Lang) (string, error) {
	instruction := fmt.Sprintf(
		"Translate the following message into %s. Return only the translation, nothing else.",
		i18n.DisplayName(lang))
	return c.complete(ctx, "translate", []openai.ChatCompletionMessageParamUnion{
		openai.SystemMessage(instruction),
		openai.UserMessage(text),
	})
}

// complete runs one chat completion and unwraps the first choice.
func (c *Client) complete(ctx context.Context, operation string, messages []openai.ChatCompletionMessageParamUnion) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, config.LLMRequest)
	defer cancel()

	start := time.Now()
	resp, err := c.api.Chat.Completions.New(ctx, openai.ChatCompletionNewParams{
		Model:       c.model,
		Messages:    messages,
		Temperature: openai.Float(c.temperature),
	})
	duration := time.Since(start).Seconds()

	if err != nil {
		c.recordRequest(operation, "error", duration)
		if errors.Is(err, context.DeadlineExceeded) {
			return "", fmt.Errorf("%s: %w", operation, apperrors.ErrProviderTimeout)
		}
		return "", fmt.Errorf("%s completion failed: %w", operation, err)
	}

	if len(resp.Choices) == 0 || strings.TrimSpace(resp.Choices[0].Message.Content) == "" {
		c.recordRequest(operation, "error", duration)
		return "", fmt.Errorf("%s: %w", operation, apperrors.ErrEmptyCompletion)
	}

	c.recordRequest(operation, "success", duration)
	return strings.TrimSpace(resp.Choices[0].Message.Content), nil
}

func (c *Client) recordRequest(operation, status string, duration float64) {
	if c.metrics != nil {
		c.metrics.RecordLLMRequest(operation, status, duration)
	}
}
