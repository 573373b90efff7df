// Package media turns attachments into text: voice notes through
// transcription, photos through vision, PDFs through text extraction plus
// summarization.
package media

import (
	"context"
	"errors"
	"fmt"
	"strings"

	apperrors "github.com/nochlab/nochgpt/internal/errors"
	"github.com/nochlab/nochgpt/internal/i18n"
	"github.com/nochlab/nochgpt/internal/llm"
	"github.com/nochlab/nochgpt/internal/logger"
	"github.com/nochlab/nochgpt/internal/metrics"
	"github.com/nochlab/nochgpt/internal/wa"
)

// Pipeline resolves, downloads, and processes one attachment.
type Pipeline struct {
	graph    *wa.Client
	llm      *llm.Client
	maxBytes int64
	metrics  *metrics.Metrics
	log      *logger.Logger
}

// Config configures a Pipeline.
type Config struct {
	Graph    *wa.Client
	LLM      *llm.Client
	MaxBytes int64
	Metrics  *metrics.Metrics
	Logger   *logger.Logger
}

// NewPipeline creates a media pipeline.
func NewPipeline(cfg Config) *Pipeline {
	return &Pipeline{
		graph:    cfg.Graph,
		llm:      cfg.LLM,
		maxBytes: cfg.MaxBytes,
		metrics:  cfg.Metrics,
		log:      cfg.Logger,
	}
}

// TranscribeAudio downloads a voice note and returns its transcript.
func (p *Pipeline) TranscribeAudio(ctx context.Context, mediaID, mimeType string) (string, error) {
	data, mime, err := p.download(ctx, "audio", mediaID, mimeType)
	if err != nil {
		return "", err
	}

	text, err := p.llm.Transcribe(ctx, data, mime)
	if err != nil {
		p.recordFailure("audio", "transcribe")
		return "", err
	}
	return text, nil
}

// DescribeImage downloads a photo and returns a clinical summary in lang.
func (p *Pipeline) DescribeImage(ctx context.Context, mediaID, mimeType string, lang i18n.Lang) (string, error) {
	data, mime, err := p.download(ctx, "image", mediaID, mimeType)
	if err != nil {
		return "", err
	}

	summary, err := p.llm.DescribeImage(ctx, data, mime, lang)
	if err != nil {
		p.recordFailure("image", "vision")
		return "", fmt.Errorf("%w: %w", apperrors.ErrVisionFailed, err)
	}
	return summary, nil
}

// SummarizeDocument downloads a document, extracts its text, and returns a
// summary in lang. Only PDFs are supported.
func (p *Pipeline) SummarizeDocument(ctx context.Context, mediaID, mimeType string, lang i18n.Lang) (string, error) {
	if !isPDF(mimeType) {
		return "", fmt.Errorf("document type %q: %w", mimeType, apperrors.ErrUnsupportedType)
	}

	data, _, err := p.download(ctx, "document", mediaID, mimeType)
	if err != nil {
		return "", err
	}

	text, err := ExtractPDFText(data)
	if err != nil {
		p.recordFailure("document", "extract")
		return "", fmt.Errorf("pdf extraction failed: %w", err)
	}
	if strings.TrimSpace(text) == "" {
		p.recordFailure("document", "extract")
		return "", fmt.Errorf("pdf has no extractable text: %w", apperrors.ErrUnsupportedType)
	}

	return p.llm.Summarize(ctx, text, lang)
}

// download resolves the signed URL and fetches the bytes, recording size
// and failure metrics by media kind.
func (p *Pipeline) download(ctx context.Context, kind, mediaID, mimeType string) ([]byte, string, error) {
	info, err := p.graph.MediaURL(ctx, mediaID)
	if err != nil {
		p.recordFailure(kind, "download")
		return nil, "", err
	}
	if info.FileSize > p.maxBytes {
		p.recordFailure(kind, "too_large")
		return nil, "", fmt.Errorf("reported size %d: %w", info.FileSize, apperrors.ErrMediaTooLarge)
	}

	data, err := p.graph.DownloadMedia(ctx, info.URL, p.maxBytes)
	if err != nil {
		reason := "download"
		if errors.Is(err, apperrors.ErrMediaTooLarge) {
			reason = "too_large"
		}
		p.recordFailure(kind, reason)
		return nil, "", err
	}

	if p.metrics != nil {
		p.metrics.RecordMediaBytes(kind, int64(len(data)))
	}

	mime := mimeType
	if mime == "" {
		mime = info.MimeType
	}
	return data, mime, nil
}

func (p *Pipeline) recordFailure(kind, reason string) {
	if p.metrics != nil {
		p.metrics.RecordMediaFailure(kind, reason)
	}
}

func isPDF(mimeType string) bool {
	return strings.HasPrefix(mimeType, "application/pdf")
}
