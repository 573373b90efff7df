package media

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	apperrors "github.com/nochlab/nochgpt/internal/errors"
	"github.com/nochlab/nochgpt/internal/i18n"
	"github.com/nochlab/nochgpt/internal/llm"
	"github.com/nochlab/nochgpt/internal/wa"
)

// newTestPipeline wires the pipeline against stub Graph and completion
// servers. fileSize is what the media lookup reports for the attachment.
func newTestPipeline(t *testing.T, fileSize int64, mediaBytes []byte) (*Pipeline, *int) {
	t.Helper()

	graphMux := http.NewServeMux()
	graphServer := httptest.NewServer(graphMux)
	t.Cleanup(graphServer.Close)

	cdnHits := 0
	graphMux.HandleFunc("/media123", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprintf(w, `{"url":%q,"mime_type":"application/octet-stream","file_size":%d}`,
			graphServer.URL+"/cdn", fileSize)
	})
	graphMux.HandleFunc("/cdn", func(w http.ResponseWriter, r *http.Request) {
		cdnHits++
		_, _ = w.Write(mediaBytes)
	})

	llmServer := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		switch r.URL.Path {
		case "/audio/transcriptions":
			_, _ = io.WriteString(w, `{"text":"necesito una protesis"}`)
		case "/chat/completions":
			_, _ = io.WriteString(w, `{
				"id": "chatcmpl-test",
				"object": "chat.completion",
				"choices": [{"index": 0, "message": {"role": "assistant", "content": "• resumen clínico"}, "finish_reason": "stop"}]
			}`)
		default:
			http.NotFound(w, r)
		}
	}))
	t.Cleanup(llmServer.Close)

	graph := wa.NewClient(wa.ClientConfig{
		BaseURL: graphServer.URL,
		Token:   "test-token",
		PhoneID: "12345",
	})
	model := llm.NewClient(llm.Config{
		APIKey:          "sk-test",
		BaseURL:         llmServer.URL,
		Model:           "gpt-4o-mini",
		TranscribeModel: "whisper-1",
	})

	return NewPipeline(Config{
		Graph:    graph,
		LLM:      model,
		MaxBytes: 1024,
	}), &cdnHits
}

func TestPipeline_TranscribeAudio(t *testing.T) {
	t.Parallel()

	p, _ := newTestPipeline(t, 100, []byte("ogg-bytes"))
	text, err := p.TranscribeAudio(context.Background(), "media123", "audio/ogg")
	if err != nil {
		t.Fatalf("TranscribeAudio() failed: %v", err)
	}
	if text != "necesito una protesis" {
		t.Errorf("text = %q", text)
	}
}

func TestPipeline_DescribeImage(t *testing.T) {
	t.Parallel()

	p, _ := newTestPipeline(t, 100, []byte{0xFF, 0xD8, 0xFF})
	summary, err := p.DescribeImage(context.Background(), "media123", "image/jpeg", i18n.Spanish)
	if err != nil {
		t.Fatalf("DescribeImage() failed: %v", err)
	}
	if summary != "• resumen clínico" {
		t.Errorf("summary = %q", summary)
	}
}

func TestPipeline_DescribeImage_BackendFailure(t *testing.T) {
	t.Parallel()

	graphMux := http.NewServeMux()
	graphServer := httptest.NewServer(graphMux)
	t.Cleanup(graphServer.Close)
	graphMux.HandleFunc("/media123", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprintf(w, `{"url":%q,"mime_type":"image/jpeg","file_size":100}`, graphServer.URL+"/cdn")
	})
	graphMux.HandleFunc("/cdn", func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte{0xFF, 0xD8, 0xFF})
	})

	llmServer := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"error":{"message":"overloaded"}}`, http.StatusInternalServerError)
	}))
	t.Cleanup(llmServer.Close)

	p := NewPipeline(Config{
		Graph: wa.NewClient(wa.ClientConfig{
			BaseURL: graphServer.URL,
			Token:   "test-token",
			PhoneID: "12345",
		}),
		LLM: llm.NewClient(llm.Config{
			APIKey:  "sk-test",
			BaseURL: llmServer.URL,
			Model:   "gpt-4o-mini",
		}),
		MaxBytes: 1024,
	})

	_, err := p.DescribeImage(context.Background(), "media123", "image/jpeg", i18n.Spanish)
	if !errors.Is(err, apperrors.ErrVisionFailed) {
		t.Errorf("DescribeImage(failing backend) = %v, want ErrVisionFailed", err)
	}
}

func TestPipeline_RejectsOversizedBeforeDownload(t *testing.T) {
	t.Parallel()

	p, cdnHits := newTestPipeline(t, 10<<20, []byte("big"))
	_, err := p.TranscribeAudio(context.Background(), "media123", "audio/ogg")
	if !errors.Is(err, apperrors.ErrMediaTooLarge) {
		t.Fatalf("TranscribeAudio(oversized) = %v, want ErrMediaTooLarge", err)
	}
	if *cdnHits != 0 {
		t.Error("oversized attachment must not be downloaded")
	}
}

func TestPipeline_UnsupportedDocumentType(t *testing.T) {
	t.Parallel()

	p, _ := newTestPipeline(t, 100, []byte("doc"))
	_, err := p.SummarizeDocument(context.Background(), "media123", "application/msword", i18n.English)
	if !errors.Is(err, apperrors.ErrUnsupportedType) {
		t.Errorf("SummarizeDocument(doc) = %v, want ErrUnsupportedType", err)
	}
}

func TestPipeline_CorruptPDF(t *testing.T) {
	t.Parallel()

	p, _ := newTestPipeline(t, 100, []byte("not a pdf"))
	_, err := p.SummarizeDocument(context.Background(), "media123", "application/pdf", i18n.English)
	if err == nil {
		t.Error("corrupt PDF should fail extraction")
	}
}

func TestExtractPDFText_Invalid(t *testing.T) {
	t.Parallel()

	if _, err := ExtractPDFText([]byte("%PDF-1.4 truncated")); err == nil {
		t.Error("expected error for truncated pdf")
	}
}
