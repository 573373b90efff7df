package bot

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/nochlab/nochgpt/internal/cache"
	"github.com/nochlab/nochgpt/internal/i18n"
	"github.com/nochlab/nochgpt/internal/llm"
	"github.com/nochlab/nochgpt/internal/logger"
	"github.com/nochlab/nochgpt/internal/media"
	"github.com/nochlab/nochgpt/internal/ratelimit"
	"github.com/nochlab/nochgpt/internal/store"
	"github.com/nochlab/nochgpt/internal/ticket"
	"github.com/nochlab/nochgpt/internal/wa"
)

// sentMessage is one captured outbound Graph API send.
type sentMessage struct {
	Type string // "text" or "interactive"
	Body map[string]any
}

type harness struct {
	processor *Processor
	db        *store.DB
	sends     *[]sentMessage
	llmCalls  *int
	mu        *sync.Mutex
}

func (h *harness) sent() []sentMessage {
	h.mu.Lock()
	defer h.mu.Unlock()
	return append([]sentMessage(nil), *h.sends...)
}

func (h *harness) llmCallCount() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return *h.llmCalls
}

func newHarness(t *testing.T, limiter *ratelimit.PerSenderLimiter) *harness {
	t.Helper()

	var mu sync.Mutex
	var sends []sentMessage
	llmCalls := 0

	graphServer := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var body map[string]any
		_ = json.NewDecoder(r.Body).Decode(&body)
		msgType := "text"
		if body["type"] == "interactive" {
			msgType = "interactive"
		}
		mu.Lock()
		sends = append(sends, sentMessage{Type: msgType, Body: body})
		mu.Unlock()
		_, _ = w.Write([]byte(`{"messages":[{"id":"wamid.OUT"}]}`))
	}))
	t.Cleanup(graphServer.Close)

	llmServer := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		mu.Lock()
		llmCalls++
		mu.Unlock()
		w.Header().Set("Content-Type", "application/json")
		_, _ = io.WriteString(w, `{
			"id": "chatcmpl-test",
			"object": "chat.completion",
			"choices": [{"index": 0, "message": {"role": "assistant", "content": "Respuesta generada."}, "finish_reason": "stop"}]
		}`)
	}))
	t.Cleanup(llmServer.Close)

	db, err := store.NewTestDB()
	if err != nil {
		t.Fatalf("NewTestDB() failed: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })

	log := logger.NewWithWriter("error", io.Discard)
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
		Temperature:     0.2,
	})
	pipeline := media.NewPipeline(media.Config{
		Graph:    graph,
		LLM:      model,
		MaxBytes: 1 << 20,
	})

	processor := New(Config{
		DB:      db,
		Graph:   graph,
		LLM:     model,
		Media:   pipeline,
		Cache:   cache.New(time.Hour, 64),
		Tickets: ticket.NewService(db, nil, nil, nil),
		Limiter: limiter,
		Logger:  log,
	})

	return &harness{
		processor: processor,
		db:        db,
		sends:     &sends,
		llmCalls:  &llmCalls,
		mu:        &mu,
	}
}

func textMessage(id, from, body string) wa.Message {
	return wa.Message{ID: id, From: from, Type: "text", Text: &wa.Text{Body: body}}
}

func buttonPress(id, from, action, title string) wa.Message {
	return wa.Message{
		ID:   id,
		From: from,
		Type: "interactive",
		Interactive: &wa.Interactive{
			Type:        "button_reply",
			ButtonReply: &wa.Reply{ID: action, Title: title},
		},
	}
}

func TestHandleMessage_SpanishGreetingSendsMenu(t *testing.T) {
	t.Parallel()

	h := newHarness(t, nil)
	h.processor.HandleMessage(context.Background(), textMessage("m1", "5215550001111", "Hola"))

	sends := h.sent()
	if len(sends) != 1 {
		t.Fatalf("got %d sends, want 1", len(sends))
	}
	if sends[0].Type != "interactive" {
		t.Fatalf("greeting should send the button menu, got %q", sends[0].Type)
	}
	interactive := sends[0].Body["interactive"].(map[string]any)
	bodyText := interactive["body"].(map[string]any)["text"].(string)
	if !strings.Contains(bodyText, "Hola") {
		t.Errorf("menu body should be Spanish, got %q", bodyText)
	}
	if h.llmCallCount() != 0 {
		t.Error("greeting must not hit the completion provider")
	}
}

func TestHandleMessage_GreetingVariants(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		greeting string
	}{
		{"hindi", "नमस्ते"},
		{"hindi with followup", "नमस्ते, मुझे मदद चाहिए"},
		{"portuguese", "Olá"},
		{"french", "Salut"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			h := newHarness(t, nil)
			h.processor.HandleMessage(context.Background(), textMessage("m1", "5215550001111", tt.greeting))

			sends := h.sent()
			if len(sends) != 1 {
				t.Fatalf("got %d sends, want 1", len(sends))
			}
			if sends[0].Type != "interactive" {
				t.Errorf("greeting %q should send the button menu, got %q", tt.greeting, sends[0].Type)
			}
			if h.llmCallCount() != 0 {
				t.Errorf("greeting %q must not hit the completion provider", tt.greeting)
			}
		})
	}
}

func TestHandleMessage_GreetingSubstringIsNotAGreeting(t *testing.T) {
	t.Parallel()

	h := newHarness(t, nil)
	// "colágeno" contains "olá" but is a product question, not a greeting.
	h.processor.HandleMessage(context.Background(), textMessage("m1", "5215550001111", "venden membrana de colágeno?"))

	sends := h.sent()
	if len(sends) != 1 || sends[0].Type != "text" {
		t.Fatalf("sends = %+v", sends)
	}
	if h.llmCallCount() != 1 {
		t.Errorf("product question should flow to the llm, calls = %d", h.llmCallCount())
	}
}

func TestHandleMessage_QuestionUsesLLMAndCache(t *testing.T) {
	t.Parallel()

	h := newHarness(t, nil)
	msg := textMessage("m1", "5215550001111", "cuanto cuesta una corona de zirconia")
	h.processor.HandleMessage(context.Background(), msg)

	if h.llmCallCount() != 1 {
		t.Fatalf("llm calls = %d, want 1", h.llmCallCount())
	}
	sends := h.sent()
	if len(sends) != 1 || sends[0].Type != "text" {
		t.Fatalf("sends = %+v", sends)
	}

	// Same question again: answered from cache, no second completion.
	h.processor.HandleMessage(context.Background(), textMessage("m2", "5215550001111", "cuanto cuesta una corona de zirconia"))
	if h.llmCallCount() != 1 {
		t.Errorf("repeat question should hit the cache, llm calls = %d", h.llmCallCount())
	}
	if len(h.sent()) != 2 {
		t.Errorf("repeat question should still get a reply")
	}
}

func TestHandleMessage_HandoffCycle(t *testing.T) {
	t.Parallel()

	h := newHarness(t, nil)
	ctx := context.Background()
	sender := "5215550001111"

	// Button press arms the handoff.
	h.processor.HandleMessage(ctx, buttonPress("m1", sender, "human", "Hablar con humano"))
	state, _, err := h.db.GetState(ctx, sender)
	if err != nil {
		t.Fatalf("GetState() failed: %v", err)
	}
	if state != store.StateWaitingHandoff {
		t.Fatalf("state = %q, want waiting_handoff", state)
	}

	// Next text message becomes the ticket.
	h.processor.HandleMessage(ctx, textMessage("m2", sender, "Nombre: Ana\nTema: urgencia"))
	tickets, err := h.db.ListTickets(ctx, 0)
	if err != nil {
		t.Fatalf("ListTickets() failed: %v", err)
	}
	if len(tickets) != 1 {
		t.Fatalf("got %d tickets, want 1", len(tickets))
	}
	if tickets[0].Name != "Ana" {
		t.Errorf("ticket name = %q", tickets[0].Name)
	}
	state, _, _ = h.db.GetState(ctx, sender)
	if state != store.StateDone {
		t.Errorf("state after ticket = %q, want done", state)
	}

	// A third message must not create a second ticket for this cycle.
	h.processor.HandleMessage(ctx, textMessage("m3", sender, "cuanto cuesta un implante"))
	tickets, _ = h.db.ListTickets(ctx, 0)
	if len(tickets) != 1 {
		t.Errorf("third message created a second ticket, got %d", len(tickets))
	}
	if h.llmCallCount() != 1 {
		t.Errorf("post-handoff question should flow to the llm, calls = %d", h.llmCallCount())
	}
}

func TestHandleMessage_PlansAndTimesButtons(t *testing.T) {
	t.Parallel()

	h := newHarness(t, nil)
	ctx := context.Background()

	h.processor.HandleMessage(ctx, buttonPress("m1", "521555", "plans", "Planes y precios"))
	h.processor.HandleMessage(ctx, buttonPress("m2", "521555", "times", "Tiempos"))

	sends := h.sent()
	if len(sends) != 2 {
		t.Fatalf("got %d sends, want 2", len(sends))
	}
	first := sends[0].Body["text"].(map[string]any)["body"].(string)
	if !strings.Contains(first, "Planes") {
		t.Errorf("plans reply = %q", first)
	}
	second := sends[1].Body["text"].(map[string]any)["body"].(string)
	if !strings.Contains(second, "Tiempos") {
		t.Errorf("times reply = %q", second)
	}
	if h.llmCallCount() != 0 {
		t.Error("canned menu answers must not hit the completion provider")
	}
}

func TestHandleMessage_StickyLanguage(t *testing.T) {
	t.Parallel()

	h := newHarness(t, nil)
	ctx := context.Background()
	sender := "5215550001111"

	// First contact in Spanish pins the language.
	h.processor.HandleMessage(ctx, textMessage("m1", sender, "Hola"))

	// A later English-looking greeting still gets the Spanish menu.
	h.processor.HandleMessage(ctx, textMessage("m2", sender, "hello"))
	sends := h.sent()
	if len(sends) != 2 {
		t.Fatalf("got %d sends", len(sends))
	}
	interactive := sends[1].Body["interactive"].(map[string]any)
	bodyText := interactive["body"].(map[string]any)["text"].(string)
	if !strings.Contains(bodyText, "Hola") {
		t.Errorf("second menu should stay Spanish, got %q", bodyText)
	}
}

func TestHandleMessage_RateLimitedDropsSilently(t *testing.T) {
	t.Parallel()

	limiter := ratelimit.NewPerSenderLimiter(ratelimit.PerSenderConfig{
		MaxMessages: 1,
		Window:      time.Hour,
	})
	t.Cleanup(limiter.Stop)

	h := newHarness(t, limiter)
	ctx := context.Background()

	h.processor.HandleMessage(ctx, textMessage("m1", "521555", "Hola"))
	h.processor.HandleMessage(ctx, textMessage("m2", "521555", "Hola"))

	if got := len(h.sent()); got != 1 {
		t.Errorf("rate-limited message should be dropped without a reply, sends = %d", got)
	}
}

func TestHandleMessage_UnknownTypeFallsBack(t *testing.T) {
	t.Parallel()

	h := newHarness(t, nil)
	h.processor.HandleMessage(context.Background(), wa.Message{ID: "m1", From: "521555", Type: "sticker"})

	sends := h.sent()
	if len(sends) != 1 || sends[0].Type != "text" {
		t.Fatalf("sends = %+v", sends)
	}
	body := sends[0].Body["text"].(map[string]any)["body"].(string)
	if !strings.Contains(body, "message") && !strings.Contains(body, "mensaje") {
		t.Errorf("fallback reply = %q", body)
	}
}

func TestAnswer_DirectQuestion(t *testing.T) {
	t.Parallel()

	h := newHarness(t, nil)
	answer, err := h.processor.Answer(context.Background(), "tiempos de zirconia", i18n.Spanish)
	if err != nil {
		t.Fatalf("Answer() failed: %v", err)
	}
	if answer != "Respuesta generada." {
		t.Errorf("answer = %q", answer)
	}
}
