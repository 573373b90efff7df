package wa

import (
	"errors"
	"testing"

	apperrors "github.com/nochlab/nochgpt/internal/errors"
)

const textEnvelope = `{
  "object": "whatsapp_business_account",
  "entry": [{
    "id": "1234567890",
    "changes": [{
      "field": "messages",
      "value": {
        "messaging_product": "whatsapp",
        "contacts": [{"wa_id": "5215550001111", "profile": {"name": "Ana"}}],
        "messages": [{
          "id": "wamid.HBgLNTIxNTU1",
          "from": "5215550001111",
          "timestamp": "1724800000",
          "type": "text",
          "text": {"body": "hola, necesito una corona"}
        }]
      }
    }]
  }]
}`

const statusEnvelope = `{
  "object": "whatsapp_business_account",
  "entry": [{
    "id": "1234567890",
    "changes": [{
      "field": "messages",
      "value": {
        "messaging_product": "whatsapp",
        "statuses": [{"id": "wamid.X", "status": "delivered"}]
      }
    }]
  }]
}`

func TestParsePayload_Text(t *testing.T) {
	t.Parallel()

	messages, err := ParsePayload([]byte(textEnvelope))
	if err != nil {
		t.Fatalf("ParsePayload() failed: %v", err)
	}
	if len(messages) != 1 {
		t.Fatalf("got %d messages, want 1", len(messages))
	}

	m := messages[0]
	if m.ID != "wamid.HBgLNTIxNTU1" {
		t.Errorf("unexpected id %q", m.ID)
	}
	if m.From != "5215550001111" {
		t.Errorf("from = %q", m.From)
	}
	if m.Type != "text" || m.Text == nil {
		t.Fatalf("type = %q, text = %v", m.Type, m.Text)
	}
	if m.Text.Body != "hola, necesito una corona" {
		t.Errorf("body = %q", m.Text.Body)
	}
	if got := m.GuessText(); got != "hola, necesito una corona" {
		t.Errorf("GuessText() = %q", got)
	}
}

func TestParsePayload_StatusOnly(t *testing.T) {
	t.Parallel()

	messages, err := ParsePayload([]byte(statusEnvelope))
	if err != nil {
		t.Fatalf("ParsePayload() failed: %v", err)
	}
	if len(messages) != 0 {
		t.Errorf("status-only callback should carry no messages, got %d", len(messages))
	}
}

func TestParsePayload_Malformed(t *testing.T) {
	t.Parallel()

	_, err := ParsePayload([]byte(`{"entry": "not an array"}`))
	if !errors.Is(err, apperrors.ErrInvalidPayload) {
		t.Errorf("ParsePayload(malformed) = %v, want ErrInvalidPayload", err)
	}
}

func TestMessage_ActionID(t *testing.T) {
	t.Parallel()

	interactive := Message{
		Type: "interactive",
		Interactive: &Interactive{
			Type:        "button_reply",
			ButtonReply: &Reply{ID: "human", Title: "Hablar con humano"},
		},
	}
	if got := interactive.ActionID(); got != "human" {
		t.Errorf("ActionID() = %q, want human", got)
	}
	if got := interactive.GuessText(); got != "Hablar con humano" {
		t.Errorf("GuessText() = %q", got)
	}

	templateButton := Message{
		Type:   "button",
		Button: &Button{Text: "Plans & pricing", Payload: "plans"},
	}
	if got := templateButton.ActionID(); got != "plans" {
		t.Errorf("ActionID() = %q, want plans", got)
	}

	plain := Message{Type: "text", Text: &Text{Body: "hi"}}
	if got := plain.ActionID(); got != "" {
		t.Errorf("ActionID(text) = %q, want empty", got)
	}
}

func TestMessage_MediaID(t *testing.T) {
	t.Parallel()

	audio := Message{Type: "audio", Audio: &MediaRef{ID: "media123", MimeType: "audio/ogg"}}
	id, kind, mime := audio.MediaID()
	if id != "media123" || kind != "audio" || mime != "audio/ogg" {
		t.Errorf("MediaID() = (%q, %q, %q)", id, kind, mime)
	}

	text := Message{Type: "text", Text: &Text{Body: "hi"}}
	if id, _, _ := text.MediaID(); id != "" {
		t.Errorf("MediaID(text) = %q, want empty", id)
	}
}
