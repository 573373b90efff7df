// Package wa implements the WhatsApp Cloud API surface: webhook payload
// deserialization, callback signature verification, and the outbound Graph
// API client.
package wa

import (
	"encoding/json"
	"fmt"

	apperrors "github.com/nochlab/nochgpt/internal/errors"
)

// Envelope is the top-level webhook callback body.
type Envelope struct {
	Object string  `json:"object"`
	Entry  []Entry `json:"entry"`
}

// Entry is one account-level event batch.
type Entry struct {
	ID      string   `json:"id"`
	Changes []Change `json:"changes"`
}

// Change carries the changed field and its value.
type Change struct {
	Field string `json:"field"`
	Value Value  `json:"value"`
}

// Value holds the messages (or status updates) of a change.
type Value struct {
	MessagingProduct string          `json:"messaging_product"`
	Contacts         []Contact       `json:"contacts,omitempty"`
	Messages         []Message       `json:"messages,omitempty"`
	Statuses         json.RawMessage `json:"statuses,omitempty"`
}

// Contact identifies the sender profile.
type Contact struct {
	WaID    string `json:"wa_id"`
	Profile struct {
		Name string `json:"name"`
	} `json:"profile"`
}

// Message is one inbound user message. Exactly one of the typed payload
// fields is set, matching Type.
type Message struct {
	ID          string       `json:"id"`
	From        string       `json:"from"`
	Timestamp   string       `json:"timestamp"`
	Type        string       `json:"type"`
	Text        *Text        `json:"text,omitempty"`
	Button      *Button      `json:"button,omitempty"`
	Interactive *Interactive `json:"interactive,omitempty"`
	Audio       *MediaRef    `json:"audio,omitempty"`
	Image       *MediaRef    `json:"image,omitempty"`
	Document    *MediaRef    `json:"document,omitempty"`
}

// Text is the body of a text message.
type Text struct {
	Body string `json:"body"`
}

// Button is a template button press.
type Button struct {
	Text    string `json:"text"`
	Payload string `json:"payload"`
}

// Interactive is a reply to an interactive message.
type Interactive struct {
	Type        string `json:"type"`
	ButtonReply *Reply `json:"button_reply,omitempty"`
	ListReply   *Reply `json:"list_reply,omitempty"`
}

// Reply is the chosen option of an interactive message.
type Reply struct {
	ID    string `json:"id"`
	Title string `json:"title"`
}

// MediaRef points at an uploaded attachment.
type MediaRef struct {
	ID       string `json:"id"`
	MimeType string `json:"mime_type"`
	SHA256   string `json:"sha256"`
	Filename string `json:"filename,omitempty"`
	Voice    bool   `json:"voice,omitempty"`
	Caption  string `json:"caption,omitempty"`
}

// ParsePayload deserializes a webhook body and returns its messages across
// all entries. Status-only callbacks return an empty slice and no error;
// malformed JSON returns ErrInvalidPayload.
func ParsePayload(body []byte) ([]Message, error) {
	var env Envelope
	if err := json.Unmarshal(body, &env); err != nil {
		return nil, fmt.Errorf("%w: %v", apperrors.ErrInvalidPayload, err)
	}

	var messages []Message
	for _, entry := range env.Entry {
		for _, change := range entry.Changes {
			messages = append(messages, change.Value.Messages...)
		}
	}
	return messages, nil
}

// GuessText returns the best text to run language detection on: the body
// for text messages, the pressed label for button and interactive replies.
func (m *Message) GuessText() string {
	switch {
	case m.Text != nil:
		return m.Text.Body
	case m.Button != nil:
		return m.Button.Text
	case m.Interactive != nil && m.Interactive.ButtonReply != nil:
		return m.Interactive.ButtonReply.Title
	case m.Interactive != nil && m.Interactive.ListReply != nil:
		return m.Interactive.ListReply.Title
	}
	return ""
}

// ActionID returns the machine id of a pressed button, or "" when the
// message is not a button press.
func (m *Message) ActionID() string {
	switch {
	case m.Interactive != nil && m.Interactive.ButtonReply != nil:
		return m.Interactive.ButtonReply.ID
	case m.Interactive != nil && m.Interactive.ListReply != nil:
		return m.Interactive.ListReply.ID
	case m.Button != nil:
		return m.Button.Payload
	}
	return ""
}

// MediaID returns the attachment id and kind for media messages.
func (m *Message) MediaID() (id, kind, mime string) {
	switch {
	case m.Audio != nil:
		return m.Audio.ID, "audio", m.Audio.MimeType
	case m.Image != nil:
		return m.Image.ID, "image", m.Image.MimeType
	case m.Document != nil:
		return m.Document.ID, "document", m.Document.MimeType
	}
	return "", "", ""
}
