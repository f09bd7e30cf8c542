package domain

import (
	"errors"
	"time"
)

// ErrMalformedMessage marks an inbound message missing required keys
// for its declared type; handlers map it to 400 instead of 500.
var ErrMalformedMessage = errors.New("malformed message payload")

type ProcessStatus string

const (
	StatusOK           ProcessStatus = "ok"
	StatusError        ProcessStatus = "error"
	StatusNoInput      ProcessStatus = "no_input"
	StatusBuyingIntent ProcessStatus = "buying_intent"
	StatusNoMessages   ProcessStatus = "no_messages"
	StatusDuplicate    ProcessStatus = "duplicate"
)

// Inbound message types the pipeline understands. Anything else
// (image, location, sticker, ...) falls through to the no-input path.
const (
	MessageTypeText  = "text"
	MessageTypeAudio = "audio"
)

// WebhookEnvelope is the Meta Cloud API delivery payload. Only
// entry[0].changes[0].value.messages[0] is consumed.
type WebhookEnvelope struct {
	Object string         `json:"object"`
	Entry  []WebhookEntry `json:"entry"`
}

type WebhookEntry struct {
	ID      string          `json:"id"`
	Changes []WebhookChange `json:"changes"`
}

type WebhookChange struct {
	Field string       `json:"field"`
	Value WebhookValue `json:"value"`
}

type WebhookValue struct {
	MessagingProduct string           `json:"messaging_product"`
	Metadata         map[string]any   `json:"metadata"`
	Contacts         []map[string]any `json:"contacts,omitempty"`
	Messages         []InboundMessage `json:"messages,omitempty"`
	Statuses         []map[string]any `json:"statuses,omitempty"`
}

type InboundMessage struct {
	From      string        `json:"from"`
	ID        string        `json:"id"`
	Timestamp string        `json:"timestamp"`
	Type      string        `json:"type"`
	Text      *TextPayload  `json:"text,omitempty"`
	Audio     *MediaPayload `json:"audio,omitempty"`
}

type TextPayload struct {
	Body string `json:"body"`
}

type MediaPayload struct {
	ID       string `json:"id"`
	MimeType string `json:"mime_type,omitempty"`
}

// ProcessResult is returned to the webhook caller; it is never persisted.
type ProcessResult struct {
	Status    ProcessStatus `json:"status"`
	MediaSent *int          `json:"media_sent,omitempty"`
	Message   string        `json:"message,omitempty"`
}

// KBMatch is one ranked match from the knowledge store. Type is one of
// "text", "media" or "chat_history"; FilePath is set for media records.
type KBMatch struct {
	ID       string
	Score    float64
	Type     string
	FilePath string
	Caption  string
	Source   string
}

// Content returns the text used as LLM context for this match.
func (m KBMatch) Content() string {
	if m.Caption != "" {
		return m.Caption
	}
	return m.Source
}

// ConversationTurn is archived to the knowledge store once per
// successfully generated reply; it is never mutated or deleted.
type ConversationTurn struct {
	UserText  string
	Reply     string
	Phone     string
	Timestamp time.Time
}
