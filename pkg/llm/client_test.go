package llm

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	openai "github.com/openai/openai-go/v3"
	"github.com/openai/openai-go/v3/option"

	"github.com/vagnerlopes/whatsapp-sales-agent/internal/domain"
)

func TestBuildQuestion_IncludesContextAndUserText(t *testing.T) {
	contexts := []domain.KBMatch{
		{Type: "text", Caption: "O tratamento dura 30 dias."},
		{Type: "media", Caption: "Antes e depois"},
		{Type: "chat_history", Source: "chat_history"},
	}

	question := buildQuestion("quanto custa?", contexts)

	if !strings.Contains(question, "O tratamento dura 30 dias.") {
		t.Errorf("expected KB content in question, got %q", question)
	}
	if !strings.Contains(question, "quanto custa?") {
		t.Errorf("expected user text in question, got %q", question)
	}
}

func TestBuildQuestion_EmptyContextIsMarked(t *testing.T) {
	question := buildQuestion("olá", nil)

	if !strings.Contains(question, "(vazio)") {
		t.Errorf("expected empty-context marker, got %q", question)
	}
}

func TestGenerate_ReturnsCompletionContent(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !strings.HasSuffix(r.URL.Path, "/chat/completions") {
			t.Errorf("unexpected request path %s", r.URL.Path)
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{
			"id": "chatcmpl-1",
			"object": "chat.completion",
			"model": "gpt-4o-mini",
			"choices": [{
				"index": 0,
				"finish_reason": "stop",
				"message": {"role": "assistant", "content": "Custa R$199."}
			}]
		}`))
	}))
	defer srv.Close()

	client := &Client{
		openai: openai.NewClient(
			option.WithAPIKey("test-key"),
			option.WithBaseURL(srv.URL+"/v1"),
		),
		model:       "gpt-4o-mini",
		temperature: 0.6,
	}

	reply, err := client.Generate(context.Background(), "quanto custa?", nil)
	if err != nil {
		t.Fatalf("Generate returned error: %v", err)
	}

	if reply != "Custa R$199." {
		t.Errorf("unexpected reply %q", reply)
	}
}

func TestGenerate_EmptyContentIsError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{
			"id": "chatcmpl-1",
			"object": "chat.completion",
			"model": "gpt-4o-mini",
			"choices": [{
				"index": 0,
				"finish_reason": "stop",
				"message": {"role": "assistant", "content": ""}
			}]
		}`))
	}))
	defer srv.Close()

	client := &Client{
		openai: openai.NewClient(
			option.WithAPIKey("test-key"),
			option.WithBaseURL(srv.URL+"/v1"),
		),
		model:       "gpt-4o-mini",
		temperature: 0.6,
	}

	if _, err := client.Generate(context.Background(), "olá", nil); err == nil {
		t.Fatalf("expected error on empty completion content")
	}
}
