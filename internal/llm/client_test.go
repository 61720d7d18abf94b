package llm

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func TestClientGenerate(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/v1/chat/completions" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		if got := r.Header.Get("Authorization"); got != "Bearer test-key" {
			t.Errorf("unexpected auth header %q", got)
		}
		fmt.Fprint(w, `{"choices":[{"message":{"content":"generated answer"}}]}`)
	}))
	defer server.Close()

	client := NewClient("groq", server.URL, "test-key", "llama-3.3-70b-versatile")
	got, err := client.Generate(context.Background(), "a prompt")
	if err != nil {
		t.Fatalf("Generate() error: %v", err)
	}
	if got != "generated answer" {
		t.Errorf("Generate() = %q, want %q", got, "generated answer")
	}
}

func TestClientGenerateBadStatus(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
		fmt.Fprint(w, `{"error":{"message":"rate limit exceeded"}}`)
	}))
	defer server.Close()

	client := NewClient("groq", server.URL, "test-key", "model")
	_, err := client.Generate(context.Background(), "a prompt")
	if err == nil {
		t.Fatal("expected error on 429 response")
	}
	if !strings.Contains(err.Error(), "429") {
		t.Errorf("expected status code in error signature, got %v", err)
	}
}

func TestClientGenerateNoChoices(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"choices":[]}`)
	}))
	defer server.Close()

	client := NewClient("groq", server.URL, "test-key", "model")
	if _, err := client.Generate(context.Background(), "a prompt"); err == nil {
		t.Fatal("expected error when no choices returned")
	}
}

func TestClientGenerateStream(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/event-stream")
		fmt.Fprint(w, "data: {\"choices\":[{\"delta\":{\"content\":\"Hel\"}}]}\n\n")
		fmt.Fprint(w, "data: {\"choices\":[{\"delta\":{\"content\":\"lo\"}}]}\n\n")
		fmt.Fprint(w, "data: not-json\n\n")
		fmt.Fprint(w, "data: [DONE]\n\n")
	}))
	defer server.Close()

	client := NewClient("groq", server.URL, "test-key", "model")
	var fragments []string
	err := client.GenerateStream(context.Background(), "a prompt", func(f string) error {
		fragments = append(fragments, f)
		return nil
	})
	if err != nil {
		t.Fatalf("GenerateStream() error: %v", err)
	}
	if strings.Join(fragments, "") != "Hello" {
		t.Errorf("unexpected fragments %v", fragments)
	}
}

func TestClientGenerateStreamStopsOnFinishReason(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, "data: {\"choices\":[{\"delta\":{\"content\":\"done\"},\"finish_reason\":\"stop\"}]}\n\n")
		fmt.Fprint(w, "data: {\"choices\":[{\"delta\":{\"content\":\"ignored\"}}]}\n\n")
	}))
	defer server.Close()

	client := NewClient("groq", server.URL, "test-key", "model")
	var joined strings.Builder
	err := client.GenerateStream(context.Background(), "a prompt", func(f string) error {
		joined.WriteString(f)
		return nil
	})
	if err != nil {
		t.Fatalf("GenerateStream() error: %v", err)
	}
	if joined.String() != "done" {
		t.Errorf("expected stream to stop at finish_reason, got %q", joined.String())
	}
}
