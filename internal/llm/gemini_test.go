package llm

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func TestGeminiGenerate(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !strings.Contains(r.URL.Path, "gemini-2.0-flash:generateContent") {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		if r.URL.Query().Get("key") != "api-key" {
			t.Errorf("missing api key in query")
		}
		fmt.Fprint(w, `{"candidates":[{"content":{"parts":[{"text":"gemini answer"}]}}]}`)
	}))
	defer server.Close()

	client := NewGeminiClient("api-key", "gemini-2.0-flash")
	client.baseURL = server.URL

	got, err := client.Generate(context.Background(), "a prompt")
	if err != nil {
		t.Fatalf("Generate() error: %v", err)
	}
	if got != "gemini answer" {
		t.Errorf("Generate() = %q, want %q", got, "gemini answer")
	}
}

func TestGeminiGenerateStream(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("alt") != "sse" {
			t.Errorf("expected alt=sse query")
		}
		fmt.Fprint(w, "data: {\"candidates\":[{\"content\":{\"parts\":[{\"text\":\"one \"}]}}]}\n\n")
		fmt.Fprint(w, "data: {\"candidates\":[{\"content\":{\"parts\":[{\"text\":\"two\"}]}}]}\n\n")
	}))
	defer server.Close()

	client := NewGeminiClient("api-key", "gemini-2.0-flash")
	client.baseURL = server.URL

	var joined strings.Builder
	err := client.GenerateStream(context.Background(), "a prompt", func(f string) error {
		joined.WriteString(f)
		return nil
	})
	if err != nil {
		t.Fatalf("GenerateStream() error: %v", err)
	}
	if joined.String() != "one two" {
		t.Errorf("unexpected stream %q", joined.String())
	}
}

func TestGeminiGenerateQuotaSignature(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
		fmt.Fprint(w, `{"error":{"code":429,"status":"RESOURCE_EXHAUSTED"}}`)
	}))
	defer server.Close()

	client := NewGeminiClient("api-key", "gemini-2.0-flash")
	client.baseURL = server.URL

	_, err := client.Generate(context.Background(), "a prompt")
	if err == nil {
		t.Fatal("expected error")
	}
	// The failure signature must carry the quota markers downstream code
	// inspects.
	if !strings.Contains(err.Error(), "RESOURCE_EXHAUSTED") {
		t.Errorf("expected RESOURCE_EXHAUSTED in error signature, got %v", err)
	}
}
