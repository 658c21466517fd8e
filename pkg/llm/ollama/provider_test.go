package ollama

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"doc-intelligence-be/pkg/llm"
)

func TestOllamaProviderChat(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/chat" {
			t.Errorf("path = %q", r.URL.Path)
		}

		var req ollamaChatRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Errorf("decode request: %v", err)
		}
		if req.Model != "llama3" {
			t.Errorf("model = %q", req.Model)
		}
		if req.Stream {
			t.Error("stream must be disabled")
		}

		json.NewEncoder(w).Encode(ollamaChatResponse{
			Model:   req.Model,
			Message: ollamaMessage{Role: "assistant", Content: `{"summary":"ok"}`},
			Done:    true,
		})
	}))
	defer srv.Close()

	provider := NewOllamaProvider(srv.URL, "llama3")

	out, err := provider.Generate(context.Background(), "enhance this", llm.WithTemperature(0.2))
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	if out != `{"summary":"ok"}` {
		t.Errorf("out = %q", out)
	}
}

func TestOllamaProviderErrorStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
		w.Write([]byte("model not loaded"))
	}))
	defer srv.Close()

	provider := NewOllamaProvider(srv.URL, "llama3")
	if _, err := provider.Generate(context.Background(), "hi"); err == nil {
		t.Fatal("expected error on 500")
	}
}
