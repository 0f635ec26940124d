package llm

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func TestCompleteDecodesResponse(t *testing.T) {
	t.Parallel()

	var gotAuth string
	var gotRequest CompletionRequest
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		if r.URL.Path != "/chat/completions" {
			t.Errorf("path = %q", r.URL.Path)
		}
		if err := json.NewDecoder(r.Body).Decode(&gotRequest); err != nil {
			t.Errorf("decode request: %v", err)
		}
		json.NewEncoder(w).Encode(map[string]any{
			"model": "gpt-4",
			"choices": []map[string]any{
				{"message": map[string]string{"role": "assistant", "content": "plano gerado"}},
			},
			"usage": map[string]int64{"total_tokens": 321},
		})
	}))
	defer server.Close()

	client := NewClient(Config{BaseURL: server.URL, APIKey: "sk-test", Model: "gpt-4"})
	response, err := client.Complete(context.Background(), CompletionRequest{
		Messages: []Message{{Role: RoleSystem, Content: "instrução"}},
	})
	if err != nil {
		t.Fatalf("Complete error: %v", err)
	}

	if response.Content != "plano gerado" || response.TotalTokens != 321 || response.Model != "gpt-4" {
		t.Fatalf("response = %+v", response)
	}
	if gotAuth != "Bearer sk-test" {
		t.Fatalf("authorization = %q", gotAuth)
	}
	if gotRequest.Model != "gpt-4" {
		t.Fatalf("request model = %q, want configured default applied", gotRequest.Model)
	}
}

func TestCompleteSurfacesAPIError(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
		json.NewEncoder(w).Encode(map[string]any{
			"error": map[string]string{"message": "rate limit reached", "type": "requests"},
		})
	}))
	defer server.Close()

	client := NewClient(Config{BaseURL: server.URL})
	_, err := client.Complete(context.Background(), CompletionRequest{
		Messages: []Message{{Role: RoleUser, Content: "oi"}},
	})
	if err == nil {
		t.Fatal("expected an error for a 429 response")
	}
	if !strings.Contains(err.Error(), "rate limit reached") {
		t.Fatalf("error %q should carry the API message", err)
	}
}

func TestCompleteRejectsEmptyMessages(t *testing.T) {
	t.Parallel()

	client := NewClient(Config{BaseURL: "http://unused.invalid"})
	if _, err := client.Complete(context.Background(), CompletionRequest{}); err == nil {
		t.Fatal("expected an error for a request with no messages")
	}
}

func TestNewClientDefaults(t *testing.T) {
	t.Parallel()

	client := NewClient(Config{})
	if client.Model() != DefaultModel {
		t.Fatalf("model = %q, want %q", client.Model(), DefaultModel)
	}
}
