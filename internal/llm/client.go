// Package llm is a thin client for an OpenAI-compatible chat-completions API.
// Each request is attempted exactly once; callers decide how to degrade.
package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

const (
	DefaultModel   = "gpt-3.5-turbo"
	defaultBaseURL = "https://api.openai.com/v1"
	defaultTimeout = 60 * time.Second
)

const (
	RoleSystem = "system"
	RoleUser   = "user"
)

// CompletionClient is the seam the generation gateway depends on; tests stub it.
type CompletionClient interface {
	Complete(ctx context.Context, request CompletionRequest) (CompletionResponse, error)
}

type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type CompletionRequest struct {
	Model       string    `json:"model"`
	Messages    []Message `json:"messages"`
	Temperature float64   `json:"temperature,omitempty"`
	MaxTokens   int       `json:"max_tokens,omitempty"`
}

type CompletionResponse struct {
	Content     string
	TotalTokens int64
	Model       string
}

type Client struct {
	httpClient *http.Client
	baseURL    string
	apiKey     string
	model      string
}

type Config struct {
	BaseURL string
	APIKey  string
	Model   string
	Timeout time.Duration
}

func NewClient(cfg Config) *Client {
	baseURL := strings.TrimRight(strings.TrimSpace(cfg.BaseURL), "/")
	if baseURL == "" {
		baseURL = defaultBaseURL
	}
	model := strings.TrimSpace(cfg.Model)
	if model == "" {
		model = DefaultModel
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = defaultTimeout
	}

	return &Client{
		httpClient: &http.Client{Timeout: timeout},
		baseURL:    baseURL,
		apiKey:     cfg.APIKey,
		model:      model,
	}
}

// Model returns the configured model identifier.
func (client *Client) Model() string {
	return client.model
}

type wireChoice struct {
	Message Message `json:"message"`
}

type wireUsage struct {
	TotalTokens int64 `json:"total_tokens"`
}

type wireResponse struct {
	Model   string       `json:"model"`
	Choices []wireChoice `json:"choices"`
	Usage   wireUsage    `json:"usage"`
	Error   *wireError   `json:"error,omitempty"`
}

type wireError struct {
	Message string `json:"message"`
	Type    string `json:"type"`
}

func (client *Client) Complete(ctx context.Context, request CompletionRequest) (CompletionResponse, error) {
	if request.Model == "" {
		request.Model = client.model
	}
	if len(request.Messages) == 0 {
		return CompletionResponse{}, fmt.Errorf("completion request has no messages")
	}

	payload, err := json.Marshal(request)
	if err != nil {
		return CompletionResponse{}, fmt.Errorf("encode completion request: %w", err)
	}

	httpRequest, err := http.NewRequestWithContext(ctx, http.MethodPost, client.baseURL+"/chat/completions", bytes.NewReader(payload))
	if err != nil {
		return CompletionResponse{}, fmt.Errorf("build completion request: %w", err)
	}
	httpRequest.Header.Set("Content-Type", "application/json")
	if client.apiKey != "" {
		httpRequest.Header.Set("Authorization", "Bearer "+client.apiKey)
	}

	httpResponse, err := client.httpClient.Do(httpRequest)
	if err != nil {
		return CompletionResponse{}, fmt.Errorf("completion call: %w", err)
	}
	defer httpResponse.Body.Close()

	body, err := io.ReadAll(io.LimitReader(httpResponse.Body, 4<<20))
	if err != nil {
		return CompletionResponse{}, fmt.Errorf("read completion response: %w", err)
	}

	var decoded wireResponse
	if err := json.Unmarshal(body, &decoded); err != nil {
		return CompletionResponse{}, fmt.Errorf("decode completion response (status %d): %w", httpResponse.StatusCode, err)
	}

	if httpResponse.StatusCode != http.StatusOK {
		message := strings.TrimSpace(decoded.errorMessage())
		if message == "" {
			message = http.StatusText(httpResponse.StatusCode)
		}
		return CompletionResponse{}, fmt.Errorf("completion API status %d: %s", httpResponse.StatusCode, message)
	}

	if len(decoded.Choices) == 0 {
		return CompletionResponse{}, fmt.Errorf("completion response has no choices")
	}

	model := decoded.Model
	if model == "" {
		model = request.Model
	}

	return CompletionResponse{
		Content:     decoded.Choices[0].Message.Content,
		TotalTokens: decoded.Usage.TotalTokens,
		Model:       model,
	}, nil
}

func (response wireResponse) errorMessage() string {
	if response.Error == nil {
		return ""
	}
	return response.Error.Message
}
