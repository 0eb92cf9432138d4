package engine

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"strings"
	"time"
)

// Ollama is a provider backed by a local Ollama server, for running the
// assessment pipeline without a cloud key.
type Ollama struct {
	endpoint   string
	model      string
	httpClient *http.Client
	logger     *log.Logger
}

// NewOllama constructs an Ollama provider.
// endpoint example: http://localhost:11434
func NewOllama(endpoint, model string, logger *log.Logger) (*Ollama, error) {
	if endpoint == "" {
		return nil, fmt.Errorf("ollama: endpoint is required")
	}
	if strings.TrimSpace(model) == "" {
		return nil, fmt.Errorf("ollama: model is required")
	}
	return &Ollama{
		endpoint:   strings.TrimRight(endpoint, "/"),
		model:      strings.TrimSpace(model),
		httpClient: &http.Client{Timeout: 60 * time.Second},
		logger:     logger,
	}, nil
}

func (o *Ollama) name() string { return "ollama" }

// generate sends one non-streaming chat request and returns the raw text.
func (o *Ollama) generate(ctx context.Context, prompt string) (string, error) {
	type ollamaMsg struct {
		Role    string `json:"role"`
		Content string `json:"content"`
	}
	type chatReq struct {
		Model    string      `json:"model"`
		Messages []ollamaMsg `json:"messages"`
		Stream   bool        `json:"stream"`
	}
	type chatResp struct {
		Message struct {
			Role    string `json:"role"`
			Content string `json:"content"`
		} `json:"message"`
		Error string `json:"error,omitempty"`
	}

	payload := chatReq{
		Model:    o.model,
		Messages: []ollamaMsg{{Role: "user", Content: prompt}},
		Stream:   false,
	}
	data, _ := json.Marshal(payload)

	url := o.endpoint + "/api/chat"
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(data))
	if err != nil {
		return "", fmt.Errorf("ollama: build request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := o.httpClient.Do(httpReq)
	if err != nil {
		return "", fmt.Errorf("ollama: request error: %w", err)
	}
	defer resp.Body.Close()

	body, _ := io.ReadAll(resp.Body)
	if resp.StatusCode/100 != 2 {
		return "", fmt.Errorf("ollama: status %d: %s", resp.StatusCode, truncateBody(string(body), 400))
	}

	var parsed chatResp
	if err := json.Unmarshal(body, &parsed); err != nil {
		return "", fmt.Errorf("ollama: decode response: %w", err)
	}
	if parsed.Error != "" {
		return "", fmt.Errorf("ollama: %s", parsed.Error)
	}
	return parsed.Message.Content, nil
}

// HealthCheck pings the Ollama version endpoint.
func (o *Ollama) HealthCheck(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, o.endpoint+"/api/version", nil)
	if err != nil {
		return err
	}
	resp, err := o.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode/100 != 2 {
		return fmt.Errorf("ollama health: status %d", resp.StatusCode)
	}
	return nil
}
