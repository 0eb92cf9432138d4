package engine

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"os"
	"strings"
	"time"
)

// Gemini is a provider backed by the Google Generative Language API.
type Gemini struct {
	endpoint   string
	model      string
	apiKey     string
	httpClient *http.Client
	logger     *log.Logger
}

// NewGemini constructs a Gemini provider.
// endpoint example: https://generativelanguage.googleapis.com/v1beta
// model example: gemini-2.5-flash-lite
// apiKey is required; when empty this constructor tries GEMINI_API_KEY.
func NewGemini(endpoint, model, apiKey string, logger *log.Logger) (*Gemini, error) {
	ep := strings.TrimSpace(endpoint)
	if ep == "" {
		ep = "https://generativelanguage.googleapis.com/v1beta"
	}
	m := strings.TrimSpace(model)
	if m == "" {
		return nil, fmt.Errorf("gemini: model is required")
	}
	key := strings.TrimSpace(apiKey)
	if key == "" {
		key = strings.TrimSpace(os.Getenv("GEMINI_API_KEY"))
	}
	if key == "" {
		return nil, fmt.Errorf("gemini: apiKey required (set in settings or GEMINI_API_KEY)")
	}
	return &Gemini{
		endpoint:   strings.TrimRight(ep, "/"),
		model:      m,
		apiKey:     key,
		httpClient: &http.Client{Timeout: 60 * time.Second},
		logger:     logger,
	}, nil
}

func (g *Gemini) name() string { return "gemini" }

// generate sends one generateContent request and returns the raw model text.
func (g *Gemini) generate(ctx context.Context, prompt string) (string, error) {
	type part struct {
		Text string `json:"text"`
	}
	type content struct {
		Parts []part `json:"parts"`
	}
	type genReq struct {
		Contents []content `json:"contents"`
	}
	type candidate struct {
		Content      content `json:"content"`
		FinishReason string  `json:"finishReason"`
	}
	type genResp struct {
		Candidates []candidate `json:"candidates"`
		Error      *struct {
			Code    int    `json:"code"`
			Message string `json:"message"`
			Status  string `json:"status"`
		} `json:"error,omitempty"`
	}

	payload := genReq{Contents: []content{{Parts: []part{{Text: prompt}}}}}
	data, _ := json.Marshal(payload)

	url := fmt.Sprintf("%s/models/%s:generateContent", g.endpoint, g.model)
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(data))
	if err != nil {
		return "", fmt.Errorf("gemini: build request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("x-goog-api-key", g.apiKey)

	resp, err := g.httpClient.Do(httpReq)
	if err != nil {
		return "", fmt.Errorf("gemini: request error: %w", err)
	}
	defer resp.Body.Close()

	body, _ := io.ReadAll(resp.Body)
	if resp.StatusCode/100 != 2 {
		return "", fmt.Errorf("gemini: status %d: %s", resp.StatusCode, truncateBody(string(body), 400))
	}

	var parsed genResp
	if err := json.Unmarshal(body, &parsed); err != nil {
		return "", fmt.Errorf("gemini: decode response: %w", err)
	}
	if parsed.Error != nil {
		return "", fmt.Errorf("gemini: %s (%d)", parsed.Error.Message, parsed.Error.Code)
	}
	if len(parsed.Candidates) == 0 || len(parsed.Candidates[0].Content.Parts) == 0 {
		return "", fmt.Errorf("gemini: empty candidates")
	}

	var sb strings.Builder
	for _, p := range parsed.Candidates[0].Content.Parts {
		sb.WriteString(p.Text)
	}
	return sb.String(), nil
}

// HealthCheck performs a lightweight GET /models using the API key.
func (g *Gemini) HealthCheck(ctx context.Context) error {
	url := g.endpoint + "/models"
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return err
	}
	req.Header.Set("x-goog-api-key", g.apiKey)
	resp, err := g.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode/100 != 2 {
		body, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("gemini health: status %d: %s", resp.StatusCode, truncateBody(string(body), 300))
	}
	return nil
}

// Helpers

func truncateBody(s string, max int) string {
	if max <= 0 {
		return ""
	}
	if len(s) <= max {
		return s
	}
	if max <= 3 {
		return s[:max]
	}
	return s[:max-3] + "..."
}
