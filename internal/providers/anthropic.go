package providers

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"
)

const (
	anthropicAPIURL     = "https://api.anthropic.com/v1/messages"
	anthropicAPIVersion = "2023-06-01"
)

// Anthropic implements the Backend interface for Anthropic's Messages API.
type Anthropic struct {
	apiKey  string
	baseURL string
	client  *http.Client
}

// NewAnthropic creates an Anthropic backend. The API key arrives in Initialize.
func NewAnthropic(client *http.Client) *Anthropic {
	if client == nil {
		client = &http.Client{Timeout: 120 * time.Second}
	}
	return &Anthropic{baseURL: anthropicAPIURL, client: client}
}

func (a *Anthropic) Name() string { return "anthropic" }

func (a *Anthropic) RequiresCredential() bool { return true }

func (a *Anthropic) Initialize(_ context.Context, credential string) error {
	if strings.TrimSpace(credential) == "" {
		return fmt.Errorf("%w: anthropic requires an API key (set ANTHROPIC_API_KEY)", ErrUnconfigured)
	}
	a.apiKey = credential
	return nil
}

func (a *Anthropic) FixCode(ctx context.Context, path, content, model string) (string, error) {
	if a.apiKey == "" {
		return "", &BackendError{Backend: a.Name(), Op: "fix", Err: errNotInitialized}
	}
	raw, err := a.complete(ctx, model, fixSystemPrompt, fixUserPrompt(path, content), 8192)
	if err != nil {
		return "", &BackendError{Backend: a.Name(), Op: "fix", Err: err}
	}
	return finishFix(raw), nil
}

func (a *Anthropic) DiffSummary(ctx context.Context, original, fixed, path, model string) string {
	if a.apiKey == "" {
		return SummaryUnavailable
	}
	raw, err := a.complete(ctx, model, summarySystemPrompt, summaryUserPrompt(original, fixed, path), 512)
	if err != nil || strings.TrimSpace(raw) == "" {
		return SummaryUnavailable
	}
	return strings.TrimSpace(raw)
}

func (a *Anthropic) complete(ctx context.Context, model, system, user string, maxTokens int) (string, error) {
	body := anthropicRequest{
		Model:     model,
		MaxTokens: maxTokens,
		System:    system,
		Messages: []chatMessage{
			{Role: "user", Content: user},
		},
	}
	headers := map[string]string{
		"x-api-key":         a.apiKey,
		"anthropic-version": anthropicAPIVersion,
	}

	var result anthropicResponse
	if err := postJSON(ctx, a.client, a.baseURL, headers, body, &result); err != nil {
		return "", err
	}

	var (
		content strings.Builder
		found   bool
	)
	for _, block := range result.Content {
		if block.Type == "text" {
			content.WriteString(block.Text)
			found = true
		}
	}
	if !found {
		return "", fmt.Errorf("%w: no text blocks", errEmptyResponse)
	}
	return content.String(), nil
}

type anthropicRequest struct {
	Model     string        `json:"model"`
	MaxTokens int           `json:"max_tokens"`
	System    string        `json:"system,omitempty"`
	Messages  []chatMessage `json:"messages"`
}

type anthropicResponse struct {
	Content []anthropicBlock `json:"content"`
}

type anthropicBlock struct {
	Type string `json:"type"`
	Text string `json:"text"`
}
