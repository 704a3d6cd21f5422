package providers

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"strings"
	"time"
)

const defaultOpenAIURL = "https://api.openai.com/v1/chat/completions"

// OpenAI implements the Backend interface for OpenAI's chat completions API.
type OpenAI struct {
	apiKey  string
	baseURL string
	client  *http.Client
}

// NewOpenAI creates an OpenAI backend. REVIO_OPENAI_BASE_URL overrides the
// endpoint for compatible servers.
func NewOpenAI(client *http.Client) *OpenAI {
	baseURL := os.Getenv("REVIO_OPENAI_BASE_URL")
	if baseURL == "" {
		baseURL = defaultOpenAIURL
	}
	if client == nil {
		client = &http.Client{Timeout: 120 * time.Second}
	}
	return &OpenAI{baseURL: baseURL, client: client}
}

func (o *OpenAI) Name() string { return "openai" }

func (o *OpenAI) RequiresCredential() bool { return true }

func (o *OpenAI) Initialize(_ context.Context, credential string) error {
	if strings.TrimSpace(credential) == "" {
		return fmt.Errorf("%w: openai requires an API key (set OPENAI_API_KEY)", ErrUnconfigured)
	}
	o.apiKey = credential
	return nil
}

func (o *OpenAI) FixCode(ctx context.Context, path, content, model string) (string, error) {
	if o.apiKey == "" {
		return "", &BackendError{Backend: o.Name(), Op: "fix", Err: errNotInitialized}
	}
	raw, err := o.complete(ctx, model, fixSystemPrompt, fixUserPrompt(path, content), 8192, 0)
	if err != nil {
		return "", &BackendError{Backend: o.Name(), Op: "fix", Err: err}
	}
	return finishFix(raw), nil
}

func (o *OpenAI) DiffSummary(ctx context.Context, original, fixed, path, model string) string {
	if o.apiKey == "" {
		return SummaryUnavailable
	}
	raw, err := o.complete(ctx, model, summarySystemPrompt, summaryUserPrompt(original, fixed, path), 512, 0.3)
	if err != nil || strings.TrimSpace(raw) == "" {
		return SummaryUnavailable
	}
	return strings.TrimSpace(raw)
}

func (o *OpenAI) complete(ctx context.Context, model, system, user string, maxTokens int, temperature float64) (string, error) {
	body := openaiRequest{
		Model: model,
		Messages: []chatMessage{
			{Role: "system", Content: system},
			{Role: "user", Content: user},
		},
		MaxTokens:   maxTokens,
		Temperature: &temperature,
	}
	headers := map[string]string{"Authorization": "Bearer " + o.apiKey}

	var result openaiResponse
	if err := postJSON(ctx, o.client, o.baseURL, headers, body, &result); err != nil {
		return "", err
	}
	if len(result.Choices) == 0 {
		return "", fmt.Errorf("%w: no choices", errEmptyResponse)
	}
	return result.Choices[0].Message.Content, nil
}

type openaiRequest struct {
	Model       string        `json:"model"`
	Messages    []chatMessage `json:"messages"`
	MaxTokens   int           `json:"max_tokens"`
	Temperature *float64      `json:"temperature,omitempty"`
}

type openaiResponse struct {
	Choices []openaiChoice `json:"choices"`
}

type openaiChoice struct {
	Message chatMessage `json:"message"`
}
