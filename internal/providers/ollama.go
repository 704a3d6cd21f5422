package providers

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"strings"
	"time"
)

const defaultOllamaURL = "http://127.0.0.1:11434"

// Fallback summaries for the local daemon. Each failure mode has its own text
// so the progress log shows which one happened.
const (
	summaryEmpty  = "No changes summarized."
	summaryFailed = "Could not generate summary."
)

// Ollama implements the Backend interface for a local Ollama daemon using its
// native /api/chat endpoint. No credential is needed.
type Ollama struct {
	baseURL string
	client  *http.Client
	ready   bool
}

// NewOllama creates an Ollama backend. An empty host falls back to
// OLLAMA_HOST and then to the default local address.
func NewOllama(host string, client *http.Client) *Ollama {
	if host == "" {
		host = os.Getenv("OLLAMA_HOST")
	}
	if host == "" {
		host = defaultOllamaURL
	}
	if !strings.Contains(host, "://") {
		host = "http://" + host
	}
	if client == nil {
		client = &http.Client{Timeout: 300 * time.Second}
	}
	return &Ollama{
		baseURL: strings.TrimRight(host, "/"),
		client:  client,
	}
}

func (o *Ollama) Name() string { return "ollama" }

func (o *Ollama) RequiresCredential() bool { return false }

// Initialize queries /api/tags and fails with ErrUnreachable unless the
// daemon answers 200.
func (o *Ollama) Initialize(ctx context.Context, _ string) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, o.baseURL+"/api/tags", nil)
	if err != nil {
		return fmt.Errorf("%w: creating request: %v", ErrUnreachable, err)
	}
	resp, err := o.client.Do(req)
	if err != nil {
		return fmt.Errorf("%w: ollama at %s: is it running? (%v)", ErrUnreachable, o.baseURL, err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("%w: ollama at %s is not responding (status %d)", ErrUnreachable, o.baseURL, resp.StatusCode)
	}
	o.ready = true
	return nil
}

func (o *Ollama) FixCode(ctx context.Context, path, content, model string) (string, error) {
	if !o.ready {
		return "", &BackendError{Backend: o.Name(), Op: "fix", Err: errNotInitialized}
	}
	raw, err := o.chat(ctx, model, fixSystemPrompt, fixUserPrompt(path, content), ollamaOptions{Temperature: 0, NumPredict: 4096})
	if err != nil {
		return "", &BackendError{Backend: o.Name(), Op: "fix", Err: err}
	}
	return finishFix(raw), nil
}

func (o *Ollama) DiffSummary(ctx context.Context, original, fixed, path, model string) string {
	if !o.ready {
		return SummaryUnavailable
	}
	raw, err := o.chat(ctx, model, summarySystemPrompt, summaryUserPrompt(original, fixed, path), ollamaOptions{Temperature: 0.3, NumPredict: 200})
	if err != nil {
		if isStatusError(err) {
			return SummaryUnavailable
		}
		return summaryFailed
	}
	if s := strings.TrimSpace(raw); s != "" {
		return s
	}
	return summaryEmpty
}

func (o *Ollama) chat(ctx context.Context, model, system, user string, opts ollamaOptions) (string, error) {
	body := ollamaChatRequest{
		Model:   model,
		Stream:  false,
		Options: opts,
		Messages: []chatMessage{
			{Role: "system", Content: system},
			{Role: "user", Content: user},
		},
	}
	var result ollamaChatResponse
	if err := postJSON(ctx, o.client, o.baseURL+"/api/chat", nil, body, &result); err != nil {
		return "", err
	}
	if result.Error != "" {
		return "", fmt.Errorf("ollama: %s", result.Error)
	}
	if result.Message == nil {
		return "", fmt.Errorf("%w: no message", errEmptyResponse)
	}
	return result.Message.Content, nil
}

// isStatusError reports whether err came from a non-2xx HTTP answer rather
// than from the transport.
func isStatusError(err error) bool {
	var (
		se *serverError
		st *statusError
		rl *rateLimitError
		ae *authError
	)
	return errors.As(err, &se) || errors.As(err, &st) || errors.As(err, &rl) || errors.As(err, &ae)
}

type ollamaChatRequest struct {
	Model    string        `json:"model"`
	Stream   bool          `json:"stream"`
	Options  ollamaOptions `json:"options"`
	Messages []chatMessage `json:"messages"`
}

type ollamaOptions struct {
	Temperature float64 `json:"temperature"`
	NumPredict  int     `json:"num_predict"`
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type ollamaChatResponse struct {
	Message *chatMessage `json:"message,omitempty"`
	Error   string       `json:"error,omitempty"`
}
