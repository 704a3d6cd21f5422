package providers

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	"google.golang.org/genai"
)

// Gemini implements the Backend interface for Google's Gemini API through the
// genai SDK. The SDK client is the session handle; it is created by
// Initialize and owned by this value for the rest of the run.
type Gemini struct {
	baseURL    string
	httpClient *http.Client
	client     *genai.Client
}

// NewGemini creates a Gemini backend. The credential arrives in Initialize.
func NewGemini(httpClient *http.Client) *Gemini {
	return &Gemini{httpClient: httpClient}
}

func (g *Gemini) Name() string { return "gemini" }

func (g *Gemini) RequiresCredential() bool { return true }

func (g *Gemini) Initialize(ctx context.Context, credential string) error {
	if strings.TrimSpace(credential) == "" {
		return fmt.Errorf("%w: gemini requires an API key (set GEMINI_API_KEY)", ErrUnconfigured)
	}
	cc := &genai.ClientConfig{
		APIKey:     credential,
		Backend:    genai.BackendGeminiAPI,
		HTTPClient: g.httpClient,
	}
	if g.baseURL != "" {
		cc.HTTPOptions = genai.HTTPOptions{BaseURL: g.baseURL}
	}
	client, err := genai.NewClient(ctx, cc)
	if err != nil {
		return fmt.Errorf("%w: creating gemini client: %v", ErrUnconfigured, err)
	}
	g.client = client
	return nil
}

func (g *Gemini) FixCode(ctx context.Context, path, content, model string) (string, error) {
	if g.client == nil {
		return "", &BackendError{Backend: g.Name(), Op: "fix", Err: errNotInitialized}
	}
	raw, err := g.generate(ctx, model, fixSystemPrompt, fixUserPrompt(path, content), 0, 8192)
	if err != nil {
		return "", &BackendError{Backend: g.Name(), Op: "fix", Err: err}
	}
	return finishFix(raw), nil
}

func (g *Gemini) DiffSummary(ctx context.Context, original, fixed, path, model string) string {
	if g.client == nil {
		return SummaryUnavailable
	}
	raw, err := g.generate(ctx, model, summarySystemPrompt, summaryUserPrompt(original, fixed, path), 0.3, 512)
	if err != nil || strings.TrimSpace(raw) == "" {
		return SummaryUnavailable
	}
	return strings.TrimSpace(raw)
}

func (g *Gemini) generate(ctx context.Context, model, system, user string, temperature float32, maxTokens int32) (string, error) {
	cfg := &genai.GenerateContentConfig{
		SystemInstruction: genai.NewContentFromText(system, genai.RoleUser),
		Temperature:       genai.Ptr(temperature),
		MaxOutputTokens:   maxTokens,
	}
	resp, err := g.client.Models.GenerateContent(ctx, model, genai.Text(user), cfg)
	if err != nil {
		return "", fmt.Errorf("generating content: %w", err)
	}
	if resp == nil || len(resp.Candidates) == 0 {
		return "", fmt.Errorf("%w: no candidates", errEmptyResponse)
	}
	return resp.Text(), nil
}
