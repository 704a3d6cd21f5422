package providers

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"
)

// NoChanges is the sentinel a backend returns when the file needs no fix.
// It is distinct from an empty answer and from an error.
const NoChanges = "NO_CHANGES"

// SummaryUnavailable is the fallback DiffSummary text used when the summary
// request fails.
const SummaryUnavailable = "Summary unavailable."

// Backend is the provider abstraction interface.
type Backend interface {
	// Name is the short backend identifier used in logs and reports.
	Name() string
	// RequiresCredential reports whether Initialize needs a non-empty credential.
	RequiresCredential() bool
	// Initialize validates the credential or contacts the service. It fails
	// with ErrUnconfigured or ErrUnreachable.
	Initialize(ctx context.Context, credential string) error
	// FixCode returns corrected source for content, or NoChanges.
	// Failures are *BackendError.
	FixCode(ctx context.Context, path, content, model string) (string, error)
	// DiffSummary describes the change from original to fixed. It never
	// fails; errors are replaced with a fallback string.
	DiffSummary(ctx context.Context, original, fixed, path, model string) string
}

// Kind selects a backend family.
type Kind int

const (
	KindOllama Kind = iota
	KindGemini
	KindAnthropic
	KindOpenAI
)

// Descriptor describes a backend family.
type Descriptor struct {
	Kind               Kind
	Name               string
	RequiresCredential bool
	DefaultModel       string
	// ChecksService is set when Initialize contacts the service. Other
	// backends only check that a credential is present.
	ChecksService bool
	// CredentialEnv lists environment variables consulted for the credential,
	// in order.
	CredentialEnv []string
}

var descriptors = []Descriptor{
	{Kind: KindOllama, Name: "ollama", DefaultModel: "codellama:7b", ChecksService: true},
	{Kind: KindGemini, Name: "gemini", RequiresCredential: true, DefaultModel: "gemini-2.0-flash-exp", CredentialEnv: []string{"GEMINI_API_KEY", "GOOGLE_API_KEY"}},
	{Kind: KindAnthropic, Name: "anthropic", RequiresCredential: true, DefaultModel: "claude-sonnet-4-20250514", CredentialEnv: []string{"ANTHROPIC_API_KEY"}},
	{Kind: KindOpenAI, Name: "openai", RequiresCredential: true, DefaultModel: "gpt-4o-mini", CredentialEnv: []string{"OPENAI_API_KEY"}},
}

// Descriptors returns all backend descriptors in display order.
func Descriptors() []Descriptor {
	out := make([]Descriptor, len(descriptors))
	copy(out, descriptors)
	return out
}

// Describe returns the descriptor for k.
func Describe(k Kind) Descriptor {
	for _, d := range descriptors {
		if d.Kind == k {
			return d
		}
	}
	return Descriptor{Kind: k, Name: "unknown"}
}

func (k Kind) String() string { return Describe(k).Name }

// ParseKind maps a provider name to its Kind.
func ParseKind(name string) (Kind, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "ollama":
		return KindOllama, nil
	case "gemini", "google":
		return KindGemini, nil
	case "anthropic", "claude":
		return KindAnthropic, nil
	case "openai":
		return KindOpenAI, nil
	default:
		return 0, fmt.Errorf("unknown provider: %s", name)
	}
}

// Options carries transport settings shared by all backends.
type Options struct {
	// OllamaHost overrides the local daemon address.
	OllamaHost string
	// Timeout bounds a single HTTP request. Zero uses the backend default.
	Timeout time.Duration
}

// New creates a backend by kind. The backend is not usable until Initialize
// succeeds.
func New(kind Kind, opts Options) (Backend, error) {
	switch kind {
	case KindOllama:
		return NewOllama(opts.OllamaHost, httpClient(opts.Timeout, 300*time.Second)), nil
	case KindGemini:
		return NewGemini(httpClient(opts.Timeout, 120*time.Second)), nil
	case KindAnthropic:
		return NewAnthropic(httpClient(opts.Timeout, 120*time.Second)), nil
	case KindOpenAI:
		return NewOpenAI(httpClient(opts.Timeout, 120*time.Second)), nil
	default:
		return nil, fmt.Errorf("unknown provider kind: %d", int(kind))
	}
}

func httpClient(timeout, fallback time.Duration) *http.Client {
	if timeout <= 0 {
		timeout = fallback
	}
	return &http.Client{Timeout: timeout}
}
