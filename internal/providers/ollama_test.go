package providers

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
)

// ollamaServer serves /api/tags and answers /api/chat with reply. The last
// decoded chat request is stored in *got.
func ollamaServer(t *testing.T, reply string, got *ollamaChatRequest) *httptest.Server {
	t.Helper()
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/api/tags":
			w.Write([]byte(`{"models":[]}`))
		case "/api/chat":
			if r.Method != http.MethodPost {
				t.Errorf("method = %s, want POST", r.Method)
			}
			body, _ := io.ReadAll(r.Body)
			var req ollamaChatRequest
			if err := json.Unmarshal(body, &req); err != nil {
				t.Errorf("decoding request: %v", err)
			}
			if got != nil {
				*got = req
			}
			json.NewEncoder(w).Encode(ollamaChatResponse{
				Message: &chatMessage{Role: "assistant", Content: reply},
			})
		default:
			http.NotFound(w, r)
		}
	}))
	t.Cleanup(server.Close)
	return server
}

func readyOllama(t *testing.T, server *httptest.Server) *Ollama {
	t.Helper()
	o := NewOllama(server.URL, server.Client())
	if err := o.Initialize(context.Background(), ""); err != nil {
		t.Fatalf("Initialize error: %v", err)
	}
	return o
}

func TestOllama_FixCode(t *testing.T) {
	var got ollamaChatRequest
	server := ollamaServer(t, "```js\nconst x = 1;\n```", &got)
	o := readyOllama(t, server)

	out, err := o.FixCode(context.Background(), "/src/app.js", "let x = 1", "codellama:7b")
	if err != nil {
		t.Fatalf("FixCode error: %v", err)
	}
	if out != "const x = 1;" {
		t.Errorf("FixCode = %q, want %q", out, "const x = 1;")
	}

	if got.Model != "codellama:7b" {
		t.Errorf("model = %q", got.Model)
	}
	if got.Stream {
		t.Error("stream should be false")
	}
	if got.Options.Temperature != 0 || got.Options.NumPredict != 4096 {
		t.Errorf("options = %+v, want temperature 0, num_predict 4096", got.Options)
	}
	if len(got.Messages) != 2 || got.Messages[0].Role != "system" || got.Messages[1].Role != "user" {
		t.Fatalf("messages = %+v", got.Messages)
	}
	if !strings.Contains(got.Messages[0].Content, "NO_CHANGES") {
		t.Error("system prompt should mention the NO_CHANGES token")
	}
	if !strings.Contains(got.Messages[1].Content, "/src/app.js") || !strings.Contains(got.Messages[1].Content, "let x = 1") {
		t.Errorf("user prompt missing path or content: %q", got.Messages[1].Content)
	}
}

func TestOllama_FixCode_NoChangesWins(t *testing.T) {
	server := ollamaServer(t, "Looks fine.\nNO_CHANGES\n```js\nlet x = 1\n```", nil)
	o := readyOllama(t, server)

	out, err := o.FixCode(context.Background(), "a.js", "let x = 1", "m")
	if err != nil {
		t.Fatalf("FixCode error: %v", err)
	}
	if out != NoChanges {
		t.Errorf("FixCode = %q, want %q", out, NoChanges)
	}
}

func TestOllama_FixCode_MissingMessage(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/api/tags" {
			w.Write([]byte(`{"models":[]}`))
			return
		}
		w.Write([]byte(`{"done":true}`))
	}))
	t.Cleanup(server.Close)
	o := readyOllama(t, server)

	_, err := o.FixCode(context.Background(), "a.js", "x", "m")
	if err == nil {
		t.Fatal("Expected error for a response without a message")
	}
	if !IsBackendError(err) {
		t.Errorf("error should be a BackendError, got %T", err)
	}
	if !errors.Is(err, errEmptyResponse) {
		t.Errorf("error should wrap errEmptyResponse, got %v", err)
	}
}

func TestOllama_FixCode_BlankAnswer(t *testing.T) {
	for _, reply := range []string{"", "  \n "} {
		server := ollamaServer(t, reply, nil)
		o := readyOllama(t, server)

		out, err := o.FixCode(context.Background(), "a.js", "x", "m")
		if err != nil {
			t.Fatalf("blank answer %q should not fail: %v", reply, err)
		}
		if strings.TrimSpace(out) != "" {
			t.Errorf("FixCode = %q, want blank", out)
		}
	}
}

func TestOllama_FixCode_ServerError(t *testing.T) {
	var attempts atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/api/tags" {
			return
		}
		attempts.Add(1)
		w.WriteHeader(500)
		w.Write([]byte(`{"error":"model crashed"}`))
	}))
	defer server.Close()
	o := readyOllama(t, server)

	_, err := o.FixCode(context.Background(), "a.js", "x", "m")
	if err == nil {
		t.Fatal("Expected error for server error response")
	}
	if !IsBackendError(err) {
		t.Errorf("error should be a BackendError, got %T", err)
	}
	// Should retry: 1 initial + 3 retries = 4 attempts
	if attempts.Load() != 4 {
		t.Errorf("Expected 4 attempts, got %d", attempts.Load())
	}
}

func TestOllama_FixCode_BeforeInitialize(t *testing.T) {
	o := NewOllama("http://127.0.0.1:1", nil)
	if _, err := o.FixCode(context.Background(), "a.js", "x", "m"); !errors.Is(err, errNotInitialized) {
		t.Errorf("error = %v, want errNotInitialized", err)
	}
}

func TestOllama_Initialize_Unreachable(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	url := server.URL
	server.Close()

	o := NewOllama(url, nil)
	err := o.Initialize(context.Background(), "")
	if !errors.Is(err, ErrUnreachable) {
		t.Errorf("error = %v, want ErrUnreachable", err)
	}
}

func TestOllama_Initialize_BadStatus(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer server.Close()

	o := NewOllama(server.URL, server.Client())
	err := o.Initialize(context.Background(), "")
	if !errors.Is(err, ErrUnreachable) {
		t.Fatalf("error = %v, want ErrUnreachable", err)
	}
	if !strings.Contains(err.Error(), "503") {
		t.Errorf("error should carry the status code: %v", err)
	}
}

func TestOllama_DiffSummary(t *testing.T) {
	var got ollamaChatRequest
	server := ollamaServer(t, "  - replaced let with const\n", &got)
	o := readyOllama(t, server)

	s := o.DiffSummary(context.Background(), "let x = 1", "const x = 1;", "a.js", "m")
	if s != "- replaced let with const" {
		t.Errorf("DiffSummary = %q", s)
	}
	if got.Options.Temperature != 0.3 || got.Options.NumPredict != 200 {
		t.Errorf("options = %+v, want temperature 0.3, num_predict 200", got.Options)
	}
}

func TestOllama_DiffSummary_Fallbacks(t *testing.T) {
	t.Run("status error", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.URL.Path == "/api/chat" {
				w.WriteHeader(http.StatusBadRequest)
			}
		}))
		defer server.Close()
		o := readyOllama(t, server)
		if s := o.DiffSummary(context.Background(), "a", "b", "a.js", "m"); s != SummaryUnavailable {
			t.Errorf("DiffSummary = %q, want %q", s, SummaryUnavailable)
		}
	})

	t.Run("empty content", func(t *testing.T) {
		server := ollamaServer(t, "", nil)
		o := readyOllama(t, server)
		if s := o.DiffSummary(context.Background(), "a", "b", "a.js", "m"); s != summaryEmpty {
			t.Errorf("DiffSummary = %q, want %q", s, summaryEmpty)
		}
	})

	t.Run("malformed body", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Write([]byte("not json"))
		}))
		defer server.Close()
		o := readyOllama(t, server)
		if s := o.DiffSummary(context.Background(), "a", "b", "a.js", "m"); s != summaryFailed {
			t.Errorf("DiffSummary = %q, want %q", s, summaryFailed)
		}
	})
}

func TestNewOllama_Host(t *testing.T) {
	tests := []struct {
		name    string
		host    string
		env     string
		wantURL string
	}{
		{name: "default", wantURL: "http://127.0.0.1:11434"},
		{name: "env", env: "http://10.0.0.5:11434", wantURL: "http://10.0.0.5:11434"},
		{name: "explicit wins", host: "http://box:11434/", env: "http://other:1", wantURL: "http://box:11434"},
		{name: "bare host", host: "localhost:11434", wantURL: "http://localhost:11434"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv("OLLAMA_HOST", tt.env)
			o := NewOllama(tt.host, nil)
			if o.baseURL != tt.wantURL {
				t.Errorf("baseURL = %q, want %q", o.baseURL, tt.wantURL)
			}
		})
	}
}
