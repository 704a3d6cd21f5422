package cli

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/dshills/revio/internal/config"
	"github.com/dshills/revio/internal/providers"
	"github.com/dshills/revio/internal/review"
	"github.com/dshills/revio/internal/scan"
)

// resetFlags resets all package-level flag variables to their zero values.
func resetFlags() {
	flagConfig = ""
	flagVerbose = false
	flagProvider = ""
	flagModel = ""
	flagFormat = ""
	flagOut = ""
	flagDryRun = false
	flagStrict = false
	flagAPIKeyEnv = ""
	flagRequireClean = false
	flagRateLimit = 0
	flagProgressLog = ""
	flagExtensions = ""
	flagExclude = ""
}

// --- buildOverrides tests ---

func TestBuildOverrides_NoFlags(t *testing.T) {
	resetFlags()
	m := buildOverrides()
	if len(m) != 0 {
		t.Errorf("buildOverrides() with no flags = %v, want empty map", m)
	}
}

func TestBuildOverrides_AllFlags(t *testing.T) {
	resetFlags()
	flagProvider = "gemini"
	flagModel = "gemini-2.5-flash"
	flagFormat = "json"
	flagRequireClean = true
	flagRateLimit = 30
	flagExtensions = ".js,.ts"
	flagExclude = "legacy/**"

	m := buildOverrides()

	expected := map[string]string{
		"provider":     "gemini",
		"model":        "gemini-2.5-flash",
		"format":       "json",
		"requireClean": "true",
		"rateLimit":    "30",
		"extensions":   ".js,.ts",
		"exclude":      "legacy/**",
	}

	if len(m) != len(expected) {
		t.Fatalf("buildOverrides() returned %d entries, want %d", len(m), len(expected))
	}
	for k, v := range expected {
		if m[k] != v {
			t.Errorf("buildOverrides()[%q] = %q, want %q", k, m[k], v)
		}
	}
}

func TestBuildOverrides_ZeroRateLimitExcluded(t *testing.T) {
	resetFlags()
	flagProvider = "ollama"

	m := buildOverrides()

	if _, ok := m["rateLimit"]; ok {
		t.Error("rateLimit=0 should not be in overrides")
	}
	if _, ok := m["requireClean"]; ok {
		t.Error("requireClean=false should not be in overrides")
	}
}

func TestLoadConfig_FlagsOverrideFile(t *testing.T) {
	resetFlags()
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte("provider: openai\nformat: markdown\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	flagConfig = path
	flagProvider = "anthropic"
	flagVerbose = true

	cfg, err := loadConfig()
	if err != nil {
		t.Fatalf("loadConfig() error: %v", err)
	}
	if cfg.Provider != "anthropic" {
		t.Errorf("Provider = %q, want flag value anthropic", cfg.Provider)
	}
	if cfg.Format != "markdown" {
		t.Errorf("Format = %q, want file value markdown", cfg.Format)
	}
	if cfg.Log.Level != "debug" {
		t.Errorf("Log.Level = %q, want debug with --verbose", cfg.Log.Level)
	}
}

func TestLoadConfig_InvalidProvider(t *testing.T) {
	resetFlags()
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())
	flagProvider = "lmstudio"

	if _, err := loadConfig(); err == nil {
		t.Error("Expected error for unsupported provider")
	}
}

// --- credential and backend tests ---

func TestResolveCredential(t *testing.T) {
	desc := providers.Describe(providers.KindGemini)

	t.Setenv("GEMINI_API_KEY", "")
	t.Setenv("GOOGLE_API_KEY", "google-key")
	if got := resolveCredential(desc, ""); got != "google-key" {
		t.Errorf("resolveCredential() = %q, want fallback variable", got)
	}

	t.Setenv("GEMINI_API_KEY", "gemini-key")
	if got := resolveCredential(desc, ""); got != "gemini-key" {
		t.Errorf("resolveCredential() = %q, want first variable", got)
	}

	t.Setenv("MY_TEAM_KEY", "team-key")
	if got := resolveCredential(desc, "MY_TEAM_KEY"); got != "team-key" {
		t.Errorf("resolveCredential() = %q, want --api-key-env variable", got)
	}

	if got := resolveCredential(providers.Describe(providers.KindOllama), ""); got != "" {
		t.Errorf("ollama credential = %q, want empty", got)
	}
}

func TestBuildBackend_WithCache(t *testing.T) {
	cfg := config.Default()
	cfg.Cache.Enabled = true
	cfg.Cache.Dir = filepath.Join(t.TempDir(), "cache")
	cfg.RateLimit = 60

	b, err := buildBackend(cfg, providers.KindOpenAI)
	if err != nil {
		t.Fatalf("buildBackend() error: %v", err)
	}
	if b.Name() != "openai" {
		t.Errorf("Name() = %q, want openai", b.Name())
	}
	if _, err := os.Stat(cfg.Cache.Dir); err != nil {
		t.Errorf("cache directory not created: %v", err)
	}
}

func TestExitCodeFor(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{"unconfigured", fmt.Errorf("initializing gemini: %w", providers.ErrUnconfigured), ExitConfigError},
		{"unreachable", fmt.Errorf("initializing ollama: %w", providers.ErrUnreachable), ExitRuntimeError},
		{"missing path", scan.ErrPathNotFound, ExitRuntimeError},
		{"other", errors.New("boom"), ExitRuntimeError},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := exitCodeFor(tt.err); got != tt.want {
				t.Errorf("exitCodeFor() = %d, want %d", got, tt.want)
			}
		})
	}
}

func TestDoctorStatus(t *testing.T) {
	local := doctorStatus(providers.Describe(providers.KindOllama))
	if local != "ollama is configured and responding" {
		t.Errorf("doctorStatus(ollama) = %q", local)
	}
	for _, k := range []providers.Kind{providers.KindGemini, providers.KindAnthropic, providers.KindOpenAI} {
		got := doctorStatus(providers.Describe(k))
		if strings.Contains(got, "responding") {
			t.Errorf("doctorStatus(%s) = %q, must not claim the service responded", k, got)
		}
		if !strings.HasPrefix(got, k.String()+" is configured") {
			t.Errorf("doctorStatus(%s) = %q", k, got)
		}
	}
}

// --- runReview tests ---

// ollamaStub fixes "var x" to "const x", fails files containing "broken",
// and reports NO_CHANGES for everything else.
func ollamaStub(t *testing.T) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/api/tags":
			fmt.Fprint(w, `{"models":[]}`)
		case "/api/chat":
			body, _ := io.ReadAll(r.Body)
			var reply string
			switch s := string(body); {
			case strings.Contains(s, "code diff analyzer"):
				reply = "Replaced var with const."
			case strings.Contains(s, "broken"):
				http.Error(w, "model failed", http.StatusBadRequest)
				return
			case strings.Contains(s, "var x"):
				reply = "const x = 1;"
			default:
				reply = providers.NoChanges
			}
			fmt.Fprintf(w, `{"message":{"role":"assistant","content":%q},"done":true}`, reply)
		default:
			http.NotFound(w, r)
		}
	}))
	t.Cleanup(srv.Close)
	return srv
}

func setupProject(t *testing.T, files map[string]string) string {
	t.Helper()
	root := t.TempDir()
	for name, content := range files {
		path := filepath.Join(root, name)
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			t.Fatal(err)
		}
		if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
			t.Fatal(err)
		}
	}
	return root
}

func testConfig(host string) config.Config {
	cfg := config.Default()
	cfg.OllamaHost = host
	cfg.Format = "json"
	cfg.Log.Level = "error"
	return cfg
}

func readReport(t *testing.T, path string) review.Report {
	t.Helper()
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("reading report: %v", err)
	}
	var r review.Report
	if err := json.Unmarshal(data, &r); err != nil {
		t.Fatalf("report is not valid JSON: %v", err)
	}
	return r
}

func TestRunReview_FixesFiles(t *testing.T) {
	resetFlags()
	srv := ollamaStub(t)
	root := setupProject(t, map[string]string{
		"src/app.js":              "var x = 1",
		"src/ok.ts":               "export const y = 2;",
		"node_modules/dep/lib.js": "var x = 1",
		"README.md":               "var x = 1",
	})
	flagOut = filepath.Join(t.TempDir(), "report.json")
	progressPath := filepath.Join(t.TempDir(), "logs", "progress.log")
	flagProgressLog = progressPath

	var stderr bytes.Buffer
	code := runReview(context.Background(), root, testConfig(srv.URL), &stderr)
	if code != ExitSuccess {
		t.Fatalf("exit code = %d, want %d\nstderr:\n%s", code, ExitSuccess, stderr.String())
	}

	data, _ := os.ReadFile(filepath.Join(root, "src/app.js"))
	if string(data) != "const x = 1;" {
		t.Errorf("app.js = %q, want fixed content", data)
	}
	data, _ = os.ReadFile(filepath.Join(root, "node_modules/dep/lib.js"))
	if string(data) != "var x = 1" {
		t.Error("excluded directory must not be touched")
	}

	r := readReport(t, flagOut)
	if r.Summary != (review.Summary{Total: 2, Fixed: 1, NoChanges: 1}) {
		t.Errorf("Summary = %+v", r.Summary)
	}
	if r.Backend != "ollama" || r.Model != "codellama:7b" {
		t.Errorf("Backend/Model = %s/%s, want ollama/codellama:7b", r.Backend, r.Model)
	}

	for _, want := range []string{"Found 2 files to analyze.", "Replaced var with const.", "REVIEW COMPLETE"} {
		if !strings.Contains(stderr.String(), want) {
			t.Errorf("stderr missing %q:\n%s", want, stderr.String())
		}
	}
	progress, err := os.ReadFile(progressPath)
	if err != nil {
		t.Fatalf("progress log not written: %v", err)
	}
	if !strings.Contains(string(progress), "[1/2] Analyzing:") {
		t.Errorf("progress log missing per-file lines:\n%s", progress)
	}
}

func TestRunReview_StrictWithFailures(t *testing.T) {
	srv := ollamaStub(t)
	root := setupProject(t, map[string]string{
		"a.js": "var x = 1",
		"b.js": "broken(",
	})

	resetFlags()
	flagOut = filepath.Join(t.TempDir(), "report.json")
	var stderr bytes.Buffer
	if code := runReview(context.Background(), root, testConfig(srv.URL), &stderr); code != ExitSuccess {
		t.Errorf("without --strict exit code = %d, want %d", code, ExitSuccess)
	}
	if r := readReport(t, flagOut); r.Summary.Errors != 1 || r.Summary.Fixed != 1 {
		t.Errorf("Summary = %+v, want one fixed and one error", r.Summary)
	}

	resetFlags()
	flagStrict = true
	flagOut = filepath.Join(t.TempDir(), "report.json")
	stderr.Reset()
	if code := runReview(context.Background(), root, testConfig(srv.URL), &stderr); code != ExitFileErrors {
		t.Errorf("with --strict exit code = %d, want %d", code, ExitFileErrors)
	}
}

func TestRunReview_DryRun(t *testing.T) {
	resetFlags()
	srv := ollamaStub(t)
	root := setupProject(t, map[string]string{"a.js": "var x = 1"})
	flagDryRun = true
	flagOut = filepath.Join(t.TempDir(), "report.json")

	var stderr bytes.Buffer
	if code := runReview(context.Background(), root, testConfig(srv.URL), &stderr); code != ExitSuccess {
		t.Fatalf("exit code = %d\nstderr:\n%s", code, stderr.String())
	}
	data, _ := os.ReadFile(filepath.Join(root, "a.js"))
	if string(data) != "var x = 1" {
		t.Error("dry run must not write files")
	}
	r := readReport(t, flagOut)
	if !r.DryRun || r.Summary.Fixed != 1 || r.Files[0].Applied {
		t.Errorf("report = %+v, want dry-run fix not applied", r)
	}
	if !strings.Contains(stderr.String(), "Would fix") {
		t.Errorf("stderr should use dry-run wording:\n%s", stderr.String())
	}
}

func TestRunReview_UnreachableBackend(t *testing.T) {
	resetFlags()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer srv.Close()
	root := setupProject(t, map[string]string{"a.js": "var x = 1"})
	flagOut = filepath.Join(t.TempDir(), "report.json")

	var stderr bytes.Buffer
	if code := runReview(context.Background(), root, testConfig(srv.URL), &stderr); code != ExitRuntimeError {
		t.Errorf("exit code = %d, want %d", code, ExitRuntimeError)
	}
	if _, err := os.Stat(flagOut); !os.IsNotExist(err) {
		t.Error("no report should be written for an aborted run")
	}
}

func TestRunReview_MissingCredential(t *testing.T) {
	resetFlags()
	t.Setenv("REVIO_TEST_UNSET_KEY", "")
	flagAPIKeyEnv = "REVIO_TEST_UNSET_KEY"
	root := setupProject(t, map[string]string{"a.js": "var x = 1"})
	cfg := testConfig("")
	cfg.Provider = "gemini"

	var stderr bytes.Buffer
	if code := runReview(context.Background(), root, cfg, &stderr); code != ExitConfigError {
		t.Errorf("exit code = %d, want %d", code, ExitConfigError)
	}
	if !strings.Contains(stderr.String(), "requires an API key") {
		t.Errorf("stderr should explain the missing key:\n%s", stderr.String())
	}
}

func TestRunReview_MissingRoot(t *testing.T) {
	resetFlags()
	srv := ollamaStub(t)
	var stderr bytes.Buffer
	root := filepath.Join(t.TempDir(), "does-not-exist")
	if code := runReview(context.Background(), root, testConfig(srv.URL), &stderr); code != ExitRuntimeError {
		t.Errorf("exit code = %d, want %d", code, ExitRuntimeError)
	}
}

func TestRunReview_CredentialNeverPrinted(t *testing.T) {
	resetFlags()
	const secret = "sk-test-0123456789abcdef0123456789"
	t.Setenv("REVIO_TEST_KEY", secret)
	flagAPIKeyEnv = "REVIO_TEST_KEY"

	// The run aborts on the missing root after the credential has been
	// handed to the logger and the reporter.
	cfg := testConfig("")
	cfg.Provider = "openai"
	cfg.Log.Level = "debug"
	root := setupProject(t, map[string]string{"a.js": "var x = 1"})
	flagOut = filepath.Join(t.TempDir(), "report.json")

	var stderr bytes.Buffer
	_ = runReview(context.Background(), filepath.Join(root, "missing"), cfg, &stderr)
	if strings.Contains(stderr.String(), secret) {
		t.Errorf("credential leaked to stderr:\n%s", stderr.String())
	}
}
