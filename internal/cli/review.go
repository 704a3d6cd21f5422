package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strconv"
	"syscall"

	"github.com/mitchellh/go-homedir"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/dshills/revio/internal/cache"
	"github.com/dshills/revio/internal/config"
	"github.com/dshills/revio/internal/logging"
	"github.com/dshills/revio/internal/output"
	"github.com/dshills/revio/internal/providers"
	"github.com/dshills/revio/internal/report"
	"github.com/dshills/revio/internal/review"
	"github.com/dshills/revio/internal/scan"
)

// Review flags
var (
	flagProvider     string
	flagModel        string
	flagFormat       string
	flagOut          string
	flagDryRun       bool
	flagStrict       bool
	flagAPIKeyEnv    string
	flagRequireClean bool
	flagRateLimit    int
	flagProgressLog  string
	flagExtensions   string
	flagExclude      string
)

func addReviewFlags(cmd *cobra.Command) {
	cmd.Flags().StringVar(&flagProvider, "provider", "", "Backend (ollama, gemini, anthropic, openai)")
	cmd.Flags().StringVar(&flagModel, "model", "", "Model name (default: backend default)")
	cmd.Flags().StringVar(&flagFormat, "format", "", "Report format (text, json, markdown)")
	cmd.Flags().StringVar(&flagOut, "out", "", "Report file path (default: stdout)")
	cmd.Flags().BoolVar(&flagDryRun, "dry-run", false, "Run the full pipeline without writing files")
	cmd.Flags().BoolVar(&flagStrict, "strict", false, "Exit 1 when any file failed")
	cmd.Flags().StringVar(&flagAPIKeyEnv, "api-key-env", "", "Environment variable holding the backend credential")
	cmd.Flags().BoolVar(&flagRequireClean, "require-clean", false, "Refuse to run when the git worktree has uncommitted changes")
	cmd.Flags().IntVar(&flagRateLimit, "rate-limit", 0, "Maximum remote requests per minute (0 = unlimited)")
	cmd.Flags().StringVar(&flagProgressLog, "progress-log", "", "Append the progress stream, without colors, to this file")
	cmd.Flags().StringVar(&flagExtensions, "extensions", "", "File extensions to review (comma-separated)")
	cmd.Flags().StringVar(&flagExclude, "exclude", "", "Extra path globs to skip (comma-separated)")
}

func buildOverrides() map[string]string {
	m := make(map[string]string)
	if flagProvider != "" {
		m["provider"] = flagProvider
	}
	if flagModel != "" {
		m["model"] = flagModel
	}
	if flagFormat != "" {
		m["format"] = flagFormat
	}
	if flagRequireClean {
		m["requireClean"] = "true"
	}
	if flagRateLimit > 0 {
		m["rateLimit"] = strconv.Itoa(flagRateLimit)
	}
	if flagExtensions != "" {
		m["extensions"] = flagExtensions
	}
	if flagExclude != "" {
		m["exclude"] = flagExclude
	}
	return m
}

func loadConfig() (config.Config, error) {
	cfg, err := config.Load(flagConfig, buildOverrides())
	if err != nil {
		return config.Config{}, err
	}
	if flagVerbose {
		cfg.Log.Level = "debug"
	}
	return cfg, nil
}

// resolveCredential reads the credential from envName, or from the
// backend's own variables when envName is empty.
func resolveCredential(desc providers.Descriptor, envName string) string {
	if envName != "" {
		return os.Getenv(envName)
	}
	for _, name := range desc.CredentialEnv {
		if v := os.Getenv(name); v != "" {
			return v
		}
	}
	return ""
}

// buildBackend creates the configured backend with its cache and rate limit
// decorators. The rate limit applies to remote backends only.
func buildBackend(cfg config.Config, kind providers.Kind) (providers.Backend, error) {
	b, err := providers.New(kind, providers.Options{OllamaHost: cfg.OllamaHost})
	if err != nil {
		return nil, err
	}
	if cfg.Cache.Enabled {
		c, err := cache.New(true, cfg.Cache.Dir, cfg.Cache.TTLSeconds)
		if err != nil {
			return nil, fmt.Errorf("opening cache: %w", err)
		}
		b = providers.WithCache(b, c)
	}
	if providers.Describe(kind).RequiresCredential {
		b = providers.WithRateLimit(b, cfg.RateLimit)
	}
	return b, nil
}

// exitCodeFor maps an error that stopped a run before any file was
// processed.
func exitCodeFor(err error) int {
	if errors.Is(err, providers.ErrUnconfigured) {
		return ExitConfigError
	}
	return ExitRuntimeError
}

func scanOptions(cfg config.Config) scan.Options {
	return scan.Options{
		Extensions:  cfg.Extensions,
		ExcludeDirs: cfg.ExcludeDirs,
		Exclude:     cfg.Exclude,
	}
}

// runReview performs one fix run over root and returns the exit code.
// Progress and errors go to stderr; the final report goes to stdout or
// --out.
func runReview(ctx context.Context, root string, cfg config.Config, stderr io.Writer) int {
	log, err := logging.New(cfg.Log, zapcore.AddSync(stderr))
	if err != nil {
		fmt.Fprintf(stderr, "Error: creating logger: %v\n", err)
		return ExitConfigError
	}

	kind, err := providers.ParseKind(cfg.Provider)
	if err != nil {
		fmt.Fprintf(stderr, "Error: %v\n", err)
		return ExitConfigError
	}
	desc := providers.Describe(kind)
	model := cfg.Model
	if model == "" {
		model = desc.DefaultModel
	}
	credential := resolveCredential(desc, flagAPIKeyEnv)
	log = logging.WithSecrets(log, credential)
	defer func() { _ = logging.Sync(log) }()

	backend, err := buildBackend(cfg, kind)
	if err != nil {
		fmt.Fprintf(stderr, "Error: %v\n", err)
		return ExitRuntimeError
	}

	sinks := []report.Sink{report.NewTerminalSink(stderr)}
	if flagProgressLog != "" {
		path, err := homedir.Expand(flagProgressLog)
		if err != nil {
			fmt.Fprintf(stderr, "Error: %v\n", err)
			return ExitUsageError
		}
		fileSink, err := report.NewFileSink(path)
		if err != nil {
			fmt.Fprintf(stderr, "Error: %v\n", err)
			return ExitRuntimeError
		}
		defer fileSink.Close()
		sinks = append(sinks, fileSink)
	}
	if cfg.Log.File != "" {
		sinks = append(sinks, report.NewLogSink(log.Named("progress")))
	}
	rep := report.New(report.Options{DryRun: flagDryRun, Secrets: []string{credential}}, sinks...)
	rep.Start(desc.Name, model, root)

	res, err := review.Run(ctx, review.Options{
		Root:         root,
		Backend:      backend,
		Credential:   credential,
		Model:        model,
		Scan:         scanOptions(cfg),
		DryRun:       flagDryRun,
		MaxFileBytes: cfg.MaxFileBytes,
		RequireClean: cfg.RequireClean,
		Observer:     rep,
		Logger:       log,
	})
	if err != nil {
		log.Error("run aborted", zap.Error(err), zap.Bool("fatal", review.IsFatal(err)))
		rep.Line(report.LevelError, "Error: %v", err)
		return exitCodeFor(err)
	}
	if err := rep.Err(); err != nil {
		log.Warn("progress output failed", zap.Error(err))
	}

	if err := output.WriteReport(res, cfg.Format, flagOut); err != nil {
		fmt.Fprintf(stderr, "Error writing output: %v\n", err)
		return ExitRuntimeError
	}

	switch {
	case res.Cancelled:
		return ExitRuntimeError
	case flagStrict && res.Summary.Errors > 0:
		return ExitFileErrors
	default:
		return ExitSuccess
	}
}

var reviewCmd = &cobra.Command{
	Use:   "review [dir]",
	Short: "Fix every eligible file under dir (default: current directory)",
	Long: "Review walks dir, sends each eligible file to the selected backend, and overwrites it " +
		"with the corrected version. Files are processed one at a time; an interrupt stops the run " +
		"after the file in flight.",
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			fail(ExitConfigError, "%v", err)
			return nil
		}

		root := "."
		if len(args) == 1 {
			root = args[0]
		}
		root, err = homedir.Expand(root)
		if err != nil {
			fail(ExitUsageError, "%v", err)
			return nil
		}

		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()
		exitCode = runReview(ctx, root, cfg, os.Stderr)
		return nil
	},
}

func init() {
	addReviewFlags(reviewCmd)
}
