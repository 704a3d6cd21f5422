package cli

import (
	"context"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/dshills/revio/internal/providers"
	"github.com/dshills/revio/internal/redact"
)

var modelsCmd = &cobra.Command{
	Use:   "models",
	Short: "Backend and model management",
}

var knownModels = map[providers.Kind][]string{
	providers.KindOllama: {
		"codellama:7b",
		"codellama:13b",
		"qwen2.5-coder",
		"deepseek-coder-v2",
		"llama3.1",
	},
	providers.KindGemini: {
		"gemini-2.0-flash-exp",
		"gemini-2.0-flash",
		"gemini-2.5-flash",
		"gemini-2.5-pro",
	},
	providers.KindAnthropic: {
		"claude-sonnet-4-20250514",
		"claude-haiku-4-5",
	},
	providers.KindOpenAI: {
		"gpt-4o-mini",
		"gpt-4o",
		"gpt-4.1-mini",
	},
}

var modelsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List backends and known models",
	Run: func(cmd *cobra.Command, args []string) {
		for _, d := range providers.Descriptors() {
			fmt.Fprintf(os.Stdout, "%s:\n", d.Name)
			for _, m := range knownModels[d.Kind] {
				marker := ""
				if m == d.DefaultModel {
					marker = " (default)"
				}
				fmt.Fprintf(os.Stdout, "  - %s%s\n", m, marker)
			}
			if len(d.CredentialEnv) > 0 {
				fmt.Fprintf(os.Stdout, "  credential: $%s\n", d.CredentialEnv[0])
			}
			fmt.Fprintln(os.Stdout)
		}
	},
}

var modelsDoctorCmd = &cobra.Command{
	Use:   "doctor",
	Short: "Check that the selected backend is configured and reachable",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			fail(ExitConfigError, "%v", err)
			return nil
		}

		kind, err := providers.ParseKind(cfg.Provider)
		if err != nil {
			fail(ExitConfigError, "%v", err)
			return nil
		}
		fmt.Fprintf(os.Stdout, "Checking %s...\n", kind)

		b, err := providers.New(kind, providers.Options{OllamaHost: cfg.OllamaHost})
		if err != nil {
			fail(ExitRuntimeError, "%v", err)
			return nil
		}

		ctx, cancel := context.WithTimeout(cmd.Context(), 30*time.Second)
		defer cancel()

		credential := resolveCredential(providers.Describe(kind), flagAPIKeyEnv)
		if err := b.Initialize(ctx, credential); err != nil {
			fmt.Fprintf(os.Stderr, "FAIL: %s\n", redact.Values(err.Error(), credential))
			if errors.Is(err, providers.ErrUnconfigured) {
				exitCode = ExitConfigError
			} else {
				exitCode = ExitRuntimeError
			}
			return nil
		}

		fmt.Fprintf(os.Stdout, "OK: %s\n", doctorStatus(providers.Describe(kind)))
		return nil
	},
}

// doctorStatus words a successful check. Only backends whose Initialize
// reaches the service may claim it is responding.
func doctorStatus(d providers.Descriptor) string {
	if d.ChecksService {
		return d.Name + " is configured and responding"
	}
	return d.Name + " is configured (credential present; the service was not contacted)"
}

func init() {
	modelsCmd.AddCommand(modelsListCmd)
	modelsCmd.AddCommand(modelsDoctorCmd)
	modelsDoctorCmd.Flags().StringVar(&flagProvider, "provider", "", "Backend to check")
	modelsDoctorCmd.Flags().StringVar(&flagAPIKeyEnv, "api-key-env", "", "Environment variable holding the backend credential")
}
