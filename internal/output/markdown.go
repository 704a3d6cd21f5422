package output

import (
	"io"
	"strings"

	"github.com/dshills/revio/internal/review"
)

// MarkdownWriter outputs a markdown report suitable for a PR description or
// a run log.
type MarkdownWriter struct{}

func (m *MarkdownWriter) Write(w io.Writer, report *review.Report) error {
	ew := &errWriter{w: w}
	s := report.Summary

	// Heading
	ew.printf("## revio fix report\n\n")
	ew.printf("Backend `%s`", report.Backend)
	if report.Model != "" {
		ew.printf(", model `%s`", report.Model)
	}
	if report.DryRun {
		ew.printf(" (dry run, nothing written)")
	}
	ew.printf("\n\n")

	// Summary table
	ew.printf("| Outcome | Files |\n")
	ew.printf("|---------|-------|\n")
	ew.printf("| Fixed | %d |\n", s.Fixed)
	ew.printf("| No changes | %d |\n", s.NoChanges)
	ew.printf("| Errors | %d |\n", s.Errors)
	ew.printf("| **Total** | **%d** |\n\n", s.Total)

	if report.Cancelled {
		ew.printf("> Run cancelled before all files were processed.\n\n")
	}

	if s.Fixed == 0 && s.Errors == 0 {
		ew.println("No changes needed. :white_check_mark:")
		return ew.err
	}

	if s.Fixed > 0 {
		ew.printf("<details>\n<summary>:wrench: Fixed (%d)</summary>\n\n", s.Fixed)
		for _, f := range report.Files {
			if f.Outcome != review.OutcomeFixed {
				continue
			}
			ew.printf("- **`%s`**", displayPath(report, f.Path))
			if f.Summary != "" {
				ew.printf(": %s", mdInline(f.Summary))
			}
			ew.printf("\n")
		}
		ew.printf("\n</details>\n\n")
	}

	if s.Errors > 0 {
		ew.printf("<details>\n<summary>:x: Errors (%d)</summary>\n\n", s.Errors)
		for _, f := range report.Files {
			if f.Outcome != review.OutcomeFailed {
				continue
			}
			ew.printf("- **`%s`**: %s\n", displayPath(report, f.Path), mdInline(f.Error))
		}
		ew.printf("\n</details>\n\n")
	}

	// Timing footer
	ew.printf("*Completed in %dms (backend: %dms)*\n", report.Timing.TotalMs, report.Timing.BackendMs)
	return ew.err
}

// mdInline keeps free text on one line and stops it from opening HTML tags.
func mdInline(s string) string {
	s = strings.Join(strings.Fields(s), " ")
	s = strings.ReplaceAll(s, "<", "&lt;")
	return strings.ReplaceAll(s, ">", "&gt;")
}
