package output

import (
	"io"
	"strings"

	"github.com/dshills/revio/internal/review"
)

// TextWriter outputs a human-readable text report.
type TextWriter struct{}

func (t *TextWriter) Write(w io.Writer, report *review.Report) error {
	ew := &errWriter{w: w}
	s := report.Summary

	title := "revio fix report"
	if report.DryRun {
		title += " (dry run)"
	}
	ew.printf("%s: %s", title, report.Backend)
	if report.Model != "" {
		ew.printf(" / %s", report.Model)
	}
	ew.println("")
	ew.printf("Root: %s\n", report.Root)
	if report.Repo != nil && report.Repo.Branch != "" {
		ew.printf("Repository: %s (branch: %s)\n", report.Repo.Root, report.Repo.Branch)
	}
	ew.println(strings.Repeat("─", 60))
	ew.printf("Files: %d total (%d fixed, %d unchanged, %d errors)\n", s.Total, s.Fixed, s.NoChanges, s.Errors)
	if report.Cancelled {
		ew.println("Run cancelled before all files were processed.")
	}
	ew.println(strings.Repeat("─", 60))

	if s.Fixed == 0 && s.Errors == 0 {
		ew.println("\nNo changes needed.")
	}

	if s.Fixed > 0 {
		label := "FIXED"
		if report.DryRun {
			label = "WOULD FIX"
		}
		ew.printf("\n%s\n", label)
		for _, f := range report.Files {
			if f.Outcome != review.OutcomeFixed {
				continue
			}
			ew.printf("  %s\n", displayPath(report, f.Path))
			for _, line := range wrapText(f.Summary, 70) {
				ew.printf("    %s\n", line)
			}
		}
	}

	if s.Errors > 0 {
		ew.println("\nERRORS")
		for _, f := range report.Files {
			if f.Outcome != review.OutcomeFailed {
				continue
			}
			ew.printf("  %s\n", displayPath(report, f.Path))
			for _, line := range wrapText(f.Error, 70) {
				ew.printf("    %s\n", line)
			}
		}
	}

	ew.printf("\n%s\n", strings.Repeat("─", 60))
	ew.printf("Completed in %dms (scan: %dms, backend: %dms)\n",
		report.Timing.TotalMs, report.Timing.ScanMs, report.Timing.BackendMs)

	return ew.err
}

func wrapText(text string, width int) []string {
	words := strings.Fields(text)
	if len(words) == 0 {
		return nil
	}

	var lines []string
	current := words[0]
	for _, word := range words[1:] {
		if len(current)+1+len(word) > width {
			lines = append(lines, current)
			current = word
		} else {
			current += " " + word
		}
	}
	lines = append(lines, current)
	return lines
}
