package report

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/dshills/revio/internal/redact"
	"github.com/dshills/revio/internal/review"
)

const ruleWidth = 50

var _ review.Observer = (*Reporter)(nil)

// Options tunes the wording of the progress stream.
type Options struct {
	// DryRun reports fixes as "would fix".
	DryRun bool
	// Secrets are scrubbed from every line in addition to the
	// heuristics in package redact.
	Secrets []string
}

// Reporter formats run progress and writes it to every sink.
type Reporter struct {
	opts       Options
	sinks      []Sink
	discovered int
	err        error
}

// New returns a Reporter writing to sinks.
func New(opts Options, sinks ...Sink) *Reporter {
	return &Reporter{opts: opts, sinks: sinks}
}

// Line scrubs text and sends it to every sink. Sink failures are kept;
// the first one is returned by Err.
func (r *Reporter) Line(level Level, format string, args ...any) {
	text := redact.Values(fmt.Sprintf(format, args...), r.opts.Secrets...)
	for _, s := range r.sinks {
		if err := s.WriteLine(level, text); err != nil && r.err == nil {
			r.err = err
		}
	}
}

// Err returns the first sink error.
func (r *Reporter) Err() error { return r.err }

// Start announces the backend and root before the run begins.
func (r *Reporter) Start(backend, model, root string) {
	if model != "" {
		r.Line(LevelHeading, "Initializing %s (%s)...", backend, model)
	} else {
		r.Line(LevelHeading, "Initializing %s...", backend)
	}
	r.Line(LevelHeading, "Reviewing project: %s", root)
	if r.opts.DryRun {
		r.Line(LevelMuted, "Dry run: files will not be modified.")
	}
}

func (r *Reporter) Discovered(_ string, files []string) {
	r.discovered = len(files)
	r.Line(LevelInfo, "Found %d files to analyze.", len(files))
	if len(files) > 0 {
		r.Line(LevelInfo, "")
		r.Line(LevelInfo, "Files to review:")
		for i, f := range files {
			r.Line(LevelMuted, "  %d. %s", i+1, filepath.Base(f))
		}
		r.Line(LevelInfo, "")
	}
	r.Line(LevelRule, "%s", strings.Repeat("─", ruleWidth))
	r.Line(LevelHeading, "Starting code review...")
	r.Line(LevelRule, "%s", strings.Repeat("─", ruleWidth))
}

func (r *Reporter) Started(index, total int, path string) {
	r.Line(LevelProgress, "[%d/%d] Analyzing: %s...", index, total, filepath.Base(path))
}

func (r *Reporter) Finished(_, _ int, res review.FileResult) {
	name := filepath.Base(res.Path)
	switch res.Outcome {
	case review.OutcomeUnchanged:
		r.Line(LevelMuted, "   No changes needed for %s", name)
	case review.OutcomeFixed:
		if res.Summary != "" {
			r.Line(LevelInfo, "   Summary: %s", oneLine(res.Summary))
		}
		if res.Applied {
			r.Line(LevelSuccess, "   Fixed: %s", name)
		} else {
			r.Line(LevelSuccess, "   Would fix: %s", name)
		}
	default:
		r.Line(LevelError, "   Error in %s: %s", name, oneLine(res.Error))
	}
}

func (r *Reporter) Complete(s review.Summary) {
	rule := strings.Repeat("═", ruleWidth)
	r.Line(LevelRule, "%s", rule)
	r.Line(LevelHeading, "REVIEW COMPLETE")
	r.Line(LevelRule, "%s", rule)
	r.Line(LevelSuccess, "Fixed: %d files", s.Fixed)
	r.Line(LevelMuted, "No changes: %d files", s.NoChanges)
	if s.Errors > 0 {
		r.Line(LevelError, "Errors: %d files", s.Errors)
	}
	r.Line(LevelInfo, "Total analyzed: %d files", s.Total)
	if skipped := r.discovered - s.Total; skipped > 0 {
		r.Line(LevelError, "Stopped early: %d files not processed", skipped)
	}
	r.Line(LevelRule, "%s", rule)
}

func oneLine(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
