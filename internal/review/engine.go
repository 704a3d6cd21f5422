package review

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/dshills/revio/internal/gitctx"
	"github.com/dshills/revio/internal/providers"
	"github.com/dshills/revio/internal/scan"
)

// DefaultMaxFileBytes is the per-file size limit used when
// Options.MaxFileBytes is zero.
const DefaultMaxFileBytes = 1 << 20 // 1MB

// Observer receives progress from a run. Methods are called in order on
// the goroutine that called Run.
type Observer interface {
	Discovered(root string, files []string)
	Started(index, total int, path string)
	Finished(index, total int, result FileResult)
	Complete(summary Summary)
}

type nopObserver struct{}

func (nopObserver) Discovered(string, []string)   {}
func (nopObserver) Started(int, int, string)      {}
func (nopObserver) Finished(int, int, FileResult) {}
func (nopObserver) Complete(Summary)              {}

// Options configures a run.
type Options struct {
	Root       string
	Backend    providers.Backend
	Credential string
	Model      string
	Scan       scan.Options
	// DryRun runs the full pipeline but never writes files.
	DryRun bool
	// MaxFileBytes fails files larger than this in Reading. Negative
	// disables the limit.
	MaxFileBytes int64
	// RequireClean refuses to start unless Root is in a git worktree with
	// no uncommitted changes.
	RequireClean bool
	Observer     Observer
	Logger       *zap.Logger
}

type runner struct {
	opts      Options
	log       *zap.Logger
	obs       Observer
	write     func(name string, data []byte, perm fs.FileMode) error
	state     RunState
	backendMs int64
}

func newRunner(opts Options) *runner {
	r := &runner{opts: opts, log: opts.Logger, obs: opts.Observer, write: os.WriteFile, state: RunIdle}
	if r.log == nil {
		r.log = zap.NewNop()
	}
	if r.obs == nil {
		r.obs = nopObserver{}
	}
	if r.opts.MaxFileBytes == 0 {
		r.opts.MaxFileBytes = DefaultMaxFileBytes
	}
	return r
}

// Run fixes every eligible file under opts.Root and returns the report.
// A non-nil error means the run never started; check it with IsFatal.
// Cancelling ctx stops the run between files; the file in flight is
// always finished and the partial report has Cancelled set.
func Run(ctx context.Context, opts Options) (*Report, error) {
	return newRunner(opts).run(ctx)
}

func (r *runner) run(ctx context.Context) (*Report, error) {
	startTime := time.Now()
	if r.opts.Backend == nil {
		return nil, errors.New("no backend selected")
	}
	backend := r.opts.Backend

	root, err := filepath.Abs(r.opts.Root)
	if err != nil {
		return nil, fmt.Errorf("resolving root: %w", err)
	}
	files, err := scan.Files(root, r.opts.Scan)
	if err != nil {
		return nil, err
	}
	scanMs := time.Since(startTime).Milliseconds()

	if r.opts.RequireClean {
		if err := gitctx.Clean(root); err != nil {
			return nil, fmt.Errorf("refusing to modify files: %w", err)
		}
	}

	if err := backend.Initialize(ctx, r.opts.Credential); err != nil {
		return nil, fmt.Errorf("initializing %s: %w", backend.Name(), err)
	}

	report := &Report{
		Tool:    Tool,
		Version: Version,
		RunID:   uuid.NewString(),
		Backend: backend.Name(),
		Model:   r.opts.Model,
		Root:    root,
		DryRun:  r.opts.DryRun,
		Files:   make([]FileResult, 0, len(files)),
	}
	if meta, err := gitctx.Meta(root); err == nil {
		report.Repo = &RepoInfo{Root: meta.Root, Head: meta.Head, Branch: meta.Branch}
	}

	log := r.log.With(zap.String("run", report.RunID), zap.String("backend", backend.Name()))
	r.enter(log, RunRunning)
	log.Info("run started", zap.String("root", root), zap.Int("files", len(files)))
	r.obs.Discovered(root, files)

	for i, path := range files {
		if ctx.Err() != nil {
			report.Cancelled = true
			log.Warn("run cancelled", zap.Int("processed", i), zap.Int("remaining", len(files)-i))
			break
		}
		r.obs.Started(i+1, len(files), path)
		result := r.processFile(ctx, log, path)
		report.Files = append(report.Files, result)
		report.Summary.Add(result.Outcome)
		r.obs.Finished(i+1, len(files), result)
	}

	r.enter(log, RunComplete)
	report.Timing = Timing{
		ScanMs:    scanMs,
		BackendMs: r.backendMs,
		TotalMs:   time.Since(startTime).Milliseconds(),
	}
	log.Info("run finished",
		zap.Int("total", report.Summary.Total),
		zap.Int("fixed", report.Summary.Fixed),
		zap.Int("noChanges", report.Summary.NoChanges),
		zap.Int("errors", report.Summary.Errors),
	)
	r.obs.Complete(report.Summary)
	return report, nil
}

// processFile takes one file from Pending to Done. It never returns an
// error; failures are recorded in the result.
func (r *runner) processFile(ctx context.Context, log *zap.Logger, path string) FileResult {
	start := time.Now()
	st := newFileState(path, func(p string, from, to State) {
		log.Debug("file state", zap.String("path", p), zap.Stringer("from", from), zap.Stringer("to", to))
	})
	result := FileResult{Path: path}

	fail := func(err error) FileResult {
		fix := Failed(err)
		r.move(log, st, StateFailed)
		r.move(log, st, StateDone)
		log.Warn("file failed", zap.String("path", path), zap.Error(fix.Err))
		result.Outcome = fix.Outcome
		result.Err = fix.Err
		result.Error = fix.Err.Error()
		result.DurationMs = time.Since(start).Milliseconds()
		return result
	}

	r.move(log, st, StateReading)
	target, mode, err := r.read(path)
	if err != nil {
		return fail(err)
	}

	// The request is not interrupted by cancellation; the run stops at the
	// next file boundary instead.
	reqCtx := context.WithoutCancel(ctx)

	r.move(log, st, StateRequesting)
	reqStart := time.Now()
	answer, err := r.opts.Backend.FixCode(reqCtx, target.Path, target.Content, r.opts.Model)
	r.backendMs += time.Since(reqStart).Milliseconds()
	if err != nil {
		return fail(err)
	}

	fix := Interpret(target.Content, answer)
	if fix.Outcome == OutcomeUnchanged {
		r.move(log, st, StateUnchanged)
		r.move(log, st, StateDone)
		result.Outcome = st.outcome
		result.DurationMs = time.Since(start).Milliseconds()
		return result
	}

	r.move(log, st, StateApplying)
	sumStart := time.Now()
	result.Summary = r.opts.Backend.DiffSummary(reqCtx, target.Content, fix.Content, target.Path, r.opts.Model)
	r.backendMs += time.Since(sumStart).Milliseconds()
	if result.Summary == "" {
		result.Summary = providers.SummaryUnavailable
	}

	if !r.opts.DryRun {
		if err := r.write(path, []byte(fix.Content), mode); err != nil {
			return fail(&IOError{Path: path, Op: "write", Err: err})
		}
		result.Applied = true
	}
	r.move(log, st, StateDone)
	result.Outcome = st.outcome
	result.DurationMs = time.Since(start).Milliseconds()
	return result
}

func (r *runner) read(path string) (Target, fs.FileMode, error) {
	info, err := os.Stat(path)
	if err != nil {
		return Target{}, 0, &IOError{Path: path, Op: "read", Err: err}
	}
	if r.opts.MaxFileBytes > 0 && info.Size() > r.opts.MaxFileBytes {
		return Target{}, 0, &IOError{
			Path: path,
			Op:   "read",
			Err:  fmt.Errorf("%w (%d > %d bytes)", errTooLarge, info.Size(), r.opts.MaxFileBytes),
		}
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return Target{}, 0, &IOError{Path: path, Op: "read", Err: err}
	}
	return Target{Path: path, Content: string(data)}, info.Mode().Perm(), nil
}

// enter moves the run to its next state. Runs only go forward.
func (r *runner) enter(log *zap.Logger, next RunState) {
	log.Debug("run state", zap.Stringer("from", r.state), zap.Stringer("to", next))
	r.state = next
}

// move applies a transition. The pipeline only requests legal moves, so a
// refusal is a programming error.
func (r *runner) move(log *zap.Logger, st *fileState, next State) {
	if err := st.to(next); err != nil {
		log.DPanic("illegal file state transition", zap.Error(err))
	}
}
