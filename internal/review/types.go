package review

// Tool and Version identify the producer in every Report.
const (
	Tool    = "revio"
	Version = "1.0"
)

// Target is one file and the content read from it.
type Target struct {
	Path    string
	Content string
}

// Outcome is the result category of one file.
type Outcome string

const (
	OutcomeUnchanged Outcome = "unchanged"
	OutcomeFixed     Outcome = "fixed"
	OutcomeFailed    Outcome = "failed"
)

// FixResult is the interpreted answer for one Target. Content is set only
// for OutcomeFixed, Err only for OutcomeFailed.
type FixResult struct {
	Outcome Outcome
	Content string
	Err     error
}

// Summary holds the run counters.
type Summary struct {
	Total     int `json:"total"`
	Fixed     int `json:"fixed"`
	NoChanges int `json:"noChanges"`
	Errors    int `json:"errors"`
}

// Add counts one file with the given outcome.
func (s *Summary) Add(o Outcome) {
	s.Total++
	switch o {
	case OutcomeFixed:
		s.Fixed++
	case OutcomeUnchanged:
		s.NoChanges++
	default:
		s.Errors++
	}
}

// Balanced reports whether every counted file has exactly one outcome.
func (s Summary) Balanced() bool {
	return s.Fixed+s.NoChanges+s.Errors == s.Total
}

// FileResult records what happened to a single file. Err keeps the typed
// error behind Error for callers that inspect it with errors.As.
type FileResult struct {
	Path       string  `json:"path"`
	Outcome    Outcome `json:"outcome"`
	Summary    string  `json:"summary,omitempty"`
	Error      string  `json:"error,omitempty"`
	Err        error   `json:"-"`
	Applied    bool    `json:"applied"`
	DurationMs int64   `json:"durationMs"`
}

// RepoInfo contains repository metadata.
type RepoInfo struct {
	Root   string `json:"root"`
	Head   string `json:"head"`
	Branch string `json:"branch"`
}

// Timing contains performance metrics.
type Timing struct {
	ScanMs    int64 `json:"scanMs"`
	BackendMs int64 `json:"backendMs"`
	TotalMs   int64 `json:"totalMs"`
}

// Report is the top-level output structure.
type Report struct {
	Tool      string       `json:"tool"`
	Version   string       `json:"version"`
	RunID     string       `json:"runId"`
	Backend   string       `json:"backend"`
	Model     string       `json:"model"`
	Root      string       `json:"root"`
	DryRun    bool         `json:"dryRun,omitempty"`
	Repo      *RepoInfo    `json:"repo,omitempty"`
	Summary   Summary      `json:"summary"`
	Files     []FileResult `json:"files"`
	Cancelled bool         `json:"cancelled,omitempty"`
	Timing    Timing       `json:"timing"`
}
