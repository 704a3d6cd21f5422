package output

import "github.com/dshills/revio/internal/review"

func sampleReport() *review.Report {
	return &review.Report{
		Tool:    review.Tool,
		Version: review.Version,
		RunID:   "6f0c1d6e-0000-4000-8000-000000000001",
		Backend: "ollama",
		Model:   "codellama:7b",
		Root:    "/work/app",
		Repo:    &review.RepoInfo{Root: "/work/app", Head: "abc123", Branch: "main"},
		Summary: review.Summary{Total: 3, Fixed: 1, NoChanges: 1, Errors: 1},
		Files: []review.FileResult{
			{Path: "/work/app/src/index.js", Outcome: review.OutcomeFixed, Summary: "Declared x with const.", Applied: true, DurationMs: 120},
			{Path: "/work/app/src/util.ts", Outcome: review.OutcomeUnchanged, DurationMs: 80},
			{Path: "/work/app/web/site.css", Outcome: review.OutcomeFailed, Error: "ollama fix failed: API error (status 500): <html>", DurationMs: 30},
		},
		Timing: review.Timing{ScanMs: 2, BackendMs: 200, TotalMs: 240},
	}
}

func cleanReport() *review.Report {
	r := sampleReport()
	r.Summary = review.Summary{Total: 1, NoChanges: 1}
	r.Files = r.Files[1:2]
	r.Repo = nil
	return r
}
