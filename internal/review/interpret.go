package review

import (
	"strings"

	"github.com/dshills/revio/internal/providers"
)

// Interpret turns a backend answer into a FixResult. The answer means
// "unchanged" when it is the NoChanges sentinel, blank, or equal to the
// original once surrounding whitespace is trimmed from both. Line-ending
// and interior whitespace differences count as changes.
func Interpret(original, answer string) FixResult {
	trimmed := strings.TrimSpace(answer)
	if trimmed == providers.NoChanges || trimmed == "" || trimmed == strings.TrimSpace(original) {
		return FixResult{Outcome: OutcomeUnchanged}
	}
	return FixResult{Outcome: OutcomeFixed, Content: answer}
}

// Failed wraps an error that kept a file from being fixed.
func Failed(err error) FixResult {
	return FixResult{Outcome: OutcomeFailed, Err: err}
}
