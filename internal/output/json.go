package output

import (
	"fmt"
	"io"

	jsoniter "github.com/json-iterator/go"

	"github.com/dshills/revio/internal/review"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// JSONWriter outputs the full report as indented JSON followed by a newline.
type JSONWriter struct{}

func (j *JSONWriter) Write(w io.Writer, report *review.Report) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(report); err != nil {
		return fmt.Errorf("writing JSON report: %w", err)
	}
	return nil
}
