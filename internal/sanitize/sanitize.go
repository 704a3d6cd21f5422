package sanitize

import (
	"regexp"
	"strings"
)

// Step is one removal pass over a model answer. Apply must return either its
// input unchanged or a strictly shorter string.
type Step struct {
	Name  string
	Apply func(string) string
}

// Steps is the ordered pipeline run by Clean.
var Steps = []Step{
	{Name: "trim", Apply: strings.TrimSpace},
	{Name: "preamble", Apply: StripPreamble},
	{Name: "fence", Apply: StripFence},
}

// Clean runs Steps until the text reaches a fixed point.
func Clean(raw string) string {
	s := raw
	for {
		next := s
		for _, step := range Steps {
			next = step.Apply(next)
		}
		if next == s {
			return s
		}
		s = next
	}
}

var (
	openFence  = regexp.MustCompile("^```[\\w.+#-]*[ \\t]*$")
	closeFence = regexp.MustCompile("^```[ \\t]*$")
)

// StripFence removes an opening fence from the first line and a closing
// fence from the last line. The language tag on the opening fence is
// optional. Either marker is removed even when the other is missing, since
// truncated answers often lose the closing fence.
func StripFence(s string) string {
	lines := strings.Split(s, "\n")
	start, end := 0, len(lines)
	if openFence.MatchString(strings.TrimRight(lines[0], "\r")) {
		start = 1
	}
	if end-1 >= start && closeFence.MatchString(strings.TrimRight(lines[end-1], "\r")) {
		end--
	}
	if start == 0 && end == len(lines) {
		return s
	}
	return strings.Join(lines[start:end], "\n")
}

// preamblePatterns match a whole first line. Broad patterns require a
// trailing colon; the short fixed phrases accept it as optional.
var preamblePatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)^here(?:'s| is| are)\b.*:$`),
	regexp.MustCompile(`(?i)^here is the (?:corrected|fixed|updated|complete) (?:code|version)\.?:?$`),
	regexp.MustCompile(`(?i)^(?:the )?(?:corrected|fixed|complete|updated|revised)(?: source)? (?:code|version|file)(?: is)?:?$`),
	regexp.MustCompile(`(?i)^the\s+.*:$`),
	regexp.MustCompile(`(?i)^(?:sure|certainly|okay|ok)\b.*:$`),
}

var commentPrefixes = []string{"//", "/*", "*", "#", "<!--", "--"}

// StripPreamble removes the first line when it is a chat preamble. Lines
// that begin with a comment marker are never treated as preambles.
func StripPreamble(s string) string {
	first, rest, _ := strings.Cut(s, "\n")
	line := strings.TrimSpace(first)
	if line == "" {
		return s
	}
	for _, p := range commentPrefixes {
		if strings.HasPrefix(line, p) {
			return s
		}
	}
	for _, pat := range preamblePatterns {
		if pat.MatchString(line) {
			return rest
		}
	}
	return s
}
