// internal/extraction/textprep/prepare.go
package textprep

import (
	"regexp"
	"strings"
)

// Condenses raw extracted document text into a bounded, high-signal subset
// for the AI extraction path, preserving table-like structure. Keeps a
// keyword-matched window plus a fixed head and tail for context.

const (
	// MaxInputChars bounds provider cost and latency.
	MaxInputChars = 24_000

	// keywordWindow is the number of lines kept on each side of a match.
	keywordWindow = 2

	// contextLines is the head/tail slice always included.
	contextLines = 120
)

var (
	pageMarkerRe = regexp.MustCompile(`^--\s*\d+\s*of\s*\d+\s*--$`)

	// Broad credit-box vocabulary: tier tables, rate grades, score labels,
	// dollar figures, restriction language.
	keywordRe = regexp.MustCompile(`(?i)(tier\s*\d+|a\+?\s*rates|b\s*rates|c\s*rates|rate guidelines|guidelines|` +
		`fico|credit score|paynet|tib|time in business|years in business|` +
		`\$|net financed|app-only|all in|` +
		`excluded|restriction|does not lend|california|state|industry|equipment|max age|collateral|` +
		`revenue|sales|citizen|bankruptcy|tax lien|homeownership|trucking)`)
)

// Prepare condenses raw document text for the AI provider prompt.
func Prepare(text string) string {
	normalized := strings.ReplaceAll(text, "\r\n", "\n")
	normalized = strings.ReplaceAll(normalized, "\r", "\n")

	// Drop page markers and repeated boilerplate, de-dupe exact lines.
	var cleaned []string
	seen := make(map[string]struct{})
	for _, ln := range strings.Split(normalized, "\n") {
		s := strings.TrimSpace(ln)
		if s == "" {
			cleaned = append(cleaned, "")
			continue
		}
		if pageMarkerRe.MatchString(s) {
			continue
		}
		if strings.HasPrefix(strings.ToLower(s), "subject to credit approval") {
			continue
		}
		if _, ok := seen[s]; ok {
			continue
		}
		seen[s] = struct{}{}
		cleaned = append(cleaned, s)
	}

	// Keyword-focused selection with a small window around matches.
	var keep []string
	for i, ln := range cleaned {
		if !keywordRe.MatchString(ln) {
			continue
		}
		start := i - keywordWindow
		if start < 0 {
			start = 0
		}
		end := i + keywordWindow + 1
		if end > len(cleaned) {
			end = len(cleaned)
		}
		keep = append(keep, cleaned[start:end]...)
	}

	headEnd := contextLines
	if headEnd > len(cleaned) {
		headEnd = len(cleaned)
	}
	tailStart := len(cleaned) - contextLines
	if tailStart < 0 {
		tailStart = 0
	}

	head := strings.Join(cleaned[:headEnd], "\n")
	mid := strings.Join(keep, "\n")
	tail := strings.Join(cleaned[tailStart:], "\n")

	combined := strings.TrimSpace(head + "\n\n" + mid + "\n\n" + tail)
	if len(combined) > MaxInputChars {
		combined = combined[:MaxInputChars]
	}
	return combined
}
