// internal/extraction/segment/sections.go
package segment

import (
	"regexp"
	"strings"
)

// Section is one named slice of document text found by the generic header
// splitter, before any criteria extraction has run on it.
type Section struct {
	Name string
	Body string
}

var sectionHeaderRe = regexp.MustCompile(
	`(?i)(?:^|\n)[ \t]*` +
		`(Tier[ \t]*(\d+)|Program[ \t]+([A-Za-z])\b|(?:Credit[ \t]+Box|CreditBox)[ \t]*(\d+)|Level[ \t]*(\d+))` +
		`[:\s\-]*`,
)

// Sections splits text on generic program headers ("Tier 1", "Program A",
// "Credit Box 1", "Level 1"). Each section's body runs from the end of its
// header to the start of the next. Returns nil when no headers are found.
func Sections(text string) []Section {
	matches := sectionHeaderRe.FindAllStringSubmatchIndex(text, -1)
	if len(matches) == 0 {
		return nil
	}

	var out []Section
	for i, m := range matches {
		name := headerName(text, m)
		if name == "" {
			continue
		}
		start := m[1]
		end := len(text)
		if i+1 < len(matches) {
			end = matches[i+1][0]
		}
		out = append(out, Section{Name: name, Body: strings.TrimSpace(text[start:end])})
	}
	return out
}

func headerName(text string, m []int) string {
	group := func(n int) string {
		if m[2*n] < 0 {
			return ""
		}
		return text[m[2*n]:m[2*n+1]]
	}
	switch {
	case group(2) != "":
		return "Tier " + group(2)
	case group(3) != "":
		return "Program " + strings.ToUpper(group(3))
	case group(4) != "":
		return "Credit Box " + group(4)
	case group(5) != "":
		return "Level " + group(5)
	}
	return ""
}
