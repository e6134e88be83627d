// internal/extraction/segment/rateguide.go
package segment

import (
	"regexp"
	"strings"

	"lender-match-workers/internal/criteria"
	"lender-match-workers/internal/extraction/patterns"
)

var rateGuidelineRe = regexp.MustCompile(`(?im)^[ \t]*([A-Da-d]\+?)[ \t]*Rate Guidelines\b.*$`)

// RateGuidelines extracts lettered-grade programs from headings like:
//
//	A Rate Guidelines - ...
//	B Rate Guidelines - ...
//	C Rate Guidelines - ...
//
// Each heading opens a section running to the next heading (or end of text).
// Document-wide restrictions fill any gaps the section itself leaves. Returns
// nil when fewer than two headings are present.
func RateGuidelines(text string) []criteria.ExtractedProgram {
	matches := rateGuidelineRe.FindAllStringSubmatchIndex(text, -1)
	if len(matches) < 2 {
		return nil
	}

	global := patterns.FromSection(text)

	programs := make([]criteria.ExtractedProgram, 0, len(matches))
	for idx, m := range matches {
		grade := strings.ToUpper(text[m[2]:m[3]])
		start := m[0]
		end := len(text)
		if idx+1 < len(matches) {
			end = matches[idx+1][0]
		}

		crit := patterns.FromSection(text[start:end])
		if crit.Geographic == nil {
			crit.Geographic = global.Geographic
		}
		if crit.Industry == nil {
			crit.Industry = global.Industry
		}
		if crit.Equipment == nil {
			crit.Equipment = global.Equipment
		}
		if crit.MinRevenue == nil {
			crit.MinRevenue = global.MinRevenue
		}

		programs = append(programs, criteria.ExtractedProgram{
			Name:     grade,
			Tier:     criteria.StringPtr(grade),
			Criteria: crit,
		})
	}
	return programs
}
