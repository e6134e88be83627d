// internal/extraction/patterns/restrictions.go
package patterns

import (
	"regexp"
	"strconv"
	"strings"
	"unicode"

	"lender-match-workers/internal/criteria"
)

var (
	stateTokenRe = regexp.MustCompile(`\b([A-Za-z]{2})\b`)

	equipmentAgeRes = []*regexp.Regexp{
		regexp.MustCompile(`(?i)max(?:imum)?\s*(?:equipment)?\s*age\s*[:\s]*(\d+)\s*years?`),
		regexp.MustCompile(`(?i)equipment\s*(?:max)?\s*age\s*[:\s]*(\d+)`),
		regexp.MustCompile(`(?i)(\d+)\s*years?\s*(?:old|max|maximum)`),
	}

	splitTypesRe = regexp.MustCompile(`[,;]`)
)

// Geographic extracts allowed/excluded states by scanning for 2-letter state
// codes and inspecting an 80-character context window on each side for
// restriction or approval wording. Each occurrence lands in at most the
// first matching bucket.
func Geographic(text string) *criteria.GeographicRestriction {
	var excluded, allowed []string
	for _, m := range stateTokenRe.FindAllStringSubmatchIndex(text, -1) {
		code := strings.ToLower(text[m[2]:m[3]])
		if _, ok := usStateCodes[code]; !ok {
			continue
		}
		start := m[2] - 80
		if start < 0 {
			start = 0
		}
		end := m[3] + 80
		if end > len(text) {
			end = len(text)
		}
		context := strings.ToLower(text[start:end])
		switch {
		case containsAny(context, "exclud", "no ", "restrict", "prohibit"):
			excluded = appendUnique(excluded, strings.ToUpper(code))
		case containsAny(context, "allow", "approv", "only", "state list"):
			allowed = appendUnique(allowed, strings.ToUpper(code))
		}
	}
	if len(excluded) == 0 && len(allowed) == 0 {
		return nil
	}
	return &criteria.GeographicRestriction{
		AllowedStates:  allowed,
		ExcludedStates: excluded,
	}
}

// Industry extracts industry exclusions from a small fixed vocabulary of
// equipment-finance restriction phrasing. Allow-list extraction is reserved
// and currently yields nothing.
func Industry(text string) *criteria.IndustryRestriction {
	lower := strings.ToLower(text)
	var excluded []string

	if containsAny(lower, "trucking", "over-the-road") {
		excluded = append(excluded, "Trucking")
	}
	if strings.Contains(lower, "truck") && !strings.Contains(lower, "equipment") && !contains(excluded, "Trucking") {
		excluded = append(excluded, "Trucking")
	}
	for _, phrase := range []string{"excluded industr", "restricted industr", "ineligible industr", "no trucking"} {
		if !strings.Contains(lower, phrase) {
			continue
		}
		for _, line := range strings.Split(text, "\n") {
			if !strings.Contains(strings.ToLower(line), phrase[:10]) {
				continue
			}
			if strings.Contains(strings.ToLower(line), "trucking") && !contains(excluded, "Trucking") {
				excluded = append(excluded, "Trucking")
			}
		}
	}

	if len(excluded) == 0 {
		return nil
	}
	return &criteria.IndustryRestriction{ExcludedIndustries: excluded}
}

// Equipment extracts a max equipment age (three phrasing patterns, first
// match wins, validated to 1-50 years) and excluded equipment types from
// lines explicitly flagged as excluded/ineligible equipment.
func Equipment(text string) *criteria.EquipmentRestriction {
	lower := strings.ToLower(text)
	out := &criteria.EquipmentRestriction{}

	for _, re := range equipmentAgeRes {
		m := re.FindStringSubmatch(lower)
		if m == nil {
			continue
		}
		n, err := strconv.Atoi(m[1])
		if err == nil && 1 <= n && n <= 50 {
			out.MaxEquipmentAgeYears = criteria.IntPtr(n)
			break
		}
	}

	var excludedTypes []string
	if containsAny(lower, "excluded equipment", "ineligible equipment") {
		for _, line := range strings.Split(text, "\n") {
			ll := strings.ToLower(line)
			if !containsAny(ll, "excluded", "ineligible") {
				continue
			}
			for _, part := range splitTypesRe.Split(line, -1) {
				word := strings.TrimSpace(part)
				if len(word) > 2 && startsUpper(word) {
					excludedTypes = append(excludedTypes, word)
				}
			}
		}
	}
	if containsAny(lower, "no semi", "no tractor") {
		excludedTypes = append(excludedTypes, "Semi/Tractor")
	}
	if len(excludedTypes) > 10 {
		excludedTypes = excludedTypes[:10]
	}
	out.ExcludedTypes = excludedTypes

	if out.MaxEquipmentAgeYears == nil && len(out.ExcludedTypes) == 0 {
		return nil
	}
	return out
}

func appendUnique(list []string, v string) []string {
	if contains(list, v) {
		return list
	}
	return append(list, v)
}

func contains(list []string, v string) bool {
	for _, s := range list {
		if s == v {
			return true
		}
	}
	return false
}

func startsUpper(s string) bool {
	for _, r := range s {
		return unicode.IsUpper(r)
	}
	return false
}
