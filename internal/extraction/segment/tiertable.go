// internal/extraction/segment/tiertable.go
//
// Deterministic segmenters for the document layouts that show up in lender
// credit-box PDFs: side-by-side tier tables, lettered rate-guideline headings,
// and generic tier/program section headers. Each segmenter returns nil when
// the layout it targets is not present, so callers can chain them.
package segment

import (
	"regexp"
	"strings"

	"lender-match-workers/internal/criteria"
	"lender-match-workers/internal/extraction/patterns"
)

var (
	tierHeaderRe = regexp.MustCompile(`(?i)\bTier\s*1\b`)
	tierSecondRe = regexp.MustCompile(`(?i)\bTier\s*2\b`)
	tierNumRe    = regexp.MustCompile(`(?i)Tier\s*(\d+)`)
	tableRowRe   = regexp.MustCompile(`(?i)^(fico|tib|paynet)\b`)
)

// TierTable extracts programs from side-by-side tier tables:
//
//	Tier 1   Tier 2   Tier 3
//	FICO     725      710      700
//	TIB      3        3        2
//	Paynet   685      675      665
//
// Returns nil when no usable table is found. A table is usable only when it
// yields at least two programs and at least one score/TIB criterion, so a
// stray "Tier 1 / Tier 2" mention cannot produce loan-amount-only programs.
func TierTable(text string) []criteria.ExtractedProgram {
	var lines []string
	for _, ln := range strings.Split(text, "\n") {
		if s := strings.TrimSpace(ln); s != "" {
			lines = append(lines, s)
		}
	}
	if len(lines) == 0 {
		return nil
	}

	global := patterns.FromSection(text)

	var order []string
	programs := map[string]*criteria.ExtractedProgram{}

	addProgram := func(tier, suffix string) {
		if _, ok := programs[tier]; ok {
			return
		}
		name := "Tier " + tier
		if suffix != "" {
			name += " (" + suffix + ")"
		}
		crit := criteria.CriteriaSet{LoanAmount: global.LoanAmount}
		crit.Geographic = global.Geographic
		crit.Industry = global.Industry
		crit.Equipment = global.Equipment
		crit.MinRevenue = global.MinRevenue
		if suffix != "" {
			crit.CustomRules = []criteria.CustomRule{{Name: "Condition", Description: suffix}}
		}
		order = append(order, tier)
		programs[tier] = &criteria.ExtractedProgram{
			Name:     name,
			Tier:     criteria.StringPtr(tier),
			Criteria: crit,
		}
	}

	for i, line := range lines {
		if !tierHeaderRe.MatchString(line) || !tierSecondRe.MatchString(line) {
			continue
		}

		var tiers []string
		for _, m := range tierNumRe.FindAllStringSubmatch(line, -1) {
			if !containsStr(tiers, m[1]) {
				tiers = append(tiers, m[1])
			}
		}
		if len(tiers) < 2 {
			continue
		}

		// Conditional context just above the header ("If no Paynet", "Corp only").
		ctxStart := i - 3
		if ctxStart < 0 {
			ctxStart = 0
		}
		ctx := strings.ToLower(strings.Join(lines[ctxStart:i], " "))
		suffix := ""
		if strings.Contains(ctx, "no paynet") {
			suffix = "No PayNet"
		} else if strings.Contains(ctx, "corp only") || strings.Contains(ctx, "corporation only") {
			suffix = "Corp Only"
		}

		for _, t := range tiers {
			addProgram(t, suffix)
		}

		for j := i + 1; j < len(lines) && j < i+12; j++ {
			row := lines[j]
			if tierHeaderRe.MatchString(row) && tierSecondRe.MatchString(row) {
				break
			}
			m := tableRowRe.FindStringSubmatch(row)
			if m == nil {
				continue
			}
			kind := strings.ToLower(m[1])
			nums := parseRowNumbers(row, kind)
			if len(nums) < len(tiers) {
				continue
			}
			nums = nums[:len(tiers)]
			for idx, t := range tiers {
				crit := &programs[t].Criteria
				switch kind {
				case "fico":
					crit.Fico = &criteria.FicoCriteria{MinScore: criteria.IntPtr(nums[idx])}
				case "tib":
					crit.TimeInBusiness = &criteria.TimeInBusinessCriteria{MinYears: nums[idx]}
				case "paynet":
					crit.Paynet = &criteria.PayNetCriteria{MinScore: criteria.IntPtr(nums[idx])}
				}
			}
		}
	}

	if len(order) < 2 {
		return nil
	}
	extractedAny := false
	for _, t := range order {
		c := programs[t].Criteria
		if c.Fico != nil || c.Paynet != nil || c.TimeInBusiness != nil {
			extractedAny = true
			break
		}
	}
	if !extractedAny {
		return nil
	}

	out := make([]criteria.ExtractedProgram, 0, len(order))
	for _, t := range order {
		out = append(out, *programs[t])
	}
	return out
}

// parseRowNumbers pulls the per-tier values out of one table row, using the
// plausible band for the row's criterion. PayNet rows get the same 600-799
// divide-by-ten correction as free-text extraction.
func parseRowNumbers(row, kind string) []int {
	switch kind {
	case "fico":
		return patterns.NumbersInRange(row, 300, 850)
	case "tib":
		return patterns.NumbersInRange(row, 0, 50)
	case "paynet":
		if n := patterns.NumbersInRange(row, 0, 100); len(n) > 0 {
			return n
		}
		n3 := patterns.NumbersInRange(row, 600, 799)
		out := make([]int, 0, len(n3))
		for _, v := range n3 {
			out = append(out, v/10)
		}
		return out
	}
	return nil
}

func containsStr(list []string, v string) bool {
	for _, s := range list {
		if s == v {
			return true
		}
	}
	return false
}
