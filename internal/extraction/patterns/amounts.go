// internal/extraction/patterns/amounts.go
package patterns

import (
	"regexp"
	"strconv"
	"strings"

	"lender-match-workers/internal/criteria"
)

var (
	dollarRe = regexp.MustCompile(`(?i)\$?\s*([\d,]+(?:\.\d+)?)\s*(K|M|MM)?\b`)
	minMaxRe = regexp.MustCompile(`(?i)(?:min(?:imum)?|max(?:imum)?)\s*[:\s]*\$?\s*([\d,]+)\s*(K|M)?`)

	revenueRes = []*regexp.Regexp{
		regexp.MustCompile(`(?i)(?:min(?:imum)?|annual)\s*revenue\s*[:\s]*\$?\s*([\d,]+)\s*(K|M)?`),
		regexp.MustCompile(`(?i)revenue\s*(?:of\s*)?(?:at\s*least|minimum)\s*\$?\s*([\d,]+)\s*(K|M)?`),
		regexp.MustCompile(`(?i)\$([\d,]+)\s*(K|M)?\s*(?:min(?:imum)?\s*)?(?:annual\s*)?revenue`),
	}
)

// parseAmount converts a numeric capture plus K/M/MM suffix into dollars.
func parseAmount(numStr, suffix string) (int, bool) {
	val, err := strconv.ParseFloat(strings.ReplaceAll(numStr, ",", ""), 64)
	if err != nil {
		return 0, false
	}
	switch strings.ToUpper(suffix) {
	case "K":
		val *= 1000
	case "M", "MM":
		val *= 1_000_000
	}
	return int(val), true
}

// LoanAmounts extracts a min/max loan amount from dollar-formatted numbers,
// K/M/MM suffixes, and explicit min/max labels. A single amount paired with
// "up to"/"≤" phrasing becomes a max-only cap with an implicit zero minimum.
func LoanAmounts(text string) *criteria.LoanAmountCriteria {
	lower := strings.ToLower(text)

	var amounts []int
	for _, m := range dollarRe.FindAllStringSubmatch(text, -1) {
		if val, ok := parseAmount(m[1], m[2]); ok && 1000 <= val && val <= 100_000_000 {
			amounts = append(amounts, val)
		}
	}
	for _, m := range minMaxRe.FindAllStringSubmatch(lower, -1) {
		if val, ok := parseAmount(m[1], m[2]); ok && 1000 <= val && val <= 100_000_000 {
			amounts = append(amounts, val)
		}
	}
	if len(amounts) == 0 {
		return nil
	}
	if len(amounts) == 1 && (strings.Contains(lower, "up to") || strings.Contains(text, "≤")) {
		return &criteria.LoanAmountCriteria{MinAmount: 0, MaxAmount: amounts[0]}
	}
	return &criteria.LoanAmountCriteria{MinAmount: minOf(amounts), MaxAmount: maxOf(amounts)}
}

// MinRevenue extracts a minimum annual revenue requirement, trying three
// phrasings in order and accepting the first that matches.
func MinRevenue(text string) *int {
	lower := strings.ToLower(text)
	if !containsAny(lower, "revenue", "sales") {
		return nil
	}
	for _, re := range revenueRes {
		m := re.FindStringSubmatch(lower)
		if m == nil {
			continue
		}
		if val, ok := parseAmount(m[1], m[2]); ok && val >= 1000 {
			return criteria.IntPtr(val)
		}
	}
	return nil
}
