// internal/extraction/patterns/business.go
package patterns

import (
	"strings"

	"lender-match-workers/internal/criteria"
)

var tibTriggers = []string{
	"time in business", "years in business", "tib", "min. years", "minimum years", "years in operation",
}

// TimeInBusiness extracts the minimum time in business in years. The lowest
// plausible number on a trigger-containing line wins over a whole-text scan.
func TimeInBusiness(text string) *criteria.TimeInBusinessCriteria {
	lower := strings.ToLower(text)
	if !containsAny(lower, tibTriggers...) {
		return nil
	}
	for _, line := range strings.Split(text, "\n") {
		if !containsAny(strings.ToLower(line), tibTriggers...) {
			continue
		}
		if nums := NumbersInRange(line, 0, 50); len(nums) > 0 {
			return &criteria.TimeInBusinessCriteria{MinYears: minOf(nums)}
		}
	}
	if nums := NumbersInRange(lower, 1, 50); len(nums) > 0 {
		return &criteria.TimeInBusinessCriteria{MinYears: minOf(nums)}
	}
	return nil
}
