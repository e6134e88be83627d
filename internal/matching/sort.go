// internal/matching/sort.go
package matching

import "sort"

// SortResults orders lender results for display: eligible lenders first,
// then fit score descending, stable otherwise.
func SortResults(results []MatchResult) {
	sort.SliceStable(results, func(i, j int) bool {
		if results[i].Eligible != results[j].Eligible {
			return results[i].Eligible
		}
		return results[i].FitScore > results[j].FitScore
	})
}
