// internal/matching/result.go
package matching

// CriterionResult is one evaluated dimension with its display strings.
// Expected/Actual wording is part of the observable contract consumed by
// downstream display and must stay stable.
type CriterionResult struct {
	Name     string  `json:"name"`
	Met      bool    `json:"met"`
	Reason   string  `json:"reason"`
	Expected *string `json:"expected"`
	Actual   *string `json:"actual"`
}

// BestProgram identifies the winning program of an eligible match.
type BestProgram struct {
	ID   string  `json:"id"`
	Name string  `json:"name"`
	Tier *string `json:"tier"`
}

// MatchResult is the verdict for one (application, lender) pair. Constructed
// once per evaluation and never mutated afterwards.
type MatchResult struct {
	LenderID         string            `json:"lender_id"`
	LenderName       string            `json:"lender_name"`
	Eligible         bool              `json:"eligible"`
	FitScore         int               `json:"fit_score"`
	BestProgram      *BestProgram      `json:"best_program"`
	RejectionReasons []string          `json:"rejection_reasons"`
	CriteriaResults  []CriterionResult `json:"criteria_results"`
}
