// internal/workers/underwriting/match-lenders/models.go
package matchlenders

import "lender-match-workers/internal/matching"

// Input carries the process variables for one matching job. Application is
// kept as a raw map because upstream processes emit either camelCase or
// snake_case keys; normalization and validation happen in the handler.
type Input struct {
	ApplicationID string                 `json:"applicationId"`
	Application   map[string]interface{} `json:"application"`
	LenderIDs     []string               `json:"lenderIds,omitempty"`
}

// Output is written back to the process instance. MatchResults is ordered
// eligible-first, then by descending fit score.
type Output struct {
	MatchResults  []matching.MatchResult `json:"matches"`
	EligibleCount int                    `json:"eligibleCount"`
	BestLenderID  *string                `json:"bestLenderId,omitempty"`
	ProcessedAt   string                 `json:"processedAt"`
}

// auditDocument is the shape indexed into Elasticsearch for each completed
// matching run.
type auditDocument struct {
	ApplicationID string                 `json:"application_id"`
	LenderCount   int                    `json:"lender_count"`
	EligibleCount int                    `json:"eligible_count"`
	Results       []matching.MatchResult `json:"results"`
	ProcessedAt   string                 `json:"processed_at"`
}
