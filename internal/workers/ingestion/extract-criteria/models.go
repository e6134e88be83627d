// internal/workers/ingestion/extract-criteria/models.go
package extractcriteria

import "lender-match-workers/internal/criteria"

// Input carries the process variables for one extraction job. DocumentText is
// the already-parsed text of the guideline document; binary parsing happens
// upstream. UseAI overrides the configured default when present.
type Input struct {
	DocumentText string `json:"documentText"`
	LenderSlug   string `json:"lenderSlug,omitempty"`
	UseAI        *bool  `json:"useAi,omitempty"`
}

// Output is written back to the process instance. Programs always holds at
// least one entry.
type Output struct {
	Programs     []criteria.ExtractedProgram `json:"programs"`
	ProgramCount int                         `json:"programCount"`
	LenderSlug   string                      `json:"lenderSlug,omitempty"`
	ExtractedAt  string                      `json:"extractedAt"`
}
