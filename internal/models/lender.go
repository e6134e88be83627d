// internal/models/lender.go
package models

// Lender is one row from the lenders table.
type Lender struct {
	ID     string `json:"id"`
	Name   string `json:"name"`
	Active bool   `json:"active"`
}

// LenderProgramRow is one row from the lender_programs table. Criteria holds
// the raw jsonb payload; decoding into a typed criteria set happens at load
// time so a malformed row fails loudly instead of matching vacuously.
type LenderProgramRow struct {
	ID       string  `json:"id"`
	LenderID string  `json:"lenderId"`
	Name     string  `json:"name"`
	Tier     *string `json:"tier,omitempty"`
	Criteria []byte  `json:"criteria"`
}
