// internal/matching/facts.go
package matching

// Application facts are transient inputs to a single evaluation call. The
// engine never persists them and treats them as immutable. Pointer fields
// distinguish "not provided" from zero; the evaluation rules decide per
// dimension whether absence defaults to zero or hard-fails.

// Business holds applicant business facts.
type Business struct {
	Industry        string `json:"industry"`
	State           string `json:"state"`
	YearsInBusiness *int   `json:"years_in_business,omitempty"`
	AnnualRevenue   *int   `json:"annual_revenue,omitempty"`
}

// Guarantor holds personal guarantor facts.
type Guarantor struct {
	FicoScore     *int `json:"fico_score,omitempty"`
	HasBankruptcy bool `json:"has_bankruptcy,omitempty"`
	HasTaxLiens   bool `json:"has_tax_liens,omitempty"`
	HasJudgments  bool `json:"has_judgments,omitempty"`
}

// BusinessCredit holds business credit bureau facts. The whole record is
// optional: many applicants have no PayNet file at all.
type BusinessCredit struct {
	PaynetScore *int `json:"paynet_score,omitempty"`
}

// Equipment describes the financed equipment.
type Equipment struct {
	Type     string `json:"type"`
	AgeYears *int   `json:"age_years,omitempty"`
}

// LoanRequest holds the requested financing terms.
type LoanRequest struct {
	Amount     int        `json:"amount"`
	TermMonths *int       `json:"term_months,omitempty"`
	Equipment  *Equipment `json:"equipment,omitempty"`
}

// Application bundles all facts for one evaluation call.
type Application struct {
	Business       Business        `json:"business"`
	Guarantor      Guarantor       `json:"guarantor"`
	BusinessCredit *BusinessCredit `json:"business_credit,omitempty"`
	LoanRequest    LoanRequest     `json:"loan_request"`
}
