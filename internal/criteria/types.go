// internal/criteria/types.go
package criteria

// Normalized lender credit policy criteria. The JSON form (snake_case) is the
// storage and wire contract shared by the extraction pipeline and the
// matching engine. Absence of a dimension means "no constraint on this
// dimension", never a constraint of zero.

// FicoTier is one entry of a tiered FICO minimum table.
type FicoTier struct {
	MinScore    *int   `json:"min_score,omitempty"`
	ProgramName string `json:"program_name,omitempty"`
}

// FicoCriteria holds FICO score limits (min/max or tiered by program).
// Scores are on the 300-850 scale.
type FicoCriteria struct {
	MinScore *int       `json:"min_score,omitempty"`
	MaxScore *int       `json:"max_score,omitempty"`
	Tiered   []FicoTier `json:"tiered,omitempty"`
}

// PayNetCriteria holds PayNet MasterScore limits on the 0-100 scale.
type PayNetCriteria struct {
	MinScore *int `json:"min_score,omitempty"`
	MaxScore *int `json:"max_score,omitempty"`
}

// LoanAmountCriteria is the only required dimension: every program the
// engine evaluates must carry both bounds.
type LoanAmountCriteria struct {
	MinAmount int `json:"min_amount"`
	MaxAmount int `json:"max_amount"`
}

// TimeInBusinessCriteria holds the minimum time in business, in years.
type TimeInBusinessCriteria struct {
	MinYears int `json:"min_years"`
}

// GeographicRestriction holds state-level restrictions. The allow list wins
// precedence when both lists are present.
type GeographicRestriction struct {
	AllowedStates  []string `json:"allowed_states,omitempty"`
	ExcludedStates []string `json:"excluded_states,omitempty"`
}

// IndustryRestriction holds industry inclusions/exclusions with the same
// allow-list precedence as GeographicRestriction.
type IndustryRestriction struct {
	AllowedIndustries  []string `json:"allowed_industries,omitempty"`
	ExcludedIndustries []string `json:"excluded_industries,omitempty"`
}

// EquipmentRestriction holds equipment type and age restrictions.
type EquipmentRestriction struct {
	AllowedTypes         []string `json:"allowed_types,omitempty"`
	ExcludedTypes        []string `json:"excluded_types,omitempty"`
	MaxEquipmentAgeYears *int     `json:"max_equipment_age_years,omitempty"`
}

// CustomRule is an informational rule the engine does not evaluate.
type CustomRule struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	Expression  string `json:"expression,omitempty"`
}

// CriteriaSet is the normalized rule bundle for one lender program.
type CriteriaSet struct {
	Fico           *FicoCriteria           `json:"fico,omitempty"`
	Paynet         *PayNetCriteria         `json:"paynet,omitempty"`
	LoanAmount     *LoanAmountCriteria     `json:"loan_amount,omitempty"`
	TimeInBusiness *TimeInBusinessCriteria `json:"time_in_business,omitempty"`
	Geographic     *GeographicRestriction  `json:"geographic,omitempty"`
	Industry       *IndustryRestriction    `json:"industry,omitempty"`
	Equipment      *EquipmentRestriction   `json:"equipment,omitempty"`
	MinRevenue     *int                    `json:"min_revenue,omitempty"`
	CustomRules    []CustomRule            `json:"custom_rules,omitempty"`
}

// Program is one named underwriting rule bundle owned by a lender.
type Program struct {
	ID       string      `json:"id"`
	Name     string      `json:"name"`
	Tier     *string     `json:"tier,omitempty"`
	Criteria CriteriaSet `json:"criteria"`
}

// ExtractedProgram is an unpersisted program candidate produced by the
// extraction pipeline: a Program without an identity yet.
type ExtractedProgram struct {
	Name     string      `json:"name"`
	Tier     *string     `json:"tier,omitempty"`
	Criteria CriteriaSet `json:"criteria"`
}

// DefaultLoanAmount is the canonical range applied when extraction finds no
// usable loan amount for a program. Both extraction paths use it.
func DefaultLoanAmount() *LoanAmountCriteria {
	return &LoanAmountCriteria{MinAmount: 5000, MaxAmount: 500_000}
}

// IntPtr is a convenience constructor used across extractors and tests.
func IntPtr(v int) *int { return &v }

// StringPtr is a convenience constructor used across extractors and tests.
func StringPtr(v string) *string { return &v }
