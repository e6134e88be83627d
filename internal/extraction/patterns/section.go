// internal/extraction/patterns/section.go
package patterns

import "lender-match-workers/internal/criteria"

// FromSection runs every extractor against one section of text and
// assembles the results. loan_amount is always populated: the canonical
// default applies when no usable range was found.
func FromSection(sectionText string) criteria.CriteriaSet {
	cs := criteria.CriteriaSet{
		Fico:           FICO(sectionText),
		Paynet:         PayNet(sectionText),
		LoanAmount:     LoanAmounts(sectionText),
		TimeInBusiness: TimeInBusiness(sectionText),
		Geographic:     Geographic(sectionText),
		Industry:       Industry(sectionText),
		Equipment:      Equipment(sectionText),
		MinRevenue:     MinRevenue(sectionText),
	}
	if cs.LoanAmount == nil {
		cs.LoanAmount = criteria.DefaultLoanAmount()
	}
	return cs
}
