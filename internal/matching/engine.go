// internal/matching/engine.go
package matching

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"lender-match-workers/internal/criteria"
)

// The engine is a pure, synchronous computation: no shared mutable state,
// safe to call concurrently for independent (application, lender) pairs.

// ErrNoPrograms is returned when a lender reaches the engine with zero
// programs. Callers are expected to filter such lenders out beforehand.
var ErrNoPrograms = errors.New("lender has no programs to evaluate")

var usd = message.NewPrinter(language.English)

// dollars renders an amount as "$1,234,567".
func dollars(n int) string {
	return usd.Sprintf("$%d", n)
}

// Evaluate scores one application against all programs of one lender and
// returns the best eligible program (highest fit score, first wins ties) or
// an ineligible result carrying the de-duplicated union of every program's
// rejection reasons.
func Evaluate(app Application, lenderID, lenderName string, programs []criteria.Program) (MatchResult, error) {
	if len(programs) == 0 {
		return MatchResult{}, ErrNoPrograms
	}

	var best *MatchResult
	var first *MatchResult
	var allReasons []string

	for i := range programs {
		result := evaluateProgram(app, lenderID, lenderName, programs[i])
		if i == 0 {
			r := result
			first = &r
		}
		if result.Eligible && (best == nil || result.FitScore > best.FitScore) {
			r := result
			best = &r
		}
		if !result.Eligible {
			allReasons = append(allReasons, result.RejectionReasons...)
		}
	}

	if best != nil {
		return *best, nil
	}

	return MatchResult{
		LenderID:         first.LenderID,
		LenderName:       first.LenderName,
		Eligible:         false,
		FitScore:         first.FitScore,
		BestProgram:      nil,
		RejectionReasons: dedupe(allReasons),
		CriteriaResults:  first.CriteriaResults,
	}, nil
}

// dedupe removes duplicates preserving first-seen order.
func dedupe(in []string) []string {
	seen := make(map[string]struct{}, len(in))
	out := make([]string, 0, len(in))
	for _, s := range in {
		if _, ok := seen[s]; ok {
			continue
		}
		seen[s] = struct{}{}
		out = append(out, s)
	}
	return out
}

// programEval accumulates per-dimension outcomes for one program.
type programEval struct {
	results         []CriterionResult
	rejections      []string
	scoreComponents int
	scoreTotal      int
}

func (e *programEval) record(res CriterionResult, rejections ...string) {
	e.results = append(e.results, res)
	e.scoreComponents++
	if res.Met {
		e.scoreTotal += 100
	}
	e.rejections = append(e.rejections, rejections...)
}

func evaluateProgram(app Application, lenderID, lenderName string, program criteria.Program) MatchResult {
	crit := program.Criteria
	eval := &programEval{}

	evalFico(eval, app, crit.Fico)
	evalPaynet(eval, app, crit.Paynet)
	evalLoanAmount(eval, app, crit.LoanAmount)
	evalTimeInBusiness(eval, app, crit.TimeInBusiness)
	evalGeographic(eval, app, crit.Geographic)
	evalIndustry(eval, app, crit.Industry)
	evalEquipment(eval, app, crit.Equipment)
	evalMinRevenue(eval, app, crit.MinRevenue)

	fitScore := 0
	if eval.scoreComponents > 0 {
		fitScore = eval.scoreTotal / eval.scoreComponents
	}
	if fitScore > 100 {
		fitScore = 100
	}
	eligible := len(eval.rejections) == 0

	var bestProgram *BestProgram
	if eligible {
		bestProgram = &BestProgram{
			ID:   program.ID,
			Name: program.Name,
			Tier: program.Tier,
		}
	}

	return MatchResult{
		LenderID:         lenderID,
		LenderName:       lenderName,
		Eligible:         eligible,
		FitScore:         fitScore,
		BestProgram:      bestProgram,
		RejectionReasons: eval.rejections,
		CriteriaResults:  eval.results,
	}
}

func intOr(v *int, def int) int {
	if v == nil {
		return def
	}
	return *v
}

func strPtr(s string) *string { return &s }

func evalFico(eval *programEval, app Application, crit *criteria.FicoCriteria) {
	if crit == nil {
		return
	}
	fico := intOr(app.Guarantor.FicoScore, 0)

	var met bool
	var reqStr string
	minRequired := 0
	hasMin := false
	if len(crit.Tiered) > 0 {
		// Tiered: applicant passes if any tier's minimum is satisfied.
		parts := make([]string, 0, len(crit.Tiered))
		for _, tier := range crit.Tiered {
			tierMin := intOr(tier.MinScore, 0)
			if tierMin <= fico {
				met = true
			}
			if !hasMin || tierMin < minRequired {
				minRequired = tierMin
				hasMin = true
			}
			parts = append(parts, fmt.Sprintf("≥%d", tierMin))
		}
		reqStr = strings.Join(parts, "; ")
	} else {
		met = true
		if crit.MinScore != nil {
			minRequired = *crit.MinScore
			hasMin = true
			reqStr = fmt.Sprintf("≥ %d", *crit.MinScore)
			if fico < *crit.MinScore {
				met = false
			}
		}
		if crit.MaxScore != nil {
			reqStr += fmt.Sprintf(", ≤ %d", *crit.MaxScore)
			if fico > *crit.MaxScore {
				met = false
			}
		}
	}

	minLabel := "N/A"
	if hasMin && minRequired != 0 {
		minLabel = strconv.Itoa(minRequired)
	}
	reason := fmt.Sprintf("Meets minimum %s", minLabel)
	if !met {
		reason = fmt.Sprintf("Minimum required score is %s but borrower's score is %d", minLabel, fico)
	}
	var expected *string
	if reqStr != "" {
		expected = strPtr(reqStr)
	}
	res := CriterionResult{
		Name:     "FICO Score",
		Met:      met,
		Reason:   reason,
		Expected: expected,
		Actual:   strPtr(strconv.Itoa(fico)),
	}
	if met {
		eval.record(res)
		return
	}
	eval.record(res, fmt.Sprintf("FICO score %d below minimum required %d", fico, minRequired))
}

func evalPaynet(eval *programEval, app Application, crit *criteria.PayNetCriteria) {
	if crit == nil {
		return
	}
	var paynet *int
	if app.BusinessCredit != nil {
		paynet = app.BusinessCredit.PaynetScore
	}
	if paynet == nil {
		// A present PayNet requirement with no applicant score is a hard
		// fail, unlike other dimensions which default the value to zero.
		eval.record(CriterionResult{
			Name:     "PayNet Score",
			Met:      false,
			Reason:   "PayNet score not provided",
			Expected: strPtr("Required"),
			Actual:   strPtr("N/A"),
		}, "PayNet score not provided")
		return
	}

	met := (crit.MinScore == nil || *paynet >= *crit.MinScore) &&
		(crit.MaxScore == nil || *paynet <= *crit.MaxScore)
	reqStr := ""
	if crit.MinScore != nil {
		reqStr = fmt.Sprintf("≥ %d", *crit.MinScore)
	}
	if crit.MaxScore != nil {
		reqStr += fmt.Sprintf(", ≤ %d", *crit.MaxScore)
	}
	reason := "Meets PayNet requirement"
	if !met {
		reason = fmt.Sprintf("Required PayNet %s; actual %d", reqStr, *paynet)
	}
	var expected *string
	if reqStr != "" {
		expected = strPtr(reqStr)
	}
	res := CriterionResult{
		Name:     "PayNet Score",
		Met:      met,
		Reason:   reason,
		Expected: expected,
		Actual:   strPtr(strconv.Itoa(*paynet)),
	}
	if met {
		eval.record(res)
		return
	}
	eval.record(res, fmt.Sprintf("PayNet score %d does not meet requirement %s", *paynet, reqStr))
}

// evalLoanAmount always runs: loan_amount is the one required dimension.
func evalLoanAmount(eval *programEval, app Application, crit *criteria.LoanAmountCriteria) {
	amount := app.LoanRequest.Amount
	minAmt, maxAmt := 0, 0
	if crit != nil {
		minAmt, maxAmt = crit.MinAmount, crit.MaxAmount
	}
	met := minAmt <= amount && amount <= maxAmt
	reason := fmt.Sprintf("Within %s–%s", dollars(minAmt), dollars(maxAmt))
	if !met {
		reason = fmt.Sprintf("Loan amount %s must be between %s and %s", dollars(amount), dollars(minAmt), dollars(maxAmt))
	}
	res := CriterionResult{
		Name:     "Loan Amount",
		Met:      met,
		Reason:   reason,
		Expected: strPtr(fmt.Sprintf("%s – %s", dollars(minAmt), dollars(maxAmt))),
		Actual:   strPtr(dollars(amount)),
	}
	if met {
		eval.record(res)
		return
	}
	eval.record(res, fmt.Sprintf("Loan amount %s outside range %s–%s", dollars(amount), dollars(minAmt), dollars(maxAmt)))
}

func evalTimeInBusiness(eval *programEval, app Application, crit *criteria.TimeInBusinessCriteria) {
	if crit == nil {
		return
	}
	yib := intOr(app.Business.YearsInBusiness, 0)
	minYears := crit.MinYears
	met := yib >= minYears
	reason := fmt.Sprintf("%d years ≥ %d years", yib, minYears)
	if !met {
		reason = fmt.Sprintf("Minimum %d years required; business has %d years", minYears, yib)
	}
	res := CriterionResult{
		Name:     "Time in Business",
		Met:      met,
		Reason:   reason,
		Expected: strPtr(fmt.Sprintf("≥ %d years", minYears)),
		Actual:   strPtr(fmt.Sprintf("%d years", yib)),
	}
	if met {
		eval.record(res)
		return
	}
	eval.record(res, fmt.Sprintf("Time in business %d years below minimum %d", yib, minYears))
}

func evalGeographic(eval *programEval, app Application, crit *criteria.GeographicRestriction) {
	if crit == nil || (len(crit.AllowedStates) == 0 && len(crit.ExcludedStates) == 0) {
		return
	}
	state := app.Business.State

	// Allow list wins precedence; only one list is evaluated.
	var res CriterionResult
	if len(crit.AllowedStates) > 0 {
		met := contains(crit.AllowedStates, state)
		reason := fmt.Sprintf("State %s allowed", state)
		if !met {
			reason = fmt.Sprintf("State %s not in allowed list", state)
		}
		res = CriterionResult{
			Name:     "State",
			Met:      met,
			Reason:   reason,
			Expected: strPtr(strings.Join(crit.AllowedStates, ", ")),
			Actual:   strPtr(state),
		}
	} else {
		met := !contains(crit.ExcludedStates, state)
		reason := fmt.Sprintf("State %s not excluded", state)
		if !met {
			reason = fmt.Sprintf("State %s is excluded", state)
		}
		res = CriterionResult{
			Name:     "State",
			Met:      met,
			Reason:   reason,
			Expected: strPtr("Excluded: " + strings.Join(crit.ExcludedStates, ", ")),
			Actual:   strPtr(state),
		}
	}
	if res.Met {
		eval.record(res)
		return
	}
	eval.record(res, fmt.Sprintf("Geographic restriction: state %s", state))
}

func evalIndustry(eval *programEval, app Application, crit *criteria.IndustryRestriction) {
	if crit == nil || (len(crit.AllowedIndustries) == 0 && len(crit.ExcludedIndustries) == 0) {
		return
	}
	industry := app.Business.Industry

	var res CriterionResult
	if len(crit.AllowedIndustries) > 0 {
		met := contains(crit.AllowedIndustries, industry)
		reason := fmt.Sprintf("Industry %s allowed", industry)
		if !met {
			reason = fmt.Sprintf("Industry %s not in allowed list", industry)
		}
		res = CriterionResult{
			Name:     "Industry",
			Met:      met,
			Reason:   reason,
			Expected: strPtr(strings.Join(crit.AllowedIndustries, ", ")),
			Actual:   strPtr(industry),
		}
	} else {
		met := !contains(crit.ExcludedIndustries, industry)
		reason := fmt.Sprintf("Industry %s not excluded", industry)
		if !met {
			reason = fmt.Sprintf("Industry %s is excluded", industry)
		}
		res = CriterionResult{
			Name:     "Industry",
			Met:      met,
			Reason:   reason,
			Expected: strPtr("Excludes: " + strings.Join(crit.ExcludedIndustries, ", ")),
			Actual:   strPtr(industry),
		}
	}
	if res.Met {
		eval.record(res)
		return
	}
	eval.record(res, fmt.Sprintf("Industry %s not permitted", industry))
}

// evalEquipment combines three sub-checks into one criterion result; each
// failing sub-check appends its own rejection reason.
func evalEquipment(eval *programEval, app Application, crit *criteria.EquipmentRestriction) {
	if crit == nil {
		return
	}
	equipType := ""
	var equipAge *int
	if app.LoanRequest.Equipment != nil {
		equipType = app.LoanRequest.Equipment.Type
		equipAge = app.LoanRequest.Equipment.AgeYears
	}

	met := true
	var rejections []string
	if len(crit.ExcludedTypes) > 0 && contains(crit.ExcludedTypes, equipType) {
		met = false
		rejections = append(rejections, fmt.Sprintf("Equipment type %s is excluded", equipType))
	}
	if len(crit.AllowedTypes) > 0 && !contains(crit.AllowedTypes, equipType) {
		met = false
		rejections = append(rejections, fmt.Sprintf("Equipment type %s not in allowed list", equipType))
	}
	if crit.MaxEquipmentAgeYears != nil && equipAge != nil && *equipAge > *crit.MaxEquipmentAgeYears {
		met = false
		rejections = append(rejections, fmt.Sprintf("Equipment age %d years exceeds maximum %d", *equipAge, *crit.MaxEquipmentAgeYears))
	}

	reason := "Meets equipment criteria"
	if !met {
		reason = "Equipment type or age does not meet criteria"
	}
	expected := ""
	switch {
	case crit.MaxEquipmentAgeYears != nil:
		expected = fmt.Sprintf("Max age: %d years", *crit.MaxEquipmentAgeYears)
	case len(crit.ExcludedTypes) > 0:
		expected = "Excluded: " + strings.Join(crit.ExcludedTypes, ", ")
	case len(crit.AllowedTypes) > 0:
		expected = "Allowed: " + strings.Join(crit.AllowedTypes, ", ")
	}
	actual := equipType
	if equipAge != nil {
		actual += fmt.Sprintf(", %d years", *equipAge)
	}
	eval.record(CriterionResult{
		Name:     "Equipment",
		Met:      met,
		Reason:   reason,
		Expected: strPtr(expected),
		Actual:   strPtr(actual),
	}, rejections...)
}

func evalMinRevenue(eval *programEval, app Application, minRevenue *int) {
	if minRevenue == nil {
		return
	}
	revenue := intOr(app.Business.AnnualRevenue, 0)
	met := revenue >= *minRevenue
	reason := fmt.Sprintf("Revenue meets minimum %s", dollars(*minRevenue))
	if !met {
		reason = fmt.Sprintf("Annual revenue %s below minimum %s", dollars(revenue), dollars(*minRevenue))
	}
	res := CriterionResult{
		Name:     "Minimum Revenue",
		Met:      met,
		Reason:   reason,
		Expected: strPtr(fmt.Sprintf("≥ %s", dollars(*minRevenue))),
		Actual:   strPtr(dollars(revenue)),
	}
	if met {
		eval.record(res)
		return
	}
	eval.record(res, fmt.Sprintf("Revenue %s below minimum %s", dollars(revenue), dollars(*minRevenue)))
}

func contains(list []string, v string) bool {
	for _, s := range list {
		if s == v {
			return true
		}
	}
	return false
}
