// internal/extraction/parser.go
//
// Document-to-programs orchestration. A Parser turns raw guideline text into
// one or more extracted programs by walking a chain of strategies from most
// to least structured: model-assisted extraction, side-by-side tier tables,
// lettered rate-guideline headings, generic section headers, and finally the
// whole document as a single "Standard Program". The chain always produces at
// least one program.
package extraction

import (
	"context"
	"regexp"
	"strings"

	"lender-match-workers/internal/common/logger"
	"lender-match-workers/internal/criteria"
	"lender-match-workers/internal/extraction/ai"
	"lender-match-workers/internal/extraction/patterns"
	"lender-match-workers/internal/extraction/segment"
)

var tierLabelRe = regexp.MustCompile(`(?i)(?:Tier|Level)\s*(\d+)|Program\s+([A-Za-z])`)

// Parser extracts lender programs from document text.
type Parser struct {
	ai     *ai.Extractor
	logger logger.Logger
}

// NewParser builds a Parser. aiExtractor may be nil, in which case only the
// deterministic strategies run.
func NewParser(aiExtractor *ai.Extractor, log logger.Logger) *Parser {
	return &Parser{ai: aiExtractor, logger: log}
}

// Programs runs the strategy chain over text. Any model-path failure falls
// through to deterministic extraction, so the result is never empty.
func (p *Parser) Programs(ctx context.Context, text string) []criteria.ExtractedProgram {
	if p.ai != nil {
		programs, err := p.ai.ExtractPrograms(ctx, text)
		if err == nil && len(programs) > 0 {
			return programs
		}
		if err != nil {
			p.logger.Warn("model extraction unavailable, using deterministic extraction", map[string]interface{}{
				"error": err.Error(),
			})
		}
	}

	return p.DeterministicPrograms(text)
}

// DeterministicPrograms runs only the pattern-based strategies, skipping the
// model path even when one is configured.
func (p *Parser) DeterministicPrograms(text string) []criteria.ExtractedProgram {
	if programs := segment.TierTable(text); programs != nil {
		return programs
	}
	if programs := segment.RateGuidelines(text); programs != nil {
		return programs
	}

	sections := segment.Sections(text)
	if len(sections) == 0 {
		return []criteria.ExtractedProgram{{
			Name:     "Standard Program",
			Criteria: patterns.FromSection(text),
		}}
	}

	global := patterns.FromSection(text)
	programs := make([]criteria.ExtractedProgram, 0, len(sections))
	for _, sec := range sections {
		programs = append(programs, criteria.ExtractedProgram{
			Name:     sec.Name,
			Tier:     tierLabel(sec.Name),
			Criteria: mergeSection(patterns.FromSection(sec.Body), global),
		})
	}
	return programs
}

// mergeSection overlays section-level criteria on document-level ones:
// the section wins per dimension, the document fills gaps. A section whose
// loan band bottomed out at zero takes the document-wide band instead.
func mergeSection(sec, global criteria.CriteriaSet) criteria.CriteriaSet {
	merged := sec
	if merged.Fico == nil {
		merged.Fico = global.Fico
	}
	if merged.Paynet == nil {
		merged.Paynet = global.Paynet
	}
	if merged.TimeInBusiness == nil {
		merged.TimeInBusiness = global.TimeInBusiness
	}
	if merged.Geographic == nil {
		merged.Geographic = global.Geographic
	}
	if merged.Industry == nil {
		merged.Industry = global.Industry
	}
	if merged.Equipment == nil {
		merged.Equipment = global.Equipment
	}
	if merged.MinRevenue == nil {
		merged.MinRevenue = global.MinRevenue
	}
	if merged.LoanAmount == nil || merged.LoanAmount.MinAmount == 0 {
		merged.LoanAmount = global.LoanAmount
	}
	if merged.LoanAmount == nil {
		merged.LoanAmount = criteria.DefaultLoanAmount()
	}
	return merged
}

func tierLabel(name string) *string {
	m := tierLabelRe.FindStringSubmatch(name)
	if m == nil {
		return nil
	}
	label := m[1]
	if label == "" {
		label = m[2]
	}
	if label == "" {
		return nil
	}
	return criteria.StringPtr(strings.ToUpper(label))
}
