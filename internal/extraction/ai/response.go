// internal/extraction/ai/response.go
package ai

import (
	"encoding/json"
	"errors"
	"fmt"
	"regexp"
	"strings"

	"lender-match-workers/internal/criteria"
)

var codeFenceRe = regexp.MustCompile("(?s)```(?:json)?\\s*(.*?)```")

// errEmptyResponse reports a model reply that held no usable JSON.
var errEmptyResponse = errors.New("no programs in model response")

// parseResponse recovers the {"programs": [...]} object from raw model
// output, tolerating markdown fences and stray prose around the JSON.
func parseResponse(raw string) ([]map[string]interface{}, error) {
	cleaned := strings.TrimSpace(raw)
	if cleaned == "" {
		return nil, errEmptyResponse
	}
	if strings.HasPrefix(cleaned, "```") {
		if m := codeFenceRe.FindStringSubmatch(cleaned); m != nil {
			cleaned = strings.TrimSpace(m[1])
		}
	}
	if !strings.HasPrefix(cleaned, "{") {
		start := strings.Index(cleaned, "{")
		end := strings.LastIndex(cleaned, "}")
		if start == -1 || end <= start {
			return nil, errEmptyResponse
		}
		cleaned = strings.TrimSpace(cleaned[start : end+1])
	}

	var envelope struct {
		Programs []map[string]interface{} `json:"programs"`
	}
	if err := json.Unmarshal([]byte(cleaned), &envelope); err != nil {
		return nil, fmt.Errorf("decode model response: %w", err)
	}
	if len(envelope.Programs) == 0 {
		return nil, errEmptyResponse
	}
	return envelope.Programs, nil
}

// normalizePrograms converts raw program maps into typed programs with the
// loan-amount contract enforced: every program carries both bounds, with the
// canonical default filling whatever the model left out.
func normalizePrograms(rawPrograms []map[string]interface{}) ([]criteria.ExtractedProgram, error) {
	out := make([]criteria.ExtractedProgram, 0, len(rawPrograms))
	for _, raw := range rawPrograms {
		var p criteria.ExtractedProgram
		if err := criteria.Decode(raw, &p); err != nil {
			return nil, fmt.Errorf("decode program: %w", err)
		}
		if strings.TrimSpace(p.Name) == "" {
			p.Name = "Standard Program"
		}
		if p.Tier != nil && strings.TrimSpace(*p.Tier) == "" {
			p.Tier = nil
		}
		defaultLoan := criteria.DefaultLoanAmount()
		switch {
		case p.Criteria.LoanAmount == nil:
			p.Criteria.LoanAmount = defaultLoan
		case p.Criteria.LoanAmount.MinAmount == 0 && p.Criteria.LoanAmount.MaxAmount == 0:
			p.Criteria.LoanAmount = defaultLoan
		case p.Criteria.LoanAmount.MaxAmount == 0:
			p.Criteria.LoanAmount.MaxAmount = defaultLoan.MaxAmount
		}
		out = append(out, p)
	}
	return out, nil
}
