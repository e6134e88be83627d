// internal/extraction/patterns/scores.go
package patterns

import (
	"regexp"
	"strconv"
	"strings"

	"lender-match-workers/internal/criteria"
)

var (
	ficoAfterRe  = regexp.MustCompile(`(?i)fico\D{0,20}(\d{3})`)
	ficoBeforeRe = regexp.MustCompile(`(?i)(\d{3})\D{0,20}fico`)

	paynetBeforeRe = regexp.MustCompile(`(?i)(\d{1,4})\D{0,20}(?:paynet|pay\s+net)`)
	paynetAfterRe  = regexp.MustCompile(`(?i)(?:paynet|pay\s+net)\D{0,12}(\d{1,4})`)
)

// FICO extracts FICO min/max from text. Numbers textually adjacent to the
// "FICO" token are preferred, to avoid mixing with PayNet or other scores on
// the same line; broader line and whole-text scans are fallbacks.
func FICO(text string) *criteria.FicoCriteria {
	lower := strings.ToLower(text)
	if !containsAny(lower, "fico", "credit score", "minimum score") {
		return nil
	}
	lines := strings.Split(text, "\n")

	var near []int
	for _, line := range lines {
		ll := strings.ToLower(line)
		if !strings.Contains(ll, "fico") {
			continue
		}
		for _, re := range []*regexp.Regexp{ficoAfterRe, ficoBeforeRe} {
			for _, m := range re.FindAllStringSubmatch(ll, -1) {
				n, _ := strconv.Atoi(m[1])
				if 300 <= n && n <= 850 {
					near = append(near, n)
				}
			}
		}
	}
	if len(near) > 0 {
		min, max := scoreRange(near)
		return &criteria.FicoCriteria{MinScore: min, MaxScore: max}
	}

	// Fallback: any score-like numbers on lines mentioning FICO/score.
	var ficoLines []string
	for _, line := range lines {
		ll := strings.ToLower(line)
		if containsAny(ll, "fico", "credit score", "min score", "minimum score") {
			ficoLines = append(ficoLines, line)
		}
	}
	search := strings.Join(ficoLines, " ")
	if search == "" {
		search = lower
	}
	nums := NumbersInRange(search, 300, 850)
	if len(nums) == 0 {
		nums = NumbersInRange(lower, 300, 850)
	}
	if len(nums) == 0 {
		return nil
	}
	min, max := scoreRange(nums)
	return &criteria.FicoCriteria{MinScore: min, MaxScore: max}
}

// PayNet extracts PayNet MasterScore min/max. Numbers *before* the trigger
// token are preferred over numbers after it ("650+ PayNet, 670+ FICO"
// ordering). Values on the 0-100 scale are taken directly; 600-799 values
// are an OCR/extraction artifact and get a ÷10 correction.
func PayNet(text string) *criteria.PayNetCriteria {
	lower := strings.ToLower(text)
	if !containsAny(lower, "paynet", "pay net") {
		return nil
	}
	lines := strings.Split(text, "\n")

	var paynetLines []string
	var before, after []int
	for _, line := range lines {
		ll := strings.ToLower(line)
		if !containsAny(ll, "paynet", "pay net") {
			continue
		}
		paynetLines = append(paynetLines, line)
		for _, m := range paynetBeforeRe.FindAllStringSubmatch(ll, -1) {
			n, _ := strconv.Atoi(m[1])
			before = append(before, n)
		}
		for _, m := range paynetAfterRe.FindAllStringSubmatch(ll, -1) {
			n, _ := strconv.Atoi(m[1])
			after = append(after, n)
		}
	}

	nearRaw := before
	if len(nearRaw) == 0 {
		nearRaw = after
	}

	var nums []int
	for _, n := range nearRaw {
		if 0 <= n && n <= 100 {
			nums = append(nums, n)
		}
	}
	if len(nums) > 0 {
		min, max := scoreRange(nums)
		return &criteria.PayNetCriteria{MinScore: min, MaxScore: max}
	}

	var nums3 []int
	for _, n := range nearRaw {
		if 600 <= n && n <= 799 {
			nums3 = append(nums3, n)
		}
	}
	if len(nums3) == 0 {
		search := strings.Join(paynetLines, " ")
		if search == "" {
			search = lower
		}
		nums3 = NumbersInRange(search, 600, 799)
	}
	if len(nums3) == 0 {
		return nil
	}
	var converted []int
	for _, n := range nums3 {
		c := n / 10
		if 0 <= c && c <= 100 {
			converted = append(converted, c)
		}
	}
	if len(converted) == 0 {
		return nil
	}
	min, max := scoreRange(converted)
	return &criteria.PayNetCriteria{MinScore: min, MaxScore: max}
}

// scoreRange builds a min/max pair: the max is set only when more than one
// number was found.
func scoreRange(nums []int) (*int, *int) {
	min := criteria.IntPtr(minOf(nums))
	var max *int
	if len(nums) > 1 {
		max = criteria.IntPtr(maxOf(nums))
	}
	return min, max
}
