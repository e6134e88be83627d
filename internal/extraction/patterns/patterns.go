// internal/extraction/patterns/patterns.go
//
// Pattern-based criteria extractors: one independent heuristic per criterion
// dimension, each scanning text for dimension-specific signals (keyword
// proximity, numeric ranges, state codes). Every extractor returns nil when
// its trigger keywords are absent — absence of a dimension is never an
// evaluated-and-passing constraint.
package patterns

import (
	"regexp"
	"strconv"
	"strings"
)

// usStateCodes gates 2-letter token matching for geographic extraction.
var usStateCodes = map[string]struct{}{
	"al": {}, "ak": {}, "az": {}, "ar": {}, "ca": {}, "co": {}, "ct": {}, "de": {}, "fl": {}, "ga": {},
	"hi": {}, "id": {}, "il": {}, "in": {}, "ia": {}, "ks": {}, "ky": {}, "la": {}, "me": {}, "md": {},
	"ma": {}, "mi": {}, "mn": {}, "ms": {}, "mo": {}, "mt": {}, "ne": {}, "nv": {}, "nh": {}, "nj": {},
	"nm": {}, "ny": {}, "nc": {}, "nd": {}, "oh": {}, "ok": {}, "or": {}, "pa": {}, "ri": {}, "sc": {},
	"sd": {}, "tn": {}, "tx": {}, "ut": {}, "vt": {}, "va": {}, "wa": {}, "wv": {}, "wi": {}, "wy": {},
	"dc": {},
}

var smallNumberRe = regexp.MustCompile(`\b(\d{1,4})\b`)

// NumbersInRange collects all 1-4 digit integers in text within [lo, hi].
func NumbersInRange(text string, lo, hi int) []int {
	var nums []int
	for _, m := range smallNumberRe.FindAllStringSubmatch(text, -1) {
		n, err := strconv.Atoi(m[1])
		if err != nil {
			continue
		}
		if lo <= n && n <= hi {
			nums = append(nums, n)
		}
	}
	return nums
}

func minOf(nums []int) int {
	min := nums[0]
	for _, n := range nums[1:] {
		if n < min {
			min = n
		}
	}
	return min
}

func maxOf(nums []int) int {
	max := nums[0]
	for _, n := range nums[1:] {
		if n > max {
			max = n
		}
	}
	return max
}

func containsAny(s string, subs ...string) bool {
	for _, sub := range subs {
		if strings.Contains(s, sub) {
			return true
		}
	}
	return false
}
