package validation

import (
	"strings"

	"github.com/cloudflare/ahocorasick"

	"github.com/assislucian/glosa-audit/pkg/money"
)

// Summary aggregates a batch of results.
type Summary struct {
	TotalRecords    int            `json:"total_records"`
	ValidRecords    int            `json:"valid_records"`
	TotalDifference money.Amount   `json:"total_difference"`
	ErrorsByType    map[string]int `json:"errors_by_type"`
}

// errorCategory buckets an error message under a coarse label when the
// message contains the keyword. Order is priority: the first matching
// category wins.
type errorCategory struct {
	keyword string
	label   string
}

var errorCategories = []errorCategory{
	{keyword: "value difference", label: "Value difference"},
	{keyword: "no cbhpm entry", label: "No CBHPM entry found"},
	{keyword: "zero expected value", label: "Zero expected value"},
}

// errorMatcher scans a message for every category keyword in one pass.
var errorMatcher = func() *ahocorasick.Matcher {
	patterns := make([][]byte, len(errorCategories))
	for i, c := range errorCategories {
		patterns[i] = []byte(c.keyword)
	}
	return ahocorasick.NewMatcher(patterns)
}()

// classifyError maps an error message to its coarse category. Messages no
// category matches bucket under their own literal text; nothing is dropped.
func classifyError(msg string) string {
	matches := errorMatcher.Match([]byte(strings.ToLower(msg)))
	best := -1
	for _, idx := range matches {
		if best < 0 || idx < best {
			best = idx
		}
	}
	if best >= 0 {
		return errorCategories[best].label
	}
	return msg
}

// Summarize aggregates counts, the signed total difference, and an
// error-type histogram. Each invalid result contributes its first error to
// the histogram once.
func Summarize(results []Result) Summary {
	summary := Summary{
		TotalRecords: len(results),
		ErrorsByType: make(map[string]int),
	}

	for _, r := range results {
		summary.TotalDifference = summary.TotalDifference.Add(r.Difference)
		if r.IsValid {
			summary.ValidRecords++
			continue
		}
		if len(r.Errors) > 0 {
			summary.ErrorsByType[classifyError(r.Errors[0])]++
		}
	}

	return summary
}
