package parser

import (
	"fmt"
	"regexp"
	"sort"
	"strings"

	"github.com/lithammer/fuzzysearch/fuzzy"

	"github.com/assislucian/glosa-audit/internal/domain/statement"
)

// columnDelimiter splits fixed-width/tab table layouts: a tab or a run of
// two or more spaces. A single space inside a column label ("Valor Aprovado")
// must not cause a split.
var columnDelimiter = regexp.MustCompile(`\t|\s{2,}`)

// splitColumns breaks a table line into trimmed, non-empty column cells.
func splitColumns(line string) []string {
	parts := columnDelimiter.Split(strings.TrimSpace(line), -1)
	cols := parts[:0]
	for _, part := range parts {
		if part = strings.TrimSpace(part); part != "" {
			cols = append(cols, part)
		}
	}
	return cols
}

// findHeaderLine returns the index of the first line whose lowercase form
// contains every required header token, or -1. Substring containment is
// intentionally permissive toward OCR noise and uneven spacing.
func findHeaderLine(lines []string, requiredHeaders []string) int {
	if len(requiredHeaders) == 0 {
		return -1
	}
	for i, line := range lines {
		lower := strings.ToLower(line)
		found := true
		for _, token := range requiredHeaders {
			if !strings.Contains(lower, strings.ToLower(token)) {
				found = false
				break
			}
		}
		if found {
			return i
		}
	}
	return -1
}

// fieldLabel pairs a semantic field with its configured label substring.
type fieldLabel struct {
	field    statement.Field
	label    string
	required bool
}

// mapColumns resolves each configured field to a column index. Labels are
// resolved longest-first so overlapping labels ("valor aprovado" vs "valor")
// each claim their own column; within one label, an exact column wins over a
// containing one, and a fuzzy match is the last resort for OCR-mangled text.
// A required field whose label cannot be located is fatal.
func mapColumns(columns []string, pctx statement.ParserContext) (map[statement.Field]int, error) {
	lowered := make([]string, len(columns))
	for i, col := range columns {
		lowered[i] = strings.ToLower(strings.TrimSpace(col))
	}

	labels := make([]fieldLabel, 0, len(pctx.ColumnMappings)+len(pctx.OptionalMappings))
	for field, label := range pctx.ColumnMappings {
		labels = append(labels, fieldLabel{field: field, label: strings.ToLower(label), required: true})
	}
	for field, label := range pctx.OptionalMappings {
		labels = append(labels, fieldLabel{field: field, label: strings.ToLower(label)})
	}
	sort.SliceStable(labels, func(i, j int) bool {
		if len(labels[i].label) != len(labels[j].label) {
			return len(labels[i].label) > len(labels[j].label)
		}
		return labels[i].field < labels[j].field
	})

	resolved := make(map[statement.Field]int, len(labels))
	claimed := make(map[int]bool, len(labels))

	for _, fl := range labels {
		idx := locateColumn(lowered, fl.label, claimed, fl.required)
		if idx < 0 {
			if fl.required {
				return nil, fmt.Errorf("%w: field %q (label %q) in columns %v",
					ErrColumnNotFound, fl.field, fl.label, columns)
			}
			continue
		}
		claimed[idx] = true
		resolved[fl.field] = idx
	}

	return resolved, nil
}

// maxFuzzyRank bounds how mangled a column label may be before the fuzzy
// fallback refuses to bind it.
const maxFuzzyRank = 5

// locateColumn finds the best unclaimed column for a label: exact text, then
// tightest containing column. Required fields get a bounded fuzzy fallback
// as a last resort for OCR-mangled headers; optional fields do not, so a
// genuinely absent column stays absent instead of binding a lookalike.
func locateColumn(lowered []string, label string, claimed map[int]bool, allowFuzzy bool) int {
	for i, col := range lowered {
		if !claimed[i] && col == label {
			return i
		}
	}

	best := -1
	for i, col := range lowered {
		if claimed[i] || !strings.Contains(col, label) {
			continue
		}
		if best < 0 || len(col) < len(lowered[best]) {
			best = i
		}
	}
	if best >= 0 || !allowFuzzy {
		return best
	}

	bestRank := -1
	for i, col := range lowered {
		if claimed[i] {
			continue
		}
		rank := fuzzy.RankMatchNormalizedFold(label, col)
		if rank < 0 || rank > maxFuzzyRank {
			continue
		}
		if best < 0 || rank < bestRank {
			best = i
			bestRank = rank
		}
	}
	return best
}
