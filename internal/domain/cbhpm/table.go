// Package cbhpm provides the reference fee table used to compute expected
// reimbursement values: an in-memory lookup keyed by procedure code, loadable
// from the CSV and XLSX files the table is distributed as.
package cbhpm

import (
	"strings"

	"github.com/assislucian/glosa-audit/pkg/money"
)

// Entry is one reference procedure in the fee table.
type Entry struct {
	// Code is kept as a string: leading zeros and suffixes are significant.
	Code        string `json:"code"`
	Description string `json:"description"`

	// Value is the full (surgeon) reference fee.
	Value money.Amount `json:"value"`

	// AnesthesiaPort is the anesthetic port value when the table lists
	// one; zero means the anesthetist is paid from Value.
	AnesthesiaPort money.Amount `json:"anesthesia_port,omitempty"`
}

// Table is an immutable in-memory fee table. Safe for concurrent lookups.
type Table struct {
	entries map[string]Entry
}

// NewTable builds a table from entries. Later duplicates of a code win,
// matching how table revisions are distributed (full file, last row current).
func NewTable(entries []Entry) *Table {
	m := make(map[string]Entry, len(entries))
	for _, e := range entries {
		code := normalizeCode(e.Code)
		if code == "" {
			continue
		}
		e.Code = code
		m[code] = e
	}
	return &Table{entries: m}
}

// Lookup returns the entry for a procedure code.
func (t *Table) Lookup(code string) (Entry, bool) {
	e, ok := t.entries[normalizeCode(code)]
	return e, ok
}

// Len returns the number of distinct procedure codes.
func (t *Table) Len() int {
	return len(t.entries)
}

// normalizeCode trims surrounding noise but preserves leading zeros and any
// non-numeric suffix.
func normalizeCode(code string) string {
	return strings.TrimSpace(code)
}
