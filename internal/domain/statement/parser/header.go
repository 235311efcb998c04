package parser

import (
	"regexp"
	"strings"
	"time"

	"github.com/assislucian/glosa-audit/internal/domain/statement"
)

// Header metadata patterns. Statements print these labels with inconsistent
// casing, punctuation and spacing, so each pattern tolerates noise between
// the label and the value.
var (
	crmPattern  = regexp.MustCompile(`(?i)\bcrm\b[^0-9\n]{0,15}([0-9]{4,10})`)
	namePattern = regexp.MustCompile(`(?i)nome\s+do\s+m[eé]dico\s*:?\s*([^\n]+)`)
	datePattern = regexp.MustCompile(`(?i)\bdata\b[^0-9\n]{0,25}([0-9]{2}/[0-9]{2}/[0-9]{4})`)
)

// extractHeader scans the extracted text for the three document-level fields.
// Only the CRM is required; a missing name is silently absent and a missing
// date defaults to now.
func extractHeader(text string, now func() time.Time) (statement.Header, error) {
	header := statement.Header{StatementDate: now()}

	m := crmPattern.FindStringSubmatch(text)
	if m == nil {
		return header, ErrMissingCRM
	}
	header.CRM = m[1]

	if m := namePattern.FindStringSubmatch(text); m != nil {
		header.PractitionerName = trimHeaderValue(m[1])
	}

	if m := datePattern.FindStringSubmatch(text); m != nil {
		if d, err := time.Parse("02/01/2006", m[1]); err == nil {
			header.StatementDate = d
		}
	}

	return header, nil
}

// trimHeaderValue cuts a captured header value at the first column break,
// since header labels share fixed-width lines with other fields.
func trimHeaderValue(s string) string {
	s = strings.TrimSpace(s)
	if loc := columnDelimiter.FindStringIndex(s); loc != nil {
		s = s[:loc[0]]
	}
	return strings.TrimSpace(s)
}
