// Package parser transforms one raw payment statement into an ordered,
// CRM-filtered sequence of normalized line-item records. Text extraction is
// an injected capability retried on transient failures; structural problems
// (missing header line, missing required column, missing CRM) abort the
// document with a ParsingError, while per-row malformation is logged and the
// row dropped.
package parser

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"strings"
	"time"

	"github.com/assislucian/glosa-audit/internal/domain/statement"
	"github.com/assislucian/glosa-audit/internal/domain/statement/extract"
	"github.com/assislucian/glosa-audit/pkg/money"
)

// Structural failure causes, reachable through errors.Is on a ParsingError.
var (
	ErrExtraction      = errors.New("text extraction failed")
	ErrNoHeaderLine    = errors.New("table header line not found")
	ErrColumnNotFound  = errors.New("required column not found")
	ErrMissingCRM      = errors.New("practitioner CRM not found in document")
	ErrNoColumnMapping = errors.New("parser context has no column mappings")
)

// ParsingError is a structural failure in a single document. It aborts the
// whole parse and carries the underlying cause for diagnostics.
type ParsingError struct {
	Reason string
	Cause  error
}

func (e *ParsingError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %v", e.Reason, e.Cause)
	}
	return e.Reason
}

func (e *ParsingError) Unwrap() error { return e.Cause }

func parsingError(reason string, cause error) *ParsingError {
	return &ParsingError{Reason: reason, Cause: cause}
}

// Diagnostics expose how the parser read the document: which column each
// field resolved to, and how many rows were parsed, skipped or filtered out.
type Diagnostics struct {
	HeaderLine    int                     `json:"header_line"`
	ColumnIndexes map[statement.Field]int `json:"column_indexes"`
	TotalRows     int                     `json:"total_rows"`
	ParsedRows    int                     `json:"parsed_rows"`
	SkippedRows   int                     `json:"skipped_rows"`
	FilteredRows  int                     `json:"filtered_rows"`
	Warnings      []string                `json:"warnings,omitempty"`
}

// Result is the outcome of parsing one document.
type Result struct {
	Header      statement.Header   `json:"header"`
	Records     []statement.Record `json:"records"`
	Diagnostics Diagnostics        `json:"diagnostics"`
}

// Parser is a stateless document parser. Safe for concurrent use across
// documents: every Parse call is independent.
type Parser struct {
	extractor extract.TextExtractor
	retry     extract.RetryPolicy
	logger    *slog.Logger
	now       func() time.Time
}

// Option configures a Parser.
type Option func(*Parser)

// WithRetryPolicy overrides the extraction retry bounds.
func WithRetryPolicy(policy extract.RetryPolicy) Option {
	return func(p *Parser) { p.retry = policy }
}

// WithLogger sets the logger used for row-level warnings.
func WithLogger(logger *slog.Logger) Option {
	return func(p *Parser) { p.logger = logger }
}

// withClock fixes the statement-date fallback in tests.
func withClock(now func() time.Time) Option {
	return func(p *Parser) { p.now = now }
}

// New creates a Parser around an injected text-extraction backend.
func New(extractor extract.TextExtractor, opts ...Option) *Parser {
	p := &Parser{
		extractor: extractor,
		retry:     extract.DefaultRetryPolicy(),
		logger:    slog.Default(),
		now:       time.Now,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Parse extracts, locates and normalizes the statement table in one document.
// Returned records are ordered as printed and filtered to the practitioner
// identified in the document header.
func (p *Parser) Parse(ctx context.Context, data []byte, pctx statement.ParserContext) (*Result, error) {
	if len(pctx.ColumnMappings) == 0 {
		return nil, parsingError("invalid parser context", ErrNoColumnMapping)
	}

	text, err := extract.WithRetry(ctx, p.extractor, data, p.retry)
	if err != nil {
		return nil, parsingError("could not extract document text", fmt.Errorf("%w: %w", ErrExtraction, err))
	}

	header, err := extractHeader(text, p.now)
	if err != nil {
		return nil, parsingError("could not read document header", err)
	}

	lines := strings.Split(text, "\n")
	headerLine := findHeaderLine(lines, pctx.RequiredHeaders)
	if headerLine < 0 {
		return nil, parsingError(
			fmt.Sprintf("no line contains all required headers %v", pctx.RequiredHeaders),
			ErrNoHeaderLine,
		)
	}

	columns := splitColumns(lines[headerLine])
	colIdx, err := mapColumns(columns, pctx)
	if err != nil {
		return nil, parsingError("could not map statement columns", err)
	}

	result := &Result{
		Header: header,
		Diagnostics: Diagnostics{
			HeaderLine:    headerLine,
			ColumnIndexes: colIdx,
		},
	}

	requiredCount := len(pctx.ColumnMappings)
	headerCRM := digitsOnly(header.CRM)

	for _, line := range lines[headerLine+1:] {
		if strings.TrimSpace(line) == "" {
			continue
		}

		cols := splitColumns(line)
		result.Diagnostics.TotalRows++

		if len(cols) < requiredCount {
			// Continuation or noise line, not a structural error.
			result.Diagnostics.SkippedRows++
			continue
		}

		record, warnings, err := p.parseRow(cols, colIdx, pctx, header)
		for _, w := range warnings {
			result.Diagnostics.Warnings = append(result.Diagnostics.Warnings, w)
			p.logger.Warn("statement row issue", "issue", w, "row", line)
		}
		if err != nil {
			result.Diagnostics.SkippedRows++
			result.Diagnostics.Warnings = append(result.Diagnostics.Warnings, err.Error())
			p.logger.Warn("skipping malformed statement row", "error", err, "row", line)
			continue
		}

		if digitsOnly(record.PractitionerCRM) != headerCRM {
			result.Diagnostics.FilteredRows++
			continue
		}

		result.Records = append(result.Records, *record)
		result.Diagnostics.ParsedRows++
	}

	return result, nil
}

// parseRow normalizes one table row. Warnings cover recoverable defaults
// (unparseable currency recorded as zero); an error drops the row.
func (p *Parser) parseRow(
	cols []string,
	colIdx map[statement.Field]int,
	pctx statement.ParserContext,
	header statement.Header,
) (*statement.Record, []string, error) {
	get := func(f statement.Field) string {
		idx, ok := colIdx[f]
		if !ok || idx < 0 || idx >= len(cols) {
			return ""
		}
		return strings.TrimSpace(cols[idx])
	}

	code := get(statement.FieldCode)
	if code == "" {
		return nil, nil, fmt.Errorf("row has no procedure code")
	}

	roleLabel := get(statement.FieldRole)
	role := statement.ClassifyRole(roleLabel, pctx.RoleRules)

	record := &statement.Record{
		GuideNumber:     get(statement.FieldGuide),
		ServiceDate:     header.StatementDate,
		ProcedureCode:   code,
		Description:     get(statement.FieldDescription),
		Role:            role,
		RoleLabel:       roleLabel,
		PractitionerCRM: header.CRM,
		Quantity:        1,
	}

	if raw := get(statement.FieldServiceDate); raw != "" {
		if d, err := time.Parse("02/01/2006", raw); err == nil {
			record.ServiceDate = d
		}
	}

	if raw := get(statement.FieldCRM); raw != "" {
		record.PractitionerCRM = raw
	}

	if raw := get(statement.FieldQuantity); raw != "" {
		if qty, err := strconv.Atoi(raw); err == nil && qty > 0 {
			record.Quantity = qty
		}
	}

	var warnings []string
	currency := func(f statement.Field) (money.Amount, error) {
		raw := get(f)
		parsed := money.ParseOptional(raw)
		if amount, ok := parsed.Get(); ok {
			return amount.Abs(), nil
		}
		if pctx.StrictCurrency {
			return money.Amount{}, fmt.Errorf("unparseable %s value %q for code %s", f, raw, code)
		}
		warnings = append(warnings, fmt.Sprintf("unparseable %s value %q for code %s recorded as zero", f, raw, code))
		return money.Amount{}, nil
	}

	presented, err := currency(statement.FieldPresented)
	if err != nil {
		return nil, warnings, err
	}
	approved, err := currency(statement.FieldApproved)
	if err != nil {
		return nil, warnings, err
	}
	record.PresentedValue = presented
	record.ApprovedValue = approved

	return record, warnings, nil
}

// digitsOnly normalizes a CRM for comparison: "CRM 123456" and "123456"
// identify the same practitioner.
func digitsOnly(s string) string {
	var b strings.Builder
	for _, r := range s {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	return b.String()
}
