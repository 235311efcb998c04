// Package audit ties the pipeline together: one document in, a parsed and
// validated report out.
package audit

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/assislucian/glosa-audit/internal/domain/statement"
	"github.com/assislucian/glosa-audit/internal/domain/statement/parser"
	"github.com/assislucian/glosa-audit/internal/domain/validation"
)

// Report is the full outcome of auditing one payment statement.
type Report struct {
	JobID       uuid.UUID           `json:"job_id"`
	CreatedAt   time.Time           `json:"created_at"`
	Header      statement.Header    `json:"header"`
	Records     []statement.Record  `json:"records"`
	Results     []validation.Result `json:"results"`
	Summary     validation.Summary  `json:"summary"`
	Diagnostics parser.Diagnostics  `json:"diagnostics"`
}

// Service runs the audit pipeline. Stateless; safe for concurrent use.
type Service struct {
	parser *parser.Parser
	lookup validation.Lookup
	opts   validation.Options
	logger *slog.Logger
}

// Option configures a Service.
type Option func(*Service)

// WithValidationOptions overrides the default tolerance settings.
func WithValidationOptions(opts validation.Options) Option {
	return func(s *Service) { s.opts = opts }
}

// WithLogger sets the logger for pipeline progress and outcomes.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) { s.logger = logger }
}

// NewService wires a parser and a fee-table lookup into an audit pipeline.
func NewService(p *parser.Parser, lookup validation.Lookup, opts ...Option) *Service {
	s := &Service{
		parser: p,
		lookup: lookup,
		opts:   validation.DefaultOptions(),
		logger: slog.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Run parses one document, validates every record against the fee table and
// aggregates the verdicts. A structural parse failure or a missing code in
// strict mode fails the whole run.
func (s *Service) Run(ctx context.Context, data []byte, pctx statement.ParserContext) (*Report, error) {
	jobID := uuid.New()
	started := time.Now()
	logger := s.logger.With(slog.String("job_id", jobID.String()))

	logger.InfoContext(ctx, "audit started",
		slog.String("document_type", string(pctx.DocumentType)),
		slog.Int("bytes", len(data)))

	parsed, err := s.parser.Parse(ctx, data, pctx)
	if err != nil {
		logger.ErrorContext(ctx, "audit failed during parsing", slog.Any("error", err))
		return nil, fmt.Errorf("parsing document: %w", err)
	}

	results, err := validation.ValidateRecords(parsed.Records, s.lookup, s.opts)
	if err != nil {
		logger.ErrorContext(ctx, "audit failed during validation", slog.Any("error", err))
		return nil, fmt.Errorf("validating records: %w", err)
	}

	summary := validation.Summarize(results)
	logger.InfoContext(ctx, "audit finished",
		slog.Int("records", len(parsed.Records)),
		slog.Int("valid", summary.ValidRecords),
		slog.String("total_difference", summary.TotalDifference.String()),
		slog.Duration("elapsed", time.Since(started)))

	return &Report{
		JobID:       jobID,
		CreatedAt:   started,
		Header:      parsed.Header,
		Records:     parsed.Records,
		Results:     results,
		Summary:     summary,
		Diagnostics: parsed.Diagnostics,
	}, nil
}
