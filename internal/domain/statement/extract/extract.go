// Package extract defines the pluggable text-extraction capability the
// statement parser depends on, plus the bounded-retry wrapper around it.
// The extraction backend (PDF renderer, OCR engine, pre-extracted text) is
// injected by the caller; nothing here assumes a specific library or any
// process-wide configuration.
package extract

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/sethvargo/go-retry"
)

// TextExtractor turns raw document bytes into plain text.
// Implementations must be safe for concurrent use across documents.
type TextExtractor interface {
	ExtractText(ctx context.Context, data []byte) (string, error)
}

// ExtractorFunc adapts a function to the TextExtractor interface.
type ExtractorFunc func(ctx context.Context, data []byte) (string, error)

// ExtractText implements TextExtractor.
func (f ExtractorFunc) ExtractText(ctx context.Context, data []byte) (string, error) {
	return f(ctx, data)
}

// transientError marks an extraction failure as transient (IO-classified).
// Only transient failures are retried; structural failures recur
// deterministically and fail immediately.
type transientError struct {
	err error
}

func (e *transientError) Error() string { return e.err.Error() }
func (e *transientError) Unwrap() error { return e.err }

// Transient wraps err so the retry wrapper treats it as retryable.
// Extractor implementations wrap IO-level failures with it.
func Transient(err error) error {
	if err == nil {
		return nil
	}
	return &transientError{err: err}
}

// IsTransient reports whether err was marked with Transient.
func IsTransient(err error) bool {
	var te *transientError
	return errors.As(err, &te)
}

// RetryPolicy bounds the extraction retry loop: capped exponential backoff
// (factor 2) with a fixed attempt budget.
type RetryPolicy struct {
	MaxAttempts    int
	InitialBackoff time.Duration
	MaxBackoff     time.Duration
}

// DefaultRetryPolicy returns the standard bounds: 3 attempts, 500ms initial
// backoff doubling up to 3s.
func DefaultRetryPolicy() RetryPolicy {
	return RetryPolicy{
		MaxAttempts:    3,
		InitialBackoff: 500 * time.Millisecond,
		MaxBackoff:     3 * time.Second,
	}
}

// WithRetry runs the extractor under the policy. Transient failures are
// retried with backoff until the attempt budget is spent; any other failure
// aborts immediately. Cancelling ctx aborts between attempts. Non-positive
// policy bounds fall back to the defaults.
func WithRetry(ctx context.Context, extractor TextExtractor, data []byte, policy RetryPolicy) (string, error) {
	defaults := DefaultRetryPolicy()
	if policy.MaxAttempts < 1 {
		policy.MaxAttempts = 1
	}
	// The exponential backoff requires a positive base.
	if policy.InitialBackoff <= 0 {
		policy.InitialBackoff = defaults.InitialBackoff
	}
	if policy.MaxBackoff <= 0 {
		policy.MaxBackoff = defaults.MaxBackoff
	}

	backoff := retry.NewExponential(policy.InitialBackoff)
	backoff = retry.WithCappedDuration(policy.MaxBackoff, backoff)
	backoff = retry.WithMaxRetries(uint64(policy.MaxAttempts-1), backoff)

	var text string
	err := retry.Do(ctx, backoff, func(ctx context.Context) error {
		out, err := extractor.ExtractText(ctx, data)
		if err != nil {
			if IsTransient(err) {
				return retry.RetryableError(err)
			}
			return err
		}
		text = out
		return nil
	})
	if err != nil {
		return "", err
	}
	return text, nil
}

// PlainText extracts documents that already are UTF-8 text, such as
// statements exported as TXT or text pre-extracted by an upstream OCR stage.
// It normalizes line endings and strips a BOM if present.
type PlainText struct{}

// ExtractText implements TextExtractor.
func (PlainText) ExtractText(_ context.Context, data []byte) (string, error) {
	if len(data) == 0 {
		return "", fmt.Errorf("document is empty")
	}
	if !utf8.Valid(data) {
		return "", fmt.Errorf("document is not valid UTF-8 text")
	}
	text := strings.TrimPrefix(string(data), "\uFEFF")
	text = strings.ReplaceAll(text, "\r\n", "\n")
	return text, nil
}
