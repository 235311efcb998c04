// Package validation classifies parsed statement records against the CBHPM
// reference table: it computes the expected reimbursement per record, compares
// it with the approved value within a configured tolerance, and aggregates a
// batch summary. Both operations are pure transforms over their inputs and an
// injected read-only lookup.
package validation

import (
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/assislucian/glosa-audit/internal/domain/cbhpm"
	"github.com/assislucian/glosa-audit/internal/domain/statement"
	"github.com/assislucian/glosa-audit/pkg/money"
)

// Lookup resolves a procedure code to its reference entry. It is injected,
// never owned: the only requirement is a consistent answer for a given code
// within one validation call.
type Lookup interface {
	Lookup(procedureCode string) (cbhpm.Entry, bool)
}

// CBHPMError signals a reference-data gap while missing codes are
// disallowed. It fails the whole batch: an incomplete fee table is fixed
// upstream, not absorbed per row.
type CBHPMError struct {
	Code string
}

func (e *CBHPMError) Error() string {
	return fmt.Sprintf("no CBHPM entry found for code %s", e.Code)
}

// Options controls tolerance and missing-code behavior for one batch.
type Options struct {
	// TolerancePercentage is the allowed relative deviation between
	// approved and expected value, boundary inclusive.
	TolerancePercentage float64

	// RequireExactMatch demands a zero difference regardless of tolerance.
	RequireExactMatch bool

	// AllowMissingCodes turns an unresolvable code into an invalid result
	// instead of failing the batch.
	AllowMissingCodes bool

	// RoleRatios scales the reference value per professional role.
	// Roles absent from the map default to the full value.
	RoleRatios map[statement.Role]decimal.Decimal
}

// DefaultOptions returns the standard audit configuration: 5% tolerance and
// the customary CBHPM role splits.
func DefaultOptions() Options {
	return Options{
		TolerancePercentage: 5,
		AllowMissingCodes:   true,
		RoleRatios:          DefaultRoleRatios(),
	}
}

// DefaultRoleRatios returns the customary share of the reference value per
// role: full value for the surgeon and anesthetist, 30/20/20% for the
// assistants, 10% for the instrumentator. Unknown roles get the full value
// so a misclassified label surfaces as a value difference, not a hidden cut.
func DefaultRoleRatios() map[statement.Role]decimal.Decimal {
	return map[statement.Role]decimal.Decimal{
		statement.RoleSurgeon:         decimal.NewFromInt(1),
		statement.RoleAnesthetist:     decimal.NewFromInt(1),
		statement.RoleFirstAssistant:  decimal.NewFromFloat(0.3),
		statement.RoleSecondAssistant: decimal.NewFromFloat(0.2),
		statement.RoleThirdAssistant:  decimal.NewFromFloat(0.2),
		statement.RoleInstrumentator:  decimal.NewFromFloat(0.1),
		statement.RoleUnknown:         decimal.NewFromInt(1),
	}
}

// Result is the verdict for one record. Record points into the caller's
// slice; it is shared, not copied.
type Result struct {
	Record        *statement.Record `json:"record"`
	ExpectedValue money.Amount      `json:"expected_value"`
	Difference    money.Amount      `json:"difference"`
	IsValid       bool              `json:"is_valid"`
	Errors        []string          `json:"errors,omitempty"`
}

// ValidateRecords classifies every record. The returned slice is ordered like
// the input. A missing reference code fails the whole call with a CBHPMError
// unless opts.AllowMissingCodes; no partial results are returned in that case.
func ValidateRecords(records []statement.Record, lookup Lookup, opts Options) ([]Result, error) {
	results := make([]Result, 0, len(records))

	for i := range records {
		record := &records[i]

		entry, ok := lookup.Lookup(record.ProcedureCode)
		if !ok {
			if !opts.AllowMissingCodes {
				return nil, &CBHPMError{Code: record.ProcedureCode}
			}
			results = append(results, Result{
				Record:     record,
				Difference: record.ApprovedValue,
				Errors:     []string{fmt.Sprintf("No CBHPM entry found for code %s", record.ProcedureCode)},
			})
			continue
		}

		expected := expectedValue(record, entry, opts.RoleRatios)
		results = append(results, compare(record, expected, opts))
	}

	return results, nil
}

// expectedValue derives the reference amount for a record: the anesthetic
// port for anesthetists when the table lists one, otherwise the full value,
// scaled by the role ratio and the line quantity.
func expectedValue(record *statement.Record, entry cbhpm.Entry, ratios map[statement.Role]decimal.Decimal) money.Amount {
	base := entry.Value
	if record.Role == statement.RoleAnesthetist && !entry.AnesthesiaPort.IsZero() {
		base = entry.AnesthesiaPort
	}

	if ratio, ok := ratios[record.Role]; ok {
		base = base.ApplyRatio(ratio)
	}

	quantity := record.Quantity
	if quantity < 1 {
		quantity = 1
	}
	return base.ApplyRatio(decimal.NewFromInt(int64(quantity)))
}

// compare applies the tolerance rule to one record.
func compare(record *statement.Record, expected money.Amount, opts Options) Result {
	result := Result{
		Record:        record,
		ExpectedValue: expected,
		Difference:    record.ApprovedValue.Sub(expected),
	}

	if opts.RequireExactMatch {
		if result.Difference.IsZero() {
			result.IsValid = true
		} else {
			result.Errors = append(result.Errors, fmt.Sprintf(
				"Value difference exceeds tolerance: exact match required, approved %s differs from expected %s by %s",
				record.ApprovedValue, expected, result.Difference,
			))
		}
		return result
	}

	pct, ok := result.Difference.PercentOf(expected)
	if !ok {
		// No expected value to compare against; only a zero approved
		// value can be considered correct.
		if record.ApprovedValue.IsZero() {
			result.IsValid = true
		} else {
			result.Errors = append(result.Errors, fmt.Sprintf(
				"Zero expected value but approved %s for code %s",
				record.ApprovedValue, record.ProcedureCode,
			))
		}
		return result
	}

	tolerance := decimal.NewFromFloat(opts.TolerancePercentage)
	if pct.LessThanOrEqual(tolerance) {
		result.IsValid = true
		return result
	}

	result.Errors = append(result.Errors, fmt.Sprintf(
		"Value difference exceeds tolerance: %s%% > %s%% (expected %s, approved %s)",
		pct.Round(2), tolerance.Round(2), expected, record.ApprovedValue,
	))
	return result
}
