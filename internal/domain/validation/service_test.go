package validation

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/assislucian/glosa-audit/internal/domain/cbhpm"
	"github.com/assislucian/glosa-audit/internal/domain/statement"
	"github.com/assislucian/glosa-audit/pkg/money"
)

func referenceTable(t *testing.T) *cbhpm.Table {
	t.Helper()
	return cbhpm.NewTable([]cbhpm.Entry{
		{Code: "31309054", Description: "Colecistectomia", Value: money.FromCents(100000), AnesthesiaPort: money.FromCents(23000)},
		{Code: "31602096", Description: "Consulta", Value: money.FromCents(15000)},
	})
}

func surgeonRecord(code string, approvedCents int64) statement.Record {
	return statement.Record{
		ProcedureCode:   code,
		Role:            statement.RoleSurgeon,
		PractitionerCRM: "123456",
		Quantity:        1,
		PresentedValue:  money.FromCents(100000),
		ApprovedValue:   money.FromCents(approvedCents),
	}
}

func TestValidateRecords(t *testing.T) {
	table := referenceTable(t)

	t.Run("within tolerance at the boundary is valid", func(t *testing.T) {
		records := []statement.Record{surgeonRecord("31309054", 95000)}

		results, err := ValidateRecords(records, table, DefaultOptions())
		require.NoError(t, err)
		require.Len(t, results, 1)

		r := results[0]
		assert.Equal(t, int64(100000), r.ExpectedValue.Cents())
		assert.Equal(t, int64(-5000), r.Difference.Cents())
		assert.True(t, r.IsValid)
		assert.Empty(t, r.Errors)
	})

	t.Run("beyond tolerance is invalid with a reason", func(t *testing.T) {
		records := []statement.Record{surgeonRecord("31309054", 50000)}

		results, err := ValidateRecords(records, table, DefaultOptions())
		require.NoError(t, err)

		r := results[0]
		assert.Equal(t, int64(-50000), r.Difference.Cents())
		assert.False(t, r.IsValid)
		require.Len(t, r.Errors, 1)
		assert.Contains(t, r.Errors[0], "exceeds tolerance")
		assert.Contains(t, r.Errors[0], "50%")
	})

	t.Run("results share the input records", func(t *testing.T) {
		records := []statement.Record{surgeonRecord("31309054", 95000)}

		results, err := ValidateRecords(records, table, DefaultOptions())
		require.NoError(t, err)
		assert.Same(t, &records[0], results[0].Record)
	})

	t.Run("role ratio scales the expected value", func(t *testing.T) {
		rec := surgeonRecord("31309054", 30000)
		rec.Role = statement.RoleFirstAssistant

		results, err := ValidateRecords([]statement.Record{rec}, table, DefaultOptions())
		require.NoError(t, err)

		r := results[0]
		assert.Equal(t, int64(30000), r.ExpectedValue.Cents())
		assert.True(t, r.IsValid)
	})

	t.Run("anesthetist uses the anesthesia port when listed", func(t *testing.T) {
		rec := surgeonRecord("31309054", 23000)
		rec.Role = statement.RoleAnesthetist

		results, err := ValidateRecords([]statement.Record{rec}, table, DefaultOptions())
		require.NoError(t, err)
		assert.Equal(t, int64(23000), results[0].ExpectedValue.Cents())
		assert.True(t, results[0].IsValid)
	})

	t.Run("quantity multiplies the expected value", func(t *testing.T) {
		rec := surgeonRecord("31602096", 30000)
		rec.Quantity = 2

		results, err := ValidateRecords([]statement.Record{rec}, table, DefaultOptions())
		require.NoError(t, err)
		assert.Equal(t, int64(30000), results[0].ExpectedValue.Cents())
		assert.True(t, results[0].IsValid)
	})

	t.Run("missing code allowed produces an invalid result", func(t *testing.T) {
		records := []statement.Record{surgeonRecord("99999999", 10000)}

		results, err := ValidateRecords(records, table, DefaultOptions())
		require.NoError(t, err)

		r := results[0]
		assert.False(t, r.IsValid)
		assert.True(t, r.ExpectedValue.IsZero())
		assert.Equal(t, []string{"No CBHPM entry found for code 99999999"}, r.Errors)
	})

	t.Run("missing code disallowed fails the whole batch", func(t *testing.T) {
		records := []statement.Record{
			surgeonRecord("31309054", 95000),
			surgeonRecord("99999999", 10000),
		}

		opts := DefaultOptions()
		opts.AllowMissingCodes = false

		results, err := ValidateRecords(records, table, opts)
		assert.Nil(t, results)

		var cbhpmErr *CBHPMError
		require.ErrorAs(t, err, &cbhpmErr)
		assert.Equal(t, "99999999", cbhpmErr.Code)
		assert.Contains(t, err.Error(), "no CBHPM entry found for code 99999999")
	})

	t.Run("exact match mode", func(t *testing.T) {
		opts := DefaultOptions()
		opts.RequireExactMatch = true

		exact, err := ValidateRecords([]statement.Record{surgeonRecord("31309054", 100000)}, table, opts)
		require.NoError(t, err)
		assert.True(t, exact[0].IsValid)

		offByOne, err := ValidateRecords([]statement.Record{surgeonRecord("31309054", 99999)}, table, opts)
		require.NoError(t, err)
		assert.False(t, offByOne[0].IsValid)
		assert.Contains(t, offByOne[0].Errors[0], "exact match required")
	})

	t.Run("zero expected value", func(t *testing.T) {
		zeroTable := cbhpm.NewTable([]cbhpm.Entry{{Code: "00000000", Value: money.FromCents(0)}})

		paidNothing, err := ValidateRecords([]statement.Record{surgeonRecord("00000000", 0)}, zeroTable, DefaultOptions())
		require.NoError(t, err)
		assert.True(t, paidNothing[0].IsValid)

		paidSomething, err := ValidateRecords([]statement.Record{surgeonRecord("00000000", 5000)}, zeroTable, DefaultOptions())
		require.NoError(t, err)
		assert.False(t, paidSomething[0].IsValid)
		assert.Contains(t, paidSomething[0].Errors[0], "Zero expected value")
	})

	t.Run("custom role ratios", func(t *testing.T) {
		rec := surgeonRecord("31309054", 50000)
		rec.Role = statement.RoleFirstAssistant

		opts := DefaultOptions()
		opts.RoleRatios = map[statement.Role]decimal.Decimal{
			statement.RoleFirstAssistant: decimal.NewFromFloat(0.5),
		}

		results, err := ValidateRecords([]statement.Record{rec}, table, opts)
		require.NoError(t, err)
		assert.Equal(t, int64(50000), results[0].ExpectedValue.Cents())
		assert.True(t, results[0].IsValid)
	})

	t.Run("empty batch", func(t *testing.T) {
		results, err := ValidateRecords(nil, table, DefaultOptions())
		require.NoError(t, err)
		assert.Empty(t, results)
	})
}
