package cbhpm

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/assislucian/glosa-audit/pkg/money"
)

func TestTableLookup(t *testing.T) {
	table := NewTable([]Entry{
		{Code: "31309054", Description: "Colecistectomia", Value: amount(t, "1000,00")},
		{Code: " 0010101 ", Description: "Consulta", Value: amount(t, "150,00")},
	})

	t.Run("finds entries by code", func(t *testing.T) {
		e, ok := table.Lookup("31309054")
		require.True(t, ok)
		assert.Equal(t, int64(100000), e.Value.Cents())
	})

	t.Run("codes are trimmed, leading zeros preserved", func(t *testing.T) {
		e, ok := table.Lookup("0010101")
		require.True(t, ok)
		assert.Equal(t, "0010101", e.Code)

		_, ok = table.Lookup("10101")
		assert.False(t, ok)
	})

	t.Run("unknown code", func(t *testing.T) {
		_, ok := table.Lookup("99999999")
		assert.False(t, ok)
	})

	t.Run("later duplicates win", func(t *testing.T) {
		revised := NewTable([]Entry{
			{Code: "31309054", Value: amount(t, "1000,00")},
			{Code: "31309054", Value: amount(t, "1100,00")},
		})
		e, ok := revised.Lookup("31309054")
		require.True(t, ok)
		assert.Equal(t, int64(110000), e.Value.Cents())
		assert.Equal(t, 1, revised.Len())
	})
}

func TestLoadCSV(t *testing.T) {
	t.Run("loads the distributed layout", func(t *testing.T) {
		csv := `codigo;descricao;valor;porte_anestesico
31309054;Colecistectomia;1.000,00;230,00
31602096;Consulta em consultório;150,00;
`
		table, err := LoadCSV(strings.NewReader(csv))
		require.NoError(t, err)
		assert.Equal(t, 2, table.Len())

		e, ok := table.Lookup("31309054")
		require.True(t, ok)
		assert.Equal(t, "Colecistectomia", e.Description)
		assert.Equal(t, int64(100000), e.Value.Cents())
		assert.Equal(t, int64(23000), e.AnesthesiaPort.Cents())

		consulta, ok := table.Lookup("31602096")
		require.True(t, ok)
		assert.True(t, consulta.AnesthesiaPort.IsZero())
	})

	t.Run("rejects unreadable values instead of dropping rows", func(t *testing.T) {
		csv := `codigo;descricao;valor;porte_anestesico
31309054;Colecistectomia;n/a;
`
		_, err := LoadCSV(strings.NewReader(csv))
		require.Error(t, err)
		assert.Contains(t, err.Error(), "31309054")
	})
}

func TestLoadXLSX(t *testing.T) {
	buildSheet := func(t *testing.T, rows [][]interface{}) *bytes.Reader {
		t.Helper()
		f := excelize.NewFile()
		for i, row := range rows {
			cell, err := excelize.CoordinatesToCellName(1, i+1)
			require.NoError(t, err)
			require.NoError(t, f.SetSheetRow("Sheet1", cell, &row))
		}
		buf, err := f.WriteToBuffer()
		require.NoError(t, err)
		return bytes.NewReader(buf.Bytes())
	}

	t.Run("loads a spreadsheet with a preamble", func(t *testing.T) {
		r := buildSheet(t, [][]interface{}{
			{"CBHPM 2024 - Edição Revisada"},
			{},
			{"Código", "Descrição", "Valor", "Porte Anestésico"},
			{"31309054", "Colecistectomia", "1.000,00", "230,00"},
			{"31602096", "Consulta em consultório", "150,00", ""},
			{"", "", "", ""},
		})

		table, err := LoadXLSX(r)
		require.NoError(t, err)
		assert.Equal(t, 2, table.Len())

		e, ok := table.Lookup("31309054")
		require.True(t, ok)
		assert.Equal(t, int64(100000), e.Value.Cents())
		assert.Equal(t, int64(23000), e.AnesthesiaPort.Cents())
	})

	t.Run("fails without a recognizable header", func(t *testing.T) {
		r := buildSheet(t, [][]interface{}{
			{"col1", "col2"},
			{"a", "b"},
		})
		_, err := LoadXLSX(r)
		require.Error(t, err)
	})
}

func amount(t *testing.T, s string) money.Amount {
	t.Helper()
	parsed, err := money.Parse(s)
	require.NoError(t, err)
	return parsed
}
