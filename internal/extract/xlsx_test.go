package extract

import (
	"bytes"
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

func buildXLSX(t *testing.T, sheets map[string][][]string) []byte {
	t.Helper()
	f := excelize.NewFile()
	for sheet, rows := range sheets {
		if sheet != "Sheet1" {
			_, err := f.NewSheet(sheet)
			require.NoError(t, err)
		}
		for i, row := range rows {
			cell, err := excelize.CoordinatesToCellName(1, i+1)
			require.NoError(t, err)
			require.NoError(t, f.SetSheetRow(sheet, cell, &row))
		}
	}
	var buf bytes.Buffer
	require.NoError(t, f.Write(&buf))
	return buf.Bytes()
}

func TestExtractXLSX(t *testing.T) {
	t.Run("rows serialized under sheet tag", func(t *testing.T) {
		data := buildXLSX(t, map[string][][]string{
			"Sheet1": {
				{"item", "amount"},
				{"server", "1200"},
				{"license", "300"},
			},
		})

		out, err := extractXLSX(context.Background(), "budget.xlsx", data)
		require.NoError(t, err)
		assert.Equal(t,
			"[budget-Sheet1]\nitem: server, amount: 1200\nitem: license, amount: 300\n",
			out)
	})

	t.Run("sheet with only headers skipped", func(t *testing.T) {
		data := buildXLSX(t, map[string][][]string{
			"Sheet1": {{"item", "amount"}},
		})

		out, err := extractXLSX(context.Background(), "budget.xlsx", data)
		require.NoError(t, err)
		assert.Empty(t, out)
	})

	t.Run("empty cells omitted", func(t *testing.T) {
		data := buildXLSX(t, map[string][][]string{
			"Sheet1": {
				{"item", "amount"},
				{"server", ""},
			},
		})

		out, err := extractXLSX(context.Background(), "budget.xlsx", data)
		require.NoError(t, err)
		assert.Equal(t, "[budget-Sheet1]\nitem: server\n", out)
	})

	t.Run("not a workbook", func(t *testing.T) {
		_, err := extractXLSX(context.Background(), "budget.xlsx", []byte("nope"))
		assert.Error(t, err)
	})
}
