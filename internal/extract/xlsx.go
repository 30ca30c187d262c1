package extract

import (
	"bytes"
	"context"
	"fmt"
	"strings"

	"github.com/xuri/excelize/v2"
)

// extractXLSX serializes each data row as "header: value" pairs, one line
// per row, with a [filename-sheetname] tag opening each sheet so the
// segmenter can label the rows. Empty cells are omitted.
func extractXLSX(_ context.Context, name string, data []byte) (string, error) {
	f, err := excelize.OpenReader(bytes.NewReader(data))
	if err != nil {
		return "", fmt.Errorf("extract %s: %w", name, err)
	}
	defer f.Close()

	var b strings.Builder
	base := baseName(name)

	for _, sheet := range f.GetSheetList() {
		rows, err := f.GetRows(sheet)
		if err != nil {
			return "", fmt.Errorf("extract %s sheet %s: %w", name, sheet, err)
		}
		if len(rows) < 2 {
			continue
		}

		b.WriteString(fmt.Sprintf("[%s-%s]\n", base, sheet))
		headers := rows[0]
		for _, row := range rows[1:] {
			line := serializeRow(headers, row)
			if line != "" {
				b.WriteString(line)
				b.WriteString("\n")
			}
		}
	}
	return b.String(), nil
}

func serializeRow(headers, row []string) string {
	var pairs []string
	for i, cell := range row {
		cell = strings.TrimSpace(cell)
		if cell == "" || i >= len(headers) {
			continue
		}
		header := strings.TrimSpace(headers[i])
		if header == "" {
			continue
		}
		pairs = append(pairs, header+": "+cell)
	}
	return strings.Join(pairs, ", ")
}
