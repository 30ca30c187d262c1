package extract

import (
	"context"
	"encoding/csv"
	"fmt"
	"path/filepath"
	"strings"
)

// extractCSV mirrors the spreadsheet serialization: first row is headers,
// each following row becomes "header: value" pairs under a single
// [name-name] group tag.
func extractCSV(_ context.Context, name string, data []byte) (string, error) {
	decoded, err := decodeText(data)
	if err != nil {
		return "", fmt.Errorf("extract %s: %w", name, err)
	}

	r := csv.NewReader(strings.NewReader(decoded))
	r.FieldsPerRecord = -1
	if strings.EqualFold(filepath.Ext(name), ".tsv") {
		r.Comma = '\t'
	}

	records, err := r.ReadAll()
	if err != nil {
		return "", fmt.Errorf("extract %s: %w", name, err)
	}
	if len(records) < 2 {
		return "", nil
	}

	var b strings.Builder
	base := baseName(name)
	b.WriteString(fmt.Sprintf("[%s-%s]\n", base, base))

	headers := records[0]
	for _, row := range records[1:] {
		line := serializeRow(headers, row)
		if line != "" {
			b.WriteString(line)
			b.WriteString("\n")
		}
	}
	return b.String(), nil
}
