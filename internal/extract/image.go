package extract

import (
	"context"
	"fmt"
	"strings"
)

type imageExtractor struct {
	ocr OCR
}

func (e *imageExtractor) Extract(ctx context.Context, name string, data []byte) (string, error) {
	t, err := e.ocr.Text(ctx, data)
	if err != nil {
		return "", fmt.Errorf("extract %s: %w", name, err)
	}
	return strings.TrimSpace(t), nil
}
