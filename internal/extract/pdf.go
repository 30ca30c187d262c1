package extract

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log/slog"
	"strconv"
	"strings"

	"github.com/ledongthuc/pdf"
	"github.com/pdfcpu/pdfcpu/pkg/api"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/model"
)

type pdfExtractor struct {
	ocr OCR
}

// Extract pulls native text per page. A page with no text layer (scanned)
// falls back to OCR over that page's embedded images, so partially scanned
// documents recover both kinds of pages.
func (e *pdfExtractor) Extract(ctx context.Context, name string, data []byte) (string, error) {
	reader, err := pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return "", fmt.Errorf("extract %s: %w", name, err)
	}

	var b strings.Builder
	for pageNum := 1; pageNum <= reader.NumPage(); pageNum++ {
		page := reader.Page(pageNum)
		if page.V.IsNull() {
			continue
		}

		pageText := ""
		if t, err := page.GetPlainText(nil); err == nil {
			pageText = strings.TrimSpace(t)
		}

		if pageText == "" && e.ocr != nil {
			pageText = e.ocrPage(ctx, name, data, pageNum)
		}

		if pageText != "" {
			b.WriteString(pageText)
			b.WriteString("\n")
		}
	}

	return b.String(), nil
}

func (e *pdfExtractor) ocrPage(ctx context.Context, name string, data []byte, pageNum int) string {
	pages := []string{strconv.Itoa(pageNum)}
	images, err := api.ExtractImagesRaw(bytes.NewReader(data), pages, model.NewDefaultConfiguration())
	if err != nil {
		slog.WarnContext(ctx, "pdf page image extraction failed", "file", name, "page", pageNum, "error", err)
		return ""
	}

	var b strings.Builder
	for _, pageImages := range images {
		for _, img := range pageImages {
			raw, err := io.ReadAll(img)
			if err != nil {
				continue
			}
			t, err := e.ocr.Text(ctx, raw)
			if err != nil {
				slog.WarnContext(ctx, "ocr failed", "file", name, "page", pageNum, "error", err)
				continue
			}
			if t = strings.TrimSpace(t); t != "" {
				b.WriteString(t)
				b.WriteString("\n")
			}
		}
	}
	return strings.TrimSpace(b.String())
}
