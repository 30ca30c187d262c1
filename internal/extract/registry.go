// Package extract turns downloaded office documents into raw text, one
// extractor per format. Adding a format means registering it here, not
// editing a branching chain.
package extract

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"

	"paperbase/internal/text"
)

// OCR reads text out of a raster image. Implemented by the gosseract
// adapter; nil disables image formats and the scanned-PDF fallback.
type OCR interface {
	Text(ctx context.Context, image []byte) (string, error)
}

type Extractor func(ctx context.Context, name string, data []byte) (string, error)

// Format couples an extractor with the chunk policy for its file type.
type Format struct {
	Type    string
	Extract Extractor
	Policy  text.ChunkPolicy
}

type Registry struct {
	byExt map[string]Format
}

func NewRegistry(ocr OCR) *Registry {
	r := &Registry{byExt: map[string]Format{}}

	pdf := &pdfExtractor{ocr: ocr}
	r.register(Format{Type: "pdf", Extract: pdf.Extract, Policy: text.PolicyProse}, ".pdf")
	r.register(Format{Type: "docx", Extract: extractDOCX, Policy: text.PolicyProse}, ".docx")
	r.register(Format{Type: "xlsx", Extract: extractXLSX, Policy: text.PolicyTabular}, ".xlsx")
	r.register(Format{Type: "pptx", Extract: extractPPTX, Policy: text.PolicyProse}, ".pptx")
	r.register(Format{Type: "txt", Extract: extractPlain, Policy: text.PolicyProse}, ".txt")
	r.register(Format{Type: "md", Extract: extractPlain, Policy: text.PolicyProse}, ".md", ".markdown")
	r.register(Format{Type: "csv", Extract: extractCSV, Policy: text.PolicyTabular}, ".csv", ".tsv")

	if ocr != nil {
		img := &imageExtractor{ocr: ocr}
		r.register(Format{Type: "image", Extract: img.Extract, Policy: text.PolicyProse},
			".png", ".jpg", ".jpeg", ".tif", ".tiff")
	}

	return r
}

func (r *Registry) register(f Format, exts ...string) {
	for _, ext := range exts {
		r.byExt[ext] = f
	}
}

// Lookup resolves a format by file extension. Unsupported extensions are
// not an error; the sync engine skips them.
func (r *Registry) Lookup(filename string) (Format, bool) {
	f, ok := r.byExt[strings.ToLower(filepath.Ext(filename))]
	return f, ok
}

// SafeExtract runs the extractor with a panic guard: a misbehaving parser
// yields empty text and an error, never an abort of the sync run.
func (f Format) SafeExtract(ctx context.Context, name string, data []byte) (out string, err error) {
	defer func() {
		if r := recover(); r != nil {
			out = ""
			err = fmt.Errorf("extract %s: parser panic: %v", name, r)
		}
	}()
	return f.Extract(ctx, name, data)
}

func baseName(name string) string {
	base := filepath.Base(name)
	return strings.TrimSuffix(base, filepath.Ext(base))
}
