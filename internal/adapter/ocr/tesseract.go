// Package ocr wraps tesseract for image-to-text extraction.
package ocr

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/otiai10/gosseract/v2"
)

// Engine runs tesseract over raster images. The underlying client is not
// safe for concurrent use, so calls are serialized.
type Engine struct {
	mu        sync.Mutex
	languages []string
}

func NewEngine(languages string) *Engine {
	return &Engine{languages: strings.Split(languages, "+")}
}

func (e *Engine) Text(ctx context.Context, image []byte) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	client := gosseract.NewClient()
	defer client.Close()

	if err := client.SetLanguage(e.languages...); err != nil {
		return "", fmt.Errorf("ocr language: %w", err)
	}
	if err := client.SetImageFromBytes(image); err != nil {
		return "", fmt.Errorf("ocr image: %w", err)
	}

	text, err := client.Text()
	if err != nil {
		return "", fmt.Errorf("ocr: %w", err)
	}
	return text, nil
}
