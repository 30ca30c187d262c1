package gemini

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/generative-ai-go/genai"
)

// netContext bounds one Gemini API round trip. A zero timeout leaves the
// caller's context as is.
func netContext(ctx context.Context, timeout time.Duration) (context.Context, context.CancelFunc) {
	if timeout <= 0 {
		return ctx, func() {}
	}
	return context.WithTimeout(ctx, timeout)
}

type Embedder struct {
	client    *genai.Client
	model     string
	dimension int
	timeout   time.Duration
}

func NewEmbedder(client *genai.Client, model string, dimension int, timeout time.Duration) *Embedder {
	return &Embedder{client: client, model: model, dimension: dimension, timeout: timeout}
}

func (e *Embedder) Embed(ctx context.Context, text string) ([]float32, error) {
	ctx, cancel := netContext(ctx, e.timeout)
	defer cancel()

	slog.DebugContext(ctx, "embedding content", "model", e.model, "length", len(text))
	em := e.client.EmbeddingModel(e.model)
	res, err := em.EmbedContent(ctx, genai.Text(text))
	if err != nil {
		slog.ErrorContext(ctx, "embedding failed", "error", err)
		return nil, err
	}
	if res.Embedding == nil {
		return nil, fmt.Errorf("embedding response empty")
	}
	if e.dimension > 0 && len(res.Embedding.Values) != e.dimension {
		return nil, fmt.Errorf("embedding dimension %d, expected %d", len(res.Embedding.Values), e.dimension)
	}
	return res.Embedding.Values, nil
}
