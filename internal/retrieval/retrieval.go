// Package retrieval runs the hybrid search pipeline: vector search with
// threshold escalation per query variant, a keyword pass over low-scoring
// candidates, then merge, dedup and capping across variants.
package retrieval

import "context"

type Hit struct {
	Content    string  `json:"content"`
	Source     string  `json:"source"`
	Section    string  `json:"section,omitempty"`
	FileType   string  `json:"fileType,omitempty"`
	Similarity float64 `json:"similarity"`
	Keyword    bool    `json:"keywordMatch,omitempty"`
}

type Embedder interface {
	Embed(ctx context.Context, text string) ([]float32, error)
}

type VectorStore interface {
	SearchByVector(ctx context.Context, vector []float32, threshold float64, limit int) ([]Hit, error)
}

// Options are the search tunables, resolved from config at startup.
type Options struct {
	HighThreshold  float64
	LowThreshold   float64
	TopK           int
	MinVectorHits  int
	MinKeywordHits int
	ScanLimit      int
	PerSourceCap   int
	MaxResults     int
}
