// Package vector holds the chunk record model shared by the sync engine
// and the search service, plus the Weaviate schema bootstrap.
package vector

import "time"

// Metadata carries everything stored alongside a chunk's content. Extra
// holds optional string properties beyond the fixed schema.
type Metadata struct {
	Source       string
	Section      string
	FileType     string
	LastModified time.Time
	CreatedAt    time.Time
	Extra        map[string]string
}

// Record is one embedded chunk ready for storage.
type Record struct {
	Content string
	Meta    Metadata
	Vector  []float32
}
