// Package ingest implements the incremental document sync: it reconciles
// the remote folder against the vector store, re-ingesting what changed
// and removing what disappeared.
package ingest

import (
	"context"
	"encoding/json"
	"log/slog"
	"time"

	"paperbase/internal/extract"
	"paperbase/internal/retry"
	"paperbase/internal/text"
	"paperbase/internal/vector"
)

// SyncCompletedTopic carries the run report after every sync.
const SyncCompletedTopic = "index.sync.completed"

// RemoteFile is one file in the watched folder.
type RemoteFile struct {
	ID           string
	Name         string
	LastModified time.Time
}

type FileSource interface {
	List(ctx context.Context) ([]RemoteFile, error)
	Download(ctx context.Context, id string) ([]byte, error)
}

type VectorStore interface {
	Insert(ctx context.Context, rec vector.Record) error
	DeleteBySource(ctx context.Context, source string) error
	Sources(ctx context.Context) (map[string]time.Time, error)
}

type Embedder interface {
	Embed(ctx context.Context, text string) ([]float32, error)
}

// Publisher matches nsq.Producer.
type Publisher interface {
	Publish(topic string, body []byte) error
}

type RunRecorder interface {
	Record(ctx context.Context, report Report) error
}

// Report is the outcome of one sync run.
type Report struct {
	Full       bool      `json:"full"`
	StartedAt  time.Time `json:"startedAt"`
	FinishedAt time.Time `json:"finishedAt"`
	Processed  int       `json:"processed"`
	Skipped    int       `json:"skipped"`
	Failed     int       `json:"failed"`
	Deleted    int       `json:"deleted"`
}

type Engine struct {
	source    FileSource
	store     VectorStore
	embedder  Embedder
	registry  *extract.Registry
	retry     retry.Policy
	publisher Publisher
	recorder  RunRecorder
}

func NewEngine(source FileSource, store VectorStore, embedder Embedder, registry *extract.Registry, policy retry.Policy, publisher Publisher, recorder RunRecorder) *Engine {
	return &Engine{
		source:    source,
		store:     store,
		embedder:  embedder,
		registry:  registry,
		retry:     policy,
		publisher: publisher,
		recorder:  recorder,
	}
}

// Sync reconciles the folder against the store. With full set, every file
// is re-ingested regardless of modification time. A single file's failure
// never aborts the run; it is counted and the run moves on.
func (e *Engine) Sync(ctx context.Context, full bool) (Report, error) {
	report := Report{Full: full, StartedAt: time.Now()}

	remote, err := e.source.List(ctx)
	if err != nil {
		return report, err
	}

	var stored map[string]time.Time
	err = e.retry.Do(ctx, func() error {
		var srcErr error
		stored, srcErr = e.store.Sources(ctx)
		return srcErr
	})
	if err != nil {
		return report, err
	}

	remoteNames := make(map[string]bool, len(remote))
	for _, f := range remote {
		remoteNames[f.Name] = true
	}

	for _, f := range remote {
		if err := ctx.Err(); err != nil {
			return report, err
		}

		storedAt, known := stored[f.Name]
		if !full && known && !f.LastModified.After(storedAt) {
			report.Skipped++
			continue
		}

		switch e.ingestFile(ctx, f, known || full) {
		case outcomeProcessed:
			report.Processed++
		case outcomeSkipped:
			report.Skipped++
		case outcomeFailed:
			report.Failed++
		}
	}

	// Orphans: stored sources whose file no longer exists remotely.
	for source := range stored {
		if remoteNames[source] {
			continue
		}
		if err := ctx.Err(); err != nil {
			return report, err
		}
		if err := e.deleteSource(ctx, source); err != nil {
			slog.ErrorContext(ctx, "orphan delete failed", "source", source, "error", err)
			report.Failed++
			continue
		}
		slog.InfoContext(ctx, "deleted orphaned source", "source", source)
		report.Deleted++
	}

	report.FinishedAt = time.Now()
	e.finish(ctx, report)
	return report, nil
}

type outcome int

const (
	outcomeProcessed outcome = iota
	outcomeSkipped
	outcomeFailed
)

// ingestFile runs one file through extract, segment, chunk, embed and
// store. Replacement deletes the old chunks first so a file is never
// represented twice.
func (e *Engine) ingestFile(ctx context.Context, f RemoteFile, replace bool) outcome {
	format, ok := e.registry.Lookup(f.Name)
	if !ok {
		slog.InfoContext(ctx, "unsupported file type", "file", f.Name)
		return outcomeSkipped
	}

	var data []byte
	err := e.retry.Do(ctx, func() error {
		var dlErr error
		data, dlErr = e.source.Download(ctx, f.ID)
		return dlErr
	})
	if err != nil {
		slog.ErrorContext(ctx, "download failed", "file", f.Name, "error", err)
		return outcomeFailed
	}

	raw, err := format.SafeExtract(ctx, f.Name, data)
	if err != nil {
		slog.ErrorContext(ctx, "extraction failed", "file", f.Name, "error", err)
		return outcomeFailed
	}

	var records []vector.Record
	now := time.Now()
	for _, group := range text.Segment(raw) {
		for _, chunk := range text.Chunk(group.Content, format.Policy) {
			records = append(records, vector.Record{
				Content: chunk,
				Meta: vector.Metadata{
					Source:       f.Name,
					Section:      group.Section,
					FileType:     format.Type,
					LastModified: f.LastModified,
					CreatedAt:    now,
				},
			})
		}
	}
	if len(records) == 0 {
		slog.InfoContext(ctx, "no text extracted", "file", f.Name)
		return outcomeSkipped
	}

	if replace {
		if err := e.deleteSource(ctx, f.Name); err != nil {
			slog.ErrorContext(ctx, "delete before reinsert failed", "file", f.Name, "error", err)
			return outcomeFailed
		}
	}

	inserted := 0
	for i := range records {
		err := e.retry.Do(ctx, func() error {
			vec, embedErr := e.embedder.Embed(ctx, records[i].Content)
			if embedErr != nil {
				return embedErr
			}
			records[i].Vector = vec
			return nil
		})
		if err != nil {
			slog.WarnContext(ctx, "chunk embed failed", "file", f.Name, "chunk", i, "error", err)
			continue
		}
		err = e.retry.Do(ctx, func() error {
			return e.store.Insert(ctx, records[i])
		})
		if err != nil {
			slog.WarnContext(ctx, "chunk insert failed", "file", f.Name, "chunk", i, "error", err)
			continue
		}
		inserted++
	}
	if inserted == 0 {
		slog.ErrorContext(ctx, "no chunks stored", "file", f.Name, "chunks", len(records))
		return outcomeFailed
	}

	slog.InfoContext(ctx, "file ingested", "file", f.Name, "chunks", inserted)
	return outcomeProcessed
}

func (e *Engine) deleteSource(ctx context.Context, source string) error {
	return e.retry.Do(ctx, func() error {
		return e.store.DeleteBySource(ctx, source)
	})
}

// finish records the run and publishes the completion event. Both are
// best effort; the report is already final.
func (e *Engine) finish(ctx context.Context, report Report) {
	if e.recorder != nil {
		if err := e.recorder.Record(ctx, report); err != nil {
			slog.ErrorContext(ctx, "sync run record failed", "error", err)
		}
	}
	if e.publisher != nil {
		body, err := json.Marshal(report)
		if err == nil {
			err = e.publisher.Publish(SyncCompletedTopic, body)
		}
		if err != nil {
			slog.ErrorContext(ctx, "sync event publish failed", "error", err)
		}
	}
}
