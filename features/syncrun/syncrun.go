// Package syncrun exposes the sync pipeline over HTTP: triggering runs,
// listing run history and listing the indexed documents.
package syncrun

import (
	"context"
	"log/slog"
	"sort"
	"sync/atomic"
	"time"

	"github.com/google/uuid"

	"paperbase/internal/ingest"
	"paperbase/internal/middleware"
)

type SyncRun struct {
	ID         int       `json:"id"`
	Full       bool      `json:"full"`
	StartedAt  time.Time `json:"startedAt"`
	FinishedAt time.Time `json:"finishedAt"`
	Processed  int       `json:"processed"`
	Skipped    int       `json:"skipped"`
	Failed     int       `json:"failed"`
	Deleted    int       `json:"deleted"`
}

type Document struct {
	Source       string    `json:"source"`
	LastModified time.Time `json:"lastModified"`
}

type Repository interface {
	Record(ctx context.Context, report ingest.Report) error
	List(ctx context.Context, limit int) ([]SyncRun, error)
}

type Syncer interface {
	Sync(ctx context.Context, full bool) (ingest.Report, error)
}

type SourceLister interface {
	Sources(ctx context.Context) (map[string]time.Time, error)
}

type Service struct {
	syncer  Syncer
	repo    Repository
	lister  SourceLister
	timeout time.Duration
	running atomic.Bool
}

func NewService(syncer Syncer, repo Repository, lister SourceLister, timeout time.Duration) *Service {
	return &Service{syncer: syncer, repo: repo, lister: lister, timeout: timeout}
}

// Start kicks off a sync in the background. Only one run may be in flight;
// a second trigger is refused until the first finishes.
func (s *Service) Start(full bool) bool {
	if !s.running.CompareAndSwap(false, true) {
		return false
	}

	go func() {
		defer s.running.Store(false)

		ctx := middleware.WithCorrelationID(context.Background(), uuid.New().String())
		if s.timeout > 0 {
			var cancel context.CancelFunc
			ctx, cancel = context.WithTimeout(ctx, s.timeout)
			defer cancel()
		}

		report, err := s.syncer.Sync(ctx, full)
		if err != nil {
			slog.ErrorContext(ctx, "sync run aborted", "error", err, "report", report)
			return
		}
		slog.InfoContext(ctx, "sync run completed",
			"processed", report.Processed,
			"skipped", report.Skipped,
			"failed", report.Failed,
			"deleted", report.Deleted)
	}()
	return true
}

func (s *Service) Running() bool {
	return s.running.Load()
}

func (s *Service) Runs(ctx context.Context, limit int) ([]SyncRun, error) {
	return s.repo.List(ctx, limit)
}

// Documents lists every indexed source with its newest modification time,
// sorted by name.
func (s *Service) Documents(ctx context.Context) ([]Document, error) {
	sources, err := s.lister.Sources(ctx)
	if err != nil {
		return nil, err
	}
	docs := make([]Document, 0, len(sources))
	for source, modified := range sources {
		docs = append(docs, Document{Source: source, LastModified: modified})
	}
	sort.Slice(docs, func(i, j int) bool { return docs[i].Source < docs[j].Source })
	return docs, nil
}
