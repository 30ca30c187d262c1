package syncrun_test

import (
	"context"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"

	"paperbase/features/syncrun"
	"paperbase/internal/ingest"
)

func TestPostgresRepo_Record(t *testing.T) {
	db, mock, err := sqlmock.New()
	assert.NoError(t, err)
	defer db.Close()

	repo := syncrun.NewPostgresRepo(db)

	started := time.Date(2025, 6, 1, 3, 0, 0, 0, time.UTC)
	finished := started.Add(5 * time.Minute)
	report := ingest.Report{
		Full:       true,
		StartedAt:  started,
		FinishedAt: finished,
		Processed:  12,
		Skipped:    3,
		Failed:     1,
		Deleted:    2,
	}

	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO sync_runs (full_reindex, started_at, finished_at, processed, skipped, failed, deleted)")).
		WithArgs(true, started, finished, 12, 3, 1, 2).
		WillReturnResult(sqlmock.NewResult(1, 1))

	assert.NoError(t, repo.Record(context.Background(), report))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresRepo_List(t *testing.T) {
	db, mock, err := sqlmock.New()
	assert.NoError(t, err)
	defer db.Close()

	repo := syncrun.NewPostgresRepo(db)

	t.Run("Success", func(t *testing.T) {
		started := time.Date(2025, 6, 1, 3, 0, 0, 0, time.UTC)
		rows := sqlmock.NewRows([]string{"id", "full_reindex", "started_at", "finished_at", "processed", "skipped", "failed", "deleted"}).
			AddRow(2, false, started.Add(time.Hour), started.Add(time.Hour+time.Minute), 1, 40, 0, 0).
			AddRow(1, true, started, started.Add(5*time.Minute), 41, 0, 1, 0)

		mock.ExpectQuery(regexp.QuoteMeta("FROM sync_runs ORDER BY started_at DESC LIMIT $1")).
			WithArgs(20).
			WillReturnRows(rows)

		runs, err := repo.List(context.Background(), 20)
		assert.NoError(t, err)
		assert.Len(t, runs, 2)
		assert.Equal(t, 2, runs[0].ID)
		assert.Equal(t, 41, runs[1].Processed)
	})

	t.Run("Error", func(t *testing.T) {
		mock.ExpectQuery(regexp.QuoteMeta("FROM sync_runs")).
			WillReturnError(sqlmock.ErrCancelled)

		runs, err := repo.List(context.Background(), 20)
		assert.Error(t, err)
		assert.Nil(t, runs)
	})
}
