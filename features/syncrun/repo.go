package syncrun

import (
	"context"
	"database/sql"

	"paperbase/internal/ingest"
)

type PostgresRepo struct {
	db *sql.DB
}

func NewPostgresRepo(db *sql.DB) *PostgresRepo {
	return &PostgresRepo{db: db}
}

func (r *PostgresRepo) Record(ctx context.Context, report ingest.Report) error {
	query := `
		INSERT INTO sync_runs (full_reindex, started_at, finished_at, processed, skipped, failed, deleted)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`
	_, err := r.db.ExecContext(ctx, query,
		report.Full, report.StartedAt, report.FinishedAt,
		report.Processed, report.Skipped, report.Failed, report.Deleted)
	return err
}

func (r *PostgresRepo) List(ctx context.Context, limit int) ([]SyncRun, error) {
	query := `
		SELECT id, full_reindex, started_at, finished_at, processed, skipped, failed, deleted
		FROM sync_runs ORDER BY started_at DESC LIMIT $1
	`
	rows, err := r.db.QueryContext(ctx, query, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var runs []SyncRun
	for rows.Next() {
		var run SyncRun
		err := rows.Scan(&run.ID, &run.Full, &run.StartedAt, &run.FinishedAt,
			&run.Processed, &run.Skipped, &run.Failed, &run.Deleted)
		if err != nil {
			return nil, err
		}
		runs = append(runs, run)
	}
	return runs, rows.Err()
}
