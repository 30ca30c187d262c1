package synonym

import (
	"context"
	"database/sql"

	"github.com/lib/pq"
)

type PostgresRepo struct {
	db *sql.DB
}

func NewPostgresRepo(db *sql.DB) *PostgresRepo {
	return &PostgresRepo{db: db}
}

func (r *PostgresRepo) GetAll(ctx context.Context) (map[string][]string, error) {
	query := `SELECT term, synonyms FROM synonyms ORDER BY term`
	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	dict := map[string][]string{}
	for rows.Next() {
		var term string
		var synonyms pq.StringArray
		if err := rows.Scan(&term, &synonyms); err != nil {
			return nil, err
		}
		dict[term] = synonyms
	}
	return dict, rows.Err()
}

func (r *PostgresRepo) ReplaceAll(ctx context.Context, dict map[string][]string) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `DELETE FROM synonyms`); err != nil {
		return err
	}
	for term, synonyms := range dict {
		_, err := tx.ExecContext(ctx,
			`INSERT INTO synonyms (term, synonyms) VALUES ($1, $2)`,
			term, pq.Array(synonyms))
		if err != nil {
			return err
		}
	}
	return tx.Commit()
}
