package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/custodia-labs/samarth/internal/core/domain"
	"github.com/custodia-labs/samarth/internal/core/ports/driven"
)

// runStore implements driven.IndexRunStore.
type runStore struct {
	store *Store
}

var _ driven.IndexRunStore = (*runStore)(nil)

// Save inserts or updates a run.
func (s *runStore) Save(ctx context.Context, run domain.IndexRun) error {
	if run.ID == "" {
		return domain.ErrInvalidInput
	}

	documents, err := json.Marshal(run.Documents)
	if err != nil {
		return fmt.Errorf("marshalling documents: %w", err)
	}
	skipped, err := json.Marshal(run.Skipped)
	if err != nil {
		return fmt.Errorf("marshalling skipped: %w", err)
	}

	var finishedAt sql.NullInt64
	if run.FinishedAt != nil {
		finishedAt = sql.NullInt64{Int64: run.FinishedAt.UnixNano(), Valid: true}
	}

	_, err = s.store.db.ExecContext(ctx, `
		INSERT INTO index_runs (id, started_at, finished_at, state, reason, documents, skipped)
		VALUES (?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			started_at = excluded.started_at,
			finished_at = excluded.finished_at,
			state = excluded.state,
			reason = excluded.reason,
			documents = excluded.documents,
			skipped = excluded.skipped
	`, run.ID, run.StartedAt.UnixNano(), finishedAt, string(run.State), run.Reason, string(documents), string(skipped))
	if err != nil {
		return fmt.Errorf("saving index run: %w", err)
	}
	return nil
}

// Get retrieves a run by ID.
func (s *runStore) Get(ctx context.Context, id string) (*domain.IndexRun, error) {
	row := s.store.db.QueryRowContext(ctx, `
		SELECT id, started_at, finished_at, state, reason, documents, skipped
		FROM index_runs WHERE id = ?
	`, id)
	return scanRun(row)
}

// List returns up to limit runs, newest first. A non-positive limit returns all.
func (s *runStore) List(ctx context.Context, limit int) ([]domain.IndexRun, error) {
	if limit <= 0 {
		limit = -1
	}
	rows, err := s.store.db.QueryContext(ctx, `
		SELECT id, started_at, finished_at, state, reason, documents, skipped
		FROM index_runs ORDER BY started_at DESC LIMIT ?
	`, limit)
	if err != nil {
		return nil, fmt.Errorf("querying index runs: %w", err)
	}
	defer rows.Close()

	runs := make([]domain.IndexRun, 0)
	for rows.Next() {
		run, err := scanRun(rows)
		if err != nil {
			return nil, err
		}
		runs = append(runs, *run)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating index runs: %w", err)
	}
	return runs, nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanRun(row scanner) (*domain.IndexRun, error) {
	var (
		run        domain.IndexRun
		startedAt  int64
		finishedAt sql.NullInt64
		state      string
		documents  string
		skipped    string
	)
	err := row.Scan(&run.ID, &startedAt, &finishedAt, &state, &run.Reason, &documents, &skipped)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("scanning index run: %w", err)
	}

	run.StartedAt = time.Unix(0, startedAt)
	run.State = domain.IndexState(state)
	if finishedAt.Valid {
		t := time.Unix(0, finishedAt.Int64)
		run.FinishedAt = &t
	}
	if err := json.Unmarshal([]byte(documents), &run.Documents); err != nil {
		return nil, fmt.Errorf("unmarshalling documents: %w", err)
	}
	if err := json.Unmarshal([]byte(skipped), &run.Skipped); err != nil {
		return nil, fmt.Errorf("unmarshalling skipped: %w", err)
	}
	return &run, nil
}
