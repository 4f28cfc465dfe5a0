package bulkops

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"

	"github.com/qed-utility/portal-backend/model"
)

// WriteError reports a transactional failure. The whole batch was rolled
// back; Rows names the size of the rejected batch.
type WriteError struct {
	Rows int
	Err  error
}

func (e *WriteError) Error() string {
	return fmt.Sprintf("batch of %d rows rejected: %v", e.Rows, e.Err)
}

func (e *WriteError) Unwrap() error { return e.Err }

// Tx is the slice of pgx.Tx the writer needs; pgx transactions satisfy it.
type Tx interface {
	Exec(ctx context.Context, sql string, arguments ...any) (pgconn.CommandTag, error)
	Commit(ctx context.Context) error
	Rollback(ctx context.Context) error
}

// Beginner starts transactions against the records table.
type Beginner interface {
	Begin(ctx context.Context) (Tx, error)
}

// PoolBeginner adapts a pgx pool to the Beginner interface.
type PoolBeginner struct {
	Pool *pgxpool.Pool
}

// Begin starts a pgx transaction.
func (p PoolBeginner) Begin(ctx context.Context) (Tx, error) {
	return p.Pool.Begin(ctx)
}

// Writer applies validated batches to the primary datastore. Each batch is
// one transaction; a mutex serializes concurrent batches against the
// records table on top of the datastore's isolation.
type Writer struct {
	db  Beginner
	mu  sync.Mutex
	log *zap.Logger
}

// NewWriter constructs a Writer.
func NewWriter(db Beginner, log *zap.Logger) *Writer {
	return &Writer{db: db, log: log}
}

// InsertBatch inserts every accepted record in one transaction. All rows
// succeed together or the batch is rolled back and a WriteError returned.
func (w *Writer) InsertBatch(ctx context.Context, records []model.Record) error {
	if len(records) == 0 {
		return nil
	}

	w.mu.Lock()
	defer w.mu.Unlock()

	tx, err := w.db.Begin(ctx)
	if err != nil {
		return &WriteError{Rows: len(records), Err: err}
	}
	defer tx.Rollback(ctx)

	now := time.Now().UTC()
	for _, r := range records {
		if r.ID == "" {
			r.ID = uuid.NewString()
		}
		_, err := tx.Exec(ctx,
			`INSERT INTO records (id, qacajobid, siteid, sitename, circle, client,
			                      activitytype, status, startdate, finalduedate,
			                      created_by, created_at, updated_at)
			 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)`,
			r.ID, r.JobID, r.SiteID, r.SiteName, r.Circle, r.Client,
			r.Activity, r.Status, r.StartDate, r.DueDate, r.CreatedBy, now, now)
		if err != nil {
			w.log.Warn("bulk insert rolled back",
				zap.Int("rows", len(records)), zap.String("qacajobid", r.JobID), zap.Error(err))
			return &WriteError{Rows: len(records), Err: err}
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return &WriteError{Rows: len(records), Err: err}
	}

	w.log.Info("bulk insert committed", zap.Int("rows", len(records)))
	return nil
}

// DeleteBatch deletes records by job id in one transaction, returning a
// per-row result. Missing rows are reported as NOT_FOUND, not errors; any
// datastore failure rolls back the entire batch.
func (w *Writer) DeleteBatch(ctx context.Context, jobIDs []string) ([]model.DeleteResult, error) {
	if len(jobIDs) == 0 {
		return []model.DeleteResult{}, nil
	}

	w.mu.Lock()
	defer w.mu.Unlock()

	tx, err := w.db.Begin(ctx)
	if err != nil {
		return nil, &WriteError{Rows: len(jobIDs), Err: err}
	}
	defer tx.Rollback(ctx)

	results := make([]model.DeleteResult, 0, len(jobIDs))
	for _, id := range jobIDs {
		tag, err := tx.Exec(ctx, `DELETE FROM records WHERE qacajobid = $1`, id)
		if err != nil {
			w.log.Warn("bulk delete rolled back",
				zap.Int("rows", len(jobIDs)), zap.String("qacajobid", id), zap.Error(err))
			return nil, &WriteError{Rows: len(jobIDs), Err: err}
		}
		if tag.RowsAffected() == 0 {
			results = append(results, model.DeleteResult{JobID: id, Status: "NOT_FOUND"})
			continue
		}
		results = append(results, model.DeleteResult{JobID: id, Status: "DELETED"})
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, &WriteError{Rows: len(jobIDs), Err: err}
	}

	w.log.Info("bulk delete committed", zap.Int("rows", len(jobIDs)))
	return results, nil
}
