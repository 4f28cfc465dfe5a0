package bulkops

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/qed-utility/portal-backend/model"
)

type stubTx struct {
	execs      []string
	failAfter  int // fail the Nth Exec (1-based), 0 disables
	missing    map[string]bool
	committed  bool
	rolledBack bool
}

func (t *stubTx) Exec(_ context.Context, sql string, args ...any) (pgconn.CommandTag, error) {
	t.execs = append(t.execs, sql)
	if t.failAfter > 0 && len(t.execs) == t.failAfter {
		return pgconn.CommandTag{}, errors.New("duplicate key value violates unique constraint")
	}
	if strings.HasPrefix(sql, "DELETE") {
		id, _ := args[0].(string)
		if t.missing[id] {
			return pgconn.NewCommandTag("DELETE 0"), nil
		}
		return pgconn.NewCommandTag("DELETE 1"), nil
	}
	return pgconn.NewCommandTag("INSERT 0 1"), nil
}

func (t *stubTx) Commit(context.Context) error {
	t.committed = true
	return nil
}

func (t *stubTx) Rollback(context.Context) error {
	t.rolledBack = true
	return nil
}

type stubBeginner struct {
	tx       *stubTx
	beginErr error
}

func (b *stubBeginner) Begin(context.Context) (Tx, error) {
	if b.beginErr != nil {
		return nil, b.beginErr
	}
	return b.tx, nil
}

func testRecords(n int) []model.Record {
	records := make([]model.Record, n)
	for i := range records {
		records[i] = model.Record{
			JobID:     "JOB-" + string(rune('A'+i)),
			SiteID:    "SITE-1",
			Circle:    "WB",
			Activity:  "BFS",
			Status:    model.StatusPending,
			StartDate: time.Date(2026, 1, 15, 0, 0, 0, 0, time.UTC),
		}
	}
	return records
}

func TestInsertBatchCommitsAllRows(t *testing.T) {
	tx := &stubTx{}
	w := NewWriter(&stubBeginner{tx: tx}, zap.NewNop())

	err := w.InsertBatch(context.Background(), testRecords(3))
	require.NoError(t, err)
	require.True(t, tx.committed)
	require.Len(t, tx.execs, 3)
}

func TestInsertBatchRollsBackWholeBatch(t *testing.T) {
	tx := &stubTx{failAfter: 2}
	w := NewWriter(&stubBeginner{tx: tx}, zap.NewNop())

	err := w.InsertBatch(context.Background(), testRecords(3))
	var writeErr *WriteError
	require.ErrorAs(t, err, &writeErr)
	require.Equal(t, 3, writeErr.Rows)
	require.False(t, tx.committed)
	require.True(t, tx.rolledBack)
	// the failing row stops the batch, the third row is never attempted
	require.Len(t, tx.execs, 2)
}

func TestInsertBatchEmptyIsNoop(t *testing.T) {
	b := &stubBeginner{beginErr: errors.New("should not begin")}
	w := NewWriter(b, zap.NewNop())
	require.NoError(t, w.InsertBatch(context.Background(), nil))
}

func TestDeleteBatchReportsPerRow(t *testing.T) {
	tx := &stubTx{missing: map[string]bool{"JOB-GONE": true}}
	w := NewWriter(&stubBeginner{tx: tx}, zap.NewNop())

	results, err := w.DeleteBatch(context.Background(), []string{"JOB-A", "JOB-GONE", "JOB-B"})
	require.NoError(t, err)
	require.True(t, tx.committed)
	require.Equal(t, []model.DeleteResult{
		{JobID: "JOB-A", Status: "DELETED"},
		{JobID: "JOB-GONE", Status: "NOT_FOUND"},
		{JobID: "JOB-B", Status: "DELETED"},
	}, results)
}

func TestDeleteBatchRollsBackOnError(t *testing.T) {
	tx := &stubTx{failAfter: 2}
	w := NewWriter(&stubBeginner{tx: tx}, zap.NewNop())

	results, err := w.DeleteBatch(context.Background(), []string{"JOB-A", "JOB-B"})
	var writeErr *WriteError
	require.ErrorAs(t, err, &writeErr)
	require.Nil(t, results)
	require.True(t, tx.rolledBack)
	require.False(t, tx.committed)
}
