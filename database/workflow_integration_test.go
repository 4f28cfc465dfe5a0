//go:build integration

package database

import (
	"context"
	"database/sql"
	"fmt"
	"testing"

	"github.com/stretchr/testify/require"
	mysqlcontainer "github.com/testcontainers/testcontainers-go/modules/mysql"
)

func startWorkflowDB(t *testing.T, ctx context.Context) (*WorkflowDB, *sql.DB) {
	ctr, err := mysqlcontainer.Run(ctx, "mysql:8.0.36",
		mysqlcontainer.WithDatabase("flowable"),
		mysqlcontainer.WithUsername("flowable"),
		mysqlcontainer.WithPassword("flowable"),
	)
	require.NoError(t, err)
	t.Cleanup(func() { _ = ctr.Terminate(ctx) })

	dsn, err := ctr.ConnectionString(ctx, "parseTime=true")
	require.NoError(t, err)

	db, err := sql.Open("mysql", dsn)
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	require.NoError(t, db.PingContext(ctx))

	for _, ddl := range []string{
		`CREATE TABLE ACT_HI_PROCINST (
			ID_ varchar(64) NOT NULL PRIMARY KEY,
			START_TIME_ datetime NOT NULL,
			END_TIME_ datetime NULL,
			START_USER_ID_ varchar(255) NULL
		)`,
		`CREATE TABLE ACT_HI_VARINST (
			ID_ varchar(64) NOT NULL PRIMARY KEY,
			PROC_INST_ID_ varchar(64) NOT NULL,
			NAME_ varchar(255) NOT NULL,
			TEXT_ varchar(4000) NULL,
			LONG_ bigint NULL,
			BYTEARRAY_ID_ varchar(64) NULL
		)`,
	} {
		_, err := db.ExecContext(ctx, ddl)
		require.NoError(t, err)
	}

	return &WorkflowDB{db: db}, db
}

type seeder struct {
	t    *testing.T
	ctx  context.Context
	db   *sql.DB
	next int
}

func (s *seeder) instance(id, startTime string) {
	_, err := s.db.ExecContext(s.ctx,
		`INSERT INTO ACT_HI_PROCINST (ID_, START_TIME_) VALUES (?, ?)`, id, startTime)
	require.NoError(s.t, err)
}

func (s *seeder) textVar(proc, name, text string) {
	s.next++
	_, err := s.db.ExecContext(s.ctx,
		`INSERT INTO ACT_HI_VARINST (ID_, PROC_INST_ID_, NAME_, TEXT_) VALUES (?, ?, ?, ?)`,
		fmt.Sprintf("v%d", s.next), proc, name, text)
	require.NoError(s.t, err)
}

func (s *seeder) longVar(proc, name string, value int64) {
	s.next++
	_, err := s.db.ExecContext(s.ctx,
		`INSERT INTO ACT_HI_VARINST (ID_, PROC_INST_ID_, NAME_, LONG_) VALUES (?, ?, ?, ?)`,
		fmt.Sprintf("v%d", s.next), proc, name, value)
	require.NoError(s.t, err)
}

func TestWorkflowSummariesAgainstMySQL(t *testing.T) {
	ctx := context.Background()
	w, db := startWorkflowDB(t, ctx)
	require.NoError(t, w.Ping(ctx))

	s := &seeder{t: t, ctx: ctx, db: db}

	// p1: allotted and surveyed, counts as completed
	s.instance("p1", "2026-01-10 09:00:00")
	s.textVar("p1", "qacajobid", "J1")
	s.textVar("p1", "circle", "WB")
	s.textVar("p1", "activitytype", "BFS")
	s.longVar("p1", "allotmentdate", 1767949200000)
	s.longVar("p1", "actualsurveydate", 1768122000000)

	// p2: allotted only, counts as pending
	s.instance("p2", "2026-01-12 14:30:00")
	s.textVar("p2", "qacajobid", "J2")
	s.textVar("p2", "circle", "WB")
	s.textVar("p2", "activitytype", "ALS")
	s.longVar("p2", "allotmentdate", 1768208400000)

	// p3: never allotted, counts as flagged
	s.instance("p3", "2026-01-15 08:00:00")
	s.textVar("p3", "qacajobid", "J3")
	s.textVar("p3", "circle", "CG")
	s.textVar("p3", "activitytype", "BFS")

	// p4: job id only, groups under the blank circle/activity cell
	s.instance("p4", "2026-01-20 11:00:00")
	s.textVar("p4", "qacajobid", "J4")

	// p5: outside the queried date range
	s.instance("p5", "2020-06-01 10:00:00")
	s.textVar("p5", "qacajobid", "J5")
	s.textVar("p5", "circle", "WB")

	filter := SummaryFilter{Start: "2026-01-01", End: "2026-12-31"}

	t.Run("group counts sum to the instance total", func(t *testing.T) {
		counts, err := w.GetSummaryByGroup(ctx, filter)
		require.NoError(t, err)

		sum := 0
		for _, g := range counts {
			sum += g.Count
		}

		var total int
		err = db.QueryRowContext(ctx,
			`SELECT COUNT(*) FROM ACT_HI_PROCINST WHERE DATE(START_TIME_) BETWEEN ? AND ?`,
			filter.Start, filter.End).Scan(&total)
		require.NoError(t, err)
		require.Equal(t, total, sum)
		require.Equal(t, 4, sum)
	})

	t.Run("circle filter narrows the matrix", func(t *testing.T) {
		counts, err := w.GetSummaryByGroup(ctx, SummaryFilter{
			Start: filter.Start, End: filter.End, Circle: "WB",
		})
		require.NoError(t, err)
		require.Len(t, counts, 2)
		for _, g := range counts {
			require.Equal(t, "WB", g.Circle)
			require.Equal(t, 1, g.Count)
		}
	})

	t.Run("circle head states partition the instances", func(t *testing.T) {
		summary, err := w.GetCircleHeadSummary(ctx, filter)
		require.NoError(t, err)
		require.Equal(t, CircleHeadSummary{Pending: 1, Completed: 1, Flag: 2}, summary)
		require.Equal(t, 4, summary.Pending+summary.Completed+summary.Flag)
	})

	t.Run("distinct activity types", func(t *testing.T) {
		types, err := w.GetActivityTypes(ctx)
		require.NoError(t, err)
		require.Equal(t, []string{"ALS", "BFS"}, types)
	})
}
