package database

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	// MySQL driver registration for the read-only workflow database.
	_ "github.com/go-sql-driver/mysql"

	"github.com/qed-utility/portal-backend/config"
)

// ConnectionError signals that the external workflow database is unreachable.
// It is surfaced to the caller; nothing is retried automatically.
type ConnectionError struct {
	Err error
}

func (e *ConnectionError) Error() string {
	return fmt.Sprintf("workflow database unavailable: %v", e.Err)
}

func (e *ConnectionError) Unwrap() error { return e.Err }

// WorkflowDB is a read-only client for the external workflow engine database.
type WorkflowDB struct {
	db *sql.DB
}

// OpenWorkflowDB builds the client from environment configuration. The
// connection is verified lazily; an unreachable database surfaces as a
// ConnectionError on first use rather than blocking startup.
func OpenWorkflowDB(cfg config.Config) (*WorkflowDB, error) {
	dsn := fmt.Sprintf("%s:%s@tcp(%s:%s)/%s?parseTime=true",
		cfg.WorkflowUser, cfg.WorkflowPass, cfg.WorkflowHost, cfg.WorkflowPort, cfg.WorkflowName)

	db, err := sql.Open("mysql", dsn)
	if err != nil {
		return nil, &ConnectionError{Err: err}
	}
	db.SetMaxOpenConns(10)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(5 * time.Minute)

	return &WorkflowDB{db: db}, nil
}

// Ping verifies reachability of the workflow database.
func (w *WorkflowDB) Ping(ctx context.Context) error {
	if err := w.db.PingContext(ctx); err != nil {
		return &ConnectionError{Err: err}
	}
	return nil
}

// Close releases the underlying pool.
func (w *WorkflowDB) Close() error {
	return w.db.Close()
}

// connErr wraps any query failure against the read-only database. The SQL is
// fixed, so failures at runtime mean the database went away.
func connErr(err error) error {
	if err == nil {
		return nil
	}
	return &ConnectionError{Err: err}
}

// SummaryFilter narrows the dashboard aggregation queries. Empty strings
// match everything; zero dates widen to the full history.
type SummaryFilter struct {
	Start    string // YYYY-MM-DD
	End      string // YYYY-MM-DD
	Circle   string
	Activity string
}

func (f SummaryFilter) bounds() (string, string) {
	start, end := f.Start, f.End
	if start == "" {
		start = "1900-01-01"
	}
	if end == "" {
		end = "9999-12-31"
	}
	return start, end
}

// CircleHeadSummary counts process instances by allotment/survey state.
type CircleHeadSummary struct {
	Pending   int `json:"Pending"`
	Completed int `json:"Completed"`
	Flag      int `json:"Flag"`
}

// GetCircleHeadSummary aggregates allotment vs actual-survey progress for the
// circle head dashboard cards.
func (w *WorkflowDB) GetCircleHeadSummary(ctx context.Context, f SummaryFilter) (CircleHeadSummary, error) {
	start, end := f.bounds()

	const query = `
	WITH base AS (
		SELECT DISTINCT P.ID_
		FROM ACT_HI_PROCINST P
		WHERE DATE(P.START_TIME_) BETWEEN ? AND ?
		  AND EXISTS (
			SELECT 1 FROM ACT_HI_VARINST V2
			WHERE V2.PROC_INST_ID_ = P.ID_
			  AND V2.NAME_ = 'qacajobid'
			  AND V2.TEXT_ IS NOT NULL
		  )
	)
	SELECT
		COALESCE(SUM(CASE WHEN allot IS NOT NULL AND asurvey IS NULL THEN 1 ELSE 0 END), 0) AS pending,
		COALESCE(SUM(CASE WHEN allot IS NOT NULL AND asurvey IS NOT NULL THEN 1 ELSE 0 END), 0) AS completed,
		COALESCE(SUM(CASE WHEN allot IS NULL THEN 1 ELSE 0 END), 0) AS flag
	FROM (
		SELECT
			MAX(CASE WHEN V.NAME_ IN ('allotmentdate','allocationdate') THEN COALESCE(V.LONG_, V.BYTEARRAY_ID_) END) AS allot,
			MAX(CASE WHEN V.NAME_='actualsurveydate' THEN COALESCE(V.LONG_, V.BYTEARRAY_ID_) END) AS asurvey,
			MAX(CASE WHEN V.NAME_='circle' THEN V.TEXT_ END) AS circle,
			MAX(CASE WHEN V.NAME_='activitytype' THEN V.TEXT_ END) AS activity
		FROM base B
		JOIN ACT_HI_VARINST V ON B.ID_ = V.PROC_INST_ID_
		GROUP BY B.ID_
	) X
	WHERE (? = '' OR circle = ?)
	  AND (? = '' OR activity = ?)`

	var s CircleHeadSummary
	err := w.db.QueryRowContext(ctx, query,
		start, end, f.Circle, f.Circle, f.Activity, f.Activity).
		Scan(&s.Pending, &s.Completed, &s.Flag)
	if err != nil {
		return CircleHeadSummary{}, connErr(err)
	}
	return s, nil
}

// DesignTeamSummary counts survey-received vs review-complete instances.
type DesignTeamSummary struct {
	Pending   int `json:"Pending"`
	Completed int `json:"Completed"`
}

// GetDesignTeamSummary aggregates design review progress.
func (w *WorkflowDB) GetDesignTeamSummary(ctx context.Context, f SummaryFilter) (DesignTeamSummary, error) {
	start, end := f.bounds()

	const query = `
	WITH base AS (
		SELECT DISTINCT P.ID_
		FROM ACT_HI_PROCINST P
		WHERE DATE(P.START_TIME_) BETWEEN ? AND ?
		  AND EXISTS (
			SELECT 1 FROM ACT_HI_VARINST V2
			WHERE V2.PROC_INST_ID_ = P.ID_
			  AND V2.NAME_ = 'qacajobid'
			  AND V2.TEXT_ IS NOT NULL
		  )
	)
	SELECT
		COALESCE(SUM(CASE WHEN srecv IS NOT NULL AND rcomp IS NULL THEN 1 ELSE 0 END), 0) AS pending,
		COALESCE(SUM(CASE WHEN srecv IS NOT NULL AND rcomp IS NOT NULL THEN 1 ELSE 0 END), 0) AS completed
	FROM (
		SELECT
			MAX(CASE WHEN V.NAME_='surveydatereceived' THEN COALESCE(V.LONG_, V.BYTEARRAY_ID_) END) AS srecv,
			MAX(CASE WHEN V.NAME_='reviewcompletiondate' THEN COALESCE(V.LONG_, V.BYTEARRAY_ID_) END) AS rcomp,
			MAX(CASE WHEN V.NAME_='circle' THEN V.TEXT_ END) AS circle,
			MAX(CASE WHEN V.NAME_='activitytype' THEN V.TEXT_ END) AS activity
		FROM base B
		JOIN ACT_HI_VARINST V ON B.ID_ = V.PROC_INST_ID_
		GROUP BY B.ID_
	) X
	WHERE (? = '' OR circle = ?)
	  AND (? = '' OR activity = ?)`

	var s DesignTeamSummary
	err := w.db.QueryRowContext(ctx, query,
		start, end, f.Circle, f.Circle, f.Activity, f.Activity).
		Scan(&s.Pending, &s.Completed)
	if err != nil {
		return DesignTeamSummary{}, connErr(err)
	}
	return s, nil
}

// GroupCount is one cell of the (circle, activity) count matrix.
type GroupCount struct {
	Circle   string `json:"circle"`
	Activity string `json:"activity"`
	Count    int    `json:"count"`
}

// GetSummaryByGroup returns process-instance counts grouped by circle and
// activity. The sum across all cells equals the unfiltered instance total
// for the date range.
func (w *WorkflowDB) GetSummaryByGroup(ctx context.Context, f SummaryFilter) ([]GroupCount, error) {
	start, end := f.bounds()

	const query = `
	SELECT COALESCE(circle, ''), COALESCE(activity, ''), COUNT(*)
	FROM (
		SELECT
			P.ID_,
			MAX(CASE WHEN V.NAME_='circle' THEN V.TEXT_ END) AS circle,
			MAX(CASE WHEN V.NAME_='activitytype' THEN V.TEXT_ END) AS activity
		FROM ACT_HI_PROCINST P
		JOIN ACT_HI_VARINST V ON V.PROC_INST_ID_ = P.ID_
		WHERE DATE(P.START_TIME_) BETWEEN ? AND ?
		GROUP BY P.ID_
	) X
	WHERE (? = '' OR circle = ?)
	  AND (? = '' OR activity = ?)
	GROUP BY circle, activity
	ORDER BY circle, activity`

	rows, err := w.db.QueryContext(ctx, query,
		start, end, f.Circle, f.Circle, f.Activity, f.Activity)
	if err != nil {
		return nil, connErr(err)
	}
	defer rows.Close()

	var out []GroupCount
	for rows.Next() {
		var g GroupCount
		if err := rows.Scan(&g.Circle, &g.Activity, &g.Count); err != nil {
			return nil, connErr(err)
		}
		out = append(out, g)
	}
	return out, connErr(rows.Err())
}

// WorkflowUser is an identity row from the workflow engine.
type WorkflowUser struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
	First string `json:"-"`
	Last  string `json:"-"`
}

// GetUsers lists all workflow users ordered by name.
func (w *WorkflowDB) GetUsers(ctx context.Context) ([]WorkflowUser, error) {
	const query = `SELECT ID_, CONCAT(IFNULL(FIRST_,''),' ',IFNULL(LAST_,'')), IFNULL(EMAIL_,'')
	               FROM ACT_ID_USER ORDER BY FIRST_, LAST_`

	rows, err := w.db.QueryContext(ctx, query)
	if err != nil {
		return nil, connErr(err)
	}
	defer rows.Close()

	var users []WorkflowUser
	for rows.Next() {
		var u WorkflowUser
		if err := rows.Scan(&u.ID, &u.Name, &u.Email); err != nil {
			return nil, connErr(err)
		}
		users = append(users, u)
	}
	return users, connErr(rows.Err())
}

// WorkflowGroup is a group row from the workflow engine.
type WorkflowGroup struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// GetGroups lists all workflow groups ordered by name.
func (w *WorkflowDB) GetGroups(ctx context.Context) ([]WorkflowGroup, error) {
	rows, err := w.db.QueryContext(ctx,
		`SELECT ID_, IFNULL(NAME_,'') FROM ACT_ID_GROUP ORDER BY NAME_`)
	if err != nil {
		return nil, connErr(err)
	}
	defer rows.Close()

	var groups []WorkflowGroup
	for rows.Next() {
		var g WorkflowGroup
		if err := rows.Scan(&g.ID, &g.Name); err != nil {
			return nil, connErr(err)
		}
		groups = append(groups, g)
	}
	return groups, connErr(rows.Err())
}

// GetUserGroups returns the workflow group ids a user belongs to.
func (w *WorkflowDB) GetUserGroups(ctx context.Context, userID string) ([]string, error) {
	rows, err := w.db.QueryContext(ctx,
		`SELECT GROUP_ID_ FROM ACT_ID_MEMBERSHIP WHERE USER_ID_ = ?`, userID)
	if err != nil {
		return nil, connErr(err)
	}
	defer rows.Close()

	var groups []string
	for rows.Next() {
		var g string
		if err := rows.Scan(&g); err != nil {
			return nil, connErr(err)
		}
		groups = append(groups, g)
	}
	return groups, connErr(rows.Err())
}

// GetActivityTypes returns the distinct activitytype variable values.
func (w *WorkflowDB) GetActivityTypes(ctx context.Context) ([]string, error) {
	return w.distinctVariable(ctx, "activitytype")
}

// GetSiteIDs returns the distinct siteid variable values.
func (w *WorkflowDB) GetSiteIDs(ctx context.Context) ([]string, error) {
	return w.distinctVariable(ctx, "siteid")
}

func (w *WorkflowDB) distinctVariable(ctx context.Context, name string) ([]string, error) {
	rows, err := w.db.QueryContext(ctx,
		`SELECT DISTINCT TEXT_ FROM ACT_HI_VARINST
		 WHERE NAME_ = ? AND TEXT_ IS NOT NULL AND TEXT_ != '' ORDER BY TEXT_`, name)
	if err != nil {
		return nil, connErr(err)
	}
	defer rows.Close()

	var values []string
	for rows.Next() {
		var v string
		if err := rows.Scan(&v); err != nil {
			return nil, connErr(err)
		}
		values = append(values, v)
	}
	return values, connErr(rows.Err())
}

// AuthenticateUser checks credentials against the workflow identity table.
// Returns nil when the credentials do not match any user.
func (w *WorkflowDB) AuthenticateUser(ctx context.Context, username, password string) (*WorkflowUser, error) {
	const query = `SELECT ID_, IFNULL(FIRST_,''), IFNULL(LAST_,''), IFNULL(EMAIL_,'')
	               FROM ACT_ID_USER WHERE LOWER(ID_) = LOWER(?) AND PWD_ = ?`

	var u WorkflowUser
	err := w.db.QueryRowContext(ctx, query, username, password).
		Scan(&u.ID, &u.First, &u.Last, &u.Email)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, connErr(err)
	}
	return &u, nil
}
