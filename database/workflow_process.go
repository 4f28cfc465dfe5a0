package database

import (
	"context"
)

// ProcessFilter holds the exact-match filters for the process data browser.
// Empty values match everything, but at least one must be set.
type ProcessFilter struct {
	JobID    string
	SiteID   string
	Circle   string
	Activity string
}

func (f ProcessFilter) pairs() map[string]string {
	return map[string]string{
		"qacajobid":    f.JobID,
		"siteid":       f.SiteID,
		"circle":       f.Circle,
		"activitytype": f.Activity,
	}
}

// Empty reports whether no filter value is set.
func (f ProcessFilter) Empty() bool {
	for _, v := range f.pairs() {
		if v != "" {
			return false
		}
	}
	return true
}

// ProcessRow is one pivoted process instance for the browser view.
type ProcessRow struct {
	InstanceID string `json:"process_instance_id"`
	StartDate  string `json:"start_date"`
	EndDate    string `json:"end_date"`
	Status     string `json:"status"`
	JobID      string `json:"qacajobid"`
	SiteID     string `json:"siteid"`
	Circle     string `json:"circle"`
	Activity   string `json:"activitytype"`
}

// GetProcessFilterValues returns the distinct values for each filterable
// variable, keyed by variable name.
func (w *WorkflowDB) GetProcessFilterValues(ctx context.Context) (map[string][]string, error) {
	values := make(map[string][]string)
	for _, name := range []string{"qacajobid", "siteid", "circle", "activitytype"} {
		vals, err := w.distinctVariable(ctx, name)
		if err != nil {
			return nil, err
		}
		if vals == nil {
			vals = []string{}
		}
		values[name] = vals
	}
	return values, nil
}

// instanceIDsForFilters intersects the instance sets matching each set filter.
func (w *WorkflowDB) instanceIDsForFilters(ctx context.Context, f ProcessFilter) ([]string, error) {
	var sets []map[string]bool

	for name, value := range f.pairs() {
		if value == "" {
			continue
		}
		rows, err := w.db.QueryContext(ctx,
			`SELECT DISTINCT PROC_INST_ID_ FROM ACT_HI_VARINST WHERE NAME_ = ? AND TEXT_ = ?`,
			name, value)
		if err != nil {
			return nil, connErr(err)
		}
		set := make(map[string]bool)
		for rows.Next() {
			var id string
			if err := rows.Scan(&id); err != nil {
				rows.Close()
				return nil, connErr(err)
			}
			set[id] = true
		}
		rows.Close()
		if err := rows.Err(); err != nil {
			return nil, connErr(err)
		}
		sets = append(sets, set)
	}

	if len(sets) == 0 {
		return nil, nil
	}

	var ids []string
	for id := range sets[0] {
		inAll := true
		for _, s := range sets[1:] {
			if !s[id] {
				inAll = false
				break
			}
		}
		if inAll {
			ids = append(ids, id)
		}
	}
	return ids, nil
}

// GetProcessRows returns pivoted process rows matching the filter, paginated.
func (w *WorkflowDB) GetProcessRows(ctx context.Context, f ProcessFilter, limit, offset int) ([]ProcessRow, error) {
	ids, err := w.instanceIDsForFilters(ctx, f)
	if err != nil {
		return nil, err
	}
	if len(ids) == 0 {
		return []ProcessRow{}, nil
	}

	placeholders := ""
	args := make([]interface{}, 0, len(ids)+2)
	for i, id := range ids {
		if i > 0 {
			placeholders += ","
		}
		placeholders += "?"
		args = append(args, id)
	}
	args = append(args, limit, offset)

	query := `
	SELECT
		P.ID_,
		IFNULL(DATE_FORMAT(P.START_TIME_, '%Y-%m-%d'), ''),
		IFNULL(DATE_FORMAT(P.END_TIME_, '%Y-%m-%d'), ''),
		CASE WHEN P.END_TIME_ IS NULL THEN 'Pending' ELSE 'Completed' END,
		IFNULL(V.qacajobid, ''), IFNULL(V.siteid, ''), IFNULL(V.circle, ''), IFNULL(V.activitytype, '')
	FROM ACT_HI_PROCINST P
	JOIN (
		SELECT PROC_INST_ID_,
		       MAX(CASE WHEN NAME_='qacajobid' THEN TEXT_ END) AS qacajobid,
		       MAX(CASE WHEN NAME_='siteid' THEN TEXT_ END) AS siteid,
		       MAX(CASE WHEN NAME_='circle' THEN TEXT_ END) AS circle,
		       MAX(CASE WHEN NAME_='activitytype' THEN TEXT_ END) AS activitytype
		FROM ACT_HI_VARINST
		GROUP BY PROC_INST_ID_
	) V ON V.PROC_INST_ID_ = P.ID_
	WHERE P.ID_ IN (` + placeholders + `)
	ORDER BY P.START_TIME_ DESC
	LIMIT ? OFFSET ?`

	rows, err := w.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, connErr(err)
	}
	defer rows.Close()

	out := []ProcessRow{}
	for rows.Next() {
		var r ProcessRow
		if err := rows.Scan(&r.InstanceID, &r.StartDate, &r.EndDate, &r.Status,
			&r.JobID, &r.SiteID, &r.Circle, &r.Activity); err != nil {
			return nil, connErr(err)
		}
		out = append(out, r)
	}
	return out, connErr(rows.Err())
}
