package database

import (
	"context"
	"database/sql"
	"strings"
)

// ActivitySiteCount is one row of a user's completed-sites breakdown.
type ActivitySiteCount struct {
	Activity       string `json:"activity"`
	CompletedSites int    `json:"completed_sites"`
}

// GetUserActivitySites counts distinct completed sites per activity for
// processes the user started, either as START_USER_ID_ or via the
// initiator variable set by API-triggered processes.
func (w *WorkflowDB) GetUserActivitySites(ctx context.Context, userID string) ([]ActivitySiteCount, error) {
	rows, err := w.db.QueryContext(ctx, `
		SELECT activity, COUNT(DISTINCT siteid) AS completed_sites
		FROM (
			SELECT P.ID_,
			       MAX(CASE WHEN V.NAME_='activitytype' THEN V.TEXT_ END) AS activity,
			       MAX(CASE WHEN V.NAME_='siteid' THEN V.TEXT_ END) AS siteid,
			       MAX(CASE WHEN V.NAME_='initiator' THEN V.TEXT_ END) AS initiator,
			       P.START_USER_ID_
			FROM ACT_HI_PROCINST P
			JOIN ACT_HI_VARINST V ON V.PROC_INST_ID_ = P.ID_
			WHERE P.END_TIME_ IS NOT NULL
			GROUP BY P.ID_
		) X
		WHERE activity IS NOT NULL AND siteid IS NOT NULL
		  AND (START_USER_ID_ = ? OR initiator = ?)
		GROUP BY activity
		ORDER BY completed_sites DESC`,
		userID, userID)
	if err != nil {
		return nil, connErr(err)
	}
	defer rows.Close()

	counts := []ActivitySiteCount{}
	for rows.Next() {
		var c ActivitySiteCount
		if err := rows.Scan(&c.Activity, &c.CompletedSites); err != nil {
			return nil, connErr(err)
		}
		counts = append(counts, c)
	}
	return counts, connErr(rows.Err())
}

// UserTask is one task instance assigned to or claimable by a user.
type UserTask struct {
	ID         string `json:"id"`
	Name       string `json:"name"`
	SiteID     string `json:"siteid"`
	Activity   string `json:"activity"`
	Status     string `json:"status"`
	Date       string `json:"date"`
	InstanceID string `json:"proc_inst_id"`
}

// UserTaskStats is a user's task workload: completed/pending counts plus
// the task list, pending first.
type UserTaskStats struct {
	Completed int        `json:"completed"`
	Pending   int        `json:"pending"`
	Tasks     []UserTask `json:"tasks"`
}

// GetUserTaskStats lists historic task instances where the user is the
// assignee, or unassigned tasks where the user or one of its workflow
// groups is a candidate. Optional site and activity filters narrow the set.
func (w *WorkflowDB) GetUserTaskStats(ctx context.Context, userID, siteID, activityType string) (UserTaskStats, error) {
	stats := UserTaskStats{Tasks: []UserTask{}}

	groups, err := w.GetUserGroups(ctx, userID)
	if err != nil {
		return stats, err
	}

	candidate := "USER_ID_ = ?"
	candidateArgs := []any{userID}
	if len(groups) > 0 {
		candidate += " OR GROUP_ID_ IN (?" + strings.Repeat(", ?", len(groups)-1) + ")"
		for _, g := range groups {
			candidateArgs = append(candidateArgs, g)
		}
	}

	where := `
		WHERE (
			T.ASSIGNEE_ = ?
			OR (
				T.ASSIGNEE_ IS NULL
				AND T.ID_ IN (
					SELECT TASK_ID_ FROM ACT_HI_IDENTITYLINK
					WHERE TYPE_ = 'candidate' AND (` + candidate + `)
				)
			)
		)`
	args := append([]any{userID}, candidateArgs...)

	if siteID != "" {
		where += " AND siteid LIKE ?"
		args = append(args, "%"+siteID+"%")
	}
	if activityType != "" {
		where += " AND activitytype = ?"
		args = append(args, activityType)
	}

	rows, err := w.db.QueryContext(ctx, `
		SELECT T.ID_, T.NAME_, T.START_TIME_, T.END_TIME_, siteid, activitytype, T.PROC_INST_ID_
		FROM ACT_HI_TASKINST T
		JOIN (
			SELECT PROC_INST_ID_,
			       MAX(CASE WHEN NAME_='siteid' THEN TEXT_ END) AS siteid,
			       MAX(CASE WHEN NAME_='activitytype' THEN TEXT_ END) AS activitytype
			FROM ACT_HI_VARINST
			GROUP BY PROC_INST_ID_
		) V ON V.PROC_INST_ID_ = T.PROC_INST_ID_`+
		where+`
		ORDER BY (T.END_TIME_ IS NULL) DESC, T.END_TIME_ DESC`,
		args...)
	if err != nil {
		return stats, connErr(err)
	}
	defer rows.Close()

	for rows.Next() {
		var (
			task       UserTask
			name, site sql.NullString
			activity   sql.NullString
			start, end sql.NullTime
		)
		if err := rows.Scan(&task.ID, &name, &start, &end, &site, &activity, &task.InstanceID); err != nil {
			return stats, connErr(err)
		}
		task.Name = name.String
		task.SiteID = site.String
		task.Activity = activity.String

		display := start
		if end.Valid {
			task.Status = "Completed"
			stats.Completed++
			display = end
		} else {
			task.Status = "Pending"
			stats.Pending++
		}
		if display.Valid {
			task.Date = display.Time.Format("2006-01-02 15:04")
		} else {
			task.Date = "-"
		}
		stats.Tasks = append(stats.Tasks, task)
	}
	return stats, connErr(rows.Err())
}
