// Package dashboard implements the resolvers for dashboard metrics.
package dashboard

import (
	"context"

	"github.com/graphql-go/graphql"
	"github.com/qed-utility/portal-backend/database"
	"github.com/qed-utility/portal-backend/util"
)

// strArg reads a string argument, treating an absent or explicit-null
// value as empty.
func strArg(p graphql.ResolveParams, name string) string {
	s, _ := p.Args[name].(string)
	return s
}

// filterFromArgs maps the common query arguments onto a SummaryFilter.
// Dates that fail to parse are treated as unset rather than erroring,
// matching the lenient filter handling on the REST side.
func filterFromArgs(p graphql.ResolveParams) database.SummaryFilter {
	f := database.SummaryFilter{
		Circle:   strArg(p, "circle"),
		Activity: strArg(p, "activity"),
	}
	f.Start = util.NormalizeDate(strArg(p, "startDate"))
	f.End = util.NormalizeDate(strArg(p, "endDate"))
	return f
}

// ResolveCircleHeadSummary fetches the pending/completed/flag counts for circle heads
func ResolveCircleHeadSummary(ctx context.Context, workflow *database.WorkflowDB, f database.SummaryFilter) (interface{}, error) {
	s, err := workflow.GetCircleHeadSummary(ctx, f)
	if err != nil {
		return nil, err
	}
	return map[string]interface{}{
		"pending":   s.Pending,
		"completed": s.Completed,
		"flag":      s.Flag,
	}, nil
}

// ResolveDesignTeamSummary fetches the pending/completed counts for the design team
func ResolveDesignTeamSummary(ctx context.Context, workflow *database.WorkflowDB, f database.SummaryFilter) (interface{}, error) {
	s, err := workflow.GetDesignTeamSummary(ctx, f)
	if err != nil {
		return nil, err
	}
	return map[string]interface{}{
		"pending":   s.Pending,
		"completed": s.Completed,
	}, nil
}

// ResolveSummaryByGroup fetches job counts broken out by circle and activity
func ResolveSummaryByGroup(ctx context.Context, workflow *database.WorkflowDB, f database.SummaryFilter) (interface{}, error) {
	counts, err := workflow.GetSummaryByGroup(ctx, f)
	if err != nil {
		return nil, err
	}
	rows := make([]map[string]interface{}, 0, len(counts))
	for _, c := range counts {
		rows = append(rows, map[string]interface{}{
			"circle":   c.Circle,
			"activity": c.Activity,
			"count":    c.Count,
		})
	}
	return rows, nil
}

// ResolveWorkflowUsers lists the identity users known to the workflow engine
func ResolveWorkflowUsers(ctx context.Context, workflow *database.WorkflowDB) (interface{}, error) {
	users, err := workflow.GetUsers(ctx)
	if err != nil {
		return nil, err
	}
	rows := make([]map[string]interface{}, 0, len(users))
	for _, u := range users {
		rows = append(rows, map[string]interface{}{
			"id":    u.ID,
			"name":  u.Name,
			"email": u.Email,
		})
	}
	return rows, nil
}

// ResolveWorkflowGroups lists the groups known to the workflow engine
func ResolveWorkflowGroups(ctx context.Context, workflow *database.WorkflowDB) (interface{}, error) {
	groups, err := workflow.GetGroups(ctx)
	if err != nil {
		return nil, err
	}
	rows := make([]map[string]interface{}, 0, len(groups))
	for _, g := range groups {
		rows = append(rows, map[string]interface{}{
			"id":   g.ID,
			"name": g.Name,
		})
	}
	return rows, nil
}

// ResolveUserActivitySites fetches a user's completed-sites counts per activity
func ResolveUserActivitySites(ctx context.Context, workflow *database.WorkflowDB, userID string) (interface{}, error) {
	counts, err := workflow.GetUserActivitySites(ctx, userID)
	if err != nil {
		return nil, err
	}
	rows := make([]map[string]interface{}, 0, len(counts))
	for _, c := range counts {
		rows = append(rows, map[string]interface{}{
			"activity":        c.Activity,
			"completed_sites": c.CompletedSites,
		})
	}
	return rows, nil
}

// ResolveUserTaskStats fetches a user's task workload with optional filters
func ResolveUserTaskStats(ctx context.Context, workflow *database.WorkflowDB, userID, siteID, activity string) (interface{}, error) {
	stats, err := workflow.GetUserTaskStats(ctx, userID, siteID, activity)
	if err != nil {
		return nil, err
	}
	tasks := make([]map[string]interface{}, 0, len(stats.Tasks))
	for _, task := range stats.Tasks {
		tasks = append(tasks, map[string]interface{}{
			"id":           task.ID,
			"name":         task.Name,
			"siteid":       task.SiteID,
			"activity":     task.Activity,
			"status":       task.Status,
			"date":         task.Date,
			"proc_inst_id": task.InstanceID,
		})
	}
	return map[string]interface{}{
		"completed": stats.Completed,
		"pending":   stats.Pending,
		"tasks":     tasks,
	}, nil
}

// ResolveActivityTypes lists the distinct activity types seen in process variables
func ResolveActivityTypes(ctx context.Context, workflow *database.WorkflowDB) (interface{}, error) {
	return workflow.GetActivityTypes(ctx)
}

// ResolveSiteIDs lists the distinct site IDs seen in process variables
func ResolveSiteIDs(ctx context.Context, workflow *database.WorkflowDB) (interface{}, error) {
	return workflow.GetSiteIDs(ctx)
}
