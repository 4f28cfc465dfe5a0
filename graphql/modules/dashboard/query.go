// Package dashboard defines the GraphQL queries for the dashboard.
package dashboard

import (
	"github.com/graphql-go/graphql"
	"github.com/qed-utility/portal-backend/database"
)

// summaryArgs are shared by every aggregate query: an optional date window
// plus optional circle and activity filters.
var summaryArgs = graphql.FieldConfigArgument{
	"startDate": &graphql.ArgumentConfig{Type: graphql.String, DefaultValue: ""},
	"endDate":   &graphql.ArgumentConfig{Type: graphql.String, DefaultValue: ""},
	"circle":    &graphql.ArgumentConfig{Type: graphql.String, DefaultValue: ""},
	"activity":  &graphql.ArgumentConfig{Type: graphql.String, DefaultValue: ""},
}

// GetQueryFields returns the dashboard queries to be mounted in the root schema
func GetQueryFields(workflow *database.WorkflowDB) graphql.Fields {
	return graphql.Fields{
		// Section 1: Top Cards (Circle Head)
		"circleHeadSummary": &graphql.Field{
			Type: CircleHeadSummaryType,
			Args: summaryArgs,
			Resolve: func(p graphql.ResolveParams) (interface{}, error) {
				return ResolveCircleHeadSummary(p.Context, workflow, filterFromArgs(p))
			},
		},
		// Section 2: Top Cards (Design Team)
		"designTeamSummary": &graphql.Field{
			Type: DesignTeamSummaryType,
			Args: summaryArgs,
			Resolve: func(p graphql.ResolveParams) (interface{}, error) {
				return ResolveDesignTeamSummary(p.Context, workflow, filterFromArgs(p))
			},
		},
		// Section 3: Matrix (counts per circle and activity)
		"summaryByGroup": &graphql.Field{
			Type: graphql.NewList(GroupCountType),
			Args: summaryArgs,
			Resolve: func(p graphql.ResolveParams) (interface{}, error) {
				return ResolveSummaryByGroup(p.Context, workflow, filterFromArgs(p))
			},
		},
		// Section 4: Identity tables
		"workflowUsers": &graphql.Field{
			Type: graphql.NewList(WorkflowUserType),
			Resolve: func(p graphql.ResolveParams) (interface{}, error) {
				return ResolveWorkflowUsers(p.Context, workflow)
			},
		},
		"workflowGroups": &graphql.Field{
			Type: graphql.NewList(WorkflowGroupType),
			Resolve: func(p graphql.ResolveParams) (interface{}, error) {
				return ResolveWorkflowGroups(p.Context, workflow)
			},
		},
		// Section 5: Per-user workload
		"userActivitySites": &graphql.Field{
			Type: graphql.NewList(ActivitySiteCountType),
			Args: graphql.FieldConfigArgument{
				"userId": &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.String)},
			},
			Resolve: func(p graphql.ResolveParams) (interface{}, error) {
				return ResolveUserActivitySites(p.Context, workflow, strArg(p, "userId"))
			},
		},
		"userTaskStats": &graphql.Field{
			Type: UserTaskStatsType,
			Args: graphql.FieldConfigArgument{
				"userId":   &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.String)},
				"siteId":   &graphql.ArgumentConfig{Type: graphql.String, DefaultValue: ""},
				"activity": &graphql.ArgumentConfig{Type: graphql.String, DefaultValue: ""},
			},
			Resolve: func(p graphql.ResolveParams) (interface{}, error) {
				return ResolveUserTaskStats(p.Context, workflow,
					strArg(p, "userId"), strArg(p, "siteId"), strArg(p, "activity"))
			},
		},
		// Section 6: Filter dropdowns
		"activityTypes": &graphql.Field{
			Type: graphql.NewList(graphql.String),
			Resolve: func(p graphql.ResolveParams) (interface{}, error) {
				return ResolveActivityTypes(p.Context, workflow)
			},
		},
		"siteIds": &graphql.Field{
			Type: graphql.NewList(graphql.String),
			Resolve: func(p graphql.ResolveParams) (interface{}, error) {
				return ResolveSiteIDs(p.Context, workflow)
			},
		},
	}
}
