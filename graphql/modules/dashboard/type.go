// Package dashboard defines the GraphQL types for the portal dashboard.
package dashboard

import (
	"github.com/graphql-go/graphql"
)

// CircleHeadSummaryType represents the circle head overview cards
var CircleHeadSummaryType = graphql.NewObject(graphql.ObjectConfig{
	Name: "CircleHeadSummary",
	Fields: graphql.Fields{
		"pending":   &graphql.Field{Type: graphql.Int},
		"completed": &graphql.Field{Type: graphql.Int},
		"flag":      &graphql.Field{Type: graphql.Int},
	},
})

// DesignTeamSummaryType represents the design team overview cards
var DesignTeamSummaryType = graphql.NewObject(graphql.ObjectConfig{
	Name: "DesignTeamSummary",
	Fields: graphql.Fields{
		"pending":   &graphql.Field{Type: graphql.Int},
		"completed": &graphql.Field{Type: graphql.Int},
	},
})

// GroupCountType is one cell of the circle/activity count matrix
var GroupCountType = graphql.NewObject(graphql.ObjectConfig{
	Name: "GroupCount",
	Fields: graphql.Fields{
		"circle":   &graphql.Field{Type: graphql.String},
		"activity": &graphql.Field{Type: graphql.String},
		"count":    &graphql.Field{Type: graphql.Int},
	},
})

// WorkflowUserType represents an identity row from the workflow engine
var WorkflowUserType = graphql.NewObject(graphql.ObjectConfig{
	Name: "WorkflowUser",
	Fields: graphql.Fields{
		"id":    &graphql.Field{Type: graphql.String},
		"name":  &graphql.Field{Type: graphql.String},
		"email": &graphql.Field{Type: graphql.String},
	},
})

// ActivitySiteCountType is one row of a user's completed-sites breakdown
var ActivitySiteCountType = graphql.NewObject(graphql.ObjectConfig{
	Name: "ActivitySiteCount",
	Fields: graphql.Fields{
		"activity":        &graphql.Field{Type: graphql.String},
		"completed_sites": &graphql.Field{Type: graphql.Int},
	},
})

// UserTaskType is one task instance in a user's workload
var UserTaskType = graphql.NewObject(graphql.ObjectConfig{
	Name: "UserTask",
	Fields: graphql.Fields{
		"id":           &graphql.Field{Type: graphql.String},
		"name":         &graphql.Field{Type: graphql.String},
		"siteid":       &graphql.Field{Type: graphql.String},
		"activity":     &graphql.Field{Type: graphql.String},
		"status":       &graphql.Field{Type: graphql.String},
		"date":         &graphql.Field{Type: graphql.String},
		"proc_inst_id": &graphql.Field{Type: graphql.String},
	},
})

// UserTaskStatsType summarizes a user's task workload
var UserTaskStatsType = graphql.NewObject(graphql.ObjectConfig{
	Name: "UserTaskStats",
	Fields: graphql.Fields{
		"completed": &graphql.Field{Type: graphql.Int},
		"pending":   &graphql.Field{Type: graphql.Int},
		"tasks":     &graphql.Field{Type: graphql.NewList(UserTaskType)},
	},
})

// WorkflowGroupType represents a group row from the workflow engine
var WorkflowGroupType = graphql.NewObject(graphql.ObjectConfig{
	Name: "WorkflowGroup",
	Fields: graphql.Fields{
		"id":   &graphql.Field{Type: graphql.String},
		"name": &graphql.Field{Type: graphql.String},
	},
})
