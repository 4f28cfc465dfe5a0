// Package graphql assembles the root GraphQL schema from its modules.
package graphql

import (
	"github.com/graphql-go/graphql"
	"github.com/qed-utility/portal-backend/database"
	"github.com/qed-utility/portal-backend/graphql/modules/dashboard"
)

// CreateSchema builds the root query schema over the workflow database
func CreateSchema(workflow *database.WorkflowDB) (graphql.Schema, error) {
	fields := graphql.Fields{}

	for name, field := range dashboard.GetQueryFields(workflow) {
		fields[name] = field
	}

	rootQuery := graphql.NewObject(graphql.ObjectConfig{
		Name:   "Query",
		Fields: fields,
	})

	return graphql.NewSchema(graphql.SchemaConfig{Query: rootQuery})
}
