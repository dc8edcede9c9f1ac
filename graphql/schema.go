// Package graphql assembles the root schema from the per-module query fields.
package graphql

import (
	"github.com/examguard/integrity-backend/graphql/modules/monitoring"
	"github.com/graphql-go/graphql"
)

var deps monitoring.Deps

// Init stores the service handles the resolvers read from. Must be called
// before CreateSchema.
func Init(d monitoring.Deps) {
	deps = d
}

// CreateSchema builds the root query schema.
func CreateSchema() (graphql.Schema, error) {
	fields := graphql.Fields{}
	for name, field := range monitoring.GetQueryFields(deps) {
		fields[name] = field
	}

	rootQuery := graphql.NewObject(graphql.ObjectConfig{
		Name:   "Query",
		Fields: fields,
	})

	return graphql.NewSchema(graphql.SchemaConfig{
		Query: rootQuery,
	})
}
