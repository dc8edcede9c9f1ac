// Package monitoring defines the GraphQL types for the proctoring dashboard.
package monitoring

import (
	"github.com/graphql-go/graphql"
)

// AlertSummaryType represents the aggregate counts for one exam's alerts
var AlertSummaryType = graphql.NewObject(graphql.ObjectConfig{
	Name: "AlertSummary",
	Fields: graphql.Fields{
		"total":      &graphql.Field{Type: graphql.Int},
		"critical":   &graphql.Field{Type: graphql.Int},
		"unresolved": &graphql.Field{Type: graphql.Int},
		"last_hour":  &graphql.Field{Type: graphql.Int},
	},
})

// CheatingAlertType represents a single escalated alert row
var CheatingAlertType = graphql.NewObject(graphql.ObjectConfig{
	Name: "CheatingAlert",
	Fields: graphql.Fields{
		"id":         &graphql.Field{Type: graphql.String},
		"exam_id":    &graphql.Field{Type: graphql.String},
		"user_id":    &graphql.Field{Type: graphql.String},
		"session_id": &graphql.Field{Type: graphql.String},
		"alert_type": &graphql.Field{Type: graphql.String},
		"severity":   &graphql.Field{Type: graphql.String},
		"message":    &graphql.Field{Type: graphql.String},
		"timestamp":  &graphql.Field{Type: graphql.String},
		"resolved":   &graphql.Field{Type: graphql.Boolean},
	},
})

// AuditEntryType represents one buffered audit record
var AuditEntryType = graphql.NewObject(graphql.ObjectConfig{
	Name: "AuditEntry",
	Fields: graphql.Fields{
		"id":         &graphql.Field{Type: graphql.String},
		"timestamp":  &graphql.Field{Type: graphql.String},
		"level":      &graphql.Field{Type: graphql.String},
		"category":   &graphql.Field{Type: graphql.String},
		"event":      &graphql.Field{Type: graphql.String},
		"user_id":    &graphql.Field{Type: graphql.String},
		"ip_address": &graphql.Field{Type: graphql.String},
	},
})

// MonitoringOverviewType represents the top cards of the proctoring dashboard
var MonitoringOverviewType = graphql.NewObject(graphql.ObjectConfig{
	Name: "MonitoringOverview",
	Fields: graphql.Fields{
		"active_sessions": &graphql.Field{Type: graphql.Int},
		"audit_entries":   &graphql.Field{Type: graphql.Int},
	},
})
