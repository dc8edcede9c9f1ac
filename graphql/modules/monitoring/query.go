package monitoring

import (
	"github.com/graphql-go/graphql"
)

// GetQueryFields returns the monitoring queries to be mounted in the root
// schema. Every field checks the caller's role from the resolver context;
// the REST surface's gates apply here unchanged.
func GetQueryFields(d Deps) graphql.Fields {
	return graphql.Fields{
		// Top cards
		"monitoringOverview": &graphql.Field{
			Type: MonitoringOverviewType,
			Resolve: func(p graphql.ResolveParams) (interface{}, error) {
				if err := requireAlertViewer(p.Context); err != nil {
					return nil, err
				}
				return ResolveOverview(d)
			},
		},
		// Aggregate alert counts for one exam
		"alertSummary": &graphql.Field{
			Type: AlertSummaryType,
			Args: graphql.FieldConfigArgument{
				"examId": &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.String)},
			},
			Resolve: func(p graphql.ResolveParams) (interface{}, error) {
				if err := requireAlertViewer(p.Context); err != nil {
					return nil, err
				}
				examID := p.Args["examId"].(string)
				return ResolveAlertSummary(d, examID)
			},
		},
		// Latest alerts table
		"recentAlerts": &graphql.Field{
			Type: graphql.NewList(CheatingAlertType),
			Args: graphql.FieldConfigArgument{
				"examId":   &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.String)},
				"severity": &graphql.ArgumentConfig{Type: graphql.String, DefaultValue: ""},
				"limit":    &graphql.ArgumentConfig{Type: graphql.Int, DefaultValue: 20},
			},
			Resolve: func(p graphql.ResolveParams) (interface{}, error) {
				if err := requireAlertViewer(p.Context); err != nil {
					return nil, err
				}
				examID := p.Args["examId"].(string)
				severity := p.Args["severity"].(string)
				limit := p.Args["limit"].(int)
				return ResolveRecentAlerts(d, examID, severity, limit)
			},
		},
		// Recent audit records, admin only
		"auditTail": &graphql.Field{
			Type: graphql.NewList(AuditEntryType),
			Args: graphql.FieldConfigArgument{
				"category": &graphql.ArgumentConfig{Type: graphql.String, DefaultValue: ""},
				"minutes":  &graphql.ArgumentConfig{Type: graphql.Int, DefaultValue: 60},
				"limit":    &graphql.ArgumentConfig{Type: graphql.Int, DefaultValue: 50},
			},
			Resolve: func(p graphql.ResolveParams) (interface{}, error) {
				if err := requireAdmin(p.Context); err != nil {
					return nil, err
				}
				category := p.Args["category"].(string)
				minutes := p.Args["minutes"].(int)
				limit := p.Args["limit"].(int)
				return ResolveAuditTail(d, category, minutes, limit)
			},
		},
	}
}
