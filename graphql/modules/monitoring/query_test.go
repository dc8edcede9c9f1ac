package monitoring

import (
	"context"
	"testing"
	"time"

	"github.com/examguard/integrity-backend/internal/audit"
	"github.com/examguard/integrity-backend/internal/detection"
	"github.com/examguard/integrity-backend/internal/policy"
	"github.com/examguard/integrity-backend/internal/session"
	"github.com/examguard/integrity-backend/model"
	"github.com/examguard/integrity-backend/restapi/modules/auth"
	"github.com/graphql-go/graphql"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestSchema(t *testing.T) (graphql.Schema, Deps) {
	t.Helper()

	det := detection.New(policy.Default(), nil, nil)
	det.RecordEvent(model.ProctoringEvent{
		ExamID:    "exam-1",
		UserID:    "u1",
		SessionID: "s1",
		EventType: model.EventTabSwitch,
		Timestamp: time.Now(),
	})

	aud := audit.New(10, nil)
	aud.Log(audit.LevelInfo, audit.CategoryAdmin, "exam_publish", "admin-1", "", nil)

	d := Deps{
		Detector: det,
		Audit:    aud,
		Sessions: session.New(det, aud, policy.Default(), nil, nil),
	}

	schema, err := graphql.NewSchema(graphql.SchemaConfig{
		Query: graphql.NewObject(graphql.ObjectConfig{
			Name:   "Query",
			Fields: GetQueryFields(d),
		}),
	})
	require.NoError(t, err)
	return schema, d
}

func roleContext(username, role string) context.Context {
	ctx := context.WithValue(context.Background(), auth.UserKey, username)
	return context.WithValue(ctx, auth.RoleKey, role)
}

func TestMonitoringQueries_GuestDenied(t *testing.T) {
	schema, _ := newTestSchema(t)

	result := graphql.Do(graphql.Params{
		Schema:        schema,
		RequestString: `{ recentAlerts(examId:"exam-1"){user_id severity} auditTail{event user_id} }`,
		Context:       context.Background(),
	})

	require.NotEmpty(t, result.Errors)
	data, _ := result.Data.(map[string]interface{})
	assert.Nil(t, data["recentAlerts"])
	assert.Nil(t, data["auditTail"])
}

func TestMonitoringQueries_StudentDenied(t *testing.T) {
	schema, _ := newTestSchema(t)

	result := graphql.Do(graphql.Params{
		Schema:        schema,
		RequestString: `{ alertSummary(examId:"exam-1"){total} }`,
		Context:       roleContext("stu", model.RoleStudent),
	})

	require.NotEmpty(t, result.Errors)
	assert.Contains(t, result.Errors[0].Message, "insufficient permissions")
}

func TestMonitoringQueries_InstructorSeesAlertsNotAudit(t *testing.T) {
	schema, _ := newTestSchema(t)

	result := graphql.Do(graphql.Params{
		Schema:        schema,
		RequestString: `{ recentAlerts(examId:"exam-1"){user_id severity} auditTail{event} }`,
		Context:       roleContext("teach", model.RoleInstructor),
	})

	require.NotEmpty(t, result.Errors)

	data, ok := result.Data.(map[string]interface{})
	require.True(t, ok)

	alerts, ok := data["recentAlerts"].([]interface{})
	require.True(t, ok)
	require.Len(t, alerts, 1)
	first := alerts[0].(map[string]interface{})
	assert.Equal(t, "u1", first["user_id"])
	assert.Equal(t, model.SeverityHigh, first["severity"])

	assert.Nil(t, data["auditTail"])
}

func TestMonitoringQueries_AdminSeesAuditTail(t *testing.T) {
	schema, _ := newTestSchema(t)

	result := graphql.Do(graphql.Params{
		Schema:        schema,
		RequestString: `{ auditTail{event user_id} monitoringOverview{audit_entries} }`,
		Context:       roleContext("root", model.RoleAdmin),
	})

	require.Empty(t, result.Errors)

	data := result.Data.(map[string]interface{})
	entries := data["auditTail"].([]interface{})
	require.Len(t, entries, 1)
	entry := entries[0].(map[string]interface{})
	assert.Equal(t, "exam_publish", entry["event"])
	assert.Equal(t, "admin-1", entry["user_id"])
}
