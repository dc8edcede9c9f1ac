package session

import (
	"testing"
	"time"

	"github.com/examguard/integrity-backend/internal/audit"
	"github.com/examguard/integrity-backend/internal/detection"
	"github.com/examguard/integrity-backend/internal/policy"
	"github.com/examguard/integrity-backend/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestService(examEnd time.Time) (*Service, *detection.Detector) {
	det := detection.New(nil, nil, nil)
	aud := audit.New(100, nil)
	window := func(examID string) (time.Time, time.Time, bool) {
		return examEnd.Add(-2 * time.Hour), examEnd, true
	}
	return New(det, aud, policy.Default(), nil, window), det
}

func examContext(userID, sessionID string) model.SecurityContext {
	return model.SecurityContext{
		UserID:    userID,
		SessionID: sessionID,
		IPAddress: "10.0.0.1",
		Role:      "student",
		IsExam:    true,
	}
}

func TestStartExamSecurity_Idempotent(t *testing.T) {
	svc, _ := newTestService(time.Now().Add(time.Hour))

	svc.StartExamSecurity("exam-1", "u1", "s1", model.SessionConfig{})
	first := svc.SecurityStatus("exam-1", "u1", "s1")
	require.NotNil(t, first)

	svc.StartExamSecurity("exam-1", "u1", "s1", model.SessionConfig{})
	second := svc.SecurityStatus("exam-1", "u1", "s1")
	require.NotNil(t, second)

	assert.Equal(t, first.StartedAt, second.StartedAt)
	assert.Equal(t, 1, svc.ActiveSessionCount())
}

func TestAssessSecurity_SelfHealingSessionCreation(t *testing.T) {
	svc, _ := newTestService(time.Now().Add(time.Hour))

	// no explicit start; first event creates the session
	resp := svc.AssessSecurity(examContext("u1", "s1"), model.AssessRequest{
		ExamID:    "exam-1",
		IsExam:    true,
		Action:    "proctoring_event",
		EventType: model.EventHeartbeat,
	})

	require.NotNil(t, resp.Status)
	assert.Equal(t, StateActive, resp.Status.State)
	assert.Equal(t, 1, resp.Status.EventCounts[model.EventHeartbeat])
}

func TestAssessSecurity_ForwardsToDetection(t *testing.T) {
	svc, det := newTestService(time.Now().Add(time.Hour))

	resp := svc.AssessSecurity(examContext("u1", "s1"), model.AssessRequest{
		ExamID:    "exam-1",
		IsExam:    true,
		Action:    "proctoring_event",
		EventType: model.EventTabSwitch,
	})

	alerts := det.ExamAlerts("exam-1", detection.AlertFilter{})
	require.Len(t, alerts, 1)
	assert.Equal(t, model.EventTabSwitch, alerts[0].AlertType)

	require.NotNil(t, resp.Status)
	assert.Equal(t, model.SeverityHigh, resp.Status.SeverityLevel)
	assert.Equal(t, 1, resp.Status.AlertCount)
	assert.Equal(t, model.SeverityHigh, resp.Assessment.RiskLevel)
}

func TestAssessSecurity_NonExamPathSkipsProctoring(t *testing.T) {
	svc, det := newTestService(time.Now().Add(time.Hour))

	resp := svc.AssessSecurity(model.SecurityContext{
		UserID:    "u1",
		SessionID: "s1",
		Role:      "student",
	}, model.AssessRequest{Action: "page_view"})

	assert.True(t, resp.Assessment.Allowed)
	assert.Nil(t, resp.Status)
	assert.Empty(t, det.ExamAlerts("exam-1", detection.AlertFilter{}))
}

func TestAssessSecurity_VelocityHeuristic(t *testing.T) {
	svc, _ := newTestService(time.Now().Add(time.Hour))
	pol := policy.Default()
	pol.VelocityLimit = 5
	svc.policy = pol

	sctx := model.SecurityContext{UserID: "u1", SessionID: "s1"}

	var last model.AssessResponse
	for i := 0; i < 7; i++ {
		last = svc.AssessSecurity(sctx, model.AssessRequest{Action: "page_view"})
	}

	assert.Contains(t, last.Assessment.Reasons, "anomalous request velocity")
	assert.Equal(t, model.SeverityMedium, last.Assessment.RiskLevel)
}

func TestSecurityStatus_LazyEndAfterExamWindow(t *testing.T) {
	end := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	svc, _ := newTestService(end)

	current := end.Add(-time.Hour)
	svc.now = func() time.Time { return current }

	svc.StartExamSecurity("exam-1", "u1", "s1", model.SessionConfig{})
	assert.Equal(t, StateActive, svc.SecurityStatus("exam-1", "u1", "s1").State)

	// past endTime + grace: ended on next access, no background timer
	current = end.Add(10 * time.Minute)
	assert.Equal(t, StateEnded, svc.SecurityStatus("exam-1", "u1", "s1").State)
}

func TestEndSession_Explicit(t *testing.T) {
	svc, det := newTestService(time.Now().Add(time.Hour))

	svc.StartExamSecurity("exam-1", "u1", "s1", model.SessionConfig{})
	svc.AssessSecurity(examContext("u1", "s1"), model.AssessRequest{
		ExamID: "exam-1", IsExam: true, Action: "proctoring_event", EventType: model.EventHeartbeat,
	})
	require.True(t, det.IsExamActive("exam-1", "u1", "s1"))

	svc.EndSession("exam-1", "u1", "s1", "submitted")

	status := svc.SecurityStatus("exam-1", "u1", "s1")
	require.NotNil(t, status)
	assert.Equal(t, StateEnded, status.State)
	assert.False(t, det.IsExamActive("exam-1", "u1", "s1"))

	// idempotent
	svc.EndSession("exam-1", "u1", "s1", "submitted")
}

func TestAssessSecurity_SubmitEndsSession(t *testing.T) {
	svc, _ := newTestService(time.Now().Add(time.Hour))

	svc.StartExamSecurity("exam-1", "u1", "s1", model.SessionConfig{})
	resp := svc.AssessSecurity(examContext("u1", "s1"), model.AssessRequest{
		ExamID: "exam-1", IsExam: true, Action: "submit_exam",
	})

	require.NotNil(t, resp.Status)
	assert.Equal(t, StateEnded, resp.Status.State)
}

func TestSecurityStatus_UnknownSession(t *testing.T) {
	svc, _ := newTestService(time.Now().Add(time.Hour))
	assert.Nil(t, svc.SecurityStatus("exam-1", "ghost", "none"))
}

func TestPrune_EvictsEndedAndIdleVelocity(t *testing.T) {
	svc, _ := newTestService(time.Now().Add(24 * time.Hour))
	base := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
	svc.now = func() time.Time { return base }

	svc.StartExamSecurity("exam-1", "u1", "s1", model.SessionConfig{})
	svc.EndSession("exam-1", "u1", "s1", "submit_exam")

	svc.StartExamSecurity("exam-1", "u2", "s2", model.SessionConfig{})

	// non-exam assessment leaves a velocity pseudo session behind
	svc.AssessSecurity(model.SecurityContext{UserID: "u3", SessionID: "s3"}, model.AssessRequest{Action: "page_view"})

	removed := svc.Prune(base.Add(time.Minute))

	assert.Equal(t, 2, removed)
	assert.Nil(t, svc.SecurityStatus("exam-1", "u1", "s1"))
	assert.NotNil(t, svc.SecurityStatus("exam-1", "u2", "s2"))
	assert.Equal(t, 1, svc.ActiveSessionCount())
}

func TestPrune_KeepsRecentEntries(t *testing.T) {
	svc, _ := newTestService(time.Now().Add(24 * time.Hour))
	base := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
	svc.now = func() time.Time { return base }

	svc.StartExamSecurity("exam-1", "u1", "s1", model.SessionConfig{})
	svc.EndSession("exam-1", "u1", "s1", "submit_exam")
	svc.AssessSecurity(model.SecurityContext{UserID: "u2", SessionID: "s2"}, model.AssessRequest{Action: "page_view"})

	// cutoff before anything happened: nothing is stale yet
	assert.Equal(t, 0, svc.Prune(base.Add(-time.Minute)))
	require.NotNil(t, svc.SecurityStatus("exam-1", "u1", "s1"))
}
