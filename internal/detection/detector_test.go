package detection

import (
	"testing"
	"time"

	"github.com/examguard/integrity-backend/internal/policy"
	"github.com/examguard/integrity-backend/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func event(examID, userID, sessionID, eventType string, at time.Time) model.ProctoringEvent {
	return model.ProctoringEvent{
		ExamID:    examID,
		UserID:    userID,
		SessionID: sessionID,
		EventType: eventType,
		Timestamp: at,
	}
}

func TestRecordEvent_DirectAlerts(t *testing.T) {
	d := New(nil, nil, nil)
	now := time.Now()

	for _, tc := range []struct {
		eventType string
		severity  string
	}{
		{model.EventTabSwitch, model.SeverityHigh},
		{model.EventFullscreenExit, model.SeverityHigh},
		{model.EventDevTools, model.SeverityHigh},
		{model.EventCopyPaste, model.SeverityMedium},
		{model.EventRightClick, model.SeverityLow},
	} {
		raised := d.RecordEvent(event("exam-1", "u1", "s1", tc.eventType, now))
		require.Len(t, raised, 1, tc.eventType)
		assert.Equal(t, tc.severity, raised[0].Severity, tc.eventType)
		assert.Equal(t, tc.eventType, raised[0].AlertType)
	}

	alerts := d.ExamAlerts("exam-1", AlertFilter{})
	assert.Len(t, alerts, 5)
}

func TestRecordEvent_LogOnlyEventsDoNotAlert(t *testing.T) {
	d := New(nil, nil, nil)
	now := time.Now()

	assert.Empty(t, d.RecordEvent(event("exam-1", "u1", "s1", model.EventHeartbeat, now)))
	assert.Empty(t, d.RecordEvent(event("exam-1", "u1", "s1", model.EventWindowBlur, now)))
	assert.Empty(t, d.ExamAlerts("exam-1", AlertFilter{}))
}

func TestRecordEvent_WindowBlurEscalation(t *testing.T) {
	d := New(nil, nil, nil)
	base := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)

	assert.Empty(t, d.RecordEvent(event("exam-1", "u1", "s1", model.EventWindowBlur, base)))
	assert.Empty(t, d.RecordEvent(event("exam-1", "u1", "s1", model.EventWindowBlur, base.Add(20*time.Second))))

	raised := d.RecordEvent(event("exam-1", "u1", "s1", model.EventWindowBlur, base.Add(40*time.Second)))
	require.Len(t, raised, 1)
	assert.Equal(t, "window_blur_pattern", raised[0].AlertType)
	assert.Equal(t, model.SeverityHigh, raised[0].Severity)
}

func TestRecordEvent_EscalationRespectsWindow(t *testing.T) {
	d := New(nil, nil, nil)
	base := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)

	// spaced beyond the 60s window: never three inside one window
	d.RecordEvent(event("exam-1", "u1", "s1", model.EventWindowBlur, base))
	d.RecordEvent(event("exam-1", "u1", "s1", model.EventWindowBlur, base.Add(61*time.Second)))
	d.RecordEvent(event("exam-1", "u1", "s1", model.EventWindowBlur, base.Add(122*time.Second)))

	assert.Empty(t, d.ExamAlerts("exam-1", AlertFilter{}))
}

func TestRecordEvent_EscalationPerSession(t *testing.T) {
	d := New(nil, nil, nil)
	base := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)

	// two blurs each on two sessions: neither crosses the threshold
	d.RecordEvent(event("exam-1", "u1", "s1", model.EventWindowBlur, base))
	d.RecordEvent(event("exam-1", "u1", "s1", model.EventWindowBlur, base.Add(time.Second)))
	d.RecordEvent(event("exam-1", "u2", "s2", model.EventWindowBlur, base))
	d.RecordEvent(event("exam-1", "u2", "s2", model.EventWindowBlur, base.Add(time.Second)))

	assert.Empty(t, d.ExamAlerts("exam-1", AlertFilter{}))
}

func TestRecordEvent_TunableThreshold(t *testing.T) {
	pol := policy.Default()
	pol.Escalation["window_blur"] = policy.EscalationRule{Threshold: 2, WindowSeconds: 30}
	d := New(pol, nil, nil)
	base := time.Now()

	d.RecordEvent(event("exam-1", "u1", "s1", model.EventWindowBlur, base))
	raised := d.RecordEvent(event("exam-1", "u1", "s1", model.EventWindowBlur, base.Add(10*time.Second)))

	require.Len(t, raised, 1)
}

func TestExamAlerts_Filters(t *testing.T) {
	d := New(nil, nil, nil)
	now := time.Now()

	d.RecordEvent(event("exam-1", "u1", "s1", model.EventTabSwitch, now))
	d.RecordEvent(event("exam-1", "u2", "s2", model.EventCopyPaste, now))
	d.RecordEvent(event("exam-1", "u2", "s2", model.EventDevTools, now))
	d.RecordEvent(event("exam-2", "u1", "s3", model.EventTabSwitch, now))

	assert.Len(t, d.ExamAlerts("exam-1", AlertFilter{}), 3)
	assert.Len(t, d.ExamAlerts("exam-1", AlertFilter{StudentID: "u2"}), 2)
	assert.Len(t, d.ExamAlerts("exam-1", AlertFilter{Severity: model.SeverityHigh}), 2)
	assert.Len(t, d.ExamAlerts("exam-1", AlertFilter{Severity: model.SeverityMedium, StudentID: "u2"}), 1)
	assert.Empty(t, d.ExamAlerts("exam-3", AlertFilter{}))
}

func TestAlertSummary(t *testing.T) {
	d := New(nil, nil, nil)
	now := time.Now()

	d.RecordEvent(event("exam-1", "u1", "s1", model.EventTabSwitch, now.Add(-2*time.Hour)))
	d.RecordEvent(event("exam-1", "u1", "s1", model.EventTabSwitch, now))
	d.RecordEvent(event("exam-1", "u2", "s2", model.EventCopyPaste, now))

	s := d.AlertSummary("exam-1")
	assert.Equal(t, 3, s.Total)
	assert.Equal(t, 2, s.BySeverity[model.SeverityHigh])
	assert.Equal(t, 1, s.BySeverity[model.SeverityMedium])
	assert.Equal(t, 2, s.ByType[model.EventTabSwitch])
	assert.Equal(t, 2, s.LastHour)
	assert.Equal(t, 0, s.Critical)
	assert.Equal(t, 3, s.Unresolved)
}

func TestResolveAlert(t *testing.T) {
	d := New(nil, nil, nil)

	raised := d.RecordEvent(event("exam-1", "u1", "s1", model.EventTabSwitch, time.Now()))
	require.Len(t, raised, 1)

	assert.True(t, d.ResolveAlert("exam-1", raised[0].ID))
	assert.False(t, d.ResolveAlert("exam-1", "missing"))
	assert.False(t, d.ResolveAlert("exam-9", raised[0].ID))

	assert.Equal(t, 0, d.AlertSummary("exam-1").Unresolved)
}

func TestIsExamActive(t *testing.T) {
	d := New(nil, nil, nil)

	assert.False(t, d.IsExamActive("exam-1", "u1", "s1"))

	d.RecordEvent(event("exam-1", "u1", "s1", model.EventHeartbeat, time.Now()))
	assert.True(t, d.IsExamActive("exam-1", "u1", "s1"))

	d.EndSession("exam-1", "u1", "s1")
	assert.False(t, d.IsExamActive("exam-1", "u1", "s1"))
}

func TestRecordEvent_NotifyHook(t *testing.T) {
	var got []model.CheatingAlert
	d := New(nil, nil, func(a model.CheatingAlert) { got = append(got, a) })

	d.RecordEvent(event("exam-1", "u1", "s1", model.EventHeartbeat, time.Now()))
	d.RecordEvent(event("exam-1", "u1", "s1", model.EventDevTools, time.Now()))

	require.Len(t, got, 1)
	assert.Equal(t, model.EventDevTools, got[0].AlertType)
}
