// Package detection classifies proctoring events into severity-ranked
// cheating alerts and keeps the per-exam alert store. Single events can raise
// an alert directly; low-severity events escalate only when their frequency
// inside a sliding window crosses the policy threshold.
package detection

import (
	"sync"
	"time"

	"github.com/examguard/integrity-backend/internal/policy"
	"github.com/examguard/integrity-backend/model"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// classification is the static rule for one event type.
type classification struct {
	severity    string
	action      string
	directAlert bool
}

// Event classification table. Pattern-escalation thresholds for the
// non-direct types live in the policy, not here.
var classifications = map[string]classification{
	model.EventTabSwitch:       {severity: model.SeverityHigh, action: model.ActionWarn, directAlert: true},
	model.EventFullscreenExit:  {severity: model.SeverityHigh, action: model.ActionWarn, directAlert: true},
	model.EventDevTools:        {severity: model.SeverityHigh, action: model.ActionWarn, directAlert: true},
	model.EventWindowBlur:      {severity: model.SeverityLow, action: model.ActionLog},
	model.EventFullscreenEnter: {severity: model.SeverityLow, action: model.ActionLog},
	model.EventHeartbeat:       {severity: model.SeverityLow, action: model.ActionLog},
	model.EventCopyPaste:       {severity: model.SeverityMedium, action: model.ActionBlock, directAlert: true},
	model.EventRightClick:      {severity: model.SeverityLow, action: model.ActionBlock, directAlert: true},
}

// AlertFilter narrows ExamAlerts results.
type AlertFilter struct {
	Severity  string
	StudentID string
}

// NotifyFunc receives each raised alert. Invoked outside the detector lock;
// must not block for long.
type NotifyFunc func(model.CheatingAlert)

// Detector is the cheating detection service. All state is process-local;
// mutations are atomic under the mutex so concurrent events from the same
// session cannot lose updates.
type Detector struct {
	mu             sync.Mutex
	alerts         map[string][]model.CheatingAlert // examID -> insertion order
	activeSessions map[string]time.Time             // session key -> last event
	window         *windowBuffer
	policy         *policy.Policy
	logger         *zap.Logger
	notify         NotifyFunc
	now            func() time.Time
}

// New creates a detector with the given policy. notify may be nil.
func New(pol *policy.Policy, logger *zap.Logger, notify NotifyFunc) *Detector {
	if pol == nil {
		pol = policy.Default()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Detector{
		alerts:         make(map[string][]model.CheatingAlert),
		activeSessions: make(map[string]time.Time),
		window:         newWindowBuffer(10 * time.Minute),
		policy:         pol,
		logger:         logger,
		notify:         notify,
		now:            time.Now,
	}
}

// Classify returns the severity and action for an event type. Unknown types
// degrade to a logged medium event so novel client signals are never dropped.
func Classify(eventType string) (severity, action string) {
	if c, ok := classifications[eventType]; ok {
		return c.severity, c.action
	}
	return model.SeverityMedium, model.ActionLog
}

// RecordEvent classifies and stores one proctoring event, raising zero or
// more alerts. The returned slice is the alerts raised by this event.
func (d *Detector) RecordEvent(ev model.ProctoringEvent) []model.CheatingAlert {
	if ev.Timestamp.IsZero() {
		ev.Timestamp = d.now()
	}

	c, known := classifications[ev.EventType]
	if !known {
		c = classification{severity: model.SeverityMedium, action: model.ActionLog}
	}
	ev.Severity = c.severity
	ev.Action = c.action

	sessionKey := ev.SessionKey()
	var raised []model.CheatingAlert

	d.mu.Lock()
	d.activeSessions[sessionKey] = ev.Timestamp

	if c.directAlert {
		raised = append(raised, d.appendAlertLocked(ev, ev.EventType, c.severity, ""))
	} else if rule, ok := d.policy.Escalation[ev.EventType]; ok && rule.Threshold > 0 {
		count := d.window.Add(sessionKey, ev.EventType, ev.Timestamp, rule.Window())
		if count == rule.Threshold {
			raised = append(raised, d.appendAlertLocked(
				ev,
				ev.EventType+"_pattern",
				model.SeverityHigh,
				"repeated "+ev.EventType+" events within escalation window",
			))
		}
	}
	d.mu.Unlock()

	for _, alert := range raised {
		d.logger.Warn("cheating alert raised",
			zap.String("exam_id", alert.ExamID),
			zap.String("user_id", alert.UserID),
			zap.String("alert_type", alert.AlertType),
			zap.String("severity", alert.Severity),
		)
		if d.notify != nil {
			d.notify(alert)
		}
	}
	return raised
}

// appendAlertLocked creates and stores an alert. Caller holds d.mu.
func (d *Detector) appendAlertLocked(ev model.ProctoringEvent, alertType, severity, message string) model.CheatingAlert {
	alert := model.CheatingAlert{
		ID:        uuid.New().String(),
		ExamID:    ev.ExamID,
		UserID:    ev.UserID,
		SessionID: ev.SessionID,
		AlertType: alertType,
		Severity:  severity,
		Message:   message,
		Timestamp: ev.Timestamp,
	}
	d.alerts[ev.ExamID] = append(d.alerts[ev.ExamID], alert)
	return alert
}

// ExamAlerts returns the exam's alerts in insertion order, filtered.
func (d *Detector) ExamAlerts(examID string, f AlertFilter) []model.CheatingAlert {
	d.mu.Lock()
	defer d.mu.Unlock()

	all := d.alerts[examID]
	out := make([]model.CheatingAlert, 0, len(all))
	for _, a := range all {
		if f.Severity != "" && a.Severity != f.Severity {
			continue
		}
		if f.StudentID != "" && a.UserID != f.StudentID {
			continue
		}
		out = append(out, a)
	}
	return out
}

// AlertSummary computes aggregate counts on read. Alert volume per exam is
// bounded by session count and event rate, so recomputation stays cheap.
func (d *Detector) AlertSummary(examID string) model.AlertSummary {
	d.mu.Lock()
	defer d.mu.Unlock()

	summary := model.AlertSummary{
		BySeverity: make(map[string]int),
		ByType:     make(map[string]int),
	}
	hourAgo := d.now().Add(-time.Hour)

	for _, a := range d.alerts[examID] {
		summary.Total++
		summary.BySeverity[a.Severity]++
		summary.ByType[a.AlertType]++
		if a.Timestamp.After(hourAgo) {
			summary.LastHour++
		}
		if a.Severity == model.SeverityCritical {
			summary.Critical++
		}
		if !a.Resolved {
			summary.Unresolved++
		}
	}
	return summary
}

// ResolveAlert toggles an alert's resolved flag. Returns false if unknown.
func (d *Detector) ResolveAlert(examID, alertID string) bool {
	d.mu.Lock()
	defer d.mu.Unlock()

	alerts := d.alerts[examID]
	for i := range alerts {
		if alerts[i].ID == alertID {
			alerts[i].Resolved = true
			return true
		}
	}
	return false
}

// IsExamActive reports whether the session has produced an event recently
// enough to count as live proctoring.
func (d *Detector) IsExamActive(examID, userID, sessionID string) bool {
	key := examID + "|" + userID + "|" + sessionID

	d.mu.Lock()
	defer d.mu.Unlock()

	last, ok := d.activeSessions[key]
	if !ok {
		return false
	}
	return d.now().Sub(last) <= d.policy.SessionGrace()
}

// EndSession marks a session inactive and drops its window buffers. Alerts
// are retained; only the live-tracking state goes away.
func (d *Detector) EndSession(examID, userID, sessionID string) {
	key := examID + "|" + userID + "|" + sessionID

	d.mu.Lock()
	delete(d.activeSessions, key)
	d.mu.Unlock()

	d.window.DropSession(key)
}
