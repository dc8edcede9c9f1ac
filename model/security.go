package model

import (
	"time"
)

// Proctoring event types reported by the exam client.
const (
	EventTabSwitch       = "tab_switch"
	EventWindowBlur      = "window_blur"
	EventFullscreenExit  = "fullscreen_exit"
	EventFullscreenEnter = "fullscreen_enter"
	EventCopyPaste       = "copy_paste"
	EventRightClick      = "right_click"
	EventDevTools        = "dev_tools"
	EventHeartbeat       = "heartbeat"
)

// Severity levels for events and alerts.
const (
	SeverityLow      = "low"
	SeverityMedium   = "medium"
	SeverityHigh     = "high"
	SeverityCritical = "critical"
)

// Actions taken in response to an event.
const (
	ActionLog   = "log"
	ActionWarn  = "warn"
	ActionBlock = "block"
)

// SecurityContext is the ephemeral per-request identity and transport context.
// It is rebuilt on every call from the caller's claims plus headers/cookies and
// never persisted.
type SecurityContext struct {
	UserID    string `json:"user_id"`
	SessionID string `json:"session_id"`
	IPAddress string `json:"ip_address"`
	UserAgent string `json:"user_agent"`
	CollegeID string `json:"college_id"`
	Role      string `json:"role"`
	ExamID    string `json:"exam_id,omitempty"`
	IsExam    bool   `json:"is_exam"`
}

// ProctoringEvent is a single client-reported behavioral signal during an
// exam attempt. Immutable once recorded.
type ProctoringEvent struct {
	ExamID    string                 `json:"exam_id"`
	UserID    string                 `json:"user_id"`
	SessionID string                 `json:"session_id"`
	EventType string                 `json:"event_type"`
	Severity  string                 `json:"severity"`
	Details   map[string]interface{} `json:"details,omitempty"`
	Action    string                 `json:"action"`
	Timestamp time.Time              `json:"timestamp"`
}

// SessionKey returns the composite key identifying the owning security session.
func (e *ProctoringEvent) SessionKey() string {
	return e.ExamID + "|" + e.UserID + "|" + e.SessionID
}

// CheatingAlert is derived from one or more proctoring events once an
// escalation rule fires. Alerts are never deleted; Resolved is the only
// mutable field.
type CheatingAlert struct {
	ID        string    `json:"id"`
	ExamID    string    `json:"exam_id"`
	UserID    string    `json:"user_id"`
	SessionID string    `json:"session_id"`
	AlertType string    `json:"alert_type"`
	Severity  string    `json:"severity"`
	Message   string    `json:"message,omitempty"`
	Timestamp time.Time `json:"timestamp"`
	Resolved  bool      `json:"resolved"`
}

// AlertSummary holds aggregate counts for an exam's alerts, computed on read.
type AlertSummary struct {
	Total      int            `json:"total"`
	BySeverity map[string]int `json:"by_severity"`
	ByType     map[string]int `json:"by_type"`
	LastHour   int            `json:"last_hour"`
	Critical   int            `json:"critical"`
	Unresolved int            `json:"unresolved"`
}

// SecurityStatus is the externally visible snapshot of a security session.
type SecurityStatus struct {
	ExamID        string         `json:"exam_id"`
	UserID        string         `json:"user_id"`
	SessionID     string         `json:"session_id"`
	State         string         `json:"state"`
	StartedAt     time.Time      `json:"started_at"`
	LastHeartbeat time.Time      `json:"last_heartbeat"`
	EventCounts   map[string]int `json:"event_counts"`
	SeverityLevel string         `json:"severity_level"`
	AlertCount    int            `json:"alert_count"`
}

// SecurityAssessment is the outcome of a generic security evaluation. It is
// produced for every authenticated request, not only exam traffic.
type SecurityAssessment struct {
	Allowed   bool      `json:"allowed"`
	RiskLevel string    `json:"risk_level"`
	Reasons   []string  `json:"reasons,omitempty"`
	Timestamp time.Time `json:"timestamp"`
}
