// Package proctoring handles notification event production for exam
// lifecycle and security changes, and consumption of client proctoring
// events arriving over Kafka.
package proctoring

import (
	"time"

	"github.com/examguard/integrity-backend/model"
)

// Notification types. Observers switch on Type; payload fields are typed so
// no one has to inspect free-form strings.
const (
	TypeLifecycleChanged = "exam.lifecycle.changed"
	TypeSecurityAlert    = "exam.security.alert"
)

// NotificationEvent is the envelope published to the notification topic.
type NotificationEvent struct {
	Type          string                 `json:"type"`
	EventID       string                 `json:"event_id"`
	EventTime     time.Time              `json:"event_time"`
	SchemaVersion string                 `json:"schema_version"`
	Lifecycle     *LifecycleChange       `json:"lifecycle,omitempty"`
	Alert         *model.CheatingAlert   `json:"alert,omitempty"`
	Details       map[string]interface{} `json:"details,omitempty"`
}

// LifecycleChange describes one exam lifecycle transition.
type LifecycleChange struct {
	ExamID string `json:"exam_id"`
	Action string `json:"action"`
	Actor  string `json:"actor"`
	State  string `json:"state"`
}

// InboundEvent is the contract for client proctoring events consumed from
// the proctoring topic. Mirrors the HTTP assess body.
type InboundEvent struct {
	ExamID    string                 `json:"exam_id"`
	UserID    string                 `json:"user_id"`
	SessionID string                 `json:"session_id"`
	EventType string                 `json:"event_type"`
	Action    string                 `json:"action"`
	Details   map[string]interface{} `json:"details,omitempty"`
	Timestamp time.Time              `json:"timestamp"`
}
