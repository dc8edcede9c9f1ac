// Package model - API types for combining models in API requests/responses
package model

import "time"

// AssessRequest is the body of POST /security/assess. Schema-level validation
// happens upstream; fields arrive typed.
type AssessRequest struct {
	ExamID    string                 `json:"exam_id,omitempty"`
	IsExam    bool                   `json:"is_exam"`
	Action    string                 `json:"action"`
	EventType string                 `json:"event_type,omitempty"`
	Details   map[string]interface{} `json:"details,omitempty"`
	Config    *SessionConfig         `json:"config,omitempty"`
}

// SessionConfig carries per-session proctoring options supplied at start.
type SessionConfig struct {
	RequireFullscreen bool `json:"require_fullscreen"`
	BlockCopyPaste    bool `json:"block_copy_paste"`
	HeartbeatSeconds  int  `json:"heartbeat_seconds,omitempty"`
}

// AssessResponse wraps the assessment plus the optional session status.
type AssessResponse struct {
	Success    bool               `json:"success"`
	Assessment SecurityAssessment `json:"assessment"`
	Status     *SecurityStatus    `json:"status,omitempty"`
	Timestamp  time.Time          `json:"timestamp"`
}

// Pagination describes the page of a list response.
type Pagination struct {
	Limit  int `json:"limit"`
	Offset int `json:"offset"`
	Total  int `json:"total"`
}

// AlertsResponse is the paginated alert list plus its summary block.
type AlertsResponse struct {
	Success    bool            `json:"success"`
	Alerts     []CheatingAlert `json:"alerts"`
	Summary    AlertSummary    `json:"summary"`
	Pagination Pagination      `json:"pagination"`
}

// TimingDetails explains a time-window guard rejection on activate.
type TimingDetails struct {
	StartTime   time.Time `json:"start_time"`
	EndTime     time.Time `json:"end_time"`
	CurrentTime time.Time `json:"current_time"`
}

// TransitionResponse is the body returned by lifecycle endpoints.
type TransitionResponse struct {
	Success bool           `json:"success"`
	Message string         `json:"message"`
	State   string         `json:"state,omitempty"`
	Details []string       `json:"details,omitempty"`
	Timing  *TimingDetails `json:"timing,omitempty"`
}

// StudentQuestion is a question as delivered to a student: answers stripped,
// options already in the student's deterministic order.
type StudentQuestion struct {
	Key      string   `json:"_key"`
	Text     string   `json:"text"`
	Type     string   `json:"type"`
	Options  []string `json:"options,omitempty"`
	Marks    int      `json:"marks"`
	Position int      `json:"position"`
}
