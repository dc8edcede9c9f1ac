package model

import "time"

// ActivityRecord is an append-only administrative record written for every
// successful lifecycle transition.
type ActivityRecord struct {
	Key             string    `json:"_key,omitempty"`
	ExamID          string    `json:"exam_id"`
	Actor           string    `json:"actor"`
	Action          string    `json:"action"` // publish, unpublish, activate, deactivate
	PublishedBefore bool      `json:"published_before"`
	PublishedAfter  bool      `json:"published_after"`
	ActiveBefore    bool      `json:"active_before"`
	ActiveAfter     bool      `json:"active_after"`
	Timestamp       time.Time `json:"timestamp"`
	Details         string    `json:"details,omitempty"`
}
