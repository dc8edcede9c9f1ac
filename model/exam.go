// Package model provides data models for the exam integrity backend.
package model

import (
	"time"
)

// Exam lifecycle states. Completed is derived from the exam window, never stored.
const (
	StateDraft     = "draft"
	StatePublished = "published"
	StateActive    = "active"
	StateCompleted = "completed"
)

// Question type discriminators
const (
	QuestionMultipleChoice = "multiple_choice"
	QuestionTrueFalse      = "true_false"
	QuestionShortAnswer    = "short_answer"
)

// Exam represents an exam document. The lifecycle flags is_published/is_active
// are the only fields this service writes back.
type Exam struct {
	Key             string    `json:"_key,omitempty"`
	Title           string    `json:"title"`
	Description     string    `json:"description,omitempty"`
	CollegeID       string    `json:"college_id"`
	IsPublished     bool      `json:"is_published"`
	IsActive        bool      `json:"is_active"`
	WasActivated    bool      `json:"was_activated"` // distinguishes Deactivated from freshly Published
	StartTime       time.Time `json:"start_time"`
	EndTime         time.Time `json:"end_time"`
	DurationMinutes int       `json:"duration_minutes"`
	TotalMarks      int       `json:"total_marks"`
	PassingMarks    int       `json:"passing_marks"`
	CreatedBy       string    `json:"created_by"`
	CreatedAt       time.Time `json:"created_at"`
	UpdatedAt       time.Time `json:"updated_at"`
}

// Question represents a single exam question. Options is a serialized JSON
// array so the stored shape survives schema drift in authoring tools; the
// randomization engine parses it defensively.
type Question struct {
	Key           string `json:"_key,omitempty"`
	ExamID        string `json:"exam_id"`
	Text          string `json:"text"`
	Type          string `json:"type"`
	Options       string `json:"options,omitempty"`
	CorrectAnswer string `json:"correct_answer,omitempty"`
	Marks         int    `json:"marks"`
	Position      int    `json:"position"`
}

// Attempt represents a student's attempt row. Only the status matters to this
// service (in-progress attempts block unpublish/deactivate).
type Attempt struct {
	Key         string     `json:"_key,omitempty"`
	ExamID      string     `json:"exam_id"`
	UserID      string     `json:"user_id"`
	SessionID   string     `json:"session_id"`
	Status      string     `json:"status"` // in_progress, submitted, completed
	StartedAt   time.Time  `json:"started_at"`
	SubmittedAt *time.Time `json:"submitted_at,omitempty"`
}

// LifecycleState derives the exam's lifecycle state at the given instant.
// Completed is computed, not stored, so stored and derived truth cannot drift.
func (e *Exam) LifecycleState(now time.Time) string {
	if e.IsPublished && e.IsCompleted(now) {
		return StateCompleted
	}
	if e.IsActive {
		return StateActive
	}
	if e.IsPublished {
		return StatePublished
	}
	return StateDraft
}

// WindowOpen reports whether now falls inside the exam's scheduled window.
func (e *Exam) WindowOpen(now time.Time) bool {
	return !now.Before(e.StartTime) && now.Before(e.EndTime)
}

// IsCompleted reports whether the exam window has closed.
func (e *Exam) IsCompleted(now time.Time) bool {
	return now.After(e.EndTime)
}
