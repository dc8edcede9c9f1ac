package lifecycle

import (
	"fmt"
	"time"

	"github.com/examguard/integrity-backend/model"
	"github.com/examguard/integrity-backend/util"
	"github.com/gofiber/fiber/v2"
)

// ValidatePublish checks every publish guard and returns all violations, not
// just the first. An empty slice means the exam is publishable.
func ValidatePublish(exam model.Exam, questions []model.Question, now time.Time) []string {
	var violations []string

	if len(questions) == 0 {
		violations = append(violations, "exam must have at least one question")
	}

	for _, q := range questions {
		if q.Marks <= 0 {
			violations = append(violations, fmt.Sprintf("question %s must have positive marks", q.Key))
		}
		switch q.Type {
		case model.QuestionMultipleChoice:
			options := util.ParseOptions(q.Options)
			if len(options) < 2 {
				violations = append(violations, fmt.Sprintf("multiple-choice question %s must have at least 2 options", q.Key))
			}
			if util.IsEmpty(q.CorrectAnswer) {
				violations = append(violations, fmt.Sprintf("multiple-choice question %s must have a correct option", q.Key))
			}
		case model.QuestionTrueFalse, model.QuestionShortAnswer:
			if util.IsEmpty(q.CorrectAnswer) {
				violations = append(violations, fmt.Sprintf("question %s must have a correct answer", q.Key))
			}
		}
	}

	if !exam.EndTime.After(now) {
		violations = append(violations, "exam end time must be in the future")
	}
	if !exam.EndTime.After(exam.StartTime) {
		violations = append(violations, "exam end time must be after start time")
	}
	if exam.TotalMarks <= 0 {
		violations = append(violations, "total marks must be positive")
	}
	if exam.PassingMarks > exam.TotalMarks {
		violations = append(violations, "passing marks cannot exceed total marks")
	}

	return violations
}

// Evaluate applies the state machine to a snapshot. Pure: persistence happens
// in the handler only after a successful outcome.
func Evaluate(action string, snap Snapshot, now time.Time) Outcome {
	exam := snap.Exam

	switch action {
	case ActionPublish:
		if exam.IsPublished {
			return Outcome{Code: fiber.StatusConflict, Message: "exam is already published"}
		}
		if violations := ValidatePublish(exam, snap.Questions, now); len(violations) > 0 {
			return Outcome{
				Code:    fiber.StatusBadRequest,
				Message: "exam failed publish validation",
				Details: violations,
			}
		}
		return Outcome{
			Code: fiber.StatusOK, Success: true,
			Message:      "exam published",
			Published:    true,
			WasActivated: exam.WasActivated,
		}

	case ActionUnpublish:
		if !exam.IsPublished {
			return Outcome{Code: fiber.StatusConflict, Message: "exam is not published"}
		}
		if exam.IsActive {
			return Outcome{Code: fiber.StatusConflict, Message: "active exam cannot be unpublished"}
		}
		if snap.InProgressAttempts > 0 {
			return Outcome{
				Code:    fiber.StatusConflict,
				Message: fmt.Sprintf("%d attempts in progress", snap.InProgressAttempts),
			}
		}
		return Outcome{
			Code: fiber.StatusOK, Success: true,
			Message: "exam unpublished",
		}

	case ActionActivate:
		if !exam.IsPublished {
			return Outcome{
				Code:    fiber.StatusBadRequest,
				Message: "exam must be published before activation",
				Details: []string{"exam is not published"},
			}
		}
		if exam.IsActive {
			return Outcome{Code: fiber.StatusConflict, Message: "exam is already active"}
		}
		if !exam.WindowOpen(now) {
			return Outcome{
				Code:    fiber.StatusBadRequest,
				Message: "exam is outside its scheduled window",
				Timing: &model.TimingDetails{
					StartTime:   exam.StartTime,
					EndTime:     exam.EndTime,
					CurrentTime: now,
				},
			}
		}
		return Outcome{
			Code: fiber.StatusOK, Success: true,
			Message:      "exam activated",
			Published:    true,
			Active:       true,
			WasActivated: true,
		}

	case ActionDeactivate:
		if !exam.IsActive {
			return Outcome{Code: fiber.StatusConflict, Message: "exam is not active"}
		}
		if snap.InProgressAttempts > 0 {
			return Outcome{
				Code:    fiber.StatusConflict,
				Message: fmt.Sprintf("%d attempts in progress", snap.InProgressAttempts),
			}
		}
		return Outcome{
			Code: fiber.StatusOK, Success: true,
			Message:      "exam deactivated",
			Published:    true,
			WasActivated: true,
		}

	default:
		return Outcome{Code: fiber.StatusBadRequest, Message: "unknown lifecycle action: " + action}
	}
}
