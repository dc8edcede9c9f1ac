// Package lifecycle implements the exam lifecycle state machine:
// publish/unpublish/activate/deactivate transitions with readiness guards.
package lifecycle

import (
	"context"
	"time"

	"github.com/examguard/integrity-backend/database"
	"github.com/examguard/integrity-backend/internal/audit"
	"github.com/examguard/integrity-backend/model"
	"github.com/gofiber/fiber/v2"
)

// loadSnapshot reads the exam, its question set, and the in-progress attempt
// count. The question read is one query, so guards never validate against a
// half-updated question set.
func loadSnapshot(ctx context.Context, db database.DBConnection, examID string) (*Snapshot, error) {
	exam, err := database.FindExam(ctx, db, examID)
	if err != nil {
		return nil, err
	}
	if exam == nil {
		return nil, nil
	}

	questions, err := database.FetchExamQuestions(ctx, db, examID)
	if err != nil {
		return nil, err
	}

	attempts, err := database.CountInProgressAttempts(ctx, db, examID)
	if err != nil {
		return nil, err
	}

	return &Snapshot{Exam: *exam, Questions: questions, InProgressAttempts: attempts}, nil
}

// transitionHandler builds the shared handler for one lifecycle action.
func transitionHandler(d Deps, action string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		examID := c.Params("id")
		actor, _ := c.Locals("username").(string)
		ctx := context.Background()
		now := time.Now()

		snap, err := loadSnapshot(ctx, d.DB, examID)
		if err != nil {
			if d.Audit != nil {
				d.Audit.Log(audit.LevelError, audit.CategoryAdmin, action+"_failed", actor, c.IP(), map[string]interface{}{
					"exam_id": examID,
					"error":   err.Error(),
				})
			}
			return c.Status(fiber.StatusInternalServerError).JSON(model.TransitionResponse{
				Success: false,
				Message: "failed to load exam",
			})
		}
		if snap == nil {
			return c.Status(fiber.StatusNotFound).JSON(model.TransitionResponse{
				Success: false,
				Message: "exam not found",
			})
		}

		outcome := Evaluate(action, *snap, now)
		if !outcome.Success {
			return c.Status(outcome.Code).JSON(model.TransitionResponse{
				Success: false,
				Message: outcome.Message,
				Details: outcome.Details,
				Timing:  outcome.Timing,
			})
		}

		if err := database.UpdateExamFlags(ctx, d.DB, examID, outcome.Published, outcome.Active, outcome.WasActivated); err != nil {
			if d.Audit != nil {
				d.Audit.Log(audit.LevelError, audit.CategoryAdmin, action+"_failed", actor, c.IP(), map[string]interface{}{
					"exam_id": examID,
					"error":   err.Error(),
				})
			}
			return c.Status(fiber.StatusInternalServerError).JSON(model.TransitionResponse{
				Success: false,
				Message: "failed to persist exam state",
			})
		}

		// Administrative record for the successful transition. Best-effort:
		// the transition itself already succeeded.
		record := model.ActivityRecord{
			ExamID:          examID,
			Actor:           actor,
			Action:          action,
			PublishedBefore: snap.Exam.IsPublished,
			PublishedAfter:  outcome.Published,
			ActiveBefore:    snap.Exam.IsActive,
			ActiveAfter:     outcome.Active,
			Timestamp:       now.UTC(),
		}
		if err := database.InsertActivityRecord(ctx, d.DB, record); err != nil && d.Audit != nil {
			d.Audit.Log(audit.LevelWarning, audit.CategoryAdmin, "activity_record_failed", actor, c.IP(), map[string]interface{}{
				"exam_id": examID,
				"action":  action,
			})
		}

		updated := snap.Exam
		updated.IsPublished = outcome.Published
		updated.IsActive = outcome.Active
		state := updated.LifecycleState(now)

		if d.Audit != nil {
			d.Audit.Log(audit.LevelInfo, audit.CategoryAdmin, "exam_"+action, actor, c.IP(), map[string]interface{}{
				"exam_id": examID,
				"state":   state,
			})
		}
		if d.Dispatcher != nil {
			d.Dispatcher.NotifyLifecycleChange(examID, action, actor, state, nil)
		}

		return c.JSON(model.TransitionResponse{
			Success: true,
			Message: outcome.Message,
			State:   state,
		})
	}
}

// PublishExam handles POST /exams/:id/publish
func PublishExam(d Deps) fiber.Handler {
	return transitionHandler(d, ActionPublish)
}

// UnpublishExam handles DELETE /exams/:id/publish
func UnpublishExam(d Deps) fiber.Handler {
	return transitionHandler(d, ActionUnpublish)
}

// ActivateExam handles POST /exams/:id/activate
func ActivateExam(d Deps) fiber.Handler {
	return transitionHandler(d, ActionActivate)
}

// DeactivateExam handles DELETE /exams/:id/activate
func DeactivateExam(d Deps) fiber.Handler {
	return transitionHandler(d, ActionDeactivate)
}
