// Package exams implements student-facing exam delivery: the deterministic
// per-student question and option ordering.
package exams

import (
	"time"

	"github.com/examguard/integrity-backend/database"
	"github.com/examguard/integrity-backend/model"
	"github.com/examguard/integrity-backend/util"
	"github.com/gofiber/fiber/v2"
)

// Deps bundles what the exam delivery handlers need.
type Deps struct {
	DB database.DBConnection
}

// StudentQuestions handles GET /exams/:id/questions. Question order and
// multiple-choice option order are permuted per (exam, student) pair; the same
// student always sees the same order, two students almost never do. Correct
// answers are stripped before anything leaves the server.
func StudentQuestions(d Deps) fiber.Handler {
	return func(c *fiber.Ctx) error {
		examID := c.Params("id")

		userID, _ := c.Locals("user_id").(string)
		role, _ := c.Locals("role").(string)
		collegeID, _ := c.Locals("college_id").(string)
		viewer := model.ViewerFromClaims(userID, role, collegeID)

		studentID := userID
		if override := c.Query("studentId"); override != "" {
			if !viewer.CanManageExams() {
				return c.Status(fiber.StatusForbidden).JSON(fiber.Map{
					"success": false,
					"message": "cannot preview another student's ordering",
				})
			}
			studentID = override
		}
		if studentID == "" {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"success": false,
				"message": "student identity required",
			})
		}

		exam, err := database.FindExam(c.Context(), d.DB, examID)
		if err != nil {
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
				"success": false,
				"message": "failed to fetch exam",
			})
		}
		if exam == nil {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
				"success": false,
				"message": "exam not found",
			})
		}

		// Tenant scoping: instructors stay inside their college, admins cross.
		if !viewer.SameCollege(exam.CollegeID) {
			return c.Status(fiber.StatusForbidden).JSON(fiber.Map{
				"success": false,
				"message": "exam belongs to another college",
			})
		}

		// Students only receive questions while the exam is running.
		// Instructors and admins may preview at any point.
		if !viewer.CanManageExams() {
			if !exam.IsActive || !exam.WindowOpen(time.Now().UTC()) {
				return c.Status(fiber.StatusConflict).JSON(fiber.Map{
					"success": false,
					"message": "exam is not currently active",
				})
			}
		}

		questions, err := database.FetchExamQuestions(c.Context(), d.DB, examID)
		if err != nil {
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
				"success": false,
				"message": "failed to fetch questions",
			})
		}

		ordered := util.ShuffledOrder(questions, examID, studentID)
		out := make([]model.StudentQuestion, 0, len(ordered))
		for i, q := range ordered {
			sq := model.StudentQuestion{
				Key:      q.Key,
				Text:     q.Text,
				Type:     q.Type,
				Marks:    q.Marks,
				Position: i + 1,
			}
			if q.Type == model.QuestionMultipleChoice {
				shuffled := util.ShuffleSerializedOptions(q.Options, examID, studentID)
				sq.Options = util.ParseOptions(shuffled)
			}
			out = append(out, sq)
		}

		return c.JSON(fiber.Map{
			"success":   true,
			"exam_id":   examID,
			"questions": out,
		})
	}
}
