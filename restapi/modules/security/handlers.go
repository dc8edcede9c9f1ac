// Package security implements the REST handlers for security assessment and
// session status.
package security

import (
	"time"

	"github.com/examguard/integrity-backend/internal/session"
	"github.com/examguard/integrity-backend/model"
	"github.com/examguard/integrity-backend/restapi/modules/auth"
	"github.com/gofiber/fiber/v2"
)

// Deps bundles what the security handlers need.
type Deps struct {
	Sessions *session.Service
}

// Assess handles POST /security/assess. The generic assessment runs for any
// authenticated request; the proctoring path engages only for exam traffic.
func Assess(d Deps) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var req model.AssessRequest
		if err := c.BodyParser(&req); err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"success": false,
				"message": "Invalid request body: " + err.Error(),
			})
		}

		sctx := auth.SecurityContextFromCtx(c)
		sctx.ExamID = req.ExamID
		sctx.IsExam = req.IsExam

		resp := d.Sessions.AssessSecurity(sctx, req)
		return c.JSON(resp)
	}
}

// Status handles GET /security/status. Students see their own session;
// instructors and admins may inspect any student's via the userId param.
func Status(d Deps) fiber.Handler {
	return func(c *fiber.Ctx) error {
		examID := c.Query("examId")
		sessionID := c.Query("sessionId")
		if examID == "" || sessionID == "" {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"success": false,
				"message": "examId and sessionId are required",
			})
		}

		sctx := auth.SecurityContextFromCtx(c)
		userID := sctx.UserID
		if requested := c.Query("userId"); requested != "" && requested != userID {
			viewer := model.ViewerFromClaims(sctx.UserID, sctx.Role, sctx.CollegeID)
			if !viewer.CanViewAlerts() {
				return c.Status(fiber.StatusForbidden).JSON(fiber.Map{
					"success": false,
					"message": "Insufficient permissions",
				})
			}
			userID = requested
		}

		status := d.Sessions.SecurityStatus(examID, userID, sessionID)
		if status == nil {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
				"success": false,
				"message": "no security session for this exam and session",
			})
		}

		return c.JSON(fiber.Map{
			"success":   true,
			"status":    status,
			"timestamp": time.Now(),
		})
	}
}
