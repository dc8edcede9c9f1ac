// Package alerts implements the REST handlers for cheating alert listing and
// resolution.
package alerts

import (
	"github.com/examguard/integrity-backend/internal/detection"
	"github.com/examguard/integrity-backend/model"
	"github.com/examguard/integrity-backend/util"
	"github.com/gofiber/fiber/v2"
)

const maxPageSize = 100

// Deps bundles what the alert handlers need.
type Deps struct {
	Detector *detection.Detector
}

// ListExamAlerts handles GET /exams/:id/alerts with pagination, severity and
// student filters, plus the on-read summary block.
func ListExamAlerts(d Deps) fiber.Handler {
	return func(c *fiber.Ctx) error {
		examID := c.Params("id")

		filter := detection.AlertFilter{
			Severity:  c.Query("severity"),
			StudentID: c.Query("studentId"),
		}
		limit := util.ClampLimit(util.ParseIntOrDefault(c.Query("limit"), 20), maxPageSize)
		offset := util.ParseIntOrDefault(c.Query("offset"), 0)

		all := d.Detector.ExamAlerts(examID, filter)
		total := len(all)

		start := offset
		if start > total {
			start = total
		}
		end := start + limit
		if end > total {
			end = total
		}
		page := all[start:end]
		if page == nil {
			page = []model.CheatingAlert{}
		}

		return c.JSON(model.AlertsResponse{
			Success: true,
			Alerts:  page,
			Summary: d.Detector.AlertSummary(examID),
			Pagination: model.Pagination{
				Limit:  limit,
				Offset: offset,
				Total:  total,
			},
		})
	}
}

// ResolveAlert handles PATCH /exams/:id/alerts/:alertId/resolve.
func ResolveAlert(d Deps) fiber.Handler {
	return func(c *fiber.Ctx) error {
		examID := c.Params("id")
		alertID := c.Params("alertId")

		if !d.Detector.ResolveAlert(examID, alertID) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
				"success": false,
				"message": "alert not found",
			})
		}

		return c.JSON(fiber.Map{
			"success": true,
			"message": "alert resolved",
		})
	}
}
