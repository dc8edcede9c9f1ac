// Package auditlog exposes the in-process audit buffer over REST. Both
// endpoints are admin-only; the role gate lives in the router.
package auditlog

import (
	"fmt"
	"time"

	"github.com/examguard/integrity-backend/internal/audit"
	"github.com/examguard/integrity-backend/util"
	"github.com/gofiber/fiber/v2"
)

const maxPageSize = 500

// Deps bundles what the audit handlers need.
type Deps struct {
	Audit *audit.Logger
}

func filterFromQuery(c *fiber.Ctx) audit.Filter {
	f := audit.Filter{
		Category: c.Query("category"),
		Level:    c.Query("level"),
		UserID:   c.Query("userId"),
	}
	if since := c.Query("since"); since != "" {
		if t, err := time.Parse(time.RFC3339, since); err == nil {
			f.Since = t
		}
	}
	return f
}

// ListLogs handles GET /audit/logs, newest first.
func ListLogs(d Deps) fiber.Handler {
	return func(c *fiber.Ctx) error {
		limit := util.ClampLimit(util.ParseIntOrDefault(c.Query("limit"), 50), maxPageSize)
		logs := d.Audit.GetLogs(filterFromQuery(c), limit)

		return c.JSON(fiber.Map{
			"success": true,
			"logs":    logs,
			"count":   len(logs),
		})
	}
}

// ExportLogs handles GET /audit/export?format=json|csv as a file download.
func ExportLogs(d Deps) fiber.Handler {
	return func(c *fiber.Ctx) error {
		format := c.Query("format", "json")

		data, err := d.Audit.Export(filterFromQuery(c), format)
		if err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"success": false,
				"message": err.Error(),
			})
		}

		filename := fmt.Sprintf("audit-%s.%s", time.Now().UTC().Format("20060102-150405"), format)
		c.Set(fiber.HeaderContentDisposition, fmt.Sprintf(`attachment; filename=%q`, filename))
		if format == "csv" {
			c.Set(fiber.HeaderContentType, "text/csv")
		} else {
			c.Set(fiber.HeaderContentType, fiber.MIMEApplicationJSON)
		}
		return c.Send(data)
	}
}
