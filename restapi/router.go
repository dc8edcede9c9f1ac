// Package restapi provides the main router and initialization for REST API endpoints.
package restapi

import (
	"log"

	"github.com/examguard/integrity-backend/database"
	"github.com/examguard/integrity-backend/events/modules/proctoring"
	"github.com/examguard/integrity-backend/internal/audit"
	"github.com/examguard/integrity-backend/internal/detection"
	"github.com/examguard/integrity-backend/internal/ratelimit"
	"github.com/examguard/integrity-backend/internal/session"
	"github.com/examguard/integrity-backend/model"
	"github.com/examguard/integrity-backend/restapi/modules/alerts"
	"github.com/examguard/integrity-backend/restapi/modules/auditlog"
	"github.com/examguard/integrity-backend/restapi/modules/auth"
	"github.com/examguard/integrity-backend/restapi/modules/exams"
	"github.com/examguard/integrity-backend/restapi/modules/lifecycle"
	"github.com/examguard/integrity-backend/restapi/modules/security"
	"github.com/gofiber/fiber/v2"
	"github.com/graphql-go/graphql"
)

// Services bundles the in-process services the route handlers depend on.
type Services struct {
	Sessions   *session.Service
	Detector   *detection.Detector
	Audit      *audit.Logger
	Limiter    *ratelimit.Limiter
	Dispatcher *proctoring.Dispatcher
}

func userKey(c *fiber.Ctx) string {
	id, _ := c.Locals("user_id").(string)
	return id
}

func examKey(c *fiber.Ctx) string {
	return c.Params("id")
}

// SetupRoutes configures all REST API routes and the GraphQL endpoint.
// CORS is handled globally in internal/api/fiber.go.
func SetupRoutes(app *fiber.App, db database.DBConnection, schema graphql.Schema, svc Services) {

	generalLimit := ratelimit.Middleware(svc.Limiter, "general", userKey)
	examOpsLimit := ratelimit.Middleware(svc.Limiter, "examOps", examKey)

	// API Group /api/v1
	api := app.Group("/api/v1")

	// GraphQL Route - Mounted within the api group to inherit path prefixes
	api.Post("/graphql", auth.OptionalAuth, generalLimit, GraphQLHandler(schema))

	// Security assessment and session status
	securityDeps := security.Deps{Sessions: svc.Sessions}
	securityGroup := api.Group("/security", auth.RequireAuth, generalLimit)
	securityGroup.Post("/assess", security.Assess(securityDeps))
	securityGroup.Get("/status", security.Status(securityDeps))

	// Exam routes share the auth gate; the management role check is per-route
	// so student question delivery stays reachable under the same prefix.
	examGroup := api.Group("/exams/:id", auth.RequireAuth)
	manageRole := auth.RequireRole(model.RoleAdmin, model.RoleInstructor)

	// Lifecycle transitions (instructor/admin)
	lifecycleDeps := lifecycle.Deps{DB: db, Audit: svc.Audit, Dispatcher: svc.Dispatcher}
	examGroup.Post("/publish", manageRole, examOpsLimit, lifecycle.PublishExam(lifecycleDeps))
	examGroup.Delete("/publish", manageRole, examOpsLimit, lifecycle.UnpublishExam(lifecycleDeps))
	examGroup.Post("/activate", manageRole, examOpsLimit, lifecycle.ActivateExam(lifecycleDeps))
	examGroup.Delete("/activate", manageRole, examOpsLimit, lifecycle.DeactivateExam(lifecycleDeps))

	// Cheating alerts (instructor/admin), limited per (ip, exam)
	alertDeps := alerts.Deps{Detector: svc.Detector}
	examGroup.Get("/alerts", manageRole, examOpsLimit, alerts.ListExamAlerts(alertDeps))
	examGroup.Patch("/alerts/:alertId/resolve", manageRole, examOpsLimit, alerts.ResolveAlert(alertDeps))

	// Student question delivery, deterministic per-student ordering
	examDeps := exams.Deps{DB: db}
	examGroup.Get("/questions", generalLimit, exams.StudentQuestions(examDeps))

	// Audit buffer (admin only)
	auditDeps := auditlog.Deps{Audit: svc.Audit}
	auditGroup := api.Group("/audit", auth.RequireAuth, auth.RequireRole(model.RoleAdmin))
	auditGroup.Get("/logs", auditlog.ListLogs(auditDeps))
	auditGroup.Get("/export", auditlog.ExportLogs(auditDeps))

	log.Println("API routes initialized successfully")
}
