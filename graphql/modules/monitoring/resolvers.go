package monitoring

import (
	"context"
	"errors"
	"time"

	"github.com/examguard/integrity-backend/internal/audit"
	"github.com/examguard/integrity-backend/internal/detection"
	"github.com/examguard/integrity-backend/internal/session"
	"github.com/examguard/integrity-backend/model"
	"github.com/examguard/integrity-backend/restapi/modules/auth"
)

// Deps holds the in-process services the monitoring queries read from.
type Deps struct {
	Detector *detection.Detector
	Audit    *audit.Logger
	Sessions *session.Service
}

// ErrForbidden is returned by resolvers when the caller's role does not
// permit the query. Monitoring data mirrors the REST surface's gates:
// alerts are instructor/admin, the audit tail is admin only.
var ErrForbidden = errors.New("insufficient permissions")

// viewerFrom rebuilds the acting user from the identity the GraphQL handler
// stored in the resolver context. A guest yields a zero-role user.
func viewerFrom(ctx context.Context) model.User {
	username, _ := ctx.Value(auth.UserKey).(string)
	role, _ := ctx.Value(auth.RoleKey).(string)
	return model.ViewerFromClaims(username, role, "")
}

func requireAlertViewer(ctx context.Context) error {
	viewer := viewerFrom(ctx)
	if !viewer.CanViewAlerts() {
		return ErrForbidden
	}
	return nil
}

func requireAdmin(ctx context.Context) error {
	viewer := viewerFrom(ctx)
	if !viewer.IsAdmin() {
		return ErrForbidden
	}
	return nil
}

// ResolveOverview returns the top-card counters.
func ResolveOverview(d Deps) (map[string]interface{}, error) {
	return map[string]interface{}{
		"active_sessions": d.Sessions.ActiveSessionCount(),
		"audit_entries":   d.Audit.Len(),
	}, nil
}

// ResolveAlertSummary returns the aggregate alert counts for one exam.
func ResolveAlertSummary(d Deps, examID string) (model.AlertSummary, error) {
	return d.Detector.AlertSummary(examID), nil
}

// ResolveRecentAlerts returns up to limit alerts for one exam, newest first.
func ResolveRecentAlerts(d Deps, examID, severity string, limit int) ([]model.CheatingAlert, error) {
	alerts := d.Detector.ExamAlerts(examID, detection.AlertFilter{Severity: severity})
	for i, j := 0, len(alerts)-1; i < j; i, j = i+1, j-1 {
		alerts[i], alerts[j] = alerts[j], alerts[i]
	}
	if limit > 0 && len(alerts) > limit {
		alerts = alerts[:limit]
	}
	return alerts, nil
}

// ResolveAuditTail returns the most recent audit entries, newest first.
func ResolveAuditTail(d Deps, category string, minutes, limit int) ([]audit.Entry, error) {
	f := audit.Filter{Category: category}
	if minutes > 0 {
		f.Since = time.Now().Add(-time.Duration(minutes) * time.Minute)
	}
	return d.Audit.GetLogs(f, limit), nil
}
