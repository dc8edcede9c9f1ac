// Package session orchestrates the per-(exam, student, browser session)
// security context: it owns session lifecycle, forwards admitted events to
// the detection service and the audit log, and runs the generic request
// heuristics that apply to every authenticated call.
package session

import (
	"sync"
	"time"

	"github.com/examguard/integrity-backend/internal/audit"
	"github.com/examguard/integrity-backend/internal/detection"
	"github.com/examguard/integrity-backend/internal/policy"
	"github.com/examguard/integrity-backend/model"
	"go.uber.org/zap"
)

// Session states.
const (
	StateActive = "active"
	StateEnded  = "ended"
)

// ExamWindowFunc resolves an exam's scheduled window so sessions can end
// lazily once the exam closes. ok=false means the exam is unknown.
type ExamWindowFunc func(examID string) (start, end time.Time, ok bool)

type securitySession struct {
	examID        string
	userID        string
	sessionID     string
	state         string
	startedAt     time.Time
	endedAt       time.Time
	lastHeartbeat time.Time
	eventCounts   map[string]int
	severityLevel string
	config        model.SessionConfig
	requestTimes  []time.Time
}

// Service is the exam security session service.
type Service struct {
	mu         sync.Mutex
	sessions   map[string]*securitySession
	detector   *detection.Detector
	audit      *audit.Logger
	policy     *policy.Policy
	logger     *zap.Logger
	examWindow ExamWindowFunc
	now        func() time.Time
}

// New creates the service. examWindow may be nil, in which case sessions only
// end explicitly.
func New(detector *detection.Detector, auditLog *audit.Logger, pol *policy.Policy, logger *zap.Logger, examWindow ExamWindowFunc) *Service {
	if pol == nil {
		pol = policy.Default()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{
		sessions:   make(map[string]*securitySession),
		detector:   detector,
		audit:      auditLog,
		policy:     pol,
		logger:     logger,
		examWindow: examWindow,
		now:        time.Now,
	}
}

func sessionKey(examID, userID, sessionID string) string {
	return examID + "|" + userID + "|" + sessionID
}

// StartExamSecurity creates the session if absent. Calling it again for an
// active session is a no-op.
func (s *Service) StartExamSecurity(examID, userID, sessionID string, cfg model.SessionConfig) {
	s.mu.Lock()
	key := sessionKey(examID, userID, sessionID)
	if sess, ok := s.sessions[key]; ok && sess.state == StateActive {
		s.mu.Unlock()
		return
	}
	s.createLocked(examID, userID, sessionID, cfg)
	s.mu.Unlock()

	if s.audit != nil {
		s.audit.Log(audit.LevelInfo, audit.CategoryExamSecurity, "exam_security_started", userID, "", map[string]interface{}{
			"exam_id":    examID,
			"session_id": sessionID,
		})
	}
}

// createLocked registers a fresh active session. Caller holds s.mu.
func (s *Service) createLocked(examID, userID, sessionID string, cfg model.SessionConfig) *securitySession {
	now := s.now()
	sess := &securitySession{
		examID:        examID,
		userID:        userID,
		sessionID:     sessionID,
		state:         StateActive,
		startedAt:     now,
		lastHeartbeat: now,
		eventCounts:   make(map[string]int),
		severityLevel: model.SeverityLow,
		config:        cfg,
	}
	s.sessions[sessionKey(examID, userID, sessionID)] = sess
	return sess
}

// AssessSecurity evaluates one request. The generic heuristics always run;
// the proctoring path runs only when the context marks an exam in progress.
func (s *Service) AssessSecurity(sctx model.SecurityContext, req model.AssessRequest) model.AssessResponse {
	now := s.now()
	assessment := model.SecurityAssessment{
		Allowed:   true,
		RiskLevel: model.SeverityLow,
		Timestamp: now,
	}

	var status *model.SecurityStatus

	if req.IsExam && req.ExamID != "" {
		status = s.handleExamRequest(sctx, req, &assessment, now)
	}

	// Request-velocity heuristic, independent of exam context.
	if s.velocityExceeded(sctx, now) {
		assessment.RiskLevel = model.SeverityMedium
		assessment.Reasons = append(assessment.Reasons, "anomalous request velocity")
	}

	return model.AssessResponse{
		Success:    true,
		Assessment: assessment,
		Status:     status,
		Timestamp:  now,
	}
}

func (s *Service) handleExamRequest(sctx model.SecurityContext, req model.AssessRequest, assessment *model.SecurityAssessment, now time.Time) *model.SecurityStatus {
	key := sessionKey(req.ExamID, sctx.UserID, sctx.SessionID)

	s.mu.Lock()
	sess, ok := s.sessions[key]
	if ok {
		s.maybeEndLocked(sess, now)
	}
	if !ok || sess.state != StateActive {
		if ok && req.Action != "start_exam" {
			// Session ran to completion; don't resurrect it for stray events.
			s.mu.Unlock()
			return s.SecurityStatus(req.ExamID, sctx.UserID, sctx.SessionID)
		}
		// Self-healing: a missed explicit start must not strand the session,
		// so the first event creates it.
		var cfg model.SessionConfig
		if req.Config != nil {
			cfg = *req.Config
		}
		sess = s.createLocked(req.ExamID, sctx.UserID, sctx.SessionID, cfg)
	}

	ended := req.Action == "submit_exam" || req.Action == "end_exam"

	if req.EventType != "" {
		sess.eventCounts[req.EventType]++
		if req.EventType == model.EventHeartbeat {
			sess.lastHeartbeat = now
		}
	}
	s.mu.Unlock()

	if req.EventType != "" {
		severity, action := detection.Classify(req.EventType)
		raised := s.detector.RecordEvent(model.ProctoringEvent{
			ExamID:    req.ExamID,
			UserID:    sctx.UserID,
			SessionID: sctx.SessionID,
			EventType: req.EventType,
			Details:   req.Details,
			Timestamp: now,
		})

		if len(raised) > 0 {
			s.bumpSeverity(key, raised)
			assessment.RiskLevel = raised[len(raised)-1].Severity
			assessment.Reasons = append(assessment.Reasons, raised[len(raised)-1].AlertType)
		}
		if action == model.ActionBlock {
			assessment.Reasons = append(assessment.Reasons, req.EventType+" blocked client-side")
		}

		if s.audit != nil {
			s.audit.Log(auditLevelFor(severity), audit.CategoryExamSecurity, req.EventType, sctx.UserID, sctx.IPAddress, map[string]interface{}{
				"exam_id":    req.ExamID,
				"session_id": sctx.SessionID,
				"action":     action,
			})
		}
	}

	if ended {
		s.EndSession(req.ExamID, sctx.UserID, sctx.SessionID, req.Action)
	}

	return s.SecurityStatus(req.ExamID, sctx.UserID, sctx.SessionID)
}

// bumpSeverity raises the session's severity level to the worst raised alert.
func (s *Service) bumpSeverity(key string, raised []model.CheatingAlert) {
	s.mu.Lock()
	defer s.mu.Unlock()
	sess, ok := s.sessions[key]
	if !ok {
		return
	}
	for _, a := range raised {
		if severityRank(a.Severity) > severityRank(sess.severityLevel) {
			sess.severityLevel = a.Severity
		}
	}
}

func severityRank(s string) int {
	switch s {
	case model.SeverityCritical:
		return 4
	case model.SeverityHigh:
		return 3
	case model.SeverityMedium:
		return 2
	default:
		return 1
	}
}

func auditLevelFor(severity string) string {
	switch severity {
	case model.SeverityCritical, model.SeverityHigh:
		return audit.LevelWarning
	default:
		return audit.LevelInfo
	}
}

// velocityExceeded records the request against the caller's session and
// reports whether the recent rate is anomalous.
func (s *Service) velocityExceeded(sctx model.SecurityContext, now time.Time) bool {
	if sctx.SessionID == "" {
		return false
	}
	limit := s.policy.VelocityLimit
	window := s.policy.VelocityWindow()
	if limit <= 0 || window <= 0 {
		return false
	}

	key := "velocity|" + sctx.UserID + "|" + sctx.SessionID

	s.mu.Lock()
	defer s.mu.Unlock()

	sess, ok := s.sessions[key]
	if !ok {
		sess = &securitySession{eventCounts: make(map[string]int)}
		s.sessions[key] = sess
	}

	cutoff := now.Add(-window)
	kept := sess.requestTimes[:0]
	for _, ts := range sess.requestTimes {
		if ts.After(cutoff) {
			kept = append(kept, ts)
		}
	}
	sess.requestTimes = append(kept, now)

	return len(sess.requestTimes) > limit
}

// maybeEndLocked lazily ends a session whose exam window (plus grace) has
// closed. There is no background timer; ends happen on next access.
func (s *Service) maybeEndLocked(sess *securitySession, now time.Time) {
	if sess.state != StateActive || s.examWindow == nil {
		return
	}
	_, end, ok := s.examWindow(sess.examID)
	if !ok {
		return
	}
	if now.After(end.Add(s.policy.SessionGrace())) {
		sess.state = StateEnded
		sess.endedAt = now
		s.detector.EndSession(sess.examID, sess.userID, sess.sessionID)
	}
}

// SecurityStatus returns the session snapshot, or nil if no session exists.
func (s *Service) SecurityStatus(examID, userID, sessionID string) *model.SecurityStatus {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess, ok := s.sessions[sessionKey(examID, userID, sessionID)]
	if !ok {
		return nil
	}
	s.maybeEndLocked(sess, s.now())

	counts := make(map[string]int, len(sess.eventCounts))
	for k, v := range sess.eventCounts {
		counts[k] = v
	}

	return &model.SecurityStatus{
		ExamID:        sess.examID,
		UserID:        sess.userID,
		SessionID:     sess.sessionID,
		State:         sess.state,
		StartedAt:     sess.startedAt,
		LastHeartbeat: sess.lastHeartbeat,
		EventCounts:   counts,
		SeverityLevel: sess.severityLevel,
		AlertCount:    len(s.detector.ExamAlerts(examID, detection.AlertFilter{StudentID: userID})),
	}
}

// EndSession explicitly ends a session. Idempotent.
func (s *Service) EndSession(examID, userID, sessionID, reason string) {
	s.mu.Lock()
	sess, ok := s.sessions[sessionKey(examID, userID, sessionID)]
	if ok && sess.state == StateActive {
		sess.state = StateEnded
		sess.endedAt = s.now()
	}
	s.mu.Unlock()

	if ok {
		s.detector.EndSession(examID, userID, sessionID)
		if s.audit != nil {
			s.audit.Log(audit.LevelInfo, audit.CategoryExamSecurity, "exam_security_ended", userID, "", map[string]interface{}{
				"exam_id":    examID,
				"session_id": sessionID,
				"reason":     reason,
			})
		}
	}
}

// Prune evicts finished and idle entries so the session map stays bounded:
// exam sessions that ended before cutoff, and velocity pseudo sessions whose
// last request predates cutoff. Returns the number of entries removed.
func (s *Service) Prune(cutoff time.Time) int {
	s.mu.Lock()
	defer s.mu.Unlock()

	removed := 0
	for key, sess := range s.sessions {
		switch sess.state {
		case StateEnded:
			if sess.endedAt.Before(cutoff) {
				delete(s.sessions, key)
				removed++
			}
		case StateActive:
			// live sessions end via maybeEndLocked or EndSession, never here
		default:
			// velocity pseudo session
			if n := len(sess.requestTimes); n == 0 || sess.requestTimes[n-1].Before(cutoff) {
				delete(s.sessions, key)
				removed++
			}
		}
	}
	return removed
}

// ActiveSessionCount returns the number of live exam sessions, excluding the
// velocity-tracking pseudo sessions.
func (s *Service) ActiveSessionCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()

	n := 0
	for _, sess := range s.sessions {
		// velocity pseudo sessions carry no state and are skipped here
		if sess.state == StateActive {
			n++
		}
	}
	return n
}
