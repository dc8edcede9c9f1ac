package proctoring

import (
	"encoding/json"
	"fmt"

	"github.com/examguard/integrity-backend/internal/session"
	"github.com/examguard/integrity-backend/model"
)

// HandleInboundEvent processes one proctoring event consumed from Kafka.
// It funnels the event through the same session/detection path as the HTTP
// assess route so both ingest paths behave identically.
func HandleInboundEvent(payload []byte, sessions *session.Service) error {
	var ev InboundEvent
	if err := json.Unmarshal(payload, &ev); err != nil {
		return fmt.Errorf("invalid proctoring event payload: %w", err)
	}
	if ev.ExamID == "" || ev.UserID == "" || ev.SessionID == "" {
		return fmt.Errorf("proctoring event missing exam/user/session id")
	}

	sctx := model.SecurityContext{
		UserID:    ev.UserID,
		SessionID: ev.SessionID,
		ExamID:    ev.ExamID,
		IsExam:    true,
	}
	action := ev.Action
	if action == "" {
		action = "proctoring_event"
	}

	sessions.AssessSecurity(sctx, model.AssessRequest{
		ExamID:    ev.ExamID,
		IsExam:    true,
		Action:    action,
		EventType: ev.EventType,
		Details:   ev.Details,
	})
	return nil
}
