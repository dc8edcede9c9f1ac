package lifecycle

import (
	"github.com/examguard/integrity-backend/database"
	"github.com/examguard/integrity-backend/events/modules/proctoring"
	"github.com/examguard/integrity-backend/internal/audit"
	"github.com/examguard/integrity-backend/model"
)

// Lifecycle actions.
const (
	ActionPublish    = "publish"
	ActionUnpublish  = "unpublish"
	ActionActivate   = "activate"
	ActionDeactivate = "deactivate"
)

// Snapshot is the consistent read of one exam used to evaluate a transition:
// the exam row, its full question set, and the in-progress attempt count.
type Snapshot struct {
	Exam               model.Exam
	Questions          []model.Question
	InProgressAttempts int
}

// Outcome is the result of evaluating a transition against a snapshot.
// When Success is true the flag fields carry the exam's new lifecycle flags.
type Outcome struct {
	Code         int
	Success      bool
	Message      string
	Details      []string
	Timing       *model.TimingDetails
	Published    bool
	Active       bool
	WasActivated bool
}

// Deps bundles what the lifecycle handlers need.
type Deps struct {
	DB         database.DBConnection
	Audit      *audit.Logger
	Dispatcher *proctoring.Dispatcher
}
