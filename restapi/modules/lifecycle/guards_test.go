package lifecycle

import (
	"testing"
	"time"

	"github.com/examguard/integrity-backend/model"
	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testNow = time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

func validExam() model.Exam {
	return model.Exam{
		Key:          "exam-1",
		Title:        "Midterm",
		StartTime:    testNow.Add(-time.Hour),
		EndTime:      testNow.Add(time.Hour),
		TotalMarks:   100,
		PassingMarks: 40,
	}
}

func validQuestions() []model.Question {
	return []model.Question{
		{Key: "q1", ExamID: "exam-1", Type: model.QuestionMultipleChoice, Options: `["a","b","c"]`, CorrectAnswer: "a", Marks: 5},
		{Key: "q2", ExamID: "exam-1", Type: model.QuestionTrueFalse, CorrectAnswer: "true", Marks: 5},
		{Key: "q3", ExamID: "exam-1", Type: model.QuestionShortAnswer, CorrectAnswer: "photosynthesis", Marks: 10},
	}
}

func TestValidatePublish_Valid(t *testing.T) {
	assert.Empty(t, ValidatePublish(validExam(), validQuestions(), testNow))
}

func TestValidatePublish_ListsEveryViolation(t *testing.T) {
	exam := validExam()
	exam.TotalMarks = 0
	exam.PassingMarks = 10
	exam.EndTime = testNow.Add(-time.Minute)
	exam.StartTime = testNow

	violations := ValidatePublish(exam, nil, testNow)

	assert.Contains(t, violations, "exam must have at least one question")
	assert.Contains(t, violations, "exam end time must be in the future")
	assert.Contains(t, violations, "exam end time must be after start time")
	assert.Contains(t, violations, "total marks must be positive")
	assert.Contains(t, violations, "passing marks cannot exceed total marks")
	assert.Len(t, violations, 5)
}

func TestValidatePublish_QuestionGuards(t *testing.T) {
	questions := []model.Question{
		{Key: "q1", Type: model.QuestionMultipleChoice, Options: `["only one"]`, Marks: 5},
		{Key: "q2", Type: model.QuestionTrueFalse, Marks: 0},
		{Key: "q3", Type: model.QuestionShortAnswer, CorrectAnswer: "  ", Marks: 5},
	}

	violations := ValidatePublish(validExam(), questions, testNow)

	assert.Contains(t, violations, "multiple-choice question q1 must have at least 2 options")
	assert.Contains(t, violations, "multiple-choice question q1 must have a correct option")
	assert.Contains(t, violations, "question q2 must have positive marks")
	assert.Contains(t, violations, "question q2 must have a correct answer")
	assert.Contains(t, violations, "question q3 must have a correct answer")
}

func TestValidatePublish_MalformedOptions(t *testing.T) {
	questions := []model.Question{
		{Key: "q1", Type: model.QuestionMultipleChoice, Options: `{broken`, CorrectAnswer: "a", Marks: 5},
	}

	violations := ValidatePublish(validExam(), questions, testNow)
	assert.Contains(t, violations, "multiple-choice question q1 must have at least 2 options")
}

func TestEvaluate_PublishDraft(t *testing.T) {
	snap := Snapshot{Exam: validExam(), Questions: validQuestions()}

	outcome := Evaluate(ActionPublish, snap, testNow)

	require.True(t, outcome.Success)
	assert.Equal(t, fiber.StatusOK, outcome.Code)
	assert.True(t, outcome.Published)
	assert.False(t, outcome.Active)
}

func TestEvaluate_PublishTwiceConflicts(t *testing.T) {
	exam := validExam()
	exam.IsPublished = true
	snap := Snapshot{Exam: exam, Questions: validQuestions()}

	outcome := Evaluate(ActionPublish, snap, testNow)

	assert.False(t, outcome.Success)
	// already published is a conflict, not a validation failure
	assert.Equal(t, fiber.StatusConflict, outcome.Code)
	assert.Empty(t, outcome.Details)
}

func TestEvaluate_ActivateUnpublishedIsBadRequest(t *testing.T) {
	snap := Snapshot{Exam: validExam(), Questions: validQuestions()}

	outcome := Evaluate(ActionActivate, snap, testNow)

	assert.Equal(t, fiber.StatusBadRequest, outcome.Code)
	assert.NotEmpty(t, outcome.Details)
}

func TestEvaluate_ActivatePublished(t *testing.T) {
	exam := validExam()
	exam.IsPublished = true
	snap := Snapshot{Exam: exam}

	outcome := Evaluate(ActionActivate, snap, testNow)

	require.True(t, outcome.Success)
	assert.True(t, outcome.Active)
	assert.True(t, outcome.WasActivated)
}

func TestEvaluate_ActivateTwiceConflicts(t *testing.T) {
	exam := validExam()
	exam.IsPublished = true
	exam.IsActive = true
	snap := Snapshot{Exam: exam}

	outcome := Evaluate(ActionActivate, snap, testNow)
	assert.Equal(t, fiber.StatusConflict, outcome.Code)
}

func TestEvaluate_ActivateOutsideWindow(t *testing.T) {
	exam := validExam()
	exam.IsPublished = true
	exam.StartTime = testNow.Add(time.Hour)
	exam.EndTime = testNow.Add(2 * time.Hour)
	snap := Snapshot{Exam: exam}

	outcome := Evaluate(ActionActivate, snap, testNow)

	assert.Equal(t, fiber.StatusBadRequest, outcome.Code)
	require.NotNil(t, outcome.Timing)
	assert.Equal(t, exam.StartTime, outcome.Timing.StartTime)
	assert.Equal(t, testNow, outcome.Timing.CurrentTime)
}

func TestEvaluate_UnpublishRules(t *testing.T) {
	exam := validExam()

	// not published: conflict
	outcome := Evaluate(ActionUnpublish, Snapshot{Exam: exam}, testNow)
	assert.Equal(t, fiber.StatusConflict, outcome.Code)

	// published with in-progress attempts: conflict
	exam.IsPublished = true
	outcome = Evaluate(ActionUnpublish, Snapshot{Exam: exam, InProgressAttempts: 2}, testNow)
	assert.Equal(t, fiber.StatusConflict, outcome.Code)

	// active: conflict
	exam.IsActive = true
	outcome = Evaluate(ActionUnpublish, Snapshot{Exam: exam}, testNow)
	assert.Equal(t, fiber.StatusConflict, outcome.Code)

	// published, inactive, no attempts: returns to draft
	exam.IsActive = false
	outcome = Evaluate(ActionUnpublish, Snapshot{Exam: exam}, testNow)
	require.True(t, outcome.Success)
	assert.False(t, outcome.Published)
}

func TestEvaluate_DeactivateRules(t *testing.T) {
	exam := validExam()
	exam.IsPublished = true

	// not active: conflict
	outcome := Evaluate(ActionDeactivate, Snapshot{Exam: exam}, testNow)
	assert.Equal(t, fiber.StatusConflict, outcome.Code)

	exam.IsActive = true
	exam.WasActivated = true

	// in-progress attempts block deactivation
	outcome = Evaluate(ActionDeactivate, Snapshot{Exam: exam, InProgressAttempts: 1}, testNow)
	assert.Equal(t, fiber.StatusConflict, outcome.Code)

	outcome = Evaluate(ActionDeactivate, Snapshot{Exam: exam}, testNow)
	require.True(t, outcome.Success)
	assert.True(t, outcome.Published)
	assert.False(t, outcome.Active)
}

func TestEvaluate_UnknownAction(t *testing.T) {
	outcome := Evaluate("archive", Snapshot{Exam: validExam()}, testNow)
	assert.Equal(t, fiber.StatusBadRequest, outcome.Code)
}

func TestLifecycleState_Derived(t *testing.T) {
	exam := validExam()
	assert.Equal(t, model.StateDraft, exam.LifecycleState(testNow))

	exam.IsPublished = true
	assert.Equal(t, model.StatePublished, exam.LifecycleState(testNow))

	exam.IsActive = true
	assert.Equal(t, model.StateActive, exam.LifecycleState(testNow))

	// completed derives from the window, it is never stored
	assert.Equal(t, model.StateCompleted, exam.LifecycleState(exam.EndTime.Add(time.Minute)))
}
