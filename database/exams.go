package database

import (
	"context"
	"fmt"
	"time"

	"github.com/arangodb/go-driver/v2/arangodb"
	"github.com/examguard/integrity-backend/model"
)

// FindExam fetches one exam by key. Returns (nil, nil) when absent.
func FindExam(ctx context.Context, db DBConnection, examID string) (*model.Exam, error) {
	query := `
		FOR e IN exam
			FILTER e._key == @key
			LIMIT 1
			RETURN e`

	cursor, err := db.Database.Query(ctx, query, &arangodb.QueryOptions{
		BindVars: map[string]interface{}{"key": examID},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to query exam %s: %w", examID, err)
	}
	defer cursor.Close()

	if !cursor.HasMore() {
		return nil, nil
	}
	var exam model.Exam
	meta, err := cursor.ReadDocument(ctx, &exam)
	if err != nil {
		return nil, err
	}
	exam.Key = meta.Key
	return &exam, nil
}

// FetchExamQuestions reads all questions of one exam in a single query so
// guard validation sees a consistent snapshot of the question set.
func FetchExamQuestions(ctx context.Context, db DBConnection, examID string) ([]model.Question, error) {
	query := `
		FOR q IN question
			FILTER q.exam_id == @exam_id
			SORT q.position ASC
			RETURN q`

	cursor, err := db.Database.Query(ctx, query, &arangodb.QueryOptions{
		BindVars: map[string]interface{}{"exam_id": examID},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to query questions for exam %s: %w", examID, err)
	}
	defer cursor.Close()

	var questions []model.Question
	for cursor.HasMore() {
		var q model.Question
		meta, err := cursor.ReadDocument(ctx, &q)
		if err != nil {
			return nil, err
		}
		q.Key = meta.Key
		questions = append(questions, q)
	}
	return questions, nil
}

// CountInProgressAttempts counts uncompleted attempts; these block
// unpublish and deactivate.
func CountInProgressAttempts(ctx context.Context, db DBConnection, examID string) (int, error) {
	query := `
		RETURN LENGTH(
			FOR a IN attempt
				FILTER a.exam_id == @exam_id
				FILTER a.status == "in_progress"
				RETURN 1
		)`

	cursor, err := db.Database.Query(ctx, query, &arangodb.QueryOptions{
		BindVars: map[string]interface{}{"exam_id": examID},
	})
	if err != nil {
		return 0, fmt.Errorf("failed to count attempts for exam %s: %w", examID, err)
	}
	defer cursor.Close()

	var count int
	if cursor.HasMore() {
		if _, err := cursor.ReadDocument(ctx, &count); err != nil {
			return 0, err
		}
	}
	return count, nil
}

// UpdateExamFlags writes the lifecycle booleans plus updated_at. These are
// the only exam fields this service owns.
func UpdateExamFlags(ctx context.Context, db DBConnection, examID string, isPublished, isActive, wasActivated bool) error {
	query := `
		UPDATE @key WITH {
			is_published: @is_published,
			is_active: @is_active,
			was_activated: @was_activated,
			updated_at: @updated_at
		} IN exam`

	_, err := db.Database.Query(ctx, query, &arangodb.QueryOptions{
		BindVars: map[string]interface{}{
			"key":           examID,
			"is_published":  isPublished,
			"is_active":     isActive,
			"was_activated": wasActivated,
			"updated_at":    time.Now().UTC(),
		},
	})
	if err != nil {
		return fmt.Errorf("failed to update exam %s flags: %w", examID, err)
	}
	return nil
}

// InsertActivityRecord appends the administrative record for a successful
// lifecycle transition.
func InsertActivityRecord(ctx context.Context, db DBConnection, rec model.ActivityRecord) error {
	if rec.Timestamp.IsZero() {
		rec.Timestamp = time.Now().UTC()
	}
	_, err := db.Collections["activity_log"].CreateDocument(ctx, rec)
	if err != nil {
		return fmt.Errorf("failed to insert activity record: %w", err)
	}
	return nil
}

// ExamWindowLookup adapts the store to the session service's lazy-end check.
func ExamWindowLookup(db DBConnection) func(examID string) (time.Time, time.Time, bool) {
	return func(examID string) (time.Time, time.Time, bool) {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		exam, err := FindExam(ctx, db, examID)
		if err != nil || exam == nil {
			return time.Time{}, time.Time{}, false
		}
		return exam.StartTime, exam.EndTime, true
	}
}
