package service

import (
	"context"
	"errors"
	"testing"

	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/apsas-edu/apsas-api/internal/cache"
	"github.com/apsas-edu/apsas-api/internal/dto"
	"github.com/apsas-edu/apsas-api/internal/models"
	"github.com/apsas-edu/apsas-api/internal/repository"
	"github.com/apsas-edu/apsas-api/pkg/ai"
)

type stubEvaluator struct {
	result ai.EvaluationResult
	err    error
	inputs []ai.EvaluationInput
}

func (s *stubEvaluator) Evaluate(_ context.Context, input ai.EvaluationInput) (ai.EvaluationResult, error) {
	s.inputs = append(s.inputs, input)
	if s.err != nil {
		return ai.EvaluationResult{}, s.err
	}
	return s.result, nil
}

type stubPublisher struct {
	subjects []string
}

func (p *stubPublisher) Publish(subject string, _ []byte) error {
	p.subjects = append(p.subjects, subject)
	return nil
}

func seedGradedHierarchy(t *testing.T, db *gorm.DB) (models.Submission, []models.RubricItem) {
	t.Helper()

	template := models.AssessmentTemplate{Name: "Essay Rubric"}
	require.NoError(t, db.Create(&template).Error)
	paper := models.AssessmentPaper{AssessmentTemplateID: template.ID, Name: "Paper 1"}
	require.NoError(t, db.Create(&paper).Error)
	question := models.AssessmentQuestion{AssessmentPaperID: paper.ID, Title: "Argument"}
	require.NoError(t, db.Create(&question).Error)

	rubrics := []models.RubricItem{
		{AssessmentQuestionID: question.ID, Description: "Clarity", MaxScore: 5},
		{AssessmentQuestionID: question.ID, Description: "Evidence", MaxScore: 5},
	}
	for i := range rubrics {
		require.NoError(t, db.Create(&rubrics[i]).Error)
	}

	group := models.GradingGroup{Name: "Essay Class", AssessmentTemplateID: uintPointer(template.ID)}
	require.NoError(t, db.Create(&group).Error)
	submission := models.Submission{GradingGroupID: group.ID, StudentID: uintPointer(1), StudentCode: "ST001"}
	require.NoError(t, db.Create(&submission).Error)

	return submission, rubrics
}

func newGradingSessionService(db *gorm.DB, evaluator ai.Evaluator, events EventPublisher) GradingSessionService {
	return NewGradingSessionService(
		repository.NewGradingSessionRepository(db),
		repository.NewGradeItemRepository(db),
		repository.NewSubmissionRepository(db),
		repository.NewGradingGroupRepository(db),
		repository.NewAssessmentRepository(db),
		evaluator,
		events,
		cache.NewNoopStore(),
		validator.New(validator.WithRequiredStructEnabled()),
		zerolog.Nop(),
	)
}

func TestGradingSessionServiceAIGrading(t *testing.T) {
	db := setupServiceDB(t)
	submission, rubrics := seedGradedHierarchy(t, db)

	evaluator := &stubEvaluator{result: ai.EvaluationResult{
		Scores: []ai.RubricScore{
			{RubricItemID: rubrics[0].ID, Score: 4, Comments: "clear argument"},
			{RubricItemID: rubrics[1].ID, Score: 3, Comments: "thin sourcing"},
		},
		Feedback: "solid essay",
	}}
	publisher := &stubPublisher{}

	svc := newGradingSessionService(db, evaluator, publisher)

	created, err := svc.Create(context.Background(), dto.GradingSessionCreateRequest{
		SubmissionID:    submission.ID,
		GradingTypeCode: 0,
		SubmissionText:  "the essay body",
	})
	require.NoError(t, err)
	require.Equal(t, string(models.SessionStatusCompleted), created.Status)
	require.Equal(t, string(models.GradingTypeAI), created.GradingType)
	require.Equal(t, 2, created.GradeItemCount)
	require.Len(t, created.Items, 2)

	require.Len(t, evaluator.inputs, 1)
	require.Equal(t, "Essay Rubric", evaluator.inputs[0].TemplateName)
	require.Equal(t, "the essay body", evaluator.inputs[0].SubmissionText)
	require.Len(t, evaluator.inputs[0].Rubrics, 2)

	require.Equal(t, []string{GradingEventSubject}, publisher.subjects)
}

func TestGradingSessionServiceAIFailureMarksSessionFailed(t *testing.T) {
	db := setupServiceDB(t)
	submission, _ := seedGradedHierarchy(t, db)

	evaluator := &stubEvaluator{err: errors.New("model timeout")}

	svc := newGradingSessionService(db, evaluator, nil)

	created, err := svc.Create(context.Background(), dto.GradingSessionCreateRequest{
		SubmissionID:    submission.ID,
		GradingTypeCode: 0,
		SubmissionText:  "the essay body",
	})
	require.NoError(t, err)
	require.Equal(t, string(models.SessionStatusFailed), created.Status)
	require.Empty(t, created.Items)

	var stored models.GradingSession
	require.NoError(t, db.First(&stored, created.ID).Error)
	require.Equal(t, models.SessionStatusFailed, stored.Status)
	require.Contains(t, string(stored.GradingLogs), "model timeout")
}

func TestGradingSessionServiceHolisticGrade(t *testing.T) {
	db := setupServiceDB(t)
	submission, _ := seedGradedHierarchy(t, db)

	svc := newGradingSessionService(db, nil, nil)

	created, err := svc.Create(context.Background(), dto.GradingSessionCreateRequest{
		SubmissionID:    submission.ID,
		GradingTypeCode: 1,
		Grade:           floatPointer(8.5),
	})
	require.NoError(t, err)
	require.Equal(t, string(models.SessionStatusCompleted), created.Status)
	require.NotNil(t, created.Grade)
	require.InDelta(t, 8.5, *created.Grade, 0.001)
	require.Empty(t, created.Items)
}

func TestGradingSessionServiceUnknownSubmission(t *testing.T) {
	db := setupServiceDB(t)

	svc := newGradingSessionService(db, nil, nil)

	_, err := svc.Create(context.Background(), dto.GradingSessionCreateRequest{SubmissionID: 999, GradingTypeCode: 1, Grade: floatPointer(5)})
	require.ErrorIs(t, err, ErrSubmissionNotFound)
}
