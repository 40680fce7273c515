package service

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/microcosm-cc/bluemonday"
	"github.com/rs/zerolog"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/apsas-edu/apsas-api/internal/cache"
	"github.com/apsas-edu/apsas-api/internal/dto"
	"github.com/apsas-edu/apsas-api/internal/models"
	"github.com/apsas-edu/apsas-api/internal/observability"
	"github.com/apsas-edu/apsas-api/internal/repository"
	"github.com/apsas-edu/apsas-api/pkg/ai"
)

// ErrGradingNotConfigured indicates an AI grading request arrived but no
// evaluator is configured.
var ErrGradingNotConfigured = errors.New("ai grading is not configured")

// EventPublisher emits grading lifecycle events. *nats.Conn satisfies it.
type EventPublisher interface {
	Publish(subject string, data []byte) error
}

// GradingEventSubject is the subject grading lifecycle events are published on.
const GradingEventSubject = "apsas.grading.session.completed"

// GradingSessionService creates grading sessions and records their scores.
type GradingSessionService interface {
	Create(ctx context.Context, payload dto.GradingSessionCreateRequest) (dto.GradingSessionResponse, error)
	ListBySubmission(ctx context.Context, submissionID uint) ([]dto.GradingSessionResponse, error)
}

type gradingSessionService struct {
	sessions    repository.GradingSessionRepository
	items       repository.GradeItemRepository
	submissions repository.SubmissionRepository
	groups      repository.GradingGroupRepository
	assessments repository.AssessmentRepository
	evaluator   ai.Evaluator
	events      EventPublisher
	store       cache.Store
	validator   *validator.Validate
	sanitizer   *bluemonday.Policy
	logger      zerolog.Logger
	now         func() time.Time
}

// NewGradingSessionService constructs the grading session workflow. The
// evaluator and event publisher may be nil; AI grading and event emission
// are then disabled.
func NewGradingSessionService(
	sessions repository.GradingSessionRepository,
	items repository.GradeItemRepository,
	submissions repository.SubmissionRepository,
	groups repository.GradingGroupRepository,
	assessments repository.AssessmentRepository,
	evaluator ai.Evaluator,
	events EventPublisher,
	store cache.Store,
	validate *validator.Validate,
	logger zerolog.Logger,
) GradingSessionService {
	return &gradingSessionService{
		sessions:    sessions,
		items:       items,
		submissions: submissions,
		groups:      groups,
		assessments: assessments,
		evaluator:   evaluator,
		events:      events,
		store:       store,
		validator:   validate,
		sanitizer:   bluemonday.StrictPolicy(),
		logger:      logger.With().Str("component", "grading_session_service").Logger(),
		now:         time.Now,
	}
}

func (s *gradingSessionService) Create(ctx context.Context, payload dto.GradingSessionCreateRequest) (dto.GradingSessionResponse, error) {
	if err := s.validator.Struct(payload); err != nil {
		return dto.GradingSessionResponse{}, err
	}

	submission, err := s.submissions.GetByID(ctx, payload.SubmissionID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return dto.GradingSessionResponse{}, ErrSubmissionNotFound
		}
		return dto.GradingSessionResponse{}, err
	}

	gradingType := models.DecodeGradingType(payload.GradingTypeCode)

	session := models.GradingSession{
		SubmissionID: submission.ID,
		Status:       models.SessionStatusProcessing,
		GradingType:  gradingType,
	}
	if err := s.sessions.Create(ctx, &session); err != nil {
		return dto.GradingSessionResponse{}, err
	}

	var storedItems []models.GradeItem
	switch {
	case len(payload.Items) > 0:
		storedItems, err = s.recordItemizedGrades(ctx, &session, payload.Items)
	case gradingType == models.GradingTypeAI || gradingType == models.GradingTypeBoth:
		storedItems, err = s.runAIGrading(ctx, &session, submission, payload.SubmissionText)
	default:
		err = s.recordHolisticGrade(ctx, &session, payload.Grade)
	}
	if err != nil {
		return dto.GradingSessionResponse{}, err
	}

	s.invalidateOverview(ctx, submission.GradingGroupID)
	s.publishCompletion(session)
	observability.GradingRuns().WithLabelValues(string(gradingType), string(session.Status)).Inc()

	return dto.NewGradingSessionResponse(session, storedItems), nil
}

func (s *gradingSessionService) ListBySubmission(ctx context.Context, submissionID uint) ([]dto.GradingSessionResponse, error) {
	sessions, err := s.sessions.ListBySubmission(ctx, submissionID)
	if err != nil {
		return nil, err
	}

	responses := make([]dto.GradingSessionResponse, 0, len(sessions))
	for _, session := range sessions {
		items, err := s.items.ListBySession(ctx, session.ID)
		if err != nil {
			return nil, err
		}
		responses = append(responses, dto.NewGradingSessionResponse(session, items))
	}

	return responses, nil
}

func (s *gradingSessionService) recordItemizedGrades(ctx context.Context, session *models.GradingSession, inputs []dto.GradeItemInput) ([]models.GradeItem, error) {
	items := make([]models.GradeItem, 0, len(inputs))
	for _, input := range inputs {
		items = append(items, models.GradeItem{
			GradingSessionID:   session.ID,
			RubricItemID:       input.RubricItemID,
			Score:              input.Score,
			RubricItemMaxScore: input.RubricItemMaxScore,
			Comments:           s.sanitizer.Sanitize(input.Comments),
		})
	}

	if err := s.items.CreateBatch(ctx, items); err != nil {
		return nil, err
	}

	session.GradeItemCount = len(items)
	session.Status = models.SessionStatusCompleted
	if err := s.sessions.Update(ctx, session); err != nil {
		return nil, err
	}

	s.logger.Info().Uint("session_id", session.ID).Int("items", len(items)).Msg("itemized grades recorded")

	return items, nil
}

func (s *gradingSessionService) recordHolisticGrade(ctx context.Context, session *models.GradingSession, grade *float64) error {
	session.Grade = grade
	if grade != nil {
		session.Status = models.SessionStatusCompleted
	}

	return s.sessions.Update(ctx, session)
}

func (s *gradingSessionService) runAIGrading(ctx context.Context, session *models.GradingSession, submission models.Submission, submissionText string) ([]models.GradeItem, error) {
	if s.evaluator == nil {
		return nil, ErrGradingNotConfigured
	}

	input, err := s.buildEvaluationInput(ctx, submission, submissionText)
	if err != nil {
		return nil, err
	}

	result, err := s.evaluator.Evaluate(ctx, input)
	if err != nil {
		// AI failures are recorded on the session, not surfaced as request
		// errors; regrading stays possible.
		s.logger.Error().Err(err).Uint("session_id", session.ID).Msg("ai grading failed")
		session.Status = models.SessionStatusFailed
		session.GradingLogs = mustLogJSON(map[string]string{"error": err.Error()})
		return nil, s.sessions.Update(ctx, session)
	}

	maxByID := make(map[uint]float64, len(input.Rubrics))
	for _, rubric := range input.Rubrics {
		maxByID[rubric.ID] = rubric.MaxScore
	}

	items := make([]models.GradeItem, 0, len(result.Scores))
	for _, score := range result.Scores {
		max := maxByID[score.RubricItemID]
		items = append(items, models.GradeItem{
			GradingSessionID:   session.ID,
			RubricItemID:       score.RubricItemID,
			Score:              score.Score,
			RubricItemMaxScore: &max,
			Comments:           s.sanitizer.Sanitize(score.Comments),
		})
	}

	if err := s.items.CreateBatch(ctx, items); err != nil {
		return nil, err
	}

	session.GradeItemCount = len(items)
	session.Status = models.SessionStatusCompleted
	session.GradingLogs = mustLogJSON(map[string]string{"feedback": result.Feedback})
	if err := s.sessions.Update(ctx, session); err != nil {
		return nil, err
	}

	s.logger.Info().Uint("session_id", session.ID).Int("items", len(items)).Msg("ai grading completed")

	return items, nil
}

func (s *gradingSessionService) buildEvaluationInput(ctx context.Context, submission models.Submission, submissionText string) (ai.EvaluationInput, error) {
	group, err := s.groups.GetByID(ctx, submission.GradingGroupID)
	if err != nil {
		return ai.EvaluationInput{}, err
	}

	if group.AssessmentTemplateID == nil {
		return ai.EvaluationInput{}, ErrReportTemplateMissing
	}

	template, err := s.assessments.GetTemplate(ctx, *group.AssessmentTemplateID)
	if err != nil {
		return ai.EvaluationInput{}, err
	}

	input := ai.EvaluationInput{
		TemplateName:   template.Name,
		SubmissionText: submissionText,
	}
	if input.SubmissionText == "" {
		input.SubmissionText = submission.SubmissionFile
		input.AdditionalNotes = "Submission provided as a file reference."
	}

	papers, _, err := s.assessments.ListPapers(ctx, template.ID, repository.PageQuery{})
	if err != nil {
		return ai.EvaluationInput{}, err
	}

	for _, paper := range papers {
		questions, _, err := s.assessments.ListQuestions(ctx, paper.ID, repository.PageQuery{})
		if err != nil {
			return ai.EvaluationInput{}, err
		}

		for _, question := range questions {
			rubrics, _, err := s.assessments.ListRubricItems(ctx, question.ID, repository.PageQuery{})
			if err != nil {
				return ai.EvaluationInput{}, err
			}

			for _, rubric := range rubrics {
				input.Rubrics = append(input.Rubrics, ai.RubricCriterion{
					ID:          rubric.ID,
					Description: rubric.Description,
					MaxScore:    rubric.MaxScore,
				})
			}
		}
	}

	return input, nil
}

func (s *gradingSessionService) invalidateOverview(ctx context.Context, groupID uint) {
	if err := s.store.Invalidate(ctx, cache.OverviewKey(groupID)); err != nil {
		s.logger.Warn().Err(err).Uint("group_id", groupID).Msg("failed to invalidate overview cache")
	}
}

func (s *gradingSessionService) publishCompletion(session models.GradingSession) {
	if s.events == nil {
		return
	}

	payload, err := json.Marshal(map[string]interface{}{
		"session_id":    session.ID,
		"submission_id": session.SubmissionID,
		"status":        session.Status,
		"grading_type":  session.GradingType,
	})
	if err != nil {
		return
	}

	if err := s.events.Publish(GradingEventSubject, payload); err != nil {
		s.logger.Warn().Err(err).Uint("session_id", session.ID).Msg("failed to publish grading event")
	}
}

func mustLogJSON(value interface{}) datatypes.JSON {
	payload, err := json.Marshal(value)
	if err != nil {
		return datatypes.JSON("{}")
	}
	return datatypes.JSON(payload)
}
