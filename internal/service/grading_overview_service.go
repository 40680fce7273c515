package service

import (
	"context"
	"errors"
	"time"

	"github.com/rs/zerolog"
	"gorm.io/gorm"

	"github.com/apsas-edu/apsas-api/internal/cache"
	"github.com/apsas-edu/apsas-api/internal/dto"
	"github.com/apsas-edu/apsas-api/internal/grading"
	"github.com/apsas-edu/apsas-api/internal/models"
	"github.com/apsas-edu/apsas-api/internal/repository"
)

// ErrGradingGroupNotFound indicates the grading group could not be found.
var ErrGradingGroupNotFound = errors.New("grading group not found")

// GradingOverviewService produces the deduplicated, scored table view of a
// grading group.
type GradingOverviewService interface {
	GroupScores(ctx context.Context, groupID uint) (dto.GroupScoresResponse, error)
}

type gradingOverviewService struct {
	groups      repository.GradingGroupRepository
	submissions repository.SubmissionRepository
	sessions    repository.GradingSessionRepository
	items       repository.GradeItemRepository
	store       cache.Store
	cacheTTL    time.Duration
	logger      zerolog.Logger
}

// NewGradingOverviewService constructs the overview aggregator.
func NewGradingOverviewService(
	groups repository.GradingGroupRepository,
	submissions repository.SubmissionRepository,
	sessions repository.GradingSessionRepository,
	items repository.GradeItemRepository,
	store cache.Store,
	ttl time.Duration,
	logger zerolog.Logger,
) GradingOverviewService {
	return &gradingOverviewService{
		groups:      groups,
		submissions: submissions,
		sessions:    sessions,
		items:       items,
		store:       store,
		cacheTTL:    ttl,
		logger:      logger.With().Str("component", "grading_overview_service").Logger(),
	}
}

func (s *gradingOverviewService) GroupScores(ctx context.Context, groupID uint) (dto.GroupScoresResponse, error) {
	group, err := s.groups.GetByID(ctx, groupID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return dto.GroupScoresResponse{}, ErrGradingGroupNotFound
		}
		return dto.GroupScoresResponse{}, err
	}

	cacheKey := cache.OverviewKey(groupID)
	var cached dto.GroupScoresResponse
	if hit, err := s.store.GetJSON(ctx, cacheKey, &cached); err != nil {
		s.logger.Warn().Err(err).Uint("group_id", groupID).Msg("failed to read overview cache")
	} else if hit {
		s.logger.Debug().Uint("group_id", groupID).Msg("overview cache hit")
		return cached, nil
	}

	submissions, err := s.submissions.List(ctx, repository.SubmissionFilter{GradingGroupID: &groupID})
	if err != nil {
		return dto.GroupScoresResponse{}, err
	}

	deduplicated := grading.Deduplicate(submissions)

	rows := make([]dto.GroupScoreRow, 0, len(deduplicated))
	for _, submission := range deduplicated {
		row := dto.GroupScoreRow{
			SubmissionID: submission.ID,
			StudentID:    submission.StudentID,
			StudentCode:  submission.StudentCode,
			StudentName:  submission.StudentName,
			SubmittedAt:  submission.SubmittedAt,
		}

		session, items, err := s.resolveCurrentGrading(ctx, submission.ID)
		if err != nil {
			// A single student's grading fetch must not take down the whole
			// table; the row degrades to not graded.
			s.logger.Warn().Err(err).Uint("submission_id", submission.ID).Msg("degrading score row after fetch failure")
			row.Score = grading.FormatScore(grading.Aggregate{}, false)
			rows = append(rows, row)
			continue
		}

		aggregate := grading.AggregateItems(session, items)
		row.TotalScore = aggregate.TotalScore
		row.MaxScore = aggregate.MaxScore
		row.Score = grading.FormatScore(aggregate, session != nil)

		if session != nil {
			response := dto.NewGradingSessionResponse(*session, items)
			row.GradingSession = &response
		}

		rows = append(rows, row)
	}

	response := dto.GroupScoresResponse{
		GradingGroupID: group.ID,
		GroupName:      group.Name,
		SemesterLabel:  grading.SemesterLabel(group.SemesterCode),
		Rows:           rows,
	}

	if err := s.store.SetJSON(ctx, cacheKey, response, s.cacheTTL); err != nil {
		s.logger.Warn().Err(err).Uint("group_id", groupID).Msg("failed to store overview cache")
	}

	return response, nil
}

func (s *gradingOverviewService) resolveCurrentGrading(ctx context.Context, submissionID uint) (*models.GradingSession, []models.GradeItem, error) {
	sessions, err := s.sessions.ListBySubmission(ctx, submissionID)
	if err != nil {
		return nil, nil, err
	}

	session := grading.LatestSession(sessions)
	if session == nil {
		return nil, nil, nil
	}

	items, err := s.items.ListBySession(ctx, session.ID)
	if err != nil {
		return nil, nil, err
	}

	return session, items, nil
}
