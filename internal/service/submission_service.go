package service

import (
	"context"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"time"

	"github.com/gabriel-vasile/mimetype"
	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"
	"gorm.io/gorm"

	"github.com/apsas-edu/apsas-api/internal/cache"
	"github.com/apsas-edu/apsas-api/internal/dto"
	"github.com/apsas-edu/apsas-api/internal/export"
	"github.com/apsas-edu/apsas-api/internal/models"
	"github.com/apsas-edu/apsas-api/internal/repository"
	"github.com/apsas-edu/apsas-api/internal/utils"
)

// ErrSubmissionNotFound indicates a submission could not be found.
var ErrSubmissionNotFound = errors.New("submission not found")

// ErrSubmissionTypeNotAllowed indicates the uploaded file type is not accepted.
var ErrSubmissionTypeNotAllowed = errors.New("submission file type not allowed")

// FileUploader stores a submission file and returns its URL.
type FileUploader interface {
	Upload(ctx context.Context, name string, reader io.Reader) (string, error)
}

// SubmissionService orchestrates submission workflows.
type SubmissionService interface {
	List(ctx context.Context, filter dto.SubmissionFilter) ([]dto.SubmissionResponse, error)
	Create(ctx context.Context, payload dto.SubmissionCreateRequest, file *multipart.FileHeader) (dto.SubmissionResponse, error)
	ImportRoster(ctx context.Context, groupID uint, reader io.Reader) (int, error)
}

type submissionService struct {
	submissions repository.SubmissionRepository
	groups      repository.GradingGroupRepository
	validator   *validator.Validate
	uploader    FileUploader
	store       cache.Store
	logger      zerolog.Logger
	now         func() time.Time
}

// NewSubmissionService constructs a SubmissionService instance.
func NewSubmissionService(
	submissions repository.SubmissionRepository,
	groups repository.GradingGroupRepository,
	validate *validator.Validate,
	uploader FileUploader,
	store cache.Store,
	logger zerolog.Logger,
) SubmissionService {
	return &submissionService{
		submissions: submissions,
		groups:      groups,
		validator:   validate,
		uploader:    uploader,
		store:       store,
		logger:      logger.With().Str("component", "submission_service").Logger(),
		now:         time.Now,
	}
}

func (s *submissionService) List(ctx context.Context, filter dto.SubmissionFilter) ([]dto.SubmissionResponse, error) {
	if err := s.validator.Struct(filter); err != nil {
		return nil, err
	}

	submissions, err := s.submissions.List(ctx, repository.SubmissionFilter{
		GradingGroupID: filter.GradingGroupID,
		StudentID:      filter.StudentID,
	})
	if err != nil {
		return nil, err
	}

	return dto.NewSubmissionResponseSlice(submissions), nil
}

func (s *submissionService) Create(ctx context.Context, payload dto.SubmissionCreateRequest, file *multipart.FileHeader) (dto.SubmissionResponse, error) {
	if err := s.validator.Struct(payload); err != nil {
		return dto.SubmissionResponse{}, err
	}

	if file == nil {
		return dto.SubmissionResponse{}, fmt.Errorf("submission file is required")
	}

	if _, err := s.groups.GetByID(ctx, payload.GradingGroupID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return dto.SubmissionResponse{}, ErrGradingGroupNotFound
		}
		return dto.SubmissionResponse{}, err
	}

	submittedAt, err := utils.ParseOptionalAPITime(payload.SubmittedAt)
	if err != nil {
		return dto.SubmissionResponse{}, fmt.Errorf("invalid submitted_at: %w", err)
	}
	if submittedAt == nil {
		now := s.now().UTC()
		submittedAt = &now
	}

	if err := validateFileType(file); err != nil {
		return dto.SubmissionResponse{}, err
	}

	reader, err := file.Open()
	if err != nil {
		return dto.SubmissionResponse{}, fmt.Errorf("failed to open file: %w", err)
	}
	defer reader.Close()

	uploadURL, err := s.uploader.Upload(ctx, file.Filename, reader)
	if err != nil {
		return dto.SubmissionResponse{}, fmt.Errorf("failed to upload file: %w", err)
	}

	submission := models.Submission{
		GradingGroupID:    payload.GradingGroupID,
		StudentID:         payload.StudentID,
		StudentCode:       payload.StudentCode,
		StudentName:       payload.StudentName,
		ClassAssessmentID: payload.ClassAssessmentID,
		ExamSessionID:     payload.ExamSessionID,
		SubmissionFile:    uploadURL,
		SubmittedAt:       submittedAt,
	}

	if err := s.submissions.Create(ctx, &submission); err != nil {
		return dto.SubmissionResponse{}, err
	}

	if err := s.store.Invalidate(ctx, cache.OverviewKey(payload.GradingGroupID)); err != nil {
		s.logger.Warn().Err(err).Uint("group_id", payload.GradingGroupID).Msg("failed to invalidate overview cache")
	}

	s.logger.Info().Uint("submission_id", submission.ID).Msg("submission created")

	return dto.NewSubmissionResponse(submission), nil
}

// ImportRoster backfills student names on a group's submissions from an
// uploaded roster sheet, matching by student code. Returns the number of
// submissions updated.
func (s *submissionService) ImportRoster(ctx context.Context, groupID uint, reader io.Reader) (int, error) {
	if _, err := s.groups.GetByID(ctx, groupID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return 0, ErrGradingGroupNotFound
		}
		return 0, err
	}

	entries, err := export.ParseStudentRoster(reader)
	if err != nil {
		return 0, err
	}

	nameByCode := make(map[string]string, len(entries))
	for _, entry := range entries {
		if entry.StudentCode != "" && entry.StudentName != "" {
			nameByCode[entry.StudentCode] = entry.StudentName
		}
	}

	submissions, err := s.submissions.List(ctx, repository.SubmissionFilter{GradingGroupID: &groupID})
	if err != nil {
		return 0, err
	}

	updated := 0
	for i := range submissions {
		name, ok := nameByCode[submissions[i].StudentCode]
		if !ok || submissions[i].StudentName == name {
			continue
		}

		submissions[i].StudentName = name
		if err := s.submissions.Update(ctx, &submissions[i]); err != nil {
			s.logger.Warn().Err(err).Uint("submission_id", submissions[i].ID).Msg("failed to backfill student name")
			continue
		}
		updated++
	}

	if updated > 0 {
		if err := s.store.Invalidate(ctx, cache.OverviewKey(groupID)); err != nil {
			s.logger.Warn().Err(err).Uint("group_id", groupID).Msg("failed to invalidate overview cache")
		}
	}

	s.logger.Info().Uint("group_id", groupID).Int("updated", updated).Msg("roster imported")

	return updated, nil
}

func validateFileType(file *multipart.FileHeader) error {
	reader, err := file.Open()
	if err != nil {
		return fmt.Errorf("failed to open file: %w", err)
	}
	defer reader.Close()

	mime, err := mimetype.DetectReader(reader)
	if err != nil {
		return fmt.Errorf("failed to detect file type: %w", err)
	}

	allowed := []string{"application/pdf", "application/zip", "application/x-zip-compressed", "text/plain"}
	for _, a := range allowed {
		if mime.Is(a) {
			return nil
		}
	}

	return fmt.Errorf("%w: %s", ErrSubmissionTypeNotAllowed, mime.String())
}
