package service

import (
	"context"
	"errors"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/apsas-edu/apsas-api/internal/dto"
	"github.com/apsas-edu/apsas-api/internal/models"
	"github.com/apsas-edu/apsas-api/internal/repository"
)

// ErrInvalidReleaseID indicates a release identifier is not a valid object id.
var ErrInvalidReleaseID = errors.New("invalid release id")

// AppReleaseService manages app build download links in the document store.
type AppReleaseService interface {
	List(ctx context.Context, platform string) ([]dto.AppReleaseResponse, error)
	LatestActive(ctx context.Context, platform string) (dto.AppReleaseResponse, error)
	Publish(ctx context.Context, payload dto.AppReleaseCreateRequest) (dto.AppReleaseResponse, error)
	Deactivate(ctx context.Context, id string) error
	Delete(ctx context.Context, id string) error
}

type appReleaseService struct {
	releases  repository.AppReleaseRepository
	validator *validator.Validate
	logger    zerolog.Logger
	now       func() time.Time
}

// NewAppReleaseService constructs the app release manager.
func NewAppReleaseService(releases repository.AppReleaseRepository, validate *validator.Validate, logger zerolog.Logger) AppReleaseService {
	return &appReleaseService{
		releases:  releases,
		validator: validate,
		logger:    logger.With().Str("component", "app_release_service").Logger(),
		now:       time.Now,
	}
}

func (s *appReleaseService) List(ctx context.Context, platform string) ([]dto.AppReleaseResponse, error) {
	releases, err := s.releases.List(ctx, platform)
	if err != nil {
		return nil, err
	}

	responses := make([]dto.AppReleaseResponse, 0, len(releases))
	for _, release := range releases {
		responses = append(responses, dto.NewAppReleaseResponse(release))
	}

	return responses, nil
}

func (s *appReleaseService) LatestActive(ctx context.Context, platform string) (dto.AppReleaseResponse, error) {
	release, err := s.releases.LatestActive(ctx, platform)
	if err != nil {
		return dto.AppReleaseResponse{}, err
	}

	return dto.NewAppReleaseResponse(release), nil
}

func (s *appReleaseService) Publish(ctx context.Context, payload dto.AppReleaseCreateRequest) (dto.AppReleaseResponse, error) {
	if err := s.validator.Struct(payload); err != nil {
		return dto.AppReleaseResponse{}, err
	}

	release := models.AppRelease{
		Platform:    payload.Platform,
		Version:     payload.Version,
		DownloadURL: payload.DownloadURL,
		Notes:       payload.Notes,
		Active:      true,
		ReleasedAt:  s.now().UTC(),
	}

	if err := s.releases.Create(ctx, &release); err != nil {
		return dto.AppReleaseResponse{}, err
	}

	s.logger.Info().Str("platform", release.Platform).Str("version", release.Version).Msg("app release published")

	return dto.NewAppReleaseResponse(release), nil
}

func (s *appReleaseService) Deactivate(ctx context.Context, id string) error {
	objectID, err := parseReleaseID(id)
	if err != nil {
		return err
	}

	return s.releases.SetActive(ctx, objectID, false)
}

func (s *appReleaseService) Delete(ctx context.Context, id string) error {
	objectID, err := parseReleaseID(id)
	if err != nil {
		return err
	}

	return s.releases.Delete(ctx, objectID)
}

func parseReleaseID(id string) (primitive.ObjectID, error) {
	objectID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return primitive.NilObjectID, ErrInvalidReleaseID
	}

	return objectID, nil
}
