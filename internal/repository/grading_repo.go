package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/apsas-edu/apsas-api/internal/models"
)

// GradingSessionRepository defines data operations for grading sessions.
type GradingSessionRepository interface {
	ListBySubmission(ctx context.Context, submissionID uint) ([]models.GradingSession, error)
	GetByID(ctx context.Context, id uint) (models.GradingSession, error)
	Create(ctx context.Context, session *models.GradingSession) error
	Update(ctx context.Context, session *models.GradingSession) error
}

type gradingSessionRepository struct {
	db *gorm.DB
}

// NewGradingSessionRepository instantiates the repository.
func NewGradingSessionRepository(db *gorm.DB) GradingSessionRepository {
	return &gradingSessionRepository{db: db}
}

func (r *gradingSessionRepository) ListBySubmission(ctx context.Context, submissionID uint) ([]models.GradingSession, error) {
	var sessions []models.GradingSession
	err := r.db.WithContext(ctx).
		Where("submission_id = ?", submissionID).
		Order("created_at DESC, id DESC").
		Find(&sessions).Error
	if err != nil {
		return nil, err
	}

	return sessions, nil
}

func (r *gradingSessionRepository) GetByID(ctx context.Context, id uint) (models.GradingSession, error) {
	var session models.GradingSession
	if err := r.db.WithContext(ctx).First(&session, id).Error; err != nil {
		return models.GradingSession{}, err
	}

	return session, nil
}

func (r *gradingSessionRepository) Create(ctx context.Context, session *models.GradingSession) error {
	return r.db.WithContext(ctx).Create(session).Error
}

func (r *gradingSessionRepository) Update(ctx context.Context, session *models.GradingSession) error {
	return r.db.WithContext(ctx).Save(session).Error
}

// GradeItemRepository defines data operations for rubric-level grade items.
type GradeItemRepository interface {
	ListBySession(ctx context.Context, sessionID uint) ([]models.GradeItem, error)
	CreateBatch(ctx context.Context, items []models.GradeItem) error
}

type gradeItemRepository struct {
	db *gorm.DB
}

// NewGradeItemRepository instantiates the repository.
func NewGradeItemRepository(db *gorm.DB) GradeItemRepository {
	return &gradeItemRepository{db: db}
}

func (r *gradeItemRepository) ListBySession(ctx context.Context, sessionID uint) ([]models.GradeItem, error) {
	var items []models.GradeItem
	err := r.db.WithContext(ctx).
		Where("grading_session_id = ?", sessionID).
		Order("rubric_item_id ASC").
		Find(&items).Error
	if err != nil {
		return nil, err
	}

	return items, nil
}

func (r *gradeItemRepository) CreateBatch(ctx context.Context, items []models.GradeItem) error {
	if len(items) == 0 {
		return nil
	}

	return r.db.WithContext(ctx).Create(&items).Error
}
