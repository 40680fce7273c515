package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/apsas-edu/apsas-api/internal/models"
)

// PageQuery carries the pagination inputs used by reference-data listings.
type PageQuery struct {
	PageNumber int
	PageSize   int
}

func (p PageQuery) apply(query *gorm.DB) *gorm.DB {
	if p.PageSize <= 0 {
		return query
	}

	page := p.PageNumber
	if page <= 0 {
		page = 1
	}

	return query.Offset((page - 1) * p.PageSize).Limit(p.PageSize)
}

// AssessmentRepository provides read access to the static assessment
// hierarchy (template, papers, questions, rubric items).
type AssessmentRepository interface {
	GetTemplate(ctx context.Context, id uint) (models.AssessmentTemplate, error)
	ListPapers(ctx context.Context, templateID uint, page PageQuery) ([]models.AssessmentPaper, int64, error)
	ListQuestions(ctx context.Context, paperID uint, page PageQuery) ([]models.AssessmentQuestion, int64, error)
	ListRubricItems(ctx context.Context, questionID uint, page PageQuery) ([]models.RubricItem, int64, error)
}

type assessmentRepository struct {
	db *gorm.DB
}

// NewAssessmentRepository instantiates the repository.
func NewAssessmentRepository(db *gorm.DB) AssessmentRepository {
	return &assessmentRepository{db: db}
}

func (r *assessmentRepository) GetTemplate(ctx context.Context, id uint) (models.AssessmentTemplate, error) {
	var template models.AssessmentTemplate
	if err := r.db.WithContext(ctx).First(&template, id).Error; err != nil {
		return models.AssessmentTemplate{}, err
	}

	return template, nil
}

func (r *assessmentRepository) ListPapers(ctx context.Context, templateID uint, page PageQuery) ([]models.AssessmentPaper, int64, error) {
	query := r.db.WithContext(ctx).Model(&models.AssessmentPaper{}).
		Where("assessment_template_id = ?", templateID)

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var papers []models.AssessmentPaper
	if err := page.apply(query).Order("id ASC").Find(&papers).Error; err != nil {
		return nil, 0, err
	}

	return papers, total, nil
}

func (r *assessmentRepository) ListQuestions(ctx context.Context, paperID uint, page PageQuery) ([]models.AssessmentQuestion, int64, error) {
	query := r.db.WithContext(ctx).Model(&models.AssessmentQuestion{}).
		Where("assessment_paper_id = ?", paperID)

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var questions []models.AssessmentQuestion
	if err := page.apply(query).Order("id ASC").Find(&questions).Error; err != nil {
		return nil, 0, err
	}

	return questions, total, nil
}

func (r *assessmentRepository) ListRubricItems(ctx context.Context, questionID uint, page PageQuery) ([]models.RubricItem, int64, error) {
	query := r.db.WithContext(ctx).Model(&models.RubricItem{}).
		Where("assessment_question_id = ?", questionID)

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var rubrics []models.RubricItem
	if err := page.apply(query).Order("id ASC").Find(&rubrics).Error; err != nil {
		return nil, 0, err
	}

	return rubrics, total, nil
}
