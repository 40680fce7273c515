package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/apsas-edu/apsas-api/internal/models"
)

// GradingGroupRepository provides access to grading groups and the course
// elements their templates grade against.
type GradingGroupRepository interface {
	GetByID(ctx context.Context, id uint) (models.GradingGroup, error)
	GetCourseElement(ctx context.Context, id uint) (models.CourseElement, error)
}

type gradingGroupRepository struct {
	db *gorm.DB
}

// NewGradingGroupRepository instantiates the repository.
func NewGradingGroupRepository(db *gorm.DB) GradingGroupRepository {
	return &gradingGroupRepository{db: db}
}

func (r *gradingGroupRepository) GetByID(ctx context.Context, id uint) (models.GradingGroup, error) {
	var group models.GradingGroup
	if err := r.db.WithContext(ctx).First(&group, id).Error; err != nil {
		return models.GradingGroup{}, err
	}

	return group, nil
}

func (r *gradingGroupRepository) GetCourseElement(ctx context.Context, id uint) (models.CourseElement, error) {
	var element models.CourseElement
	if err := r.db.WithContext(ctx).First(&element, id).Error; err != nil {
		return models.CourseElement{}, err
	}

	return element, nil
}
