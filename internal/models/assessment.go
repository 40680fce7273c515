package models

import "time"

// AssessmentTemplate is the root of the static assessment hierarchy:
// template -> papers -> questions -> rubric items. The hierarchy is
// reference data; grading never mutates it.
type AssessmentTemplate struct {
	ID              uint      `gorm:"primaryKey" json:"id"`
	Name            string    `gorm:"size:255;not null" json:"name"`
	CourseElementID *uint     `gorm:"index" json:"course_element_id"`
	CreatedAt       time.Time `json:"created_at"`
	UpdatedAt       time.Time `json:"updated_at"`
}

// AssessmentPaper groups questions within a template.
type AssessmentPaper struct {
	ID                   uint      `gorm:"primaryKey" json:"id"`
	AssessmentTemplateID uint      `gorm:"not null;index" json:"assessment_template_id"`
	Name                 string    `gorm:"size:255;not null" json:"name"`
	CreatedAt            time.Time `json:"created_at"`

	AssessmentTemplate AssessmentTemplate `gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE" json:"-"`
}

// AssessmentQuestion is a single question within a paper.
type AssessmentQuestion struct {
	ID                uint      `gorm:"primaryKey" json:"id"`
	AssessmentPaperID uint      `gorm:"not null;index" json:"assessment_paper_id"`
	Title             string    `gorm:"size:512;not null" json:"title"`
	Content           string    `gorm:"type:text" json:"content"`
	CreatedAt         time.Time `json:"created_at"`

	AssessmentPaper AssessmentPaper `gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE" json:"-"`
}

// RubricItem describes one scoring criterion for a question.
type RubricItem struct {
	ID                   uint      `gorm:"primaryKey" json:"id"`
	AssessmentQuestionID uint      `gorm:"not null;index" json:"assessment_question_id"`
	Description          string    `gorm:"type:text;not null" json:"description"`
	MaxScore             float64   `json:"max_score"`
	CreatedAt            time.Time `json:"created_at"`

	AssessmentQuestion AssessmentQuestion `gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE" json:"-"`
}
