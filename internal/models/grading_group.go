package models

import "time"

// CourseElement is the course component a template grades against, e.g. an
// assignment or a practical exam. ElementType carries the numeric code used
// by the upstream curriculum system.
type CourseElement struct {
	ID          uint      `gorm:"primaryKey" json:"id"`
	Name        string    `gorm:"size:255;not null" json:"name"`
	ElementType int       `gorm:"not null" json:"element_type"`
	CreatedAt   time.Time `json:"created_at"`
}

// GradingGroup collects the submissions of one class (or exam sitting) that
// are graded against the same assessment template.
type GradingGroup struct {
	ID                   uint      `gorm:"primaryKey" json:"id"`
	Name                 string    `gorm:"size:255;not null" json:"name"`
	AssessmentTemplateID *uint     `gorm:"index" json:"assessment_template_id"`
	SemesterCode         string    `gorm:"size:16" json:"semester_code"`
	CreatedAt            time.Time `json:"created_at"`
	UpdatedAt            time.Time `json:"updated_at"`
}
