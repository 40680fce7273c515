package models

import (
	"time"

	"gorm.io/datatypes"
)

// GradingSession is one grading run over a submission. A submission may carry
// several sessions (regrades); the one with the latest creation time is the
// current one.
type GradingSession struct {
	ID             uint           `gorm:"primaryKey" json:"id"`
	SubmissionID   uint           `gorm:"not null;index" json:"submission_id"`
	Status         SessionStatus  `gorm:"size:16;not null" json:"status"`
	GradingType    GradingType    `gorm:"size:16;not null" json:"grading_type"`
	Grade          *float64       `json:"grade"`
	GradeItemCount int            `json:"grade_item_count"`
	GradingLogs    datatypes.JSON `gorm:"type:jsonb" json:"grading_logs"`
	CreatedAt      time.Time      `json:"created_at"`
	UpdatedAt      time.Time      `json:"updated_at"`

	Submission Submission `gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE" json:"-"`
}

// IsCompleted reports whether the session finished grading successfully.
func (s GradingSession) IsCompleted() bool {
	return s.Status == SessionStatusCompleted
}

// GradeItem is a single rubric-level score inside a grading session.
type GradeItem struct {
	ID                 uint      `gorm:"primaryKey" json:"id"`
	GradingSessionID   uint      `gorm:"not null;index" json:"grading_session_id"`
	RubricItemID       uint      `gorm:"not null" json:"rubric_item_id"`
	Score              float64   `json:"score"`
	RubricItemMaxScore *float64  `json:"rubric_item_max_score"`
	Comments           string    `gorm:"type:text" json:"comments"`
	CreatedAt          time.Time `json:"created_at"`

	GradingSession GradingSession `gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE" json:"-"`
}
