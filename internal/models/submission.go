package models

import "time"

// Submission represents a file a student handed in for a grading group.
// Resubmissions create new rows; the latest one per student is resolved at
// read time, never by deleting history.
type Submission struct {
	ID                uint       `gorm:"primaryKey" json:"id"`
	GradingGroupID    uint       `gorm:"not null;index" json:"grading_group_id"`
	StudentID         *uint      `gorm:"index" json:"student_id"`
	StudentCode       string     `gorm:"size:32" json:"student_code"`
	StudentName       string     `gorm:"size:255" json:"student_name"`
	ClassAssessmentID *uint      `json:"class_assessment_id"`
	ExamSessionID     *uint      `json:"exam_session_id"`
	SubmissionFile    string     `gorm:"size:512" json:"submission_file"`
	SubmittedAt       *time.Time `json:"submitted_at"`
	UpdatedAt         *time.Time `gorm:"autoUpdateTime:false" json:"updated_at"`
	CreatedAt         time.Time  `json:"created_at"`

	GradingGroup GradingGroup `gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE" json:"-"`
}

// EffectiveTime is the timestamp used to order resubmissions: the update time
// when present, otherwise the submit time, otherwise the zero time.
func (s Submission) EffectiveTime() time.Time {
	if s.UpdatedAt != nil {
		return *s.UpdatedAt
	}
	if s.SubmittedAt != nil {
		return *s.SubmittedAt
	}
	return time.Time{}
}
