package dto

import (
	"time"

	"github.com/apsas-edu/apsas-api/internal/models"
)

// SubmissionCreateRequest describes the multipart payload for submission upload.
// Timestamps arrive as raw strings from the upstream academic system and are
// normalized during ingestion.
type SubmissionCreateRequest struct {
	GradingGroupID    uint    `form:"grading_group_id" validate:"required,gt=0"`
	StudentID         *uint   `form:"student_id"`
	StudentCode       string  `form:"student_code" validate:"omitempty,max=32"`
	StudentName       string  `form:"student_name" validate:"omitempty,max=255"`
	ClassAssessmentID *uint   `form:"class_assessment_id"`
	ExamSessionID     *uint   `form:"exam_session_id"`
	SubmittedAt       *string `form:"submitted_at"`
}

// SubmissionFilter describes query string filters for listing submissions.
type SubmissionFilter struct {
	GradingGroupID *uint `query:"grading_group_id" validate:"required"`
	StudentID      *uint `query:"student_id"`
}

// SubmissionResponse is returned to API clients when viewing submissions.
type SubmissionResponse struct {
	ID                uint       `json:"id"`
	GradingGroupID    uint       `json:"grading_group_id"`
	StudentID         *uint      `json:"student_id"`
	StudentCode       string     `json:"student_code"`
	StudentName       string     `json:"student_name"`
	ClassAssessmentID *uint      `json:"class_assessment_id"`
	ExamSessionID     *uint      `json:"exam_session_id"`
	SubmissionFile    string     `json:"submission_file"`
	SubmittedAt       *time.Time `json:"submitted_at"`
	UpdatedAt         *time.Time `json:"updated_at"`
	CreatedAt         time.Time  `json:"created_at"`
}

// NewSubmissionResponse converts a Submission model into a DTO.
func NewSubmissionResponse(model models.Submission) SubmissionResponse {
	return SubmissionResponse{
		ID:                model.ID,
		GradingGroupID:    model.GradingGroupID,
		StudentID:         model.StudentID,
		StudentCode:       model.StudentCode,
		StudentName:       model.StudentName,
		ClassAssessmentID: model.ClassAssessmentID,
		ExamSessionID:     model.ExamSessionID,
		SubmissionFile:    model.SubmissionFile,
		SubmittedAt:       model.SubmittedAt,
		UpdatedAt:         model.UpdatedAt,
		CreatedAt:         model.CreatedAt,
	}
}

// NewSubmissionResponseSlice converts submission models into DTOs.
func NewSubmissionResponseSlice(models []models.Submission) []SubmissionResponse {
	responses := make([]SubmissionResponse, 0, len(models))
	for _, submission := range models {
		responses = append(responses, NewSubmissionResponse(submission))
	}

	return responses
}
