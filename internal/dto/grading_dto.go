package dto

import (
	"time"

	"github.com/apsas-edu/apsas-api/internal/grading"
	"github.com/apsas-edu/apsas-api/internal/models"
)

// GradeItemInput is one rubric-level score entered by a lecturer.
type GradeItemInput struct {
	RubricItemID       uint     `json:"rubric_item_id" validate:"required,gt=0"`
	Score              float64  `json:"score" validate:"gte=0"`
	RubricItemMaxScore *float64 `json:"rubric_item_max_score" validate:"omitempty,gte=0"`
	Comments           string   `json:"comments"`
}

// GradingSessionCreateRequest starts a grading session for a submission.
// GradingTypeCode carries the numeric enum used on the wire; it is decoded
// once here at the boundary.
type GradingSessionCreateRequest struct {
	SubmissionID    uint             `json:"submission_id" validate:"required,gt=0"`
	GradingTypeCode int              `json:"grading_type" validate:"gte=0,lte=2"`
	Grade           *float64         `json:"grade" validate:"omitempty,gte=0"`
	SubmissionText  string           `json:"submission_text"`
	Items           []GradeItemInput `json:"items" validate:"omitempty,dive"`
}

// GradeItemResponse serializes a rubric-level grade item.
type GradeItemResponse struct {
	ID                 uint     `json:"id"`
	GradingSessionID   uint     `json:"grading_session_id"`
	RubricItemID       uint     `json:"rubric_item_id"`
	Score              float64  `json:"score"`
	RubricItemMaxScore *float64 `json:"rubric_item_max_score"`
	Comments           string   `json:"comments"`
}

// GradingSessionResponse serializes a grading session with its items.
type GradingSessionResponse struct {
	ID             uint                `json:"id"`
	SubmissionID   uint                `json:"submission_id"`
	Status         string              `json:"status"`
	GradingType    string              `json:"grading_type"`
	Grade          *float64            `json:"grade"`
	GradeItemCount int                 `json:"grade_item_count"`
	CreatedAt      time.Time           `json:"created_at"`
	UpdatedAt      time.Time           `json:"updated_at"`
	Items          []GradeItemResponse `json:"items,omitempty"`
}

// NewGradeItemResponse converts a GradeItem model into a DTO.
func NewGradeItemResponse(model models.GradeItem) GradeItemResponse {
	return GradeItemResponse{
		ID:                 model.ID,
		GradingSessionID:   model.GradingSessionID,
		RubricItemID:       model.RubricItemID,
		Score:              model.Score,
		RubricItemMaxScore: model.RubricItemMaxScore,
		Comments:           model.Comments,
	}
}

// NewGradingSessionResponse converts a GradingSession model into a DTO.
func NewGradingSessionResponse(model models.GradingSession, items []models.GradeItem) GradingSessionResponse {
	response := GradingSessionResponse{
		ID:             model.ID,
		SubmissionID:   model.SubmissionID,
		Status:         string(model.Status),
		GradingType:    string(model.GradingType),
		Grade:          model.Grade,
		GradeItemCount: model.GradeItemCount,
		CreatedAt:      model.CreatedAt,
		UpdatedAt:      model.UpdatedAt,
	}

	for _, item := range items {
		response.Items = append(response.Items, NewGradeItemResponse(item))
	}

	return response
}

// GroupScoreRow is one per-student entry in the grading group score table.
type GroupScoreRow struct {
	SubmissionID   uint                    `json:"submission_id"`
	StudentID      *uint                   `json:"student_id"`
	StudentCode    string                  `json:"student_code"`
	StudentName    string                  `json:"student_name"`
	SubmittedAt    *time.Time              `json:"submitted_at"`
	GradingSession *GradingSessionResponse `json:"grading_session"`
	TotalScore     float64                 `json:"total_score"`
	MaxScore       *float64                `json:"max_score"`
	Score          grading.ScoreDisplay    `json:"score"`
}

// GroupScoresResponse is the deduplicated, scored view of a grading group.
type GroupScoresResponse struct {
	GradingGroupID uint            `json:"grading_group_id"`
	GroupName      string          `json:"group_name"`
	SemesterLabel  string          `json:"semester_label"`
	Rows           []GroupScoreRow `json:"rows"`
}
