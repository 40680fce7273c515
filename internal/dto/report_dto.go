package dto

import "github.com/apsas-edu/apsas-api/internal/models"

// ReportRubricContext carries a rubric item with its question and paper
// labels for report rows.
type ReportRubricContext struct {
	PaperName     string  `json:"paper_name"`
	QuestionTitle string  `json:"question_title"`
	RubricItemID  uint    `json:"rubric_item_id"`
	Description   string  `json:"description"`
	MaxScore      float64 `json:"max_score"`
}

// ReportRow is one export row. The exporter emits one row per submission
// record, resubmissions included; the on-screen tables deduplicate but the
// report is an audit trail.
type ReportRow struct {
	Submission     SubmissionResponse      `json:"submission"`
	GradingSession *GradingSessionResponse `json:"grading_session"`
	GradeItems     []GradeItemResponse     `json:"grade_items"`
	Rubrics        []ReportRubricContext   `json:"rubrics"`
	// FeedbackTemplate is intentionally blank: a placeholder column block
	// lecturers fill in by hand after export.
	FeedbackTemplate  string `json:"feedback_template"`
	CourseElementName string `json:"course_element_name"`
	AssignmentType    string `json:"assignment_type"`
	ScoreDisplay      string `json:"score_display"`
}

// ReportResult is the assembled export: the rows written plus the file name
// the spreadsheet was generated under.
type ReportResult struct {
	FileName string      `json:"file_name"`
	Rows     []ReportRow `json:"rows"`
}

// AppReleaseCreateRequest publishes a new app build download link.
type AppReleaseCreateRequest struct {
	Platform    string `json:"platform" validate:"required,oneof=android ios windows macos"`
	Version     string `json:"version" validate:"required,max=32"`
	DownloadURL string `json:"download_url" validate:"required,url"`
	Notes       string `json:"notes" validate:"omitempty,max=2048"`
}

// AppReleaseResponse serializes an app release document.
type AppReleaseResponse struct {
	ID          string `json:"id"`
	Platform    string `json:"platform"`
	Version     string `json:"version"`
	DownloadURL string `json:"download_url"`
	Notes       string `json:"notes"`
	Active      bool   `json:"active"`
	ReleasedAt  string `json:"released_at"`
}

// NewAppReleaseResponse converts an AppRelease document into a DTO.
func NewAppReleaseResponse(model models.AppRelease) AppReleaseResponse {
	return AppReleaseResponse{
		ID:          model.ID.Hex(),
		Platform:    model.Platform,
		Version:     model.Version,
		DownloadURL: model.DownloadURL,
		Notes:       model.Notes,
		Active:      model.Active,
		ReleasedAt:  model.ReleasedAt.UTC().Format("2006-01-02T15:04:05Z"),
	}
}
