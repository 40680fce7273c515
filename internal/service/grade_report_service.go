package service

import (
	"context"
	"errors"

	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"gorm.io/gorm"

	"github.com/apsas-edu/apsas-api/internal/dto"
	"github.com/apsas-edu/apsas-api/internal/export"
	"github.com/apsas-edu/apsas-api/internal/grading"
	"github.com/apsas-edu/apsas-api/internal/models"
	"github.com/apsas-edu/apsas-api/internal/observability"
	"github.com/apsas-edu/apsas-api/internal/repository"
)

// Blocking report preconditions. Each maps to a distinct user-facing message
// and stops the export before any row is assembled.
var (
	ErrReportNoSubmissions   = errors.New("grading group has no submissions")
	ErrReportTemplateMissing = errors.New("grading group has no assessment template")
	ErrReportElementUnlinked = errors.New("assessment template has no course element")
	ErrReportElementNotFound = errors.New("course element not found")
)

// GradeReport is the rendered export plus the rows it was built from.
type GradeReport struct {
	FileName string
	Content  []byte
	Rows     []dto.ReportRow
}

// GradeReportService assembles and renders grade report exports.
type GradeReportService interface {
	Export(ctx context.Context, groupID uint) (GradeReport, error)
}

type gradeReportService struct {
	groups      repository.GradingGroupRepository
	submissions repository.SubmissionRepository
	sessions    repository.GradingSessionRepository
	items       repository.GradeItemRepository
	assessments repository.AssessmentRepository
	writer      export.ReportWriter
	logger      zerolog.Logger
	tracer      trace.Tracer
}

// NewGradeReportService constructs the report exporter.
func NewGradeReportService(
	groups repository.GradingGroupRepository,
	submissions repository.SubmissionRepository,
	sessions repository.GradingSessionRepository,
	items repository.GradeItemRepository,
	assessments repository.AssessmentRepository,
	writer export.ReportWriter,
	logger zerolog.Logger,
) GradeReportService {
	return &gradeReportService{
		groups:      groups,
		submissions: submissions,
		sessions:    sessions,
		items:       items,
		assessments: assessments,
		writer:      writer,
		logger:      logger.With().Str("component", "grade_report_service").Logger(),
		tracer:      otel.Tracer("github.com/apsas-edu/apsas-api/internal/service/grade_report"),
	}
}

// Export builds one row per submission record in the group. Unlike the score
// table it does NOT deduplicate resubmissions: the report is an audit trail,
// so every submission appears, in listing order. Per-submission grading
// fetch failures degrade that row instead of aborting the export.
func (s *gradeReportService) Export(ctx context.Context, groupID uint) (GradeReport, error) {
	ctx, span := s.tracer.Start(ctx, "report.export", trace.WithAttributes(
		attribute.Int64("report.group_id", int64(groupID)),
	))
	defer span.End()

	group, err := s.groups.GetByID(ctx, groupID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return GradeReport{}, ErrGradingGroupNotFound
		}
		return GradeReport{}, err
	}

	submissions, err := s.submissions.List(ctx, repository.SubmissionFilter{GradingGroupID: &groupID})
	if err != nil {
		return GradeReport{}, err
	}

	if len(submissions) == 0 {
		span.SetStatus(codes.Error, "no_submissions")
		return GradeReport{}, ErrReportNoSubmissions
	}

	if group.AssessmentTemplateID == nil {
		span.SetStatus(codes.Error, "template_missing")
		return GradeReport{}, ErrReportTemplateMissing
	}

	template, err := s.assessments.GetTemplate(ctx, *group.AssessmentTemplateID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			span.SetStatus(codes.Error, "template_missing")
			return GradeReport{}, ErrReportTemplateMissing
		}
		return GradeReport{}, err
	}

	if template.CourseElementID == nil {
		span.SetStatus(codes.Error, "element_unlinked")
		return GradeReport{}, ErrReportElementUnlinked
	}

	element, err := s.groups.GetCourseElement(ctx, *template.CourseElementID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			span.SetStatus(codes.Error, "element_not_found")
			return GradeReport{}, ErrReportElementNotFound
		}
		return GradeReport{}, err
	}

	assignmentType := models.AssignmentTypeLabel(element.ElementType)
	rubrics := s.collectRubricContext(ctx, template.ID)

	rows := make([]dto.ReportRow, 0, len(submissions))
	degraded := 0
	for _, submission := range submissions {
		row := dto.ReportRow{
			Submission:        dto.NewSubmissionResponse(submission),
			Rubrics:           rubrics,
			CourseElementName: element.Name,
			AssignmentType:    assignmentType,
		}

		session, items, err := s.resolveGrading(ctx, submission.ID)
		if err != nil {
			s.logger.Warn().Err(err).Uint("submission_id", submission.ID).Msg("degrading report row after fetch failure")
			degraded++
			row.ScoreDisplay = string(grading.ScoreTagNotGraded)
			rows = append(rows, row)
			continue
		}

		aggregate := grading.AggregateItems(session, items)
		display := grading.FormatScore(aggregate, session != nil)
		if display.Tag == grading.ScoreTagNotGraded {
			row.ScoreDisplay = string(grading.ScoreTagNotGraded)
		} else {
			row.ScoreDisplay = display.Display
		}

		if session != nil {
			response := dto.NewGradingSessionResponse(*session, items)
			row.GradingSession = &response
			for _, item := range items {
				row.GradeItems = append(row.GradeItems, dto.NewGradeItemResponse(item))
			}
		}

		rows = append(rows, row)
	}

	fileName := export.ReportFileName(template.Name, group.ID)
	content, err := s.writer.Write(fileName, rows)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "write_failed")
		return GradeReport{}, err
	}

	observability.ReportExports().WithLabelValues(assignmentType).Inc()
	span.SetAttributes(
		attribute.Int("report.rows", len(rows)),
		attribute.Int("report.degraded_rows", degraded),
	)
	s.logger.Info().
		Uint("group_id", groupID).
		Int("rows", len(rows)).
		Int("degraded_rows", degraded).
		Str("file_name", fileName).
		Msg("grade report exported")

	return GradeReport{FileName: fileName, Content: content, Rows: rows}, nil
}

// collectRubricContext walks template -> papers -> questions -> rubric items
// for row labeling. This enrichment is best-effort: any failure logs and
// yields whatever was gathered so far rather than blocking the export.
func (s *gradeReportService) collectRubricContext(ctx context.Context, templateID uint) []dto.ReportRubricContext {
	var rubricRows []dto.ReportRubricContext

	papers, _, err := s.assessments.ListPapers(ctx, templateID, repository.PageQuery{})
	if err != nil {
		s.logger.Warn().Err(err).Uint("template_id", templateID).Msg("failed to load papers for report context")
		return rubricRows
	}

	for _, paper := range papers {
		questions, _, err := s.assessments.ListQuestions(ctx, paper.ID, repository.PageQuery{})
		if err != nil {
			s.logger.Warn().Err(err).Uint("paper_id", paper.ID).Msg("failed to load questions for report context")
			continue
		}

		for _, question := range questions {
			rubrics, _, err := s.assessments.ListRubricItems(ctx, question.ID, repository.PageQuery{})
			if err != nil {
				s.logger.Warn().Err(err).Uint("question_id", question.ID).Msg("failed to load rubric items for report context")
				continue
			}

			for _, rubric := range rubrics {
				rubricRows = append(rubricRows, dto.ReportRubricContext{
					PaperName:     paper.Name,
					QuestionTitle: question.Title,
					RubricItemID:  rubric.ID,
					Description:   rubric.Description,
					MaxScore:      rubric.MaxScore,
				})
			}
		}
	}

	return rubricRows
}

func (s *gradeReportService) resolveGrading(ctx context.Context, submissionID uint) (*models.GradingSession, []models.GradeItem, error) {
	sessions, err := s.sessions.ListBySubmission(ctx, submissionID)
	if err != nil {
		return nil, nil, err
	}

	session := grading.LatestSession(sessions)
	if session == nil {
		return nil, nil, nil
	}

	items, err := s.items.ListBySession(ctx, session.ID)
	if err != nil {
		return nil, nil, err
	}

	return session, items, nil
}
