package handler

import (
	"errors"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/apsas-edu/apsas-api/internal/dto"
	"github.com/apsas-edu/apsas-api/internal/service"
	"github.com/apsas-edu/apsas-api/internal/utils"
)

// SubmissionHandler manages submission endpoints.
type SubmissionHandler struct {
	service service.SubmissionService
	logger  zerolog.Logger
}

// NewSubmissionHandler builds a submission handler instance.
func NewSubmissionHandler(service service.SubmissionService, logger zerolog.Logger) *SubmissionHandler {
	return &SubmissionHandler{
		service: service,
		logger:  logger.With().Str("component", "submission_handler").Logger(),
	}
}

// Register attaches the routes to the provided router group.
func (h *SubmissionHandler) Register(router fiber.Router) {
	router.Get("", h.list)
	router.Post("", h.create)
}

func (h *SubmissionHandler) list(c *fiber.Ctx) error {
	filter := dto.SubmissionFilter{}
	groupID, err := parseQueryUint(c, "grading_group_id")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid grading_group_id")
	}
	filter.GradingGroupID = groupID

	if studentID, err := parseQueryUint(c, "student_id"); err == nil && studentID != nil {
		filter.StudentID = studentID
	}

	submissions, err := h.service.List(c.Context(), filter)
	if err != nil {
		return h.handleError(c, err)
	}

	return utils.SendSuccess(c, "submissions retrieved", submissions)
}

func (h *SubmissionHandler) create(c *fiber.Ctx) error {
	var payload dto.SubmissionCreateRequest

	groupID, err := parseFormUint(c, "grading_group_id")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, err.Error())
	}
	payload.GradingGroupID = *groupID

	if studentID, err := parseOptionalFormUint(c, "student_id"); err == nil {
		payload.StudentID = studentID
	}
	if classAssessmentID, err := parseOptionalFormUint(c, "class_assessment_id"); err == nil {
		payload.ClassAssessmentID = classAssessmentID
	}
	if examSessionID, err := parseOptionalFormUint(c, "exam_session_id"); err == nil {
		payload.ExamSessionID = examSessionID
	}

	payload.StudentCode = c.FormValue("student_code")
	payload.StudentName = c.FormValue("student_name")
	if submittedAt := c.FormValue("submitted_at"); submittedAt != "" {
		payload.SubmittedAt = &submittedAt
	}

	file, err := c.FormFile("file")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "file is required")
	}

	submission, err := h.service.Create(c.Context(), payload, file)
	if err != nil {
		return h.handleError(c, err)
	}

	return utils.SendSuccess(c, "submission created", submission)
}

func (h *SubmissionHandler) handleError(c *fiber.Ctx, err error) error {
	var validationErrors validator.ValidationErrors
	switch {
	case errors.Is(err, service.ErrGradingGroupNotFound):
		return utils.SendError(c, fiber.StatusNotFound, "grading group not found")
	case errors.Is(err, service.ErrSubmissionNotFound):
		return utils.SendError(c, fiber.StatusNotFound, "submission not found")
	case errors.Is(err, service.ErrSubmissionTypeNotAllowed):
		return utils.SendError(c, fiber.StatusUnsupportedMediaType, "submission file type not allowed")
	case errors.As(err, &validationErrors):
		return utils.SendError(c, fiber.StatusBadRequest, validationErrors.Error())
	default:
		h.logger.Error().Err(err).Msg("internal server error")
		return utils.SendError(c, fiber.StatusInternalServerError, "internal server error")
	}
}
