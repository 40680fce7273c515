package handler

import (
	"errors"
	"fmt"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/apsas-edu/apsas-api/internal/service"
	"github.com/apsas-edu/apsas-api/internal/utils"
)

// GradingGroupHandler exposes score overviews, report exports and roster
// imports for a grading group.
type GradingGroupHandler struct {
	overview    service.GradingOverviewService
	reports     service.GradeReportService
	submissions service.SubmissionService
	logger      zerolog.Logger
}

// NewGradingGroupHandler builds a grading group handler instance.
func NewGradingGroupHandler(overview service.GradingOverviewService, reports service.GradeReportService, submissions service.SubmissionService, logger zerolog.Logger) *GradingGroupHandler {
	return &GradingGroupHandler{
		overview:    overview,
		reports:     reports,
		submissions: submissions,
		logger:      logger.With().Str("component", "grading_group_handler").Logger(),
	}
}

// Register attaches the routes to the provided router group.
func (h *GradingGroupHandler) Register(router fiber.Router) {
	router.Get("/:id/scores", h.scores)
	router.Get("/:id/report", h.exportReport)
	router.Post("/:id/roster", h.importRoster)
}

func (h *GradingGroupHandler) scores(c *fiber.Ctx) error {
	groupID, err := parseUintParam(c, "id")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, err.Error())
	}

	scores, err := h.overview.GroupScores(c.Context(), groupID)
	if err != nil {
		return h.handleError(c, err)
	}

	return utils.SendSuccess(c, "group scores retrieved", scores)
}

func (h *GradingGroupHandler) exportReport(c *fiber.Ctx) error {
	groupID, err := parseUintParam(c, "id")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, err.Error())
	}

	report, err := h.reports.Export(c.Context(), groupID)
	if err != nil {
		return h.handleError(c, err)
	}

	c.Set(fiber.HeaderContentType, "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	c.Set(fiber.HeaderContentDisposition, fmt.Sprintf("attachment; filename=%q", report.FileName))
	return c.Send(report.Content)
}

func (h *GradingGroupHandler) importRoster(c *fiber.Ctx) error {
	groupID, err := parseUintParam(c, "id")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, err.Error())
	}

	file, err := c.FormFile("file")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "roster file is required")
	}

	reader, err := file.Open()
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "unable to read roster file")
	}
	defer reader.Close()

	updated, err := h.submissions.ImportRoster(c.Context(), groupID, reader)
	if err != nil {
		return h.handleError(c, err)
	}

	return utils.SendSuccess(c, "roster imported", fiber.Map{"updated": updated})
}

func (h *GradingGroupHandler) handleError(c *fiber.Ctx, err error) error {
	var validationErrors validator.ValidationErrors
	switch {
	case errors.Is(err, service.ErrGradingGroupNotFound):
		return utils.SendError(c, fiber.StatusNotFound, "grading group not found")
	case errors.Is(err, service.ErrReportNoSubmissions):
		return utils.SendError(c, fiber.StatusUnprocessableEntity, "grading group has no submissions")
	case errors.Is(err, service.ErrReportTemplateMissing):
		return utils.SendError(c, fiber.StatusUnprocessableEntity, "grading group has no assessment template")
	case errors.Is(err, service.ErrReportElementUnlinked):
		return utils.SendError(c, fiber.StatusUnprocessableEntity, "assessment template has no course element")
	case errors.Is(err, service.ErrReportElementNotFound):
		return utils.SendError(c, fiber.StatusUnprocessableEntity, "course element not found")
	case errors.As(err, &validationErrors):
		return utils.SendError(c, fiber.StatusBadRequest, validationErrors.Error())
	default:
		h.logger.Error().Err(err).Msg("internal server error")
		return utils.SendError(c, fiber.StatusInternalServerError, "internal server error")
	}
}
