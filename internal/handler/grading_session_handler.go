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

// GradingSessionHandler manages grading session endpoints.
type GradingSessionHandler struct {
	service service.GradingSessionService
	logger  zerolog.Logger
}

// NewGradingSessionHandler builds a grading session handler instance.
func NewGradingSessionHandler(service service.GradingSessionService, logger zerolog.Logger) *GradingSessionHandler {
	return &GradingSessionHandler{
		service: service,
		logger:  logger.With().Str("component", "grading_session_handler").Logger(),
	}
}

// Register attaches the routes to the provided router group.
func (h *GradingSessionHandler) Register(router fiber.Router) {
	router.Post("", h.create)
	router.Get("/submission/:submissionID", h.listBySubmission)
}

func (h *GradingSessionHandler) create(c *fiber.Ctx) error {
	var payload dto.GradingSessionCreateRequest
	if err := c.BodyParser(&payload); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid request body")
	}

	session, err := h.service.Create(c.Context(), payload)
	if err != nil {
		return h.handleError(c, err)
	}

	return utils.SendSuccess(c, "grading session created", session)
}

func (h *GradingSessionHandler) listBySubmission(c *fiber.Ctx) error {
	submissionID, err := parseUintParam(c, "submissionID")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, err.Error())
	}

	sessions, err := h.service.ListBySubmission(c.Context(), submissionID)
	if err != nil {
		return h.handleError(c, err)
	}

	return utils.SendSuccess(c, "grading sessions retrieved", sessions)
}

func (h *GradingSessionHandler) handleError(c *fiber.Ctx, err error) error {
	var validationErrors validator.ValidationErrors
	switch {
	case errors.Is(err, service.ErrSubmissionNotFound):
		return utils.SendError(c, fiber.StatusNotFound, "submission not found")
	case errors.Is(err, service.ErrGradingNotConfigured):
		return utils.SendError(c, fiber.StatusServiceUnavailable, "ai grading is not configured")
	case errors.As(err, &validationErrors):
		return utils.SendError(c, fiber.StatusBadRequest, validationErrors.Error())
	default:
		h.logger.Error().Err(err).Msg("internal server error")
		return utils.SendError(c, fiber.StatusInternalServerError, "internal server error")
	}
}
