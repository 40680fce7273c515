package handler

import (
	"errors"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/apsas-edu/apsas-api/internal/dto"
	"github.com/apsas-edu/apsas-api/internal/repository"
	"github.com/apsas-edu/apsas-api/internal/service"
	"github.com/apsas-edu/apsas-api/internal/utils"
)

// AppReleaseHandler manages desktop and mobile app release endpoints.
type AppReleaseHandler struct {
	service service.AppReleaseService
	logger  zerolog.Logger
}

// NewAppReleaseHandler builds an app release handler instance.
func NewAppReleaseHandler(service service.AppReleaseService, logger zerolog.Logger) *AppReleaseHandler {
	return &AppReleaseHandler{
		service: service,
		logger:  logger.With().Str("component", "app_release_handler").Logger(),
	}
}

// RegisterPublic attaches the unauthenticated download routes.
func (h *AppReleaseHandler) RegisterPublic(router fiber.Router) {
	router.Get("/latest", h.latest)
}

// Register attaches the management routes to the provided router group.
func (h *AppReleaseHandler) Register(router fiber.Router) {
	router.Get("", h.list)
	router.Post("", h.publish)
	router.Patch("/:id/deactivate", h.deactivate)
	router.Delete("/:id", h.remove)
}

func (h *AppReleaseHandler) list(c *fiber.Ctx) error {
	releases, err := h.service.List(c.Context(), c.Query("platform"))
	if err != nil {
		return h.handleError(c, err)
	}

	return utils.SendSuccess(c, "app releases retrieved", releases)
}

func (h *AppReleaseHandler) latest(c *fiber.Ctx) error {
	release, err := h.service.LatestActive(c.Context(), c.Query("platform"))
	if err != nil {
		return h.handleError(c, err)
	}

	return utils.SendSuccess(c, "latest release retrieved", release)
}

func (h *AppReleaseHandler) publish(c *fiber.Ctx) error {
	var payload dto.AppReleaseCreateRequest
	if err := c.BodyParser(&payload); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid request body")
	}

	release, err := h.service.Publish(c.Context(), payload)
	if err != nil {
		return h.handleError(c, err)
	}

	return utils.SendSuccess(c, "app release published", release)
}

func (h *AppReleaseHandler) deactivate(c *fiber.Ctx) error {
	if err := h.service.Deactivate(c.Context(), c.Params("id")); err != nil {
		return h.handleError(c, err)
	}

	return utils.SendSuccess(c, "app release deactivated", nil)
}

func (h *AppReleaseHandler) remove(c *fiber.Ctx) error {
	if err := h.service.Delete(c.Context(), c.Params("id")); err != nil {
		return h.handleError(c, err)
	}

	return utils.SendSuccess(c, "app release deleted", nil)
}

func (h *AppReleaseHandler) handleError(c *fiber.Ctx, err error) error {
	var validationErrors validator.ValidationErrors
	switch {
	case errors.Is(err, repository.ErrAppReleaseNotFound):
		return utils.SendError(c, fiber.StatusNotFound, "app release not found")
	case errors.Is(err, service.ErrInvalidReleaseID):
		return utils.SendError(c, fiber.StatusBadRequest, "invalid release id")
	case errors.As(err, &validationErrors):
		return utils.SendError(c, fiber.StatusBadRequest, validationErrors.Error())
	default:
		h.logger.Error().Err(err).Msg("internal server error")
		return utils.SendError(c, fiber.StatusInternalServerError, "internal server error")
	}
}
