package handler_test

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	"github.com/apsas-edu/apsas-api/internal/config"
	"github.com/apsas-edu/apsas-api/internal/dto"
	"github.com/apsas-edu/apsas-api/internal/handler"
	"github.com/apsas-edu/apsas-api/internal/repository"
	"github.com/apsas-edu/apsas-api/internal/router"
	"github.com/apsas-edu/apsas-api/internal/service"
)

type fakeAppReleaseService struct {
	latest      dto.AppReleaseResponse
	latestErr   error
	published   []dto.AppReleaseCreateRequest
	deactivated []string
}

func (f *fakeAppReleaseService) List(context.Context, string) ([]dto.AppReleaseResponse, error) {
	return []dto.AppReleaseResponse{f.latest}, nil
}

func (f *fakeAppReleaseService) LatestActive(context.Context, string) (dto.AppReleaseResponse, error) {
	if f.latestErr != nil {
		return dto.AppReleaseResponse{}, f.latestErr
	}
	return f.latest, nil
}

func (f *fakeAppReleaseService) Publish(_ context.Context, payload dto.AppReleaseCreateRequest) (dto.AppReleaseResponse, error) {
	f.published = append(f.published, payload)
	return dto.AppReleaseResponse{Platform: payload.Platform, Version: payload.Version, DownloadURL: payload.DownloadURL, Active: true}, nil
}

func (f *fakeAppReleaseService) Deactivate(_ context.Context, id string) error {
	if id == "bad" {
		return service.ErrInvalidReleaseID
	}
	f.deactivated = append(f.deactivated, id)
	return nil
}

func (f *fakeAppReleaseService) Delete(context.Context, string) error { return nil }

func setupAppReleaseApp(t *testing.T, fake *fakeAppReleaseService, role string) *fiber.App {
	t.Helper()

	app := fiber.New()
	appReleaseHandler := handler.NewAppReleaseHandler(fake, zerolog.New(io.Discard))

	router.Register(app, config.Config{AppName: "Test", JWTSecret: "secret"}, router.Dependencies{
		AppReleaseHandler: appReleaseHandler,
		JWTMiddleware: func(c *fiber.Ctx) error {
			c.Locals("user_id", uint(1))
			c.Locals("user_role", role)
			return c.Next()
		},
	})

	return app
}

func TestAppReleaseHandlerLatestIsPublic(t *testing.T) {
	fake := &fakeAppReleaseService{latest: dto.AppReleaseResponse{Platform: "windows", Version: "1.4.0", DownloadURL: "https://downloads.test/app.exe", Active: true}}
	app := setupAppReleaseApp(t, fake, "")

	req := httptest.NewRequest("GET", "/api/v1/app-releases/latest?platform=windows", nil)
	resp, err := app.Test(req)
	require.NoError(t, err)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)

	var body struct {
		Success bool                   `json:"success"`
		Data    dto.AppReleaseResponse `json:"data"`
	}
	decodeResponse(t, resp, &body)
	require.True(t, body.Success)
	require.Equal(t, "1.4.0", body.Data.Version)
}

func TestAppReleaseHandlerLatestNotFound(t *testing.T) {
	fake := &fakeAppReleaseService{latestErr: repository.ErrAppReleaseNotFound}
	app := setupAppReleaseApp(t, fake, "")

	req := httptest.NewRequest("GET", "/api/v1/app-releases/latest", nil)
	resp, err := app.Test(req)
	require.NoError(t, err)
	require.Equal(t, fiber.StatusNotFound, resp.StatusCode)
}

func TestAppReleaseHandlerPublishRequiresAdmin(t *testing.T) {
	fake := &fakeAppReleaseService{}
	app := setupAppReleaseApp(t, fake, "lecturer")

	payload, err := json.Marshal(dto.AppReleaseCreateRequest{Platform: "android", Version: "2.0.0", DownloadURL: "https://downloads.test/app.apk"})
	require.NoError(t, err)

	req := httptest.NewRequest("POST", "/api/v1/app-releases", bytes.NewReader(payload))
	req.Header.Set("Content-Type", "application/json")
	resp, err := app.Test(req)
	require.NoError(t, err)
	require.Equal(t, fiber.StatusForbidden, resp.StatusCode)
	require.Empty(t, fake.published)
}

func TestAppReleaseHandlerPublishAndDeactivate(t *testing.T) {
	fake := &fakeAppReleaseService{}
	app := setupAppReleaseApp(t, fake, "admin")

	payload, err := json.Marshal(dto.AppReleaseCreateRequest{Platform: "android", Version: "2.0.0", DownloadURL: "https://downloads.test/app.apk"})
	require.NoError(t, err)

	req := httptest.NewRequest("POST", "/api/v1/app-releases", bytes.NewReader(payload))
	req.Header.Set("Content-Type", "application/json")
	resp, err := app.Test(req)
	require.NoError(t, err)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	require.Len(t, fake.published, 1)

	deactivateReq := httptest.NewRequest("PATCH", "/api/v1/app-releases/abc123/deactivate", nil)
	deactivateResp, err := app.Test(deactivateReq)
	require.NoError(t, err)
	require.Equal(t, fiber.StatusOK, deactivateResp.StatusCode)
	require.Equal(t, []string{"abc123"}, fake.deactivated)

	badReq := httptest.NewRequest("PATCH", "/api/v1/app-releases/bad/deactivate", nil)
	badResp, err := app.Test(badReq)
	require.NoError(t, err)
	require.Equal(t, fiber.StatusBadRequest, badResp.StatusCode)
}
