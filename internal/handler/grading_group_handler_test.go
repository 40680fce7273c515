package handler_test

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strconv"
	"testing"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/apsas-edu/apsas-api/internal/cache"
	"github.com/apsas-edu/apsas-api/internal/config"
	"github.com/apsas-edu/apsas-api/internal/dto"
	"github.com/apsas-edu/apsas-api/internal/export"
	"github.com/apsas-edu/apsas-api/internal/handler"
	"github.com/apsas-edu/apsas-api/internal/models"
	"github.com/apsas-edu/apsas-api/internal/repository"
	"github.com/apsas-edu/apsas-api/internal/router"
	"github.com/apsas-edu/apsas-api/internal/service"
)

func setupGradingGroupApp(t *testing.T, role string) (*fiber.App, *gorm.DB) {
	t.Helper()

	db, err := gorm.Open(sqlite.Open("file::memory:?cache=shared"), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(
		&models.CourseElement{},
		&models.GradingGroup{},
		&models.AssessmentTemplate{},
		&models.AssessmentPaper{},
		&models.AssessmentQuestion{},
		&models.RubricItem{},
		&models.Submission{},
		&models.GradingSession{},
		&models.GradeItem{},
	))

	validate := validator.New(validator.WithRequiredStructEnabled())
	logger := zerolog.New(io.Discard)
	store := cache.NewNoopStore()

	groupRepo := repository.NewGradingGroupRepository(db)
	submissionRepo := repository.NewSubmissionRepository(db)
	sessionRepo := repository.NewGradingSessionRepository(db)
	itemRepo := repository.NewGradeItemRepository(db)
	assessmentRepo := repository.NewAssessmentRepository(db)

	overviewService := service.NewGradingOverviewService(groupRepo, submissionRepo, sessionRepo, itemRepo, store, time.Minute, logger)
	reportService := service.NewGradeReportService(groupRepo, submissionRepo, sessionRepo, itemRepo, assessmentRepo, export.NewExcelReportWriter(), logger)
	submissionService := service.NewSubmissionService(submissionRepo, groupRepo, validate, nil, store, logger)

	app := fiber.New()
	gradingGroupHandler := handler.NewGradingGroupHandler(overviewService, reportService, submissionService, logger)

	router.Register(app, config.Config{AppName: "Test", JWTSecret: "secret"}, router.Dependencies{
		GradingGroupHandler: gradingGroupHandler,
		JWTMiddleware: func(c *fiber.Ctx) error {
			c.Locals("user_id", uint(1))
			c.Locals("user_role", role)
			return c.Next()
		},
	})

	return app, db
}

func decodeResponse(t *testing.T, resp *http.Response, target interface{}) {
	t.Helper()
	data, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	require.NoError(t, resp.Body.Close())
	require.NoError(t, json.Unmarshal(data, target))
}

func timePtr(value time.Time) *time.Time { return &value }

func uintPtr(value uint) *uint { return &value }

func floatPtr(value float64) *float64 { return &value }

func TestGradingGroupScoresResolvesLatestSubmission(t *testing.T) {
	app, db := setupGradingGroupApp(t, "lecturer")

	group := models.GradingGroup{Name: "SE201 Class A", SemesterCode: "SP24"}
	require.NoError(t, db.Create(&group).Error)

	base := time.Date(2024, 3, 1, 9, 0, 0, 0, time.UTC)
	first := models.Submission{
		GradingGroupID: group.ID,
		StudentID:      uintPtr(7),
		StudentCode:    "ST007",
		StudentName:    "Ana",
		SubmittedAt:    timePtr(base),
	}
	require.NoError(t, db.Create(&first).Error)

	resubmission := models.Submission{
		GradingGroupID: group.ID,
		StudentID:      uintPtr(7),
		StudentCode:    "ST007",
		StudentName:    "Ana",
		SubmittedAt:    timePtr(base),
		UpdatedAt:      timePtr(base.Add(2 * time.Hour)),
	}
	require.NoError(t, db.Create(&resubmission).Error)

	session := models.GradingSession{
		SubmissionID: resubmission.ID,
		Status:       models.SessionStatusCompleted,
		GradingType:  models.GradingTypeLecturer,
	}
	require.NoError(t, db.Create(&session).Error)
	require.NoError(t, db.Create(&models.GradeItem{
		GradingSessionID:   session.ID,
		RubricItemID:       1,
		Score:              7.5,
		RubricItemMaxScore: floatPtr(10),
	}).Error)

	req := httptest.NewRequest("GET", "/api/v1/grading-groups/"+strconv.FormatUint(uint64(group.ID), 10)+"/scores", nil)
	resp, err := app.Test(req)
	require.NoError(t, err)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)

	var body struct {
		Success bool                    `json:"success"`
		Data    dto.GroupScoresResponse `json:"data"`
	}
	decodeResponse(t, resp, &body)
	require.True(t, body.Success)
	require.Equal(t, "Spring 2024", body.Data.SemesterLabel)
	require.Len(t, body.Data.Rows, 1)
	require.Equal(t, resubmission.ID, body.Data.Rows[0].SubmissionID)
	require.Equal(t, "7.50/10.00", body.Data.Rows[0].Score.Display)
	require.Equal(t, "graded", string(body.Data.Rows[0].Score.Tag))
}

func TestGradingGroupScoresUnknownGroup(t *testing.T) {
	app, _ := setupGradingGroupApp(t, "lecturer")

	req := httptest.NewRequest("GET", "/api/v1/grading-groups/999/scores", nil)
	resp, err := app.Test(req)
	require.NoError(t, err)
	require.Equal(t, fiber.StatusNotFound, resp.StatusCode)
}

func TestGradingGroupScoresForbiddenForStudents(t *testing.T) {
	app, _ := setupGradingGroupApp(t, "student")

	req := httptest.NewRequest("GET", "/api/v1/grading-groups/1/scores", nil)
	resp, err := app.Test(req)
	require.NoError(t, err)
	require.Equal(t, fiber.StatusForbidden, resp.StatusCode)
}

func TestGradingGroupReportExport(t *testing.T) {
	app, db := setupGradingGroupApp(t, "examiner")

	element := models.CourseElement{Name: "Practical Exam 1", ElementType: models.ElementTypePracticalExam}
	require.NoError(t, db.Create(&element).Error)
	template := models.AssessmentTemplate{Name: "Final Practical", CourseElementID: uintPtr(element.ID)}
	require.NoError(t, db.Create(&template).Error)
	group := models.GradingGroup{Name: "SE201 Exam", AssessmentTemplateID: uintPtr(template.ID), SemesterCode: "FA24"}
	require.NoError(t, db.Create(&group).Error)

	submission := models.Submission{
		GradingGroupID: group.ID,
		StudentID:      uintPtr(3),
		StudentCode:    "ST003",
		StudentName:    "Ben",
		SubmittedAt:    timePtr(time.Date(2024, 10, 5, 14, 0, 0, 0, time.UTC)),
	}
	require.NoError(t, db.Create(&submission).Error)

	session := models.GradingSession{
		SubmissionID: submission.ID,
		Status:       models.SessionStatusCompleted,
		GradingType:  models.GradingTypeLecturer,
		Grade:        floatPtr(8),
	}
	require.NoError(t, db.Create(&session).Error)

	req := httptest.NewRequest("GET", "/api/v1/grading-groups/"+strconv.FormatUint(uint64(group.ID), 10)+"/report", nil)
	resp, err := app.Test(req)
	require.NoError(t, err)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	require.Equal(t, "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet", resp.Header.Get(fiber.HeaderContentType))
	require.Contains(t, resp.Header.Get(fiber.HeaderContentDisposition), "Grade_Report_Final Practical.xlsx")

	content, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	require.NoError(t, resp.Body.Close())
	require.NotEmpty(t, content)
}

func TestGradingGroupReportExportWithoutSubmissions(t *testing.T) {
	app, db := setupGradingGroupApp(t, "examiner")

	group := models.GradingGroup{Name: "Empty Group"}
	require.NoError(t, db.Create(&group).Error)

	req := httptest.NewRequest("GET", "/api/v1/grading-groups/"+strconv.FormatUint(uint64(group.ID), 10)+"/report", nil)
	resp, err := app.Test(req)
	require.NoError(t, err)
	require.Equal(t, fiber.StatusUnprocessableEntity, resp.StatusCode)
}
