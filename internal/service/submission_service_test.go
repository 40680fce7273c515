package service

import (
	"bytes"
	"context"
	"io"
	"mime/multipart"
	"net/textproto"
	"testing"

	miniredis "github.com/alicebob/miniredis/v2"
	"github.com/go-playground/validator/v10"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/apsas-edu/apsas-api/internal/cache"
	"github.com/apsas-edu/apsas-api/internal/dto"
	"github.com/apsas-edu/apsas-api/internal/models"
	"github.com/apsas-edu/apsas-api/internal/repository"
)

func buildRosterWorkbook(t *testing.T, rows [][]interface{}) *bytes.Buffer {
	t.Helper()

	file := excelize.NewFile()
	defer file.Close()

	sheet := file.GetSheetName(0)
	require.NoError(t, file.SetSheetRow(sheet, "A1", &[]interface{}{"Student Code", "Student Name"}))
	for i, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		require.NoError(t, err)
		require.NoError(t, file.SetSheetRow(sheet, cell, &row))
	}

	buffer, err := file.WriteToBuffer()
	require.NoError(t, err)
	return buffer
}

func TestSubmissionServiceImportRosterBackfillsNames(t *testing.T) {
	mini, err := miniredis.Run()
	require.NoError(t, err)
	defer mini.Close()

	store := cache.NewRedisStore(redis.NewClient(&redis.Options{Addr: mini.Addr()}), zerolog.Nop())

	db := setupServiceDB(t)

	group := models.GradingGroup{Name: "SE201 Class A"}
	require.NoError(t, db.Create(&group).Error)

	require.NoError(t, db.Create(&models.Submission{GradingGroupID: group.ID, StudentID: uintPointer(1), StudentCode: "ST001"}).Error)
	require.NoError(t, db.Create(&models.Submission{GradingGroupID: group.ID, StudentID: uintPointer(2), StudentCode: "ST002", StudentName: "Ben"}).Error)
	require.NoError(t, db.Create(&models.Submission{GradingGroupID: group.ID, StudentID: uintPointer(3), StudentCode: "ST003"}).Error)

	// Seed a cached overview so the import has something to invalidate.
	require.NoError(t, store.SetJSON(context.Background(), cache.OverviewKey(group.ID), dto.GroupScoresResponse{}, 0))

	svc := NewSubmissionService(
		repository.NewSubmissionRepository(db),
		repository.NewGradingGroupRepository(db),
		validator.New(validator.WithRequiredStructEnabled()),
		nil,
		store,
		zerolog.Nop(),
	)

	roster := buildRosterWorkbook(t, [][]interface{}{
		{"ST001", "Ana"},
		{"ST002", "Ben"}, // unchanged, not counted
		{"ST003", "Cara"},
		{"ST999", "Nobody"}, // no matching submission
	})

	updated, err := svc.ImportRoster(context.Background(), group.ID, roster)
	require.NoError(t, err)
	require.Equal(t, 2, updated)

	var stored models.Submission
	require.NoError(t, db.Where("grading_group_id = ? AND student_code = ?", group.ID, "ST001").First(&stored).Error)
	require.Equal(t, "Ana", stored.StudentName)

	require.False(t, mini.Exists(cache.OverviewKey(group.ID)))
}

func TestSubmissionServiceImportRosterUnknownGroup(t *testing.T) {
	db := setupServiceDB(t)

	svc := NewSubmissionService(
		repository.NewSubmissionRepository(db),
		repository.NewGradingGroupRepository(db),
		validator.New(validator.WithRequiredStructEnabled()),
		nil,
		cache.NewNoopStore(),
		zerolog.Nop(),
	)

	roster := buildRosterWorkbook(t, nil)
	_, err := svc.ImportRoster(context.Background(), 404, roster)
	require.ErrorIs(t, err, ErrGradingGroupNotFound)
}

type staticUploader struct{}

func (staticUploader) Upload(_ context.Context, name string, _ io.Reader) (string, error) {
	return "https://files.test/" + name, nil
}

func TestSubmissionServiceCreateDefaultsSubmittedAt(t *testing.T) {
	db := setupServiceDB(t)

	group := models.GradingGroup{Name: "SE201 Class A"}
	require.NoError(t, db.Create(&group).Error)

	svc := NewSubmissionService(
		repository.NewSubmissionRepository(db),
		repository.NewGradingGroupRepository(db),
		validator.New(validator.WithRequiredStructEnabled()),
		staticUploader{},
		cache.NewNoopStore(),
		zerolog.Nop(),
	)

	file := buildFileHeader(t, "answer.txt", []byte("plain text answer"))

	created, err := svc.Create(context.Background(), dto.SubmissionCreateRequest{
		GradingGroupID: group.ID,
		StudentID:      uintPointer(5),
		StudentCode:    "ST005",
	}, file)
	require.NoError(t, err)
	require.NotNil(t, created.SubmittedAt)
	require.Equal(t, "https://files.test/answer.txt", created.SubmissionFile)
}

func TestSubmissionServiceCreateRejectsBadTimestamp(t *testing.T) {
	db := setupServiceDB(t)

	group := models.GradingGroup{Name: "SE201 Class A"}
	require.NoError(t, db.Create(&group).Error)

	svc := NewSubmissionService(
		repository.NewSubmissionRepository(db),
		repository.NewGradingGroupRepository(db),
		validator.New(validator.WithRequiredStructEnabled()),
		staticUploader{},
		cache.NewNoopStore(),
		zerolog.Nop(),
	)

	bad := "yesterday"
	file := buildFileHeader(t, "answer.txt", []byte("plain text answer"))

	_, err := svc.Create(context.Background(), dto.SubmissionCreateRequest{
		GradingGroupID: group.ID,
		SubmittedAt:    &bad,
	}, file)
	require.Error(t, err)
}

func buildFileHeader(t *testing.T, name string, content []byte) *multipart.FileHeader {
	t.Helper()

	body := &bytes.Buffer{}
	writer := multipart.NewWriter(body)
	header := textproto.MIMEHeader{}
	header.Set("Content-Disposition", `form-data; name="file"; filename="`+name+`"`)
	header.Set("Content-Type", "application/octet-stream")
	part, err := writer.CreatePart(header)
	require.NoError(t, err)
	_, err = part.Write(content)
	require.NoError(t, err)
	require.NoError(t, writer.Close())

	form, err := multipart.NewReader(body, writer.Boundary()).ReadForm(int64(body.Len()) + 1024)
	require.NoError(t, err)
	files := form.File["file"]
	require.Len(t, files, 1)
	return files[0]
}
