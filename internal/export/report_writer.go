// Package export renders grade reports to spreadsheets and reads uploaded
// roster sheets.
package export

import (
	"fmt"

	"github.com/xuri/excelize/v2"

	"github.com/apsas-edu/apsas-api/internal/dto"
)

// ReportWriter renders assembled report rows into a downloadable file.
type ReportWriter interface {
	Write(fileName string, rows []dto.ReportRow) ([]byte, error)
}

const reportSheet = "Grade Report"

var reportHeader = []string{
	"Submission ID",
	"Student Code",
	"Student Name",
	"Submitted At",
	"Session ID",
	"Session Status",
	"Grading Type",
	"Total Score",
	"Score",
	"Assignment Type",
	"Course Element",
	"Rubric Breakdown",
	"Feedback",
}

// ExcelReportWriter writes grade reports as .xlsx workbooks.
type ExcelReportWriter struct{}

// NewExcelReportWriter constructs the writer.
func NewExcelReportWriter() *ExcelReportWriter {
	return &ExcelReportWriter{}
}

// Write renders the rows into a single-sheet workbook and returns the file
// contents. Row order follows the input exactly.
func (w *ExcelReportWriter) Write(fileName string, rows []dto.ReportRow) ([]byte, error) {
	file := excelize.NewFile()
	defer file.Close()

	if err := file.SetSheetName("Sheet1", reportSheet); err != nil {
		return nil, fmt.Errorf("failed to rename sheet: %w", err)
	}

	for col, title := range reportHeader {
		cell, err := excelize.CoordinatesToCellName(col+1, 1)
		if err != nil {
			return nil, err
		}
		if err := file.SetCellValue(reportSheet, cell, title); err != nil {
			return nil, err
		}
	}

	for i, row := range rows {
		values := rowValues(row)
		for col, value := range values {
			cell, err := excelize.CoordinatesToCellName(col+1, i+2)
			if err != nil {
				return nil, err
			}
			if err := file.SetCellValue(reportSheet, cell, value); err != nil {
				return nil, err
			}
		}
	}

	buffer, err := file.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("failed to serialize workbook: %w", err)
	}

	return buffer.Bytes(), nil
}

func rowValues(row dto.ReportRow) []interface{} {
	submittedAt := ""
	if row.Submission.SubmittedAt != nil {
		submittedAt = row.Submission.SubmittedAt.UTC().Format("2006-01-02 15:04:05")
	}

	sessionID := ""
	sessionStatus := ""
	gradingType := ""
	totalScore := ""
	if row.GradingSession != nil {
		sessionID = fmt.Sprintf("%d", row.GradingSession.ID)
		sessionStatus = row.GradingSession.Status
		gradingType = row.GradingSession.GradingType
		var total float64
		for _, item := range row.GradeItems {
			total += item.Score
		}
		if len(row.GradeItems) == 0 && row.GradingSession.Grade != nil {
			total = *row.GradingSession.Grade
		}
		totalScore = fmt.Sprintf("%.2f", total)
	}

	breakdown := ""
	for i, item := range row.GradeItems {
		if i > 0 {
			breakdown += "; "
		}
		if item.RubricItemMaxScore != nil {
			breakdown += fmt.Sprintf("R%d: %.2f/%.2f", item.RubricItemID, item.Score, *item.RubricItemMaxScore)
		} else {
			breakdown += fmt.Sprintf("R%d: %.2f", item.RubricItemID, item.Score)
		}
	}

	return []interface{}{
		row.Submission.ID,
		row.Submission.StudentCode,
		row.Submission.StudentName,
		submittedAt,
		sessionID,
		sessionStatus,
		gradingType,
		totalScore,
		row.ScoreDisplay,
		row.AssignmentType,
		row.CourseElementName,
		breakdown,
		row.FeedbackTemplate,
	}
}

// ReportFileName derives the download name from the template name, falling
// back to the group id when the template has no usable name.
func ReportFileName(templateName string, groupID uint) string {
	if templateName != "" {
		return fmt.Sprintf("Grade_Report_%s.xlsx", templateName)
	}
	return fmt.Sprintf("Grade_Report_%d.xlsx", groupID)
}
