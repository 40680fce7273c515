package export

import (
	"fmt"
	"io"
	"strings"

	"github.com/xuri/excelize/v2"
)

// RosterEntry is one student parsed from an uploaded roster sheet.
type RosterEntry struct {
	StudentCode string
	StudentName string
}

// ParseStudentRoster reads a roster workbook whose first sheet carries a
// header row followed by "code, name" rows. Blank rows are skipped; a row
// with a code but no name is kept, a row with neither is ignored. Rows never
// fail individually, matching the lenient treatment of upstream data noise
// elsewhere in the system.
func ParseStudentRoster(r io.Reader) ([]RosterEntry, error) {
	file, err := excelize.OpenReader(r)
	if err != nil {
		return nil, fmt.Errorf("failed to open roster workbook: %w", err)
	}
	defer file.Close()

	sheets := file.GetSheetList()
	if len(sheets) == 0 {
		return nil, fmt.Errorf("roster workbook has no sheets")
	}

	rows, err := file.GetRows(sheets[0])
	if err != nil {
		return nil, fmt.Errorf("failed to read roster rows: %w", err)
	}

	var entries []RosterEntry
	for i, row := range rows {
		if i == 0 {
			continue // header
		}

		var code, name string
		if len(row) > 0 {
			code = strings.TrimSpace(row[0])
		}
		if len(row) > 1 {
			name = strings.TrimSpace(row[1])
		}

		if code == "" && name == "" {
			continue
		}

		entries = append(entries, RosterEntry{StudentCode: code, StudentName: name})
	}

	return entries, nil
}
