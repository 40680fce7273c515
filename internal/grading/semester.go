package grading

import "strings"

// SemesterLabel expands a compact semester code such as "SP24" or "FA25"
// into its display label ("Spring 2024", "Fall 2025"). Codes that do not
// match the two-letter-two-digit shape are returned unchanged so an
// unexpected upstream value still renders something.
func SemesterLabel(code string) string {
	trimmed := strings.ToUpper(strings.TrimSpace(code))
	if len(trimmed) != 4 {
		return code
	}

	var season string
	switch trimmed[:2] {
	case "SP":
		season = "Spring"
	case "SU":
		season = "Summer"
	case "FA":
		season = "Fall"
	default:
		return code
	}

	year := trimmed[2:]
	if year[0] < '0' || year[0] > '9' || year[1] < '0' || year[1] > '9' {
		return code
	}

	return season + " 20" + year
}
