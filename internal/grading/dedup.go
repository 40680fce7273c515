// Package grading holds the pure aggregation rules shared by the score
// table views and the grade report exporter: resubmission deduplication,
// current-session resolution, grade item aggregation and score formatting.
package grading

import (
	"sort"

	"github.com/apsas-edu/apsas-api/internal/models"
)

// Deduplicate collapses resubmissions down to a single submission per
// student. The survivor is the one with the greatest effective timestamp
// (update time, falling back to submit time); on equal timestamps the higher
// submission id wins, so bulk-imported records resolve deterministically.
// Submissions without a student id are orphaned records and are dropped
// without error. The result is sorted by student code ascending.
func Deduplicate(submissions []models.Submission) []models.Submission {
	retained := make(map[uint]models.Submission, len(submissions))

	for _, candidate := range submissions {
		if candidate.StudentID == nil {
			continue
		}

		current, ok := retained[*candidate.StudentID]
		if !ok || supersedes(candidate, current) {
			retained[*candidate.StudentID] = candidate
		}
	}

	result := make([]models.Submission, 0, len(retained))
	for _, submission := range retained {
		result = append(result, submission)
	}

	sort.Slice(result, func(i, j int) bool {
		if result[i].StudentCode != result[j].StudentCode {
			return result[i].StudentCode < result[j].StudentCode
		}
		return result[i].ID < result[j].ID
	})

	return result
}

func supersedes(candidate, current models.Submission) bool {
	candidateTime := candidate.EffectiveTime()
	currentTime := current.EffectiveTime()

	if candidateTime.After(currentTime) {
		return true
	}

	return candidateTime.Equal(currentTime) && candidate.ID > current.ID
}
