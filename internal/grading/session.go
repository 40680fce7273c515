package grading

import "github.com/apsas-edu/apsas-api/internal/models"

// LatestSession resolves the current grading session for a submission: the
// one with the greatest creation time. Equal creation times are broken by
// the higher session id, so regrades created in the same instant resolve
// the same way everywhere. Returns nil when no sessions exist.
func LatestSession(sessions []models.GradingSession) *models.GradingSession {
	var latest *models.GradingSession

	for i := range sessions {
		candidate := &sessions[i]
		if latest == nil {
			latest = candidate
			continue
		}

		switch {
		case candidate.CreatedAt.After(latest.CreatedAt):
			latest = candidate
		case candidate.CreatedAt.Equal(latest.CreatedAt) && candidate.ID > latest.ID:
			latest = candidate
		}
	}

	if latest == nil {
		return nil
	}

	session := *latest
	return &session
}
