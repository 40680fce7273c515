package grading

import "github.com/apsas-edu/apsas-api/internal/models"

// Aggregate is the resolved score for one submission's current session.
type Aggregate struct {
	TotalScore           float64
	MaxScore             *float64
	HasItemizedBreakdown bool
}

// AggregateItems resolves a session's score with a three-tier fallback:
// itemized rubric scores when grade items exist, the session's holistic
// grade when they do not, and zero (not graded) otherwise. The tiers never
// mix, so a score is never double-counted across representations.
//
// MaxScore is only reported when every item carries a rubric max; a partial
// denominator would claim a total the data cannot support.
func AggregateItems(session *models.GradingSession, items []models.GradeItem) Aggregate {
	if session == nil {
		return Aggregate{}
	}

	if len(items) > 0 {
		var total, max float64
		complete := true
		for _, item := range items {
			total += item.Score
			if item.RubricItemMaxScore == nil {
				complete = false
				continue
			}
			max += *item.RubricItemMaxScore
		}

		aggregate := Aggregate{TotalScore: total, HasItemizedBreakdown: true}
		if complete {
			aggregate.MaxScore = &max
		}
		return aggregate
	}

	if session.Grade != nil {
		return Aggregate{TotalScore: *session.Grade}
	}

	return Aggregate{}
}
