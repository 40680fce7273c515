package grading

import "fmt"

// ScoreTag is the semantic state rendered alongside a score.
type ScoreTag string

const (
	ScoreTagGraded    ScoreTag = "graded"
	ScoreTagNotGraded ScoreTag = "not-graded"
)

// ScoreDisplay is a formatted score ready for presentation.
type ScoreDisplay struct {
	Display string   `json:"display"`
	Tag     ScoreTag `json:"tag"`
}

// FormatScore renders an aggregate for display. Itemized scores with a known
// positive denominator render as "total/max"; any other graded score renders
// as the bare total. hasSession distinguishes a genuine zero score from "no
// grading has happened". Two decimal places are a fixed presentation
// contract.
func FormatScore(aggregate Aggregate, hasSession bool) ScoreDisplay {
	if !hasSession {
		return ScoreDisplay{Tag: ScoreTagNotGraded}
	}

	if aggregate.HasItemizedBreakdown && aggregate.MaxScore != nil && *aggregate.MaxScore > 0 {
		return ScoreDisplay{
			Display: fmt.Sprintf("%.2f/%.2f", aggregate.TotalScore, *aggregate.MaxScore),
			Tag:     ScoreTagGraded,
		}
	}

	return ScoreDisplay{
		Display: fmt.Sprintf("%.2f", aggregate.TotalScore),
		Tag:     ScoreTagGraded,
	}
}
