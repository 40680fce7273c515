package grading

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/apsas-edu/apsas-api/internal/models"
)

func floatPtr(v float64) *float64 { return &v }

func TestLatestSessionPicksMaxCreatedAt(t *testing.T) {
	base := time.Date(2024, 4, 1, 0, 0, 0, 0, time.UTC)

	sessions := []models.GradingSession{
		{ID: 1, CreatedAt: base},
		{ID: 2, CreatedAt: base.Add(2 * time.Hour)},
		{ID: 3, CreatedAt: base.Add(time.Hour)},
	}

	latest := LatestSession(sessions)
	require.NotNil(t, latest)
	require.Equal(t, uint(2), latest.ID)
}

func TestLatestSessionBreaksTiesByHigherID(t *testing.T) {
	created := time.Date(2024, 4, 1, 12, 0, 0, 0, time.UTC)

	sessions := []models.GradingSession{
		{ID: 5, CreatedAt: created},
		{ID: 11, CreatedAt: created},
		{ID: 7, CreatedAt: created},
	}

	latest := LatestSession(sessions)
	require.NotNil(t, latest)
	require.Equal(t, uint(11), latest.ID)
}

func TestLatestSessionEmptyReturnsNil(t *testing.T) {
	require.Nil(t, LatestSession(nil))
	require.Nil(t, LatestSession([]models.GradingSession{}))
}

func TestAggregateItemizedScores(t *testing.T) {
	session := &models.GradingSession{ID: 1}
	items := []models.GradeItem{
		{Score: 2, RubricItemMaxScore: floatPtr(5)},
		{Score: 3, RubricItemMaxScore: floatPtr(5)},
	}

	aggregate := AggregateItems(session, items)
	require.Equal(t, 5.0, aggregate.TotalScore)
	require.NotNil(t, aggregate.MaxScore)
	require.Equal(t, 10.0, *aggregate.MaxScore)
	require.True(t, aggregate.HasItemizedBreakdown)

	display := FormatScore(aggregate, true)
	require.Equal(t, "5.00/10.00", display.Display)
	require.Equal(t, ScoreTagGraded, display.Tag)
}

func TestAggregateIncompleteMaxScoresDropDenominator(t *testing.T) {
	session := &models.GradingSession{ID: 1}
	items := []models.GradeItem{
		{Score: 4, RubricItemMaxScore: floatPtr(5)},
		{Score: 1},
	}

	aggregate := AggregateItems(session, items)
	require.Equal(t, 5.0, aggregate.TotalScore)
	require.Nil(t, aggregate.MaxScore)
	require.True(t, aggregate.HasItemizedBreakdown)

	display := FormatScore(aggregate, true)
	require.Equal(t, "5.00", display.Display)
}

func TestAggregateFallsBackToSessionGrade(t *testing.T) {
	session := &models.GradingSession{ID: 1, Grade: floatPtr(7.5)}

	aggregate := AggregateItems(session, nil)
	require.Equal(t, 7.5, aggregate.TotalScore)
	require.Nil(t, aggregate.MaxScore)
	require.False(t, aggregate.HasItemizedBreakdown)

	display := FormatScore(aggregate, true)
	require.Equal(t, "7.50", display.Display)
	require.Equal(t, ScoreTagGraded, display.Tag)
}

func TestAggregateSessionWithoutItemsOrGrade(t *testing.T) {
	session := &models.GradingSession{ID: 1}

	aggregate := AggregateItems(session, nil)
	require.Equal(t, 0.0, aggregate.TotalScore)
	require.Nil(t, aggregate.MaxScore)
	require.False(t, aggregate.HasItemizedBreakdown)

	// A session exists, so a zero total still renders numerically.
	display := FormatScore(aggregate, true)
	require.Equal(t, "0.00", display.Display)
	require.Equal(t, ScoreTagGraded, display.Tag)
}

func TestFormatScoreNilSessionIsNotGraded(t *testing.T) {
	aggregate := AggregateItems(nil, nil)
	display := FormatScore(aggregate, false)
	require.Empty(t, display.Display)
	require.Equal(t, ScoreTagNotGraded, display.Tag)
}

func TestFormatScoreIgnoresZeroDenominator(t *testing.T) {
	zero := 0.0
	aggregate := Aggregate{TotalScore: 0, MaxScore: &zero, HasItemizedBreakdown: true}

	display := FormatScore(aggregate, true)
	require.Equal(t, "0.00", display.Display)
}

func TestSemesterLabel(t *testing.T) {
	require.Equal(t, "Spring 2024", SemesterLabel("SP24"))
	require.Equal(t, "Summer 2025", SemesterLabel("su25"))
	require.Equal(t, "Fall 2023", SemesterLabel("FA23"))
	require.Equal(t, "XX99", SemesterLabel("XX99"))
	require.Equal(t, "SPRING", SemesterLabel("SPRING"))
}
