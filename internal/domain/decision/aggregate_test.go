package decision

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAggregate_NoReviewsIsUndefined(t *testing.T) {
	s := Aggregate(1, nil, DefaultDispersionThreshold)
	assert.Nil(t, s.Average)
	assert.Nil(t, s.Spread)
	assert.False(t, s.Disagreement)
	assert.Equal(t, 0, s.SubmittedCount)
}

func TestAggregate_SingleReviewNeverDisagrees(t *testing.T) {
	s := Aggregate(1, []float64{2.0}, DefaultDispersionThreshold)
	require.NotNil(t, s.Average)
	assert.Equal(t, 2.0, *s.Average)
	assert.False(t, s.Disagreement)
}

func TestAggregate_DispersionBoundary(t *testing.T) {
	cases := []struct {
		name   string
		scores []float64
		avg    float64
		flag   bool
	}{
		{"close scores", []float64{8.0, 9.0}, 8.5, false},
		{"gap exactly at threshold", []float64{8.0, 5.0}, 6.5, false},
		{"gap just above threshold", []float64{8.0, 4.9}, 6.45, true},
		{"three reviews wide gap", []float64{9.5, 7.0, 6.0}, 7.5, true},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			s := Aggregate(7, tc.scores, DefaultDispersionThreshold)
			require.NotNil(t, s.Average)
			assert.InDelta(t, tc.avg, *s.Average, 1e-9)
			assert.Equal(t, tc.flag, s.Disagreement)
		})
	}
}

func TestAggregate_AlternateThreshold(t *testing.T) {
	s := Aggregate(1, []float64{8.0, 9.0}, 0.5)
	assert.True(t, s.Disagreement)
}

func TestAggregate_DoesNotAliasInput(t *testing.T) {
	scores := []float64{1, 2}
	s := Aggregate(1, scores, 3)
	scores[0] = 100
	assert.Equal(t, []float64{1, 2}, s.Scores)
}

func TestOutcome(t *testing.T) {
	assert.True(t, OutcomeApproved.Valid())
	assert.False(t, Outcome("maybe").Valid())
	assert.False(t, OutcomeApproved.RequiresJustification())
	assert.True(t, OutcomeNotApproved.RequiresJustification())
}
