package review

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func ids(rs []RankedReviewer) []uint {
	out := make([]uint, len(rs))
	for i, r := range rs {
		out[i] = r.ReviewerID
	}
	return out
}

func TestAreaMatcher_Prefix(t *testing.T) {
	m := AreaMatcher{PrefixLength: 1}
	assert.True(t, m.Match("1.01.02.00-3", []string{"1.05.00.00-6"}))
	assert.False(t, m.Match("1.01.02.00-3", []string{"2.01.00.00-1"}))
	assert.True(t, m.Match("1.01", []string{"9.00", "1.99"}))
	assert.False(t, m.Match("", []string{"1.01"}))
	assert.False(t, m.Match("1.01", nil))
}

func TestAreaMatcher_Granularity(t *testing.T) {
	coarse := AreaMatcher{PrefixLength: 1}
	fine := AreaMatcher{PrefixLength: 3}
	exact := AreaMatcher{PrefixLength: 0}

	assert.True(t, coarse.Match("1.01.02", []string{"1.02.00"}))
	assert.False(t, fine.Match("1.01.02", []string{"1.02.00"}))
	assert.True(t, fine.Match("1.01.02", []string{"1.01.99"}))
	assert.False(t, exact.Match("1.01.02", []string{"1.01.99"}))
	assert.True(t, exact.Match("1.01.02", []string{"10102"}))
}

func TestRankReviewers_Buckets(t *testing.T) {
	candidates := []Candidate{
		{ReviewerID: 1, UserID: 11, FullName: "Carla", AreaCodes: []string{"1.01"}, Active: true},
		{ReviewerID: 2, UserID: 12, FullName: "Bruno", AreaCodes: []string{"2.03"}, Active: true},
		{ReviewerID: 3, UserID: 13, FullName: "Ana", AreaCodes: []string{"1.07"}, Active: true},
		{ReviewerID: 4, UserID: 14, FullName: "Dora", AreaCodes: []string{"1.01"}, Active: false},
		{ReviewerID: 5, UserID: 15, FullName: "Eva", AreaCodes: []string{"3.00"}, Active: true},
		{ReviewerID: 6, UserID: 16, FullName: "Fabio", AreaCodes: []string{"1.02"}, Active: true},
	}
	assigned := map[uint]bool{6: true}

	r := RankReviewers("1.05.00", candidates, assigned, 0, AreaMatcher{PrefixLength: 1})

	assert.Equal(t, []uint{6}, ids(r.Assigned))
	assert.Equal(t, []uint{3, 1}, ids(r.Recommended))
	assert.Equal(t, []uint{2, 5}, ids(r.NotRecommended))

	assert.False(t, r.Assigned[0].Selectable)
	assert.True(t, r.Assigned[0].AreaMatch)
	for _, rr := range r.Recommended {
		assert.True(t, rr.Selectable)
		assert.True(t, rr.AreaMatch)
		assert.Equal(t, BucketRecommended, rr.Bucket)
	}
	for _, rr := range r.NotRecommended {
		assert.True(t, rr.Selectable)
		assert.False(t, rr.AreaMatch)
	}
}

func TestRankReviewers_BucketsAreDisjoint(t *testing.T) {
	candidates := []Candidate{
		{ReviewerID: 1, FullName: "A", AreaCodes: []string{"1"}, Active: true},
		{ReviewerID: 1, FullName: "A", AreaCodes: []string{"1"}, Active: true},
		{ReviewerID: 2, FullName: "B", AreaCodes: []string{"2"}, Active: true},
	}
	r := RankReviewers("1", candidates, map[uint]bool{2: true}, 0, AreaMatcher{PrefixLength: 1})

	all := ids(r.All())
	assert.ElementsMatch(t, []uint{1, 2}, all)
	assert.Len(t, all, 2)
}

func TestRankReviewers_ExcludesOwner(t *testing.T) {
	candidates := []Candidate{
		{ReviewerID: 1, UserID: 50, FullName: "Owner", AreaCodes: []string{"1"}, Active: true},
		{ReviewerID: 2, UserID: 51, FullName: "Other", AreaCodes: []string{"1"}, Active: true},
	}
	r := RankReviewers("1", candidates, nil, 50, AreaMatcher{PrefixLength: 1})
	assert.Equal(t, []uint{2}, ids(r.Recommended))
	assert.Empty(t, r.NotRecommended)
}

func TestRankReviewers_EmptyPool(t *testing.T) {
	r := RankReviewers("1", nil, nil, 0, AreaMatcher{PrefixLength: 1})
	require.NotNil(t, r.Assigned)
	assert.Empty(t, r.All())
}

func TestWeightedScore(t *testing.T) {
	score, err := WeightedScore([]Criterion{
		{Name: "merit", Score: 8, Max: 10, Weight: 2},
		{Name: "feasibility", Score: 3, Max: 5, Weight: 1},
	}, 10)
	require.NoError(t, err)
	// (2*0.8 + 1*0.6) / 3 * 10
	assert.InDelta(t, 7.33, score, 1e-9)

	_, err = WeightedScore(nil, 10)
	assert.Error(t, err)
	_, err = WeightedScore([]Criterion{{Name: "x", Score: 11, Max: 10, Weight: 1}}, 10)
	assert.Error(t, err)
	_, err = WeightedScore([]Criterion{{Name: "x", Score: 1, Max: 10, Weight: 0}}, 10)
	assert.Error(t, err)
}

func TestCriteriaRoundTrip(t *testing.T) {
	raw, err := EncodeCriteria([]Criterion{{Name: "merit", Score: 4, Max: 5, Weight: 1}})
	require.NoError(t, err)
	r := Review{Criteria: raw}
	got, err := r.DecodeCriteria()
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "merit", got[0].Name)
}
