package review

import (
	"sort"

	"github.com/linskybing/grant-review/internal/domain/reviewer"
)

// AreaMatcher compares knowledge-area codes on a coarse prefix. A
// PrefixLength of zero or less compares whole normalized codes.
type AreaMatcher struct {
	PrefixLength int
}

func (m AreaMatcher) key(code string) string {
	norm := reviewer.NormalizeAreaCode(code)
	if m.PrefixLength > 0 && len(norm) > m.PrefixLength {
		return norm[:m.PrefixLength]
	}
	return norm
}

// Match reports whether any reviewer area agrees with the proposal area.
func (m AreaMatcher) Match(proposalArea string, reviewerAreas []string) bool {
	want := m.key(proposalArea)
	if want == "" {
		return false
	}
	for _, area := range reviewerAreas {
		if m.key(area) == want {
			return true
		}
	}
	return false
}

type Bucket string

const (
	BucketAssigned       Bucket = "assigned"
	BucketRecommended    Bucket = "recommended"
	BucketNotRecommended Bucket = "not_recommended"
)

// Candidate is a reviewer as seen by the ranking heuristic.
type Candidate struct {
	ReviewerID uint
	UserID     uint
	FullName   string
	AreaCodes  []string
	Active     bool
}

type RankedReviewer struct {
	ReviewerID uint     `json:"reviewer_id"`
	FullName   string   `json:"full_name"`
	AreaCodes  []string `json:"area_codes"`
	AreaMatch  bool     `json:"area_match"`
	Bucket     Bucket   `json:"bucket"`
	Selectable bool     `json:"selectable"`
}

// Ranking holds the three disjoint buckets in display order.
type Ranking struct {
	Assigned       []RankedReviewer `json:"assigned"`
	Recommended    []RankedReviewer `json:"recommended"`
	NotRecommended []RankedReviewer `json:"not_recommended"`
}

func (r Ranking) All() []RankedReviewer {
	out := make([]RankedReviewer, 0, len(r.Assigned)+len(r.Recommended)+len(r.NotRecommended))
	out = append(out, r.Assigned...)
	out = append(out, r.Recommended...)
	return append(out, r.NotRecommended...)
}

// RankReviewers partitions candidates into assigned, area-matching and
// non-matching buckets. Inactive reviewers and the proposal owner
// (ownerUserID) are left out of the selectable buckets.
func RankReviewers(proposalArea string, candidates []Candidate, assigned map[uint]bool, ownerUserID uint, matcher AreaMatcher) Ranking {
	ranking := Ranking{
		Assigned:       []RankedReviewer{},
		Recommended:    []RankedReviewer{},
		NotRecommended: []RankedReviewer{},
	}
	seen := make(map[uint]bool, len(candidates))
	for _, c := range candidates {
		if seen[c.ReviewerID] {
			continue
		}
		seen[c.ReviewerID] = true

		match := matcher.Match(proposalArea, c.AreaCodes)
		ranked := RankedReviewer{
			ReviewerID: c.ReviewerID,
			FullName:   c.FullName,
			AreaCodes:  append([]string(nil), c.AreaCodes...),
			AreaMatch:  match,
		}
		switch {
		case assigned[c.ReviewerID]:
			ranked.Bucket = BucketAssigned
			ranking.Assigned = append(ranking.Assigned, ranked)
		case !c.Active || (ownerUserID != 0 && c.UserID == ownerUserID):
			continue
		case match:
			ranked.Bucket = BucketRecommended
			ranked.Selectable = true
			ranking.Recommended = append(ranking.Recommended, ranked)
		default:
			ranked.Bucket = BucketNotRecommended
			ranked.Selectable = true
			ranking.NotRecommended = append(ranking.NotRecommended, ranked)
		}
	}
	sortBucket(ranking.Assigned)
	sortBucket(ranking.Recommended)
	sortBucket(ranking.NotRecommended)
	return ranking
}

func sortBucket(b []RankedReviewer) {
	sort.SliceStable(b, func(i, j int) bool {
		if b[i].FullName != b[j].FullName {
			return b[i].FullName < b[j].FullName
		}
		return b[i].ReviewerID < b[j].ReviewerID
	})
}
