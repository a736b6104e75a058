package decision

// DefaultDispersionThreshold is the max-minus-min gap, on the platform score
// scale, above which reviewers are considered in disagreement.
const DefaultDispersionThreshold = 3.0

// Summary aggregates the submitted reviews of one proposal. Average, Min,
// Max and Spread are nil when no review has been submitted.
type Summary struct {
	ProposalID     uint      `json:"proposal_id"`
	SubmittedCount int       `json:"submitted_count"`
	Scores         []float64 `json:"scores"`
	Average        *float64  `json:"average_score"`
	Min            *float64  `json:"min_score"`
	Max            *float64  `json:"max_score"`
	Spread         *float64  `json:"spread"`
	Disagreement   bool      `json:"disagreement"`
	Threshold      float64   `json:"threshold"`
}

// Aggregate computes the mean of the submitted overall scores and flags
// disagreement when at least two scores differ by more than threshold.
// Callers pass only scores of submitted reviews.
func Aggregate(proposalID uint, scores []float64, threshold float64) Summary {
	s := Summary{
		ProposalID:     proposalID,
		SubmittedCount: len(scores),
		Scores:         append([]float64{}, scores...),
		Threshold:      threshold,
	}
	if len(scores) == 0 {
		return s
	}

	lo, hi, sum := scores[0], scores[0], 0.0
	for _, v := range scores {
		sum += v
		if v < lo {
			lo = v
		}
		if v > hi {
			hi = v
		}
	}
	avg := sum / float64(len(scores))
	spread := hi - lo
	s.Average = &avg
	s.Min = &lo
	s.Max = &hi
	s.Spread = &spread
	s.Disagreement = len(scores) >= 2 && spread > threshold
	return s
}
