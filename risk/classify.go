package risk

import (
	"errors"
	"fmt"
	"sort"

	"cvdrisk/cohort"
)

// Percentile ranks of the tier cutoffs over the reference cohort's
// probability distribution. Fitted to the original validation cohort;
// do not rederive without the clinical justification behind them.
const (
	LowCutoffPercentile = 53.94
	MidCutoffPercentile = 89.9
)

// ErrInsufficientCohort means the reference cohort is empty, so the
// percentile thresholds are undefined. This is a deployment problem, not
// a user input problem.
var ErrInsufficientCohort = errors.New("reference cohort is empty")

type Tier int

const (
	TierLow Tier = iota
	TierModerate
	TierHigh
)

func (t Tier) String() string {
	switch t {
	case TierLow:
		return "LOW"
	case TierModerate:
		return "MODERATE"
	case TierHigh:
		return "HIGH"
	default:
		return fmt.Sprintf("Tier(%d)", int(t))
	}
}

func (t Tier) MarshalJSON() ([]byte, error) {
	return []byte(`"` + t.String() + `"`), nil
}

func (t *Tier) UnmarshalJSON(data []byte) error {
	switch string(data) {
	case `"LOW"`:
		*t = TierLow
	case `"MODERATE"`:
		*t = TierModerate
	case `"HIGH"`:
		*t = TierHigh
	default:
		return fmt.Errorf("unknown tier %s", data)
	}
	return nil
}

// Classifier is the model contract this package depends on. PredictProba
// returns [P(class0), P(class1)].
type Classifier interface {
	PredictProba(features []float64) ([2]float64, error)
}

// Thresholds are the two probability cutoffs separating the tiers.
// Invariant: Low <= Mid.
type Thresholds struct {
	Low float64 `json:"low"`
	Mid float64 `json:"mid"`
}

// Assessment is the classification outcome for one submission.
type Assessment struct {
	// Probability is the positive-class probability as a percentage.
	Probability float64    `json:"probability_pct"`
	Tier        Tier       `json:"tier"`
	Thresholds  Thresholds `json:"thresholds"`
}

// ComputeThresholds scores every cohort row and takes the fixed
// percentiles of the resulting distribution. Recomputed on every call by
// design: there is no cached threshold state, at the cost of one cohort
// scan per prediction.
func ComputeThresholds(clf Classifier, ref *cohort.Cohort) (Thresholds, error) {
	if ref.Len() == 0 {
		return Thresholds{}, ErrInsufficientCohort
	}
	probs := make([]float64, ref.Len())
	for i, row := range ref.Rows() {
		proba, err := clf.PredictProba(row)
		if err != nil {
			return Thresholds{}, fmt.Errorf("score cohort row %d: %w", i, err)
		}
		probs[i] = proba[1]
	}
	sort.Float64s(probs)
	return Thresholds{
		Low: percentile(probs, LowCutoffPercentile),
		Mid: percentile(probs, MidCutoffPercentile),
	}, nil
}

// Classify scores one validated feature vector and assigns it a tier.
// Boundaries are inclusive on the lower side: a probability exactly at a
// cutoff goes to the lower tier.
func Classify(clf Classifier, ref *cohort.Cohort, features []float64) (Assessment, error) {
	th, err := ComputeThresholds(clf, ref)
	if err != nil {
		return Assessment{}, err
	}
	proba, err := clf.PredictProba(features)
	if err != nil {
		return Assessment{}, err
	}
	p := proba[1]

	tier := TierHigh
	switch {
	case p <= th.Low:
		tier = TierLow
	case p <= th.Mid:
		tier = TierModerate
	}

	return Assessment{
		Probability: p * 100,
		Tier:        tier,
		Thresholds:  th,
	}, nil
}

// percentile returns the rank-th percentile of an ascending-sorted slice
// using linear interpolation between closest ranks, matching numpy's
// default method.
func percentile(sorted []float64, rank float64) float64 {
	if len(sorted) == 1 {
		return sorted[0]
	}
	pos := rank / 100 * float64(len(sorted)-1)
	lower := int(pos)
	if lower >= len(sorted)-1 {
		return sorted[len(sorted)-1]
	}
	frac := pos - float64(lower)
	return sorted[lower] + frac*(sorted[lower+1]-sorted[lower])
}
